package tdgraph

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
	"os"

	"github.com/tdcch/tdcch/pkg/plf"
	"github.com/tdcch/tdcch/pkg/shortcut"
)

// Output format for the customized shortcut graph: two directed CCH graphs
// (upward, downward) plus for each arc its sources blob and its PLF cache
// (if retained). Single checksummed file, atomic-rename on write, in the
// same style as the CHGraph binary format this was adapted from: fixed
// header, then flat arrays, then a CRC32 trailer.
const (
	shortcutMagic   = "TDCCHSCG"
	shortcutVersion = uint32(1)
)

type shortcutFileHeader struct {
	Magic        [8]byte
	Version      uint32
	NumNodes     uint32
	NumArcs      uint32
	PeriodMillis uint32
}

// WriteShortcutGraph serializes the CCH topology plus the customized
// shortcut graph. g.Arcs holds both directions of every CCH arc as a single
// array, indices [0,NumArcs) the upward (tail->head) shortcut and
// [NumArcs,2*NumArcs) the downward (head->tail) one — see
// pkg/customization's PlaneUp/PlaneDown, which is what lets a triangle's
// Source reference an arc in either plane and still resolve through one
// shared Graph.Evaluate.
func WriteShortcutGraph(path string, cch *StaticCCH, periodMillis uint32, g *shortcut.Graph) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("tdgraph: create %s: %w", tmp, err)
	}
	defer func() {
		f.Close()
		os.Remove(tmp)
	}()

	bw := bufio.NewWriter(f)
	hash := crc32.NewIEEE()
	w := io.MultiWriter(bw, hash)

	hdr := shortcutFileHeader{
		Version:      shortcutVersion,
		NumNodes:     cch.NumNodes,
		NumArcs:      uint32(cch.NumArcs()),
		PeriodMillis: periodMillis,
	}
	copy(hdr.Magic[:], shortcutMagic)
	if err := binary.Write(w, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("tdgraph: write header: %w", err)
	}
	if err := writeUint32Array(w, cch.FirstOut); err != nil {
		return fmt.Errorf("tdgraph: write FirstOut: %w", err)
	}
	if err := writeUint32Array(w, cch.Head); err != nil {
		return fmt.Errorf("tdgraph: write Head: %w", err)
	}

	if err := writeShortcutPlane(w, g); err != nil {
		return fmt.Errorf("tdgraph: write shortcut graph: %w", err)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("tdgraph: flush: %w", err)
	}
	checksum := hash.Sum32()
	if err := binary.Write(f, binary.LittleEndian, checksum); err != nil {
		return fmt.Errorf("tdgraph: write CRC32: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("tdgraph: close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("tdgraph: rename %s -> %s: %w", tmp, path, err)
	}
	return nil
}

func writeShortcutPlane(w io.Writer, g *shortcut.Graph) error {
	bounds := make([]float64, 0, len(g.Arcs)*2)
	for _, s := range g.Arcs {
		bounds = append(bounds, s.LowerBound, s.UpperBound)
	}
	if err := writeFloat64Array(w, bounds); err != nil {
		return fmt.Errorf("bounds: %w", err)
	}
	for i := range g.Arcs {
		if err := writeSources(w, g.Arcs[i].Sources); err != nil {
			return fmt.Errorf("sources[%d]: %w", i, err)
		}
	}
	for i := range g.Arcs {
		if err := writeCachedATTF(w, g.Arcs[i].Cached); err != nil {
			return fmt.Errorf("cache[%d]: %w", i, err)
		}
	}
	return nil
}

func writeSources(w io.Writer, srcs shortcut.Sources) error {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], uint64(len(srcs)))
	if _, err := w.Write(buf[:n]); err != nil {
		return err
	}
	for _, iv := range srcs {
		if err := binary.Write(w, binary.LittleEndian, iv.From); err != nil {
			return err
		}
		n := binary.PutUvarint(buf[:], uint64(iv.Src.Kind))
		if _, err := w.Write(buf[:n]); err != nil {
			return err
		}
		switch iv.Src.Kind {
		case shortcut.KindOriginalEdge:
			n := binary.PutUvarint(buf[:], uint64(iv.Src.OriginalEdge))
			if _, err := w.Write(buf[:n]); err != nil {
				return err
			}
		case shortcut.KindTriangle:
			n := binary.PutUvarint(buf[:], uint64(iv.Src.Down))
			if _, err := w.Write(buf[:n]); err != nil {
				return err
			}
			n = binary.PutUvarint(buf[:], uint64(iv.Src.Up))
			if _, err := w.Write(buf[:n]); err != nil {
				return err
			}
		}
	}
	return nil
}

const (
	cacheNone uint8 = iota
	cacheExact
	cacheApprox
)

func writeCachedATTF(w io.Writer, a *plf.ATTF) error {
	if a == nil {
		_, err := w.Write([]byte{cacheNone})
		return err
	}
	if a.Exact {
		if _, err := w.Write([]byte{cacheExact}); err != nil {
			return err
		}
		return writePLF(w, a.ExactFn)
	}
	if _, err := w.Write([]byte{cacheApprox}); err != nil {
		return err
	}
	if err := writePLF(w, a.LowerFn); err != nil {
		return err
	}
	return writePLF(w, a.UpperFn)
}

func writePLF(w io.Writer, f plf.PLF) error {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], uint64(len(f.Points)))
	if _, err := w.Write(buf[:n]); err != nil {
		return err
	}
	if _, err := w.Write([]byte{byte(f.Kind)}); err != nil {
		return err
	}
	for _, p := range f.Points {
		if err := binary.Write(w, binary.LittleEndian, p.At); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, p.Val); err != nil {
			return err
		}
	}
	return nil
}

func writeUint32Array(w io.Writer, s []uint32) error {
	for _, v := range s {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	return nil
}

func writeFloat64Array(w io.Writer, s []float64) error {
	for _, v := range s {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	return nil
}

// hashingReader feeds every byte read through to a running CRC32, and
// implements io.ByteReader directly so binary.ReadUvarint never has to wrap
// it in a fresh bufio.Reader — doing that per call would let the wrapper
// buffer ahead of the varint and silently strand those buffered bytes when a
// later binary.Read call went back to reading from the unwrapped reader.
type hashingReader struct {
	r *bufio.Reader
	h hash.Hash32
}

func (t *hashingReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if n > 0 {
		t.h.Write(p[:n])
	}
	return n, err
}

func (t *hashingReader) ReadByte() (byte, error) {
	b, err := t.r.ReadByte()
	if err == nil {
		t.h.Write([]byte{b})
	}
	return b, err
}

// ReadShortcutGraph deserializes a file written by WriteShortcutGraph. The
// returned Graph's Arcs span both planes, per WriteShortcutGraph's doc
// comment: [0,NumArcs) up, [NumArcs,2*NumArcs) down.
func ReadShortcutGraph(path string) (cch *StaticCCH, periodMillis uint32, g *shortcut.Graph, err error) {
	f, ferr := os.Open(path)
	if ferr != nil {
		return nil, 0, nil, fmt.Errorf("tdgraph: open %s: %w", path, ferr)
	}
	defer f.Close()

	hash := crc32.NewIEEE()
	r := &hashingReader{r: bufio.NewReader(f), h: hash}

	var hdr shortcutFileHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, 0, nil, fmt.Errorf("tdgraph: read header: %w", err)
	}
	if string(hdr.Magic[:]) != shortcutMagic {
		return nil, 0, nil, fmt.Errorf("tdgraph: bad magic %q", hdr.Magic)
	}
	if hdr.Version != shortcutVersion {
		return nil, 0, nil, fmt.Errorf("tdgraph: unsupported version %d", hdr.Version)
	}

	firstOut, err := readUint32ArrayN(r, int(hdr.NumNodes+1))
	if err != nil {
		return nil, 0, nil, fmt.Errorf("tdgraph: read FirstOut: %w", err)
	}
	head, err := readUint32ArrayN(r, int(hdr.NumArcs))
	if err != nil {
		return nil, 0, nil, fmt.Errorf("tdgraph: read Head: %w", err)
	}

	graph, err := readShortcutPlane(r, int(hdr.NumArcs)*2)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("tdgraph: read shortcut graph: %w", err)
	}

	expected := hash.Sum32()
	var stored uint32
	if err := binary.Read(r.r, binary.LittleEndian, &stored); err != nil {
		return nil, 0, nil, fmt.Errorf("tdgraph: read CRC32: %w", err)
	}
	if stored != expected {
		return nil, 0, nil, fmt.Errorf("tdgraph: CRC32 mismatch: stored=%08x computed=%08x", stored, expected)
	}

	rank := make([]uint32, hdr.NumNodes)
	// Rank, Perm and Parent are not persisted: Rank is returned zero-filled
	// and Perm/Parent are nil, so callers that need the elimination order
	// (the corridor search does) take the StaticCCH from LoadInput instead.
	out := &StaticCCH{
		NumNodes: hdr.NumNodes,
		Rank:     rank,
		FirstOut: firstOut,
		Head:     head,
	}
	graph.Period = float64(hdr.PeriodMillis) / 1000.0
	return out, hdr.PeriodMillis, graph, nil
}

func readShortcutPlane(r *hashingReader, numArcs int) (*shortcut.Graph, error) {
	bounds, err := readFloat64ArrayN(r, numArcs*2)
	if err != nil {
		return nil, fmt.Errorf("bounds: %w", err)
	}
	g := &shortcut.Graph{Arcs: make([]shortcut.Shortcut, numArcs)}
	for i := 0; i < numArcs; i++ {
		g.Arcs[i].LowerBound = bounds[2*i]
		g.Arcs[i].UpperBound = bounds[2*i+1]
	}
	for i := 0; i < numArcs; i++ {
		srcs, err := readSources(r)
		if err != nil {
			return nil, fmt.Errorf("sources[%d]: %w", i, err)
		}
		g.Arcs[i].Sources = srcs
	}
	for i := 0; i < numArcs; i++ {
		cached, err := readCachedATTF(r)
		if err != nil {
			return nil, fmt.Errorf("cache[%d]: %w", i, err)
		}
		g.Arcs[i].Cached = cached
	}
	return g, nil
}

func readSources(r *hashingReader) (shortcut.Sources, error) {
	count, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, err
	}
	out := make(shortcut.Sources, count)
	for i := range out {
		var from float64
		if err := binary.Read(r, binary.LittleEndian, &from); err != nil {
			return nil, err
		}
		kind, err := binary.ReadUvarint(r)
		if err != nil {
			return nil, err
		}
		src := shortcut.Source{Kind: shortcut.Kind(kind)}
		switch src.Kind {
		case shortcut.KindOriginalEdge:
			e, err := binary.ReadUvarint(r)
			if err != nil {
				return nil, err
			}
			src.OriginalEdge = shortcut.EdgeID(e)
		case shortcut.KindTriangle:
			d, err := binary.ReadUvarint(r)
			if err != nil {
				return nil, err
			}
			u, err := binary.ReadUvarint(r)
			if err != nil {
				return nil, err
			}
			src.Down, src.Up = shortcut.ArcID(d), shortcut.ArcID(u)
		}
		out[i] = shortcut.Interval{From: from, Src: src}
	}
	return out, nil
}

func readCachedATTF(r *hashingReader) (*plf.ATTF, error) {
	var kindBuf [1]byte
	if _, err := io.ReadFull(r, kindBuf[:]); err != nil {
		return nil, err
	}
	switch kindBuf[0] {
	case cacheNone:
		return nil, nil
	case cacheExact:
		f, err := readPLF(r)
		if err != nil {
			return nil, err
		}
		a := plf.NewExact(f)
		return &a, nil
	case cacheApprox:
		lower, err := readPLF(r)
		if err != nil {
			return nil, err
		}
		upper, err := readPLF(r)
		if err != nil {
			return nil, err
		}
		a := plf.NewApprox(lower, upper)
		return &a, nil
	default:
		return nil, fmt.Errorf("unknown cache discriminant %d", kindBuf[0])
	}
}

func readPLF(r *hashingReader) (plf.PLF, error) {
	n, err := binary.ReadUvarint(r)
	if err != nil {
		return plf.PLF{}, err
	}
	var kindBuf [1]byte
	if _, err := io.ReadFull(r, kindBuf[:]); err != nil {
		return plf.PLF{}, err
	}
	points := make([]plf.TTFPoint, n)
	for i := range points {
		if err := binary.Read(r, binary.LittleEndian, &points[i].At); err != nil {
			return plf.PLF{}, err
		}
		if err := binary.Read(r, binary.LittleEndian, &points[i].Val); err != nil {
			return plf.PLF{}, err
		}
	}
	if plf.Kind(kindBuf[0]) == plf.Periodic {
		period := points[len(points)-1].At - points[0].At
		return plf.NewPeriodic(points, period)
	}
	return plf.NewPartial(points, points[0].At, points[len(points)-1].At)
}

func readUint32ArrayN(r *hashingReader, n int) ([]uint32, error) {
	out := make([]uint32, n)
	for i := range out {
		if err := binary.Read(r, binary.LittleEndian, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func readFloat64ArrayN(r *hashingReader, n int) ([]float64, error) {
	out := make([]float64, n)
	for i := range out {
		if err := binary.Read(r, binary.LittleEndian, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}
