package tdgraph

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unsafe"
)

// readUint32File reads a raw little-endian uint32 array with no header: one
// file per array, native-size ints. The bytes are reinterpreted via
// unsafe.Slice and copied into a fresh slice.
func readUint32File(path string) ([]uint32, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("%s: length %d not a multiple of 4", path, len(b))
	}
	n := len(b) / 4
	if n == 0 {
		return nil, nil
	}
	return append([]uint32(nil), unsafe.Slice((*uint32)(unsafe.Pointer(&b[0])), n)...), nil
}

// readFloat32File reads a raw little-endian float32 array.
func readFloat32File(path string) ([]float32, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("%s: length %d not a multiple of 4", path, len(b))
	}
	n := len(b) / 4
	if n == 0 {
		return nil, nil
	}
	return append([]float32(nil), unsafe.Slice((*float32)(unsafe.Pointer(&b[0])), n)...), nil
}

func writeUint32File(path string, data []uint32) error {
	return writeRaw(path, len(data)*4, func(w io.Writer) error {
		if len(data) == 0 {
			return nil
		}
		b := unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), len(data)*4)
		_, err := w.Write(b)
		return err
	})
}

func writeFloat32File(path string, data []float32) error {
	return writeRaw(path, len(data)*4, func(w io.Writer) error {
		if len(data) == 0 {
			return nil
		}
		b := unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), len(data)*4)
		_, err := w.Write(b)
		return err
	})
}

func writeRaw(path string, sizeHint int, write func(io.Writer) error) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}
	defer func() {
		f.Close()
		os.Remove(tmp)
	}()
	if err := write(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s -> %s: %w", tmp, path, err)
	}
	return nil
}

// LoadInput reads the input directory format — first_out, head,
// first_ipp_of_arc, ipp_departure_time, ipp_travel_time, cch_perm, and
// optional latitude/longitude — and builds both the TDGraph and, by
// running the elimination game over it, the StaticCCH.
func LoadInput(dir string) (*TDGraph, *StaticCCH, error) {
	path := func(name string) string { return filepath.Join(dir, name) }

	firstOut, err := readUint32File(path("first_out"))
	if err != nil {
		return nil, nil, fmt.Errorf("tdgraph: %w", err)
	}
	head, err := readUint32File(path("head"))
	if err != nil {
		return nil, nil, fmt.Errorf("tdgraph: %w", err)
	}
	firstIPP, err := readUint32File(path("first_ipp_of_arc"))
	if err != nil {
		return nil, nil, fmt.Errorf("tdgraph: %w", err)
	}
	ippAt, err := readUint32File(path("ipp_departure_time"))
	if err != nil {
		return nil, nil, fmt.Errorf("tdgraph: %w", err)
	}
	ippVal, err := readUint32File(path("ipp_travel_time"))
	if err != nil {
		return nil, nil, fmt.Errorf("tdgraph: %w", err)
	}
	cchPerm, err := readUint32File(path("cch_perm"))
	if err != nil {
		return nil, nil, fmt.Errorf("tdgraph: %w", err)
	}

	if len(firstOut) == 0 {
		return nil, nil, fmt.Errorf("tdgraph: empty first_out")
	}
	g := &TDGraph{
		NumNodes:     uint32(len(firstOut) - 1),
		FirstOut:     firstOut,
		Head:         head,
		FirstIPP:     firstIPP,
		IPPAt:        ippAt,
		IPPVal:       ippVal,
		PeriodMillis: DefaultPeriodMillis,
	}
	if lat, err := readFloat32File(path("latitude")); err == nil {
		g.Lat = lat
	}
	if lon, err := readFloat32File(path("longitude")); err == nil {
		g.Lon = lon
	}

	if err := g.Validate(); err != nil {
		return nil, nil, fmt.Errorf("tdgraph: %w", err)
	}
	if uint32(len(cchPerm)) != g.NumNodes {
		return nil, nil, fmt.Errorf("tdgraph: cch_perm length %d, want %d", len(cchPerm), g.NumNodes)
	}

	cch := BuildStaticCCH(g, cchPerm)
	if err := cch.Validate(); err != nil {
		return nil, nil, fmt.Errorf("tdgraph: %w", err)
	}
	return g, cch, nil
}

// WriteInput writes g and cch.Perm back out in the same directory layout
// LoadInput reads, for test fixtures (pkg/testgraph, cmd/gentestdata).
func WriteInput(dir string, g *TDGraph, cchPerm []uint32) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("tdgraph: mkdir %s: %w", dir, err)
	}
	path := func(name string) string { return filepath.Join(dir, name) }

	writers := []struct {
		name string
		fn   func() error
	}{
		{"first_out", func() error { return writeUint32File(path("first_out"), g.FirstOut) }},
		{"head", func() error { return writeUint32File(path("head"), g.Head) }},
		{"first_ipp_of_arc", func() error { return writeUint32File(path("first_ipp_of_arc"), g.FirstIPP) }},
		{"ipp_departure_time", func() error { return writeUint32File(path("ipp_departure_time"), g.IPPAt) }},
		{"ipp_travel_time", func() error { return writeUint32File(path("ipp_travel_time"), g.IPPVal) }},
		{"cch_perm", func() error { return writeUint32File(path("cch_perm"), cchPerm) }},
	}
	for _, w := range writers {
		if err := w.fn(); err != nil {
			return fmt.Errorf("tdgraph: write %s: %w", w.name, err)
		}
	}
	if g.Lat != nil {
		if err := writeFloat32File(path("latitude"), g.Lat); err != nil {
			return fmt.Errorf("tdgraph: write latitude: %w", err)
		}
	}
	if g.Lon != nil {
		if err := writeFloat32File(path("longitude"), g.Lon); err != nil {
			return fmt.Errorf("tdgraph: write longitude: %w", err)
		}
	}
	return nil
}
