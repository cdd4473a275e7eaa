package tdgraph

import (
	"reflect"
	"testing"
)

func TestWriteInputLoadInputRoundTrip(t *testing.T) {
	g := threeNodeLine()
	g.Lat = []float32{52.5, 52.52, 52.51}
	g.Lon = []float32{13.4, 13.41, 13.42}
	cchPerm := []uint32{2, 1, 0}

	dir := t.TempDir()
	if err := WriteInput(dir, g, cchPerm); err != nil {
		t.Fatalf("WriteInput: %v", err)
	}

	got, cch, err := LoadInput(dir)
	if err != nil {
		t.Fatalf("LoadInput: %v", err)
	}
	if got.NumNodes != g.NumNodes {
		t.Errorf("NumNodes = %d, want %d", got.NumNodes, g.NumNodes)
	}
	if !reflect.DeepEqual(got.FirstOut, g.FirstOut) {
		t.Errorf("FirstOut = %v, want %v", got.FirstOut, g.FirstOut)
	}
	if !reflect.DeepEqual(got.Head, g.Head) {
		t.Errorf("Head = %v, want %v", got.Head, g.Head)
	}
	if !reflect.DeepEqual(got.IPPAt, g.IPPAt) {
		t.Errorf("IPPAt = %v, want %v", got.IPPAt, g.IPPAt)
	}
	if !reflect.DeepEqual(got.IPPVal, g.IPPVal) {
		t.Errorf("IPPVal = %v, want %v", got.IPPVal, g.IPPVal)
	}
	if !reflect.DeepEqual(got.Lat, g.Lat) {
		t.Errorf("Lat = %v, want %v", got.Lat, g.Lat)
	}
	if !reflect.DeepEqual(got.Lon, g.Lon) {
		t.Errorf("Lon = %v, want %v", got.Lon, g.Lon)
	}
	if !reflect.DeepEqual(cch.Perm, cchPerm) {
		t.Errorf("cch.Perm = %v, want %v", cch.Perm, cchPerm)
	}
	if err := cch.Validate(); err != nil {
		t.Errorf("loaded StaticCCH invalid: %v", err)
	}
}

func TestLoadInputRejectsWrongPermLength(t *testing.T) {
	g := threeNodeLine()
	dir := t.TempDir()
	if err := WriteInput(dir, g, []uint32{0, 1}); err != nil {
		t.Fatalf("WriteInput: %v", err)
	}
	if _, _, err := LoadInput(dir); err == nil {
		t.Fatal("expected error for a cch_perm shorter than NumNodes")
	}
}

func TestLoadInputWithoutOptionalCoordinates(t *testing.T) {
	g := threeNodeLine()
	dir := t.TempDir()
	if err := WriteInput(dir, g, []uint32{0, 1, 2}); err != nil {
		t.Fatalf("WriteInput: %v", err)
	}
	got, _, err := LoadInput(dir)
	if err != nil {
		t.Fatalf("LoadInput: %v", err)
	}
	if got.Lat != nil || got.Lon != nil {
		t.Errorf("expected nil Lat/Lon when not written, got %v / %v", got.Lat, got.Lon)
	}
}
