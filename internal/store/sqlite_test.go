package store

import (
	"bytes"
	"path/filepath"
	"testing"

	"voxelforge/internal/world"
)

func openTest(t *testing.T) *ChunkStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "chunks.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := openTest(t)

	blocks := world.GenerateChunk(3, -2, 42, world.DefaultGenConfig())
	if err := s.Put(42, 3, -2, blocks); err != nil {
		t.Fatal(err)
	}

	got, ok := s.Get(42, 3, -2)
	if !ok {
		t.Fatal("stored chunk not found")
	}
	if !bytes.Equal(got, blocks) {
		t.Fatal("round trip corrupted the grid")
	}
	// The cache must hand out a buffer the caller can own.
	got[0] = byte(world.BlockTypeGoldOre)
	again, _ := s.Get(42, 3, -2)
	if again[0] == byte(world.BlockTypeGoldOre) && blocks[0] != byte(world.BlockTypeGoldOre) {
		t.Fatal("Get returned a shared buffer")
	}
}

func TestGetMiss(t *testing.T) {
	s := openTest(t)
	if _, ok := s.Get(1, 0, 0); ok {
		t.Fatal("empty store reported a hit")
	}
}

func TestKeyIsSeedAndCoord(t *testing.T) {
	s := openTest(t)

	a := world.GenerateChunk(0, 0, 1, world.DefaultGenConfig())
	b := world.GenerateChunk(0, 0, 2, world.DefaultGenConfig())
	if err := s.Put(1, 0, 0, a); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(2, 0, 0, b); err != nil {
		t.Fatal(err)
	}

	got, ok := s.Get(2, 0, 0)
	if !ok || !bytes.Equal(got, b) {
		t.Fatal("seed is not part of the cache key")
	}
	if _, ok := s.Get(1, 5, 0); ok {
		t.Fatal("coordinate is not part of the cache key")
	}
	if n, err := s.Count(); err != nil || n != 2 {
		t.Fatalf("Count = %d (%v), want 2", n, err)
	}
}

func TestPutReplaces(t *testing.T) {
	s := openTest(t)

	old := world.NewGrid()
	if err := s.Put(7, 0, 0, old); err != nil {
		t.Fatal(err)
	}
	repl := world.NewGrid()
	repl.Set(0, 0, 0, world.BlockTypeStone)
	if err := s.Put(7, 0, 0, repl); err != nil {
		t.Fatal(err)
	}

	got, ok := s.Get(7, 0, 0)
	if !ok || got.At(0, 0, 0) != world.BlockTypeStone {
		t.Fatal("second Put did not replace the entry")
	}
	if n, _ := s.Count(); n != 1 {
		t.Fatalf("Count = %d after replace, want 1", n)
	}
}

func TestPutRejectsBadLength(t *testing.T) {
	s := openTest(t)
	if err := s.Put(1, 0, 0, make([]byte, 7)); err == nil {
		t.Fatal("short buffer should not store")
	}
}
