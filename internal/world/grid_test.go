package world

import "testing"

// TestIndexBounds verifies the packed index stays in [0, ChunkVolume)
// and is injective over the whole local domain.
func TestIndexBounds(t *testing.T) {
	seen := make(map[int][3]int, ChunkVolume)
	for y := 0; y < ChunkSizeY; y++ {
		for z := 0; z < ChunkSize; z++ {
			for x := 0; x < ChunkSize; x++ {
				idx := Index(x, z, y)
				if idx < 0 || idx >= ChunkVolume {
					t.Fatalf("Index(%d,%d,%d) = %d, out of [0,%d)", x, z, y, idx, ChunkVolume)
				}
				if prev, dup := seen[idx]; dup {
					t.Fatalf("Index collision: (%d,%d,%d) and %v both map to %d", x, z, y, prev, idx)
				}
				seen[idx] = [3]int{x, z, y}
			}
		}
	}
	if len(seen) != ChunkVolume {
		t.Fatalf("covered %d of %d indices", len(seen), ChunkVolume)
	}
}

// TestGridOutOfBounds verifies reads outside the chunk are air and writes
// outside the chunk are dropped.
func TestGridOutOfBounds(t *testing.T) {
	g := NewGrid()
	if b := g.At(-1, 0, 0); b != BlockTypeAir {
		t.Errorf("At(-1,0,0) = %v, want air", b)
	}
	if b := g.At(0, 0, ChunkSizeY); b != BlockTypeAir {
		t.Errorf("At(0,0,%d) = %v, want air", ChunkSizeY, b)
	}
	g.Set(ChunkSize, 0, 0, BlockTypeStone)
	for _, v := range g {
		if v != 0 {
			t.Fatal("out-of-bounds Set modified the grid")
		}
	}
}

// TestGridRoundTrip verifies Set/At agree through the packed index.
func TestGridRoundTrip(t *testing.T) {
	g := NewGrid()
	g.Set(3, 7, 11, BlockTypeGoldOre)
	if b := g.At(3, 7, 11); b != BlockTypeGoldOre {
		t.Fatalf("At(3,7,11) = %v, want gold ore", b)
	}
	if g[Index(3, 7, 11)] != byte(BlockTypeGoldOre) {
		t.Fatal("flat buffer does not match packed index")
	}
}

// TestAirIsTransparent pins the invariant that code 0 never renders.
func TestAirIsTransparent(t *testing.T) {
	if !BlockTypeAir.Transparent() {
		t.Fatal("air must be transparent")
	}
}
