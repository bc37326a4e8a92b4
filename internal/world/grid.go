package world

const (
	// Chunk dimensions. A chunk spans ChunkSize x ChunkSize horizontally
	// and ChunkSizeY vertically.
	ChunkSize  = 16
	ChunkSizeY = 16

	// ChunkVolume is the grid buffer length, one byte per voxel.
	ChunkVolume = ChunkSize * ChunkSize * ChunkSizeY

	shiftZ = 4 // log2(ChunkSize)
	shiftY = 8 // log2(ChunkSize * ChunkSize)
)

// Compile-time guards: the shift packing in Index assumes both horizontal
// dimensions are exactly 16. Changing ChunkSize breaks neighbor sampling,
// so fail the build instead of producing garbage meshes.
var (
	_ = [1]struct{}{}[ChunkSize-1<<shiftZ]
	_ = [1]struct{}{}[ChunkVolume-ChunkSizeY<<shiftY]
)

// ChunkCoord identifies a chunk column on the 2D chunk grid.
type ChunkCoord struct {
	X int
	Z int
}

// Index converts local coordinates to the flat grid offset:
// x + z<<4 + y<<8. Always in [0, ChunkVolume) for in-bounds coordinates.
func Index(x, z, y int) int {
	return x + z<<shiftZ + y<<shiftY
}

// InBounds reports whether local coordinates fall inside one chunk.
func InBounds(x, z, y int) bool {
	return x >= 0 && x < ChunkSize && z >= 0 && z < ChunkSize && y >= 0 && y < ChunkSizeY
}

// Grid is one chunk's dense block buffer. It is a plain byte slice so it
// can move across the protocol boundary without copying; the producer must
// not touch a grid after handing it off.
type Grid []byte

// NewGrid allocates an all-air grid.
func NewGrid() Grid {
	return make(Grid, ChunkVolume)
}

// Valid reports whether the buffer has the exact chunk volume.
func (g Grid) Valid() bool {
	return len(g) == ChunkVolume
}

// At returns the block at local coordinates; out-of-bounds reads are air.
func (g Grid) At(x, z, y int) BlockType {
	if !InBounds(x, z, y) {
		return BlockTypeAir
	}
	return BlockType(g[Index(x, z, y)])
}

// Set writes the block at local coordinates; out-of-bounds writes are dropped.
func (g Grid) Set(x, z, y int, b BlockType) {
	if !InBounds(x, z, y) {
		return
	}
	g[Index(x, z, y)] = byte(b)
}
