package meshing

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"

	"voxelforge/internal/world"
)

const (
	// VoxelSize scales chunk-local vertex positions to world units.
	VoxelSize = 1.0

	// MaxVertices is the preallocated mesh capacity. A 16x16x16 chunk
	// rarely exceeds a few thousand vertices; when it does, remaining
	// faces are dropped with a warning rather than failing the request.
	MaxVertices = 20000
)

// Mesh holds the four parallel output buffers. Invariants:
// len(Indices) == FaceCount*6 and each per-vertex buffer has length
// VertexCount*3. Ownership moves to the caller; the builder keeps nothing.
type Mesh struct {
	Positions []float32
	Normals   []float32
	Colors    []float32
	Indices   []uint32

	VertexCount int
	FaceCount   int

	// Truncated is set when the capacity cap dropped faces.
	Truncated bool
}

// ChunkInput is one chunk's grid plus up to four optional neighbor grids.
// A nil neighbor is treated as all-air, so boundary faces render when no
// neighbor data is supplied.
type ChunkInput struct {
	Blocks world.Grid

	NeighborNorth world.Grid // +z
	NeighborSouth world.Grid // -z
	NeighborEast  world.Grid // +x
	NeighborWest  world.Grid // -x
}

// faceDef describes one of the six axis-aligned faces: the neighbor
// direction, the outward normal, the fixed shading factor, and four corner
// offsets wound counter-clockwise seen from outside.
type faceDef struct {
	dx, dz, dy int
	normal     mgl32.Vec3
	shade      float32
	corners    [4][3]float32
}

// Per-direction shading: a cheap directional-light approximation, not
// illumination. Top brightest, bottom darkest.
var faces = [6]faceDef{
	{dy: 1, normal: mgl32.Vec3{0, 1, 0}, shade: 1.0,
		corners: [4][3]float32{{0, 1, 0}, {0, 1, 1}, {1, 1, 1}, {1, 1, 0}}},
	{dy: -1, normal: mgl32.Vec3{0, -1, 0}, shade: 0.5,
		corners: [4][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}}},
	{dz: 1, normal: mgl32.Vec3{0, 0, 1}, shade: 0.8,
		corners: [4][3]float32{{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1}}},
	{dz: -1, normal: mgl32.Vec3{0, 0, -1}, shade: 0.8,
		corners: [4][3]float32{{1, 0, 0}, {0, 0, 0}, {0, 1, 0}, {1, 1, 0}}},
	{dx: 1, normal: mgl32.Vec3{1, 0, 0}, shade: 0.7,
		corners: [4][3]float32{{1, 0, 1}, {1, 0, 0}, {1, 1, 0}, {1, 1, 1}}},
	{dx: -1, normal: mgl32.Vec3{-1, 0, 0}, shade: 0.7,
		corners: [4][3]float32{{0, 0, 0}, {0, 0, 1}, {0, 1, 1}, {0, 1, 0}}},
}

// blockAt resolves a possibly out-of-chunk coordinate. Horizontal
// overshoot reads the matching neighbor grid at the mirrored boundary
// index; vertical overshoot and missing neighbors are air.
func (in ChunkInput) blockAt(x, z, y int) world.BlockType {
	if y < 0 || y >= world.ChunkSizeY {
		return world.BlockTypeAir
	}
	switch {
	case x < 0:
		if in.NeighborWest == nil {
			return world.BlockTypeAir
		}
		return in.NeighborWest.At(x+world.ChunkSize, z, y)
	case x >= world.ChunkSize:
		if in.NeighborEast == nil {
			return world.BlockTypeAir
		}
		return in.NeighborEast.At(x-world.ChunkSize, z, y)
	case z < 0:
		if in.NeighborSouth == nil {
			return world.BlockTypeAir
		}
		return in.NeighborSouth.At(x, z+world.ChunkSize, y)
	case z >= world.ChunkSize:
		if in.NeighborNorth == nil {
			return world.BlockTypeAir
		}
		return in.NeighborNorth.At(x, z-world.ChunkSize, y)
	}
	return in.Blocks.At(x, z, y)
}

// BuildChunkMesh converts a block grid into culled triangle geometry.
// A face is emitted only when the voxel is visible and its neighbor in
// that direction is transparent and of a different type; a water body
// therefore renders its outer surface but no internal water-water faces.
func BuildChunkMesh(in ChunkInput) Mesh {
	return buildMesh(in.blockAt, world.ChunkSize, world.ChunkSize, world.ChunkSizeY, VoxelSize)
}

// buildMesh is the mesher core shared with the LOD path: any grid
// dimensions, any voxel scale, culling via the supplied accessor.
func buildMesh(at func(x, z, y int) world.BlockType, sx, sz, sy int, scale float32) Mesh {
	m := Mesh{
		Positions: make([]float32, 0, MaxVertices*3),
		Normals:   make([]float32, 0, MaxVertices*3),
		Colors:    make([]float32, 0, MaxVertices*3),
		Indices:   make([]uint32, 0, MaxVertices/4*6),
	}

	for y := 0; y < sy; y++ {
		for z := 0; z < sz; z++ {
			for x := 0; x < sx; x++ {
				b := at(x, z, y)
				if b == world.BlockTypeAir {
					continue
				}
				base := b.Color()
				for f := range faces {
					fd := &faces[f]
					nb := at(x+fd.dx, z+fd.dz, y+fd.dy)
					if !nb.Transparent() || nb == b {
						continue
					}
					if m.VertexCount+4 > MaxVertices {
						m.Truncated = true
						continue
					}
					emitFace(&m, fd, x, z, y, scale, base)
				}
			}
		}
	}

	if m.Truncated {
		slog.Warn("mesh capacity exceeded, dropping remaining faces",
			"max_vertices", MaxVertices, "faces", m.FaceCount)
	}
	return m
}

// emitFace appends 4 vertices and 2 triangles for one face.
func emitFace(m *Mesh, fd *faceDef, x, z, y int, scale float32, base mgl32.Vec3) {
	color := base.Mul(fd.shade)
	start := uint32(m.VertexCount)

	for _, c := range fd.corners {
		m.Positions = append(m.Positions,
			(float32(x)+c[0])*scale,
			(float32(y)+c[1])*scale,
			(float32(z)+c[2])*scale,
		)
		m.Normals = append(m.Normals, fd.normal.X(), fd.normal.Y(), fd.normal.Z())
		m.Colors = append(m.Colors, color.X(), color.Y(), color.Z())
	}
	m.Indices = append(m.Indices,
		start, start+1, start+2,
		start, start+2, start+3,
	)

	m.VertexCount += 4
	m.FaceCount++
}
