package meshing

import (
	"voxelforge/internal/world"
)

// BuildLODMesh downsamples a grid by 2^lodLevel and meshes the result for
// distant chunks. Each destination cell takes the majority non-air block
// type of its source cube (ties broken by first encounter in scan order);
// a cube that is entirely air stays air. The LOD mesh is built without
// neighbor context, so chunk-boundary faces always render, and vertex
// positions are scaled by the downsampling factor to keep LOD chunks
// spatially aligned with full-resolution neighbors.
func BuildLODMesh(blocks world.Grid, lodLevel int) Mesh {
	if lodLevel <= 0 {
		return BuildChunkMesh(ChunkInput{Blocks: blocks})
	}

	factor := 1 << lodLevel
	sx := world.ChunkSize / factor
	sy := world.ChunkSizeY / factor
	if sx < 1 || sy < 1 {
		// Coarser than one cell per chunk collapses to a single vote.
		sx, sy = 1, 1
		factor = world.ChunkSize
	}
	sz := sx

	down := make([]byte, sx*sz*sy)
	for y := 0; y < sy; y++ {
		for z := 0; z < sz; z++ {
			for x := 0; x < sx; x++ {
				down[x+z*sx+y*sx*sz] = byte(majorityType(blocks, x*factor, z*factor, y*factor, factor))
			}
		}
	}

	at := func(x, z, y int) world.BlockType {
		if x < 0 || x >= sx || z < 0 || z >= sz || y < 0 || y >= sy {
			return world.BlockTypeAir
		}
		return world.BlockType(down[x+z*sx+y*sx*sz])
	}
	return buildMesh(at, sx, sz, sy, VoxelSize*float32(factor))
}

// majorityType tallies non-air types in one source cube. The tally keeps
// insertion order so ties deterministically go to the first type seen.
func majorityType(blocks world.Grid, x0, z0, y0, side int) world.BlockType {
	type tally struct {
		bt    world.BlockType
		count int
	}
	counts := make([]tally, 0, 4)

	for dy := 0; dy < side; dy++ {
		for dz := 0; dz < side; dz++ {
			for dx := 0; dx < side; dx++ {
				b := blocks.At(x0+dx, z0+dz, y0+dy)
				if b == world.BlockTypeAir {
					continue
				}
				found := false
				for i := range counts {
					if counts[i].bt == b {
						counts[i].count++
						found = true
						break
					}
				}
				if !found {
					counts = append(counts, tally{bt: b, count: 1})
				}
			}
		}
	}

	best := world.BlockTypeAir
	bestCount := 0
	for _, c := range counts {
		if c.count > bestCount {
			best = c.bt
			bestCount = c.count
		}
	}
	return best
}
