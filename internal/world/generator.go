package world

import (
	"voxelforge/internal/noise"
	"voxelforge/internal/rng"
)

// GenConfig holds the worldgen tuning knobs. The yaml tags let the daemon
// config embed it directly; the zero value is not usable, start from
// DefaultGenConfig.
type GenConfig struct {
	Frequency       float64 `yaml:"frequency"`
	Octaves         int     `yaml:"octaves"`
	Lacunarity      float64 `yaml:"lacunarity"`
	Persistence     float64 `yaml:"persistence"`
	BaseHeight      int     `yaml:"base_height"`
	HeightVariation float64 `yaml:"height_variation"`
	SeaLevel        int     `yaml:"sea_level"`
	TreeProbability float64 `yaml:"tree_probability"`
	CoalProbability float64 `yaml:"coal_probability"`
	IronProbability float64 `yaml:"iron_probability"`
	GoldProbability float64 `yaml:"gold_probability"`
}

// DefaultGenConfig returns the standard settlement-world tuning.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Frequency:       0.02,
		Octaves:         4,
		Lacunarity:      2.0,
		Persistence:     0.5,
		BaseHeight:      8,
		HeightVariation: 6,
		SeaLevel:        6,
		TreeProbability: 0.02,
		CoalProbability: 0.06,
		IronProbability: 0.04,
		GoldProbability: 0.02,
	}
}

// Ore depth gates: gold only spawns below goldMaxY, iron below ironMaxY.
// Coal qualifies at any stone depth.
const (
	goldMaxY = 8
	ironMaxY = 12

	// Columns closer than this to a chunk edge never get a tree; clipping
	// a canopy at the border would disagree with the neighbor chunk.
	treeEdgeMargin = 2
)

// Biome threshold constants over the temperature/moisture fields.
const (
	snowTemperature = -0.3
	sandTemperature = 0.4
	sandMoisture    = -0.1
	clayMoisture    = 0.35
)

// Coordinate origin offsets that decorrelate the temperature and moisture
// fields from the height field without needing separate permutation tables.
const (
	temperatureOffset = 1000
	moistureOffset    = -2000
)

// Generator produces one dense block grid per chunk coordinate. It is a
// pure function of (seed, config): the noise field and RNG are rebuilt per
// call, so no state leaks between requests.
type Generator struct {
	seed int32
	cfg  GenConfig
}

// NewGenerator creates a generator with default tuning.
func NewGenerator(seed int32) *Generator {
	return &Generator{seed: seed, cfg: DefaultGenConfig()}
}

// NewGeneratorWithConfig creates a generator with explicit tuning.
func NewGeneratorWithConfig(seed int32, cfg GenConfig) *Generator {
	return &Generator{seed: seed, cfg: cfg}
}

// Seed returns the generator's 32-bit world seed.
func (g *Generator) Seed() int32 {
	return g.seed
}

// surfacePair picks the biome surface and subsurface blocks from the
// temperature/moisture samples. Threshold rules, coldest wins:
// cold -> snow, hot+dry -> sand, wet near sea level -> clay, else grass.
func (g *Generator) surfacePair(temp, moist float64, height int) (surface, subsurface BlockType) {
	switch {
	case temp < snowTemperature:
		return BlockTypeSnow, BlockTypeDirt
	case temp > sandTemperature && moist < sandMoisture:
		return BlockTypeSand, BlockTypeSand
	case moist > clayMoisture && height <= g.cfg.SeaLevel+1:
		return BlockTypeClay, BlockTypeClay
	default:
		return BlockTypeGrass, BlockTypeDirt
	}
}

// Generate emits the block grid for one chunk. Deterministic: the same
// (seed, chunkX, chunkZ) triple always yields a byte-identical grid.
func (g *Generator) Generate(chunkX, chunkZ int) Grid {
	field := noise.New(g.seed)
	// Per-chunk RNG stream for ore and tree rolls. The mix keeps nearby
	// chunks on distinct streams while staying a pure function of the seed.
	r := rng.New(g.seed ^ int32(chunkX)*0x1f1f1f ^ int32(chunkZ)*0x3b3b3b)

	blocks := NewGrid()

	for x := 0; x < ChunkSize; x++ {
		for z := 0; z < ChunkSize; z++ {
			worldX := float64(chunkX*ChunkSize + x)
			worldZ := float64(chunkZ*ChunkSize + z)

			h := g.columnHeight(field, worldX, worldZ)

			temp := field.FBM((worldX+temperatureOffset)*g.cfg.Frequency, (worldZ+temperatureOffset)*g.cfg.Frequency,
				2, g.cfg.Lacunarity, g.cfg.Persistence)
			moist := field.FBM((worldX+moistureOffset)*g.cfg.Frequency, (worldZ+moistureOffset)*g.cfg.Frequency,
				2, g.cfg.Lacunarity, g.cfg.Persistence)
			surface, subsurface := g.surfacePair(temp, moist, h)

			g.fillColumn(blocks, field, r, x, z, worldX, worldZ, h, surface, subsurface)

			if surface == BlockTypeGrass {
				g.maybePlaceTree(blocks, r, x, z, h)
			}
		}
	}
	return blocks
}

// columnHeight maps the fbm height field to an integer surface height.
func (g *Generator) columnHeight(field *noise.Field, worldX, worldZ float64) int {
	n := field.FBM(worldX*g.cfg.Frequency, worldZ*g.cfg.Frequency,
		g.cfg.Octaves, g.cfg.Lacunarity, g.cfg.Persistence)
	return g.cfg.BaseHeight + int(n*g.cfg.HeightVariation)
}

// fillColumn writes one vertical column bottom to top. Layer 0 is always
// bedrock; deep layers are stone with probabilistic ore substitution;
// the four layers under the surface take the biome subsurface block; water
// fills from the surface up to sea level.
func (g *Generator) fillColumn(blocks Grid, field *noise.Field, r *rng.LCG, x, z int, worldX, worldZ float64, height int, surface, subsurface BlockType) {
	oreNoise := field.FBM(worldX*0.1, worldZ*0.1, 2, g.cfg.Lacunarity, g.cfg.Persistence)

	for y := 0; y < ChunkSizeY; y++ {
		var b BlockType
		switch {
		case y == 0:
			b = BlockTypeBedrock
		case y < height-4:
			b = g.stoneOrOre(r, oreNoise, y)
		case y < height:
			b = subsurface
		case y == height:
			b = surface
		case y <= g.cfg.SeaLevel:
			b = BlockTypeWater
		default:
			b = BlockTypeAir
		}
		blocks.Set(x, z, y, b)
	}
}

// stoneOrOre substitutes ore into a stone layer. Each ore rolls
// independently against the seeded RNG, gated by depth, and only in
// columns the secondary ore noise marks as mineralized.
func (g *Generator) stoneOrOre(r *rng.LCG, oreNoise float64, y int) BlockType {
	if oreNoise <= 0 {
		return BlockTypeStone
	}
	if y < goldMaxY && r.Next() < g.cfg.GoldProbability {
		return BlockTypeGoldOre
	}
	if y < ironMaxY && r.Next() < g.cfg.IronProbability {
		return BlockTypeIronOre
	}
	if r.Next() < g.cfg.CoalProbability {
		return BlockTypeCoalOre
	}
	return BlockTypeStone
}

// maybePlaceTree rolls the tree chance for a grass column and, when it
// hits, plants a trunk of height 3-5 with a layered canopy shrinking
// toward the top. Columns near a chunk edge are skipped entirely rather
// than clipped, and the canopy never overwrites non-air cells.
func (g *Generator) maybePlaceTree(blocks Grid, r *rng.LCG, x, z, height int) {
	if x < treeEdgeMargin || x >= ChunkSize-treeEdgeMargin ||
		z < treeEdgeMargin || z >= ChunkSize-treeEdgeMargin {
		return
	}
	if height <= g.cfg.SeaLevel {
		return
	}
	if r.Next() >= g.cfg.TreeProbability {
		return
	}

	trunk := r.NextInt(3, 5)
	// Clearance: trunk plus two canopy layers must fit under the chunk roof.
	if height+trunk+2 >= ChunkSizeY {
		return
	}

	for dy := 1; dy <= trunk; dy++ {
		blocks.Set(x, z, height+dy, BlockTypeLog)
	}

	// Canopy layers, radius shrinking with height: 2, 1, 0.
	for layer := 0; layer <= 2; layer++ {
		radius := 2 - layer
		ly := height + trunk + layer
		for dx := -radius; dx <= radius; dx++ {
			for dz := -radius; dz <= radius; dz++ {
				if dx == 0 && dz == 0 && layer == 0 {
					continue // trunk top occupies the center
				}
				cx, cz := x+dx, z+dz
				if !InBounds(cx, cz, ly) {
					continue
				}
				if blocks.At(cx, cz, ly) == BlockTypeAir {
					blocks.Set(cx, cz, ly, BlockTypeLeaves)
				}
			}
		}
	}
}

// GenerateChunk is the one-shot form used by the worker: same contract as
// Generator.Generate with the seed supplied per call.
func GenerateChunk(chunkX, chunkZ int, seed int32, cfg GenConfig) Grid {
	return NewGeneratorWithConfig(seed, cfg).Generate(chunkX, chunkZ)
}
