package world

import (
	"github.com/go-gl/mathgl/mgl32"
)

// BlockType is the per-voxel code stored in a chunk grid. Code 0 is air.
type BlockType byte

const (
	BlockTypeAir BlockType = iota
	BlockTypeGrass
	BlockTypeDirt
	BlockTypeStone
	BlockTypeBedrock
	BlockTypeSand
	BlockTypeSnow
	BlockTypeClay
	BlockTypeWater
	BlockTypeLog
	BlockTypeLeaves
	BlockTypeCoalOre
	BlockTypeIronOre
	BlockTypeGoldOre

	blockTypeCount
)

// BlockProps is the minimal per-type data the mesh builder needs: a base
// color and whether faces behind this block stay visible.
type BlockProps struct {
	Name        string
	Color       mgl32.Vec3
	Transparent bool
}

// blockProps is indexed by BlockType. Air must stay transparent with no
// visible faces.
var blockProps = [blockTypeCount]BlockProps{
	BlockTypeAir:     {Name: "air", Transparent: true},
	BlockTypeGrass:   {Name: "grass", Color: mgl32.Vec3{0.35, 0.62, 0.25}},
	BlockTypeDirt:    {Name: "dirt", Color: mgl32.Vec3{0.45, 0.32, 0.2}},
	BlockTypeStone:   {Name: "stone", Color: mgl32.Vec3{0.5, 0.5, 0.52}},
	BlockTypeBedrock: {Name: "bedrock", Color: mgl32.Vec3{0.2, 0.2, 0.22}},
	BlockTypeSand:    {Name: "sand", Color: mgl32.Vec3{0.85, 0.8, 0.55}},
	BlockTypeSnow:    {Name: "snow", Color: mgl32.Vec3{0.92, 0.94, 0.96}},
	BlockTypeClay:    {Name: "clay", Color: mgl32.Vec3{0.6, 0.58, 0.5}},
	BlockTypeWater:   {Name: "water", Color: mgl32.Vec3{0.2, 0.4, 0.8}, Transparent: true},
	BlockTypeLog:     {Name: "log", Color: mgl32.Vec3{0.4, 0.28, 0.15}},
	BlockTypeLeaves:  {Name: "leaves", Color: mgl32.Vec3{0.22, 0.45, 0.18}},
	BlockTypeCoalOre: {Name: "coal_ore", Color: mgl32.Vec3{0.3, 0.3, 0.3}},
	BlockTypeIronOre: {Name: "iron_ore", Color: mgl32.Vec3{0.65, 0.55, 0.45}},
	BlockTypeGoldOre: {Name: "gold_ore", Color: mgl32.Vec3{0.8, 0.7, 0.25}},
}

// Props returns the property record for a block type. Unknown codes behave
// like stone so a corrupted grid still meshes instead of panicking.
func (b BlockType) Props() BlockProps {
	if int(b) >= int(blockTypeCount) {
		return blockProps[BlockTypeStone]
	}
	return blockProps[b]
}

// Transparent reports whether faces adjacent to this block type render.
func (b BlockType) Transparent() bool {
	return b.Props().Transparent
}

// Color returns the base RGB color, unit interval per channel.
func (b BlockType) Color() mgl32.Vec3 {
	return b.Props().Color
}
