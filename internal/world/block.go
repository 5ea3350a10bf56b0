package world

// BlockType identifies a voxel material. Values are stable across the wire
// format and persisted payloads; never renumber existing entries.
type BlockType uint8

const (
	BlockAir BlockType = iota
	BlockStone
	BlockDirt
	BlockGrass
	BlockWood
	BlockLeaves
	BlockSand
	BlockWater
	BlockCobblestone
	BlockPlanks
	BlockBedrock
	BlockSnow
	BlockIce
	BlockPackedIce

	blockTypeCount
)

// IsValid reports whether the id maps to a known block type.
func (b BlockType) IsValid() bool {
	return b < blockTypeCount
}

// IsSolid reports whether the block occupies space for collision purposes.
func (b BlockType) IsSolid() bool {
	return b != BlockAir && b != BlockWater
}

// IsTransparent reports whether light passes through the block.
func (b BlockType) IsTransparent() bool {
	switch b {
	case BlockAir, BlockWater, BlockLeaves, BlockIce:
		return true
	default:
		return false
	}
}

// IsBreakable reports whether players can remove the block.
func (b BlockType) IsBreakable() bool {
	return b != BlockBedrock
}

// IsLiquid reports whether the block flows.
func (b BlockType) IsLiquid() bool {
	return b == BlockWater
}

func (b BlockType) String() string {
	switch b {
	case BlockAir:
		return "air"
	case BlockStone:
		return "stone"
	case BlockDirt:
		return "dirt"
	case BlockGrass:
		return "grass"
	case BlockWood:
		return "wood"
	case BlockLeaves:
		return "leaves"
	case BlockSand:
		return "sand"
	case BlockWater:
		return "water"
	case BlockCobblestone:
		return "cobblestone"
	case BlockPlanks:
		return "planks"
	case BlockBedrock:
		return "bedrock"
	case BlockSnow:
		return "snow"
	case BlockIce:
		return "ice"
	case BlockPackedIce:
		return "packed_ice"
	default:
		return "unknown"
	}
}
