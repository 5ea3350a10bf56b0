package world

// ChunkSize is the edge length of a cubic chunk in blocks.
const ChunkSize = 32

// ChunkVolume is the number of voxels a chunk stores.
const ChunkVolume = ChunkSize * ChunkSize * ChunkSize

// ChunkPos identifies a chunk in global chunk space.
type ChunkPos struct {
	X int
	Y int
	Z int
}

// ChunkPosFromWorld returns the chunk containing the given block position.
func ChunkPosFromWorld(x, y, z int) ChunkPos {
	return ChunkPos{
		X: floorDiv(x, ChunkSize),
		Y: floorDiv(y, ChunkSize),
		Z: floorDiv(z, ChunkSize),
	}
}

// WorldOrigin returns the block position of the chunk's minimum corner.
func (p ChunkPos) WorldOrigin() (int, int, int) {
	return p.X * ChunkSize, p.Y * ChunkSize, p.Z * ChunkSize
}

func floorDiv(value, size int) int {
	if value >= 0 {
		return value / size
	}
	return -((-value - 1) / size) - 1
}

// ChunkStorage holds exactly ChunkVolume block values in X-major linear order
// (x + ChunkSize*(y + ChunkSize*z)). It is a plain value container; callers
// coordinate concurrent access themselves.
type ChunkStorage struct {
	blocks [ChunkVolume]BlockType
}

// NewChunkStorage returns storage filled with air.
func NewChunkStorage() *ChunkStorage {
	return &ChunkStorage{}
}

// ChunkStorageFromFn fills storage by evaluating fn once per voxel.
func ChunkStorageFromFn(fn func(x, y, z int) BlockType) *ChunkStorage {
	s := &ChunkStorage{}
	for z := 0; z < ChunkSize; z++ {
		for y := 0; y < ChunkSize; y++ {
			base := ChunkSize * (y + ChunkSize*z)
			for x := 0; x < ChunkSize; x++ {
				s.blocks[base+x] = fn(x, y, z)
			}
		}
	}
	return s
}

func storageIndex(x, y, z int) int {
	return x + ChunkSize*(y+ChunkSize*z)
}

// Get returns the block at local coordinates. Out-of-range coordinates return
// air rather than panicking.
func (s *ChunkStorage) Get(x, y, z int) BlockType {
	if x < 0 || y < 0 || z < 0 || x >= ChunkSize || y >= ChunkSize || z >= ChunkSize {
		return BlockAir
	}
	return s.blocks[storageIndex(x, y, z)]
}

// Set writes the block at local coordinates. Out-of-range writes are ignored.
func (s *ChunkStorage) Set(x, y, z int, b BlockType) {
	if x < 0 || y < 0 || z < 0 || x >= ChunkSize || y >= ChunkSize || z >= ChunkSize {
		return
	}
	s.blocks[storageIndex(x, y, z)] = b
}

// At returns the block at a linear storage index.
func (s *ChunkStorage) At(index int) BlockType {
	if index < 0 || index >= ChunkVolume {
		return BlockAir
	}
	return s.blocks[index]
}

// Fill sets every voxel to the given block.
func (s *ChunkStorage) Fill(b BlockType) {
	for i := range s.blocks {
		s.blocks[i] = b
	}
}

// Equal reports whether two storages hold identical voxels.
func (s *ChunkStorage) Equal(other *ChunkStorage) bool {
	if other == nil {
		return false
	}
	return s.blocks == other.blocks
}

// CountNonAir returns the number of voxels that are not air.
func (s *ChunkStorage) CountNonAir() int {
	count := 0
	for _, b := range s.blocks {
		if b != BlockAir {
			count++
		}
	}
	return count
}
