package world

import "testing"

func TestChunkPosFromWorld(t *testing.T) {
	cases := []struct {
		x, y, z int
		want    ChunkPos
	}{
		{0, 0, 0, ChunkPos{0, 0, 0}},
		{31, 31, 31, ChunkPos{0, 0, 0}},
		{32, 0, 0, ChunkPos{1, 0, 0}},
		{-1, 0, 0, ChunkPos{-1, 0, 0}},
		{-32, 0, 0, ChunkPos{-1, 0, 0}},
		{-33, 64, 95, ChunkPos{-2, 2, 2}},
	}

	for _, tc := range cases {
		got := ChunkPosFromWorld(tc.x, tc.y, tc.z)
		if got != tc.want {
			t.Errorf("ChunkPosFromWorld(%d, %d, %d) = %v, want %v", tc.x, tc.y, tc.z, got, tc.want)
		}
	}
}

func TestWorldOriginInvertsChunkPos(t *testing.T) {
	for _, pos := range []ChunkPos{{0, 0, 0}, {3, 1, -2}, {-5, 0, 7}} {
		x, y, z := pos.WorldOrigin()
		if got := ChunkPosFromWorld(x, y, z); got != pos {
			t.Errorf("origin of %v maps back to %v", pos, got)
		}
		if got := ChunkPosFromWorld(x+ChunkSize-1, y+ChunkSize-1, z+ChunkSize-1); got != pos {
			t.Errorf("far corner of %v maps to %v", pos, got)
		}
	}
}

func TestChunkStorageGetSet(t *testing.T) {
	s := NewChunkStorage()
	s.Set(5, 6, 7, BlockGrass)
	if got := s.Get(5, 6, 7); got != BlockGrass {
		t.Fatalf("Get(5,6,7) = %v, want grass", got)
	}
	if got := s.Get(-1, 0, 0); got != BlockAir {
		t.Fatalf("out-of-range read = %v, want air", got)
	}

	// Out-of-range writes must not corrupt neighbors.
	s.Set(ChunkSize, 0, 0, BlockStone)
	if s.CountNonAir() != 1 {
		t.Fatalf("out-of-range write changed storage, non-air = %d", s.CountNonAir())
	}
}

func TestChunkStorageLinearOrder(t *testing.T) {
	s := NewChunkStorage()
	s.Set(1, 0, 0, BlockStone)
	s.Set(0, 1, 0, BlockDirt)
	s.Set(0, 0, 1, BlockGrass)

	if s.At(1) != BlockStone {
		t.Errorf("x axis is not the fastest dimension")
	}
	if s.At(ChunkSize) != BlockDirt {
		t.Errorf("y stride is not %d", ChunkSize)
	}
	if s.At(ChunkSize*ChunkSize) != BlockGrass {
		t.Errorf("z stride is not %d", ChunkSize*ChunkSize)
	}
}

func TestBlockTypeValidity(t *testing.T) {
	if !BlockStone.IsValid() || !BlockAir.IsValid() {
		t.Fatalf("core block types must be valid")
	}
	if BlockType(200).IsValid() {
		t.Fatalf("id 200 must be invalid")
	}
	if BlockBedrock.IsBreakable() {
		t.Fatalf("bedrock must not be breakable")
	}
	if BlockWater.IsSolid() {
		t.Fatalf("water must not be solid")
	}
}
