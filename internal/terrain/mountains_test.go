package terrain

import (
	"math/rand"
	"testing"
)

func testMountainRangeMap(t *testing.T) *MountainRangeMap {
	t.Helper()
	cfg := testWorldGenConfig()
	sites := generateContinentSites(cfg)
	plates := generatePlateMap(cfg, sites)
	return generateMountainRanges(cfg, sites, plates.Sample)
}

func TestMountainRangeSampleRange(t *testing.T) {
	m := testMountainRangeMap(t)

	maxValue := 0.0
	rng := rand.New(rand.NewSource(13))
	for i := 0; i < 4096; i++ {
		u := rng.Float64()
		v := rng.Float64()
		value := m.Sample(u, v)
		if value < 0 || value > 1 {
			t.Fatalf("range sample %v out of [0, 1] at (%v, %v)", value, u, v)
		}
		if value > maxValue {
			maxValue = value
		}
	}
	if maxValue == 0 {
		t.Fatalf("no mountain ranges painted")
	}
}

func TestMountainRangeWrapsSeamlessly(t *testing.T) {
	m := testMountainRangeMap(t)

	// Dyadic coordinates stay exact under +-1 shifts, so the wrapped samples
	// must agree bit for bit.
	rng := rand.New(rand.NewSource(29))
	for i := 0; i < 500; i++ {
		u := float64(rng.Intn(4096)) / 4096
		v := float64(rng.Intn(4096)) / 4096
		base := m.Sample(u, v)
		if got := m.Sample(u+1, v); got != base {
			t.Fatalf("u wrap diverged at (%v, %v): %v != %v", u, v, got, base)
		}
		if got := m.Sample(u, v-1); got != base {
			t.Fatalf("v wrap diverged at (%v, %v): %v != %v", u, v, got, base)
		}
	}
}

func TestMountainRangeDeterministic(t *testing.T) {
	a := testMountainRangeMap(t)
	b := testMountainRangeMap(t)

	if len(a.data) != len(b.data) {
		t.Fatalf("grid size diverged")
	}
	for i := range a.data {
		if a.data[i] != b.data[i] {
			t.Fatalf("range data diverged at cell %d", i)
		}
	}
}

func TestEmptyMountainRangeMap(t *testing.T) {
	m := emptyMountainRangeMap()
	if got := m.Sample(0.3, 0.7); got != 0 {
		t.Fatalf("empty map sample = %v", got)
	}
}
