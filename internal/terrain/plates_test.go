package terrain

import (
	"testing"

	"planetforge/internal/config"
)

func TestPlateMapPartition(t *testing.T) {
	cfg := testWorldGenConfig()
	sites := generateContinentSites(cfg)
	m := generatePlateMap(cfg, sites)

	if len(m.Plates()) != len(sites) {
		t.Fatalf("%d plates for %d sites", len(m.Plates()), len(sites))
	}

	totalArea := 0.0
	for _, plate := range m.Plates() {
		totalArea += plate.Area
		for _, n := range plate.Neighbors {
			if n < 0 || n >= len(sites) {
				t.Fatalf("plate %d has out-of-range neighbor %d", plate.ID, n)
			}
			if n == plate.ID {
				t.Fatalf("plate %d neighbors itself", plate.ID)
			}
		}
	}
	if totalArea < 0.999 || totalArea > 1.001 {
		t.Fatalf("plate areas sum to %v, want 1", totalArea)
	}
}

func TestPlateMapBoundariesOrdered(t *testing.T) {
	cfg := testWorldGenConfig()
	sites := generateContinentSites(cfg)
	m := generatePlateMap(cfg, sites)

	boundaries := m.Boundaries()
	if len(boundaries) == 0 {
		t.Fatalf("no plate boundaries found")
	}
	for i, b := range boundaries {
		if b.Plates[0] >= b.Plates[1] {
			t.Fatalf("boundary %d pair not ordered: %v", i, b.Plates)
		}
		if b.Length <= 0 {
			t.Fatalf("boundary %d has zero length", i)
		}
		if i > 0 {
			prev := boundaries[i-1]
			if prev.Plates[0] > b.Plates[0] ||
				(prev.Plates[0] == b.Plates[0] && prev.Plates[1] >= b.Plates[1]) {
				t.Fatalf("boundaries not sorted at %d: %v then %v", i, prev.Plates, b.Plates)
			}
		}
	}
}

func TestPlateSampleStress(t *testing.T) {
	cfg := testWorldGenConfig()
	sites := generateContinentSites(cfg)
	m := generatePlateMap(cfg, sites)

	for i := 0; i < 32; i++ {
		for j := 0; j < 32; j++ {
			u := float64(i) / 32
			v := float64(j) / 32
			s := m.Sample(u, v)

			if s.PlateID < 0 || s.PlateID >= len(sites) {
				t.Fatalf("plate id %d out of range at (%v, %v)", s.PlateID, u, v)
			}
			if s.PlateID != m.PlateIndex(u, v) {
				t.Fatalf("sample and index disagree at (%v, %v)", u, v)
			}
			if s.Convergence < 0 || s.Divergence < 0 || s.Shear < 0 {
				t.Fatalf("negative stress at (%v, %v): %+v", u, v, s)
			}
			if s.Convergence > 0 && s.Divergence > 0 {
				t.Fatalf("both convergence and divergence positive at (%v, %v)", u, v)
			}
		}
	}
}

func TestPlateMapDeterministic(t *testing.T) {
	cfg := testWorldGenConfig()
	a := generatePlateMap(cfg, generateContinentSites(cfg))
	b := generatePlateMap(cfg, generateContinentSites(cfg))

	for i := range a.assignment {
		if a.assignment[i] != b.assignment[i] {
			t.Fatalf("assignment diverged at cell %d", i)
		}
	}
	if len(a.Boundaries()) != len(b.Boundaries()) {
		t.Fatalf("boundary count diverged: %d != %d", len(a.Boundaries()), len(b.Boundaries()))
	}
}

func TestEmptyPlateMapSample(t *testing.T) {
	m := generatePlateMap(config.DefaultWorldGen(), nil)
	if s := m.Sample(0.5, 0.5); s != (PlateSample{}) {
		t.Fatalf("empty map sample = %+v", s)
	}
}
