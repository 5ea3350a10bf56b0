package terrain

import (
	"testing"

	"planetforge/internal/world"
)

func TestClassifyBiomeTemperatureBands(t *testing.T) {
	g := testGenerator()
	sea := g.Config().SeaLevel

	// Elevation 20 sits above every beach gate and below the mountain limit,
	// so classification reduces to the temperature and moisture bands.
	land := sea + 20
	cases := []struct {
		tempC    float64
		moisture float64
		want     Biome
	}{
		{-20, 0.5, BiomeIceCap},
		{-10, 0.5, BiomeSnow},
		{-2, 0.5, BiomeTundra},
		{5, 0.2, BiomeBorealForest},
		{5, 0.5, BiomeTemperateForest},
		{12, 0.2, BiomeTemperateGrassland},
		{12, 0.5, BiomeTemperateForest},
		{12, 0.7, BiomeTropicalRainforest},
		{22, 0.1, BiomeDesert},
		{22, 0.3, BiomeSavanna},
		{22, 0.6, BiomeTropicalRainforest},
		{30, 0.1, BiomeDesert},
		{30, 0.3, BiomeSavanna},
		{30, 0.8, BiomeTropicalRainforest},
	}

	for _, tc := range cases {
		got := g.classifyBiome(0, 0, land, tc.tempC, tc.moisture)
		if got != tc.want {
			t.Errorf("classify(%v C, moisture %v) = %v, want %v", tc.tempC, tc.moisture, got, tc.want)
		}
	}
}

func TestClassifyBiomeOceans(t *testing.T) {
	g := testGenerator()
	cfg := g.Config()
	sea := cfg.SeaLevel

	deep := sea - cfg.DeepOceanDepth - 5
	shallow := sea - 10

	if got := g.classifyBiome(0, 0, deep, 10, 0.5); got != BiomeDeepOcean {
		t.Errorf("deep warm water = %v", got)
	}
	if got := g.classifyBiome(0, 0, deep, -5, 0.5); got != BiomeFrozenOcean {
		t.Errorf("deep cold water = %v", got)
	}
	if got := g.classifyBiome(0, 0, shallow, 10, 0.5); got != BiomeOcean {
		t.Errorf("shallow warm water = %v", got)
	}
	if got := g.classifyBiome(0, 0, shallow, -5, 0.5); got != BiomeFrozenOcean {
		t.Errorf("shallow cold water = %v", got)
	}
}

func TestClassifyBiomeMountains(t *testing.T) {
	g := testGenerator()
	cfg := g.Config()

	limit := cfg.HighlandBonus*0.6 + cfg.MountainHeight*0.35
	high := cfg.SeaLevel + limit + 10

	if got := g.classifyBiome(0, 0, high, 5, 0.5); got != BiomeMountain {
		t.Errorf("warm peak = %v", got)
	}
	if got := g.classifyBiome(0, 0, high, -10, 0.5); got != BiomeSnowyMountain {
		t.Errorf("cold peak = %v", got)
	}
}

func TestClassifyBiomeTotal(t *testing.T) {
	g := testGenerator()
	sea := g.Config().SeaLevel

	for h := sea - 100; h <= sea+300; h += 20 {
		for temp := -40.0; temp <= 45; temp += 5 {
			for _, moisture := range []float64{0, 0.25, 0.5, 0.75, 1} {
				biome := g.classifyBiome(0, 0, h, temp, moisture)
				if biome.String() == "unknown" {
					t.Fatalf("no biome for height %v, temp %v, moisture %v", h, temp, moisture)
				}
				if !biome.SurfaceBlock().IsValid() || !biome.SubsurfaceBlock().IsValid() {
					t.Fatalf("%v maps to invalid blocks", biome)
				}
			}
		}
	}
}

func TestBiomeBlockMappings(t *testing.T) {
	if BiomeDesert.SurfaceBlock() != world.BlockSand {
		t.Errorf("desert surface = %v", BiomeDesert.SurfaceBlock())
	}
	if BiomeTemperateForest.SurfaceBlock() != world.BlockGrass {
		t.Errorf("forest surface = %v", BiomeTemperateForest.SurfaceBlock())
	}
	if BiomeIceCap.SurfaceBlock() != world.BlockIce {
		t.Errorf("ice cap surface = %v", BiomeIceCap.SurfaceBlock())
	}
	if BiomeIceCap.SubsurfaceBlock() != world.BlockPackedIce {
		t.Errorf("ice cap subsurface = %v", BiomeIceCap.SubsurfaceBlock())
	}
	if BiomeSnowyMountain.SurfaceBlock() != world.BlockSnow {
		t.Errorf("snowy mountain surface = %v", BiomeSnowyMountain.SurfaceBlock())
	}
	if BiomeOcean.SurfaceBlock() != world.BlockSand {
		t.Errorf("ocean floor = %v", BiomeOcean.SurfaceBlock())
	}
}
