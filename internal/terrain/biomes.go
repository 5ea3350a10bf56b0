package terrain

import (
	"math"

	"planetforge/internal/noise"
	"planetforge/internal/world"
)

// Biome classifies a surface position by elevation, temperature, moisture
// and coastal proximity.
type Biome uint8

const (
	BiomeDeepOcean Biome = iota
	BiomeOcean
	BiomeFrozenOcean
	BiomeBeach
	BiomeDesert
	BiomeSavanna
	BiomeTropicalRainforest
	BiomeTemperateGrassland
	BiomeTemperateForest
	BiomeBorealForest
	BiomeTundra
	BiomeSnow
	BiomeIceCap
	BiomeMountain
	BiomeSnowyMountain
)

func (b Biome) String() string {
	switch b {
	case BiomeDeepOcean:
		return "deep_ocean"
	case BiomeOcean:
		return "ocean"
	case BiomeFrozenOcean:
		return "frozen_ocean"
	case BiomeBeach:
		return "beach"
	case BiomeDesert:
		return "desert"
	case BiomeSavanna:
		return "savanna"
	case BiomeTropicalRainforest:
		return "tropical_rainforest"
	case BiomeTemperateGrassland:
		return "temperate_grassland"
	case BiomeTemperateForest:
		return "temperate_forest"
	case BiomeBorealForest:
		return "boreal_forest"
	case BiomeTundra:
		return "tundra"
	case BiomeSnow:
		return "snow"
	case BiomeIceCap:
		return "ice_cap"
	case BiomeMountain:
		return "mountain"
	case BiomeSnowyMountain:
		return "snowy_mountain"
	default:
		return "unknown"
	}
}

// SurfaceBlock is the topmost terrain block for the biome.
func (b Biome) SurfaceBlock() world.BlockType {
	switch b {
	case BiomeDeepOcean, BiomeOcean:
		return world.BlockSand
	case BiomeFrozenOcean, BiomeIceCap:
		return world.BlockIce
	case BiomeBeach, BiomeDesert:
		return world.BlockSand
	case BiomeTundra, BiomeSnow, BiomeSnowyMountain:
		return world.BlockSnow
	case BiomeMountain:
		return world.BlockStone
	default:
		return world.BlockGrass
	}
}

// SubsurfaceBlock fills the few blocks directly beneath the surface.
func (b Biome) SubsurfaceBlock() world.BlockType {
	switch b {
	case BiomeDeepOcean, BiomeOcean, BiomeBeach, BiomeDesert:
		return world.BlockSand
	case BiomeFrozenOcean, BiomeIceCap:
		return world.BlockPackedIce
	case BiomeMountain, BiomeSnowyMountain:
		return world.BlockStone
	default:
		return world.BlockDirt
	}
}

// BiomeAt classifies the biome at a world position.
func (g *Generator) BiomeAt(worldX, worldZ float64) Biome {
	worldX, worldZ = g.wrapWorld(worldX, worldZ)
	height := g.heightAt(worldX, worldZ)
	tempC := g.temperatureAtHeight(worldX, worldZ, height)
	moisture := g.sampleMoisture(worldX, worldZ)
	return g.classifyBiome(worldX, worldZ, height, tempC, moisture)
}

// classifyBiome is a total decision tree: every (height, temperature,
// moisture) combination resolves to exactly one biome.
func (g *Generator) classifyBiome(worldX, worldZ, height, tempC, moisture float64) Biome {
	seaLevel := g.cfg.SeaLevel
	deepOceanCutoff := seaLevel - g.cfg.DeepOceanDepth
	shallowOceanCutoff := seaLevel - 1.5

	if height < deepOceanCutoff {
		if tempC <= -2 {
			return BiomeFrozenOcean
		}
		return BiomeDeepOcean
	}
	if height < shallowOceanCutoff {
		if tempC <= -2 {
			return BiomeFrozenOcean
		}
		return BiomeOcean
	}

	if beach, ok := g.classifyBeach(worldX, worldZ, height, tempC); ok {
		return beach
	}

	elevation := height - seaLevel
	mountainLimit := g.cfg.HighlandBonus*0.6 + g.cfg.MountainHeight*0.35
	if elevation > mountainLimit {
		if tempC < -5 {
			return BiomeSnowyMountain
		}
		return BiomeMountain
	}

	switch {
	case tempC < -15:
		return BiomeIceCap
	case tempC < -5:
		return BiomeSnow
	case tempC < 0:
		return BiomeTundra
	case tempC < 8:
		if moisture < 0.35 {
			return BiomeBorealForest
		}
		return BiomeTemperateForest
	case tempC < 18:
		switch {
		case moisture < 0.25:
			return BiomeTemperateGrassland
		case moisture < 0.6:
			return BiomeTemperateForest
		default:
			return BiomeTropicalRainforest
		}
	case tempC < 26:
		switch {
		case moisture < 0.2:
			return BiomeDesert
		case moisture < 0.45:
			return BiomeSavanna
		default:
			return BiomeTropicalRainforest
		}
	default:
		switch {
		case moisture < 0.15:
			return BiomeDesert
		case moisture < 0.45:
			return BiomeSavanna
		default:
			return BiomeTropicalRainforest
		}
	}
}

// classifyBeach decides whether a near-shore position becomes a beach-family
// biome. The roll is gated by measured coastal distance, slope and a noise
// probability, and the result shifts with temperature.
func (g *Generator) classifyBeach(worldX, worldZ, height, tempC float64) (Biome, bool) {
	seaLevel := g.cfg.SeaLevel
	elevationAboveSea := height - seaLevel
	if elevationAboveSea < -2 || elevationAboveSea > 12 {
		return 0, false
	}

	baseHeight := g.terrainComponents(worldX, worldZ).baseHeight
	hydro := g.sampleHydrology(worldX, worldZ, baseHeight)

	coastal := hydro.CoastalFactor
	if coastal < 0.15 {
		return 0, false
	}
	if hydro.RiverIntensity > 0.12 || hydro.LakeIntensity > 0.12 {
		return 0, false
	}
	if hydro.WaterLevel-baseHeight > 6 {
		return 0, false
	}

	distanceToWater, avgSlope := g.coastalProperties(worldX, worldZ, height)
	if distanceToWater > 120 {
		return 0, false
	}

	slopeFactor := math.Max(1-math.Min(avgSlope, 0.8)/0.8, 0)
	var elevationFactor float64
	switch {
	case elevationAboveSea < 1:
		elevationFactor = 1
	case elevationAboveSea < 6:
		elevationFactor = (6 - elevationAboveSea) / 5
	default:
		elevationFactor = 0
	}

	baseProbability := slopeFactor * elevationFactor * (0.4 + 0.6*coastal)
	if baseProbability <= 0.02 {
		return 0, false
	}

	beachProbability := g.beachProbability(worldX, worldZ, slopeFactor) * (0.4 + 0.6*coastal)
	if beachProbability < 0.08 {
		return 0, false
	}

	switch {
	case tempC < -5:
		return BiomeFrozenOcean, true
	case tempC < 2:
		return BiomeSnow, true
	case tempC < 8:
		return BiomeTemperateGrassland, true
	case tempC < 16:
		return BiomeTemperateForest, true
	default:
		return BiomeBeach, true
	}
}

var coastalRadii = [6]float64{10, 20, 40, 80, 120, 160}

// coastalProperties probes rings of samples around the position and returns
// the distance to the nearest water and the average slope of the probes.
func (g *Generator) coastalProperties(worldX, worldZ, height float64) (float64, float64) {
	seaLevel := g.cfg.SeaLevel
	minDistance := math.MaxFloat64
	var heightSamples []float64

	const sampleCount = 16
	for _, radius := range coastalRadii {
		for i := 0; i < sampleCount; i++ {
			angle := float64(i) * tau / sampleCount
			sx := worldX + math.Cos(angle)*radius
			sz := worldZ + math.Sin(angle)*radius
			sampleHeight := g.HeightAt(sx, sz)
			heightSamples = append(heightSamples, sampleHeight)

			if sampleHeight < seaLevel {
				if radius < minDistance {
					minDistance = radius
				}
				break
			}
		}
	}

	if minDistance == math.MaxFloat64 {
		minDistance = 200
	}

	totalSlope := 0.0
	for _, sampleHeight := range heightSamples {
		totalSlope += math.Abs(sampleHeight-height) / 20
	}
	avgSlope := 0.0
	if len(heightSamples) > 0 {
		avgSlope = totalSlope / float64(len(heightSamples))
	}

	return minDistance, avgSlope
}

func (g *Generator) beachProbability(worldX, worldZ, slopeFactor float64) float64 {
	u, v := g.normalizedUV(worldX, worldZ)
	beachNoise := noise.FractalPeriodic(g.detailNoise, u, v, g.cfg.DetailFrequency*0.5, 2, 2.0, 0.5)

	baseProbability := slopeFactor * 0.85
	noiseInfluence := (beachNoise + 1) * 0.5 * 0.3
	return clamp01(baseProbability + noiseInfluence)
}

// BlockAt returns the voxel at a world position: bedrock near the floor,
// water or ice between terrain and water level, biome surface and subsurface
// near the top, stone below.
func (g *Generator) BlockAt(worldX, worldY, worldZ float64) world.BlockType {
	if worldY < 2 {
		return world.BlockBedrock
	}

	worldX, worldZ = g.wrapWorld(worldX, worldZ)
	height := g.heightAt(worldX, worldZ)
	biome := g.BiomeAt(worldX, worldZ)
	waterSurface := g.waterLevelAt(worldX, worldZ)

	if worldY > height {
		if worldY <= waterSurface {
			if biome == BiomeFrozenOcean || biome == BiomeIceCap {
				return world.BlockIce
			}
			return world.BlockWater
		}
		return world.BlockAir
	}

	if worldY >= height-1 {
		return biome.SurfaceBlock()
	}
	if worldY >= height-4 {
		return biome.SubsurfaceBlock()
	}
	return world.BlockStone
}

// BakeChunk fills a complete chunk of voxels. Column state is resolved once
// per (x, z) and reused for the full vertical span.
func (g *Generator) BakeChunk(pos world.ChunkPos) *world.ChunkStorage {
	originX, originY, originZ := pos.WorldOrigin()

	type column struct {
		height     float64
		water      float64
		surface    world.BlockType
		subsurface world.BlockType
		frozen     bool
	}
	var columns [world.ChunkSize][world.ChunkSize]column

	for z := 0; z < world.ChunkSize; z++ {
		for x := 0; x < world.ChunkSize; x++ {
			wx, wz := g.wrapWorld(float64(originX+x), float64(originZ+z))
			height := g.heightAt(wx, wz)
			biome := g.BiomeAt(wx, wz)
			columns[z][x] = column{
				height:     height,
				water:      g.waterLevelAt(wx, wz),
				surface:    biome.SurfaceBlock(),
				subsurface: biome.SubsurfaceBlock(),
				frozen:     biome == BiomeFrozenOcean || biome == BiomeIceCap,
			}
		}
	}

	return world.ChunkStorageFromFn(func(x, y, z int) world.BlockType {
		worldY := float64(originY + y)
		if worldY < 2 {
			return world.BlockBedrock
		}

		col := &columns[z][x]
		if worldY > col.height {
			if worldY <= col.water {
				if col.frozen {
					return world.BlockIce
				}
				return world.BlockWater
			}
			return world.BlockAir
		}
		if worldY >= col.height-1 {
			return col.surface
		}
		if worldY >= col.height-4 {
			return col.subsurface
		}
		return world.BlockStone
	})
}

var biomeBaseColors = map[Biome][3]uint8{
	BiomeFrozenOcean:        {210, 230, 240},
	BiomeIceCap:             {210, 230, 240},
	BiomeBeach:              {216, 200, 160},
	BiomeDesert:             {236, 212, 120},
	BiomeSavanna:            {198, 182, 96},
	BiomeTropicalRainforest: {44, 118, 56},
	BiomeTemperateGrassland: {100, 176, 80},
	BiomeTemperateForest:    {70, 140, 72},
	BiomeBorealForest:       {60, 120, 104},
	BiomeTundra:             {150, 160, 150},
	BiomeSnow:               {240, 240, 245},
	BiomeMountain:           {130, 130, 130},
	BiomeSnowyMountain:      {232, 236, 242},
}

// PreviewColor returns the RGBA map color for a surface position, shaded by
// height with river and major-river overlays.
func (g *Generator) PreviewColor(worldX, worldZ float64, biome Biome, height float64) [4]uint8 {
	worldX, worldZ = g.wrapWorld(worldX, worldZ)
	seaLevel := g.cfg.SeaLevel
	waterDepth := math.Max(seaLevel-height, 0)

	var base [3]uint8
	switch biome {
	case BiomeDeepOcean:
		t := clamp01(waterDepth / g.cfg.DeepOceanDepth)
		base = lerpColor([3]uint8{12, 36, 92}, [3]uint8{2, 9, 28}, t)
	case BiomeOcean:
		t := clamp01(waterDepth / g.cfg.OceanDepth)
		base = lerpColor([3]uint8{30, 90, 180}, [3]uint8{8, 48, 128}, t)
	default:
		base = biomeBaseColors[biome]
	}

	minHeight := seaLevel - g.cfg.DeepOceanDepth
	maxHeight := seaLevel + g.cfg.MountainHeight + 64
	normalized := clamp01((height - minHeight) / (maxHeight - minHeight))
	shade := 0.6 + normalized*0.4

	color := [4]uint8{
		uint8(math.Min(float64(base[0])*shade, 255)),
		uint8(math.Min(float64(base[1])*shade, 255)),
		uint8(math.Min(float64(base[2])*shade, 255)),
		255,
	}

	riverIntensity := g.RiverIntensityAt(worldX, worldZ)
	majorRiver := g.MajorRiverFactorAt(worldX, worldZ)

	if majorRiver > 0.1 {
		color[0], color[1], color[2] = 5, 30, 100
	} else if riverIntensity > 0.02 {
		blend := clamp01(riverIntensity)
		color[0] = uint8(lerp(float64(color[0]), 20, blend))
		color[1] = uint8(lerp(float64(color[1]), 90, blend))
		color[2] = uint8(lerp(float64(color[2]), 210, blend))
	}

	return color
}
