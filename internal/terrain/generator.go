// Package terrain generates the surface of a toroidal planet: continents,
// tectonic plates, mountain ranges, hydrology, climate and biomes, all
// derived deterministically from a single seed. Terrain wraps seamlessly on
// both world axes.
package terrain

import (
	"log"
	"math"
	"time"

	"planetforge/internal/config"
	"planetforge/internal/noise"
)

// Generator answers point queries about the planet surface. It is immutable
// after construction and safe for concurrent use.
type Generator struct {
	cfg *config.WorldGenConfig

	continentNoise   noise.Source
	detailNoise      noise.Source
	mountainNoise    noise.Source
	islandNoise      noise.Source
	moistureNoise    noise.Source
	temperatureNoise noise.Source
	rainNoise        noise.Source

	sites  []ContinentSite
	plates *PlateMap
	ranges *MountainRangeMap
	hydro  *HydrologyMap
}

// New builds a generator for the given parameters. Construction runs the
// expensive phases up front (continent placement, plate partition, mountain
// painting, hydrology) so that point queries afterwards are cheap.
func New(cfg *config.WorldGenConfig) *Generator {
	if cfg == nil {
		cfg = config.DefaultWorldGen()
	}

	g := &Generator{
		cfg:              cfg,
		continentNoise:   noise.New(noise.DeriveSeed(cfg.Seed, "continents")),
		detailNoise:      noise.New(noise.DeriveSeed(cfg.Seed, "detail")),
		mountainNoise:    noise.New(noise.DeriveSeed(cfg.Seed, "mountains")),
		islandNoise:      noise.New(noise.DeriveSeed(cfg.Seed, "islands")),
		moistureNoise:    noise.New(noise.DeriveSeed(cfg.Seed, "moisture")),
		temperatureNoise: noise.New(noise.DeriveSeed(cfg.Seed, "temperature")),
		rainNoise:        noise.New(noise.DeriveSeed(cfg.Seed, "rainfall")),
	}

	start := time.Now()
	g.sites = generateContinentSites(cfg)
	g.plates = generatePlateMap(cfg, g.sites)
	log.Printf("terrain: placed %d continent sites across %d plates", len(g.sites), len(g.plates.Plates()))

	g.ranges = generateMountainRanges(cfg, g.sites, g.plates.Sample)

	g.hydro = generateHydrology(cfg,
		func(x, z float64) float64 {
			x, z = g.wrapWorld(x, z)
			return g.terrainComponents(x, z).baseHeight
		},
		func(x, z float64) float64 {
			x, z = g.wrapWorld(x, z)
			return g.rawRainfall(x, z)
		})

	log.Printf("terrain: generator ready seed=%d size=%.0f in %s", cfg.Seed, cfg.PlanetSize, time.Since(start).Round(time.Millisecond))
	return g
}

// Config returns the parameters the generator was built with.
func (g *Generator) Config() *config.WorldGenConfig {
	return g.cfg
}

// PlanetSize returns the world-space edge length of the planet.
func (g *Generator) PlanetSize() float64 {
	return g.cfg.PlanetSize
}

// wrapWorld canonicalizes world coordinates into [0, planetSize). Every
// public query wraps first so positions that differ by whole planet lengths
// produce bit-identical results.
func (g *Generator) wrapWorld(worldX, worldZ float64) (float64, float64) {
	size := math.Max(g.cfg.PlanetSize, 1)
	x := math.Mod(worldX, size)
	if x < 0 {
		x += size
	}
	z := math.Mod(worldZ, size)
	if z < 0 {
		z += size
	}
	return x, z
}

func (g *Generator) normalizedUV(worldX, worldZ float64) (float64, float64) {
	size := math.Max(g.cfg.PlanetSize, 1)
	return wrapUnit(worldX / size), wrapUnit(worldZ / size)
}

type terrainComponentsResult struct {
	baseHeight float64
	landFactor float64
}

// terrainComponents composes the raw surface height before hydrology carving:
// ocean floor, continent land mass, detail noise, highlands, mountain noise
// plus painted ranges, and ocean islands.
func (g *Generator) terrainComponents(worldX, worldZ float64) terrainComponentsResult {
	cfg := g.cfg
	u, v := g.normalizedUV(worldX, worldZ)

	borderWidth := cfg.OceanBorderWidth
	oceanBorderFactor := 1.0
	if borderWidth > 0 {
		switch {
		case u < borderWidth:
			oceanBorderFactor = clamp01(u / borderWidth)
		case u > 1-borderWidth:
			oceanBorderFactor = clamp01((1 - u) / borderWidth)
		}
	}

	continent := noise.FractalPeriodic(g.continentNoise, u, v, cfg.ContinentFrequency, 4, 2.0, 0.45)
	continentMask := math.Pow((continent+1)*0.5, cfg.ContinentPower)

	landFactor := math.Max(continentMask-(cfg.ContinentThreshold-cfg.ContinentBias), 0) /
		(1 - cfg.ContinentThreshold)
	landFactor = clamp01(landFactor)

	siteMask := g.continentSiteMask(u, v)
	landFactor = clamp01(landFactor * siteMask * oceanBorderFactor)
	oceanFactor := 1 - landFactor

	seaLevel := cfg.SeaLevel
	deepFloor := seaLevel - cfg.DeepOceanDepth
	shallowFloor := seaLevel - cfg.OceanDepth
	oceanHeight := lerp(deepFloor, shallowFloor, clamp01(continentMask))

	const detailScale = 50.0
	detail1 := noise.World(g.detailNoise, worldX, worldZ, detailScale, cfg.PlanetSize)
	detail2 := noise.World(g.detailNoise, worldX+1000, worldZ+1000, detailScale*2, cfg.PlanetSize) * 0.5
	detail3 := noise.World(g.detailNoise, worldX+2000, worldZ+2000, detailScale*4, cfg.PlanetSize) * 0.25
	detail := (detail1 + detail2 + detail3) / 1.75 * cfg.DetailAmplitude * landFactor

	const mountainScale = 200.0
	mountain1 := noise.World(g.mountainNoise, worldX, worldZ, mountainScale, cfg.PlanetSize)
	mountain2 := noise.World(g.mountainNoise, worldX+5000, worldZ+5000, mountainScale*2, cfg.PlanetSize) * 0.5
	mountainRaw := (mountain1 + mountain2) / 1.5

	mountainMask := math.Pow((mountainRaw+1)*0.5, 1.8)
	mountainBonus := 0.0
	if mountainMask > cfg.MountainThreshold {
		mountainBonus = (mountainMask - cfg.MountainThreshold) / (1 - cfg.MountainThreshold)
	}

	ridgeFactor := g.continentRidgeFactor(u, v)
	rangeFactor := clamp01(g.ranges.Sample(u, v))
	landWeight := math.Pow(landFactor, 0.65)

	baseMountain := clamp01(mountainBonus*ridgeFactor+landFactor*0.1) * cfg.MountainHeight * landFactor
	rangeBonus := rangeFactor * cfg.MountainHeight * cfg.MountainRangeStrength * landWeight
	mountains := baseMountain + rangeBonus

	interiorMask := math.Pow(landFactor, 1.4)
	rangeHighlands := rangeFactor * cfg.HighlandBonus * 0.6 * interiorMask
	highlands := clamp01(ridgeFactor*0.9+interiorMask*0.4)*cfg.HighlandBonus*interiorMask + rangeHighlands

	landHeight := seaLevel + detail + highlands + mountains + landFactor*16

	islandRaw := noise.FractalPeriodic(g.islandNoise, u, v, cfg.IslandFrequency, 3, 2.3, 0.55)
	islandMask := (islandRaw + 1) * 0.5
	islandStrength := clamp01(math.Max(islandMask-cfg.IslandThreshold, 0) / (1 - cfg.IslandThreshold))
	oceanOnly := math.Pow(oceanFactor, math.Max(cfg.IslandFalloff, 0.1))
	islandBonus := islandStrength * oceanOnly * cfg.IslandHeight

	return terrainComponentsResult{
		baseHeight: oceanHeight*oceanFactor + landHeight*landFactor + islandBonus,
		landFactor: landFactor,
	}
}

// sampleHydrology clamps the raw hydrology sample against the local base
// height: ocean columns carry no channel, carving never cuts below the world
// floor, and the water level never drops below sea level.
func (g *Generator) sampleHydrology(worldX, worldZ, baseHeight float64) HydrologySample {
	sample := g.hydro.Sample(worldX, worldZ)

	if baseHeight <= g.cfg.SeaLevel {
		sample.ChannelDepth = 0
		sample.WaterLevel = g.cfg.SeaLevel
		sample.RiverIntensity = 0
		sample.LakeIntensity = 0
		return sample
	}

	if sample.ChannelDepth > 0 {
		maxCarve := math.Max(baseHeight-4, 0)
		sample.ChannelDepth = math.Min(sample.ChannelDepth, maxCarve)
	}

	if sample.WaterLevel <= g.cfg.SeaLevel {
		sample.WaterLevel = math.Max(baseHeight-sample.ChannelDepth, g.cfg.SeaLevel)
	}

	return sample
}

// HeightAt returns the final surface height at a world position, after
// hydrology carving and lake shore blending. The result never drops below
// the world floor of 4 blocks.
func (g *Generator) HeightAt(worldX, worldZ float64) float64 {
	worldX, worldZ = g.wrapWorld(worldX, worldZ)
	return g.heightAt(worldX, worldZ)
}

func (g *Generator) heightAt(worldX, worldZ float64) float64 {
	components := g.terrainComponents(worldX, worldZ)
	hydro := g.sampleHydrology(worldX, worldZ, components.baseHeight)

	height := components.baseHeight - hydro.ChannelDepth
	if hydro.LakeIntensity > 0 {
		shoreLevel := math.Min(hydro.WaterLevel-g.cfg.LakeShoreBlend, height)
		height = math.Min(height, shoreLevel)
	}
	return math.Max(height, 4)
}

// WaterLevelAt returns the water surface height at a world position, never
// below sea level.
func (g *Generator) WaterLevelAt(worldX, worldZ float64) float64 {
	worldX, worldZ = g.wrapWorld(worldX, worldZ)
	return g.waterLevelAt(worldX, worldZ)
}

func (g *Generator) waterLevelAt(worldX, worldZ float64) float64 {
	components := g.terrainComponents(worldX, worldZ)
	sample := g.sampleHydrology(worldX, worldZ, components.baseHeight)
	return math.Max(sample.WaterLevel, g.cfg.SeaLevel)
}

// RiverIntensityAt returns the channel coverage in [0, 1] at a world
// position. Lakes report their own intensity when present.
func (g *Generator) RiverIntensityAt(worldX, worldZ float64) float64 {
	worldX, worldZ = g.wrapWorld(worldX, worldZ)
	components := g.terrainComponents(worldX, worldZ)
	sample := g.sampleHydrology(worldX, worldZ, components.baseHeight)
	if sample.LakeIntensity > 0 {
		return sample.LakeIntensity
	}
	return sample.RiverIntensity
}

// MajorRiverFactorAt returns the major river weight in [0, 1] at a world
// position.
func (g *Generator) MajorRiverFactorAt(worldX, worldZ float64) float64 {
	worldX, worldZ = g.wrapWorld(worldX, worldZ)
	components := g.terrainComponents(worldX, worldZ)
	sample := g.sampleHydrology(worldX, worldZ, components.baseHeight)
	return sample.MajorRiver
}

// HydrologyAt exposes the clamped hydrology sample for inspection tooling.
func (g *Generator) HydrologyAt(worldX, worldZ float64) HydrologySample {
	worldX, worldZ = g.wrapWorld(worldX, worldZ)
	components := g.terrainComponents(worldX, worldZ)
	return g.sampleHydrology(worldX, worldZ, components.baseHeight)
}

// PlateAt returns the tectonic stress sample under a world position.
func (g *Generator) PlateAt(worldX, worldZ float64) PlateSample {
	worldX, worldZ = g.wrapWorld(worldX, worldZ)
	u, v := g.normalizedUV(worldX, worldZ)
	return g.plates.Sample(u, v)
}

// MountainRangeFactorAt returns the painted range intensity in [0, 1] at a
// world position.
func (g *Generator) MountainRangeFactorAt(worldX, worldZ float64) float64 {
	worldX, worldZ = g.wrapWorld(worldX, worldZ)
	u, v := g.normalizedUV(worldX, worldZ)
	return clamp01(g.ranges.Sample(u, v))
}
