package terrain

import (
	"math"

	"planetforge/internal/noise"
)

// MoistureAt returns the moisture field in [0, 1] at a world position.
func (g *Generator) MoistureAt(worldX, worldZ float64) float64 {
	worldX, worldZ = g.wrapWorld(worldX, worldZ)
	return g.sampleMoisture(worldX, worldZ)
}

func (g *Generator) sampleMoisture(worldX, worldZ float64) float64 {
	u, v := g.normalizedUV(worldX, worldZ)
	moisture := noise.FractalPeriodic(g.moistureNoise, u, v, g.cfg.MoistureFrequency, 3, 2.2, 0.55)
	return (moisture + 1) * 0.5
}

// TemperatureAt returns the surface air temperature in Celsius at a world
// position, using the terrain height at that point.
func (g *Generator) TemperatureAt(worldX, worldZ float64) float64 {
	worldX, worldZ = g.wrapWorld(worldX, worldZ)
	height := g.heightAt(worldX, worldZ)
	return g.temperatureAtHeight(worldX, worldZ, height)
}

// AirTemperatureAt returns the Fahrenheit air temperature at an arbitrary
// altitude, for consumers that display weather.
func (g *Generator) AirTemperatureAt(worldX, worldY, worldZ float64) float64 {
	worldX, worldZ = g.wrapWorld(worldX, worldZ)
	return celsiusToFahrenheit(g.temperatureAtHeight(worldX, worldZ, worldY))
}

// temperatureAtHeight models temperature as a pole-to-equator latitude band
// minus an altitude lapse above sea level, plus a bounded noise perturbation.
func (g *Generator) temperatureAtHeight(worldX, worldZ, height float64) float64 {
	size := math.Max(g.cfg.PlanetSize, 1)
	latitude := math.Abs(wrapUnit(worldZ/size) - 0.5)
	latAngle := clamp(latitude*math.Pi, 0, math.Pi/2)
	insolation := clamp01(math.Cos(latAngle))

	baseTemp := lerp(g.cfg.PoleTempC, g.cfg.EquatorTempC, insolation)

	elevationAboveSea := math.Max(height-g.cfg.SeaLevel, 0)
	lapse := elevationAboveSea * g.cfg.LapseRatePerBlock

	u, v := g.normalizedUV(worldX, worldZ)
	variation := noise.FractalPeriodic(g.temperatureNoise, u, v, g.cfg.TempVariationCycles, 3, 2.0, 0.6) *
		g.cfg.TempVariation

	return baseTemp - lapse + variation
}

// RainfallIntensityAt returns the rainfall input used by the hydrology
// solver at a world position: a base rate scaled by moisture and noise.
func (g *Generator) RainfallIntensityAt(worldX, worldZ float64) float64 {
	worldX, worldZ = g.wrapWorld(worldX, worldZ)
	return g.rawRainfall(worldX, worldZ)
}

func (g *Generator) rawRainfall(worldX, worldZ float64) float64 {
	base := math.Max(g.cfg.RainfallBase, 0)
	if base <= 0 {
		return 0
	}

	variance := clamp(g.cfg.RainfallVariance, 0, 3)
	if variance <= 1e-9 {
		return base
	}

	u, v := g.normalizedUV(worldX, worldZ)
	n := noise.FractalPeriodic(g.rainNoise, u, v, math.Max(g.cfg.RainfallFrequency, 0.05), 3, 2.1, 0.55)
	n = clamp(n, -1, 1)

	humidity := g.sampleMoisture(worldX, worldZ)*2 - 1
	combined := clamp(humidity*0.6+n*0.4, -1, 1)
	multiplier := math.Max(1+combined*variance, 0)
	return base * multiplier
}
