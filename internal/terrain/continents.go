package terrain

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"planetforge/internal/config"
	"planetforge/internal/noise"
)

const tau = 2 * math.Pi

// ContinentSite anchors one continental landmass: an oriented soft ellipse in
// wrapped UV space that gates where land may form and where mountain ranges
// spawn. Sites are created once from the seed and never move.
type ContinentSite struct {
	Position   mgl64.Vec2
	RidgeAngle float64
	Orient     float64
	AxisRatio  float64
	RadiusScl  float64
	EdgePower  float64
	Weight     float64
	Drift      mgl64.Vec2
}

func randRange(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// generateContinentSites scatters continent seed sites on a jittered grid.
// A latitude belt biases a share of sites toward larger radius tiers, each
// third of the latitude range is guaranteed at least one major continent, and
// two relaxation passes push crowded sites apart.
func generateContinentSites(cfg *config.WorldGenConfig) []ContinentSite {
	rng := rand.New(rand.NewSource(cfg.Seed))
	n := cfg.ContinentCount
	if n < 1 {
		n = 1
	}
	gridLen := int(math.Ceil(math.Sqrt(float64(n))))
	cellSize := 1.0 / float64(gridLen)
	jitter := cellSize * 0.6

	sites := make([]ContinentSite, 0, n)

	offsetU := rng.Float64() * cellSize
	offsetV := rng.Float64() * cellSize
	beltCenter := rng.Float64()
	beltHalfWidth := clamp(cfg.ContinentBeltWidth, 0.05, 0.45)

	for row := 0; row < gridLen && len(sites) < n; row++ {
		for col := 0; col < gridLen && len(sites) < n; col++ {
			baseU := math.Mod(float64(col)+offsetU, float64(gridLen)) * cellSize
			baseV := math.Mod(float64(row)+offsetV, float64(gridLen)) * cellSize
			u := wrapUnit(baseU + (rng.Float64()-0.5)*jitter)
			v := wrapUnit(baseV + (rng.Float64()-0.5)*jitter)

			orient := rng.Float64() * tau
			axisRatio := randRange(rng, 0.55, 1.45)

			beltOffset := wrapUnit(v-beltCenter+0.5) - 0.5
			beltIntensity := 1 - clamp01(math.Abs(beltOffset)/beltHalfWidth)
			beltIntensity *= beltIntensity

			var radiusScl float64
			tier := rng.Float64()
			switch {
			case tier < 0.1+beltIntensity*0.12:
				radiusScl = randRange(rng, 1.55, 2.2)
			case tier < 0.28+beltIntensity*0.15:
				radiusScl = randRange(rng, 1.1, 1.55)
			case tier < 0.62:
				radiusScl = randRange(rng, 0.8, 1.08)
			default:
				radiusScl = randRange(rng, 0.45, 0.85)
			}

			edgePower := randRange(rng, 0.6, 1.4)
			weight := clamp(radiusScl*radiusScl, 0.35, 4.5)
			ridgeAngle := math.Mod(orient+randRange(rng, -0.7, 0.7)+tau, tau)

			sites = append(sites, ContinentSite{
				Position:   mgl64.Vec2{u, v},
				RidgeAngle: ridgeAngle,
				Orient:     orient,
				AxisRatio:  axisRatio,
				RadiusScl:  radiusScl,
				EdgePower:  edgePower,
				Weight:     weight,
			})
		}
	}

	ensureMajorContinents(sites, rng)
	relaxSites(sites, cfg, gridLen)
	assignDrift(sites, cfg, rng)

	return sites
}

// ensureMajorContinents guarantees each latitude third contains at least one
// large site so no band of the planet ends up all archipelago.
func ensureMajorContinents(sites []ContinentSite, rng *rand.Rand) {
	var segmentHasMajor [3]bool
	for i := range sites {
		segment := int(sites[i].Position.Y() * 3)
		if segment > 2 {
			segment = 2
		}
		if sites[i].RadiusScl >= 1.2 {
			segmentHasMajor[segment] = true
		}
	}

	for segment := 0; segment < 3; segment++ {
		if segmentHasMajor[segment] {
			continue
		}
		start := float64(segment) / 3
		end := start + 1.0/3
		best := -1
		for i := range sites {
			y := sites[i].Position.Y()
			if y < start || y >= end {
				continue
			}
			if best < 0 || sites[i].RadiusScl > sites[best].RadiusScl {
				best = i
			}
		}
		if best < 0 {
			continue
		}
		boost := randRange(rng, 1.18, 1.48)
		sites[best].RadiusScl = boost
		sites[best].Weight = clamp(boost*boost, 0.45, 4.5)
		sites[best].EdgePower = clamp(sites[best].EdgePower*0.6+0.8, 0.5, 1.4)
	}
}

// relaxSites runs two repulsion passes pushing sites apart when they sit
// closer than their combined radii want.
func relaxSites(sites []ContinentSite, cfg *config.WorldGenConfig, gridLen int) {
	if gridLen < 1 {
		gridLen = 1
	}
	baseSpacing := math.Max(1.0/float64(gridLen), 0.02)
	repulsion := clamp(cfg.ContinentRepulsionStrength, 0, 0.3)

	for pass := 0; pass < 2; pass++ {
		adjustments := make([]mgl64.Vec2, len(sites))

		for i := range sites {
			var displacement mgl64.Vec2
			for j := range sites {
				if i == j {
					continue
				}
				diff := mgl64.Vec2{
					torusDelta(sites[i].Position.X(), sites[j].Position.X()),
					torusDelta(sites[i].Position.Y(), sites[j].Position.Y()),
				}
				distance := diff.Len()
				if distance <= 1e-9 {
					continue
				}

				desired := baseSpacing * (0.55 +
					math.Max(sites[i].RadiusScl+sites[j].RadiusScl, 0.4)*0.22 +
					math.Sqrt(sites[i].Weight+sites[j].Weight)*0.02)

				if distance < desired {
					push := (desired - distance) / desired
					dir := normalizeOrZero(diff)
					weightFactor := math.Sqrt((sites[i].Weight + sites[j].Weight) * 0.25)
					displacement = displacement.Sub(dir.Mul(push * weightFactor * repulsion))
				}
			}
			adjustments[i] = displacement
		}

		maxDelta := baseSpacing * 0.28
		for i := range sites {
			adjustment := adjustments[i]
			if adjustment.Dot(adjustment) > maxDelta*maxDelta {
				adjustment = normalizeOrZero(adjustment).Mul(maxDelta)
			}
			sites[i].Position = wrapVec(sites[i].Position.Add(adjustment))
		}
	}
}

// assignDrift gives each site a tectonic drift vector perpendicular to its
// ridge crest, stronger for sites aligned with the global belt axis.
func assignDrift(sites []ContinentSite, cfg *config.WorldGenConfig, rng *rand.Rand) {
	beltAngle := (rng.Float64() - 0.5) * 0.9
	beltAxis := mgl64.Vec2{math.Cos(beltAngle), math.Sin(beltAngle)}

	for i := range sites {
		site := &sites[i]
		along := mgl64.Vec2{math.Cos(site.RidgeAngle), math.Sin(site.RidgeAngle)}
		across := mgl64.Vec2{-along.Y(), along.X()}
		beltBias := clamp(beltAxis.Dot(across), -1, 1)
		magnitude := (cfg.ContinentDriftGain + site.RadiusScl*0.08 + math.Sqrt(site.Weight)*0.03) *
			(1 + math.Abs(beltBias)*cfg.ContinentDriftBeltGain)
		direction := across
		if beltBias < 0 {
			direction = mgl64.Vec2{-across.X(), -across.Y()}
		}
		site.Drift = normalizeOrZero(direction).Mul(magnitude)
	}
}

// siteInfluence evaluates the soft elliptical influence of one site at the
// given wrapped offsets, combining a powered core with an exponential feather.
func siteInfluence(site *ContinentSite, du, dv, baseRadius, globalEdge float64) float64 {
	cosO := math.Cos(site.Orient)
	sinO := math.Sin(site.Orient)
	rotatedX := du*cosO + dv*sinO
	rotatedY := -du*sinO + dv*cosO

	axis := math.Max(site.AxisRatio, 0.2)
	major := math.Max(baseRadius*site.RadiusScl*axis, 0.01)
	minor := math.Max(baseRadius*site.RadiusScl/axis, 0.01)

	rx := rotatedX / major
	ry := rotatedY / minor
	normalized := math.Sqrt(rx*rx + ry*ry)
	interior := math.Max(1-normalized, 0)
	edge := clamp(globalEdge*site.EdgePower, 0.2, 4.0)
	core := math.Pow(interior, edge)
	feather := math.Exp(-math.Pow(normalized, 1.35) * 1.25)
	return clamp01(core*0.85 + feather*0.35)
}

// continentSiteMask returns how strongly continental land asserts itself at
// (u, v): 0 is open ocean, 1 is deep continental interior.
func (g *Generator) continentSiteMask(u, v float64) float64 {
	if len(g.sites) == 0 {
		return 1
	}

	baseRadius := math.Max(g.cfg.ContinentRadius, 0.01)
	globalEdge := math.Max(g.cfg.ContinentEdgePower, 0.1)

	coastalCycles := math.Max(g.cfg.ContinentFrequency*0.35, 0.05)
	coastalNoise := noise.Periodic(g.continentNoise, u, v, coastalCycles)
	jitter := baseRadius * 0.1 * coastalNoise

	accum := 0.0
	totalWeight := 0.0
	best := 0.0
	secondBest := 0.0

	for i := range g.sites {
		site := &g.sites[i]
		du := torusDistance(u, site.Position.X())
		dv := torusDistance(v, site.Position.Y())
		if math.Abs(jitter) > 1e-9 {
			du += math.Cos(site.RidgeAngle) * jitter
			dv += math.Sin(site.RidgeAngle) * jitter
		}

		influence := siteInfluence(site, du, dv, baseRadius, globalEdge)
		if influence <= 0.0005 {
			continue
		}

		accum += influence * site.Weight
		totalWeight += site.Weight
		if influence > best {
			secondBest = best
			best = influence
		} else if influence > secondBest {
			secondBest = influence
		}
	}

	if totalWeight <= 1e-9 {
		return 0
	}

	base := clamp01(accum / totalWeight)
	mask := clamp01(best*0.6 + base*0.3 + math.Max(best-base, 0)*0.1)

	if secondBest > 0.001 {
		overlap := math.Min(best, secondBest)
		mask += math.Pow(overlap, 1.35) * 0.05
	}

	mask = math.Pow(mask, 0.95)
	mask *= clamp(1+clamp(coastalNoise, -0.9, 0.9)*0.04, 0.85, 1.15)
	return clamp01(mask)
}

// continentRidgeFactor measures proximity to a site's crest line, used to
// concentrate mountains along continental spines.
func (g *Generator) continentRidgeFactor(u, v float64) float64 {
	if len(g.sites) == 0 {
		return 1
	}

	baseRadius := math.Max(g.cfg.ContinentRadius, 0.01)
	strongest := 0.0

	for i := range g.sites {
		site := &g.sites[i]
		du := torusDistance(u, site.Position.X())
		dv := torusDistance(v, site.Position.Y())

		axis := math.Max(site.AxisRatio, 0.2)
		major := math.Max(baseRadius*site.RadiusScl*axis, 0.01)
		minor := math.Max(baseRadius*site.RadiusScl/axis, 0.01)

		cosO := math.Cos(site.Orient)
		sinO := math.Sin(site.Orient)
		rotatedX := du*cosO + dv*sinO
		rotatedY := -du*sinO + dv*cosO

		rx := rotatedX / major
		ry := rotatedY / minor
		normalizedSq := rx*rx + ry*ry
		if normalizedSq > 1.6 {
			continue
		}

		crestX := math.Cos(site.RidgeAngle)
		crestY := math.Sin(site.RidgeAngle)
		along := du*crestX + dv*crestY
		across := -du*crestY + dv*crestX

		longitudinal := math.Max(1-math.Abs(along)/(math.Max(major, minor)*0.95), 0)
		transverseSpan := math.Max(minor*0.9+major*0.35, 0.02)
		transverse := math.Max(1-math.Abs(across)/transverseSpan, 0)
		interior := math.Pow(math.Max(1-math.Sqrt(normalizedSq), 0), 0.85)
		weight := clamp(math.Sqrt(site.Weight), 0.6, 1.8)

		candidate := math.Pow(longitudinal, 0.7) * math.Pow(transverse, 0.85) * interior * weight
		if candidate > strongest {
			strongest = candidate
		}
	}

	return clamp01(strongest)
}
