package terrain

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"planetforge/internal/config"
	"planetforge/internal/noise"
)

// MountainRangeMap is a dense [0,1] ridge intensity field over the unit
// torus, painted once at generator construction and bilinearly sampled.
type MountainRangeMap struct {
	width  int
	height int
	data   []float64
}

type rangeParams struct {
	spurChance   float64
	spurStrength float64
	roughness    float64
}

type plateSampler func(u, v float64) PlateSample

func emptyMountainRangeMap() *MountainRangeMap {
	return &MountainRangeMap{width: 1, height: 1, data: []float64{0}}
}

// generateMountainRanges paints every mountain range into the grid, then
// normalizes and erodes the field. Ranges are jointed polylines anchored to
// continent sites, splatted with Gaussian falloff and modulated by roughness
// noise and plate stress.
func generateMountainRanges(cfg *config.WorldGenConfig, sites []ContinentSite, plates plateSampler) *MountainRangeMap {
	planetSize := math.Max(cfg.PlanetSize, 1)
	resolution := int(math.Round(planetSize / 32))
	if resolution < 128 {
		resolution = 128
	}
	if resolution > 4096 {
		resolution = 4096
	}

	m := &MountainRangeMap{
		width:  resolution,
		height: resolution,
		data:   make([]float64, resolution*resolution),
	}

	count := cfg.MountainRangeCount
	if count <= 0 {
		return m
	}

	rng := rand.New(rand.NewSource(cfg.Seed + 17))
	baseHalfWidth := clamp(math.Max(cfg.MountainRangeWidth, 8)/planetSize*0.5, 0.002, 0.25)
	baseStrength := math.Max(cfg.MountainRangeStrength, 0)
	params := rangeParams{
		spurChance:   clamp01(cfg.MountainSpurChance),
		spurStrength: clamp(cfg.MountainSpurStrength, 0, 2),
		roughness:    clamp(cfg.MountainRoughness, 0, 2.5),
	}
	roughnessNoise := noise.New(noise.DeriveSeed(cfg.Seed, "mountain-roughness"))
	erosionIterations := cfg.MountainErosionIterations

	if len(sites) == 0 {
		for i := 0; i < count; i++ {
			m.paintWanderingRange(cfg, rng, roughnessNoise, params, baseHalfWidth, baseStrength, plates)
		}
		m.normalize()
		if erosionIterations > 0 {
			m.applyErosion(erosionIterations)
		}
		return m
	}

	totalSiteWeight := 0.0
	for i := range sites {
		totalSiteWeight += math.Max(sites[i].Weight, 0.05)
	}
	averageSiteWeight := totalSiteWeight / float64(len(sites))

	for i := 0; i < count; i++ {
		site := pickSite(sites, rng, totalSiteWeight)
		m.paintSiteRange(cfg, site, rng, roughnessNoise, params, baseHalfWidth, baseStrength, averageSiteWeight, plates)
	}

	m.normalize()
	if erosionIterations > 0 {
		m.applyErosion(erosionIterations)
	}
	return m
}

func pickSite(sites []ContinentSite, rng *rand.Rand, totalWeight float64) *ContinentSite {
	if totalWeight > 1e-9 {
		roll := rng.Float64() * totalWeight
		accum := 0.0
		for i := range sites {
			accum += math.Max(sites[i].Weight, 0.05)
			if roll <= accum {
				return &sites[i]
			}
		}
	}
	return &sites[rng.Intn(len(sites))]
}

// paintWanderingRange handles the siteless fallback: a random walk across the
// whole torus.
func (m *MountainRangeMap) paintWanderingRange(cfg *config.WorldGenConfig, rng *rand.Rand, roughness noise.Source, params rangeParams, baseHalfWidth, baseStrength float64, plates plateSampler) {
	current := mgl64.Vec2{rng.Float64(), rng.Float64()}
	heading := rng.Float64() * tau

	segments := 6 + rng.Intn(6)
	totalLength := randRange(rng, 0.18, 0.42)
	step := totalLength / float64(segments)
	points := []mgl64.Vec2{current}

	for s := 0; s < segments; s++ {
		heading = math.Mod(heading+(rng.Float64()-0.5)*0.4+tau, tau)
		lateral := (rng.Float64() - 0.5) * 0.35 * step
		forward := mgl64.Vec2{math.Cos(heading), math.Sin(heading)}
		normal := mgl64.Vec2{-forward.Y(), forward.X()}
		current = wrapVec(current.Add(forward.Mul(step)).Add(normal.Mul(lateral)))
		points = append(points, current)
	}

	halfWidth := clamp(baseHalfWidth*randRange(rng, 0.75, 1.35), 0.002, 0.3)
	strength := baseStrength * randRange(rng, 0.7, 1.3)
	m.paintRange(cfg, points, halfWidth, strength, roughness, params, rng, true, plates)
}

// paintSiteRange walks a polyline along a continent site's ridge direction,
// clamped to stay within the site's ellipse, and paints it with plate-stress
// adjusted width and strength.
func (m *MountainRangeMap) paintSiteRange(cfg *config.WorldGenConfig, site *ContinentSite, rng *rand.Rand, roughness noise.Source, params rangeParams, baseHalfWidth, baseStrength, averageSiteWeight float64, plates plateSampler) {
	baseRadius := math.Max(cfg.ContinentRadius, 0.01)
	axis := math.Max(site.AxisRatio, 0.2)
	major := math.Max(baseRadius*site.RadiusScl*axis, 0.02)
	minor := math.Max(baseRadius*site.RadiusScl/axis, 0.01)

	along := mgl64.Vec2{math.Cos(site.RidgeAngle), math.Sin(site.RidgeAngle)}
	across := mgl64.Vec2{-along.Y(), along.X()}

	current := wrapVec(site.Position.
		Add(along.Mul(randRange(rng, -0.35, 0.35) * major)).
		Add(across.Mul(randRange(rng, -0.55, 0.55) * minor)))
	points := []mgl64.Vec2{current}

	totalLength := major * randRange(rng, 0.9, 1.6)
	segments := int(math.Round(clamp(totalLength*float64(m.width)*1.1, 6, 20)))
	step := math.Max(totalLength/float64(segments), 0.005)

	heading := rotateVec(along, randRange(rng, -0.35, 0.35))

	for s := 0; s < segments; s++ {
		bend := randRange(rng, -0.28, 0.28)
		heading = normalizeOrZero(rotateVec(heading, bend*0.45))
		if heading.Dot(heading) <= 1e-18 {
			heading = along
		}

		lateralBias := randRange(rng, -0.4, 0.4) * minor
		advance := heading.Mul(step).Add(across.Mul(lateralBias * 0.35))
		candidate := wrapVec(current.Add(advance))

		// Keep the polyline inside the site's (slightly padded) ellipse.
		local := mgl64.Vec2{
			torusDelta(site.Position.X(), candidate.X()),
			torusDelta(site.Position.Y(), candidate.Y()),
		}
		cosO := math.Cos(site.Orient)
		sinO := math.Sin(site.Orient)
		rotatedX := local.X()*cosO + local.Y()*sinO
		rotatedY := -local.X()*sinO + local.Y()*cosO
		rx := rotatedX / (major * 1.1)
		ry := rotatedY / (minor * 1.1)
		normalized := math.Sqrt(rx*rx + ry*ry)
		if normalized > 1.25 {
			clamped := local.Mul(1.25 / normalized)
			candidate = wrapVec(site.Position.Add(clamped))
		}

		current = candidate
		points = append(points, current)
	}

	if len(points) < 2 {
		return
	}

	plate := plates(site.Position.X(), site.Position.Y())
	siteWeight := clamp(math.Sqrt(site.Weight/averageSiteWeight), 0.6, 2.2)
	widthAdjust := clamp(1+plate.Divergence*cfg.MountainDivergencePenalty-
		plate.Convergence*cfg.MountainConvergenceBoost, 0.3, 2.0)
	widthVariation := randRange(rng, 0.85, 1.25) * math.Sqrt(1/axis) * widthAdjust
	strengthAdjust := clamp(1+plate.Convergence*cfg.MountainConvergenceBoost-
		plate.Divergence*cfg.MountainDivergencePenalty, 0.3, 3.0)
	strengthVariation := randRange(rng, 0.85, 1.25) * siteWeight * strengthAdjust
	halfWidth := clamp(baseHalfWidth*widthVariation, 0.0025, 0.35)
	strength := math.Max(baseStrength*strengthVariation, baseStrength*0.4)

	m.paintRange(cfg, points, halfWidth, strength, roughness, params, rng, true, plates)
}

func (m *MountainRangeMap) paintRange(cfg *config.WorldGenConfig, points []mgl64.Vec2, halfWidth, strength float64, roughness noise.Source, params rangeParams, rng *rand.Rand, allowSpurs bool, plates plateSampler) {
	if len(points) < 2 {
		return
	}

	for i := 0; i+1 < len(points); i++ {
		start, end := points[i], points[i+1]
		m.paintSegment(cfg, start, end, halfWidth, strength, roughness, params, plates)

		if allowSpurs && rng.Float64() < params.spurChance {
			if spur := generateSpur(start, end, halfWidth, params, rng); spur != nil {
				spurHalf := clamp(halfWidth*0.6, 0.001, halfWidth)
				spurStrength := strength * params.spurStrength * randRange(rng, 0.6, 1.35)
				m.paintRange(cfg, spur, spurHalf, spurStrength, roughness, params, rng, false, plates)
			}
		}
	}
}

func (m *MountainRangeMap) paintSegment(cfg *config.WorldGenConfig, start, end mgl64.Vec2, halfWidth, strength float64, roughness noise.Source, params rangeParams, plates plateSampler) {
	dx := torusDelta(start.X(), end.X())
	dy := torusDelta(start.Y(), end.Y())
	distance := math.Max(math.Sqrt(dx*dx+dy*dy), 0.0001)
	steps := int(math.Ceil(distance * float64(m.width) * 2.4))
	if steps < 1 {
		steps = 1
	}
	tangent := normalizeOrZero(mgl64.Vec2{dx, dy})
	lateral := mgl64.Vec2{-tangent.Y(), tangent.X()}
	roughFreq := 4 + params.roughness*6

	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		point := mgl64.Vec2{wrapUnit(start.X() + dx*t), wrapUnit(start.Y() + dy*t)}

		noiseValue := 0.0
		if params.roughness > 0.01 {
			noiseValue = noise.Torus(roughness, point.X(), point.Y(), roughFreq, t)
		}

		widthMod := clamp(1+noiseValue*params.roughness*0.5, 0.35, 2.8)
		strengthMod := clamp(1+noiseValue*params.roughness*0.4, 0.3, 2.6)
		localHalf := clamp(halfWidth*widthMod, 0.0005, 0.35)
		plate := plates(point.X(), point.Y())
		boundaryBoost := clamp(1+plate.Convergence*cfg.MountainConvergenceBoost-
			plate.Divergence*cfg.MountainDivergencePenalty, 0.25, 3.5)
		shearBoost := clamp(1+plate.Shear*cfg.MountainShearBoost, 0.5, 2.0)
		localStrength := strength * strengthMod * boundaryBoost * shearBoost

		m.splat(point, localHalf, localStrength)

		if params.roughness > 0.2 && tangent.Dot(tangent) > 0 {
			alongOffset := (noiseValue*0.5 + 0.5) * localHalf * 0.6
			sideOffset := noiseValue * 0.5 * localHalf * 0.5

			crestPoint := wrapVec(point.Add(tangent.Mul(alongOffset)))
			m.splat(crestPoint, localHalf*0.55, localStrength*0.55)

			spurPoint := wrapVec(point.Add(lateral.Mul(sideOffset)))
			m.splat(spurPoint, localHalf*0.45, localStrength*0.4)
		}

		// Volcanic arc: extra splat offset toward the drift direction at
		// strongly convergent boundaries.
		if plate.Convergence > cfg.MountainArcThreshold && cfg.MountainArcStrength > 0 {
			arcDir := normalizeOrZero(plate.Drift)
			if arcDir.Dot(arcDir) > 0 {
				arcPoint := wrapVec(point.Add(arcDir.Mul(localHalf * 0.8)))
				arcWidth := clamp(localHalf*clamp(cfg.MountainArcWidthFactor, 0.05, 1), 0.0004, 0.35)
				arcStrength := localStrength * clamp(cfg.MountainArcStrength, 0.05, 1.5)
				m.splat(arcPoint, arcWidth, arcStrength)
			}
		}
	}
}

func generateSpur(start, end mgl64.Vec2, halfWidth float64, params rangeParams, rng *rand.Rand) []mgl64.Vec2 {
	dx := torusDelta(start.X(), end.X())
	dy := torusDelta(start.Y(), end.Y())
	base := mgl64.Vec2{dx, dy}
	baseLen := base.Len()
	if baseLen <= 1e-9 {
		return nil
	}

	dir := base.Mul(1 / baseLen)
	normal := mgl64.Vec2{-dir.Y(), dir.X()}

	anchorT := randRange(rng, 0.15, 0.85)
	anchor := mgl64.Vec2{wrapUnit(start.X() + dx*anchorT), wrapUnit(start.Y() + dy*anchorT)}

	heading := normal
	if rng.Float64() < 0.5 {
		heading = mgl64.Vec2{-normal.X(), -normal.Y()}
	}

	spurSegments := 3 + rng.Intn(3)
	roughFactor := math.Max(params.roughness, 0.2)
	spurLength := math.Max(halfWidth*randRange(rng, 1.8, 3.6), 0.005)
	step := math.Max(spurLength/float64(spurSegments), 0.002)

	points := make([]mgl64.Vec2, 0, spurSegments+1)
	points = append(points, anchor)
	current := anchor

	for s := 0; s < spurSegments; s++ {
		bend := (rng.Float64() - 0.5) * 0.6 * roughFactor
		heading = rotateVec(heading, bend)
		mix := randRange(rng, -0.35, 0.35)
		heading = normalizeOrZero(heading.Add(dir.Mul(mix)))
		if heading.Dot(heading) <= 1e-18 {
			break
		}
		current = wrapVec(current.Add(heading.Mul(step)))
		points = append(points, current)
	}

	if len(points) > 2 {
		return points
	}
	return nil
}

// splat adds a Gaussian-falloff ridge stamp centered at the given UV point.
func (m *MountainRangeMap) splat(center mgl64.Vec2, halfWidth, strength float64) {
	radius := int(math.Ceil(halfWidth * float64(m.width) * 3))
	if radius <= 0 {
		return
	}

	cx := int(math.Floor(center.X() * float64(m.width)))
	cy := int(math.Floor(center.Y() * float64(m.height)))

	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			x := wrapIndex(cx+dx, m.width)
			y := wrapIndex(cy+dy, m.height)

			sampleU := (float64(x) + 0.5) / float64(m.width)
			sampleV := (float64(y) + 0.5) / float64(m.height)
			du := torusDistance(center.X(), sampleU)
			dv := torusDistance(center.Y(), sampleV)
			dist := math.Sqrt(du*du + dv*dv)
			if dist > halfWidth*3 {
				continue
			}

			norm := math.Min(dist/halfWidth, 3)
			falloff := math.Exp(-norm * norm * 0.7)
			m.data[y*m.width+x] += falloff * strength
		}
	}
}

func (m *MountainRangeMap) normalize() {
	maxValue := 0.0
	for _, v := range m.data {
		if v > maxValue {
			maxValue = v
		}
	}
	if maxValue <= 1e-9 {
		for i := range m.data {
			m.data[i] = 0
		}
		return
	}
	for i := range m.data {
		m.data[i] = clamp01(m.data[i] / maxValue)
	}
}

func (m *MountainRangeMap) get(x, y int) float64 {
	return m.data[wrapIndex(y, m.height)*m.width+wrapIndex(x, m.width)]
}

// applyErosion smooths the field: each cell moves 38% toward its 3x3 weighted
// neighborhood average (orthogonal neighbors weigh 0.9, diagonal 0.7), then
// the field is renormalized so the tallest ridge stays at 1.
func (m *MountainRangeMap) applyErosion(iterations int) {
	if m.width == 0 || m.height == 0 || len(m.data) == 0 {
		return
	}
	if iterations < 1 {
		iterations = 1
	}

	buffer := make([]float64, len(m.data))
	for iter := 0; iter < iterations; iter++ {
		for y := 0; y < m.height; y++ {
			for x := 0; x < m.width; x++ {
				center := m.get(x, y)
				sum := center
				weightSum := 1.0

				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						if dx == 0 && dy == 0 {
							continue
						}
						weight := 0.7
						if dx == 0 || dy == 0 {
							weight = 0.9
						}
						sum += m.get(x+dx, y+dy) * weight
						weightSum += weight
					}
				}

				average := sum / weightSum
				eroded := center - (center-average)*0.38
				buffer[y*m.width+x] = math.Max(eroded, 0)
			}
		}

		m.data, buffer = buffer, m.data

		maxValue := 0.0
		for _, v := range m.data {
			if v > maxValue {
				maxValue = v
			}
		}
		if maxValue > 1e-9 {
			for i := range m.data {
				m.data[i] = clamp01(m.data[i] / maxValue)
			}
		}
	}
}

// Sample bilinearly interpolates the field at (u, v) with toroidal wrap.
func (m *MountainRangeMap) Sample(u, v float64) float64 {
	if len(m.data) == 0 || m.width == 0 || m.height == 0 {
		return 0
	}

	x := wrapUnit(u) * float64(m.width)
	y := wrapUnit(v) * float64(m.height)

	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	tx := x - float64(x0)
	ty := y - float64(y0)

	v00 := m.get(x0, y0)
	v10 := m.get(x0+1, y0)
	v01 := m.get(x0, y0+1)
	v11 := m.get(x0+1, y0+1)

	return clamp01(lerp(lerp(v00, v10, tx), lerp(v01, v11, tx), ty))
}
