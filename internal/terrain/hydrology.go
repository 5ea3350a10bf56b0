package terrain

import (
	"log"
	"math"
	"sort"

	"planetforge/internal/config"
)

// HydrologySample is the blended water state at a world position.
type HydrologySample struct {
	ChannelDepth   float64
	WaterLevel     float64
	RiverIntensity float64
	LakeIntensity  float64
	MajorRiver     float64
	Rainfall       float64
	CoastalFactor  float64
}

// HydrologyMap routes rainfall downhill over a coarse height grid and carves
// river and lake channels where accumulated discharge crosses the configured
// thresholds. The grid is built once and bilinearly sampled afterwards.
//
// Flow routing is single-direction (D8): each land cell drains to the lowest
// of its 8 toroidal neighbors, strictly lower heights only. Ties keep the
// first neighbor in scan order, so routing is deterministic and never depends
// on iteration order. Cells at or below sea level are ocean sinks.
type HydrologyMap struct {
	width      int
	height     int
	planetSize float64
	seaLevel   float64

	baseHeight   []float64
	rainfall     []float64
	flow         []float64
	downstream   []int32
	channelDepth []float64
	waterLevel   []float64
	riverMask    []float64
	lakeMask     []float64
	majorWeight  []float64
	coastal      []float64
}

const noDownstream = int32(-1)

// coastalSearchRadius bounds the ring search for the coastal-proximity field,
// in grid cells.
const coastalSearchRadius = 8

func emptyHydrologyMap(seaLevel float64) *HydrologyMap {
	return &HydrologyMap{seaLevel: seaLevel}
}

// generateHydrology builds the full water network. heightFn must be the
// terrain's base height, excluding hydrology feedback, so the solver's input
// is well defined.
func generateHydrology(cfg *config.WorldGenConfig, heightFn, rainFn func(x, z float64) float64) *HydrologyMap {
	resolution := cfg.HydrologyResolution
	if resolution < 128 {
		resolution = 128
	}
	if resolution > 4096 {
		resolution = 4096
	}

	m := &HydrologyMap{
		width:      resolution,
		height:     resolution,
		planetSize: math.Max(cfg.PlanetSize, 1),
		seaLevel:   cfg.SeaLevel,
	}
	cells := resolution * resolution
	m.baseHeight = make([]float64, cells)
	m.rainfall = make([]float64, cells)
	m.flow = make([]float64, cells)
	m.downstream = make([]int32, cells)
	m.channelDepth = make([]float64, cells)
	m.waterLevel = make([]float64, cells)
	m.riverMask = make([]float64, cells)
	m.lakeMask = make([]float64, cells)
	m.majorWeight = make([]float64, cells)
	m.coastal = make([]float64, cells)

	cellSize := m.planetSize / float64(resolution)
	for y := 0; y < resolution; y++ {
		worldZ := (float64(y) + 0.5) * cellSize
		for x := 0; x < resolution; x++ {
			worldX := (float64(x) + 0.5) * cellSize
			idx := y*resolution + x
			m.baseHeight[idx] = heightFn(worldX, worldZ)
			m.rainfall[idx] = math.Max(rainFn(worldX, worldZ), 0)
			m.waterLevel[idx] = cfg.SeaLevel
		}
	}

	m.computeDownstream()
	order := m.descendingHeightOrder()
	m.selectMajorRivers(cfg, order)
	m.accumulateFlow(cfg, order)
	m.computeCoastalFactor()

	log.Printf("hydrology: %dx%d grid, %d river cells, %d lake cells",
		resolution, resolution, countPositive(m.riverMask), countPositive(m.lakeMask))
	return m
}

func countPositive(values []float64) int {
	n := 0
	for _, v := range values {
		if v > 0 {
			n++
		}
	}
	return n
}

var neighborOffsets = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// computeDownstream picks each land cell's unique downstream neighbor: the
// strictly lowest of its 8 toroidal neighbors. Local minima keep none.
func (m *HydrologyMap) computeDownstream() {
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			idx := y*m.width + x
			h := m.baseHeight[idx]
			if h <= m.seaLevel {
				m.downstream[idx] = noDownstream
				continue
			}

			best := noDownstream
			bestHeight := h
			for _, off := range neighborOffsets {
				nx := wrapIndex(x+off[0], m.width)
				ny := wrapIndex(y+off[1], m.height)
				nIdx := int32(ny*m.width + nx)
				nh := m.baseHeight[nIdx]
				if nh < bestHeight {
					bestHeight = nh
					best = nIdx
				}
			}
			m.downstream[idx] = best
		}
	}
}

// descendingHeightOrder is a valid topological order for the flow DAG: water
// only moves to strictly lower cells, so processing from highest to lowest
// finalizes every cell's inflow before it is pushed downstream. Equal heights
// order by index to stay deterministic.
func (m *HydrologyMap) descendingHeightOrder() []int32 {
	order := make([]int32, len(m.baseHeight))
	for i := range order {
		order[i] = int32(i)
	}
	sort.SliceStable(order, func(a, b int) bool {
		ha, hb := m.baseHeight[order[a]], m.baseHeight[order[b]]
		if ha != hb {
			return ha > hb
		}
		return order[a] < order[b]
	})
	return order
}

// selectMajorRivers picks the highest mountain-interior cells whose
// downstream chain reaches the ocean within a bounded number of steps and
// stamps a persistent weight along each successful path. Stamped cells later
// receive extra discharge and guaranteed channel formation.
func (m *HydrologyMap) selectMajorRivers(cfg *config.WorldGenConfig, order []int32) {
	target := cfg.MajorRiverCount
	if target <= 0 {
		return
	}

	maxSteps := 4 * m.width
	minSourceGap := m.width / 16
	if minSourceGap < 4 {
		minSourceGap = 4
	}
	var sources [][2]int

	chosen := 0
	for _, idx := range order {
		if chosen >= target {
			break
		}
		if m.baseHeight[idx] <= m.seaLevel {
			break
		}

		x := int(idx) % m.width
		y := int(idx) / m.width
		tooClose := false
		for _, s := range sources {
			dx := wrapIndex(x-s[0]+m.width/2, m.width) - m.width/2
			dy := wrapIndex(y-s[1]+m.height/2, m.height) - m.height/2
			if dx*dx+dy*dy < minSourceGap*minSourceGap {
				tooClose = true
				break
			}
		}
		if tooClose {
			continue
		}

		path := m.traceToOcean(idx, maxSteps)
		if path == nil {
			continue
		}
		for _, cell := range path {
			m.majorWeight[cell] = 1
		}
		sources = append(sources, [2]int{x, y})
		chosen++
	}
}

// traceToOcean walks the downstream chain from start. It returns the visited
// cells when the chain reaches a cell at or below sea level within maxSteps,
// nil otherwise.
func (m *HydrologyMap) traceToOcean(start int32, maxSteps int) []int32 {
	path := []int32{start}
	current := start
	for step := 0; step < maxSteps; step++ {
		next := m.downstream[current]
		if next == noDownstream {
			if m.baseHeight[current] <= m.seaLevel {
				return path
			}
			return nil
		}
		path = append(path, next)
		if m.baseHeight[next] <= m.seaLevel {
			return path
		}
		current = next
	}
	return nil
}

// accumulateFlow pushes rainfall downstream in descending height order and
// carves channels once discharge crosses the thresholds. Water is only ever
// summed downstream; it leaves the system by becoming a river, pooling into
// a lake, or reaching an ocean sink.
func (m *HydrologyMap) accumulateFlow(cfg *config.WorldGenConfig, order []int32) {
	inflow := make([]float64, len(m.baseHeight))

	for _, idx := range order {
		h := m.baseHeight[idx]
		if h <= m.seaLevel {
			// Ocean sink: record arriving water, propagate nothing.
			m.flow[idx] = inflow[idx]
			continue
		}

		water := inflow[idx] + m.rainfall[idx] + m.majorWeight[idx]*cfg.MajorRiverBoost
		m.flow[idx] = water

		major := m.majorWeight[idx]
		if water >= cfg.RiverFlowThreshold || major > 0.5 {
			mult := 1 + major*0.5
			depth := math.Min(water*cfg.RiverDepthScale*mult, cfg.RiverMaxDepth)
			m.channelDepth[idx] = depth
			m.riverMask[idx] = 1
			bed := h - depth
			m.waterLevel[idx] = math.Max(bed+depth*cfg.RiverSurfaceRatio, m.seaLevel)
		}

		down := m.downstream[idx]
		if down != noDownstream {
			inflow[down] += water
			continue
		}

		// Basin: water pools instead of flowing on.
		if water >= cfg.LakeFlowThreshold {
			m.lakeMask[idx] = 1
			m.channelDepth[idx] = math.Max(m.channelDepth[idx], cfg.LakeDepth)
			m.waterLevel[idx] = h
		}
	}
}

// computeCoastalFactor assigns each land cell a [0,1] proximity to the
// nearest ocean cell within the search radius.
func (m *HydrologyMap) computeCoastalFactor() {
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			idx := y*m.width + x
			if m.baseHeight[idx] <= m.seaLevel {
				m.coastal[idx] = 1
				continue
			}

			found := 0.0
			for r := 1; r <= coastalSearchRadius; r++ {
				if m.ringTouchesOcean(x, y, r) {
					found = 1 - float64(r-1)/float64(coastalSearchRadius)
					break
				}
			}
			m.coastal[idx] = found
		}
	}
}

func (m *HydrologyMap) ringTouchesOcean(cx, cy, r int) bool {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx > -r && dx < r && dy > -r && dy < r {
				continue
			}
			nx := wrapIndex(cx+dx, m.width)
			ny := wrapIndex(cy+dy, m.height)
			if m.baseHeight[ny*m.width+nx] <= m.seaLevel {
				return true
			}
		}
	}
	return false
}

func (m *HydrologyMap) index(x, y int) int {
	return wrapIndex(y, m.height)*m.width + wrapIndex(x, m.width)
}

// Sample bilinearly interpolates the water grids at a world position. A
// coverage value gates how strongly depth and water level apply so channel
// edges fade smoothly instead of stair-stepping.
func (m *HydrologyMap) Sample(worldX, worldZ float64) HydrologySample {
	if m.width == 0 || m.height == 0 {
		return HydrologySample{WaterLevel: m.seaLevel}
	}

	u := wrapUnit(worldX / m.planetSize)
	v := wrapUnit(worldZ / m.planetSize)
	fx := u * float64(m.width)
	fy := v * float64(m.height)
	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	bilinear := func(values []float64) float64 {
		v00 := values[m.index(x0, y0)]
		v10 := values[m.index(x0+1, y0)]
		v01 := values[m.index(x0, y0+1)]
		v11 := values[m.index(x0+1, y0+1)]
		return lerp(lerp(v00, v10, tx), lerp(v01, v11, tx), ty)
	}

	river := clamp01(bilinear(m.riverMask))
	lake := clamp01(bilinear(m.lakeMask))
	if river < 0.01 {
		river = 0
	}
	if lake < 0.01 {
		lake = 0
	}
	coverage := math.Max(river, lake)

	depth := math.Max(bilinear(m.channelDepth), 0) * coverage
	waterLevel := m.seaLevel + (bilinear(m.waterLevel)-m.seaLevel)*coverage

	return HydrologySample{
		ChannelDepth:   depth,
		WaterLevel:     waterLevel,
		RiverIntensity: river,
		LakeIntensity:  lake,
		MajorRiver:     clamp01(bilinear(m.majorWeight)),
		Rainfall:       math.Max(bilinear(m.rainfall), 0),
		CoastalFactor:  clamp01(bilinear(m.coastal)),
	}
}

// FlowAt exposes the accumulated discharge of a grid cell, used by tests and
// inspection tooling.
func (m *HydrologyMap) FlowAt(x, y int) float64 {
	if m.width == 0 || m.height == 0 {
		return 0
	}
	return m.flow[m.index(x, y)]
}

// DownstreamAt returns the downstream cell coordinates of (x, y) and whether
// the cell has one.
func (m *HydrologyMap) DownstreamAt(x, y int) (int, int, bool) {
	if m.width == 0 || m.height == 0 {
		return 0, 0, false
	}
	down := m.downstream[m.index(x, y)]
	if down == noDownstream {
		return 0, 0, false
	}
	return int(down) % m.width, int(down) / m.width, true
}

// Resolution returns the grid dimensions.
func (m *HydrologyMap) Resolution() (int, int) {
	return m.width, m.height
}
