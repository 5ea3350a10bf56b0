package terrain

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"planetforge/internal/config"
)

// PlateSample describes the tectonic stress at a point. Convergence,
// divergence and shear are the only channels through which plate motion
// shapes the surface; no plate ever moves at runtime.
type PlateSample struct {
	PlateID     int
	Drift       mgl64.Vec2
	Convergence float64
	Divergence  float64
	Shear       float64
}

// PlateInfo summarizes one tectonic plate of the discrete Voronoi partition.
type PlateInfo struct {
	ID        int
	SiteIndex int
	Centroid  mgl64.Vec2
	Drift     mgl64.Vec2
	Area      float64
	Neighbors []int
}

// PlateBoundary accumulates the shared border between two plates.
type PlateBoundary struct {
	Plates        [2]int
	Length        float64
	Normal        mgl64.Vec2
	RelativeDrift mgl64.Vec2
}

// PlateMap is a nearest-site assignment grid over the unit torus: a discrete
// Voronoi diagram of the continent sites, with per-pair boundary statistics.
type PlateMap struct {
	width      int
	height     int
	assignment []int
	plates     []PlateInfo
	boundaries []PlateBoundary
}

func emptyPlateMap() *PlateMap {
	return &PlateMap{}
}

// generatePlateMap assigns every grid cell to its closest continent site
// under toroidal distance and accumulates boundary length and averaged
// normals for every adjacent plate pair.
func generatePlateMap(cfg *config.WorldGenConfig, sites []ContinentSite) *PlateMap {
	if len(sites) == 0 {
		return emptyPlateMap()
	}

	resolution := int(math.Round(clamp(cfg.PlanetSize/96, 64, 512)))
	if resolution < 4 {
		resolution = 4
	}
	width, height := resolution, resolution

	assignment := make([]int, width*height)
	accumU := make([]float64, len(sites))
	accumV := make([]float64, len(sites))
	accumCount := make([]float64, len(sites))

	for y := 0; y < height; y++ {
		v := (float64(y) + 0.5) / float64(height)
		for x := 0; x < width; x++ {
			u := (float64(x) + 0.5) / float64(width)
			best := nearestSite(u, v, sites)
			assignment[y*width+x] = best
			accumU[best] += u
			accumV[best] += v
			accumCount[best]++
		}
	}

	type boundaryAccum struct {
		length float64
		normal mgl64.Vec2
	}
	neighborSets := make([]map[int]struct{}, len(sites))
	for i := range neighborSets {
		neighborSets[i] = make(map[int]struct{})
	}
	boundaryMap := make(map[[2]int]*boundaryAccum)

	cellPos := func(x, y int) mgl64.Vec2 {
		return mgl64.Vec2{
			(float64(wrapIndex(x, width)) + 0.5) / float64(width),
			(float64(wrapIndex(y, height)) + 0.5) / float64(height),
		}
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			a := assignment[y*width+x]
			current := cellPos(x, y)

			neighbors := [2][2]int{{(x + 1) % width, y}, {x, (y + 1) % height}}
			for _, n := range neighbors {
				b := assignment[n[1]*width+n[0]]
				if a == b {
					continue
				}

				key := [2]int{a, b}
				if key[0] > key[1] {
					key[0], key[1] = key[1], key[0]
				}
				entry := boundaryMap[key]
				if entry == nil {
					entry = &boundaryAccum{}
					boundaryMap[key] = entry
				}

				neighborPos := cellPos(n[0], n[1])
				edge := mgl64.Vec2{
					torusDelta(current.X(), neighborPos.X()),
					torusDelta(current.Y(), neighborPos.Y()),
				}
				length := math.Max(edge.Len(), 1e-9)
				edge = edge.Mul(1 / length)

				entry.length += length
				entry.normal = entry.normal.Add(mgl64.Vec2{-edge.Y(), edge.X()})

				neighborSets[a][b] = struct{}{}
				neighborSets[b][a] = struct{}{}
			}
		}
	}

	plates := make([]PlateInfo, len(sites))
	for i := range sites {
		count := math.Max(accumCount[i], 1)
		neighbors := make([]int, 0, len(neighborSets[i]))
		for n := range neighborSets[i] {
			neighbors = append(neighbors, n)
		}
		sort.Ints(neighbors)
		plates[i] = PlateInfo{
			ID:        i,
			SiteIndex: i,
			Centroid:  wrapVec(mgl64.Vec2{accumU[i] / count, accumV[i] / count}),
			Drift:     sites[i].Drift,
			Area:      count / float64(width*height),
			Neighbors: neighbors,
		}
	}

	boundaries := make([]PlateBoundary, 0, len(boundaryMap))
	for key, accum := range boundaryMap {
		normal := mgl64.Vec2{0, 1}
		if accum.normal.Dot(accum.normal) > 1e-18 {
			normal = normalizeOrZero(accum.normal)
		}
		boundaries = append(boundaries, PlateBoundary{
			Plates:        key,
			Length:        accum.length,
			Normal:        normal,
			RelativeDrift: plates[key[1]].Drift.Sub(plates[key[0]].Drift),
		})
	}
	sort.Slice(boundaries, func(i, j int) bool {
		if boundaries[i].Plates[0] != boundaries[j].Plates[0] {
			return boundaries[i].Plates[0] < boundaries[j].Plates[0]
		}
		return boundaries[i].Plates[1] < boundaries[j].Plates[1]
	})

	return &PlateMap{
		width:      width,
		height:     height,
		assignment: assignment,
		plates:     plates,
		boundaries: boundaries,
	}
}

func nearestSite(u, v float64, sites []ContinentSite) int {
	best := 0
	bestDist := math.MaxFloat64
	for i := range sites {
		du := torusDistance(u, sites[i].Position.X())
		dv := torusDistance(v, sites[i].Position.Y())
		dist := du*du + dv*dv
		if dist < bestDist {
			bestDist = dist
			best = i
		}
	}
	return best
}

// Sample returns the plate stress at (u, v). It walks the 3x3 cell
// neighborhood for the nearest cell belonging to a different plate and
// projects the relative drift onto that boundary's normal and tangent.
func (m *PlateMap) Sample(u, v float64) PlateSample {
	if len(m.plates) == 0 || m.width == 0 || m.height == 0 {
		return PlateSample{}
	}

	xf := wrapUnit(u) * float64(m.width)
	yf := wrapUnit(v) * float64(m.height)
	x := int(math.Floor(xf))
	y := int(math.Floor(yf))

	xi := wrapIndex(x, m.width)
	yi := wrapIndex(y, m.height)
	primary := m.assignment[yi*m.width+xi]
	primaryInfo := &m.plates[primary]

	current := mgl64.Vec2{
		(float64(xi) + 0.5) / float64(m.width),
		(float64(yi) + 0.5) / float64(m.height),
	}

	sample := PlateSample{PlateID: primary, Drift: primaryInfo.Drift}
	bestWeight := 0.0

	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}

			nx := wrapIndex(x+dx, m.width)
			ny := wrapIndex(y+dy, m.height)
			other := m.assignment[ny*m.width+nx]
			if other == primary {
				continue
			}

			neighborPos := mgl64.Vec2{
				(float64(nx) + 0.5) / float64(m.width),
				(float64(ny) + 0.5) / float64(m.height),
			}
			edge := mgl64.Vec2{
				torusDelta(current.X(), neighborPos.X()),
				torusDelta(current.Y(), neighborPos.Y()),
			}
			distance := edge.Len()
			if distance <= 1e-9 {
				continue
			}
			weight := 1 / distance
			if weight <= bestWeight {
				continue
			}

			edge = edge.Mul(1 / distance)
			normal := mgl64.Vec2{-edge.Y(), edge.X()}
			relative := m.plates[other].Drift.Sub(primaryInfo.Drift)

			sample.Convergence = math.Max(relative.Dot(normal), 0)
			sample.Divergence = math.Max(-relative.Dot(normal), 0)
			sample.Shear = math.Abs(relative.Dot(edge))
			bestWeight = weight
		}
	}

	return sample
}

// PlateIndex returns the plate owning the cell containing (u, v).
func (m *PlateMap) PlateIndex(u, v float64) int {
	if len(m.plates) == 0 || m.width == 0 || m.height == 0 {
		return 0
	}
	x := wrapIndex(int(math.Floor(wrapUnit(u)*float64(m.width))), m.width)
	y := wrapIndex(int(math.Floor(wrapUnit(v)*float64(m.height))), m.height)
	return m.assignment[y*m.width+x]
}

// Plates exposes the plate summaries, mainly for inspection tooling.
func (m *PlateMap) Plates() []PlateInfo {
	return m.plates
}

// Boundaries exposes the accumulated plate boundaries.
func (m *PlateMap) Boundaries() []PlateBoundary {
	return m.boundaries
}
