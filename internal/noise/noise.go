// Package noise evaluates seamless fractal noise on the unit torus. Sampling
// maps (u, v) to an angle pair and evaluates 4D simplex noise at
// (sin θ, cos θ, sin φ, cos φ), so the field tiles exactly at the wrap edges.
package noise

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
	opensimplex "github.com/ojrac/opensimplex-go"
)

const tau = 2 * math.Pi

// Source is a 4D-capable noise field.
type Source = opensimplex.Noise

// New returns a deterministic noise source for the given seed.
func New(seed int64) Source {
	return opensimplex.New(seed)
}

// DeriveSeed produces a stable sub-seed for a named subsystem so that the
// separate noise fields of one world never correlate.
func DeriveSeed(worldSeed int64, label string) int64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(worldSeed))
	digest := xxhash.New()
	digest.Write(buf[:])
	digest.WriteString(label)
	return int64(digest.Sum64())
}

// Periodic samples the source at (u, v) with the given number of cycles per
// wrap. The result is perfectly periodic in both axes.
func Periodic(n Source, u, v, cycles float64) float64 {
	theta := u * cycles * tau
	phi := v * cycles * tau
	return n.Eval4(math.Sin(theta), math.Cos(theta), math.Sin(phi), math.Cos(phi))
}

// Torus is Periodic with an extra phase angle mixed into the second axis,
// used to decorrelate repeated samples along a path.
func Torus(n Source, u, v, cycles, extra float64) float64 {
	if cycles <= 1e-9 {
		return 0
	}
	if cycles < 0.01 {
		cycles = 0.01
	}
	theta := u * cycles * tau
	phi := v * cycles * tau
	extraAngle := extra * tau
	return n.Eval4(
		math.Sin(theta),
		math.Cos(theta),
		math.Sin(phi)+math.Sin(extraAngle)*0.35,
		math.Cos(phi)+math.Cos(extraAngle)*0.35,
	)
}

// FractalPeriodic sums octaves of Periodic with frequency scaled by
// lacunarity and amplitude by gain per octave, normalized by the total
// amplitude so the result stays within [-1, 1].
func FractalPeriodic(n Source, u, v, baseCycles float64, octaves int, lacunarity, gain float64) float64 {
	frequency := baseCycles
	if frequency < 0.0001 {
		frequency = 0.0001
	}
	amplitude := 1.0
	sum := 0.0
	norm := 0.0

	for i := 0; i < octaves; i++ {
		sum += Periodic(n, u, v, frequency) * amplitude
		norm += amplitude
		frequency *= lacunarity
		amplitude *= gain
	}

	if norm == 0 {
		return 0
	}
	return sum / norm
}

// World blends world-space coordinates with the periodic wrap so features
// keep a constant physical size regardless of planet size while still tiling
// at the planet edges. Callers must canonicalize world coordinates into
// [0, planetSize) for exact wraparound equality.
func World(n Source, worldX, worldZ, scale, planetSize float64) float64 {
	x := worldX / scale
	z := worldZ / scale

	theta := worldX / planetSize * tau
	phi := worldZ / planetSize * tau

	return n.Eval4(
		math.Sin(theta)+x*0.1,
		math.Cos(theta)+x*0.1,
		math.Sin(phi)+z*0.1,
		math.Cos(phi)+z*0.1,
	)
}
