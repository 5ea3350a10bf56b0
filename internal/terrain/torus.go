package terrain

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// wrapUnit maps a value into [0, 1) with flooring semantics for negatives.
func wrapUnit(v float64) float64 {
	v = math.Mod(v, 1)
	if v < 0 {
		v += 1
	}
	return v
}

// wrapVec wraps both components of a UV position onto the unit torus.
func wrapVec(v mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{wrapUnit(v.X()), wrapUnit(v.Y())}
}

// torusDelta is the signed shortest difference b-a on the unit circle.
func torusDelta(a, b float64) float64 {
	diff := b - a
	if diff > 0.5 {
		diff -= 1
	} else if diff < -0.5 {
		diff += 1
	}
	return diff
}

// torusDistance is the unsigned shortest distance between a and b on the unit circle.
func torusDistance(a, b float64) float64 {
	diff := math.Abs(a - b)
	diff -= math.Floor(diff)
	if diff > 0.5 {
		return 1 - diff
	}
	return diff
}

// wrapIndex maps an integer index onto [0, size).
func wrapIndex(value, size int) int {
	v := value % size
	if v < 0 {
		v += size
	}
	return v
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

func rotateVec(v mgl64.Vec2, radians float64) mgl64.Vec2 {
	sin, cos := math.Sincos(radians)
	return mgl64.Vec2{v.X()*cos - v.Y()*sin, v.X()*sin + v.Y()*cos}
}

// normalizeOrZero normalizes v, returning the zero vector when v has no length.
func normalizeOrZero(v mgl64.Vec2) mgl64.Vec2 {
	lenSq := v.Dot(v)
	if lenSq <= 1e-18 {
		return mgl64.Vec2{}
	}
	inv := 1 / math.Sqrt(lenSq)
	return mgl64.Vec2{v.X() * inv, v.Y() * inv}
}

func celsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

func lerpColor(a, b [3]uint8, t float64) [3]uint8 {
	t = clamp01(t)
	return [3]uint8{
		uint8(lerp(float64(a[0]), float64(b[0]), t)),
		uint8(lerp(float64(a[1]), float64(b[1]), t)),
		uint8(lerp(float64(a[2]), float64(b[2]), t)),
	}
}
