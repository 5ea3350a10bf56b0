package terrain

import (
	"math"
	"testing"
)

func TestWrapUnit(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{0, 0},
		{0.25, 0.25},
		{1, 0},
		{1.75, 0.75},
		{-0.25, 0.75},
		{-3.5, 0.5},
	}
	for _, tc := range cases {
		if got := wrapUnit(tc.in); math.Abs(got-tc.want) > 1e-12 {
			t.Errorf("wrapUnit(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestTorusDelta(t *testing.T) {
	if got := torusDelta(0.1, 0.9); math.Abs(got-(-0.2)) > 1e-12 {
		t.Errorf("torusDelta(0.1, 0.9) = %v, want -0.2", got)
	}
	if got := torusDelta(0.9, 0.1); math.Abs(got-0.2) > 1e-12 {
		t.Errorf("torusDelta(0.9, 0.1) = %v, want 0.2", got)
	}
	if got := torusDistance(0.05, 0.95); math.Abs(got-0.1) > 1e-12 {
		t.Errorf("torusDistance(0.05, 0.95) = %v, want 0.1", got)
	}
}

func TestWrapIndex(t *testing.T) {
	cases := []struct{ v, size, want int }{
		{0, 8, 0},
		{7, 8, 7},
		{8, 8, 0},
		{-1, 8, 7},
		{-9, 8, 7},
		{17, 8, 1},
	}
	for _, tc := range cases {
		if got := wrapIndex(tc.v, tc.size); got != tc.want {
			t.Errorf("wrapIndex(%d, %d) = %d, want %d", tc.v, tc.size, got, tc.want)
		}
	}
}

func TestClampHelpers(t *testing.T) {
	if clamp(5, 0, 3) != 3 || clamp(-1, 0, 3) != 0 || clamp(2, 0, 3) != 2 {
		t.Errorf("clamp misbehaves")
	}
	if clamp01(1.5) != 1 || clamp01(-0.5) != 0 {
		t.Errorf("clamp01 misbehaves")
	}
	if lerp(0, 10, 0.25) != 2.5 {
		t.Errorf("lerp misbehaves")
	}
}

func TestLerpColor(t *testing.T) {
	a := [3]uint8{0, 100, 200}
	b := [3]uint8{100, 200, 0}
	mid := lerpColor(a, b, 0.5)
	if mid[0] != 50 || mid[1] != 150 || mid[2] != 100 {
		t.Errorf("lerpColor mid = %v", mid)
	}
	if lerpColor(a, b, 0) != a || lerpColor(a, b, 1) != b {
		t.Errorf("lerpColor endpoints drift")
	}
}
