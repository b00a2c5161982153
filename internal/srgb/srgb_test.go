package srgb

import (
	"math"
	"testing"
)

func TestToLinear_Endpoints(t *testing.T) {
	if got := ToLinear(0); got != 0 {
		t.Errorf("ToLinear(0) = %v", got)
	}
	if got := ToLinear(255); got != 1 {
		t.Errorf("ToLinear(255) = %v", got)
	}
}

func TestToLinear_MatchesFormula(t *testing.T) {
	for b := 0; b < 256; b++ {
		v := float64(b) / 255
		var want float64
		if v <= 0.04045 {
			want = v / 12.92
		} else {
			want = math.Pow((v+0.055)/1.055, 2.4)
		}
		if got := ToLinear(uint8(b)); got != want {
			t.Fatalf("ToLinear(%d) = %v, want %v", b, got, want)
		}
	}
}

func TestToLinear_Monotonic(t *testing.T) {
	prev := -1.0
	for b := 0; b < 256; b++ {
		v := ToLinear(uint8(b))
		if v <= prev {
			t.Fatalf("not increasing at %d: %v <= %v", b, v, prev)
		}
		prev = v
	}
}

func TestFromLinear_Clamps(t *testing.T) {
	for _, v := range []float64{-5, -0.0001, math.Inf(-1)} {
		if got := FromLinear(v); got != 0 {
			t.Errorf("FromLinear(%v) = %d, want 0", v, got)
		}
	}
	for _, v := range []float64{1, 1.0001, 42, math.Inf(1)} {
		if got := FromLinear(v); got != 255 {
			t.Errorf("FromLinear(%v) = %d, want 255", v, got)
		}
	}
}

func TestFromLinear_LinearSegment(t *testing.T) {
	// 0.001*12.92*255 = 3.2946 -> 3
	if got := FromLinear(0.001); got != 3 {
		t.Errorf("FromLinear(0.001) = %d, want 3", got)
	}
}

func TestInversePair(t *testing.T) {
	for b := 0; b < 256; b++ {
		got := int(FromLinear(ToLinear(uint8(b))))
		if d := got - b; d < -1 || d > 1 {
			t.Errorf("FromLinear(ToLinear(%d)) = %d", b, got)
		}
	}
}

func TestSignPow(t *testing.T) {
	cases := []struct{ v, exp, want float64 }{
		{4, 0.5, 2},
		{-4, 0.5, -2},
		{-0.5, 2, -0.25},
		{0.5, 2, 0.25},
		{0, 0.5, 0},
		{0, 2, 0},
	}
	for _, c := range cases {
		if got := SignPow(c.v, c.exp); got != c.want {
			t.Errorf("SignPow(%v, %v) = %v, want %v", c.v, c.exp, got, c.want)
		}
	}
}
