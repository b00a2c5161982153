// Package srgb converts single 8-bit sRGB channel values to linear light and
// back using the piecewise sRGB transfer curve.
package srgb

import "math"

// toLinear is indexed by the sRGB byte. Built from the exact formula, so a
// lookup is bit-identical to evaluating it.
var toLinear [256]float64

func init() {
	for i := range toLinear {
		toLinear[i] = linearOf(i)
	}
}

func linearOf(b int) float64 {
	v := float64(b) / 255
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// ToLinear maps an sRGB byte to linear intensity in [0, 1].
func ToLinear(b uint8) float64 {
	return toLinear[b]
}

// FromLinear maps a linear intensity to an sRGB byte. Input is clamped to
// [0, 1]; rounding is int(x+0.5), not round-half-even.
func FromLinear(v float64) uint8 {
	v = math.Max(0, math.Min(1, v))
	if v <= 0.0031308 {
		return uint8(int(v*12.92*255 + 0.5))
	}
	return uint8(int((1.055*math.Pow(v, 1/2.4)-0.055)*255 + 0.5))
}

// SignPow raises |v| to exp and restores the sign of v.
func SignPow(v, exp float64) float64 {
	return math.Copysign(math.Pow(math.Abs(v), exp), v)
}
