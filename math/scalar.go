package math

import "math"

// DegToRad converts degrees to radians.
const DegToRad = float32(math.Pi / 180.0)

// Clamp limits x to [lo, hi]. NaN is passed through, as with GLSL clamp.
func Clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Saturate clamps x to [0,1].
func Saturate(x float32) float32 {
	return Clamp(x, 0, 1)
}

func Pow(x, y float32) float32 {
	return float32(math.Pow(float64(x), float64(y)))
}

func Max(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
