package hbao

import (
	"ao-engine/core"
	"ao-engine/math"
)

// BlurWeights is a 9-tap binomial kernel (row 8 of Pascal's triangle / 256).
var BlurWeights = [9]float32{
	0.00390625, 0.03125, 0.109375, 0.21875,
	0.2734375,
	0.21875, 0.109375, 0.03125, 0.00390625,
}

// Axis is the direction of one separable blur pass.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

// BlurPixel convolves src along axis around uv. Tap spacing is
// KernelSize / viewport dimension.
func BlurPixel(src Sampler, u Uniforms, uv math.Vec2, axis Axis) core.Color {
	var delta math.Vec2
	if axis == AxisX {
		delta = math.NewVec2(u.KernelSize/float32(u.Viewport.Width), 0)
	} else {
		delta = math.NewVec2(0, u.KernelSize/float32(u.Viewport.Height))
	}

	half := len(BlurWeights) / 2
	var sum core.Color
	for k, w := range BlurWeights {
		offset := delta.Mul(float32(k - half))
		sum = sum.Add(src.Sample(uv.Add(offset)).Scale(w))
	}
	return sum
}

// BlurAxis maps a blur pass to its axis.
func BlurAxis(p PassID) Axis {
	if p == PassBlurY {
		return AxisY
	}
	return AxisX
}
