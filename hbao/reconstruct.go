package hbao

import "ao-engine/math"

// ScreenToClip maps a [0,1]² screen coordinate to clip-space XY. Screen Y
// grows downwards with the buffer rows, so it is flipped.
func ScreenToClip(uv math.Vec2) math.Vec2 {
	return math.NewVec2(uv.X*2-1, (1-uv.Y)*2-1)
}

// ViewPosition reconstructs the homogeneous view-space position of a depth
// sample. The depth is used as clip Z as-is.
func ViewPosition(uv math.Vec2, depth float32, invProj math.Mat4) math.Vec4 {
	c := ScreenToClip(uv)
	return math.NewVec4(c.X, c.Y, depth, 1).MulMat(invProj).DivW()
}

// EstimateNormal builds the surface normal from the screen-space derivatives
// of the view-space position.
func EstimateNormal(ddx, ddy math.Vec3) math.Vec3 {
	return ddy.Cross(ddx).Normalize()
}

// Surface reconstructs view-space positions from a depth buffer.
type Surface struct {
	Depth             Sampler
	InverseProjection math.Mat4
}

func (s Surface) Position(uv math.Vec2) math.Vec3 {
	return ViewPosition(uv, s.Depth.Sample(uv).R, s.InverseProjection).ToVec3()
}
