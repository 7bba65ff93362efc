package hbao

import (
	"ao-engine/core"
	"ao-engine/math"
)

const (
	// Directions is the number of jittered screen-space directions per pixel.
	Directions = 4
	// Steps bounds the march along one direction.
	Steps = 6
	// MaxSamples is the worst-case number of depth fetches per pixel.
	MaxSamples = Directions * Steps

	gapAngle = 90 * math.DegToRad
)

// HorizonOcclusion marches Directions rays from uv and returns the visibility
// term (1 = unoccluded, raised to Intensity) together with the number of
// depth samples taken.
func HorizonOcclusion(surf Surface, u Uniforms, uv math.Vec2, normal math.Vec3, random float32) (float32, int) {
	origin := surf.Position(uv)
	viewport := u.ViewportVec()
	base := math.NewVec2(1, 0)

	var ao float32
	samples := 0
	for i := 0; i < Directions; i++ {
		dir := base.Rotate(gapAngle * (float32(i) + random))

		var local float32
		step := u.StepSize
		for j := 0; j < Steps; j++ {
			coords := uv.Add(dir.Mul(step).DivVec(viewport))
			if !coords.InUnitSquare() {
				break
			}

			samples++
			diff := surf.Position(coords).Sub(origin)
			length := diff.Length()
			// Written as a negated <= so that NaN distances also stop the march.
			if !(length <= u.LenCap) {
				break
			}

			dot := math.Saturate(normal.Dot(diff.Normalize()))
			weight := length / u.LenCap
			weight = 1 - weight*weight
			if dot < u.Bias {
				dot = 0
			}

			local = math.Max(local, dot*weight)
			step += u.StepSize
		}
		ao += local
	}

	ao /= Directions
	ao = 1 - math.Saturate(ao)
	return math.Pow(ao, u.Intensity), samples
}

// GeneratePixel evaluates the generate program for one pixel. ddx and ddy
// are the screen-space derivatives of the view-space position at uv.
func GeneratePixel(surf Surface, noise Sampler, u Uniforms, uv math.Vec2, ddx, ddy math.Vec3) core.Color {
	normal := EstimateNormal(ddx, ddy)
	random := math.Saturate(noise.Sample(uv.MulVec(u.NoiseScale)).R)

	ao, _ := HorizonOcclusion(surf, u, uv, normal, random)
	return core.Gray(ao)
}

// NoiseScale tiles a noise texture of the given size over the viewport.
func NoiseScale(viewport, noise core.Size) math.Vec2 {
	return math.NewVec2(
		float32(viewport.Width)/float32(noise.Width),
		float32(viewport.Height)/float32(noise.Height),
	)
}
