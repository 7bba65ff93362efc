package hbao

import (
	"errors"
	"fmt"

	"ao-engine/core"
	"ao-engine/math"
)

// PassID selects one of the fixed programs of the effect.
type PassID int

const (
	PassGenerate PassID = iota
	PassBlurX
	PassBlurY
	PassComposite
)

// Passes lists the programs in dispatch order.
var Passes = [...]PassID{PassGenerate, PassBlurX, PassBlurY, PassComposite}

func (p PassID) String() string {
	switch p {
	case PassGenerate:
		return "generate"
	case PassBlurX:
		return "blur-x"
	case PassBlurY:
		return "blur-y"
	case PassComposite:
		return "composite"
	}
	return fmt.Sprintf("PassID(%d)", int(p))
}

// ErrUnsupportedTexture is returned by a Backend handed a texture it did not
// create and cannot sample.
var ErrUnsupportedTexture = errors.New("hbao: unsupported texture type")

// Texture is any sampleable image a Backend understands.
type Texture interface {
	Size() core.Size
}

// Target is a render target allocated by a Backend. Targets are also
// Textures so that one pass can read what the previous one wrote.
type Target interface {
	Texture
}

// Bindings are the textures visible to a program. Unused slots may be nil.
type Bindings struct {
	// Color is the scene color buffer.
	Color Texture
	// Depth is the scene depth buffer in its native range.
	Depth Texture
	// Noise is the tiling rotation noise.
	Noise Texture
	// Source is the previous pass output: raw AO for BlurX, the BlurX
	// result for BlurY, blurred AO for Composite.
	Source Texture
}

// Uniforms is the structured uniform table bound to every program.
type Uniforms struct {
	Settings
	// Viewport is the drawing buffer size of the frame.
	Viewport core.Size
	// InverseProjection maps clip space back to view space.
	InverseProjection math.Mat4
	// NoiseScale tiles the noise texture over the viewport.
	NoiseScale math.Vec2
}

// ViewportVec returns the viewport as floats.
func (u Uniforms) ViewportVec() math.Vec2 {
	return math.NewVec2(float32(u.Viewport.Width), float32(u.Viewport.Height))
}

// Backend executes programs against full-screen targets. Run must not
// return before dst holds the complete pass output.
type Backend interface {
	NewTarget(label string, width, height int) (Target, error)
	DestroyTarget(t Target)
	Run(pass PassID, u Uniforms, in Bindings, dst Target) error
}

// Sampler fetches a texel at normalized coordinates. CPU textures
// implement it.
type Sampler interface {
	Sample(uv math.Vec2) core.Color
}
