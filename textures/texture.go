package textures

import (
	gomath "math"

	"ao-engine/core"
	"ao-engine/math"
)

// WrapMode selects how Sample addresses coordinates outside [0,1].
type WrapMode int

const (
	// WrapClamp repeats the edge texel (CLAMP_TO_EDGE).
	WrapClamp WrapMode = iota
	// WrapRepeat tiles the texture (REPEAT).
	WrapRepeat
)

// Texture holds CPU-side RGBA float pixels. Row 0 is the top row of the
// image, matching the order in which screen coordinates are addressed.
type Texture struct {
	Name   string
	Width  int
	Height int
	// Pix is RGBA interleaved, len = Width*Height*4.
	Pix  []float32
	Wrap WrapMode
}

// New allocates a zeroed texture.
func New(name string, width, height int) *Texture {
	return &Texture{
		Name:   name,
		Width:  width,
		Height: height,
		Pix:    make([]float32, width*height*4),
	}
}

// Size reports the pixel extent.
func (t *Texture) Size() core.Size {
	return core.Size{Width: t.Width, Height: t.Height}
}

func (t *Texture) At(x, y int) core.Color {
	i := (y*t.Width + x) * 4
	p := t.Pix[i : i+4 : i+4]
	return core.Color{R: p[0], G: p[1], B: p[2], A: p[3]}
}

func (t *Texture) Set(x, y int, c core.Color) {
	i := (y*t.Width + x) * 4
	p := t.Pix[i : i+4 : i+4]
	p[0], p[1], p[2], p[3] = c.R, c.G, c.B, c.A
}

// Fill sets every pixel to c.
func (t *Texture) Fill(c core.Color) {
	for i := 0; i < len(t.Pix); i += 4 {
		t.Pix[i], t.Pix[i+1], t.Pix[i+2], t.Pix[i+3] = c.R, c.G, c.B, c.A
	}
}

// Clone returns a deep copy of t.
func (t *Texture) Clone() *Texture {
	c := *t
	c.Pix = append([]float32(nil), t.Pix...)
	return &c
}

// Release drops the pixel storage. The texture must not be sampled afterwards.
func (t *Texture) Release() {
	t.Pix = nil
	t.Width, t.Height = 0, 0
}

// Sample performs a nearest-texel fetch at normalized coordinates.
func (t *Texture) Sample(uv math.Vec2) core.Color {
	x := t.texel(uv.X, t.Width)
	y := t.texel(uv.Y, t.Height)
	return t.At(x, y)
}

func (t *Texture) texel(u float32, n int) int {
	f := float64(u)
	if gomath.IsNaN(f) {
		return 0
	}
	if t.Wrap == WrapRepeat {
		f -= gomath.Floor(f)
		if gomath.IsNaN(f) {
			return 0
		}
	}
	i := gomath.Floor(f * float64(n))
	if i < 0 {
		return 0
	}
	if i > float64(n-1) {
		return n - 1
	}
	return int(i)
}
