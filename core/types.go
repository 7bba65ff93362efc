package core

// Color is a linear RGBA value. Render targets and CPU textures store one
// Color per pixel.
type Color struct {
	R, G, B, A float32
}

// Gray replicates v across RGB with an opaque alpha.
func Gray(v float32) Color {
	return Color{v, v, v, 1}
}

func (c Color) Add(other Color) Color {
	return Color{c.R + other.R, c.G + other.G, c.B + other.B, c.A + other.A}
}

func (c Color) Scale(s float32) Color {
	return Color{c.R * s, c.G * s, c.B * s, c.A * s}
}

// MulRGB multiplies the color channels and keeps c's alpha.
func (c Color) MulRGB(other Color) Color {
	return Color{c.R * other.R, c.G * other.G, c.B * other.B, c.A}
}

// Opaque returns c with alpha forced to 1.
func (c Color) Opaque() Color {
	c.A = 1
	return c
}

// Size is a pixel extent, typically the drawing buffer of the current frame.
type Size struct {
	Width, Height int
}

func (s Size) Empty() bool {
	return s.Width <= 0 || s.Height <= 0
}
