package hbao

import "ao-engine/core"

// Composite combines scene color with occlusion. Alpha is always 1.
func Composite(color, ao core.Color, aoOnly bool) core.Color {
	if aoOnly {
		return ao.Opaque()
	}
	return ao.MulRGB(color).Opaque()
}
