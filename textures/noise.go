package textures

import (
	"fmt"
	"math/rand"
)

// NoiseSize is the edge length of the canonical rotation noise texture.
const NoiseSize = 256

// NewNoise creates a tiling texture of uniform random scalars in [0,1),
// replicated across RGB. The seed makes the pattern reproducible.
func NewNoise(size int, seed int64) *Texture {
	rng := rand.New(rand.NewSource(seed))

	t := New(fmt.Sprintf("noise-%d", seed), size, size)
	t.Wrap = WrapRepeat
	for i := 0; i < len(t.Pix); i += 4 {
		v := rng.Float32()
		t.Pix[i], t.Pix[i+1], t.Pix[i+2], t.Pix[i+3] = v, v, v, 1
	}
	return t
}

// LoadNoise reads a noise asset and marks it for repeat addressing.
func LoadNoise(path string) (*Texture, error) {
	t, err := Load(path)
	if err != nil {
		return nil, err
	}
	t.Wrap = WrapRepeat
	return t, nil
}
