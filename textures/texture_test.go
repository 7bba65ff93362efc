package textures

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"ao-engine/core"
	"ao-engine/math"
)

func gradient(w, h int) *Texture {
	t := New("gradient", w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			t.Set(x, y, core.Color{R: float32(x), G: float32(y), B: 0, A: 1})
		}
	}
	return t
}

func TestSampleNearestClamp(t *testing.T) {
	tex := gradient(4, 2)

	tests := []struct {
		uv   math.Vec2
		x, y float32
	}{
		{math.NewVec2(0.125, 0.25), 0, 0},
		{math.NewVec2(0.875, 0.75), 3, 1},
		{math.NewVec2(0.5, 0.5), 2, 1},
		{math.NewVec2(-3, -3), 0, 0},
		{math.NewVec2(7, 1.5), 3, 1},
	}
	for _, tt := range tests {
		c := tex.Sample(tt.uv)
		if c.R != tt.x || c.G != tt.y {
			t.Errorf("Sample(%v) = texel (%v,%v), want (%v,%v)", tt.uv, c.R, c.G, tt.x, tt.y)
		}
	}
}

func TestSampleRepeat(t *testing.T) {
	tex := gradient(4, 4)
	tex.Wrap = WrapRepeat

	c := tex.Sample(math.NewVec2(1.125, -0.125))
	if c.R != 0 || c.G != 3 {
		t.Errorf("repeat sample = (%v,%v), want (0,3)", c.R, c.G)
	}
}

func TestFillAndRelease(t *testing.T) {
	tex := New("t", 3, 3)
	tex.Fill(core.Gray(0.5))
	if got := tex.At(2, 2); got != core.Gray(0.5) {
		t.Errorf("At after Fill = %v, want %v", got, core.Gray(0.5))
	}
	tex.Release()
	if tex.Pix != nil || !tex.Size().Empty() {
		t.Error("Release should drop pixels and size")
	}
}

func TestNoiseDeterministic(t *testing.T) {
	a := NewNoise(16, 7)
	b := NewNoise(16, 7)
	if a.Wrap != WrapRepeat {
		t.Error("noise texture should repeat")
	}
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			t.Fatalf("noise differs at %d for same seed", i)
		}
		if a.Pix[i] < 0 || a.Pix[i] > 1 {
			t.Fatalf("noise value %v out of [0,1]", a.Pix[i])
		}
	}
}

func TestLoadDepth16(t *testing.T) {
	img := image.NewGray16(image.Rect(0, 0, 2, 1))
	img.SetGray16(0, 0, color.Gray16{Y: 0})
	img.SetGray16(1, 0, color.Gray16{Y: 0xffff})

	path := filepath.Join(t.TempDir(), "depth.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()

	depth, err := LoadDepth(path)
	if err != nil {
		t.Fatalf("LoadDepth: %v", err)
	}
	if depth.Width != 2 || depth.Height != 1 {
		t.Fatalf("size = %v, want 2x1", depth.Size())
	}
	if depth.At(0, 0).R != 0 || depth.At(1, 0).R != 1 {
		t.Errorf("depth values = %v, %v; want 0, 1", depth.At(0, 0).R, depth.At(1, 0).R)
	}
}

func writeImage(t *testing.T, path string, encode func(*os.File) error) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := encode(f); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

// quantized holds values exactly representable in 8 bits.
func quantized(w, h int) *Texture {
	tex := New("q", w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			tex.Set(x, y, core.Color{
				R: float32(x*51) / 255,
				G: float32(y*51) / 255,
				B: float32(17) / 255,
				A: 1,
			})
		}
	}
	return tex
}

func sameTexels(t *testing.T, got, want *Texture) {
	t.Helper()
	if got.Size() != want.Size() {
		t.Fatalf("size = %v, want %v", got.Size(), want.Size())
	}
	for i := range want.Pix {
		if d := got.Pix[i] - want.Pix[i]; d > 1e-6 || d < -1e-6 {
			t.Fatalf("component %d = %v, want %v", i, got.Pix[i], want.Pix[i])
		}
	}
}

func TestLoadPNG(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 51), G: uint8(y * 51), B: 17, A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "color.png")
	writeImage(t, path, func(f *os.File) error { return png.Encode(f, img) })

	tex, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	sameTexels(t, tex, quantized(4, 4))
}

func TestLoadJPEG(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = 128
	}
	path := filepath.Join(t.TempDir(), "color.JPG")
	writeImage(t, path, func(f *os.File) error { return jpeg.Encode(f, img, nil) })

	tex, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tex.Width != 8 || tex.Height != 8 {
		t.Fatalf("size = %v, want 8x8", tex.Size())
	}
	if c := tex.At(3, 3); c.R < 0.45 || c.R > 0.55 || c.A != 1 {
		t.Errorf("At(3,3) = %v, want mid gray", c)
	}
}

func TestSaveLoadTGA(t *testing.T) {
	want := quantized(5, 3)
	path := filepath.Join(t.TempDir(), "color.tga")
	if err := Save(path, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	sameTexels(t, got, want)
}

func TestSaveLoadPNG(t *testing.T) {
	want := quantized(3, 5)
	path := filepath.Join(t.TempDir(), "out", "color.png")
	if err := Save(path, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	sameTexels(t, got, want)
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "color.bmp")
	if err := os.WriteFile(path, []byte("BM"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load of a .bmp file should fail")
	}
}

func TestSaveUnsupportedFormat(t *testing.T) {
	err := Save(filepath.Join(t.TempDir(), "out.bmp"), New("t", 1, 1))
	if err == nil {
		t.Error("Save with .bmp extension should fail")
	}
}

func TestResizeNearestKeepsValues(t *testing.T) {
	tex := New("depth", 2, 2)
	tex.Fill(core.Gray(1))
	tex.Set(0, 0, core.Gray(0))

	out := Resize(tex, 4, 4, FilterNearest)
	if out.Width != 4 || out.Height != 4 {
		t.Fatalf("Resize size = %v, want 4x4", out.Size())
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			v := out.At(x, y).R
			if v != 0 && v != 1 {
				t.Fatalf("nearest resize produced blended value %v at (%d,%d)", v, x, y)
			}
		}
	}
	if out.At(0, 0).R != 0 || out.At(3, 3).R != 1 {
		t.Errorf("corners = %v, %v; want 0, 1", out.At(0, 0).R, out.At(3, 3).R)
	}
}
