package textures

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/draw"

	"ao-engine/math"
)

// Load reads a PNG, JPEG or TGA file into an RGBA float texture with
// straight (non-premultiplied) alpha.
func Load(path string) (*Texture, error) {
	img, err := decodeFile(path)
	if err != nil {
		return nil, err
	}
	return FromImage(path, img), nil
}

// LoadDepth reads a grayscale depth image. 16-bit PNGs keep their full
// precision; the normalized value is replicated across RGB.
func LoadDepth(path string) (*Texture, error) {
	img, err := decodeFile(path)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	t := New(path, b.Dx(), b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g := color.Gray16Model.Convert(img.At(x, y)).(color.Gray16)
			v := float32(g.Y) / 0xffff
			i := ((y-b.Min.Y)*t.Width + (x - b.Min.X)) * 4
			t.Pix[i], t.Pix[i+1], t.Pix[i+2], t.Pix[i+3] = v, v, v, 1
		}
	}
	return t, nil
}

// decoders maps file extensions to image decoders. image.Decode is not
// used: the tga package registers itself with an empty magic string, so
// once linked it claims every format that is sniffed after it.
var decoders = map[string]func(io.Reader) (image.Image, error){
	".png":  png.Decode,
	".jpg":  jpeg.Decode,
	".jpeg": jpeg.Decode,
	".tga":  tga.Decode,
}

func decodeFile(path string) (image.Image, error) {
	ext := strings.ToLower(filepath.Ext(path))
	decode, ok := decoders[ext]
	if !ok {
		return nil, fmt.Errorf("decode texture %q: unsupported format %q", path, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture %q: %w", path, err)
	}
	defer f.Close()

	img, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode texture %q: %w", path, err)
	}
	return img, nil
}

// FromImage converts any image to a float texture.
func FromImage(name string, img image.Image) *Texture {
	b := img.Bounds()
	t := New(name, b.Dx(), b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBA64Model.Convert(img.At(x, y)).(color.NRGBA64)
			i := ((y-b.Min.Y)*t.Width + (x - b.Min.X)) * 4
			t.Pix[i] = float32(c.R) / 0xffff
			t.Pix[i+1] = float32(c.G) / 0xffff
			t.Pix[i+2] = float32(c.B) / 0xffff
			t.Pix[i+3] = float32(c.A) / 0xffff
		}
	}
	return t
}

// ToImage quantizes the texture to 8-bit NRGBA, clamping to [0,1].
func (t *Texture) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, t.Width, t.Height))
	for i, v := range t.Pix {
		img.Pix[i] = uint8(math.Saturate(v)*255 + 0.5)
	}
	return img
}

func (t *Texture) toNRGBA64() *image.NRGBA64 {
	img := image.NewNRGBA64(image.Rect(0, 0, t.Width, t.Height))
	for i, v := range t.Pix {
		q := uint16(math.Saturate(v)*0xffff + 0.5)
		img.Pix[i*2] = uint8(q >> 8)
		img.Pix[i*2+1] = uint8(q)
	}
	return img
}

// Save writes the texture as PNG, WebP or TGA, chosen by the file extension.
func Save(path string, t *Texture) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("save %q: %w", path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save %q: %w", path, err)
	}
	defer f.Close()

	img := t.ToImage()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		err = png.Encode(f, img)
	case ".webp":
		err = nativewebp.Encode(f, img, nil)
	case ".tga":
		err = tga.Encode(f, img)
	default:
		return fmt.Errorf("save %q: unsupported format %q", path, ext)
	}
	if err != nil {
		return fmt.Errorf("encode %q: %w", path, err)
	}
	return f.Close()
}

// Filter selects the resampling kernel used by Resize.
type Filter int

const (
	// FilterNearest never blends texels; use it for depth so that edges
	// between foreground and background are not smeared into fake geometry.
	FilterNearest Filter = iota
	// FilterSmooth uses Catmull-Rom, suited to scene color.
	FilterSmooth
)

// Resize resamples t to width x height with 16 bits per channel.
func Resize(t *Texture, width, height int, filter Filter) *Texture {
	if t.Width == width && t.Height == height {
		return t
	}

	var scaler draw.Scaler = draw.NearestNeighbor
	if filter == FilterSmooth {
		scaler = draw.CatmullRom
	}

	dst := image.NewNRGBA64(image.Rect(0, 0, width, height))
	src := t.toNRGBA64()
	scaler.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	out := FromImage(t.Name, dst)
	out.Wrap = t.Wrap
	return out
}
