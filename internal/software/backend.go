// Package software executes the ambient occlusion programs on the CPU.
//
// Targets and inputs are *textures.Texture. A pass is split into row bands
// that run on a persistent worker pool; Run joins every band before it
// returns, so the next pass always sees a complete image.
package software

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"

	"ao-engine/core"
	"ao-engine/hbao"
	"ao-engine/math"
	"ao-engine/textures"
)

// shader computes one output pixel.
type shader func(x, y int, uv math.Vec2) core.Color

// Backend is a CPU implementation of hbao.Backend.
type Backend struct {
	workers int
	pool    worker.DynamicWorkerPool
}

// Option configures a Backend.
type Option func(*Backend)

// WithWorkers sets the number of row workers. Values below 2 run every pass
// on the calling goroutine.
func WithWorkers(n int) Option {
	return func(b *Backend) {
		b.workers = n
	}
}

// New creates a CPU backend using NumCPU-1 workers by default.
func New(options ...Option) *Backend {
	b := &Backend{workers: max(runtime.NumCPU()-1, 1)}
	for _, option := range options {
		option(b)
	}
	if b.workers > 1 {
		b.pool = worker.NewDynamicWorkerPool(b.workers, 256, 1*time.Second)
	}
	return b
}

var _ hbao.Backend = (*Backend)(nil)

// NewTarget allocates a clamp-addressed float texture.
func (b *Backend) NewTarget(label string, width, height int) (hbao.Target, error) {
	if (core.Size{Width: width, Height: height}).Empty() {
		return nil, fmt.Errorf("software: target %q: invalid size %dx%d", label, width, height)
	}
	hbao.Logger().Debug("software: new target",
		slog.String("label", label), slog.Int("width", width), slog.Int("height", height))
	return textures.New(label, width, height), nil
}

// DestroyTarget releases the pixel storage of t.
func (b *Backend) DestroyTarget(t hbao.Target) {
	if tex, ok := t.(*textures.Texture); ok {
		tex.Release()
	}
}

// Run evaluates pass for every pixel of dst.
func (b *Backend) Run(pass hbao.PassID, u hbao.Uniforms, in hbao.Bindings, dst hbao.Target) error {
	out, err := asTexture(dst, "target")
	if err != nil {
		return err
	}
	if out.Size() != u.Viewport {
		return fmt.Errorf("software: %s target is %dx%d, viewport is %dx%d",
			pass, out.Width, out.Height, u.Viewport.Width, u.Viewport.Height)
	}
	if in.Source != nil && in.Source == hbao.Texture(out) {
		return fmt.Errorf("software: %s reads and writes %q", pass, out.Name)
	}

	var shade shader
	switch pass {
	case hbao.PassGenerate:
		depth, err := asTexture(in.Depth, "depth")
		if err != nil {
			return err
		}
		noise, err := asTexture(in.Noise, "noise")
		if err != nil {
			return err
		}
		surf := hbao.Surface{Depth: depth, InverseProjection: u.InverseProjection}
		shade = func(x, y int, uv math.Vec2) core.Color {
			ddx, ddy := quadDerivatives(surf, x, y, out.Width, out.Height)
			return hbao.GeneratePixel(surf, noise, u, uv, ddx, ddy)
		}

	case hbao.PassBlurX, hbao.PassBlurY:
		src, err := asTexture(in.Source, "source")
		if err != nil {
			return err
		}
		axis := hbao.BlurAxis(pass)
		shade = func(_, _ int, uv math.Vec2) core.Color {
			return hbao.BlurPixel(src, u, uv, axis)
		}

	case hbao.PassComposite:
		color, err := asTexture(in.Color, "color")
		if err != nil {
			return err
		}
		ao, err := asTexture(in.Source, "source")
		if err != nil {
			return err
		}
		shade = func(_, _ int, uv math.Vec2) core.Color {
			return hbao.Composite(color.Sample(uv), ao.Sample(uv), u.AOOnly)
		}

	default:
		return fmt.Errorf("software: unknown pass %v", pass)
	}

	b.dispatch(out, shade)
	return nil
}

func asTexture(t hbao.Texture, slot string) (*textures.Texture, error) {
	tex, ok := t.(*textures.Texture)
	if !ok || tex == nil {
		return nil, fmt.Errorf("software: %s %T: %w", slot, t, hbao.ErrUnsupportedTexture)
	}
	return tex, nil
}

// pixelUV returns the normalized coordinate of a pixel center.
func pixelUV(x, y, w, h int) math.Vec2 {
	return math.NewVec2((float32(x)+0.5)/float32(w), (float32(y)+0.5)/float32(h))
}

// quadDerivatives emulates fine dFdx/dFdy: differences are taken inside the
// 2x2 quad containing (x, y). Quad partners past the right or bottom edge
// are evaluated like GPU helper invocations, with clamped depth.
func quadDerivatives(surf hbao.Surface, x, y, w, h int) (math.Vec3, math.Vec3) {
	x0, y0 := x&^1, y&^1
	ddx := surf.Position(pixelUV(x0+1, y, w, h)).Sub(surf.Position(pixelUV(x0, y, w, h)))
	ddy := surf.Position(pixelUV(x, y0+1, w, h)).Sub(surf.Position(pixelUV(x, y0, w, h)))
	return ddx, ddy
}

// dispatch shades every pixel of out, fanning rows across the pool.
func (b *Backend) dispatch(out *textures.Texture, shade shader) {
	w, h := out.Width, out.Height
	rows := func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				out.Set(x, y, shade(x, y, pixelUV(x, y, w, h)))
			}
		}
	}

	if b.pool == nil || h < b.workers {
		rows(0, h)
		return
	}

	// The WaitGroup is the per-pass barrier; the pool itself stays alive
	// across passes and frames.
	band := (h + b.workers - 1) / b.workers
	var wg sync.WaitGroup
	taskID := 0
	for y0 := 0; y0 < h; y0 += band {
		y1 := min(y0+band, h)
		wg.Add(1)
		b.pool.SubmitTask(worker.Task{
			ID: taskID,
			Do: func() (any, error) {
				defer wg.Done()
				rows(y0, y1)
				return nil, nil
			},
		})
		taskID++
	}
	wg.Wait()
}
