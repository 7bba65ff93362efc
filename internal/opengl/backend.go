// Package opengl executes the ambient occlusion programs with OpenGL 4.1.
//
// Every pass is a fullscreen triangle drawn into the framebuffer of its
// destination target. Inputs must be uploaded with UploadTexture; targets
// are created through the hbao.Backend interface and read back with
// Download.
package opengl

import (
	"fmt"
	"log/slog"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"ao-engine/core"
	"ao-engine/hbao"
)

// Backend is an OpenGL implementation of hbao.Backend. It must be created
// and used on the thread that owns the current context.
type Backend struct {
	generate  *program
	blur      *program
	composite *program

	// Fullscreen triangle VAO (no VBO needed)
	quadVAO uint32
}

var _ hbao.Backend = (*Backend)(nil)

// NewBackend compiles the pass programs.
func NewBackend() (*Backend, error) {
	b := &Backend{}

	var err error
	b.generate, err = newPassProgram(generateFragSrc,
		"colorTex", "depthTex", "noiseTex", "invProj", "viewport", "noiseScale",
		"intensity", "bias", "lenCap", "stepSize")
	if err != nil {
		return nil, fmt.Errorf("generate shader: %w", err)
	}
	b.generate.samplers("colorTex", "depthTex", "noiseTex")

	b.blur, err = newPassProgram(blurFragSrc, "srcTex", "texelDir")
	if err != nil {
		b.Destroy()
		return nil, fmt.Errorf("blur shader: %w", err)
	}
	b.blur.samplers("srcTex")

	b.composite, err = newPassProgram(compositeFragSrc, "colorTex", "aoTex", "aoOnly")
	if err != nil {
		b.Destroy()
		return nil, fmt.Errorf("composite shader: %w", err)
	}
	b.composite.samplers("colorTex", "aoTex")

	gl.GenVertexArrays(1, &b.quadVAO)
	return b, nil
}

// NewTarget allocates an RGBA8 render target.
func (b *Backend) NewTarget(label string, width, height int) (hbao.Target, error) {
	if (core.Size{Width: width, Height: height}).Empty() {
		return nil, fmt.Errorf("opengl: target %q: invalid size %dx%d", label, width, height)
	}
	t, err := newTarget(label, width, height)
	if err != nil {
		return nil, fmt.Errorf("opengl: %w", err)
	}
	hbao.Logger().Debug("opengl: new target",
		slog.String("label", label), slog.Int("width", width), slog.Int("height", height),
		slog.Uint64("fbo", uint64(t.fbo)))
	return t, nil
}

// DestroyTarget deletes the target's texture and framebuffer.
func (b *Backend) DestroyTarget(t hbao.Target) {
	if tex, ok := t.(*Texture); ok {
		DeleteTexture(tex)
	}
}

// Run draws pass into dst.
func (b *Backend) Run(pass hbao.PassID, u hbao.Uniforms, in hbao.Bindings, dst hbao.Target) error {
	out, err := asTexture(dst, "target")
	if err != nil {
		return err
	}
	if !out.IsTarget() {
		return fmt.Errorf("opengl: %s: %q is not a render target", pass, out.Label)
	}

	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.BLEND)
	gl.BindVertexArray(b.quadVAO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, out.fbo)
	gl.Viewport(0, 0, int32(out.Width), int32(out.Height))

	switch pass {
	case hbao.PassGenerate:
		err = b.bindGenerate(u, in)
	case hbao.PassBlurX, hbao.PassBlurY:
		err = b.bindBlur(pass, u, in)
	case hbao.PassComposite:
		err = b.bindComposite(u, in)
	default:
		err = fmt.Errorf("opengl: unknown pass %v", pass)
	}
	if err == nil {
		gl.DrawArrays(gl.TRIANGLES, 0, 3)
	}

	unbind(3)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.BindVertexArray(0)
	if err != nil {
		return err
	}
	if e := gl.GetError(); e != gl.NO_ERROR {
		return fmt.Errorf("opengl: %s pass: GL error 0x%X", pass, e)
	}
	return nil
}

func (b *Backend) bindGenerate(u hbao.Uniforms, in hbao.Bindings) error {
	color, err := asTexture(in.Color, "color")
	if err != nil {
		return err
	}
	depth, err := asTexture(in.Depth, "depth")
	if err != nil {
		return err
	}
	noise, err := asTexture(in.Noise, "noise")
	if err != nil {
		return err
	}

	p := b.generate
	gl.UseProgram(p.id)
	bind(0, color)
	bind(1, depth)
	bind(2, noise)

	invProj := u.InverseProjection
	gl.UniformMatrix4fv(p.loc("invProj"), 1, false, (*float32)(unsafe.Pointer(&invProj[0][0])))
	gl.Uniform2f(p.loc("viewport"), float32(u.Viewport.Width), float32(u.Viewport.Height))
	gl.Uniform2f(p.loc("noiseScale"), u.NoiseScale.X, u.NoiseScale.Y)
	gl.Uniform1f(p.loc("intensity"), u.Intensity)
	gl.Uniform1f(p.loc("bias"), u.Bias)
	gl.Uniform1f(p.loc("lenCap"), u.LenCap)
	gl.Uniform1f(p.loc("stepSize"), u.StepSize)
	return nil
}

func (b *Backend) bindBlur(pass hbao.PassID, u hbao.Uniforms, in hbao.Bindings) error {
	src, err := asTexture(in.Source, "source")
	if err != nil {
		return err
	}

	p := b.blur
	gl.UseProgram(p.id)
	bind(0, src)

	dir := texelDir(hbao.BlurAxis(pass), u)
	gl.Uniform2f(p.loc("texelDir"), dir[0], dir[1])
	return nil
}

func (b *Backend) bindComposite(u hbao.Uniforms, in hbao.Bindings) error {
	color, err := asTexture(in.Color, "color")
	if err != nil {
		return err
	}
	ao, err := asTexture(in.Source, "source")
	if err != nil {
		return err
	}

	p := b.composite
	gl.UseProgram(p.id)
	bind(0, color)
	bind(1, ao)

	var aoOnly int32
	if u.AOOnly {
		aoOnly = 1
	}
	gl.Uniform1i(p.loc("aoOnly"), aoOnly)
	return nil
}

// Destroy frees the programs and the VAO. Targets are owned by the stage.
func (b *Backend) Destroy() {
	for _, p := range []*program{b.generate, b.blur, b.composite} {
		if p != nil {
			p.delete()
		}
	}
	if b.quadVAO != 0 {
		gl.DeleteVertexArrays(1, &b.quadVAO)
		b.quadVAO = 0
	}
}

// texelDir is the uv offset between neighbouring blur taps.
func texelDir(axis hbao.Axis, u hbao.Uniforms) [2]float32 {
	if axis == hbao.AxisX {
		return [2]float32{u.KernelSize / float32(u.Viewport.Width), 0}
	}
	return [2]float32{0, u.KernelSize / float32(u.Viewport.Height)}
}

func asTexture(t hbao.Texture, slot string) (*Texture, error) {
	tex, ok := t.(*Texture)
	if !ok || tex == nil || tex.ID == 0 {
		return nil, fmt.Errorf("opengl: %s %T: %w", slot, t, hbao.ErrUnsupportedTexture)
	}
	return tex, nil
}

func bind(unit uint32, t *Texture) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, t.ID)
}

func unbind(units uint32) {
	for unit := uint32(0); unit < units; unit++ {
		gl.ActiveTexture(gl.TEXTURE0 + unit)
		gl.BindTexture(gl.TEXTURE_2D, 0)
	}
	gl.ActiveTexture(gl.TEXTURE0)
}
