package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"ao-engine/core"
	"ao-engine/textures"
)

// Texture is a GPU texture. Render targets additionally own a framebuffer
// with the texture as color attachment 0.
type Texture struct {
	Label  string
	ID     uint32
	Width  int
	Height int

	fbo uint32
}

// Size implements hbao.Texture.
func (t *Texture) Size() core.Size {
	return core.Size{Width: t.Width, Height: t.Height}
}

// IsTarget reports whether t can be rendered into.
func (t *Texture) IsTarget() bool { return t.fbo != 0 }

// UploadTexture copies a CPU texture to the GPU as RGBA32F with nearest
// filtering. The wrap mode follows src.Wrap. The GL context must be current.
func UploadTexture(src *textures.Texture) (*Texture, error) {
	if src == nil {
		return nil, fmt.Errorf("nil texture")
	}
	if len(src.Pix) == 0 {
		return nil, fmt.Errorf("texture %q has no pixel data", src.Name)
	}

	wrap := int32(gl.CLAMP_TO_EDGE)
	if src.Wrap == textures.WrapRepeat {
		wrap = gl.REPEAT
	}

	t := &Texture{Label: src.Name, Width: src.Width, Height: src.Height}
	gl.GenTextures(1, &t.ID)
	gl.BindTexture(gl.TEXTURE_2D, t.ID)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, wrap)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, wrap)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA32F,
		int32(src.Width), int32(src.Height), 0, gl.RGBA, gl.FLOAT, gl.Ptr(src.Pix))
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if e := gl.GetError(); e != gl.NO_ERROR {
		DeleteTexture(t)
		return nil, fmt.Errorf("upload %q: GL error 0x%X", src.Name, e)
	}
	return t, nil
}

// newTarget allocates an RGBA8 NEAREST/CLAMP texture and its framebuffer.
func newTarget(label string, width, height int) (*Texture, error) {
	t := &Texture{Label: label, Width: width, Height: height}

	gl.GenTextures(1, &t.ID)
	gl.BindTexture(gl.TEXTURE_2D, t.ID)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8,
		int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	gl.GenFramebuffers(1, &t.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, t.ID, 0)
	st := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	if st != gl.FRAMEBUFFER_COMPLETE {
		DeleteTexture(t)
		return nil, fmt.Errorf("%s FBO incomplete (0x%X)", label, st)
	}
	return t, nil
}

// Download reads a render target back into a CPU texture. Values are
// normalized to [0,1] by the RGBA8 storage.
func Download(t *Texture) (*textures.Texture, error) {
	if !t.IsTarget() {
		return nil, fmt.Errorf("texture %q is not a render target", t.Label)
	}

	out := textures.New(t.Label, t.Width, t.Height)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.ReadBuffer(gl.COLOR_ATTACHMENT0)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(t.Width), int32(t.Height), gl.RGBA, gl.FLOAT, gl.Ptr(out.Pix))
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	if e := gl.GetError(); e != gl.NO_ERROR {
		return nil, fmt.Errorf("read back %q: GL error 0x%X", t.Label, e)
	}
	return out, nil
}

// DeleteTexture frees the texture and framebuffer and zeroes their names.
func DeleteTexture(t *Texture) {
	if t == nil {
		return
	}
	if t.fbo != 0 {
		gl.DeleteFramebuffers(1, &t.fbo)
		t.fbo = 0
	}
	if t.ID != 0 {
		gl.DeleteTextures(1, &t.ID)
		t.ID = 0
	}
}
