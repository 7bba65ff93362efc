package opengl

import (
	"fmt"
	"log/slog"
	"runtime"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"ao-engine/hbao"
)

// GLFW and every GL call must stay on the main OS thread.
func init() {
	runtime.LockOSThread()
}

// Context is an offscreen OpenGL 4.1 core context backed by a hidden GLFW
// window. All passes render into framebuffer objects, so the window's own
// surface is never drawn to.
type Context struct {
	window *glfw.Window
}

// NewContext creates the hidden window, makes its context current and loads
// the GL function pointers.
func NewContext() (*Context, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	handle, err := glfw.CreateWindow(1, 1, "hbao", nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	handle.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		handle.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	hbao.Logger().Info("opengl: context ready",
		slog.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		slog.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))))

	return &Context{window: handle}, nil
}

// Destroy releases the window and terminates GLFW.
func (c *Context) Destroy() {
	if c.window == nil {
		return
	}
	c.window.Destroy()
	c.window = nil
	glfw.Terminate()
}
