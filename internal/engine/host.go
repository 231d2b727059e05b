package engine

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"

	"Sunlight/internal/gfx"
	"Sunlight/internal/gfx/gles"
	"Sunlight/internal/logger"
	"Sunlight/internal/renderer"
)

// RendererFactory builds the renderer once a GL context is current.
type RendererFactory func(device gfx.Device) (renderer.Renderer, error)

// PostEffectsToggle is implemented by renderers with a switchable post pass.
type PostEffectsToggle interface {
	SetPostEffectsEnabled(enabled bool)
	PostEffectsEnabled() bool
}

// Shutdowner is implemented by renderers that release GPU resources on exit.
type Shutdowner interface {
	Shutdown()
}

// Host owns a window with a GL ES 2.0 context and drives a renderer through
// the surface lifecycle.
type Host struct {
	Width  int
	Height int
	Title  string

	// TapHandler receives left clicks. Optional.
	TapHandler func() bool

	window   *glfw.Window
	renderer renderer.Renderer
	surface  surfaceSize
}

func NewHost(width, height int, title string) *Host {
	logger.Log.Info("Sunlight host initializing...",
		zap.Int("width", width),
		zap.Int("height", height))
	return &Host{Width: width, Height: height, Title: title}
}

// Run opens the window and renders until it is closed. It must be called from
// the main goroutine.
func (h *Host) Run(factory RendererFactory) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("could not initialize glfw: %w", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.Decorated, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ClientAPI, glfw.OpenGLESAPI)
	glfw.WindowHint(glfw.ContextVersionMajor, 2)
	glfw.WindowHint(glfw.ContextVersionMinor, 0)

	window, err := glfw.CreateWindow(h.Width, h.Height, h.Title, nil, nil)
	if err != nil {
		return fmt.Errorf("could not create glfw window: %w", err)
	}
	defer window.Destroy()
	h.window = window

	window.MakeContextCurrent()
	glfw.SwapInterval(1)
	SetDarkTitleBar(window)

	device, err := gles.New()
	if err != nil {
		return fmt.Errorf("could not initialize OpenGL ES: %w", err)
	}
	logger.Log.Info("GL context ready", zap.String("version", device.Version()))

	r, err := factory(device)
	if err != nil {
		return err
	}
	h.renderer = r

	window.SetMouseButtonCallback(h.mouseButtonCallback)
	window.SetKeyCallback(h.keyCallback)

	return drive(r, h.renderLoop)
}

// drive creates the surface and runs loop. The renderer is shut down however
// the loop ends.
func drive(r renderer.Renderer, loop func() error) error {
	if s, ok := r.(Shutdowner); ok {
		defer s.Shutdown()
	}
	if err := r.OnSurfaceCreated(); err != nil {
		return err
	}
	return loop()
}

func (h *Host) renderLoop() error {
	for !h.window.ShouldClose() {
		// Framebuffer size differs from window size on HiDPI displays.
		width, height := h.window.GetFramebufferSize()
		if h.surface.changed(width, height) {
			if err := h.renderer.OnSurfaceChanged(width, height); err != nil {
				return err
			}
		}

		h.renderer.OnDrawFrame()

		h.window.SwapBuffers()
		glfw.PollEvents()
	}
	return nil
}

func (h *Host) mouseButtonCallback(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	if button != glfw.MouseButtonLeft || action != glfw.Press || h.TapHandler == nil {
		return
	}
	h.TapHandler()
}

func (h *Host) keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press {
		return
	}
	switch key {
	case glfw.KeyEscape:
		w.SetShouldClose(true)
	case glfw.KeyP:
		togglePostEffects(h.renderer)
	}
}

// togglePostEffects flips the post pass if r supports it.
func togglePostEffects(r renderer.Renderer) bool {
	toggle, ok := r.(PostEffectsToggle)
	if !ok {
		return false
	}
	enabled := !toggle.PostEffectsEnabled()
	toggle.SetPostEffectsEnabled(enabled)
	logger.Log.Info("Post effects toggled", zap.Bool("enabled", enabled))
	return true
}

// surfaceSize remembers the last size reported to the renderer.
type surfaceSize struct {
	width, height int
	reported      bool
}

// changed reports whether width x height must be sent to the renderer. Empty
// sizes, as seen while minimized, are held back.
func (s *surfaceSize) changed(width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	if s.reported && width == s.width && height == s.height {
		return false
	}
	s.width, s.height, s.reported = width, height, true
	return true
}
