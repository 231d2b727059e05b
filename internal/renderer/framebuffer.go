package renderer

import (
	"go.uber.org/zap"

	"Sunlight/internal/gfx"
	"Sunlight/internal/logger"
)

// FrameBufferTarget redirects drawing into a RenderTexture. Its size is always
// the size of that texture.
type FrameBufferTarget struct {
	device   gfx.Device
	cache    *TextureCache
	texture  *RenderTexture
	handle   uint32
	revision uint64
}

// Texture returns the color attachment.
func (fb *FrameBufferTarget) Texture() *RenderTexture { return fb.texture }

// Width returns the attachment width.
func (fb *FrameBufferTarget) Width() int { return fb.texture.Width() }

// Height returns the attachment height.
func (fb *FrameBufferTarget) Height() int { return fb.texture.Height() }

// Loaded reports whether the framebuffer object exists.
func (fb *FrameBufferTarget) Loaded() bool { return fb.handle != 0 }

// Load allocates the attachment and the framebuffer object and checks
// completeness.
func (fb *FrameBufferTarget) Load() error {
	if err := fb.texture.Load(); err != nil {
		return err
	}
	if fb.handle != 0 {
		return nil
	}

	handle := fb.device.GenFramebuffer()
	fb.device.BindFramebuffer(gfx.FRAMEBUFFER, handle)
	fb.device.FramebufferTexture2D(gfx.FRAMEBUFFER, gfx.COLOR_ATTACHMENT0, gfx.TEXTURE_2D, fb.texture.Handle(), 0)
	status := fb.device.CheckFramebufferStatus(gfx.FRAMEBUFFER)
	fb.device.BindFramebuffer(gfx.FRAMEBUFFER, 0)

	if status != gfx.FRAMEBUFFER_COMPLETE {
		fb.device.DeleteFramebuffer(handle)
		return &RenderTargetAllocationError{
			Width:  fb.Width(),
			Height: fb.Height(),
			Err:    &FrameBufferIncompleteError{Status: status},
		}
	}

	fb.handle = handle
	fb.revision = fb.texture.Revision()
	fb.cache.trackFrameBuffer(fb)
	logger.Log.Debug("Frame buffer ready",
		zap.Uint32("framebuffer", handle),
		zap.Int("width", fb.Width()),
		zap.Int("height", fb.Height()))
	return nil
}

// Bind makes the target current. After the attachment was resized it is
// re-attached and re-checked first. The caller sets the viewport.
func (fb *FrameBufferTarget) Bind() error {
	if err := fb.Load(); err != nil {
		return err
	}

	fb.device.BindFramebuffer(gfx.FRAMEBUFFER, fb.handle)
	if fb.revision != fb.texture.Revision() {
		if err := fb.attach(); err != nil {
			fb.device.BindFramebuffer(gfx.FRAMEBUFFER, 0)
			return err
		}
	}
	return nil
}

// Unbind restores the default framebuffer.
func (fb *FrameBufferTarget) Unbind() {
	fb.device.BindFramebuffer(gfx.FRAMEBUFFER, 0)
}

// Update resizes the attachment and re-checks completeness when the
// framebuffer exists.
func (fb *FrameBufferTarget) Update(width, height int) error {
	if err := fb.texture.Update(width, height); err != nil {
		return err
	}
	if fb.handle == 0 || fb.revision == fb.texture.Revision() {
		return nil
	}

	fb.device.BindFramebuffer(gfx.FRAMEBUFFER, fb.handle)
	err := fb.attach()
	fb.device.BindFramebuffer(gfx.FRAMEBUFFER, 0)
	return err
}

// attach re-attaches the texture to the bound framebuffer.
func (fb *FrameBufferTarget) attach() error {
	fb.device.FramebufferTexture2D(gfx.FRAMEBUFFER, gfx.COLOR_ATTACHMENT0, gfx.TEXTURE_2D, fb.texture.Handle(), 0)
	if status := fb.device.CheckFramebufferStatus(gfx.FRAMEBUFFER); status != gfx.FRAMEBUFFER_COMPLETE {
		return &FrameBufferIncompleteError{Status: status}
	}
	fb.revision = fb.texture.Revision()
	return nil
}

func (fb *FrameBufferTarget) unload() {
	if fb.handle == 0 {
		return
	}
	fb.device.DeleteFramebuffer(fb.handle)
	fb.handle = 0
}
