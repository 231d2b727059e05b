package renderer

import (
	"fmt"
	"image"

	"go.uber.org/zap"
	xdraw "golang.org/x/image/draw"

	"Sunlight/internal/gfx"
	"Sunlight/internal/logger"
)

// ImageSource supplies the pixels of an asset texture. Decode is called at most
// once per successful load.
type ImageSource interface {
	Name() string
	Decode() (image.Image, error)
}

// TextureStats provides debugging information
type TextureStats struct {
	Textures       int
	LoadedTextures int
	RenderTextures int
	FrameBuffers   int
}

// textureObject is the GPU side shared by asset and render textures.
type textureObject struct {
	device gfx.Device
	handle uint32
	width  int
	height int
}

// Handle returns the GL texture name, 0 when unloaded.
func (t *textureObject) Handle() uint32 { return t.handle }

// Loaded reports whether the texture has GPU storage.
func (t *textureObject) Loaded() bool { return t.handle != 0 }

// Width returns the current width in texels.
func (t *textureObject) Width() int { return t.width }

// Height returns the current height in texels.
func (t *textureObject) Height() int { return t.height }

// Bind attaches the texture to sampler unit and points uniformName of program at
// it. An unloaded texture issues no GL calls and returns false.
func (t *textureObject) Bind(unit int, program *Program, uniformName string) bool {
	if t.handle == 0 {
		return false
	}
	t.device.ActiveTexture(gfx.TEXTURE0 + gfx.Enum(unit))
	t.device.BindTexture(gfx.TEXTURE_2D, t.handle)
	program.Uniforms().SetInt(uniformName, int32(unit))
	return true
}

// Unbind clears sampler unit.
func (t *textureObject) Unbind(unit int) {
	t.device.ActiveTexture(gfx.TEXTURE0 + gfx.Enum(unit))
	t.device.BindTexture(gfx.TEXTURE_2D, 0)
}

func (t *textureObject) unload() {
	if t.handle == 0 {
		return
	}
	t.device.DeleteTexture(t.handle)
	t.handle = 0
}

type textureKey struct {
	name            string
	generateMipmaps bool
	minFilter       gfx.Enum
	magFilter       gfx.Enum
	wrapS           gfx.Enum
	wrapT           gfx.Enum
}

// Texture is an immutable texture decoded from an ImageSource.
type Texture struct {
	textureObject
	cache  *TextureCache
	key    textureKey
	source ImageSource
	pixels *image.RGBA
}

// Name returns the source asset name.
func (t *Texture) Name() string { return t.key.name }

// Load decodes the source on first use and uploads it. It is idempotent once it
// succeeds; on failure it logs, returns false, and tries again on the next call.
func (t *Texture) Load() bool {
	if t.handle != 0 {
		return true
	}
	if t.pixels == nil {
		img, err := t.source.Decode()
		if err != nil {
			logger.Log.Warn("Texture decode failed",
				zap.Error(&ResourceDecodeError{Name: t.key.name, Err: err}))
			return false
		}
		t.pixels = toRGBA(img, t.key.generateMipmaps)
	}

	width, height := t.pixels.Rect.Dx(), t.pixels.Rect.Dy()
	d := t.device
	handle := d.GenTexture()
	d.BindTexture(gfx.TEXTURE_2D, handle)
	d.TexImage2D(gfx.TEXTURE_2D, 0, gfx.RGBA, int32(width), int32(height), gfx.RGBA, gfx.UNSIGNED_BYTE, t.pixels.Pix)
	d.TexParameteri(gfx.TEXTURE_2D, gfx.TEXTURE_MIN_FILTER, int32(t.key.minFilter))
	d.TexParameteri(gfx.TEXTURE_2D, gfx.TEXTURE_MAG_FILTER, int32(t.key.magFilter))
	d.TexParameteri(gfx.TEXTURE_2D, gfx.TEXTURE_WRAP_S, int32(t.key.wrapS))
	d.TexParameteri(gfx.TEXTURE_2D, gfx.TEXTURE_WRAP_T, int32(t.key.wrapT))
	if t.key.generateMipmaps {
		d.GenerateMipmap(gfx.TEXTURE_2D)
	}
	d.BindTexture(gfx.TEXTURE_2D, 0)

	if code := d.GetError(); code != gfx.NO_ERROR {
		d.DeleteTexture(handle)
		logger.Log.Warn("Texture upload failed",
			zap.String("name", t.key.name),
			zap.Uint32("glError", code))
		return false
	}

	t.handle = handle
	t.width, t.height = width, height
	t.cache.trackTexture(t)

	logger.Log.Info("Texture loaded",
		zap.String("name", t.key.name),
		zap.Uint32("textureID", handle),
		zap.Int("width", width),
		zap.Int("height", height))
	return true
}

// RenderTexture is GPU-written storage for an offscreen pass. Every resize bumps
// its revision so framebuffers attached to it know to re-validate.
type RenderTexture struct {
	textureObject
	cache    *TextureCache
	revision uint64
}

// Revision increases whenever the storage is (re)allocated.
func (rt *RenderTexture) Revision() uint64 { return rt.revision }

// Load allocates storage at the current size.
func (rt *RenderTexture) Load() error {
	if rt.handle != 0 {
		return nil
	}
	if rt.width <= 0 || rt.height <= 0 {
		return &RenderTargetAllocationError{Width: rt.width, Height: rt.height,
			Err: fmt.Errorf("dimensions must be positive")}
	}

	d := rt.device
	handle := d.GenTexture()
	d.BindTexture(gfx.TEXTURE_2D, handle)
	d.TexParameteri(gfx.TEXTURE_2D, gfx.TEXTURE_MIN_FILTER, int32(gfx.LINEAR))
	d.TexParameteri(gfx.TEXTURE_2D, gfx.TEXTURE_MAG_FILTER, int32(gfx.LINEAR))
	d.TexParameteri(gfx.TEXTURE_2D, gfx.TEXTURE_WRAP_S, int32(gfx.CLAMP_TO_EDGE))
	d.TexParameteri(gfx.TEXTURE_2D, gfx.TEXTURE_WRAP_T, int32(gfx.CLAMP_TO_EDGE))
	d.TexImage2D(gfx.TEXTURE_2D, 0, gfx.RGBA, int32(rt.width), int32(rt.height), gfx.RGBA, gfx.UNSIGNED_BYTE, nil)
	d.BindTexture(gfx.TEXTURE_2D, 0)

	if code := d.GetError(); code != gfx.NO_ERROR {
		d.DeleteTexture(handle)
		return &RenderTargetAllocationError{Width: rt.width, Height: rt.height,
			Err: fmt.Errorf("gl error 0x%04X", code)}
	}

	rt.handle = handle
	rt.revision++
	rt.cache.trackRenderTexture(rt)
	return nil
}

// Update resizes the texture. Unloaded textures only record the new size.
func (rt *RenderTexture) Update(width, height int) error {
	if width <= 0 || height <= 0 {
		return &RenderTargetAllocationError{Width: width, Height: height,
			Err: fmt.Errorf("dimensions must be positive")}
	}
	if rt.handle != 0 && width == rt.width && height == rt.height {
		return nil
	}
	rt.width, rt.height = width, height
	if rt.handle == 0 {
		return nil
	}

	d := rt.device
	d.BindTexture(gfx.TEXTURE_2D, rt.handle)
	d.TexImage2D(gfx.TEXTURE_2D, 0, gfx.RGBA, int32(width), int32(height), gfx.RGBA, gfx.UNSIGNED_BYTE, nil)
	d.BindTexture(gfx.TEXTURE_2D, 0)
	rt.revision++

	if code := d.GetError(); code != gfx.NO_ERROR {
		return &RenderTargetAllocationError{Width: width, Height: height,
			Err: fmt.Errorf("gl error 0x%04X", code)}
	}
	return nil
}

// TextureCache creates and owns asset textures, render textures and the
// framebuffers attached to them.
type TextureCache struct {
	device         gfx.Device
	textures       map[textureKey]*Texture
	renderTextures map[*RenderTexture]struct{}
	frameBuffers   map[*FrameBufferTarget]struct{}
}

// NewTextureCache creates an empty cache bound to device.
func NewTextureCache(device gfx.Device) *TextureCache {
	return &TextureCache{
		device:         device,
		textures:       make(map[textureKey]*Texture),
		renderTextures: make(map[*RenderTexture]struct{}),
		frameBuffers:   make(map[*FrameBufferTarget]struct{}),
	}
}

// CreateTexture returns a lazily loaded texture for source. Requests for the
// same source name and sampling parameters share one instance.
func (tc *TextureCache) CreateTexture(source ImageSource, generateMipmaps bool, minFilter, magFilter, wrapS, wrapT gfx.Enum) *Texture {
	key := textureKey{
		name:            source.Name(),
		generateMipmaps: generateMipmaps,
		minFilter:       minFilter,
		magFilter:       magFilter,
		wrapS:           wrapS,
		wrapT:           wrapT,
	}
	if t, ok := tc.textures[key]; ok {
		return t
	}
	t := &Texture{
		textureObject: textureObject{device: tc.device},
		cache:         tc,
		key:           key,
		source:        source,
	}
	tc.textures[key] = t
	return t
}

// CreateRenderTexture returns an unallocated render texture of the given size.
func (tc *TextureCache) CreateRenderTexture(width, height int) *RenderTexture {
	rt := &RenderTexture{
		textureObject: textureObject{device: tc.device, width: width, height: height},
		cache:         tc,
	}
	tc.renderTextures[rt] = struct{}{}
	return rt
}

// CreateFrameBuffer attaches a loaded render texture to a new framebuffer.
func (tc *TextureCache) CreateFrameBuffer(rt *RenderTexture) (*FrameBufferTarget, error) {
	fb := &FrameBufferTarget{device: tc.device, cache: tc, texture: rt}
	if err := fb.Load(); err != nil {
		return nil, err
	}
	return fb, nil
}

// UnloadAll releases every framebuffer and texture handle. Objects stay usable
// and reload on demand.
func (tc *TextureCache) UnloadAll() {
	for fb := range tc.frameBuffers {
		fb.unload()
	}
	for rt := range tc.renderTextures {
		rt.unload()
	}
	for _, t := range tc.textures {
		t.unload()
	}
}

// CleanUp forgets every entry that no longer owns a GPU handle. Forgotten
// objects register again when they next load.
func (tc *TextureCache) CleanUp() {
	for fb := range tc.frameBuffers {
		if !fb.Loaded() {
			delete(tc.frameBuffers, fb)
		}
	}
	for rt := range tc.renderTextures {
		if !rt.Loaded() {
			delete(tc.renderTextures, rt)
		}
	}
	for key, t := range tc.textures {
		if !t.Loaded() {
			delete(tc.textures, key)
		}
	}
}

// GetStats returns current texture cache statistics
func (tc *TextureCache) GetStats() TextureStats {
	stats := TextureStats{
		Textures:       len(tc.textures),
		RenderTextures: len(tc.renderTextures),
		FrameBuffers:   len(tc.frameBuffers),
	}
	for _, t := range tc.textures {
		if t.Loaded() {
			stats.LoadedTextures++
		}
	}
	return stats
}

// LogStats logs current texture statistics
func (tc *TextureCache) LogStats() {
	stats := tc.GetStats()
	logger.Log.Info("Texture cache stats",
		zap.Int("textures", stats.Textures),
		zap.Int("loadedTextures", stats.LoadedTextures),
		zap.Int("renderTextures", stats.RenderTextures),
		zap.Int("frameBuffers", stats.FrameBuffers))
}

func (tc *TextureCache) trackTexture(t *Texture) {
	if _, ok := tc.textures[t.key]; !ok {
		tc.textures[t.key] = t
	}
}

func (tc *TextureCache) trackRenderTexture(rt *RenderTexture) {
	tc.renderTextures[rt] = struct{}{}
}

func (tc *TextureCache) trackFrameBuffer(fb *FrameBufferTarget) {
	tc.frameBuffers[fb] = struct{}{}
}

// toRGBA converts img to tightly packed RGBA. Mipmapped textures are scaled up to
// power-of-two dimensions, which GL ES 2.0 requires for mipmapping.
func toRGBA(img image.Image, powerOfTwo bool) *image.RGBA {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if powerOfTwo {
		width, height = nextPowerOfTwo(width), nextPowerOfTwo(height)
	}

	if rgba, ok := img.(*image.RGBA); ok && width == b.Dx() && height == b.Dy() &&
		rgba.Stride == width*4 && b.Min == (image.Point{}) {
		return rgba
	}

	rgba := image.NewRGBA(image.Rect(0, 0, width, height))
	if width == b.Dx() && height == b.Dy() {
		xdraw.Draw(rgba, rgba.Bounds(), img, b.Min, xdraw.Src)
	} else {
		xdraw.CatmullRom.Scale(rgba, rgba.Bounds(), img, b, xdraw.Src, nil)
	}
	return rgba
}
