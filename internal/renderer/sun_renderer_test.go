package renderer

import (
	"errors"
	"fmt"
	"testing"

	"Sunlight/internal/gfx"
	"Sunlight/internal/gfx/gfxtest"
)

type stubAssets struct {
	shaders map[string]string
	images  map[string]*stubImage
}

func newStubAssets() *stubAssets {
	a := &stubAssets{
		shaders: make(map[string]string),
		images:  make(map[string]*stubImage),
	}
	for _, name := range []string{
		SunVertexShader, SunFragmentShader,
		SunCoronaVertexShader, SunCoronaFragmentShader,
		SunRayVertexShader, SunRayFragmentShader,
	} {
		a.shaders[name] = fmt.Sprintf("// %s\nvoid main() {}\n", name)
	}
	for _, name := range []string{SunSurfaceImage, NoiseImage, StarColorImage} {
		a.images[name] = &stubImage{name: name, img: solidImage(8, 8)}
	}
	return a
}

func (a *stubAssets) ShaderSource(name string) (string, error) {
	source, ok := a.shaders[name]
	if !ok {
		return "", fmt.Errorf("no shader %q", name)
	}
	return source, nil
}

func (a *stubAssets) Image(name string) ImageSource {
	if img, ok := a.images[name]; ok {
		return img
	}
	return &stubImage{name: name, err: fmt.Errorf("no image %q", name)}
}

func newTestSun(t *testing.T, rec *gfxtest.Recorder, assets *stubAssets) *SunRenderer {
	t.Helper()
	r, err := NewSunRenderer(DefaultConfig(), Resources{
		Device: rec,
		Assets: assets,
		// Every phase below is taken at 395 s of uptime.
		Clock: NewAnimationClock(fixedUptime(395000)),
	})
	if err != nil {
		t.Fatalf("NewSunRenderer: %v", err)
	}
	return r
}

// runningSun returns a renderer that went through surface creation and a
// 1000x600 surface change.
func runningSun(t *testing.T, rec *gfxtest.Recorder, assets *stubAssets) *SunRenderer {
	t.Helper()
	r := newTestSun(t, rec, assets)
	if err := r.OnSurfaceCreated(); err != nil {
		t.Fatalf("OnSurfaceCreated: %v", err)
	}
	if err := r.OnSurfaceChanged(1000, 600); err != nil {
		t.Fatalf("OnSurfaceChanged: %v", err)
	}
	return r
}

func TestNewSunRendererValidates(t *testing.T) {
	config := DefaultConfig()
	config.HorizontalResolution = 1
	if _, err := NewSunRenderer(config, Resources{Device: gfxtest.New(), Assets: newStubAssets()}); err == nil {
		t.Error("expected error for invalid config")
	}
	if _, err := NewSunRenderer(DefaultConfig(), Resources{Assets: newStubAssets()}); err == nil {
		t.Error("expected error without a device")
	}
}

func TestNewSunRendererMakesNoCalls(t *testing.T) {
	rec := gfxtest.New()
	r := newTestSun(t, rec, newStubAssets())

	if len(rec.Calls) != 0 {
		t.Errorf("construction should not touch the device, got %v", rec.Names())
	}
	if r.State() != StateUninitialized {
		t.Errorf("state = %v, want uninitialized", r.State())
	}
	if !r.PostEffectsEnabled() {
		t.Error("post effects should follow the config default")
	}
}

func TestSurfaceCreated(t *testing.T) {
	rec := gfxtest.New()
	r := newTestSun(t, rec, newStubAssets())

	if err := r.OnSurfaceCreated(); err != nil {
		t.Fatalf("OnSurfaceCreated: %v", err)
	}
	if r.State() != StateSurfaceReady {
		t.Errorf("state = %v, want surface-ready", r.State())
	}
	if r.sunProgram == nil || r.coronaProgram == nil || r.postProgram == nil {
		t.Fatal("all three programs should be created")
	}
	if !r.sunProgram.Loaded() {
		t.Error("sun program should be linked eagerly")
	}
	if rec.LiveShaders() != 0 {
		t.Errorf("shader objects should be released after linking, %d live", rec.LiveShaders())
	}
	if rec.LiveFramebuffers() != 1 {
		t.Errorf("expected 1 framebuffer, got %d", rec.LiveFramebuffers())
	}
	if w, h, _ := rec.TextureSize(r.renderTexture.Handle()); w != 256 || h != 256 {
		t.Errorf("render texture = %dx%d, want 256x256", w, h)
	}
}

func TestDrawFrameBeforeSurfaceChanged(t *testing.T) {
	rec := gfxtest.New()
	r := newTestSun(t, rec, newStubAssets())
	if err := r.OnSurfaceCreated(); err != nil {
		t.Fatalf("OnSurfaceCreated: %v", err)
	}

	for frame := 0; frame < 3; frame++ {
		rec.Reset()
		r.OnDrawFrame()
		if n := rec.Count("DrawArrays"); n != 3 {
			t.Fatalf("frame %d: expected sun, corona and ray draws, got %d", frame, n)
		}
	}
	if rec.IndexOf("Viewport", int32(0), int32(0), int32(256), int32(256)) < 0 {
		t.Errorf("expected the default 256x256 surface viewport, got %v", rec.Names())
	}
	if r.State() != StateSurfaceReady {
		t.Errorf("state = %v, want surface-ready", r.State())
	}
}

func TestSurfaceCreatedRenderTargetFailure(t *testing.T) {
	rec := gfxtest.New()
	rec.FramebufferStatus = gfx.FRAMEBUFFER_UNSUPPORTED
	r := newTestSun(t, rec, newStubAssets())

	err := r.OnSurfaceCreated()

	var allocErr *RenderTargetAllocationError
	if !errors.As(err, &allocErr) {
		t.Fatalf("expected RenderTargetAllocationError, got %v", err)
	}
	if r.State() != StateUninitialized {
		t.Errorf("state = %v, want uninitialized", r.State())
	}
	if rec.LiveTextures() != 0 || rec.LiveFramebuffers() != 0 {
		t.Errorf("partial allocation not rolled back: %d textures, %d framebuffers",
			rec.LiveTextures(), rec.LiveFramebuffers())
	}
}

func TestShaderFailureIsNotFatal(t *testing.T) {
	rec := gfxtest.New()
	rec.CompileFailures[SunCoronaFragmentShader] = "0:1: syntax error"
	r := newTestSun(t, rec, newStubAssets())

	if err := r.OnSurfaceCreated(); err != nil {
		t.Fatalf("OnSurfaceCreated: %v", err)
	}
	if r.coronaProgram != nil {
		t.Error("corona program should be absent")
	}
	if r.sunProgram == nil || r.postProgram == nil {
		t.Error("other programs should still load")
	}
}

func TestMissingShaderSourceIsNotFatal(t *testing.T) {
	rec := gfxtest.New()
	assets := newStubAssets()
	delete(assets.shaders, SunRayFragmentShader)
	r := newTestSun(t, rec, assets)

	if err := r.OnSurfaceCreated(); err != nil {
		t.Fatalf("OnSurfaceCreated: %v", err)
	}
	if r.postProgram != nil {
		t.Error("post program should be absent")
	}
	if err := r.OnSurfaceChanged(1000, 600); err != nil {
		t.Fatal(err)
	}

	rec.Reset()
	r.OnDrawFrame()
	if n := rec.Count("DrawArrays"); n != 2 {
		t.Errorf("expected sun and corona draws only, got %d", n)
	}
	if rec.Count("BindFramebuffer") != 0 {
		t.Error("without a ray program the sun should be drawn on screen")
	}
}

func TestRayLinkFailureDrawsDirectly(t *testing.T) {
	rec := gfxtest.New()
	rec.LinkFailures[SunRayVertexShader] = "varying mismatch"
	r := runningSun(t, rec, newStubAssets())

	if r.postProgram != nil {
		t.Fatal("post program should be absent")
	}
	rec.Reset()
	r.OnDrawFrame()

	if rec.Count("BindFramebuffer") != 0 {
		t.Errorf("expected direct rendering, got %v", rec.Names())
	}
	if n := rec.Count("DrawArrays"); n != 2 {
		t.Errorf("expected sun and corona draws, got %d", n)
	}
	if n := rec.Count("Clear"); n != 1 {
		t.Errorf("expected one clear, got %d", n)
	}
}

func TestSurfaceChanged(t *testing.T) {
	rec := gfxtest.New()
	r := runningSun(t, rec, newStubAssets())

	if r.State() != StateRendering {
		t.Errorf("state = %v, want rendering", r.State())
	}
	if vp := rec.CurrentViewport(); vp != [4]int32{0, 0, 1000, 600} {
		t.Errorf("viewport = %v, want [0 0 1000 600]", vp)
	}
	if w, h := r.FrameBufferSize(); w != 512 || h != 512 {
		t.Errorf("frame buffer = %dx%d, want 512x512", w, h)
	}
	if w, h, _ := rec.TextureSize(r.renderTexture.Handle()); w != 512 || h != 512 {
		t.Errorf("render texture = %dx%d, want 512x512", w, h)
	}
	if r.frameBuffer.Width() != 512 || r.frameBuffer.Height() != 512 {
		t.Error("frame buffer should report its texture size")
	}

	if err := r.OnSurfaceChanged(512, 512); err != nil {
		t.Fatal(err)
	}
	if w, h := r.FrameBufferSize(); w != 256 || h != 256 {
		t.Errorf("frame buffer = %dx%d, want 256x256", w, h)
	}
}

func TestDrawFrameWithPostEffects(t *testing.T) {
	rec := gfxtest.New()
	r := runningSun(t, rec, newStubAssets())
	fb := r.frameBuffer.handle
	sphereCount := int32(r.sphere.VertexCount())

	rec.Reset()
	r.OnDrawFrame()

	steps := []int{
		rec.IndexOf("Clear", gfx.COLOR_BUFFER_BIT),
		rec.IndexOf("BindFramebuffer", gfx.FRAMEBUFFER, fb),
		rec.IndexOf("Viewport", int32(0), int32(0), int32(512), int32(512)),
		rec.IndexOf("DrawArrays", gfx.TRIANGLE_STRIP, int32(0), sphereCount),
		rec.IndexOf("BindFramebuffer", gfx.FRAMEBUFFER, uint32(0)),
		rec.IndexOf("Viewport", int32(0), int32(0), int32(1000), int32(600)),
		rec.IndexOf("DrawArrays", gfx.TRIANGLE_STRIP, int32(0), int32(4)),
	}
	for i, idx := range steps {
		if idx < 0 {
			t.Fatalf("step %d missing from %v", i, rec.Names())
		}
		if i > 0 && idx <= steps[i-1] {
			t.Errorf("step %d at %d should follow step %d at %d", i, idx, i-1, steps[i-1])
		}
	}
	if n := rec.Count("DrawArrays"); n != 3 {
		t.Errorf("expected sun, corona and ray draws, got %d", n)
	}
	if n := rec.Count("Clear"); n != 3 {
		t.Errorf("expected 3 clears, got %d", n)
	}
	if rec.BoundFramebuffer() != 0 {
		t.Error("frame should end on the default framebuffer")
	}
}

func TestDrawFrameWithoutPostEffects(t *testing.T) {
	rec := gfxtest.New()
	r := runningSun(t, rec, newStubAssets())
	r.SetPostEffectsEnabled(false)

	rec.Reset()
	r.OnDrawFrame()

	if rec.Count("BindFramebuffer") != 0 {
		t.Error("direct rendering should not touch the framebuffer")
	}
	if n := rec.Count("DrawArrays"); n != 2 {
		t.Errorf("expected sun and corona draws, got %d", n)
	}
}

func TestUndecodableBaseTextureSkipsSunPass(t *testing.T) {
	rec := gfxtest.New()
	assets := newStubAssets()
	assets.images[SunSurfaceImage].err = errors.New("corrupt")
	r := runningSun(t, rec, assets)
	r.SetPostEffectsEnabled(false)

	rec.Reset()
	r.OnDrawFrame()

	for _, c := range rec.Calls {
		if c.Name != "ClearColor" && c.Name != "Clear" {
			t.Fatalf("expected only the frame clear, got %v", rec.Names())
		}
	}

	// The next frame retries and draws once the texture decodes.
	assets.images[SunSurfaceImage].err = nil
	rec.Reset()
	r.OnDrawFrame()
	if rec.Count("DrawArrays") == 0 {
		t.Error("frame should draw after the texture recovers")
	}
}

func TestCoronaBlendState(t *testing.T) {
	rec := gfxtest.New()
	r := runningSun(t, rec, newStubAssets())

	rec.Reset()
	r.OnDrawFrame()

	enable := rec.IndexOf("Enable", gfx.BLEND)
	blend := rec.IndexOf("BlendFunc", gfx.SRC_ALPHA, gfx.ONE)
	disable := rec.IndexOf("Disable", gfx.BLEND)
	if enable < 0 || blend < enable || disable < blend {
		t.Errorf("blend enable/func/disable out of order: %d %d %d", enable, blend, disable)
	}
	if rec.IsEnabled(gfx.BLEND) || rec.IsEnabled(gfx.CULL_FACE) {
		t.Error("blend and culling should be disabled after the frame")
	}
	if rec.IndexOf("CullFace", gfx.BACK) < 0 {
		t.Error("expected back-face culling")
	}
}

func TestAbsentCoronaNeverBlends(t *testing.T) {
	rec := gfxtest.New()
	rec.LinkFailures[SunCoronaVertexShader] = "varying mismatch"
	r := runningSun(t, rec, newStubAssets())

	rec.Reset()
	r.OnDrawFrame()

	if rec.Count("Enable") != 1 || rec.IndexOf("Enable", gfx.CULL_FACE) < 0 {
		t.Errorf("only culling should be enabled, got %v", rec.Names())
	}
	if rec.Count("BlendFunc") != 0 {
		t.Error("blend function should not be set without a corona")
	}
	if rec.IsEnabled(gfx.CULL_FACE) {
		t.Error("culling should be disabled after the frame")
	}
}

func TestFrameUniforms(t *testing.T) {
	rec := gfxtest.New()
	r := runningSun(t, rec, newStubAssets())

	r.OnDrawFrame()

	check := func(program *Program, name string, want interface{}) {
		t.Helper()
		got, ok := rec.Uniform(program.Handle(), name)
		if !ok || got != want {
			t.Errorf("%s = %v (set=%v), want %v", name, got, ok, want)
		}
	}

	// 395000 ms is half of the uTime period.
	check(r.sunProgram, "uTime", float32(0.5))
	check(r.sunProgram, "uColorAdd", float32(0))
	check(r.sunProgram, "uColorMul", float32(1))
	check(r.sunProgram, "sBaseTexture", int32(0))
	check(r.sunProgram, "sNoiseTexture", int32(1))
	check(r.sunProgram, "sColorTexture", int32(2))
	check(r.coronaProgram, "uLevel", float32(0.5))
	check(r.coronaProgram, "uTime", float32(0.5))
	check(r.postProgram, "sTexture", int32(0))
	check(r.postProgram, "uDecay", float32(0.95))
	check(r.postProgram, "uWeight", float32(0.11))
	check(r.postProgram, "uDensity", float32(0.1))
	check(r.postProgram, "uExposure", float32(0.58))
}

func TestSurfaceRecreated(t *testing.T) {
	rec := gfxtest.New()
	r := runningSun(t, rec, newStubAssets())
	r.OnDrawFrame()

	if err := r.OnSurfaceCreated(); err != nil {
		t.Fatalf("second OnSurfaceCreated: %v", err)
	}
	if rec.LivePrograms() != 1 {
		t.Errorf("only the sun program should be linked eagerly, %d live", rec.LivePrograms())
	}
	if rec.LiveFramebuffers() != 1 || rec.LiveBuffers() != 0 {
		t.Errorf("stale resources left: %d framebuffers, %d buffers",
			rec.LiveFramebuffers(), rec.LiveBuffers())
	}

	if err := r.OnSurfaceChanged(1000, 600); err != nil {
		t.Fatal(err)
	}
	rec.Reset()
	r.OnDrawFrame()

	if n := rec.Count("DrawArrays"); n != 3 {
		t.Errorf("expected 3 draws after recreation, got %d", n)
	}
	if rec.LivePrograms() != 3 {
		t.Errorf("programs should relink lazily, %d live", rec.LivePrograms())
	}
	if rec.LiveTextures() != 4 {
		t.Errorf("expected 3 asset textures and the render texture, got %d", rec.LiveTextures())
	}
}

func TestShutdown(t *testing.T) {
	rec := gfxtest.New()
	r := runningSun(t, rec, newStubAssets())
	r.OnDrawFrame()

	r.Shutdown()

	if r.State() != StateUninitialized {
		t.Errorf("state = %v, want uninitialized", r.State())
	}
	if rec.LiveTextures()+rec.LivePrograms()+rec.LiveShaders()+rec.LiveFramebuffers()+rec.LiveBuffers() != 0 {
		t.Errorf("leaked: textures=%d programs=%d shaders=%d framebuffers=%d buffers=%d",
			rec.LiveTextures(), rec.LivePrograms(), rec.LiveShaders(), rec.LiveFramebuffers(), rec.LiveBuffers())
	}

	rec.Reset()
	r.OnDrawFrame()
	if len(rec.Calls) != 0 {
		t.Error("frames after shutdown should draw nothing")
	}
}
