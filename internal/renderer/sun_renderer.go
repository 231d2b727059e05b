package renderer

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"Sunlight/internal/gfx"
	"Sunlight/internal/logger"
)

// Animation periods in milliseconds.
const (
	rotationPeriod    = 600000
	timePeriod        = 790000
	time2Period       = 669000
	time3Period       = 637000
	time4Period       = 3370000
	colorOffsetPeriod = 19000
)

// Light-ray pass parameters.
const (
	rayDecay    = 0.95
	rayWeight   = 0.11
	rayDensity  = 0.1
	rayExposure = 0.58
)

const (
	coronaLevel     = 0.5
	surfaceColorAdd = 0.0
	surfaceColorMul = 1.0

	positionAttribute = "aPosition"
	texCoordAttribute = "aTextureCoord"
)

// Resources are the collaborators a SunRenderer draws through. Nil caches are
// created on the device; a nil Clock reads the system uptime.
type Resources struct {
	Device   gfx.Device
	Assets   AssetProvider
	Shaders  *ShaderProgramCache
	Textures *TextureCache
	Geometry *GeometryFactory
	Clock    *AnimationClock
}

// SunRenderer draws the animated sun sphere, its additive corona and an
// optional light-ray post pass.
type SunRenderer struct {
	device   gfx.Device
	assets   AssetProvider
	shaders  *ShaderProgramCache
	textures *TextureCache
	geometry *GeometryFactory
	clock    *AnimationClock
	camera   *Camera
	config   Config

	state       atomic.Int32
	postEffects atomic.Bool

	sphere *VertexBuffer
	quad   *VertexBuffer

	sunProgram    *Program
	coronaProgram *Program
	postProgram   *Program

	baseTexture  *Texture
	noiseTexture *Texture
	colorTexture *Texture

	renderTexture *RenderTexture
	frameBuffer   *FrameBufferTarget
	quadMatrix    mgl32.Mat4

	surfaceWidth      int
	surfaceHeight     int
	frameBufferWidth  int
	frameBufferHeight int
}

var _ Renderer = (*SunRenderer)(nil)

// NewSunRenderer builds the CPU side of the scene. No GL call is made until
// OnSurfaceCreated.
func NewSunRenderer(config Config, res Resources) (*SunRenderer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if res.Device == nil {
		return nil, fmt.Errorf("sun renderer needs a device")
	}
	if res.Assets == nil {
		return nil, fmt.Errorf("sun renderer needs an asset provider")
	}
	if res.Shaders == nil {
		res.Shaders = NewShaderProgramCache(res.Device)
	}
	if res.Textures == nil {
		res.Textures = NewTextureCache(res.Device)
	}
	if res.Geometry == nil {
		res.Geometry = NewGeometryFactory(res.Device)
	}
	if res.Clock == nil {
		res.Clock = NewAnimationClock(nil)
	}

	sphere, err := res.Geometry.CreateSphere(config.HorizontalResolution, config.VerticalResolution)
	if err != nil {
		return nil, err
	}

	r := &SunRenderer{
		device:            res.Device,
		assets:            res.Assets,
		shaders:           res.Shaders,
		textures:          res.Textures,
		geometry:          res.Geometry,
		clock:             res.Clock,
		camera:            NewSunCamera(),
		config:            config,
		sphere:            sphere,
		quad:              res.Geometry.CreateScreenQuad(),
		frameBufferWidth:  config.FrameBufferWidth,
		frameBufferHeight: config.FrameBufferHeight,
		surfaceWidth:      config.FrameBufferWidth,
		surfaceHeight:     config.FrameBufferHeight,
	}
	r.postEffects.Store(config.PostEffectsEnabled)
	return r, nil
}

// State reports the lifecycle stage.
func (r *SunRenderer) State() State { return State(r.state.Load()) }

// SetPostEffectsEnabled switches the light-ray pass. Safe from any goroutine.
func (r *SunRenderer) SetPostEffectsEnabled(enabled bool) { r.postEffects.Store(enabled) }

// PostEffectsEnabled reports whether frames go through the light-ray pass.
func (r *SunRenderer) PostEffectsEnabled() bool { return r.postEffects.Load() }

// FrameBufferSize returns the current offscreen target size.
func (r *SunRenderer) FrameBufferSize() (int, int) {
	return r.frameBufferWidth, r.frameBufferHeight
}

// OnSurfaceCreated drops every handle of the previous context and creates the
// resources of the new one. Shader problems are logged and skip the affected
// passes; a render target that cannot be allocated is returned.
func (r *SunRenderer) OnSurfaceCreated() error {
	r.state.Store(int32(StateUninitialized))
	r.quadMatrix = mgl32.Ortho(0, 1, 0, 1, -1, 1)

	r.textures.UnloadAll()
	r.textures.CleanUp()
	r.shaders.UnloadAll()
	r.shaders.CleanUp()
	r.geometry.UnloadAll()
	r.renderTexture, r.frameBuffer = nil, nil

	if err := r.loadShaders(); err != nil {
		logger.Log.Error("Shader setup incomplete", zap.Error(err))
	}
	r.loadTextures()

	if r.sunProgram != nil {
		if err := r.sunProgram.Load(); err != nil {
			logger.Log.Warn("Sun program not linked", zap.Error(err))
		}
	}
	r.shaders.ReleaseShaderObjects()

	if err := r.setupFrameBuffer(); err != nil {
		logger.Log.Error("Could not create render target",
			zap.Int("width", r.frameBufferWidth),
			zap.Int("height", r.frameBufferHeight),
			zap.Error(err))
		return err
	}

	r.camera.UpdateView()
	r.state.Store(int32(StateSurfaceReady))
	logger.Log.Info("Surface created",
		zap.Int("frameBufferWidth", r.frameBufferWidth),
		zap.Int("frameBufferHeight", r.frameBufferHeight))
	return nil
}

// OnSurfaceChanged adapts the projection and the offscreen target to a new
// surface size.
func (r *SunRenderer) OnSurfaceChanged(width, height int) error {
	r.shaders.CleanUp()

	r.device.Viewport(0, 0, int32(width), int32(height))
	r.camera.SetViewport(width, height)
	r.surfaceWidth, r.surfaceHeight = width, height
	r.frameBufferWidth, r.frameBufferHeight = FrameBufferSize(r.config, width, height)

	logger.Log.Info("Surface changed",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int("frameBufferWidth", r.frameBufferWidth),
		zap.Int("frameBufferHeight", r.frameBufferHeight))

	if r.frameBuffer != nil {
		if err := r.frameBuffer.Update(r.frameBufferWidth, r.frameBufferHeight); err != nil {
			logger.Log.Error("Could not resize render target", zap.Error(err))
			return err
		}
	}
	if r.State() != StateUninitialized {
		r.state.Store(int32(StateRendering))
	}
	return nil
}

// OnDrawFrame renders one frame. Until the first OnSurfaceChanged the surface
// is assumed to have the configured framebuffer size.
func (r *SunRenderer) OnDrawFrame() {
	if r.State() == StateUninitialized {
		return
	}

	r.device.ClearColor(0, 0, 0, 1)
	r.device.Clear(gfx.COLOR_BUFFER_BIT)

	// Without a linked ray program the offscreen image could never reach the screen.
	if !r.PostEffectsEnabled() || r.frameBuffer == nil || r.postProgram == nil || r.postProgram.Load() != nil {
		r.renderSun()
		return
	}

	if err := r.frameBuffer.Bind(); err != nil {
		logger.Log.Warn("Render target unavailable, drawing directly", zap.Error(err))
		r.renderSun()
		return
	}
	r.device.Viewport(0, 0, int32(r.frameBuffer.Width()), int32(r.frameBuffer.Height()))
	r.device.Clear(gfx.COLOR_BUFFER_BIT)

	r.renderSun()

	r.frameBuffer.Unbind()
	r.device.Viewport(0, 0, int32(r.surfaceWidth), int32(r.surfaceHeight))
	r.device.Clear(gfx.COLOR_BUFFER_BIT)

	r.renderPostEffect()
}

// Shutdown releases every GPU resource the renderer created.
func (r *SunRenderer) Shutdown() {
	r.textures.UnloadAll()
	r.textures.CleanUp()
	r.shaders.UnloadAll()
	r.shaders.CleanUp()
	r.geometry.UnloadAll()
	r.renderTexture, r.frameBuffer = nil, nil
	r.state.Store(int32(StateUninitialized))
	logger.Log.Info("Sun renderer shut down")
}

func (r *SunRenderer) loadShaders() error {
	if r.sunProgram != nil && r.coronaProgram != nil && r.postProgram != nil {
		return nil
	}

	var errs error
	if r.sunProgram == nil {
		program, err := r.loadProgram(SunVertexShader, SunFragmentShader)
		r.sunProgram = program
		errs = multierr.Append(errs, err)
	}
	if r.coronaProgram == nil {
		program, err := r.loadProgram(SunCoronaVertexShader, SunCoronaFragmentShader)
		r.coronaProgram = program
		errs = multierr.Append(errs, err)
	}
	if r.postProgram == nil {
		program, err := r.loadProgram(SunRayVertexShader, SunRayFragmentShader)
		r.postProgram = program
		errs = multierr.Append(errs, err)
	}
	return errs
}

func (r *SunRenderer) loadProgram(vertexName, fragmentName string) (*Program, error) {
	vertexSource, err := r.assets.ShaderSource(vertexName)
	if err != nil {
		return nil, &ResourceDecodeError{Name: vertexName, Err: err}
	}
	fragmentSource, err := r.assets.ShaderSource(fragmentName)
	if err != nil {
		return nil, &ResourceDecodeError{Name: fragmentName, Err: err}
	}

	vertex, err := r.shaders.CreateVertexShader(vertexSource)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", vertexName, err)
	}
	fragment, err := r.shaders.CreateFragmentShader(fragmentSource)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fragmentName, err)
	}
	program, err := r.shaders.CreateShaderProgram(vertex, fragment)
	if err != nil {
		return nil, fmt.Errorf("%s+%s: %w", vertexName, fragmentName, err)
	}
	return program, nil
}

func (r *SunRenderer) loadTextures() {
	if r.baseTexture == nil {
		r.baseTexture = r.textures.CreateTexture(r.assets.Image(SunSurfaceImage), true,
			gfx.NEAREST, gfx.LINEAR, gfx.REPEAT, gfx.REPEAT)
	}
	if r.noiseTexture == nil {
		r.noiseTexture = r.textures.CreateTexture(r.assets.Image(NoiseImage), true,
			gfx.NEAREST, gfx.LINEAR, gfx.REPEAT, gfx.REPEAT)
	}
	if r.colorTexture == nil {
		r.colorTexture = r.textures.CreateTexture(r.assets.Image(StarColorImage), true,
			gfx.NEAREST, gfx.LINEAR, gfx.CLAMP_TO_EDGE, gfx.CLAMP_TO_EDGE)
	}
}

func (r *SunRenderer) setupFrameBuffer() error {
	var undo Unwind
	defer undo.Unwind()

	renderTexture := r.textures.CreateRenderTexture(r.frameBufferWidth, r.frameBufferHeight)
	if err := renderTexture.Load(); err != nil {
		return err
	}
	undo.Add(renderTexture.unload)

	frameBuffer, err := r.textures.CreateFrameBuffer(renderTexture)
	if err != nil {
		return err
	}

	undo.Discard()
	r.renderTexture, r.frameBuffer = renderTexture, frameBuffer
	return nil
}

// sphereUniforms are shared by the surface and corona draws.
type sphereUniforms struct {
	mvp         mgl32.Mat4
	time        float32
	time2       float32
	time3       float32
	colorOffset float32
}

func (r *SunRenderer) renderSun() {
	if r.sunProgram == nil || r.baseTexture == nil {
		return
	}
	if !r.baseTexture.Load() || !r.noiseTexture.Load() || !r.colorTexture.Load() {
		return
	}
	if !r.sunProgram.Use() {
		return
	}

	angle := r.clock.Phase(rotationPeriod)
	model := mgl32.HomogRotate3DX(mgl32.DegToRad(90)).
		Mul4(mgl32.HomogRotate3DZ(mgl32.DegToRad(360 * angle)))

	u := sphereUniforms{
		mvp:         r.camera.GetViewProjection().Mul4(model),
		time:        r.clock.Phase(timePeriod),
		time2:       r.clock.Phase(time2Period),
		time3:       r.clock.Phase(time3Period),
		colorOffset: r.clock.Phase(colorOffsetPeriod),
	}

	if !r.bindSphere(r.sunProgram, u) {
		return
	}

	r.device.Enable(gfx.CULL_FACE)
	r.device.CullFace(gfx.BACK)

	r.sphere.Draw(gfx.TRIANGLE_STRIP)
	r.unbindSphere(r.sunProgram)

	if r.coronaProgram != nil && r.coronaProgram.Use() {
		r.device.Enable(gfx.BLEND)
		r.device.BlendFunc(gfx.SRC_ALPHA, gfx.ONE)

		if r.bindSphere(r.coronaProgram, u) {
			uniforms := r.coronaProgram.Uniforms()
			uniforms.SetFloat("uTime4", r.clock.Phase(time4Period))
			uniforms.SetFloat("uLevel", coronaLevel)

			r.sphere.Draw(gfx.TRIANGLE_STRIP)
			r.unbindSphere(r.coronaProgram)
		}

		r.device.Disable(gfx.BLEND)
	}

	r.device.Disable(gfx.CULL_FACE)
}

// bindSphere attaches the three sun textures and the sphere stream to program
// and uploads the shared uniforms.
func (r *SunRenderer) bindSphere(program *Program, u sphereUniforms) bool {
	r.baseTexture.Bind(0, program, "sBaseTexture")
	r.noiseTexture.Bind(1, program, "sNoiseTexture")
	r.colorTexture.Bind(2, program, "sColorTexture")

	if !r.sphere.Bind(program, positionAttribute, texCoordAttribute) {
		r.unbindTextures()
		return false
	}

	uniforms := program.Uniforms()
	uniforms.SetMat4("uMVPMatrix", u.mvp)
	uniforms.SetFloat("uTime", u.time)
	uniforms.SetFloat("uTime2", u.time2)
	uniforms.SetFloat("uTime3", u.time3)
	uniforms.SetFloat("uColorOffset", u.colorOffset)
	uniforms.SetFloat("uColorAdd", surfaceColorAdd)
	uniforms.SetFloat("uColorMul", surfaceColorMul)
	return true
}

func (r *SunRenderer) unbindSphere(program *Program) {
	r.sphere.Unbind(program, positionAttribute, texCoordAttribute)
	r.unbindTextures()
}

func (r *SunRenderer) unbindTextures() {
	r.baseTexture.Unbind(0)
	r.noiseTexture.Unbind(1)
	r.colorTexture.Unbind(2)
}

func (r *SunRenderer) renderPostEffect() {
	if r.postProgram == nil || r.renderTexture == nil || !r.postProgram.Use() {
		return
	}

	r.renderTexture.Bind(0, r.postProgram, "sTexture")
	if !r.quad.Bind(r.postProgram, positionAttribute, texCoordAttribute) {
		r.renderTexture.Unbind(0)
		return
	}

	uniforms := r.postProgram.Uniforms()
	uniforms.SetFloat("uDecay", rayDecay)
	uniforms.SetFloat("uWeight", rayWeight)
	uniforms.SetFloat("uDensity", rayDensity)
	uniforms.SetFloat("uExposure", rayExposure)
	uniforms.SetMat4("uMVPMatrix", r.quadMatrix)

	r.quad.Draw(gfx.TRIANGLE_STRIP)

	r.quad.Unbind(r.postProgram, positionAttribute, texCoordAttribute)
	r.renderTexture.Unbind(0)
}
