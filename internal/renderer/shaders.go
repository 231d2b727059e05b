package renderer

import (
	"go.uber.org/zap"

	"Sunlight/internal/gfx"
	"Sunlight/internal/logger"
)

// =============================================================
//
//	Shaders
//
// =============================================================

// Shader is one compiled stage. The source is kept so the stage can be
// recompiled after its GPU object was released.
type Shader struct {
	cache  *ShaderProgramCache
	stage  gfx.Enum
	source string
	handle uint32
}

// Stage returns gfx.VERTEX_SHADER or gfx.FRAGMENT_SHADER.
func (s *Shader) Stage() gfx.Enum { return s.stage }

// Loaded reports whether the stage currently has a compiled GPU object.
func (s *Shader) Loaded() bool { return s.handle != 0 }

func (s *Shader) load() error {
	if s.handle != 0 {
		return nil
	}
	handle, err := s.cache.compile(s.stage, s.source)
	if err != nil {
		return err
	}
	s.handle = handle
	s.cache.shaders[shaderKey{stage: s.stage, source: s.source}] = s
	return nil
}

func (s *Shader) unload() {
	if s.handle == 0 {
		return
	}
	s.cache.device.DeleteShader(s.handle)
	s.handle = 0
}

// Program is a linked vertex+fragment pair. The pipeline holds *Program values
// it does not own; the cache releases their handles.
type Program struct {
	cache    *ShaderProgramCache
	vertex   *Shader
	fragment *Shader
	handle   uint32
	uniforms *UniformCache
}

// Loaded reports whether the program is currently linked.
func (p *Program) Loaded() bool { return p.handle != 0 }

// Handle returns the linked program object, 0 when unloaded.
func (p *Program) Handle() uint32 { return p.handle }

// Load links the program if it is not linked yet, recompiling released stages.
func (p *Program) Load() error {
	if p.handle != 0 {
		return nil
	}
	if err := p.vertex.load(); err != nil {
		return err
	}
	if err := p.fragment.load(); err != nil {
		return err
	}
	handle, err := p.cache.link(p.vertex.handle, p.fragment.handle)
	if err != nil {
		return err
	}
	p.handle = handle
	p.uniforms.Reset(handle)
	p.cache.programs[programKey{vertex: p.vertex.source, fragment: p.fragment.source}] = p
	return nil
}

// Use activates the program for subsequent draws. It returns false when the
// program cannot be linked.
func (p *Program) Use() bool {
	if err := p.Load(); err != nil {
		logger.Log.Warn("Shader program unavailable", zap.Error(err))
		return false
	}
	p.cache.device.UseProgram(p.handle)
	return true
}

// Uniforms returns the location cache for this program.
func (p *Program) Uniforms() *UniformCache { return p.uniforms }

// AttribLocation resolves a vertex attribute by name, -1 if absent.
func (p *Program) AttribLocation(name string) int32 {
	if p.handle == 0 {
		return -1
	}
	return p.uniforms.GetAttribLocation(name)
}

func (p *Program) unload() {
	if p.handle == 0 {
		return
	}
	p.cache.device.DeleteProgram(p.handle)
	p.handle = 0
	p.uniforms.Clear()
}

type shaderKey struct {
	stage  gfx.Enum
	source string
}

type programKey struct {
	vertex   string
	fragment string
}

// ShaderProgramCache compiles and links named shader pairs and owns every GPU
// shader and program handle it hands out. One cache per GL context owner.
type ShaderProgramCache struct {
	device   gfx.Device
	shaders  map[shaderKey]*Shader
	programs map[programKey]*Program
}

// NewShaderProgramCache creates an empty cache bound to device.
func NewShaderProgramCache(device gfx.Device) *ShaderProgramCache {
	return &ShaderProgramCache{
		device:   device,
		shaders:  make(map[shaderKey]*Shader),
		programs: make(map[programKey]*Program),
	}
}

// CreateVertexShader compiles a vertex stage.
func (sc *ShaderProgramCache) CreateVertexShader(source string) (*Shader, error) {
	return sc.createShader(gfx.VERTEX_SHADER, source)
}

// CreateFragmentShader compiles a fragment stage.
func (sc *ShaderProgramCache) CreateFragmentShader(source string) (*Shader, error) {
	return sc.createShader(gfx.FRAGMENT_SHADER, source)
}

func (sc *ShaderProgramCache) createShader(stage gfx.Enum, source string) (*Shader, error) {
	key := shaderKey{stage: stage, source: source}
	shader, ok := sc.shaders[key]
	if !ok {
		shader = &Shader{cache: sc, stage: stage, source: source}
	}
	if err := shader.load(); err != nil {
		return nil, err
	}
	return shader, nil
}

// CreateShaderProgram links vertex and fragment. Requests with the same pair of
// sources return the same *Program.
func (sc *ShaderProgramCache) CreateShaderProgram(vertex, fragment *Shader) (*Program, error) {
	key := programKey{vertex: vertex.source, fragment: fragment.source}
	if program, ok := sc.programs[key]; ok {
		if err := program.Load(); err != nil {
			return nil, err
		}
		return program, nil
	}

	program := &Program{
		cache:    sc,
		vertex:   vertex,
		fragment: fragment,
		uniforms: NewUniformCache(sc.device, 0),
	}
	if err := program.Load(); err != nil {
		return nil, err
	}
	logger.Log.Debug("Shader program linked", zap.Uint32("program", program.handle))
	return program, nil
}

// ReleaseShaderObjects deletes compiled stages. Linked programs keep working;
// a later relink recompiles from source.
func (sc *ShaderProgramCache) ReleaseShaderObjects() {
	for _, shader := range sc.shaders {
		shader.unload()
	}
}

// UnloadAll releases every program and shader handle. Cached objects survive and
// reload lazily on next use, which is what a recreated context needs.
func (sc *ShaderProgramCache) UnloadAll() {
	for _, program := range sc.programs {
		program.unload()
	}
	sc.ReleaseShaderObjects()
}

// CleanUp forgets cache entries that no longer own a GPU handle. Forgotten
// objects register again when they next load.
func (sc *ShaderProgramCache) CleanUp() {
	for key, program := range sc.programs {
		if !program.Loaded() {
			delete(sc.programs, key)
		}
	}
	for key, shader := range sc.shaders {
		if !shader.Loaded() {
			delete(sc.shaders, key)
		}
	}
}

// Len returns the number of cached programs.
func (sc *ShaderProgramCache) Len() int { return len(sc.programs) }

func (sc *ShaderProgramCache) compile(stage gfx.Enum, source string) (uint32, error) {
	shader := sc.device.CreateShader(stage)
	sc.device.ShaderSource(shader, source)
	sc.device.CompileShader(shader)

	if sc.device.GetShaderiv(shader, gfx.COMPILE_STATUS) == 0 {
		log := sc.device.GetShaderInfoLog(shader)
		sc.device.DeleteShader(shader)
		logger.Log.Error("Failed to compile", zap.String("stage", stageName(stage)), zap.String("log", log))
		return 0, &ShaderCompileError{Stage: stage, Log: log}
	}
	return shader, nil
}

func (sc *ShaderProgramCache) link(vertexShader, fragmentShader uint32) (uint32, error) {
	program := sc.device.CreateProgram()
	sc.device.AttachShader(program, vertexShader)
	sc.device.AttachShader(program, fragmentShader)
	sc.device.LinkProgram(program)
	sc.device.DetachShader(program, vertexShader)
	sc.device.DetachShader(program, fragmentShader)

	if sc.device.GetProgramiv(program, gfx.LINK_STATUS) == 0 {
		log := sc.device.GetProgramInfoLog(program)
		sc.device.DeleteProgram(program)
		logger.Log.Error("Failed to link program", zap.String("log", log))
		return 0, &ShaderLinkError{Log: log}
	}
	return program, nil
}
