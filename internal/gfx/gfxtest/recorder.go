// Package gfxtest provides a gfx.Device that records every call and keeps just
// enough GL state for renderer tests to make assertions.
package gfxtest

import (
	"fmt"
	"strings"

	"Sunlight/internal/gfx"
)

// Call is one recorded Device method invocation.
type Call struct {
	Name string
	Args []interface{}
}

func (c Call) String() string {
	return fmt.Sprintf("%s%v", c.Name, c.Args)
}

type shaderState struct {
	stage    gfx.Enum
	source   string
	compiled bool
	log      string
}

type programState struct {
	shaders  []uint32
	linked   bool
	log      string
	uniforms map[string]int32
	attribs  map[string]int32
}

// Recorder is a fake GL context. The zero value is not usable; call New.
type Recorder struct {
	Calls []Call

	// CompileFailures fails compilation of any shader whose source contains the
	// key, reporting the value as the info log.
	CompileFailures map[string]string
	// LinkFailures fails linking of any program with an attached shader whose
	// source contains the key.
	LinkFailures map[string]string
	// MissingUniforms lists uniform names that resolve to location -1.
	MissingUniforms map[string]bool
	// FramebufferStatus is returned by CheckFramebufferStatus when non-zero.
	FramebufferStatus gfx.Enum
	// PendingErrors are returned by GetError, oldest first.
	PendingErrors []gfx.Enum

	nextHandle   uint32
	nextLocation int32

	enabled      map[gfx.Enum]bool
	viewport     [4]int32
	framebuffer  uint32
	program      uint32
	activeUnit   gfx.Enum
	shaders      map[uint32]*shaderState
	programs     map[uint32]*programState
	textures     map[uint32][2]int32
	boundTexture map[gfx.Enum]uint32
	framebuffers map[uint32]uint32
	buffers      map[uint32]int
	uniformNames map[int32]string
	uniforms     map[int32]interface{}
}

// New returns an empty recorder.
func New() *Recorder {
	return &Recorder{
		CompileFailures: make(map[string]string),
		LinkFailures:    make(map[string]string),
		MissingUniforms: make(map[string]bool),
		enabled:         make(map[gfx.Enum]bool),
		shaders:         make(map[uint32]*shaderState),
		programs:        make(map[uint32]*programState),
		textures:        make(map[uint32][2]int32),
		boundTexture:    make(map[gfx.Enum]uint32),
		framebuffers:    make(map[uint32]uint32),
		buffers:         make(map[uint32]int),
		uniformNames:    make(map[int32]string),
		uniforms:        make(map[int32]interface{}),
		activeUnit:      gfx.TEXTURE0,
	}
}

func (r *Recorder) record(name string, args ...interface{}) {
	r.Calls = append(r.Calls, Call{Name: name, Args: args})
}

func (r *Recorder) handle() uint32 {
	r.nextHandle++
	return r.nextHandle
}

// Reset forgets recorded calls but keeps GL state.
func (r *Recorder) Reset() {
	r.Calls = nil
}

// Count returns how many times the named method was called.
func (r *Recorder) Count(name string) int {
	n := 0
	for _, c := range r.Calls {
		if c.Name == name {
			n++
		}
	}
	return n
}

// Names returns the recorded method names in order.
func (r *Recorder) Names() []string {
	names := make([]string, len(r.Calls))
	for i, c := range r.Calls {
		names[i] = c.Name
	}
	return names
}

// IndexOf returns the position of the first call matching name and args, or -1.
func (r *Recorder) IndexOf(name string, args ...interface{}) int {
	for i, c := range r.Calls {
		if c.Name != name || len(c.Args) < len(args) {
			continue
		}
		match := true
		for j, a := range args {
			if c.Args[j] != a {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

// IsEnabled reports the current state of a capability.
func (r *Recorder) IsEnabled(capability gfx.Enum) bool { return r.enabled[capability] }

// CurrentViewport returns the last viewport set.
func (r *Recorder) CurrentViewport() [4]int32 { return r.viewport }

// BoundFramebuffer returns the framebuffer currently bound.
func (r *Recorder) BoundFramebuffer() uint32 { return r.framebuffer }

// CurrentProgram returns the program last passed to UseProgram.
func (r *Recorder) CurrentProgram() uint32 { return r.program }

// TextureSize returns the dimensions of the last TexImage2D for texture.
func (r *Recorder) TextureSize(texture uint32) (int32, int32, bool) {
	size, ok := r.textures[texture]
	return size[0], size[1], ok
}

// LiveTextures counts textures generated and not yet deleted.
func (r *Recorder) LiveTextures() int { return len(r.textures) }

// LivePrograms counts programs created and not yet deleted.
func (r *Recorder) LivePrograms() int { return len(r.programs) }

// LiveShaders counts shaders created and not yet deleted.
func (r *Recorder) LiveShaders() int { return len(r.shaders) }

// LiveFramebuffers counts framebuffers generated and not yet deleted.
func (r *Recorder) LiveFramebuffers() int { return len(r.framebuffers) }

// LiveBuffers counts vertex buffers generated and not yet deleted.
func (r *Recorder) LiveBuffers() int { return len(r.buffers) }

// Uniform returns the last value written to the named uniform of program.
func (r *Recorder) Uniform(program uint32, name string) (interface{}, bool) {
	p, ok := r.programs[program]
	if !ok {
		return nil, false
	}
	loc, ok := p.uniforms[name]
	if !ok {
		return nil, false
	}
	v, ok := r.uniforms[loc]
	return v, ok
}

func (r *Recorder) ClearColor(red, green, blue, alpha float32) {
	r.record("ClearColor", red, green, blue, alpha)
}

func (r *Recorder) Clear(mask gfx.Enum) { r.record("Clear", mask) }

func (r *Recorder) Viewport(x, y, width, height int32) {
	r.record("Viewport", x, y, width, height)
	r.viewport = [4]int32{x, y, width, height}
}

func (r *Recorder) Enable(capability gfx.Enum) {
	r.record("Enable", capability)
	r.enabled[capability] = true
}

func (r *Recorder) Disable(capability gfx.Enum) {
	r.record("Disable", capability)
	r.enabled[capability] = false
}

func (r *Recorder) CullFace(mode gfx.Enum) { r.record("CullFace", mode) }

func (r *Recorder) BlendFunc(sfactor, dfactor gfx.Enum) { r.record("BlendFunc", sfactor, dfactor) }

func (r *Recorder) GetError() gfx.Enum {
	r.record("GetError")
	if len(r.PendingErrors) == 0 {
		return gfx.NO_ERROR
	}
	err := r.PendingErrors[0]
	r.PendingErrors = r.PendingErrors[1:]
	return err
}

func (r *Recorder) CreateShader(stage gfx.Enum) uint32 {
	h := r.handle()
	r.record("CreateShader", stage)
	r.shaders[h] = &shaderState{stage: stage}
	return h
}

func (r *Recorder) ShaderSource(shader uint32, source string) {
	r.record("ShaderSource", shader)
	if s, ok := r.shaders[shader]; ok {
		s.source = source
	}
}

func (r *Recorder) CompileShader(shader uint32) {
	r.record("CompileShader", shader)
	s, ok := r.shaders[shader]
	if !ok {
		return
	}
	s.compiled = true
	s.log = ""
	for marker, log := range r.CompileFailures {
		if strings.Contains(s.source, marker) {
			s.compiled = false
			s.log = log
		}
	}
}

func (r *Recorder) GetShaderiv(shader uint32, pname gfx.Enum) int32 {
	r.record("GetShaderiv", shader, pname)
	s, ok := r.shaders[shader]
	if ok && pname == gfx.COMPILE_STATUS && s.compiled {
		return 1
	}
	return 0
}

func (r *Recorder) GetShaderInfoLog(shader uint32) string {
	r.record("GetShaderInfoLog", shader)
	if s, ok := r.shaders[shader]; ok {
		return s.log
	}
	return ""
}

func (r *Recorder) DeleteShader(shader uint32) {
	r.record("DeleteShader", shader)
	delete(r.shaders, shader)
}

func (r *Recorder) CreateProgram() uint32 {
	h := r.handle()
	r.record("CreateProgram")
	r.programs[h] = &programState{
		uniforms: make(map[string]int32),
		attribs:  make(map[string]int32),
	}
	return h
}

func (r *Recorder) AttachShader(program, shader uint32) {
	r.record("AttachShader", program, shader)
	if p, ok := r.programs[program]; ok {
		p.shaders = append(p.shaders, shader)
	}
}

func (r *Recorder) DetachShader(program, shader uint32) {
	r.record("DetachShader", program, shader)
	p, ok := r.programs[program]
	if !ok {
		return
	}
	for i, s := range p.shaders {
		if s == shader {
			p.shaders = append(p.shaders[:i], p.shaders[i+1:]...)
			break
		}
	}
}

func (r *Recorder) LinkProgram(program uint32) {
	r.record("LinkProgram", program)
	p, ok := r.programs[program]
	if !ok {
		return
	}
	p.linked = true
	p.log = ""
	for _, shader := range p.shaders {
		s, ok := r.shaders[shader]
		if !ok || !s.compiled {
			p.linked = false
			p.log = "attached shader is not compiled"
			continue
		}
		for marker, log := range r.LinkFailures {
			if strings.Contains(s.source, marker) {
				p.linked = false
				p.log = log
			}
		}
	}
}

func (r *Recorder) GetProgramiv(program uint32, pname gfx.Enum) int32 {
	r.record("GetProgramiv", program, pname)
	p, ok := r.programs[program]
	if ok && pname == gfx.LINK_STATUS && p.linked {
		return 1
	}
	return 0
}

func (r *Recorder) GetProgramInfoLog(program uint32) string {
	r.record("GetProgramInfoLog", program)
	if p, ok := r.programs[program]; ok {
		return p.log
	}
	return ""
}

func (r *Recorder) UseProgram(program uint32) {
	r.record("UseProgram", program)
	r.program = program
}

func (r *Recorder) DeleteProgram(program uint32) {
	r.record("DeleteProgram", program)
	delete(r.programs, program)
	if r.program == program {
		r.program = 0
	}
}

func (r *Recorder) GetUniformLocation(program uint32, name string) int32 {
	r.record("GetUniformLocation", program, name)
	p, ok := r.programs[program]
	if !ok || !p.linked || r.MissingUniforms[name] {
		return -1
	}
	if loc, ok := p.uniforms[name]; ok {
		return loc
	}
	loc := r.nextLocation
	r.nextLocation++
	p.uniforms[name] = loc
	r.uniformNames[loc] = name
	return loc
}

func (r *Recorder) GetAttribLocation(program uint32, name string) int32 {
	r.record("GetAttribLocation", program, name)
	p, ok := r.programs[program]
	if !ok || !p.linked {
		return -1
	}
	if loc, ok := p.attribs[name]; ok {
		return loc
	}
	loc := int32(len(p.attribs))
	p.attribs[name] = loc
	return loc
}

func (r *Recorder) Uniform1i(location int32, value int32) {
	r.record("Uniform1i", location, value)
	r.uniforms[location] = value
}

func (r *Recorder) Uniform1f(location int32, value float32) {
	r.record("Uniform1f", location, value)
	r.uniforms[location] = value
}

func (r *Recorder) UniformMatrix4fv(location int32, value [16]float32) {
	r.record("UniformMatrix4fv", location)
	r.uniforms[location] = value
}

func (r *Recorder) GenTexture() uint32 {
	h := r.handle()
	r.record("GenTexture")
	r.textures[h] = [2]int32{}
	return h
}

func (r *Recorder) DeleteTexture(texture uint32) {
	r.record("DeleteTexture", texture)
	delete(r.textures, texture)
}

func (r *Recorder) ActiveTexture(unit gfx.Enum) {
	r.record("ActiveTexture", unit)
	r.activeUnit = unit
}

func (r *Recorder) BindTexture(target gfx.Enum, texture uint32) {
	r.record("BindTexture", target, texture)
	r.boundTexture[r.activeUnit] = texture
}

func (r *Recorder) TexImage2D(target gfx.Enum, level int32, internalFormat gfx.Enum, width, height int32, format, xtype gfx.Enum, pixels []byte) {
	r.record("TexImage2D", target, level, width, height)
	if level != 0 {
		return
	}
	if texture, ok := r.boundTexture[r.activeUnit]; ok {
		if _, live := r.textures[texture]; live {
			r.textures[texture] = [2]int32{width, height}
		}
	}
}

func (r *Recorder) TexParameteri(target, pname gfx.Enum, param int32) {
	r.record("TexParameteri", target, pname, param)
}

func (r *Recorder) GenerateMipmap(target gfx.Enum) { r.record("GenerateMipmap", target) }

func (r *Recorder) GenFramebuffer() uint32 {
	h := r.handle()
	r.record("GenFramebuffer")
	r.framebuffers[h] = 0
	return h
}

func (r *Recorder) DeleteFramebuffer(framebuffer uint32) {
	r.record("DeleteFramebuffer", framebuffer)
	delete(r.framebuffers, framebuffer)
	if r.framebuffer == framebuffer {
		r.framebuffer = 0
	}
}

func (r *Recorder) BindFramebuffer(target gfx.Enum, framebuffer uint32) {
	r.record("BindFramebuffer", target, framebuffer)
	r.framebuffer = framebuffer
}

func (r *Recorder) FramebufferTexture2D(target, attachment, textarget gfx.Enum, texture uint32, level int32) {
	r.record("FramebufferTexture2D", target, attachment, textarget, texture, level)
	if _, ok := r.framebuffers[r.framebuffer]; ok {
		r.framebuffers[r.framebuffer] = texture
	}
}

func (r *Recorder) CheckFramebufferStatus(target gfx.Enum) gfx.Enum {
	r.record("CheckFramebufferStatus", target)
	if r.FramebufferStatus != 0 {
		return r.FramebufferStatus
	}
	if r.framebuffers[r.framebuffer] == 0 {
		return gfx.FRAMEBUFFER_INCOMPLETE_ATTACH
	}
	return gfx.FRAMEBUFFER_COMPLETE
}

func (r *Recorder) GenBuffer() uint32 {
	h := r.handle()
	r.record("GenBuffer")
	r.buffers[h] = 0
	return h
}

func (r *Recorder) DeleteBuffer(buffer uint32) {
	r.record("DeleteBuffer", buffer)
	delete(r.buffers, buffer)
}

func (r *Recorder) BindBuffer(target gfx.Enum, buffer uint32) { r.record("BindBuffer", target, buffer) }

func (r *Recorder) BufferData(target gfx.Enum, data []float32, usage gfx.Enum) {
	r.record("BufferData", target, len(data), usage)
}

func (r *Recorder) VertexAttribPointer(index uint32, size int32, xtype gfx.Enum, normalized bool, stride int32, offset int) {
	r.record("VertexAttribPointer", index, size, xtype, normalized, stride, offset)
}

func (r *Recorder) EnableVertexAttribArray(index uint32) { r.record("EnableVertexAttribArray", index) }

func (r *Recorder) DisableVertexAttribArray(index uint32) {
	r.record("DisableVertexAttribArray", index)
}

func (r *Recorder) DrawArrays(mode gfx.Enum, first, count int32) {
	r.record("DrawArrays", mode, first, count)
}

var _ gfx.Device = (*Recorder)(nil)
