// Package gfx defines the subset of OpenGL ES 2.0 the sun renderer talks to.
//
// Renderer code never calls a GL binding directly; it goes through a Device so the
// same pipeline runs on a real context (package gles) or on a recorder in tests
// (package gfxtest). Enum values are the GL ES 2.0 numeric values, so an
// implementation can pass them straight through.
package gfx

// Enum is a GL enumerant.
type Enum = uint32

const (
	NO_ERROR      Enum = 0
	INVALID_VALUE Enum = 0x0501
	OUT_OF_MEMORY Enum = 0x0505

	COLOR_BUFFER_BIT Enum = 0x00004000
	DEPTH_BUFFER_BIT Enum = 0x00000100

	CULL_FACE  Enum = 0x0B44
	BLEND      Enum = 0x0BE2
	DEPTH_TEST Enum = 0x0B71

	FRONT Enum = 0x0404
	BACK  Enum = 0x0405

	ZERO                Enum = 0
	ONE                 Enum = 1
	SRC_ALPHA           Enum = 0x0302
	ONE_MINUS_SRC_ALPHA Enum = 0x0303

	TRIANGLES      Enum = 0x0004
	TRIANGLE_STRIP Enum = 0x0005

	FLOAT         Enum = 0x1406
	UNSIGNED_BYTE Enum = 0x1401

	ARRAY_BUFFER Enum = 0x8892
	STATIC_DRAW  Enum = 0x88E4

	VERTEX_SHADER   Enum = 0x8B31
	FRAGMENT_SHADER Enum = 0x8B30
	COMPILE_STATUS  Enum = 0x8B81
	LINK_STATUS     Enum = 0x8B82

	TEXTURE_2D         Enum = 0x0DE1
	TEXTURE0           Enum = 0x84C0
	TEXTURE_MIN_FILTER Enum = 0x2801
	TEXTURE_MAG_FILTER Enum = 0x2800
	TEXTURE_WRAP_S     Enum = 0x2802
	TEXTURE_WRAP_T     Enum = 0x2803

	NEAREST                Enum = 0x2600
	LINEAR                 Enum = 0x2601
	LINEAR_MIPMAP_LINEAR   Enum = 0x2703
	NEAREST_MIPMAP_NEAREST Enum = 0x2700
	REPEAT                 Enum = 0x2901
	CLAMP_TO_EDGE          Enum = 0x812F

	RGB  Enum = 0x1907
	RGBA Enum = 0x1908

	FRAMEBUFFER                   Enum = 0x8D40
	COLOR_ATTACHMENT0             Enum = 0x8CE0
	FRAMEBUFFER_COMPLETE          Enum = 0x8CD5
	FRAMEBUFFER_INCOMPLETE_ATTACH Enum = 0x8CD6
	FRAMEBUFFER_UNSUPPORTED       Enum = 0x8CDD
)

// Device is a GL ES 2.0 context. All methods must be called from the thread that
// owns the context.
type Device interface {
	ClearColor(r, g, b, a float32)
	Clear(mask Enum)
	Viewport(x, y, width, height int32)
	Enable(capability Enum)
	Disable(capability Enum)
	CullFace(mode Enum)
	BlendFunc(sfactor, dfactor Enum)
	GetError() Enum

	CreateShader(stage Enum) uint32
	ShaderSource(shader uint32, source string)
	CompileShader(shader uint32)
	GetShaderiv(shader uint32, pname Enum) int32
	GetShaderInfoLog(shader uint32) string
	DeleteShader(shader uint32)

	CreateProgram() uint32
	AttachShader(program, shader uint32)
	DetachShader(program, shader uint32)
	LinkProgram(program uint32)
	GetProgramiv(program uint32, pname Enum) int32
	GetProgramInfoLog(program uint32) string
	UseProgram(program uint32)
	DeleteProgram(program uint32)
	GetUniformLocation(program uint32, name string) int32
	GetAttribLocation(program uint32, name string) int32

	Uniform1i(location int32, value int32)
	Uniform1f(location int32, value float32)
	UniformMatrix4fv(location int32, value [16]float32)

	GenTexture() uint32
	DeleteTexture(texture uint32)
	ActiveTexture(unit Enum)
	BindTexture(target Enum, texture uint32)
	TexImage2D(target Enum, level int32, internalFormat Enum, width, height int32, format, xtype Enum, pixels []byte)
	TexParameteri(target, pname Enum, param int32)
	GenerateMipmap(target Enum)

	GenFramebuffer() uint32
	DeleteFramebuffer(framebuffer uint32)
	BindFramebuffer(target Enum, framebuffer uint32)
	FramebufferTexture2D(target, attachment, textarget Enum, texture uint32, level int32)
	CheckFramebufferStatus(target Enum) Enum

	GenBuffer() uint32
	DeleteBuffer(buffer uint32)
	BindBuffer(target Enum, buffer uint32)
	BufferData(target Enum, data []float32, usage Enum)
	VertexAttribPointer(index uint32, size int32, xtype Enum, normalized bool, stride int32, offset int)
	EnableVertexAttribArray(index uint32)
	DisableVertexAttribArray(index uint32)
	DrawArrays(mode Enum, first, count int32)
}
