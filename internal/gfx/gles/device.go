// Package gles implements gfx.Device on an OpenGL ES 2.0 context through go-gl.
package gles

import (
	"fmt"
	"strings"

	gl "github.com/go-gl/gl/v3.1/gles2"

	"Sunlight/internal/gfx"
)

// Device forwards every call to the current GLES 2.0 context.
type Device struct{}

// New loads the GL function pointers. A context must be current.
func New() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("gles2 init: %w", err)
	}
	return &Device{}, nil
}

// Version reports the driver version string.
func (d *Device) Version() string {
	return gl.GoStr(gl.GetString(gl.VERSION))
}

func (d *Device) ClearColor(r, g, b, a float32)      { gl.ClearColor(r, g, b, a) }
func (d *Device) Clear(mask gfx.Enum)                { gl.Clear(mask) }
func (d *Device) Viewport(x, y, width, height int32) { gl.Viewport(x, y, width, height) }
func (d *Device) Enable(capability gfx.Enum)         { gl.Enable(capability) }
func (d *Device) Disable(capability gfx.Enum)        { gl.Disable(capability) }
func (d *Device) CullFace(mode gfx.Enum)             { gl.CullFace(mode) }
func (d *Device) BlendFunc(sfactor, dfactor gfx.Enum) {
	gl.BlendFunc(sfactor, dfactor)
}
func (d *Device) GetError() gfx.Enum { return gl.GetError() }

func (d *Device) CreateShader(stage gfx.Enum) uint32 { return gl.CreateShader(stage) }

func (d *Device) ShaderSource(shader uint32, source string) {
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
}

func (d *Device) CompileShader(shader uint32) { gl.CompileShader(shader) }

func (d *Device) GetShaderiv(shader uint32, pname gfx.Enum) int32 {
	var value int32
	gl.GetShaderiv(shader, pname, &value)
	return value
}

func (d *Device) GetShaderInfoLog(shader uint32) string {
	var logLength int32
	gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
	if logLength == 0 {
		return ""
	}
	log := strings.Repeat("\x00", int(logLength+1))
	gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

func (d *Device) DeleteShader(shader uint32) { gl.DeleteShader(shader) }

func (d *Device) CreateProgram() uint32               { return gl.CreateProgram() }
func (d *Device) AttachShader(program, shader uint32) { gl.AttachShader(program, shader) }
func (d *Device) DetachShader(program, shader uint32) { gl.DetachShader(program, shader) }
func (d *Device) LinkProgram(program uint32)          { gl.LinkProgram(program) }

func (d *Device) GetProgramiv(program uint32, pname gfx.Enum) int32 {
	var value int32
	gl.GetProgramiv(program, pname, &value)
	return value
}

func (d *Device) GetProgramInfoLog(program uint32) string {
	var logLength int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
	if logLength == 0 {
		return ""
	}
	log := strings.Repeat("\x00", int(logLength+1))
	gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

func (d *Device) UseProgram(program uint32)    { gl.UseProgram(program) }
func (d *Device) DeleteProgram(program uint32) { gl.DeleteProgram(program) }

func (d *Device) GetUniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (d *Device) GetAttribLocation(program uint32, name string) int32 {
	return gl.GetAttribLocation(program, gl.Str(name+"\x00"))
}

func (d *Device) Uniform1i(location int32, value int32)   { gl.Uniform1i(location, value) }
func (d *Device) Uniform1f(location int32, value float32) { gl.Uniform1f(location, value) }

func (d *Device) UniformMatrix4fv(location int32, value [16]float32) {
	gl.UniformMatrix4fv(location, 1, false, &value[0])
}

func (d *Device) GenTexture() uint32 {
	var texture uint32
	gl.GenTextures(1, &texture)
	return texture
}

func (d *Device) DeleteTexture(texture uint32) { gl.DeleteTextures(1, &texture) }
func (d *Device) ActiveTexture(unit gfx.Enum)  { gl.ActiveTexture(unit) }
func (d *Device) BindTexture(target gfx.Enum, texture uint32) {
	gl.BindTexture(target, texture)
}

func (d *Device) TexImage2D(target gfx.Enum, level int32, internalFormat gfx.Enum, width, height int32, format, xtype gfx.Enum, pixels []byte) {
	if len(pixels) == 0 {
		gl.TexImage2D(target, level, int32(internalFormat), width, height, 0, format, xtype, nil)
		return
	}
	gl.TexImage2D(target, level, int32(internalFormat), width, height, 0, format, xtype, gl.Ptr(pixels))
}

func (d *Device) TexParameteri(target, pname gfx.Enum, param int32) {
	gl.TexParameteri(target, pname, param)
}

func (d *Device) GenerateMipmap(target gfx.Enum) { gl.GenerateMipmap(target) }

func (d *Device) GenFramebuffer() uint32 {
	var framebuffer uint32
	gl.GenFramebuffers(1, &framebuffer)
	return framebuffer
}

func (d *Device) DeleteFramebuffer(framebuffer uint32) { gl.DeleteFramebuffers(1, &framebuffer) }

func (d *Device) BindFramebuffer(target gfx.Enum, framebuffer uint32) {
	gl.BindFramebuffer(target, framebuffer)
}

func (d *Device) FramebufferTexture2D(target, attachment, textarget gfx.Enum, texture uint32, level int32) {
	gl.FramebufferTexture2D(target, attachment, textarget, texture, level)
}

func (d *Device) CheckFramebufferStatus(target gfx.Enum) gfx.Enum {
	return gl.CheckFramebufferStatus(target)
}

func (d *Device) GenBuffer() uint32 {
	var buffer uint32
	gl.GenBuffers(1, &buffer)
	return buffer
}

func (d *Device) DeleteBuffer(buffer uint32)                 { gl.DeleteBuffers(1, &buffer) }
func (d *Device) BindBuffer(target gfx.Enum, buffer uint32) { gl.BindBuffer(target, buffer) }

func (d *Device) BufferData(target gfx.Enum, data []float32, usage gfx.Enum) {
	if len(data) == 0 {
		gl.BufferData(target, 0, nil, usage)
		return
	}
	gl.BufferData(target, len(data)*4, gl.Ptr(data), usage)
}

func (d *Device) VertexAttribPointer(index uint32, size int32, xtype gfx.Enum, normalized bool, stride int32, offset int) {
	gl.VertexAttribPointer(index, size, xtype, normalized, stride, gl.PtrOffset(offset))
}

func (d *Device) EnableVertexAttribArray(index uint32)  { gl.EnableVertexAttribArray(index) }
func (d *Device) DisableVertexAttribArray(index uint32) { gl.DisableVertexAttribArray(index) }

func (d *Device) DrawArrays(mode gfx.Enum, first, count int32) {
	gl.DrawArrays(mode, first, count)
}

var _ gfx.Device = (*Device)(nil)
