package renderer

import (
	"github.com/go-gl/mathgl/mgl32"

	"Sunlight/internal/gfx"
)

// UniformCache caches uniform and attribute locations of one linked program so
// the per-frame path does not query the driver by name.
type UniformCache struct {
	device    gfx.Device
	program   uint32
	locations map[string]int32
	attribs   map[string]int32
}

// NewUniformCache creates a cache for a linked program handle.
func NewUniformCache(device gfx.Device, program uint32) *UniformCache {
	return &UniformCache{
		device:    device,
		program:   program,
		locations: make(map[string]int32),
		attribs:   make(map[string]int32),
	}
}

// GetLocation returns the cached uniform location or fetches and caches it.
// Unknown names resolve to -1 and are cached as such.
func (uc *UniformCache) GetLocation(name string) int32 {
	if loc, exists := uc.locations[name]; exists {
		return loc
	}
	loc := uc.device.GetUniformLocation(uc.program, name)
	uc.locations[name] = loc
	return loc
}

// GetAttribLocation is GetLocation for vertex attributes.
func (uc *UniformCache) GetAttribLocation(name string) int32 {
	if loc, exists := uc.attribs[name]; exists {
		return loc
	}
	loc := uc.device.GetAttribLocation(uc.program, name)
	uc.attribs[name] = loc
	return loc
}

// SetFloat sets a float uniform using cached location
func (uc *UniformCache) SetFloat(name string, value float32) {
	loc := uc.GetLocation(name)
	if loc != -1 {
		uc.device.Uniform1f(loc, value)
	}
}

// SetInt sets an int uniform using cached location
func (uc *UniformCache) SetInt(name string, value int32) {
	loc := uc.GetLocation(name)
	if loc != -1 {
		uc.device.Uniform1i(loc, value)
	}
}

// SetMat4 uploads a column-major 4x4 matrix.
func (uc *UniformCache) SetMat4(name string, value mgl32.Mat4) {
	loc := uc.GetLocation(name)
	if loc != -1 {
		uc.device.UniformMatrix4fv(loc, value)
	}
}

// Reset points the cache at a newly linked program handle and drops every
// cached location (call when shader program changes).
func (uc *UniformCache) Reset(program uint32) {
	uc.program = program
	uc.Clear()
}

// Clear clears the cache
func (uc *UniformCache) Clear() {
	uc.locations = make(map[string]int32)
	uc.attribs = make(map[string]int32)
}
