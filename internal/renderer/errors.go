package renderer

import (
	"fmt"

	"Sunlight/internal/gfx"
)

// ShaderCompileError reports a shader that failed to compile.
type ShaderCompileError struct {
	Stage gfx.Enum
	Log   string
}

func (e *ShaderCompileError) Error() string {
	return fmt.Sprintf("%s shader compilation failed: %s", stageName(e.Stage), e.Log)
}

// ShaderLinkError reports a program whose stages could not be linked, usually
// mismatched varyings.
type ShaderLinkError struct {
	Log string
}

func (e *ShaderLinkError) Error() string {
	return "shader program link failed: " + e.Log
}

// RenderTargetAllocationError reports an offscreen target the device refused.
type RenderTargetAllocationError struct {
	Width  int
	Height int
	Err    error
}

func (e *RenderTargetAllocationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("could not allocate %dx%d render target", e.Width, e.Height)
	}
	return fmt.Sprintf("could not allocate %dx%d render target: %v", e.Width, e.Height, e.Err)
}

func (e *RenderTargetAllocationError) Unwrap() error { return e.Err }

// FrameBufferIncompleteError carries the status returned by CheckFramebufferStatus.
type FrameBufferIncompleteError struct {
	Status gfx.Enum
}

func (e *FrameBufferIncompleteError) Error() string {
	return fmt.Sprintf("frame buffer incomplete (status 0x%04X)", e.Status)
}

// ResourceDecodeError reports an asset that could not be read or decoded.
type ResourceDecodeError struct {
	Name string
	Err  error
}

func (e *ResourceDecodeError) Error() string {
	return fmt.Sprintf("decode %q: %v", e.Name, e.Err)
}

func (e *ResourceDecodeError) Unwrap() error { return e.Err }

func stageName(stage gfx.Enum) string {
	switch stage {
	case gfx.VERTEX_SHADER:
		return "vertex"
	case gfx.FRAGMENT_SHADER:
		return "fragment"
	default:
		return fmt.Sprintf("0x%04X", stage)
	}
}
