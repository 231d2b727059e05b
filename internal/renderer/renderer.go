package renderer

// Renderer is driven by a surface host on its render thread.
type Renderer interface {
	// OnSurfaceCreated runs once per new GL context. Every GPU resource from a
	// previous context is invalid at this point.
	OnSurfaceCreated() error
	OnSurfaceChanged(width, height int) error
	OnDrawFrame()
}

type State int32

const (
	StateUninitialized State = iota
	StateSurfaceReady
	StateRendering
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateSurfaceReady:
		return "surface-ready"
	case StateRendering:
		return "rendering"
	default:
		return "unknown"
	}
}

// AssetProvider resolves shader sources and images by name.
type AssetProvider interface {
	ShaderSource(name string) (string, error)
	Image(name string) ImageSource
}

// Asset names the sun pipeline requests.
const (
	SunVertexShader         = "sun_vertex"
	SunFragmentShader       = "sun_lookup_fragment"
	SunCoronaVertexShader   = "sun_corona_vertex"
	SunCoronaFragmentShader = "sun_corona_lookup_fragment"
	SunRayVertexShader      = "sun_ray_vertex"
	SunRayFragmentShader    = "sun_ray_fragment"
	SunSurfaceImage         = "sun_surface"
	NoiseImage              = "noise"
	StarColorImage          = "star_color"
)
