// camera.go
package renderer

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Camera is the fixed sun camera: a look-at view and an off-axis frustum whose
// horizontal extent follows the surface aspect ratio.
type Camera struct {
	// HOT DATA - Read every frame for the MVP
	Position   mgl32.Vec3 // Eye position in world space
	Target     mgl32.Vec3 // Point the eye looks at
	Up         mgl32.Vec3 // Up direction vector
	View       mgl32.Mat4 // View matrix
	Projection mgl32.Mat4 // Projection matrix

	// COLD DATA - Changed on surface resize only
	Near        float32 // Near clipping plane, also the frustum half height
	Far         float32 // Far clipping plane
	AspectRatio float32 // Surface width / height
}

// NewSunCamera looks from (0,0,2) at the origin with -Y up, so the texture's
// north pole appears at the top of the surface.
func NewSunCamera() *Camera {
	camera := Camera{
		Position:    mgl32.Vec3{0, 0, 2},
		Target:      mgl32.Vec3{0, 0, 0},
		Up:          mgl32.Vec3{0, -1, 0},
		Near:        0.1,
		Far:         100,
		AspectRatio: 1,
	}
	camera.UpdateView()
	camera.UpdateProjection()
	return &camera
}

func (c *Camera) UpdateView() {
	c.View = mgl32.LookAtV(c.Position, c.Target, c.Up)
}

// UpdateProjection rebuilds Frustum(-r, r, -n, n, n, far) with r = n * aspect.
func (c *Camera) UpdateProjection() {
	right := c.Near * c.AspectRatio
	c.Projection = mgl32.Frustum(-right, right, -c.Near, c.Near, c.Near, c.Far)
}

// SetViewport derives the aspect ratio from a surface size. A zero height keeps
// the previous ratio.
func (c *Camera) SetViewport(width, height int) {
	if height <= 0 || width <= 0 {
		return
	}
	c.AspectRatio = float32(width) / float32(height)
	c.UpdateProjection()
}

func (c *Camera) GetViewMatrix() mgl32.Mat4 {
	return c.View
}

func (c *Camera) GetProjectionMatrix() mgl32.Mat4 {
	return c.Projection
}

func (c *Camera) GetViewProjection() mgl32.Mat4 {
	return c.Projection.Mul4(c.View)
}
