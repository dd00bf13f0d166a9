// Package camera provides the orbit camera used to fly over a terrain.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/midgard-terrain/pkg/math"
)

// GroundFunc returns the ground height at a world XZ position.
type GroundFunc func(x, z float32) float32

// OrbitCamera orbits around a center point.
type OrbitCamera struct {
	Center math.Vec3

	// Spherical coordinates
	Distance float32
	Pitch    float32 // vertical angle, radians
	Yaw      float32 // horizontal angle, radians

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32

	// Projection
	FOV    float32 // vertical, radians
	Aspect float32
	Near   float32
	Far    float32
}

// NewOrbitCamera creates a new orbit camera with default settings.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:        200.0,
		Pitch:           0.5,
		MinDistance:     10.0,
		MaxDistance:     5000.0,
		MinPitch:        0.05,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
		FOV:             math32.Pi / 3,
		Aspect:          16.0 / 9.0,
		Near:            1.0,
		Far:             10000.0,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	sp, cp := math32.Sincos(c.Pitch)
	sy, cy := math32.Sincos(c.Yaw)

	return c.Center.Add(math.Vec3{
		X: c.Distance * cp * sy,
		Y: c.Distance * sp,
		Z: c.Distance * cp * cy,
	})
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position(), c.Center, math.Up)
}

// ProjectionMatrix returns the perspective projection for this camera.
func (c *OrbitCamera) ProjectionMatrix() math.Mat4 {
	return math.Perspective(c.FOV, c.Aspect, c.Near, c.Far)
}

// ViewProjection returns projection * view.
func (c *OrbitCamera) ViewProjection() math.Mat4 {
	return c.ProjectionMatrix().Mul(c.ViewMatrix())
}

// HandleDrag updates rotation based on mouse drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.Yaw -= deltaX * c.DragSensitivity
	c.Pitch = math32.Min(math32.Max(c.Pitch+deltaY*c.DragSensitivity, c.MinPitch), c.MaxPitch)
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	c.Distance = math32.Min(math32.Max(c.Distance, c.MinDistance), c.MaxDistance)
}

// HandleMovement pans the center point relative to the current yaw.
func (c *OrbitCamera) HandleMovement(forward, right, up float32) {
	// Speed scales with distance for consistent feel
	speed := c.Distance * 0.01
	sy, cy := math32.Sincos(c.Yaw)

	// Negate forward so positive input moves into the scene
	c.Center.X += (-sy*forward + cy*right) * speed
	c.Center.Z += (-cy*forward - sy*right) * speed
	c.Center.Y += up * speed
}

// FitToBounds centers the camera on a bounding box and backs off far enough
// to see most of it.
func (c *OrbitCamera) FitToBounds(minB, maxB math.Vec3) {
	c.Center = minB.Add(maxB).Scale(0.5)

	size := math32.Max(maxB.X-minB.X, maxB.Z-minB.Z)
	c.Distance = math32.Min(math32.Max(size*0.6, c.MinDistance), c.MaxDistance)
	c.Pitch = math32.Min(math32.Max(0.6, c.MinPitch), c.MaxPitch) // ~35 degrees down
	c.Yaw = 0
}

// KeepAbove lifts the orbit center until the camera is at least clearance
// above the ground under it. It reports whether the camera moved.
func (c *OrbitCamera) KeepAbove(ground GroundFunc, clearance float32) bool {
	pos := c.Position()
	floor := ground(pos.X, pos.Z) + clearance
	if pos.Y >= floor {
		return false
	}
	c.Center.Y += floor - pos.Y
	return true
}
