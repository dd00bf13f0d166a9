// Package culling tests world-space points against the camera frustum.
package culling

import (
	"github.com/Faultbox/midgard-terrain/pkg/math"
)

// Plane is the plane Normal·p + D = 0 with a unit normal pointing into the
// frustum.
type Plane struct {
	Normal math.Vec3
	D      float32
}

// Distance returns the signed distance from p to the plane, positive on the
// inner side.
func (pl Plane) Distance(p math.Vec3) float32 {
	return pl.Normal.Dot(p) + pl.D
}

// Plane order in Frustum.Planes.
const (
	PlaneLeft = iota
	PlaneRight
	PlaneBottom
	PlaneTop
	PlaneNear
	PlaneFar
)

// Frustum holds the six clip planes of a view-projection matrix. The zero
// value has no planes yet and reports every point inside.
type Frustum struct {
	planes [6]Plane
	bias   float32
}

// NewFrustum returns a frustum with the given bias. A negative bias keeps
// points slightly outside the planes, which avoids patches popping at the
// screen border.
func NewFrustum(bias float32) *Frustum {
	return &Frustum{bias: bias}
}

// SetBias changes the inside test threshold.
func (f *Frustum) SetBias(bias float32) {
	f.bias = bias
}

// Bias returns the inside test threshold.
func (f *Frustum) Bias() float32 {
	return f.bias
}

// Planes returns the current planes in Plane* order.
func (f *Frustum) Planes() [6]Plane {
	return f.planes
}

// Update extracts the planes from a column-major view-projection matrix
// (Gribb/Hartmann). Call it whenever the matrix changes.
func (f *Frustum) Update(viewProj math.Mat4) {
	r0, r1, r2, r3 := viewProj.Row(0), viewProj.Row(1), viewProj.Row(2), viewProj.Row(3)

	f.planes[PlaneLeft] = planeFrom(add(r3, r0))
	f.planes[PlaneRight] = planeFrom(sub(r3, r0))
	f.planes[PlaneBottom] = planeFrom(add(r3, r1))
	f.planes[PlaneTop] = planeFrom(sub(r3, r1))
	f.planes[PlaneNear] = planeFrom(add(r3, r2))
	f.planes[PlaneFar] = planeFrom(sub(r3, r2))
}

// IsPointInside reports whether p is on the inner side of every plane, with
// the bias applied.
func (f *Frustum) IsPointInside(p math.Vec3) bool {
	for _, pl := range f.planes {
		if pl.Distance(p) < f.bias {
			return false
		}
	}
	return true
}

func planeFrom(v math.Vec4) Plane {
	n := math.Vec3{X: v[0], Y: v[1], Z: v[2]}
	l := n.Length()
	if l == 0 {
		return Plane{}
	}
	return Plane{Normal: n.Scale(1 / l), D: v[3] / l}
}

func add(a, b math.Vec4) math.Vec4 {
	return math.Vec4{a[0] + b[0], a[1] + b[1], a[2] + b[2], a[3] + b[3]}
}

func sub(a, b math.Vec4) math.Vec4 {
	return math.Vec4{a[0] - b[0], a[1] - b[1], a[2] - b[2], a[3] - b[3]}
}
