// Package picking casts rays from the screen into the world and finds where
// they hit the ground.
package picking

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/midgard-terrain/pkg/math"
)

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3 // normalized
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// ScreenToRay converts screen coordinates to a world-space ray.
// screenX, screenY are pixel coordinates, viewportW/H are viewport dimensions.
// invViewProj is the inverse of the view-projection matrix.
func ScreenToRay(screenX, screenY, viewportW, viewportH float32, invViewProj math.Mat4) Ray {
	// Convert screen coords to normalized device coords (-1 to 1)
	ndcX := 2*screenX/viewportW - 1
	ndcY := 1 - 2*screenY/viewportH // flip Y

	near := unproject(invViewProj, math.Vec4{ndcX, ndcY, -1, 1})
	far := unproject(invViewProj, math.Vec4{ndcX, ndcY, 1, 1})

	return Ray{Origin: near, Direction: far.Sub(near).Normalize()}
}

func unproject(invViewProj math.Mat4, ndc math.Vec4) math.Vec3 {
	w := invViewProj.MulVec4(ndc)
	if w[3] != 0 {
		return math.Vec3{X: w[0] / w[3], Y: w[1] / w[3], Z: w[2] / w[3]}
	}
	return math.Vec3{X: w[0], Y: w[1], Z: w[2]}
}

// IntersectPlaneY intersects a ray with a horizontal plane at the given Y level.
// Returns the intersection point (X, Z) and whether the intersection is valid.
func (r Ray) IntersectPlaneY(planeY float32) (x, z float32, ok bool) {
	if math32.Abs(r.Direction.Y) < 0.001 {
		return 0, 0, false // parallel
	}

	t := (planeY - r.Origin.Y) / r.Direction.Y
	if t < 0 {
		return 0, 0, false // behind the origin
	}

	p := r.At(t)
	return p.X, p.Z, true
}

// IntersectAABB clips the ray against an axis-aligned box. It returns the
// entry and exit distances; tEnter is 0 when the ray starts inside.
func (r Ray) IntersectAABB(minB, maxB math.Vec3) (tEnter, tExit float32, hit bool) {
	tmin := float32(-math32.MaxFloat32)
	tmax := float32(math32.MaxFloat32)

	slab := func(origin, dir, lo, hi float32) bool {
		if dir == 0 {
			return origin >= lo && origin <= hi
		}
		t1 := (lo - origin) / dir
		t2 := (hi - origin) / dir
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math32.Max(tmin, t1)
		tmax = math32.Min(tmax, t2)
		return true
	}

	if !slab(r.Origin.X, r.Direction.X, minB.X, maxB.X) ||
		!slab(r.Origin.Y, r.Direction.Y, minB.Y, maxB.Y) ||
		!slab(r.Origin.Z, r.Direction.Z, minB.Z, maxB.Z) {
		return 0, 0, false
	}
	if tmax < tmin || tmax < 0 {
		return 0, 0, false
	}
	return math32.Max(tmin, 0), tmax, true
}

// Ground is a height field that can be sampled anywhere on its XZ extent.
type Ground interface {
	HeightAtWorld(x, z float32) float32
}

// bisectSteps refines a crossing to step/2^bisectSteps.
const bisectSteps = 16

// IntersectGround marches the ray through the box [minB, maxB] in steps of
// step and returns the first point where it passes below the ground.
func (r Ray) IntersectGround(g Ground, minB, maxB math.Vec3, step float32) (math.Vec3, bool) {
	if step <= 0 {
		return math.Vec3{}, false
	}
	tEnter, tExit, ok := r.IntersectAABB(minB, maxB)
	if !ok {
		return math.Vec3{}, false
	}

	above := func(t float32) float32 {
		p := r.At(t)
		return p.Y - g.HeightAtWorld(p.X, p.Z)
	}

	prev := tEnter
	if above(prev) <= 0 {
		return r.At(prev), true
	}
	for t := tEnter + step; ; t += step {
		t = math32.Min(t, tExit)
		if above(t) <= 0 {
			lo, hi := prev, t
			for i := 0; i < bisectSteps; i++ {
				mid := (lo + hi) / 2
				if above(mid) > 0 {
					lo = mid
				} else {
					hi = mid
				}
			}
			return r.At(hi), true
		}
		if t >= tExit {
			return math.Vec3{}, false
		}
		prev = t
	}
}
