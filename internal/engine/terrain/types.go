// Package terrain builds height fields and keeps a crack-free,
// camera-driven geomipmapped triangulation of them.
package terrain

import (
	"github.com/Faultbox/midgard-terrain/pkg/math"
)

// Vertex represents a terrain mesh vertex with all attributes.
type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
	TexCoord math.Vec2
}

// BlendingTexture pairs a ground texture with the height at which it
// starts to dominate.
type BlendingTexture struct {
	Height  float32
	Texture uint32
}

// MeshBatch is one draw call: a slice of the shared index buffer drawn with
// a base vertex offset into the shared vertex buffer.
type MeshBatch struct {
	IndicesOffset  uint32
	VerticesOffset uint32
	IndicesCount   uint32
	MaterialIndex  uint32
}

// Bounds holds the axis-aligned bounding box of the terrain.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// Center returns the middle of the box.
func (b Bounds) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}
