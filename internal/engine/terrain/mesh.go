package terrain

import (
	"github.com/Faultbox/midgard-terrain/pkg/math"
)

// CalcNormals computes smooth per-vertex normals by accumulating the face
// normal of every triangle of the full-resolution grid (two per cell) into
// its three vertices and renormalizing. Normals are computed once and shared
// by every LOD.
func (h *HeightField) CalcNormals() {
	if len(h.vertices) != len(h.heights) {
		h.buildVertices()
	}

	sums := make([]math.Vec3, len(h.vertices))
	for z := 0; z < h.dimY-1; z++ {
		for x := 0; x < h.dimX-1; x++ {
			i00 := z*h.dimX + x
			i10 := i00 + 1
			i01 := i00 + h.dimX
			i11 := i01 + 1

			// Counter-clockwise seen from +Y, matching the index table.
			accumulateFace(h.vertices, sums, i00, i01, i10)
			accumulateFace(h.vertices, sums, i10, i01, i11)
		}
	}

	for i := range h.vertices {
		h.vertices[i].Normal = normalizeOrUp(sums[i])
	}
}

func accumulateFace(vertices []Vertex, sums []math.Vec3, a, b, c int) {
	pa := vertices[a].Position
	edge1 := vertices[b].Position.Sub(pa)
	edge2 := vertices[c].Position.Sub(pa)
	n := edge1.Cross(edge2).Normalize()

	sums[a] = sums[a].Add(n)
	sums[b] = sums[b].Add(n)
	sums[c] = sums[c].Add(n)
}

func normalizeOrUp(v math.Vec3) math.Vec3 {
	if v.Length() < 0.0001 {
		return math.Up
	}
	return v.Normalize()
}

func updateBounds(b *Bounds, p math.Vec3) {
	if p.X < b.Min.X {
		b.Min.X = p.X
	}
	if p.Y < b.Min.Y {
		b.Min.Y = p.Y
	}
	if p.Z < b.Min.Z {
		b.Min.Z = p.Z
	}
	if p.X > b.Max.X {
		b.Max.X = p.X
	}
	if p.Y > b.Max.Y {
		b.Max.Y = p.Y
	}
	if p.Z > b.Max.Z {
		b.Max.Z = p.Z
	}
}
