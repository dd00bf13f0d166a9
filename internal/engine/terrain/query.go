package terrain

import (
	"iter"

	"github.com/Faultbox/midgard-terrain/pkg/math"
)

// CullPolicy selects which patches a Query visits.
type CullPolicy int

// Cull policies.
const (
	CullNone    CullPolicy = iota // every patch
	CullFrustum                   // only patches whose center passes the Culler
)

// Culler decides whether a world-space point is visible.
type Culler interface {
	IsPointInside(p math.Vec3) bool
}

// Query walks the patch grid in row-major order and yields one MeshBatch per
// drawn patch. It reads the LOD state at the time Next is called, so it must
// be restarted after the camera moves.
type Query struct {
	lod      *LODManager
	table    *IndexTable
	dimX     int
	material uint32
	policy   CullPolicy
	culler   Culler

	px, py int
	done   bool
}

// NewQuery returns a query positioned at the first patch. CullFrustum with a
// nil culler behaves like CullNone.
func NewQuery(lod *LODManager, table *IndexTable, dimX int, material uint32, policy CullPolicy, culler Culler) *Query {
	if culler == nil {
		policy = CullNone
	}
	return &Query{
		lod:      lod,
		table:    table,
		dimX:     dimX,
		material: material,
		policy:   policy,
		culler:   culler,
		done:     lod.patchesX == 0 || lod.patchesY == 0,
	}
}

// Policy returns the cull policy in use.
func (q *Query) Policy() CullPolicy {
	return q.policy
}

// Reset restarts the walk at patch (0, 0).
func (q *Query) Reset() {
	q.px, q.py = 0, 0
	q.done = q.lod.patchesX == 0 || q.lod.patchesY == 0
}

// Next returns the next visible patch, or false once the walk has wrapped
// back to (0, 0).
func (q *Query) Next() (MeshBatch, bool) {
	for !q.done {
		px, py := q.px, q.py
		q.advance()

		if q.policy == CullFrustum && !q.culler.IsPointInside(q.lod.PatchCenter(px, py)) {
			continue
		}
		return q.batch(px, py), true
	}
	return MeshBatch{}, false
}

// All returns the remaining batches as an iterator.
func (q *Query) All() iter.Seq[MeshBatch] {
	return func(yield func(MeshBatch) bool) {
		for {
			b, ok := q.Next()
			if !ok || !yield(b) {
				return
			}
		}
	}
}

// Collect drains the query into a slice.
func (q *Query) Collect() []MeshBatch {
	var out []MeshBatch
	for b := range q.All() {
		out = append(out, b)
	}
	return out
}

func (q *Query) advance() {
	q.px++
	if q.px == q.lod.patchesX {
		q.px = 0
		q.py++
		if q.py == q.lod.patchesY {
			q.py = 0
		}
	}
	if q.px == 0 && q.py == 0 {
		q.done = true
	}
}

func (q *Query) batch(px, py int) MeshBatch {
	r := q.table.Lookup(q.lod.PatchLOD(px, py))
	step := q.table.patchSize - 1
	return MeshBatch{
		IndicesOffset:  r.Start,
		IndicesCount:   r.Count,
		VerticesOffset: uint32(py*step*q.dimX + px*step),
		MaterialIndex:  q.material,
	}
}
