package terrain

import "fmt"

// PatchLOD is the detail assignment of one patch. Core is the patch's own
// level (0 is full resolution). Each edge is 1 when the neighbor on that
// side has a coarser core level and the edge must be stitched, else 0.
type PatchLOD struct {
	Core   int
	Left   int // -X
	Right  int // +X
	Top    int // -Z
	Bottom int // +Z
}

// IndexRange is a contiguous run of the shared index buffer.
type IndexRange struct {
	Start uint32
	Count uint32
}

// IndexTable holds the precomputed triangulation of a patch for every
// (core, left, right, top, bottom) combination. Indices are patch-local
// vertex offsets (z*rowStride + x); the patch's base vertex is added at
// draw time. The table is read-only after BuildIndexTable.
type IndexTable struct {
	maxLOD    int
	patchSize int
	rowStride int
	indices   []uint32
	entries   []IndexRange // [core<<4 | left<<3 | right<<2 | top<<1 | bottom]
}

// BuildIndexTable precomputes all 16 edge combinations of every core level
// up to maxLOD for patches laid out in a grid of rowStride vertices per row.
func BuildIndexTable(maxLOD, rowStride int) *IndexTable {
	ps := PatchSize(maxLOD)
	if rowStride < ps {
		panic(fmt.Sprintf("terrain: row stride %d is smaller than patch size %d", rowStride, ps))
	}

	t := &IndexTable{
		maxLOD:    maxLOD,
		patchSize: ps,
		rowStride: rowStride,
		entries:   make([]IndexRange, (maxLOD+1)<<4),
	}
	for core := 0; core <= maxLOD; core++ {
		for mask := 0; mask < 16; mask++ {
			lod := PatchLOD{
				Core:   core,
				Left:   mask >> 3 & 1,
				Right:  mask >> 2 & 1,
				Top:    mask >> 1 & 1,
				Bottom: mask & 1,
			}
			start := len(t.indices)
			t.emitPatch(lod)
			t.entries[core<<4|mask] = IndexRange{
				Start: uint32(start),
				Count: uint32(len(t.indices) - start),
			}
		}
	}
	return t
}

// Lookup returns the index run for a LOD combination. Combinations outside
// the table are programming errors and panic.
func (t *IndexTable) Lookup(lod PatchLOD) IndexRange {
	if lod.Core < 0 || lod.Core > t.maxLOD || !isFlag(lod.Left) || !isFlag(lod.Right) || !isFlag(lod.Top) || !isFlag(lod.Bottom) {
		panic(fmt.Sprintf("terrain: no index table entry for %+v (max LOD %d)", lod, t.maxLOD))
	}
	return t.entries[lod.Core<<4|lod.Left<<3|lod.Right<<2|lod.Top<<1|lod.Bottom]
}

// Indices returns the shared index buffer. Callers must not modify it.
func (t *IndexTable) Indices() []uint32 {
	return t.indices
}

// MaxLOD returns the coarsest level in the table.
func (t *IndexTable) MaxLOD() int {
	return t.maxLOD
}

// PatchSize returns the number of vertices along one side of a patch.
func (t *IndexTable) PatchSize() int {
	return t.patchSize
}

// RowStride returns the vertex row length the indices were built for.
func (t *IndexTable) RowStride() int {
	return t.rowStride
}

func isFlag(v int) bool {
	return v == 0 || v == 1
}

// emitPatch appends the triangulation for one combination.
//
// The interior is covered by fans of half-width s = 2^core centered at odd
// multiples of s; each fan joins its center to the 8 surrounding vertices,
// so every border has a vertex every s. A border facing a coarser neighbor
// additionally gets one seam triangle per 2s segment, spanning the
// segment's end points and its midpoint. The neighbor's edge is the straight
// line between the end points, so the seam closes the gap left by the
// midpoint height. Seams face away from the patch when the midpoint lies
// above the neighbor's edge, toward the coarse side the gap is seen from.
func (t *IndexTable) emitPatch(lod PatchLOD) {
	s := 1 << lod.Core
	last := t.patchSize - 1

	for cz := s; cz < last; cz += 2 * s {
		for cx := s; cx < last; cx += 2 * s {
			t.emitFan(cx, cz, s)
		}
	}

	for k := 0; k < last; k += 2 * s {
		if lod.Left == 1 {
			t.emitTriangle(0, k+2*s, 0, k+s, 0, k)
		}
		if lod.Right == 1 {
			t.emitTriangle(last, k, last, k+s, last, k+2*s)
		}
		if lod.Top == 1 {
			t.emitTriangle(k, 0, k+s, 0, k+2*s, 0)
		}
		if lod.Bottom == 1 {
			t.emitTriangle(k+2*s, last, k+s, last, k, last)
		}
	}
}

// fanRing lists the neighbors of a fan center in counter-clockwise order
// seen from +Y, as (dx, dz) in units of the fan half-width.
var fanRing = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1}, {0, 1},
	{1, 1}, {1, 0}, {1, -1}, {0, -1},
}

func (t *IndexTable) emitFan(cx, cz, s int) {
	for i := range fanRing {
		a := fanRing[i]
		b := fanRing[(i+1)%len(fanRing)]
		t.emitTriangle(cx, cz, cx+a[0]*s, cz+a[1]*s, cx+b[0]*s, cz+b[1]*s)
	}
}

func (t *IndexTable) emitTriangle(x0, z0, x1, z1, x2, z2 int) {
	t.indices = append(t.indices,
		uint32(z0*t.rowStride+x0),
		uint32(z1*t.rowStride+x1),
		uint32(z2*t.rowStride+x2),
	)
}
