package terrain

import (
	"github.com/Faultbox/midgard-terrain/pkg/math"
)

// LODManager assigns every patch a core level from its distance to the
// camera and derives the edge stitching flags from its neighbors.
type LODManager struct {
	maxLOD             int
	patchesX, patchesY int
	regions            []float32
	centers            []math.Vec3
	lods               []PatchLOD
}

// NewLODManager precomputes the distance bands and the world-space center
// of every patch of field.
//
// Band i is far*(i+1)/(1+2+...+maxLOD+1) wide, so nearby bands are narrow
// and distant ones wide.
func NewLODManager(field *HeightField, maxLOD int, farDistance float32) *LODManager {
	m := &LODManager{
		maxLOD:   maxLOD,
		patchesX: field.patchesX,
		patchesY: field.patchesY,
		regions:  make([]float32, maxLOD+1),
		centers:  make([]math.Vec3, field.patchesX*field.patchesY),
		lods:     make([]PatchLOD, field.patchesX*field.patchesY),
	}

	sum := 0
	for i := 0; i <= maxLOD; i++ {
		sum += i + 1
	}
	unit := farDistance / float32(sum)
	var edge float32
	for i := 0; i <= maxLOD; i++ {
		edge += unit * float32(i+1)
		m.regions[i] = edge
	}

	half := field.patchSize / 2
	for py := 0; py < m.patchesY; py++ {
		for px := 0; px < m.patchesX; px++ {
			x := px*(field.patchSize-1) + half
			z := py*(field.patchSize-1) + half
			m.centers[py*m.patchesX+px] = math.Vec3{
				X: float32(x) * field.worldScale,
				Y: field.PatchCenterHeight(px, py),
				Z: float32(z) * field.worldScale,
			}
		}
	}
	return m
}

// Regions returns the ascending distance thresholds, one per level.
func (m *LODManager) Regions() []float32 {
	return m.regions
}

// MaxLOD returns the coarsest level this manager assigns.
func (m *LODManager) MaxLOD() int {
	return m.maxLOD
}

// Patches returns the patch grid size.
func (m *LODManager) Patches() (patchesX, patchesY int) {
	return m.patchesX, m.patchesY
}

// DistanceToLOD returns the first band whose threshold exceeds distance,
// or the coarsest level when none does.
func (m *LODManager) DistanceToLOD(distance float32) int {
	for i, threshold := range m.regions {
		if distance < threshold {
			return i
		}
	}
	return m.maxLOD
}

// Update recomputes every patch from a new camera position and reports
// whether any core level changed. Pass 1 finishes for the whole grid before
// pass 2 reads neighbor levels.
func (m *LODManager) Update(camera math.Vec3) bool {
	changed := false
	for i := range m.lods {
		core := m.DistanceToLOD(camera.Distance(m.centers[i]))
		if m.lods[i].Core != core {
			changed = true
		}
		m.lods[i] = PatchLOD{Core: core}
	}

	for py := 0; py < m.patchesY; py++ {
		for px := 0; px < m.patchesX; px++ {
			l := &m.lods[py*m.patchesX+px]
			if px > 0 {
				l.Left = m.coarser(l.Core, px-1, py)
			}
			if px < m.patchesX-1 {
				l.Right = m.coarser(l.Core, px+1, py)
			}
			if py > 0 {
				l.Top = m.coarser(l.Core, px, py-1)
			}
			if py < m.patchesY-1 {
				l.Bottom = m.coarser(l.Core, px, py+1)
			}
		}
	}
	return changed
}

func (m *LODManager) coarser(core, px, py int) int {
	if m.lods[py*m.patchesX+px].Core > core {
		return 1
	}
	return 0
}

// PatchLOD returns the current assignment of patch (px, py).
func (m *LODManager) PatchLOD(px, py int) PatchLOD {
	return m.lods[py*m.patchesX+px]
}

// PatchCenter returns the world-space center of patch (px, py).
func (m *LODManager) PatchCenter(px, py int) math.Vec3 {
	return m.centers[py*m.patchesX+px]
}
