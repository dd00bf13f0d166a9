package terrain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-terrain/pkg/math"
)

// flatLOD returns a manager over a flat 33x33 grid of 4x4 patches of size 9,
// one world unit per grid step, with bands at 5, 15 and 30.
func flatLOD(t *testing.T) *LODManager {
	t.Helper()
	field, err := GenerateFlat(testParams(ModeFlat, 33, 2), nil)
	require.NoError(t, err)
	return NewLODManager(field, 2, 30)
}

func TestLODRegions(t *testing.T) {
	m := flatLOD(t)
	assert.InDeltaSlice(t, []float32{5, 15, 30}, m.Regions(), 1e-5)

	px, py := m.Patches()
	assert.Equal(t, 4, px)
	assert.Equal(t, 4, py)
	assert.Equal(t, 2, m.MaxLOD())
}

func TestDistanceToLOD(t *testing.T) {
	m := flatLOD(t)

	tests := []struct {
		distance float32
		want     int
	}{
		{0, 0},
		{4.99, 0},
		{5, 1},
		{14.9, 1},
		{15, 2},
		{29.9, 2},
		{30, 2},
		{1e6, 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, m.DistanceToLOD(tt.distance), "distance %v", tt.distance)
	}
}

func TestDistanceToLODMonotonic(t *testing.T) {
	m := flatLOD(t)
	prev := 0
	for d := float32(0); d < 60; d += 0.25 {
		lod := m.DistanceToLOD(d)
		require.GreaterOrEqual(t, lod, prev, "distance %v", d)
		prev = lod
	}
}

func TestPatchCenters(t *testing.T) {
	m := flatLOD(t)
	assert.Equal(t, math.Vec3{X: 4, Y: 0, Z: 4}, m.PatchCenter(0, 0))
	assert.Equal(t, math.Vec3{X: 20, Y: 0, Z: 12}, m.PatchCenter(2, 1))
}

func TestLODUpdateAssignsCoresAndFlags(t *testing.T) {
	m := flatLOD(t)

	changed := m.Update(math.Vec3{X: 4, Y: 0, Z: 4})
	assert.True(t, changed)

	assert.Equal(t, PatchLOD{Core: 0, Right: 1, Bottom: 1}, m.PatchLOD(0, 0))
	assert.Equal(t, PatchLOD{Core: 1, Right: 1}, m.PatchLOD(1, 0))
	assert.Equal(t, PatchLOD{Core: 1, Bottom: 1}, m.PatchLOD(0, 1))
	assert.Equal(t, PatchLOD{Core: 1, Right: 1, Bottom: 1}, m.PatchLOD(1, 1))
	assert.Equal(t, PatchLOD{Core: 2}, m.PatchLOD(2, 0))
	assert.Equal(t, PatchLOD{Core: 2}, m.PatchLOD(3, 3))

	assert.False(t, m.Update(math.Vec3{X: 4, Y: 0, Z: 4}), "same camera changes nothing")
}

func TestLODFlagsOnlyPointAtCoarserNeighbors(t *testing.T) {
	m := flatLOD(t)
	m.Update(math.Vec3{X: 13, Y: 2, Z: 21})

	for py := 0; py < 4; py++ {
		for px := 0; px < 4; px++ {
			l := m.PatchLOD(px, py)
			check := func(flag, nx, ny int) {
				if nx < 0 || ny < 0 || nx >= 4 || ny >= 4 {
					assert.Zero(t, flag, "grid border of (%d,%d)", px, py)
					return
				}
				want := 0
				if m.PatchLOD(nx, ny).Core > l.Core {
					want = 1
				}
				assert.Equal(t, want, flag, "patch (%d,%d) neighbor (%d,%d)", px, py, nx, ny)
			}
			check(l.Left, px-1, py)
			check(l.Right, px+1, py)
			check(l.Top, px, py-1)
			check(l.Bottom, px, py+1)
		}
	}
}

func TestLODCameraFarAway(t *testing.T) {
	m := flatLOD(t)
	m.Update(math.Vec3{X: 1000, Y: 500, Z: -1000})

	for py := 0; py < 4; py++ {
		for px := 0; px < 4; px++ {
			assert.Equal(t, PatchLOD{Core: 2}, m.PatchLOD(px, py))
		}
	}
}

func TestLODUsesPatchCenterHeight(t *testing.T) {
	field := rampField(t, 1)
	m := NewLODManager(field, 2, 30)

	// The single patch center sits at height 4.
	assert.Equal(t, float32(4), m.PatchCenter(0, 0).Y)
	m.Update(math.Vec3{X: 4, Y: 4, Z: 4})
	assert.Equal(t, 0, m.PatchLOD(0, 0).Core)
	m.Update(math.Vec3{X: 4, Y: 20, Z: 4})
	assert.Equal(t, 2, m.PatchLOD(0, 0).Core)
}
