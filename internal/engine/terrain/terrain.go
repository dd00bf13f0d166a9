package terrain

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-terrain/internal/engine/culling"
	"github.com/Faultbox/midgard-terrain/internal/logger"
	"github.com/Faultbox/midgard-terrain/pkg/math"
)

// snapshot is everything derived from one Params value. Only the LOD state
// changes after construction.
type snapshot struct {
	params Params
	field  *HeightField
	table  *IndexTable
	lod    *LODManager
}

// Terrain owns the current terrain snapshot and reacts to camera events.
// Methods are meant to be called from the frame loop; the height field and
// index table of a snapshot may be read from other goroutines.
type Terrain struct {
	log     *zap.Logger
	current atomic.Pointer[snapshot]
	frustum *culling.Frustum
	culling bool

	camera    math.Vec3
	hasCamera bool
}

// New builds a terrain from p. A nil logger disables logging.
func New(p Params, log *zap.Logger) (*Terrain, error) {
	t := &Terrain{log: logger.OrNop(log).Named("terrain")}

	snap, err := t.build(p)
	if err != nil {
		return nil, err
	}
	t.current.Store(snap)
	t.frustum = culling.NewFrustum(p.CullBias)
	t.culling = p.Culling
	return t, nil
}

// Regenerate rebuilds the terrain from p. The previous terrain stays in
// place until the new one is complete, and is kept if building fails.
func (t *Terrain) Regenerate(p Params) error {
	snap, err := t.build(p)
	if err != nil {
		t.log.Error("regeneration failed, keeping previous terrain", zap.Error(err))
		return err
	}
	if t.hasCamera {
		snap.lod.Update(t.camera)
	}
	t.current.Store(snap)
	t.frustum.SetBias(p.CullBias)
	t.culling = p.Culling
	return nil
}

func (t *Terrain) build(p Params) (*snapshot, error) {
	start := time.Now()

	field, err := Generate(p, t.log)
	if err != nil {
		return nil, err
	}
	if err := p.CheckLODBands(); err != nil {
		t.log.Warn("neighboring patches may differ by more than one LOD", zap.Error(err))
	}
	table := BuildIndexTable(p.MaxLOD, field.dimX)
	lod := NewLODManager(field, p.MaxLOD, p.FarDistance)

	t.log.Info("terrain built",
		zap.Stringer("mode", p.Mode),
		zap.Int("dim_x", field.dimX),
		zap.Int("dim_y", field.dimY),
		zap.Int("patch_size", field.patchSize),
		zap.Int("patches_x", field.patchesX),
		zap.Int("patches_y", field.patchesY),
		zap.Int("indices", len(table.indices)),
		zap.Duration("took", time.Since(start)),
	)
	return &snapshot{params: p, field: field, table: table, lod: lod}, nil
}

// OnCameraMoved recomputes the patch LOD table for a new camera position and
// reports whether any patch changed level. Queries created before the call
// must be restarted.
func (t *Terrain) OnCameraMoved(pos math.Vec3) bool {
	t.camera = pos
	t.hasCamera = true

	changed := t.current.Load().lod.Update(pos)
	if changed {
		t.log.Debug("patch LODs changed",
			zap.Float32("x", pos.X),
			zap.Float32("y", pos.Y),
			zap.Float32("z", pos.Z),
		)
	}
	return changed
}

// OnViewProjectionChanged recomputes the frustum planes.
func (t *Terrain) OnViewProjectionChanged(viewProj math.Mat4) {
	t.frustum.Update(viewProj)
}

// SetCulling switches between frustum-culled and unculled queries.
func (t *Terrain) SetCulling(enabled bool) {
	t.culling = enabled
}

// Culling reports whether queries are frustum culled.
func (t *Terrain) Culling() bool {
	return t.culling
}

// Frustum returns the culler used by culled queries.
func (t *Terrain) Frustum() *culling.Frustum {
	return t.frustum
}

// Query returns a fresh walk over the current terrain using the configured
// cull policy.
func (t *Terrain) Query() *Query {
	policy := CullNone
	if t.culling {
		policy = CullFrustum
	}
	return t.QueryWith(policy)
}

// QueryWith returns a fresh walk using an explicit cull policy.
func (t *Terrain) QueryWith(policy CullPolicy) *Query {
	snap := t.current.Load()
	return NewQuery(snap.lod, snap.table, snap.field.dimX, snap.params.MaterialIndex, policy, t.frustum)
}

// Params returns the parameters of the current terrain.
func (t *Terrain) Params() Params {
	return t.current.Load().params
}

// HeightField returns the current height field.
func (t *Terrain) HeightField() *HeightField {
	return t.current.Load().field
}

// IndexTable returns the current index table.
func (t *Terrain) IndexTable() *IndexTable {
	return t.current.Load().table
}

// LOD returns the current LOD manager.
func (t *Terrain) LOD() *LODManager {
	return t.current.Load().lod
}

// Vertices returns the shared vertex buffer contents.
func (t *Terrain) Vertices() []Vertex {
	return t.HeightField().Vertices()
}

// Indices returns the shared index buffer contents.
func (t *Terrain) Indices() []uint32 {
	return t.IndexTable().Indices()
}

// BlendingTextures returns the ground texture height bands.
func (t *Terrain) BlendingTextures() []BlendingTexture {
	return t.HeightField().BlendingTextures()
}

// HeightAtWorld returns the interpolated ground height at a world position.
func (t *Terrain) HeightAtWorld(worldX, worldZ float32) float32 {
	return t.HeightField().HeightAtWorld(worldX, worldZ)
}
