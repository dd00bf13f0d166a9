package terrain

import (
	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-terrain/pkg/math"
)

// HeightField is a row-major grid of heights plus the derived vertex data.
// It is immutable once generation has finished.
type HeightField struct {
	dimX, dimY   int
	worldScale   float32
	textureScale float32

	heights  []float32 // [z*dimX + x]
	vertices []Vertex
	bounds   Bounds

	patchSize          int
	patchesX, patchesY int
	centerHeights      []float32 // [py*patchesX + px]

	blending []BlendingTexture
}

func newHeightField(dimX, dimY int, p Params) *HeightField {
	return &HeightField{
		dimX:         dimX,
		dimY:         dimY,
		worldScale:   p.WorldScale,
		textureScale: p.TextureScale,
		heights:      make([]float32, dimX*dimY),
		patchSize:    PatchSize(p.MaxLOD),
	}
}

// finish runs the shared post-processing pipeline after any generator.
func (h *HeightField) finish(p Params, log *zap.Logger) error {
	patchesX, recX, err := checkGrid(h.dimX, h.patchSize)
	if err != nil {
		return err
	}
	patchesY, recY, err := checkGrid(h.dimY, h.patchSize)
	if err != nil {
		return err
	}
	if recX != 0 || recY != 0 {
		if recX == 0 {
			recX = h.dimX
		}
		if recY == 0 {
			recY = h.dimY
		}
		log.Warn("grid size is not a whole number of patches, the last row/column will not be drawn",
			zap.Int("dim_x", h.dimX),
			zap.Int("dim_y", h.dimY),
			zap.Int("patch_size", h.patchSize),
			zap.Int("recommended_x", recX),
			zap.Int("recommended_y", recY),
		)
	}
	h.patchesX = patchesX
	h.patchesY = patchesY

	h.Normalize(p.MinHeight, p.MaxHeight)
	h.buildVertices()
	h.CalcNormals()
	h.loadHeightsPerPatch()
	h.blending = blendingTextures(p)
	return nil
}

// Dims returns the grid size in vertices.
func (h *HeightField) Dims() (dimX, dimY int) {
	return h.dimX, h.dimY
}

// Patches returns the number of whole patches along each axis.
func (h *HeightField) Patches() (patchesX, patchesY int) {
	return h.patchesX, h.patchesY
}

// PatchSize returns the number of vertices along one side of a patch.
func (h *HeightField) PatchSize() int {
	return h.patchSize
}

// WorldScale returns the horizontal distance between neighbouring vertices.
func (h *HeightField) WorldScale() float32 {
	return h.worldScale
}

// Heights returns the raw height grid. Callers must not modify it.
func (h *HeightField) Heights() []float32 {
	return h.heights
}

// Vertices returns the vertex buffer contents. Callers must not modify it.
func (h *HeightField) Vertices() []Vertex {
	return h.vertices
}

// Bounds returns the world-space bounding box.
func (h *HeightField) Bounds() Bounds {
	return h.bounds
}

// BlendingTextures returns the height bands, lowest first.
func (h *HeightField) BlendingTextures() []BlendingTexture {
	return h.blending
}

// HeightAt returns the height of grid vertex (x, z), clamped to the grid.
func (h *HeightField) HeightAt(x, z int) float32 {
	x = clampi(x, 0, h.dimX-1)
	z = clampi(z, 0, h.dimY-1)
	return h.heights[z*h.dimX+x]
}

// HeightAtWorld returns the bilinearly interpolated height at a world
// position. Positions outside the grid use the nearest edge.
func (h *HeightField) HeightAtWorld(worldX, worldZ float32) float32 {
	gx := clampf(worldX/h.worldScale, 0, float32(h.dimX-1))
	gz := clampf(worldZ/h.worldScale, 0, float32(h.dimY-1))

	x0 := clampi(int(gx), 0, h.dimX-2)
	z0 := clampi(int(gz), 0, h.dimY-2)
	fx := gx - float32(x0)
	fz := gz - float32(z0)

	h00 := h.heights[z0*h.dimX+x0]
	h10 := h.heights[z0*h.dimX+x0+1]
	h01 := h.heights[(z0+1)*h.dimX+x0]
	h11 := h.heights[(z0+1)*h.dimX+x0+1]

	near := h00*(1-fx) + h10*fx
	far := h01*(1-fx) + h11*fx
	return near*(1-fz) + far*fz
}

// PatchCenterHeight returns the cached height at the center of a patch.
func (h *HeightField) PatchCenterHeight(px, py int) float32 {
	return h.centerHeights[py*h.patchesX+px]
}

// Normalize linearly remaps every height from the observed range into
// [minRange, maxRange]. A field without any height variation is unchanged.
func (h *HeightField) Normalize(minRange, maxRange float32) {
	if len(h.heights) == 0 {
		return
	}
	lo, hi := h.heights[0], h.heights[0]
	for _, v := range h.heights[1:] {
		lo = math32.Min(lo, v)
		hi = math32.Max(hi, v)
	}
	if hi <= lo {
		return
	}

	scale := (maxRange - minRange) / (hi - lo)
	for i, v := range h.heights {
		h.heights[i] = (v-lo)*scale + minRange
	}
}

func (h *HeightField) buildVertices() {
	h.vertices = make([]Vertex, len(h.heights))
	h.bounds = Bounds{
		Min: math.Vec3{X: math32.MaxFloat32, Y: math32.MaxFloat32, Z: math32.MaxFloat32},
		Max: math.Vec3{X: -math32.MaxFloat32, Y: -math32.MaxFloat32, Z: -math32.MaxFloat32},
	}

	uStep := h.textureScale / float32(h.dimX-1)
	vStep := h.textureScale / float32(h.dimY-1)
	for z := 0; z < h.dimY; z++ {
		for x := 0; x < h.dimX; x++ {
			i := z*h.dimX + x
			pos := math.Vec3{
				X: float32(x) * h.worldScale,
				Y: h.heights[i],
				Z: float32(z) * h.worldScale,
			}
			h.vertices[i] = Vertex{
				Position: pos,
				Normal:   math.Up,
				TexCoord: math.Vec2{X: float32(x) * uStep, Y: float32(z) * vStep},
			}
			updateBounds(&h.bounds, pos)
		}
	}
}

// loadHeightsPerPatch caches the center height of every patch so the LOD
// pass does not touch the full grid.
func (h *HeightField) loadHeightsPerPatch() {
	h.centerHeights = make([]float32, h.patchesX*h.patchesY)
	half := h.patchSize / 2
	for py := 0; py < h.patchesY; py++ {
		for px := 0; px < h.patchesX; px++ {
			x := px*(h.patchSize-1) + half
			z := py*(h.patchSize-1) + half
			h.centerHeights[py*h.patchesX+px] = h.heights[z*h.dimX+x]
		}
	}
}

// blendingTextures assigns each configured texture its height band.
func blendingTextures(p Params) []BlendingTexture {
	n := len(p.BlendTextures)
	if n > MaxBlendingTextures {
		n = MaxBlendingTextures
	}
	out := make([]BlendingTexture, n)
	for i := 0; i < n; i++ {
		height := p.MinHeight + (p.MaxHeight-p.MinHeight)*float32(i)/float32(n)
		if len(p.BlendHeights) == len(p.BlendTextures) {
			height = p.BlendHeights[i]
		}
		out[i] = BlendingTexture{Height: height, Texture: p.BlendTextures[i]}
	}
	return out
}

func clampi(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
