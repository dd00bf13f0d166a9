package terrain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chewxy/math32"
	"go.uber.org/multierr"
)

// Terrain errors.
var (
	ErrAssetLoad     = errors.New("terrain asset load failure")
	ErrInvalidParams = errors.New("invalid terrain parameters")
)

// MaxSupportedLOD bounds the patch size to 2^12+1 vertices per side.
const MaxSupportedLOD = 11

// MaxBlendingTextures is the number of ground textures a height field can blend.
const MaxBlendingTextures = 4

// Mode selects how the height field is produced.
type Mode int

// Generation modes.
const (
	ModeFlat Mode = iota
	ModeHeightmap
	ModeMidpoint
)

// String returns the mode name used in configuration files.
func (m Mode) String() string {
	switch m {
	case ModeFlat:
		return "flat"
	case ModeHeightmap:
		return "heightmap"
	case ModeMidpoint:
		return "midpoint"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode converts a configuration name into a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "flat":
		return ModeFlat, nil
	case "heightmap", "image":
		return ModeHeightmap, nil
	case "midpoint", "diamond-square", "fractal":
		return ModeMidpoint, nil
	}
	return 0, fmt.Errorf("%w: unknown generation mode %q", ErrInvalidParams, s)
}

// Params describes one terrain instance. A change to any field requires a
// full rebuild through Terrain.Regenerate.
type Params struct {
	Mode Mode

	// Grid size for flat and midpoint modes. Heightmaps use the image size.
	DimX, DimY int

	Roughness float32
	Seed      int64

	HeightmapPath    string
	HeightmapChannel int     // 0=R 1=G 2=B 3=A
	HeightScale      float32 // applied to the raw 8-bit sample

	MaxLOD       int
	WorldScale   float32
	TextureScale float32
	MinHeight    float32
	MaxHeight    float32

	// FarDistance is split into MaxLOD+1 distance bands.
	FarDistance float32

	Culling  bool
	CullBias float32

	MaterialIndex uint32

	// BlendTextures are texture handles ordered from the lowest band up.
	// BlendHeights is either empty (bands spread evenly over the height
	// range) or holds one ascending threshold per texture.
	BlendTextures []uint32
	BlendHeights  []float32
}

// DefaultParams returns a 257x257 fractal terrain with five detail levels.
func DefaultParams() Params {
	return Params{
		Mode:          ModeMidpoint,
		DimX:          257,
		DimY:          257,
		Roughness:     1.2,
		Seed:          1,
		HeightScale:   1,
		MaxLOD:        4,
		WorldScale:    4,
		TextureScale:  8,
		MinHeight:     0,
		MaxHeight:     256,
		FarDistance:   3000,
		Culling:       true,
		CullBias:      -40,
		BlendTextures: []uint32{0, 1, 2, 3},
	}
}

// PatchSize returns the number of vertices along one side of a patch for
// the given maximum LOD.
func PatchSize(maxLOD int) int {
	return 1<<(maxLOD+1) + 1
}

// Validate reports every problem with p. The returned error matches
// ErrInvalidParams. Heightmap dimensions are only known after loading and
// are checked by checkGrid.
func (p Params) Validate() error {
	var err error
	bad := func(format string, args ...any) {
		err = multierr.Append(err, fmt.Errorf("%w: "+format, append([]any{ErrInvalidParams}, args...)...))
	}

	if p.MaxLOD < 0 || p.MaxLOD > MaxSupportedLOD {
		bad("max LOD %d outside [0,%d]", p.MaxLOD, MaxSupportedLOD)
	}
	if p.WorldScale <= 0 {
		bad("world scale must be positive, got %g", p.WorldScale)
	}
	if p.FarDistance <= 0 {
		bad("far distance must be positive, got %g", p.FarDistance)
	}
	if p.MaxHeight < p.MinHeight {
		bad("height range [%g,%g] is inverted", p.MinHeight, p.MaxHeight)
	}
	if p.CullBias > 0 {
		bad("cull bias must not be positive, got %g", p.CullBias)
	}

	switch p.Mode {
	case ModeFlat, ModeMidpoint:
		if p.MaxLOD >= 0 && p.MaxLOD <= MaxSupportedLOD {
			ps := PatchSize(p.MaxLOD)
			if p.DimX < ps || p.DimY < ps {
				bad("grid %dx%d is smaller than patch size %d for max LOD %d", p.DimX, p.DimY, ps, p.MaxLOD)
			}
		}
		if p.Mode == ModeMidpoint && p.Roughness < 0 {
			bad("roughness must not be negative, got %g", p.Roughness)
		}
	case ModeHeightmap:
		if p.HeightmapPath == "" {
			bad("heightmap mode needs a heightmap path")
		}
		if p.HeightmapChannel < 0 || p.HeightmapChannel > 3 {
			bad("heightmap channel %d outside [0,3]", p.HeightmapChannel)
		}
		if p.HeightScale <= 0 {
			bad("height scale must be positive, got %g", p.HeightScale)
		}
	default:
		bad("unknown mode %v", p.Mode)
	}

	if len(p.BlendTextures) > MaxBlendingTextures {
		bad("%d blending textures exceed the limit of %d", len(p.BlendTextures), MaxBlendingTextures)
	}
	if len(p.BlendHeights) > 0 {
		if len(p.BlendHeights) != len(p.BlendTextures) {
			bad("%d blending heights for %d textures", len(p.BlendHeights), len(p.BlendTextures))
		}
		for i := 1; i < len(p.BlendHeights); i++ {
			if p.BlendHeights[i] < p.BlendHeights[i-1] {
				bad("blending heights must ascend, %g follows %g", p.BlendHeights[i], p.BlendHeights[i-1])
				break
			}
		}
	}

	return err
}

// CheckLODBands reports an error matching ErrInvalidParams when the nearest
// LOD band is narrower than the world diagonal of one patch. Neighboring
// patches can then sit two levels apart, and a one-level edge flag leaves
// the shared border open.
func (p Params) CheckLODBands() error {
	if p.MaxLOD <= 0 || p.MaxLOD > MaxSupportedLOD || p.WorldScale <= 0 || p.FarDistance <= 0 {
		return nil
	}
	band := p.FarDistance / float32((p.MaxLOD+1)*(p.MaxLOD+2)/2)
	diagonal := float32(PatchSize(p.MaxLOD)-1) * p.WorldScale * math32.Sqrt2
	if band >= diagonal {
		return nil
	}
	return fmt.Errorf("%w: nearest LOD band %.1f is narrower than the patch diagonal %.1f, far distance must be at least %.1f",
		ErrInvalidParams, band, diagonal, p.FarDistance*diagonal/band)
}

// checkGrid validates a grid dimension against the patch size. It returns
// the number of whole patches along that axis, and when the dimension is
// not an exact patch multiple, the nearest larger dimension that is.
func checkGrid(dim, patchSize int) (patches, recommended int, err error) {
	if dim < patchSize {
		return 0, 0, fmt.Errorf("%w: grid dimension %d is smaller than patch size %d", ErrInvalidParams, dim, patchSize)
	}
	step := patchSize - 1
	patches = (dim - 1) / step
	if (dim-1)%step != 0 {
		recommended = ((dim-1+step-1)/step)*step + 1
	}
	return patches, recommended, nil
}
