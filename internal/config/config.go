// Package config handles terrain tool configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"go.uber.org/multierr"

	"github.com/Faultbox/midgard-terrain/internal/engine/camera"
	"github.com/Faultbox/midgard-terrain/internal/engine/terrain"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all terrain settings.
type Config struct {
	Terrain  TerrainConfig  `yaml:"terrain"`
	LOD      LODConfig      `yaml:"lod"`
	Culling  CullingConfig  `yaml:"culling"`
	Camera   CameraConfig   `yaml:"camera"`
	Blending BlendingConfig `yaml:"blending"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// TerrainConfig holds height field generation settings.
type TerrainConfig struct {
	Mode      string  `yaml:"mode"` // flat, heightmap or midpoint
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	Roughness float32 `yaml:"roughness"`
	Seed      int64   `yaml:"seed"`

	Heightmap        string  `yaml:"heightmap"`
	HeightmapChannel int     `yaml:"heightmap_channel"`
	HeightScale      float32 `yaml:"height_scale"`

	WorldScale   float32 `yaml:"world_scale"`
	TextureScale float32 `yaml:"texture_scale"`
	MinHeight    float32 `yaml:"min_height"`
	MaxHeight    float32 `yaml:"max_height"`
	Material     uint32  `yaml:"material"`
}

// LODConfig holds level of detail settings.
type LODConfig struct {
	MaxLOD      int     `yaml:"max_lod"`
	FarDistance float32 `yaml:"far_distance"`
}

// CullingConfig holds frustum culling settings.
type CullingConfig struct {
	Enabled bool    `yaml:"enabled"`
	Bias    float32 `yaml:"bias"`
}

// CameraConfig holds the fly-over camera settings.
type CameraConfig struct {
	FOV       float32 `yaml:"fov"` // vertical, degrees
	Near      float32 `yaml:"near"`
	Far       float32 `yaml:"far"`
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	Clearance float32 `yaml:"clearance"` // minimum height above ground
}

// BlendingConfig holds ground texture blending settings.
type BlendingConfig struct {
	Textures []uint32  `yaml:"textures"`
	Heights  []float32 `yaml:"heights,omitempty"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	p := terrain.DefaultParams()
	return &Config{
		Terrain: TerrainConfig{
			Mode:         p.Mode.String(),
			Width:        p.DimX,
			Height:       p.DimY,
			Roughness:    p.Roughness,
			Seed:         p.Seed,
			HeightScale:  p.HeightScale,
			WorldScale:   p.WorldScale,
			TextureScale: p.TextureScale,
			MinHeight:    p.MinHeight,
			MaxHeight:    p.MaxHeight,
			Material:     p.MaterialIndex,
		},
		LOD: LODConfig{
			MaxLOD:      p.MaxLOD,
			FarDistance: p.FarDistance,
		},
		Culling: CullingConfig{
			Enabled: p.Culling,
			Bias:    p.CullBias,
		},
		Camera: CameraConfig{
			FOV:       60,
			Near:      1,
			Far:       10000,
			Width:     1280,
			Height:    720,
			Clearance: 10,
		},
		Blending: BlendingConfig{
			Textures: p.BlendTextures,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// TerrainParams converts the terrain related sections into terrain.Params.
func (c *Config) TerrainParams() (terrain.Params, error) {
	mode, err := terrain.ParseMode(c.Terrain.Mode)
	if err != nil {
		return terrain.Params{}, err
	}
	return terrain.Params{
		Mode:             mode,
		DimX:             c.Terrain.Width,
		DimY:             c.Terrain.Height,
		Roughness:        c.Terrain.Roughness,
		Seed:             c.Terrain.Seed,
		HeightmapPath:    c.Terrain.Heightmap,
		HeightmapChannel: c.Terrain.HeightmapChannel,
		HeightScale:      c.Terrain.HeightScale,
		MaxLOD:           c.LOD.MaxLOD,
		WorldScale:       c.Terrain.WorldScale,
		TextureScale:     c.Terrain.TextureScale,
		MinHeight:        c.Terrain.MinHeight,
		MaxHeight:        c.Terrain.MaxHeight,
		FarDistance:      c.LOD.FarDistance,
		Culling:          c.Culling.Enabled,
		CullBias:         c.Culling.Bias,
		MaterialIndex:    c.Terrain.Material,
		BlendTextures:    c.Blending.Textures,
		BlendHeights:     c.Blending.Heights,
	}, nil
}

// NewCamera returns an orbit camera with the configured projection.
func (c *Config) NewCamera() *camera.OrbitCamera {
	cam := camera.NewOrbitCamera()
	cam.FOV = c.Camera.FOV * math32.Pi / 180
	cam.Near = c.Camera.Near
	cam.Far = c.Camera.Far
	if c.Camera.Height > 0 {
		cam.Aspect = float32(c.Camera.Width) / float32(c.Camera.Height)
	}
	return cam
}

// Validate reports every problem in the config at once.
func (c *Config) Validate() error {
	var err error
	bad := func(format string, args ...any) {
		err = multierr.Append(err, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error", "":
	default:
		bad("unknown log level %q", c.Logging.Level)
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		bad("camera fov %g outside (0,180)", c.Camera.FOV)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		bad("camera clip range [%g,%g] is invalid", c.Camera.Near, c.Camera.Far)
	}
	if c.Camera.Width <= 0 || c.Camera.Height <= 0 {
		bad("camera viewport %dx%d is invalid", c.Camera.Width, c.Camera.Height)
	}

	p, perr := c.TerrainParams()
	if perr != nil {
		return multierr.Append(err, perr)
	}
	return multierr.Combine(err, p.Validate(), p.CheckLODBands())
}
