package config

import "flag"

// Flags holds command-line overrides registered on a flag set.
type Flags struct {
	Config    string
	Debug     bool
	Mode      string
	Size      int
	Seed      int64
	Roughness float64
	Heightmap string
	MaxLOD    int
	Far       float64
	Cull      bool
	NoCull    bool
	LogFile   string
}

// RegisterFlags adds the shared terrain flags to fs. Zero values mean the
// flag was not given.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{MaxLOD: -1}
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.Mode, "mode", "", "Generation mode: flat, heightmap or midpoint")
	fs.IntVar(&f.Size, "size", 0, "Grid width and height in vertices")
	fs.Int64Var(&f.Seed, "seed", 0, "Random seed for midpoint mode")
	fs.Float64Var(&f.Roughness, "roughness", 0, "Roughness for midpoint mode")
	fs.StringVar(&f.Heightmap, "heightmap", "", "Heightmap image (switches to heightmap mode)")
	fs.IntVar(&f.MaxLOD, "max-lod", -1, "Coarsest detail level")
	fs.Float64Var(&f.Far, "far", 0, "Distance covered by the LOD bands")
	fs.BoolVar(&f.Cull, "cull", false, "Enable frustum culling")
	fs.BoolVar(&f.NoCull, "no-cull", false, "Disable frustum culling")
	fs.StringVar(&f.LogFile, "log-file", "", "Also write logs to this file")
	return f
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Mode != "" {
		cfg.Terrain.Mode = f.Mode
	}
	if f.Size > 0 {
		cfg.Terrain.Width = f.Size
		cfg.Terrain.Height = f.Size
	}
	if f.Seed != 0 {
		cfg.Terrain.Seed = f.Seed
	}
	if f.Roughness > 0 {
		cfg.Terrain.Roughness = float32(f.Roughness)
	}
	if f.Heightmap != "" {
		cfg.Terrain.Heightmap = f.Heightmap
		cfg.Terrain.Mode = "heightmap"
	}
	if f.MaxLOD >= 0 {
		cfg.LOD.MaxLOD = f.MaxLOD
	}
	if f.Far > 0 {
		cfg.LOD.FarDistance = float32(f.Far)
	}
	if f.Cull {
		cfg.Culling.Enabled = true
	}
	if f.NoCull {
		cfg.Culling.Enabled = false
	}
	if f.LogFile != "" {
		cfg.Logging.LogFile = f.LogFile
	}
}
