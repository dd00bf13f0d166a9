package config

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"go.uber.org/multierr"

	"github.com/Faultbox/midgard-terrain/internal/engine/terrain"
)

// parseFlags registers the shared flags on a fresh set and parses args.
func parseFlags(t *testing.T, args ...string) *Flags {
	t.Helper()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f := RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parsing flags %v: %v", args, err)
	}
	return f
}

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test terrain defaults
	if cfg.Terrain.Mode != "midpoint" {
		t.Errorf("expected mode midpoint, got %s", cfg.Terrain.Mode)
	}
	if cfg.Terrain.Width != 257 || cfg.Terrain.Height != 257 {
		t.Errorf("expected 257x257 grid, got %dx%d", cfg.Terrain.Width, cfg.Terrain.Height)
	}
	if cfg.Terrain.WorldScale != 4 {
		t.Errorf("expected world scale 4, got %f", cfg.Terrain.WorldScale)
	}

	// Test LOD defaults
	if cfg.LOD.MaxLOD != 4 {
		t.Errorf("expected max LOD 4, got %d", cfg.LOD.MaxLOD)
	}
	if cfg.LOD.FarDistance != 3000 {
		t.Errorf("expected far distance 3000, got %f", cfg.LOD.FarDistance)
	}

	// Test culling defaults
	if !cfg.Culling.Enabled {
		t.Error("expected culling to be enabled by default")
	}
	if cfg.Culling.Bias != -40 {
		t.Errorf("expected cull bias -40, got %f", cfg.Culling.Bias)
	}

	// Test camera defaults
	if cfg.Camera.FOV != 60 {
		t.Errorf("expected fov 60, got %f", cfg.Camera.FOV)
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("expected default config to be valid, got %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "terrain.yaml")

	yamlContent := `
terrain:
  mode: heightmap
  heightmap: "maps/island.png"
  heightmap_channel: 2
  height_scale: 0.5
  world_scale: 2
  min_height: -10
  max_height: 90
  material: 3

lod:
  max_lod: 3
  far_distance: 900

culling:
  enabled: false
  bias: -12

camera:
  fov: 75
  clearance: 4

blending:
  textures: [5, 6, 7]
  heights: [0, 20, 60]

logging:
  level: "debug"
  log_file: "terrain.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Load config
	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Verify values were loaded
	if cfg.Terrain.Mode != "heightmap" {
		t.Errorf("expected mode heightmap, got %s", cfg.Terrain.Mode)
	}
	if cfg.Terrain.Heightmap != "maps/island.png" {
		t.Errorf("expected heightmap path, got %s", cfg.Terrain.Heightmap)
	}
	if cfg.Terrain.HeightmapChannel != 2 {
		t.Errorf("expected channel 2, got %d", cfg.Terrain.HeightmapChannel)
	}
	if cfg.LOD.MaxLOD != 3 {
		t.Errorf("expected max LOD 3, got %d", cfg.LOD.MaxLOD)
	}
	if cfg.Culling.Enabled {
		t.Error("expected culling to be disabled")
	}
	if cfg.Camera.FOV != 75 {
		t.Errorf("expected fov 75, got %f", cfg.Camera.FOV)
	}
	if len(cfg.Blending.Textures) != 3 || cfg.Blending.Heights[2] != 60 {
		t.Errorf("unexpected blending %+v", cfg.Blending)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}

	// Unset fields keep their defaults
	if cfg.Terrain.TextureScale != 8 {
		t.Errorf("expected default texture scale 8, got %f", cfg.Terrain.TextureScale)
	}
	if cfg.Camera.Near != 1 {
		t.Errorf("expected default near 1, got %f", cfg.Camera.Near)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "terrain.yaml")

	invalidYAML := `
terrain:
  width: [not, a, number
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/terrain.yaml")
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("expected non-empty config directory")
	}

	if runtime.GOOS == "linux" {
		t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
		if got := ConfigDir(); got != "/tmp/xdg/midgard-terrain" {
			t.Errorf("expected XDG config dir, got %s", got)
		}
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "subdir", "terrain.yaml")

	cfg := Default()
	cfg.Terrain.Seed = 99
	cfg.LOD.MaxLOD = 2
	cfg.Blending.Heights = []float32{0, 10, 20, 30}

	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded, err := Load(parseFlags(t, "-config", configPath))
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if loaded.Terrain.Seed != 99 {
		t.Errorf("expected seed 99, got %d", loaded.Terrain.Seed)
	}
	if loaded.LOD.MaxLOD != 2 {
		t.Errorf("expected max LOD 2, got %d", loaded.LOD.MaxLOD)
	}
	if len(loaded.Blending.Heights) != 4 {
		t.Errorf("expected 4 blending heights, got %v", loaded.Blending.Heights)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		verify func(t *testing.T, cfg *Config)
	}{
		{
			name: "debug flag",
			args: []string{"-debug"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
		},
		{
			name: "size and seed flags",
			args: []string{"-size", "129", "-seed", "42", "-roughness", "0.8"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Terrain.Width != 129 || cfg.Terrain.Height != 129 {
					t.Errorf("expected 129x129, got %dx%d", cfg.Terrain.Width, cfg.Terrain.Height)
				}
				if cfg.Terrain.Seed != 42 {
					t.Errorf("expected seed 42, got %d", cfg.Terrain.Seed)
				}
				if cfg.Terrain.Roughness != 0.8 {
					t.Errorf("expected roughness 0.8, got %f", cfg.Terrain.Roughness)
				}
			},
		},
		{
			name: "heightmap flag switches mode",
			args: []string{"-heightmap", "hills.png"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Terrain.Mode != "heightmap" || cfg.Terrain.Heightmap != "hills.png" {
					t.Errorf("expected heightmap mode from hills.png, got %s %s", cfg.Terrain.Mode, cfg.Terrain.Heightmap)
				}
			},
		},
		{
			name: "max LOD zero is an override",
			args: []string{"-max-lod", "0"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.LOD.MaxLOD != 0 {
					t.Errorf("expected max LOD 0, got %d", cfg.LOD.MaxLOD)
				}
			},
		},
		{
			name: "max LOD untouched without flag",
			args: nil,
			verify: func(t *testing.T, cfg *Config) {
				if cfg.LOD.MaxLOD != 4 {
					t.Errorf("expected default max LOD 4, got %d", cfg.LOD.MaxLOD)
				}
			},
		},
		{
			name: "no-cull flag",
			args: []string{"-no-cull"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Culling.Enabled {
					t.Error("expected culling to be disabled with no-cull flag")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			parseFlags(t, tt.args...).apply(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "terrain.yaml")

	yamlContent := `
terrain:
  width: 129
  height: 65
  seed: 5
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, path, err := LoadWithPath(parseFlags(t, "-config", configPath, "-seed", "77"))
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if path != configPath {
		t.Errorf("expected path %s, got %s", configPath, path)
	}

	// Seed should be from flag (77), not file (5)
	if cfg.Terrain.Seed != 77 {
		t.Errorf("expected seed 77 from flag, got %d", cfg.Terrain.Seed)
	}

	// Height should be from file (65) since no flag override
	if cfg.Terrain.Height != 65 {
		t.Errorf("expected height 65 from file, got %d", cfg.Terrain.Height)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "terrain.yaml")

	yamlContent := `
terrain:
  world_scale: 0
camera:
  fov: 200
logging:
  level: loud
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(parseFlags(t, "-config", configPath))
	if err == nil {
		t.Fatal("expected validation error")
	}
	if got := len(multierr.Errors(err)); got != 3 {
		t.Errorf("expected 3 problems, got %d: %v", got, err)
	}
	if !errors.Is(err, ErrInvalidConfig) || !errors.Is(err, terrain.ErrInvalidParams) {
		t.Errorf("expected both config and terrain errors, got %v", err)
	}
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := Default()
	cfg.Terrain.Mode = "voxels"
	if err := cfg.Validate(); !errors.Is(err, terrain.ErrInvalidParams) {
		t.Errorf("expected invalid params error, got %v", err)
	}
}

func TestValidateRejectsNarrowLODBands(t *testing.T) {
	cfg := Default()
	cfg.LOD.FarDistance = 500
	err := cfg.Validate()
	if !errors.Is(err, terrain.ErrInvalidParams) {
		t.Fatalf("expected invalid params error, got %v", err)
	}
	if !strings.Contains(err.Error(), "patch diagonal") {
		t.Errorf("expected LOD band problem, got %v", err)
	}

	cfg.LOD.FarDistance = 3000
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected far distance 3000 to be valid, got %v", err)
	}
}

func TestTerrainParams(t *testing.T) {
	cfg := Default()
	cfg.Terrain.Mode = "flat"
	cfg.Terrain.Material = 9
	cfg.Culling.Bias = -3

	p, err := cfg.TerrainParams()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Mode != terrain.ModeFlat {
		t.Errorf("expected flat mode, got %v", p.Mode)
	}
	if p.MaterialIndex != 9 || p.CullBias != -3 || p.MaxLOD != 4 {
		t.Errorf("unexpected params %+v", p)
	}
}

func TestNewCamera(t *testing.T) {
	cfg := Default()
	cfg.Camera.FOV = 90
	cfg.Camera.Width = 800
	cfg.Camera.Height = 400

	cam := cfg.NewCamera()
	if d := cam.FOV - 1.5707964; d > 1e-5 || d < -1e-5 {
		t.Errorf("expected fov pi/2, got %f", cam.FOV)
	}
	if cam.Aspect != 2 {
		t.Errorf("expected aspect 2, got %f", cam.Aspect)
	}
}
