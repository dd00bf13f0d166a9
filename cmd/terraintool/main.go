// terraintool generates geomipmapped terrains and inspects their LOD behavior.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-terrain/internal/config"
	"github.com/Faultbox/midgard-terrain/internal/engine/terrain"
	"github.com/Faultbox/midgard-terrain/internal/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "export":
		cmdExport(args)
	case "fly":
		cmdFly(args)
	case "probe":
		cmdProbe(args)
	case "watch":
		cmdWatch(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`terraintool - geomipmapped terrain utility

Usage:
  terraintool <command> [options]

Commands:
  info                  Show grid, patch and LOD information
  export <out.png>      Write the height field as a grayscale PNG
  fly                   Orbit the camera and report drawn patches per frame
  probe [-x px -y py]   Pick the ground point under a screen pixel
  watch                 Rebuild the terrain whenever its inputs change

Common options:
  -config <file>        Config file (default ./terrain.yaml)
  -mode <mode>          flat, heightmap or midpoint
  -size <n>             Grid size in vertices
  -seed <n>             Random seed
  -heightmap <file>     Heightmap image
  -max-lod <n>          Coarsest detail level
  -cull / -no-cull      Toggle frustum culling
  -debug                Debug logging

Examples:
  terraintool info -size 513 -max-lod 5
  terraintool export -seed 7 island.png
  terraintool fly -frames 8 -no-cull
  terraintool probe -x 200 -y 500
  terraintool watch -config terrain.yaml`)
}

// setup parses the shared flags, loads the config and builds the logger.
// It exits on failure.
func setup(fs *flag.FlagSet, args []string) (*config.Config, string, *config.Flags, *zap.Logger) {
	flags := config.RegisterFlags(fs)
	fs.Parse(args)

	cfg, path, err := config.LoadWithPath(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return cfg, path, flags, log
}

// build creates the terrain described by cfg. It exits on failure.
func build(cfg *config.Config, log *zap.Logger) *terrain.Terrain {
	params, err := cfg.TerrainParams()
	if err != nil {
		fatal(log, "invalid terrain parameters", err)
	}
	t, err := terrain.New(params, log)
	if err != nil {
		fatal(log, "building terrain", err)
	}
	return t
}

// osExit is replaced in tests.
var osExit = os.Exit

func fatal(log *zap.Logger, msg string, err error) {
	log.Error(msg, zap.Error(err))
	fail(log, "Error: %v", err)
}

// fail prints a message to stderr, flushes the logger and exits with status
// 1. Deferred calls do not run after os.Exit, so commands that have
// deferred logger.Sync must leave through here.
func fail(log *zap.Logger, format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	logger.Sync(log)
	osExit(1)
}

func cmdInfo(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	cfg, _, _, log := setup(fs, args)
	defer logger.Sync(log)

	t := build(cfg, log)
	field := t.HeightField()
	table := t.IndexTable()
	dimX, dimY := field.Dims()
	px, py := field.Patches()
	b := field.Bounds()

	fmt.Printf("Mode:        %s\n", t.Params().Mode)
	fmt.Printf("Grid:        %d x %d vertices\n", dimX, dimY)
	fmt.Printf("Patch size:  %d\n", field.PatchSize())
	fmt.Printf("Patches:     %d x %d\n", px, py)
	fmt.Printf("Bounds:      (%.1f, %.1f, %.1f) - (%.1f, %.1f, %.1f)\n", b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z)
	fmt.Printf("Indices:     %d (%.2f MB)\n", len(table.Indices()), float64(len(table.Indices())*4)/(1024*1024))
	fmt.Println()

	fmt.Println("LOD bands:")
	prev := float32(0)
	for lod, edge := range t.LOD().Regions() {
		full := table.Lookup(terrain.PatchLOD{Core: lod})
		stitched := table.Lookup(terrain.PatchLOD{Core: lod, Left: 1, Right: 1, Top: 1, Bottom: 1})
		fmt.Printf("  %d  %8.1f - %-8.1f  %6d triangles (%d fully stitched)\n",
			lod, prev, edge, full.Count/3, stitched.Count/3)
		prev = edge
	}

	if bt := t.BlendingTextures(); len(bt) > 0 {
		fmt.Println()
		fmt.Println("Blending textures:")
		for _, tex := range bt {
			fmt.Printf("  from %8.1f  texture %d\n", tex.Height, tex.Texture)
		}
	}
}

func cmdExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	cfg, _, _, log := setup(fs, args)
	defer logger.Sync(log)

	if fs.NArg() < 1 {
		fail(log, "Usage: terraintool export [options] <out.png>")
	}
	out := fs.Arg(0)

	t := build(cfg, log)

	f, err := os.Create(out)
	if err != nil {
		fatal(log, "creating output", err)
	}
	if err := t.HeightField().EncodePNG(f); err != nil {
		f.Close()
		fatal(log, "encoding PNG", err)
	}
	if err := f.Close(); err != nil {
		fatal(log, "closing output", err)
	}

	dimX, dimY := t.HeightField().Dims()
	fmt.Printf("Exported %dx%d height field to %s\n", dimX, dimY, out)
}
