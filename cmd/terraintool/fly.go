package main

import (
	"flag"
	"fmt"

	"github.com/chewxy/math32"

	"github.com/Faultbox/midgard-terrain/internal/engine/camera"
	"github.com/Faultbox/midgard-terrain/internal/engine/terrain"
	"github.com/Faultbox/midgard-terrain/internal/logger"
	"github.com/Faultbox/midgard-terrain/pkg/math"
)

// frameStats is what one frame of a fly-over would draw.
type frameStats struct {
	Camera         math.Vec3
	LODChanged     bool
	Batches        int
	Triangles      int
	AllBatches     int
	AllTriangles   int
	CoreHistogram  []int
	CameraAdjusted bool
}

// flyOver orbits cam once around its center in the given number of frames,
// keeping it above the ground, and collects draw statistics per frame.
func flyOver(t *terrain.Terrain, cam *camera.OrbitCamera, frames int, clearance float32) []frameStats {
	stats := make([]frameStats, 0, frames)
	step := 2 * math32.Pi / float32(frames)

	for i := 0; i < frames; i++ {
		var s frameStats
		s.CameraAdjusted = cam.KeepAbove(t.HeightAtWorld, clearance)
		s.Camera = cam.Position()

		s.LODChanged = t.OnCameraMoved(s.Camera)
		t.OnViewProjectionChanged(cam.ViewProjection())

		for b := range t.QueryWith(terrain.CullFrustum).All() {
			s.Batches++
			s.Triangles += int(b.IndicesCount / 3)
		}

		lod := t.LOD()
		s.CoreHistogram = make([]int, lod.MaxLOD()+1)
		px, py := lod.Patches()
		for y := 0; y < py; y++ {
			for x := 0; x < px; x++ {
				s.CoreHistogram[lod.PatchLOD(x, y).Core]++
			}
		}
		for b := range t.QueryWith(terrain.CullNone).All() {
			s.AllBatches++
			s.AllTriangles += int(b.IndicesCount / 3)
		}

		stats = append(stats, s)
		cam.Yaw += step
	}
	return stats
}

func cmdFly(args []string) {
	fs := flag.NewFlagSet("fly", flag.ExitOnError)
	frames := fs.Int("frames", 12, "Number of frames in one orbit")
	cfg, _, _, log := setup(fs, args)
	defer logger.Sync(log)

	if *frames < 1 {
		*frames = 1
	}

	t := build(cfg, log)
	b := t.HeightField().Bounds()

	cam := cfg.NewCamera()
	cam.FitToBounds(b.Min, b.Max)

	fmt.Printf("%5s  %-28s  %-7s  %15s  %15s  %s\n", "frame", "camera", "changed", "culled", "all", "patches per LOD")
	for i, s := range flyOver(t, cam, *frames, cfg.Camera.Clearance) {
		pos := fmt.Sprintf("(%.0f, %.0f, %.0f)", s.Camera.X, s.Camera.Y, s.Camera.Z)
		if s.CameraAdjusted {
			pos += "^"
		}
		fmt.Printf("%5d  %-28s  %-7v  %6d/%8d  %6d/%8d  %v\n",
			i, pos, s.LODChanged, s.Batches, s.Triangles, s.AllBatches, s.AllTriangles, s.CoreHistogram)
	}
}
