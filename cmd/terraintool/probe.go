package main

import (
	"flag"
	"fmt"

	"github.com/Faultbox/midgard-terrain/internal/engine/camera"
	"github.com/Faultbox/midgard-terrain/internal/engine/picking"
	"github.com/Faultbox/midgard-terrain/internal/engine/terrain"
	"github.com/Faultbox/midgard-terrain/internal/logger"
	"github.com/Faultbox/midgard-terrain/pkg/math"
)

// probeResult is the ground point under a screen pixel and the patch that
// covers it.
type probeResult struct {
	Hit    math.Vec3
	PatchX int
	PatchY int
	LOD    terrain.PatchLOD
}

// probe casts a ray through pixel (sx, sy) of a w x h viewport and finds the
// ground point under it. The terrain LOD is updated for the camera first.
func probe(t *terrain.Terrain, cam *camera.OrbitCamera, sx, sy, w, h float32) (probeResult, bool) {
	inv, ok := cam.ViewProjection().Inverse()
	if !ok {
		return probeResult{}, false
	}
	t.OnCameraMoved(cam.Position())

	field := t.HeightField()
	b := field.Bounds()
	ray := picking.ScreenToRay(sx, sy, w, h, inv)
	hit, ok := ray.IntersectGround(field, b.Min, b.Max, field.WorldScale()/2)
	if !ok {
		return probeResult{}, false
	}

	step := float32(field.PatchSize()-1) * field.WorldScale()
	patchesX, patchesY := field.Patches()
	px := min(max(int(hit.X/step), 0), patchesX-1)
	py := min(max(int(hit.Z/step), 0), patchesY-1)

	return probeResult{
		Hit:    hit,
		PatchX: px,
		PatchY: py,
		LOD:    t.LOD().PatchLOD(px, py),
	}, true
}

func cmdProbe(args []string) {
	fs := flag.NewFlagSet("probe", flag.ExitOnError)
	sx := fs.Float64("x", -1, "Screen X in pixels (default viewport center)")
	sy := fs.Float64("y", -1, "Screen Y in pixels (default viewport center)")
	cfg, _, _, log := setup(fs, args)
	defer logger.Sync(log)

	t := build(cfg, log)
	b := t.HeightField().Bounds()

	cam := cfg.NewCamera()
	cam.FitToBounds(b.Min, b.Max)
	cam.KeepAbove(t.HeightAtWorld, cfg.Camera.Clearance)

	w, h := float32(cfg.Camera.Width), float32(cfg.Camera.Height)
	x, y := float32(*sx), float32(*sy)
	if x < 0 {
		x = w / 2
	}
	if y < 0 {
		y = h / 2
	}

	r, ok := probe(t, cam, x, y, w, h)
	if !ok {
		fail(log, "Pixel (%.0f, %.0f) does not hit the ground", x, y)
	}

	pos := cam.Position()
	fmt.Printf("Camera:  (%.1f, %.1f, %.1f)\n", pos.X, pos.Y, pos.Z)
	fmt.Printf("Pixel:   (%.0f, %.0f) of %dx%d\n", x, y, cfg.Camera.Width, cfg.Camera.Height)
	fmt.Printf("Ground:  (%.2f, %.2f, %.2f)\n", r.Hit.X, r.Hit.Y, r.Hit.Z)
	fmt.Printf("Patch:   (%d, %d)\n", r.PatchX, r.PatchY)
	fmt.Printf("LOD:     core %d  left %d  right %d  top %d  bottom %d\n",
		r.LOD.Core, r.LOD.Left, r.LOD.Right, r.LOD.Top, r.LOD.Bottom)
	fmt.Printf("Distance %.1f\n", pos.Distance(r.Hit))
}
