package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-terrain/internal/config"
	"github.com/Faultbox/midgard-terrain/internal/engine/terrain"
	"github.com/Faultbox/midgard-terrain/internal/logger"
)

// rebuilder regenerates a terrain when its config file or heightmap changes.
type rebuilder struct {
	log     *zap.Logger
	flags   *config.Flags
	terrain *terrain.Terrain
	files   map[string]bool
}

func newRebuilder(t *terrain.Terrain, flags *config.Flags, configPath string, log *zap.Logger) *rebuilder {
	r := &rebuilder{log: log, flags: flags, terrain: t}
	r.track(configPath, t.Params().HeightmapPath)
	return r
}

// track replaces the set of watched files. Empty paths are ignored.
func (r *rebuilder) track(paths ...string) {
	r.files = make(map[string]bool)
	for _, p := range paths {
		if p == "" {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		r.files[filepath.Clean(p)] = true
	}
}

// dirs returns the directories holding the watched files. Watching the
// directory survives editors that replace files by renaming.
func (r *rebuilder) dirs() []string {
	seen := make(map[string]bool)
	var out []string
	for f := range r.files {
		d := filepath.Dir(f)
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	return out
}

// handle rebuilds the terrain if the event touches a watched file. It
// reports whether a rebuild was attempted.
func (r *rebuilder) handle(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := event.Name
	if abs, err := filepath.Abs(name); err == nil {
		name = abs
	}
	if !r.files[filepath.Clean(name)] {
		return false
	}

	r.log.Info("input changed, rebuilding", zap.String("file", event.Name), zap.Stringer("op", event.Op))

	cfg, path, err := config.LoadWithPath(r.flags)
	if err != nil {
		r.log.Error("reloading config", zap.Error(err))
		return true
	}
	params, err := cfg.TerrainParams()
	if err != nil {
		r.log.Error("reloading config", zap.Error(err))
		return true
	}
	if err := r.terrain.Regenerate(params); err != nil {
		return true
	}
	r.track(path, params.HeightmapPath)
	return true
}

// run feeds watcher events to handle until ctx is done.
func (r *rebuilder) run(ctx context.Context, watcher *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if r.handle(event) {
				for _, d := range r.dirs() {
					if err := watcher.Add(d); err != nil {
						r.log.Warn("watching directory", zap.String("dir", d), zap.Error(err))
					}
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			r.log.Warn("watcher error", zap.Error(err))
		}
	}
}

func cmdWatch(args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	cfg, path, flags, log := setup(fs, args)
	defer logger.Sync(log)

	t := build(cfg, log)
	r := newRebuilder(t, flags, path, log)
	if len(r.files) == 0 {
		fail(log, "Nothing to watch: use -config or -heightmap")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fatal(log, "creating watcher", err)
	}
	defer watcher.Close()

	for _, d := range r.dirs() {
		if err := watcher.Add(d); err != nil {
			fatal(log, "watching directory", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Info("watching for changes, press Ctrl+C to stop", zap.Strings("dirs", r.dirs()))
	r.run(ctx, watcher)
}
