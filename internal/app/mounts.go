package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/justyntemme/deskshell/internal/config"
	"github.com/justyntemme/deskshell/internal/debug"
	"github.com/justyntemme/deskshell/internal/metrics"
	"github.com/justyntemme/deskshell/internal/registry"
	"github.com/justyntemme/deskshell/internal/vfs"
	"github.com/justyntemme/deskshell/internal/watch"
)

// applyMounts imports every configured host directory and starts watching
// the ones that ask for it.
func (o *Orchestrator) applyMounts(mounts []config.MountConfig) error {
	for _, m := range mounts {
		c, ok := registry.ParseCategory(m.Category)
		if !ok || c == registry.Trash {
			return fmt.Errorf("mount %q: %w", m.Category, vfs.ErrUnknownCategory)
		}
		dir, err := filepath.Abs(m.Dir)
		if err != nil {
			return fmt.Errorf("mount %s: %w", c, err)
		}
		if err := o.refreshMount(c, dir); err != nil {
			return fmt.Errorf("mount %s: %w", c, err)
		}

		o.mu.Lock()
		o.mounts[c] = dir
		o.mu.Unlock()

		if !m.Watch {
			continue
		}
		if o.watcher == nil {
			w, err := watch.New(0)
			if err != nil {
				return fmt.Errorf("start watcher: %w", err)
			}
			o.watcher = w
		}
		if err := o.watcher.Watch(string(c), dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	return nil
}

// refreshMount re-imports dir and replaces category c in every session.
func (o *Orchestrator) refreshMount(c registry.Category, dir string) error {
	start := time.Now()
	tree, err := vfs.ImportDir(c, dir)
	if err != nil {
		return err
	}
	if err := o.sessions.Mount(c, tree); err != nil {
		return err
	}
	metrics.RecordMountRefresh(time.Since(start))
	debug.Log(debug.WATCH, "mounted %s from %s (%d folders)", c, dir, len(tree))
	return nil
}

// processChanges re-imports a mount whenever the watcher reports it changed.
func (o *Orchestrator) processChanges(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ch, ok := <-o.watcher.Changes():
			if !ok {
				return
			}
			c := registry.Category(ch.Key)
			if err := o.refreshMount(c, ch.Root); err != nil {
				debug.Error(debug.WATCH, "refresh mount failed", "category", c, "dir", ch.Root, "err", err)
			}
		}
	}
}

// Mounts returns the mounted host directory of each category.
func (o *Orchestrator) Mounts() map[registry.Category]string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make(map[registry.Category]string, len(o.mounts))
	for c, dir := range o.mounts {
		out[c] = dir
	}
	return out
}
