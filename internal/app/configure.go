package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/justyntemme/deskshell/internal/config"
	"github.com/justyntemme/deskshell/internal/registry"
	"github.com/justyntemme/deskshell/internal/vfs"
)

// AddMount persists a mount given as "category=dir". The directory must
// exist; it is stored as an absolute path.
func AddMount(cfg *config.Manager, arg string, watchDir bool) error {
	cat, dir, ok := strings.Cut(arg, "=")
	if !ok || dir == "" {
		return fmt.Errorf("mount %q: expected category=dir", arg)
	}
	c, ok := registry.ParseCategory(cat)
	if !ok || c == registry.Trash {
		return fmt.Errorf("mount %q: %w", cat, vfs.ErrUnknownCategory)
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("mount %s: not a directory", dir)
	}

	if err := cfg.Load(); err != nil {
		return err
	}
	return cfg.AddMount(config.MountConfig{Category: string(c), Dir: dir, Watch: watchDir})
}

// RemoveMount drops the mount of a category from the config file.
func RemoveMount(cfg *config.Manager, category string) error {
	c, ok := registry.ParseCategory(category)
	if !ok {
		return fmt.Errorf("mount %q: %w", category, vfs.ErrUnknownCategory)
	}
	if err := cfg.Load(); err != nil {
		return err
	}
	return cfg.RemoveMount(string(c))
}

// SetNamePolicy persists the default name policy for new sessions.
func SetNamePolicy(cfg *config.Manager, policy string) error {
	p, err := vfs.ParseNamePolicy(policy)
	if err != nil {
		return err
	}
	if err := cfg.Load(); err != nil {
		return err
	}
	return cfg.SetNamePolicy(p.String())
}
