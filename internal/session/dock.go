package session

import (
	"context"
	"fmt"

	"github.com/justyntemme/deskshell/internal/metrics"
	"github.com/justyntemme/deskshell/internal/registry"
)

// DockItem is one dock icon.
type DockItem struct {
	AppID     registry.AppID `json:"appId"`
	Title     string         `json:"title"`
	Pinned    bool           `json:"pinned"`
	Open      bool           `json:"open"`
	Maximized bool           `json:"maximized"`
}

// Dock merges the user's pinned apps with the open windows: pinned apps in
// pin order, then open apps that are not pinned in stacking order.
func (s *Session) Dock(ctx context.Context) ([]DockItem, error) {
	pins, err := s.pins(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	maximized, _ := s.wm.Maximized()

	items := make([]DockItem, 0, len(pins)+s.wm.Len())
	seen := make(map[registry.AppID]bool)
	add := func(id registry.AppID, pinned bool) {
		if seen[id] {
			return
		}
		seen[id] = true
		items = append(items, DockItem{
			AppID:     id,
			Title:     id.Title(),
			Pinned:    pinned,
			Open:      s.wm.IsOpen(id),
			Maximized: id == maximized,
		})
	}
	for _, id := range pins {
		add(id, true)
	}
	for _, id := range s.wm.OpenApps() {
		add(id, false)
	}
	return items, nil
}

// Pin adds app to the user's dock.
func (s *Session) Pin(ctx context.Context, app registry.AppID) error {
	if !app.Valid() || app.IsLauncher() {
		return fmt.Errorf("%w: %q", ErrUnknownApp, app)
	}
	if s.opts.Prefs == nil {
		return nil
	}
	current, err := s.pins(ctx)
	if err != nil {
		return err
	}
	stored, err := s.opts.Prefs.Pins(ctx, s.user)
	if err != nil {
		return err
	}
	// First customization copies the defaults so they are not lost
	if len(stored) == 0 {
		for _, id := range current {
			if _, err := s.opts.Prefs.Pin(ctx, s.user, string(id)); err != nil {
				return err
			}
		}
	}
	_, err = s.opts.Prefs.Pin(ctx, s.user, string(app))
	metrics.RecordOp("pin", err)
	return err
}

// Unpin removes app from the user's dock.
func (s *Session) Unpin(ctx context.Context, app registry.AppID) error {
	if !app.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownApp, app)
	}
	if s.opts.Prefs == nil {
		return nil
	}
	stored, err := s.opts.Prefs.Pins(ctx, s.user)
	if err != nil {
		return err
	}
	if len(stored) == 0 {
		for _, id := range s.opts.DockPins {
			if id == app {
				continue
			}
			if _, err := s.opts.Prefs.Pin(ctx, s.user, string(id)); err != nil {
				return err
			}
		}
		return nil
	}
	_, err = s.opts.Prefs.Unpin(ctx, s.user, string(app))
	metrics.RecordOp("unpin", err)
	return err
}

// pins returns the stored pins, or the defaults when none are stored.
func (s *Session) pins(ctx context.Context) ([]registry.AppID, error) {
	if s.opts.Prefs == nil {
		return s.opts.DockPins, nil
	}
	stored, err := s.opts.Prefs.Pins(ctx, s.user)
	if err != nil {
		return nil, fmt.Errorf("load dock pins: %w", err)
	}
	if len(stored) == 0 {
		return s.opts.DockPins, nil
	}
	out := make([]registry.AppID, 0, len(stored))
	for _, p := range stored {
		if id := registry.AppID(p); id.Valid() {
			out = append(out, id)
		}
	}
	return out, nil
}
