// Package session composes one login's window manager, virtual filesystem
// and file browser, and serializes every operation on them.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/justyntemme/deskshell/internal/browser"
	"github.com/justyntemme/deskshell/internal/debug"
	"github.com/justyntemme/deskshell/internal/metrics"
	"github.com/justyntemme/deskshell/internal/registry"
	"github.com/justyntemme/deskshell/internal/vfs"
	"github.com/justyntemme/deskshell/internal/wm"
)

var (
	ErrUnknownSession = errors.New("unknown session")
	ErrUnknownApp     = errors.New("unknown app")
	ErrNotOpen        = errors.New("app is not open")
	ErrClosed         = errors.New("session closed")
)

// maxNotifications bounds the toast backlog.
const maxNotifications = 20

// Prefs stores per-user dock pins and settings.
type Prefs interface {
	Pins(ctx context.Context, user string) ([]string, error)
	Pin(ctx context.Context, user, app string) ([]string, error)
	Unpin(ctx context.Context, user, app string) ([]string, error)
	Settings(ctx context.Context, user string) (map[string]string, error)
	SaveSetting(ctx context.Context, user, key, value string) (map[string]string, error)
}

// Options configures every session a Registry creates.
type Options struct {
	BaseZ        int
	HistoryLimit int
	NamePolicy   vfs.NamePolicy
	Seed         func() vfs.Tree
	DockPins     []registry.AppID // Used when the user has no stored pins
	Prefs        Prefs
	Now          func() time.Time
}

// Notification is a toast raised by an app.
type Notification struct {
	ID      string         `json:"id"`
	AppID   registry.AppID `json:"appId"`
	Message string         `json:"message"`
	At      time.Time      `json:"at"`
}

// Session is one simulated login. All methods are safe for concurrent use;
// they run one at a time under the session lock.
type Session struct {
	mu      sync.Mutex
	id      string
	user    string
	opts    Options
	wm      *wm.Manager
	store   *vfs.Store
	browser *browser.Browser

	createdAt time.Time
	lastSeen  time.Time
	closed    bool

	timers    map[uint64]*time.Timer
	nextTimer uint64
	notes     []Notification
	settings  map[string]string // Used when no Prefs store is configured

	// Last values reported to the gauges
	lastWindows int
	lastTrash   int
}

func newSession(user string, opts Options) *Session {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	now := opts.Now()
	s := &Session{
		id:        uuid.NewString(),
		user:      user,
		opts:      opts,
		wm:        wm.NewManager(wm.Config{BaseZ: opts.BaseZ, Now: opts.Now}),
		store:     vfs.NewStore(vfs.Options{Policy: opts.NamePolicy, Seed: opts.Seed}),
		createdAt: now,
		lastSeen:  now,
		timers:    make(map[uint64]*time.Timer),
		settings:  make(map[string]string),
	}
	s.browser = browser.New(s.store, opener{s}, browser.Config{HistoryLimit: opts.HistoryLimit})
	return s
}

// opener routes viewer requests from the browser back into the window
// manager. It runs with the session lock already held.
type opener struct {
	s *Session
}

func (o opener) OpenApp(id registry.AppID, p *wm.Params) {
	o.s.openLocked(id, p)
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) User() string {
	return s.user
}

func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// LastSeen returns when the session last ran an operation.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// do runs fn under the lock and updates metrics afterwards.
func (s *Session) do(op string, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.lastSeen = s.opts.Now()
	err := fn()
	s.observeLocked()
	metrics.RecordOp(op, err)
	if err != nil {
		debug.Log(debug.SESSION, "%s: %s failed: %v", s.id, op, err)
	}
	return err
}

func (s *Session) observeLocked() {
	windows, trashed := s.wm.Len(), s.store.TrashLen()
	metrics.AddWindows(windows - s.lastWindows)
	metrics.AddTrashItems(trashed - s.lastTrash)
	s.lastWindows, s.lastTrash = windows, trashed
}

// --- windows ---

// Open opens an app or updates its params. Opening the file browser with a
// category also navigates it there; opening the trash opens the file
// browser at the trash.
func (s *Session) Open(id registry.AppID, p *wm.Params) error {
	if !id.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownApp, id)
	}
	return s.do("open", func() error {
		s.openLocked(id, p)
		return nil
	})
}

func (s *Session) openLocked(id registry.AppID, p *wm.Params) {
	if id == registry.AppTrash {
		id = registry.AppFiles
		p = &wm.Params{Category: registry.Trash}
	}
	s.wm.Open(id, p)
	if id == registry.AppFiles && p != nil && p.Category != "" {
		if err := s.browser.SwitchCategory(p.Category); err != nil {
			debug.Log(debug.SESSION, "open files: %v", err)
		}
	}
}

// Close closes an app. Closing the file browser forgets its history.
func (s *Session) Close(id registry.AppID) error {
	if !id.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownApp, id)
	}
	return s.do("close", func() error {
		s.closeLocked(id)
		return nil
	})
}

func (s *Session) closeLocked(id registry.AppID) {
	s.wm.Close(id)
	if id == registry.AppFiles || id == registry.AppTrash {
		s.wm.Close(registry.AppFiles)
		s.browser.Reset()
	}
}

func (s *Session) ToggleMaximize(id registry.AppID) error {
	if !id.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownApp, id)
	}
	return s.do("maximize", func() error {
		if !s.wm.IsOpen(id) {
			return fmt.Errorf("%w: %s", ErrNotOpen, id)
		}
		s.wm.ToggleMaximize(id)
		return nil
	})
}

func (s *Session) Focus(id registry.AppID) error {
	if !id.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownApp, id)
	}
	return s.do("focus", func() error {
		if !s.wm.IsOpen(id) {
			return fmt.Errorf("%w: %s", ErrNotOpen, id)
		}
		s.wm.Focus(id)
		return nil
	})
}

// SetLauncher shows or hides the launcher overlay.
func (s *Session) SetLauncher(visible bool) error {
	return s.do("launcher", func() error {
		if visible {
			s.wm.ShowLauncher()
		} else {
			s.wm.HideLauncher()
		}
		return nil
	})
}

func (s *Session) ToggleLauncher() error {
	return s.do("launcher", func() error {
		s.wm.ToggleLauncher()
		return nil
	})
}

// Desktop returns a snapshot of the window state.
func (s *Session) Desktop() wm.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wm.Snapshot()
}

// StackOrder returns the open windows bottom to top.
func (s *Session) StackOrder() []wm.StackEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wm.StackOrder()
}

// --- files ---

// Files runs fn against the file browser under the session lock. Viewer
// requests raised by fn open windows before Files returns.
func (s *Session) Files(op string, fn func(b *browser.Browser) error) error {
	return s.do(op, func() error {
		return fn(s.browser)
	})
}

// FilesView returns what the file browser currently shows.
func (s *Session) FilesView() browser.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.browser.View()
}

// TrashEntries lists the trash with each item's origin.
func (s *Session) TrashEntries() []vfs.TrashedEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.TrashEntries()
}

// Mount replaces a category with an imported tree.
func (s *Session) Mount(c registry.Category, t vfs.Tree) error {
	return s.do("mount", func() error {
		if err := s.store.Mount(c, t); err != nil {
			return err
		}
		s.browser.Refresh()
		return nil
	})
}

// --- lifecycle ---

// Logout resets windows, filesystem, history, selection and trash to their
// seeded state and cancels pending timers.
func (s *Session) Logout() error {
	return s.do("logout", func() error {
		s.stopTimersLocked()
		s.wm.Reset()
		s.store.Reset()
		s.browser.Reset()
		s.notes = nil
		debug.Log(debug.SESSION, "%s: logged out", s.id)
		return nil
	})
}

// close tears the session down for good.
func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.stopTimersLocked()
	s.closed = true
	metrics.AddWindows(-s.lastWindows)
	metrics.AddTrashItems(-s.lastTrash)
	s.lastWindows, s.lastTrash = 0, 0
}
