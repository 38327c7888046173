package wm

import (
	"time"

	"github.com/google/uuid"

	"github.com/justyntemme/deskshell/internal/debug"
	"github.com/justyntemme/deskshell/internal/registry"
)

// DefaultBaseZ is the z-index of the bottom window.
const DefaultBaseZ = 10

// Config holds configuration for the window manager.
type Config struct {
	BaseZ int
	Now   func() time.Time
}

// Manager owns the open sequence. It is not safe for concurrent use.
//
// Invariants: no AppID appears twice in the sequence, and the maximized app,
// when set, is a member of it.
type Manager struct {
	open      []Instance
	maximized registry.AppID
	launcher  bool
	baseZ     int
	now       func() time.Time
}

// NewManager creates an empty window manager.
func NewManager(cfg Config) *Manager {
	if cfg.BaseZ == 0 {
		cfg.BaseZ = DefaultBaseZ
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Manager{baseZ: cfg.BaseZ, now: cfg.Now}
}

// Open opens id, or updates its params if it is already open and p is
// non-nil. Launcher pseudo apps show the launcher instead of opening a
// window. Unknown ids are ignored. The bool reports whether id has a window
// afterwards.
func (m *Manager) Open(id registry.AppID, p *Params) (Instance, bool) {
	if !id.Valid() {
		debug.Log(debug.WM, "open: ignoring unknown app %q", id)
		return Instance{}, false
	}
	if id.IsLauncher() {
		m.launcher = true
		debug.Log(debug.WM, "open %s: launcher shown", id)
		return Instance{}, false
	}

	if i := m.index(id); i >= 0 {
		if p != nil {
			m.open[i].Params = p.clone()
			debug.Log(debug.WM, "open %s: already open, params updated", id)
		}
		inst := m.open[i]
		inst.Params = inst.Params.clone()
		return inst, true
	}

	inst := Instance{
		AppID:      id,
		Params:     p.clone(),
		InstanceID: uuid.NewString(),
		OpenedAt:   m.now(),
	}
	m.open = append(m.open, inst)
	debug.Log(debug.WM, "open %s: instance %s at position %d", id, inst.InstanceID, len(m.open)-1)
	inst.Params = inst.Params.clone()
	return inst, true
}

// Close removes id from the open sequence and clears maximize if it was the
// maximized app. Closing an app that is not open does nothing.
func (m *Manager) Close(id registry.AppID) {
	if id.IsLauncher() {
		m.launcher = false
		return
	}
	i := m.index(id)
	if i < 0 {
		return
	}
	m.open = append(m.open[:i:i], m.open[i+1:]...)
	if m.maximized == id {
		m.maximized = ""
	}
	debug.Log(debug.WM, "close %s: %d open", id, len(m.open))
}

// ToggleMaximize clears maximize if id is the maximized app and makes it the
// single maximized app otherwise. Apps that are not open are ignored.
func (m *Manager) ToggleMaximize(id registry.AppID) {
	if m.index(id) < 0 {
		debug.Log(debug.WM, "maximize: %s is not open", id)
		return
	}
	if m.maximized == id {
		m.maximized = ""
	} else {
		m.maximized = id
	}
	debug.Log(debug.WM, "maximize toggled: %q", m.maximized)
}

// Focus moves an open app to the top of the stack.
func (m *Manager) Focus(id registry.AppID) {
	i := m.index(id)
	if i < 0 || i == len(m.open)-1 {
		return
	}
	inst := m.open[i]
	m.open = append(m.open[:i], m.open[i+1:]...)
	m.open = append(m.open, inst)
	debug.Log(debug.WM, "focus %s", id)
}

// StackOrder returns the open apps bottom to top with z = BaseZ + position.
func (m *Manager) StackOrder() []StackEntry {
	out := make([]StackEntry, len(m.open))
	for i, inst := range m.open {
		out[i] = StackEntry{AppID: inst.AppID, Z: m.baseZ + i}
	}
	return out
}

// IsOpen reports whether id has a window.
func (m *Manager) IsOpen(id registry.AppID) bool {
	return m.index(id) >= 0
}

// Instance returns the open instance of id.
func (m *Manager) Instance(id registry.AppID) (Instance, bool) {
	if i := m.index(id); i >= 0 {
		inst := m.open[i]
		inst.Params = inst.Params.clone()
		return inst, true
	}
	return Instance{}, false
}

// Params returns a copy of the params id was last opened with.
func (m *Manager) Params(id registry.AppID) *Params {
	if i := m.index(id); i >= 0 {
		return m.open[i].Params.clone()
	}
	return nil
}

// OpenApps returns the open sequence as app ids.
func (m *Manager) OpenApps() []registry.AppID {
	out := make([]registry.AppID, len(m.open))
	for i, inst := range m.open {
		out[i] = inst.AppID
	}
	return out
}

// Len returns the number of open windows.
func (m *Manager) Len() int {
	return len(m.open)
}

// Maximized returns the maximized app, if any.
func (m *Manager) Maximized() (registry.AppID, bool) {
	return m.maximized, m.maximized != ""
}

func (m *Manager) LauncherVisible() bool {
	return m.launcher
}

func (m *Manager) ShowLauncher() {
	m.launcher = true
}

func (m *Manager) HideLauncher() {
	m.launcher = false
}

func (m *Manager) ToggleLauncher() {
	m.launcher = !m.launcher
}

// Snapshot returns a copy of the whole window state.
func (m *Manager) Snapshot() Snapshot {
	open := make([]Instance, len(m.open))
	for i, inst := range m.open {
		inst.Params = inst.Params.clone()
		open[i] = inst
	}
	return Snapshot{
		Open:            open,
		Maximized:       m.maximized,
		LauncherVisible: m.launcher,
		Stack:           m.StackOrder(),
	}
}

// Reset closes everything and hides the launcher.
func (m *Manager) Reset() {
	m.open = nil
	m.maximized = ""
	m.launcher = false
}

func (m *Manager) index(id registry.AppID) int {
	for i, inst := range m.open {
		if inst.AppID == id {
			return i
		}
	}
	return -1
}
