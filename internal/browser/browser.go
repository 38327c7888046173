// Package browser is the file browser app's model. It composes the virtual
// filesystem, the navigation history and the selection controller, and turns
// file activations into open requests.
package browser

import (
	"errors"
	"fmt"

	"github.com/justyntemme/deskshell/internal/debug"
	"github.com/justyntemme/deskshell/internal/nav"
	"github.com/justyntemme/deskshell/internal/registry"
	"github.com/justyntemme/deskshell/internal/selection"
	"github.com/justyntemme/deskshell/internal/vfs"
	"github.com/justyntemme/deskshell/internal/viewer"
	"github.com/justyntemme/deskshell/internal/wm"
)

// ErrNoViewer is returned when activating an entry no app can open.
var ErrNoViewer = errors.New("no viewer for entry")

// Opener receives open requests for viewer apps.
type Opener interface {
	OpenApp(id registry.AppID, p *wm.Params)
}

// Crumb is one breadcrumb segment.
type Crumb struct {
	Label    string       `json:"label"`
	Location vfs.Location `json:"location"`
}

// View is everything the browser window renders.
type View struct {
	Location      vfs.Location    `json:"location"`
	Title         string          `json:"title"`
	Crumbs        []Crumb         `json:"crumbs"`
	Filter        string          `json:"filter,omitempty"`
	Entries       []vfs.FileEntry `json:"entries"`
	Selected      []string        `json:"selected"`
	AllSelected   bool            `json:"allSelected"`
	Renaming      string          `json:"renaming,omitempty"`
	ContextTarget string          `json:"contextTarget,omitempty"`
	CanGoBack     bool            `json:"canGoBack"`
	CanGoForward  bool            `json:"canGoForward"`
	InTrash       bool            `json:"inTrash"`
	TrashCount    int             `json:"trashCount"`
}

// Config configures a Browser.
type Config struct {
	Start        vfs.Location
	HistoryLimit int
}

// Browser is not safe for concurrent use.
type Browser struct {
	store   *vfs.Store
	history *nav.History
	sel     *selection.Controller
	opener  Opener
	start   vfs.Location
	filter  string
}

// New creates a browser positioned at cfg.Start, or Home if unset.
func New(store *vfs.Store, opener Opener, cfg Config) *Browser {
	if cfg.Start.Category == "" {
		cfg.Start = vfs.Root(registry.Home)
	}
	return &Browser{
		store:   store,
		history: nav.New(cfg.Start, cfg.HistoryLimit),
		sel:     selection.New(),
		opener:  opener,
		start:   cfg.Start,
	}
}

// Location returns the displayed location.
func (b *Browser) Location() vfs.Location {
	return b.history.Current()
}

// Reset returns to the start location with empty history and selection.
func (b *Browser) Reset() {
	b.history.Reset(b.start)
	b.sel.Reset()
	b.filter = ""
}

// --- navigation ---

// Navigate shows loc, recording it in history.
func (b *Browser) Navigate(loc vfs.Location) {
	if loc.Equal(b.Location()) {
		return
	}
	b.history.Visit(loc)
	b.locationChanged()
}

// SwitchCategory shows the root of c.
func (b *Browser) SwitchCategory(c registry.Category) error {
	if !c.Valid() {
		return fmt.Errorf("%w: %q", vfs.ErrUnknownCategory, c)
	}
	b.Navigate(vfs.Root(c))
	return nil
}

// Enter opens the folder called name in the current location.
func (b *Browser) Enter(name string) error {
	cur := b.Location()
	e, ok := b.store.Entry(cur, name)
	if !ok {
		return fmt.Errorf("enter %q: %w", name, vfs.ErrNotFound)
	}
	loc, ok := b.store.ResolveChildLocation(cur, e)
	if !ok {
		return fmt.Errorf("enter %q: not a folder", name)
	}
	b.Navigate(loc)
	return nil
}

// Back moves back in history.
func (b *Browser) Back() bool {
	if _, ok := b.history.Back(); !ok {
		return false
	}
	b.locationChanged()
	return true
}

// Forward moves forward in history.
func (b *Browser) Forward() bool {
	if _, ok := b.history.Forward(); !ok {
		return false
	}
	b.locationChanged()
	return true
}

// Up shows the parent folder.
func (b *Browser) Up() bool {
	parent, ok := b.Location().Parent()
	if !ok {
		return false
	}
	b.Navigate(parent)
	return true
}

func (b *Browser) locationChanged() {
	b.sel.Reset()
	b.filter = ""
	debug.Log(debug.NAV, "browser at %s", b.Location())
}

// Activate enters folders and opens files in their viewer.
func (b *Browser) Activate(name string) (viewer.Request, error) {
	cur := b.Location()
	e, ok := b.store.Entry(cur, name)
	if !ok {
		return viewer.Request{}, fmt.Errorf("activate %q: %w", name, vfs.ErrNotFound)
	}
	if e.IsFolder() {
		if cur.Category == registry.Trash {
			return viewer.Request{}, vfs.ErrInTrash
		}
		return viewer.Request{}, b.Enter(name)
	}
	req, ok := viewer.For(cur, e)
	if !ok {
		return viewer.Request{}, fmt.Errorf("activate %q (%s): %w", name, e.Kind, ErrNoViewer)
	}
	if b.opener != nil {
		p := req.Params
		b.opener.OpenApp(req.App, &p)
	}
	return req, nil
}

// --- view ---

// SetFilter sets the name filter of the current location.
func (b *Browser) SetFilter(filter string) {
	b.filter = filter
	b.sel.Prune(names(b.store.List(b.Location(), filter)))
}

// View renders the current location.
func (b *Browser) View() View {
	loc := b.Location()
	entries := b.store.List(loc, b.filter)
	shown := names(entries)
	renaming, _ := b.sel.Renaming()
	target, _ := b.sel.ContextTarget()
	return View{
		Location:      loc,
		Title:         loc.Name(),
		Crumbs:        crumbs(loc),
		Filter:        b.filter,
		Entries:       entries,
		Selected:      b.sel.Selected(),
		AllSelected:   b.sel.AllSelected(shown),
		Renaming:      renaming,
		ContextTarget: target,
		CanGoBack:     b.history.CanGoBack(),
		CanGoForward:  b.history.CanGoForward(),
		InTrash:       loc.Category == registry.Trash,
		TrashCount:    b.store.TrashLen(),
	}
}

// Search runs a directive query against the current location.
func (b *Browser) Search(query string) []vfs.FileEntry {
	return b.store.Search(b.Location(), query)
}

func crumbs(loc vfs.Location) []Crumb {
	out := []Crumb{{Label: loc.Category.Title(), Location: vfs.Root(loc.Category)}}
	for i := range loc.Path {
		at := vfs.At(loc.Category, loc.Path[:i+1]...)
		out = append(out, Crumb{Label: loc.Path[i], Location: at})
	}
	return out
}

func names(entries []vfs.FileEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}
