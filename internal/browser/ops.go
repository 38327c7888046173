package browser

import (
	"errors"
	"fmt"
	"slices"

	"github.com/justyntemme/deskshell/internal/registry"
	"github.com/justyntemme/deskshell/internal/vfs"
)

// ErrNotTrashView is returned by selection-based restore and purge when the
// browser is not showing the trash.
var ErrNotTrashView = errors.New("not viewing the trash")

// --- selection ---

// Toggle flips name in or out of the selection. Only entries in view can be
// selected.
func (b *Browser) Toggle(name string) error {
	if err := b.inView(name); err != nil {
		return err
	}
	b.sel.Toggle(name)
	return nil
}

// ToggleAll selects everything in view, or clears when all are selected.
func (b *Browser) ToggleAll() {
	b.sel.ToggleAll(b.visible())
}

func (b *Browser) ClearSelection() {
	b.sel.Clear()
}

func (b *Browser) Selected() []string {
	return b.sel.Selected()
}

func (b *Browser) SetContextTarget(name string) error {
	if err := b.inView(name); err != nil {
		return err
	}
	b.sel.SetContextTarget(name)
	return nil
}

func (b *Browser) ClearContextTarget() {
	b.sel.ClearContextTarget()
}

// BeginRename starts renaming name. Entries in the trash cannot be renamed.
func (b *Browser) BeginRename(name string) error {
	if b.Location().Category == registry.Trash {
		return vfs.ErrInTrash
	}
	if _, ok := b.store.Entry(b.Location(), name); !ok {
		return vfs.ErrNotFound
	}
	b.sel.BeginRename(name)
	return nil
}

// CommitRename applies the pending rename. Empty or unchanged values cancel.
func (b *Browser) CommitRename(value string) error {
	oldName, newName, ok := b.sel.CommitRename(value)
	if !ok {
		return nil
	}
	err := b.store.Rename(b.Location(), oldName, newName)
	if err == nil {
		b.sel.Rekey(oldName, newName)
	}
	b.sel.Prune(b.visible())
	return err
}

func (b *Browser) CancelRename() {
	b.sel.CancelRename()
}

// --- mutations ---

// CreateFolder adds a folder and starts renaming it.
func (b *Browser) CreateFolder() (vfs.FileEntry, error) {
	e, err := b.store.CreateFolder(b.Location())
	if err != nil {
		return e, err
	}
	b.sel.BeginRename(e.Name)
	return e, nil
}

// CreateFile adds an empty text file and starts renaming it.
func (b *Browser) CreateFile() (vfs.FileEntry, error) {
	e, err := b.store.CreateFile(b.Location())
	if err != nil {
		return e, err
	}
	b.sel.BeginRename(e.Name)
	return e, nil
}

// Trash moves names to the trash. With no names it trashes the selection,
// falling back to the context target.
func (b *Browser) Trash(names ...string) (int, error) {
	if len(names) == 0 {
		names = b.targets()
	}
	n, err := b.store.MoveManyToTrash(b.Location(), names)
	b.sel.Prune(b.visible())
	return n, err
}

// Move relocates an entry of the current location into dst.
func (b *Browser) Move(name string, dst vfs.Location) error {
	err := b.store.Move(b.Location(), name, dst)
	b.sel.Prune(b.visible())
	return err
}

// Restore restores names from the trash. With no names it restores the
// selection, which requires the trash to be in view.
func (b *Browser) Restore(names ...string) (int, error) {
	names, err := b.trashTargets(names)
	if err != nil {
		return 0, err
	}
	n := b.store.RestoreMany(names)
	b.sel.Prune(b.visible())
	return n, nil
}

// RestoreAll restores everything in the trash.
func (b *Browser) RestoreAll() int {
	n := b.store.RestoreAll()
	b.sel.Prune(b.visible())
	return n
}

// Purge permanently deletes names from the trash. With no names it purges
// the selection, which requires the trash to be in view.
func (b *Browser) Purge(names ...string) (int, error) {
	names, err := b.trashTargets(names)
	if err != nil {
		return 0, err
	}
	n := b.store.PurgeMany(names)
	b.sel.Prune(b.visible())
	return n, nil
}

// EmptyTrash purges everything in the trash.
func (b *Browser) EmptyTrash() int {
	n := b.store.PurgeAll()
	b.sel.Prune(b.visible())
	return n
}

// Refresh drops selection state for entries that disappeared, e.g. after a
// mounted directory was re-imported.
func (b *Browser) Refresh() {
	b.sel.Prune(b.visible())
}

func (b *Browser) targets() []string {
	if sel := b.sel.Selected(); len(sel) > 0 {
		return sel
	}
	if t, ok := b.sel.ContextTarget(); ok {
		return []string{t}
	}
	return nil
}

// trashTargets returns names, or the selection when names is empty. The
// selection names live entries anywhere but in the trash.
func (b *Browser) trashTargets(names []string) ([]string, error) {
	if len(names) > 0 {
		return names, nil
	}
	if b.Location().Category != registry.Trash {
		return nil, ErrNotTrashView
	}
	return b.targets(), nil
}

func (b *Browser) inView(name string) error {
	if !slices.Contains(b.visible(), name) {
		return fmt.Errorf("%q in %s: %w", name, b.Location().Key(), vfs.ErrNotFound)
	}
	return nil
}

func (b *Browser) visible() []string {
	return names(b.store.List(b.Location(), b.filter))
}
