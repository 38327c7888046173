// Package selection tracks which entries of the displayed location are
// selected, which one is being renamed and which one a context menu targets.
package selection

import (
	"sort"
	"strings"
)

// Controller holds selection state for one displayed location. Call Reset
// whenever the location changes.
type Controller struct {
	selected map[string]bool
	renaming string
	context  string
}

// New returns an empty controller.
func New() *Controller {
	return &Controller{selected: make(map[string]bool)}
}

// Reset clears the selection, the rename target and the context target.
func (c *Controller) Reset() {
	clear(c.selected)
	c.renaming = ""
	c.context = ""
}

// Toggle flips name in or out of the selection.
func (c *Controller) Toggle(name string) {
	if c.selected[name] {
		delete(c.selected, name)
		return
	}
	c.selected[name] = true
}

// IsSelected reports whether name is selected.
func (c *Controller) IsSelected(name string) bool {
	return c.selected[name]
}

// SelectAll replaces the selection with names.
func (c *Controller) SelectAll(names []string) {
	clear(c.selected)
	for _, n := range names {
		c.selected[n] = true
	}
}

// Clear empties the selection.
func (c *Controller) Clear() {
	clear(c.selected)
}

// AllSelected reports whether every name in view is selected. An empty view
// is never all-selected.
func (c *Controller) AllSelected(names []string) bool {
	if len(names) == 0 {
		return false
	}
	for _, n := range names {
		if !c.selected[n] {
			return false
		}
	}
	return true
}

// ToggleAll clears when everything in view is selected and selects all
// otherwise.
func (c *Controller) ToggleAll(names []string) {
	if c.AllSelected(names) {
		c.Clear()
		return
	}
	c.SelectAll(names)
}

// Selected returns the selected names, sorted.
func (c *Controller) Selected() []string {
	out := make([]string, 0, len(c.selected))
	for n := range c.selected {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of selected names.
func (c *Controller) Len() int {
	return len(c.selected)
}

// Prune drops selected names and targets that are no longer in view.
func (c *Controller) Prune(names []string) {
	live := make(map[string]bool, len(names))
	for _, n := range names {
		live[n] = true
	}
	for n := range c.selected {
		if !live[n] {
			delete(c.selected, n)
		}
	}
	if !live[c.renaming] {
		c.renaming = ""
	}
	if !live[c.context] {
		c.context = ""
	}
}

// BeginRename makes name the single rename target.
func (c *Controller) BeginRename(name string) {
	c.renaming = name
}

// Renaming returns the rename target, if any.
func (c *Controller) Renaming() (string, bool) {
	return c.renaming, c.renaming != ""
}

// CommitRename ends the rename and returns the trimmed new name. It reports
// ok only when that name is non-empty and differs from the target; otherwise
// it behaves as CancelRename. The selection is left alone until Rekey.
func (c *Controller) CommitRename(value string) (oldName, newName string, ok bool) {
	oldName = c.renaming
	c.renaming = ""
	value = strings.TrimSpace(value)
	if oldName == "" || value == "" || value == oldName {
		return oldName, oldName, false
	}
	return oldName, value, true
}

// Rekey makes selection and context state follow an entry renamed from
// oldName to newName.
func (c *Controller) Rekey(oldName, newName string) {
	if c.selected[oldName] {
		delete(c.selected, oldName)
		c.selected[newName] = true
	}
	if c.context == oldName {
		c.context = newName
	}
}

// CancelRename drops the rename target.
func (c *Controller) CancelRename() {
	c.renaming = ""
}

// SetContextTarget records the entry a context menu was opened on.
func (c *Controller) SetContextTarget(name string) {
	c.context = name
}

// ContextTarget returns the context menu target, if any.
func (c *Controller) ContextTarget() (string, bool) {
	return c.context, c.context != ""
}

func (c *Controller) ClearContextTarget() {
	c.context = ""
}
