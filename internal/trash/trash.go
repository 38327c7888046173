// Package trash provides the soft-delete ledger used by the virtual
// filesystem. Entries are either live somewhere else or held here; restore
// and purge take them back out. The ledger never inspects what it holds.
package trash

import (
	"errors"
	"time"
)

// ErrNotInTrash is returned when a name has no matching ledger item.
var ErrNotInTrash = errors.New("not in trash")

// Item represents one trashed file or folder
type Item[T any] struct {
	Name         string    // Display name at the time of deletion
	OriginalPath string    // Location the entry was deleted from
	DeletedAt    time.Time // When the entry was deleted
	Value        T         // Everything needed to restore the entry
}

// Ledger holds trashed items in deletion order.
type Ledger[T any] struct {
	items []Item[T]
	now   func() time.Time
}

// NewLedger creates an empty ledger.
func NewLedger[T any]() *Ledger[T] {
	return &Ledger[T]{now: time.Now}
}

// Put appends an item. DeletedAt is stamped if unset.
func (l *Ledger[T]) Put(item Item[T]) {
	if item.DeletedAt.IsZero() {
		item.DeletedAt = l.now()
	}
	l.items = append(l.items, item)
}

// Len returns the number of items currently held.
func (l *Ledger[T]) Len() int {
	return len(l.items)
}

// Items returns a copy of the ledger in deletion order.
func (l *Ledger[T]) Items() []Item[T] {
	out := make([]Item[T], len(l.items))
	copy(out, l.items)
	return out
}

// Names returns the names of all items at call time.
func (l *Ledger[T]) Names() []string {
	names := make([]string, len(l.items))
	for i, it := range l.items {
		names[i] = it.Name
	}
	return names
}

// Take removes and returns the oldest item with the given name.
func (l *Ledger[T]) Take(name string) (Item[T], error) {
	i := l.index(name)
	if i < 0 {
		return Item[T]{}, ErrNotInTrash
	}
	item := l.items[i]
	l.items = append(l.items[:i], l.items[i+1:]...)
	return item, nil
}

// Purge permanently deletes the oldest item with the given name.
func (l *Ledger[T]) Purge(name string) error {
	_, err := l.Take(name)
	return err
}

// PurgeMany purges one item per name and returns how many were removed.
func (l *Ledger[T]) PurgeMany(names []string) int {
	n := 0
	for _, name := range names {
		if l.Purge(name) == nil {
			n++
		}
	}
	return n
}

// PurgeAll purges every item the ledger holds at call time.
func (l *Ledger[T]) PurgeAll() int {
	return l.PurgeMany(l.Names())
}

// Reset discards every item.
func (l *Ledger[T]) Reset() {
	l.items = nil
}

func (l *Ledger[T]) index(name string) int {
	for i, it := range l.items {
		if it.Name == name {
			return i
		}
	}
	return -1
}
