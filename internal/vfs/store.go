// Package vfs implements the virtual filesystem behind the file browser: a
// forest of category roots whose folders are addressed by Location, plus the
// trash ledger that soft-deleted entries move into.
//
// Store is not safe for concurrent use; the session serializes access.
package vfs

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/justyntemme/deskshell/internal/debug"
	"github.com/justyntemme/deskshell/internal/registry"
	"github.com/justyntemme/deskshell/internal/search"
	"github.com/justyntemme/deskshell/internal/trash"
)

var (
	ErrNotFound        = errors.New("entry not found")
	ErrNameInUse       = errors.New("name in use")
	ErrInvalidName     = errors.New("invalid name")
	ErrCycle           = errors.New("cannot move a folder into itself")
	ErrInTrash         = errors.New("not allowed in trash")
	ErrUnknownCategory = errors.New("unknown category")
)

const (
	DefaultFolderName = "New Folder"
	DefaultFileName   = "Untitled.txt"
	JustNow           = "just now"
)

// NamePolicy decides what happens when two siblings would share a name.
type NamePolicy int

const (
	// PermitDuplicates allows siblings with equal names.
	PermitDuplicates NamePolicy = iota
	// UniqueNames suffixes new names and rejects colliding renames.
	UniqueNames
)

func (p NamePolicy) String() string {
	if p == UniqueNames {
		return "unique"
	}
	return "permit"
}

// ParseNamePolicy parses "permit" or "unique". An empty string selects
// PermitDuplicates.
func ParseNamePolicy(s string) (NamePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "permit":
		return PermitDuplicates, nil
	case "unique":
		return UniqueNames, nil
	}
	return PermitDuplicates, fmt.Errorf("unknown name policy %q", s)
}

// trashed is what the ledger keeps for one deleted entry. Subtree holds the
// buckets below a deleted folder keyed relative to the folder ("" for its
// direct children).
type trashed struct {
	Entry   FileEntry
	Origin  Location
	Subtree Tree
}

// TrashedEntry is a ledger item as shown in the trash view.
type TrashedEntry struct {
	FileEntry
	Origin    Location  `json:"origin"`
	DeletedAt time.Time `json:"deletedAt"`
}

// Options configures a Store.
type Options struct {
	Policy NamePolicy
	Seed   func() Tree // defaults to SeedTree
}

// Store owns every live bucket and the trash ledger.
type Store struct {
	buckets Tree
	ledger  *trash.Ledger[trashed]
	policy  NamePolicy
	seed    func() Tree
	mounts  map[registry.Category]Tree
}

// NewStore creates a store populated from the seed.
func NewStore(opts Options) *Store {
	if opts.Seed == nil {
		opts.Seed = SeedTree
	}
	s := &Store{
		ledger: trash.NewLedger[trashed](),
		policy: opts.Policy,
		seed:   opts.Seed,
		mounts: make(map[registry.Category]Tree),
	}
	s.Reset()
	return s
}

// Policy returns the active name policy.
func (s *Store) Policy() NamePolicy {
	return s.policy
}

// Reset discards every mutation and empties the trash. Mounted categories
// are restored from their last imported snapshot.
func (s *Store) Reset() {
	s.buckets = s.seed().Clone()
	for c, t := range s.mounts {
		s.replaceCategory(c, t.Clone())
	}
	s.ledger.Reset()
	debug.Log(debug.VFS, "store reset: %d buckets", len(s.buckets))
}

// List returns the entries at loc whose name contains filter,
// case-insensitively, in insertion order. Unknown locations are empty.
func (s *Store) List(loc Location, filter string) []FileEntry {
	needle := strings.ToLower(filter)
	src := s.entries(loc)
	out := make([]FileEntry, 0, len(src))
	for _, e := range src {
		if needle != "" && !strings.Contains(strings.ToLower(e.Name), needle) {
			continue
		}
		out = append(out, s.decorate(loc, e))
	}
	return out
}

// Search returns the entries at loc matching a directive query.
func (s *Store) Search(loc Location, query string) []FileEntry {
	q := search.Parse(query)
	var out []FileEntry
	for _, e := range s.entries(loc) {
		c := search.Candidate{
			Name:    e.Name,
			Kind:    e.Kind.String(),
			Size:    e.SizeBytes,
			IsDir:   e.IsFolder(),
			Content: e.Content,
		}
		if q.Match(c) {
			out = append(out, s.decorate(loc, e))
		}
	}
	return out
}

// Entry returns the first entry named name at loc.
func (s *Store) Entry(loc Location, name string) (FileEntry, bool) {
	for _, e := range s.entries(loc) {
		if e.Name == name {
			return s.decorate(loc, e), true
		}
	}
	return FileEntry{}, false
}

// Names returns the names at loc in order.
func (s *Store) Names(loc Location) []string {
	src := s.entries(loc)
	names := make([]string, len(src))
	for i, e := range src {
		names[i] = e.Name
	}
	return names
}

// Count returns the number of entries at loc.
func (s *Store) Count(loc Location) int {
	return len(s.entries(loc))
}

// CreateFolder appends a folder with the default name.
func (s *Store) CreateFolder(loc Location) (FileEntry, error) {
	return s.create(loc, DefaultFolderName, KindFolder)
}

// CreateFile appends an empty text file with the default name.
func (s *Store) CreateFile(loc Location) (FileEntry, error) {
	return s.create(loc, DefaultFileName, KindText)
}

func (s *Store) create(loc Location, base string, kind Kind) (FileEntry, error) {
	if loc.Category == registry.Trash {
		return FileEntry{}, ErrInTrash
	}
	e := FileEntry{
		ID:            uuid.NewString(),
		Name:          s.freeName(loc, base, kind == KindFolder),
		Kind:          kind,
		ModifiedLabel: JustNow,
	}
	if kind != KindFolder {
		e.SizeLabel = humanize.Bytes(0)
	}
	key := loc.Key()
	s.buckets[key] = append(s.buckets[key], e)
	debug.Log(debug.VFS, "created %s %q in %s", kind, e.Name, key)
	return s.decorate(loc, e), nil
}

// Rename renames the first entry called oldName. Empty or unchanged names
// are a no-op. Renaming a folder moves its descendants with it.
func (s *Store) Rename(loc Location, oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" || newName == oldName {
		return nil
	}
	if loc.Category == registry.Trash {
		return ErrInTrash
	}
	if err := validateName(newName); err != nil {
		return err
	}

	key := loc.Key()
	i := s.index(loc, oldName)
	if i < 0 {
		return fmt.Errorf("rename %q in %s: %w", oldName, key, ErrNotFound)
	}
	if s.policy == UniqueNames && s.index(loc, newName) >= 0 {
		return fmt.Errorf("rename to %q in %s: %w", newName, key, ErrNameInUse)
	}

	bucket := s.buckets[key]
	e := bucket[i]
	e.Name = newName
	e.ModifiedLabel = JustNow
	bucket[i] = e

	// Children follow the folder unless a same-named sibling still owns them
	if e.IsFolder() && !e.IsShortcut() && s.index(loc, oldName) < 0 {
		sub := s.extractSubtree(loc.Child(oldName))
		s.insertSubtree(loc.Child(newName), sub)
	}
	debug.Log(debug.VFS, "renamed %q -> %q in %s", oldName, newName, key)
	return nil
}

// MoveToTrash removes the first entry called name from loc and appends it to
// the trash ledger.
func (s *Store) MoveToTrash(loc Location, name string) error {
	if loc.Category == registry.Trash {
		return ErrInTrash
	}
	i := s.index(loc, name)
	if i < 0 {
		return fmt.Errorf("trash %q in %s: %w", name, loc.Key(), ErrNotFound)
	}

	key := loc.Key()
	bucket := s.buckets[key]
	e := bucket[i]
	s.buckets[key] = append(bucket[:i:i], bucket[i+1:]...)
	s.putTrash(loc, e)
	return nil
}

// MoveManyToTrash trashes every entry at loc whose name is in names and
// returns how many moved. loc keeps exactly the complement.
func (s *Store) MoveManyToTrash(loc Location, names []string) (int, error) {
	if loc.Category == registry.Trash {
		return 0, ErrInTrash
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}

	key := loc.Key()
	var keep, victims []FileEntry
	for _, e := range s.buckets[key] {
		if set[e.Name] {
			victims = append(victims, e)
		} else {
			keep = append(keep, e)
		}
	}
	if len(victims) == 0 {
		return 0, nil
	}
	s.buckets[key] = keep
	for _, e := range victims {
		s.putTrash(loc, e)
	}
	return len(victims), nil
}

func (s *Store) putTrash(loc Location, e FileEntry) {
	var sub Tree
	if e.IsFolder() && !e.IsShortcut() && s.index(loc, e.Name) < 0 {
		sub = s.extractSubtree(loc.Child(e.Name))
	}
	e.ModifiedLabel = JustNow
	s.ledger.Put(trash.Item[trashed]{
		Name:         e.Name,
		OriginalPath: loc.Key(),
		Value:        trashed{Entry: e, Origin: loc, Subtree: sub},
	})
	debug.Log(debug.TRASH, "trashed %q from %s (subtree buckets=%d)", e.Name, loc.Key(), len(sub))
}

// TrashLen returns the number of ledger items.
func (s *Store) TrashLen() int {
	return s.ledger.Len()
}

// TrashEntries lists the ledger with each item's origin.
func (s *Store) TrashEntries() []TrashedEntry {
	items := s.ledger.Items()
	out := make([]TrashedEntry, len(items))
	for i, it := range items {
		out[i] = TrashedEntry{
			FileEntry: s.trashedEntry(it.Value),
			Origin:    it.Value.Origin,
			DeletedAt: it.DeletedAt,
		}
	}
	return out
}

// Restore returns the oldest trashed entry called name to the location it
// was deleted from.
func (s *Store) Restore(name string) (Location, error) {
	item, err := s.ledger.Take(name)
	if err != nil {
		return Location{}, fmt.Errorf("restore %q: %w", name, err)
	}
	return s.restoreItem(item.Value, item.Value.Origin), nil
}

// RestoreTo restores a trashed entry into dst instead of its origin.
func (s *Store) RestoreTo(name string, dst Location) (Location, error) {
	if dst.Category == registry.Trash {
		return Location{}, ErrInTrash
	}
	item, err := s.ledger.Take(name)
	if err != nil {
		return Location{}, fmt.Errorf("restore %q: %w", name, err)
	}
	return s.restoreItem(item.Value, dst), nil
}

// RestoreMany restores one item per name and returns how many succeeded.
func (s *Store) RestoreMany(names []string) int {
	n := 0
	for _, name := range names {
		if _, err := s.Restore(name); err == nil {
			n++
		}
	}
	return n
}

// RestoreAll restores every item held at call time.
func (s *Store) RestoreAll() int {
	return s.RestoreMany(s.ledger.Names())
}

func (s *Store) restoreItem(v trashed, dst Location) Location {
	e := v.Entry
	e.Name = s.freeName(dst, e.Name, e.IsFolder())
	key := dst.Key()
	s.buckets[key] = append(s.buckets[key], e)
	if v.Subtree != nil {
		s.insertSubtree(dst.Child(e.Name), v.Subtree)
	}
	debug.Log(debug.TRASH, "restored %q to %s", e.Name, key)
	return dst
}

// Purge permanently deletes the oldest trashed entry called name.
func (s *Store) Purge(name string) error {
	if err := s.ledger.Purge(name); err != nil {
		return fmt.Errorf("purge %q: %w", name, err)
	}
	debug.Log(debug.TRASH, "purged %q", name)
	return nil
}

// PurgeMany purges one item per name.
func (s *Store) PurgeMany(names []string) int {
	return s.ledger.PurgeMany(names)
}

// PurgeAll empties the trash and returns how many items were purged.
func (s *Store) PurgeAll() int {
	n := s.ledger.PurgeAll()
	debug.Log(debug.TRASH, "emptied trash: %d items", n)
	return n
}

// Move relocates an entry, with any descendants, from src to dst.
func (s *Store) Move(src Location, name string, dst Location) error {
	if src.Category == registry.Trash || dst.Category == registry.Trash {
		return ErrInTrash
	}
	if src.Equal(dst) {
		return nil
	}
	i := s.index(src, name)
	if i < 0 {
		return fmt.Errorf("move %q from %s: %w", name, src.Key(), ErrNotFound)
	}

	srcKey := src.Key()
	bucket := s.buckets[srcKey]
	e := bucket[i]
	own := e.IsFolder() && !e.IsShortcut()
	if own && dst.Within(src.Child(name)) {
		return fmt.Errorf("move %q into %s: %w", name, dst.Key(), ErrCycle)
	}

	s.buckets[srcKey] = append(bucket[:i:i], bucket[i+1:]...)
	var sub Tree
	if own && s.index(src, name) < 0 {
		sub = s.extractSubtree(src.Child(name))
	}

	e.Name = s.freeName(dst, e.Name, e.IsFolder())
	dstKey := dst.Key()
	s.buckets[dstKey] = append(s.buckets[dstKey], e)
	if sub != nil {
		s.insertSubtree(dst.Child(e.Name), sub)
	}
	debug.Log(debug.VFS, "moved %q from %s to %s", name, srcKey, dstKey)
	return nil
}

// ResolveChildLocation returns where activating a folder entry seen at
// current leads: the linked root for shortcuts, the child path otherwise.
// Non-folders return false.
func (s *Store) ResolveChildLocation(current Location, e FileEntry) (Location, bool) {
	if !e.IsFolder() {
		return current, false
	}
	if e.IsShortcut() {
		return Root(e.LinkedCategory), true
	}
	return current.Child(e.Name), true
}

// Mount replaces a category's contents with t and keeps t for Reset.
func (s *Store) Mount(c registry.Category, t Tree) error {
	if c == registry.Trash {
		return ErrInTrash
	}
	if !c.Valid() {
		return fmt.Errorf("mount %q: %w", c, ErrUnknownCategory)
	}
	s.mounts[c] = t.Clone()
	s.replaceCategory(c, t.Clone())
	debug.Log(debug.VFS, "mounted %s: %d buckets", c, len(t))
	return nil
}

// Locations returns every live bucket key, sorted.
func (s *Store) Locations() []string {
	keys := make([]string, 0, len(s.buckets))
	for k := range s.buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// --- internal helpers ---

func (s *Store) entries(loc Location) []FileEntry {
	if loc.Category == registry.Trash {
		if !loc.IsRoot() {
			return nil
		}
		items := s.ledger.Items()
		out := make([]FileEntry, len(items))
		for i, it := range items {
			out[i] = s.trashedEntry(it.Value)
		}
		return out
	}
	return s.buckets[loc.Key()]
}

// decorate fills in the child count of a folder listed at loc. Trash entries
// are counted by trashedEntry, since names in the ledger need not be unique.
func (s *Store) decorate(loc Location, e FileEntry) FileEntry {
	if !e.IsFolder() || loc.Category == registry.Trash {
		return e
	}
	if e.IsShortcut() {
		e.ChildCount = len(s.buckets[Root(e.LinkedCategory).Key()])
	} else {
		e.ChildCount = len(s.buckets[loc.Child(e.Name).Key()])
	}
	return e
}

// trashedEntry is the listing form of one ledger item.
func (s *Store) trashedEntry(t trashed) FileEntry {
	e := t.Entry
	switch {
	case !e.IsFolder():
	case e.IsShortcut():
		e.ChildCount = len(s.buckets[Root(e.LinkedCategory).Key()])
	default:
		e.ChildCount = len(t.Subtree[""])
	}
	return e
}

func (s *Store) index(loc Location, name string) int {
	for i, e := range s.entries(loc) {
		if e.Name == name {
			return i
		}
	}
	return -1
}

func (s *Store) freeName(loc Location, base string, isFolder bool) string {
	if s.policy == PermitDuplicates || s.index(loc, base) < 0 {
		return base
	}
	stem, ext := base, ""
	if !isFolder {
		ext = path.Ext(base)
		stem = strings.TrimSuffix(base, ext)
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", stem, n, ext)
		if s.index(loc, candidate) < 0 {
			return candidate
		}
	}
}

// extractSubtree removes the bucket at loc and every bucket below it.
func (s *Store) extractSubtree(loc Location) Tree {
	root := loc.Key()
	sub := Tree{}
	for k, entries := range s.buckets {
		switch {
		case k == root:
			sub[""] = entries
		case strings.HasPrefix(k, root+"/"):
			sub[k[len(root)+1:]] = entries
		default:
			continue
		}
		delete(s.buckets, k)
	}
	return sub
}

func (s *Store) insertSubtree(loc Location, sub Tree) {
	root := loc.Key()
	for rel, entries := range sub {
		k := root
		if rel != "" {
			k = root + "/" + rel
		}
		s.buckets[k] = append(s.buckets[k], entries...)
	}
}

func (s *Store) replaceCategory(c registry.Category, t Tree) {
	root := string(c)
	for k := range s.buckets {
		if k == root || strings.HasPrefix(k, root+"/") {
			delete(s.buckets, k)
		}
	}
	for k, entries := range t {
		if k == root || strings.HasPrefix(k, root+"/") {
			s.buckets[k] = entries
		}
	}
	if _, ok := s.buckets[root]; !ok {
		s.buckets[root] = nil
	}
}

func validateName(name string) error {
	if name == "." || name == ".." || strings.ContainsRune(name, '/') {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
