package vfs

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/justyntemme/deskshell/internal/debug"
	"github.com/justyntemme/deskshell/internal/registry"
)

// MaxNoteBytes caps how much of an imported text file is loaded as content.
const MaxNoteBytes = 64 << 10

// ImportDir walks a host directory and returns its contents as a Tree rooted
// at category c. Dotfiles and dot-directories are skipped.
func ImportDir(c registry.Category, dir string) (Tree, error) {
	dir = filepath.Clean(dir)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: not a directory", dir)
	}

	tree := Tree{string(c): nil}
	var mu sync.Mutex

	conf := &fastwalk.Config{Follow: false}
	err = fastwalk.Walk(conf, dir, func(fullPath string, d fs.DirEntry, err error) error {
		if err != nil {
			debug.Log(debug.VFS_ENTRY, "import: walk error at %q: %v", fullPath, err)
			return nil
		}
		if fullPath == dir {
			return nil
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(dir, filepath.Dir(fullPath))
		if err != nil {
			return nil
		}
		parent := Root(c)
		if rel != "." {
			parent = At(c, strings.Split(filepath.ToSlash(rel), "/")...)
		}

		info, err := fastwalk.StatDirEntry(fullPath, d)
		if err != nil {
			if info, err = d.Info(); err != nil {
				debug.Log(debug.VFS_ENTRY, "import: skipping %q: %v", fullPath, err)
				return nil
			}
		}
		e := importEntry(fullPath, name, d.IsDir(), info)

		mu.Lock()
		tree[parent.Key()] = append(tree[parent.Key()], e)
		if e.IsFolder() {
			child := parent.Child(name).Key()
			if _, ok := tree[child]; !ok {
				tree[child] = nil
			}
		}
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, entries := range tree {
		sortEntries(entries)
	}
	debug.Log(debug.VFS, "import %s from %q: %d buckets", c, dir, len(tree))
	return tree, nil
}

func importEntry(fullPath, name string, isDir bool, info fs.FileInfo) FileEntry {
	e := FileEntry{
		ID:            uuid.NewString(),
		Name:          name,
		ModifiedLabel: humanize.Time(info.ModTime()),
	}
	if isDir {
		e.Kind = KindFolder
		return e
	}
	e.Kind = KindForName(name)
	e.SizeBytes = info.Size()
	e.SizeLabel = humanize.Bytes(uint64(info.Size()))
	if e.Kind == KindText && info.Size() <= MaxNoteBytes {
		if b, err := os.ReadFile(fullPath); err == nil {
			e.Content = string(b)
		}
	}
	return e
}

// sortEntries orders folders first, then by case-insensitive name.
func sortEntries(entries []FileEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsFolder() != entries[j].IsFolder() {
			return entries[i].IsFolder()
		}
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})
}

// ImportDir mounts a host directory into category c and returns the number
// of entries imported.
func (s *Store) ImportDir(c registry.Category, dir string) (int, error) {
	if c == registry.Trash {
		return 0, ErrInTrash
	}
	tree, err := ImportDir(c, dir)
	if err != nil {
		return 0, fmt.Errorf("import %s: %w", c, err)
	}
	n := 0
	for _, entries := range tree {
		n += len(entries)
	}
	if err := s.Mount(c, tree); err != nil {
		return 0, err
	}
	return n, nil
}
