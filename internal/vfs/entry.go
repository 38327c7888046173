package vfs

import (
	"fmt"
	"path"
	"strings"

	"github.com/justyntemme/deskshell/internal/registry"
)

// Kind is the closed set of entry kinds.
type Kind int

const (
	KindFolder Kind = iota
	KindDocument
	KindImage
	KindVideo
	KindAudio
	KindText
)

var kindNames = [...]string{
	KindFolder:   "folder",
	KindDocument: "document",
	KindImage:    "image",
	KindVideo:    "video",
	KindAudio:    "audio",
	KindText:     "text",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, ok := ParseKind(string(b))
	if !ok {
		return fmt.Errorf("unknown kind %q", b)
	}
	*k = parsed
	return nil
}

// ParseKind converts a kind name.
func ParseKind(s string) (Kind, bool) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), true
		}
	}
	return KindDocument, false
}

var extKinds = map[string]Kind{
	".txt": KindText, ".md": KindText, ".log": KindText, ".csv": KindText,
	".json": KindText, ".yaml": KindText, ".yml": KindText, ".ini": KindText,
	".jpg": KindImage, ".jpeg": KindImage, ".png": KindImage, ".gif": KindImage,
	".webp": KindImage, ".heic": KindImage, ".svg": KindImage, ".bmp": KindImage,
	".mp4": KindVideo, ".mov": KindVideo, ".mkv": KindVideo, ".webm": KindVideo, ".avi": KindVideo,
	".mp3": KindAudio, ".wav": KindAudio, ".flac": KindAudio, ".ogg": KindAudio, ".m4a": KindAudio,
}

// KindForName guesses a file kind from its extension. Unknown extensions are
// documents.
func KindForName(name string) Kind {
	if k, ok := extKinds[strings.ToLower(path.Ext(name))]; ok {
		return k
	}
	return KindDocument
}

// FileEntry is one file or folder in a Location.
type FileEntry struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Kind           Kind              `json:"kind"`
	SizeBytes      int64             `json:"sizeBytes,omitempty"`
	SizeLabel      string            `json:"size,omitempty"`
	ChildCount     int               `json:"childCount,omitempty"`
	ModifiedLabel  string            `json:"modified"`
	Synced         bool              `json:"synced"`
	LinkedCategory registry.Category `json:"linkedCategory,omitempty"`
	Content        string            `json:"-"`
}

// IsFolder reports whether the entry is a folder or a folder shortcut.
func (e FileEntry) IsFolder() bool {
	return e.Kind == KindFolder
}

// IsShortcut reports whether entering the folder redirects to another
// category root.
func (e FileEntry) IsShortcut() bool {
	return e.Kind == KindFolder && e.LinkedCategory != ""
}

// Location addresses one bucket of entries.
type Location struct {
	Category registry.Category `json:"category"`
	Path     []string          `json:"path"`
}

// Root returns the root Location of a category.
func Root(c registry.Category) Location {
	return Location{Category: c}
}

// At builds a Location from a category and path segments.
func At(c registry.Category, segments ...string) Location {
	return Location{Category: c, Path: append([]string(nil), segments...)}
}

// Key returns the canonical string form, e.g. "documents/Work".
func (l Location) Key() string {
	if len(l.Path) == 0 {
		return string(l.Category)
	}
	return string(l.Category) + "/" + strings.Join(l.Path, "/")
}

func (l Location) String() string {
	return l.Key()
}

// Equal reports whether two locations address the same bucket.
func (l Location) Equal(o Location) bool {
	if l.Category != o.Category || len(l.Path) != len(o.Path) {
		return false
	}
	for i := range l.Path {
		if l.Path[i] != o.Path[i] {
			return false
		}
	}
	return true
}

// IsRoot reports whether l is a category root.
func (l Location) IsRoot() bool {
	return len(l.Path) == 0
}

// Child returns the location of the named sub-folder.
func (l Location) Child(name string) Location {
	p := make([]string, len(l.Path), len(l.Path)+1)
	copy(p, l.Path)
	return Location{Category: l.Category, Path: append(p, name)}
}

// Parent returns the enclosing location; false at a category root.
func (l Location) Parent() (Location, bool) {
	if l.IsRoot() {
		return l, false
	}
	return At(l.Category, l.Path[:len(l.Path)-1]...), true
}

// Name returns the last path segment, or the category title at a root.
func (l Location) Name() string {
	if l.IsRoot() {
		return l.Category.Title()
	}
	return l.Path[len(l.Path)-1]
}

// Within reports whether l is anc or lies below it.
func (l Location) Within(anc Location) bool {
	if l.Category != anc.Category || len(l.Path) < len(anc.Path) {
		return false
	}
	for i := range anc.Path {
		if l.Path[i] != anc.Path[i] {
			return false
		}
	}
	return true
}

// ParseLocation parses the Key form back into a Location.
func ParseLocation(s string) (Location, error) {
	s = strings.Trim(s, "/")
	parts := strings.Split(s, "/")
	cat, ok := registry.ParseCategory(parts[0])
	if !ok {
		return Location{}, fmt.Errorf("%w: %q", ErrUnknownCategory, parts[0])
	}
	loc := Location{Category: cat}
	for _, p := range parts[1:] {
		if p != "" {
			loc.Path = append(loc.Path, p)
		}
	}
	return loc, nil
}
