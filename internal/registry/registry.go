// Package registry holds the closed sets of application identifiers and
// filesystem category roots known to the desktop shell.
package registry

import "strings"

// AppID identifies an application the shell can open.
type AppID string

const (
	AppFiles      AppID = "files"
	AppNotes      AppID = "notes"
	AppPhotos     AppID = "photos"
	AppSettings   AppID = "settings"
	AppTerminal   AppID = "terminal"
	AppCalculator AppID = "calculator"
	AppBrowser    AppID = "browser"
	AppMusic      AppID = "music"
	AppCalendar   AppID = "calendar"
	AppMail       AppID = "mail"
	AppTrash      AppID = "trash"

	// Viewers opened by the file browser on file activation
	AppPhotoViewer AppID = "photo-viewer"
	AppNoteEditor  AppID = "note-editor"
	AppDocViewer   AppID = "pdf-viewer"
	AppMediaPlayer AppID = "media-player"

	// Pseudo apps: they toggle the launcher overlay instead of opening a window
	AppLauncher AppID = "launcher"
	AppGrid     AppID = "app-grid"
)

var appTitles = map[AppID]string{
	AppFiles:       "Files",
	AppNotes:       "Notes",
	AppPhotos:      "Photos",
	AppSettings:    "Settings",
	AppTerminal:    "Terminal",
	AppCalculator:  "Calculator",
	AppBrowser:     "Browser",
	AppMusic:       "Music",
	AppCalendar:    "Calendar",
	AppMail:        "Mail",
	AppTrash:       "Trash",
	AppPhotoViewer: "Photo Viewer",
	AppNoteEditor:  "Note Editor",
	AppDocViewer:   "Document Viewer",
	AppMediaPlayer: "Media Player",
	AppLauncher:    "Launcher",
	AppGrid:        "Applications",
}

// Valid reports whether id is a member of the registry.
func (id AppID) Valid() bool {
	_, ok := appTitles[id]
	return ok
}

// IsLauncher reports whether id names one of the launcher pseudo apps.
func (id AppID) IsLauncher() bool {
	return id == AppLauncher || id == AppGrid
}

// Title returns the display title for the app, or the raw id if unknown.
func (id AppID) Title() string {
	if t, ok := appTitles[id]; ok {
		return t
	}
	return string(id)
}

// Apps returns every registered app id in a stable order.
func Apps() []AppID {
	return []AppID{
		AppFiles, AppNotes, AppPhotos, AppSettings, AppTerminal, AppCalculator,
		AppBrowser, AppMusic, AppCalendar, AppMail, AppTrash,
		AppPhotoViewer, AppNoteEditor, AppDocViewer, AppMediaPlayer,
		AppLauncher, AppGrid,
	}
}

// Category is one of the fixed filesystem roots.
type Category string

const (
	Home      Category = "home"
	Desktop   Category = "desktop"
	Documents Category = "documents"
	Pictures  Category = "pictures"
	Downloads Category = "downloads"
	Cloud     Category = "cloud"
	USB       Category = "usb"
	Trash     Category = "trash"
)

// Categories returns the category roots in sidebar order.
func Categories() []Category {
	return []Category{Home, Desktop, Documents, Pictures, Downloads, Cloud, USB, Trash}
}

// Valid reports whether c is one of the fixed roots.
func (c Category) Valid() bool {
	switch c {
	case Home, Desktop, Documents, Pictures, Downloads, Cloud, USB, Trash:
		return true
	}
	return false
}

// Title returns the sidebar label for the category.
func (c Category) Title() string {
	switch c {
	case USB:
		return "USB Drive"
	case Cloud:
		return "Cloud Drive"
	}
	s := string(c)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParseCategory converts a user supplied string to a Category.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	return c, c.Valid()
}
