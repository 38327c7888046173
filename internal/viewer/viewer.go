// Package viewer maps file kinds to the app that opens them and the params
// that app is opened with.
package viewer

import (
	"path"
	"strings"

	"github.com/justyntemme/deskshell/internal/registry"
	"github.com/justyntemme/deskshell/internal/vfs"
	"github.com/justyntemme/deskshell/internal/wm"
)

// Request is an "open this app" request produced by activating a file.
type Request struct {
	App    registry.AppID `json:"appId"`
	Params wm.Params      `json:"params"`
}

type handler struct {
	app    registry.AppID
	params func(loc vfs.Location, e vfs.FileEntry) wm.Params
}

var handlers = map[vfs.Kind]handler{
	vfs.KindImage: {registry.AppPhotoViewer, func(loc vfs.Location, e vfs.FileEntry) wm.Params {
		return wm.Params{FileName: e.Name, Folder: loc.Key()}
	}},
	vfs.KindText: {registry.AppNoteEditor, func(loc vfs.Location, e vfs.FileEntry) wm.Params {
		return wm.Params{FileName: e.Name, NoteContent: e.Content, Title: NoteTitle(e.Name, e.Content)}
	}},
	vfs.KindDocument: {registry.AppDocViewer, fileOnly},
	vfs.KindVideo:    {registry.AppMediaPlayer, fileOnly},
	vfs.KindAudio:    {registry.AppMediaPlayer, fileOnly},
}

func fileOnly(_ vfs.Location, e vfs.FileEntry) wm.Params {
	return wm.Params{FileName: e.Name}
}

// For returns the open request for activating e at loc. Folders have no
// viewer.
func For(loc vfs.Location, e vfs.FileEntry) (Request, bool) {
	h, ok := handlers[e.Kind]
	if !ok {
		return Request{}, false
	}
	return Request{App: h.app, Params: h.params(loc, e)}, true
}

// AppFor returns the viewer app for a kind.
func AppFor(k vfs.Kind) (registry.AppID, bool) {
	h, ok := handlers[k]
	return h.app, ok
}

// NoteTitle returns the note editor title: the first markdown heading for
// .md notes, otherwise the file name without its extension.
func NoteTitle(name, content string) string {
	if strings.EqualFold(path.Ext(name), ".md") {
		if t := firstHeading([]byte(content)); t != "" {
			return t
		}
	}
	return strings.TrimSuffix(name, path.Ext(name))
}
