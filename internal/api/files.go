package api

import (
	"errors"
	"net/http"

	"github.com/justyntemme/deskshell/internal/browser"
	"github.com/justyntemme/deskshell/internal/registry"
	"github.com/justyntemme/deskshell/internal/session"
	"github.com/justyntemme/deskshell/internal/vfs"
	"github.com/justyntemme/deskshell/internal/viewer"
)

var errUnknownAction = errors.New("unknown file action")

// fileRequest is the body shared by every file action. Each action reads
// only the fields it needs.
type fileRequest struct {
	Name        string   `json:"name"`
	Names       []string `json:"names"`
	Value       string   `json:"value"`
	Filter      string   `json:"filter"`
	Category    string   `json:"category"`
	Location    string   `json:"location"`
	Destination string   `json:"destination"`
}

// fileResponse carries an action's result alongside the refreshed view.
type fileResponse struct {
	Result any          `json:"result,omitempty"`
	View   browser.View `json:"view"`
}

type fileAction func(b *browser.Browser, req fileRequest) (any, error)

var fileActions = map[string]fileAction{
	"navigate": func(b *browser.Browser, req fileRequest) (any, error) {
		loc, err := vfs.ParseLocation(req.Location)
		if err != nil {
			return nil, err
		}
		b.Navigate(loc)
		return nil, nil
	},
	"category": func(b *browser.Browser, req fileRequest) (any, error) {
		c, ok := registry.ParseCategory(req.Category)
		if !ok {
			return nil, vfs.ErrUnknownCategory
		}
		return nil, b.SwitchCategory(c)
	},
	"enter": func(b *browser.Browser, req fileRequest) (any, error) {
		return nil, b.Enter(req.Name)
	},
	"back": func(b *browser.Browser, _ fileRequest) (any, error) {
		return b.Back(), nil
	},
	"forward": func(b *browser.Browser, _ fileRequest) (any, error) {
		return b.Forward(), nil
	},
	"up": func(b *browser.Browser, _ fileRequest) (any, error) {
		return b.Up(), nil
	},
	"activate": func(b *browser.Browser, req fileRequest) (any, error) {
		return b.Activate(req.Name)
	},
	"filter": func(b *browser.Browser, req fileRequest) (any, error) {
		b.SetFilter(req.Filter)
		return nil, nil
	},
	"select": func(b *browser.Browser, req fileRequest) (any, error) {
		return nil, b.Toggle(req.Name)
	},
	"select-all": func(b *browser.Browser, _ fileRequest) (any, error) {
		b.ToggleAll()
		return nil, nil
	},
	"clear-selection": func(b *browser.Browser, _ fileRequest) (any, error) {
		b.ClearSelection()
		return nil, nil
	},
	"context": func(b *browser.Browser, req fileRequest) (any, error) {
		if req.Name == "" {
			b.ClearContextTarget()
			return nil, nil
		}
		return nil, b.SetContextTarget(req.Name)
	},
	"rename": func(b *browser.Browser, req fileRequest) (any, error) {
		return nil, b.BeginRename(req.Name)
	},
	"rename-commit": func(b *browser.Browser, req fileRequest) (any, error) {
		return nil, b.CommitRename(req.Value)
	},
	"rename-cancel": func(b *browser.Browser, _ fileRequest) (any, error) {
		b.CancelRename()
		return nil, nil
	},
	"new-folder": func(b *browser.Browser, _ fileRequest) (any, error) {
		return b.CreateFolder()
	},
	"new-file": func(b *browser.Browser, _ fileRequest) (any, error) {
		return b.CreateFile()
	},
	"trash": func(b *browser.Browser, req fileRequest) (any, error) {
		return b.Trash(req.Names...)
	},
	"move": func(b *browser.Browser, req fileRequest) (any, error) {
		dst, err := vfs.ParseLocation(req.Destination)
		if err != nil {
			return nil, err
		}
		return nil, b.Move(req.Name, dst)
	},
	"restore": func(b *browser.Browser, req fileRequest) (any, error) {
		return b.Restore(req.Names...)
	},
	"restore-all": func(b *browser.Browser, _ fileRequest) (any, error) {
		return b.RestoreAll(), nil
	},
	"purge": func(b *browser.Browser, req fileRequest) (any, error) {
		return b.Purge(req.Names...)
	},
	"empty-trash": func(b *browser.Browser, _ fileRequest) (any, error) {
		return b.EmptyTrash(), nil
	},
}

func (s *Server) handleFilesView(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	s.sendJSON(w, http.StatusOK, sess.FilesView())
}

func (s *Server) handleFileAction(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	name := r.PathValue("action")
	action, ok := fileActions[name]
	if !ok {
		s.sendErr(w, errUnknownAction)
		return
	}
	var req fileRequest
	if err := decode(r, &req); err != nil {
		s.sendErr(w, err)
		return
	}

	var resp fileResponse
	err := sess.Files(name, func(b *browser.Browser) error {
		result, err := action(b, req)
		resp.Result = result
		resp.View = b.View()
		return err
	})
	if err != nil {
		s.sendErr(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	q := r.URL.Query().Get("q")
	var results []vfs.FileEntry
	err := sess.Files("search", func(b *browser.Browser) error {
		results = b.Search(q)
		return nil
	})
	if err != nil {
		s.sendErr(w, err)
		return
	}
	if results == nil {
		results = []vfs.FileEntry{}
	}
	s.sendJSON(w, http.StatusOK, results)
}

type previewResponse struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	HTML  string `json:"html"`
}

// handlePreview renders a text entry of the current location as HTML.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	name := r.URL.Query().Get("name")
	var entry vfs.FileEntry
	found := false
	err := sess.Files("preview", func(b *browser.Browser) error {
		for _, e := range b.View().Entries {
			if e.Name == name {
				entry, found = e, true
				break
			}
		}
		return nil
	})
	if err != nil {
		s.sendErr(w, err)
		return
	}
	if !found {
		s.sendErr(w, vfs.ErrNotFound)
		return
	}
	if entry.Kind != vfs.KindText {
		s.sendError(w, http.StatusUnsupportedMediaType, "only text entries can be previewed")
		return
	}
	html, err := viewer.RenderMarkdown(entry.Content)
	if err != nil {
		s.sendErr(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, previewResponse{
		Name:  entry.Name,
		Title: viewer.NoteTitle(entry.Name, entry.Content),
		HTML:  html,
	})
}

func (s *Server) handleTrash(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	entries := sess.TrashEntries()
	if entries == nil {
		entries = []vfs.TrashedEntry{}
	}
	s.sendJSON(w, http.StatusOK, entries)
}
