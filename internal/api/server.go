// Package api provides the HTTP server and handlers.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/justyntemme/deskshell/internal/auth"
	"github.com/justyntemme/deskshell/internal/browser"
	"github.com/justyntemme/deskshell/internal/debug"
	"github.com/justyntemme/deskshell/internal/metrics"
	"github.com/justyntemme/deskshell/internal/registry"
	"github.com/justyntemme/deskshell/internal/session"
	"github.com/justyntemme/deskshell/internal/trash"
	"github.com/justyntemme/deskshell/internal/vfs"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// Server is the HTTP server.
type Server struct {
	sessions *session.Registry
	auth     auth.Provider
	started  time.Time
}

// NewServer creates a new server.
func NewServer(sessions *session.Registry, provider auth.Provider) *Server {
	return &Server{sessions: sessions, auth: provider, started: time.Now()}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Public endpoints (no auth required)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", metrics.Handler())

	protect := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, auth.Middleware(s.auth, h))
	}

	protect("GET /api/registry", s.handleRegistry)

	// Sessions
	protect("POST /api/sessions", s.handleLogin)
	protect("DELETE /api/sessions/{id}", s.withSession(s.handleLogout))
	protect("GET /api/sessions/{id}/desktop", s.withSession(s.handleDesktop))

	// Windows
	protect("POST /api/sessions/{id}/apps/{app}/open", s.withSession(s.handleOpen))
	protect("POST /api/sessions/{id}/apps/{app}/close", s.withSession(s.handleClose))
	protect("POST /api/sessions/{id}/apps/{app}/maximize", s.withSession(s.handleMaximize))
	protect("POST /api/sessions/{id}/apps/{app}/focus", s.withSession(s.handleFocus))
	protect("POST /api/sessions/{id}/apps/{app}/timers", s.withSession(s.handleSchedule))
	protect("POST /api/sessions/{id}/launcher", s.withSession(s.handleLauncher))

	// Dock and notifications
	protect("GET /api/sessions/{id}/dock", s.withSession(s.handleDock))
	protect("PUT /api/sessions/{id}/dock/{app}", s.withSession(s.handlePin))
	protect("DELETE /api/sessions/{id}/dock/{app}", s.withSession(s.handleUnpin))
	protect("GET /api/sessions/{id}/notifications", s.withSession(s.handleNotifications))
	protect("DELETE /api/sessions/{id}/notifications/{nid}", s.withSession(s.handleDismiss))

	// Settings app
	protect("GET /api/sessions/{id}/settings", s.withSession(s.handleSettings))
	protect("PUT /api/sessions/{id}/settings", s.withSession(s.handleSaveSettings))

	// File browser
	protect("GET /api/sessions/{id}/files", s.withSession(s.handleFilesView))
	protect("GET /api/sessions/{id}/files/search", s.withSession(s.handleSearch))
	protect("GET /api/sessions/{id}/files/preview", s.withSession(s.handlePreview))
	protect("POST /api/sessions/{id}/files/{action}", s.withSession(s.handleFileAction))
	protect("GET /api/sessions/{id}/trash", s.withSession(s.handleTrash))

	// Apply logging and metrics middleware
	return metrics.Middleware(logRequests(mux))
}

// sessionHandler is a handler that runs against the caller's session.
type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *session.Session)

// withSession resolves {id} and checks that the caller owns the session.
func (s *Server) withSession(h sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.sessions.Get(r.PathValue("id"))
		if err != nil {
			s.sendErr(w, err)
			return
		}
		if id, ok := auth.FromContext(r.Context()); !ok || id.User != sess.User() {
			s.sendErr(w, session.ErrUnknownSession)
			return
		}
		h(w, r, sess)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Len(),
		"uptime":   time.Since(s.started).Round(time.Second).String(),
	})
}

type appInfo struct {
	ID       registry.AppID `json:"id"`
	Title    string         `json:"title"`
	Launcher bool           `json:"launcher,omitempty"`
}

type categoryInfo struct {
	ID    registry.Category `json:"id"`
	Title string            `json:"title"`
}

func (s *Server) handleRegistry(w http.ResponseWriter, r *http.Request) {
	var apps []appInfo
	for _, id := range registry.Apps() {
		apps = append(apps, appInfo{ID: id, Title: id.Title(), Launcher: id.IsLauncher()})
	}
	var cats []categoryInfo
	for _, c := range registry.Categories() {
		cats = append(cats, categoryInfo{ID: c, Title: c.Title()})
	}
	s.sendJSON(w, http.StatusOK, map[string]any{"apps": apps, "categories": cats})
}

// parseApp reads {app} and rejects ids outside the registry.
func parseApp(r *http.Request) (registry.AppID, error) {
	id := registry.AppID(r.PathValue("app"))
	if !id.Valid() {
		return "", session.ErrUnknownApp
	}
	return id, nil
}

// decode reads an optional JSON body into v. An empty body leaves v as is.
func decode(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		return &badRequest{err}
	}
	return nil
}

type badRequest struct {
	err error
}

func (e *badRequest) Error() string {
	return "invalid request body: " + e.err.Error()
}

func (e *badRequest) Unwrap() error {
	return e.err
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var bad *badRequest
	switch {
	case errors.As(err, &bad):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrUnknownSession),
		errors.Is(err, vfs.ErrNotFound),
		errors.Is(err, trash.ErrNotInTrash):
		return http.StatusNotFound
	case errors.Is(err, session.ErrUnknownApp),
		errors.Is(err, vfs.ErrInvalidName),
		errors.Is(err, vfs.ErrUnknownCategory),
		errors.Is(err, session.ErrInvalidSetting),
		errors.Is(err, errUnknownAction):
		return http.StatusBadRequest
	case errors.Is(err, vfs.ErrNameInUse),
		errors.Is(err, vfs.ErrCycle),
		errors.Is(err, vfs.ErrInTrash),
		errors.Is(err, browser.ErrNotTrashView),
		errors.Is(err, session.ErrNotOpen):
		return http.StatusConflict
	case errors.Is(err, browser.ErrNoViewer):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, session.ErrClosed):
		return http.StatusGone
	}
	return http.StatusInternalServerError
}

func (s *Server) sendErr(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		debug.Error(debug.API, "request failed", "err", err)
	}
	s.sendError(w, code, err.Error())
}

func (s *Server) sendError(w http.ResponseWriter, code int, message string) {
	s.sendJSON(w, code, map[string]any{
		"error": message,
		"code":  code,
	})
}

func (s *Server) sendJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// logRequests logs every request under the API_REQ category.
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		debug.Log(debug.API_REQ, "%s %s (%s)", r.Method, r.URL.Path, time.Since(start))
	})
}
