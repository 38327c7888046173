package api

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/justyntemme/deskshell/internal/auth"
	"github.com/justyntemme/deskshell/internal/debug"
	"github.com/justyntemme/deskshell/internal/registry"
	"github.com/justyntemme/deskshell/internal/session"
	"github.com/justyntemme/deskshell/internal/wm"
)

// maxTimerDelay bounds how far ahead a toast can be scheduled.
const maxTimerDelay = time.Hour

type loginResponse struct {
	ID      string      `json:"id"`
	User    string      `json:"user"`
	Desktop wm.Snapshot `json:"desktop"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	sess := s.sessions.Login(id.User)
	debug.Log(debug.API, "session %s created for %q", sess.ID(), id.User)
	s.sendJSON(w, http.StatusCreated, loginResponse{
		ID:      sess.ID(),
		User:    sess.User(),
		Desktop: sess.Desktop(),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if err := s.sessions.Logout(sess.ID()); err != nil {
		s.sendErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDesktop(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	s.sendJSON(w, http.StatusOK, sess.Desktop())
}

// windowOp runs op for {app} and answers with the new desktop snapshot.
func (s *Server) windowOp(w http.ResponseWriter, r *http.Request, sess *session.Session, op func(registry.AppID) error) {
	app, err := parseApp(r)
	if err == nil {
		err = op(app)
	}
	if err != nil {
		s.sendErr(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, sess.Desktop())
}

func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var params *wm.Params
	if err := decode(r, &params); err != nil {
		s.sendErr(w, err)
		return
	}
	s.windowOp(w, r, sess, func(app registry.AppID) error {
		return sess.Open(app, params)
	})
}

func (s *Server) handleClose(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	s.windowOp(w, r, sess, sess.Close)
}

func (s *Server) handleMaximize(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	s.windowOp(w, r, sess, sess.ToggleMaximize)
}

func (s *Server) handleFocus(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	s.windowOp(w, r, sess, sess.Focus)
}

type launcherRequest struct {
	Visible *bool `json:"visible"` // Omitted toggles
}

func (s *Server) handleLauncher(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req launcherRequest
	if err := decode(r, &req); err != nil {
		s.sendErr(w, err)
		return
	}
	var err error
	if req.Visible == nil {
		err = sess.ToggleLauncher()
	} else {
		err = sess.SetLauncher(*req.Visible)
	}
	if err != nil {
		s.sendErr(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, sess.Desktop())
}

type timerRequest struct {
	DelayMS int64  `json:"delayMs"`
	Message string `json:"message"`
}

// handleSchedule raises a toast from {app} after a delay, unless the app's
// window is closed first.
func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	app, err := parseApp(r)
	if err != nil {
		s.sendErr(w, err)
		return
	}
	var req timerRequest
	if err := decode(r, &req); err != nil {
		s.sendErr(w, err)
		return
	}
	delay := time.Duration(req.DelayMS) * time.Millisecond
	if delay < 0 || delay > maxTimerDelay {
		s.sendError(w, http.StatusBadRequest, "delayMs out of range")
		return
	}
	if req.Message == "" {
		req.Message = app.Title()
	}
	if _, err := sess.Schedule(app, delay, func(tx session.Tx) {
		tx.Notify(app, req.Message)
	}); err != nil {
		s.sendErr(w, err)
		return
	}
	s.sendJSON(w, http.StatusAccepted, map[string]any{"pending": sess.PendingTimers()})
}

func (s *Server) handleDock(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	items, err := sess.Dock(r.Context())
	if err != nil {
		s.sendErr(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, items)
}

func (s *Server) handlePin(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	s.dockOp(w, r, sess, sess.Pin)
}

func (s *Server) handleUnpin(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	s.dockOp(w, r, sess, sess.Unpin)
}

func (s *Server) dockOp(w http.ResponseWriter, r *http.Request, sess *session.Session, op func(ctx context.Context, app registry.AppID) error) {
	app, err := parseApp(r)
	if err == nil {
		err = op(r.Context(), app)
	}
	if err != nil {
		s.sendErr(w, err)
		return
	}
	s.handleDock(w, r, sess)
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	s.sendJSON(w, http.StatusOK, sess.Notifications())
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if !sess.DismissNotification(r.PathValue("nid")) {
		s.sendError(w, http.StatusNotFound, "unknown notification")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	settings, err := sess.Settings(r.Context())
	if err != nil {
		s.sendErr(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, settings)
}

// handleSaveSettings stores every key of a JSON object, in key order, and
// stops at the first invalid one.
func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req map[string]string
	if err := decode(r, &req); err != nil {
		s.sendErr(w, err)
		return
	}
	keys := make([]string, 0, len(req))
	for k := range req {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if err := sess.SaveSetting(r.Context(), k, req[k]); err != nil {
			s.sendErr(w, err)
			return
		}
	}
	s.handleSettings(w, r, sess)
}
