package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/justyntemme/deskshell/internal/debug"
	"github.com/justyntemme/deskshell/internal/metrics"
	"github.com/justyntemme/deskshell/internal/registry"
	"github.com/justyntemme/deskshell/internal/wm"
)

// Tx is handed to scheduled callbacks, which already hold the session lock.
type Tx struct {
	s *Session
}

func (tx Tx) Open(id registry.AppID, p *wm.Params) {
	tx.s.openLocked(id, p)
}

func (tx Tx) Close(id registry.AppID) {
	tx.s.closeLocked(id)
}

// Notify raises a toast on behalf of app.
func (tx Tx) Notify(app registry.AppID, message string) {
	tx.s.notifyLocked(app, message)
}

func (tx Tx) Desktop() wm.Snapshot {
	return tx.s.wm.Snapshot()
}

// Schedule runs fn after delay, bound to the instance of id open right now.
// If that instance has been closed (or closed and reopened) by then, fn is
// dropped. The returned function cancels the timer.
func (s *Session) Schedule(id registry.AppID, delay time.Duration, fn func(Tx)) (cancel func(), err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	inst, ok := s.wm.Instance(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotOpen, id)
	}

	s.nextTimer++
	key := s.nextTimer
	s.timers[key] = time.AfterFunc(delay, func() {
		s.fire(key, id, inst.InstanceID, fn)
	})
	debug.Log(debug.SESSION, "%s: timer %d for %s in %s", s.id, key, id, delay)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if t, ok := s.timers[key]; ok {
			t.Stop()
			delete(s.timers, key)
		}
	}, nil
}

func (s *Session) fire(key uint64, id registry.AppID, instanceID string, fn func(Tx)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.timers[key]; !ok {
		return
	}
	delete(s.timers, key)

	current, ok := s.wm.Instance(id)
	if s.closed || !ok || current.InstanceID != instanceID {
		metrics.RecordTimerDropped()
		debug.Log(debug.SESSION, "%s: dropped timer %d, %s instance %s is gone", s.id, key, id, instanceID)
		return
	}
	fn(Tx{s})
	s.observeLocked()
}

// PendingTimers returns how many timers have not fired yet.
func (s *Session) PendingTimers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func (s *Session) stopTimersLocked() {
	for key, t := range s.timers {
		t.Stop()
		delete(s.timers, key)
	}
}

// --- notifications ---

func (s *Session) notifyLocked(app registry.AppID, message string) {
	s.notes = append(s.notes, Notification{
		ID:      uuid.NewString(),
		AppID:   app,
		Message: message,
		At:      s.opts.Now(),
	})
	if excess := len(s.notes) - maxNotifications; excess > 0 {
		s.notes = append([]Notification(nil), s.notes[excess:]...)
	}
}

// Notifications returns the toasts raised so far, oldest first.
func (s *Session) Notifications() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Notification(nil), s.notes...)
}

// DismissNotification removes a toast by id.
func (s *Session) DismissNotification(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.notes {
		if n.ID == id {
			s.notes = append(s.notes[:i], s.notes[i+1:]...)
			return true
		}
	}
	return false
}
