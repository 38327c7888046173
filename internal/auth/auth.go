// Package auth validates the tokens that identify who owns a desktop
// session. Account storage lives elsewhere; this package only checks tokens.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/justyntemme/deskshell/internal/debug"
	"github.com/justyntemme/deskshell/internal/metrics"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrMissingToken = errors.New("missing authentication token")
)

type contextKey string

const identityContextKey contextKey = "identity"

// Identity is the authenticated owner of a request.
type Identity struct {
	User      string `json:"user"`
	Anonymous bool   `json:"anonymous,omitempty"`
}

// Provider checks a token and returns who it belongs to.
type Provider interface {
	Authenticate(ctx context.Context, token string) (Identity, error)
}

// StaticProvider accepts every request as a single local user.
type StaticProvider struct {
	User string
}

func (p StaticProvider) Authenticate(_ context.Context, _ string) (Identity, error) {
	user := p.User
	if user == "" {
		user = "guest"
	}
	return Identity{User: user, Anonymous: true}, nil
}

// FromContext returns the identity stored by Middleware.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(Identity)
	return id, ok
}

// WithIdentity returns a context carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// Middleware returns HTTP middleware that authenticates every request.
func Middleware(p Provider, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := p.Authenticate(r.Context(), extractToken(r))
		metrics.RecordAuthAttempt(err == nil)
		if err != nil {
			debug.Log(debug.AUTH, "rejected %s %s: %v", r.Method, r.URL.Path, err)
			sendAuthError(w, http.StatusUnauthorized, err.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

func extractToken(r *http.Request) string {
	// Bearer token from Authorization header
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	// Query parameter fallback
	return r.URL.Query().Get("token")
}

func sendAuthError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{
		"error": message,
		"code":  code,
	})
}
