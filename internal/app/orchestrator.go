// Package app wires configuration, storage, sessions, mounts and the HTTP
// server into a running process.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/justyntemme/deskshell/internal/api"
	"github.com/justyntemme/deskshell/internal/auth"
	"github.com/justyntemme/deskshell/internal/config"
	"github.com/justyntemme/deskshell/internal/debug"
	"github.com/justyntemme/deskshell/internal/registry"
	"github.com/justyntemme/deskshell/internal/session"
	"github.com/justyntemme/deskshell/internal/store"
	"github.com/justyntemme/deskshell/internal/vfs"
	"github.com/justyntemme/deskshell/internal/watch"
)

// expireInterval is how often idle sessions are swept.
const expireInterval = time.Minute

type Orchestrator struct {
	cfg      *config.Manager
	store    *store.DB
	sessions *session.Registry
	watcher  *watch.Watcher
	handler  http.Handler
	debug    bool

	mu     sync.Mutex
	mounts map[registry.Category]string // category -> host dir
}

func NewOrchestrator(cfg *config.Manager, debugMode bool) *Orchestrator {
	return &Orchestrator{
		cfg:    cfg,
		store:  store.NewDB(),
		debug:  debugMode,
		mounts: make(map[registry.Category]string),
	}
}

// Setup loads configuration and builds every component. It must be called
// once before Handler or Run.
func (o *Orchestrator) Setup() error {
	if err := o.cfg.Load(); err != nil {
		return err
	}
	if err := o.cfg.ParseError(); err != nil {
		debug.Error(debug.APP, "config parse failed, using defaults", "path", o.cfg.Path(), "err", err)
	}
	c := o.cfg.Get()

	if err := o.initLogging(c.Logging); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}

	// Init DB
	if err := o.store.Open(c.Store.Path); err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	go o.store.Start()

	opts, err := sessionOptions(c.Desktop)
	if err != nil {
		return err
	}
	opts.Prefs = store.NewPrefs(o.store)
	o.sessions = session.NewRegistry(opts)

	provider, err := newProvider(c.Auth)
	if err != nil {
		return err
	}
	o.handler = api.NewServer(o.sessions, provider).Handler()

	return o.applyMounts(c.Mounts)
}

func (o *Orchestrator) initLogging(c config.LoggingConfig) error {
	if o.debug {
		c.Level = "debug"
	}
	if err := debug.Init(debug.Config{Level: c.Level, Format: c.Format, OutputPath: c.OutputPath}); err != nil {
		return err
	}
	switch {
	case o.debug:
		debug.EnableAll()
	case len(c.Categories) > 0:
		cats := make(map[debug.Category]bool, len(c.Categories))
		for _, name := range c.Categories {
			cats[debug.Category(name)] = true
		}
		debug.SetCategories(cats)
	}
	return nil
}

func sessionOptions(c config.DesktopConfig) (session.Options, error) {
	policy, err := vfs.ParseNamePolicy(c.NamePolicy)
	if err != nil {
		return session.Options{}, err
	}
	pins := make([]registry.AppID, 0, len(c.DockPins))
	for _, p := range c.DockPins {
		id := registry.AppID(p)
		if !id.Valid() || id.IsLauncher() {
			return session.Options{}, fmt.Errorf("dock pin %q: %w", p, session.ErrUnknownApp)
		}
		pins = append(pins, id)
	}
	return session.Options{
		BaseZ:        c.BaseZ,
		HistoryLimit: c.HistoryLimit,
		NamePolicy:   policy,
		DockPins:     pins,
	}, nil
}

func newProvider(c config.AuthConfig) (auth.Provider, error) {
	if c.Secret != "" {
		return auth.NewJWTProvider(c.Secret, c.Issuer, config.Duration(c.TokenTTL, 24*time.Hour))
	}
	if c.AllowAnonymous {
		debug.Info(debug.AUTH, "no token secret configured, accepting anonymous requests")
		return auth.StaticProvider{}, nil
	}
	return nil, errors.New("auth: no secret configured and anonymous access disabled")
}

// IssueToken signs a token for user with the configured secret.
func IssueToken(c config.AuthConfig, user string) (string, time.Time, error) {
	p, err := auth.NewJWTProvider(c.Secret, c.Issuer, config.Duration(c.TokenTTL, 24*time.Hour))
	if err != nil {
		return "", time.Time{}, err
	}
	return p.Issue(user)
}

// Handler returns the HTTP handler built by Setup.
func (o *Orchestrator) Handler() http.Handler {
	return o.handler
}

// Sessions returns the session registry built by Setup.
func (o *Orchestrator) Sessions() *session.Registry {
	return o.sessions
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (o *Orchestrator) Run(ctx context.Context) error {
	c := o.cfg.Get()
	defer o.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Start workers
	if o.watcher != nil {
		go o.processChanges(ctx)
	}
	go o.expireSessions(ctx, config.Duration(c.Desktop.SessionTTL, 12*time.Hour))

	srv := &http.Server{
		Addr:         c.Server.Addr,
		Handler:      o.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		debug.Info(debug.APP, "listening", "addr", c.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	debug.Info(debug.APP, "shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), config.Duration(c.Server.ShutdownTimeout, 10*time.Second))
	defer stop()
	return srv.Shutdown(shutdownCtx)
}

func (o *Orchestrator) expireSessions(ctx context.Context, ttl time.Duration) {
	ticker := time.NewTicker(expireInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.sessions.ExpireIdle(ttl)
		}
	}
}

// Close releases the watcher, sessions and store.
func (o *Orchestrator) Close() {
	if o.watcher != nil {
		o.watcher.Close()
	}
	if o.sessions != nil {
		o.sessions.Close()
	}
	o.store.Close()
	debug.Sync()
}
