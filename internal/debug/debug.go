// Package debug provides a centralized, categorized debug logging system
// backed by zap. Until Init is called every category logs to a no-op core.
package debug

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a debug logging category
type Category string

const (
	// Core categories
	APP     Category = "APP"     // Startup, config, shutdown
	WM      Category = "WM"      // Window open/close/maximize/stacking
	VFS     Category = "VFS"     // Virtual filesystem mutations
	NAV     Category = "NAV"     // History and location changes
	TRASH   Category = "TRASH"   // Trash ledger transitions
	SESSION Category = "SESSION" // Login, logout, timers
	STORE   Category = "STORE"   // Preferences database
	API     Category = "API"     // HTTP handlers
	WATCH   Category = "WATCH"   // Mounted directory watcher
	AUTH    Category = "AUTH"    // Token validation

	// Verbose categories (disabled by default)
	VFS_ENTRY Category = "VFS_ENTRY" // Individual imported entries
	API_REQ   Category = "API_REQ"   // Every HTTP request
)

// Config controls the zap backend.
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // json, console
	OutputPath string // stdout, stderr, or file path
}

var (
	enabledCategories = map[Category]bool{
		APP:     true,
		WM:      true,
		VFS:     true,
		NAV:     true,
		TRASH:   true,
		SESSION: true,
		STORE:   true,
		API:     true,
		WATCH:   true,
		AUTH:    true,

		VFS_ENTRY: false,
		API_REQ:   false,
	}
	categoryMu sync.RWMutex

	logger = zap.NewNop().Sugar()
	level  = zap.NewAtomicLevelAt(zapcore.DebugLevel)
)

func init() {
	// Format: DESK_DEBUG=WM,VFS or DESK_DEBUG=all or DESK_DEBUG=none
	if env := os.Getenv("DESK_DEBUG"); env != "" {
		applyEnv(env)
	}
}

func applyEnv(env string) {
	categoryMu.Lock()
	defer categoryMu.Unlock()

	env = strings.ToUpper(env)
	switch env {
	case "ALL":
		for cat := range enabledCategories {
			enabledCategories[cat] = true
		}
	case "NONE":
		for cat := range enabledCategories {
			enabledCategories[cat] = false
		}
	default:
		for cat := range enabledCategories {
			enabledCategories[cat] = false
		}
		for _, cat := range strings.Split(env, ",") {
			enabledCategories[Category(strings.TrimSpace(cat))] = true
		}
	}
}

// Init builds the zap logger used by Log, Info and Error.
func Init(cfg Config) error {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(cfg.Level)); err != nil {
		lvl = zapcore.InfoLevel
	}

	var zc zap.Config
	if cfg.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	level.SetLevel(lvl)
	zc.Level = level
	if cfg.OutputPath != "" {
		zc.OutputPaths = []string{cfg.OutputPath}
	}

	l, err := zc.Build(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}

	categoryMu.Lock()
	logger = l.Sugar()
	categoryMu.Unlock()
	return nil
}

// SetLogger replaces the backend, mainly for tests using zaptest/observer.
func SetLogger(l *zap.Logger) {
	categoryMu.Lock()
	logger = l.Sugar()
	categoryMu.Unlock()
}

// Sync flushes buffered log entries.
func Sync() error {
	categoryMu.RLock()
	defer categoryMu.RUnlock()
	return logger.Sync()
}

// Log logs a debug message for the specified category
func Log(cat Category, format string, args ...interface{}) {
	categoryMu.RLock()
	enabled := enabledCategories[cat]
	l := logger
	categoryMu.RUnlock()

	if !enabled {
		return
	}
	l.With("cat", string(cat)).Debugf(format, args...)
}

// Info logs an operational message regardless of category switches.
func Info(cat Category, msg string, keysAndValues ...interface{}) {
	categoryMu.RLock()
	l := logger
	categoryMu.RUnlock()
	l.With("cat", string(cat)).Infow(msg, keysAndValues...)
}

// Error logs a failure regardless of category switches.
func Error(cat Category, msg string, keysAndValues ...interface{}) {
	categoryMu.RLock()
	l := logger
	categoryMu.RUnlock()
	l.With("cat", string(cat)).Errorw(msg, keysAndValues...)
}

// Enable enables a debug category
func Enable(cat Category) {
	categoryMu.Lock()
	enabledCategories[cat] = true
	categoryMu.Unlock()
}

// Disable disables a debug category
func Disable(cat Category) {
	categoryMu.Lock()
	enabledCategories[cat] = false
	categoryMu.Unlock()
}

// IsEnabled returns whether a category is enabled
func IsEnabled(cat Category) bool {
	categoryMu.RLock()
	defer categoryMu.RUnlock()
	return enabledCategories[cat]
}

// EnableAll enables all debug categories including verbose ones
func EnableAll() {
	categoryMu.Lock()
	for cat := range enabledCategories {
		enabledCategories[cat] = true
	}
	categoryMu.Unlock()
}

// DisableAll disables all debug categories
func DisableAll() {
	categoryMu.Lock()
	for cat := range enabledCategories {
		enabledCategories[cat] = false
	}
	categoryMu.Unlock()
}

// SetCategories sets the enabled state for multiple categories
func SetCategories(cats map[Category]bool) {
	categoryMu.Lock()
	for cat, enabled := range cats {
		enabledCategories[cat] = enabled
	}
	categoryMu.Unlock()
}

// ListEnabled returns a slice of currently enabled categories
func ListEnabled() []Category {
	categoryMu.RLock()
	defer categoryMu.RUnlock()

	var enabled []Category
	for cat, on := range enabledCategories {
		if on {
			enabled = append(enabled, cat)
		}
	}
	return enabled
}
