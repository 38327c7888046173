package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/justyntemme/deskshell/internal/debug"
)

// Config holds all user-configurable settings loaded from config.json
type Config struct {
	Server  ServerConfig  `json:"server"`
	Logging LoggingConfig `json:"logging"`
	Desktop DesktopConfig `json:"desktop"`
	Store   StoreConfig   `json:"store"`
	Mounts  []MountConfig `json:"mounts"`
	Auth    AuthConfig    `json:"auth"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Addr            string `json:"addr"`
	ShutdownTimeout string `json:"shutdownTimeout"` // Go duration, e.g. "10s"
}

// LoggingConfig holds zap logger settings
type LoggingConfig struct {
	Level      string   `json:"level"`  // "debug" | "info" | "warn" | "error"
	Format     string   `json:"format"` // "json" | "console"
	OutputPath string   `json:"outputPath,omitempty"`
	Categories []string `json:"categories,omitempty"` // Debug categories to enable
}

// DesktopConfig holds session defaults
type DesktopConfig struct {
	BaseZ        int      `json:"baseZ"`
	HistoryLimit int      `json:"historyLimit"`
	NamePolicy   string   `json:"namePolicy"` // "permit" | "unique"
	DockPins     []string `json:"dockPins"`
	SessionTTL   string   `json:"sessionTTL"` // Idle sessions are logged out after this
}

// StoreConfig holds preferences database settings
type StoreConfig struct {
	Path string `json:"path"` // Empty keeps preferences in memory
}

// MountConfig imports a host directory into a category
type MountConfig struct {
	Category string `json:"category"`
	Dir      string `json:"dir"`
	Watch    bool   `json:"watch"`
}

// AuthConfig holds token validation settings
type AuthConfig struct {
	Secret         string `json:"secret"`
	Issuer         string `json:"issuer"`
	TokenTTL       string `json:"tokenTTL"`
	AllowAnonymous bool   `json:"allowAnonymous"`
}

// Manager handles loading, saving, and accessing configuration
type Manager struct {
	mu       sync.RWMutex
	config   *Config
	path     string
	parseErr error // Stores parsing error if config failed to load
}

// NewManager creates a configuration manager for path. An empty path uses
// ConfigPath().
func NewManager(path string) *Manager {
	if path == "" {
		path = ConfigPath()
	}
	return &Manager{
		config: DefaultConfig(),
		path:   path,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            "127.0.0.1:8420",
			ShutdownTimeout: "10s",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Desktop: DesktopConfig{
			BaseZ:        10,
			HistoryLimit: 100,
			NamePolicy:   "permit",
			DockPins:     []string{"files", "notes", "photos", "terminal", "browser", "settings"},
			SessionTTL:   "12h",
		},
		Auth: AuthConfig{
			Issuer:         "deskshell",
			TokenTTL:       "24h",
			AllowAnonymous: true,
		},
	}
}

// ConfigPath returns the config file path: ~/.config/deskshell/config.json
func ConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "deskshell", "config.json")
}

// Path returns the file the manager reads and writes.
func (m *Manager) Path() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.path
}

// Load reads the configuration from the config file
// If the file doesn't exist, creates it with defaults
// If parsing fails, stores the error and returns defaults
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.parseErr = nil

	configDir := filepath.Dir(m.path)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("create config directory %s: %w", configDir, err)
	}

	data, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		debug.Log(debug.APP, "config: creating default config at %s", m.path)
		m.config = DefaultConfig()
		if saveErr := m.saveUnlocked(); saveErr != nil {
			return fmt.Errorf("save default config: %w", saveErr)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config %s: %w", m.path, err)
	}

	// Unset fields keep their defaults
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		debug.Log(debug.APP, "config: JSON parse error: %v", err)
		m.parseErr = err
		m.config = DefaultConfig()
		return nil // Don't return error - we're using defaults
	}

	debug.Log(debug.APP, "config: loaded from %s", m.path)
	m.config = cfg
	return nil
}

// saveUnlocked saves config without acquiring lock (caller must hold lock)
func (m *Manager) saveUnlocked() error {
	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.path, data, 0o600)
}

// Save writes the current configuration to disk
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveUnlocked()
}

// Get returns a copy of the current configuration
func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.config == nil {
		return *DefaultConfig()
	}
	return *m.config
}

// ParseError returns the parsing error if config failed to load
func (m *Manager) ParseError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.parseErr
}

// SetNamePolicy updates the default name policy for new sessions
func (m *Manager) SetNamePolicy(policy string) error {
	m.mu.Lock()
	m.config.Desktop.NamePolicy = policy
	m.mu.Unlock()
	return m.Save()
}

// AddMount appends a mount, replacing any existing mount of the category
func (m *Manager) AddMount(mount MountConfig) error {
	m.mu.Lock()
	for i, existing := range m.config.Mounts {
		if existing.Category == mount.Category {
			m.config.Mounts = append(m.config.Mounts[:i], m.config.Mounts[i+1:]...)
			break
		}
	}
	m.config.Mounts = append(m.config.Mounts, mount)
	m.mu.Unlock()
	return m.Save()
}

// RemoveMount removes the mount of a category
func (m *Manager) RemoveMount(category string) error {
	m.mu.Lock()
	for i, existing := range m.config.Mounts {
		if existing.Category == category {
			m.config.Mounts = append(m.config.Mounts[:i], m.config.Mounts[i+1:]...)
			break
		}
	}
	m.mu.Unlock()
	return m.Save()
}

// Duration parses a Go duration setting, falling back to def when the value
// is empty or malformed.
func Duration(value string, def time.Duration) time.Duration {
	if value == "" {
		return def
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		debug.Log(debug.APP, "config: invalid duration %q, using %s", value, def)
		return def
	}
	return d
}

// GenerateConfig backs up an existing config at path and writes fresh
// defaults. It returns the backup path, or "" if there was nothing to back up.
func GenerateConfig(path string) (backupPath string, err error) {
	if path == "" {
		path = ConfigPath()
	}

	if _, err := os.Stat(path); err == nil {
		timestamp := time.Now().Format("20060102-150405")
		backupPath = filepath.Join(filepath.Dir(path), "config.backup."+timestamp+".json")

		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read existing config: %w", err)
		}
		if err := os.WriteFile(backupPath, data, 0o600); err != nil {
			return "", fmt.Errorf("failed to write backup: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return backupPath, fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(DefaultConfig(), "", "  ")
	if err != nil {
		return backupPath, fmt.Errorf("failed to marshal default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return backupPath, fmt.Errorf("failed to write config: %w", err)
	}
	return backupPath, nil
}
