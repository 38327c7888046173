package session

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"github.com/justyntemme/deskshell/internal/metrics"
)

// Settings app keys.
const (
	SettingWallpaper = "wallpaper"
	SettingTheme     = "theme"
)

var ErrInvalidSetting = errors.New("invalid setting")

// maxSettingLen bounds stored setting values.
const maxSettingLen = 256

// DefaultSettings are reported for keys the user never saved.
func DefaultSettings() map[string]string {
	return map[string]string{
		SettingWallpaper: "desktop/wallpaper.jpg",
		SettingTheme:     "light",
	}
}

func validateSetting(key, value string) error {
	switch key {
	case SettingTheme:
		switch value {
		case "light", "dark", "auto":
			return nil
		}
		return fmt.Errorf("%w: theme %q", ErrInvalidSetting, value)
	case SettingWallpaper:
		if value == "" || len(value) > maxSettingLen {
			return fmt.Errorf("%w: wallpaper %q", ErrInvalidSetting, value)
		}
		return nil
	}
	return fmt.Errorf("%w: unknown key %q", ErrInvalidSetting, key)
}

// Settings returns the user's settings merged over the defaults.
func (s *Session) Settings(ctx context.Context) (map[string]string, error) {
	out := DefaultSettings()
	if s.opts.Prefs == nil {
		s.mu.Lock()
		maps.Copy(out, s.settings)
		s.mu.Unlock()
		return out, nil
	}
	stored, err := s.opts.Prefs.Settings(ctx, s.user)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	for k, v := range stored {
		if _, known := out[k]; known {
			out[k] = v
		}
	}
	return out, nil
}

// SaveSetting validates and stores one setting.
func (s *Session) SaveSetting(ctx context.Context, key, value string) error {
	if err := validateSetting(key, value); err != nil {
		return err
	}
	if s.opts.Prefs == nil {
		s.mu.Lock()
		s.settings[key] = value
		s.mu.Unlock()
		return nil
	}
	_, err := s.opts.Prefs.SaveSetting(ctx, s.user, key, value)
	metrics.RecordOp("setting", err)
	return err
}
