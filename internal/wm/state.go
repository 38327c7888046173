package wm

import (
	"time"

	"github.com/justyntemme/deskshell/internal/registry"
)

// Params is the bag of values an app needs to initialize its own screen.
type Params struct {
	Category    registry.Category `json:"category,omitempty"`
	FileName    string            `json:"fileName,omitempty"`
	Folder      string            `json:"folder,omitempty"`
	NoteContent string            `json:"noteContent,omitempty"`
	Title       string            `json:"title,omitempty"`
}

func (p *Params) clone() *Params {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

// Instance represents one open application.
type Instance struct {
	AppID      registry.AppID `json:"appId"`
	Params     *Params        `json:"params,omitempty"`
	InstanceID string         `json:"instanceId"`
	OpenedAt   time.Time      `json:"openedAt"`
}

// StackEntry is one app in rendering order with its derived z-index.
type StackEntry struct {
	AppID registry.AppID `json:"appId"`
	Z     int            `json:"z"`
}

// Snapshot is a copy of the window state for rendering.
type Snapshot struct {
	Open            []Instance     `json:"open"`
	Maximized       registry.AppID `json:"maximized,omitempty"`
	LauncherVisible bool           `json:"launcherVisible"`
	Stack           []StackEntry   `json:"stack"`
}
