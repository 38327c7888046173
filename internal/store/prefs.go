package store

import "context"

// Prefs is the typed client the session uses.
type Prefs struct {
	db *DB
}

func NewPrefs(db *DB) *Prefs {
	return &Prefs{db: db}
}

// Pins returns the user's pinned app ids in pin order.
func (p *Prefs) Pins(ctx context.Context, user string) ([]string, error) {
	resp, err := p.db.Do(ctx, Request{Op: FetchPins, User: user})
	return resp.Pins, err
}

func (p *Prefs) Pin(ctx context.Context, user, app string) ([]string, error) {
	resp, err := p.db.Do(ctx, Request{Op: AddPin, User: user, App: app})
	return resp.Pins, err
}

func (p *Prefs) Unpin(ctx context.Context, user, app string) ([]string, error) {
	resp, err := p.db.Do(ctx, Request{Op: RemovePin, User: user, App: app})
	return resp.Pins, err
}

func (p *Prefs) Settings(ctx context.Context, user string) (map[string]string, error) {
	resp, err := p.db.Do(ctx, Request{Op: FetchSettings, User: user})
	return resp.Settings, err
}

func (p *Prefs) SaveSetting(ctx context.Context, user, key, value string) (map[string]string, error) {
	resp, err := p.db.Do(ctx, Request{Op: SaveSetting, User: user, Key: key, Value: value})
	return resp.Settings, err
}
