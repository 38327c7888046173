// Package store persists per-user preferences (dock pins and settings) in
// sqlite. Requests are served by a single loop goroutine reading RequestChan.
package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/justyntemme/deskshell/internal/debug"
)

// ErrClosed is returned for requests made after Close.
var ErrClosed = errors.New("preferences store closed")

// MemoryPath keeps the database in memory.
const MemoryPath = ":memory:"

type EventType int

const (
	FetchPins EventType = iota
	AddPin
	RemovePin
	FetchSettings
	SaveSetting
)

func (e EventType) String() string {
	switch e {
	case FetchPins:
		return "fetch-pins"
	case AddPin:
		return "add-pin"
	case RemovePin:
		return "remove-pin"
	case FetchSettings:
		return "fetch-settings"
	case SaveSetting:
		return "save-setting"
	}
	return "unknown"
}

type Request struct {
	Op    EventType
	User  string
	App   string
	Key   string
	Value string
	Reply chan Response // Falls back to ResponseChan when nil
}

type Response struct {
	Op       EventType
	User     string
	Pins     []string          // App ids in pin order
	Settings map[string]string // Key-value settings
	Err      error
}

type DB struct {
	conn         *sql.DB
	RequestChan  chan Request
	ResponseChan chan Response

	started   atomic.Bool
	closed    atomic.Bool
	done      chan struct{}
	closeOnce sync.Once
}

func NewDB() *DB {
	return &DB{
		RequestChan:  make(chan Request, 10),
		ResponseChan: make(chan Response, 10),
		done:         make(chan struct{}),
	}
}

// Open initializes the database connection and schema. An empty path or
// MemoryPath keeps everything in memory.
func (d *DB) Open(dbPath string) error {
	if dbPath == "" {
		dbPath = MemoryPath
	}
	if dbPath != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return err
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return err
	}
	// Every pooled connection to :memory: would get its own database
	db.SetMaxOpenConns(1)

	// WAL mode allows simultaneous readers and writers
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return err
	}
	// Synchronous NORMAL is safe against app crashes, faster than FULL
	if _, err := db.Exec("PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return err
	}

	pinsQuery := `
	CREATE TABLE IF NOT EXISTS dock_pins (
		user TEXT NOT NULL,
		app_id TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (user, app_id)
	);
	`
	if _, err := db.Exec(pinsQuery); err != nil {
		db.Close()
		return err
	}

	settingsQuery := `
	CREATE TABLE IF NOT EXISTS settings (
		user TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (user, key)
	);
	`
	if _, err := db.Exec(settingsQuery); err != nil {
		db.Close()
		return err
	}

	d.conn = db
	debug.Log(debug.STORE, "opened preferences db at %s", dbPath)
	return nil
}

// Start serves requests until Close. Run it in its own goroutine.
func (d *DB) Start() {
	d.started.Store(true)
	defer close(d.done)

	for req := range d.RequestChan {
		debug.Log(debug.STORE, "%s user=%q", req.Op, req.User)
		var resp Response
		switch req.Op {
		case FetchPins:
			resp = d.handleFetchPins(req.User)
		case AddPin:
			resp = d.handleAddPin(req.User, req.App)
		case RemovePin:
			resp = d.handleRemovePin(req.User, req.App)
		case FetchSettings:
			resp = d.handleFetchSettings(req.User)
		case SaveSetting:
			resp = d.handleSaveSetting(req.User, req.Key, req.Value)
		default:
			continue
		}
		if req.Reply != nil {
			req.Reply <- resp
		} else {
			d.ResponseChan <- resp
		}
	}
}

func (d *DB) handleFetchPins(user string) Response {
	rows, err := d.conn.Query("SELECT app_id FROM dock_pins WHERE user = ? ORDER BY created_at ASC, rowid ASC", user)
	if err != nil {
		return Response{Op: FetchPins, User: user, Err: err}
	}
	defer rows.Close()

	var pins []string
	for rows.Next() {
		var app string
		if err := rows.Scan(&app); err == nil {
			pins = append(pins, app)
		}
	}
	return Response{Op: FetchPins, User: user, Pins: pins, Err: rows.Err()}
}

func (d *DB) handleAddPin(user, app string) Response {
	// Use INSERT OR IGNORE to handle duplicates gracefully
	if _, err := d.conn.Exec("INSERT OR IGNORE INTO dock_pins (user, app_id) VALUES (?, ?)", user, app); err != nil {
		debug.Error(debug.STORE, "add pin failed", "user", user, "app", app, "err", err)
		return Response{Op: AddPin, User: user, Err: err}
	}
	// Always answer with the fresh list
	resp := d.handleFetchPins(user)
	resp.Op = AddPin
	return resp
}

func (d *DB) handleRemovePin(user, app string) Response {
	if _, err := d.conn.Exec("DELETE FROM dock_pins WHERE user = ? AND app_id = ?", user, app); err != nil {
		debug.Error(debug.STORE, "remove pin failed", "user", user, "app", app, "err", err)
		return Response{Op: RemovePin, User: user, Err: err}
	}
	resp := d.handleFetchPins(user)
	resp.Op = RemovePin
	return resp
}

func (d *DB) handleFetchSettings(user string) Response {
	rows, err := d.conn.Query("SELECT key, value FROM settings WHERE user = ?", user)
	if err != nil {
		return Response{Op: FetchSettings, User: user, Err: err}
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err == nil {
			settings[key] = value
		}
	}
	return Response{Op: FetchSettings, User: user, Settings: settings, Err: rows.Err()}
}

func (d *DB) handleSaveSetting(user, key, value string) Response {
	// Use INSERT OR REPLACE to upsert the setting
	if _, err := d.conn.Exec("INSERT OR REPLACE INTO settings (user, key, value) VALUES (?, ?, ?)", user, key, value); err != nil {
		debug.Error(debug.STORE, "save setting failed", "user", user, "key", key, "err", err)
		return Response{Op: SaveSetting, User: user, Err: err}
	}
	resp := d.handleFetchSettings(user)
	resp.Op = SaveSetting
	return resp
}

// Do sends a request and waits for its reply.
func (d *DB) Do(ctx context.Context, req Request) (Response, error) {
	if d.closed.Load() {
		return Response{}, ErrClosed
	}
	req.Reply = make(chan Response, 1)
	select {
	case d.RequestChan <- req:
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
	select {
	case resp := <-req.Reply:
		return resp, resp.Err
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
}

// Close stops the request loop and closes the connection.
func (d *DB) Close() {
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.RequestChan)
		if d.started.Load() {
			<-d.done
		}
		if d.conn != nil {
			d.conn.Close()
		}
	})
}
