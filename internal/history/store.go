package history

import (
	"context"
	"errors"
	"strings"
	"time"

	logx "bdaybot/pkg/logx"
)

var ErrDisabled = errors.New("history disabled")

// Config configures the run journal.
//
// Driver values:
//   - "sqlite": SQLite database file
//
// If Driver is empty or "none", the journal is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // 0 means driver default
}

// Entry records one pipeline run.
type Entry struct {
	RunID         string    `json:"run_id"`
	At            time.Time `json:"at"`
	Status        string    `json:"status"`
	Reason        string    `json:"reason,omitempty"`
	Detail        string    `json:"detail,omitempty"`
	Birthdays     int       `json:"birthdays"`
	Anniversaries int       `json:"anniversaries"`
}

// Store is the minimal journal API used by the app and the status server.
type Store interface {
	Append(ctx context.Context, e Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
	Close() error
}

// Open initializes the configured store.
// It returns (nil, nil) if the journal is disabled.
func Open(cfg Config, log logx.Logger) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" || driver == "none" {
		return nil, nil
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	switch driver {
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, errors.New("unknown history driver: " + driver)
	}
}
