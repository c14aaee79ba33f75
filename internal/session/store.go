// Package session provides storage backends for per-user wizard sessions.
//
// A Store keeps exactly one session per user with get-or-create and atomic
// replace semantics. Backends include in-memory, SQLite and PostgreSQL; the
// wizard engine does not care which one it talks to.
package session

import (
	"log/slog"
	"strings"

	"github.com/Somati-x/stroyhub-bot/internal/models"
)

// Store is the per-user session storage contract consumed by the wizard
// engine. Get never fails with "not found": a fresh idle session is created
// on first access.
type Store interface {
	// Get returns the session for the given user, creating a fresh idle
	// session if none exists.
	Get(userID string) (models.Session, error)
	// Save atomically replaces the stored session for session.UserID.
	Save(session models.Session) error
	// Clear resets the user's session to a fresh idle one.
	Clear(userID string) error
	// Close releases backend resources.
	Close() error
}

// Opts holds configuration options for session stores.
type Opts struct {
	DSN string
}

// Option defines a configuration option for session stores.
type Option func(*Opts)

// WithSQLiteDSN sets the SQLite database file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) {
		o.DSN = dsn
	}
}

// WithPostgresDSN sets the PostgreSQL connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) {
		o.DSN = dsn
	}
}

// DetectDSNType reports "postgres" for PostgreSQL-style connection strings
// and "sqlite3" for anything else (treated as a file path).
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite3"
}

// NewStore builds a session store from options: Postgres or SQLite when a DSN
// is configured (auto-detected), in-memory otherwise.
func NewStore(opts ...Option) (Store, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		slog.Debug("No session DSN configured, using in-memory store")
		return NewInMemoryStore(), nil
	}
	if DetectDSNType(cfg.DSN) == "postgres" {
		slog.Debug("Detected PostgreSQL DSN, configuring Postgres session store")
		return NewPostgresStore(opts...)
	}
	slog.Debug("Detected SQLite DSN, configuring SQLite session store", "db_path", cfg.DSN)
	return NewSQLiteStore(opts...)
}
