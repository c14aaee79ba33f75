// This file implements a PostgreSQL-backed session store.
package session

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/Somati-x/stroyhub-bot/internal/models"
	_ "github.com/lib/pq"
)

// Database connection pool configuration constants.
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database.
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool.
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused.
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresStore persists sessions in a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres session store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewPostgresStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	slog.Debug("Running Postgres migrations")
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres migrations applied successfully")

	return &PostgresStore{db: db}, nil
}

// Get returns the stored session for the user, creating a fresh idle session
// if none exists.
func (s *PostgresStore) Get(userID string) (models.Session, error) {
	if userID == "" {
		return models.Session{}, models.ErrEmptyUserID
	}

	query := `SELECT user_id, phase, step_index, answers, created_at, updated_at
			  FROM sessions WHERE user_id = $1`

	var sess models.Session
	var answersJSON sql.NullString
	err := s.db.QueryRow(query, userID).Scan(
		&sess.UserID, &sess.Phase, &sess.StepIndex, &answersJSON, &sess.CreatedAt, &sess.UpdatedAt)

	if err == sql.ErrNoRows {
		sess = models.NewSession(userID)
		if saveErr := s.Save(sess); saveErr != nil {
			slog.Error("PostgresStore Get failed to persist fresh session", "error", saveErr, "userID", userID)
			return models.Session{}, saveErr
		}
		slog.Debug("PostgresStore created fresh session", "userID", userID)
		return sess, nil
	}
	if err != nil {
		slog.Error("PostgresStore Get failed", "error", err, "userID", userID)
		return models.Session{}, fmt.Errorf("failed to query session for %s: %w", userID, err)
	}

	if !models.IsValidPhase(sess.Phase) {
		slog.Warn("PostgresStore found unknown phase, resetting session", "userID", userID, "phase", sess.Phase)
		sess = models.NewSession(userID)
		if saveErr := s.Save(sess); saveErr != nil {
			return models.Session{}, saveErr
		}
		return sess, nil
	}

	sess.Answers = decodeAnswers(answersJSON.String, userID)
	slog.Debug("PostgresStore Get succeeded", "userID", userID, "phase", sess.Phase, "stepIndex", sess.StepIndex)
	return sess, nil
}

// Save atomically replaces the stored session.
func (s *PostgresStore) Save(sess models.Session) error {
	if sess.UserID == "" {
		return models.ErrEmptyUserID
	}

	answersJSON, err := encodeAnswers(sess.Answers)
	if err != nil {
		slog.Error("PostgresStore Save JSON marshal failed", "error", err, "userID", sess.UserID)
		return err
	}

	query := `
		INSERT INTO sessions (user_id, phase, step_index, answers, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			phase = EXCLUDED.phase,
			step_index = EXCLUDED.step_index,
			answers = EXCLUDED.answers,
			updated_at = EXCLUDED.updated_at`
	_, err = s.db.Exec(query, sess.UserID, sess.Phase, sess.StepIndex, nilIfEmpty(answersJSON), sess.CreatedAt, sess.UpdatedAt)
	if err != nil {
		slog.Error("PostgresStore Save failed", "error", err, "userID", sess.UserID)
		return fmt.Errorf("failed to save session for %s: %w", sess.UserID, err)
	}
	slog.Debug("PostgresStore Save succeeded", "userID", sess.UserID, "phase", sess.Phase, "stepIndex", sess.StepIndex)
	return nil
}

// Clear resets the user's session to a fresh idle one.
func (s *PostgresStore) Clear(userID string) error {
	if userID == "" {
		return models.ErrEmptyUserID
	}
	return s.Save(models.NewSession(userID))
}

// Close closes the Postgres database connection.
func (s *PostgresStore) Close() error {
	slog.Debug("Closing Postgres database connection")
	return s.db.Close()
}

// nilIfEmpty returns nil if s is empty, otherwise returns s.
// Used for nullable database columns.
func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
