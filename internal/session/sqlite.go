// This file implements an SQLite-backed session store.
package session

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	"github.com/Somati-x/stroyhub-bot/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the default permissions for database directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore persists sessions in a local SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite session store with the given DSN.
// The DSN should be a file path to the SQLite database file; the directory
// is created if it does not exist.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}

	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	slog.Debug("Running SQLite migrations")
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

// Get returns the stored session for the user, creating a fresh idle session
// if none exists.
func (s *SQLiteStore) Get(userID string) (models.Session, error) {
	if userID == "" {
		return models.Session{}, models.ErrEmptyUserID
	}

	query := `SELECT user_id, phase, step_index, answers, created_at, updated_at
			  FROM sessions WHERE user_id = ?`

	var sess models.Session
	var answersJSON sql.NullString
	err := s.db.QueryRow(query, userID).Scan(
		&sess.UserID, &sess.Phase, &sess.StepIndex, &answersJSON, &sess.CreatedAt, &sess.UpdatedAt)

	if err == sql.ErrNoRows {
		sess = models.NewSession(userID)
		if saveErr := s.Save(sess); saveErr != nil {
			slog.Error("SQLiteStore Get failed to persist fresh session", "error", saveErr, "userID", userID)
			return models.Session{}, saveErr
		}
		slog.Debug("SQLiteStore created fresh session", "userID", userID)
		return sess, nil
	}
	if err != nil {
		slog.Error("SQLiteStore Get failed", "error", err, "userID", userID)
		return models.Session{}, fmt.Errorf("failed to query session for %s: %w", userID, err)
	}

	if !models.IsValidPhase(sess.Phase) {
		slog.Warn("SQLiteStore found unknown phase, resetting session", "userID", userID, "phase", sess.Phase)
		sess = models.NewSession(userID)
		if saveErr := s.Save(sess); saveErr != nil {
			return models.Session{}, saveErr
		}
		return sess, nil
	}

	sess.Answers = decodeAnswers(answersJSON.String, userID)
	slog.Debug("SQLiteStore Get succeeded", "userID", userID, "phase", sess.Phase, "stepIndex", sess.StepIndex)
	return sess, nil
}

// Save atomically replaces the stored session.
func (s *SQLiteStore) Save(sess models.Session) error {
	if sess.UserID == "" {
		return models.ErrEmptyUserID
	}

	answersJSON, err := encodeAnswers(sess.Answers)
	if err != nil {
		slog.Error("SQLiteStore Save JSON marshal failed", "error", err, "userID", sess.UserID)
		return err
	}

	query := `
		INSERT OR REPLACE INTO sessions (user_id, phase, step_index, answers, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err = s.db.Exec(query, sess.UserID, sess.Phase, sess.StepIndex, answersJSON, sess.CreatedAt, sess.UpdatedAt)
	if err != nil {
		slog.Error("SQLiteStore Save failed", "error", err, "userID", sess.UserID)
		return fmt.Errorf("failed to save session for %s: %w", sess.UserID, err)
	}
	slog.Debug("SQLiteStore Save succeeded", "userID", sess.UserID, "phase", sess.Phase, "stepIndex", sess.StepIndex)
	return nil
}

// Clear resets the user's session to a fresh idle one.
func (s *SQLiteStore) Clear(userID string) error {
	if userID == "" {
		return models.ErrEmptyUserID
	}
	return s.Save(models.NewSession(userID))
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	slog.Debug("Closing SQLite database connection")
	return s.db.Close()
}

// encodeAnswers serializes the answers map for a nullable text column.
func encodeAnswers(answers map[string]string) (string, error) {
	if len(answers) == 0 {
		return "", nil
	}
	jsonBytes, err := json.Marshal(answers)
	if err != nil {
		return "", err
	}
	return string(jsonBytes), nil
}

// decodeAnswers parses the answers column, falling back to an empty map on
// corrupt data rather than failing the whole lookup.
func decodeAnswers(answersJSON, userID string) map[string]string {
	answers := make(map[string]string)
	if answersJSON == "" {
		return answers
	}
	if err := json.Unmarshal([]byte(answersJSON), &answers); err != nil {
		slog.Error("Session answers JSON unmarshal failed", "error", err, "userID", userID)
		return make(map[string]string)
	}
	return answers
}
