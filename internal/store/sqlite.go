// Package store provides storage backends for IntakeDesk sessions.
//
// This file implements the SQLite-backed store.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "embed"

	"github.com/intakedesk/intakedesk/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the default permissions for database directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("SQLiteStore.New: creating store", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("SQLiteStore.New: failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("SQLiteStore.New: failed to open connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLiteStore.New: ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("SQLiteStore.New: failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLiteStore.New: migrations applied")

	return &SQLiteStore{db: db}, nil
}

const sqliteSessionColumns = `id, ui_language, user_language, phase, phase_step_count, visited_phases,
	ready_announced, chat_started, transcript, contact, summary,
	summary_confirmed, special_topic_notes, business_plan_text, created_at, updated_at`

// CreateSession inserts a new session row.
func (s *SQLiteStore) CreateSession(session *models.Session) error {
	row, err := marshalSessionJSON(session)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now

	_, err = s.db.Exec(`INSERT INTO sessions (`+sqliteSessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID, session.UILanguage, session.UserLanguage, session.Phase, session.PhaseStepCount,
		row.visitedJSON, session.ReadyAnnounced, session.ChatStarted,
		row.transcriptJSON, row.contactJSON, row.summaryJSON,
		session.SummaryConfirmed, nilIfEmpty(session.SpecialTopicNotes), nilIfEmpty(session.BusinessPlanText),
		session.CreatedAt, session.UpdatedAt,
	)
	if err != nil {
		slog.Error("SQLiteStore.CreateSession failed", "error", err, "sessionID", session.ID)
		return fmt.Errorf("failed to insert session %s: %w", session.ID, err)
	}
	slog.Debug("SQLiteStore.CreateSession succeeded", "sessionID", session.ID)
	return nil
}

// GetSession loads a session by id, returning (nil, nil) when absent.
func (s *SQLiteStore) GetSession(id string) (*models.Session, error) {
	dbRow := s.db.QueryRow(`SELECT `+sqliteSessionColumns+` FROM sessions WHERE id = ?`, id)
	session, err := scanSession(dbRow)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore.GetSession failed", "error", err, "sessionID", id)
		return nil, fmt.Errorf("failed to get session %s: %w", id, err)
	}
	return session, nil
}

// SaveSession overwrites the full session row.
func (s *SQLiteStore) SaveSession(session *models.Session) error {
	row, err := marshalSessionJSON(session)
	if err != nil {
		return err
	}
	session.UpdatedAt = time.Now().UTC()

	_, err = s.db.Exec(`UPDATE sessions SET
		ui_language = ?, user_language = ?, phase = ?, phase_step_count = ?, visited_phases = ?,
		ready_announced = ?, chat_started = ?, transcript = ?, contact = ?, summary = ?,
		summary_confirmed = ?, special_topic_notes = ?, business_plan_text = ?, updated_at = ?
		WHERE id = ?`,
		session.UILanguage, session.UserLanguage, session.Phase, session.PhaseStepCount, row.visitedJSON,
		session.ReadyAnnounced, session.ChatStarted, row.transcriptJSON, row.contactJSON, row.summaryJSON,
		session.SummaryConfirmed, nilIfEmpty(session.SpecialTopicNotes), nilIfEmpty(session.BusinessPlanText),
		session.UpdatedAt, session.ID,
	)
	if err != nil {
		slog.Error("SQLiteStore.SaveSession failed", "error", err, "sessionID", session.ID)
		return fmt.Errorf("failed to save session %s: %w", session.ID, err)
	}
	slog.Debug("SQLiteStore.SaveSession succeeded", "sessionID", session.ID, "phase", session.Phase)
	return nil
}

// ListSessions returns all sessions, most recently updated first.
func (s *SQLiteStore) ListSessions() ([]*models.Session, error) {
	rows, err := s.db.Query(`SELECT ` + sqliteSessionColumns + ` FROM sessions ORDER BY updated_at DESC`)
	if err != nil {
		slog.Error("SQLiteStore.ListSessions query failed", "error", err)
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			slog.Error("SQLiteStore.ListSessions scan failed", "error", err)
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate session rows: %w", err)
	}
	slog.Debug("SQLiteStore.ListSessions succeeded", "count", len(sessions))
	return sessions, nil
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
