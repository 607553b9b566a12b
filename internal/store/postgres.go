// Package store provides storage backends for IntakeDesk sessions.
//
// This file implements the PostgreSQL-backed store.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/intakedesk/intakedesk/internal/models"
	_ "github.com/lib/pq"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

type PostgresStore struct {
	db *sql.DB
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("PostgresStore.New: creating store", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("PostgresStore.New: failed to open connection", "error", err)
		return nil, err
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("PostgresStore.New: ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("PostgresStore.New: failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("PostgresStore.New: migrations applied")

	return &PostgresStore{db: db}, nil
}

const postgresSessionColumns = `id, ui_language, user_language, phase, phase_step_count, visited_phases,
	ready_announced, chat_started, transcript, contact, summary,
	summary_confirmed, special_topic_notes, business_plan_text, created_at, updated_at`

// CreateSession inserts a new session row.
func (s *PostgresStore) CreateSession(session *models.Session) error {
	row, err := marshalSessionJSON(session)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now

	_, err = s.db.Exec(`INSERT INTO sessions (`+postgresSessionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		session.ID, session.UILanguage, session.UserLanguage, session.Phase, session.PhaseStepCount,
		row.visitedJSON, session.ReadyAnnounced, session.ChatStarted,
		row.transcriptJSON, row.contactJSON, row.summaryJSON,
		session.SummaryConfirmed, nilIfEmpty(session.SpecialTopicNotes), nilIfEmpty(session.BusinessPlanText),
		session.CreatedAt, session.UpdatedAt,
	)
	if err != nil {
		slog.Error("PostgresStore.CreateSession failed", "error", err, "sessionID", session.ID)
		return fmt.Errorf("failed to insert session %s: %w", session.ID, err)
	}
	slog.Debug("PostgresStore.CreateSession succeeded", "sessionID", session.ID)
	return nil
}

// GetSession loads a session by id, returning (nil, nil) when absent.
func (s *PostgresStore) GetSession(id string) (*models.Session, error) {
	dbRow := s.db.QueryRow(`SELECT `+postgresSessionColumns+` FROM sessions WHERE id = $1`, id)
	session, err := scanSession(dbRow)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore.GetSession failed", "error", err, "sessionID", id)
		return nil, fmt.Errorf("failed to get session %s: %w", id, err)
	}
	return session, nil
}

// SaveSession overwrites the full session row.
func (s *PostgresStore) SaveSession(session *models.Session) error {
	row, err := marshalSessionJSON(session)
	if err != nil {
		return err
	}
	session.UpdatedAt = time.Now().UTC()

	_, err = s.db.Exec(`UPDATE sessions SET
		ui_language = $1, user_language = $2, phase = $3, phase_step_count = $4, visited_phases = $5,
		ready_announced = $6, chat_started = $7, transcript = $8, contact = $9, summary = $10,
		summary_confirmed = $11, special_topic_notes = $12, business_plan_text = $13, updated_at = $14
		WHERE id = $15`,
		session.UILanguage, session.UserLanguage, session.Phase, session.PhaseStepCount, row.visitedJSON,
		session.ReadyAnnounced, session.ChatStarted, row.transcriptJSON, row.contactJSON, row.summaryJSON,
		session.SummaryConfirmed, nilIfEmpty(session.SpecialTopicNotes), nilIfEmpty(session.BusinessPlanText),
		session.UpdatedAt, session.ID,
	)
	if err != nil {
		slog.Error("PostgresStore.SaveSession failed", "error", err, "sessionID", session.ID)
		return fmt.Errorf("failed to save session %s: %w", session.ID, err)
	}
	slog.Debug("PostgresStore.SaveSession succeeded", "sessionID", session.ID, "phase", session.Phase)
	return nil
}

// ListSessions returns all sessions, most recently updated first.
func (s *PostgresStore) ListSessions() ([]*models.Session, error) {
	rows, err := s.db.Query(`SELECT ` + postgresSessionColumns + ` FROM sessions ORDER BY updated_at DESC`)
	if err != nil {
		slog.Error("PostgresStore.ListSessions query failed", "error", err)
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			slog.Error("PostgresStore.ListSessions scan failed", "error", err)
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate session rows: %w", err)
	}
	slog.Debug("PostgresStore.ListSessions succeeded", "count", len(sessions))
	return sessions, nil
}

// Close closes the underlying database handle.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
