// Package store provides storage backends for IntakeDesk sessions.
//
// Three backends share one interface: SQLite for single-node deployments,
// PostgreSQL for shared deployments, and an in-memory store for tests.
// Sessions are persisted whole-row with last-writer-wins semantics.
package store

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/intakedesk/intakedesk/internal/models"
)

// Store defines the persistence operations the engine and API depend on.
// GetSession returns (nil, nil) when no session exists for the id; callers
// translate that into their own not-found error.
type Store interface {
	CreateSession(session *models.Session) error
	GetSession(id string) (*models.Session, error)
	SaveSession(session *models.Session) error
	ListSessions() ([]*models.Session, error)
	Close() error
}

// Opts holds configuration options for store implementations.
type Opts struct {
	DSN string
}

// Option defines a functional option for configuring a store.
type Option func(*Opts)

// WithSQLiteDSN sets the SQLite database file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithPostgresDSN sets the PostgreSQL connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// DetectDSNType classifies a DSN as "postgres" or "sqlite". Anything that
// does not look like a PostgreSQL connection string is treated as an SQLite
// file path.
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite"
}

// InMemoryStore is a map-backed session store for tests and development.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]*models.Session)}
}

// CreateSession stores a copy of the new session.
func (s *InMemoryStore) CreateSession(session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session.CreatedAt = time.Now().UTC()
	session.UpdatedAt = session.CreatedAt
	s.sessions[session.ID] = cloneSession(session)
	return nil
}

// GetSession returns a copy of the stored session, or (nil, nil) on miss.
func (s *InMemoryStore) GetSession(id string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	return cloneSession(session), nil
}

// SaveSession overwrites the stored session with a copy of the given one.
func (s *InMemoryStore) SaveSession(session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session.UpdatedAt = time.Now().UTC()
	s.sessions[session.ID] = cloneSession(session)
	return nil
}

// ListSessions returns copies of all stored sessions, newest first.
func (s *InMemoryStore) ListSessions() ([]*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sessions := make([]*models.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, cloneSession(session))
	}
	sortSessionsByUpdatedAt(sessions)
	return sessions, nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}

// cloneSession deep-copies a session so callers never share mutable state
// with the store.
func cloneSession(in *models.Session) *models.Session {
	out := *in
	out.VisitedPhases = make(map[models.Phase]bool, len(in.VisitedPhases))
	for k, v := range in.VisitedPhases {
		out.VisitedPhases[k] = v
	}
	out.Transcript = make([]models.Turn, len(in.Transcript))
	copy(out.Transcript, in.Transcript)
	return &out
}

// sortSessionsByUpdatedAt orders sessions most recently updated first.
func sortSessionsByUpdatedAt(sessions []*models.Session) {
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})
}
