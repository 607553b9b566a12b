package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/intakedesk/intakedesk/internal/models"
)

// sessionRow is the flat column set shared by the SQLite and Postgres
// backends. Structured fields travel as JSON text columns.
type sessionRow struct {
	visitedJSON    string
	transcriptJSON string
	contactJSON    string
	summaryJSON    string
}

// marshalSessionJSON encodes the structured session fields for storage.
func marshalSessionJSON(s *models.Session) (sessionRow, error) {
	var row sessionRow

	visited, err := json.Marshal(s.VisitedPhases)
	if err != nil {
		return row, fmt.Errorf("failed to encode visited phases: %w", err)
	}
	transcript, err := json.Marshal(s.Transcript)
	if err != nil {
		return row, fmt.Errorf("failed to encode transcript: %w", err)
	}
	contact, err := json.Marshal(s.Contact)
	if err != nil {
		return row, fmt.Errorf("failed to encode contact: %w", err)
	}
	summary, err := json.Marshal(s.Summary)
	if err != nil {
		return row, fmt.Errorf("failed to encode summary: %w", err)
	}

	row.visitedJSON = string(visited)
	row.transcriptJSON = string(transcript)
	row.contactJSON = string(contact)
	row.summaryJSON = string(summary)
	return row, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanSession reads one session row in the canonical column order:
// id, ui_language, user_language, phase, phase_step_count, visited_phases,
// ready_announced, chat_started, transcript, contact, summary,
// summary_confirmed, special_topic_notes, business_plan_text, created_at,
// updated_at.
func scanSession(scanner rowScanner) (*models.Session, error) {
	var s models.Session
	var row sessionRow
	var specialTopicNotes sql.NullString
	var businessPlanText sql.NullString

	err := scanner.Scan(
		&s.ID, &s.UILanguage, &s.UserLanguage, &s.Phase, &s.PhaseStepCount,
		&row.visitedJSON, &s.ReadyAnnounced, &s.ChatStarted,
		&row.transcriptJSON, &row.contactJSON, &row.summaryJSON,
		&s.SummaryConfirmed, &specialTopicNotes, &businessPlanText, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.SpecialTopicNotes = specialTopicNotes.String
	s.BusinessPlanText = businessPlanText.String

	if err := json.Unmarshal([]byte(row.visitedJSON), &s.VisitedPhases); err != nil {
		return nil, fmt.Errorf("failed to decode visited phases: %w", err)
	}
	if err := json.Unmarshal([]byte(row.transcriptJSON), &s.Transcript); err != nil {
		return nil, fmt.Errorf("failed to decode transcript: %w", err)
	}
	if err := json.Unmarshal([]byte(row.contactJSON), &s.Contact); err != nil {
		return nil, fmt.Errorf("failed to decode contact: %w", err)
	}
	if err := json.Unmarshal([]byte(row.summaryJSON), &s.Summary); err != nil {
		return nil, fmt.Errorf("failed to decode summary: %w", err)
	}
	if s.VisitedPhases == nil {
		s.VisitedPhases = models.NewVisitedPhases()
	}
	return &s, nil
}

// nilIfEmpty returns nil if s is empty, otherwise returns s.
// Used for nullable database columns.
func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
