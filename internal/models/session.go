// Package models defines the session aggregate and related structures for IntakeDesk.
package models

import (
	"errors"
	"regexp"
	"time"
)

// Error variables for better error handling and testability
var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrEmptyTranscript   = errors.New("transcript is empty")
	ErrNoExtractableText = errors.New("could not extract text from uploaded files")
	ErrEmptyMessage      = errors.New("message cannot be empty")
	ErrMissingUILanguage = errors.New("ui language is required")
	ErrMissingTargetLang = errors.New("target language is required")
	ErrNoDocumentsGiven  = errors.New("at least one file is required")
	ErrMissingSessionID  = errors.New("session id is required")
)

// emailPattern is the basic address check used by the contact gate:
// at least one non-whitespace character before "@", between "@" and ".",
// and after the final ".".
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// dateOfBirthLayout is the accepted date format for contact submissions.
const dateOfBirthLayout = "2006-01-02"

// MinPhoneLength is the minimum accepted length for a contact phone number.
const MinPhoneLength = 5

// ContactRecord holds the participant details required before a summary
// can be finalized. Individual fields are optional until submission.
type ContactRecord struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	DateOfBirth  string `json:"date_of_birth"` // YYYY-MM-DD
	Municipality string `json:"municipality"`
}

// Complete reports whether every contact field is populated and the email
// address passes the basic pattern check.
func (c ContactRecord) Complete() bool {
	if c.FirstName == "" || c.LastName == "" || c.Email == "" ||
		c.Phone == "" || c.DateOfBirth == "" || c.Municipality == "" {
		return false
	}
	return emailPattern.MatchString(c.Email)
}

// Validate checks a contact submission. All fields are required and must
// be well-formed; the first failing field is reported.
func (c ContactRecord) Validate() error {
	if c.FirstName == "" {
		return &ValidationError{Field: "first_name", Reason: "required"}
	}
	if c.LastName == "" {
		return &ValidationError{Field: "last_name", Reason: "required"}
	}
	if c.Email == "" {
		return &ValidationError{Field: "email", Reason: "required"}
	}
	if !emailPattern.MatchString(c.Email) {
		return &ValidationError{Field: "email", Reason: "invalid email address"}
	}
	if len(c.Phone) < MinPhoneLength {
		return &ValidationError{Field: "phone", Reason: "too short"}
	}
	if c.DateOfBirth == "" {
		return &ValidationError{Field: "date_of_birth", Reason: "required"}
	}
	if _, err := time.Parse(dateOfBirthLayout, c.DateOfBirth); err != nil {
		return &ValidationError{Field: "date_of_birth", Reason: "must be YYYY-MM-DD"}
	}
	if c.Municipality == "" {
		return &ValidationError{Field: "municipality", Reason: "required"}
	}
	return nil
}

// ValidationError describes a rejected input field. Validation failures are
// terminal for the call; no collaborator is invoked and no state changes.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Reason
}

// AdvisorSummary is the structured one-page summary produced for a business
// advisor. All seven fields are always present as strings; when information
// is absent the model fills in explanatory placeholder text.
type AdvisorSummary struct {
	WhatSell               string `json:"what_sell"`
	ToWhom                 string `json:"to_whom"`
	How                    string `json:"how"`
	CompanyFormSuggestion  string `json:"company_form_suggestion"`
	CompanyFormReasoning   string `json:"company_form_reasoning"`
	KeyQuestionsForAdvisor string `json:"key_questions_for_advisor"`
	SpecialTopics          string `json:"special_topics"`
}

// DocumentAssessment is the sufficiency verdict over uploaded documents.
type DocumentAssessment struct {
	HasEnoughInfo    bool     `json:"has_enough_info"`
	AssistantSummary string   `json:"assistant_summary"`
	MissingTopics    []string `json:"missing_topics"`
}

// ExtractedDocument is the best-effort plain-text extraction of one
// uploaded file. Text is empty when extraction failed.
type ExtractedDocument struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// Session is the aggregate root for one intake interview. It is owned and
// mutated by a single control flow; persistence is whole-row with
// last-writer-wins semantics.
type Session struct {
	ID           string `json:"id"`
	UILanguage   string `json:"ui_language"`
	UserLanguage string `json:"user_language"`

	// Progression state
	Phase          Phase          `json:"phase"`
	PhaseStepCount int            `json:"phase_step_count"`
	VisitedPhases  map[Phase]bool `json:"visited_phases"`
	ReadyAnnounced bool           `json:"ready_announced"`
	ChatStarted    bool           `json:"chat_started"`

	Transcript []Turn `json:"transcript"`

	Contact          ContactRecord  `json:"contact"`
	Summary          AdvisorSummary `json:"summary"`
	SummaryConfirmed bool           `json:"summary_confirmed"`

	// Notes gathered during the interview for the advisor, one per line.
	// They are merged into every generated summary but kept separate from
	// it, so regenerating a summary never duplicates them.
	SpecialTopicNotes string `json:"special_topic_notes,omitempty"`

	// Combined plain text extracted from uploaded business-plan documents.
	BusinessPlanText string `json:"business_plan_text,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewVisitedPhases returns the initial visited-phase set: the interview
// starts in BASICS, so only BASICS is marked visited.
func NewVisitedPhases() map[Phase]bool {
	return map[Phase]bool{
		PhaseBasics:  true,
		PhaseIdea:    false,
		PhaseHow:     false,
		PhaseMoney:   false,
		PhaseSpecial: false,
		PhaseContact: false,
	}
}

// LastAssistantTurn returns the most recent assistant turn, or nil when the
// transcript has none.
func (s *Session) LastAssistantTurn() *Turn {
	for i := len(s.Transcript) - 1; i >= 0; i-- {
		if s.Transcript[i].Role == RoleAssistant {
			return &s.Transcript[i]
		}
	}
	return nil
}
