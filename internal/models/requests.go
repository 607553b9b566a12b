// Package models defines API request payloads and their validation.
package models

// StartSessionRequest is the payload for creating a new intake session.
type StartSessionRequest struct {
	UILanguage   string `json:"ui_language"`
	UserLanguage string `json:"user_language,omitempty"`
}

// Validate checks a session start request.
func (r *StartSessionRequest) Validate() error {
	if r.UILanguage == "" {
		return ErrMissingUILanguage
	}
	return nil
}

// ChatRequest is the payload for submitting one user turn.
type ChatRequest struct {
	SessionID    string `json:"session_id,omitempty"`
	Message      string `json:"message"`
	UILanguage   string `json:"ui_language,omitempty"`
	UserLanguage string `json:"user_language,omitempty"`
}

// Validate checks a chat request. The session id may be empty, in which
// case a session is created on first use and the ui language is required.
func (r *ChatRequest) Validate() error {
	if r.Message == "" {
		return ErrEmptyMessage
	}
	if r.SessionID == "" && r.UILanguage == "" {
		return ErrMissingUILanguage
	}
	return nil
}

// ContactRequest is the payload for saving the contact record.
type ContactRequest struct {
	SessionID string `json:"session_id"`
	ContactRecord
}

// Validate checks a contact submission.
func (r *ContactRequest) Validate() error {
	if r.SessionID == "" {
		return ErrMissingSessionID
	}
	return r.ContactRecord.Validate()
}

// SummaryRequest is the payload for requesting summary generation.
type SummaryRequest struct {
	SessionID string `json:"session_id"`
}

// Validate checks a summary request.
func (r *SummaryRequest) Validate() error {
	if r.SessionID == "" {
		return ErrMissingSessionID
	}
	return nil
}

// SummaryConfirmRequest is the payload for confirming an edited summary.
type SummaryConfirmRequest struct {
	SessionID string `json:"session_id"`
	AdvisorSummary
}

// Validate checks a summary confirmation.
func (r *SummaryConfirmRequest) Validate() error {
	if r.SessionID == "" {
		return ErrMissingSessionID
	}
	return nil
}

// TranslateThreadRequest is the payload for translating a message thread.
type TranslateThreadRequest struct {
	TargetLanguage string `json:"target_language"`
	Messages       []Turn `json:"messages"`
}

// Validate checks a thread translation request.
func (r *TranslateThreadRequest) Validate() error {
	if r.TargetLanguage == "" {
		return ErrMissingTargetLang
	}
	for _, m := range r.Messages {
		if !IsValidTurnRole(m.Role) {
			return &ValidationError{Field: "messages", Reason: "unsupported role " + string(m.Role)}
		}
	}
	return nil
}
