package flow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/intakedesk/intakedesk/internal/genai"
	"github.com/intakedesk/intakedesk/internal/i18n"
	"github.com/intakedesk/intakedesk/internal/models"
	"github.com/intakedesk/intakedesk/internal/store"
)

// Notifier sends out-of-band notifications to participants. It is optional;
// a nil notifier disables notifications without affecting engine behavior.
type Notifier interface {
	SendSummaryReady(ctx context.Context, to, language string) error
}

// Engine owns all session state transitions. Handlers decode requests and
// call exactly one engine operation; the engine mutates the session in
// memory and persists it once per operation, only after every collaborator
// call has succeeded.
type Engine struct {
	st       store.Store
	ai       genai.ClientInterface
	notifier Notifier
}

// EngineOption configures optional engine collaborators.
type EngineOption func(*Engine)

// WithNotifier attaches a notifier for summary confirmation messages.
func WithNotifier(n Notifier) EngineOption {
	return func(e *Engine) { e.notifier = n }
}

// NewEngine creates a session engine over the given store and generation
// client.
func NewEngine(st store.Store, ai genai.ClientInterface, opts ...EngineOption) *Engine {
	e := &Engine{st: st, ai: ai}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// StartSession creates a new session in the BASICS phase with a zero step
// count and only BASICS marked visited.
func (e *Engine) StartSession(ctx context.Context, uiLanguage, userLanguage string) (*models.Session, error) {
	if userLanguage == "" {
		userLanguage = uiLanguage
	}
	session := &models.Session{
		ID:            uuid.New().String(),
		UILanguage:    uiLanguage,
		UserLanguage:  userLanguage,
		Phase:         models.PhaseBasics,
		VisitedPhases: models.NewVisitedPhases(),
	}
	if err := e.st.CreateSession(session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	slog.Info("Engine.StartSession: session created", "sessionID", session.ID, "uiLanguage", uiLanguage)
	return session, nil
}

// SubmitUserTurn appends one user turn, generates the assistant reply, and
// applies phase progression: step counting with auto-advance, then the
// readiness check. When no session id is given a session is created first,
// so the chat endpoint works without a separate start call.
//
// State is mutated in memory and persisted once at the end; a failed
// generation call leaves the stored session untouched.
func (e *Engine) SubmitUserTurn(ctx context.Context, sessionID, message, uiLanguage, userLanguage string) (*models.Session, error) {
	var session *models.Session
	created := false
	if sessionID == "" {
		created = true
		session = &models.Session{
			ID:            uuid.New().String(),
			UILanguage:    uiLanguage,
			UserLanguage:  userLanguage,
			Phase:         models.PhaseBasics,
			VisitedPhases: models.NewVisitedPhases(),
		}
		if session.UserLanguage == "" {
			session.UserLanguage = uiLanguage
		}
	} else {
		var err error
		session, err = e.loadSession(sessionID)
		if err != nil {
			return nil, err
		}
	}

	// The first user message in BASICS answers the registration-status
	// question; record it for the advisor so the summary never loses it.
	if session.Phase == models.PhaseBasics && !session.ChatStarted {
		appendSpecialTopic(session, "Company registration status: "+message)
	}
	session.ChatStarted = true
	session.Transcript = append(session.Transcript, models.Turn{Role: models.RoleUser, Content: message})

	reply, err := e.ai.GenerateChat(ctx, session.UserLanguage, session.UILanguage, session.Phase, session.Transcript, session.BusinessPlanText)
	if err != nil {
		return nil, err
	}
	session.Transcript = append(session.Transcript, models.Turn{Role: models.RoleAssistant, Content: reply})

	e.advanceOnAssistantTurn(session)
	e.evaluateReadiness(session)

	if err := e.persist(session, created); err != nil {
		return nil, err
	}
	slog.Debug("Engine.SubmitUserTurn: turn processed",
		"sessionID", session.ID, "phase", session.Phase, "stepCount", session.PhaseStepCount,
		"readyAnnounced", session.ReadyAnnounced)
	return session, nil
}

// UploadDocuments attaches extracted document text to the session and,
// when the chat has not started yet, applies the document shortcut: plans
// that already cover the key topics jump the interview to SPECIAL, thin
// plans start a guided BASICS interview instead.
//
// Extraction is best effort per file; the upload fails only when no file
// yielded any text.
func (e *Engine) UploadDocuments(ctx context.Context, sessionID string, docs []models.ExtractedDocument, uiLanguage, userLanguage string) (*models.Session, error) {
	if len(docs) == 0 {
		return nil, models.ErrNoDocumentsGiven
	}

	var session *models.Session
	created := false
	if sessionID == "" {
		created = true
		session = &models.Session{
			ID:            uuid.New().String(),
			UILanguage:    uiLanguage,
			UserLanguage:  userLanguage,
			Phase:         models.PhaseBasics,
			VisitedPhases: models.NewVisitedPhases(),
		}
		if session.UserLanguage == "" {
			session.UserLanguage = uiLanguage
		}
	} else {
		var err error
		session, err = e.loadSession(sessionID)
		if err != nil {
			return nil, err
		}
	}

	combined := combineDocuments(docs)
	if combined == "" {
		return nil, models.ErrNoExtractableText
	}
	if session.BusinessPlanText != "" {
		session.BusinessPlanText += "\n\n" + combined
	} else {
		session.BusinessPlanText = combined
	}

	insight, err := e.ai.DocumentInsight(ctx, session.UILanguage, combined)
	if err != nil {
		return nil, err
	}

	if session.ChatStarted {
		// Mid-interview uploads only enrich the context; progression
		// state is left alone.
		session.Transcript = append(session.Transcript, models.Turn{Role: models.RoleAssistant, Content: insight})
		if err := e.persist(session, created); err != nil {
			return nil, err
		}
		return session, nil
	}

	assessment, err := e.ai.AssessDocuments(ctx, session.UILanguage, combined)
	if err != nil {
		return nil, err
	}

	session.Transcript = append(session.Transcript, models.Turn{Role: models.RoleAssistant, Content: insight})
	if assessment.HasEnoughInfo {
		session.Phase = models.PhaseSpecial
		session.PhaseStepCount = 0
		session.ReadyAnnounced = true
		for _, p := range phaseOrder {
			session.VisitedPhases[p] = true
			if p == models.PhaseSpecial {
				break
			}
		}
		session.Transcript = append(session.Transcript, models.Turn{
			Role:    models.RoleAssistant,
			Content: i18n.Lookup(session.UILanguage, i18n.KeyDocsWorriesQuestion),
		})
	} else {
		session.Phase = models.PhaseBasics
		session.PhaseStepCount = 1
		session.Transcript = append(session.Transcript,
			models.Turn{Role: models.RoleAssistant, Content: i18n.Lookup(session.UILanguage, i18n.KeyDocsClarify)},
			models.Turn{Role: models.RoleAssistant, Content: i18n.Lookup(session.UILanguage, i18n.KeyOnboardingQuestion)},
		)
	}
	session.ChatStarted = true

	if err := e.persist(session, created); err != nil {
		return nil, err
	}
	slog.Info("Engine.UploadDocuments: documents processed",
		"sessionID", session.ID, "hasEnoughInfo", assessment.HasEnoughInfo, "phase", session.Phase)
	return session, nil
}

// GetSession loads a session by id.
func (e *Engine) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	return e.loadSession(sessionID)
}

// GetContact returns the stored contact record and whether it is complete.
func (e *Engine) GetContact(ctx context.Context, sessionID string) (models.ContactRecord, bool, error) {
	session, err := e.loadSession(sessionID)
	if err != nil {
		return models.ContactRecord{}, false, err
	}
	return session.Contact, session.Contact.Complete(), nil
}

// SubmitContact stores a validated contact record on the session.
func (e *Engine) SubmitContact(ctx context.Context, sessionID string, contact models.ContactRecord) (*models.Session, error) {
	if err := contact.Validate(); err != nil {
		return nil, err
	}
	session, err := e.loadSession(sessionID)
	if err != nil {
		return nil, err
	}
	session.Contact = contact
	if err := e.st.SaveSession(session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	slog.Info("Engine.SubmitContact: contact saved", "sessionID", sessionID)
	return session, nil
}

// RequestSummary generates the structured advisor summary from the
// transcript and any uploaded document text. Special topics accumulated
// during the interview are prepended to the generated ones.
func (e *Engine) RequestSummary(ctx context.Context, sessionID string) (*models.Session, error) {
	session, err := e.loadSession(sessionID)
	if err != nil {
		return nil, err
	}
	if len(session.Transcript) == 0 && session.BusinessPlanText == "" {
		return nil, models.ErrEmptyTranscript
	}

	transcript := session.Transcript
	if session.BusinessPlanText != "" {
		transcript = append([]models.Turn{{
			Role:    models.RoleSystem,
			Content: "Uploaded business documents:\n" + session.BusinessPlanText,
		}}, transcript...)
	}

	summary, err := e.ai.SummarizeTranscript(ctx, transcript, session.Contact)
	if err != nil {
		return nil, err
	}
	// The notes stay on their own field; merging into the generated summary
	// keeps repeated summary requests from stacking them up.
	if notes := session.SpecialTopicNotes; notes != "" {
		if summary.SpecialTopics != "" {
			summary.SpecialTopics = notes + "\n" + summary.SpecialTopics
		} else {
			summary.SpecialTopics = notes
		}
	}
	session.Summary = summary

	if err := e.st.SaveSession(session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	slog.Info("Engine.RequestSummary: summary generated", "sessionID", sessionID)
	return session, nil
}

// ConfirmSummary stores the participant-approved summary, marks the session
// confirmed, and notifies the participant when a notifier is attached and a
// phone number is on file. Notification failures are logged, not returned;
// the confirmation itself has already been persisted.
func (e *Engine) ConfirmSummary(ctx context.Context, sessionID string, summary models.AdvisorSummary) (*models.Session, error) {
	session, err := e.loadSession(sessionID)
	if err != nil {
		return nil, err
	}
	session.Summary = summary
	session.SummaryConfirmed = true
	if err := e.st.SaveSession(session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	slog.Info("Engine.ConfirmSummary: summary confirmed", "sessionID", sessionID)

	if e.notifier != nil && session.Contact.Phone != "" {
		if err := e.notifier.SendSummaryReady(ctx, session.Contact.Phone, session.UILanguage); err != nil {
			slog.Warn("Engine.ConfirmSummary: notification failed", "sessionID", sessionID, "error", err)
		}
	}
	return session, nil
}

// TranslateThread translates a message thread into the target language.
func (e *Engine) TranslateThread(ctx context.Context, targetLanguage string, messages []models.Turn) ([]models.Turn, error) {
	return e.ai.TranslateThread(ctx, targetLanguage, messages)
}

// ListSessions returns all sessions for the advisor view.
func (e *Engine) ListSessions(ctx context.Context) ([]*models.Session, error) {
	return e.st.ListSessions()
}

// advanceOnAssistantTurn applies step counting after an assistant reply.
// CONTACT never auto-advances.
func (e *Engine) advanceOnAssistantTurn(session *models.Session) {
	if session.Phase == models.PhaseContact {
		return
	}
	count, advance := OnAssistantTurn(session.Phase, session.PhaseStepCount)
	session.PhaseStepCount = count
	if advance {
		session.Phase = NextPhase(session.Phase)
		session.VisitedPhases[session.Phase] = true
	}
}

// evaluateReadiness fires the one-shot readiness transition: announce,
// latch, and jump to CONTACT. The latch guarantees the announcement is
// made at most once per session no matter how the transcript evolves.
func (e *Engine) evaluateReadiness(session *models.Session) {
	if session.ReadyAnnounced {
		return
	}
	if !IsReady(session.Transcript, session.VisitedPhases) {
		return
	}
	session.ReadyAnnounced = true
	session.Phase = models.PhaseContact
	session.PhaseStepCount = 0
	session.VisitedPhases[models.PhaseContact] = true
	session.Transcript = append(session.Transcript, models.Turn{
		Role:    models.RoleAssistant,
		Content: i18n.Lookup(session.UILanguage, i18n.KeyReadyPrompt),
	})
	slog.Info("Engine.evaluateReadiness: readiness announced", "sessionID", session.ID)
}

// loadSession maps a store miss to ErrSessionNotFound.
func (e *Engine) loadSession(sessionID string) (*models.Session, error) {
	if sessionID == "" {
		return nil, models.ErrMissingSessionID
	}
	session, err := e.st.GetSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}
	if session == nil {
		return nil, models.ErrSessionNotFound
	}
	return session, nil
}

// persist writes the session through the appropriate store call.
func (e *Engine) persist(session *models.Session, created bool) error {
	var err error
	if created {
		err = e.st.CreateSession(session)
	} else {
		err = e.st.SaveSession(session)
	}
	if err != nil {
		return fmt.Errorf("failed to persist session %s: %w", session.ID, err)
	}
	return nil
}

// appendSpecialTopic adds one line to the accumulated advisor notes.
func appendSpecialTopic(session *models.Session, line string) {
	if session.SpecialTopicNotes != "" {
		session.SpecialTopicNotes += "\n" + line
	} else {
		session.SpecialTopicNotes = line
	}
}

// combineDocuments joins per-file extractions into one labelled text blob,
// skipping files whose extraction produced nothing.
func combineDocuments(docs []models.ExtractedDocument) string {
	var parts []string
	for _, d := range docs {
		text := strings.TrimSpace(d.Text)
		if text == "" {
			continue
		}
		parts = append(parts, "[Document: "+d.Name+"]\n"+text)
	}
	return strings.Join(parts, "\n\n")
}
