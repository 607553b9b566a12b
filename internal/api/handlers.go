// Package api provides HTTP handlers for IntakeDesk endpoints.
package api

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/intakedesk/intakedesk/internal/extract"
	"github.com/intakedesk/intakedesk/internal/flow"
	"github.com/intakedesk/intakedesk/internal/genai"
	"github.com/intakedesk/intakedesk/internal/models"
)

// MaxUploadBytes caps the total size of one document upload request.
const MaxUploadBytes = 32 << 20

// SessionView is the wire representation of a session. It augments the
// stored state with the derived display fields the frontend renders.
type SessionView struct {
	ID               string                `json:"id"`
	UILanguage       string                `json:"ui_language"`
	UserLanguage     string                `json:"user_language"`
	Phase            models.Phase          `json:"phase"`
	PhaseStepIndex   int                   `json:"phase_step_index"`
	PhaseStepTotal   int                   `json:"phase_step_total"`
	ReadyAnnounced   bool                  `json:"ready_announced"`
	ChatStarted      bool                  `json:"chat_started"`
	Transcript       []models.Turn         `json:"transcript"`
	Contact          models.ContactRecord  `json:"contact"`
	ContactComplete  bool                  `json:"contact_complete"`
	Summary          models.AdvisorSummary `json:"summary"`
	SummaryConfirmed bool                  `json:"summary_confirmed"`
	HasDocuments     bool                  `json:"has_documents"`
}

// Reply is a chat response: the updated session plus the newest assistant
// message for immediate rendering.
type Reply struct {
	Session SessionView `json:"session"`
	Message string      `json:"message"`
}

func sessionView(s *models.Session) SessionView {
	return SessionView{
		ID:               s.ID,
		UILanguage:       s.UILanguage,
		UserLanguage:     s.UserLanguage,
		Phase:            s.Phase,
		PhaseStepIndex:   flow.StepIndex(s.Phase),
		PhaseStepTotal:   len(flow.PhaseOrder()),
		ReadyAnnounced:   s.ReadyAnnounced,
		ChatStarted:      s.ChatStarted,
		Transcript:       s.Transcript,
		Contact:          s.Contact,
		ContactComplete:  s.Contact.Complete(),
		Summary:          s.Summary,
		SummaryConfirmed: s.SummaryConfirmed,
		HasDocuments:     s.BusinessPlanText != "",
	}
}

// requireMethod enforces the HTTP method and sets the Allow header on
// mismatch. It reports whether the request may proceed.
func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.Header().Set("Allow", method)
		slog.Warn("Server: method not allowed", "method", r.Method, "path", r.URL.Path)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// writeEngineError maps engine errors onto HTTP status codes: validation
// and input errors are 400, a missing session is 404, a failed generation
// call is 502, everything else is 500.
func writeEngineError(w http.ResponseWriter, op string, err error) {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		slog.Warn(op+": validation failed", "field", ve.Field, "reason", ve.Reason)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(ve.Error()))
	case errors.Is(err, models.ErrSessionNotFound):
		slog.Warn(op+": session not found", "error", err)
		writeJSONResponse(w, http.StatusNotFound, models.Error("Session not found"))
	case errors.Is(err, models.ErrEmptyTranscript),
		errors.Is(err, models.ErrNoExtractableText),
		errors.Is(err, models.ErrEmptyMessage),
		errors.Is(err, models.ErrMissingUILanguage),
		errors.Is(err, models.ErrMissingTargetLang),
		errors.Is(err, models.ErrNoDocumentsGiven),
		errors.Is(err, models.ErrMissingSessionID):
		slog.Warn(op+": invalid request", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
	case errors.Is(err, genai.ErrNoChoicesReturned):
		slog.Error(op+": generation failed", "error", err)
		writeJSONResponse(w, http.StatusBadGateway, models.Error("Generation service unavailable"))
	default:
		slog.Error(op+": internal error", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Internal server error"))
	}
}

func (s *Server) startSessionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req models.StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.startSessionHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if err := req.Validate(); err != nil {
		writeEngineError(w, "Server.startSessionHandler", err)
		return
	}

	session, err := s.engine.StartSession(r.Context(), req.UILanguage, req.UserLanguage)
	if err != nil {
		writeEngineError(w, "Server.startSessionHandler", err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, models.Success(sessionView(session)))
}

func (s *Server) getSessionHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	sessionID := r.URL.Query().Get("session_id")
	session, err := s.engine.GetSession(r.Context(), sessionID)
	if err != nil {
		writeEngineError(w, "Server.getSessionHandler", err)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(sessionView(session)))
}

func (s *Server) chatHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.chatHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if err := req.Validate(); err != nil {
		writeEngineError(w, "Server.chatHandler", err)
		return
	}

	session, err := s.engine.SubmitUserTurn(r.Context(), req.SessionID, req.Message, req.UILanguage, req.UserLanguage)
	if err != nil {
		writeEngineError(w, "Server.chatHandler", err)
		return
	}

	var message string
	if turn := session.LastAssistantTurn(); turn != nil {
		message = turn.Content
	}
	writeJSONResponse(w, http.StatusOK, models.Success(Reply{
		Session: sessionView(session),
		Message: message,
	}))
}

// contactHandler serves the contact gate: GET returns the stored record and
// its completeness, POST validates and stores a new record.
func (s *Server) contactHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	switch r.Method {
	case http.MethodGet:
		sessionID := r.URL.Query().Get("session_id")
		contact, complete, err := s.engine.GetContact(r.Context(), sessionID)
		if err != nil {
			writeEngineError(w, "Server.contactHandler", err)
			return
		}
		writeJSONResponse(w, http.StatusOK, models.Success(map[string]interface{}{
			"contact":  contact,
			"complete": complete,
		}))
	case http.MethodPost:
		var req models.ContactRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			slog.Warn("Server.contactHandler: failed to decode JSON", "error", err)
			writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
			return
		}
		if err := req.Validate(); err != nil {
			writeEngineError(w, "Server.contactHandler", err)
			return
		}
		session, err := s.engine.SubmitContact(r.Context(), req.SessionID, req.ContactRecord)
		if err != nil {
			writeEngineError(w, "Server.contactHandler", err)
			return
		}
		writeJSONResponse(w, http.StatusOK, models.Success(sessionView(session)))
	default:
		w.Header().Set("Allow", http.MethodGet+", "+http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// uploadHandler accepts a multipart document upload, extracts text from
// each file best effort, and runs the document shortcut through the engine.
func (s *Server) uploadHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		slog.Warn("Server.uploadHandler: failed to parse multipart form", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid multipart form"))
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		// Single-file uploads use the singular field name.
		files = r.MultipartForm.File["file"]
	}
	if len(files) == 0 {
		writeEngineError(w, "Server.uploadHandler", models.ErrNoDocumentsGiven)
		return
	}

	names := make([]string, 0, len(files))
	contents := make([][]byte, 0, len(files))
	for _, fh := range files {
		names = append(names, fh.Filename)
		f, err := fh.Open()
		if err != nil {
			slog.Warn("Server.uploadHandler: failed to open upload", "file", fh.Filename, "error", err)
			contents = append(contents, nil)
			continue
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			slog.Warn("Server.uploadHandler: failed to read upload", "file", fh.Filename, "error", err)
			contents = append(contents, nil)
			continue
		}
		contents = append(contents, data)
	}
	docs := extract.Files(names, contents)

	sessionID := r.FormValue("session_id")
	uiLanguage := r.FormValue("ui_language")
	userLanguage := r.FormValue("user_language")
	if sessionID == "" && uiLanguage == "" {
		writeEngineError(w, "Server.uploadHandler", models.ErrMissingUILanguage)
		return
	}

	session, err := s.engine.UploadDocuments(r.Context(), sessionID, docs, uiLanguage, userLanguage)
	if err != nil {
		writeEngineError(w, "Server.uploadHandler", err)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(sessionView(session)))
}

func (s *Server) summaryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req models.SummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.summaryHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if err := req.Validate(); err != nil {
		writeEngineError(w, "Server.summaryHandler", err)
		return
	}

	session, err := s.engine.RequestSummary(r.Context(), req.SessionID)
	if err != nil {
		writeEngineError(w, "Server.summaryHandler", err)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(session.Summary))
}

func (s *Server) summaryConfirmHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req models.SummaryConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.summaryConfirmHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if err := req.Validate(); err != nil {
		writeEngineError(w, "Server.summaryConfirmHandler", err)
		return
	}

	session, err := s.engine.ConfirmSummary(r.Context(), req.SessionID, req.AdvisorSummary)
	if err != nil {
		writeEngineError(w, "Server.summaryConfirmHandler", err)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Summary confirmed", sessionView(session)))
}

func (s *Server) translateThreadHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req models.TranslateThreadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.translateThreadHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if err := req.Validate(); err != nil {
		writeEngineError(w, "Server.translateThreadHandler", err)
		return
	}

	translated, err := s.engine.TranslateThread(r.Context(), req.TargetLanguage, req.Messages)
	if err != nil {
		writeEngineError(w, "Server.translateThreadHandler", err)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]interface{}{
		"messages": translated,
	}))
}

// advisorLoginRequest is the advisor password check payload.
type advisorLoginRequest struct {
	Password string `json:"password"`
}

func (s *Server) advisorLoginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req advisorLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.advisorLoginHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if !s.advisorPasswordValid(req.Password) {
		slog.Warn("Server.advisorLoginHandler: invalid password")
		writeJSONResponse(w, http.StatusUnauthorized, models.Error("Invalid password"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Login successful", nil))
}

func (s *Server) advisorSessionsHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	if !s.advisorPasswordValid(r.Header.Get("X-Advisor-Password")) {
		slog.Warn("Server.advisorSessionsHandler: unauthorized")
		writeJSONResponse(w, http.StatusUnauthorized, models.Error("Unauthorized"))
		return
	}

	sessions, err := s.engine.ListSessions(r.Context())
	if err != nil {
		writeEngineError(w, "Server.advisorSessionsHandler", err)
		return
	}
	views := make([]SessionView, 0, len(sessions))
	for _, session := range sessions {
		views = append(views, sessionView(session))
	}
	writeJSONResponse(w, http.StatusOK, models.Success(views))
}

// advisorPasswordValid compares the candidate in constant time. An empty
// configured password disables advisor access entirely.
func (s *Server) advisorPasswordValid(candidate string) bool {
	if s.advisorPassword == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(s.advisorPassword)) == 1
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]string{"status": "healthy"}))
}
