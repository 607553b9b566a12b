// Package api provides the HTTP surface of IntakeDesk.
//
// It exposes RESTful endpoints for the intake conversation, document
// upload, contact details, advisor summaries, thread translation and the
// advisor session view. Handlers decode and validate requests, call one
// engine operation, and encode the result into the standard response
// envelope; all session semantics live in the flow engine.
package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/intakedesk/intakedesk/internal/flow"
	"github.com/intakedesk/intakedesk/internal/genai"
	"github.com/intakedesk/intakedesk/internal/notify"
	"github.com/intakedesk/intakedesk/internal/store"
)

// DefaultAddr is the default API server listen address.
const DefaultAddr = ":8080"

// Opts holds configuration options for the API server.
type Opts struct {
	Addr            string
	AdvisorPassword string
}

// Option defines a functional option for configuring the API server.
type Option func(*Opts)

// WithAddr overrides the default listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// WithAdvisorPassword sets the shared password protecting advisor endpoints.
func WithAdvisorPassword(password string) Option {
	return func(o *Opts) { o.AdvisorPassword = password }
}

// Server handles HTTP requests and delegates to the session engine.
type Server struct {
	engine          *flow.Engine
	addr            string
	advisorPassword string
}

// NewServer creates an API server over the given engine.
func NewServer(engine *flow.Engine, opts ...Option) *Server {
	options := Opts{Addr: DefaultAddr}
	for _, opt := range opts {
		opt(&options)
	}
	if options.AdvisorPassword == "" {
		options.AdvisorPassword = os.Getenv("ADVISOR_PASSWORD")
	}
	return &Server{
		engine:          engine,
		addr:            options.Addr,
		advisorPassword: options.AdvisorPassword,
	}
}

// Handler returns the full route table as an http.Handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/session/start", s.startSessionHandler)
	mux.HandleFunc("/api/session", s.getSessionHandler)
	mux.HandleFunc("/api/session/contact", s.contactHandler)
	mux.HandleFunc("/api/chat", s.chatHandler)
	mux.HandleFunc("/api/upload", s.uploadHandler)
	mux.HandleFunc("/api/summary", s.summaryHandler)
	mux.HandleFunc("/api/summary/confirm", s.summaryConfirmHandler)
	mux.HandleFunc("/api/translate-thread", s.translateThreadHandler)
	mux.HandleFunc("/api/advisor/login", s.advisorLoginHandler)
	mux.HandleFunc("/api/advisor/sessions", s.advisorSessionsHandler)
	mux.HandleFunc("/health", s.healthHandler)
	return mux
}

// Start runs the HTTP server on the configured address, blocking until the
// server exits.
func (s *Server) Start() error {
	slog.Info("Server.Start: IntakeDesk API listening", "addr", s.addr)
	return http.ListenAndServe(s.addr, s.Handler())
}

// Run wires the store, the generation client, the optional notifier and
// the API server together and blocks serving requests. It is the single
// entry point used by the command binary.
func Run(storeOpts []store.Option, genaiOpts []genai.Option, notifyOpts []notify.Option, apiOpts []Option) error {
	st, err := buildStore(storeOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	gaClient, err := genai.NewClient(genaiOpts...)
	if err != nil {
		return fmt.Errorf("failed to initialize GenAI client: %w", err)
	}

	engineOpts := []flow.EngineOption{}
	notifier, err := notify.NewClient(notifyOpts...)
	if err != nil {
		slog.Info("Run: SMS notifications disabled", "reason", err)
	} else {
		engineOpts = append(engineOpts, flow.WithNotifier(notifier))
	}

	engine := flow.NewEngine(st, gaClient, engineOpts...)
	server := NewServer(engine, apiOpts...)
	return server.Start()
}

// buildStore selects a backend from the configured options: Postgres for
// PostgreSQL DSNs, SQLite for file paths, in-memory when no DSN is given.
func buildStore(storeOpts []store.Option) (store.Store, error) {
	var cfg store.Opts
	for _, opt := range storeOpts {
		opt(&cfg)
	}
	switch {
	case cfg.DSN == "":
		slog.Warn("buildStore: no database DSN configured, sessions will not survive restarts")
		return store.NewInMemoryStore(), nil
	case store.DetectDSNType(cfg.DSN) == "postgres":
		slog.Debug("buildStore: using PostgreSQL store")
		return store.NewPostgresStore(storeOpts...)
	default:
		slog.Debug("buildStore: using SQLite store", "path", cfg.DSN)
		return store.NewSQLiteStore(storeOpts...)
	}
}
