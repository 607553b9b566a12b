// Package genai provides the OpenAI-backed generation layer for IntakeDesk:
// interview replies, document assessment, advisor summaries and thread
// translation. All structured calls run in JSON mode and fall back to safe
// zero values when the model returns malformed JSON.
package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/intakedesk/intakedesk/internal/models"
)

// DefaultModel is the chat model used unless overridden.
const DefaultModel = openai.ChatModelGPT4o

// DefaultTemperature keeps interview replies focused but not robotic.
const DefaultTemperature = 0.4

// Error variables for better error handling and testability
var (
	ErrAPIKeyNotSet      = errors.New("OPENAI_API_KEY environment variable not set")
	ErrNoChoicesReturned = errors.New("no choices returned from OpenAI")
	ErrEmptyThread       = errors.New("thread has no messages")
)

// chatService abstracts the OpenAI chat completion call for testing.
type chatService interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// ClientInterface defines the generation operations the engine depends on.
type ClientInterface interface {
	// GenerateChat produces the next interview reply for the transcript.
	// The reply is written in userLanguage; uiLanguage is context only.
	GenerateChat(ctx context.Context, userLanguage, uiLanguage string, phase models.Phase, transcript []models.Turn, businessPlanText string) (string, error)
	// DocumentInsight produces a short conversational recap of uploaded documents.
	DocumentInsight(ctx context.Context, uiLanguage, documentText string) (string, error)
	// AssessDocuments judges whether uploaded documents cover the key topics.
	AssessDocuments(ctx context.Context, uiLanguage, documentText string) (models.DocumentAssessment, error)
	// SummarizeTranscript produces the structured advisor summary, always in
	// English for the advisor.
	SummarizeTranscript(ctx context.Context, transcript []models.Turn, contact models.ContactRecord) (models.AdvisorSummary, error)
	// TranslateThread translates a message thread, preserving roles.
	TranslateThread(ctx context.Context, targetLanguage string, messages []models.Turn) ([]models.Turn, error)
}

// Opts holds configuration options for the GenAI client.
type Opts struct {
	APIKey      string
	Model       string
	Temperature float64
}

// Option defines a functional option for configuring the GenAI client.
type Option func(*Opts)

// WithAPIKey sets the OpenAI API key.
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// WithModel overrides the default chat model.
func WithModel(model string) Option {
	return func(o *Opts) { o.Model = model }
}

// WithTemperature overrides the default sampling temperature.
func WithTemperature(t float64) Option {
	return func(o *Opts) { o.Temperature = t }
}

// Client wraps the OpenAI API client.
type Client struct {
	chat        chatService
	model       string
	temperature float64
}

var _ ClientInterface = (*Client)(nil)

// NewClient creates a new GenAI client with the given options, falling back
// to the OPENAI_API_KEY environment variable when no key option is given.
func NewClient(opts ...Option) (*Client, error) {
	options := Opts{
		Model:       DefaultModel,
		Temperature: DefaultTemperature,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.APIKey == "" {
		options.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if options.APIKey == "" {
		slog.Error("GenAI.NewClient: API key not provided")
		return nil, ErrAPIKeyNotSet
	}

	api := openai.NewClient(option.WithAPIKey(options.APIKey))
	slog.Info("GenAI.NewClient: client created", "model", options.Model)
	return &Client{
		chat:        &api.Chat.Completions,
		model:       options.Model,
		temperature: options.Temperature,
	}, nil
}

// GenerateChat produces the next interview reply in the user's language.
// The active phase and the interface language are injected as context; any
// document text already attached to the session is included so the model
// does not re-ask covered topics.
func (c *Client) GenerateChat(ctx context.Context, userLanguage, uiLanguage string, phase models.Phase, transcript []models.Turn, businessPlanText string) (string, error) {
	if userLanguage == "" {
		userLanguage = uiLanguage
	}
	msgs := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(chatSystemPrompt),
		openai.SystemMessage(fmt.Sprintf(
			"Reply in this language: %s. The interface language is %s; it is context only and never overrides the reply language. The interview is currently in the %s phase.",
			userLanguage, uiLanguage, phase)),
	}
	if businessPlanText != "" {
		msgs = append(msgs, openai.SystemMessage(
			"The person has uploaded business documents with this content:\n"+truncate(businessPlanText, MaxDocChars)))
	}
	msgs = append(msgs, toOpenAIMessages(transcript)...)

	completion, err := c.chat.New(ctx, openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    msgs,
		Temperature: openai.Float(c.temperature),
	})
	if err != nil {
		slog.Error("GenAI.GenerateChat: API call failed", "error", err)
		return "", fmt.Errorf("failed to generate chat reply: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", ErrNoChoicesReturned
	}
	reply := stripMarkdownBold(strings.TrimSpace(completion.Choices[0].Message.Content))
	slog.Debug("GenAI.GenerateChat: reply generated", "phase", phase, "length", len(reply))
	return reply, nil
}

// DocumentInsight produces the short recap shown in the chat thread after a
// successful upload. Only an excerpt of the document text is sent.
func (c *Client) DocumentInsight(ctx context.Context, uiLanguage, documentText string) (string, error) {
	completion, err := c.chat.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(insightSystemPrompt),
			openai.SystemMessage("Write the recap in this language: " + uiLanguage),
			openai.UserMessage(truncate(documentText, insightChars)),
		},
		Temperature: openai.Float(c.temperature),
	})
	if err != nil {
		slog.Error("GenAI.DocumentInsight: API call failed", "error", err)
		return "", fmt.Errorf("failed to generate document insight: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", ErrNoChoicesReturned
	}
	return stripMarkdownBold(strings.TrimSpace(completion.Choices[0].Message.Content)), nil
}

// AssessDocuments judges document sufficiency in JSON mode. A malformed
// model response degrades to a zero assessment instead of failing the
// upload.
func (c *Client) AssessDocuments(ctx context.Context, uiLanguage, documentText string) (models.DocumentAssessment, error) {
	completion, err := c.chat.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(assessSystemPrompt),
			openai.SystemMessage("Write assistant_summary in this language: " + uiLanguage),
			openai.UserMessage(truncate(documentText, MaxDocChars)),
		},
		Temperature: openai.Float(0),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		slog.Error("GenAI.AssessDocuments: API call failed", "error", err)
		return models.DocumentAssessment{}, fmt.Errorf("failed to assess documents: %w", err)
	}
	if len(completion.Choices) == 0 {
		return models.DocumentAssessment{}, ErrNoChoicesReturned
	}

	var assessment models.DocumentAssessment
	if err := json.Unmarshal([]byte(completion.Choices[0].Message.Content), &assessment); err != nil {
		slog.Warn("GenAI.AssessDocuments: malformed JSON from model, using zero assessment", "error", err)
		return models.DocumentAssessment{}, nil
	}
	return assessment, nil
}

// SummarizeTranscript produces the structured advisor summary in JSON mode.
// The summary is always written in English because it is read by the human
// advisor, not the participant. A malformed model response degrades to an
// all-empty summary instead of failing the request.
func (c *Client) SummarizeTranscript(ctx context.Context, transcript []models.Turn, contact models.ContactRecord) (models.AdvisorSummary, error) {
	msgs := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(summarySystemPrompt),
	}
	if contact.FirstName != "" || contact.LastName != "" {
		msgs = append(msgs, openai.SystemMessage(
			"The participant's name is "+strings.TrimSpace(contact.FirstName+" "+contact.LastName)+"."))
	}
	msgs = append(msgs, openai.UserMessage(renderTranscript(transcript)))

	completion, err := c.chat.New(ctx, openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    msgs,
		Temperature: openai.Float(0),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		slog.Error("GenAI.SummarizeTranscript: API call failed", "error", err)
		return models.AdvisorSummary{}, fmt.Errorf("failed to summarize transcript: %w", err)
	}
	if len(completion.Choices) == 0 {
		return models.AdvisorSummary{}, ErrNoChoicesReturned
	}

	var summary models.AdvisorSummary
	if err := json.Unmarshal([]byte(completion.Choices[0].Message.Content), &summary); err != nil {
		slog.Warn("GenAI.SummarizeTranscript: malformed JSON from model, using empty summary", "error", err)
		return models.AdvisorSummary{}, nil
	}
	return summary, nil
}

// translatedThread is the JSON envelope expected from the translation call.
type translatedThread struct {
	Messages []models.Turn `json:"messages"`
}

// TranslateThread translates a whole message thread, preserving roles and
// order. When the model returns a different number of messages than sent,
// the original thread is returned unchanged rather than a misaligned one.
func (c *Client) TranslateThread(ctx context.Context, targetLanguage string, messages []models.Turn) ([]models.Turn, error) {
	if len(messages) == 0 {
		return nil, ErrEmptyThread
	}

	payload, err := json.Marshal(translatedThread{Messages: messages})
	if err != nil {
		return nil, fmt.Errorf("failed to encode thread: %w", err)
	}

	completion, err := c.chat.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(translateSystemPrompt),
			openai.SystemMessage("Target language: " + targetLanguage),
			openai.UserMessage(string(payload)),
		},
		Temperature: openai.Float(0),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		slog.Error("GenAI.TranslateThread: API call failed", "error", err)
		return nil, fmt.Errorf("failed to translate thread: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, ErrNoChoicesReturned
	}

	var out translatedThread
	if err := json.Unmarshal([]byte(completion.Choices[0].Message.Content), &out); err != nil {
		slog.Warn("GenAI.TranslateThread: malformed JSON from model, returning original thread", "error", err)
		return messages, nil
	}
	if len(out.Messages) != len(messages) {
		slog.Warn("GenAI.TranslateThread: message count mismatch, returning original thread",
			"sent", len(messages), "received", len(out.Messages))
		return messages, nil
	}
	for i := range out.Messages {
		// Roles are authoritative on our side.
		out.Messages[i].Role = messages[i].Role
	}
	return out.Messages, nil
}

// toOpenAIMessages converts transcript turns into chat completion params.
// System turns in the transcript are sent as assistant turns; they are
// engine-injected announcements the model should treat as its own.
func toOpenAIMessages(transcript []models.Turn) []openai.ChatCompletionMessageParamUnion {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(transcript))
	for _, t := range transcript {
		switch t.Role {
		case models.RoleUser:
			msgs = append(msgs, openai.UserMessage(t.Content))
		default:
			msgs = append(msgs, openai.AssistantMessage(t.Content))
		}
	}
	return msgs
}

// renderTranscript flattens turns into a plain-text interview record.
func renderTranscript(transcript []models.Turn) string {
	var b strings.Builder
	for _, t := range transcript {
		b.WriteString(string(t.Role))
		b.WriteString(": ")
		b.WriteString(t.Content)
		b.WriteByte('\n')
	}
	return b.String()
}

// stripMarkdownBold removes ** emphasis markers that slip through despite
// the no-markdown instruction.
func stripMarkdownBold(s string) string {
	return strings.ReplaceAll(s, "**", "")
}

// truncate cuts s to at most n bytes on a rune boundary.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	for len(r) > 0 {
		r = r[:len(r)-1]
		if len(string(r)) <= n {
			break
		}
	}
	return string(r)
}
