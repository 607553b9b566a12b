package genai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/intakedesk/intakedesk/internal/models"
)

// mockChatService implements chatService for testing.
type mockChatService struct {
	content    string
	err        error
	noChoices  bool
	lastParams openai.ChatCompletionNewParams
}

func (m *mockChatService) New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error) {
	m.lastParams = params
	if m.err != nil {
		return nil, m.err
	}
	if m.noChoices {
		return &openai.ChatCompletion{}, nil
	}
	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: m.content}},
		},
	}, nil
}

func newTestClient(mock *mockChatService) *Client {
	return &Client{chat: mock, model: DefaultModel, temperature: DefaultTemperature}
}

// systemText pulls the plain-string content out of a system message param.
func systemText(msg openai.ChatCompletionMessageParamUnion) string {
	if msg.OfSystem == nil {
		return ""
	}
	return msg.OfSystem.Content.OfString.Value
}

func TestGenerateChatSuccess(t *testing.T) {
	mock := &mockChatService{content: "  What would you like to sell?  "}
	client := newTestClient(mock)

	out, err := client.GenerateChat(context.Background(), "en", "en", models.PhaseIdea,
		[]models.Turn{{Role: models.RoleUser, Content: "hello"}}, "")
	if err != nil {
		t.Fatalf("GenerateChat failed: %v", err)
	}
	if out != "What would you like to sell?" {
		t.Errorf("reply = %q, want trimmed content", out)
	}
	if len(mock.lastParams.Messages) < 3 {
		t.Errorf("sent %d messages, want system prompts plus transcript", len(mock.lastParams.Messages))
	}
}

func TestGenerateChatRepliesInUserLanguage(t *testing.T) {
	mock := &mockChatService{content: "ok"}
	client := newTestClient(mock)

	if _, err := client.GenerateChat(context.Background(), "ar", "fi", models.PhaseIdea, nil, ""); err != nil {
		t.Fatalf("GenerateChat failed: %v", err)
	}
	instruction := systemText(mock.lastParams.Messages[1])
	if !strings.Contains(instruction, "Reply in this language: ar") {
		t.Errorf("language instruction = %q, want the user language as the reply language", instruction)
	}
	if !strings.Contains(instruction, "fi") {
		t.Errorf("language instruction = %q, want the interface language as context", instruction)
	}

	// An empty user language falls back to the interface language.
	if _, err := client.GenerateChat(context.Background(), "", "sv", models.PhaseIdea, nil, ""); err != nil {
		t.Fatalf("GenerateChat failed: %v", err)
	}
	if instruction := systemText(mock.lastParams.Messages[1]); !strings.Contains(instruction, "Reply in this language: sv") {
		t.Errorf("language instruction = %q, want fallback to the interface language", instruction)
	}
}

func TestGenerateChatStripsMarkdownBold(t *testing.T) {
	mock := &mockChatService{content: "Think about your **customer group** next."}
	client := newTestClient(mock)

	out, err := client.GenerateChat(context.Background(), "en", "en", models.PhaseIdea, nil, "")
	if err != nil {
		t.Fatalf("GenerateChat failed: %v", err)
	}
	if strings.Contains(out, "**") {
		t.Errorf("reply still contains bold markers: %q", out)
	}
}

func TestGenerateChatServiceError(t *testing.T) {
	client := newTestClient(&mockChatService{err: errors.New("service failure")})
	_, err := client.GenerateChat(context.Background(), "en", "en", models.PhaseBasics, nil, "")
	if err == nil || !strings.Contains(err.Error(), "service failure") {
		t.Errorf("expected wrapped service failure, got %v", err)
	}
}

func TestGenerateChatNoChoices(t *testing.T) {
	client := newTestClient(&mockChatService{noChoices: true})
	_, err := client.GenerateChat(context.Background(), "en", "en", models.PhaseBasics, nil, "")
	if !errors.Is(err, ErrNoChoicesReturned) {
		t.Errorf("error = %v, want ErrNoChoicesReturned", err)
	}
}

func TestAssessDocumentsParsesVerdict(t *testing.T) {
	mock := &mockChatService{content: `{"has_enough_info": true, "assistant_summary": "solid plan", "missing_topics": []}`}
	client := newTestClient(mock)

	assessment, err := client.AssessDocuments(context.Background(), "en", "plan text")
	if err != nil {
		t.Fatalf("AssessDocuments failed: %v", err)
	}
	if !assessment.HasEnoughInfo {
		t.Error("HasEnoughInfo = false, want true")
	}
	if assessment.AssistantSummary != "solid plan" {
		t.Errorf("AssistantSummary = %q", assessment.AssistantSummary)
	}
	if mock.lastParams.ResponseFormat.OfJSONObject == nil {
		t.Error("assessment call did not request JSON mode")
	}
}

func TestAssessDocumentsMalformedJSONDegradesToZero(t *testing.T) {
	client := newTestClient(&mockChatService{content: "sorry, I cannot do that"})
	assessment, err := client.AssessDocuments(context.Background(), "en", "plan text")
	if err != nil {
		t.Fatalf("malformed JSON should not fail the call, got %v", err)
	}
	if assessment.HasEnoughInfo || assessment.AssistantSummary != "" || len(assessment.MissingTopics) != 0 {
		t.Errorf("assessment = %+v, want zero value", assessment)
	}
}

func TestSummarizeTranscriptParsesAllFields(t *testing.T) {
	mock := &mockChatService{content: `{
		"what_sell": "coffee",
		"to_whom": "commuters",
		"how": "kiosk",
		"company_form_suggestion": "toiminimi",
		"company_form_reasoning": "low risk",
		"key_questions_for_advisor": "taxes",
		"special_topics": "food permit"
	}`}
	client := newTestClient(mock)

	summary, err := client.SummarizeTranscript(context.Background(),
		[]models.Turn{{Role: models.RoleUser, Content: "I sell coffee"}},
		models.ContactRecord{FirstName: "Aino", LastName: "Mäkinen"})
	if err != nil {
		t.Fatalf("SummarizeTranscript failed: %v", err)
	}
	if summary.WhatSell != "coffee" || summary.CompanyFormSuggestion != "toiminimi" || summary.SpecialTopics != "food permit" {
		t.Errorf("summary = %+v", summary)
	}
}

func TestSummarizeTranscriptIsAlwaysEnglish(t *testing.T) {
	mock := &mockChatService{content: `{}`}
	client := newTestClient(mock)

	// A Finnish-language interview still yields an English advisor summary.
	_, err := client.SummarizeTranscript(context.Background(),
		[]models.Turn{{Role: models.RoleUser, Content: "Myyn kahvia toreilla"}},
		models.ContactRecord{})
	if err != nil {
		t.Fatalf("SummarizeTranscript failed: %v", err)
	}
	if !strings.Contains(systemText(mock.lastParams.Messages[0]), "English") {
		t.Error("summary prompt does not instruct English output")
	}
	for _, msg := range mock.lastParams.Messages {
		if strings.Contains(systemText(msg), "Write the summary in this language") {
			t.Error("summary call carries a per-session language instruction")
		}
	}
}

func TestSummarizeTranscriptMalformedJSONDegradesToEmpty(t *testing.T) {
	client := newTestClient(&mockChatService{content: "not json at all"})
	summary, err := client.SummarizeTranscript(context.Background(), nil, models.ContactRecord{})
	if err != nil {
		t.Fatalf("malformed JSON should not fail the call, got %v", err)
	}
	if summary != (models.AdvisorSummary{}) {
		t.Errorf("summary = %+v, want empty", summary)
	}
}

func TestTranslateThreadSuccess(t *testing.T) {
	mock := &mockChatService{content: `{"messages": [{"role": "assistant", "content": "hei"}, {"role": "user", "content": "moi"}]}`}
	client := newTestClient(mock)

	in := []models.Turn{
		{Role: models.RoleAssistant, Content: "hello"},
		{Role: models.RoleUser, Content: "hi"},
	}
	out, err := client.TranslateThread(context.Background(), "fi", in)
	if err != nil {
		t.Fatalf("TranslateThread failed: %v", err)
	}
	if out[0].Content != "hei" || out[1].Content != "moi" {
		t.Errorf("translated = %+v", out)
	}
	if out[0].Role != models.RoleAssistant || out[1].Role != models.RoleUser {
		t.Error("roles not preserved")
	}
}

func TestTranslateThreadCountMismatchReturnsOriginal(t *testing.T) {
	mock := &mockChatService{content: `{"messages": [{"role": "user", "content": "only one"}]}`}
	client := newTestClient(mock)

	in := []models.Turn{
		{Role: models.RoleAssistant, Content: "hello"},
		{Role: models.RoleUser, Content: "hi"},
	}
	out, err := client.TranslateThread(context.Background(), "fi", in)
	if err != nil {
		t.Fatalf("TranslateThread failed: %v", err)
	}
	if len(out) != 2 || out[0].Content != "hello" {
		t.Errorf("mismatched translation should fall back to original, got %+v", out)
	}
}

func TestTranslateThreadEmptyInput(t *testing.T) {
	client := newTestClient(&mockChatService{})
	_, err := client.TranslateThread(context.Background(), "fi", nil)
	if !errors.Is(err, ErrEmptyThread) {
		t.Errorf("error = %v, want ErrEmptyThread", err)
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := NewClient()
	if !errors.Is(err, ErrAPIKeyNotSet) {
		t.Errorf("error = %v, want ErrAPIKeyNotSet", err)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 100); got != "short" {
		t.Errorf("truncate left short input changed: %q", got)
	}
	long := strings.Repeat("ä", 100)
	got := truncate(long, 10)
	if len(got) > 10 {
		t.Errorf("truncate produced %d bytes, want at most 10", len(got))
	}
	if !strings.HasPrefix(long, got) {
		t.Error("truncate broke a rune boundary")
	}
}
