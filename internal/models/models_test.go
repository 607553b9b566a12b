package models

import (
	"errors"
	"testing"
)

func validContact() ContactRecord {
	return ContactRecord{
		FirstName:    "Aino",
		LastName:     "Mäkinen",
		Email:        "aino@example.com",
		Phone:        "+358401234567",
		DateOfBirth:  "1990-04-01",
		Municipality: "Espoo",
	}
}

func TestContactRecordComplete(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ContactRecord)
		want   bool
	}{
		{"all fields valid", func(c *ContactRecord) {}, true},
		{"missing first name", func(c *ContactRecord) { c.FirstName = "" }, false},
		{"missing last name", func(c *ContactRecord) { c.LastName = "" }, false},
		{"missing email", func(c *ContactRecord) { c.Email = "" }, false},
		{"missing phone", func(c *ContactRecord) { c.Phone = "" }, false},
		{"missing date of birth", func(c *ContactRecord) { c.DateOfBirth = "" }, false},
		{"missing municipality", func(c *ContactRecord) { c.Municipality = "" }, false},
		{"email without dot after at", func(c *ContactRecord) { c.Email = "foo@bar" }, false},
		{"email without at", func(c *ContactRecord) { c.Email = "foo.bar.com" }, false},
		{"email with space", func(c *ContactRecord) { c.Email = "foo bar@example.com" }, false},
		{"minimal valid email", func(c *ContactRecord) { c.Email = "a@b.c" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validContact()
			tt.mutate(&c)
			if got := c.Complete(); got != tt.want {
				t.Errorf("Complete() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestContactRecordValidate(t *testing.T) {
	if err := validContact().Validate(); err != nil {
		t.Fatalf("valid contact rejected: %v", err)
	}

	tests := []struct {
		name      string
		mutate    func(*ContactRecord)
		wantField string
	}{
		{"empty first name", func(c *ContactRecord) { c.FirstName = "" }, "first_name"},
		{"malformed email", func(c *ContactRecord) { c.Email = "nope" }, "email"},
		{"short phone", func(c *ContactRecord) { c.Phone = "123" }, "phone"},
		{"bad date format", func(c *ContactRecord) { c.DateOfBirth = "01.04.1990" }, "date_of_birth"},
		{"impossible date", func(c *ContactRecord) { c.DateOfBirth = "1990-13-45" }, "date_of_birth"},
		{"empty municipality", func(c *ContactRecord) { c.Municipality = "" }, "municipality"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validContact()
			tt.mutate(&c)
			err := c.Validate()
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("error = %v, want *ValidationError", err)
			}
			if ve.Field != tt.wantField {
				t.Errorf("failing field = %q, want %q", ve.Field, tt.wantField)
			}
		})
	}
}

func TestNewVisitedPhases(t *testing.T) {
	visited := NewVisitedPhases()
	if !visited[PhaseBasics] {
		t.Error("BASICS not visited initially")
	}
	for _, p := range []Phase{PhaseIdea, PhaseHow, PhaseMoney, PhaseSpecial, PhaseContact} {
		if visited[p] {
			t.Errorf("phase %s visited initially", p)
		}
	}
}

func TestIsValidPhase(t *testing.T) {
	for _, p := range []Phase{PhaseBasics, PhaseIdea, PhaseHow, PhaseMoney, PhaseSpecial, PhaseContact} {
		if !IsValidPhase(p) {
			t.Errorf("IsValidPhase(%s) = false", p)
		}
	}
	if IsValidPhase(Phase("ONBOARDING")) {
		t.Error("IsValidPhase accepted an unknown phase")
	}
}

func TestLastAssistantTurn(t *testing.T) {
	s := &Session{}
	if s.LastAssistantTurn() != nil {
		t.Error("LastAssistantTurn on empty transcript should be nil")
	}
	s.Transcript = []Turn{
		{Role: RoleAssistant, Content: "first"},
		{Role: RoleUser, Content: "question"},
		{Role: RoleAssistant, Content: "second"},
		{Role: RoleUser, Content: "trailing"},
	}
	turn := s.LastAssistantTurn()
	if turn == nil || turn.Content != "second" {
		t.Errorf("LastAssistantTurn = %v, want the latest assistant turn", turn)
	}
}

func TestChatRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     ChatRequest
		wantErr error
	}{
		{"valid with session", ChatRequest{SessionID: "abc", Message: "hi"}, nil},
		{"valid without session", ChatRequest{Message: "hi", UILanguage: "en"}, nil},
		{"empty message", ChatRequest{SessionID: "abc"}, ErrEmptyMessage},
		{"no session and no language", ChatRequest{Message: "hi"}, ErrMissingUILanguage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTranslateThreadRequestValidate(t *testing.T) {
	req := TranslateThreadRequest{Messages: []Turn{{Role: RoleUser, Content: "hi"}}}
	if err := req.Validate(); !errors.Is(err, ErrMissingTargetLang) {
		t.Errorf("Validate() = %v, want ErrMissingTargetLang", err)
	}

	req.TargetLanguage = "sv"
	if err := req.Validate(); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}

	req.Messages = append(req.Messages, Turn{Role: TurnRole("bot"), Content: "x"})
	var ve *ValidationError
	if err := req.Validate(); !errors.As(err, &ve) {
		t.Errorf("Validate() = %v, want *ValidationError for unsupported role", err)
	}
}

func TestAPIResponseBuilders(t *testing.T) {
	resp := Success(map[string]string{"k": "v"})
	if resp.Status != string(APIStatusOK) {
		t.Errorf("Success status = %q", resp.Status)
	}
	if resp.Result == nil {
		t.Error("Success dropped the result")
	}

	resp = Error("boom")
	if resp.Status != string(APIStatusError) || resp.Message != "boom" {
		t.Errorf("Error response = %+v", resp)
	}

	resp = NewAPIResponseBuilder().
		WithStatus(APIStatusOK).
		WithMessage("done").
		WithResult(42).
		Build()
	if resp.Status != "ok" || resp.Message != "done" || resp.Result != 42 {
		t.Errorf("builder response = %+v", resp)
	}
}
