package flow

import (
	"testing"

	"github.com/intakedesk/intakedesk/internal/models"
)

func TestPhaseOrderIsFixed(t *testing.T) {
	want := []models.Phase{
		models.PhaseBasics,
		models.PhaseIdea,
		models.PhaseHow,
		models.PhaseMoney,
		models.PhaseSpecial,
		models.PhaseContact,
	}
	got := PhaseOrder()
	if len(got) != len(want) {
		t.Fatalf("PhaseOrder() returned %d phases, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("PhaseOrder()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestPhaseOrderReturnsCopy(t *testing.T) {
	order := PhaseOrder()
	order[0] = models.PhaseContact
	if PhaseOrder()[0] != models.PhaseBasics {
		t.Error("mutating the returned slice changed the canonical order")
	}
}

func TestNextPhase(t *testing.T) {
	tests := []struct {
		name  string
		phase models.Phase
		want  models.Phase
	}{
		{"basics advances to idea", models.PhaseBasics, models.PhaseIdea},
		{"idea advances to how", models.PhaseIdea, models.PhaseHow},
		{"how advances to money", models.PhaseHow, models.PhaseMoney},
		{"money advances to special", models.PhaseMoney, models.PhaseSpecial},
		{"special advances to contact", models.PhaseSpecial, models.PhaseContact},
		{"contact is terminal", models.PhaseContact, models.PhaseContact},
		{"unknown phase is unchanged", models.Phase("BOGUS"), models.Phase("BOGUS")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextPhase(tt.phase); got != tt.want {
				t.Errorf("NextPhase(%s) = %s, want %s", tt.phase, got, tt.want)
			}
		})
	}
}

func TestStepIndex(t *testing.T) {
	tests := []struct {
		phase models.Phase
		want  int
	}{
		{models.PhaseBasics, 1},
		{models.PhaseIdea, 2},
		{models.PhaseHow, 3},
		{models.PhaseMoney, 4},
		{models.PhaseSpecial, 5},
		{models.PhaseContact, 6},
		{models.Phase("BOGUS"), 1},
	}
	for _, tt := range tests {
		if got := StepIndex(tt.phase); got != tt.want {
			t.Errorf("StepIndex(%s) = %d, want %d", tt.phase, got, tt.want)
		}
	}
}

func TestStepTarget(t *testing.T) {
	tests := []struct {
		phase models.Phase
		want  int
	}{
		{models.PhaseBasics, 2},
		{models.PhaseIdea, 1},
		{models.PhaseHow, 3},
		{models.PhaseMoney, 1},
		{models.PhaseSpecial, 1},
		{models.PhaseContact, NoAutoAdvance},
		{models.Phase("BOGUS"), 1},
	}
	for _, tt := range tests {
		if got := StepTarget(tt.phase); got != tt.want {
			t.Errorf("StepTarget(%s) = %d, want %d", tt.phase, got, tt.want)
		}
	}
}

func TestOnAssistantTurnBasicsNeedsTwoTurns(t *testing.T) {
	count, advance := OnAssistantTurn(models.PhaseBasics, 0)
	if advance {
		t.Fatal("BASICS advanced after a single assistant turn")
	}
	if count != 1 {
		t.Fatalf("step count = %d after first turn, want 1", count)
	}

	count, advance = OnAssistantTurn(models.PhaseBasics, count)
	if !advance {
		t.Fatal("BASICS did not advance after two assistant turns")
	}
	if count != 0 {
		t.Errorf("step count = %d after advancement, want 0", count)
	}
}

func TestOnAssistantTurnContactNeverAdvances(t *testing.T) {
	count := 0
	for i := 0; i < 50; i++ {
		var advance bool
		count, advance = OnAssistantTurn(models.PhaseContact, count)
		if advance {
			t.Fatalf("CONTACT signalled advancement on turn %d", i+1)
		}
	}
	if count != 50 {
		t.Errorf("step count = %d after 50 turns, want 50", count)
	}
}
