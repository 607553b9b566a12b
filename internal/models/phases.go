// Package models defines phase and turn types shared across IntakeDesk modules.
package models

// Phase represents one stage of the structured intake interview.
type Phase string

const (
	// PhaseBasics covers company registration status and a short idea description.
	PhaseBasics Phase = "BASICS"
	// PhaseIdea covers what is sold and the main customer groups.
	PhaseIdea Phase = "IDEA"
	// PhaseHow covers channels, delivery and company form options.
	PhaseHow Phase = "HOW"
	// PhaseMoney covers pricing, costs and funding.
	PhaseMoney Phase = "MONEY"
	// PhaseSpecial covers permits, taxation, insurances and other special topics.
	PhaseSpecial Phase = "SPECIAL"
	// PhaseContact is the terminal phase where contact details are confirmed.
	PhaseContact Phase = "CONTACT"
)

// IsValidPhase checks if the given phase is one of the fixed interview phases.
func IsValidPhase(p Phase) bool {
	switch p {
	case PhaseBasics, PhaseIdea, PhaseHow, PhaseMoney, PhaseSpecial, PhaseContact:
		return true
	default:
		return false
	}
}

// TurnRole identifies the author of a conversation turn.
type TurnRole string

const (
	// RoleUser marks a turn written by the participant.
	RoleUser TurnRole = "user"
	// RoleAssistant marks a turn produced by the model or the engine itself.
	RoleAssistant TurnRole = "assistant"
	// RoleSystem marks an injected instruction turn.
	RoleSystem TurnRole = "system"
)

// IsValidTurnRole checks if the given role is supported.
func IsValidTurnRole(r TurnRole) bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	default:
		return false
	}
}

// Turn represents a single message in the conversation transcript.
// The transcript is append-only; turns are never reordered or mutated.
type Turn struct {
	Role    TurnRole `json:"role"`
	Content string   `json:"content"`
}
