// Package flow implements the conversation phase progression engine for
// IntakeDesk: the phase model, the per-phase step counter, the readiness
// heuristic and the document shortcut that together decide where a
// participant is in the intake interview and when it may conclude.
package flow

import (
	"math"

	"github.com/intakedesk/intakedesk/internal/models"
)

// phaseOrder is the fixed, totally ordered phase sequence. It defines both
// the 1-based display step number and the advancement direction.
var phaseOrder = []models.Phase{
	models.PhaseBasics,
	models.PhaseIdea,
	models.PhaseHow,
	models.PhaseMoney,
	models.PhaseSpecial,
	models.PhaseContact,
}

// NoAutoAdvance is the step target of phases that never advance from turn
// count alone.
const NoAutoAdvance = math.MaxInt

// stepTargets maps each phase to the number of assistant turns to keep in
// that phase before auto-advancing. CONTACT is terminal and never
// auto-advances.
var stepTargets = map[models.Phase]int{
	models.PhaseBasics:  2, // registration status + short idea
	models.PhaseIdea:    1, // main customer group
	models.PhaseHow:     3, // sell? deliver? company form?
	models.PhaseMoney:   1, // pricing/costs
	models.PhaseSpecial: 1, // special topics
	models.PhaseContact: NoAutoAdvance,
}

// PhaseOrder returns the fixed phase sequence for iteration and rendering.
func PhaseOrder() []models.Phase {
	order := make([]models.Phase, len(phaseOrder))
	copy(order, phaseOrder)
	return order
}

// NextPhase returns the immediate successor of the given phase, or the
// phase itself when it is the last element of the order. Unknown phases
// are returned unchanged.
func NextPhase(p models.Phase) models.Phase {
	for i, candidate := range phaseOrder {
		if candidate == p {
			if i == len(phaseOrder)-1 {
				return p
			}
			return phaseOrder[i+1]
		}
	}
	return p
}

// StepIndex returns the 1-based position of the phase in the fixed order,
// used for progress display. Unknown phases map to 1.
func StepIndex(p models.Phase) int {
	for i, candidate := range phaseOrder {
		if candidate == p {
			return i + 1
		}
	}
	return 1
}

// StepTarget returns the required assistant-turn count before the phase
// auto-advances. Unknown phases default to 1.
func StepTarget(p models.Phase) int {
	if target, ok := stepTargets[p]; ok {
		return target
	}
	return 1
}

// OnAssistantTurn counts one assistant turn produced while the given phase
// is active. It returns the new step count and whether the phase should
// advance. When advancement is signalled the returned count is already
// reset to zero; the caller sets the phase to NextPhase(phase) unless the
// current phase is CONTACT, which never advances.
func OnAssistantTurn(phase models.Phase, count int) (int, bool) {
	next := count + 1
	if next >= StepTarget(phase) {
		return 0, true
	}
	return next, false
}
