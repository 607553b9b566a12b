package flow

import (
	"testing"

	"github.com/intakedesk/intakedesk/internal/models"
)

func allPhasesVisited() map[models.Phase]bool {
	return map[models.Phase]bool{
		models.PhaseBasics:  true,
		models.PhaseIdea:    true,
		models.PhaseHow:     true,
		models.PhaseMoney:   true,
		models.PhaseSpecial: true,
	}
}

// coveredTranscript mentions every topic group, including a company form.
func coveredTranscript() []models.Turn {
	return []models.Turn{
		{Role: models.RoleUser, Content: "I want to sell a handmade product online"},
		{Role: models.RoleUser, Content: "my customer group is young families, that is my target"},
		{Role: models.RoleUser, Content: "I will use an online store as my sales channel"},
		{Role: models.RoleUser, Content: "the price would be around 40 euros with low cost"},
		{Role: models.RoleUser, Content: "for company form I am thinking of toiminimi"},
	}
}

func TestIsReadyWithFullCoverage(t *testing.T) {
	if !IsReady(coveredTranscript(), allPhasesVisited()) {
		t.Error("IsReady = false for a transcript covering every topic group with all phases visited")
	}
}

func TestIsReadyRequiresPhaseVisitation(t *testing.T) {
	visited := allPhasesVisited()
	visited[models.PhaseMoney] = false
	if IsReady(coveredTranscript(), visited) {
		t.Error("IsReady = true although MONEY was never visited")
	}
}

func TestIsReadyRequiresEveryTopicGroup(t *testing.T) {
	tests := []struct {
		name string
		drop int // index of the turn to remove from coveredTranscript
	}{
		{"missing what-to-sell", 0},
		{"missing to-whom", 1},
		{"missing how", 2},
		{"missing money", 3},
		{"missing company form", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			full := coveredTranscript()
			turns := append([]models.Turn{}, full[:tt.drop]...)
			turns = append(turns, full[tt.drop+1:]...)
			if IsReady(turns, allPhasesVisited()) {
				t.Errorf("IsReady = true without the %q turn", full[tt.drop].Content)
			}
		})
	}
}

func TestIsReadyAcceptsCompanyFormUncertainty(t *testing.T) {
	turns := coveredTranscript()[:4]
	turns = append(turns, models.Turn{Role: models.RoleUser, Content: "I am not sure which legal structure fits"})
	if !IsReady(turns, allPhasesVisited()) {
		t.Error("IsReady = false although the participant expressed company-form uncertainty")
	}
}

func TestIsReadyNoSpecialTopicsSubstitutesSpecialVisit(t *testing.T) {
	visited := allPhasesVisited()
	visited[models.PhaseSpecial] = false

	turns := coveredTranscript()
	if IsReady(turns, visited) {
		t.Fatal("IsReady = true although SPECIAL was not visited and nothing ruled it out")
	}

	turns = append(turns, models.Turn{Role: models.RoleUser, Content: "there are no special topics to discuss"})
	if !IsReady(turns, visited) {
		t.Error("IsReady = false although the participant declared no special topics")
	}
}

func TestIsReadyMatchesWholeWordsOnly(t *testing.T) {
	// "priceless" must not satisfy the money group.
	turns := coveredTranscript()
	turns[3] = models.Turn{Role: models.RoleUser, Content: "this opportunity is priceless"}
	if IsReady(turns, allPhasesVisited()) {
		t.Error("IsReady = true from a substring match inside another word")
	}
}

func TestIsReadyIsCaseInsensitive(t *testing.T) {
	turns := []models.Turn{
		{Role: models.RoleUser, Content: "I SELL A PRODUCT"},
		{Role: models.RoleUser, Content: "MY CUSTOMER IS LOCAL"},
		{Role: models.RoleUser, Content: "THE CHANNEL IS ONLINE"},
		{Role: models.RoleUser, Content: "THE PRICE IS HIGH"},
		{Role: models.RoleUser, Content: "COMPANY FORM UNDECIDED"},
	}
	if !IsReady(turns, allPhasesVisited()) {
		t.Error("IsReady = false for uppercase keyword mentions")
	}
}

func TestIsReadyEmptyTranscript(t *testing.T) {
	if IsReady(nil, allPhasesVisited()) {
		t.Error("IsReady = true for an empty transcript")
	}
	if IsReady(nil, models.NewVisitedPhases()) {
		t.Error("IsReady = true for a fresh session")
	}
}

func TestIsReadyScansAssistantTurnsToo(t *testing.T) {
	// Topic coverage may come from either side of the conversation.
	turns := []models.Turn{
		{Role: models.RoleAssistant, Content: "so you sell a product, a cleaning service"},
		{Role: models.RoleUser, Content: "yes, and my customer base is offices"},
		{Role: models.RoleAssistant, Content: "which sales channel will you use?"},
		{Role: models.RoleUser, Content: "direct sales, the price is per visit"},
		{Role: models.RoleUser, Content: "company form should be oy"},
	}
	if !IsReady(turns, allPhasesVisited()) {
		t.Error("IsReady = false although assistant turns completed the coverage")
	}
}
