// Package flow implements the readiness heuristic over the conversation
// transcript and the visited-phase set.
package flow

import (
	"regexp"
	"strings"

	"github.com/intakedesk/intakedesk/internal/models"
)

// Topic indicator keyword sets, version 1.
//
// Each group is satisfied when ANY of its keywords appears as a whole-word
// match in the lowercased transcript. The interview is multilingual, so the
// sets mix English and Finnish indicators; they are kept as explicit data
// tables so per-language extension never touches the decision logic.
// Keyword presence alone is deliberately weak evidence: the heuristic also
// requires phase visitation, and both signals together gate readiness.
var (
	whatSellKeywords = []string{
		"what", "mitä", "product", "service", "tuote", "palvelu",
	}
	toWhomKeywords = []string{
		"to whom", "asiakas", "customer", "target", "kohderyh", "segment",
	}
	howKeywords = []string{
		"how", "channel", "myyn", "kanava", "verkkokauppa", "store",
		"delivery", "toimitus", "operations", "toiminta",
	}
	moneyKeywords = []string{
		"price", "pricing", "budget", "cost", "revenue", "tulo",
		"kustannus", "rahoitus", "funding", "kassavirta",
	}
	companyFormKeywords = []string{
		"company form", "toiminimi", "osakeyhti", "oy", "sole trader",
		"osuuskunta", "ky", "ay",
	}
	companyFormUnsureKeywords = []string{
		"not sure", "en tiedä", "epävarma",
	}
	noSpecialTopicsKeywords = []string{
		"no special", "ei erityistä", "ei erityisiä",
	}
)

var (
	whatSellPattern          = compileKeywords(whatSellKeywords)
	toWhomPattern            = compileKeywords(toWhomKeywords)
	howPattern               = compileKeywords(howKeywords)
	moneyPattern             = compileKeywords(moneyKeywords)
	companyFormPattern       = compileKeywords(companyFormKeywords)
	companyFormUnsurePattern = compileKeywords(companyFormUnsureKeywords)
	noSpecialTopicsPattern   = compileKeywords(noSpecialTopicsKeywords)
)

// compileKeywords builds a single whole-word alternation pattern from a
// keyword list.
func compileKeywords(words []string) *regexp.Regexp {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

// IsReady reports whether the interview is substantively complete. It is a
// pure function over the transcript and the visited-phase set, recomputed
// on every change rather than stored, so it can never diverge from the
// underlying data.
//
// The heuristic is conservative: it returns false on any ambiguity and
// never distinguishes "definitely not ready" from "no signal yet".
func IsReady(turns []models.Turn, visited map[models.Phase]bool) bool {
	var b strings.Builder
	for _, t := range turns {
		b.WriteString(strings.ToLower(t.Content))
		b.WriteByte(' ')
	}
	text := b.String()

	phasesComplete := visited[models.PhaseBasics] &&
		visited[models.PhaseIdea] &&
		visited[models.PhaseHow] &&
		visited[models.PhaseMoney] &&
		(visited[models.PhaseSpecial] || noSpecialTopicsPattern.MatchString(text))
	if !phasesComplete {
		return false
	}

	return whatSellPattern.MatchString(text) &&
		toWhomPattern.MatchString(text) &&
		howPattern.MatchString(text) &&
		moneyPattern.MatchString(text) &&
		(companyFormPattern.MatchString(text) || companyFormUnsurePattern.MatchString(text))
}
