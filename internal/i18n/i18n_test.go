package i18n

import (
	"strings"
	"testing"
)

func TestLookupExactLanguage(t *testing.T) {
	got := Lookup("fi", KeyOnboardingQuestion)
	if !strings.Contains(got, "Y-tunnus") {
		t.Errorf("Finnish onboarding question = %q", got)
	}
	if got == Lookup("en", KeyOnboardingQuestion) {
		t.Error("Finnish lookup returned the English message")
	}
}

func TestLookupStripsRegion(t *testing.T) {
	if Lookup("sv-FI", KeyReadyPrompt) != Lookup("sv", KeyReadyPrompt) {
		t.Error("region-tagged language did not fall back to its base")
	}
	if Lookup("SV_fi", KeyReadyPrompt) != Lookup("sv", KeyReadyPrompt) {
		t.Error("lookup is not case and separator insensitive")
	}
}

func TestLookupFallsBackToEnglish(t *testing.T) {
	if Lookup("de", KeyReadyPrompt) != Lookup("en", KeyReadyPrompt) {
		t.Error("unsupported language did not fall back to English")
	}
	if Lookup("", KeyDocsClarify) != Lookup("en", KeyDocsClarify) {
		t.Error("empty language did not fall back to English")
	}
}

func TestLookupUnknownKey(t *testing.T) {
	if got := Lookup("en", Key("no.such.key")); got != "no.such.key" {
		t.Errorf("unknown key lookup = %q, want the raw key", got)
	}
}

func TestEveryLanguageCoversEveryKey(t *testing.T) {
	keys := []Key{
		KeyReadyPrompt,
		KeyOnboardingQuestion,
		KeyDocsWorriesQuestion,
		KeyDocsClarify,
		KeySummaryConfirmedSMS,
	}
	for lang, table := range messages {
		for _, key := range keys {
			if msg, ok := table[key]; !ok || msg == "" {
				t.Errorf("language %q is missing key %q", lang, key)
			}
		}
	}
}

func TestSupported(t *testing.T) {
	for _, lang := range []string{"en", "fi", "sv", "ru", "ar", "fa"} {
		if !Supported(lang) {
			t.Errorf("Supported(%q) = false", lang)
		}
	}
	if Supported("de") {
		t.Error("Supported(de) = true")
	}
}
