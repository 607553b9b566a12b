// Package i18n provides the fixed synthetic assistant messages that the
// engine appends to transcripts, in the six supported interface languages.
//
// Every lookup resolves through a deterministic fallback chain: exact
// language, base language (region stripped), English, and finally the raw
// key, so a lookup never fails at runtime.
package i18n

import "strings"

// Key identifies one translatable engine message.
type Key string

const (
	// KeyReadyPrompt is announced once when the readiness transition fires.
	KeyReadyPrompt Key = "chat.readyPrompt"
	// KeyOnboardingQuestion opens the normal chat flow.
	KeyOnboardingQuestion Key = "chat.onboardingQuestion"
	// KeyDocsWorriesQuestion follows a document recap that covered all key topics.
	KeyDocsWorriesQuestion Key = "upload.worriesQuestion"
	// KeyDocsClarify follows a document recap with gaps left to fill.
	KeyDocsClarify Key = "upload.clarifyTogether"
	// KeySummaryConfirmedSMS is the text message sent after summary confirmation.
	KeySummaryConfirmedSMS Key = "notify.summaryConfirmed"
)

// DefaultLanguage terminates every fallback chain.
const DefaultLanguage = "en"

var messages = map[string]map[Key]string{
	"en": {
		KeyReadyPrompt:         "You've now covered all the key topics. Next we can confirm your details and book a time with a business advisor.",
		KeyOnboardingQuestion:  "Do you already have a registered company or Business ID (Y-tunnus), or are you just starting a new business?",
		KeyDocsWorriesQuestion: "Do you have any worries, questions, or specific topics you want to highlight to the business advisor?",
		KeyDocsClarify:         "I've read your documents. They're a good start, but we still need to clarify a few things together.",
		KeySummaryConfirmedSMS: "Your business summary is confirmed. Bring these notes to your advisory meeting.",
	},
	"fi": {
		KeyReadyPrompt:         "Olet nyt käynyt läpi kaikki keskeiset aiheet. Seuraavaksi voimme vahvistaa tietosi ja varata ajan yritysneuvojalle.",
		KeyOnboardingQuestion:  "Onko sinulla jo rekisteröity yritys tai Y-tunnus, vai oletko vasta perustamassa uutta yritystä?",
		KeyDocsWorriesQuestion: "Onko sinulla huolia, kysymyksiä tai aiheita, jotka haluat nostaa esiin neuvojalle?",
		KeyDocsClarify:         "Luimme dokumenttisi. Ne ovat hyvä alku, mutta täydennetään vielä muutama asia yhdessä.",
		KeySummaryConfirmedSMS: "Yritysyhteenvetosi on vahvistettu. Ota nämä muistiinpanot mukaan neuvontatapaamiseen.",
	},
	"sv": {
		KeyReadyPrompt:         "Du har nu gått igenom alla viktiga ämnen. Härnäst kan vi bekräfta dina uppgifter och boka en tid hos en företagsrådgivare.",
		KeyOnboardingQuestion:  "Har du redan ett registrerat företag eller FO-nummer (Y-tunnus), eller håller du på att starta ett nytt företag?",
		KeyDocsWorriesQuestion: "Har du några funderingar, frågor eller ämnen som du vill lyfta fram för företagsrådgivaren?",
		KeyDocsClarify:         "Vi har läst dina dokument. De är en bra början, men vi behöver ännu klargöra några saker tillsammans.",
		KeySummaryConfirmedSMS: "Din företagssammanfattning är bekräftad. Ta med dessa anteckningar till rådgivningsmötet.",
	},
	"ru": {
		KeyReadyPrompt:         "Вы рассмотрели все ключевые темы. Теперь мы можем подтвердить ваши данные и записать вас к бизнес-консультанту.",
		KeyOnboardingQuestion:  "У вас уже есть зарегистрированная компания или бизнес-идентификатор (Y-tunnus), или вы только начинаете новый бизнес?",
		KeyDocsWorriesQuestion: "Есть ли у вас вопросы или темы, которые вы хотите обсудить с бизнес-консультантом?",
		KeyDocsClarify:         "Мы прочитали ваши документы. Это хорошее начало, но некоторые вещи нужно ещё уточнить вместе.",
		KeySummaryConfirmedSMS: "Ваше бизнес-резюме подтверждено. Возьмите эти заметки с собой на консультацию.",
	},
	"ar": {
		KeyReadyPrompt:         "لقد غطيت الآن جميع المواضيع الأساسية. يمكننا بعد ذلك تأكيد بياناتك وحجز موعد مع مستشار الأعمال.",
		KeyOnboardingQuestion:  "هل لديك بالفعل شركة مسجلة أو رقم تعريف تجاري (Y-tunnus)، أم أنك بصدد بدء عمل جديد؟",
		KeyDocsWorriesQuestion: "هل لديك أي مخاوف أو أسئلة أو مواضيع تريد طرحها على مستشار الأعمال؟",
		KeyDocsClarify:         "قرأنا مستنداتك. إنها بداية جيدة، لكن ما زلنا بحاجة إلى توضيح بعض الأمور معًا.",
		KeySummaryConfirmedSMS: "تم تأكيد ملخص عملك. أحضر هذه الملاحظات معك إلى اجتماع الاستشارة.",
	},
	"fa": {
		KeyReadyPrompt:         "اکنون همه موضوعات کلیدی را پوشش داده‌اید. در ادامه می‌توانیم اطلاعات شما را تأیید کنیم و وقتی با مشاور کسب‌وکار رزرو کنیم.",
		KeyOnboardingQuestion:  "آیا از قبل شرکت ثبت‌شده یا شناسه تجاری (Y-tunnus) دارید، یا تازه در حال شروع یک کسب‌وکار جدید هستید؟",
		KeyDocsWorriesQuestion: "آیا نگرانی، سؤال یا موضوعی دارید که بخواهید با مشاور کسب‌وکار در میان بگذارید؟",
		KeyDocsClarify:         "مدارک شما را خواندیم. شروع خوبی است، اما هنوز باید چند مورد را با هم روشن کنیم.",
		KeySummaryConfirmedSMS: "خلاصه کسب‌وکار شما تأیید شد. این یادداشت‌ها را به جلسه مشاوره بیاورید.",
	},
}

// Lookup resolves a message for the given language through the fallback
// chain. Unknown keys resolve to the raw key string.
func Lookup(lang string, key Key) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if table, ok := messages[lang]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	// Base language: "pt-BR" -> "pt".
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		if table, ok := messages[lang[:i]]; ok {
			if msg, ok := table[key]; ok {
				return msg
			}
		}
	}
	if msg, ok := messages[DefaultLanguage][key]; ok {
		return msg
	}
	return string(key)
}

// Supported reports whether the language has a dedicated message table.
func Supported(lang string) bool {
	_, ok := messages[strings.ToLower(strings.TrimSpace(lang))]
	return ok
}
