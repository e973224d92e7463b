package assistant

import (
	"regexp"
	"strings"
)

// Intent is the classified purpose of a query.
type Intent string

const (
	IntentOffTopic       Intent = "off_topic"
	IntentGreeting       Intent = "greeting"
	IntentNavigation     Intent = "navigation"
	IntentLocation       Intent = "location"
	IntentStudyMaterials Intent = "study_materials"
	IntentEvents         Intent = "events"
	IntentMess           Intent = "mess"
	IntentBus            Intent = "bus"
	IntentFallback       Intent = "fallback"
)

// Classification is the outcome of Classify.
type Classification struct {
	Intent     Intent
	Lang       Lang
	Query      string
	Normalized string
	// From and To are set for IntentNavigation.
	From string
	To   string
}

type rule struct {
	intent Intent
	match  func(c *Classification) bool
}

// rules is evaluated top to bottom; the first match wins.
var rules = []rule{
	{IntentOffTopic, func(c *Classification) bool { return fullMatch(c.Normalized, offTopicPhrases) }},
	{IntentGreeting, func(c *Classification) bool { return fullMatch(c.Normalized, greetingPhrases) }},
	{IntentNavigation, func(c *Classification) bool {
		from, to, ok := NavigationEndpoints(c.Normalized)
		if ok {
			c.From, c.To = from, to
		}
		return ok
	}},
	{IntentLocation, keywords(`\b(where|location|find|locate|department|dept)\b`, "कहा", "कहां", "कहाँ", "विभाग")},
	{IntentStudyMaterials, keywords(`\b(notes?|study|materials?|pdfs?|resources?)\b`, "नोट्स", "पढ़ाई", "सामग्री")},
	{IntentEvents, keywords(`\b(events?|fests?|festival)\b`, "इवेंट", "कार्यक्रम")},
	{IntentMess, keywords(`\b(mess|food|menu)\b`, "खाना", "मेस")},
	{IntentBus, keywords(`\b(bus|buses|transport|shuttle)\b`, "बस")},
	{IntentFallback, func(*Classification) bool { return true }},
}

var offTopicPhrases = setOf(
	"weather", "news", "stock", "movie", "song", "joke", "elon musk", "chatgpt",
	"who are you", "bye", "thank you", "thanks", "love", "date", "time",
	"capital", "president", "prime minister",
)

var greetingPhrases = setOf("hello", "hi", "hey", "namaste", "नमस्ते", "नमस्कार")

// Classify assigns exactly one intent to the query.
func Classify(query string) Classification {
	c := Classification{
		Query:      query,
		Lang:       DetectLanguage(query),
		Normalized: Normalize(query),
	}
	for _, r := range rules {
		if r.match(&c) {
			c.Intent = r.intent
			return c
		}
	}
	c.Intent = IntentFallback
	return c
}

// Normalize lower-cases the query and collapses whitespace.
func Normalize(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}

func fullMatch(normalized string, set map[string]struct{}) bool {
	_, ok := set[strings.TrimRight(normalized, "?!.")]
	return ok
}

func keywords(english string, hindi ...string) func(*Classification) bool {
	re := regexp.MustCompile(english)
	return func(c *Classification) bool {
		if re.MatchString(c.Normalized) {
			return true
		}
		for _, word := range hindi {
			if strings.Contains(c.Normalized, word) {
				return true
			}
		}
		return false
	}
}

func setOf(values ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
