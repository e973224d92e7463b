package assistant

import (
	"regexp"
	"strings"
)

const (
	latinPlace = `([a-z0-9 .&]+?)`
	anyPlace   = `([\p{L}\p{M}0-9 .&]+?)`
)

var navigationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(?:how (?:do i|to|can i) (?:go|get|reach)|directions?|route|navigate|path)\s+(?:from\s+)?` + latinPlace + `\s+(?:to|->|till)\s+` + latinPlace + `\??$`),
	regexp.MustCompile(`from\s+` + latinPlace + `\s+to\s+` + latinPlace + `\??$`),
	regexp.MustCompile(`^` + anyPlace + `\s+से\s+` + anyPlace + `(?:\s+तक)?(?:\s+(?:कैसे जाएं|कैसे जाऊं|रास्ता))?\??$`),
	regexp.MustCompile(`^` + latinPlace + `\s+(?:to|->)\s+` + latinPlace + `\??$`),
}

// questionStarts never begin a place name; "how to go to library" is not a route from "how".
var questionStarts = setOf("how", "what", "where", "when", "why", "who", "which", "i", "want", "need", "is", "can", "go", "way", "tell", "show", "please", "give", "send", "take", "help")

// NavigationEndpoints extracts the from/to fragments of a routing request.
func NavigationEndpoints(normalized string) (string, string, bool) {
	for _, re := range navigationPatterns {
		m := re.FindStringSubmatch(normalized)
		if m == nil {
			continue
		}
		from, to := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
		if from == "" || to == "" || startsWithQuestion(from) {
			continue
		}
		return from, to, true
	}
	return "", "", false
}

func startsWithQuestion(fragment string) bool {
	first := strings.Fields(fragment)
	if len(first) == 0 {
		return true
	}
	_, ok := questionStarts[first[0]]
	return ok
}

type alias struct {
	word string
	code string
}

// hindiPlaces maps Devanagari spellings to department codes.
var hindiPlaces = []alias{
	{"लाइब्रेरी", "LIB"},
	{"पुस्तकालय", "LIB"},
	{"कैंटीन", "CAN"},
	{"हॉस्टल", "HOS"},
	{"छात्रावास", "HOS"},
	{"सीएसई", "CSE"},
	{"सिविल", "CE"},
}

// CanonicalPlace rewrites a Devanagari place fragment to its department code. Other fragments
// are returned trimmed.
func CanonicalPlace(fragment string) string {
	fragment = strings.TrimSpace(fragment)
	for _, a := range hindiPlaces {
		if strings.Contains(fragment, a.word) {
			return a.code
		}
	}
	return fragment
}

var (
	codePattern          = regexp.MustCompile(`\b(cse|ce|ee|me|ece|it|che|lib|can|adm|hos)\b`)
	locationPhrase       = regexp.MustCompile(`(?:where is|where's|find|location of|locate)\s+(.+?)\??$`)
	hindiLocationPhrase  = regexp.MustCompile(`(.+?)\s+(?:कहा|कहां|कहाँ)\s+है`)
	locationStopwords    = setOf("where", "is", "the", "location", "of", "find", "locate", "department", "dept", "a", "an", "कहा", "कहां", "कहाँ", "है", "विभाग", "में", "का", "की")
	ambiguousCodes       = setOf("me", "it")
	materialsDeptPattern = regexp.MustCompile(`\b(cse|civil|mechanical|electrical|ece|it|mca|architecture)\b`)
	hindiMaterialDepts   = []alias{{"सीएसई", "cse"}, {"सिविल", "civil"}, {"मैकेनिकल", "mechanical"}}
)

// LocationCandidate derives the department name or code a location query asks about.
func LocationCandidate(normalized string) string {
	if code := firstCode(codePattern, normalized); code != "" {
		return code
	}
	for _, a := range hindiPlaces {
		if strings.Contains(normalized, a.word) {
			return a.code
		}
	}
	if m := locationPhrase.FindStringSubmatch(normalized); m != nil {
		if candidate := stripStopwords(m[1]); candidate != "" {
			return candidate
		}
	}
	if m := hindiLocationPhrase.FindStringSubmatch(normalized); m != nil {
		if candidate := stripStopwords(m[1]); candidate != "" {
			return candidate
		}
	}
	return stripStopwords(normalized)
}

// MaterialsDepartment returns the department a study-materials query names, or "".
func MaterialsDepartment(normalized string) string {
	if dept := firstCode(materialsDeptPattern, normalized); dept != "" {
		return dept
	}
	for _, a := range hindiMaterialDepts {
		if strings.Contains(normalized, a.word) {
			return a.code
		}
	}
	return ""
}

// firstCode prefers the first unambiguous match, since "me" and "it" are also plain English words.
func firstCode(re *regexp.Regexp, normalized string) string {
	matches := re.FindAllStringSubmatch(normalized, -1)
	if len(matches) == 0 {
		return ""
	}
	for _, m := range matches {
		if _, ambiguous := ambiguousCodes[m[1]]; !ambiguous {
			return m[1]
		}
	}
	return matches[0][1]
}

func stripStopwords(text string) string {
	var kept []string
	for _, word := range strings.Fields(text) {
		word = strings.Trim(word, "?!.,'\"")
		if word == "" {
			continue
		}
		if _, stop := locationStopwords[word]; stop {
			continue
		}
		kept = append(kept, word)
	}
	return strings.Join(kept, " ")
}
