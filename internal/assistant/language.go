package assistant

import "strings"

// Lang is a reply language.
type Lang string

const (
	LangEnglish Lang = "en"
	LangHindi   Lang = "hi"
)

// hindiMarkers are matched as substrings of the raw query.
var hindiMarkers = []string{
	"है", "कहा", "कहां", "कहाँ", "विभाग", "नोट्स", "लाइब्रेरी", "कैंटीन",
	"हिंदी", "हिन्दी", "से", "को", "के", "तक", "क्या", "नमस्ते", "नमस्कार",
}

// DetectLanguage picks Hindi when any marker occurs in the query and English otherwise.
func DetectLanguage(raw string) Lang {
	for _, marker := range hindiMarkers {
		if strings.Contains(raw, marker) {
			return LangHindi
		}
	}
	return LangEnglish
}
