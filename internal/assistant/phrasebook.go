package assistant

import (
	"fmt"

	"github.com/noah-isme/campus-connect-api/internal/models"
	"github.com/noah-isme/campus-connect-api/pkg/config"
)

// Phrase identifies one reply template.
type Phrase string

const (
	PhraseOffTopic       Phrase = "off_topic"
	PhraseGreeting       Phrase = "greeting"
	PhraseRoute          Phrase = "route"
	PhraseRouteApprox    Phrase = "route_approx"
	PhraseNotFound       Phrase = "not_found"
	PhraseLocation       Phrase = "location"
	PhraseNeedDepartment Phrase = "need_department"
	PhraseMaterials      Phrase = "materials"
	PhraseNoMaterials    Phrase = "no_materials"
	PhraseEvents         Phrase = "events"
	PhraseMess           Phrase = "mess"
	PhraseBus            Phrase = "bus"
	PhraseAI             Phrase = "ai"
	PhraseAIUnavailable  Phrase = "ai_unavailable"
)

// Phrases lists every template; each language must render all of them.
var Phrases = []Phrase{
	PhraseOffTopic, PhraseGreeting, PhraseRoute, PhraseRouteApprox, PhraseNotFound,
	PhraseLocation, PhraseNeedDepartment, PhraseMaterials, PhraseNoMaterials,
	PhraseEvents, PhraseMess, PhraseBus, PhraseAI, PhraseAIUnavailable,
}

// Facts carries the values interpolated into a phrase.
type Facts struct {
	Query          string
	From           *models.Department
	To             *models.Department
	Department     *models.Department
	DistanceMeters int
	Minutes        int
	Steps          []string
	MapsURL        string
	Materials      []models.Resource
	MaterialsDept  string
	Campus         config.CampusInfo
	Generated      string
}

// Reply is the dual-channel answer: Speech is plain prose, Display is markdown.
type Reply struct {
	Intent  Intent `json:"intent"`
	Phrase  Phrase `json:"phrase"`
	Lang    Lang   `json:"lang"`
	Speech  string `json:"speech"`
	Display string `json:"display"`
}

type phraseFunc func(f Facts) (speech, display string)

var phrasebook = map[Lang]map[Phrase]phraseFunc{
	LangEnglish: english,
	LangHindi:   hindi,
}

// Render builds the reply for phrase in lang, falling back to English for unknown languages.
func Render(intent Intent, phrase Phrase, lang Lang, f Facts) Reply {
	table, ok := phrasebook[lang]
	if !ok {
		lang, table = LangEnglish, english
	}
	fn, ok := table[phrase]
	if !ok {
		panic(fmt.Sprintf("assistant: phrase %q missing for %q", phrase, lang))
	}
	speech, display := fn(f)
	return Reply{Intent: intent, Phrase: phrase, Lang: lang, Speech: speech, Display: display}
}

func placeName(d *models.Department) string {
	if d == nil {
		return ""
	}
	return d.Name
}

func firstN(steps []string, n int) []string {
	if len(steps) > n {
		return steps[:n]
	}
	return steps
}
