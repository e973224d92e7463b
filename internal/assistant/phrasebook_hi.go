package assistant

import (
	"fmt"
	"strings"

	"github.com/noah-isme/campus-connect-api/internal/models"
)

var hindi = map[Phrase]phraseFunc{
	PhraseOffTopic: func(Facts) (string, string) {
		return "क्षमा करें, मैं केवल MMMUT कैंपस से जुड़े सवालों का जवाब दे सकती हूँ, जैसे विभाग की जानकारी, रास्ते या नोट्स।",
			"🎓 मैं सिर्फ़ **MMMUT कैंपस** से जुड़ी मदद करती हूँ: विभाग, रास्ते और पढ़ाई की सामग्री।\n\nपूछ कर देखें:\n- \"CSE कहाँ है?\"\n- \"सिविल के नोट्स\"\n- \"लाइब्रेरी से कैंटीन\""
	},
	PhraseGreeting: func(Facts) (string, string) {
		return "नमस्ते! मैं MMMUT कैंपस AI हूँ। मैं आपकी कैसे मदद कर सकती हूँ?",
			"🙏 **नमस्ते!** मैं MMMUT कैंपस AI हूँ।\n\nविभाग, रास्ते, नोट्स, कार्यक्रम, मेस या बस के बारे में पूछिए।"
	},
	PhraseRoute: func(f Facts) (string, string) {
		steps := f.Steps
		if len(steps) == 0 {
			steps = genericStepsHI(f.From, f.To)
		}
		spoken := make([]string, 0, 3)
		for i, s := range firstN(steps, 3) {
			spoken = append(spoken, fmt.Sprintf("%d. %s", i+1, s))
		}
		speech := fmt.Sprintf("%s से %s जाने के लिए लगभग %d मीटर चलना है, जिसमें करीब %d मिनट लगेंगे। %s।",
			placeName(f.From), placeName(f.To), f.DistanceMeters, f.Minutes, strings.Join(spoken, "। फिर "))

		var b strings.Builder
		fmt.Fprintf(&b, "### 🚶 %s से %s\n\n", placeName(f.From), placeName(f.To))
		fmt.Fprintf(&b, "**दूरी:** %d मीटर · **समय:** लगभग %d मिनट\n\n", f.DistanceMeters, f.Minutes)
		for i, s := range firstN(steps, 5) {
			fmt.Fprintf(&b, "%d. %s\n", i+1, s)
		}
		fmt.Fprintf(&b, "\n🗺️ [पैदल रास्ता देखें](%s)", f.MapsURL)
		return speech, b.String()
	},
	PhraseRouteApprox: func(f Facts) (string, string) {
		speech := fmt.Sprintf("%s से %s की दूरी लगभग %d मीटर है, पैदल करीब %d मिनट। अभी सटीक रास्ता उपलब्ध नहीं है, कृपया कैंपस के रास्तों का उपयोग करें।",
			placeName(f.From), placeName(f.To), f.DistanceMeters, f.Minutes)
		display := fmt.Sprintf("### 📍 %s से %s\n\nसटीक रास्ता अभी उपलब्ध नहीं है।\n\n**अनुमानित दूरी:** %d मीटर (लगभग %d मिनट पैदल)\n\n🗺️ [Google Maps में खोलें](%s)",
			placeName(f.From), placeName(f.To), f.DistanceMeters, f.Minutes, f.MapsURL)
		return speech, display
	},
	PhraseNotFound: func(f Facts) (string, string) {
		return fmt.Sprintf("क्षमा करें, मुझे %s के बारे में जानकारी नहीं मिली। कृपया विभाग का पूरा नाम या कोड बताएं।", f.Query),
			fmt.Sprintf("❓ कैंपस में **%s** नहीं मिला।\n\nऐसे पूछें:\n- \"CSE कहाँ है?\"\n- \"सिविल विभाग कहाँ है?\"\n- \"लाइब्रेरी कहाँ है?\"", f.Query)
	},
	PhraseLocation: func(f Facts) (string, string) {
		d := f.Department
		building := d.Building
		if building == "" {
			building = "मुख्य कैंपस"
		}
		var speech strings.Builder
		fmt.Fprintf(&speech, "%s, %s में", d.Name, building)
		if d.Floor != nil {
			fmt.Fprintf(&speech, " %s", floorHI(*d.Floor))
		}
		speech.WriteString(" स्थित है।")
		if d.VisitingHours != "" {
			fmt.Fprintf(&speech, " मिलने का समय %s है।", d.VisitingHours)
		}
		if d.Phone != "" {
			fmt.Fprintf(&speech, " संपर्क नंबर %s है।", d.Phone)
		}

		var display strings.Builder
		fmt.Fprintf(&display, "### 🏛️ %s (%s)\n\n", d.Name, d.Code)
		fmt.Fprintf(&display, "- **भवन:** %s\n", building)
		if d.Floor != nil {
			if *d.Floor == 0 {
				display.WriteString("- **मंज़िल:** भूतल\n")
			} else {
				fmt.Fprintf(&display, "- **मंज़िल:** %d\n", *d.Floor)
			}
		}
		if d.VisitingHours != "" {
			fmt.Fprintf(&display, "- **समय:** %s\n", d.VisitingHours)
		}
		if d.Phone != "" {
			fmt.Fprintf(&display, "- **फ़ोन:** %s\n", d.Phone)
		}
		fmt.Fprintf(&display, "- **निर्देशांक:** (%.4f, %.4f)\n\n🗺️ [नक्शे पर देखें](%s)", d.Latitude, d.Longitude, mapLink(d))
		return speech.String(), display.String()
	},
	PhraseNeedDepartment: func(Facts) (string, string) {
		return "कृपया विभाग का नाम बताएं, जैसे CSE या सिविल।",
			"🤔 कृपया विभाग का नाम बताएं, जैसे **CSE** या **सिविल**।"
	},
	PhraseMaterials: func(f Facts) (string, string) {
		n := len(f.Materials)
		forDept := ""
		if f.MaterialsDept != "" {
			forDept = strings.ToUpper(f.MaterialsDept) + " के लिए "
		}
		titles := make([]string, 0, n)
		for _, r := range f.Materials {
			titles = append(titles, SpeechText(r.Title))
		}
		speech := fmt.Sprintf("%s%d अध्ययन सामग्री उपलब्ध है: %s। आप इन्हें स्टडी हब में देख सकते हैं।",
			forDept, n, strings.Join(titles, ", "))

		var b strings.Builder
		fmt.Fprintf(&b, "### 📚 %s%d अध्ययन सामग्री\n\n", forDept, n)
		for _, r := range f.Materials {
			fmt.Fprintf(&b, "- [%s](%s)", r.Title, r.FileURL)
			if r.Subject != "" {
				fmt.Fprintf(&b, " · %s", r.Subject)
			}
			b.WriteString("\n")
		}
		b.WriteString("\nऔर सामग्री **StudyHub** में देखें।")
		return speech, b.String()
	},
	PhraseNoMaterials: func(f Facts) (string, string) {
		forDept := ""
		if f.MaterialsDept != "" {
			forDept = strings.ToUpper(f.MaterialsDept) + " के लिए "
		}
		return fmt.Sprintf("%sअभी कोई अध्ययन सामग्री उपलब्ध नहीं है। आप अपने नोट्स अपलोड करके दूसरों की मदद कर सकते हैं।", forDept),
			fmt.Sprintf("📭 %sकोई सामग्री नहीं मिली।\n\n**StudyHub** देखें या कोई दूसरा विभाग आज़माएं।", forDept)
	},
	PhraseEvents: func(f Facts) (string, string) {
		events := f.Campus.Events
		if len(events) == 0 {
			return "अभी कोई कार्यक्रम तय नहीं है।", "### 🎉 आने वाले कार्यक्रम\n\nअभी कोई कार्यक्रम तय नहीं है।"
		}
		spoken := make([]string, 0, len(events))
		var b strings.Builder
		b.WriteString("### 🎉 आने वाले कार्यक्रम\n\n")
		for _, e := range events {
			spoken = append(spoken, fmt.Sprintf("%s, %s को %s में", e.Name, e.Date, e.Venue))
			fmt.Fprintf(&b, "- **%s**: %s, %s\n", e.Name, e.Date, e.Venue)
		}
		return "आने वाले कार्यक्रम: " + strings.Join(spoken, "। ") + "।", strings.TrimRight(b.String(), "\n")
	},
	PhraseMess: func(f Facts) (string, string) {
		meals := f.Campus.Mess.Meals
		if len(meals) == 0 {
			return "मेस का मेन्यू अभी जारी नहीं हुआ है।", "### 🍽️ मेस मेन्यू\n\nमेन्यू अभी जारी नहीं हुआ है।"
		}
		spoken := make([]string, 0, len(meals))
		var b strings.Builder
		b.WriteString("### 🍽️ मेस मेन्यू\n\n")
		for _, m := range meals {
			spoken = append(spoken, fmt.Sprintf("%s में %s", m.Meal, m.Dish))
			fmt.Fprintf(&b, "- **%s**: %s\n", m.Meal, m.Dish)
		}
		return "आज मेस में " + strings.Join(spoken, ", ") + " है।", strings.TrimRight(b.String(), "\n")
	},
	PhraseBus: func(f Facts) (string, string) {
		buses := f.Campus.Buses
		if len(buses) == 0 {
			return "अभी कोई बस निर्धारित नहीं है।", "### 🚌 कैंपस बस\n\nअभी कोई बस निर्धारित नहीं है।"
		}
		spoken := make([]string, 0, len(buses))
		var b strings.Builder
		b.WriteString("### 🚌 कैंपस बस\n\n")
		for _, r := range buses {
			spoken = append(spoken, fmt.Sprintf("%s की बस %s बजे %s से चलती है", r.Route, r.Departure, r.Stop))
			fmt.Fprintf(&b, "- **%s**: %s, %s से\n", r.Route, r.Departure, r.Stop)
		}
		return "बस का समय: " + strings.Join(spoken, "। ") + "।", strings.TrimRight(b.String(), "\n")
	},
	PhraseAI: func(f Facts) (string, string) {
		return SpeechText(f.Generated), f.Generated
	},
	PhraseAIUnavailable: func(Facts) (string, string) {
		return "क्षमा करें, अभी जवाब नहीं मिल पाया। कृपया थोड़ी देर बाद फिर से पूछें।",
			"⚠️ अभी जवाब नहीं मिल पाया। कृपया थोड़ी देर बाद फिर कोशिश करें।"
	},
}

func genericStepsHI(from, to *models.Department) []string {
	return []string{
		buildingOrName(from) + " से बाहर निकलें",
		"मुख्य कैंपस रोड से " + placeName(to) + " की ओर चलें",
		buildingOrName(to) + " पहुँचें",
	}
}

func floorHI(floor int) string {
	if floor == 0 {
		return "भूतल पर"
	}
	return fmt.Sprintf("मंज़िल %d पर", floor)
}
