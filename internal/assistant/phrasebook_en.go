package assistant

import (
	"fmt"
	"strings"

	"github.com/noah-isme/campus-connect-api/internal/models"
)

var english = map[Phrase]phraseFunc{
	PhraseOffTopic: func(Facts) (string, string) {
		return "I can only help with MMMUT campus questions, such as departments, directions or study materials.",
			"🎓 I help with **MMMUT campus only**: departments, navigation and study materials.\n\nTry:\n- \"Where is CSE?\"\n- \"Give me Civil notes\"\n- \"Library to CSE\""
	},
	PhraseGreeting: func(Facts) (string, string) {
		return "Hello! I am MMMUT Campus AI. How can I help you today?",
			"👋 **Hello!** I am MMMUT Campus AI.\n\nAsk me about departments, directions, study materials, events, the mess menu or buses."
	},
	PhraseRoute: func(f Facts) (string, string) {
		steps := f.Steps
		if len(steps) == 0 {
			steps = genericStepsEN(f.From, f.To)
		}
		spoken := make([]string, 0, 3)
		for i, s := range firstN(steps, 3) {
			spoken = append(spoken, fmt.Sprintf("Step %d: %s", i+1, s))
		}
		speech := fmt.Sprintf("To go from %s to %s, walk about %d meters, roughly %d minutes. %s.",
			placeName(f.From), placeName(f.To), f.DistanceMeters, f.Minutes, strings.Join(spoken, ". Then "))

		var b strings.Builder
		fmt.Fprintf(&b, "### 🚶 %s → %s\n\n", placeName(f.From), placeName(f.To))
		fmt.Fprintf(&b, "**Distance:** %d m · **Time:** ~%d min\n\n", f.DistanceMeters, f.Minutes)
		for i, s := range firstN(steps, 5) {
			fmt.Fprintf(&b, "%d. %s\n", i+1, s)
		}
		fmt.Fprintf(&b, "\n🗺️ [Open walking directions](%s)", f.MapsURL)
		return speech, b.String()
	},
	PhraseRouteApprox: func(f Facts) (string, string) {
		speech := fmt.Sprintf("Walking directions from %s to %s are unavailable right now. The distance is approximately %d meters, about %d minutes on foot. Please use the campus pathways.",
			placeName(f.From), placeName(f.To), f.DistanceMeters, f.Minutes)
		display := fmt.Sprintf("### 📍 %s → %s\n\nExact route unavailable.\n\n**Approximate distance:** %d m (~%d min walk)\n\n🗺️ [Open in Google Maps](%s)",
			placeName(f.From), placeName(f.To), f.DistanceMeters, f.Minutes, f.MapsURL)
		return speech, display
	},
	PhraseNotFound: func(f Facts) (string, string) {
		return fmt.Sprintf("I'm sorry, I couldn't find information about %s. Please give the full department name or its code.", f.Query),
			fmt.Sprintf("❓ I couldn't find **%s** on campus.\n\nTry:\n- \"Where is CSE?\"\n- \"Find Civil department\"\n- \"Location of Library\"", f.Query)
	},
	PhraseLocation: func(f Facts) (string, string) {
		d := f.Department
		building := d.Building
		if building == "" {
			building = "the main campus"
		}
		var speech strings.Builder
		fmt.Fprintf(&speech, "%s is located in %s", d.Name, building)
		if d.Floor != nil {
			fmt.Fprintf(&speech, ", %s", floorEN(*d.Floor))
		}
		speech.WriteString(".")
		if d.VisitingHours != "" {
			fmt.Fprintf(&speech, " Visiting hours are %s.", d.VisitingHours)
		}
		if d.Phone != "" {
			fmt.Fprintf(&speech, " You can contact them at %s.", d.Phone)
		}

		var display strings.Builder
		fmt.Fprintf(&display, "### 🏛️ %s (%s)\n\n", d.Name, d.Code)
		fmt.Fprintf(&display, "- **Building:** %s\n", building)
		if d.Floor != nil {
			if *d.Floor == 0 {
				display.WriteString("- **Floor:** Ground\n")
			} else {
				fmt.Fprintf(&display, "- **Floor:** %d\n", *d.Floor)
			}
		}
		if d.VisitingHours != "" {
			fmt.Fprintf(&display, "- **Hours:** %s\n", d.VisitingHours)
		}
		if d.Phone != "" {
			fmt.Fprintf(&display, "- **Phone:** %s\n", d.Phone)
		}
		fmt.Fprintf(&display, "- **Coordinates:** (%.4f, %.4f)\n\n🗺️ [View on map](%s)", d.Latitude, d.Longitude, mapLink(d))
		return speech.String(), display.String()
	},
	PhraseNeedDepartment: func(Facts) (string, string) {
		return "Please tell me a department name, like CSE or Civil.",
			"🤔 Please specify a department name, like **CSE** or **Civil**."
	},
	PhraseMaterials: func(f Facts) (string, string) {
		n := len(f.Materials)
		verb, noun := "are", "materials"
		if n == 1 {
			verb, noun = "is", "material"
		}
		forDept := ""
		if f.MaterialsDept != "" {
			forDept = " for " + strings.ToUpper(f.MaterialsDept)
		}
		titles := make([]string, 0, n)
		for _, r := range f.Materials {
			titles = append(titles, SpeechText(r.Title))
		}
		speech := fmt.Sprintf("There %s %d study %s available%s: %s. You can view them in the Study Hub.",
			verb, n, noun, forDept, strings.Join(titles, ", "))

		var b strings.Builder
		fmt.Fprintf(&b, "### 📚 %d study %s%s\n\n", n, noun, forDept)
		for _, r := range f.Materials {
			fmt.Fprintf(&b, "- [%s](%s)", r.Title, r.FileURL)
			if r.Subject != "" {
				fmt.Fprintf(&b, " · %s", r.Subject)
			}
			b.WriteString("\n")
		}
		b.WriteString("\nBrowse more in **StudyHub**.")
		return speech, b.String()
	},
	PhraseNoMaterials: func(f Facts) (string, string) {
		forDept := ""
		if f.MaterialsDept != "" {
			forDept = " for " + strings.ToUpper(f.MaterialsDept)
		}
		return fmt.Sprintf("There are no study materials available%s at the moment. You can upload your notes to help others.", forDept),
			fmt.Sprintf("📭 No study materials found%s.\n\nCheck **StudyHub** or try another department.", forDept)
	},
	PhraseEvents: func(f Facts) (string, string) {
		events := f.Campus.Events
		if len(events) == 0 {
			return "There are no upcoming events right now.", "### 🎉 Upcoming events\n\nNothing is scheduled right now."
		}
		spoken := make([]string, 0, len(events))
		var b strings.Builder
		b.WriteString("### 🎉 Upcoming events\n\n")
		for _, e := range events {
			spoken = append(spoken, fmt.Sprintf("%s on %s at %s", e.Name, e.Date, e.Venue))
			fmt.Fprintf(&b, "- **%s**: %s, %s\n", e.Name, e.Date, e.Venue)
		}
		return "Upcoming events: " + strings.Join(spoken, ". ") + ".", strings.TrimRight(b.String(), "\n")
	},
	PhraseMess: func(f Facts) (string, string) {
		meals := f.Campus.Mess.Meals
		if len(meals) == 0 {
			return "The mess menu has not been published yet.", "### 🍽️ Mess menu\n\nThe menu has not been published yet."
		}
		spoken := make([]string, 0, len(meals))
		var b strings.Builder
		b.WriteString("### 🍽️ Mess menu\n\n")
		for _, m := range meals {
			spoken = append(spoken, fmt.Sprintf("%s is %s", m.Meal, m.Dish))
			fmt.Fprintf(&b, "- **%s**: %s\n", m.Meal, m.Dish)
		}
		return "Today's mess menu: " + strings.Join(spoken, ". ") + ".", strings.TrimRight(b.String(), "\n")
	},
	PhraseBus: func(f Facts) (string, string) {
		buses := f.Campus.Buses
		if len(buses) == 0 {
			return "No buses are scheduled right now.", "### 🚌 Campus buses\n\nNo buses are scheduled right now."
		}
		spoken := make([]string, 0, len(buses))
		var b strings.Builder
		b.WriteString("### 🚌 Campus buses\n\n")
		for _, r := range buses {
			spoken = append(spoken, fmt.Sprintf("%s leaves at %s from %s", r.Route, r.Departure, r.Stop))
			fmt.Fprintf(&b, "- **%s**: %s from %s\n", r.Route, r.Departure, r.Stop)
		}
		return "Bus timings: " + strings.Join(spoken, ". ") + ".", strings.TrimRight(b.String(), "\n")
	},
	PhraseAI: func(f Facts) (string, string) {
		return SpeechText(f.Generated), f.Generated
	},
	PhraseAIUnavailable: func(Facts) (string, string) {
		return "Sorry, I couldn't get an answer right now. Please try again in a moment.",
			"⚠️ I couldn't get an answer right now. Please try again shortly."
	},
}

func genericStepsEN(from, to *models.Department) []string {
	return []string{
		"Head out of " + buildingOrName(from),
		"Follow the main campus road towards " + placeName(to),
		"Arrive at " + buildingOrName(to),
	}
}

func floorEN(floor int) string {
	if floor == 0 {
		return "on the ground floor"
	}
	return fmt.Sprintf("on floor %d", floor)
}

func buildingOrName(d *models.Department) string {
	if d == nil {
		return ""
	}
	if d.Building != "" {
		return d.Building
	}
	return d.Name
}

func mapLink(d *models.Department) string {
	if d.MapLink != "" {
		return d.MapLink
	}
	return fmt.Sprintf("https://www.google.com/maps/search/?api=1&query=%.6f,%.6f", d.Latitude, d.Longitude)
}
