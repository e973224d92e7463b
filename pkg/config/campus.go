package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CampusEvent is an upcoming campus event announced by the assistant.
type CampusEvent struct {
	Name  string `yaml:"name"`
	Date  string `yaml:"date"`
	Venue string `yaml:"venue"`
}

// MessMenu lists today's dishes per meal.
type MessMenu struct {
	Meals []MessMeal `yaml:"meals"`
}

// MessMeal is one line of the mess menu.
type MessMeal struct {
	Meal string `yaml:"meal"`
	Dish string `yaml:"dish"`
}

// BusRoute is a scheduled campus shuttle.
type BusRoute struct {
	Route     string `yaml:"route"`
	Departure string `yaml:"departure"`
	Stop      string `yaml:"stop"`
}

// CampusInfo groups the fixed listings served by the assistant.
type CampusInfo struct {
	Events []CampusEvent `yaml:"events"`
	Mess   MessMenu      `yaml:"mess"`
	Buses  []BusRoute    `yaml:"buses"`
}

// DefaultCampusInfo returns the listings used when no campus info file is configured.
func DefaultCampusInfo() CampusInfo {
	return CampusInfo{
		Events: []CampusEvent{
			{Name: "Heats 2025", Date: "27th Dec", Venue: "MPH Hall"},
			{Name: "Alumni Meet", Date: "25th Dec", Venue: "Guest House"},
		},
		Mess: MessMenu{Meals: []MessMeal{
			{Meal: "Breakfast", Dish: "Puri Sabzi"},
			{Meal: "Dinner", Dish: "Paneer Butter Masala"},
		}},
		Buses: []BusRoute{
			{Route: "City to Campus", Departure: "8:00 AM", Stop: "Golghar"},
			{Route: "Campus to City", Departure: "5:00 PM", Stop: "Main Gate"},
		},
	}
}

// LoadCampusInfo reads listings from a YAML file. An empty path yields the defaults.
// Sections missing from the file keep their default values.
func LoadCampusInfo(path string) (CampusInfo, error) {
	info := DefaultCampusInfo()
	if path == "" {
		return info, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return info, fmt.Errorf("read campus info: %w", err)
	}

	var parsed CampusInfo
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return info, fmt.Errorf("parse campus info: %w", err)
	}

	if parsed.Events != nil {
		info.Events = parsed.Events
	}
	if parsed.Mess.Meals != nil {
		info.Mess = parsed.Mess
	}
	if parsed.Buses != nil {
		info.Buses = parsed.Buses
	}
	return info, nil
}
