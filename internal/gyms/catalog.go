package gyms

import (
	"errors"
	"strings"
)

// MinEquipmentQueryLen is the shortest accepted equipment filter; anything
// shorter matches half the catalog and is rejected.
const MinEquipmentQueryLen = 3

var ErrEquipmentQueryTooShort = errors.New("equipment query too short")

// Gym is a curated catalog entry: equipment, hours and description are not
// available from the places provider, so they come from this static catalog,
// matched by gym name.
type Gym struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Address     string   `json:"address"`
	Equipment   []string `json:"equipment"`
	Hours       string   `json:"hours"`
	Description string   `json:"description"`
}

var gymCatalog = []Gym{
	{
		ID:          "1",
		Name:        "Underground Fitness",
		Address:     "2217 San Ramon Valley Blvd Suite E, San Ramon, CA",
		Equipment:   []string{"Squat Racks", "Deadlift Platforms", "Bench Press"},
		Hours:       "Mon-Fri: 6am-10pm, Sat-Sun: 8am-8pm",
		Description: "A premier powerlifting gym with state-of-the-art equipment.",
	},
	{
		ID:          "2",
		Name:        "Iron Paradise",
		Address:     "456 Elm St, City, State",
		Equipment:   []string{"Power Racks", "Olympic Platforms", "Specialty Bars"},
		Hours:       "Mon-Sun: 24 hours",
		Description: "Your 24/7 powerlifting haven with a wide range of specialty equipment.",
	},
	{
		ID:          "3",
		Name:        "24 Hour Fitness",
		Address:     "4770 Willow Rd, Pleasanton, CA",
		Equipment:   []string{"Bench Press", "Deadlift Bars", "Squat Racks"},
		Hours:       "Mon-Sun: 24 hours",
		Description: "Open around the clock, with the powerlifting basics covered.",
	},
	{
		ID:          "4",
		Name:        "California Strength",
		Address:     "1538, 2021 Omega Rd #120, San Ramon, CA",
		Equipment:   []string{"Bench Press", "Deadlift Bars", "Squat Racks"},
		Hours:       "Mon-Sun: 24 hours",
		Description: "Home of olympic weightlifting in the East Bay.",
	},
}

// Lookup finds a catalog entry by exact gym name.
func Lookup(name string) (*Gym, bool) {
	for i := range gymCatalog {
		if gymCatalog[i].Name == name {
			return &gymCatalog[i], true
		}
	}
	return nil, false
}

// Details returns the catalog entry for a place, or a stub when the gym is
// not curated.
func Details(place Place) Gym {
	if gym, ok := Lookup(place.Name); ok {
		return *gym
	}
	return Gym{
		ID:          place.PlaceID,
		Name:        place.Name,
		Address:     place.Vicinity,
		Equipment:   []string{"Information not available"},
		Hours:       "Information not available",
		Description: "No additional information available.",
	}
}

// FilterByEquipment keeps the places whose catalog entry lists equipment
// matching the query, case-insensitive. Places unknown to the catalog are
// dropped since nothing is known about their equipment.
func FilterByEquipment(places []Place, query string) ([]Place, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return places, nil
	}
	if len(query) < MinEquipmentQueryLen {
		return nil, ErrEquipmentQueryTooShort
	}

	query = strings.ToLower(query)
	filtered := make([]Place, 0)
	for _, place := range places {
		gym, ok := Lookup(place.Name)
		if !ok {
			continue
		}
		for _, equipment := range gym.Equipment {
			if strings.Contains(strings.ToLower(equipment), query) {
				filtered = append(filtered, place)
				break
			}
		}
	}
	return filtered, nil
}
