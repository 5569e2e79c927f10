// Package stats holds the calendar and search aggregations over workout
// records. Everything here is a pure function over an already fetched
// snapshot: no storage access, no side effects, same output for same input.
package stats

import (
	"strconv"
	"strings"
	"time"

	"github.com/anishneema/GymSeekr/internal/workouts"
)

// calendarDayFormat is the key format of the calendar views, in local time.
const calendarDayFormat = "2006-01-02"

// MarkedDates maps each local calendar day with at least one workout to a
// marker. Multiple workouts on the same day collapse to one entry.
func MarkedDates(workoutList []workouts.Workout, loc *time.Location) map[string]bool {
	marked := make(map[string]bool)
	for _, workout := range workoutList {
		if workout.Deleted {
			continue
		}
		marked[workout.Date.In(loc).Format(calendarDayFormat)] = true
	}
	return marked
}

// WorkoutsOnDate returns the workouts whose date falls on the given local
// calendar day.
func WorkoutsOnDate(
	workoutList []workouts.Workout,
	year int, month time.Month, day int,
	loc *time.Location,
) []workouts.Workout {
	matched := make([]workouts.Workout, 0)
	for _, workout := range workoutList {
		if workout.Deleted {
			continue
		}
		wYear, wMonth, wDay := workout.Date.In(loc).Date()
		if wYear == year && wMonth == month && wDay == day {
			matched = append(matched, workout)
		}
	}
	return matched
}

// WeeklyCount counts the workouts in the local Sunday-to-Saturday week
// containing the reference instant. A workout at Sunday midnight exactly
// belongs to the week it opens, not the one it closes.
func WeeklyCount(workoutList []workouts.Workout, reference time.Time, loc *time.Location) int {
	start := weekStart(reference, loc)
	end := start.AddDate(0, 0, 7)

	count := 0
	for _, workout := range workoutList {
		if workout.Deleted {
			continue
		}
		date := workout.Date.In(loc)
		if !date.Before(start) && date.Before(end) {
			count++
		}
	}
	return count
}

// MonthlyCount counts the workouts in the local calendar month containing
// the reference instant.
func MonthlyCount(workoutList []workouts.Workout, reference time.Time, loc *time.Location) int {
	refYear, refMonth, _ := reference.In(loc).Date()

	count := 0
	for _, workout := range workoutList {
		if workout.Deleted {
			continue
		}
		year, month, _ := workout.Date.In(loc).Date()
		if year == refYear && month == refMonth {
			count++
		}
	}
	return count
}

// TextSearch returns the workouts with at least one field matching the query:
// the formatted date, an exercise name, or a weight rendered as a string.
// Matching is a case-insensitive substring check. An empty query matches
// every workout.
func TextSearch(workoutList []workouts.Workout, query string, loc *time.Location) []workouts.Workout {
	query = strings.ToLower(strings.TrimSpace(query))

	matched := make([]workouts.Workout, 0)
	for _, workout := range workoutList {
		if workout.Deleted {
			continue
		}
		if query == "" || workoutMatches(workout, query, loc) {
			matched = append(matched, workout)
		}
	}
	return matched
}

func workoutMatches(workout workouts.Workout, query string, loc *time.Location) bool {
	if strings.Contains(workout.Date.In(loc).Format(calendarDayFormat), query) {
		return true
	}
	for _, exercise := range workout.Exercises {
		if exercise.Deleted {
			continue
		}
		if strings.Contains(strings.ToLower(exercise.Name), query) {
			return true
		}
		weight := strconv.FormatFloat(exercise.Weight, 'f', -1, 64)
		if strings.Contains(weight, query) {
			return true
		}
	}
	return false
}

// weekStart is the local midnight of the Sunday opening the week that
// contains the given instant.
func weekStart(reference time.Time, loc *time.Location) time.Time {
	reference = reference.In(loc)
	year, month, day := reference.Date()
	midnight := time.Date(year, month, day, 0, 0, 0, 0, loc)
	return midnight.AddDate(0, 0, -int(midnight.Weekday()))
}
