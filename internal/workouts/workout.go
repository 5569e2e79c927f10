package workouts

import (
	"errors"
	"time"
)

var (
	ErrWorkoutNotFound  = errors.New("workout not found")
	ErrExerciseNotFound = errors.New("exercise not found")
	// ErrVersionConflict means the record was mutated remotely since the
	// version token was observed.
	ErrVersionConflict = errors.New("version conflict")
)

// Workout is a dated collection of logged exercises owned by one user.
// Version is the optimistic-concurrency token required on delete; Deleted
// records stay in the store and get filtered out on read.
type Workout struct {
	ID        string     `json:"id"`
	Date      time.Time  `json:"date"`
	Owner     string     `json:"owner"`
	Exercises []Exercise `json:"exercises"`
	Version   int        `json:"version"`
	Deleted   bool       `json:"-"`
}

// Exercise is one logged movement within a workout. Date and Owner are
// denormalized copies of the parent workout's values. Weight is in lbs.
type Exercise struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Sets      int       `json:"sets"`
	Reps      int       `json:"reps"`
	Weight    float64   `json:"weight"`
	Date      time.Time `json:"date"`
	Owner     string    `json:"owner"`
	WorkoutID string    `json:"workoutId"`
	Version   int       `json:"version"`
	Deleted   bool      `json:"-"`
}

// ExerciseSuggestions is the fixed in-app list offered by the tracker;
// free-text names are accepted too.
var ExerciseSuggestions = []string{
	"Bench Press",
	"Squat",
	"Deadlift",
	"Overhead Press",
	"Barbell Row",
	"Lat Pulldown",
	"Pull Up",
	"Push Up",
	"Bicep Curl",
	"Tricep Extension",
	"Leg Press",
	"Lunges",
	"Leg Curl",
	"Calf Raise",
	"Plank",
}
