package workouts

import (
	"context"
	"errors"
	"time"

	"github.com/anishneema/GymSeekr/internal/telemetry/metrics"
	"github.com/anishneema/GymSeekr/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=workouts

type workoutsRepo interface {
	Add(ctx context.Context, workout Workout) (*Workout, error)
	Get(ctx context.Context, id string) (*Workout, error)
	List(ctx context.Context, params ListParams) ([]Workout, error)
	DeleteWorkout(ctx context.Context, id string, version int) error
	GetExercise(ctx context.Context, id string) (*Exercise, error)
	DeleteExercise(ctx context.Context, id string, version int) error
}

type ExerciseInput struct {
	Name   string  `json:"name"`
	Sets   int     `json:"sets"`
	Reps   int     `json:"reps"`
	Weight float64 `json:"weight"`
}

type SaveParams struct {
	Date      time.Time
	Owner     string
	Exercises []ExerciseInput
}

// Service is the single write/read path for workout records. All screens go
// through here, so filtering and version handling cannot drift between them.
type Service struct {
	repo    workoutsRepo
	metrics *metrics.Manager
}

func NewService(repo workoutsRepo, metricsManager *metrics.Manager) *Service {
	return &Service{
		repo:    repo,
		metrics: metricsManager,
	}
}

// Save persists the workout and all its exercises atomically. A workout with
// zero exercises is valid.
func (s *Service) Save(ctx context.Context, params SaveParams) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workouts.save")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	workout := Workout{
		Date:      params.Date,
		Owner:     params.Owner,
		Exercises: make([]Exercise, 0, len(params.Exercises)),
	}
	for _, input := range params.Exercises {
		workout.Exercises = append(workout.Exercises, Exercise{
			Name:   input.Name,
			Sets:   input.Sets,
			Reps:   input.Reps,
			Weight: input.Weight,
		})
	}

	saved, err := s.repo.Add(ctx, workout)
	if err != nil {
		return nil, err
	}

	s.metrics.CounterWorkoutsSaved.Inc()
	return saved, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Workout, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, params ListParams) ([]Workout, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) GetExercise(ctx context.Context, id string) (*Exercise, error) {
	return s.repo.GetExercise(ctx, id)
}

// Delete soft-deletes a workout with the version token last seen by the
// client. On a version conflict the current version is refetched and the
// delete retried once; a second conflict goes back to the caller.
func (s *Service) Delete(ctx context.Context, id string, version int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workouts.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = s.repo.DeleteWorkout(ctx, id, version)
	if errors.Is(err, ErrVersionConflict) {
		log.Debugf("delete workout %s: stale version %d, refetch and retry", id, version)
		workout, getErr := s.repo.Get(ctx, id)
		if getErr != nil {
			return getErr
		}
		err = s.repo.DeleteWorkout(ctx, id, workout.Version)
	}
	if err != nil {
		return err
	}

	s.metrics.CounterWorkoutsDeleted.Inc()
	return nil
}

// DeleteExercise removes a single exercise, with the same
// refetch-and-retry-once policy as Delete.
func (s *Service) DeleteExercise(ctx context.Context, id string, version int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workouts.deleteExercise")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = s.repo.DeleteExercise(ctx, id, version)
	if errors.Is(err, ErrVersionConflict) {
		log.Debugf("delete exercise %s: stale version %d, refetch and retry", id, version)
		exercise, getErr := s.repo.GetExercise(ctx, id)
		if getErr != nil {
			return getErr
		}
		err = s.repo.DeleteExercise(ctx, id, exercise.Version)
	}
	return err
}
