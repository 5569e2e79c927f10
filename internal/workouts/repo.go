package workouts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anishneema/GymSeekr/internal/telemetry/tracing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

type ListParams struct {
	Owner string
	From  *time.Time
	To    *time.Time

	IncludeDeleted bool
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// Add stores the workout together with all its exercises in a single
// transaction: either the whole workout lands, or nothing does. IDs and
// version tokens are assigned here.
func (r *Repo) Add(ctx context.Context, workout Workout) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	workout.ID = uuid.NewString()
	workout.Version = 1

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				err = fmt.Errorf("failed to rollback transaction: %w: %w", rollbackErr, err)
			}
		} else {
			err = tx.Commit(ctx)
		}
	}()

	_, err = tx.Exec(ctx, `
		INSERT INTO workout (id, date, owner, version, deleted)
		VALUES ($1, $2, $3, $4, FALSE)
	`, workout.ID, workout.Date, workout.Owner, workout.Version)
	if err != nil {
		return nil, fmt.Errorf("insert workout: %w", err)
	}

	for i := range workout.Exercises {
		ex := &workout.Exercises[i]
		ex.ID = uuid.NewString()
		ex.WorkoutID = workout.ID
		ex.Date = workout.Date
		ex.Owner = workout.Owner
		ex.Version = 1

		_, err = tx.Exec(ctx, `
			INSERT INTO exercise
				(id, name, sets, reps, weight, date, owner, workout_id, version, deleted)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE)
		`, ex.ID, ex.Name, ex.Sets, ex.Reps, ex.Weight, ex.Date, ex.Owner, ex.WorkoutID, ex.Version)
		if err != nil {
			return nil, fmt.Errorf("insert exercise [%s]: %w", ex.Name, err)
		}
	}

	span.SetAttributes(attribute.String("workout.id", workout.ID))
	span.SetAttributes(attribute.Int("workout.exercises", len(workout.Exercises)))

	return &workout, nil
}

func (r *Repo) Get(ctx context.Context, id string) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("id", id))

	var workout Workout
	err = r.db.QueryRow(ctx, `
		SELECT id, date, owner, version, deleted
		FROM workout
		WHERE id = $1
	`, id).Scan(&workout.ID, &workout.Date, &workout.Owner, &workout.Version, &workout.Deleted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}

	// soft-deleted records come back from the store and get dropped here
	if workout.Deleted {
		return nil, ErrWorkoutNotFound
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, name, sets, reps, weight, date, owner, workout_id, version, deleted
		FROM exercise
		WHERE workout_id = $1
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	exercises, err := r.rows2exercises(rows)
	if err != nil {
		return nil, fmt.Errorf("rows2exercises: %w", err)
	}

	workout.Exercises = make([]Exercise, 0, len(exercises))
	for _, ex := range exercises {
		if ex.Deleted {
			continue
		}
		workout.Exercises = append(workout.Exercises, ex)
	}

	return &workout, nil
}

// List returns the owner's workouts with nested exercises, newest first.
// The store keeps soft-deleted records and the queries return them, so the
// deleted filter happens here, after the scan.
func (r *Repo) List(ctx context.Context, params ListParams) (_ []Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("owner", params.Owner))

	query := `
		SELECT id, date, owner, version, deleted
		FROM workout
		WHERE owner = $1`
	args := []interface{}{params.Owner}
	if params.From != nil {
		args = append(args, *params.From)
		query += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if params.To != nil {
		args = append(args, *params.To)
		query += fmt.Sprintf(" AND date <= $%d", len(args))
	}
	query += " ORDER BY date DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workouts []Workout
	for rows.Next() {
		var workout Workout
		if err := rows.Scan(
			&workout.ID, &workout.Date, &workout.Owner, &workout.Version, &workout.Deleted,
		); err != nil {
			return nil, err
		}
		if workout.Deleted && !params.IncludeDeleted {
			continue
		}
		workout.Exercises = make([]Exercise, 0)
		workouts = append(workouts, workout)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if workouts == nil {
		return make([]Workout, 0), nil
	}

	exRows, err := r.db.Query(ctx, `
		SELECT id, name, sets, reps, weight, date, owner, workout_id, version, deleted
		FROM exercise
		WHERE owner = $1
	`, params.Owner)
	if err != nil {
		return nil, err
	}
	defer exRows.Close()

	exercises, err := r.rows2exercises(exRows)
	if err != nil {
		return nil, fmt.Errorf("rows2exercises: %w", err)
	}

	workoutIndex := make(map[string]*Workout, len(workouts))
	for i := range workouts {
		workoutIndex[workouts[i].ID] = &workouts[i]
	}
	for _, ex := range exercises {
		if ex.Deleted && !params.IncludeDeleted {
			continue
		}
		// insertion order is not guaranteed by the store, exercises land
		// under their parent in scan order
		if workout, ok := workoutIndex[ex.WorkoutID]; ok {
			workout.Exercises = append(workout.Exercises, ex)
		}
	}

	return workouts, nil
}

// DeleteWorkout issues a versioned soft-delete: the row is only marked when
// the caller still holds the current version token. Exercises of the workout
// go with it, in the same transaction.
func (r *Repo) DeleteWorkout(ctx context.Context, id string, version int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("id", id))
	span.SetAttributes(attribute.Int("version", version))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				err = fmt.Errorf("failed to rollback transaction: %w: %w", rollbackErr, err)
			}
		} else {
			err = tx.Commit(ctx)
		}
	}()

	tag, err := tx.Exec(ctx, `
		UPDATE workout
		SET deleted = TRUE, version = version + 1
		WHERE id = $1 AND version = $2 AND NOT deleted
	`, id, version)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		var currentVersion int
		err = tx.QueryRow(ctx, `
			SELECT version FROM workout WHERE id = $1 AND NOT deleted
		`, id).Scan(&currentVersion)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrWorkoutNotFound
			}
			return err
		}
		return fmt.Errorf("%w: workout %s is at version %d, delete used %d",
			ErrVersionConflict, id, currentVersion, version)
	}

	_, err = tx.Exec(ctx, `
		UPDATE exercise
		SET deleted = TRUE, version = version + 1
		WHERE workout_id = $1 AND NOT deleted
	`, id)
	if err != nil {
		return fmt.Errorf("soft delete exercises of workout %s: %w", id, err)
	}

	return nil
}

func (r *Repo) GetExercise(ctx context.Context, id string) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.getExercise")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("id", id))

	var ex Exercise
	err = r.db.QueryRow(ctx, `
		SELECT id, name, sets, reps, weight, date, owner, workout_id, version, deleted
		FROM exercise
		WHERE id = $1
	`, id).Scan(
		&ex.ID, &ex.Name, &ex.Sets, &ex.Reps, &ex.Weight,
		&ex.Date, &ex.Owner, &ex.WorkoutID, &ex.Version, &ex.Deleted,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}

	if ex.Deleted {
		return nil, ErrExerciseNotFound
	}

	return &ex, nil
}

func (r *Repo) DeleteExercise(ctx context.Context, id string, version int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.deleteExercise")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("id", id))
	span.SetAttributes(attribute.Int("version", version))

	tag, err := r.db.Exec(ctx, `
		UPDATE exercise
		SET deleted = TRUE, version = version + 1
		WHERE id = $1 AND version = $2 AND NOT deleted
	`, id, version)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		var currentVersion int
		err = r.db.QueryRow(ctx, `
			SELECT version FROM exercise WHERE id = $1 AND NOT deleted
		`, id).Scan(&currentVersion)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrExerciseNotFound
			}
			return err
		}
		return fmt.Errorf("%w: exercise %s is at version %d, delete used %d",
			ErrVersionConflict, id, currentVersion, version)
	}

	return nil
}

func (r *Repo) rows2exercises(rows pgx.Rows) ([]Exercise, error) {
	var exercises []Exercise
	for rows.Next() {
		var ex Exercise
		if err := rows.Scan(
			&ex.ID, &ex.Name, &ex.Sets, &ex.Reps, &ex.Weight,
			&ex.Date, &ex.Owner, &ex.WorkoutID, &ex.Version, &ex.Deleted,
		); err != nil {
			return nil, err
		}
		exercises = append(exercises, ex)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if exercises == nil {
		exercises = make([]Exercise, 0)
	}

	return exercises, nil
}
