package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/anishneema/GymSeekr/internal/auth"
	"github.com/anishneema/GymSeekr/internal/telemetry/tracing"
	"github.com/anishneema/GymSeekr/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=workouts_test

type workoutsService interface {
	Save(ctx context.Context, params SaveParams) (*Workout, error)
	Get(ctx context.Context, id string) (*Workout, error)
	List(ctx context.Context, params ListParams) ([]Workout, error)
	Delete(ctx context.Context, id string, version int) error
	GetExercise(ctx context.Context, id string) (*Exercise, error)
	DeleteExercise(ctx context.Context, id string, version int) error
}

type sessionResolver interface {
	CurrentUser(ctx context.Context, token string) (string, error)
}

type SaveWorkoutRequest struct {
	Date      string          `json:"date"`
	Exercises []ExerciseInput `json:"exercises"`
}

type DeleteWorkoutResponse struct {
	DeletedID string `json:"deletedId"`
}

type DeleteExerciseResponse struct {
	DeletedID string `json:"deletedId"`
}

type ListResponse struct {
	Workouts []Workout `json:"workouts"`
	Total    int       `json:"total"`
}

type SuggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

type Handler struct {
	service workoutsService
	session sessionResolver
}

func NewHandler(service workoutsService, session sessionResolver) *Handler {
	return &Handler{
		service: service,
		session: session,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	workoutsRouter := mainRouter.PathPrefix("/workouts").Subrouter()
	workoutsRouter.HandleFunc("", handler.handleSave).Methods("POST", "OPTIONS").Name("save-workout")
	workoutsRouter.HandleFunc("", handler.handleList).Methods("GET", "OPTIONS").Name("list-workouts")
	workoutsRouter.HandleFunc("/exercises/suggestions", handler.handleSuggestions).Methods("GET", "OPTIONS").Name("exercise-suggestions")
	workoutsRouter.HandleFunc("/exercise/{id}", handler.handleDeleteExercise).Methods("DELETE", "OPTIONS").Name("delete-exercise")
	workoutsRouter.HandleFunc("/{id}", handler.handleGet).Methods("GET", "OPTIONS").Name("get-workout")
	workoutsRouter.HandleFunc("/{id}", handler.handleDelete).Methods("DELETE", "OPTIONS").Name("delete-workout")
}

// owner resolves the session identity behind the request. Every operation
// here is partitioned by it.
func (handler *Handler) owner(ctx context.Context, r *http.Request) (string, bool) {
	email, err := handler.session.CurrentUser(ctx, auth.TokenFromRequest(r))
	if err != nil {
		if !errors.Is(err, auth.ErrUnauthenticated) {
			log.Errorf("workouts, resolve session: %s", err)
		}
		return "", false
	}
	return email, true
}

func (handler *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.save")
	defer span.End()

	owner, ok := handler.owner(ctx, r)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	var saveReq SaveWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&saveReq); err != nil {
		log.Tracef("save workout, unmarshal json params: %s", err)
		http.Error(w, "save workout failed", http.StatusBadRequest)
		return
	}

	date, err := parseWorkoutDate(saveReq.Date)
	if err != nil {
		http.Error(w, "error, invalid date", http.StatusBadRequest)
		return
	}

	for _, ex := range saveReq.Exercises {
		if ex.Name == "" {
			http.Error(w, "error, exercise name empty", http.StatusBadRequest)
			return
		}
	}

	workout, err := handler.service.Save(ctx, SaveParams{
		Date:      date,
		Owner:     owner,
		Exercises: saveReq.Exercises,
	})
	if err != nil {
		log.Errorf("failed to save workout for [%s]: %s", owner, err)
		http.Error(w, "error, failed to save workout", http.StatusInternalServerError)
		return
	}

	workoutJson, err := json.Marshal(workout)
	if err != nil {
		log.Errorf("marshal saved workout: %s", err)
		http.Error(w, "error, failed to save workout", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, workoutJson, http.StatusCreated)
}

func (handler *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.list")
	defer span.End()

	owner, ok := handler.owner(ctx, r)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	params := ListParams{Owner: owner}
	if fromStr := r.URL.Query().Get("from"); fromStr != "" {
		from, err := time.ParseInLocation("2006-01-02", fromStr, time.Local)
		if err != nil {
			http.Error(w, "error, invalid from date", http.StatusBadRequest)
			return
		}
		params.From = &from
	}
	if toStr := r.URL.Query().Get("to"); toStr != "" {
		to, err := time.ParseInLocation("2006-01-02", toStr, time.Local)
		if err != nil {
			http.Error(w, "error, invalid to date", http.StatusBadRequest)
			return
		}
		// make the upper bound inclusive for the whole day
		to = to.Add(24*time.Hour - time.Nanosecond)
		params.To = &to
	}

	workouts, err := handler.service.List(ctx, params)
	if err != nil {
		log.Errorf("failed to list workouts for [%s]: %s", owner, err)
		http.Error(w, "error, failed to list workouts", http.StatusInternalServerError)
		return
	}

	listJson, err := json.Marshal(ListResponse{
		Workouts: workouts,
		Total:    len(workouts),
	})
	if err != nil {
		log.Errorf("marshal workouts list: %s", err)
		http.Error(w, "error, failed to list workouts", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, listJson, http.StatusOK)
}

func (handler *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.get")
	defer span.End()

	owner, ok := handler.owner(ctx, r)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	workout, err := handler.service.Get(ctx, mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, ErrWorkoutNotFound) {
			http.Error(w, "workout not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to get workout: %s", err)
		http.Error(w, "error, failed to get workout", http.StatusInternalServerError)
		return
	}

	// a foreign workout looks the same as a missing one
	if workout.Owner != owner {
		http.Error(w, "workout not found", http.StatusNotFound)
		return
	}

	workoutJson, err := json.Marshal(workout)
	if err != nil {
		log.Errorf("marshal workout: %s", err)
		http.Error(w, "error, failed to get workout", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, workoutJson, http.StatusOK)
}

func (handler *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.delete")
	defer span.End()

	owner, ok := handler.owner(ctx, r)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	id := mux.Vars(r)["id"]
	version, err := strconv.Atoi(r.URL.Query().Get("version"))
	if err != nil {
		http.Error(w, "error, invalid version", http.StatusBadRequest)
		return
	}

	workout, err := handler.service.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrWorkoutNotFound) {
			http.Error(w, "workout not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to get workout before delete: %s", err)
		http.Error(w, "error, failed to delete workout", http.StatusInternalServerError)
		return
	}
	if workout.Owner != owner {
		http.Error(w, "workout not found", http.StatusNotFound)
		return
	}

	if err := handler.service.Delete(ctx, id, version); err != nil {
		switch {
		case errors.Is(err, ErrWorkoutNotFound):
			http.Error(w, "workout not found", http.StatusNotFound)
		case errors.Is(err, ErrVersionConflict):
			http.Error(w, "error, workout changed, refresh and retry", http.StatusConflict)
		default:
			log.Errorf("failed to delete workout [%s]: %s", id, err)
			http.Error(w, "error, failed to delete workout", http.StatusInternalServerError)
		}
		return
	}

	respJson, err := json.Marshal(DeleteWorkoutResponse{DeletedID: id})
	if err != nil {
		log.Errorf("marshal delete workout response: %s", err)
		http.Error(w, "error, failed to delete workout", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func (handler *Handler) handleDeleteExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.deleteExercise")
	defer span.End()

	owner, ok := handler.owner(ctx, r)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	id := mux.Vars(r)["id"]
	version, err := strconv.Atoi(r.URL.Query().Get("version"))
	if err != nil {
		http.Error(w, "error, invalid version", http.StatusBadRequest)
		return
	}

	exercise, err := handler.service.GetExercise(ctx, id)
	if err != nil {
		if errors.Is(err, ErrExerciseNotFound) {
			http.Error(w, "exercise not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to get exercise before delete: %s", err)
		http.Error(w, "error, failed to delete exercise", http.StatusInternalServerError)
		return
	}
	if exercise.Owner != owner {
		http.Error(w, "exercise not found", http.StatusNotFound)
		return
	}

	if err := handler.service.DeleteExercise(ctx, id, version); err != nil {
		switch {
		case errors.Is(err, ErrExerciseNotFound):
			http.Error(w, "exercise not found", http.StatusNotFound)
		case errors.Is(err, ErrVersionConflict):
			http.Error(w, "error, exercise changed, refresh and retry", http.StatusConflict)
		default:
			log.Errorf("failed to delete exercise [%s]: %s", id, err)
			http.Error(w, "error, failed to delete exercise", http.StatusInternalServerError)
		}
		return
	}

	respJson, err := json.Marshal(DeleteExerciseResponse{DeletedID: id})
	if err != nil {
		log.Errorf("marshal delete exercise response: %s", err)
		http.Error(w, "error, failed to delete exercise", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func (handler *Handler) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.suggestions")
	defer span.End()

	respJson, err := json.Marshal(SuggestionsResponse{Suggestions: ExerciseSuggestions})
	if err != nil {
		log.Errorf("marshal exercise suggestions: %s", err)
		http.Error(w, "error, failed to get suggestions", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

// parseWorkoutDate accepts a full timestamp or a bare calendar day; a bare
// day is anchored at local midnight since the calendar semantics are local.
func parseWorkoutDate(dateStr string) (time.Time, error) {
	if date, err := time.Parse(time.RFC3339, dateStr); err == nil {
		return date, nil
	}
	return time.ParseInLocation("2006-01-02", dateStr, time.Local)
}
