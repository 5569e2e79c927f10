package stats

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/anishneema/GymSeekr/internal/auth"
	"github.com/anishneema/GymSeekr/internal/telemetry/tracing"
	"github.com/anishneema/GymSeekr/internal/workouts"
	"github.com/anishneema/GymSeekr/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=stats_test

type workoutsLister interface {
	List(ctx context.Context, params workouts.ListParams) ([]workouts.Workout, error)
}

type sessionResolver interface {
	CurrentUser(ctx context.Context, token string) (string, error)
}

type CalendarResponse struct {
	MarkedDates map[string]bool `json:"markedDates"`
}

type DayResponse struct {
	Workouts []workouts.Workout `json:"workouts"`
	Total    int                `json:"total"`
}

type SummaryResponse struct {
	WeeklyCount  int `json:"weeklyCount"`
	MonthlyCount int `json:"monthlyCount"`
}

type SearchResponse struct {
	Workouts []workouts.Workout `json:"workouts"`
	Total    int                `json:"total"`
}

// Handler serves the calendar, summary and search views. The aggregations
// run over a fresh snapshot of the session owner's workouts on each request.
type Handler struct {
	lister  workoutsLister
	session sessionResolver

	// injectable for unit and dev testing
	NowFunc  func() time.Time
	Location *time.Location
}

func NewHandler(lister workoutsLister, session sessionResolver) *Handler {
	return &Handler{
		lister:   lister,
		session:  session,
		NowFunc:  time.Now,
		Location: time.Local,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	statsRouter := mainRouter.PathPrefix("/stats").Subrouter()
	statsRouter.HandleFunc("/calendar", handler.handleCalendar).Methods("GET", "OPTIONS").Name("stats-calendar")
	statsRouter.HandleFunc("/day", handler.handleDay).Methods("GET", "OPTIONS").Name("stats-day")
	statsRouter.HandleFunc("/summary", handler.handleSummary).Methods("GET", "OPTIONS").Name("stats-summary")
	statsRouter.HandleFunc("/search", handler.handleSearch).Methods("GET", "OPTIONS").Name("stats-search")
}

func (handler *Handler) ownerWorkouts(ctx context.Context, r *http.Request) ([]workouts.Workout, error) {
	owner, err := handler.session.CurrentUser(ctx, auth.TokenFromRequest(r))
	if err != nil {
		return nil, err
	}
	return handler.lister.List(ctx, workouts.ListParams{Owner: owner})
}

func (handler *Handler) handleCalendar(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.calendar")
	defer span.End()

	workoutList, err := handler.ownerWorkouts(ctx, r)
	if err != nil {
		handler.writeListError(w, "calendar", err)
		return
	}

	respJson, err := json.Marshal(CalendarResponse{
		MarkedDates: MarkedDates(workoutList, handler.Location),
	})
	if err != nil {
		log.Errorf("marshal calendar response: %s", err)
		http.Error(w, "error, failed to get calendar", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func (handler *Handler) handleDay(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.day")
	defer span.End()

	query := r.URL.Query()
	year, err := strconv.Atoi(query.Get("year"))
	if err != nil {
		http.Error(w, "error, invalid year", http.StatusBadRequest)
		return
	}
	month, err := strconv.Atoi(query.Get("month"))
	if err != nil || month < 1 || month > 12 {
		http.Error(w, "error, invalid month", http.StatusBadRequest)
		return
	}
	day, err := strconv.Atoi(query.Get("day"))
	if err != nil || day < 1 || day > 31 {
		http.Error(w, "error, invalid day", http.StatusBadRequest)
		return
	}

	workoutList, err := handler.ownerWorkouts(ctx, r)
	if err != nil {
		handler.writeListError(w, "day", err)
		return
	}

	onDate := WorkoutsOnDate(workoutList, year, time.Month(month), day, handler.Location)
	respJson, err := json.Marshal(DayResponse{
		Workouts: onDate,
		Total:    len(onDate),
	})
	if err != nil {
		log.Errorf("marshal day response: %s", err)
		http.Error(w, "error, failed to get workouts for day", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func (handler *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.summary")
	defer span.End()

	workoutList, err := handler.ownerWorkouts(ctx, r)
	if err != nil {
		handler.writeListError(w, "summary", err)
		return
	}

	now := handler.NowFunc()
	respJson, err := json.Marshal(SummaryResponse{
		WeeklyCount:  WeeklyCount(workoutList, now, handler.Location),
		MonthlyCount: MonthlyCount(workoutList, now, handler.Location),
	})
	if err != nil {
		log.Errorf("marshal summary response: %s", err)
		http.Error(w, "error, failed to get summary", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func (handler *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.search")
	defer span.End()

	workoutList, err := handler.ownerWorkouts(ctx, r)
	if err != nil {
		handler.writeListError(w, "search", err)
		return
	}

	matched := TextSearch(workoutList, r.URL.Query().Get("q"), handler.Location)
	respJson, err := json.Marshal(SearchResponse{
		Workouts: matched,
		Total:    len(matched),
	})
	if err != nil {
		log.Errorf("marshal search response: %s", err)
		http.Error(w, "error, failed to search workouts", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func (handler *Handler) writeListError(w http.ResponseWriter, view string, err error) {
	if errors.Is(err, auth.ErrUnauthenticated) {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}
	log.Errorf("stats %s, list workouts: %s", view, err)
	http.Error(w, "error, failed to load workouts", http.StatusInternalServerError)
}
