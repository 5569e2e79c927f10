package gyms

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/anishneema/GymSeekr/internal/auth"
	"github.com/anishneema/GymSeekr/internal/telemetry/metrics"
	"github.com/anishneema/GymSeekr/internal/telemetry/tracing"
	"github.com/anishneema/GymSeekr/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=gyms_test

type placesSearcher interface {
	NearbySearch(ctx context.Context, lat, lng float64, keyword string) ([]Place, error)
}

type sessionResolver interface {
	CurrentUser(ctx context.Context, token string) (string, error)
}

type NearbyResponse struct {
	Gyms  []Place `json:"gyms"`
	Total int     `json:"total"`
}

type Handler struct {
	searcher placesSearcher
	session  sessionResolver
	metrics  *metrics.Manager

	// map center fallback when the client sends no coordinates
	defaultLat float64
	defaultLng float64
}

func NewHandler(
	searcher placesSearcher,
	session sessionResolver,
	metricsManager *metrics.Manager,
	defaultLat, defaultLng float64,
) *Handler {
	return &Handler{
		searcher:   searcher,
		session:    session,
		metrics:    metricsManager,
		defaultLat: defaultLat,
		defaultLng: defaultLng,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	gymsRouter := mainRouter.PathPrefix("/gyms").Subrouter()
	gymsRouter.HandleFunc("/nearby", handler.handleNearby).Methods("GET", "OPTIONS").Name("gyms-nearby")
	gymsRouter.HandleFunc("/details", handler.handleDetails).Methods("GET", "OPTIONS").Name("gym-details")
}

func (handler *Handler) handleNearby(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gyms.nearby")
	defer span.End()

	if _, err := handler.session.CurrentUser(ctx, auth.TokenFromRequest(r)); err != nil {
		if !errors.Is(err, auth.ErrUnauthenticated) {
			log.Errorf("gyms nearby, resolve session: %s", err)
		}
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	query := r.URL.Query()

	lat, lng := handler.defaultLat, handler.defaultLng
	if latStr, lngStr := query.Get("lat"), query.Get("lng"); latStr != "" || lngStr != "" {
		var err error
		if lat, err = strconv.ParseFloat(latStr, 64); err != nil {
			http.Error(w, "error, invalid latitude", http.StatusBadRequest)
			return
		}
		if lng, err = strconv.ParseFloat(lngStr, 64); err != nil {
			http.Error(w, "error, invalid longitude", http.StatusBadRequest)
			return
		}
	}

	equipmentQuery := query.Get("equipment")
	if len(equipmentQuery) > 0 && len(equipmentQuery) < MinEquipmentQueryLen {
		http.Error(w, "error, equipment query must be at least 3 characters long", http.StatusBadRequest)
		return
	}

	places, err := handler.searcher.NearbySearch(ctx, lat, lng, query.Get("q"))
	if err != nil {
		log.Errorf("nearby gyms search: %s", err)
		http.Error(w, "error, failed to fetch nearby gyms", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterGymSearches.Inc()

	if equipmentQuery != "" {
		places, err = FilterByEquipment(places, equipmentQuery)
		if err != nil {
			http.Error(w, "error, equipment query must be at least 3 characters long", http.StatusBadRequest)
			return
		}
	}

	respJson, err := json.Marshal(NearbyResponse{
		Gyms:  places,
		Total: len(places),
	})
	if err != nil {
		log.Errorf("marshal nearby gyms response: %s", err)
		http.Error(w, "error, failed to fetch nearby gyms", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func (handler *Handler) handleDetails(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.gyms.details")
	defer span.End()

	query := r.URL.Query()
	name := query.Get("name")
	if name == "" {
		http.Error(w, "error, gym name empty", http.StatusBadRequest)
		return
	}

	// fall back to a stub when the gym is not in the curated catalog
	gym := Details(Place{
		PlaceID:  query.Get("placeId"),
		Name:     name,
		Vicinity: query.Get("address"),
	})

	respJson, err := json.Marshal(gym)
	if err != nil {
		log.Errorf("marshal gym details response: %s", err)
		http.Error(w, "error, failed to get gym details", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}
