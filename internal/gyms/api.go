package gyms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/anishneema/GymSeekr/internal/telemetry/tracing"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	// defaultKeyword is used when the user searches with an empty query
	defaultKeyword = "gym"

	nearbyCacheTTL = 10 * time.Minute
)

// Place is one result from the places provider, reduced to the fields the
// app reads.
type Place struct {
	PlaceID  string   `json:"place_id"`
	Name     string   `json:"name"`
	Vicinity string   `json:"vicinity"`
	Geometry Geometry `json:"geometry"`
	Rating   float64  `json:"rating,omitempty"`
}

type Geometry struct {
	Location LatLng `json:"location"`
}

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type nearbySearchResponse struct {
	Results      []Place `json:"results"`
	Status       string  `json:"status"`
	ErrorMessage string  `json:"error_message"`
}

// Api is the nearby-search client. Responses get cached in redis for a
// short while, the places API bills per call and map panning triggers a lot
// of identical searches.
type Api struct {
	endpoint     string
	apiKey       string
	radiusMeters int
	httpClient   *http.Client
	redisClient  *redis.Client
}

func NewApi(
	endpoint, apiKey string,
	radiusMeters int,
	httpClient *http.Client,
	redisClient *redis.Client,
) *Api {
	return &Api{
		endpoint:     endpoint,
		apiKey:       apiKey,
		radiusMeters: radiusMeters,
		httpClient:   httpClient,
		redisClient:  redisClient,
	}
}

func (api *Api) NearbySearch(ctx context.Context, lat, lng float64, keyword string) (_ []Place, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "gyms.nearbySearch")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if keyword == "" {
		keyword = defaultKeyword
	}
	span.SetAttributes(attribute.String("keyword", keyword))

	cacheKey := fmt.Sprintf("gyms::nearby::%.4f::%.4f::%s", lat, lng, keyword)
	cmd := api.redisClient.Get(ctx, cacheKey)
	if cachedBytes := cmd.Val(); cachedBytes != "" {
		var places []Place
		if unmarshalErr := json.Unmarshal([]byte(cachedBytes), &places); unmarshalErr == nil {
			span.SetAttributes(attribute.Bool("from-cache", true))
			log.Tracef("nearby gyms for [%s] served from cache", cacheKey)
			return places, nil
		} else {
			log.Errorf("failed to unmarshal cached nearby gyms for [%s]: %s", cacheKey, unmarshalErr)
			// fall through and ask the places api
		}
	}
	span.SetAttributes(attribute.Bool("from-cache", false))

	searchUrl := fmt.Sprintf(
		"%s/maps/api/place/nearbysearch/json?key=%s&location=%f,%f&radius=%d&keyword=%s",
		api.endpoint, api.apiKey, lat, lng, api.radiusMeters, url.QueryEscape(keyword),
	)

	req, err := http.NewRequest("GET", searchUrl, nil)
	if err != nil {
		return nil, err
	}

	resp, err := api.httpClient.Do(req.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("get nearby gyms: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read nearby gyms response: %w", err)
	}

	var searchResp nearbySearchResponse
	if err := json.Unmarshal(respBytes, &searchResp); err != nil {
		return nil, fmt.Errorf("unmarshal nearby gyms response: %w", err)
	}

	if searchResp.Status != "OK" && searchResp.Status != "ZERO_RESULTS" {
		return nil, fmt.Errorf("places api status %s: %s", searchResp.Status, searchResp.ErrorMessage)
	}

	if placesJson, err := json.Marshal(searchResp.Results); err == nil {
		if err := api.redisClient.Set(ctx, cacheKey, placesJson, nearbyCacheTTL).Err(); err != nil {
			log.Errorf("failed to cache nearby gyms for [%s]: %s", cacheKey, err)
		}
	}

	if searchResp.Results == nil {
		return make([]Place, 0), nil
	}
	return searchResp.Results, nil
}
