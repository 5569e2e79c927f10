package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/anishneema/GymSeekr/internal/auth"
	"github.com/anishneema/GymSeekr/internal/workouts"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) doAuthedRequest(
	ctx context.Context,
	token, method, path string,
	body []byte,
) *http.Response {
	t := s.T()
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewBuffer(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, serverEndpoint+path, bodyReader)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(auth.TokenHeader, token)

	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	return resp
}

func (s *IntegrationTestSuite) TestWorkoutsLifecycle() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	token := doLogin(ctx, t)

	workoutDate := time.Now().Format("2006-01-02")
	saveReq := fmt.Sprintf(`{
		"date": %q,
		"exercises": [
			{"name": "Bench Press", "sets": 3, "reps": 8, "weight": 185},
			{"name": "Squat", "sets": 5, "reps": 5, "weight": 225}
		]
	}`, workoutDate)

	// save
	resp := s.doAuthedRequest(ctx, token, "POST", "/workouts", []byte(saveReq))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var saved workouts.Workout
	require.NoError(t, json.Unmarshal(respBytes, &saved))
	require.NotEmpty(t, saved.ID)
	assert.Equal(t, testEmail, saved.Owner)
	assert.Equal(t, 1, saved.Version)
	require.Len(t, saved.Exercises, 2)
	assert.Equal(t, "Bench Press", saved.Exercises[0].Name)

	// list
	resp = s.doAuthedRequest(ctx, token, "GET", "/workouts", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	respBytes, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var listResp struct {
		Workouts []workouts.Workout `json:"workouts"`
		Total    int                `json:"total"`
	}
	require.NoError(t, json.Unmarshal(respBytes, &listResp))
	require.Equal(t, 1, listResp.Total)
	assert.Equal(t, saved.ID, listResp.Workouts[0].ID)

	// calendar shows the workout day
	resp = s.doAuthedRequest(ctx, token, "GET", "/stats/calendar", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	respBytes, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var calendarResp struct {
		MarkedDates map[string]bool `json:"markedDates"`
	}
	require.NoError(t, json.Unmarshal(respBytes, &calendarResp))
	assert.True(t, calendarResp.MarkedDates[workoutDate])

	// summary counts it for this week and month
	resp = s.doAuthedRequest(ctx, token, "GET", "/stats/summary", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	respBytes, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var summaryResp struct {
		WeeklyCount  int `json:"weeklyCount"`
		MonthlyCount int `json:"monthlyCount"`
	}
	require.NoError(t, json.Unmarshal(respBytes, &summaryResp))
	assert.Equal(t, 1, summaryResp.WeeklyCount)
	assert.Equal(t, 1, summaryResp.MonthlyCount)

	// search by exercise name, case-insensitive
	resp = s.doAuthedRequest(ctx, token, "GET", "/stats/search?q=bench", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	respBytes, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var searchResp struct {
		Workouts []workouts.Workout `json:"workouts"`
		Total    int                `json:"total"`
	}
	require.NoError(t, json.Unmarshal(respBytes, &searchResp))
	require.Equal(t, 1, searchResp.Total)

	// delete, guarded by the version the client saw
	deletePath := fmt.Sprintf("/workouts/%s?version=%d", saved.ID, saved.Version)
	resp = s.doAuthedRequest(ctx, token, "DELETE", deletePath, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	respBytes, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var deleteResp struct {
		DeletedID string `json:"deletedId"`
	}
	require.NoError(t, json.Unmarshal(respBytes, &deleteResp))
	assert.Equal(t, saved.ID, deleteResp.DeletedID)

	// gone now
	resp = s.doAuthedRequest(ctx, token, "GET", "/workouts/"+saved.ID, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// soft deleted, the rows stay in the db
	var deleted bool
	require.NoError(t, s.DB.QueryRow(
		`SELECT deleted FROM workout WHERE id = $1`, saved.ID,
	).Scan(&deleted))
	assert.True(t, deleted)
}

func (s *IntegrationTestSuite) TestWorkoutDeleteStaleVersion() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	token := doLogin(ctx, t)

	saveReq := fmt.Sprintf(`{
		"date": %q,
		"exercises": [
			{"name": "Overhead Press", "sets": 4, "reps": 6, "weight": 95}
		]
	}`, time.Now().Format("2006-01-02"))

	resp := s.doAuthedRequest(ctx, token, "POST", "/workouts", []byte(saveReq))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var saved workouts.Workout
	require.NoError(t, json.Unmarshal(respBytes, &saved))
	require.Equal(t, 1, saved.Version)

	// a delete with a stale version token still lands: the current version
	// is refetched and the delete retried once
	deletePath := fmt.Sprintf("/workouts/%s?version=%d", saved.ID, saved.Version+41)
	resp = s.doAuthedRequest(ctx, token, "DELETE", deletePath, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	var deleted bool
	require.NoError(t, s.DB.QueryRow(
		`SELECT deleted FROM workout WHERE id = $1`, saved.ID,
	).Scan(&deleted))
	assert.True(t, deleted)
}

func (s *IntegrationTestSuite) TestExerciseSuggestions() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	token := doLogin(ctx, t)

	resp := s.doAuthedRequest(ctx, token, "GET", "/workouts/exercises/suggestions", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var suggestionsResp struct {
		Suggestions []string `json:"suggestions"`
	}
	require.NoError(t, json.Unmarshal(respBytes, &suggestionsResp))
	assert.Contains(t, suggestionsResp.Suggestions, "Bench Press")
	assert.Contains(t, suggestionsResp.Suggestions, "Deadlift")
}
