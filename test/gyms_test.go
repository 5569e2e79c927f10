package test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/anishneema/GymSeekr/internal/gyms"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) TestNearbyGyms() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	token := doLogin(ctx, t)

	resp := s.doAuthedRequest(ctx, token, "GET", "/gyms/nearby?lat=37.70&lng=-121.93", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var nearbyResp struct {
		Gyms  []gyms.Place `json:"gyms"`
		Total int          `json:"total"`
	}
	require.NoError(t, json.Unmarshal(respBytes, &nearbyResp))
	require.Equal(t, 2, nearbyResp.Total)
	assert.Equal(t, "Underground Fitness", nearbyResp.Gyms[0].Name)

	// equipment filter keeps only gyms known to carry the equipment
	resp = s.doAuthedRequest(ctx, token, "GET", "/gyms/nearby?lat=37.70&lng=-121.93&equipment=deadlift", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	respBytes, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	require.NoError(t, json.Unmarshal(respBytes, &nearbyResp))
	require.Equal(t, 1, nearbyResp.Total)
	assert.Equal(t, "Underground Fitness", nearbyResp.Gyms[0].Name)

	// too short equipment query is rejected
	resp = s.doAuthedRequest(ctx, token, "GET", "/gyms/nearby?equipment=ab", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func (s *IntegrationTestSuite) TestGymDetails() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	token := doLogin(ctx, t)

	resp := s.doAuthedRequest(ctx, token, "GET", "/gyms/details?name=Iron+Paradise", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var details gyms.Gym
	require.NoError(t, json.Unmarshal(respBytes, &details))
	assert.Equal(t, "Iron Paradise", details.Name)
	assert.NotEmpty(t, details.Equipment)

	// unknown gyms fall back to the stub details
	resp = s.doAuthedRequest(ctx, token, "GET", "/gyms/details?name=Totally+Unknown+Gym", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	respBytes, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	require.NoError(t, json.Unmarshal(respBytes, &details))
	assert.Equal(t, "Totally Unknown Gym", details.Name)
	assert.Equal(t, []string{"Information not available"}, details.Equipment)
}
