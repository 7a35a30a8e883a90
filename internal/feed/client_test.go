package feed_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langouL/meteopad/internal/feed"
)

func TestClient_FetchObservations(t *testing.T) {
	payload := `[
		{"Station":"Limbe","DateTime":"2025-06-01 10:00:00","AIR TEMPERATURE":26.4,"HUMIDITY":"88","TIDE HEIGHT":null},
		{"Station":"Douala","DateTime":"2025-06-01T12:00:00","AIR TEMPERATURE":"27.5","WIND SPEED":3.2},
		{"Station":"Kribi","DateTime":"2025-06-01 11:00:00","AIR TEMPERATURE":"n/a"}
	]`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/donnees", r.URL.Path)
		assert.Equal(t, "50000", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	client := feed.NewClient(srv.URL, 50000, 5*time.Second)
	obs, err := client.FetchObservations(context.Background())
	require.NoError(t, err)
	require.Len(t, obs, 3)

	// Newest first, regardless of feed order.
	assert.Equal(t, "Douala", obs[0].Station)
	assert.Equal(t, "Kribi", obs[1].Station)
	assert.Equal(t, "Limbe", obs[2].Station)

	assert.Equal(t, 27.5, obs[0].AirTemperature.Value)
	assert.True(t, obs[0].AirTemperature.Valid)

	// Unparseable reading keeps its raw text but is not valid.
	assert.False(t, obs[1].AirTemperature.Valid)
	assert.Equal(t, "n/a", obs[1].AirTemperature.Raw)

	assert.False(t, obs[2].TideHeight.Valid)
	assert.Empty(t, obs[2].TideHeight.Raw)
}

func TestClient_FetchObservations_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := feed.NewClient(srv.URL, 100, 5*time.Second)
	_, err := client.FetchObservations(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestClient_FetchObservations_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"a list"}`))
	}))
	defer srv.Close()

	client := feed.NewClient(srv.URL, 100, 5*time.Second)
	_, err := client.FetchObservations(context.Background())
	assert.Error(t, err)
}
