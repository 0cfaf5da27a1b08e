package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nomis52/signup/buildinfo"
	"github.com/nomis52/signup/server/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStatusProvider struct {
	status types.Status
}

func (m *mockStatusProvider) Status() types.Status {
	return m.status
}

func TestStatusHandler(t *testing.T) {
	started := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	next := started.Add(5 * time.Minute)
	provider := &mockStatusProvider{status: types.Status{
		Server: types.ServerProperties{
			Build:     buildinfo.Properties{Version: "v1.0.0"},
			StartedAt: started,
			Hostname:  "web-1",
		},
		APIBaseURL:  "http://api.example.com",
		Sessions:    3,
		NextRefresh: &next,
	}}

	w := httptest.NewRecorder()
	NewStatusHandler(provider).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/status", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var got types.Status
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, "v1.0.0", got.Server.Build.Version)
	assert.Equal(t, "web-1", got.Server.Hostname)
	assert.Equal(t, 3, got.Sessions)
	require.NotNil(t, got.NextRefresh)
	assert.True(t, next.Equal(*got.NextRefresh))
}

func TestStatusHandler_NoRefreshScheduled(t *testing.T) {
	w := httptest.NewRecorder()
	NewStatusHandler(&mockStatusProvider{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/status", nil))

	assert.NotContains(t, w.Body.String(), "next_refresh")
}
