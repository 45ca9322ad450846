package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rahul4469/toplane-guide/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChecker struct {
	status *services.HealthStatus
	err    error
}

func (f fakeChecker) Health(context.Context) (*services.HealthStatus, error) {
	return f.status, f.err
}

func (f fakeChecker) BaseURL() string {
	return "http://analysis:8000"
}

func TestHealthCheck(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestGetUpstreamHealth(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		ctrl := NewHealthController(fakeChecker{status: &services.HealthStatus{Status: "healthy"}}, nil)
		rec := httptest.NewRecorder()
		ctrl.GetUpstreamHealth(rec, httptest.NewRequest(http.MethodGet, "/health/upstream", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"healthy","upstream":"http://analysis:8000"}`, rec.Body.String())
	})

	t.Run("unreachable", func(t *testing.T) {
		ctrl := NewHealthController(fakeChecker{err: errors.New("health: connection refused")}, nil)
		rec := httptest.NewRecorder()
		ctrl.GetUpstreamHealth(rec, httptest.NewRequest(http.MethodGet, "/health/upstream", nil))

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		var body UpstreamHealth
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "unavailable", body.Status)
		assert.Contains(t, body.Error, "connection refused")
	})
}
