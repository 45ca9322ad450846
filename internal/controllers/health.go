package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rahul4469/toplane-guide/internal/services"
	"go.uber.org/zap"
)

// HealthChecker reports the analysis service health.
type HealthChecker interface {
	Health(ctx context.Context) (*services.HealthStatus, error)
	BaseURL() string
}

// HealthController serves liveness endpoints.
type HealthController struct {
	checker HealthChecker
	logger  *zap.Logger
}

// NewHealthController creates a new HealthController.
func NewHealthController(checker HealthChecker, logger *zap.Logger) *HealthController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthController{
		checker: checker,
		logger:  logger.Named("health"),
	}
}

// UpstreamHealth is the body of GET /health/upstream.
type UpstreamHealth struct {
	Status   string `json:"status"`
	Upstream string `json:"upstream"`
	Error    string `json:"error,omitempty"`
}

// HealthCheck returns a simple health status for monitoring.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// GetUpstreamHealth checks the analysis service. It answers 502 when the
// service is unreachable or unhealthy.
func (c *HealthController) GetUpstreamHealth(w http.ResponseWriter, r *http.Request) {
	body := UpstreamHealth{Upstream: c.checker.BaseURL()}
	status := http.StatusOK

	health, err := c.checker.Health(r.Context())
	if err != nil {
		c.logger.Warn("Analysis service health check failed", zap.Error(err))
		body.Status = "unavailable"
		body.Error = err.Error()
		status = http.StatusBadGateway
	} else {
		body.Status = health.Status
	}

	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
