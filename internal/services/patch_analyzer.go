package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rahul4469/toplane-guide/internal/models"
	"go.uber.org/zap"
)

// Call names used for logging and metrics.
const (
	CallAnalyze     = "analyze"
	CallAnalyzePost = "analyze_post"
	CallHealth      = "health"
)

// CallObserver records the outcome of every call to the analysis service.
type CallObserver interface {
	ObserveUpstream(call, outcome string, elapsed time.Duration)
}

// PatchAnalyzer talks to the external patch analysis service. It keeps no
// state between calls and never retries.
type PatchAnalyzer struct {
	baseURL       string
	httpClient    *http.Client
	healthTimeout time.Duration
	logger        *zap.Logger
	observer      CallObserver
}

// PatchAnalyzerConfig configures a PatchAnalyzer.
type PatchAnalyzerConfig struct {
	BaseURL        string
	AnalyzeTimeout time.Duration
	HealthTimeout  time.Duration
}

// NewPatchAnalyzer creates a client for the analysis service at cfg.BaseURL.
// observer may be nil.
func NewPatchAnalyzer(cfg PatchAnalyzerConfig, logger *zap.Logger, observer CallObserver) *PatchAnalyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PatchAnalyzer{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.AnalyzeTimeout,
		},
		healthTimeout: cfg.HealthTimeout,
		logger:        logger.Named("patch_analyzer"),
		observer:      observer,
	}
}

// BaseURL returns the service root the client talks to.
func (pa *PatchAnalyzer) BaseURL() string {
	return pa.baseURL
}

// AnalyzeRequest is the body of the submit-style call.
type AnalyzeRequest struct {
	Version    string `json:"version"`
	RawContent string `json:"raw_content,omitempty"`
}

// HealthStatus is the body of the health call.
type HealthStatus struct {
	Status string `json:"status"`
}

// Analyze runs the read-style call: GET /api/analyze?version=...
func (pa *PatchAnalyzer) Analyze(ctx context.Context, version string) (*models.AnalysisResult, error) {
	endpoint := pa.baseURL + "/api/analyze?" + url.Values{"version": {version}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &models.TransportError{Op: CallAnalyze, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	var result models.AnalysisResult
	if err := pa.do(req, CallAnalyze, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AnalyzeContent runs the submit-style call: POST /api/analyze with the
// version and, when non-empty, the raw patch notes to analyze.
func (pa *PatchAnalyzer) AnalyzeContent(ctx context.Context, version, rawContent string) (*models.AnalysisResult, error) {
	jsonBody, err := json.Marshal(AnalyzeRequest{Version: version, RawContent: rawContent})
	if err != nil {
		return nil, &models.TransportError{Op: CallAnalyzePost, Err: fmt.Errorf("failed to marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, pa.baseURL+"/api/analyze", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, &models.TransportError{Op: CallAnalyzePost, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	var result models.AnalysisResult
	if err := pa.do(req, CallAnalyzePost, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Health calls GET /health.
func (pa *PatchAnalyzer) Health(ctx context.Context) (*HealthStatus, error) {
	if pa.healthTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, pa.healthTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pa.baseURL+"/health", nil)
	if err != nil {
		return nil, &models.TransportError{Op: CallHealth, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	var status HealthStatus
	if err := pa.do(req, CallHealth, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// do sends req once and decodes a 2xx body into out.
func (pa *PatchAnalyzer) do(req *http.Request, call string, out any) (err error) {
	start := time.Now()
	outcome := "ok"
	defer func() {
		elapsed := time.Since(start)
		if pa.observer != nil {
			pa.observer.ObserveUpstream(call, outcome, elapsed)
		}
		if err != nil {
			pa.logger.Warn("Analysis service call failed",
				zap.String("call", call),
				zap.String("url", req.URL.Redacted()),
				zap.Duration("elapsed", elapsed),
				zap.Error(err))
			return
		}
		pa.logger.Info("Analysis service call completed",
			zap.String("call", call),
			zap.Duration("elapsed", elapsed))
	}()

	resp, err := pa.httpClient.Do(req)
	if err != nil {
		outcome = "transport_error"
		return &models.TransportError{Op: call, Err: fmt.Errorf("failed to call analysis service: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		outcome = strconv.Itoa(resp.StatusCode)
		return &models.RequestError{
			Op:         call,
			StatusCode: resp.StatusCode,
			Status:     statusText(resp),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		outcome = "decode_error"
		return &models.TransportError{Op: call, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

// statusText strips the numeric code from resp.Status ("500 Internal Server
// Error" -> "Internal Server Error").
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
