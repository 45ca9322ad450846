package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type httpObservation struct {
	route, method, status string
}

type recordingHTTP struct {
	mu  sync.Mutex
	obs []httpObservation
}

func (r *recordingHTTP) ObserveHTTP(route, method, status string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.obs = append(r.obs, httpObservation{route, method, status})
}

func TestObserve(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	rec := &recordingHTTP{}

	r := chi.NewRouter()
	r.Use(Observe(zap.New(core), rec))
	r.Get("/guide/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})
	r.Get("/implicit", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	for _, path := range []string{"/guide/42", "/boom", "/implicit", "/missing"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, []httpObservation{
		{"/guide/{id}", http.MethodGet, "202"},
		{"/boom", http.MethodGet, "502"},
		{"/implicit", http.MethodGet, "200"},
		{"unmatched", http.MethodGet, "404"},
	}, rec.obs)

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, "Request served", entries[0].Message)
	assert.Equal(t, "Request failed", entries[1].Message)
	assert.Equal(t, zap.ErrorLevel, entries[1].Level)
	assert.Equal(t, "/boom", entries[1].ContextMap()["path"])
}

func TestObserveWithoutObserver(t *testing.T) {
	handler := Observe(zap.NewNop(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rec := httptest.NewRecorder()

	assert.NotPanics(t, func() {
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPlaintextHTTP(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	disabled := PlaintextHTTP(false)(next)
	assert.NotNil(t, disabled)

	enabled := PlaintextHTTP(true)(next)
	rec := httptest.NewRecorder()
	enabled.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/analyze", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
