package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("TOPLANE_CONFIG", "")

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "toplane dev\n", out)
}

func TestAnalyzeRejectsInvalidInputBeforeCallingService(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	_, err := execute(t, "analyze", "--api-url", srv.URL, "--version", "26")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid version")

	_, err = execute(t, "analyze", "--api-url", srv.URL, "-o", "table")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")

	_, err = execute(t, "analyze", "--api-url", srv.URL, "--file", filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)

	assert.Zero(t, calls)
}

func TestAnalyzeGetJSON(t *testing.T) {
	var gotVersion string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		gotVersion = r.URL.Query().Get("version")
		_, _ = w.Write([]byte(`{"version": "26.3", "top_lane_changes": [{"type": "champion", "champion": "Darius"}]}`))
	}))
	defer srv.Close()

	out, err := execute(t, "analyze", "--api-url", srv.URL, "--version", "26.3", "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, "26.3", gotVersion)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "26.3", doc["version"])
}

func TestAnalyzeFilePostsContent(t *testing.T) {
	var body map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"version": "15.24"}`))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("  Garen E nerfed\n"), 0o600))

	out, err := execute(t, "analyze", "--api-url", srv.URL, "--version", "15.24", "--file", path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"version": "15.24", "raw_content": "Garen E nerfed"}, body)
	assert.Contains(t, out, "patch 15.24")
}

func TestAnalyzeUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := execute(t, "analyze", "--api-url", srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestHealthCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "ok"}`))
	}))

	out, err := execute(t, "health", "--api-url", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, srv.URL)
	assert.Contains(t, out, "ok")

	srv.Close()
	_, err = execute(t, "health", "--api-url", srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unavailable")
}
