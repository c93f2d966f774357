package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/emilydolson/hospital-beds-per-capita/internal/adapter/http"
	"github.com/emilydolson/hospital-beds-per-capita/internal/pipeline"
)

type mockStatus struct {
	audit pipeline.AuditReport
	done  bool
}

func (m *mockStatus) CheckReadiness(_ context.Context) error {
	if !m.done {
		return errors.New("run has not completed yet")
	}
	return nil
}

func (m *mockStatus) Audit() (pipeline.AuditReport, bool) { return m.audit, m.done }

func newTestServer(done bool) *httpadapter.Server {
	status := &mockStatus{done: done}
	status.audit.JoinedCounties = 3141
	return httpadapter.NewServer(":0", status, slog.Default())
}

func get(t *testing.T, srv *httpadapter.Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	rec := get(t, newTestServer(false), "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyz(t *testing.T) {
	t.Run("503 while running", func(t *testing.T) {
		rec := get(t, newTestServer(false), "/readyz")

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "running", body["status"])
	})

	t.Run("200 after completion", func(t *testing.T) {
		rec := get(t, newTestServer(true), "/readyz")

		assert.Equal(t, http.StatusOK, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "complete", body["status"])
	})
}

func TestAuditz(t *testing.T) {
	t.Run("404 before completion", func(t *testing.T) {
		rec := get(t, newTestServer(false), "/auditz")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("report after completion", func(t *testing.T) {
		rec := get(t, newTestServer(true), "/auditz")

		assert.Equal(t, http.StatusOK, rec.Code)

		var audit pipeline.AuditReport
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &audit))
		assert.Equal(t, 3141, audit.JoinedCounties)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(t, newTestServer(false), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
