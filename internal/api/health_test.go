// Copyright (c) 2026 Housika. All rights reserved.

package api_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/housika/housika-api/internal/api"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func healthy(context.Context) error { return nil }

func TestLiveness(t *testing.T) {
	liveness, _ := api.NewHealthHandlers(discardLogger())

	recorder := httptest.NewRecorder()
	liveness(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"status":"ok"`)
}

func TestReadiness(t *testing.T) {
	_, ready := api.NewHealthHandlers(discardLogger(),
		api.HealthCheck{Name: "postgres", Check: healthy},
		api.HealthCheck{Name: "redis", Check: healthy},
	)
	recorder := httptest.NewRecorder()
	ready(recorder, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"status":"ready"`)

	_, degraded := api.NewHealthHandlers(discardLogger(),
		api.HealthCheck{Name: "postgres", Check: healthy},
		api.HealthCheck{Name: "redis", Check: func(context.Context) error { return errors.New("connection refused") }},
	)
	recorder = httptest.NewRecorder()
	degraded(recorder, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"status":"degraded"`)
	assert.Contains(t, recorder.Body.String(), "connection refused")
}
