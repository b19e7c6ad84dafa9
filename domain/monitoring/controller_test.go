package monitoring

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/akeren/trustlink-waitlist/config/router"
	"github.com/akeren/trustlink-waitlist/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct {
	err error
}

func (p fakePinger) PingContext(context.Context) error { return p.err }

func serveHealth(t *testing.T, pinger func() (Pinger, error)) (*httptest.ResponseRecorder, HealthStatus) {
	t.Helper()
	t.Setenv("METRICS_ENABLED", "false")

	logger := log.NewLogger(io.Discard, slog.LevelError)
	rs := router.CreateRouterService(logger, &router.RouterConfig{RequestTimeout: 5 * time.Second})
	rs.MountController(newMonitoringController(pinger, logger))

	w := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	var status HealthStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	return w, status
}

func TestHealthCheck_Connected(t *testing.T) {
	w, status := serveHealth(t, func() (Pinger, error) { return fakePinger{}, nil })

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "connected", status.Database)

	_, err := time.Parse(time.RFC3339, status.Timestamp)
	assert.NoError(t, err)
}

func TestHealthCheck_PingFails(t *testing.T) {
	w, status := serveHealth(t, func() (Pinger, error) { return fakePinger{err: errors.New("down")}, nil })

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "disconnected", status.Database)
}

func TestHealthCheck_NoPool(t *testing.T) {
	w, status := serveHealth(t, func() (Pinger, error) { return nil, errors.New("no pool") })

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "disconnected", status.Database)
}
