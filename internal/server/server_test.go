package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testhelpers "github.com/aristath/portfolio-analytics/internal/testing"
)

type failingHealth struct{}

func (failingHealth) HealthCheck(context.Context) error { return errors.New("disk full") }

type fixedQuota int

func (q fixedQuota) GetRemainingRequests() int { return int(q) }

type signalJob struct {
	once sync.Once
	done chan struct{}
}

func (j *signalJob) Run() error {
	j.once.Do(func() { close(j.done) })
	return nil
}

func (j *signalJob) Name() string { return "daily_sync" }

type pingModule struct{}

func (pingModule) RegisterRoutes(r chi.Router) {
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func serve(s *Server, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	data, _ := body["data"].(map[string]interface{})
	return data
}

func TestHealth(t *testing.T) {
	db, cleanup := testhelpers.NewTestDB(t, "documents")
	defer cleanup()

	s := New(Config{Log: zerolog.Nop(), DevMode: true, Health: db})
	w := serve(s, http.MethodGet, "/health")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decodeData(t, w)["status"])
}

func TestHealth_Unhealthy(t *testing.T) {
	s := New(Config{Log: zerolog.Nop(), DevMode: true, Health: failingHealth{}})
	w := serve(s, http.MethodGet, "/health")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "unhealthy", data["status"])
	assert.Equal(t, "disk full", data["error"])
}

func TestModulesMountedUnderAPI(t *testing.T) {
	s := New(Config{Log: zerolog.Nop(), DevMode: true, Modules: []RouteRegistrar{pingModule{}}})

	assert.Equal(t, http.StatusNoContent, serve(s, http.MethodGet, "/api/ping").Code)
	assert.Equal(t, http.StatusNotFound, serve(s, http.MethodGet, "/ping").Code)
}

func TestCORSPreflight(t *testing.T) {
	s := New(Config{Log: zerolog.Nop(), DevMode: true, CORSOrigins: []string{"http://localhost:3000"}, Modules: []RouteRegistrar{pingModule{}}})

	req := httptest.NewRequest(http.MethodOptions, "/api/ping", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSystemStatus(t *testing.T) {
	job := &signalJob{done: make(chan struct{})}
	system := NewSystemHandlers(zerolog.Nop(), fixedQuota(7), job)
	s := New(Config{Log: zerolog.Nop(), DevMode: true, System: system})

	w := serve(s, http.MethodGet, "/api/system/status")
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, float64(7), data["remaining_requests"])
	assert.Equal(t, []interface{}{"daily_sync"}, data["jobs"])
	assert.Contains(t, data, "cpu_percent")
	assert.Contains(t, data, "ram_percent")
}

func TestTriggerJob(t *testing.T) {
	job := &signalJob{done: make(chan struct{})}
	system := NewSystemHandlers(zerolog.Nop(), nil, job)
	s := New(Config{Log: zerolog.Nop(), DevMode: true, System: system})

	w := serve(s, http.MethodPost, "/api/system/jobs/daily_sync")
	assert.Equal(t, http.StatusAccepted, w.Code)

	select {
	case <-job.done:
	case <-time.After(2 * time.Second):
		t.Fatal("job was not run")
	}

	w = serve(s, http.MethodPost, "/api/system/jobs/unknown")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
