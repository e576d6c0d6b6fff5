package server

import (
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/portfolio-analytics/internal/domain"
	"github.com/aristath/portfolio-analytics/internal/scheduler"
	"github.com/aristath/portfolio-analytics/internal/server/respond"
)

// QuotaReporter exposes the provider's remaining request budget
type QuotaReporter interface {
	GetRemainingRequests() int
}

// SystemHandlers serves status and manual job triggers
type SystemHandlers struct {
	log       zerolog.Logger
	startedAt time.Time
	quota     QuotaReporter
	jobs      map[string]scheduler.Job
}

// SystemStatusResponse is the body of GET /api/system/status
type SystemStatusResponse struct {
	StartedAt         time.Time `json:"started_at"`
	UptimeSeconds     int64     `json:"uptime_seconds"`
	RemainingRequests *int      `json:"remaining_requests,omitempty"`
	Jobs              []string  `json:"jobs"`
	CPUPercent        float64   `json:"cpu_percent"`
	RAMPercent        float64   `json:"ram_percent"`
}

// NewSystemHandlers creates system handlers. quota may be nil.
func NewSystemHandlers(log zerolog.Logger, quota QuotaReporter, jobs ...scheduler.Job) *SystemHandlers {
	h := &SystemHandlers{
		log:       log.With().Str("handler", "system").Logger(),
		startedAt: time.Now(),
		quota:     quota,
		jobs:      make(map[string]scheduler.Job, len(jobs)),
	}
	for _, job := range jobs {
		h.jobs[job.Name()] = job
	}
	return h
}

// RegisterRoutes registers the system routes
func (h *SystemHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/system", func(r chi.Router) {
		r.Get("/status", h.HandleSystemStatus)
		r.Post("/jobs/{name}", h.HandleTriggerJob)
	})
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(h.jobs))
	for name := range h.jobs {
		names = append(names, name)
	}
	sort.Strings(names)

	status := SystemStatusResponse{
		StartedAt:     h.startedAt,
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
		Jobs:          names,
	}
	status.CPUPercent, status.RAMPercent = h.getSystemStats()
	if h.quota != nil {
		remaining := h.quota.GetRemainingRequests()
		status.RemainingRequests = &remaining
	}

	respond.JSON(w, h.log, http.StatusOK, status)
}

// getSystemStats samples CPU over 100ms and reads RAM usage. Failures report 0.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuAvg := 0.0
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
	} else if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return cpuAvg, 0
	}

	return cpuAvg, memStat.UsedPercent
}

// HandleTriggerJob handles POST /api/system/jobs/{name}.
// The job runs in the background; the response only acknowledges it.
func (h *SystemHandlers) HandleTriggerJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	job, ok := h.jobs[name]
	if !ok {
		respond.Error(w, h.log, fmt.Errorf("job %s: %w", name, domain.ErrNotFound))
		return
	}

	h.log.Info().Str("job", name).Msg("Manual job run triggered")
	go func() {
		if err := job.Run(); err != nil {
			h.log.Error().Err(err).Str("job", name).Msg("Manual job run failed")
		}
	}()

	respond.JSON(w, h.log, http.StatusAccepted, map[string]string{
		"status":  "accepted",
		"message": "Job " + name + " triggered",
	})
}
