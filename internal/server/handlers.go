package server

import (
	"context"
	"net/http"
	"time"

	"github.com/aristath/portfolio-analytics/internal/server/respond"
)

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":  "healthy",
		"service": "portfolio-analytics",
	}

	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := s.health.HealthCheck(ctx); err != nil {
			s.log.Error().Err(err).Msg("Health check failed")
			response["status"] = "unhealthy"
			response["error"] = err.Error()
			respond.JSON(w, s.log, http.StatusServiceUnavailable, response)
			return
		}
	}

	respond.JSON(w, s.log, http.StatusOK, response)
}
