// Package respond writes JSON responses in the service's response envelope.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/portfolio-analytics/internal/domain"
)

// Envelope is the shape of every JSON response body.
type Envelope struct {
	Data     any      `json:"data,omitempty"`
	Error    string   `json:"error,omitempty"`
	Metadata Metadata `json:"metadata"`
}

// Metadata accompanies every response.
type Metadata struct {
	Timestamp string `json:"timestamp"`
}

// JSON writes data wrapped in the envelope.
func JSON(w http.ResponseWriter, log zerolog.Logger, status int, data any) {
	write(w, log, status, Envelope{Data: data, Metadata: now()})
}

// Error maps err to a status code and writes it wrapped in the envelope.
func Error(w http.ResponseWriter, log zerolog.Logger, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Int("status", status).Msg("Request failed")
	} else {
		log.Debug().Err(err).Int("status", status).Msg("Request rejected")
	}
	write(w, log, status, Envelope{Error: err.Error(), Metadata: now()})
}

// BadRequest writes a 400 with the given message.
func BadRequest(w http.ResponseWriter, log zerolog.Logger, msg string) {
	write(w, log, http.StatusBadRequest, Envelope{Error: msg, Metadata: now()})
}

// StatusFor maps the domain error taxonomy to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrRateLimitExceeded):
		return http.StatusTooManyRequests
	case domain.IsProviderError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func now() Metadata {
	return Metadata{Timestamp: time.Now().Format(time.RFC3339)}
}

// write encodes before sending the header so an unencodable body becomes a 500.
func write(w http.ResponseWriter, log zerolog.Logger, status int, body Envelope) {
	payload, err := json.Marshal(body)
	if err != nil {
		log.Error().Err(err).Int("status", status).Msg("Failed to encode JSON response")
		status = http.StatusInternalServerError
		payload, _ = json.Marshal(Envelope{Error: "failed to encode response", Metadata: body.Metadata})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(payload, '\n')); err != nil {
		log.Debug().Err(err).Msg("Failed to write JSON response")
	}
}
