package alphavantage

import (
	"fmt"

	"github.com/aristath/portfolio-analytics/internal/domain"
)

// ErrRateLimitExceeded is returned when the daily budget is spent or the API refuses
// the request with a rate-limit note.
type ErrRateLimitExceeded struct {
	Message string
}

func (e ErrRateLimitExceeded) Error() string {
	if e.Message != "" {
		return "alpha vantage rate limit exceeded: " + e.Message
	}
	return "alpha vantage rate limit exceeded"
}

// Is matches domain.ErrRateLimitExceeded.
func (e ErrRateLimitExceeded) Is(target error) bool {
	return target == domain.ErrRateLimitExceeded
}

// ErrInvalidAPIKey is returned when the API rejects the configured key.
type ErrInvalidAPIKey struct{}

func (e ErrInvalidAPIKey) Error() string {
	return "alpha vantage api key is invalid or missing"
}

// ErrSymbolNotFound is returned when the API has no data for a symbol.
type ErrSymbolNotFound struct {
	Symbol string
}

func (e ErrSymbolNotFound) Error() string {
	return fmt.Sprintf("alpha vantage has no data for symbol %s", e.Symbol)
}

// Is matches domain.ErrNoData.
func (e ErrSymbolNotFound) Is(target error) bool {
	return target == domain.ErrNoData
}

// ErrAPIError carries an "Error Message" returned by the API.
type ErrAPIError struct {
	Message string
}

func (e ErrAPIError) Error() string {
	return "alpha vantage error: " + e.Message
}

// Is matches domain.ErrNoData; the API reports unknown symbols this way.
func (e ErrAPIError) Is(target error) bool {
	return target == domain.ErrNoData
}
