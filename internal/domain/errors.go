package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a referenced stock or portfolio is missing from the store.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is returned for malformed input such as an unknown period type.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrAlreadyExists is returned when creating a stock whose symbol is already stored.
	ErrAlreadyExists = errors.New("already exists")

	// ErrRateLimitExceeded signals that the market-data provider refused the request quota.
	ErrRateLimitExceeded = errors.New("provider rate limit exceeded")
	// ErrNoData signals an empty or missing series from the provider.
	ErrNoData = errors.New("provider returned no data")
	// ErrMalformedPayload signals a provider response that could not be decoded.
	ErrMalformedPayload = errors.New("malformed provider payload")
)

// ProviderError wraps every failure coming from the market-data provider.
type ProviderError struct {
	Op     string // daily, monthly, overview
	Symbol string
	Err    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s %s: %v", e.Op, e.Symbol, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// NewProviderError wraps err unless it already is a ProviderError.
func NewProviderError(op, symbol string, err error) error {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return err
	}
	return &ProviderError{Op: op, Symbol: symbol, Err: err}
}

// IsProviderError reports whether err originated at the market-data provider.
func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}
