package universe

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/aristath/portfolio-analytics/internal/domain"
	"github.com/aristath/portfolio-analytics/internal/timeseries"
)

// PriceValidator rejects provider series that cannot be stored
type PriceValidator struct {
	log zerolog.Logger
}

// NewPriceValidator creates a new price validator
func NewPriceValidator(log zerolog.Logger) *PriceValidator {
	return &PriceValidator{
		log: log.With().Str("component", "price_validator").Logger(),
	}
}

// Validate checks that a fetched series is non-empty and holds only finite,
// non-negative prices. Failures match domain.ErrNoData or domain.ErrMalformedPayload.
func (v *PriceValidator) Validate(symbol string, period timeseries.PeriodType, s *timeseries.Series) error {
	if s.Len() == 0 {
		return fmt.Errorf("%s %s series: %w", symbol, period, domain.ErrNoData)
	}
	for date, price := range s.Ascending() {
		if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
			v.log.Warn().
				Str("symbol", symbol).
				Str("period", period.String()).
				Str("date", date.String()).
				Float64("price", price).
				Msg("Rejected invalid price")
			return fmt.Errorf("%s %s price %v on %s: %w", symbol, period, price, date, domain.ErrMalformedPayload)
		}
	}
	return nil
}
