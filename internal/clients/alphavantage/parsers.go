package alphavantage

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/aristath/portfolio-analytics/internal/domain"
	"github.com/aristath/portfolio-analytics/internal/timeseries"
)

// DailyPrice is one row of TIME_SERIES_DAILY.
type DailyPrice struct {
	Date   timeseries.Date
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// MonthlyPrice is one row of TIME_SERIES_MONTHLY_ADJUSTED.
type MonthlyPrice struct {
	Date           timeseries.Date
	Close          float64
	AdjustedClose  float64
	Volume         int64
	DividendAmount float64
}

// Overview is the subset of the OVERVIEW payload the service uses.
type Overview struct {
	Symbol               string `json:"Symbol"`
	Name                 string `json:"Name"`
	Description          string `json:"Description"`
	Exchange             string `json:"Exchange"`
	Currency             string `json:"Currency"`
	Country              string `json:"Country"`
	Sector               string `json:"Sector"`
	Industry             string `json:"Industry"`
	MarketCapitalization string `json:"MarketCapitalization"`
}

// parseDailyTimeSeries returns the rows newest first.
func parseDailyTimeSeries(body []byte) ([]DailyPrice, error) {
	var payload struct {
		TimeSeries map[string]map[string]string `json:"Time Series (Daily)"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}

	prices := make([]DailyPrice, 0, len(payload.TimeSeries))
	for key, row := range payload.TimeSeries {
		date, err := timeseries.ParseDate(key)
		if err != nil {
			return nil, fmt.Errorf("%w: date %q", domain.ErrMalformedPayload, key)
		}
		closePrice, err := requireFloat(row, "4. close")
		if err != nil {
			return nil, err
		}
		prices = append(prices, DailyPrice{
			Date:   date,
			Open:   parseFloat64(row["1. open"]),
			High:   parseFloat64(row["2. high"]),
			Low:    parseFloat64(row["3. low"]),
			Close:  closePrice,
			Volume: parseInt64(row["5. volume"]),
		})
	}

	sort.Slice(prices, func(i, j int) bool { return prices[j].Date.Before(prices[i].Date) })
	return prices, nil
}

// parseMonthlyAdjustedTimeSeries returns the rows newest first.
func parseMonthlyAdjustedTimeSeries(body []byte) ([]MonthlyPrice, error) {
	var payload struct {
		TimeSeries map[string]map[string]string `json:"Monthly Adjusted Time Series"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}

	prices := make([]MonthlyPrice, 0, len(payload.TimeSeries))
	for key, row := range payload.TimeSeries {
		date, err := timeseries.ParseDate(key)
		if err != nil {
			return nil, fmt.Errorf("%w: date %q", domain.ErrMalformedPayload, key)
		}
		adjusted, err := requireFloat(row, "5. adjusted close")
		if err != nil {
			return nil, err
		}
		prices = append(prices, MonthlyPrice{
			Date:           date,
			Close:          parseFloat64(row["4. close"]),
			AdjustedClose:  adjusted,
			Volume:         parseInt64(row["6. volume"]),
			DividendAmount: parseFloat64(row["7. dividend amount"]),
		})
	}

	sort.Slice(prices, func(i, j int) bool { return prices[j].Date.Before(prices[i].Date) })
	return prices, nil
}

func parseCompanyOverview(body []byte) (*Overview, error) {
	var overview Overview
	if err := json.Unmarshal(body, &overview); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}
	return &overview, nil
}

// requireFloat parses a mandatory price column.
func requireFloat(row map[string]string, column string) (float64, error) {
	v := parseFloat64Ptr(row[column])
	if v == nil {
		return 0, fmt.Errorf("%w: missing %q", domain.ErrMalformedPayload, column)
	}
	return *v, nil
}

// parseFloat64 parses an API number, treating placeholders and garbage as zero.
func parseFloat64(s string) float64 {
	if v := parseFloat64Ptr(s); v != nil {
		return *v
	}
	return 0
}

// parseFloat64Ptr parses an API number, returning nil for placeholders and garbage.
func parseFloat64Ptr(s string) *float64 {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	switch s {
	case "", "None", "null", "-":
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func parseInt64(s string) int64 {
	return int64(parseFloat64(s))
}
