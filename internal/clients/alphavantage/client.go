// Package alphavantage provides a market-data client for the Alpha Vantage REST API.
package alphavantage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/portfolio-analytics/internal/domain"
	"github.com/aristath/portfolio-analytics/internal/timeseries"
)

const (
	// DefaultBaseURL is the Alpha Vantage query endpoint.
	DefaultBaseURL = "https://www.alphavantage.co/query"
	// DefaultDailyLimit is the free-tier request budget per UTC day.
	DefaultDailyLimit = 25

	functionDaily    = "TIME_SERIES_DAILY"
	functionMonthly  = "TIME_SERIES_MONTHLY_ADJUSTED"
	functionOverview = "OVERVIEW"
)

// ClientInterface is the subset of the client the rest of the service depends on.
type ClientInterface interface {
	domain.MarketDataProvider
	GetRemainingRequests() int
}

// CacheTTL configures how long each kind of response is cached.
type CacheTTL struct {
	PriceData    time.Duration
	Fundamentals time.Duration
}

// DefaultCacheTTL returns the default cache lifetimes.
func DefaultCacheTTL() CacheTTL {
	return CacheTTL{
		PriceData:    15 * time.Minute,
		Fundamentals: 24 * time.Hour,
	}
}

type cacheEntry struct {
	data      interface{}
	expiresAt time.Time
}

// Client is the Alpha Vantage API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        zerolog.Logger

	// Daily request budget, reset at UTC midnight
	rateMu       sync.Mutex
	dailyLimit   int
	requestCount int
	resetAt      time.Time

	cacheMu  sync.RWMutex
	cache    map[string]cacheEntry
	cacheTTL CacheTTL
}

// NewClient creates a new Alpha Vantage client with the default endpoint and budget.
func NewClient(apiKey string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log:        log.With().Str("component", "alphavantage").Logger(),
		dailyLimit: DefaultDailyLimit,
		resetAt:    nextMidnightUTC(),
		cache:      make(map[string]cacheEntry),
		cacheTTL:   DefaultCacheTTL(),
	}
}

// SetBaseURL overrides the query endpoint.
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// SetDailyLimit overrides the daily request budget.
func (c *Client) SetDailyLimit(limit int) {
	c.rateMu.Lock()
	defer c.rateMu.Unlock()
	c.dailyLimit = limit
}

// SetCacheTTL overrides the cache lifetimes.
func (c *Client) SetCacheTTL(ttl CacheTTL) {
	c.cacheTTL = ttl
}

// DailySeries returns daily closing prices.
func (c *Client) DailySeries(ctx context.Context, symbol string) (*timeseries.Series, error) {
	body, err := c.fetch(ctx, functionDaily, symbol, c.cacheTTL.PriceData)
	if err != nil {
		return nil, domain.NewProviderError("daily", symbol, err)
	}

	prices, err := parseDailyTimeSeries(body)
	if err != nil {
		return nil, domain.NewProviderError("daily", symbol, err)
	}
	if len(prices) == 0 {
		return nil, domain.NewProviderError("daily", symbol, ErrSymbolNotFound{Symbol: symbol})
	}

	series := timeseries.NewSeries()
	for _, p := range prices {
		series.Put(p.Date, p.Close)
	}
	return series, nil
}

// MonthlySeries returns month-end adjusted closing prices.
func (c *Client) MonthlySeries(ctx context.Context, symbol string) (*timeseries.Series, error) {
	body, err := c.fetch(ctx, functionMonthly, symbol, c.cacheTTL.PriceData)
	if err != nil {
		return nil, domain.NewProviderError("monthly", symbol, err)
	}

	prices, err := parseMonthlyAdjustedTimeSeries(body)
	if err != nil {
		return nil, domain.NewProviderError("monthly", symbol, err)
	}
	if len(prices) == 0 {
		return nil, domain.NewProviderError("monthly", symbol, ErrSymbolNotFound{Symbol: symbol})
	}

	series := timeseries.NewSeries()
	for _, p := range prices {
		series.Put(p.Date, p.AdjustedClose)
	}
	return series, nil
}

// CompanyOverview returns name, description and classification attributes.
func (c *Client) CompanyOverview(ctx context.Context, symbol string) (*domain.CompanyOverview, error) {
	body, err := c.fetch(ctx, functionOverview, symbol, c.cacheTTL.Fundamentals)
	if err != nil {
		return nil, domain.NewProviderError("overview", symbol, err)
	}

	overview, err := parseCompanyOverview(body)
	if err != nil {
		return nil, domain.NewProviderError("overview", symbol, err)
	}
	// Unknown symbols come back as an empty object
	if overview.Symbol == "" && overview.Name == "" {
		return nil, domain.NewProviderError("overview", symbol, ErrSymbolNotFound{Symbol: symbol})
	}

	return &domain.CompanyOverview{
		Symbol:      symbol,
		Name:        overview.Name,
		Description: overview.Description,
		Country:     overview.Country,
		Sector:      overview.Sector,
		Industry:    overview.Industry,
		Exchange:    overview.Exchange,
	}, nil
}

// GetRemainingRequests returns the requests left in today's budget.
func (c *Client) GetRemainingRequests() int {
	c.rateMu.Lock()
	defer c.rateMu.Unlock()
	c.maybeReset()
	if remaining := c.dailyLimit - c.requestCount; remaining > 0 {
		return remaining
	}
	return 0
}

// ResetDailyCounter restores the full daily budget.
func (c *Client) ResetDailyCounter() {
	c.rateMu.Lock()
	defer c.rateMu.Unlock()
	c.requestCount = 0
	c.resetAt = nextMidnightUTC()
}

// ClearCache drops every cached response.
func (c *Client) ClearCache() {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	c.cache = make(map[string]cacheEntry)
}

// fetch returns the raw response for function/symbol, from cache when fresh.
func (c *Client) fetch(ctx context.Context, function, symbol string, ttl time.Duration) ([]byte, error) {
	params := map[string]string{"symbol": symbol}
	key := buildCacheKey(function, params)

	if cached, ok := c.getFromCache(key); ok {
		c.log.Debug().Str("function", function).Str("symbol", symbol).Msg("Alpha Vantage cache hit")
		return cached.([]byte), nil
	}

	body, err := c.doRequest(ctx, function, params)
	if err != nil {
		return nil, err
	}

	c.setCache(key, body, ttl)
	return body, nil
}

func (c *Client) doRequest(ctx context.Context, function string, params map[string]string) ([]byte, error) {
	if err := c.checkRateLimit(); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("function", function)
	for k, v := range params {
		query.Set(k, v)
	}
	query.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debug().
		Str("function", function).
		Str("symbol", params["symbol"]).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Alpha Vantage request")

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimitExceeded{Message: "HTTP 429"}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d", domain.ErrMalformedPayload, resp.StatusCode)
	}

	if err := c.checkAPIError(body); err != nil {
		return nil, err
	}
	return body, nil
}

// checkRateLimit consumes one request from the daily budget.
func (c *Client) checkRateLimit() error {
	c.rateMu.Lock()
	defer c.rateMu.Unlock()
	c.maybeReset()

	if c.requestCount >= c.dailyLimit {
		c.log.Warn().Int("limit", c.dailyLimit).Time("reset_at", c.resetAt).Msg("Daily request budget exhausted")
		return ErrRateLimitExceeded{Message: fmt.Sprintf("daily budget of %d requests used", c.dailyLimit)}
	}
	c.requestCount++
	return nil
}

// maybeReset must be called with rateMu held.
func (c *Client) maybeReset() {
	if time.Now().UTC().After(c.resetAt) {
		c.requestCount = 0
		c.resetAt = nextMidnightUTC()
	}
}

// checkAPIError detects the error payloads Alpha Vantage returns with HTTP 200.
func (c *Client) checkAPIError(body []byte) error {
	trimmed := bytes.TrimSpace(body)
	if bytes.HasPrefix(trimmed, []byte("Thank you for using Alpha Vantage")) {
		return ErrRateLimitExceeded{Message: string(trimmed)}
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}

	if msg, ok := stringField(envelope, "Note"); ok {
		return ErrRateLimitExceeded{Message: msg}
	}
	if msg, ok := stringField(envelope, "Information"); ok {
		if strings.Contains(strings.ToLower(msg), "apikey") && !strings.Contains(strings.ToLower(msg), "rate limit") {
			return ErrInvalidAPIKey{}
		}
		return ErrRateLimitExceeded{Message: msg}
	}
	if msg, ok := stringField(envelope, "Error Message"); ok {
		return ErrAPIError{Message: msg}
	}
	return nil
}

func stringField(envelope map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := envelope[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return string(raw), true
	}
	return s, true
}

func (c *Client) getFromCache(key string) (interface{}, bool) {
	c.cacheMu.RLock()
	defer c.cacheMu.RUnlock()

	entry, ok := c.cache[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.data, true
}

func (c *Client) setCache(key string, data interface{}, ttl time.Duration) {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	c.cache[key] = cacheEntry{data: data, expiresAt: time.Now().Add(ttl)}
}

// buildCacheKey renders function and params in a stable order, leaving out the api key.
func buildCacheKey(function string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == "apikey" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(function)
	for _, k := range keys {
		b.WriteString("&")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(params[k])
	}
	return b.String()
}

func nextMidnightUTC() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
}
