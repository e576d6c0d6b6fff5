package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aristath/portfolio-analytics/internal/domain"
	"github.com/aristath/portfolio-analytics/internal/timeseries"
)

// MockStockService is a mock implementation of StockService
type MockStockService struct {
	mock.Mock
}

func (m *MockStockService) Create(ctx context.Context, symbol, exchange string) (*domain.Stock, error) {
	args := m.Called(ctx, symbol, exchange)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Stock), args.Error(1)
}

func (m *MockStockService) Get(ctx context.Context, symbol string) (*domain.Stock, error) {
	args := m.Called(ctx, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Stock), args.Error(1)
}

func (m *MockStockService) Sync(ctx context.Context, symbol string) (*domain.Stock, domain.SyncOutcome, error) {
	args := m.Called(ctx, symbol)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*domain.Stock), args.Get(1).(domain.SyncOutcome), args.Error(2)
}

func (m *MockStockService) List(ctx context.Context) ([]*domain.Stock, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Stock), args.Error(1)
}

func (m *MockStockService) Prices(ctx context.Context, symbol string, period timeseries.PeriodType) (*timeseries.Series, error) {
	args := m.Called(ctx, symbol, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*timeseries.Series), args.Error(1)
}

func setupRouter(svc *MockStockService) http.Handler {
	h := NewHandler(svc, zerolog.Nop())
	r := chi.NewRouter()
	r.Route("/api", h.RegisterRoutes)
	return r
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHandleCreateStock(t *testing.T) {
	svc := new(MockStockService)
	svc.On("Create", mock.Anything, "shel", "LON").
		Return(&domain.Stock{Symbol: "SHEL.LON", Name: "Shell PLC"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/stocks", strings.NewReader(`{"symbol":"shel","exchange":"LON"}`))
	w := httptest.NewRecorder()
	setupRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "SHEL.LON", data["symbol"])
	svc.AssertExpectations(t)
}

func TestHandleCreateStock_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		err      error
		expected int
	}{
		{"invalid body", `{`, nil, http.StatusBadRequest},
		{"missing symbol", `{"exchange":"LON"}`, nil, http.StatusBadRequest},
		{"duplicate", `{"symbol":"IBM"}`, domain.ErrAlreadyExists, http.StatusConflict},
		{"rate limited", `{"symbol":"IBM"}`, domain.NewProviderError("daily", "IBM", domain.ErrRateLimitExceeded), http.StatusTooManyRequests},
		{"no data", `{"symbol":"IBM"}`, domain.NewProviderError("daily", "IBM", domain.ErrNoData), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockStockService)
			if tt.err != nil {
				svc.On("Create", mock.Anything, "IBM", "").Return(nil, tt.err)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/stocks", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			setupRouter(svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expected, w.Code)
			assert.NotEmpty(t, decode(t, w)["error"])
			svc.AssertExpectations(t)
		})
	}
}

func TestHandleGetStock(t *testing.T) {
	svc := new(MockStockService)
	svc.On("Get", mock.Anything, "IBM").Return(&domain.Stock{Symbol: "IBM", CurrentPrice: 190}, nil)
	svc.On("Get", mock.Anything, "NOPE").Return(nil, domain.ErrNotFound)

	w := httptest.NewRecorder()
	setupRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/stocks/IBM", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 190.0, decode(t, w)["data"].(map[string]interface{})["current_price"])

	w = httptest.NewRecorder()
	setupRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/stocks/NOPE", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleSyncStock(t *testing.T) {
	svc := new(MockStockService)
	svc.On("Sync", mock.Anything, "IBM").Return(&domain.Stock{Symbol: "IBM"}, domain.SyncUpdated, nil)

	w := httptest.NewRecorder()
	setupRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/stocks/IBM/sync", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "updated", data["outcome"])
}

func TestHandleListStocks(t *testing.T) {
	svc := new(MockStockService)
	svc.On("List", mock.Anything).Return([]*domain.Stock{{Symbol: "AAPL"}, {Symbol: "IBM"}}, nil)

	w := httptest.NewRecorder()
	setupRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/stocks", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2.0, decode(t, w)["data"].(map[string]interface{})["count"])
}

func TestHandleGetPrices(t *testing.T) {
	series := timeseries.SeriesOf(
		timeseries.Point{Date: timeseries.MustParseDate("2024-01-02"), Price: 11},
		timeseries.Point{Date: timeseries.MustParseDate("2024-01-03"), Price: 12},
	)
	svc := new(MockStockService)
	svc.On("Prices", mock.Anything, "IBM", timeseries.Daily).Return(series, nil)

	w := httptest.NewRecorder()
	setupRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/stocks/IBM/prices/days", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "daily", data["interval"])
	assert.Equal(t, 12.0, data["prices"].(map[string]interface{})["2024-01-03"])

	w = httptest.NewRecorder()
	setupRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/stocks/IBM/prices/weekly", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNumberOfCalls(t, "Prices", 1)
}
