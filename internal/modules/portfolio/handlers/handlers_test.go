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
	"github.com/stretchr/testify/require"

	"github.com/aristath/portfolio-analytics/internal/modules/portfolio"
	"github.com/aristath/portfolio-analytics/internal/modules/statistics"
	"github.com/aristath/portfolio-analytics/internal/modules/universe"
	testhelpers "github.com/aristath/portfolio-analytics/internal/testing"
)

func setupRouter(t *testing.T) http.Handler {
	t.Helper()
	log := zerolog.Nop()

	store := testhelpers.NewTestStore(t)
	history := universe.NewHistoryDB(store, log)
	stocks := universe.NewStockRepository(store, history, log)

	ibm := testhelpers.NewStockFixtures()[0]
	ibm.CurrentPrice = 50
	ibm.Prices = testhelpers.NewHistoricalSeries(
		testhelpers.BusinessDays("2024-03-15", 5, 40, 1),
		testhelpers.MonthEnds("2024-02-29", 3, 30, 5),
	)
	require.NoError(t, stocks.Save(context.Background(), ibm))

	service := portfolio.NewPortfolioService(
		portfolio.NewRepository(store, history, log),
		stocks,
		statistics.NewCalculator(statistics.Lexicographic, log),
		testhelpers.NewFixedClock("2024-03-15"),
		log,
	)

	r := chi.NewRouter()
	r.Route("/api", NewHandler(service, log).RegisterRoutes)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope), w.Body.String())
	return w.Code, envelope
}

func createPortfolio(t *testing.T, h http.Handler) string {
	t.Helper()
	code, body := do(t, h, http.MethodPost, "/api/portfolios", `{"name":"Core","owner":"alice","capital":1000}`)
	require.Equal(t, http.StatusCreated, code)
	return body["data"].(map[string]interface{})["id"].(string)
}

func TestCreateAndGetPortfolio(t *testing.T) {
	h := setupRouter(t)
	id := createPortfolio(t, h)

	code, body := do(t, h, http.MethodGet, "/api/portfolios/"+id, "")
	assert.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "Core", data["name"])
	assert.Contains(t, body, "metadata")
}

func TestCreatePortfolio_Invalid(t *testing.T) {
	h := setupRouter(t)

	code, _ := do(t, h, http.MethodPost, "/api/portfolios", `{`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body := do(t, h, http.MethodPost, "/api/portfolios", `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.NotEmpty(t, body["error"])
}

func TestListPortfolios_OwnerFilter(t *testing.T) {
	h := setupRouter(t)
	createPortfolio(t, h)

	_, body := do(t, h, http.MethodGet, "/api/portfolios?owner=alice", "")
	assert.Equal(t, float64(1), body["data"].(map[string]interface{})["count"])

	_, body = do(t, h, http.MethodGet, "/api/portfolios?owner=bob", "")
	assert.Equal(t, float64(0), body["data"].(map[string]interface{})["count"])
}

func TestHoldingsLifecycle(t *testing.T) {
	h := setupRouter(t)
	id := createPortfolio(t, h)
	base := "/api/portfolios/" + id

	code, body := do(t, h, http.MethodPost, base+"/holdings", `{"symbol":"IBM","quantity":4}`)
	require.Equal(t, http.StatusCreated, code)
	data := body["data"].(map[string]interface{})
	holdings := data["holdings"].([]interface{})
	require.Len(t, holdings, 1)
	holdingID := holdings[0].(map[string]interface{})["id"].(string)
	assert.Equal(t, 100.0, data["percent_allocated"].(map[string]interface{})["IBM"])

	code, body = do(t, h, http.MethodGet, base+"/capital", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 200.0, body["data"].(map[string]interface{})["used"])

	code, body = do(t, h, http.MethodGet, base+"/holdings/combined", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), body["data"].(map[string]interface{})["count"])

	code, body = do(t, h, http.MethodGet, base+"/rebalance", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(4), body["data"].(map[string]interface{})["targets"].(map[string]interface{})["IBM"])

	code, body = do(t, h, http.MethodGet, base+"/prices/daily", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(5), body["data"].(map[string]interface{})["count"])

	code, body = do(t, h, http.MethodGet, base+"/prices/months/change", "")
	require.Equal(t, http.StatusOK, code)
	prices := body["data"].(map[string]interface{})["prices"].(map[string]interface{})
	assert.Equal(t, 0.0, prices["2023-12-31"])

	code, _ = do(t, h, http.MethodPost, base+"/refresh", "")
	assert.Equal(t, http.StatusOK, code)

	code, _ = do(t, h, http.MethodDelete, base+"/holdings/"+holdingID, "")
	assert.Equal(t, http.StatusOK, code)
	code, _ = do(t, h, http.MethodDelete, base+"/holdings/"+holdingID, "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestAddHolding_UnknownStock(t *testing.T) {
	h := setupRouter(t)
	id := createPortfolio(t, h)

	code, _ := do(t, h, http.MethodPost, "/api/portfolios/"+id+"/holdings", `{"symbol":"MSFT","quantity":1}`)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, h, http.MethodPost, "/api/portfolios/"+id+"/holdings", `{"quantity":1}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestGetPrices_InvalidInterval(t *testing.T) {
	h := setupRouter(t)
	id := createPortfolio(t, h)

	code, _ := do(t, h, http.MethodGet, "/api/portfolios/"+id+"/prices/weekly", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestDeletePortfolio(t *testing.T) {
	h := setupRouter(t)
	id := createPortfolio(t, h)

	code, _ := do(t, h, http.MethodDelete, "/api/portfolios/"+id, "")
	assert.Equal(t, http.StatusOK, code)

	code, _ = do(t, h, http.MethodGet, "/api/portfolios/"+id, "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestActivity(t *testing.T) {
	h := setupRouter(t)
	id := createPortfolio(t, h)
	base := "/api/portfolios/" + id

	code, body := do(t, h, http.MethodPost, base+"/holdings", `{"symbol":"IBM","quantity":4}`)
	require.Equal(t, http.StatusCreated, code)
	holdingID := body["data"].(map[string]interface{})["holdings"].([]interface{})[0].(map[string]interface{})["id"].(string)
	code, _ = do(t, h, http.MethodDelete, base+"/holdings/"+holdingID, "")
	require.Equal(t, http.StatusOK, code)

	code, body = do(t, h, http.MethodGet, base+"/activity", "")
	require.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(3), data["count"])
	entries := data["activity"].([]interface{})
	actions := make([]string, 0, len(entries))
	for _, e := range entries {
		actions = append(actions, e.(map[string]interface{})["action"].(string))
	}
	assert.Equal(t, []string{"created", "holding_added", "holding_removed"}, actions)

	added := entries[1].(map[string]interface{})
	assert.Equal(t, 1000.0, added["capital"])
	assert.Equal(t, "alice", added["owner"])
	assert.Equal(t, "IBM", added["added"].([]interface{})[0].(map[string]interface{})["symbol"])

	code, _ = do(t, h, http.MethodGet, "/api/portfolios/missing/activity", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestAllActivity_KeepsDeletedPortfolios(t *testing.T) {
	h := setupRouter(t)
	id := createPortfolio(t, h)

	code, _ := do(t, h, http.MethodDelete, "/api/portfolios/"+id, "")
	require.Equal(t, http.StatusOK, code)

	code, body := do(t, h, http.MethodGet, "/api/activity?owner=alice", "")
	require.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["count"])
	entries := data["activity"].([]interface{})
	assert.Equal(t, "deleted", entries[1].(map[string]interface{})["action"])

	code, body = do(t, h, http.MethodGet, "/api/activity?owner=bob", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(0), body["data"].(map[string]interface{})["count"])
}
