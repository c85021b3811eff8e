package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ahmethakanbesel/stockseries/internal/quote"
	"github.com/ahmethakanbesel/stockseries/internal/scraper"
)

func day(m, d int) time.Time {
	return time.Date(2024, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func newTestHandler(t *testing.T) (http.Handler, *scraper.MockFetcher) {
	t.Helper()
	f := scraper.NewMockFetcher(gomock.NewController(t))
	f.EXPECT().Source().Return("mock").AnyTimes()

	reg := scraper.NewRegistry()
	reg.Register(f)
	return NewHandler(reg, "mock"), f
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) APIResponse[T] {
	t.Helper()
	var resp APIResponse[T]
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestHealthAndRequestID(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := get(t, h, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc", rec.Header().Get("X-Request-ID"))
}

func TestListSourcesAndReports(t *testing.T) {
	h, _ := newTestHandler(t)

	sources := decode[[]string](t, get(t, h, "/api/v1/sources"))
	assert.Equal(t, []string{"mock"}, sources.Data)

	rec := get(t, h, "/api/v1/reports")
	require.Equal(t, http.StatusOK, rec.Code)
	reports := decode[[]map[string]any](t, rec)
	require.Len(t, reports.Data, 3)
	assert.Equal(t, "stock-report", reports.Data[0]["name"])
	assert.Equal(t, "4w", reports.Data[0]["duration"])
}

func TestGetSeries_MultiSymbol(t *testing.T) {
	h, f := newTestHandler(t)
	gomock.InOrder(
		f.EXPECT().Fetch(gomock.Any(), gomock.Cond(func(r quote.Request) bool { return r.Symbol == "AAA" })).
			Return(quote.RawSeries{
				{Date: day(1, 1), Fields: map[quote.Measure]float64{quote.Close: 10}},
				{Date: day(1, 2), Fields: map[quote.Measure]float64{quote.Close: 11}},
			}, nil),
		f.EXPECT().Fetch(gomock.Any(), gomock.Cond(func(r quote.Request) bool { return r.Symbol == "BBB" })).
			Return(quote.RawSeries{
				{Date: day(1, 2), Fields: map[quote.Measure]float64{quote.Close: 50}},
			}, nil),
	)

	rec := get(t, h, "/api/v1/series/AAA,BBB?startDate=2024-01-01&endDate=2024-01-31&measures=close")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[TableResponse](t, rec)
	assert.Equal(t, []string{"AAA", "BBB"}, resp.Data.Columns)
	require.Len(t, resp.Data.Rows, 2)
	assert.Equal(t, map[string]any{"date": "2024-01-01", "AAA": 10.0}, resp.Data.Rows[0])
	assert.Equal(t, map[string]any{"date": "2024-01-02", "AAA": 11.0, "BBB": 50.0}, resp.Data.Rows[1])
}

func TestGetSeries_SingleSymbolCSV(t *testing.T) {
	h, f := newTestHandler(t)
	f.EXPECT().Fetch(gomock.Any(), gomock.Any()).DoAndReturn(func(_ any, r quote.Request) (quote.RawSeries, error) {
		assert.Equal(t, quote.Weekly, r.Resolution)
		assert.Equal(t, []quote.Measure{quote.Open, quote.Close}, r.Measures)
		return quote.RawSeries{
			{Date: day(1, 5), Fields: map[quote.Measure]float64{quote.Open: 1, quote.Close: 2}},
		}, nil
	})

	rec := get(t, h, "/api/v1/series/ZZZ?startDate=2024-01-01&endDate=2024-01-31&resolution=week&measures=open,close&format=csv")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, "Date,open,close\n2024-01-05,1,2\n", string(body))
}

func TestGetSeries_SymbolDataErrorIsBadGateway(t *testing.T) {
	h, f := newTestHandler(t)
	f.EXPECT().Fetch(gomock.Any(), gomock.Any()).
		Return(nil, &quote.SymbolDataError{Symbol: "ZZZ", End: day(1, 31), Err: errors.New("no data rows in response")})

	rec := get(t, h, "/api/v1/series/ZZZ?startDate=2024-01-01&endDate=2024-01-31")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	resp := decode[string](t, rec)
	assert.Contains(t, resp.Message, `"ZZZ"`)
}

func TestGetSeries_BadRequests(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"missing start", "/api/v1/series/AAA"},
		{"bad start", "/api/v1/series/AAA?startDate=01-01-2024"},
		{"begin after end", "/api/v1/series/AAA?startDate=2024-02-01&endDate=2024-01-01"},
		{"bad measure", "/api/v1/series/AAA?startDate=2024-01-01&measures=adj"},
		{"bad resolution", "/api/v1/series/AAA?startDate=2024-01-01&resolution=hour"},
		{"multi measure multi symbol", "/api/v1/series/AAA,BBB?startDate=2024-01-01&measures=open,close"},
		{"blank symbols", "/api/v1/series/%20,%20?startDate=2024-01-01"},
		{"bad format", "/api/v1/series/AAA?startDate=2024-01-01&format=xml"},
		{"unknown source", "/api/v1/series/AAA?startDate=2024-01-01&endDate=2024-01-31&source=nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandler(t)
			rec := get(t, h, tt.target)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestRunReport(t *testing.T) {
	h, f := newTestHandler(t)
	f.EXPECT().Fetch(gomock.Any(), gomock.Any()).DoAndReturn(func(_ any, r quote.Request) (quote.RawSeries, error) {
		assert.Equal(t, []quote.Measure{quote.Volume}, r.Measures)
		assert.Equal(t, day(1, 31), r.End)
		assert.Equal(t, day(1, 3), r.Begin)
		return quote.RawSeries{{Date: day(1, 5), Fields: map[quote.Measure]float64{quote.Volume: 100}}}, nil
	}).Times(2)

	rec := get(t, h, "/api/v1/reports/multi-stock-volume?symbols=aaa,bbb&endDate=2024-01-31&duration=4w")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[TableResponse](t, rec)
	assert.Equal(t, []string{"AAA", "BBB"}, resp.Data.Columns)
}

func TestRunReport_Errors(t *testing.T) {
	h, _ := newTestHandler(t)

	assert.Equal(t, http.StatusNotFound, get(t, h, "/api/v1/reports/nope?symbols=AAA").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/v1/reports/stock-report").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/v1/reports/stock-report?symbols=AAA&duration=3w").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/v1/reports/stock-report?symbols=AAA,BBB").Code)
}
