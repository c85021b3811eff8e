// Package yahoo implements a fetcher for the Yahoo Finance historical quotes
// CSV endpoint. The endpoint takes the date range as separate year, month and
// day parameters and answers with a header row followed by one row per trading
// period, newest first.
package yahoo

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ahmethakanbesel/stockseries/internal/quote"
	"github.com/ahmethakanbesel/stockseries/internal/scraper"
)

const (
	defaultEndpoint = "https://ichart.finance.yahoo.com/table.csv"
	defaultTimeout  = 30 * time.Second
	userAgent       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
)

// Column positions in a response row: date,open,high,low,close,volume,adj_close.
const (
	colDate = iota
	colOpen
	colHigh
	colLow
	colClose
	colVolume
	colAdjClose
	numColumns
)

var errNoRows = errors.New("no data rows in response")

var _ scraper.Fetcher = (*Scraper)(nil)

// Scraper fetches historical prices from Yahoo Finance.
type Scraper struct {
	client    *http.Client
	endpoint  string
	userAgent string
}

// New creates a Scraper with the given options applied.
func New(opts ...Option) *Scraper {
	s := &Scraper{
		client:    &http.Client{Timeout: defaultTimeout},
		endpoint:  defaultEndpoint,
		userAgent: userAgent,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithClient sets the HTTP client.
func WithClient(c *http.Client) Option {
	return func(s *Scraper) { s.client = c }
}

// WithEndpoint overrides the default historical quotes endpoint.
func WithEndpoint(ep string) Option {
	return func(s *Scraper) { s.endpoint = ep }
}

// WithUserAgent overrides the User-Agent header sent with each request.
func WithUserAgent(ua string) Option {
	return func(s *Scraper) { s.userAgent = ua }
}

// WithTimeout bounds each request. It copies the configured client so a
// shared client is left untouched; apply it after WithClient.
func WithTimeout(d time.Duration) Option {
	return func(s *Scraper) {
		c := *s.client
		c.Timeout = d
		s.client = &c
	}
}

// Source returns the fetcher identifier.
func (s *Scraper) Source() string { return "yahoo" }

// Fetch retrieves the requested measures for one symbol, oldest first.
func (s *Scraper) Fetch(ctx context.Context, req quote.Request) (quote.RawSeries, error) {
	if appErr := req.Validate(); appErr != nil {
		return nil, appErr
	}

	body, err := s.download(ctx, req)
	if err != nil {
		return nil, &quote.SymbolDataError{Symbol: req.Symbol, End: req.End, Err: err}
	}

	series, err := parse(body, req.Measures)
	if err != nil {
		return nil, &quote.SymbolDataError{Symbol: req.Symbol, End: req.End, Err: err}
	}

	slog.Info("retrieved yahoo data", "symbol", req.Symbol,
		"from", req.Begin.Format(quote.DateFormat), "to", req.End.Format(quote.DateFormat),
		"resolution", req.Resolution, "count", len(series))

	return series, nil
}

func (s *Scraper) queryURL(req quote.Request) string {
	params := url.Values{}
	params.Set("s", req.Symbol)
	params.Set("a", strconv.Itoa(int(req.Begin.Month())-1))
	params.Set("b", strconv.Itoa(req.Begin.Day()))
	params.Set("c", strconv.Itoa(req.Begin.Year()))
	params.Set("d", strconv.Itoa(int(req.End.Month())-1))
	params.Set("e", strconv.Itoa(req.End.Day()))
	params.Set("f", strconv.Itoa(req.End.Year()))
	params.Set("g", req.Resolution.Code())
	params.Set("ignore", ".csv")
	return s.endpoint + "?" + params.Encode()
}

func (s *Scraper) download(ctx context.Context, req quote.Request) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, s.queryURL(req), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("User-Agent", s.userAgent)

	res, err := s.client.Do(httpReq) //nolint:gosec // URL built from internal config
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo returned HTTP %d", res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// parse decodes a response body into an ascending series holding only the
// requested measures.
func parse(body []byte, measures []quote.Measure) (quote.RawSeries, error) {
	r := csv.NewReader(bytes.NewReader(body))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) < 2 {
		return nil, errNoRows
	}
	rows := records[1:]

	series := make(quote.RawSeries, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		p, err := parseRow(rows[i], measures)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+2, err)
		}
		series = append(series, p)
	}

	if !series.Sorted() {
		sort.SliceStable(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })
		if !series.Sorted() {
			return nil, errors.New("duplicate dates in response")
		}
	}
	return series, nil
}

func parseRow(row []string, measures []quote.Measure) (quote.PricePoint, error) {
	if len(row) < numColumns {
		return quote.PricePoint{}, fmt.Errorf("expected %d columns, got %d", numColumns, len(row))
	}

	date, err := quote.ParseDate(row[colDate])
	if err != nil {
		return quote.PricePoint{}, err
	}

	fields := make(map[quote.Measure]float64, len(measures))
	for _, m := range measures {
		raw := strings.TrimSpace(row[column(m)])
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return quote.PricePoint{}, fmt.Errorf("invalid %s value %q", m, raw)
		}
		fields[m] = v
	}
	return quote.PricePoint{Date: date, Fields: fields}, nil
}

func column(m quote.Measure) int {
	switch m {
	case quote.Open:
		return colOpen
	case quote.High:
		return colHigh
	case quote.Low:
		return colLow
	case quote.Close:
		return colClose
	case quote.Volume:
		return colVolume
	}
	return colAdjClose
}
