package series

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmethakanbesel/stockseries/internal/apperror"
	"github.com/ahmethakanbesel/stockseries/internal/quote"
	"github.com/ahmethakanbesel/stockseries/internal/report"
	"github.com/ahmethakanbesel/stockseries/internal/scraper"
)

// Service fetches per-symbol history and folds it into tables. Symbols are
// fetched one at a time in the order given.
type Service struct {
	fetcher  scraper.Fetcher
	progress func(done, total int)
	now      func() time.Time
}

func NewService(fetcher scraper.Fetcher, opts ...Option) *Service {
	s := &Service{
		fetcher: fetcher,
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

type Option func(*Service)

// WithProgress registers a callback invoked after each symbol is merged.
func WithProgress(fn func(done, total int)) Option {
	return func(s *Service) { s.progress = fn }
}

// WithClock overrides the clock used to default report end dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// MultiQuery asks for one measure across several symbols.
type MultiQuery struct {
	Symbols    []string
	Begin      time.Time
	End        time.Time
	Resolution quote.Resolution
	Measure    quote.Measure
}

// Single returns one symbol's history with a column per requested measure.
func (s *Service) Single(ctx context.Context, req quote.Request) (Table, error) {
	hist, err := s.fetch(ctx, req)
	if err != nil {
		return Table{}, err
	}
	if s.progress != nil {
		s.progress(1, 1)
	}
	return FromSeries(hist, req.Measures), nil
}

// Multi returns one column per symbol, keyed by the upper-cased ticker. The
// first symbol that cannot be fetched fails the whole query.
func (s *Service) Multi(ctx context.Context, q MultiQuery) (Table, error) {
	if len(q.Symbols) == 0 {
		return Table{}, apperror.New(apperror.BadRequest, "at least one symbol is required")
	}
	measure := q.Measure
	if measure == "" {
		measure = quote.Close
	}

	keys := make([]string, len(q.Symbols))
	seen := make(map[string]bool, len(q.Symbols))
	for i, sym := range q.Symbols {
		keys[i] = strings.ToUpper(sym)
		if seen[keys[i]] {
			return Table{}, apperror.New(apperror.BadRequest, fmt.Sprintf("duplicate symbol %s", keys[i]))
		}
		seen[keys[i]] = true
	}

	var table Table
	table.Reset(keys)

	for i, sym := range q.Symbols {
		hist, err := s.fetch(ctx, quote.Request{
			Symbol:     sym,
			Begin:      q.Begin,
			End:        q.End,
			Resolution: q.Resolution,
			Measures:   []quote.Measure{measure},
		})
		if err != nil {
			return Table{}, err
		}
		table = Merge(table, hist, measure, keys[i])
		if s.progress != nil {
			s.progress(i+1, len(q.Symbols))
		}
	}

	slog.Info("merged series", "symbols", len(q.Symbols), "measure", measure, "rows", len(table.Rows))
	return table, nil
}

// Run executes a report preset against the given criteria.
func (s *Service) Run(ctx context.Context, p report.Preset, c report.Criteria) (Table, error) {
	c = c.WithDefaults(p)
	begin, end := c.Range(s.now())

	if p.Multi {
		return s.Multi(ctx, MultiQuery{
			Symbols:    SplitSymbols(c.Symbols),
			Begin:      begin,
			End:        end,
			Resolution: c.Resolution,
			Measure:    p.Measures[0],
		})
	}

	symbols := SplitSymbols(c.Symbols)
	if len(symbols) != 1 {
		return Table{}, apperror.New(apperror.BadRequest, fmt.Sprintf("report %s takes exactly one symbol", p.Name))
	}
	return s.Single(ctx, quote.Request{
		Symbol:     symbols[0],
		Begin:      begin,
		End:        end,
		Resolution: c.Resolution,
		Measures:   p.Measures,
	})
}

func (s *Service) fetch(ctx context.Context, req quote.Request) (quote.RawSeries, error) {
	if appErr := req.Validate(); appErr != nil {
		return nil, appErr
	}
	hist, err := s.fetcher.Fetch(ctx, req)
	if err != nil {
		slog.Error("fetch failed", "source", s.fetcher.Source(), "symbol", req.Symbol, "error", err)
		return nil, err
	}
	if !hist.Sorted() {
		return nil, fmt.Errorf("%s returned an unordered series for %s", s.fetcher.Source(), req.Symbol)
	}
	return hist, nil
}

// SplitSymbols splits a comma-separated ticker list, trimming blanks and
// dropping repeats of the same ticker.
func SplitSymbols(s string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(s, ",") {
		sym := strings.TrimSpace(part)
		if sym == "" || seen[strings.ToUpper(sym)] {
			continue
		}
		seen[strings.ToUpper(sym)] = true
		out = append(out, sym)
	}
	return out
}
