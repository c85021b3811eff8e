package scraper

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ahmethakanbesel/stockseries/internal/quote"
)

// Fetcher retrieves one symbol's history from a remote quote source. The
// returned series is oldest first with unique dates. Provider failures are
// reported as *quote.SymbolDataError.
//
//go:generate mockgen -source=scraper.go -destination=mock_fetcher.go -package=scraper Fetcher
type Fetcher interface {
	Source() string
	Fetch(ctx context.Context, req quote.Request) (quote.RawSeries, error)
}

type Registry struct {
	mu       sync.RWMutex
	fetchers map[string]Fetcher
}

func NewRegistry() *Registry {
	return &Registry{
		fetchers: make(map[string]Fetcher),
	}
}

func (r *Registry) Register(f Fetcher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetchers[f.Source()] = f
}

func (r *Registry) Get(source string) (Fetcher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.fetchers[source]
	if !ok {
		return nil, fmt.Errorf("fetcher not found for source: %s", source)
	}
	return f, nil
}

func (r *Registry) Sources() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sources := make([]string, 0, len(r.fetchers))
	for src := range r.fetchers {
		sources = append(sources, src)
	}
	sort.Strings(sources)
	return sources
}
