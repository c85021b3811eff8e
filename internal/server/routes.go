package server

import (
	"net/http"

	"github.com/ahmethakanbesel/stockseries/internal/scraper"
)

// NewHandler creates the full HTTP handler with routes and middleware.
// Exported for use in tests (e.g., httptest.NewServer).
func NewHandler(registry *scraper.Registry, defaultSource string) http.Handler {
	return newMux(registry, defaultSource)
}

func newMux(registry *scraper.Registry, defaultSource string) http.Handler {
	h := &handler{
		registry:      registry,
		defaultSource: defaultSource,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.health)
	mux.HandleFunc("GET /api/v1/sources", h.listSources)
	mux.HandleFunc("GET /api/v1/reports", h.listReports)
	mux.HandleFunc("GET /api/v1/reports/{name}", h.runReport)
	mux.HandleFunc("GET /api/v1/series/{symbols}", h.getSeries)

	// Apply middleware stack: recovery -> requestID -> logging
	var handler http.Handler = mux
	handler = logging(handler)
	handler = requestID(handler)
	handler = recovery(handler)

	return handler
}
