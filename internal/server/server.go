package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/ahmethakanbesel/stockseries/internal/scraper"
)

// writeTimeout covers a multi-symbol request, which makes one provider round
// trip per symbol in sequence.
const (
	readTimeout  = 15 * time.Second
	writeTimeout = 2 * time.Minute
	idleTimeout  = 2 * time.Minute
)

type Server struct {
	srv    *http.Server
	source string
}

// New creates a server that answers series and report queries from the
// fetchers in registry, using defaultSource when a request names none. Every
// request context derives from baseCtx, so cancelling it aborts in-flight
// provider calls.
func New(baseCtx context.Context, port string, registry *scraper.Registry, defaultSource string) *Server {
	return &Server{
		srv: &http.Server{
			Addr:         net.JoinHostPort("", port),
			Handler:      newMux(registry, defaultSource),
			BaseContext:  func(net.Listener) context.Context { return baseCtx },
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			IdleTimeout:  idleTimeout,
		},
		source: defaultSource,
	}
}

func (s *Server) Start() error {
	slog.Info("listening", "addr", s.srv.Addr, "source", s.source)
	return s.srv.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight requests until
// ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("draining connections", "addr", s.srv.Addr)
	return s.srv.Shutdown(ctx)
}
