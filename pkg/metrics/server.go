package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 5 * time.Second

// Server serves the /metrics endpoint of a registry.
type Server struct {
	server *http.Server
	log    zerolog.Logger
}

func NewServer(log zerolog.Logger, addr string, gatherer prometheus.Gatherer) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return &Server{
		server: &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: shutdownTimeout},
		log:    log,
	}
}

// Run serves until ctx is done, then shuts the server down.
func (m *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		m.log.Info().Str("address", m.server.Addr).Str("endpoint", "/metrics").Msg("metrics server started")
		errCh <- m.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := m.server.Shutdown(shutdownCtx); err != nil {
		m.log.Err(err).Msg("error shutting down metrics server")
		return err
	}
	m.log.Debug().Msg("metrics server shutdown")
	return nil
}
