// Package server hosts the HTTP surface of hireloop: the interview websocket
// endpoint, health probes, Prometheus metrics, and optional static assets for
// the browser client.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/hireloop-ai/hireloop/internal/config"
	"github.com/hireloop-ai/hireloop/internal/health"
	"github.com/hireloop-ai/hireloop/internal/observe"
	"github.com/hireloop-ai/hireloop/internal/session"
	"github.com/hireloop-ai/hireloop/internal/store"
)

// shutdownTimeout bounds graceful HTTP shutdown once the run context is
// cancelled.
const shutdownTimeout = 15 * time.Second

// Option configures a [Server].
type Option func(*Server)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithStore sets the record store handed to each session for persistence.
func WithStore(rs store.RecordStore) Option {
	return func(s *Server) { s.recs = rs }
}

// WithMetrics sets the metrics instruments shared by all sessions.
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// Server accepts websocket connections and runs one interview session per
// connection.
type Server struct {
	cfg       *config.Config
	providers session.Providers
	recs      store.RecordStore
	metrics   *observe.Metrics
	log       *slog.Logger

	httpSrv *http.Server
}

// New creates a [Server] from cfg and the resolved providers. The providers
// are shared across sessions and must be safe for concurrent use.
func New(cfg *config.Config, providers session.Providers, opts ...Option) *Server {
	s := &Server{
		cfg:       cfg,
		providers: providers,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.handleWS)

	hh := health.New(s.healthCheckers()...)
	mux.HandleFunc("GET /healthz", hh.Healthz)
	mux.HandleFunc("GET /readyz", hh.Readyz)
	mux.Handle("GET /metrics", promhttp.Handler())

	if dir := cfg.Server.StaticDir; dir != "" {
		mux.Handle("/", http.FileServer(http.Dir(dir)))
	}

	s.httpSrv = &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// healthCheckers builds the readiness checks. Provider reachability is
// intentionally unchecked: a degraded provider falls back at call time
// instead of failing readiness.
func (s *Server) healthCheckers() []health.Checker {
	return []health.Checker{
		{
			Name: "store",
			Check: func(ctx context.Context) error {
				if s.recs == nil {
					return errors.New("record store not configured")
				}
				if p, ok := s.recs.(interface{ Ping(context.Context) error }); ok {
					return p.Ping(ctx)
				}
				return nil
			},
		},
	}
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("server listening", "addr", s.httpSrv.Addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		s.log.Info("server shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpSrv.Shutdown(sctx); err != nil {
			return fmt.Errorf("server: shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// handleWS upgrades the connection and drives one interview session until
// the client ends the call or disconnects.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// The browser client may be served from a different origin during
		// development.
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.log.Warn("websocket accept failed", "error", err)
		return
	}

	id := fmt.Sprintf("sess-%d", time.Now().UnixNano())
	log := s.log.With("session", id)
	log.Info("session connected", "remote", r.RemoteAddr)

	orch := session.New(id, newWSTransport(conn), s.providers,
		session.WithLogger(log),
		session.WithStore(s.recs),
		session.WithMetrics(s.metrics),
		session.WithProviderTimeout(s.cfg.Interview.ProviderTimeout),
	)

	ctx := r.Context()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			// Disconnects end the session silently: no review, no record.
			log.Info("session disconnected", "reason", err)
			orch.Close()
			return
		}
		if err := orch.HandleFrame(ctx, data); err != nil {
			log.Info("session finished")
			return
		}
	}
}
