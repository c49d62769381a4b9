// Package server serves the housing dashboard over HTTP.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/housedash/internal/catalog"
	"github.com/KaramelBytes/housedash/internal/logger"
	"github.com/KaramelBytes/housedash/internal/metrics"
	"github.com/KaramelBytes/housedash/internal/query"
	"github.com/KaramelBytes/housedash/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// Config holds the server settings.
type Config struct {
	Addr            string
	ChartWidth      int
	ChartHeight     int
	HistogramBins   int
	Defaults        query.Selection
	SessionTTL      time.Duration
	SweepInterval   time.Duration
	MaxSessions     int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DefaultConfig mirrors the configuration defaults.
func DefaultConfig() Config {
	return Config{
		Addr:            "127.0.0.1:8050",
		ChartWidth:      960,
		ChartHeight:     540,
		HistogramBins:   query.DefaultBins,
		Defaults:        query.DefaultSelection(),
		SessionTTL:      time.Hour,
		SweepInterval:   time.Minute,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Server is the dashboard. It is read-only over the catalog; the only mutable
// state is the session store.
type Server struct {
	cfg      Config
	cat      *catalog.Catalog
	defaults query.Selection
	sessions *session.Store
	metrics  *metrics.Metrics
	page     *template.Template
	router   chi.Router
}

// New builds a server over cat. A nil m gets a fresh metrics registry.
func New(cat *catalog.Catalog, cfg Config, m *metrics.Metrics) (*Server, error) {
	if cat == nil {
		return nil, errors.New("server: nil catalog")
	}
	def := DefaultConfig()
	if cfg.ChartWidth <= 0 {
		cfg.ChartWidth = def.ChartWidth
	}
	if cfg.ChartHeight <= 0 {
		cfg.ChartHeight = def.ChartHeight
	}
	if cfg.HistogramBins <= 0 {
		cfg.HistogramBins = def.HistogramBins
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = def.SweepInterval
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = def.ShutdownTimeout
	}
	if m == nil {
		m = metrics.New()
	}
	page, err := template.ParseFS(templateFS, "templates/dashboard.html")
	if err != nil {
		return nil, fmt.Errorf("parse dashboard template: %w", err)
	}

	f := cat.Features()
	ds := cat.Dataset()
	m.ObserveDataset(ds.Rows(), len(f.Categorical), len(f.Numerical), len(ds.Dropped()))

	s := &Server{
		cfg:      cfg,
		cat:      cat,
		defaults: query.Resolve(cat, cfg.Defaults.Merge(def.Defaults)),
		sessions: session.NewStore(cfg.SessionTTL, cfg.MaxSessions),
		metrics:  m,
		page:     page,
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.accessLog)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleDashboard)
	r.Get("/charts/{name}", s.handleChartImage)
	r.Route("/api", func(r chi.Router) {
		r.Get("/catalog", s.handleCatalog)
		r.Get("/charts/{id}", s.handleChartSpec)
	})
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Defaults returns the dashboard's starting selection after adapting the
// configured defaults to the dataset.
func (s *Server) Defaults() query.Selection { return s.defaults }

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
// The session sweeper runs alongside for the lifetime of the server.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      s.cfg.WriteTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	log := logger.Get()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("dashboard listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return s.sessions.Run(gctx, s.cfg.SweepInterval, func(removed int) {
			s.metrics.SessionsSwept.Add(float64(removed))
			s.metrics.Sessions.Set(float64(s.sessions.Len()))
			if removed > 0 {
				log.Debug("expired sessions swept", zap.Int("removed", removed))
			}
		})
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down dashboard")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}
