package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"sellout-dashboard/internal/auth"
	"sellout-dashboard/internal/charts"
	"sellout-dashboard/internal/config"
	"sellout-dashboard/internal/entry"
	"sellout-dashboard/internal/handlers"
	"sellout-dashboard/internal/metrics"
	"sellout-dashboard/internal/middleware"
	"sellout-dashboard/internal/observability"
	"sellout-dashboard/internal/server"
	"sellout-dashboard/internal/services"
	"sellout-dashboard/internal/upstream"
)

const (
	version        = "1.0.0"
	fixtureTimeout = 30 * time.Second
	limiterIdle    = 10 * time.Minute
)

// app is the wired dashboard: the HTTP handler plus the in-memory state
// the background sweeper maintains.
type app struct {
	handler  http.Handler
	sessions *auth.Store
	limiter  *middleware.RateLimiter
	charts   *charts.Cache
	fixture  *services.FixtureSource
	registry *prometheus.Registry
	logger   *slog.Logger
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{
		sessions: auth.NewStore(cfg.Session.TTL),
		limiter:  middleware.NewRateLimiter(cfg.Security),
		charts:   charts.NewCache(cfg.Charts.CacheTTL),
		registry: metrics.NewRegistry(),
		logger:   logger,
	}

	client := upstream.NewClient(cfg.Upstream, metrics.NewUpstreamMetrics(a.registry), logger)

	var source services.Source = client
	if cfg.Fixture.SelloutCSV != "" {
		a.fixture = services.NewFixtureSource(client,
			services.WithCacheDir(cfg.Fixture.CacheDir),
			services.WithFixtureLogger(logger),
		)

		loadCtx, cancel := context.WithTimeout(ctx, fixtureTimeout)
		defer cancel()
		start := time.Now()
		if err := a.fixture.LoadFromCSV(loadCtx, cfg.Fixture.SelloutCSV); err != nil {
			return nil, fmt.Errorf("load sellout fixture: %w", err)
		}
		logger.Info("sellout fixture loaded", "path", cfg.Fixture.SelloutCSV, "duration", time.Since(start))
		source = a.fixture
	}

	metrics.RegisterGauge(a.registry, "dashboard_active_sessions", "Live dashboard sessions.",
		func() float64 { return float64(a.sessions.Len()) })
	metrics.RegisterGauge(a.registry, "dashboard_chart_cache_entries", "Rendered charts held in memory.",
		func() float64 { return float64(a.charts.Len()) })

	authenticator := auth.NewAuthenticator(client, a.sessions, logger)
	dashboard := services.NewDashboard(source, services.PageSizes{
		Training: cfg.Upstream.TrainingPageSize,
		Coloris:  cfg.Upstream.ColorisPageSize,
		Sellout:  cfg.Upstream.SelloutPageSize,
	}, logger)
	entries := entry.NewService(client, entry.NewBuilder(nil), logger)
	renderer := charts.NewRenderer(
		charts.WithTheme(cfg.Charts.Theme),
		charts.WithAssetsHost(cfg.Charts.AssetsHost),
		charts.WithCache(a.charts),
	)

	srv := server.NewServer(server.Handlers{
		Pages:  handlers.NewPageHandlers(authenticator, cfg.Session, logger),
		SSE:    handlers.NewSSEHandlers(dashboard, entries, authenticator, logger),
		Files:  handlers.NewFileHandlers(entries, logger),
		Charts: handlers.NewChartHandlers(renderer, logger),
		API:    handlers.NewAPIHandlers(dashboard, a.stats, logger),
	}, authenticator, cfg.Session.CookieName, metrics.Handler(a.registry), logger)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(logger),
		middleware.SecurityHeaders(renderer.AssetsHost()),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(a.limiter, logger),
	)
	a.handler = middlewareChain(srv)

	return a, nil
}

func (a *app) stats() map[string]any {
	stats := map[string]any{
		"sessions":      a.sessions.Len(),
		"chart_entries": a.charts.Len(),
	}
	if a.fixture != nil {
		stats["fixture"] = a.fixture.Stats()
	}
	return stats
}

// sweep drops expired sessions, idle rate limiters and stale chart pages
// on every tick until ctx is done.
func (a *app) sweep(ctx context.Context, interval time.Duration) {
	a.sessions.Run(ctx, interval, func(removed int) {
		limiters := a.limiter.Sweep(limiterIdle)
		pages := a.charts.Purge()
		if removed+limiters+pages > 0 {
			a.logger.Debug("swept idle state",
				"sessions", removed,
				"limiters", limiters,
				"charts", pages,
			)
		}
	})
}

func main() {
	cfg, err := config.Load("")
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", version,
		"upstream", cfg.Upstream.BaseURL,
		"fixture", cfg.Fixture.SelloutCSV,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}

	go a.sweep(ctx, cfg.Session.SweepInterval)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      a.handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg.Server)
	gracefulServer.RegisterShutdownHook("sessions", func(ctx context.Context) error {
		logger.Info("dropping in-memory sessions", "count", a.sessions.Len())
		return nil
	})

	if err := gracefulServer.ListenAndServe(ctx); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
