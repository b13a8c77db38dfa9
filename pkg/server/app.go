package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"EconDash/internal/handler/web"
	"EconDash/internal/usecase"
	pkgch "EconDash/pkg/clickhouse"
	"EconDash/pkg/config"
	xhttp "EconDash/pkg/http"
	applogger "EconDash/pkg/logger"
)

// App encapsulates the entire application lifecycle: one pipeline run
// followed by serving the dashboard until interrupted.
type App struct {
	cfg        *config.Config
	pipeline   *usecase.Pipeline
	store      *pkgch.Client
	log        *applogger.Logger
	httpServer *xhttp.Server

	onReady func(addr string)
}

// New creates a new App instance with all dependencies. store may be nil
// when no ClickHouse source is configured.
func New(cfg *config.Config, pipeline *usecase.Pipeline, store *pkgch.Client, log *applogger.Logger) *App {
	return &App{cfg: cfg, pipeline: pipeline, store: store, log: log}
}

// Run executes the pipeline and serves the result until SIGINT/SIGTERM.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext executes the pipeline and serves the result until ctx is done
// or the server fails. Any pipeline or bind error is returned before the
// dashboard is reported ready.
func (a *App) RunContext(ctx context.Context) error {
	a.log.Info("pipeline starting",
		applogger.String("profile", a.cfg.Profile),
		applogger.String("start", a.cfg.Pipeline.Start),
		applogger.Strings("sources", sourceNames(a.cfg)),
		applogger.Bool("kafka", a.cfg.Kafka.Enabled),
	)
	result, err := a.pipeline.Run(ctx)
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	opts := web.Options{
		Title:      a.cfg.Title,
		Colorscale: a.cfg.Dashboard.Colorscale,
		Precision:  a.cfg.Dashboard.Precision,
	}
	if a.store != nil {
		opts.HealthCheck = a.store.Health
	}
	handler := web.NewDashboardHandler(a.log, result, opts)

	metricsPath := ""
	if a.cfg.Metrics.Enabled {
		metricsPath = a.cfg.Metrics.Path
	}
	a.httpServer = xhttp.NewServer(a.log, handler,
		xhttp.WithHost(a.cfg.Server.Host),
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(a.cfg.Server.CORS),
		xhttp.WithMetricsPath(metricsPath),
	)
	if err := a.httpServer.Start(); err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	a.log.Info("dashboard ready", applogger.String("url", "http://"+a.httpServer.Addr()+"/"))
	if a.onReady != nil {
		a.onReady(a.httpServer.Addr())
	}

	select {
	case <-ctx.Done():
		a.log.Info("shutdown signal received")
	case err := <-a.httpServer.Err():
		return fmt.Errorf("http server: %w", err)
	}
	return a.shutdown()
}

// shutdown gracefully stops the HTTP server. Infrastructure clients are
// released by the DI cleanup.
func (a *App) shutdown() error {
	if err := a.httpServer.Stop(context.Background()); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
		return err
	}
	a.log.Info("shutdown complete")
	return nil
}

func sourceNames(cfg *config.Config) []string {
	out := make([]string, 0, len(cfg.Sources))
	for _, s := range cfg.Sources {
		out = append(out, s.Name)
	}
	return out
}
