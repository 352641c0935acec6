// Package app provides top-level lifecycle management for the arbitrage
// engine. It wires dependencies and starts the goroutines the configured
// operating mode needs.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dkotenko/skinarb/internal/allocator"
	"github.com/dkotenko/skinarb/internal/config"
	"github.com/dkotenko/skinarb/internal/domain"
	"github.com/dkotenko/skinarb/internal/server"
	"github.com/dkotenko/skinarb/internal/server/handler"
	"github.com/dkotenko/skinarb/internal/server/ws"
	"github.com/dkotenko/skinarb/internal/service"
)

// shutdownGrace is how long in-flight HTTP requests get to finish.
const shutdownGrace = 10 * time.Second

// App is the root application object. It owns the configuration, logger, and
// cleanup functions called in reverse order on shutdown.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []func()
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run wires dependencies, starts the configured mode, and blocks until the
// context is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting application",
		slog.String("mode", a.cfg.Mode),
		slog.String("log_level", a.cfg.LogLevel),
	)

	deps, cleanup, err := Wire(ctx, a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)

	switch strings.ToLower(a.cfg.Mode) {
	case "analyze":
		return a.analyzeMode(ctx, deps)
	case "serve":
		return a.serveMode(ctx, deps)
	case "full":
		return a.fullMode(ctx, deps)
	default:
		return fmt.Errorf("app: unsupported mode %q", a.cfg.Mode)
	}
}

// Close tears down all resources in reverse registration order. Safe to call
// multiple times.
func (a *App) Close() {
	a.logger.Info("shutting down application")
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// analyzeMode runs the scan loop without the HTTP surface.
func (a *App) analyzeMode(ctx context.Context, deps *Dependencies) error {
	return a.newAnalysis(deps, nil).Run(ctx)
}

// serveMode runs only the HTTP + WebSocket API. The analysis service is
// still constructed (without its scan loop) so history endpoints work.
func (a *App) serveMode(ctx context.Context, deps *Dependencies) error {
	return a.runServer(ctx, deps, false)
}

// fullMode runs the scan loop and the API server together; the hub bridges
// them so scan results stream to WebSocket clients.
func (a *App) fullMode(ctx context.Context, deps *Dependencies) error {
	return a.runServer(ctx, deps, true)
}

func (a *App) runServer(ctx context.Context, deps *Dependencies, withScanLoop bool) error {
	hub := ws.NewHub(a.logger)
	svc := a.newAnalysis(deps, hub)

	srv := server.NewServer(
		server.Config{
			Port:        a.cfg.Server.Port,
			CORSOrigins: a.cfg.Server.CORSOrigins,
			APIKey:      a.cfg.Server.APIKey,
		},
		server.Handlers{
			Health:        handler.NewHealthHandler(a.logger),
			Opportunities: handler.NewOpportunityHandler(deps.Integrator, svc, a.logger),
			Allocation:    handler.NewAllocationHandler(a.logger),
		},
		hub,
		a.logger,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return hub.Run(gctx) })
	if withScanLoop {
		g.Go(func() error { return svc.Run(gctx) })
	}
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// newAnalysis builds the analysis service from config and wired deps.
func (a *App) newAnalysis(deps *Dependencies, hub service.Broadcaster) *service.AnalysisService {
	games := make([]domain.Game, 0, len(a.cfg.Markets.Games))
	for _, g := range a.cfg.Markets.Games {
		games = append(games, domain.Game(g))
	}

	cfg := service.Config{
		Integrator:   deps.Integrator,
		Store:        deps.Store,
		Notifier:     deps.Notifier,
		Archive:      deps.Archiver,
		Logger:       a.logger,
		Games:        games,
		Budget:       a.cfg.Analysis.Budget,
		MinProfit:    a.cfg.Analysis.MinProfit,
		MinLiquidity: a.cfg.Analysis.MinLiquidity,
		MaxItems:     a.cfg.Analysis.MaxItems,
		Interval:     a.cfg.Analysis.Interval.Duration,
		AllocOptions: allocator.Options{
			MaxRisk:             a.cfg.Allocator.MaxRisk,
			MinAllocation:       a.cfg.Allocator.MinAllocation,
			MaxAllocationPerCyc: a.cfg.Allocator.MaxAllocationPerCyc,
		},
	}
	if hub != nil {
		cfg.Hub = hub
	}
	return service.New(cfg)
}
