// Package service orchestrates the analysis pipeline: scan market data,
// detect cycles, allocate budget, persist, notify, publish.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dkotenko/skinarb/internal/allocator"
	"github.com/dkotenko/skinarb/internal/arbitrage"
	"github.com/dkotenko/skinarb/internal/domain"
	"github.com/dkotenko/skinarb/internal/integrator"
	"github.com/dkotenko/skinarb/internal/notify"
	"github.com/dkotenko/skinarb/internal/report"
)

// perHopDuration is the assumed execution time of one conversion, used to
// estimate cycle duration for the allocator.
const perHopDuration = 30.0 // seconds

// Broadcaster pushes an event to connected websocket clients.
type Broadcaster interface {
	Broadcast(data []byte)
}

// Archiver stores a run report; satisfied by report.Archiver.
type Archiver interface {
	Archive(ctx context.Context, rep report.RunReport) (string, error)
}

// Config wires an AnalysisService. Store, Notifier, Hub and Archive are
// optional; a nil value disables that stage.
type Config struct {
	Integrator *integrator.Integrator
	Store      domain.OpportunityStore
	Notifier   *notify.Notifier
	Hub        Broadcaster
	Archive    Archiver
	Logger     *slog.Logger

	Games        []domain.Game
	Budget       float64
	MinProfit    float64
	MinLiquidity float64
	MaxItems     int
	Interval     time.Duration
	AllocOptions allocator.Options
}

// AnalysisService runs periodic scans per configured game.
type AnalysisService struct {
	cfg    Config
	logger *slog.Logger
}

// New creates an AnalysisService.
func New(cfg Config) *AnalysisService {
	if cfg.Budget <= 0 {
		cfg.Budget = 100
	}
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = 50
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	if len(cfg.Games) == 0 {
		cfg.Games = []domain.Game{domain.GameCS2}
	}
	return &AnalysisService{
		cfg:    cfg,
		logger: cfg.Logger.With(slog.String("component", "analysis")),
	}
}

// Run scans every configured game on the interval until ctx is cancelled.
// One pass runs immediately on startup.
func (s *AnalysisService) Run(ctx context.Context) error {
	s.logger.Info("analysis loop started",
		slog.Int("games", len(s.cfg.Games)),
		slog.Duration("interval", s.cfg.Interval),
	)
	defer s.logger.Info("analysis loop stopped")

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		s.scanAll(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *AnalysisService) scanAll(ctx context.Context) {
	g, gctx := errgroup.WithContext(ctx)
	for _, game := range s.cfg.Games {
		game := game
		g.Go(func() error {
			if _, err := s.RunOnce(gctx, game); err != nil {
				s.logger.ErrorContext(gctx, "scan failed",
					slog.String("game", string(game)),
					slog.String("error", err.Error()),
				)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// RunOnce executes one full analysis pass for a game and returns its report.
func (s *AnalysisService) RunOnce(ctx context.Context, game domain.Game) (report.RunReport, error) {
	started := time.Now().UTC()
	rep := report.RunReport{
		RunID:     uuid.NewString(),
		Game:      game,
		StartedAt: started,
	}

	exchange, err := s.cfg.Integrator.GetExchangeData(ctx, string(game), s.cfg.MaxItems)
	if err != nil {
		return rep, fmt.Errorf("service: run %s: %w", rep.RunID, err)
	}
	rep.ItemsScanned = len(exchange)

	opps := s.cfg.Integrator.FindArbitrageOpportunities(exchange, s.cfg.MinProfit, s.cfg.MinLiquidity)
	rep.Opportunities = opps

	rep.Options = s.cfg.Integrator.GetCrossPlatformArbitrage(ctx, game, false)

	cycles := CyclesFromOpportunities(opps)
	allocations, metrics := allocator.GetOptimizedAllocation(cycles, s.cfg.Budget, s.cfg.AllocOptions)
	rep.Allocations = allocations
	rep.Metrics = metrics
	rep.FinishedAt = time.Now().UTC()

	s.logger.InfoContext(ctx, "analysis pass complete",
		slog.String("game", string(game)),
		slog.Int("opportunities", len(opps)),
		slog.Int("options", len(rep.Options)),
		slog.Float64("allocated", metrics.AllocatedBudget),
		slog.Duration("took", rep.FinishedAt.Sub(started)),
	)

	s.persist(ctx, rep)
	s.publish(ctx, rep)
	return rep, nil
}

// persist writes the run's results to the optional sinks. Sink failures are
// logged, not propagated: the scan result itself is already in hand.
func (s *AnalysisService) persist(ctx context.Context, rep report.RunReport) {
	if s.cfg.Store != nil {
		for _, opp := range rep.Opportunities {
			if err := s.cfg.Store.InsertOpportunity(ctx, opp); err != nil {
				s.logger.WarnContext(ctx, "persist opportunity failed",
					slog.String("opp_id", opp.ID), slog.String("error", err.Error()))
			}
		}
		if len(rep.Options) > 0 {
			if err := s.cfg.Store.InsertOptions(ctx, rep.Options); err != nil {
				s.logger.WarnContext(ctx, "persist options failed",
					slog.String("error", err.Error()))
			}
		}
	}

	if s.cfg.Archive != nil {
		key, err := s.cfg.Archive.Archive(ctx, rep)
		if err != nil {
			s.logger.WarnContext(ctx, "archive report failed",
				slog.String("run_id", rep.RunID), slog.String("error", err.Error()))
		} else {
			s.logger.DebugContext(ctx, "report archived", slog.String("key", key))
		}
	}
}

// publish notifies operators and pushes the event to websocket clients.
func (s *AnalysisService) publish(ctx context.Context, rep report.RunReport) {
	if s.cfg.Notifier != nil {
		if err := s.cfg.Notifier.NotifyOpportunities(ctx, rep.Game, rep.Opportunities); err != nil {
			s.logger.WarnContext(ctx, "notify failed", slog.String("error", err.Error()))
		}
	}

	if s.cfg.Hub != nil && len(rep.Opportunities) > 0 {
		event := map[string]any{
			"event":         "opportunities",
			"game":          rep.Game,
			"run_id":        rep.RunID,
			"opportunities": rep.Opportunities,
			"metrics":       rep.Metrics,
		}
		data, err := json.Marshal(event)
		if err != nil {
			s.logger.WarnContext(ctx, "marshal ws event failed", slog.String("error", err.Error()))
			return
		}
		s.cfg.Hub.Broadcast(data)
	}
}

// Recent returns the latest persisted opportunities.
func (s *AnalysisService) Recent(ctx context.Context, limit int) ([]domain.Opportunity, error) {
	if s.cfg.Store == nil {
		return nil, nil
	}
	opps, err := s.cfg.Store.ListRecentOpportunities(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("service: recent opportunities: %w", err)
	}
	return opps, nil
}

// CyclesFromOpportunities converts detected opportunities into allocator
// inputs. Cost is the simulated starting budget; risk comes from the cycle
// risk heuristic; duration is estimated per hop.
func CyclesFromOpportunities(opps []domain.Opportunity) []domain.TradeCycle {
	cycles := make([]domain.TradeCycle, 0, len(opps))
	for _, opp := range opps {
		cycles = append(cycles, domain.NewTradeCycle(
			opp.ID,
			opp.Path,
			opp.ProfitPercent,
			opp.InitialBudget,
			arbitrage.RiskScore(opp),
			float64(len(opp.Hops))*perHopDuration,
		))
	}
	return cycles
}
