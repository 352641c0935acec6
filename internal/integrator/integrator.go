// Package integrator bridges marketplace adapters and the arbitrage engine:
// it normalizes raw item records, derives the item-to-item exchange graph,
// and caches cross-platform scan results per market.
package integrator

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dkotenko/skinarb/internal/arbitrage"
	"github.com/dkotenko/skinarb/internal/domain"
	"github.com/dkotenko/skinarb/internal/graph"
	"github.com/dkotenko/skinarb/internal/platform/dmarket"
)

// defaultFee is the marketplace commission assumed for item-to-item
// conversions when the venue does not quote one.
const defaultFee = 0.05

// MarketAdapter fetches raw items from one marketplace.
type MarketAdapter interface {
	GetMarketItems(ctx context.Context, gameID string, limit, offset int, currency string) ([]dmarket.RawItem, error)
}

// Config wires an Integrator.
type Config struct {
	Primary    MarketAdapter
	Secondary  map[string]MarketAdapter // marketplace name -> adapter
	Cache      domain.OpportunityCache
	Finder     *arbitrage.Finder
	Logger     *slog.Logger
	Fee        float64       // 0 selects defaultFee
	CacheTTL   time.Duration // 0 selects 5 minutes
	PrimaryKey string        // marketplace name of the primary adapter
}

// Integrator is the market data layer of the engine.
type Integrator struct {
	primary     MarketAdapter
	primaryName string
	secondary   map[string]MarketAdapter
	cache       domain.OpportunityCache
	finder      *arbitrage.Finder
	logger      *slog.Logger
	fee         float64
	cacheTTL    time.Duration

	swallowed atomic.Int64
}

// New creates an Integrator.
func New(cfg Config) *Integrator {
	if cfg.Fee <= 0 {
		cfg.Fee = defaultFee
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.PrimaryKey == "" {
		cfg.PrimaryKey = "DMarket"
	}
	return &Integrator{
		primary:     cfg.Primary,
		primaryName: cfg.PrimaryKey,
		secondary:   cfg.Secondary,
		cache:       cfg.Cache,
		finder:      cfg.Finder,
		logger:      cfg.Logger.With(slog.String("component", "integrator")),
		fee:         cfg.Fee,
		cacheTTL:    cfg.CacheTTL,
	}
}

// SwallowedFailures reports how many pipeline failures were converted to
// empty results since startup.
func (in *Integrator) SwallowedFailures() int64 {
	return in.swallowed.Load()
}

// GetMarketItems fetches up to limit items for a game and normalizes them.
// Items without a positive USD price are dropped.
func (in *Integrator) GetMarketItems(ctx context.Context, gameID string, limit int) ([]domain.NormalizedItem, error) {
	raw, err := in.primary.GetMarketItems(ctx, gameID, limit, 0, "USD")
	if err != nil {
		return nil, fmt.Errorf("integrator: get market items: %w", err)
	}
	return normalizeItems(raw), nil
}

// normalizeItems converts raw records of either API shape into the canonical
// item type, dropping records without a usable USD price.
func normalizeItems(raw []dmarket.RawItem) []domain.NormalizedItem {
	items := make([]domain.NormalizedItem, 0, len(raw))
	for _, r := range raw {
		price := r.PriceUSD()
		if price <= 0 || r.Title == "" {
			continue
		}
		items = append(items, domain.NormalizedItem{
			ItemID:    r.ID(),
			Title:     r.Title,
			PriceUSD:  price,
			Liquidity: r.LiquidityScore(),
			Category:  r.Category,
			Rarity:    r.Rarity,
		})
	}
	return items
}

// GetExchangeData builds the pairwise conversion adjacency over the first
// maxItems valid items of a game. For every ordered pair (A, B):
// rate = priceA*(1-fee)/priceB, liquidity = min(liqA, liqB).
func (in *Integrator) GetExchangeData(ctx context.Context, gameID string, maxItems int) (graph.ExchangeData, error) {
	items, err := in.GetMarketItems(ctx, gameID, maxItems)
	if err != nil {
		return nil, fmt.Errorf("integrator: get exchange data: %w", err)
	}
	if len(items) > maxItems {
		items = items[:maxItems]
	}
	return BuildExchangeData(items, in.fee), nil
}

// BuildExchangeData derives the conversion adjacency from normalized items.
// Every valid item becomes a node even when it has no counterpart to quote
// against.
func BuildExchangeData(items []domain.NormalizedItem, fee float64) graph.ExchangeData {
	exchange := make(graph.ExchangeData, len(items))
	for _, item := range items {
		exchange[item.Title] = make(map[string]graph.Conversion, len(items)-1)
	}
	for _, from := range items {
		for _, to := range items {
			if from.Title == to.Title {
				continue
			}
			exchange[from.Title][to.Title] = graph.Conversion{
				Rate:      from.PriceUSD * (1 - fee) / to.PriceUSD,
				Liquidity: minFloat(from.Liquidity, to.Liquidity),
				Fee:       fee,
			}
		}
	}
	return exchange
}

// FindArbitrageOpportunities searches the exchange data for profitable
// cycles. The contract with callers is "empty means nothing actionable": any
// internal failure is logged, counted, and converted to an empty slice.
func (in *Integrator) FindArbitrageOpportunities(exchange graph.ExchangeData, minProfitPercent, minLiquidity float64) (opps []domain.Opportunity) {
	defer func() {
		if r := recover(); r != nil {
			in.swallowed.Add(1)
			in.logger.Error("arbitrage search failed",
				slog.Any("panic", r),
				slog.Int("nodes", len(exchange)),
			)
			opps = []domain.Opportunity{}
		}
	}()

	if len(exchange) == 0 {
		return []domain.Opportunity{}
	}
	return in.finder.FindAdvanced(exchange, 100.0, minProfitPercent, minLiquidity)
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
