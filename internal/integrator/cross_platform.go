package integrator

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dkotenko/skinarb/internal/domain"
)

// GetCrossPlatformArbitrage returns buy-low/sell-high options for a game
// across the configured marketplaces. Results are cached per market for the
// configured TTL; forceUpdate bypasses the age check and recomputes. Any
// failure along the pipeline is logged and counted, and the caller sees an
// empty slice.
func (in *Integrator) GetCrossPlatformArbitrage(ctx context.Context, game domain.Game, forceUpdate bool) []domain.SkinArbitrageOption {
	key := string(game)

	if !forceUpdate {
		entry, ok, err := in.cache.Get(ctx, key)
		if err != nil {
			in.logger.Warn("opportunity cache read failed",
				slog.String("market", key), slog.String("error", err.Error()))
		} else if ok && time.Since(entry.CachedAt) < in.cacheTTL {
			return entry.Options
		}
	}

	options := in.scanCrossPlatform(ctx, game)

	if err := in.cache.Set(ctx, key, domain.CachedEntry{
		Options:  options,
		CachedAt: time.Now(),
	}); err != nil {
		in.logger.Warn("opportunity cache write failed",
			slog.String("market", key), slog.String("error", err.Error()))
	}
	return options
}

// marketListing is one venue's quote for an item title.
type marketListing struct {
	market    string
	price     float64
	liquidity float64
}

// scanCrossPlatform fetches every configured marketplace concurrently and
// pairs up per-title price discrepancies.
func (in *Integrator) scanCrossPlatform(ctx context.Context, game domain.Game) []domain.SkinArbitrageOption {
	adapters := make(map[string]MarketAdapter, len(in.secondary)+1)
	adapters[in.primaryName] = in.primary
	for name, a := range in.secondary {
		adapters[name] = a
	}

	var mu sync.Mutex
	byTitle := make(map[string][]marketListing)

	g, gctx := errgroup.WithContext(ctx)
	for name, adapter := range adapters {
		name, adapter := name, adapter
		g.Go(func() error {
			raw, err := adapter.GetMarketItems(gctx, string(game), 100, 0, "USD")
			if err != nil {
				// One venue down must not sink the scan.
				in.swallowed.Add(1)
				in.logger.Error("marketplace fetch failed",
					slog.String("market", name), slog.String("error", err.Error()))
				return nil
			}
			items := normalizeItems(raw)
			mu.Lock()
			for _, item := range items {
				byTitle[item.Title] = append(byTitle[item.Title], marketListing{
					market:    name,
					price:     item.PriceUSD,
					liquidity: item.Liquidity,
				})
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	now := time.Now().UTC()
	var options []domain.SkinArbitrageOption
	for title, listings := range byTitle {
		if len(listings) < 2 {
			continue
		}
		for _, buy := range listings {
			for _, sell := range listings {
				if buy.market == sell.market {
					continue
				}
				netSell := sell.price * (1 - in.fee)
				profit := netSell - buy.price
				if profit <= 0 {
					continue
				}
				liquidity := minFloat(buy.liquidity, sell.liquidity)
				profitPercent := profit / buy.price * 100
				options = append(options, domain.SkinArbitrageOption{
					ItemName:      title,
					Game:          game,
					BuyMarket:     buy.market,
					BuyPrice:      buy.price,
					SellMarket:    sell.market,
					SellPrice:     sell.price,
					Profit:        profit,
					ProfitPercent: profitPercent,
					Liquidity:     liquidity,
					RiskScore:     optionRisk(profitPercent, liquidity),
					DetectedAt:    now,
				})
			}
		}
	}

	sort.SliceStable(options, func(i, j int) bool {
		return options[i].ProfitPercent > options[j].ProfitPercent
	})
	return options
}

// optionRisk scores a cross-platform option: thin liquidity and
// too-good-to-be-true margins both push the score up.
func optionRisk(profitPercent, liquidity float64) float64 {
	liquidityRisk := math.Max(0, 1-liquidity/10.0)
	marginRisk := math.Min(profitPercent/50.0, 1.0)
	return math.Min(100, (liquidityRisk*0.6+marginRisk*0.4)*100)
}
