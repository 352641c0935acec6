package arbitrage

import (
	"math"

	"github.com/dkotenko/skinarb/internal/domain"
)

// RiskScore estimates execution risk for an opportunity on a 0-100 scale.
// Longer paths raise it, profit and liquidity lower it. Feeds
// domain.TradeCycle.RiskScore for the allocator.
func RiskScore(opp domain.Opportunity) float64 {
	pathLen := len(opp.Path)

	pathRisk := math.Min(1.0, float64(pathLen-2)/5.0)
	pathRisk = math.Max(0, pathRisk)

	profitRatio := 1.0 + opp.ProfitPercent/100.0
	profitRisk := math.Max(0.0, 1.0-(profitRatio-1.0)*5.0)

	liquidityRisk := math.Max(0.0, 1.0-opp.Liquidity/10.0)

	score := pathRisk*0.4 + profitRisk*0.25 + liquidityRisk*0.35
	return math.Min(1.0, math.Max(0.0, score)) * 100.0
}
