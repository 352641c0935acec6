package arbitrage

import "github.com/dkotenko/skinarb/internal/domain"

// Filter keeps the results meeting every threshold, preserving input order.
// Negative thresholds are clamped to zero; the confidence threshold is also
// capped at 1.
func Filter(results []domain.ArbitrageResult, minProfitPercent, minLiquidity, minConfidence float64) []domain.ArbitrageResult {
	if minProfitPercent < 0 {
		minProfitPercent = 0
	}
	if minLiquidity < 0 {
		minLiquidity = 0
	}
	if minConfidence < 0 {
		minConfidence = 0
	}
	if minConfidence > 1 {
		minConfidence = 1
	}

	kept := make([]domain.ArbitrageResult, 0, len(results))
	for _, r := range results {
		if r.ProfitPercent >= minProfitPercent &&
			r.Liquidity >= minLiquidity &&
			r.Confidence >= minConfidence {
			kept = append(kept, r)
		}
	}
	return kept
}
