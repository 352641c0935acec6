package arbitrage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dkotenko/skinarb/internal/domain"
)

func sampleResults() []domain.ArbitrageResult {
	return []domain.ArbitrageResult{
		{Cycle: []string{"a", "b", "c"}, ProfitPercent: 5.0, Liquidity: 1000, Confidence: 0.9},
		{Cycle: []string{"d", "e", "f"}, ProfitPercent: 1.0, Liquidity: 50, Confidence: 0.4},
		{Cycle: []string{"g", "h", "i"}, ProfitPercent: 0.3, Liquidity: 5000, Confidence: 0.8},
	}
}

func TestFilterKeepsOrder(t *testing.T) {
	kept := Filter(sampleResults(), 0.5, 10, 0.3)

	assert.Len(t, kept, 2)
	assert.Equal(t, []string{"a", "b", "c"}, kept[0].Cycle)
	assert.Equal(t, []string{"d", "e", "f"}, kept[1].Cycle)
}

func TestFilterClampsNegativeThresholds(t *testing.T) {
	kept := Filter(sampleResults(), -1, -1, -1)
	assert.Len(t, kept, 3)
}

func TestFilterClampsConfidenceAboveOne(t *testing.T) {
	results := []domain.ArbitrageResult{
		{Cycle: []string{"a", "b", "c"}, ProfitPercent: 5, Liquidity: 100, Confidence: 1.0},
	}
	kept := Filter(results, 0, 0, 7)
	assert.Len(t, kept, 1)
}

func TestFilterMonotone(t *testing.T) {
	loose := Filter(sampleResults(), 0.1, 10, 0.1)
	tight := Filter(sampleResults(), 2.0, 100, 0.5)

	assert.LessOrEqual(t, len(tight), len(loose))

	// Re-filtering with the same thresholds changes nothing.
	again := Filter(loose, 0.1, 10, 0.1)
	assert.Equal(t, loose, again)
}

func TestFilterEmptyInput(t *testing.T) {
	assert.Empty(t, Filter(nil, 1, 1, 0.5))
}
