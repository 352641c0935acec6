package allocator

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkotenko/skinarb/internal/domain"
)

func sampleCycles() []domain.TradeCycle {
	return []domain.TradeCycle{
		domain.NewTradeCycle("c1", nil, 2.5, 100, 20, 60),
		domain.NewTradeCycle("c2", nil, 5.0, 200, 50, 120),
		domain.NewTradeCycle("c3", nil, 8.0, 300, 80, 180),
	}
}

func TestOptimizeTradesBudgetLaw(t *testing.T) {
	allocations, metrics := OptimizeTrades(sampleCycles(), 1000, Options{})

	var total float64
	for _, amount := range allocations {
		total += amount
	}
	assert.LessOrEqual(t, total, 1000.0+1e-2)
	assert.InDelta(t, total, metrics.AllocatedBudget, 1e-9)
}

func TestOptimizeTradesBoxConstraints(t *testing.T) {
	cycles := sampleCycles()
	allocations, _ := OptimizeTrades(cycles, 1000, Options{MaxAllocationPerCyc: 150})

	byID := map[string]domain.TradeCycle{}
	for _, c := range cycles {
		byID[c.CycleID] = c
	}
	for id, amount := range allocations {
		assert.LessOrEqual(t, amount, 150.0)
		assert.LessOrEqual(t, amount, byID[id].Cost)
		assert.Greater(t, amount, 0.0)
	}
}

func TestOptimizeTradesSemiContinuous(t *testing.T) {
	cycles := []domain.TradeCycle{
		domain.NewTradeCycle("big", nil, 5.0, 95, 10, 60),
		domain.NewTradeCycle("small", nil, 4.0, 100, 10, 60),
	}
	// After funding "big" with 95, only 5 remain: below the 10 ticket, so
	// "small" gets nothing rather than a rounded-up 10.
	allocations, _ := OptimizeTrades(cycles, 100, Options{MinAllocation: 10})

	assert.InDelta(t, 95.0, allocations["big"], 1e-9)
	_, funded := allocations["small"]
	assert.False(t, funded)
}

func TestOptimizeTradesRiskCeiling(t *testing.T) {
	cycles := []domain.TradeCycle{
		domain.NewTradeCycle("risky", nil, 10.0, 1000, 80, 60),
	}
	allocations, _ := OptimizeTrades(cycles, 1000, Options{MaxRisk: 40})

	// Full funding would put portfolio risk at 80; the partial amount fills
	// the 40 headroom exactly: 40 * 1000 / 80 = 500.
	assert.InDelta(t, 500.0, allocations["risky"], 1e-9)
}

func TestOptimizeTradesRanksByProfitRiskRatio(t *testing.T) {
	cycles := []domain.TradeCycle{
		domain.NewTradeCycle("worse", nil, 4.0, 100, 80, 60),  // ratio 0.05
		domain.NewTradeCycle("better", nil, 4.0, 100, 10, 60), // ratio 0.4
	}
	allocations, _ := OptimizeTrades(cycles, 100, Options{})

	assert.InDelta(t, 100.0, allocations["better"], 1e-9)
	_, funded := allocations["worse"]
	assert.False(t, funded)
}

func TestOptimizeTradesDegenerateInput(t *testing.T) {
	allocations, metrics := OptimizeTrades(nil, 1000, Options{})
	assert.Empty(t, allocations)
	assert.Zero(t, metrics.TotalProfit)

	allocations, metrics = OptimizeTrades(sampleCycles(), 0, Options{})
	assert.Empty(t, allocations)
	assert.Zero(t, metrics.AllocatedBudget)
}

func TestCalculateExpectedReturns(t *testing.T) {
	cycles := sampleCycles()
	allocations := map[string]float64{"c1": 100, "c2": 200}

	m := CalculateExpectedReturns(allocations, cycles)

	// c1: 100*2.5% = 2.5, c2: 200*5% = 10.
	assert.InDelta(t, 12.5, m.TotalProfit, 1e-9)
	assert.InDelta(t, 300.0, m.AllocatedBudget, 1e-9)
	assert.InDelta(t, 12.5/300*100, m.ROI, 1e-9)
	// Risk-adjusted: 2.5*0.8 + 10*0.5 = 7.
	assert.InDelta(t, 7.0/300*100, m.RiskAdjustedReturn, 1e-9)
}

func TestCalculateExpectedReturnsZeroRiskNoDivision(t *testing.T) {
	cycles := []domain.TradeCycle{domain.NewTradeCycle("safe", nil, 5.0, 100, 0, 60)}
	m := CalculateExpectedReturns(map[string]float64{"safe": 100}, cycles)

	assert.InDelta(t, 5.0, m.TotalProfit, 1e-9)
	assert.InDelta(t, m.ROI, m.RiskAdjustedReturn, 1e-9)
}

func TestCalculateExpectedReturnsEmpty(t *testing.T) {
	m := CalculateExpectedReturns(nil, sampleCycles())
	assert.Zero(t, m.ROI)
	assert.Zero(t, m.AllocatedBudget)
}

func TestGetOptimizedAllocationStampsExecutionTime(t *testing.T) {
	_, metrics := GetOptimizedAllocation(sampleCycles(), 1000, Options{})
	assert.Greater(t, metrics.ExecutionTime, time.Duration(0))
}

func TestGetOptimizedAllocationScales(t *testing.T) {
	cycles := make([]domain.TradeCycle, 0, 100)
	for i := 0; i < 100; i++ {
		cycles = append(cycles, domain.NewTradeCycle(
			fmt.Sprintf("c%d", i), nil,
			1.0+float64(i%10), 50+float64(i), float64(i%90)+5, 60,
		))
	}

	start := time.Now()
	allocations, metrics := GetOptimizedAllocation(cycles, 5000, Options{MinAllocation: 1})
	elapsed := time.Since(start)

	assert.NotEmpty(t, allocations)
	assert.LessOrEqual(t, metrics.AllocatedBudget, 5000.0+1e-2)
	assert.Less(t, elapsed, time.Second)
}

func TestOptimizePortfolioProfiles(t *testing.T) {
	portfolios := OptimizePortfolio(sampleCycles(), 1000, nil)

	require.Len(t, portfolios, 3)
	require.Contains(t, portfolios, "low_risk")
	require.Contains(t, portfolios, "medium_risk")
	require.Contains(t, portfolios, "high_risk")

	assert.InDelta(t, 30.0, portfolios["low_risk"].RiskTarget, 1e-9)
	assert.InDelta(t, 80.0, portfolios["high_risk"].RiskTarget, 1e-9)

	// A looser risk ceiling never allocates less.
	assert.GreaterOrEqual(t,
		portfolios["high_risk"].Metrics.AllocatedBudget,
		portfolios["low_risk"].Metrics.AllocatedBudget)
}

func TestOptimizePortfolioCustomTargets(t *testing.T) {
	portfolios := OptimizePortfolio(sampleCycles(), 1000, []float64{25, 75})

	require.Len(t, portfolios, 2)
	assert.Contains(t, portfolios, "risk_level_1")
	assert.Contains(t, portfolios, "risk_level_2")
}

func TestOptimizePortfolioInvalidInput(t *testing.T) {
	assert.Empty(t, OptimizePortfolio(nil, 1000, nil))
	assert.Empty(t, OptimizePortfolio(sampleCycles(), -1, nil))
}
