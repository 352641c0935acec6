// Package allocator distributes a fixed budget across trade cycles with a
// greedy optimizer ranked by profit/risk ratio, under box, ticket-size and
// portfolio-risk constraints.
package allocator

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/dkotenko/skinarb/internal/domain"
)

// Options are the allocation constraints. Zero values mean "unconstrained"
// except MaxRisk, whose zero value is treated as the 100 ceiling.
type Options struct {
	MaxRisk             float64
	MinAllocation       float64
	MaxAllocationPerCyc float64
}

func (o Options) withDefaults() Options {
	if o.MaxRisk <= 0 {
		o.MaxRisk = 100
	}
	if o.MinAllocation < 0 {
		o.MinAllocation = 0
	}
	if o.MaxAllocationPerCyc <= 0 {
		o.MaxAllocationPerCyc = math.Inf(1)
	}
	return o
}

// OptimizeTrades greedily allocates totalBudget across cycles in descending
// profit/risk order. Per cycle the amount is capped at
// min(remaining, MaxAllocationPerCyc, cycle.Cost); the allocation is
// semi-continuous: a cycle either gets at least MinAllocation or nothing —
// sub-minimum amounts are skipped, never rounded up. Portfolio risk is the
// allocation-weighted average of risk scores and must stay under MaxRisk;
// when a full allocation would breach it, a partial amount fitting the
// remaining risk headroom is tried instead. Degenerate input yields empty
// allocations and zero metrics.
func OptimizeTrades(cycles []domain.TradeCycle, totalBudget float64, opts Options) (map[string]float64, domain.AllocationMetrics) {
	allocations := make(map[string]float64)
	if len(cycles) == 0 || totalBudget <= 0 {
		return allocations, domain.AllocationMetrics{}
	}
	opts = opts.withDefaults()

	ranked := append([]domain.TradeCycle(nil), cycles...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].ProfitRiskRatio() > ranked[j].ProfitRiskRatio()
	})

	remaining := totalBudget
	totalRisk := 0.0

	for _, cycle := range ranked {
		maxForCycle := math.Min(remaining, math.Min(opts.MaxAllocationPerCyc, cycle.Cost))
		if maxForCycle < opts.MinAllocation || maxForCycle <= 0 {
			continue
		}

		allocation := maxForCycle
		riskContribution := cycle.RiskScore * maxForCycle / totalBudget
		if totalRisk+riskContribution > opts.MaxRisk {
			if cycle.RiskScore <= 0 {
				continue
			}
			// Partial allocation that exactly fills the risk headroom.
			allocation = math.Min(maxForCycle, (opts.MaxRisk-totalRisk)*totalBudget/cycle.RiskScore)
			if allocation < opts.MinAllocation || allocation <= 0 {
				continue
			}
		}

		allocations[cycle.CycleID] = allocation
		remaining -= allocation
		totalRisk += cycle.RiskScore * allocation / totalBudget

		if remaining < opts.MinAllocation || remaining <= 0 {
			break
		}
	}

	return allocations, CalculateExpectedReturns(allocations, cycles)
}

// CalculateExpectedReturns derives portfolio metrics from an allocation.
// ROI and the risk-adjusted return are zero when nothing was allocated.
func CalculateExpectedReturns(allocations map[string]float64, cycles []domain.TradeCycle) domain.AllocationMetrics {
	if len(allocations) == 0 || len(cycles) == 0 {
		return domain.AllocationMetrics{}
	}

	byID := make(map[string]domain.TradeCycle, len(cycles))
	for _, c := range cycles {
		byID[c.CycleID] = c
	}

	var totalProfit, totalRiskAdjusted, allocated float64
	for cycleID, amount := range allocations {
		cycle, ok := byID[cycleID]
		if !ok {
			continue
		}
		profit := amount * cycle.ProfitPercent / 100.0
		riskAdjusted := profit
		if cycle.RiskScore > 0 {
			riskAdjusted = profit * (100.0 - cycle.RiskScore) / 100.0
		}
		totalProfit += profit
		totalRiskAdjusted += riskAdjusted
		allocated += amount
	}

	m := domain.AllocationMetrics{
		TotalProfit:     totalProfit,
		AllocatedBudget: allocated,
	}
	if allocated > 0 {
		m.ROI = totalProfit / allocated * 100.0
		m.RiskAdjustedReturn = totalRiskAdjusted / allocated * 100.0
	}
	return m
}

// GetOptimizedAllocation runs OptimizeTrades and stamps the elapsed time into
// the metrics.
func GetOptimizedAllocation(cycles []domain.TradeCycle, totalBudget float64, opts Options) (map[string]float64, domain.AllocationMetrics) {
	start := time.Now()
	allocations, metrics := OptimizeTrades(cycles, totalBudget, opts)
	metrics.ExecutionTime = time.Since(start)
	return allocations, metrics
}

// Portfolio is one risk-profiled allocation produced by OptimizePortfolio.
type Portfolio struct {
	Allocations map[string]float64       `json:"allocations"`
	Metrics     domain.AllocationMetrics `json:"metrics"`
	RiskTarget  float64                  `json:"risk_target"`
}

// OptimizePortfolio builds one allocation per risk target (defaults 30, 50,
// 80), keyed "low_risk"/"medium_risk"/"high_risk" when exactly three targets
// are given, "risk_level_N" otherwise. Invalid input yields an empty map.
func OptimizePortfolio(cycles []domain.TradeCycle, totalBudget float64, riskTargets []float64) map[string]Portfolio {
	if len(cycles) == 0 || totalBudget <= 0 {
		return map[string]Portfolio{}
	}
	if len(riskTargets) == 0 {
		riskTargets = []float64{30, 50, 80}
	}
	targets := append([]float64(nil), riskTargets...)
	sort.Float64s(targets)

	names := []string{"low_risk", "medium_risk", "high_risk"}

	portfolios := make(map[string]Portfolio, len(targets))
	for i, target := range targets {
		name := portfolioName(names, i, len(targets))
		allocations, metrics := GetOptimizedAllocation(cycles, totalBudget, Options{
			MaxRisk:       target,
			MinAllocation: 0.1,
		})
		portfolios[name] = Portfolio{
			Allocations: allocations,
			Metrics:     metrics,
			RiskTarget:  target,
		}
	}
	return portfolios
}

func portfolioName(names []string, i, total int) string {
	if total == len(names) {
		return names[i]
	}
	return fmt.Sprintf("risk_level_%d", i+1)
}
