package domain

import (
	"math"
	"time"
)

// TradeCycle is the allocator's unit of account: a profiled circular trade
// with an expected return, a reference capital size, and a risk score.
// Construct with NewTradeCycle so the clamping invariants hold; a TradeCycle
// is immutable after construction.
type TradeCycle struct {
	CycleID          string   `json:"cycle_id"`
	Items            []string `json:"items"`
	ProfitPercent    float64  `json:"profit_percent"`
	Cost             float64  `json:"cost"`
	RiskScore        float64  `json:"risk_score"`
	ExpectedDuration float64  `json:"expected_duration"` // seconds
}

// NewTradeCycle normalizes the inputs: cost and duration are clamped to be
// non-negative and the risk score is saturated into [0, 100]. Out-of-range
// values are never rejected.
func NewTradeCycle(cycleID string, items []string, profitPercent, cost, riskScore, expectedDuration float64) TradeCycle {
	return TradeCycle{
		CycleID:          cycleID,
		Items:            items,
		ProfitPercent:    profitPercent,
		Cost:             math.Max(0, cost),
		RiskScore:        math.Min(100, math.Max(0, riskScore)),
		ExpectedDuration: math.Max(0, expectedDuration),
	}
}

// ProfitAmount is the absolute profit at the profiled cost.
func (c TradeCycle) ProfitAmount() float64 {
	return c.Cost * c.ProfitPercent / 100.0
}

// RiskAdjustedProfit scales ProfitAmount down by the risk score. A
// non-positive risk score applies no penalty and never divides.
func (c TradeCycle) RiskAdjustedProfit() float64 {
	if c.RiskScore <= 0 {
		return c.ProfitAmount()
	}
	return c.ProfitAmount() * (100.0 - c.RiskScore) / 100.0
}

// ProfitRiskRatio is profit percent per unit of risk, +Inf for riskless
// cycles.
func (c TradeCycle) ProfitRiskRatio() float64 {
	if c.RiskScore <= 0 {
		return math.Inf(1)
	}
	return c.ProfitPercent / c.RiskScore
}

// AllocationMetrics summarizes an allocation plan.
type AllocationMetrics struct {
	TotalProfit        float64       `json:"total_profit"`
	ROI                float64       `json:"roi"`
	RiskAdjustedReturn float64       `json:"risk_adjusted_return"`
	AllocatedBudget    float64       `json:"allocated_budget"`
	ExecutionTime      time.Duration `json:"execution_time"`
}

// AllocationPlan maps cycle IDs to allocated amounts plus summary metrics.
type AllocationPlan struct {
	Allocations map[string]float64 `json:"allocations"`
	Metrics     AllocationMetrics  `json:"metrics"`
}
