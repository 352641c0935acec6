package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTradeCycleClampsFields(t *testing.T) {
	c := NewTradeCycle("c1", []string{"a", "b"}, 5.0, -100, 150, -3)

	assert.Equal(t, 0.0, c.Cost)
	assert.Equal(t, 100.0, c.RiskScore)
	assert.Equal(t, 0.0, c.ExpectedDuration)
}

func TestTradeCycleProfitAmount(t *testing.T) {
	c := NewTradeCycle("c1", nil, 5.0, 1000, 30, 60)

	assert.InDelta(t, 50.0, c.ProfitAmount(), 1e-9)
}

func TestTradeCycleRiskAdjustedProfit(t *testing.T) {
	c := NewTradeCycle("c1", nil, 5.0, 1000, 30, 60)

	// 50 profit scaled by (100-30)/100.
	assert.InDelta(t, 35.0, c.RiskAdjustedProfit(), 1e-9)
}

func TestTradeCycleRiskAdjustedProfitZeroRisk(t *testing.T) {
	c := NewTradeCycle("c1", nil, 5.0, 1000, 0, 60)

	assert.InDelta(t, c.ProfitAmount(), c.RiskAdjustedProfit(), 1e-9)
}

func TestTradeCycleProfitRiskRatio(t *testing.T) {
	c := NewTradeCycle("c1", nil, 6.0, 1000, 20, 60)
	assert.InDelta(t, 0.3, c.ProfitRiskRatio(), 1e-9)

	riskless := NewTradeCycle("c2", nil, 6.0, 1000, 0, 60)
	assert.True(t, math.IsInf(riskless.ProfitRiskRatio(), 1))
}

func TestSkinArbitrageOptionRiskAdjustedProfit(t *testing.T) {
	o := SkinArbitrageOption{Profit: 10, RiskScore: 40}
	assert.InDelta(t, 6.0, o.RiskAdjustedProfit(), 1e-9)

	o.RiskScore = 0
	assert.InDelta(t, 10.0, o.RiskAdjustedProfit(), 1e-9)
}
