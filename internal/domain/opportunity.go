package domain

import "time"

// ArbitrageResult is one detected circular trade. The cycle holds each node
// once; the closing hop back to the first node is implied.
type ArbitrageResult struct {
	Cycle             []string `json:"cycle"`
	Profit            float64  `json:"profit"`
	ProfitPercent     float64  `json:"profit_percent"`
	Liquidity         float64  `json:"liquidity"`
	TotalFee          float64  `json:"total_fee"`
	Confidence        float64  `json:"confidence"`
	RecommendedVolume float64  `json:"recommended_volume"`
}

// Found reports whether the result carries an actual cycle. Detectors return
// a zero ArbitrageResult when the graph holds no profitable loop.
func (r ArbitrageResult) Found() bool {
	return len(r.Cycle) > 0 && r.ProfitPercent > 0
}

// Hop is one conversion step inside a simulated opportunity.
type Hop struct {
	From          string  `json:"from"`
	To            string  `json:"to"`
	Rate          float64 `json:"rate"`
	EffectiveRate float64 `json:"effective_rate"`
	Fee           float64 `json:"fee"`
	Liquidity     float64 `json:"liquidity"`
}

// Opportunity is a budget-simulated arbitrage cycle as produced by the
// advanced finder: the path is closed (first node repeated at the end) and
// the profit figures reflect compounding an actual starting budget through
// every hop.
type Opportunity struct {
	ID            string    `json:"id"`
	Path          []string  `json:"path"`
	ProfitPercent float64   `json:"profit_percent"`
	ProfitValue   float64   `json:"profit_value"`
	InitialBudget float64   `json:"initial_budget"`
	FinalBudget   float64   `json:"final_budget"`
	Liquidity     float64   `json:"liquidity"`
	Hops          []Hop     `json:"hops"`
	DetectedAt    time.Time `json:"detected_at"`
}
