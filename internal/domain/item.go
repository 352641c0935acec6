// Package domain defines the core data types of the arbitrage engine: market
// items, detected opportunities, trade cycles, allocation plans, and the
// cache/store interfaces implemented by the infrastructure packages.
package domain

import "time"

// Game identifies a marketplace catalog (DMarket game ID namespace).
type Game string

const (
	GameCS2   Game = "a8db"
	GameDota2 Game = "9a92"
	GameTF2   Game = "tf2"
	GameRust  Game = "rust"
)

// NormalizedItem is the canonical item shape the engine works with after
// adapter responses have been normalized. Items with a missing or zero USD
// price never reach this type; they are dropped at the normalization boundary.
type NormalizedItem struct {
	ItemID    string  `json:"itemId"`
	Title     string  `json:"title"`
	PriceUSD  float64 `json:"priceUSD"`
	Liquidity float64 `json:"liquidity"`
	Category  string  `json:"category,omitempty"`
	Rarity    string  `json:"rarity,omitempty"`
}

// SkinArbitrageOption is a cross-marketplace price discrepancy for a single
// item: buy on one venue, sell on another.
type SkinArbitrageOption struct {
	ItemName      string    `json:"item_name"`
	Game          Game      `json:"game"`
	BuyMarket     string    `json:"buy_market"`
	BuyPrice      float64   `json:"buy_price"`
	SellMarket    string    `json:"sell_market"`
	SellPrice     float64   `json:"sell_price"`
	Profit        float64   `json:"profit"`
	ProfitPercent float64   `json:"profit_percent"`
	Liquidity     float64   `json:"liquidity"`
	RiskScore     float64   `json:"risk_score"`
	DetectedAt    time.Time `json:"detected_at"`
}

// RiskAdjustedProfit scales the raw profit down by the option's risk score.
// A non-positive risk score applies no penalty.
func (o SkinArbitrageOption) RiskAdjustedProfit() float64 {
	if o.RiskScore <= 0 {
		return o.Profit
	}
	return o.Profit * (100.0 - o.RiskScore) / 100.0
}
