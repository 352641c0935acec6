package dmarket

// RawItem is a marketplace item as the API returns it. Two shapes occur in
// the wild: a flat record with "price"/"suggestedPrice" money maps and an
// "extra" block, and an attribute-bearing record with "prices" and a direct
// "liquidity" field. All fields are optional; normalization picks whichever
// is populated.
type RawItem struct {
	ItemID   string `json:"itemId,omitempty"`
	AltID    string `json:"item_id,omitempty"`
	Title    string `json:"title"`
	GameID   string `json:"gameId,omitempty"`
	Game     string `json:"game,omitempty"`
	Category string `json:"category,omitempty"`
	Rarity   string `json:"rarity,omitempty"`

	Price          map[string]float64 `json:"price,omitempty"`
	SuggestedPrice map[string]float64 `json:"suggestedPrice,omitempty"`
	Prices         map[string]float64 `json:"prices,omitempty"`

	Liquidity float64   `json:"liquidity,omitempty"`
	Extra     *RawExtra `json:"extra,omitempty"`
}

// RawExtra carries the flat shape's activity metrics.
type RawExtra struct {
	SalesPerDay float64 `json:"salesPerDay"`
}

// ID returns whichever identifier field the record carries.
func (r RawItem) ID() string {
	if r.ItemID != "" {
		return r.ItemID
	}
	return r.AltID
}

// PriceUSD returns the USD price, preferring the flat "price" map over
// "prices". Zero means no usable price.
func (r RawItem) PriceUSD() float64 {
	if p, ok := r.Price["USD"]; ok && p > 0 {
		return p
	}
	if p, ok := r.Prices["USD"]; ok && p > 0 {
		return p
	}
	return 0
}

// LiquidityScore returns the direct liquidity field when set, falling back
// to sales per day from the extra block.
func (r RawItem) LiquidityScore() float64 {
	if r.Liquidity > 0 {
		return r.Liquidity
	}
	if r.Extra != nil {
		return r.Extra.SalesPerDay
	}
	return 0
}

type errorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}
