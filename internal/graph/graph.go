// Package graph models marketplace conversion rates as a weighted directed
// graph and detects negative cycles with Bellman-Ford. Edge weights are
// -ln(rate*(1-fee)), so a negative cycle is a sequence of conversions whose
// compounded effective rate exceeds 1.
package graph

import (
	"fmt"
	"math"
	"sort"
)

// Conversion is one directed rate quote between two assets.
type Conversion struct {
	Rate      float64 `json:"rate"`
	Liquidity float64 `json:"liquidity"`
	Fee       float64 `json:"fee"`
}

// ExchangeData is the adjacency form the integrator produces:
// exchange[from][to] = quote.
type ExchangeData map[string]map[string]Conversion

// Edge is one weighted conversion edge. Weight is always derived from Rate
// and Fee at construction; build edges with NewEdge.
type Edge struct {
	From      string
	To        string
	Rate      float64
	Fee       float64
	Liquidity float64
	Weight    float64
}

// NewEdge validates and normalizes a quote into an edge. Non-positive rates
// are rejected. Fees are normalized the way quotes arrive in the wild: values
// above 1 are read as percent, negatives as zero, and the result is capped at
// 0.99 so the effective rate stays positive.
func NewEdge(from, to string, rate, fee, liquidity float64) (Edge, error) {
	if rate <= 0 {
		return Edge{}, fmt.Errorf("graph: edge %s->%s: non-positive rate %v", from, to, rate)
	}
	fee = normalizeFee(fee)
	effective := rate * (1 - fee)
	if effective <= 0 {
		return Edge{}, fmt.Errorf("graph: edge %s->%s: non-positive effective rate", from, to)
	}
	return Edge{
		From:      from,
		To:        to,
		Rate:      rate,
		Fee:       fee,
		Liquidity: liquidity,
		Weight:    -math.Log(effective),
	}, nil
}

func normalizeFee(fee float64) float64 {
	if fee < 0 {
		return 0
	}
	if fee > 1 {
		fee = fee / 100
	}
	if fee > 0.99 {
		return 0.99
	}
	return fee
}

// EffectiveRate is the rate after the fee haircut.
func (e Edge) EffectiveRate() float64 {
	return e.Rate * (1 - e.Fee)
}

// Build converts adjacency data into edges, skipping invalid quotes instead
// of failing the whole build. Every valid quote becomes exactly one edge.
func Build(exchange ExchangeData) []Edge {
	edges := make([]Edge, 0, len(exchange)*2)
	for _, from := range sortedKeys(exchange) {
		quotes := exchange[from]
		for _, to := range sortedQuoteKeys(quotes) {
			q := quotes[to]
			e, err := NewEdge(from, to, q.Rate, q.Fee, q.Liquidity)
			if err != nil {
				continue
			}
			edges = append(edges, e)
		}
	}
	return edges
}

// Nodes returns the distinct node names touched by the edges, sorted.
func Nodes(edges []Edge) []string {
	seen := make(map[string]struct{}, len(edges))
	for _, e := range edges {
		seen[e.From] = struct{}{}
		seen[e.To] = struct{}{}
	}
	nodes := make([]string, 0, len(seen))
	for n := range seen {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)
	return nodes
}

func sortedKeys(m ExchangeData) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedQuoteKeys(m map[string]Conversion) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
