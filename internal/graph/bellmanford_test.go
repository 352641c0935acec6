package graph

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// profitableTriangle is the canonical USD->EUR->GBP->USD loop whose
// compounded effective rate exceeds 1.
func profitableTriangle(t *testing.T) []Edge {
	t.Helper()
	exchange := ExchangeData{
		"USD": {"EUR": {Rate: 0.9, Liquidity: 5000, Fee: 0.001}},
		"EUR": {"GBP": {Rate: 0.95, Liquidity: 2000, Fee: 0.001}},
		"GBP": {"USD": {Rate: 1.3, Liquidity: 3000, Fee: 0.001}},
	}
	edges := Build(exchange)
	require.Len(t, edges, 3)
	return edges
}

// fairTriangle compounds to exactly 1 with zero fees: no profit.
func fairTriangle() []Edge {
	exchange := ExchangeData{
		"USD": {"EUR": {Rate: 0.5, Liquidity: 1000}},
		"EUR": {"GBP": {Rate: 4.0, Liquidity: 1000}},
		"GBP": {"USD": {Rate: 0.5, Liquidity: 1000}},
	}
	return Build(exchange)
}

func TestBellmanFordDetectsProfitableCycle(t *testing.T) {
	found, dist, pred := BellmanFord(profitableTriangle(t), "USD")

	assert.True(t, found)
	assert.NotEmpty(t, dist)
	assert.NotEmpty(t, pred)
}

func TestBellmanFordNoFalsePositiveOnFairCycle(t *testing.T) {
	found, _, _ := BellmanFord(fairTriangle(), "USD")
	assert.False(t, found)
}

func TestBellmanFordLossyCycle(t *testing.T) {
	exchange := ExchangeData{
		"USD": {"EUR": {Rate: 0.9, Liquidity: 1000, Fee: 0.02}},
		"EUR": {"GBP": {Rate: 0.95, Liquidity: 1000, Fee: 0.02}},
		"GBP": {"USD": {Rate: 1.1, Liquidity: 1000, Fee: 0.02}},
	}
	found, _, _ := BellmanFord(Build(exchange), "USD")
	assert.False(t, found)
}

func TestBellmanFordUnknownSourceFallsBack(t *testing.T) {
	found, dist, _ := BellmanFord(profitableTriangle(t), "JPY")

	assert.True(t, found)
	_, hasJPY := dist["JPY"]
	assert.False(t, hasJPY)
}

func TestBellmanFordEmptyGraph(t *testing.T) {
	found, dist, pred := BellmanFord(nil, "USD")

	assert.False(t, found)
	assert.Empty(t, dist)
	assert.Empty(t, pred)
}

func TestBellmanFordUnreachableNodeStaysInfinite(t *testing.T) {
	edges := []Edge{
		mustEdge(t, "a", "b", 1.0, 0, 100),
		mustEdge(t, "c", "d", 1.0, 0, 100),
	}
	found, dist, _ := BellmanFord(edges, "a")

	assert.False(t, found)
	assert.True(t, math.IsInf(dist["c"], 1))
	assert.True(t, math.IsInf(dist["d"], 1))
}

func TestBellmanFordOptimizedTracesCycle(t *testing.T) {
	found, _, _, cycle := BellmanFordOptimized(profitableTriangle(t), "USD")

	require.True(t, found)
	require.Len(t, cycle, 3)
	assert.ElementsMatch(t, []string{"USD", "EUR", "GBP"}, cycle)

	// The traced order must follow the conversion direction.
	rate := 1.0
	for i := range cycle {
		from, to := cycle[i], cycle[(i+1)%len(cycle)]
		e, ok := findEdge(profitableTriangle(t), from, to)
		require.True(t, ok, "missing edge %s->%s", from, to)
		rate *= e.EffectiveRate()
	}
	assert.Greater(t, rate, 1.0)
}

func TestBellmanFordOptimizedNoCycle(t *testing.T) {
	found, _, _, cycle := BellmanFordOptimized(fairTriangle(), "USD")

	assert.False(t, found)
	assert.Empty(t, cycle)
}

func TestBellmanFordOptimizedAgreesWithBasic(t *testing.T) {
	edges := profitableTriangle(t)

	basicFound, _, _ := BellmanFord(edges, "USD")
	optFound, _, _, _ := BellmanFordOptimized(edges, "USD")
	assert.Equal(t, basicFound, optFound)
}

func mustEdge(t *testing.T, from, to string, rate, fee, liquidity float64) Edge {
	t.Helper()
	e, err := NewEdge(from, to, rate, fee, liquidity)
	require.NoError(t, err)
	return e
}

func findEdge(edges []Edge, from, to string) (Edge, bool) {
	for _, e := range edges {
		if e.From == from && e.To == to {
			return e, true
		}
	}
	return Edge{}, false
}
