// Package arbitrage turns negative cycles found in the conversion graph into
// scored, budget-simulated opportunities and filters them against thresholds.
package arbitrage

import (
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dkotenko/skinarb/internal/domain"
	"github.com/dkotenko/skinarb/internal/graph"
)

// Confidence weights. Tunable heuristics; only the direction is fixed:
// deeper liquidity and shorter cycles score higher.
const (
	confLiquidityWeight = 0.6
	confLengthWeight    = 0.4
)

// FinderOptions bounds the search.
type FinderOptions struct {
	MaxCycleLength   int
	MaxOpportunities int
	MaxStartNodes    int
}

// Defaults fills zero fields with the standard bounds.
func (o FinderOptions) withDefaults() FinderOptions {
	if o.MaxCycleLength <= 0 {
		o.MaxCycleLength = 8
	}
	if o.MaxOpportunities <= 0 {
		o.MaxOpportunities = 10
	}
	if o.MaxStartNodes <= 0 {
		o.MaxStartNodes = 100
	}
	return o
}

// Finder locates arbitrage cycles in conversion graphs.
type Finder struct {
	opts   FinderOptions
	logger *slog.Logger
}

// NewFinder creates a finder with the given bounds.
func NewFinder(opts FinderOptions, logger *slog.Logger) *Finder {
	return &Finder{
		opts:   opts.withDefaults(),
		logger: logger.With(slog.String("component", "arb_finder")),
	}
}

// SingleResult runs one optimized detection pass from source and profiles the
// first cycle found. A zero-valued result means no profitable cycle.
func (f *Finder) SingleResult(edges []graph.Edge, source string) domain.ArbitrageResult {
	found, _, _, cycle := graph.BellmanFordOptimized(edges, source)
	if !found || len(cycle) == 0 {
		return domain.ArbitrageResult{}
	}
	return profileCycle(edges, cycle)
}

// Find runs detection across candidate start nodes and returns distinct
// profitable cycles, one result per unordered node-set.
func (f *Finder) Find(edges []graph.Edge) []domain.ArbitrageResult {
	nodes := graph.Nodes(edges)
	if len(nodes) == 0 {
		return nil
	}
	starts := nodes
	if len(starts) > f.opts.MaxStartNodes {
		starts = starts[:f.opts.MaxStartNodes]
	}

	var results []domain.ArbitrageResult
	seen := make(map[string]struct{})
	for _, start := range starts {
		found, _, _, cycle := graph.BellmanFordOptimized(edges, start)
		if !found || len(cycle) == 0 {
			continue
		}
		key := nodeSetKey(cycle)
		if _, dup := seen[key]; dup {
			continue
		}
		r := profileCycle(edges, cycle)
		if !r.Found() {
			continue
		}
		seen[key] = struct{}{}
		results = append(results, r)
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].ProfitPercent > results[j].ProfitPercent
	})
	return results
}

// FindAdvanced searches the adjacency data for profitable cycles and
// simulates compounding an actual budget through each one. Cycles shorter
// than 3 nodes, over the length bound, below the profit threshold, or
// touching a hop under the liquidity floor are discarded. Results are sorted
// by profit descending and capped at MaxOpportunities. Malformed input never
// fails the call: problems are logged and the slice comes back empty.
func (f *Finder) FindAdvanced(exchange graph.ExchangeData, budget, minProfit, minLiquidity float64) []domain.Opportunity {
	if len(exchange) == 0 {
		f.logger.Warn("empty exchange data, nothing to search")
		return []domain.Opportunity{}
	}
	if budget <= 0 {
		f.logger.Warn("non-positive budget, using default", slog.Float64("budget", budget))
		budget = 100.0
	}
	if minProfit < 0 {
		f.logger.Warn("negative profit threshold, using default", slog.Float64("min_profit", minProfit))
		minProfit = 0.1
	}
	if minLiquidity <= 0 {
		minLiquidity = 0.1
	}

	edges := graph.Build(exchange)

	// Start from the best-connected nodes first.
	starts := startNodesByDegree(exchange, f.opts.MaxStartNodes)

	opportunities := make([]domain.Opportunity, 0, f.opts.MaxOpportunities)
	seen := make(map[string]struct{})

	for _, start := range starts {
		found, _, _, cycle := graph.BellmanFordOptimized(edges, start)
		if !found || len(cycle) < 3 || len(cycle) > f.opts.MaxCycleLength {
			continue
		}
		key := nodeSetKey(cycle)
		if _, dup := seen[key]; dup {
			continue
		}

		opp, ok := f.simulate(exchange, cycle, budget, minLiquidity)
		if !ok {
			continue
		}
		if opp.ProfitPercent < minProfit {
			continue
		}
		opportunities = append(opportunities, opp)
		seen[key] = struct{}{}
		if len(opportunities) >= f.opts.MaxOpportunities {
			break
		}
	}

	sort.SliceStable(opportunities, func(i, j int) bool {
		return opportunities[i].ProfitPercent > opportunities[j].ProfitPercent
	})
	if len(opportunities) > f.opts.MaxOpportunities {
		opportunities = opportunities[:f.opts.MaxOpportunities]
	}
	return opportunities
}

// simulate walks the closed path compounding the budget hop by hop. It fails
// when a hop is missing from the data or its liquidity is under the floor.
func (f *Finder) simulate(exchange graph.ExchangeData, cycle []string, budget, minLiquidity float64) (domain.Opportunity, bool) {
	path := append(append(make([]string, 0, len(cycle)+1), cycle...), cycle[0])

	current := budget
	minPathLiquidity := math.Inf(1)
	hops := make([]domain.Hop, 0, len(path)-1)

	for i := 0; i < len(path)-1; i++ {
		from, to := path[i], path[i+1]
		q, ok := exchange[from][to]
		if !ok {
			f.logger.Warn("cycle hop missing from exchange data",
				slog.String("from", from), slog.String("to", to))
			return domain.Opportunity{}, false
		}
		if q.Liquidity < minLiquidity {
			return domain.Opportunity{}, false
		}
		minPathLiquidity = math.Min(minPathLiquidity, q.Liquidity)

		effective := q.Rate * (1 - q.Fee)
		current *= effective
		hops = append(hops, domain.Hop{
			From:          from,
			To:            to,
			Rate:          q.Rate,
			EffectiveRate: effective,
			Fee:           q.Fee,
			Liquidity:     q.Liquidity,
		})
	}
	if current <= 0 {
		return domain.Opportunity{}, false
	}

	profitValue := current - budget
	return domain.Opportunity{
		ID:            uuid.NewString(),
		Path:          path,
		ProfitPercent: profitValue / budget * 100,
		ProfitValue:   profitValue,
		InitialBudget: budget,
		FinalBudget:   current,
		Liquidity:     minPathLiquidity,
		Hops:          hops,
		DetectedAt:    time.Now().UTC(),
	}, true
}

// FindMultiple finds up to maxCycles distinct cycles by penalizing the edges
// of each found cycle (weight +0.1, rate x0.9) and searching again until no
// cycle remains.
func (f *Finder) FindMultiple(edges []graph.Edge, maxCycles int) []domain.ArbitrageResult {
	if maxCycles <= 0 || len(edges) == 0 {
		return nil
	}
	current := append([]graph.Edge(nil), edges...)
	source := graph.Nodes(current)[0]

	var results []domain.ArbitrageResult
	for len(results) < maxCycles {
		found, _, _, cycle := graph.BellmanFordOptimized(current, source)
		if !found || len(cycle) == 0 {
			break
		}
		r := profileCycle(current, cycle)
		if !r.Found() {
			break
		}
		results = append(results, r)
		current = penalizeCycle(current, cycle)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].ProfitPercent > results[j].ProfitPercent
	})
	return results
}

// penalizeCycle dampens a found cycle so subsequent searches surface other
// loops.
func penalizeCycle(edges []graph.Edge, cycle []string) []graph.Edge {
	inCycle := make(map[[2]string]struct{}, len(cycle))
	for i := range cycle {
		inCycle[[2]string{cycle[i], cycle[(i+1)%len(cycle)]}] = struct{}{}
	}
	out := make([]graph.Edge, len(edges))
	for i, e := range edges {
		if _, hit := inCycle[[2]string{e.From, e.To}]; hit {
			e.Weight += 0.1
			e.Rate *= 0.9
		}
		out[i] = e
	}
	return out
}

// StartStats summarizes how productive an asset is as a cycle entry point.
type StartStats struct {
	Opportunities int     `json:"opportunities"`
	MaxProfit     float64 `json:"max_profit"`
	AvgProfit     float64 `json:"avg_profit"`
}

// BestStartingAsset evaluates each candidate asset as a starting point and
// reports how many opportunities open from it and how profitable they are.
func (f *Finder) BestStartingAsset(exchange graph.ExchangeData, assets []string) map[string]StartStats {
	if len(assets) == 0 {
		assets = []string{"USD", "EUR", "BTC"}
	}
	opps := f.FindAdvanced(exchange, 100.0, 0.1, 0.1)
	results := make(map[string]StartStats, len(assets))
	for _, asset := range assets {
		stats := StartStats{}
		for _, opp := range opps {
			if !containsNode(opp.Path, asset) {
				continue
			}
			stats.Opportunities++
			stats.MaxProfit = math.Max(stats.MaxProfit, opp.ProfitPercent)
			stats.AvgProfit += opp.ProfitPercent
		}
		if stats.Opportunities > 0 {
			stats.AvgProfit /= float64(stats.Opportunities)
		}
		results[asset] = stats
	}
	return results
}

// profileCycle compounds the effective rates around a cycle and derives the
// result fields: bottleneck liquidity, summed fees, confidence, recommended
// volume (10% of the bottleneck, at most 1000).
func profileCycle(edges []graph.Edge, cycle []string) domain.ArbitrageResult {
	edgeMap := make(map[[2]string]graph.Edge, len(edges))
	for _, e := range edges {
		edgeMap[[2]string{e.From, e.To}] = e
	}

	profitFactor := 1.0
	minLiquidity := math.Inf(1)
	totalFee := 0.0
	matched := 0

	for i := range cycle {
		e, ok := edgeMap[[2]string{cycle[i], cycle[(i+1)%len(cycle)]}]
		if !ok {
			continue
		}
		matched++
		profitFactor *= e.EffectiveRate()
		minLiquidity = math.Min(minLiquidity, e.Liquidity)
		totalFee += e.Fee
	}
	if matched == 0 {
		return domain.ArbitrageResult{}
	}

	profitPercent := (profitFactor - 1) * 100
	recommendedVolume := math.Min(minLiquidity*0.1, 1000.0)

	return domain.ArbitrageResult{
		Cycle:             cycle,
		Profit:            recommendedVolume * (profitFactor - 1),
		ProfitPercent:     profitPercent,
		Liquidity:         minLiquidity,
		TotalFee:          totalFee,
		Confidence:        confidence(minLiquidity, len(cycle)),
		RecommendedVolume: recommendedVolume,
	}
}

// confidence favors deep liquidity and short cycles.
func confidence(liquidity float64, cycleLen int) float64 {
	liquidityScore := math.Min(liquidity/100.0, 1.0)
	lengthScore := 0.0
	if cycleLen > 0 {
		lengthScore = math.Min(3.0/float64(cycleLen), 1.0)
	}
	c := confLiquidityWeight*liquidityScore + confLengthWeight*lengthScore
	return math.Max(0, math.Min(1, c))
}

// nodeSetKey identifies a cycle by its unordered node set.
func nodeSetKey(cycle []string) string {
	nodes := append([]string(nil), cycle...)
	sort.Strings(nodes)
	return strings.Join(nodes, "|")
}

// startNodesByDegree orders nodes by out-degree descending, dropping nodes
// with no outgoing quotes, capped at limit.
func startNodesByDegree(exchange graph.ExchangeData, limit int) []string {
	type degree struct {
		node string
		out  int
	}
	degrees := make([]degree, 0, len(exchange))
	for node, quotes := range exchange {
		if len(quotes) == 0 {
			continue
		}
		degrees = append(degrees, degree{node: node, out: len(quotes)})
	}
	sort.Slice(degrees, func(i, j int) bool {
		if degrees[i].out != degrees[j].out {
			return degrees[i].out > degrees[j].out
		}
		return degrees[i].node < degrees[j].node
	})
	if len(degrees) > limit {
		degrees = degrees[:limit]
	}
	nodes := make([]string, len(degrees))
	for i, d := range degrees {
		nodes[i] = d.node
	}
	return nodes
}

func containsNode(path []string, node string) bool {
	for _, n := range path {
		if n == node {
			return true
		}
	}
	return false
}
