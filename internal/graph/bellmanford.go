package graph

import "math"

// epsilon guards float comparisons during relaxation so rounding noise on
// break-even cycles is not reported as profit.
const epsilon = 1e-9

// BellmanFord runs |V|-1 relaxation passes from source and a final check
// pass. It reports whether a negative cycle is reachable, along with the
// distance and predecessor maps. Unreachable nodes keep a +Inf distance. If
// source is not a node of the graph an arbitrary node is used instead; an
// empty edge set reports no cycle.
func BellmanFord(edges []Edge, source string) (bool, map[string]float64, map[string]string) {
	nodes := Nodes(edges)
	if len(nodes) == 0 {
		return false, map[string]float64{}, map[string]string{}
	}
	dist := make(map[string]float64, len(nodes))
	pred := make(map[string]string, len(nodes))
	for _, n := range nodes {
		dist[n] = math.Inf(1)
	}
	if _, ok := dist[source]; !ok {
		source = nodes[0]
	}
	dist[source] = 0

	for i := 0; i < len(nodes)-1; i++ {
		for _, e := range edges {
			if d := dist[e.From] + e.Weight; d < dist[e.To]-epsilon {
				dist[e.To] = d
				pred[e.To] = e.From
			}
		}
	}
	for _, e := range edges {
		if dist[e.From]+e.Weight < dist[e.To]-epsilon {
			return true, dist, pred
		}
	}
	return false, dist, pred
}

// BellmanFordOptimized is BellmanFord with an early exit when a pass relaxes
// nothing, and it additionally traces out the detected cycle. The returned
// cycle lists each node once, in conversion order; it is empty when no
// negative cycle exists.
func BellmanFordOptimized(edges []Edge, source string) (bool, map[string]float64, map[string]string, []string) {
	nodes := Nodes(edges)
	if len(nodes) == 0 {
		return false, map[string]float64{}, map[string]string{}, nil
	}
	dist := make(map[string]float64, len(nodes))
	pred := make(map[string]string, len(nodes))
	for _, n := range nodes {
		dist[n] = math.Inf(1)
	}
	if _, ok := dist[source]; !ok {
		source = nodes[0]
	}
	dist[source] = 0

	for i := 0; i < len(nodes)-1; i++ {
		relaxed := false
		for _, e := range edges {
			if d := dist[e.From] + e.Weight; d < dist[e.To]-epsilon {
				dist[e.To] = d
				pred[e.To] = e.From
				relaxed = true
			}
		}
		if !relaxed {
			break
		}
	}
	for _, e := range edges {
		if dist[e.From]+e.Weight < dist[e.To]-epsilon {
			cycle := traceCycle(pred, e.To, len(nodes))
			return true, dist, pred, cycle
		}
	}
	return false, dist, pred, nil
}

// traceCycle walks predecessor links from a node known to sit on or lead into
// a negative cycle, first stepping |V| times to guarantee landing inside the
// cycle, then collecting nodes until the walk repeats.
func traceCycle(pred map[string]string, start string, nodeCount int) []string {
	node := start
	for i := 0; i < nodeCount; i++ {
		p, ok := pred[node]
		if !ok {
			break
		}
		node = p
	}

	var walk []string
	seen := make(map[string]int)
	for {
		if pos, ok := seen[node]; ok {
			cycle := walk[pos:]
			reverse(cycle)
			return cycle
		}
		seen[node] = len(walk)
		walk = append(walk, node)
		p, ok := pred[node]
		if !ok {
			return nil
		}
		node = p
	}
}

func reverse(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
