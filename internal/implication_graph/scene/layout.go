package scene

import (
	"sort"

	"github.com/stateboard/stateboard-backend/internal/implication_graph/domain"
)

const (
	layoutColGap  = 260.0
	layoutRowGap  = 120.0
	layoutMarginX = 120.0
	layoutMarginY = 100.0
)

// AutoLayout assigns hierarchical left-to-right positions: Kahn
// ordering puts each node one column right of its furthest
// predecessor, nodes left over by cycles land in one trailing column,
// and nodes within a column stack top to bottom in ID order.
func AutoLayout(g *domain.Graph, include map[string]bool) map[string]domain.Position {
	positions := make(map[string]domain.Position, len(include))
	if g == nil {
		return positions
	}

	// Multiple edges between one pair are expected (different events),
	// so adjacency and in-degree count distinct pairs only.
	succ := map[string]map[string]bool{}
	indegree := map[string]int{}
	for id, ok := range include {
		if ok {
			indegree[id] = 0
		}
	}
	for _, e := range g.Edges {
		if !include[e.Source] || !include[e.Target] || e.Source == e.Target {
			continue
		}
		if succ[e.Source] == nil {
			succ[e.Source] = map[string]bool{}
		}
		if !succ[e.Source][e.Target] {
			succ[e.Source][e.Target] = true
			indegree[e.Target]++
		}
	}

	layer := map[string]int{}
	var ready []string
	for id, deg := range indegree {
		if deg == 0 {
			ready = append(ready, id)
			layer[id] = 0
		}
	}
	sort.Strings(ready)

	processed := map[string]bool{}
	maxLayer := 0
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		processed[id] = true
		if layer[id] > maxLayer {
			maxLayer = layer[id]
		}

		for _, t := range sortedKeys(succ[id]) {
			if l := layer[id] + 1; l > layer[t] {
				layer[t] = l
			}
			indegree[t]--
			if indegree[t] == 0 {
				ready = insertSorted(ready, t)
			}
		}
	}

	// Cycle leftovers get one trailing column.
	var leftovers []string
	for id := range indegree {
		if !processed[id] {
			leftovers = append(leftovers, id)
		}
	}
	if len(leftovers) > 0 {
		sort.Strings(leftovers)
		for _, id := range leftovers {
			layer[id] = maxLayer + 1
		}
	}

	columns := map[int][]string{}
	for id := range indegree {
		columns[layer[id]] = append(columns[layer[id]], id)
	}

	for col, ids := range columns {
		sort.Strings(ids)
		for row, id := range ids {
			positions[id] = domain.Position{
				X: layoutMarginX + float64(col)*layoutColGap,
				Y: layoutMarginY + float64(row)*layoutRowGap,
			}
		}
	}
	return positions
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func insertSorted(list []string, v string) []string {
	i := sort.SearchStrings(list, v)
	list = append(list, "")
	copy(list[i+1:], list[i:])
	list[i] = v
	return list
}
