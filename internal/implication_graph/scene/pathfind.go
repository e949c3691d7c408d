package scene

import (
	"sort"

	"github.com/stateboard/stateboard-backend/internal/implication_graph/domain"
)

// FindInitial resolves the canonical start node: an explicit initial
// marker first, then a node whose status is "initial", then the first
// node with no incoming edges, then the first node by ID.
func FindInitial(g *domain.Graph, include map[string]bool) string {
	ids := sortedIncluded(g, include)
	if len(ids) == 0 {
		return ""
	}

	for _, id := range ids {
		if n := g.Node(id); n != nil && n.Initial {
			return id
		}
	}
	for _, id := range ids {
		if n := g.Node(id); n != nil && n.Status == "initial" {
			return id
		}
	}

	hasIncoming := map[string]bool{}
	for _, e := range g.Edges {
		if include[e.Source] && include[e.Target] && e.Source != e.Target {
			hasIncoming[e.Target] = true
		}
	}
	for _, id := range ids {
		if !hasIncoming[id] {
			return id
		}
	}
	return ids[0]
}

// ShortestPath runs a uniform-weight BFS from start to end over the
// included subgraph and returns the node path, or nil when no path
// exists.
func ShortestPath(g *domain.Graph, include map[string]bool, start, end string) []string {
	if !include[start] || !include[end] {
		return nil
	}
	if start == end {
		return []string{start}
	}

	visited := map[string]bool{start: true}
	parent := map[string]string{}
	queue := []string{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, neighbor := range neighborIDs(g, current, include) {
			if visited[neighbor] {
				continue
			}
			visited[neighbor] = true
			parent[neighbor] = current

			if neighbor == end {
				// Reconstruct path
				path := []string{end}
				for node := end; node != start; {
					node = parent[node]
					path = append([]string{node}, path...)
				}
				return path
			}

			queue = append(queue, neighbor)
		}
	}
	return nil
}

// neighborIDs returns the distinct included successor IDs of a node in
// sorted order.
func neighborIDs(g *domain.Graph, id string, include map[string]bool) []string {
	seen := map[string]bool{}
	var out []string
	for _, e := range g.Out[id] {
		if !include[e.Target] || seen[e.Target] {
			continue
		}
		seen[e.Target] = true
		out = append(out, e.Target)
	}
	sort.Strings(out)
	return out
}

func sortedIncluded(g *domain.Graph, include map[string]bool) []string {
	ids := make([]string, 0, len(include))
	for _, n := range g.Nodes {
		if include[n.ID] {
			ids = append(ids, n.ID)
		}
	}
	sort.Strings(ids)
	return ids
}
