package build

import (
	"sort"
	"strings"

	"github.com/stateboard/stateboard-backend/internal/implication_graph/domain"
)

// SearchResult groups matches by kind so the caller can render state
// and transition hits separately.
type SearchResult struct {
	States      []*domain.Node `json:"states"`
	Transitions []*domain.Edge `json:"transitions"`
}

// Search matches the query case-insensitively against node IDs, class
// names, statuses and screens, and against transition endpoints and
// event names. Results are sorted and capped at limit per kind; a
// limit of 0 means unlimited.
func Search(g *domain.Graph, query string, limit int) SearchResult {
	res := SearchResult{States: []*domain.Node{}, Transitions: []*domain.Edge{}}
	q := strings.ToLower(strings.TrimSpace(query))
	if g == nil || q == "" {
		return res
	}

	for _, n := range g.Nodes {
		if n == nil {
			continue
		}
		if containsFold(q, n.ID, n.ClassName, n.Status, n.Screen, n.Label) {
			res.States = append(res.States, n)
		}
	}
	sort.Slice(res.States, func(i, j int) bool { return res.States[i].ID < res.States[j].ID })
	if limit > 0 && len(res.States) > limit {
		res.States = res.States[:limit]
	}

	for _, e := range g.Edges {
		if e == nil {
			continue
		}
		if containsFold(q, e.Source, e.Target, e.Event) {
			res.Transitions = append(res.Transitions, e)
		}
	}
	sort.Slice(res.Transitions, func(i, j int) bool {
		return domain.EdgeKey(res.Transitions[i].Source, res.Transitions[i].Target, res.Transitions[i].Event) <
			domain.EdgeKey(res.Transitions[j].Source, res.Transitions[j].Target, res.Transitions[j].Event)
	})
	if limit > 0 && len(res.Transitions) > limit {
		res.Transitions = res.Transitions[:limit]
	}

	return res
}

func containsFold(q string, fields ...string) bool {
	for _, f := range fields {
		if f != "" && strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
