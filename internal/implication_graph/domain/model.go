package domain

import "strings"

// Position is a node's placement on the board.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is one stateful implication rendered on the board.
type Node struct {
	ID            string   `json:"id"`
	Label         string   `json:"label"`
	Status        string   `json:"status,omitempty"`
	ClassName     string   `json:"className"`
	FilePath      string   `json:"filePath,omitempty"`
	Screen        string   `json:"screen,omitempty"`
	Platform      string   `json:"platform"`
	Platforms     []string `json:"platforms,omitempty"`
	MultiPlatform bool     `json:"multiPlatform,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	Initial       bool     `json:"initial,omitempty"`
}

// Edge is a directed, event-labeled transition between two nodes.
// Identity is the (source, target, event) triple.
type Edge struct {
	Source        string   `json:"source"`
	Target        string   `json:"target"`
	Event         string   `json:"event"`
	Platforms     []string `json:"platforms,omitempty"`
	HasRequires   bool     `json:"hasRequires,omitempty"`
	HasConditions bool     `json:"hasConditions,omitempty"`
	ActionCount   int      `json:"actionCount,omitempty"`
}

// EdgeKey renders the canonical identity of an edge, used for note
// target keys, sorting, and de-duplication.
func EdgeKey(source, target, event string) string {
	return source + "->" + target + ":" + event
}

type Graph struct {
	Nodes        []*Node             `json:"nodes"`
	Edges        []*Edge             `json:"edges"`
	ScreenGroups map[string][]string `json:"screenGroups,omitempty"`
	// adjacency for algorithms
	Out  map[string][]*Edge `json:"-"`
	In   map[string][]*Edge `json:"-"`
	byID map[string]*Node
}

func NewGraph() *Graph {
	return &Graph{
		Nodes:        []*Node{},
		Edges:        []*Edge{},
		ScreenGroups: map[string][]string{},
		Out:          map[string][]*Edge{},
		In:           map[string][]*Edge{},
		byID:         map[string]*Node{},
	}
}

func (g *Graph) AddNode(n *Node) {
	if _, ok := g.byID[n.ID]; ok {
		return
	}
	g.Nodes = append(g.Nodes, n)
	g.byID[n.ID] = n
}

func (g *Graph) AddEdge(e *Edge) {
	g.Edges = append(g.Edges, e)
	g.Out[e.Source] = append(g.Out[e.Source], e)
	g.In[e.Target] = append(g.In[e.Target], e)
}

// Node returns the node with the given ID, or nil.
func (g *Graph) Node(id string) *Node {
	return g.byID[id]
}

// HasNode reports whether id names a node in the graph.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.byID[id]
	return ok
}

// Reindex rebuilds the lookup and adjacency maps from Nodes and Edges.
// Needed after a Graph round-trips through JSON, which drops them.
func (g *Graph) Reindex() {
	g.byID = make(map[string]*Node, len(g.Nodes))
	for _, n := range g.Nodes {
		g.byID[n.ID] = n
	}
	g.Out = map[string][]*Edge{}
	g.In = map[string][]*Edge{}
	for _, e := range g.Edges {
		g.Out[e.Source] = append(g.Out[e.Source], e)
		g.In[e.Target] = append(g.In[e.Target], e)
	}
}

// NormalizeStateID derives a node ID from an implication class name:
// the "Implications" suffix is stripped and PascalCase is converted to
// snake_case. Already-normalized IDs pass through unchanged.
func NormalizeStateID(className string) string {
	name := strings.TrimSuffix(className, "Implications")
	if name == "" {
		name = className
	}

	var b strings.Builder
	b.Grow(len(name) + 4)
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
