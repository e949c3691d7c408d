package scene

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/stateboard/stateboard-backend/internal/implication_graph/domain"
	"github.com/stateboard/stateboard-backend/internal/implication_graph/theme"
)

const groupDebounce = 50 * time.Millisecond

// LayoutStore is the persistence surface the controller saves node
// positions through.
type LayoutStore interface {
	Save(ctx context.Context, projectPath string, layout map[string]domain.Position) error
	Get(ctx context.Context, projectPath string) (map[string]domain.Position, error)
	Delete(ctx context.Context, projectPath string) error
}

// TransitionDraft is what two-click transition authoring hands off to
// the caller; the controller's responsibility ends at selection
// capture.
type TransitionDraft struct {
	Source     string `json:"source"`
	SourcePath string `json:"sourcePath"`
	Target     string `json:"target"`
}

// Controller is the explicit imperative handle over one rendered
// board. Collaborating components receive it by reference; there is no
// package-level shared instance. New and Close must be strictly paired
// so the debounce goroutine cannot outlive the board.
type Controller struct {
	mu          sync.Mutex
	projectPath string
	graph       *domain.Graph
	theme       *theme.Theme
	store       LayoutStore
	onGroups    func([]GroupBox)

	filters    []string
	selection  string
	pathTarget string
	pathNodes  []string

	positions map[string]domain.Position
	viewport  Viewport
	groups    []GroupBox

	transitionArmed  bool
	transitionSource string
	transitionPath   string

	saving bool

	moveCh    chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewController builds the handle for a project's graph, applying any
// saved layout over the automatic one. onGroups, when non-nil, is
// invoked after every debounced group recomputation.
func NewController(ctx context.Context, projectPath string, g *domain.Graph, th *theme.Theme, store LayoutStore, onGroups func([]GroupBox)) (*Controller, error) {
	if th == nil {
		th = theme.Default()
	}
	c := &Controller{
		projectPath: projectPath,
		graph:       g,
		theme:       th,
		store:       store,
		onGroups:    onGroups,
		viewport:    DefaultViewport(),
		moveCh:      make(chan struct{}, 1),
		done:        make(chan struct{}),
	}

	c.positions = AutoLayout(g, allNodes(g))
	if store != nil {
		saved, err := store.Get(ctx, projectPath)
		if err != nil && err != domain.ErrNoLayout {
			return nil, err
		}
		for id, pos := range saved {
			if g.HasNode(id) {
				c.positions[id] = pos
			}
		}
	}
	c.groups = ComputeGroups(c.sceneNodesLocked(), th)

	go c.loop()
	return c, nil
}

// Scene renders the current state of the board.
func (c *Controller) Scene() Scene {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Compute(c.graph, Options{
		Theme:      c.theme,
		Filters:    c.filters,
		Layout:     clonePositions(c.positions),
		Selection:  c.selection,
		PathTarget: c.pathTarget,
		SkipGroups: true,
	})
	s.Groups = append([]GroupBox(nil), c.groups...)
	s.Viewport = c.viewport
	return s
}

// Fit zooms and pans so every node is visible on a nominal canvas.
func (c *Controller) Fit() Viewport {
	c.mu.Lock()
	defer c.mu.Unlock()

	const canvasW, canvasH = 1280.0, 800.0
	if len(c.positions) == 0 {
		c.viewport = DefaultViewport()
		return c.viewport
	}

	first := true
	var minX, minY, maxX, maxY float64
	for _, pos := range c.positions {
		if first {
			minX, maxX = pos.X, pos.X
			minY, maxY = pos.Y, pos.Y
			first = false
			continue
		}
		if pos.X < minX {
			minX = pos.X
		}
		if pos.X > maxX {
			maxX = pos.X
		}
		if pos.Y < minY {
			minY = pos.Y
		}
		if pos.Y > maxY {
			maxY = pos.Y
		}
	}
	w := (maxX - minX) + nodeExtentW*2
	h := (maxY - minY) + nodeExtentH*2

	zoom := canvasW / w
	if alt := canvasH / h; alt < zoom {
		zoom = alt
	}
	if zoom > 1.5 {
		zoom = 1.5
	}

	c.viewport = Viewport{
		Zoom: zoom,
		PanX: (canvasW-w*zoom)/2 - (minX-nodeExtentW)*zoom,
		PanY: (canvasH-h*zoom)/2 - (minY-nodeExtentH)*zoom,
	}
	return c.viewport
}

// ResetZoom restores the identity viewport.
func (c *Controller) ResetZoom() Viewport {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.viewport = DefaultViewport()
	return c.viewport
}

// Relayout discards current positions in favor of a fresh automatic
// layout. Saved layouts on disk are untouched.
func (c *Controller) Relayout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.positions = AutoLayout(c.graph, allNodes(c.graph))
	c.groups = ComputeGroups(c.sceneNodesLocked(), c.theme)
}

// MoveNode records a drag position. Group boxes recompute after the
// drag settles, at most once per debounce interval.
func (c *Controller) MoveNode(id string, x, y float64) error {
	c.mu.Lock()
	if !c.graph.HasNode(id) {
		c.mu.Unlock()
		return domain.ErrUnknownNode
	}
	c.positions[id] = domain.Position{X: x, Y: y}
	c.mu.Unlock()

	select {
	case c.moveCh <- struct{}{}:
	default:
	}
	return nil
}

// EndDrag snapshots the layout to the store, the drag-end counterpart
// of an explicit SaveLayout.
func (c *Controller) EndDrag(ctx context.Context) error {
	return c.SaveLayout(ctx)
}

// SaveLayout persists every node's position for this project.
// Overlapping saves are rejected while one is in flight.
func (c *Controller) SaveLayout(ctx context.Context) error {
	c.mu.Lock()
	if c.store == nil {
		c.mu.Unlock()
		return nil
	}
	if c.saving {
		c.mu.Unlock()
		return domain.ErrSaveInFlight
	}
	c.saving = true
	snapshot := clonePositions(c.positions)
	c.mu.Unlock()

	err := c.store.Save(ctx, c.projectPath, snapshot)

	c.mu.Lock()
	c.saving = false
	c.mu.Unlock()
	return err
}

// ResetLayout clears the stored layout and falls back to the automatic
// one.
func (c *Controller) ResetLayout(ctx context.Context) error {
	c.mu.Lock()
	if c.saving {
		c.mu.Unlock()
		return domain.ErrSaveInFlight
	}
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.Delete(ctx, c.projectPath); err != nil {
			return err
		}
	}

	c.mu.Lock()
	c.positions = AutoLayout(c.graph, allNodes(c.graph))
	c.groups = ComputeGroups(c.sceneNodesLocked(), c.theme)
	c.mu.Unlock()
	return nil
}

// HighlightPathTo dims everything off the shortest path from the
// initial node to the target. When no target or path is found the
// visual state stays untouched and false is returned.
func (c *Controller) HighlightPathTo(target string) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	path := HighlightPath(c.graph, allNodes(c.graph), target)
	if path == nil {
		return nil, false
	}
	c.pathTarget = target
	c.pathNodes = path
	return append([]string(nil), path...), true
}

// ClearPathHighlight removes any active path dimming.
func (c *Controller) ClearPathHighlight() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pathTarget = ""
	c.pathNodes = nil
}

// SetFilters replaces the active tag filters and recomputes groups
// over the surviving nodes.
func (c *Controller) SetFilters(filters []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters = append([]string(nil), filters...)
	c.groups = ComputeGroups(c.sceneNodesLocked(), c.theme)
}

// Select marks a node as selected; an empty ID clears the selection.
func (c *Controller) Select(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selection = id
}

// BeginTransitionMode arms two-click transition authoring.
func (c *Controller) BeginTransitionMode() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transitionArmed = true
	c.transitionSource = ""
	c.transitionPath = ""
}

// CancelTransitionMode disarms transition authoring without a draft.
func (c *Controller) CancelTransitionMode() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transitionArmed = false
	c.transitionSource = ""
	c.transitionPath = ""
}

// ClickNode feeds a node click through the two-click state machine.
// Outside transition mode a click selects. In transition mode the
// first click captures the source, the second returns the draft for an
// external collaborator to turn into a real transition.
func (c *Controller) ClickNode(id string) *TransitionDraft {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := c.graph.Node(id)
	if n == nil {
		return nil
	}

	if !c.transitionArmed {
		c.selection = id
		return nil
	}

	if c.transitionSource == "" {
		c.transitionSource = id
		c.transitionPath = n.FilePath
		return nil
	}

	draft := &TransitionDraft{
		Source:     c.transitionSource,
		SourcePath: c.transitionPath,
		Target:     id,
	}
	c.transitionArmed = false
	c.transitionSource = ""
	c.transitionPath = ""
	return draft
}

// Rebuild swaps in a freshly built graph after a rescan. Positions of
// surviving nodes carry over; new nodes take automatic positions. An
// active path highlight is re-resolved and cleared if it no longer
// holds.
func (c *Controller) Rebuild(g *domain.Graph) {
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.positions
	c.graph = g
	c.positions = AutoLayout(g, allNodes(g))
	for id, pos := range old {
		if g.HasNode(id) {
			c.positions[id] = pos
		}
	}

	if c.pathTarget != "" {
		if path := HighlightPath(g, allNodes(g), c.pathTarget); path != nil {
			c.pathNodes = path
		} else {
			c.pathTarget = ""
			c.pathNodes = nil
		}
	}
	if c.selection != "" && !g.HasNode(c.selection) {
		c.selection = ""
	}
	c.transitionArmed = false
	c.transitionSource = ""
	c.transitionPath = ""

	c.groups = ComputeGroups(c.sceneNodesLocked(), c.theme)
}

// Close stops the debounce goroutine. Idempotent, and mandatory before
// dropping the controller so repeated scans cannot leak instances.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

func (c *Controller) loop() {
	debounce := time.NewTimer(0)
	if !debounce.Stop() {
		select {
		case <-debounce.C:
		default:
		}
	}

	for {
		select {
		case <-c.done:
			debounce.Stop()
			return
		case <-c.moveCh:
			debounce.Reset(groupDebounce)
		case <-debounce.C:
			c.recomputeGroups()
		}
	}
}

func (c *Controller) recomputeGroups() {
	c.mu.Lock()
	c.groups = ComputeGroups(c.sceneNodesLocked(), c.theme)
	groups := append([]GroupBox(nil), c.groups...)
	cb := c.onGroups
	c.mu.Unlock()

	if cb != nil {
		cb(groups)
	}
	log.Printf("[scene] group boxes recomputed: %d", len(groups))
}

// sceneNodesLocked projects the filtered nodes with their current
// positions, just enough for group geometry. Caller holds the lock.
func (c *Controller) sceneNodesLocked() []SceneNode {
	include := filterNodes(c.graph, c.filters)
	nodes := make([]SceneNode, 0, len(include))
	for _, n := range c.graph.Nodes {
		if !include[n.ID] {
			continue
		}
		pos := c.positions[n.ID]
		nodes = append(nodes, SceneNode{Node: *n, X: pos.X, Y: pos.Y})
	}
	return nodes
}

func clonePositions(in map[string]domain.Position) map[string]domain.Position {
	out := make(map[string]domain.Position, len(in))
	for id, pos := range in {
		out[id] = pos
	}
	return out
}
