package export

import (
	"encoding/json"
	"fmt"
	"html"
	"os"
	"sort"
	"strings"

	"github.com/stateboard/stateboard-backend/internal/implication_graph/domain"
	"github.com/stateboard/stateboard-backend/internal/implication_graph/scene"
	"github.com/stateboard/stateboard-backend/internal/implication_graph/theme"
)

// WriteHTML renders the scene as a self-contained interactive
// dashboard and writes it to path. No external assets; the scene and
// theme are embedded as JSON and drawn on a canvas.
func WriteHTML(path string, sc *scene.Scene, th *theme.Theme, title string) error {
	doc, err := RenderHTML(sc, th, title)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(doc), 0o644)
}

// RenderHTML builds the dashboard document. Nodes and edges are
// sorted by ID before embedding so the same scene always produces the
// same bytes.
func RenderHTML(sc *scene.Scene, th *theme.Theme, title string) (string, error) {
	if th == nil {
		th = theme.Default()
	}
	if sc == nil {
		sc = &scene.Scene{Viewport: scene.DefaultViewport()}
	}

	sorted := *sc
	sorted.Nodes = append([]scene.SceneNode(nil), sc.Nodes...)
	sort.Slice(sorted.Nodes, func(i, j int) bool { return sorted.Nodes[i].ID < sorted.Nodes[j].ID })
	sorted.Edges = append([]scene.SceneEdge(nil), sc.Edges...)
	sort.Slice(sorted.Edges, func(i, j int) bool {
		return domain.EdgeKey(sorted.Edges[i].Source, sorted.Edges[i].Target, sorted.Edges[i].Event) <
			domain.EdgeKey(sorted.Edges[j].Source, sorted.Edges[j].Target, sorted.Edges[j].Event)
	})

	sceneJSON, err := json.Marshal(&sorted)
	if err != nil {
		return "", fmt.Errorf("failed to marshal scene: %w", err)
	}
	themeJSON, err := json.Marshal(th)
	if err != nil {
		return "", fmt.Errorf("failed to marshal theme: %w", err)
	}

	safeTitle := html.EscapeString(title)
	if safeTitle == "" {
		safeTitle = "Implication Graph"
	}

	return fmt.Sprintf(dashboardTemplate,
		safeTitle,
		safeTitle,
		len(sorted.Nodes),
		len(sorted.Edges),
		statusLegendHTML(th),
		platformLegendHTML(th),
		string(sceneJSON),
		string(themeJSON),
	), nil
}

func statusLegendHTML(th *theme.Theme) string {
	keys := make([]string, 0, len(th.Status))
	for k := range th.Status {
		if k == "default" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		st := th.StyleFor(k)
		b.WriteString(fmt.Sprintf(
			`<div class="legend-item"><span class="legend-dot" style="background:%s"></span>%s %s</div>`,
			st.Color, st.Icon, html.EscapeString(k)))
	}
	return b.String()
}

func platformLegendHTML(th *theme.Theme) string {
	keys := make([]string, 0, len(th.PlatformColors))
	for k := range th.PlatformColors {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(fmt.Sprintf(
			`<div class="legend-item"><span class="legend-line" style="background:%s"></span>%s</div>`,
			th.PlatformColor(k), html.EscapeString(k)))
	}
	return b.String()
}

const dashboardTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%s | Stateboard</title>
<style>
:root {
  --bg: #10131a;
  --bg-panel: #1a1f2b;
  --bg-elevated: #242b3a;
  --fg: #e6e9f0;
  --fg-muted: #8a93a8;
  --accent: #4aa3ff;
  --accent-soft: rgba(74, 163, 255, 0.35);
  --warn: #f59e0b;
  --radius: 10px;
}
* { box-sizing: border-box; margin: 0; padding: 0; }
body {
  font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif;
  background: var(--bg); color: var(--fg);
  height: 100vh; display: flex; flex-direction: column; overflow: hidden;
  font-size: 14px;
}
header {
  background: var(--bg-panel); padding: 0.6rem 1.25rem;
  display: flex; justify-content: space-between; align-items: center;
  border-bottom: 1px solid var(--bg-elevated); z-index: 10;
}
h1 { font-size: 1.05rem; font-weight: 600; }
h1 span { color: var(--accent); }
.toolbar { display: flex; gap: 0.5rem; align-items: center; }
button, input[type=text] {
  font-family: inherit; font-size: 0.8rem;
  padding: 0.4rem 0.75rem; border: 1px solid var(--bg-elevated);
  border-radius: 8px; background: var(--bg); color: var(--fg);
}
button { cursor: pointer; color: var(--fg-muted); }
button:hover { background: var(--bg-elevated); color: var(--fg); }
input[type=text]:focus { outline: none; border-color: var(--accent); }
main { flex: 1; display: flex; overflow: hidden; position: relative; }
#graph-wrapper { flex: 1; position: relative; }
#graph-canvas { position: absolute; top: 0; left: 0; width: 100%%; height: 100%%; cursor: grab; }
#graph-canvas.dragging { cursor: grabbing; }
.overlay-stats {
  position: absolute; top: 0.75rem; left: 0.75rem;
  background: var(--bg-panel); padding: 0.5rem 0.8rem; border-radius: var(--radius);
  font-size: 0.75rem; color: var(--fg-muted); display: flex; gap: 1rem;
  border: 1px solid var(--bg-elevated); z-index: 5;
}
.overlay-stats b { color: var(--accent); font-weight: 600; }
#sidebar {
  width: 300px; background: var(--bg-panel); border-left: 1px solid var(--bg-elevated);
  overflow-y: auto; padding: 1rem; display: flex; flex-direction: column; gap: 1rem;
}
.panel { background: var(--bg); border-radius: var(--radius); padding: 0.8rem; border: 1px solid var(--bg-elevated); }
.panel-title {
  font-size: 0.7rem; font-weight: 600; color: var(--fg-muted);
  text-transform: uppercase; letter-spacing: 0.08em; margin-bottom: 0.6rem;
}
.legend { display: flex; flex-wrap: wrap; gap: 0.4rem; }
.legend-item {
  display: flex; align-items: center; gap: 0.35rem; font-size: 0.75rem;
  color: var(--fg-muted); padding: 0.2rem 0.45rem;
  background: var(--bg-panel); border-radius: 6px;
}
.legend-dot { width: 11px; height: 11px; border-radius: 50%%; display: inline-block; }
.legend-line { width: 16px; height: 3px; border-radius: 2px; display: inline-block; }
#detail .row { display: flex; justify-content: space-between; font-size: 0.78rem; padding: 0.25rem 0; border-bottom: 1px solid var(--bg-elevated); }
#detail .row:last-child { border-bottom: none; }
#detail .k { color: var(--fg-muted); }
#detail .v { font-weight: 500; text-align: right; max-width: 60%%; overflow-wrap: anywhere; }
#detail .empty { color: var(--fg-muted); font-size: 0.78rem; text-align: center; padding: 1rem 0; }
.tagchip {
  display: inline-block; font-size: 0.68rem; padding: 0.15rem 0.4rem;
  background: var(--bg-elevated); border-radius: 4px; margin: 0.1rem 0.15rem 0 0;
}
#search-overlay {
  position: fixed; top: 0; left: 0; right: 0; bottom: 0;
  background: rgba(0, 0, 0, 0.55); z-index: 100;
  display: none; align-items: flex-start; justify-content: center; padding-top: 12vh;
}
#search-overlay.visible { display: flex; }
#search-box {
  background: var(--bg-panel); border: 1px solid var(--accent); border-radius: var(--radius);
  width: 480px; max-height: 60vh; display: flex; flex-direction: column; overflow: hidden;
}
#search-box input {
  border: none; border-bottom: 1px solid var(--bg-elevated); border-radius: 0;
  padding: 0.8rem 1rem; font-size: 0.95rem; background: transparent;
}
#search-results { overflow-y: auto; }
.search-hit { padding: 0.6rem 1rem; cursor: pointer; border-bottom: 1px solid var(--bg-elevated); }
.search-hit:hover, .search-hit.active { background: var(--bg-elevated); }
.search-hit .hit-id { font-family: monospace; font-size: 0.78rem; color: var(--accent); }
.search-hit .hit-meta { font-size: 0.72rem; color: var(--fg-muted); margin-top: 0.15rem; }
.toast {
  position: fixed; bottom: 2rem; left: 50%%; transform: translateX(-50%%);
  background: var(--bg-elevated); border: 1px solid var(--warn);
  padding: 0.5rem 1.1rem; border-radius: var(--radius); font-size: 0.8rem;
  z-index: 200; opacity: 0; transition: opacity 0.25s ease; pointer-events: none;
}
.toast.visible { opacity: 1; }
.hints { font-size: 0.72rem; color: var(--fg-muted); line-height: 1.9; }
.hints kbd {
  background: var(--bg-panel); padding: 0.12rem 0.4rem; border-radius: 4px;
  border: 1px solid var(--bg-elevated); font-family: monospace; font-size: 0.68rem;
}
</style>
</head>
<body>
<header>
  <h1><span>%s</span> · implication graph</h1>
  <div class="toolbar">
    <input type="text" id="path-input" placeholder="Path to state...">
    <button id="btn-path" title="Highlight shortest path from the initial state (Enter)">Path</button>
    <button id="btn-clear" title="Clear path highlight (Esc)">Clear</button>
    <button id="btn-fit" title="Fit graph to view (F)">Fit</button>
    <button id="btn-reset" title="Reset zoom (R)">Reset</button>
    <button id="btn-search" title="Search states (Ctrl/Cmd+K)">Search</button>
  </div>
</header>
<main>
  <div id="graph-wrapper">
    <canvas id="graph-canvas"></canvas>
    <div class="overlay-stats">
      <div><b>%d</b> states</div>
      <div><b>%d</b> transitions</div>
      <div id="stat-path" style="display:none"><b id="stat-path-len"></b> on path</div>
    </div>
  </div>
  <div id="sidebar">
    <div class="panel">
      <div class="panel-title">Status</div>
      <div class="legend">%s</div>
    </div>
    <div class="panel">
      <div class="panel-title">Platforms</div>
      <div class="legend">%s</div>
    </div>
    <div class="panel">
      <div class="panel-title">Selected state</div>
      <div id="detail"><div class="empty">Click a node</div></div>
    </div>
    <div class="panel">
      <div class="panel-title">Shortcuts</div>
      <div class="hints">
        <kbd>Ctrl/Cmd+K</kbd> search · <kbd>F</kbd> fit<br>
        <kbd>R</kbd> reset zoom · <kbd>Esc</kbd> clear<br>
        drag canvas to pan · scroll to zoom
      </div>
    </div>
  </div>
</main>
<div id="search-overlay">
  <div id="search-box">
    <input type="text" id="search-input" placeholder="Search states...">
    <div id="search-results"></div>
  </div>
</div>
<div class="toast" id="toast"></div>
<script>
const SCENE = %s;
const THEME = %s;
const NODE_W = 180, NODE_H = 64;

const canvas = document.getElementById('graph-canvas');
const ctx = canvas.getContext('2d');

let zoom = (SCENE.viewport && SCENE.viewport.zoom) || 1;
let panX = (SCENE.viewport && SCENE.viewport.panX) || 0;
let panY = (SCENE.viewport && SCENE.viewport.panY) || 0;
let selected = SCENE.selected || null;
let pathNodes = SCENE.pathNodes || [];

const nodes = SCENE.nodes || [];
const edges = SCENE.edges || [];
const groups = SCENE.groups || [];
const nodeById = {};
nodes.forEach(n => { nodeById[n.id] = n; });

function pathIndex() {
  const m = {};
  pathNodes.forEach((id, i) => { m[id] = i; });
  return m;
}

function onPathEdge(e, idx) {
  const si = idx[e.source], ti = idx[e.target];
  return si !== undefined && ti !== undefined && ti === si + 1;
}

function roundRect(c, x, y, w, h, r) {
  c.beginPath();
  c.moveTo(x + r, y);
  c.arcTo(x + w, y, x + w, y + h, r);
  c.arcTo(x + w, y + h, x, y + h, r);
  c.arcTo(x, y + h, x, y, r);
  c.arcTo(x, y, x + w, y, r);
  c.closePath();
}

function drawArrow(c, x, y, angle, color) {
  c.save();
  c.translate(x, y);
  c.rotate(angle);
  c.beginPath();
  c.moveTo(0, 0);
  c.lineTo(-9, -4.5);
  c.lineTo(-9, 4.5);
  c.closePath();
  c.fillStyle = color;
  c.fill();
  c.restore();
}

function draw() {
  const dpr = window.devicePixelRatio || 1;
  ctx.setTransform(dpr, 0, 0, dpr, 0, 0);
  ctx.clearRect(0, 0, canvas.clientWidth, canvas.clientHeight);
  ctx.translate(panX, panY);
  ctx.scale(zoom, zoom);

  const idx = pathIndex();
  const pathActive = pathNodes.length > 0;

  groups.forEach(g => {
    ctx.globalAlpha = 0.1;
    ctx.fillStyle = g.color;
    ctx.fillRect(g.x, g.y, g.w, g.h);
    ctx.globalAlpha = 0.45;
    ctx.strokeStyle = g.color;
    ctx.lineWidth = 1;
    ctx.strokeRect(g.x, g.y, g.w, g.h);
    ctx.globalAlpha = 0.85;
    ctx.fillStyle = g.color;
    ctx.font = '12px sans-serif';
    ctx.fillText(g.tag, g.x + 8, g.y + 16);
    ctx.globalAlpha = 1;
  });

  edges.forEach(e => {
    const s = nodeById[e.source], t = nodeById[e.target];
    if (!s || !t) return;
    const onPath = onPathEdge(e, idx);
    ctx.globalAlpha = pathActive && !onPath ? 0.18 : 1;
    ctx.strokeStyle = onPath ? '#fbbf24' : e.color;
    ctx.lineWidth = onPath ? 3 : 1.5;
    ctx.setLineDash(e.lineStyle === 'dashed' ? [6, 4] : []);

    if (e.source === e.target) {
      ctx.beginPath();
      ctx.arc(s.x + NODE_W / 2 - 10, s.y - NODE_H / 2 - 8, 14, 0.3, 5.2);
      ctx.stroke();
      ctx.setLineDash([]);
      ctx.fillStyle = ctx.strokeStyle;
      ctx.font = '10px monospace';
      ctx.fillText(e.event, s.x + NODE_W / 2 + 8, s.y - NODE_H / 2 - 10);
      ctx.globalAlpha = 1;
      return;
    }

    const dx = t.x - s.x, dy = t.y - s.y;
    const dist = Math.sqrt(dx * dx + dy * dy) || 1;
    const ux = dx / dist, uy = dy / dist;
    const x1 = s.x + ux * (NODE_W / 2 - 10), y1 = s.y + uy * (NODE_H / 2 + 6);
    const x2 = t.x - ux * (NODE_W / 2 - 4), y2 = t.y - uy * (NODE_H / 2 + 10);
    ctx.beginPath();
    ctx.moveTo(x1, y1);
    ctx.lineTo(x2, y2);
    ctx.stroke();
    ctx.setLineDash([]);
    drawArrow(ctx, x2, y2, Math.atan2(dy, dx), ctx.strokeStyle);

    const mx = (x1 + x2) / 2, my = (y1 + y2) / 2;
    ctx.fillStyle = pathActive && !onPath ? '#8a93a8' : '#c8cede';
    ctx.font = '10px monospace';
    ctx.fillText(e.event, mx + 4, my - 4);
    ctx.globalAlpha = 1;
  });

  nodes.forEach(n => {
    const dim = pathActive && idx[n.id] === undefined;
    const x = n.x - NODE_W / 2, y = n.y - NODE_H / 2;
    ctx.globalAlpha = dim ? 0.25 : 1;

    if (idx[n.id] !== undefined) {
      ctx.save();
      ctx.shadowColor = '#fbbf24';
      ctx.shadowBlur = 18;
      roundRect(ctx, x, y, NODE_W, NODE_H, 10);
      ctx.fillStyle = '#1a1f2b';
      ctx.fill();
      ctx.restore();
    }

    roundRect(ctx, x, y, NODE_W, NODE_H, 10);
    ctx.fillStyle = '#1a1f2b';
    ctx.fill();
    ctx.strokeStyle = n.color;
    ctx.lineWidth = n.borderStyle === 'dashed-thick' ? 3 : 1.5;
    ctx.setLineDash(n.borderStyle === 'dashed-thick' ? [8, 4] : []);
    ctx.stroke();
    ctx.setLineDash([]);

    if (n.id === selected) {
      roundRect(ctx, x - 4, y - 4, NODE_W + 8, NODE_H + 8, 12);
      ctx.strokeStyle = '#4aa3ff';
      ctx.lineWidth = 2;
      ctx.stroke();
    }

    ctx.fillStyle = n.color;
    ctx.font = '14px sans-serif';
    ctx.fillText(n.icon || '', x + 10, n.y - 6);
    ctx.fillStyle = '#e6e9f0';
    ctx.font = '600 12px sans-serif';
    ctx.fillText(n.label, x + 32, n.y - 6);
    ctx.fillStyle = '#8a93a8';
    ctx.font = '10px monospace';
    ctx.fillText(n.id, x + 10, n.y + 12);
    if (n.platforms && n.platforms.length) {
      ctx.fillText(n.platforms.join(' '), x + 10, n.y + 24);
    }
    ctx.globalAlpha = 1;
  });
}

function resize() {
  const dpr = window.devicePixelRatio || 1;
  canvas.width = canvas.clientWidth * dpr;
  canvas.height = canvas.clientHeight * dpr;
  draw();
}
window.addEventListener('resize', resize);

function fit() {
  if (!nodes.length) return;
  let minX = Infinity, minY = Infinity, maxX = -Infinity, maxY = -Infinity;
  nodes.forEach(n => {
    minX = Math.min(minX, n.x - NODE_W / 2);
    minY = Math.min(minY, n.y - NODE_H / 2);
    maxX = Math.max(maxX, n.x + NODE_W / 2);
    maxY = Math.max(maxY, n.y + NODE_H / 2);
  });
  const w = canvas.clientWidth, h = canvas.clientHeight;
  const gw = maxX - minX + 80, gh = maxY - minY + 80;
  zoom = Math.min(w / gw, h / gh, 1.5);
  panX = (w - (maxX + minX) * zoom) / 2;
  panY = (h - (maxY + minY) * zoom) / 2;
  draw();
}

function toast(msg) {
  const el = document.getElementById('toast');
  el.textContent = msg;
  el.classList.add('visible');
  setTimeout(() => el.classList.remove('visible'), 1800);
}

function updatePathStat() {
  const el = document.getElementById('stat-path');
  if (pathNodes.length) {
    el.style.display = '';
    document.getElementById('stat-path-len').textContent = pathNodes.length;
  } else {
    el.style.display = 'none';
  }
}

function sortedIds() {
  return nodes.map(n => n.id).sort();
}

function resolveTarget(q) {
  q = q.trim().toLowerCase();
  if (!q) return null;
  const ids = sortedIds();
  for (const id of ids) if (id.toLowerCase() === q) return id;
  for (const id of ids) if (id.toLowerCase().indexOf(q) === 0) return id;
  for (const id of ids) if (id.toLowerCase().indexOf(q) >= 0) return id;
  return null;
}

function findInitial() {
  const flagged = nodes.filter(n => n.initial).map(n => n.id).sort();
  if (flagged.length) return flagged[0];
  const byStatus = nodes.filter(n => n.status === 'initial').map(n => n.id).sort();
  if (byStatus.length) return byStatus[0];
  const hasIncoming = {};
  edges.forEach(e => { if (e.source !== e.target) hasIncoming[e.target] = true; });
  const roots = nodes.filter(n => !hasIncoming[n.id]).map(n => n.id).sort();
  if (roots.length) return roots[0];
  const ids = sortedIds();
  return ids.length ? ids[0] : null;
}

function shortestPath(from, to) {
  if (from === to) return [from];
  const succ = {};
  edges.forEach(e => {
    if (!succ[e.source]) succ[e.source] = {};
    succ[e.source][e.target] = true;
  });
  const visited = {}, parent = {};
  visited[from] = true;
  const queue = [from];
  while (queue.length) {
    const cur = queue.shift();
    const next = Object.keys(succ[cur] || {}).sort();
    for (const nb of next) {
      if (visited[nb]) continue;
      visited[nb] = true;
      parent[nb] = cur;
      if (nb === to) {
        const path = [to];
        let p = to;
        while (p !== from) { p = parent[p]; path.unshift(p); }
        return path;
      }
      queue.push(nb);
    }
  }
  return null;
}

function highlightPath(query) {
  const target = resolveTarget(query);
  if (!target) { toast('No state matches "' + query + '"'); return; }
  const from = findInitial();
  if (!from) { toast('No initial state'); return; }
  const path = shortestPath(from, target);
  if (!path) { toast('No path from ' + from + ' to ' + target); return; }
  pathNodes = path;
  updatePathStat();
  draw();
}

function clearPath() {
  pathNodes = [];
  updatePathStat();
  draw();
}

function select(id) {
  selected = id;
  const el = document.getElementById('detail');
  const n = id ? nodeById[id] : null;
  if (!n) {
    el.innerHTML = '<div class="empty">Click a node</div>';
    draw();
    return;
  }
  let rows = '';
  const row = (k, v) => '<div class="row"><span class="k">' + k + '</span><span class="v">' + v + '</span></div>';
  rows += row('ID', n.id);
  rows += row('Class', n.className);
  rows += row('Status', (n.icon || '') + ' ' + (n.status || '-'));
  rows += row('Platforms', (n.platforms || [n.platform]).join(', '));
  if (n.screen) rows += row('Screen', n.screen);
  if (n.filePath) rows += row('File', n.filePath);
  if (n.tags && n.tags.length) {
    rows += '<div style="margin-top:0.4rem">' + n.tags.map(t => '<span class="tagchip">' + t + '</span>').join('') + '</div>';
  }
  el.innerHTML = rows;
  draw();
}

function toWorld(ev) {
  const r = canvas.getBoundingClientRect();
  return {
    x: (ev.clientX - r.left - panX) / zoom,
    y: (ev.clientY - r.top - panY) / zoom,
  };
}

function hitNode(p) {
  for (let i = nodes.length - 1; i >= 0; i--) {
    const n = nodes[i];
    if (Math.abs(p.x - n.x) <= NODE_W / 2 && Math.abs(p.y - n.y) <= NODE_H / 2) return n;
  }
  return null;
}

let dragging = false, dragNode = null, lastX = 0, lastY = 0, moved = false;

canvas.addEventListener('mousedown', ev => {
  const hit = hitNode(toWorld(ev));
  dragging = true;
  moved = false;
  dragNode = hit;
  lastX = ev.clientX;
  lastY = ev.clientY;
  canvas.classList.add('dragging');
});

window.addEventListener('mousemove', ev => {
  if (!dragging) return;
  const dx = ev.clientX - lastX, dy = ev.clientY - lastY;
  if (Math.abs(dx) + Math.abs(dy) > 2) moved = true;
  lastX = ev.clientX;
  lastY = ev.clientY;
  if (dragNode) {
    dragNode.x += dx / zoom;
    dragNode.y += dy / zoom;
  } else {
    panX += dx;
    panY += dy;
  }
  draw();
});

window.addEventListener('mouseup', ev => {
  if (dragging && !moved) {
    const hit = hitNode(toWorld(ev));
    select(hit ? hit.id : null);
  }
  dragging = false;
  dragNode = null;
  canvas.classList.remove('dragging');
});

canvas.addEventListener('wheel', ev => {
  ev.preventDefault();
  const r = canvas.getBoundingClientRect();
  const mx = ev.clientX - r.left, my = ev.clientY - r.top;
  const factor = ev.deltaY < 0 ? 1.1 : 0.9;
  const next = Math.min(Math.max(zoom * factor, 0.15), 3);
  panX = mx - ((mx - panX) / zoom) * next;
  panY = my - ((my - panY) / zoom) * next;
  zoom = next;
  draw();
}, { passive: false });

const overlay = document.getElementById('search-overlay');
const searchInput = document.getElementById('search-input');
const searchResults = document.getElementById('search-results');
let activeHit = 0;

function openSearch() {
  overlay.classList.add('visible');
  searchInput.value = '';
  renderHits('');
  searchInput.focus();
}

function closeSearch() {
  overlay.classList.remove('visible');
}

function matchesQuery(n, q) {
  return n.id.toLowerCase().indexOf(q) >= 0 ||
    n.className.toLowerCase().indexOf(q) >= 0 ||
    (n.label || '').toLowerCase().indexOf(q) >= 0 ||
    (n.status || '').toLowerCase().indexOf(q) >= 0;
}

function renderHits(q) {
  q = q.trim().toLowerCase();
  const hits = nodes.filter(n => !q || matchesQuery(n, q)).slice(0, 20);
  activeHit = 0;
  searchResults.innerHTML = hits.map((n, i) =>
    '<div class="search-hit' + (i === 0 ? ' active' : '') + '" data-id="' + n.id + '">' +
    '<div class="hit-id">' + (n.icon || '') + ' ' + n.id + '</div>' +
    '<div class="hit-meta">' + n.className + ' · ' + (n.status || '-') + '</div>' +
    '</div>').join('');
  searchResults.querySelectorAll('.search-hit').forEach(el => {
    el.addEventListener('click', () => { pickHit(el.dataset.id); });
  });
}

function pickHit(id) {
  closeSearch();
  select(id);
  const n = nodeById[id];
  if (n) {
    panX = canvas.clientWidth / 2 - n.x * zoom;
    panY = canvas.clientHeight / 2 - n.y * zoom;
    draw();
  }
}

searchInput.addEventListener('input', () => renderHits(searchInput.value));
searchInput.addEventListener('keydown', ev => {
  const hits = searchResults.querySelectorAll('.search-hit');
  if (ev.key === 'ArrowDown') {
    activeHit = Math.min(activeHit + 1, hits.length - 1);
  } else if (ev.key === 'ArrowUp') {
    activeHit = Math.max(activeHit - 1, 0);
  } else if (ev.key === 'Enter') {
    if (hits[activeHit]) pickHit(hits[activeHit].dataset.id);
    return;
  } else {
    return;
  }
  ev.preventDefault();
  hits.forEach((el, i) => el.classList.toggle('active', i === activeHit));
});

overlay.addEventListener('click', ev => { if (ev.target === overlay) closeSearch(); });

document.getElementById('btn-fit').addEventListener('click', fit);
document.getElementById('btn-reset').addEventListener('click', () => { zoom = 1; draw(); });
document.getElementById('btn-search').addEventListener('click', openSearch);
document.getElementById('btn-path').addEventListener('click', () => highlightPath(document.getElementById('path-input').value));
document.getElementById('btn-clear').addEventListener('click', clearPath);
document.getElementById('path-input').addEventListener('keydown', ev => {
  if (ev.key === 'Enter') highlightPath(ev.target.value);
});

window.addEventListener('keydown', ev => {
  if ((ev.metaKey || ev.ctrlKey) && ev.key.toLowerCase() === 'k') {
    ev.preventDefault();
    openSearch();
    return;
  }
  if (ev.key === 'Escape') {
    if (overlay.classList.contains('visible')) { closeSearch(); return; }
    clearPath();
    select(null);
    return;
  }
  if (ev.target.tagName === 'INPUT') return;
  if (ev.key === 'f' || ev.key === 'F') fit();
  if (ev.key === 'r' || ev.key === 'R') { zoom = 1; draw(); }
});

resize();
if (!SCENE.viewport || !SCENE.viewport.panX) fit();
updatePathStat();
if (selected) select(selected);
</script>
</body>
</html>
`
