package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	discoverydomain "github.com/stateboard/stateboard-backend/internal/implication_discovery/domain"
	"github.com/stateboard/stateboard-backend/internal/implication_discovery/service"
	"github.com/stateboard/stateboard-backend/internal/implication_graph/build"
	"github.com/stateboard/stateboard-backend/internal/implication_graph/domain"
	"github.com/stateboard/stateboard-backend/internal/implication_graph/layout"
	"github.com/stateboard/stateboard-backend/internal/implication_graph/scene"
	"github.com/stateboard/stateboard-backend/internal/implication_graph/theme"
)

const searchLimit = 50

// ProjectResolver supplies the most recently used project path so
// graph and search requests may omit projectPath after a reload.
type ProjectResolver interface {
	LastProjectPath(ctx context.Context) (string, bool)
}

type Handler struct {
	discovery *service.DiscoveryService
	layouts   *layout.Repository
	theme     *theme.Theme
	projects  ProjectResolver
}

func NewHandler(discovery *service.DiscoveryService, layouts *layout.Repository, th *theme.Theme, projects ProjectResolver) *Handler {
	if th == nil {
		th = theme.Default()
	}
	return &Handler{
		discovery: discovery,
		layouts:   layouts,
		theme:     th,
		projects:  projects,
	}
}

// resolveProject falls back to the workspace's last project path when
// the request omits one. Writes the 400 response itself on failure.
func (h *Handler) resolveProject(c *gin.Context, explicit string) (string, bool) {
	if explicit != "" {
		return explicit, true
	}
	if h.projects != nil {
		if pp, ok := h.projects.LastProjectPath(c.Request.Context()); ok {
			return pp, true
		}
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "projectPath is required"})
	return "", false
}

// Graph builds the implication graph for a project from its latest
// discovery result.
func (h *Handler) Graph(c *gin.Context) {
	var body struct {
		ProjectPath string `json:"projectPath"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	projectPath, ok := h.resolveProject(c, body.ProjectPath)
	if !ok {
		return
	}

	result, err := h.discovery.Result(c.Request.Context(), projectPath)
	if err != nil {
		h.discoveryError(c, err)
		return
	}

	c.JSON(http.StatusOK, build.FromDiscovery(result))
}

// Scene computes the renderable scene: styled nodes and edges, group
// boxes, saved layout applied, optional path highlight.
func (h *Handler) Scene(c *gin.Context) {
	var body struct {
		ProjectPath string   `json:"projectPath"`
		Filters     []string `json:"filters"`
		Selection   string   `json:"selection"`
		PathTarget  string   `json:"pathTarget"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if body.ProjectPath == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "projectPath is required"})
		return
	}

	result, err := h.discovery.Result(c.Request.Context(), body.ProjectPath)
	if err != nil {
		h.discoveryError(c, err)
		return
	}
	g := build.FromDiscovery(result)

	saved, err := h.layouts.Get(c.Request.Context(), body.ProjectPath)
	if err != nil && err != domain.ErrNoLayout {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load layout"})
		return
	}

	sc := scene.Compute(g, scene.Options{
		Theme:      h.theme,
		Filters:    body.Filters,
		Layout:     saved,
		Selection:  body.Selection,
		PathTarget: body.PathTarget,
	})
	c.JSON(http.StatusOK, sc)
}

func (h *Handler) GetLayout(c *gin.Context) {
	projectPath := c.Query("projectPath")
	if projectPath == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "projectPath is required"})
		return
	}

	saved, err := h.layouts.Get(c.Request.Context(), projectPath)
	if err != nil {
		if err == domain.ErrNoLayout {
			c.JSON(http.StatusNotFound, gin.H{"error": "no saved layout"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load layout"})
		return
	}

	c.JSON(http.StatusOK, saved)
}

func (h *Handler) SaveLayout(c *gin.Context) {
	var body struct {
		ProjectPath string                     `json:"projectPath"`
		Positions   map[string]domain.Position `json:"positions"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if body.ProjectPath == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "projectPath is required"})
		return
	}
	if body.Positions == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "positions is required"})
		return
	}

	if err := h.layouts.Save(c.Request.Context(), body.ProjectPath, body.Positions); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save layout"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) DeleteLayout(c *gin.Context) {
	projectPath := c.Query("projectPath")
	if projectPath == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "projectPath is required"})
		return
	}

	if err := h.layouts.Delete(c.Request.Context(), projectPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete layout"})
		return
	}

	c.Status(http.StatusNoContent)
}

// Search matches states and transitions by substring.
func (h *Handler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}
	projectPath, ok := h.resolveProject(c, c.Query("projectPath"))
	if !ok {
		return
	}

	result, err := h.discovery.Result(c.Request.Context(), projectPath)
	if err != nil {
		h.discoveryError(c, err)
		return
	}

	c.JSON(http.StatusOK, build.Search(build.FromDiscovery(result), query, searchLimit))
}

// Theme serves the active theme so external renderers and exported
// dashboards use the same styling tables.
func (h *Handler) Theme(c *gin.Context) {
	c.JSON(http.StatusOK, h.theme)
}

func (h *Handler) discoveryError(c *gin.Context, err error) {
	switch err {
	case discoverydomain.ErrProjectNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "project path not found"})
	case discoverydomain.ErrScanThrottled:
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "scan throttled, try again shortly"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load discovery result"})
	}
}
