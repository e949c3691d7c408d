package http

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stateboard/stateboard-backend/internal/authoring_suggestions/analyzer"
	discoverydomain "github.com/stateboard/stateboard-backend/internal/implication_discovery/domain"
	"github.com/stateboard/stateboard-backend/internal/implication_discovery/service"
	workspace "github.com/stateboard/stateboard-backend/internal/workspace_state/domain"
)

// ProjectResolver supplies the most recently used project path so an
// analysis request may omit projectPath after a reload.
type ProjectResolver interface {
	LastProjectPath(ctx context.Context) (string, bool)
}

// ResultCache persists the latest analysis so a reloading dashboard can
// show suggestions without a rescan.
type ResultCache interface {
	Set(ctx context.Context, key string, value any) error
}

type Handler struct {
	discovery *service.DiscoveryService
	cache     ResultCache
	projects  ProjectResolver
}

func NewHandler(d *service.DiscoveryService, cache ResultCache, projects ProjectResolver) *Handler {
	return &Handler{
		discovery: d,
		cache:     cache,
		projects:  projects,
	}
}

// Analysis runs every registered analyzer over the project's current
// discovery result.
func (h *Handler) Analysis(c *gin.Context) {
	projectPath := c.Query("projectPath")
	if projectPath == "" && h.projects != nil {
		if pp, ok := h.projects.LastProjectPath(c.Request.Context()); ok {
			projectPath = pp
		}
	}
	if projectPath == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "projectPath is required"})
		return
	}

	result, err := h.discovery.Result(c.Request.Context(), projectPath)
	if err != nil {
		switch err {
		case discoverydomain.ErrProjectNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "project path not found"})
		case discoverydomain.ErrScanThrottled:
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "scan throttled, try again shortly"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load discovery result"})
		}
		return
	}

	analysis := analyzer.Run(result)
	if h.cache != nil {
		if err := h.cache.Set(c.Request.Context(), workspace.KeyLastAnalysisResult, analysis); err != nil {
			log.Printf("[suggestions] cache analysis result: %v", err)
		}
	}

	c.JSON(http.StatusOK, analysis)
}
