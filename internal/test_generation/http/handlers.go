package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	discoverydomain "github.com/stateboard/stateboard-backend/internal/implication_discovery/domain"
	"github.com/stateboard/stateboard-backend/internal/implication_discovery/service"
	"github.com/stateboard/stateboard-backend/internal/test_generation/generator"
	"github.com/stateboard/stateboard-backend/internal/test_generation/repository"
)

type Handler struct {
	locks     *repository.LockStore
	generator *generator.Generator
	discovery *service.DiscoveryService
}

func NewHandler(locks *repository.LockStore, gen *generator.Generator, d *service.DiscoveryService) *Handler {
	return &Handler{
		locks:     locks,
		generator: gen,
		discovery: d,
	}
}

// ListByState serves the lock rows for a state's derived test files.
func (h *Handler) ListByState(c *gin.Context) {
	locks, err := h.locks.ListByState(c.Request.Context(), c.Param("state"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load locks"})
		return
	}
	c.JSON(http.StatusOK, locks)
}

func (h *Handler) Toggle(c *gin.Context) {
	var body struct {
		TestFile string `json:"testFile"`
		Reason   string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || strings.TrimSpace(body.TestFile) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "testFile is required"})
		return
	}

	lock, err := h.locks.Toggle(c.Request.Context(), body.TestFile, body.Reason)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to toggle lock"})
		return
	}
	c.JSON(http.StatusOK, lock)
}

// GenerateTests renders skeletons for every stateful implication in
// the project, honoring locks.
func (h *Handler) GenerateTests(c *gin.Context) {
	var body struct {
		ProjectPath string `json:"projectPath"`
		OutDir      string `json:"outDir"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.ProjectPath == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "projectPath is required"})
		return
	}

	result, err := h.discovery.Result(c.Request.Context(), body.ProjectPath)
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

	summary, err := h.generator.Generate(c.Request.Context(), result, body.OutDir)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "test generation failed"})
		return
	}
	c.JSON(http.StatusOK, summary)
}
