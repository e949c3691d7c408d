package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stateboard/stateboard-backend/internal/implication_discovery/domain"
	"github.com/stateboard/stateboard-backend/internal/implication_discovery/repository"
	"github.com/stateboard/stateboard-backend/internal/implication_discovery/service"
)

type Handler struct {
	discovery *service.DiscoveryService
	scanRepo  *repository.ScanRepository
}

func NewHandler(discovery *service.DiscoveryService, scanRepo *repository.ScanRepository) *Handler {
	return &Handler{
		discovery: discovery,
		scanRepo:  scanRepo,
	}
}

// Scan runs a full project scan and returns the discovery result.
func (h *Handler) Scan(c *gin.Context) {
	var body struct {
		ProjectPath string `json:"projectPath"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if body.ProjectPath == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "projectPath is required"})
		return
	}

	result, err := h.discovery.Scan(c.Request.Context(), body.ProjectPath)
	if err != nil {
		switch err {
		case domain.ErrProjectNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "project path not found"})
		case domain.ErrScanThrottled:
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "scan throttled, try again shortly"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "scan failed"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// ParseSingleFile re-parses one implication file, the fast path for
// incremental refresh after an edit.
func (h *Handler) ParseSingleFile(c *gin.Context) {
	var body struct {
		FilePath string `json:"filePath"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if body.FilePath == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "filePath is required"})
		return
	}

	file, err := h.discovery.ParseSingleFile(c.Request.Context(), body.FilePath)
	if err != nil {
		switch err {
		case domain.ErrFileNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "implication file not found"})
		case domain.ErrInvalidImplication:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid implication file"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "parse failed"})
		}
		return
	}

	c.JSON(http.StatusOK, file)
}
