package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stateboard/stateboard-backend/internal/workspace_state/domain"
	"github.com/stateboard/stateboard-backend/internal/workspace_state/repository"
)

type Handler struct {
	workspace *repository.Repository
}

func NewHandler(workspace *repository.Repository) *Handler {
	return &Handler{workspace: workspace}
}

// All serves every present workspace entry so a reloading dashboard
// resumes where it left off without a rescan.
func (h *Handler) All(c *gin.Context) {
	entries, err := h.workspace.All(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load workspace"})
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *Handler) Put(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return
	}
	if !json.Valid(raw) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be valid JSON"})
		return
	}

	if err := h.workspace.SetRaw(c.Request.Context(), c.Param("key"), raw); err != nil {
		if errors.Is(err, domain.ErrUnknownKey) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown workspace key"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store entry"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.workspace.Delete(c.Request.Context(), c.Param("key")); err != nil {
		if errors.Is(err, domain.ErrUnknownKey) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown workspace key"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete entry"})
		return
	}
	c.Status(http.StatusNoContent)
}
