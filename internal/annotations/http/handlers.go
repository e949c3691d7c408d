package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stateboard/stateboard-backend/internal/annotations/domain"
	"github.com/stateboard/stateboard-backend/internal/annotations/service"
)

type Handler struct {
	notes *service.NoteService
}

func NewHandler(notes *service.NoteService) *Handler {
	return &Handler{notes: notes}
}

type noteBody struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
	Ticket   string `json:"ticket"`
	Status   string `json:"status"`
}

func (h *Handler) List(c *gin.Context) {
	targetType := c.Query("targetType")
	targetKey := c.Query("targetKey")
	if targetType == "" || targetKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "targetType and targetKey are required"})
		return
	}

	notes, err := h.notes.ByTarget(c.Request.Context(), targetType, targetKey)
	if err != nil {
		h.noteError(c, err)
		return
	}
	c.JSON(http.StatusOK, notes)
}

func (h *Handler) Create(c *gin.Context) {
	var body noteBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	note, err := h.notes.Create(c.Request.Context(), domain.Note{
		TargetType: c.Param("type"),
		TargetKey:  c.Param("key"),
		Title:      body.Title,
		Content:    body.Content,
		Category:   body.Category,
		Ticket:     body.Ticket,
		Status:     body.Status,
	})
	if err != nil {
		h.noteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, note)
}

func (h *Handler) Update(c *gin.Context) {
	var body noteBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	note, err := h.notes.Update(c.Request.Context(), c.Param("id"), domain.Note{
		Title:    body.Title,
		Content:  body.Content,
		Category: body.Category,
		Ticket:   body.Ticket,
		Status:   body.Status,
	})
	if err != nil {
		h.noteError(c, err)
		return
	}
	c.JSON(http.StatusOK, note)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.notes.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.noteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) noteError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message, "field": verr.Field})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "note not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "note operation failed"})
	}
}
