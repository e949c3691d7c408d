package http

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	discoverydomain "github.com/stateboard/stateboard-backend/internal/implication_discovery/domain"
	discovery "github.com/stateboard/stateboard-backend/internal/implication_discovery/service"
	"github.com/stateboard/stateboard-backend/internal/state_detail_editing/domain"
	"github.com/stateboard/stateboard-backend/internal/state_detail_editing/service"
	"github.com/stateboard/stateboard-backend/internal/state_detail_editing/writer"
)

type Handler struct {
	discovery *discovery.DiscoveryService
	details   *service.DetailService
	writer    *writer.Writer
}

func NewHandler(d *discovery.DiscoveryService, details *service.DetailService, w *writer.Writer) *Handler {
	return &Handler{
		discovery: d,
		details:   details,
		writer:    w,
	}
}

// StateDetail serves the full detail panel payload for one state.
func (h *Handler) StateDetail(c *gin.Context) {
	projectPath := c.Query("projectPath")
	if projectPath == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "projectPath is required"})
		return
	}

	result, ok := h.loadResult(c, projectPath)
	if !ok {
		return
	}

	detail, err := h.details.Resolve(c.Request.Context(), result, c.Param("id"))
	if err != nil {
		h.editError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// UpdateMetadata saves a metadata edit through a scratch session, so
// only the changed sub-objects reach the file.
func (h *Handler) UpdateMetadata(c *gin.Context) {
	var body struct {
		ProjectPath string                              `json:"projectPath"`
		State       string                              `json:"state"`
		Metadata    discoverydomain.ImplicationMetadata `json:"metadata"`
	}
	if !bindEdit(c, &body, &body.ProjectPath, &body.State) {
		return
	}

	result, ok := h.loadResult(c, body.ProjectPath)
	if !ok {
		return
	}

	detail, err := h.details.Resolve(c.Request.Context(), result, body.State)
	if err != nil {
		h.editError(c, err)
		return
	}

	sn := h.details.Begin(detail)
	sn.ApplyMetadata(body.Metadata)
	if err := h.details.Save(c.Request.Context(), result, sn); err != nil {
		h.editError(c, err)
		return
	}

	h.refresh(c.Request.Context(), detail.FilePath)
	c.JSON(http.StatusOK, gin.H{"state": detail.ID, "filePath": detail.FilePath})
}

// UpdateContext saves a context-schema edit. Context-only changes
// refresh just the affected state instead of forcing a rescan.
func (h *Handler) UpdateContext(c *gin.Context) {
	var body struct {
		ProjectPath string                        `json:"projectPath"`
		State       string                        `json:"state"`
		Context     []discoverydomain.ContextField `json:"context"`
	}
	if !bindEdit(c, &body, &body.ProjectPath, &body.State) {
		return
	}

	result, ok := h.loadResult(c, body.ProjectPath)
	if !ok {
		return
	}

	detail, err := h.details.Resolve(c.Request.Context(), result, body.State)
	if err != nil {
		h.editError(c, err)
		return
	}

	sn := h.details.Begin(detail)
	sn.ApplyContext(body.Context)
	if err := h.details.Save(c.Request.Context(), result, sn); err != nil {
		h.editError(c, err)
		return
	}

	h.refresh(c.Request.Context(), detail.FilePath)
	c.JSON(http.StatusOK, gin.H{"state": detail.ID, "filePath": detail.FilePath})
}

func (h *Handler) UpdateTransition(c *gin.Context) {
	var body struct {
		ProjectPath string                 `json:"projectPath"`
		From        string                 `json:"from"`
		To          string                 `json:"to"`
		Event       string                 `json:"event"`
		Patch       domain.TransitionPatch `json:"patch"`
	}
	if !bindEdit(c, &body, &body.ProjectPath, &body.From, &body.To, &body.Event) {
		return
	}

	result, ok := h.loadResult(c, body.ProjectPath)
	if !ok {
		return
	}

	path, err := h.writer.UpdateTransition(c.Request.Context(), result, body.From, body.To, body.Event, body.Patch)
	if err != nil {
		h.editError(c, err)
		return
	}

	h.refresh(c.Request.Context(), path)
	c.JSON(http.StatusOK, gin.H{"filePath": path})
}

func (h *Handler) DeleteTransition(c *gin.Context) {
	var body struct {
		ProjectPath string `json:"projectPath"`
		From        string `json:"from"`
		To          string `json:"to"`
		Event       string `json:"event"`
	}
	if !bindEdit(c, &body, &body.ProjectPath, &body.From, &body.To, &body.Event) {
		return
	}

	result, ok := h.loadResult(c, body.ProjectPath)
	if !ok {
		return
	}

	path, err := h.writer.DeleteTransition(c.Request.Context(), result, body.From, body.To, body.Event)
	if err != nil {
		h.editError(c, err)
		return
	}

	h.refresh(c.Request.Context(), path)
	c.JSON(http.StatusOK, gin.H{"filePath": path})
}

func (h *Handler) AddTransition(c *gin.Context) {
	var body struct {
		ProjectPath   string   `json:"projectPath"`
		From          string   `json:"from"`
		To            string   `json:"to"`
		Event         string   `json:"event"`
		Platforms     []string `json:"platforms"`
		Requires      string   `json:"requires"`
		Conditions    []string `json:"conditions"`
		ActionDetails []string `json:"actionDetails"`
	}
	if !bindEdit(c, &body, &body.ProjectPath, &body.From, &body.To, &body.Event) {
		return
	}

	result, ok := h.loadResult(c, body.ProjectPath)
	if !ok {
		return
	}

	path, err := h.writer.AddTransition(c.Request.Context(), result, discoverydomain.Transition{
		From:          body.From,
		To:            body.To,
		Event:         body.Event,
		Platforms:     body.Platforms,
		Requires:      body.Requires,
		Conditions:    body.Conditions,
		ActionDetails: body.ActionDetails,
	})
	if err != nil {
		h.editError(c, err)
		return
	}

	h.refresh(c.Request.Context(), path)
	c.JSON(http.StatusCreated, gin.H{"filePath": path})
}

func (h *Handler) CreateState(c *gin.Context) {
	var body struct {
		ProjectPath string                               `json:"projectPath"`
		Name        string                               `json:"name"`
		Metadata    *discoverydomain.ImplicationMetadata `json:"metadata"`
	}
	if !bindEdit(c, &body, &body.ProjectPath, &body.Name) {
		return
	}

	result, ok := h.loadResult(c, body.ProjectPath)
	if !ok {
		return
	}

	path, err := h.writer.CreateState(c.Request.Context(), result, body.Name, body.Metadata)
	if err != nil {
		h.editError(c, err)
		return
	}

	h.refresh(c.Request.Context(), path)
	c.JSON(http.StatusCreated, gin.H{"state": body.Name, "filePath": path})
}

// bindEdit binds the JSON body and 400s when any required field is
// empty. The required pointers must point into the bound struct.
func bindEdit(c *gin.Context, body any, required ...*string) bool {
	if err := c.ShouldBindJSON(body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	for _, f := range required {
		if *f == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing required field"})
			return false
		}
	}
	return true
}

func (h *Handler) loadResult(c *gin.Context, projectPath string) (*discoverydomain.DiscoveryResult, bool) {
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
		return nil, false
	}
	return result, true
}

// refresh re-parses the rewritten file so the cached discovery result
// reflects the edit without a full rescan.
func (h *Handler) refresh(ctx context.Context, path string) {
	if _, err := h.discovery.ParseSingleFile(ctx, path); err != nil {
		log.Printf("[editing] refresh %s after edit: %v", path, err)
	}
}

func (h *Handler) editError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	var perr *domain.PartialSaveError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message, "field": verr.Field})
	case errors.As(err, &perr):
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   perr.Error(),
			"written": perr.Written,
			"failed":  perr.Failed,
		})
	case errors.Is(err, domain.ErrStateNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "state not found"})
	case errors.Is(err, domain.ErrTransitionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "transition not found"})
	case errors.Is(err, domain.ErrSaveInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": "save already in flight, retry shortly"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "edit failed"})
	}
}
