package http

import "github.com/gin-gonic/gin"

// Register mounts the detail and edit routes on the implications group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/state/:id", h.StateDetail)
	rg.POST("/update-metadata", h.UpdateMetadata)
	rg.POST("/update-context", h.UpdateContext)
	rg.POST("/update-transition", h.UpdateTransition)
	rg.POST("/delete-transition", h.DeleteTransition)
	rg.POST("/add-transition", h.AddTransition)
	rg.POST("/create-state", h.CreateState)
}
