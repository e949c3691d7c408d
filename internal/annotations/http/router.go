package http

import "github.com/gin-gonic/gin"

// Register mounts the note CRUD routes on the notes group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("/:type/:key", h.Create)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}
