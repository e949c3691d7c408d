package http

import "github.com/gin-gonic/gin"

// Register mounts the graph routes on the implications group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/graph", h.Graph)
	rg.POST("/graph/scene", h.Scene)
	rg.GET("/graph/layout", h.GetLayout)
	rg.POST("/graph/layout", h.SaveLayout)
	rg.DELETE("/graph/layout", h.DeleteLayout)
	rg.GET("/search", h.Search)
}

// RegisterTheme mounts the theme route on the top-level api group.
func (h *Handler) RegisterTheme(rg *gin.RouterGroup) {
	rg.GET("/theme", h.Theme)
}
