package http

import "github.com/gin-gonic/gin"

// Register registers the discovery routes
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/scan", h.Scan)
	rg.POST("/parse-single-file", h.ParseSingleFile)
	rg.GET("/events", h.StreamEvents)
}
