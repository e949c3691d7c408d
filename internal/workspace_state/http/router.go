package http

import "github.com/gin-gonic/gin"

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.All)
	rg.PUT("/:key", h.Put)
	rg.DELETE("/:key", h.Delete)
}
