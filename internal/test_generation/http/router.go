package http

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterLocks(rg *gin.RouterGroup) {
	rg.GET("/state/:state", h.ListByState)
	rg.POST("/toggle", h.Toggle)
}

func (h *Handler) RegisterGeneration(rg *gin.RouterGroup) {
	rg.POST("/tests", h.GenerateTests)
}
