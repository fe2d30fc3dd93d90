package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health godoc
// @Summary      Health check
// @Description  Reports that the API is up and whether manual collection is available
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	collector := "disabled"
	if h.collector != nil {
		collector = "enabled"
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "collector": collector})
}
