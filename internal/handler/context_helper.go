package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/GavrielUnict/elearning-platform/internal/middleware"
	"github.com/GavrielUnict/elearning-platform/internal/models"
)

func identityFromContext(c *gin.Context) (models.Identity, bool) {
	value, exists := c.Get(middleware.ContextIdentityKey)
	if !exists {
		return models.Identity{}, false
	}
	identity, ok := value.(models.Identity)
	return identity, ok
}
