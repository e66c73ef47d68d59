package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/complaint-desk-api/internal/models"
)

// RequestMeta describes the caller of the current request for audit entries.
func RequestMeta(c *gin.Context) models.RequestMeta {
	meta := models.RequestMeta{
		IP:        c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	}
	if claims, ok := Claims(c); ok {
		meta.ActorID = claims.UserID
	}
	return meta
}
