package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-period-api/internal/middleware"
)

const anonymousActor = "anonymous"

// actorFromContext names the token subject of the request for auditing fields.
func actorFromContext(c *gin.Context) string {
	claims := middleware.Claims(c)
	if claims == nil || claims.Subject == "" {
		return anonymousActor
	}
	return claims.Subject
}
