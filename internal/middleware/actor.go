package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/clinic-scheduler-api/pkg/logger"
)

// ContextActorKey is the gin context key storing the staff member behind a request.
const ContextActorKey = "currentActor"

const maxActorLength = 128

// Actor reads the caller identity from the actor header. Mutations without one are
// attributed to the system actor downstream.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := strings.TrimSpace(c.GetHeader(logger.ActorHeader))
		if len(actor) > maxActorLength {
			actor = actor[:maxActorLength]
		}
		if actor != "" {
			c.Set(ContextActorKey, actor)
		}
		c.Next()
	}
}

// ActorFromContext returns the identity set by Actor, or an empty string.
func ActorFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(ContextActorKey)
}
