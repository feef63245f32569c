package auth

import (
	"net/http"
	"strings"

	"github.com/barkshad/Real-estate/internal/models"
	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

// BearerToken extracts the token from the Authorization header
func BearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

// RequireActor rejects requests without a valid session token
func RequireActor(svc *Service, policy RolePolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		identity, err := svc.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		c.Set(actorKey, ActorFor(policy, *identity))
		c.Next()
	}
}

// OptionalActor attaches the actor when a valid token is present
func OptionalActor(svc *Service, policy RolePolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := BearerToken(c); token != "" {
			if identity, err := svc.Verify(token); err == nil {
				c.Set(actorKey, ActorFor(policy, *identity))
			}
		}
		c.Next()
	}
}

// RequireRole must run after RequireActor
func RequireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok || actor.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// ActorFrom returns the actor set by the middleware
func ActorFrom(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return nil, false
	}
	actor, ok := v.(*models.User)
	return actor, ok && actor != nil
}
