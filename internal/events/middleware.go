package events

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gatherly/backend/internal/authz"
	"github.com/gatherly/backend/internal/middleware"
	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/pkg/errs"
	"github.com/gatherly/backend/pkg/response"
)

// ContextEventRole is the gin context key for the caller's effective event role.
const ContextEventRole = "event_role"

// RequireEventRole returns a middleware that resolves the caller's effective
// role on the :id event and allows only the given roles. With no roles
// given, any effective role passes. Call after JWT. Predicates compose in
// route order: JWT first, then this, then the handler.
func RequireEventRole(resolver *authz.Resolver, roles ...models.EventRole) gin.HandlerFunc {
	allowed := make(map[models.EventRole]struct{})
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		eventID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			response.BadRequest(c, "invalid event id")
			c.Abort()
			return
		}
		userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
		role, err := resolver.EventRole(c.Request.Context(), eventID, userID)
		if err != nil {
			if errs.IsKind(err, errs.KindNotFound) {
				response.NotFound(c, "event not found")
			} else {
				response.Internal(c, "failed to resolve event role")
			}
			c.Abort()
			return
		}
		if role == "" {
			response.Forbidden(c, "no access to this event")
			c.Abort()
			return
		}
		if len(allowed) > 0 {
			if _, ok := allowed[role]; !ok {
				response.Forbidden(c, "insufficient event role")
				c.Abort()
				return
			}
		}
		c.Set(ContextEventRole, role)
		c.Next()
	}
}
