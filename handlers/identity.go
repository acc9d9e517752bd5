package handlers

import (
	"net/http"

	"lexcase-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Identity headers. Authentication itself lives in the gateway in front of
// this service; it forwards the verified caller in these headers. A request
// without them is served anonymously under an ephemeral user ID.
const (
	headerUserID   = "X-User-ID"
	headerUserRole = "X-User-Role"
)

// callerIdentity resolves the caller from the forwarded identity headers
func callerIdentity(c *gin.Context) models.Identity {
	idStr := c.GetHeader(headerUserID)
	if idStr == "" {
		return models.Anonymous(uuid.New())
	}
	userID, err := uuid.Parse(idStr)
	if err != nil {
		return models.Anonymous(uuid.New())
	}
	return models.Authenticated(userID)
}

// isAdmin reports whether the gateway marked the caller as an admin
func isAdmin(c *gin.Context) bool {
	return c.GetHeader(headerUserRole) == string(models.RoleAdmin)
}

// requireAdmin aborts non-admin requests with 403
func requireAdmin(c *gin.Context) bool {
	if !isAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Admin role required",
			},
		})
		return false
	}
	return true
}

// parseIDParam parses a UUID path parameter, writing a 400 on failure
func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid " + name + " format",
			},
		})
		return uuid.Nil, false
	}
	return id, true
}
