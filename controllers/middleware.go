package controllers

import (
	"strings"

	"finboard/api"
	"finboard/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const userIDKey = "userID"

// RequireAuth resolves the bearer token from the Authorization header
// against the access-token table and stores the owning user ID in the
// request context.
func RequireAuth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			api.Unauthorized(c, "missing bearer token")
			return
		}

		accessToken, err := models.GetAccessToken(db, token)
		if err != nil {
			api.Internal(c)
			return
		}
		if accessToken == nil {
			api.Unauthorized(c, "invalid bearer token")
			return
		}

		c.Set(userIDKey, accessToken.UserID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}

	return c.GetHeader("X-User-Token")
}

// CurrentUserID returns the authenticated user ID, or zero outside an
// authorized group.
func CurrentUserID(c *gin.Context) uint {
	return c.GetUint(userIDKey)
}
