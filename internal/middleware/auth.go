package middleware

import (
	"net/http"

	"foodhub-be/internal/auth"
	"foodhub-be/internal/logger"
	"foodhub-be/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenParser is satisfied by *auth.Manager.
type TokenParser interface {
	Parse(token string) (uuid.UUID, bool, error)
}

// Authenticate resolves the session token into the request context or aborts
// with 401.
func Authenticate(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := auth.ExtractAccessToken(c.Request)
		if tokenStr == "" {
			abortUnauthenticated(c)
			return
		}

		userID, admin, err := tokens.Parse(tokenStr)
		if err != nil {
			logger.FromCtx(c.Request.Context()).Debug("rejected session token", zap.Error(err))
			abortUnauthenticated(c)
			return
		}

		c.Request = c.Request.WithContext(utils.SetUserContext(c.Request.Context(), userID, admin))
		c.Next()
	}
}

// RequireOwner only lets restaurant owners (admin flag) through.
func RequireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := utils.GetUserIDFromContext(c.Request.Context()); !ok {
			abortUnauthenticated(c)
			return
		}
		if !utils.IsAdminFromContext(c.Request.Context()) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Only restaurant owners can access this resource",
			})
			return
		}
		c.Next()
	}
}

func abortUnauthenticated(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": "User not authenticated",
	})
}
