package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/anbeck/user-directory/internal/domain/entity"
	"github.com/anbeck/user-directory/pkg/helpers"
	"github.com/anbeck/user-directory/pkg/response"
)

// Context keys set on successful authentication.
const (
	CtxAccountIDKey = "accountID"
	CtxRoleKey      = "accountRole"
	CtxAdminKey     = "isAdmin"
)

// Auth validates the access token cookie and ensures an active session
// exists in Redis. The actor's role and admin capability land in the
// Gin context so downstream handlers can pass them into the pipeline
// explicitly.
func Auth(rdb *redis.Client, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie("access_token")
		if err != nil || token == "" {
			response.Error[any](c, http.StatusUnauthorized, "missing access token", nil)
			c.Abort()
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "invalid access token", err.Error())
			c.Abort()
			return
		}

		if rdb != nil {
			key := "account:session:" + claims.UserID
			data, err := rdb.HGetAll(c.Request.Context(), key).Result()
			if err != nil || len(data) == 0 {
				response.Error[any](c, http.StatusUnauthorized, "session not found", nil)
				c.Abort()
				return
			}
		}

		c.Set(CtxAccountIDKey, claims.UserID)
		c.Set(CtxRoleKey, claims.Role)
		c.Set(CtxAdminKey, claims.Role == entity.RoleAdmin)
		c.Next()
	}
}

// AdminOnly aborts with 403 unless Auth established the admin
// capability for this request.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(CtxAdminKey) {
			response.Error[any](c, http.StatusForbidden, "Admin access required", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// IsAdmin reports the admin capability established by Auth.
func IsAdmin(c *gin.Context) bool { return c.GetBool(CtxAdminKey) }
