package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/anbeck/user-directory/internal/container"
	handlers "github.com/anbeck/user-directory/internal/interface/http"
	"github.com/anbeck/user-directory/internal/interface/middleware"
	"github.com/anbeck/user-directory/pkg/helpers"
)

// AuthModule wires registration and the token lifecycle under /v1/auth.
type AuthModule struct {
	Handler *handlers.AuthHandler
	JWT     *helpers.JWTManager
}

func NewAuthModule(h *handlers.AuthHandler, jwt *helpers.JWTManager) *AuthModule {
	return &AuthModule{Handler: h, JWT: jwt}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)
	refreshLimiter := middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByIP(), nil)

	auth := rg.Group("/v1/auth")
	{
		auth.POST("/register", loginLimiter, m.Handler.Register)
		auth.POST("/login", loginLimiter, m.Handler.Login)
		auth.POST("/refresh", refreshLimiter, m.Handler.Refresh)

		protected := auth.Group("/")
		protected.Use(middleware.Auth(container.GetRedis(), m.JWT))
		protected.POST("/logout", m.Handler.Logout)
	}
}
