package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/anbeck/user-directory/internal/container"
	handlers "github.com/anbeck/user-directory/internal/interface/http"
	"github.com/anbeck/user-directory/internal/interface/middleware"
	"github.com/anbeck/user-directory/pkg/helpers"
)

// UserModule wires the directory CRUD routes under /v1/users. All
// routes require authentication; mutations and search are admin-only.
type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager) *UserModule {
	return &UserModule{Handler: h, JWT: jwt}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/v1/users")
	users.Use(middleware.Auth(container.GetRedis(), m.JWT))
	{
		users.GET("", m.Handler.List)
		users.GET("/:id", m.Handler.Get)

		admin := users.Group("/")
		admin.Use(middleware.AdminOnly())
		{
			admin.POST("", m.Handler.Create)
			admin.PATCH("/:id", m.Handler.Update)
			admin.DELETE("/:id", m.Handler.Delete)
			admin.PATCH("/:id/block", m.Handler.Block)
			admin.PATCH("/:id/unblock", m.Handler.Unblock)
		}
	}

	// Separate prefix: a static /users/search sibling would conflict
	// with the :id wildcard above.
	search := rg.Group("/v1/search")
	search.Use(middleware.Auth(container.GetRedis(), m.JWT), middleware.AdminOnly())
	search.GET("/users", m.Handler.Search)
}
