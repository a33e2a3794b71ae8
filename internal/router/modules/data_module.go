package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/anbeck/user-directory/internal/container"
	handlers "github.com/anbeck/user-directory/internal/interface/http"
	"github.com/anbeck/user-directory/internal/interface/middleware"
	"github.com/anbeck/user-directory/pkg/helpers"
)

// DataModule wires bulk CSV import/export under /v1/data. Export is
// available to every authenticated actor (columns are role-gated);
// import is admin-only and throttled to 3 uploads per 5 minutes per IP.
type DataModule struct {
	Handler *handlers.DataHandler
	JWT     *helpers.JWTManager
}

func NewDataModule(h *handlers.DataHandler, jwt *helpers.JWTManager) *DataModule {
	return &DataModule{Handler: h, JWT: jwt}
}

func (m *DataModule) Register(rg *gin.RouterGroup) {
	importLimiter := middleware.RateLimit(container.GetRedis(), 3, 5*time.Minute, middleware.KeyByIPAndPath(), nil)

	data := rg.Group("/v1/data")
	data.Use(middleware.Auth(container.GetRedis(), m.JWT))
	{
		data.GET("/export", m.Handler.Export)
		data.POST("/import", middleware.AdminOnly(), importLimiter, m.Handler.Import)
	}
}
