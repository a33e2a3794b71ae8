package router

import (
	"github.com/anbeck/user-directory/internal/application"
	"github.com/anbeck/user-directory/internal/container"
	"github.com/anbeck/user-directory/internal/csv"
	pginfra "github.com/anbeck/user-directory/internal/infrastructure/postgres"
	handlers "github.com/anbeck/user-directory/internal/interface/http"
	"github.com/anbeck/user-directory/internal/router/modules"
)

// InitModules builds every feature module from container singletons and
// registers them with the router registry. Called once at startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	pool := container.GetPGPool()

	userRepo := pginfra.NewUserRepository(pool)
	accountRepo := pginfra.NewAccountRepository(pool)

	userSvc := application.NewUserService(userRepo, logger, container.GetES(), cfg.ESUsersIndex)

	// The audit broker is optional; keep the interface nil when no
	// publisher was constructed so services skip it cleanly.
	var audit application.AuditPublisher
	if pub := container.GetRabbitPub(); pub != nil {
		audit = pub
	}
	directorySvc := application.NewDirectoryService(userRepo, csv.NewImporter(nil), userSvc, logger, audit)

	authSvc := application.NewAuthService(accountRepo, container.GetJWT(), container.GetRedis(), logger)

	r.Add(modules.NewUserModule(handlers.NewUserHandler(userSvc, logger), container.GetJWT()))
	r.Add(modules.NewDataModule(handlers.NewDataHandler(directorySvc, logger), container.GetJWT()))
	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(authSvc, logger, cfg.CookieDomain, cfg.CookieSecure), container.GetJWT()))
}
