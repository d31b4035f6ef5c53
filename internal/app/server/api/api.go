//POST /api/auth/register        # Register (public)
//POST /api/auth/login           # Login (public)
//POST /api/users/change-password # Change password (auth)
//GET  /api/users/me             # Profile (auth)
//CRUD /api/items                # Items (auth)
//CRUD /api/templates            # Templates (auth)

package api

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"

	serverauth "cogniflow/internal/app/server/auth"
	"cogniflow/internal/app/server/config"

	healthAPI "cogniflow/internal/app/server/api/http/health"
	itemAPI "cogniflow/internal/app/server/api/http/item"
	"cogniflow/internal/app/server/api/http/middleware"
	"cogniflow/internal/app/server/api/http/middleware/auth"
	"cogniflow/internal/app/server/api/http/middleware/logger"
	templateAPI "cogniflow/internal/app/server/api/http/template"
	userAPI "cogniflow/internal/app/server/api/http/user"

	"cogniflow/internal/domain/item"
	"cogniflow/internal/domain/template"
	"cogniflow/internal/domain/user"
	"cogniflow/internal/infrastructure/storage/postgres"
)

type Handlers struct {
	Health   *healthAPI.Handler
	User     *userAPI.Handler
	Item     *itemAPI.Handler
	Template *templateAPI.Handler
}

// New builds a *chi.Mux with every operation registered via huma.
func New(storage *postgres.Storage, cfg *config.Config, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()

	humaConfig := huma.DefaultConfig("CogniFlow API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {Type: "http", Scheme: "bearer"},
	}

	API := humachi.New(mux, humaConfig)

	h := handlers(storage, cfg, log)
	h.Health.SetupRoutes(API)
	h.User.SetupRoutes(API)
	h.Item.SetupRoutes(API)
	h.Template.SetupRoutes(API)

	return mux
}

func handlers(storage *postgres.Storage, cfg *config.Config, log *slog.Logger) *Handlers {
	tokens := serverauth.NewTokens([]byte(cfg.Auth.Secret), cfg.Auth.TokenTTL)
	authMW := auth.New(tokens, log)
	loggerMW := logger.New(log)
	middlewares := middleware.NewContainer()

	middlewares.Add(loggerMW.Middleware())
	healthHandler := healthAPI.NewHandler(log, storage, middlewares.GetAllAndClear())

	templateRepo := postgres.NewTemplateRepository(storage.Pool(), log)
	templateService := template.NewService(templateRepo, log)

	userRepo := postgres.NewUserRepository(storage.Pool(), log)
	userService := user.NewService(userRepo, log)
	middlewares.Add(loggerMW.Middleware())
	public := middlewares.GetAllAndClear()
	middlewares.Add(authMW.Middleware())
	middlewares.Add(loggerMW.Middleware())
	userHandler := userAPI.NewHandler(userService, templateService, tokens, log, public, middlewares.GetAllAndClear())

	itemRepo := postgres.NewItemRepository(storage.Pool(), log)
	activityRepo := postgres.NewActivityRepository(storage.Pool(), log)
	itemService := item.NewService(itemRepo, activityRepo, item.NewPairwiseDetector(), log)
	middlewares.Add(authMW.Middleware())
	middlewares.Add(loggerMW.Middleware())
	itemHandler := itemAPI.NewHandler(itemService, log, middlewares.GetAllAndClear())

	middlewares.Add(authMW.Middleware())
	middlewares.Add(loggerMW.Middleware())
	templateHandler := templateAPI.NewHandler(templateService, log, middlewares.GetAllAndClear())

	return &Handlers{
		Health:   healthHandler,
		User:     userHandler,
		Item:     itemHandler,
		Template: templateHandler,
	}
}
