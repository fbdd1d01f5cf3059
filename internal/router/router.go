package router

import (
	"fmt"

	"github.com/PepegaBoss/foodgram-project-react/internal/handlers"
	"github.com/PepegaBoss/foodgram-project-react/internal/middleware"
	"github.com/PepegaBoss/foodgram-project-react/internal/repositories"
	"github.com/PepegaBoss/foodgram-project-react/pkg/cache"
	"github.com/PepegaBoss/foodgram-project-react/pkg/config"
	"github.com/PepegaBoss/foodgram-project-react/pkg/logger"
	"github.com/PepegaBoss/foodgram-project-react/pkg/storage"
	"github.com/PepegaBoss/foodgram-project-react/validators"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Dependencies are the external resources the routes are built on. Redis and
// Firebase are optional.
type Dependencies struct {
	Config   *config.Config
	Postgres *gorm.DB
	Redis    *redis.Client
	Images   storage.Store
	Firebase handlers.FirebaseVerifier
}

// New creates an Echo instance with global middleware, the error handler,
// the validator and every route installed.
func New(deps Dependencies) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = handlers.HTTPErrorHandler

	e.Use(middleware.PrometheusMiddleware())
	config.SetupMiddleware(e)

	if err := SetupRoutes(e, deps); err != nil {
		return nil, err
	}
	return e, nil
}

// SetupRoutes migrates the schema and configures all application routes
func SetupRoutes(e *echo.Echo, deps Dependencies) error {
	if err := repositories.Migrate(deps.Postgres); err != nil {
		return fmt.Errorf("failed to auto migrate models: %w", err)
	}
	logger.L.Info("database auto-migrations completed")

	cfg := deps.Config
	refCache, denylist := cache.New(deps.Redis)

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(deps.Postgres)
	followRepo := repositories.NewPostgresFollowRepository(deps.Postgres)
	tagRepo := repositories.NewPostgresTagRepository(deps.Postgres, refCache, cfg.Redis.CacheTTL)
	ingredientRepo := repositories.NewPostgresIngredientRepository(deps.Postgres, refCache, cfg.Redis.CacheTTL)
	recipeRepo := repositories.NewPostgresRecipeRepository(deps.Postgres)
	favoriteRepo := repositories.NewFavoriteRepository(deps.Postgres)
	cartRepo := repositories.NewShoppingCartRepository(deps.Postgres)

	tokens := middleware.NewTokenAuth(cfg.JWTSecret, denylist)
	projector := handlers.NewRecipeProjector(favoriteRepo, cartRepo, followRepo, cfg.Media.BaseURL)

	// Every /api route sees the caller when a token is sent; handlers that
	// need one add RequireAuth.
	api := e.Group("/api")
	api.Use(tokens.JWTAuthMiddleware())

	authHandler := handlers.NewAuthHandler(userRepo, tokens, deps.Firebase, cfg.JWTTTL)
	authHandler.RegisterAuthRoutes(api.Group("/auth"))

	userHandler := handlers.NewUserHandler(userRepo, followRepo, cfg.PageSize)
	userHandler.RegisterUserRoutes(api)

	followHandler := handlers.NewFollowHandler(followRepo, userRepo, recipeRepo, projector, cfg.PageSize)
	followHandler.RegisterFollowRoutes(api)

	catalogHandler := handlers.NewCatalogHandler(tagRepo, ingredientRepo)
	catalogHandler.RegisterCatalogRoutes(api)

	recipeHandler := handlers.NewRecipeHandler(recipeRepo, tagRepo, ingredientRepo, deps.Images, projector, cfg.PageSize)
	recipeHandler.RegisterRecipeRoutes(api)

	membershipHandler := handlers.NewMembershipHandler(favoriteRepo, cartRepo, recipeRepo, projector)
	membershipHandler.RegisterMembershipRoutes(api)

	logger.L.Info("all routes configured")
	return nil
}
