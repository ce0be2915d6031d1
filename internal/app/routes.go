package app

import (
	"context"

	"github.com/Codedeveloper-MT/Vigilent-login/internal/auth"
	"github.com/Codedeveloper-MT/Vigilent-login/internal/cache"
	"github.com/Codedeveloper-MT/Vigilent-login/internal/config"
	"github.com/Codedeveloper-MT/Vigilent-login/internal/handlers"
	"github.com/Codedeveloper-MT/Vigilent-login/internal/repo"
	"github.com/Codedeveloper-MT/Vigilent-login/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
)

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, db *pgxpool.Pool, rdb *redis.Client) {
	r.Use(handlers.RequestIDMiddleware())

	r.GET("/", rootHandler(cfg))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(302, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
	))

	api := r.Group("/api")

	accountRepo := repo.NewPGAccountRepo(db)
	accountCache := cache.NewAccountCache(rdb, cfg.Redis.DefaultTTL.Duration())
	resetTokens := auth.NewResetStore(rdb, cfg.Auth.ResetTokenTTL.Duration())
	accountSvc := service.NewAccountService(accountRepo, accountCache, resetTokens, cfg.Auth.BcryptCost)

	accountHandler := handlers.NewAccountHandler(accountSvc)
	passwordHandler := handlers.NewPasswordHandler(accountSvc)
	healthHandler := handlers.NewHealthHandler(cfg.App.Version, map[string]handlers.CheckFunc{
		"postgres": func(ctx context.Context) error { return db.Ping(ctx) },
		"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	})

	RegisterAccountRoutes(api, accountHandler, passwordHandler, healthHandler)
}

// RegisterAccountRoutes wires the account endpoints onto api.
func RegisterAccountRoutes(api *gin.RouterGroup, a *handlers.AccountHandler, p *handlers.PasswordHandler, h *handlers.HealthHandler) {
	api.POST("/register", a.Register)
	api.POST("/login", a.Login)
	api.GET("/users", a.Get)
	api.PUT("/users/:username", a.Update)
	api.DELETE("/users/:username", a.Delete)
	api.POST("/forgot-password", p.Forgot)
	api.POST("/reset-password", p.Reset)
	api.GET("/health", h.Health)
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "Vigilent Login API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"docs":    "/swagger/index.html",
			"spec":    "/swagger-doc.json",
			"health":  "/api/health",
			"api":     "/api",
		})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.Data(200, "application/json; charset=utf-8", []byte(doc))
	}
}
