package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hireiq/identity-service/internal/api/handler"
	"github.com/hireiq/identity-service/internal/api/middleware"
	"github.com/hireiq/identity-service/internal/core/domain"
	"github.com/hireiq/identity-service/internal/core/ports"
	"github.com/hireiq/identity-service/internal/core/service"
	"github.com/hireiq/identity-service/internal/infrastructure/config"
	"github.com/hireiq/identity-service/internal/infrastructure/crypto"
	mongodb "github.com/hireiq/identity-service/internal/infrastructure/db/mongo"
	redisdb "github.com/hireiq/identity-service/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, notifier ports.Notifier, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("identity"))

	// --- Dependencies ---
	accounts := mongodb.NewAccountRepository(db)
	sessions := redisdb.NewRevocationSet(rdb)
	codec := service.NewTokenCodec(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	hasher := crypto.NewBcryptHasher(0)
	identity := service.NewIdentity(accounts, sessions, codec, hasher, notifier, service.IdentityConfig{
		VerificationTokenTTL: cfg.VerificationTokenTTL,
		ResetTokenTTL:        cfg.ResetTokenTTL,
		FrontendBaseURL:      cfg.FrontendBaseURL,
	}, log)

	authHandler := handler.NewAuthHandler(identity)
	profileHandler := handler.NewProfileHandler(identity)
	adminHandler := handler.NewAdminHandler(identity)
	authMiddleware := middleware.Auth(codec)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout)
	e.POST("/auth/refresh", authHandler.Refresh)
	e.GET("/auth/verify-email/:token", authHandler.VerifyEmail)
	e.POST("/auth/resend-verification", authHandler.ResendVerification)
	e.POST("/auth/password-reset", authHandler.RequestPasswordReset)
	e.POST("/auth/password-reset/confirm", authHandler.ConfirmPasswordReset)
	e.POST("/auth/password-change", authHandler.ChangePassword, authMiddleware)
	e.GET("/auth/me", authHandler.Me, authMiddleware)

	// --- Profile routes ---
	e.GET("/profile", profileHandler.Get, authMiddleware)
	e.PUT("/profile", profileHandler.Update, authMiddleware)

	// --- Admin routes ---
	admin := e.Group("/admin", authMiddleware, adminOnly)
	admin.POST("/accounts/:id/deactivate", adminHandler.Deactivate)
	admin.POST("/accounts/:id/reactivate", adminHandler.Reactivate)

	// --- Observability ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)

	return e
}
