package router

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/octobees/business-directory/internal/auth"
	"github.com/octobees/business-directory/internal/config"
	"github.com/octobees/business-directory/internal/handler"
	middlewarepkg "github.com/octobees/business-directory/internal/middleware"
	"github.com/octobees/business-directory/internal/service"
	"github.com/octobees/business-directory/internal/web"
)

const otpLimiterPrefix = "ratelimit:otp"

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Auth       *handler.AuthHandler
	Businesses *handler.BusinessesHandler
	Industries *handler.IndustriesHandler
	OTP        *handler.OTPHandler
	Pages      *web.Pages
	Metrics    http.Handler
}

// OTPLimiter picks the OTP rate limiter: shared through Redis when a client is
// configured, in-memory per instance otherwise.
func OTPLimiter(cfg config.RateLimitConfig, rdb *redis.Client, logger *slog.Logger) echo.MiddlewareFunc {
	if rdb != nil {
		return middlewarepkg.RedisRateLimiter(cfg, rdb, otpLimiterPrefix, logger)
	}
	return middlewarepkg.IPRateLimiter(cfg)
}

// Register wires all HTTP routes for the API and the server-rendered pages.
func Register(e *echo.Echo, jwtManager *auth.JWTManager, otpLimiter echo.MiddlewareFunc, handlers Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return handler.Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
	})
	if handlers.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(handlers.Metrics))
	}

	api := e.Group("/api")
	operator := []echo.MiddlewareFunc{middlewarepkg.JWT(jwtManager), middlewarepkg.RequireRole(service.RoleAdmin)}

	api.GET("/business", handlers.Businesses.List)
	api.GET("/business/:id", handlers.Businesses.Get)
	api.POST("/business", handlers.Businesses.CreatePublic)
	api.PATCH("/business", handlers.Businesses.Update, operator...)
	api.DELETE("/business", handlers.Businesses.Delete, operator...)

	api.GET("/industries", handlers.Industries.List)
	api.POST("/industries", handlers.Industries.Create, operator...)
	api.PUT("/industries", handlers.Industries.Update, operator...)
	api.DELETE("/industries", handlers.Industries.Delete, operator...)

	if otpLimiter == nil {
		otpLimiter = func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	api.POST("/send-otp", handlers.OTP.Send, otpLimiter)
	api.POST("/verify-otp", handlers.OTP.Verify)

	api.POST("/admin/login", handlers.Auth.Login)
	admin := api.Group("/admin", operator...)
	admin.POST("/business", handlers.Businesses.CreateAdmin)
	admin.POST("/business/import", handlers.Businesses.Import)

	if handlers.Pages != nil {
		handlers.Pages.Register(e, middlewarepkg.CookieSession(jwtManager, web.LoginPath))
	}
}
