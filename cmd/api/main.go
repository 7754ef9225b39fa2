package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/octobees/business-directory/internal/auth"
	"github.com/octobees/business-directory/internal/config"
	"github.com/octobees/business-directory/internal/database"
	"github.com/octobees/business-directory/internal/handler"
	"github.com/octobees/business-directory/internal/media"
	"github.com/octobees/business-directory/internal/metrics"
	middlewarepkg "github.com/octobees/business-directory/internal/middleware"
	"github.com/octobees/business-directory/internal/notify"
	"github.com/octobees/business-directory/internal/repository"
	"github.com/octobees/business-directory/internal/router"
	"github.com/octobees/business-directory/internal/service"
	"github.com/octobees/business-directory/internal/web"
)

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)
	if cfg.JWTSecret == config.DevJWTSecret {
		logger.Warn("JWT_SECRET is not set, signing tokens with the development secret")
	}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.SentryEnvironment,
			AttachStacktrace: true,
		}); err != nil {
			logger.Warn("sentry init failed", slog.Any("error", err))
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer pool.Close()

	if err := database.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("failed to apply schema: %v", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry)

	httpClient := &http.Client{Timeout: 15 * time.Second}
	uploader, err := media.New(ctx, cfg.Media, httpClient)
	if err != nil {
		log.Fatalf("failed to configure media provider: %v", err)
	}
	mailer, err := notify.New(cfg.Mail, logger)
	if err != nil {
		log.Fatalf("failed to configure mail provider: %v", err)
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		rdb = redis.NewClient(opts)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, rate limiter will fail open", slog.Any("error", err))
		}
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	businessesRepo := repository.NewPGXBusinessesRepository(pool)
	industriesRepo := repository.NewPGXIndustriesRepository(pool)
	verificationRepo := repository.NewPGXEmailVerificationRepository(pool)
	operatorsRepo := repository.NewPGXOperatorsRepository(pool)

	validate := service.NewValidator()
	businessesService := service.NewBusinessesService(businessesRepo, industriesRepo, uploader,
		service.NewContactValidator(cfg.DefaultPhoneRegion),
		service.WithBusinessLogger(logger),
		service.WithBusinessMetrics(appMetrics),
	)
	industriesService := service.NewIndustriesService(industriesRepo, businessesRepo, validate)
	otpService := service.NewOTPService(verificationRepo, mailer, validate,
		service.WithOTPTTL(cfg.OTPTTL),
		service.WithSingleUseOTP(cfg.OTPSingleUse),
		service.WithOTPMetrics(appMetrics),
		service.WithOTPLogger(logger),
	)
	authService := service.NewAuthService(operatorsRepo, jwtManager, appMetrics)

	if cfg.AdminPassword != "" {
		if err := authService.EnsureOperator(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
			log.Fatalf("failed to seed operator: %v", err)
		}
	}

	renderer, err := web.NewRenderer()
	if err != nil {
		log.Fatalf("failed to parse templates: %v", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging(logger))
	e.Use(appMetrics.Middleware())
	e.Use(echoMiddleware.Recover())
	if cfg.SentryDSN != "" {
		e.Use(sentryecho.New(sentryecho.Options{Repanic: true}))
	}

	router.Register(e, jwtManager, router.OTPLimiter(cfg.RateLimitOTP, rdb, logger), router.Handlers{
		Auth:       handler.NewAuthHandler(authService, logger),
		Businesses: handler.NewBusinessesHandler(businessesService, logger),
		Industries: handler.NewIndustriesHandler(industriesService, logger),
		OTP:        handler.NewOTPHandler(otpService, logger),
		Pages: web.NewPages(businessesService, industriesService, authService,
			web.WithLogger(logger),
			web.WithSession(cfg.TokenTTL, cfg.CookieSecure),
		),
		Metrics: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("listening", slog.String("port", cfg.Port))
		serverErr <- e.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("shutting down", slog.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
	}
}
