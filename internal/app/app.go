package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"tutorias_backend/database"
	"tutorias_backend/internal/auth"
	"tutorias_backend/internal/cache"
	"tutorias_backend/internal/config"
	"tutorias_backend/internal/handlers"
	"tutorias_backend/internal/logger"
	"tutorias_backend/internal/middleware"
	"tutorias_backend/internal/repositories"
	"tutorias_backend/internal/routes"
	"tutorias_backend/internal/services"
	"tutorias_backend/internal/validator"
	"tutorias_backend/internal/workers"
	"tutorias_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Run() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)
	apperrors.SetDebug(cfg.Server.ExposeErrors)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Connecting to database...")
	gormDB, sqlDB, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer sqlDB.Close()
	logger.Info("Database connected")

	if cfg.Database.RunMigrations {
		if err := database.Migrate(ctx, sqlDB); err != nil {
			logger.Fatal("Failed to apply migrations", "error", err)
		}
	}

	appCache := initializeCache(cfg)
	if closer, ok := appCache.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	limiter := middleware.NewLimiterStore(cfg.RateLimit.RPS, cfg.RateLimit.Burst, 15*time.Minute)
	limiter.StartJanitor(ctx, 2*time.Minute)

	workers.NewHorarioWorker(gormDB, repositories.NewHorarioRepository(), cfg.SlotExpiryEvery()).Start(ctx)

	ginRouter := SetupRouter(cfg, gormDB, appCache, limiter)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              address,
		Handler:           ginRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("Server starting on %s", address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal("Server startup error", "error", err)
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
		return
	}
	logger.Info("Server stopped")
}

// SetupRouter собирает сервисы, хэндлеры и маршруты. limiter может быть nil,
// тогда ограничение частоты отключено.
func SetupRouter(cfg *config.Config, gormDB *gorm.DB, appCache cache.Cache, limiter *middleware.LimiterStore) *gin.Engine {
	if appCache == nil {
		appCache = cache.NoopCache{}
	}

	customValidator := validator.New()

	// 1. Инициализируем сервисы
	serviceContainer := initializeServices(cfg, appCache, customValidator)

	// 2. Инициализируем хэндлеры
	appHandlers := initializeHandlers(serviceContainer, customValidator)

	// 3. Инициализируем Gin
	ginRouter := initializeGinRouter(gormDB)

	// 4. Маршруты
	authMW := middleware.AuthMiddleware(serviceContainer.AuthService)
	authLimiter := func(c *gin.Context) { c.Next() }
	if cfg.RateLimit.Enabled && limiter != nil {
		authLimiter = middleware.RateLimitMiddleware(limiter)
	}
	routes.RegisterRoutes(ginRouter, appHandlers, authMW, authLimiter)

	return ginRouter
}

func initializeCache(cfg *config.Config) cache.Cache {
	if cfg.Redis.Addr == "" {
		logger.Warn("REDIS_ADDR is not set, tutor directory cache disabled")
		return cache.NoopCache{}
	}

	cacheCfg := cache.DefaultConfig()
	cacheCfg.Addr = cfg.Redis.Addr
	cacheCfg.Password = cfg.Redis.Password
	cacheCfg.DB = cfg.Redis.DB

	redisCache, err := cache.NewRedisCache(cacheCfg)
	if err != nil {
		logger.Warn("Redis unavailable, tutor directory cache disabled", "addr", cfg.Redis.Addr, "error", err)
		return cache.NoopCache{}
	}
	logger.Info("Redis cache connected", "addr", cfg.Redis.Addr)
	return redisCache
}

func initializeServices(cfg *config.Config, appCache cache.Cache, v *validator.Validator) *services.ServiceContainer {
	// --- Репозитории ---
	userRepo := repositories.NewUserRepository()
	profileRepo := repositories.NewProfileRepository()
	horarioRepo := repositories.NewHorarioRepository()
	tutoriaRepo := repositories.NewTutoriaRepository()

	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.TokenTTL())
	policy := services.LifecyclePolicy{
		StrictFinalize:               cfg.Lifecycle.StrictFinalize,
		TutorCancelRequiresOwnership: cfg.Lifecycle.TutorCancelRequiresOwnership,
		ReleaseSlotOnFinalize:        cfg.Lifecycle.ReleaseSlotOnFinalize,
	}

	// --- Сервисы ---
	return &services.ServiceContainer{
		AuthService:    services.NewAuthService(userRepo, profileRepo, tokens, appCache),
		ProfileService: services.NewProfileService(profileRepo, v, appCache, cfg.CacheTTL()),
		HorarioService: services.NewHorarioService(horarioRepo, profileRepo, v),
		TutoriaService: services.NewTutoriaService(tutoriaRepo, horarioRepo, profileRepo, v, policy),
	}
}

func initializeHandlers(svc *services.ServiceContainer, v *validator.Validator) *handlers.AppHandlers {
	baseHandler := handlers.NewBaseHandler(v)

	return &handlers.AppHandlers{
		AuthHandler:       handlers.NewAuthHandler(baseHandler, svc.AuthService),
		TutorHandler:      handlers.NewTutorHandler(baseHandler, svc.ProfileService, svc.HorarioService),
		EstudianteHandler: handlers.NewEstudianteHandler(baseHandler, svc.ProfileService),
		TutoriaHandler:    handlers.NewTutoriaHandler(baseHandler, svc.TutoriaService),
		HealthHandler:     handlers.NewHealthHandler(baseHandler),
	}
}

func initializeGinRouter(db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.DBMiddleware(db))
	return router
}
