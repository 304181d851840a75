package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/ntholi/registry-web/api/swagger"
	"github.com/ntholi/registry-web/internal/eligibility"
	"github.com/ntholi/registry-web/internal/handler"
	internalmiddleware "github.com/ntholi/registry-web/internal/middleware"
	"github.com/ntholi/registry-web/internal/models"
	"github.com/ntholi/registry-web/internal/repository"
	"github.com/ntholi/registry-web/internal/service"
	"github.com/ntholi/registry-web/pkg/cache"
	"github.com/ntholi/registry-web/pkg/config"
	"github.com/ntholi/registry-web/pkg/database"
	"github.com/ntholi/registry-web/pkg/logger"
	corsmiddleware "github.com/ntholi/registry-web/pkg/middleware/cors"
	reqidmiddleware "github.com/ntholi/registry-web/pkg/middleware/requestid"
	"github.com/ntholi/registry-web/pkg/observability"
)

// @title Registry Registration Eligibility API
// @version 1.0.0
// @description Decides which modules a student may register for and which semester a selection represents.
// @BasePath /
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	flush, err := observability.InitSentry(cfg.Sentry.DSN, cfg.Env, cfg.Sentry.Release)
	if err != nil {
		logr.Warn("sentry disabled", zap.Error(err))
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.CatalogCache.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, catalog cache disabled", zap.Error(err))
			redisClient = nil
		}
	}

	metricsSvc := service.NewMetricsService()
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.CatalogCache.TTL, logr, cfg.CatalogCache.Enabled && redisClient != nil)

	registrationSvc := service.NewRegistrationService(service.RegistrationServiceParams{
		Students:      repository.NewStudentRecordRepository(db),
		Structures:    repository.NewStructureRepository(db),
		Prerequisites: repository.NewPrerequisiteRepository(db),
		Terms:         repository.NewTermRepository(db),
		Cache:         cacheSvc,
		Metrics:       metricsSvc,
		Validator:     validator.New(),
		Logger:        logr,
		Config: service.RegistrationServiceConfig{
			Policy: eligibility.Policy{
				InternshipSemester: cfg.Registration.InternshipSemester,
				RepeatSaturation:   cfg.Registration.RepeatSaturation,
			},
			RemainFailedThreshold: cfg.Registration.RemainFailedThreshold,
			CatalogTTL:            cfg.CatalogCache.TTL,
			BatchWorkers:          cfg.Registration.BatchWorkers,
			BatchMax:              cfg.Registration.BatchMax,
		},
	})
	tokenSvc := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer)

	registrationHandler := handler.NewRegistrationHandler(registrationSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc,
		handler.ReadinessCheck{Name: "postgres", Probe: db.PingContext},
		handler.ReadinessCheck{Name: "redis", Probe: cacheRepo.Ping},
	)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))
	r.Use(internalmiddleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	staff := []string{string(models.RoleAdmin), string(models.RoleRegistry)}
	staffOrSelf := append(append([]string{}, staff...), internalmiddleware.RoleSelf)

	api := r.Group(cfg.APIPrefix)
	api.Use(internalmiddleware.JWT(tokenSvc))

	students := api.Group("/students/:stdNo", internalmiddleware.RBAC(staffOrSelf...))
	students.GET("/failed-modules", registrationHandler.FailedModules)
	students.GET("/remain", registrationHandler.Remain)
	students.GET("/failed-prerequisites", registrationHandler.FailedPrerequisites)
	students.GET("/repeat-modules", registrationHandler.RepeatModules)
	students.GET("/semester-modules", registrationHandler.SemesterModules)
	students.POST("/semester-status", registrationHandler.SemesterStatus)

	registration := api.Group("/registration", internalmiddleware.RBAC(staff...))
	registration.POST("/semester-modules/batch", registrationHandler.BatchSemesterModules)
	registration.DELETE("/cache", internalmiddleware.RequireRoles(models.RoleAdmin), registrationHandler.InvalidateCache)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
