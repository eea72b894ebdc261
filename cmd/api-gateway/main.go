package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/husseinvr97/fasee7System-sub002/api/swagger"
	"github.com/husseinvr97/fasee7System-sub002/internal/events"
	"github.com/husseinvr97/fasee7System-sub002/internal/handler"
	"github.com/husseinvr97/fasee7System-sub002/internal/middleware"
	"github.com/husseinvr97/fasee7System-sub002/internal/repository"
	"github.com/husseinvr97/fasee7System-sub002/internal/service"
	"github.com/husseinvr97/fasee7System-sub002/pkg/cache"
	"github.com/husseinvr97/fasee7System-sub002/pkg/config"
	"github.com/husseinvr97/fasee7System-sub002/pkg/database"
	"github.com/husseinvr97/fasee7System-sub002/pkg/logger"
	corsmiddleware "github.com/husseinvr97/fasee7System-sub002/pkg/middleware/cors"
	reqidmiddleware "github.com/husseinvr97/fasee7System-sub002/pkg/middleware/requestid"
)

// @title Fasee7 Consecutivity API
// @version 1.0.0
// @description Consecutive absence and behavioral incident tracking
// @BasePath /
// @schemes http

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		applied, err := database.Migrate(ctx, db, database.Migrations())
		if err != nil {
			logr.Fatal("migration failed", zap.Error(err))
		}
		logr.Info("migrations applied", zap.Ints("versions", applied))
	}

	metrics := service.NewMetricsService()
	bus := events.NewBus(metrics, logr)
	if err := bus.SubscribeAll(events.AuditLogger(logr.Named("signals"))); err != nil {
		logr.Fatal("failed to subscribe audit logger", zap.Error(err))
	}

	if cfg.Relay.Enabled {
		redisClient, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer redisClient.Close()

		relay := events.NewRelay(redisClient, events.RelayConfig{
			Channel:    cfg.Relay.Channel,
			Workers:    cfg.Relay.Workers,
			BufferSize: cfg.Relay.BufferSize,
			MaxRetries: cfg.Relay.MaxRetries,
			RetryDelay: cfg.Relay.RetryDelay,
			Observer:   metrics,
			Logger:     logr.Named("relay"),
		})
		relay.Start(ctx)
		defer relay.Stop()
		if err := bus.SubscribeAll(relay.Handle); err != nil {
			logr.Fatal("failed to subscribe relay", zap.Error(err))
		}
		logr.Info("signal relay enabled", zap.String("channel", cfg.Relay.Channel))
	}

	validate := validator.New()
	trackingRepo := repository.NewConsecutivityRepository(db)
	behaviorRepo := repository.NewBehaviorRepository(db)
	attendanceRepo := repository.NewLessonAttendanceRepository(db)
	studentRepo := repository.NewStudentRepository(db)

	consecutivity := service.NewConsecutivityService(trackingRepo, behaviorRepo, bus, validate, metrics, logr, cfg.Consecutivity.HistoryLimit)
	authService := service.NewAuthService(service.AuthConfig{AccessTokenSecret: cfg.JWT.Secret})

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics, "/health", "/ready", "/metrics"))

	handler.RegisterRoutes(r, cfg.APIPrefix, authService, logr.Named("audit"), handler.Handlers{
		Consecutivity: handler.NewConsecutivityHandler(consecutivity),
		Students:      handler.NewStudentHandler(service.NewStudentService(studentRepo, consecutivity, logr)),
		Attendance:    handler.NewAttendanceHandler(service.NewAttendanceService(attendanceRepo, consecutivity, validate, logr)),
		Behavior:      handler.NewBehaviorHandler(service.NewBehaviorService(behaviorRepo, consecutivity, validate, logr)),
		Metrics:       handler.NewMetricsHandler(metrics, db),
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Errorw("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
