package main

import (
	"context"
	"errors"
	"lessonhub/internal/api"
	"lessonhub/internal/app"
	"lessonhub/internal/config"
	"lessonhub/internal/logging"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// @title LessonHub API
// @version 1.0
// @description Multi-profile course tracking: catalog, watch progress, weekly routine and course admin.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logging.New(os.Stderr, "info").Fatal("could not load config", "err", err)
	}
	logger := logging.New(os.Stderr, cfg.Log.Level)
	logger.Info("starting LessonHub server")

	application, err := app.Open(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("startup failed", "err", err)
	}
	defer func() {
		logger.Info("disconnecting MongoDB")
		if err := application.Close(); err != nil {
			logger.Error("failed to disconnect MongoDB", "err", err)
		}
	}()

	// --- Ensure Indexes ---
	go func() { // Run index creation in the background
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		if err := application.EnsureIndexes(ctx); err != nil {
			logger.Error("index creation failed", "err", err)
			return
		}
		logger.Info("index creation completed")
	}()

	// --- Login Rate Limiter ---
	var loginLimiter api.AttemptLimiter
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			logger.Warn("redis unreachable, login attempts limited in process", "addr", cfg.Redis.Addr, "err", err)
			loginLimiter = api.NewLocalLimiter(cfg.RateLimit.LoginAttempts, cfg.RateLimit.Window)
		} else {
			loginLimiter = api.NewRedisLimiter(redisClient, cfg.RateLimit.LoginAttempts, cfg.RateLimit.Window)
		}
		cancel()
	} else {
		loginLimiter = api.NewLocalLimiter(cfg.RateLimit.LoginAttempts, cfg.RateLimit.Window)
	}

	// --- Initialize Gin Engine ---
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default() // Includes Logger and Recovery middleware
	api.SetupRoutes(router, application.Services, api.RouterOptions{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		LoginLimiter:   loginLimiter,
		Logger:         logger,
	})

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	logger.Info("server listening", "addr", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("ListenAndServe error", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("server forced to shutdown", "err", err)
	}

	logger.Info("server exiting")
}
