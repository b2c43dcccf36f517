// Command formify-api serves the form and response HTTP API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/formify/form-service/internal/cache"
	"github.com/formify/form-service/internal/config"
	"github.com/formify/form-service/internal/handlers"
	"github.com/formify/form-service/internal/repositories/postgres"
	"github.com/formify/form-service/internal/services"
	"github.com/formify/form-service/internal/utils"
	"github.com/formify/form-service/internal/validator"
	"github.com/formify/form-service/pkg"
	"github.com/gin-gonic/gin"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.NewLogger(os.Stderr, "").Error("Failed to load configuration", "error", err)
		return 1
	}

	logger := utils.NewLogger(os.Stdout, cfg.Environment)
	slogger := logger.Slog()
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.LogError(err, "Database unavailable")
		return 1
	}
	if err := pkg.Migrate(db); err != nil {
		logger.LogError(err, "Migration failed")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// the service works without a cache, only slower
	var formCache cache.CacheService
	redisClient, err := pkg.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Warn("Redis unavailable, form cache disabled", "error", err)
	} else {
		defer redisClient.Close()
		formCache = cache.NewRedisCache(redisClient, "formify:", slogger.With("component", "cache"))
	}

	publisher, err := cfg.Events.CreateEventPublisher(slogger.With("component", "events"))
	if err != nil {
		logger.LogError(err, "Failed to create event publisher")
		return 1
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.LogError(err, "Failed to close event publisher")
		}
	}()

	v := validator.New()
	serviceManager := services.NewServiceManager(services.ManagerConfig{
		Forms:     postgres.NewFormPostgreSQL(db),
		Responses: postgres.NewResponsePostgreSQL(db),
		Cache:     formCache,
		CacheTTL:  cfg.FormCacheTTL,
		Publisher: publisher,
		Validator: v,
		Logger:    slogger,
	})

	tokenParser := handlers.NewCasdoorParser(cfg.Casdoor)
	if tokenParser == nil {
		logger.Warn("Casdoor certificate not set, trusting the " + handlers.DevUserHeader + " header")
	}
	router := handlers.NewHandlerManager(serviceManager, tokenParser, v, logger).NewRouter()

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "addr", server.Addr, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
	case err := <-errCh:
		logger.LogError(err, "Server error")
		exitCode = 1
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.LogError(err, "Graceful shutdown failed")
	}
	return exitCode
}
