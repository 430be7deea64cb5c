package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"conveyease/internal/adapters/http/middleware"
	"conveyease/internal/adapters/http/routes"
	"conveyease/internal/adapters/persistence/memory"
	"conveyease/internal/adapters/persistence/models"
	"conveyease/internal/adapters/persistence/repositories"
	"conveyease/internal/config"
	"conveyease/internal/core/services"
	"conveyease/internal/core/workflow"
	"conveyease/internal/pkg/logger"

	_ "conveyease/docs" // Swagger docs
)

// @title ConveyEase API
// @version 1.0
// @description Conveyance bill approval workflow API

// @contact.name API Support

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logg, err := logger.New(cfg.AppMode, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logg.Sync() }()

	stores, err := openStores(cfg, logg)
	if err != nil {
		logg.Fatal("failed to open storage", zap.String("storage", cfg.Storage), zap.Error(err))
	}
	defer func() { _ = config.CloseDatabase() }()

	if cfg.SeedDemoData {
		seed := config.NewSeeder(struct {
			services.UserStore
			services.BillStore
		}{stores.Users, stores.Bills}, logg)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := seed.Run(ctx); err != nil {
			logg.Warn("demo data seeding failed", zap.Error(err))
		}
		cancel()
	}

	cronService := services.NewCronService(stores.Tokens, logg)
	if err := cronService.Start(); err != nil {
		logg.Fatal("failed to start cron", zap.Error(err))
	}
	defer cronService.Stop()

	app := fiber.New(fiber.Config{
		AppName:      "ConveyEase API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	middleware.Setup(app, cfg, logg)
	routes.Setup(app, stores, workflow.NewEngine(workflow.SystemClock{}), cfg, logg)

	go gracefulShutdown(app, logg)

	logg.Info("server starting",
		zap.String("port", cfg.Port),
		zap.String("mode", cfg.AppMode),
		zap.String("storage", cfg.Storage),
	)
	if err := app.Listen(":" + cfg.Port); err != nil {
		logg.Fatal("failed to start server", zap.Error(err))
	}
}

// openStores picks the storage backend named by cfg.Storage
func openStores(cfg *config.Config, logg *zap.Logger) (routes.Stores, error) {
	if !cfg.UsesDatabase() {
		store := memory.NewStore()
		logg.Info("using in-memory storage")
		return routes.Stores{Bills: store, Users: store, Tokens: store}, nil
	}

	db, err := config.ConnectDatabase(cfg, logg)
	if err != nil {
		return routes.Stores{}, err
	}
	if err := models.AutoMigrate(db); err != nil {
		return routes.Stores{}, err
	}
	logg.Info("database migration completed")

	return routes.Stores{
		Bills:  repositories.NewBillRepository(db),
		Users:  repositories.NewUserRepository(db),
		Tokens: repositories.NewRefreshTokenRepository(db),
	}, nil
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App, logg *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logg.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logg.Error("error during shutdown", zap.Error(err))
	}
	logg.Info("server stopped gracefully")
}
