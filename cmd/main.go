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

	"github.com/latoulicious/vtmsu/internal/config"
	"github.com/latoulicious/vtmsu/internal/handlers"
	"github.com/latoulicious/vtmsu/internal/jobs"
	"github.com/latoulicious/vtmsu/internal/version"
	"github.com/latoulicious/vtmsu/pkg/database"
	"github.com/latoulicious/vtmsu/pkg/database/migration"
	"github.com/latoulicious/vtmsu/pkg/hunting"
	"github.com/latoulicious/vtmsu/pkg/logging"
	"github.com/latoulicious/vtmsu/pkg/notify"
)

func main() {
	if err := initializeApplication(); err != nil {
		log.Fatalf("Application initialization failed: %v", err)
	}
}

// initializeApplication wires configuration, storage, jobs and the HTTP API,
// then blocks until a termination signal arrives
func initializeApplication() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	loggerFactory := logging.NewLoggerFactory(cfg.LoggingOptions())
	logging.SetGlobalLoggerFactory(loggerFactory)
	systemLogger := loggerFactory.CreateLogger("system")
	systemLogger.Info("Starting vtmsu", map[string]interface{}{
		"version": version.Get().String(),
		"config":  cfg.Source,
		"driver":  cfg.Database.Driver,
	})

	db, err := database.NewGormDB(cfg.DatabaseOptions(loggerFactory.CreateLogger("gorm")))
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	manager := database.NewDatabaseManager(db)
	defer manager.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	if err := manager.Ping(ctx); err != nil {
		return fmt.Errorf("database is not reachable: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := migration.RunMigration(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	notifier, err := notify.New(cfg.NotifyOptions())
	if err != nil {
		return fmt.Errorf("failed to initialize notifier: %w", err)
	}

	scheduler := jobs.NewScheduler(jobs.WithLoggerFactory(loggerFactory))
	if cfg.Jobs.Enabled {
		spawner := hunting.NewSpawner(db)
		if err := jobs.Register(scheduler, manager, spawner, cfg.Jobs.CleanupSchedule, cfg.Jobs.SpawnSchedule); err != nil {
			return fmt.Errorf("failed to register jobs: %w", err)
		}
		scheduler.Start()
	}

	handler := handlers.NewHandler(manager,
		handlers.WithNotifier(notifier),
		handlers.WithJobs(scheduler),
	)
	e := handlers.NewEcho(handler, handlers.RouterConfig{
		AdminToken: cfg.Server.AdminToken,
		Logger:     loggerFactory.CreateLogger("http"),
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      e,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		systemLogger.Info("HTTP server listening", map[string]interface{}{"addr": cfg.Server.Addr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		systemLogger.Info("Shutting down gracefully...", nil)
	case err := <-serverErr:
		if err != nil {
			systemLogger.Error("HTTP server stopped", err, nil)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		systemLogger.Error("HTTP server shutdown error", err, nil)
	}
	if err := scheduler.Stop(shutdownCtx); err != nil {
		systemLogger.Error("Scheduler shutdown error", err, nil)
	}

	systemLogger.Info("Application shutdown complete", nil)
	return nil
}
