package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"glycoanalyzer/internal/application/session/usecases"
	"glycoanalyzer/internal/domain/license"
	"glycoanalyzer/internal/infrastructure/classifier"
	"glycoanalyzer/internal/infrastructure/config"
	"glycoanalyzer/internal/infrastructure/directory"
	httpRouter "glycoanalyzer/internal/interfaces/http"
	"glycoanalyzer/internal/shared/goroutine"
	"glycoanalyzer/internal/shared/logger"
)

var env string

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server",
		Long:  `Start the glycemic analysis HTTP server with the specified configuration.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	ginMode := mapEnvToGinMode(env)

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cfg.Server.Mode = ginMode

	if err := logger.Init(&cfg.Logger, ginMode == "debug"); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("starting server", "environment", env)

	gin.SetMode(cfg.Server.Mode)
	gin.DefaultWriter = io.Discard
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, nuHandlers int) {}

	log := logger.NewLogger()

	dir, err := buildDirectory(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to open license directory: %w", err)
	}

	router := httpRouter.NewRouter(cfg, dir, buildClassifier(cfg, log), log)
	router.SetupRoutes(cfg.Server.AllowedOrigins)

	// Drop idle sessions in the background.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	goroutine.SafeGo(log, "session-sweeper", func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				if swept := router.Registry().Sweep(); swept > 0 {
					log.Infow("idle sessions swept", "count", swept)
				}
			}
		}
	})

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      router.Engine(),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			"address", cfg.Server.GetAddr(),
			"mode", cfg.Server.Mode)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		return err
	}

	logger.Info("server exited gracefully")
	return nil
}

func buildDirectory(cfg *config.Config, log logger.Interface) (license.Directory, error) {
	switch cfg.Directory.Driver {
	case "csv":
		return directory.NewCSVDirectory(cfg.Directory.Path, log.Named("directory"))
	case "sqlite":
		return directory.NewSQLiteDirectory(cfg.Directory.Path, log.Named("directory"))
	case "memory", "":
		log.Warnw("using in-memory license directory with the evaluation license only")
		return directory.NewSeededDirectory(), nil
	default:
		return nil, fmt.Errorf("unknown directory driver %q", cfg.Directory.Driver)
	}
}

func buildClassifier(cfg *config.Config, log logger.Interface) usecases.Classifier {
	if cfg.Classifier.APIKey == "" {
		log.Warnw("classifier API key not set, analyses will fail until configured")
		return classifier.NewOfflineClassifier()
	}
	return classifier.NewVisionClassifier(&cfg.Classifier, log.Named("classifier"))
}

func mapEnvToGinMode(environment string) string {
	switch environment {
	case "production", "prod", "release":
		return "release"
	case "test", "testing":
		return "test"
	default:
		return "debug"
	}
}
