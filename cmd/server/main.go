package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/rpattn/koreng/internal/api"
	"github.com/rpattn/koreng/internal/config"
	"github.com/rpattn/koreng/internal/db"
	"github.com/rpattn/koreng/internal/entities"
	"github.com/rpattn/koreng/internal/middleware"
	"github.com/rpattn/koreng/internal/query"
	"github.com/rpattn/koreng/internal/repository"
	"github.com/rpattn/koreng/internal/search"
)

func main() {
	configPath := flag.String("config", ".", "directory containing config.yaml")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(*configPath, logger); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(configPath string, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// Setup database connection (migrations run inside Open when enabled)
	store, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	registry := entities.NewRegistry()
	composer := query.NewComposer(registry, store.Dialect.Placeholder(), logger, query.WithTimeArg(store.Dialect.TimeArg))

	service := search.NewService(
		registry,
		composer,
		repository.NewSearchRepository(store.Querier),
		repository.NewLayoutRepository(store.Querier, store.Dialect),
		search.WithMaxPageLength(cfg.Search.MaxPageLength),
		search.WithExportLimit(cfg.Search.ExportLimit),
		search.WithLogger(logger),
	)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Disposition", middleware.RequestIDHeader},
	})

	handler := api.NewHTTPHandler(service, store.Querier, cfg.Server.BasePath, logger)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      corsHandler.Handler(middleware.LoggingMiddleware(logger)(handler)),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			slog.String("addr", cfg.Server.Addr),
			slog.String("basePath", cfg.Server.BasePath),
			slog.String("driver", string(store.Dialect)),
			slog.Any("entities", registry.Names()),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		if err != nil {
			return err
		}
	case <-quit:
	}
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("server exited")
	return nil
}
