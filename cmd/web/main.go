package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"sales-insight/internal/config"
	"sales-insight/internal/observability"
	"sales-insight/internal/server"
	"sales-insight/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"addr", cfg.Address(),
		"max_file_size", cfg.Upload.MaxFileSize,
	)

	sales := services.NewSales(logger)
	srv := server.NewServer(sales, cfg, logger)

	gracefulServer := server.NewGracefulServer(newHTTPServer(cfg, srv), logger, cfg)
	gracefulServer.Go(srv.PruneClients)
	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("sales service stopping", "stats", sales.Stats())
		return nil
	})

	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}

func newHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Address(),
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}
}
