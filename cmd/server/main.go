package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pokertrack/pokertrack-server/internal/config"
	"github.com/pokertrack/pokertrack-server/internal/infrastructure/database"
	"github.com/pokertrack/pokertrack-server/internal/interfaces/api"
	"github.com/pokertrack/pokertrack-server/internal/live"
	"github.com/pokertrack/pokertrack-server/internal/logger"
	"github.com/pokertrack/pokertrack-server/internal/usecase"
)

const shutdownTimeout = 5 * time.Second

func main() {
	// Parse command line flags
	port := flag.Int("port", 0, "Server port")
	dbType := flag.String("db", "", "Database type (memory, mysql or postgres)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Override config with command line flags if provided
	if *port != 0 {
		cfg.ServerPort = *port
	}
	if *dbType != "" {
		cfg.DBConfig.Type = *dbType
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	logger.Initialize(cfg.LogLevel)
	logger.Info("Starting pokertrack server on port %d with %s storage", cfg.ServerPort, cfg.DBConfig.Type)

	if err := run(cfg); err != nil {
		logger.Error("Server error: %v", err)
		os.Exit(1)
	}
	logger.Info("Server stopped")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := database.NewFactory().CreateRepositories(ctx, cfg.DBConfig)
	if err != nil {
		return fmt.Errorf("create repositories: %w", err)
	}
	defer func() {
		if err := repos.Close(); err != nil {
			logger.Error("Failed to close database: %v", err)
		}
	}()

	broker := live.NewBroker(repos.Tables.GetByID, repos.Games.GetByID,
		live.WithTickInterval(cfg.SSE.TickInterval),
		live.WithHeartbeatInterval(cfg.SSE.HeartbeatInterval),
	)

	handler := api.NewRouter(api.RouterConfig{
		Prefix:      cfg.APIPrefix,
		Tables:      usecase.NewTableUseCase(repos.Tables, repos.Games, broker),
		Games:       usecase.NewGameUseCase(repos.Games, repos.Tables, broker),
		Broker:      broker,
		Storage:     repos,
		RetryMillis: cfg.SSE.RetryMillis,
	})

	// Streams run until their request context ends, so they share the
	// server's base context and stop when shutdown begins.
	addr := fmt.Sprintf(":%d", cfg.ServerPort)
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening on %s (API prefix %q)", addr, cfg.APIPrefix)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
