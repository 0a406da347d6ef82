// Command api serves the back-office HTTP API and the admin panel.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sachin-security/sachin-security-sub000/internal/auth"
	"github.com/sachin-security/sachin-security-sub000/internal/config"
	"github.com/sachin-security/sachin-security-sub000/internal/database"
	"github.com/sachin-security/sachin-security-sub000/internal/model"
	"github.com/sachin-security/sachin-security-sub000/internal/server"
	"github.com/sachin-security/sachin-security-sub000/internal/storage"
	"github.com/sachin-security/sachin-security-sub000/internal/utilities"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := utilities.NewLogger(os.Stdout, cfg.Log.Level)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	db, err := database.Open(startCtx, cfg.Database)
	if err != nil {
		log.Fatalf("Database failed to initialized: %s", err)
	}
	defer func() {
		if err := db.Close(context.Background()); err != nil {
			logger.Error("close database failed", slog.String("error", err.Error()))
		}
	}()

	if err := db.EnsureIndexes(startCtx, model.UniqueIndexes); err != nil {
		log.Fatalf("Failed to create indexes: %s", err)
	}

	objects, err := storage.New(startCtx, cfg.Storage, db)
	if err != nil {
		log.Fatalf("Storage failed to initialized: %s", err)
	}
	defer func() {
		if err := storage.Close(objects); err != nil {
			logger.Error("close storage failed", slog.String("error", err.Error()))
		}
	}()

	revoker, err := auth.NewRevoker(startCtx, cfg.Auth.Revocation, cfg.Redis)
	if err != nil {
		log.Fatalf("Token revocation failed to initialized: %s", err)
	}
	defer func() {
		if err := auth.CloseRevoker(revoker); err != nil {
			logger.Error("close token revocation failed", slog.String("error", err.Error()))
		}
	}()

	srv := server.New(cfg, db, objects, revoker, logger).NewServer()

	go func() {
		logger.Info("API started",
			slog.String("addr", srv.Addr),
			slog.String("db_driver", cfg.Database.Driver),
			slog.String("storage", cfg.Storage.Backend),
			slog.String("revocation", cfg.Auth.Revocation),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.String("error", err.Error()))
	}
}
