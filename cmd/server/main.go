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
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	_ "claimflow/docs"
	"claimflow/internal/auth"
	"claimflow/internal/bootstrap"
	"claimflow/internal/config"
	"claimflow/internal/handler"
	"claimflow/internal/notify/noop"
	"claimflow/internal/notify/ses"
	"claimflow/internal/port"
	"claimflow/internal/repository/postgres"
	"claimflow/internal/router"
	"claimflow/internal/service"
	s3storage "claimflow/internal/storage/s3"
)

// @title Claimflow API
// @version 1.0
// @description Insurance claim document processing: classification, extraction, cross-document validation and adjudication.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline, err := bootstrap.NewPipeline(cfg)
	if err != nil {
		return err
	}

	var (
		db   *sqlx.DB
		repo port.ClaimRepository
	)
	if cfg.DB.Enabled {
		db, err = postgres.NewDB(ctx, &cfg.DB)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		repo = postgres.NewClaimRepo(db)
	}

	var storage port.ObjectStorage
	if cfg.S3.Enabled {
		storage, err = s3storage.NewS3Client(ctx, &cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
	}

	notifier, err := buildNotifier(ctx, &cfg.Notify)
	if err != nil {
		return fmt.Errorf("failed to initialize notifier: %w", err)
	}

	claimSvc := service.NewClaimService(pipeline.Processor, repo, storage, notifier, &cfg.Upload, &cfg.S3)

	deps := router.Deps{
		Claims:  handler.NewClaimHandler(claimSvc, cfg.Upload.MaxFiles, cfg.Upload.MaxFileSizeBytes()),
		Health:  handler.NewHealthHandler(db),
		Metrics: pipeline.Metrics,
	}
	if cfg.Auth.Enabled {
		issuer, err := auth.NewIssuer(&cfg.Auth)
		if err != nil {
			return fmt.Errorf("failed to initialize token issuer: %w", err)
		}
		deps.Tokens = issuer
	}

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router.Setup(cfg, deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s (db=%t, s3=%t, auth=%t, notify=%s)",
			cfg.Server.Port, cfg.DB.Enabled, cfg.S3.Enabled, cfg.Auth.Enabled, cfg.Notify.Provider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func buildNotifier(ctx context.Context, cfg *config.NotifyConfig) (port.ReviewNotifier, error) {
	switch cfg.Provider {
	case "ses":
		return ses.NewSESNotifier(ctx, cfg)
	case "none":
		return nil, nil
	default:
		return noop.NewNoopNotifier(cfg.DashboardURL), nil
	}
}
