package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"estimate-tracker/internal/bootstrap"
	"estimate-tracker/internal/config"
	"estimate-tracker/internal/domain"
	"estimate-tracker/internal/infrastructure/logx"
)

func init() { _ = godotenv.Load() }

func main() {
	cfg := config.Load()
	logx.Configure(cfg.LogLevel)
	log := logx.L().With(zap.String("run_id", uuid.NewString()))

	if err := run(context.Background(), cfg, log); err != nil {
		// One line per failure, kind first, so the scheduler can alert on
		// "site markup changed" vs "service down" vs "disk problem".
		fmt.Fprintf(os.Stderr, "tracker: %s: %v\n", domain.ErrorKind(err), err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	if cfg.ListingURL == "" {
		log.Error("run.misconfigured", zap.String("missing", "LISTING_URL"))
		return fmt.Errorf("%w: LISTING_URL is not set", domain.ErrInvalidInput)
	}

	svc, cleanup, err := bootstrap.BuildTracker(ctx, cfg, log)
	if err != nil {
		log.Error("run.bootstrap_failed", zap.Error(err))
		return err
	}
	defer cleanup()

	log.Info("run.start",
		zap.String("url", cfg.ListingURL),
		zap.String("renderer", cfg.RendererURL),
		zap.String("storage", cfg.Storage),
	)

	rec, err := svc.RunOnce(ctx, cfg.ListingURL)
	if err != nil {
		log.Error("run.failed",
			zap.String("kind", domain.ErrorKind(err)),
			zap.Error(err),
		)
		return err
	}

	log.Info("run.appended",
		zap.Time("observed_at", rec.ObservedAt),
		zap.String("price", rec.Amount.String()),
	)
	fmt.Printf("tracker: appended %s at %s\n", rec.Amount.String(), rec.ObservedAt.Format(time.RFC3339))
	return nil
}
