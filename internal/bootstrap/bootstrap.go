package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"estimate-tracker/internal/application"
	"estimate-tracker/internal/config"
	"estimate-tracker/internal/domain"
	"estimate-tracker/internal/infrastructure/csvstore"
	"estimate-tracker/internal/infrastructure/extract"
	"estimate-tracker/internal/infrastructure/logx"
	"estimate-tracker/internal/infrastructure/pg"
	"estimate-tracker/internal/infrastructure/renderer"
)

// BuildHistoryStore selects the history sink from STORAGE: "csv" (default)
// appends to the flat file, "pg" appends to Postgres.
func BuildHistoryStore(ctx context.Context, cfg config.Config) (application.HistoryStore, func(), error) {
	log := logx.L()
	switch cfg.Storage {
	case "", "csv":
		return csvstore.NewAppender(cfg.HistoryPath), func() {}, nil
	case "pg":
		if cfg.DatabaseURL == "" {
			return nil, func() {}, fmt.Errorf("%w: DATABASE_URL is required for STORAGE=pg", domain.ErrInvalidInput)
		}
		db, err := pg.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, func() {}, err
		}
		if err := pg.RunMigrations(ctx, db); err != nil {
			db.Close()
			return nil, func() {}, err
		}
		cleanup := func() {
			log.Info("closing pg")
			db.Close()
		}
		return pg.NewHistoryRepo(db, cfg.ListingURL), cleanup, nil
	default:
		return nil, func() {}, fmt.Errorf("%w: unsupported STORAGE=%q", domain.ErrInvalidInput, cfg.Storage)
	}
}

// BuildRenderer constructs the rendering-service client. The HTTP client
// timeout bounds the single fetch attempt.
func BuildRenderer(cfg config.Config) *renderer.Client {
	return &renderer.Client{
		Endpoint: cfg.RendererURL,
		WaitMS:   int(cfg.RenderWait / time.Millisecond),
		HTTP:     &http.Client{Timeout: cfg.FetchTimeout},
	}
}

// BuildTracker wires the full run-once pipeline.
func BuildTracker(ctx context.Context, cfg config.Config, log *zap.Logger) (*application.Tracker, func(), error) {
	store, cleanup, err := BuildHistoryStore(ctx, cfg)
	if err != nil {
		return nil, func() {}, err
	}
	svc := application.NewTracker(
		BuildRenderer(cfg),
		&extract.Extractor{Log: log},
		store,
	)
	return svc, cleanup, nil
}
