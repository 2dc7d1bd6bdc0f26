package pg

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"estimate-tracker/internal/application"
	"estimate-tracker/internal/domain"
	"estimate-tracker/internal/infrastructure/logx"
)

// HistoryRepo is the Postgres history sink. Appends are insert-only; the
// (observed_at, source_url) unique key makes a replayed run a no-op instead
// of a duplicate row.
type HistoryRepo struct {
	db        *DB
	sourceURL string
}

var _ application.HistoryStore = (*HistoryRepo)(nil)

func NewHistoryRepo(db *DB, sourceURL string) *HistoryRepo {
	return &HistoryRepo{db: db, sourceURL: sourceURL}
}

func (r *HistoryRepo) Append(ctx context.Context, rec domain.PriceRecord) error {
	const ins = `
        INSERT INTO price_history(observed_at, price, source_url)
        VALUES ($1, $2, $3)
        ON CONFLICT (observed_at, source_url) DO NOTHING`
	log := logx.L().With(
		zap.String("repo", "price_history"),
		zap.String("operation", "Append"),
		zap.Time("observed_at", rec.ObservedAt),
		zap.String("price", rec.Amount.String()),
	)
	log.Info("sql.exec_start")
	tag, err := r.db.Pool.Exec(ctx, ins, rec.ObservedAt.UTC(), rec.Amount.String(), r.sourceURL)
	if err != nil {
		log.Error("sql.exec_failed", zap.Error(err))
		return fmt.Errorf("%w: insert price_history: %v", domain.ErrIOFailure, err)
	}
	if tag.RowsAffected() == 0 {
		log.Warn("sql.exec_duplicate_skipped")
		return nil
	}
	log.Info("sql.exec_success", zap.Int64("rows_affected", tag.RowsAffected()))
	return nil
}
