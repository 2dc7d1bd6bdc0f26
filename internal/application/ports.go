package application

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"estimate-tracker/internal/domain"
)

// PageRenderer asks the external rendering service for the fully rendered
// (post-JavaScript) HTML of a page. One best-effort attempt per call.
type PageRenderer interface {
	Render(ctx context.Context, pageURL string) (string, error)
}

// PriceExtractor finds the listing's estimated value inside rendered HTML.
type PriceExtractor interface {
	Extract(htmlText string) (decimal.Decimal, error)
}

// HistoryStore appends one record to the durable history.
type HistoryStore interface {
	Append(ctx context.Context, rec domain.PriceRecord) error
}

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }
