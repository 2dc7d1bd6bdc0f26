package application

import (
	"context"
	"fmt"

	"estimate-tracker/internal/domain"
)

// Tracker runs the render -> extract -> append pipeline once per invocation.
// Runs are independent: a failed step aborts with nothing appended.
type Tracker struct {
	renderer  PageRenderer
	extractor PriceExtractor
	history   HistoryStore
	clock     Clock
}

type Option func(*Tracker)

func WithClock(c Clock) Option { return func(t *Tracker) { t.clock = c } }

func NewTracker(renderer PageRenderer, extractor PriceExtractor, history HistoryStore, opts ...Option) *Tracker {
	t := &Tracker{
		renderer:  renderer,
		extractor: extractor,
		history:   history,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.clock == nil {
		t.clock = realClock{}
	}
	return t
}

// RunOnce fetches the rendered page, extracts the estimate and appends one
// timestamped record. The timestamp is taken at append time from the
// injected clock, never from the page.
func (t *Tracker) RunOnce(ctx context.Context, pageURL string) (domain.PriceRecord, error) {
	htmlText, err := t.renderer.Render(ctx, pageURL)
	if err != nil {
		return domain.PriceRecord{}, fmt.Errorf("render: %w", err)
	}

	amount, err := t.extractor.Extract(htmlText)
	if err != nil {
		return domain.PriceRecord{}, fmt.Errorf("extract: %w", err)
	}

	rec := domain.PriceRecord{
		ObservedAt: t.clock.Now().UTC(),
		Amount:     amount,
	}
	if err := t.history.Append(ctx, rec); err != nil {
		return domain.PriceRecord{}, fmt.Errorf("append: %w", err)
	}
	return rec, nil
}
