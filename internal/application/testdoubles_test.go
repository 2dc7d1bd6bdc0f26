package application

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"estimate-tracker/internal/domain"
)

type fakeRenderer struct {
	html string
	err  error
}

func (f *fakeRenderer) Render(_ context.Context, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.html, nil
}

type fakeExtractor struct {
	amount  decimal.Decimal
	err     error
	gotHTML string
}

func (f *fakeExtractor) Extract(htmlText string) (decimal.Decimal, error) {
	f.gotHTML = htmlText
	if f.err != nil {
		return decimal.Decimal{}, f.err
	}
	return f.amount, nil
}

type fakeHistory struct {
	appended []domain.PriceRecord
	err      error
}

func (f *fakeHistory) Append(_ context.Context, rec domain.PriceRecord) error {
	if f.err != nil {
		return f.err
	}
	f.appended = append(f.appended, rec)
	return nil
}

type fakeClock struct{ t time.Time }

func (f fakeClock) Now() time.Time { return f.t }
