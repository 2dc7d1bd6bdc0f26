package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceRecord is one observed estimate, the unit of durable state.
type PriceRecord struct {
	ObservedAt time.Time
	Amount     decimal.Decimal
}
