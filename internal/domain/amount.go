package domain

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a scraped price fragment ("$718,450", "725000",
// "$ 1 234.50") into an exact decimal amount. Currency symbol,
// thousands separators and any whitespace (including NBSP) are stripped
// before parsing. Zero and negative amounts are rejected: the target page
// shows "$0" as a rendering placeholder, never as a real estimate.
func ParseAmount(raw string) (decimal.Decimal, error) {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r == '$' || r == ',':
		case unicode.IsSpace(r):
		default:
			b.WriteRune(r)
		}
	}
	s := b.String()
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("%w: empty amount %q", ErrMalformedPrice, raw)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrMalformedPrice, raw)
	}
	if d.Sign() <= 0 {
		return decimal.Decimal{}, fmt.Errorf("%w: non-positive amount %q", ErrMalformedPrice, raw)
	}
	return d, nil
}
