package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid money amount")

var hundred = decimal.NewFromInt(100)

// ParseCents converts a user-entered decimal string (like "12.34") to cents
// as int64. Amounts are kept in minor units everywhere; decimal parsing only
// happens at the API edge so no float64 ever touches a money path.
func ParseCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidAmount, s)
	}
	if d.Exponent() < -2 {
		return 0, fmt.Errorf("%w: more than two decimal places", ErrInvalidAmount)
	}
	cents := d.Mul(hundred)
	if !cents.BigInt().IsInt64() {
		return 0, fmt.Errorf("%w: too large", ErrInvalidAmount)
	}
	return cents.IntPart(), nil
}

// FormatCents renders cents as a plain decimal string, e.g. -12345 -> "-123.45".
func FormatCents(cents int64) string {
	return decimal.NewFromInt(cents).Div(hundred).StringFixed(2)
}
