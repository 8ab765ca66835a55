package estimation

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Percent converts percentage points from a table into a decimal.
func Percent(points float64) decimal.Decimal {
	return decimal.NewFromFloat(points)
}

// ApplyPercent returns base × points / 100 without rounding.
func ApplyPercent(base, points decimal.Decimal) decimal.Decimal {
	return base.Mul(points).Div(hundred)
}

// DescribePercent renders "15% premium, reason" or "3% discount, reason".
func DescribePercent(points decimal.Decimal, reason string) string {
	switch points.Sign() {
	case 1:
		return fmt.Sprintf("%s%% premium, %s", points.String(), reason)
	case -1:
		return fmt.Sprintf("%s%% discount, %s", points.Abs().String(), reason)
	default:
		return fmt.Sprintf("no adjustment, %s", reason)
	}
}

// FormatDollars renders a whole-dollar amount with thousands separators.
func FormatDollars(d decimal.Decimal) string {
	s := d.Abs().StringFixed(0)
	var b strings.Builder
	if d.IsNegative() {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}
