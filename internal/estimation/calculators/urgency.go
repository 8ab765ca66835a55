package calculators

import (
	"github.com/landclear/quote-planner/internal/estimation"
	"github.com/shopspring/decimal"
)

// Compile-time assertion that Urgency implements the Calculator interface.
var _ estimation.Calculator = (*Urgency)(nil)

// Urgency prices faster scheduling as base × (multiplier − 1).
type Urgency struct {
	tables *estimation.Tables
}

type UrgencyOption func(*Urgency)

// WithUrgencyTables sets the tables holding the urgency multipliers.
func WithUrgencyTables(t *estimation.Tables) UrgencyOption {
	return func(u *Urgency) {
		if t != nil {
			u.tables = t
		}
	}
}

func NewUrgency(opts ...UrgencyOption) *Urgency {
	res := Urgency{tables: estimation.DefaultTables()}
	for _, opt := range opts {
		opt(&res)
	}
	return &res
}

func (c *Urgency) Name() string { return "Urgency" }

// Calculate fails closed: an unknown tier is priced as standard.
func (c *Urgency) Calculate(base decimal.Decimal, qc estimation.QuoteContext) (estimation.AdjustmentResult, error) {
	rate, _, _ := c.tables.UrgencyRate(qc.Urgency)
	pct := estimation.Percent(rate.Multiplier).Sub(decimal.NewFromInt(1)).Mul(decimal.NewFromInt(100))

	return estimation.AdjustmentResult{
		Name:    c.Name(),
		Kind:    estimation.AdjustmentUrgency,
		Amount:  estimation.ApplyPercent(base, pct),
		Percent: pct,
		Detail:  estimation.DescribePercent(pct, rate.Label),
	}, nil
}
