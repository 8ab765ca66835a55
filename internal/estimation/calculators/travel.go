package calculators

import (
	"fmt"
	"strings"

	"github.com/landclear/quote-planner/internal/estimation"
	"github.com/shopspring/decimal"
)

// Compile-time assertion that Travel implements the Calculator interface.
var _ estimation.Calculator = (*Travel)(nil)

// Travel prices the distance between the service base and the site: the zone
// surcharge plus any geographic risk rule covering the site.
type Travel struct {
	risk *estimation.GeoRiskIndex
}

// TravelOption configuration option for the calculator
type TravelOption func(*Travel)

// WithGeoRisk sets the index of regions with known logistics friction.
func WithGeoRisk(idx *estimation.GeoRiskIndex) TravelOption {
	return func(t *Travel) {
		t.risk = idx
	}
}

func NewTravel(opts ...TravelOption) *Travel {
	res := Travel{}
	for _, opt := range opts {
		opt(&res)
	}
	return &res
}

func (c *Travel) Name() string { return "Travel Surcharge" }

func (c *Travel) Calculate(base decimal.Decimal, qc estimation.QuoteContext) (estimation.AdjustmentResult, error) {
	km := qc.Location.DistanceMeters / 1000
	pct := estimation.Percent(qc.Zone.SurchargePercent)
	reasons := []string{fmt.Sprintf("%s zone (%.1f km from base)", qc.Zone.Name, km)}

	for _, rule := range c.risk.Match(qc.Location.Coordinates) {
		pct = pct.Add(estimation.Percent(rule.Percent))
		reasons = append(reasons, fmt.Sprintf("%s%% regional logistics (%s)", estimation.Percent(rule.Percent).String(), rule.Name))
	}

	return estimation.AdjustmentResult{
		Name:    c.Name(),
		Kind:    estimation.AdjustmentTravel,
		Amount:  estimation.ApplyPercent(base, pct),
		Percent: pct,
		Detail:  estimation.DescribePercent(pct, strings.Join(reasons, " + ")),
	}, nil
}
