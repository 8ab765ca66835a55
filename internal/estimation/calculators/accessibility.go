package calculators

import (
	"fmt"
	"strings"

	"github.com/landclear/quote-planner/internal/estimation"
	"github.com/shopspring/decimal"
)

// maxDiscountPercent keeps a pathological negative sum from pricing the
// job below zero.
const maxDiscountPercent = -100

// Compile-time assertion that Accessibility implements the Calculator interface.
var _ estimation.Calculator = (*Accessibility)(nil)

// Accessibility adds up three percentages: the accessibility score band, a
// fixed premium per distinct access concern and the property-type modifier.
// The result carries two components: site_access (score band and property
// type) and access_concerns.
type Accessibility struct {
	tables *estimation.Tables
}

type AccessibilityOption func(*Accessibility)

func WithAccessibilityTables(t *estimation.Tables) AccessibilityOption {
	return func(a *Accessibility) {
		if t != nil {
			a.tables = t
		}
	}
}

func NewAccessibility(opts ...AccessibilityOption) *Accessibility {
	res := Accessibility{tables: estimation.DefaultTables()}
	for _, opt := range opts {
		opt(&res)
	}
	return &res
}

func (c *Accessibility) Name() string { return "Accessibility & Obstacles" }

func (c *Accessibility) Calculate(base decimal.Decimal, qc estimation.QuoteContext) (estimation.AdjustmentResult, error) {
	var siteReasons []string

	sitePct := decimal.Zero
	if score := qc.Location.AccessibilityScore; score != nil {
		band := estimation.Percent(c.tables.AccessibilityPercent(score))
		sitePct = sitePct.Add(band)
		siteReasons = append(siteReasons, fmt.Sprintf("accessibility score %d/10", *score))
	} else {
		siteReasons = append(siteReasons, "accessibility not assessed")
	}

	if mod, known := c.tables.PropertyModifier(qc.PropertyType); known {
		sitePct = sitePct.Add(estimation.Percent(mod.PricePercent))
		siteReasons = append(siteReasons, fmt.Sprintf("%s property", *qc.PropertyType))
	}

	concerns := estimation.NormalizeTags(qc.AccessConcerns)
	concernPct := estimation.Percent(c.tables.AccessConcernPct).Mul(decimal.NewFromInt(int64(len(concerns))))

	floor := decimal.NewFromInt(maxDiscountPercent)
	if total := sitePct.Add(concernPct); total.LessThan(floor) {
		sitePct = floor.Sub(concernPct)
	}

	concernReason := "no access concerns"
	if len(concerns) > 0 {
		concernReason = fmt.Sprintf("%d access concern(s): %s", len(concerns), strings.Join(concerns, ", "))
	}

	site := estimation.AdjustmentResult{
		Name:    estimation.ComponentSiteAccess,
		Kind:    estimation.AdjustmentAccessibility,
		Amount:  estimation.ApplyPercent(base, sitePct),
		Percent: sitePct,
		Detail:  estimation.DescribePercent(sitePct, strings.Join(siteReasons, ", ")),
	}
	concern := estimation.AdjustmentResult{
		Name:    estimation.ComponentAccessConcerns,
		Kind:    estimation.AdjustmentAccessibility,
		Amount:  estimation.ApplyPercent(base, concernPct),
		Percent: concernPct,
		Detail:  estimation.DescribePercent(concernPct, concernReason),
	}

	total := sitePct.Add(concernPct)
	return estimation.AdjustmentResult{
		Name:       c.Name(),
		Kind:       estimation.AdjustmentAccessibility,
		Amount:     site.Amount.Add(concern.Amount),
		Percent:    total,
		Detail:     estimation.DescribePercent(total, strings.Join(append(siteReasons, concernReason), ", ")),
		Components: []estimation.AdjustmentResult{site, concern},
	}, nil
}
