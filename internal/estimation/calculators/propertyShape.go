package calculators

import (
	"fmt"

	"github.com/landclear/quote-planner/internal/estimation"
	"github.com/shopspring/decimal"
)

// Compile-time assertion that PropertyShape implements the Calculator interface.
var _ estimation.Calculator = (*PropertyShape)(nil)

// PropertyShape adjusts for parcel size when the customer drew a boundary:
// tiny parcels are inefficient to set up for, large ones benefit from scale.
type PropertyShape struct {
	shape estimation.ShapeTable
}

type PropertyShapeOption func(*PropertyShape)

func WithShapeTable(t estimation.ShapeTable) PropertyShapeOption {
	return func(p *PropertyShape) {
		p.shape = t
	}
}

func NewPropertyShape(opts ...PropertyShapeOption) *PropertyShape {
	res := PropertyShape{shape: estimation.DefaultTables().Shape}
	for _, opt := range opts {
		opt(&res)
	}
	return &res
}

func (c *PropertyShape) Name() string { return "Property Shape" }

func (c *PropertyShape) Calculate(base decimal.Decimal, qc estimation.QuoteContext) (estimation.AdjustmentResult, error) {
	res := estimation.AdjustmentResult{
		Name:    c.Name(),
		Kind:    estimation.AdjustmentPropertyShape,
		Amount:  decimal.Zero,
		Percent: decimal.Zero,
	}
	if qc.Boundary == nil {
		res.Detail = estimation.DescribePercent(decimal.Zero, "no property boundary supplied")
		return res, nil
	}

	area := qc.Boundary.ApproxAreaSqM()
	var reason string
	switch {
	case area < c.shape.SmallParcelSqM:
		res.Percent = estimation.Percent(c.shape.SmallParcelPercent)
		reason = fmt.Sprintf("small parcel (%.0f m²)", area)
	case area > c.shape.LargeParcelSqM:
		res.Percent = estimation.Percent(c.shape.LargeParcelPercent)
		reason = fmt.Sprintf("large parcel (%.0f m²)", area)
	default:
		reason = fmt.Sprintf("parcel size within standard range (%.0f m²)", area)
	}

	res.Amount = estimation.ApplyPercent(base, res.Percent)
	res.Detail = estimation.DescribePercent(res.Percent, reason)
	return res, nil
}
