package estimation

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	MinAccessibilityScore = 1
	MaxAccessibilityScore = 10
)

// Assembler composes the base price, the engine's adjustments, the timeline and
// the confidence score into an Estimate.
type Assembler struct {
	tables *Tables
	engine *Engine
}

func NewAssembler(tables *Tables, engine *Engine) *Assembler {
	return &Assembler{tables: tables, engine: engine}
}

func (a *Assembler) Tables() *Tables {
	return a.tables
}

// ComputeEstimate prices one job. It is pure: the same location and
// parameters always produce the same Estimate. Invalid input is rejected
// with an error wrapping ErrInvalidInput; unknown enum values fall back to
// defaults and are reported in the assumptions.
func (a *Assembler) ComputeEstimate(loc PropertyLocation, params ProjectParameters) (Estimate, error) {
	if err := validateInput(loc, params); err != nil {
		return Estimate{}, err
	}

	qc := a.NewQuoteContext(loc, params)
	rate, _, _ := a.tables.Package(qc.Package)
	if !rate.PricePerAcre.IsPositive() {
		return Estimate{}, fmt.Errorf("%w: package %q has no price", ErrInvalidInput, qc.Package)
	}

	base := rate.PricePerAcre.Mul(decimal.NewFromFloat(params.Acreage))

	results, err := a.engine.Run(base, qc)
	if err != nil {
		return Estimate{}, err
	}

	est := Estimate{
		Package:                 qc.Package,
		Urgency:                 qc.Urgency,
		Acreage:                 params.Acreage,
		PricePerAcre:            rate.PricePerAcre,
		BasePrice:               base,
		TravelSurcharge:         decimal.Zero,
		ObstacleAdjustment:      decimal.Zero,
		AccessibilityAdjustment: decimal.Zero,
		UrgencyAdjustment:       decimal.Zero,
		PropertyAdjustment:      decimal.Zero,
		Breakdown:               results,
		Zone:                    qc.Zone.Name,
		ZoneSurchargePercent:    qc.Zone.SurchargePercent,
		OutOfServiceArea:        qc.Zone.OutOfArea,
		DistanceMeters:          loc.DistanceMeters,
		DriveTimeSeconds:        loc.DriveTimeSeconds,
		LocationVerified:        loc.Verified,
		DataQuality:             qc.Quality,
	}

	other := decimal.Zero
	for _, r := range results {
		switch r.Kind {
		case AdjustmentTravel:
			est.TravelSurcharge = est.TravelSurcharge.Add(r.Amount)
		case AdjustmentUrgency:
			est.UrgencyAdjustment = est.UrgencyAdjustment.Add(r.Amount)
		case AdjustmentAccessibility:
			if len(r.Components) == 0 {
				est.AccessibilityAdjustment = est.AccessibilityAdjustment.Add(r.Amount)
				continue
			}
			est.AccessibilityAdjustment = est.AccessibilityAdjustment.Add(r.Component(ComponentSiteAccess).Amount)
			est.ObstacleAdjustment = est.ObstacleAdjustment.Add(r.Component(ComponentAccessConcerns).Amount)
		case AdjustmentPropertyShape:
			est.PropertyAdjustment = est.PropertyAdjustment.Add(r.Amount)
		default:
			other = other.Add(r.Amount)
		}
	}

	// one rounding step, on the full sum
	total := base.
		Add(est.TravelSurcharge).
		Add(est.UrgencyAdjustment).
		Add(est.ObstacleAdjustment).
		Add(est.AccessibilityAdjustment).
		Add(est.PropertyAdjustment).
		Add(other).
		Round(0)
	if total.IsNegative() {
		total = decimal.Zero
	}
	if total.LessThan(rate.MinimumCharge) {
		total = rate.MinimumCharge
		est.MinimumChargeApplied = true
	}
	est.TotalPrice = total

	est.EstimatedDays = a.tables.EstimateDays(qc)
	est.Confidence = ScoreConfidence(qc)
	est.Assumptions = a.assumptions(qc, est, results, rate)

	return est, nil
}

// NewQuoteContext resolves enum values through the tables, normalizes the tag
// sets and classifies the zone. Fallbacks are logged and recorded in
// QuoteContext.Quality.
func (a *Assembler) NewQuoteContext(loc PropertyLocation, params ProjectParameters) QuoteContext {
	logger := zap.S().Named("estimation")

	qc := QuoteContext{
		Location:       loc,
		Acreage:        params.Acreage,
		Obstacles:      NormalizeTags(params.Obstacles),
		AccessConcerns: NormalizeTags(params.AccessConcerns),
		Boundary:       params.Boundary,
		Zone:           a.tables.ClassifyZone(loc.DistanceMeters),
	}

	_, pkg, fallback := a.tables.Package(params.Package)
	qc.Package = pkg
	if fallback {
		qc.Quality.PackageFallback = true
		qc.Quality.RequestedPackage = string(params.Package)
		logger.Warnw("unknown package, falling back to default", "requested", params.Package, "package", pkg)
	}

	_, urgency, fallback := a.tables.UrgencyRate(params.Urgency)
	qc.Urgency = urgency
	if fallback {
		qc.Quality.UrgencyFallback = true
		qc.Quality.RequestedUrgency = string(params.Urgency)
		logger.Warnw("unknown urgency, falling back to standard", "requested", params.Urgency)
	}

	if loc.PropertyType != nil {
		if _, known := a.tables.PropertyModifier(loc.PropertyType); known {
			pt := *loc.PropertyType
			qc.PropertyType = &pt
		} else {
			qc.Quality.PropertyTypeFallback = true
			qc.Quality.RequestedProperty = string(*loc.PropertyType)
			logger.Warnw("unknown property type, ignoring modifier", "requested", *loc.PropertyType)
		}
	}

	return qc
}

// assumptions builds the human-readable caveats in a fixed order.
func (a *Assembler) assumptions(qc QuoteContext, est Estimate, results []AdjustmentResult, rate PackageRate) []string {
	out := make([]string, 0)

	if !qc.Location.Verified {
		out = append(out, "Location could not be verified; pricing uses an approximate position")
	}
	if qc.Quality.PackageFallback {
		out = append(out, fmt.Sprintf("Package %q not recognized; priced as %s (%s)", qc.Quality.RequestedPackage, qc.Package, rate.Label))
	}
	if !est.TravelSurcharge.IsZero() {
		out = append(out, "Travel surcharge applied: "+detailOf(results, AdjustmentTravel, ""))
	}
	if qc.Zone.OutOfArea {
		out = append(out, fmt.Sprintf("Property is %.1f km from base, outside the service area; maximum travel surcharge applied", qc.Location.DistanceMeters/1000))
	}
	if !est.UrgencyAdjustment.IsZero() {
		out = append(out, "Urgency adjustment applied: "+detailOf(results, AdjustmentUrgency, ""))
	}
	if qc.Quality.UrgencyFallback {
		out = append(out, fmt.Sprintf("Urgency %q not recognized; scheduled as %s", qc.Quality.RequestedUrgency, UrgencyStandard))
	}
	if !est.AccessibilityAdjustment.IsZero() {
		out = append(out, "Site accessibility adjustment applied: "+detailOf(results, AdjustmentAccessibility, ComponentSiteAccess))
	}
	if !est.ObstacleAdjustment.IsZero() {
		out = append(out, "Access concerns adjustment applied: "+detailOf(results, AdjustmentAccessibility, ComponentAccessConcerns))
	}
	if qc.Quality.PropertyTypeFallback {
		out = append(out, fmt.Sprintf("Property type %q not recognized; no property-type modifier applied", qc.Quality.RequestedProperty))
	}
	if !est.PropertyAdjustment.IsZero() {
		out = append(out, "Property size adjustment applied: "+detailOf(results, AdjustmentPropertyShape, ""))
	}
	for _, r := range results {
		if !isBuiltinKind(r.Kind) && !r.IsZero() {
			out = append(out, fmt.Sprintf("%s applied: %s", r.Name, r.Detail))
		}
	}
	if est.MinimumChargeApplied {
		out = append(out, fmt.Sprintf("Minimum charge of %s applied", FormatDollars(rate.MinimumCharge)))
	}

	return out
}

func detailOf(results []AdjustmentResult, kind AdjustmentKind, component string) string {
	for _, r := range results {
		if r.Kind != kind {
			continue
		}
		if component != "" && len(r.Components) > 0 {
			return r.Component(component).Detail
		}
		return r.Detail
	}
	return ""
}

func isBuiltinKind(k AdjustmentKind) bool {
	switch k {
	case AdjustmentTravel, AdjustmentUrgency, AdjustmentAccessibility, AdjustmentPropertyShape:
		return true
	}
	return false
}

func validateInput(loc PropertyLocation, params ProjectParameters) error {
	if math.IsNaN(params.Acreage) || math.IsInf(params.Acreage, 0) || params.Acreage <= 0 {
		return fmt.Errorf("%w: acreage must be a positive number, got %v", ErrInvalidInput, params.Acreage)
	}
	if err := loc.Coordinates.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if math.IsNaN(loc.DistanceMeters) || loc.DistanceMeters < 0 {
		return fmt.Errorf("%w: distance must not be negative, got %v", ErrInvalidInput, loc.DistanceMeters)
	}
	if s := loc.AccessibilityScore; s != nil && (*s < MinAccessibilityScore || *s > MaxAccessibilityScore) {
		return fmt.Errorf("%w: accessibility score must be between %d and %d, got %d", ErrInvalidInput, MinAccessibilityScore, MaxAccessibilityScore, *s)
	}
	if params.Boundary != nil {
		if err := params.Boundary.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
	}
	return nil
}
