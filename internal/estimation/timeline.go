package estimation

import "math"

// EstimateDays converts the job into working days. The package rate gives
// the base figure, urgency compresses it, and poor access, many access
// concerns and the property type extend or shorten it. The result is never
// below Timeline.MinDays and is rounded to two decimals.
func (t *Tables) EstimateDays(qc QuoteContext) float64 {
	rate, _, _ := t.Package(qc.Package)
	days := rate.DaysPerAcre * qc.Acreage

	urgency, _, _ := t.UrgencyRate(qc.Urgency)
	if urgency.MaxDayReduction > 0 {
		days -= math.Min(urgency.MaxDayReduction, math.Max(0, days-urgency.DayFloor))
	}

	if score := qc.Location.AccessibilityScore; score != nil && *score < t.Timeline.LowAccessibilityBelow {
		days += t.Timeline.LowAccessibilityDays
	}
	if len(qc.AccessConcerns) > t.Timeline.ManyConcernsOver {
		days += t.Timeline.ManyConcernsDays
	}

	mod, _ := t.PropertyModifier(qc.PropertyType)
	days += mod.DayDelta

	days = math.Max(days, t.Timeline.MinDays)
	return math.Round(days*100) / 100
}
