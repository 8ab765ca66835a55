package estimation

const (
	ConfidenceBase = 80
	ConfidenceMin  = 60
	ConfidenceMax  = 95

	verifiedBonus           = 10
	accessibilityBonus      = 5
	accessibilityBonusAbove = 7
	propertyTypeBonus       = 5
	obstaclesBonus          = 3
	accessConcernsBonus     = 3
	boundaryBonus           = 7
	fallbackPenalty         = 5
)

// ScoreConfidence rates how much of the quote rests on verified input.
// The score is clamped to [ConfidenceMin, ConfidenceMax]: a quote is always
// provisional until someone walks the site.
func ScoreConfidence(qc QuoteContext) int {
	score := ConfidenceBase

	if qc.Location.Verified {
		score += verifiedBonus
	}
	if s := qc.Location.AccessibilityScore; s != nil && *s > accessibilityBonusAbove {
		score += accessibilityBonus
	}
	if qc.PropertyType != nil {
		score += propertyTypeBonus
	}
	if len(qc.Obstacles) > 0 {
		score += obstaclesBonus
	}
	if len(qc.AccessConcerns) > 0 {
		score += accessConcernsBonus
	}
	if qc.Boundary != nil {
		score += boundaryBonus
	}
	score -= fallbackPenalty * qc.Quality.Fallbacks()

	return min(max(score, ConfidenceMin), ConfidenceMax)
}
