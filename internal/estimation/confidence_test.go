package estimation

import (
	"testing"

	"github.com/landclear/quote-planner/internal/geo"
)

func TestScoreConfidence(t *testing.T) {
	t.Parallel()
	score := func(s int) *int { return &s }
	residential := PropertyResidential

	tests := []struct {
		name string
		qc   QuoteContext
		want int
	}{
		{name: "nothing known", qc: QuoteContext{}, want: 80},
		{name: "verified", qc: QuoteContext{Location: PropertyLocation{Verified: true}}, want: 90},
		{name: "easy access", qc: QuoteContext{Location: PropertyLocation{AccessibilityScore: score(8)}}, want: 85},
		{name: "access score of seven earns nothing", qc: QuoteContext{Location: PropertyLocation{AccessibilityScore: score(7)}}, want: 80},
		{name: "obstacles and concerns", qc: QuoteContext{Obstacles: []string{"stumps"}, AccessConcerns: []string{"gate"}}, want: 86},
		{
			name: "everything known is capped",
			qc: QuoteContext{
				Location:       PropertyLocation{Verified: true, AccessibilityScore: score(9)},
				PropertyType:   &residential,
				Obstacles:      []string{"rocks"},
				AccessConcerns: []string{"slope"},
				Boundary:       &geo.BoundingBox{MaxLat: 1, MaxLng: 1},
			},
			want: ConfidenceMax,
		},
		{
			name: "fallbacks cost five points each",
			qc:   QuoteContext{Quality: DataQuality{PackageFallback: true, UrgencyFallback: true}},
			want: 70,
		},
		{
			name: "three fallbacks",
			qc:   QuoteContext{Quality: DataQuality{PackageFallback: true, UrgencyFallback: true, PropertyTypeFallback: true}},
			want: 65,
		},
	}
	for _, tt := range tests {
		if got := ScoreConfidence(tt.qc); got != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.name, tt.want, got)
		}
	}
}

func TestScoreConfidence_AlwaysInRange(t *testing.T) {
	t.Parallel()
	for mask := 0; mask < 1<<6; mask++ {
		qc := QuoteContext{}
		if mask&1 != 0 {
			qc.Location.Verified = true
		}
		if mask&2 != 0 {
			qc.Boundary = &geo.BoundingBox{}
		}
		if mask&4 != 0 {
			qc.Obstacles = []string{"x"}
		}
		qc.Quality.PackageFallback = mask&8 != 0
		qc.Quality.UrgencyFallback = mask&16 != 0
		qc.Quality.PropertyTypeFallback = mask&32 != 0

		got := ScoreConfidence(qc)
		if got < ConfidenceMin || got > ConfidenceMax {
			t.Fatalf("mask %b: score %d out of range", mask, got)
		}
	}
}
