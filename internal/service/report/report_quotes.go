package report

import (
	"sort"
	"time"

	"github.com/landclear/quote-planner/internal/service/report/types"
	"github.com/landclear/quote-planner/internal/store/model"
	"github.com/shopspring/decimal"
)

type StandardQuoteProcessor struct {
	now func() time.Time
}

func NewStandardQuoteProcessor() *StandardQuoteProcessor {
	return &StandardQuoteProcessor{now: time.Now}
}

func (p *StandardQuoteProcessor) ProcessQuotes(quotes model.QuoteList) *types.ReportData {
	rows := make([]types.QuoteRow, 0, len(quotes))
	for _, q := range quotes {
		rows = append(rows, types.QuoteRow{
			ID:            q.ID.String(),
			CreatedAt:     q.CreatedAt.UTC().Format(time.RFC3339),
			ContactName:   q.ContactName,
			ContactEmail:  q.ContactEmail,
			ContactPhone:  q.ContactPhone,
			Address:       q.Address,
			Verified:      q.Verified,
			Zone:          q.Zone,
			DistanceKm:    q.DistanceMeters / 1000,
			Acreage:       q.Acreage,
			Package:       q.Package,
			Urgency:       q.Urgency,
			TotalPrice:    q.TotalPrice,
			EstimatedDays: q.EstimatedDays,
			Confidence:    q.Confidence,
		})
	}

	return &types.ReportData{
		Rows:       rows,
		Summary:    p.processSummary(quotes),
		Timestamps: p.generateTimestamps(),
	}
}

func (p *StandardQuoteProcessor) processSummary(quotes model.QuoteList) types.SummaryMetrics {
	summary := types.SummaryMetrics{
		TotalQuotes:  len(quotes),
		TotalValue:   decimal.Zero,
		AverageValue: decimal.Zero,
		ByZone:       []types.CountDetail{},
		ByPackage:    []types.CountDetail{},
	}
	if len(quotes) == 0 {
		return summary
	}

	zones := map[string]*types.CountDetail{}
	packages := map[string]*types.CountDetail{}
	confidence := 0
	for _, q := range quotes {
		summary.TotalValue = summary.TotalValue.Add(q.TotalPrice)
		confidence += q.Confidence
		addCount(zones, q.Zone, q.TotalPrice)
		addCount(packages, q.Package, q.TotalPrice)
	}

	summary.AverageValue = summary.TotalValue.Div(decimal.NewFromInt(int64(len(quotes)))).Round(2)
	summary.AverageConfidence = float64(confidence) / float64(len(quotes))
	summary.ByZone = sortedCounts(zones)
	summary.ByPackage = sortedCounts(packages)

	return summary
}

func addCount(m map[string]*types.CountDetail, name string, value decimal.Decimal) {
	d, ok := m[name]
	if !ok {
		d = &types.CountDetail{Name: name, Value: decimal.Zero}
		m[name] = d
	}
	d.Count++
	d.Value = d.Value.Add(value)
}

// sortedCounts orders by count, then by name.
func sortedCounts(m map[string]*types.CountDetail) []types.CountDetail {
	out := make([]types.CountDetail, 0, len(m))
	for _, d := range m {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (p *StandardQuoteProcessor) generateTimestamps() types.ReportTimestamps {
	now := p.now().UTC()
	return types.ReportTimestamps{
		Generated:     now.Format("January 2, 2006"),
		GeneratedTime: now.Format("15:04:05 MST"),
	}
}
