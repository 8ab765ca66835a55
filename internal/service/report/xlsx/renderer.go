package xlsx

import (
	"fmt"
	"io"

	"github.com/landclear/quote-planner/internal/service/report/types"
	"github.com/xuri/excelize/v2"
)

const (
	QuotesSheet  = "Quotes"
	SummarySheet = "Summary"
)

// Renderer writes a workbook with the quote table on one sheet and the
// totals per zone and package on another.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

func (r *Renderer) SupportedFormat() types.ReportFormat {
	return types.ReportFormatXLSX
}

func (r *Renderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (r *Renderer) Render(data *types.ReportData, w io.Writer) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", QuotesSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if err := r.addQuotes(f, data.Rows); err != nil {
		return err
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := r.addSummary(f, data); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (r *Renderer) addQuotes(f *excelize.File, rows []types.QuoteRow) error {
	header := make([]interface{}, 0, len(types.Columns))
	for _, c := range types.Columns {
		header = append(header, c)
	}
	if err := f.SetSheetRow(QuotesSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		// numbers stay numeric so the sheet can sum them
		values := []interface{}{
			row.ID,
			row.CreatedAt,
			row.ContactName,
			row.ContactEmail,
			row.ContactPhone,
			row.Address,
			row.Verified,
			row.Zone,
			row.DistanceKm,
			row.Acreage,
			row.Package,
			row.Urgency,
			row.TotalPrice.InexactFloat64(),
			row.EstimatedDays,
			row.Confidence,
		}
		if err := f.SetSheetRow(QuotesSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}
	return nil
}

func (r *Renderer) addSummary(f *excelize.File, data *types.ReportData) error {
	s := data.Summary
	rows := [][]interface{}{
		{"Land Clearing Quote Export"},
		{fmt.Sprintf("Generated: %s at %s", data.Timestamps.Generated, data.Timestamps.GeneratedTime)},
		{},
		{"Total Quotes", s.TotalQuotes},
		{"Total Value", s.TotalValue.InexactFloat64()},
		{"Average Value", s.AverageValue.InexactFloat64()},
		{"Average Confidence", s.AverageConfidence},
		{},
		{"Zone", "Quotes", "Value"},
	}
	for _, z := range s.ByZone {
		rows = append(rows, []interface{}{z.Name, z.Count, z.Value.InexactFloat64()})
	}
	rows = append(rows, []interface{}{}, []interface{}{"Package", "Quotes", "Value"})
	for _, p := range s.ByPackage {
		rows = append(rows, []interface{}{p.Name, p.Count, p.Value.InexactFloat64()})
	}

	for i := range rows {
		if len(rows[i]) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SummarySheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("failed to write summary row %d: %w", i+1, err)
		}
	}
	return nil
}
