package csv

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/landclear/quote-planner/internal/service/report/types"
)

// Renderer writes one header line followed by one line per quote, so the
// export can be imported into a spreadsheet or a CRM as is.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

func (r *Renderer) SupportedFormat() types.ReportFormat {
	return types.ReportFormatCSV
}

func (r *Renderer) ContentType() string {
	return "text/csv"
}

func (r *Renderer) Render(data *types.ReportData, w io.Writer) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(types.Columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range data.Rows {
		if err := writer.Write(row.Record()); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV writer: %w", err)
	}

	return nil
}
