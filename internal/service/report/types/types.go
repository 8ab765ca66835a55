package types

import (
	"fmt"
	"io"
	"strconv"

	"github.com/landclear/quote-planner/internal/store/model"
	"github.com/shopspring/decimal"
)

type ReportRenderer interface {
	Render(data *ReportData, w io.Writer) error
	SupportedFormat() ReportFormat
	ContentType() string
}

type QuoteProcessor interface {
	ProcessQuotes(quotes model.QuoteList) *ReportData
}

type ReportFormat string

const (
	ReportFormatCSV  ReportFormat = "csv"
	ReportFormatXLSX ReportFormat = "xlsx"
)

type ReportData struct {
	Rows       []QuoteRow
	Summary    SummaryMetrics
	Timestamps ReportTimestamps
}

// QuoteRow is one exported quote with display-ready values.
type QuoteRow struct {
	ID            string
	CreatedAt     string
	ContactName   string
	ContactEmail  string
	ContactPhone  string
	Address       string
	Verified      bool
	Zone          string
	DistanceKm    float64
	Acreage       float64
	Package       string
	Urgency       string
	TotalPrice    decimal.Decimal
	EstimatedDays float64
	Confidence    int
}

type SummaryMetrics struct {
	TotalQuotes       int
	TotalValue        decimal.Decimal
	AverageValue      decimal.Decimal
	AverageConfidence float64
	ByZone            []CountDetail
	ByPackage         []CountDetail
}

type CountDetail struct {
	Name  string
	Count int
	Value decimal.Decimal
}

type ReportTimestamps struct {
	Generated     string
	GeneratedTime string
}

// Columns is the header shared by every tabular export.
var Columns = []string{
	"Quote ID", "Created", "Contact Name", "Contact Email", "Contact Phone", "Address",
	"Verified", "Zone", "Distance (km)", "Acreage", "Package", "Urgency",
	"Total Price", "Estimated Days", "Confidence",
}

// Record returns the row as strings in Columns order.
func (r QuoteRow) Record() []string {
	return []string{
		r.ID,
		r.CreatedAt,
		r.ContactName,
		r.ContactEmail,
		r.ContactPhone,
		r.Address,
		strconv.FormatBool(r.Verified),
		r.Zone,
		fmt.Sprintf("%.1f", r.DistanceKm),
		strconv.FormatFloat(r.Acreage, 'f', -1, 64),
		r.Package,
		r.Urgency,
		r.TotalPrice.StringFixed(2),
		strconv.FormatFloat(r.EstimatedDays, 'f', -1, 64),
		strconv.Itoa(r.Confidence),
	}
}
