package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/landclear/quote-planner/internal/estimation"
	"github.com/shopspring/decimal"
)

// Quote is a persisted estimate together with the lead that asked for it.
// The summary columns duplicate parts of Estimate so quotes can be filtered
// and exported without decoding the document.
type Quote struct {
	ID             uuid.UUID                       `gorm:"primaryKey;column:id;type:VARCHAR(255);"`
	CreatedAt      time.Time                       `gorm:"not null;index:quotes_created_at_idx"`
	ContactName    string                          `gorm:"type:VARCHAR(255)"`
	ContactEmail   string                          `gorm:"type:VARCHAR(255);index:quotes_contact_email_idx"`
	ContactPhone   string                          `gorm:"type:VARCHAR(50)"`
	Address        string                          `gorm:"type:TEXT"`
	Latitude       float64                         `gorm:"not null"`
	Longitude      float64                         `gorm:"not null"`
	Verified       bool                            `gorm:"not null"`
	Zone           string                          `gorm:"type:VARCHAR(50);index:quotes_zone_idx"`
	DistanceMeters float64                         `gorm:"not null"`
	Acreage        float64                         `gorm:"not null"`
	Package        string                          `gorm:"type:VARCHAR(50);not null"`
	Urgency        string                          `gorm:"type:VARCHAR(50);not null"`
	TotalPrice     decimal.Decimal                 `gorm:"type:NUMERIC(12,2);not null"`
	Confidence     int                             `gorm:"not null"`
	EstimatedDays  float64                         `gorm:"not null"`
	Estimate       *JSONField[estimation.Estimate] `gorm:"type:jsonb;not null"`
}

type QuoteList []Quote

// NewQuote copies the summary columns out of est.
func NewQuote(id uuid.UUID, loc estimation.PropertyLocation, est estimation.Estimate) Quote {
	return Quote{
		ID:             id,
		Address:        loc.FormattedAddress,
		Latitude:       loc.Coordinates.Lat,
		Longitude:      loc.Coordinates.Lng,
		Verified:       loc.Verified,
		Zone:           est.Zone,
		DistanceMeters: est.DistanceMeters,
		Acreage:        est.Acreage,
		Package:        string(est.Package),
		Urgency:        string(est.Urgency),
		TotalPrice:     est.TotalPrice,
		Confidence:     est.Confidence,
		EstimatedDays:  est.EstimatedDays,
		Estimate:       MakeJSONField(est),
	}
}

func (q Quote) String() string {
	val, _ := json.Marshal(q)
	return string(val)
}
