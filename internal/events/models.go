package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuoteCreatedEvent is handed to the notification dispatcher once a quote has
// been stored. It carries the lead contact so the dispatcher can email the
// customer without reading the quote store.
type QuoteCreatedEvent struct {
	QuoteID       string          `json:"quote_id"`
	CreatedAt     time.Time       `json:"created_at"`
	ContactName   string          `json:"contact_name,omitempty"`
	ContactEmail  string          `json:"contact_email,omitempty"`
	Address       string          `json:"address,omitempty"`
	Zone          string          `json:"zone"`
	Package       string          `json:"package"`
	Urgency       string          `json:"urgency"`
	Acreage       float64         `json:"acreage"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	EstimatedDays float64         `json:"estimated_days"`
	Confidence    int             `json:"confidence"`
}

type QuoteDeletedEvent struct {
	QuoteID string `json:"quote_id"`
}
