package v1alpha1

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Coordinates is a map pin placed by the customer.
type Coordinates struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

// Boundary is the rectangle the customer drew around the parcel.
type Boundary struct {
	MinLat float64 `json:"minLat" validate:"gte=-90,lte=90"`
	MinLng float64 `json:"minLng" validate:"gte=-180,lte=180"`
	MaxLat float64 `json:"maxLat" validate:"gte=-90,lte=90,gtefield=MinLat"`
	MaxLng float64 `json:"maxLng" validate:"gte=-180,lte=180,gtefield=MinLng"`
}

type Location struct {
	Address     string       `json:"address,omitempty" validate:"required_without=Coordinates,max=500"`
	ZipCode     string       `json:"zipCode,omitempty" validate:"omitempty,zip5"`
	Coordinates *Coordinates `json:"coordinates,omitempty" validate:"omitempty"`
}

type Project struct {
	Acreage        float64   `json:"acreage" validate:"gte=0.1,lte=1000"`
	Package        string    `json:"package" validate:"required,enum_token"`
	Urgency        string    `json:"urgency,omitempty" validate:"omitempty,enum_token"`
	Obstacles      []string  `json:"obstacles,omitempty" validate:"max=20,dive,site_tag"`
	AccessConcerns []string  `json:"accessConcerns,omitempty" validate:"max=20,dive,site_tag"`
	Boundary       *Boundary `json:"boundary,omitempty" validate:"omitempty"`
}

type Contact struct {
	Name  string `json:"name,omitempty" validate:"max=255"`
	Email string `json:"email" validate:"required,email,max=255"`
	Phone string `json:"phone,omitempty" validate:"omitempty,max=50,phone"`
}

// EstimateRequest asks for a price without leaving contact details.
type EstimateRequest struct {
	Location Location `json:"location"`
	Project  Project  `json:"project"`
}

// QuoteCreate asks for a price and stores it as a lead.
type QuoteCreate struct {
	Contact  Contact  `json:"contact"`
	Location Location `json:"location"`
	Project  Project  `json:"project"`
}

type ResolvedLocation struct {
	Coordinates        Coordinates `json:"coordinates"`
	FormattedAddress   string      `json:"formattedAddress"`
	Verified           bool        `json:"verified"`
	PropertyType       *string     `json:"propertyType,omitempty"`
	AccessibilityScore *int        `json:"accessibilityScore,omitempty"`
	DistanceKm         float64     `json:"distanceKm"`
	DriveTimeMinutes   int         `json:"driveTimeMinutes"`
	Zone               string      `json:"zone"`
}

type Adjustment struct {
	Name       string          `json:"name"`
	Amount     decimal.Decimal `json:"amount"`
	Percent    decimal.Decimal `json:"percent"`
	Detail     string          `json:"detail"`
	Components []Adjustment    `json:"components,omitempty"`
}

type Estimate struct {
	Package                 string          `json:"package"`
	Urgency                 string          `json:"urgency"`
	Acreage                 float64         `json:"acreage"`
	PricePerAcre            decimal.Decimal `json:"pricePerAcre"`
	BasePrice               decimal.Decimal `json:"basePrice"`
	TravelSurcharge         decimal.Decimal `json:"travelSurcharge"`
	ObstacleAdjustment      decimal.Decimal `json:"obstacleAdjustment"`
	AccessibilityAdjustment decimal.Decimal `json:"accessibilityAdjustment"`
	UrgencyAdjustment       decimal.Decimal `json:"urgencyAdjustment"`
	PropertyAdjustment      decimal.Decimal `json:"propertyAdjustment"`
	TotalPrice              decimal.Decimal `json:"totalPrice"`
	MinimumChargeApplied    bool            `json:"minimumChargeApplied"`
	EstimatedDays           float64         `json:"estimatedDays"`
	Confidence              int             `json:"confidence"`
	Assumptions             []string        `json:"assumptions"`
	Breakdown               []Adjustment    `json:"breakdown"`
	OutOfServiceArea        bool            `json:"outOfServiceArea"`
}

type EstimateResponse struct {
	Location ResolvedLocation `json:"location"`
	Estimate Estimate         `json:"estimate"`
}

type Quote struct {
	Id        uuid.UUID        `json:"id"`
	CreatedAt time.Time        `json:"createdAt"`
	Contact   Contact          `json:"contact"`
	Location  ResolvedLocation `json:"location"`
	Estimate  Estimate         `json:"estimate"`
}

type QuoteList struct {
	Quotes []Quote `json:"quotes"`
	Total  int64   `json:"total"`
}

type CatalogPackage struct {
	Name          string          `json:"name"`
	Label         string          `json:"label"`
	PricePerAcre  decimal.Decimal `json:"pricePerAcre"`
	MinimumCharge decimal.Decimal `json:"minimumCharge"`
	DaysPerAcre   float64         `json:"daysPerAcre"`
}

type CatalogZone struct {
	Name             string   `json:"name"`
	MinKm            float64  `json:"minKm"`
	MaxKm            *float64 `json:"maxKm,omitempty"`
	SurchargePercent float64  `json:"surchargePercent"`
}

type CatalogUrgency struct {
	Name       string  `json:"name"`
	Label      string  `json:"label"`
	Multiplier float64 `json:"multiplier"`
}

// Catalog lists what the quote form can offer.
type Catalog struct {
	Packages      []CatalogPackage `json:"packages"`
	Zones         []CatalogZone    `json:"zones"`
	Urgency       []CatalogUrgency `json:"urgency"`
	PropertyTypes []string         `json:"propertyTypes"`
}

type Error struct {
	Message   string  `json:"message"`
	RequestId *string `json:"requestId,omitempty"`
}

type Status struct {
	Status string `json:"status"`
}
