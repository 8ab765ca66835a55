package estimation

import (
	"github.com/landclear/quote-planner/internal/geo"
	"github.com/shopspring/decimal"
)

// PackageType is the vegetation-diameter tier sold to the customer.
type PackageType string

const (
	PackageSmall  PackageType = "small"
	PackageMedium PackageType = "medium"
	PackageLarge  PackageType = "large"
	PackageXLarge PackageType = "xlarge"
)

type UrgencyTier string

const (
	UrgencyStandard  UrgencyTier = "standard"
	UrgencyPriority  UrgencyTier = "priority"
	UrgencyEmergency UrgencyTier = "emergency"
)

type PropertyType string

const (
	PropertyResidential  PropertyType = "residential"
	PropertyCommercial   PropertyType = "commercial"
	PropertyAgricultural PropertyType = "agricultural"
	PropertyIndustrial   PropertyType = "industrial"
)

// PropertyLocation is the resolved position of the job site. A new value is
// produced whenever the customer moves the pin; existing values are never
// modified.
type PropertyLocation struct {
	Coordinates      geo.Coordinates `json:"coordinates"`
	FormattedAddress string          `json:"formattedAddress"`
	// Verified is set when the address matched a canonical geocoding result
	// or the customer placed the pin directly.
	Verified bool `json:"verified"`
	// PropertyType and AccessibilityScore are best-effort and may be nil.
	PropertyType       *PropertyType `json:"propertyType,omitempty"`
	AccessibilityScore *int          `json:"accessibilityScore,omitempty"`
	DistanceMeters     float64       `json:"distanceMeters"`
	DriveTimeSeconds   int           `json:"driveTimeSeconds"`
	Zone               string        `json:"zone"`
}

// ProjectParameters is what the customer tells us about the job.
// Obstacles and AccessConcerns have set semantics.
type ProjectParameters struct {
	Acreage        float64          `json:"acreage"`
	Package        PackageType      `json:"package"`
	Obstacles      []string         `json:"obstacles,omitempty"`
	Urgency        UrgencyTier      `json:"urgency"`
	AccessConcerns []string         `json:"accessConcerns,omitempty"`
	Boundary       *geo.BoundingBox `json:"boundary,omitempty"`
}

type AdjustmentKind string

const (
	AdjustmentTravel        AdjustmentKind = "travel"
	AdjustmentUrgency       AdjustmentKind = "urgency"
	AdjustmentAccessibility AdjustmentKind = "accessibility"
	AdjustmentPropertyShape AdjustmentKind = "property_shape"

	// components of AdjustmentAccessibility
	ComponentSiteAccess     = "site_access"
	ComponentAccessConcerns = "access_concerns"
)

// AdjustmentResult is a signed dollar amount with enough detail to explain
// itself, e.g. "35% premium, emergency scheduling".
type AdjustmentResult struct {
	Name       string             `json:"name"`
	Kind       AdjustmentKind     `json:"kind"`
	Amount     decimal.Decimal    `json:"amount"`
	Percent    decimal.Decimal    `json:"percent"`
	Detail     string             `json:"detail"`
	Components []AdjustmentResult `json:"components,omitempty"`
}

// IsZero reports whether the adjustment does not move the price.
func (r AdjustmentResult) IsZero() bool {
	return r.Amount.IsZero()
}

// Component returns the named component, or a zero result.
func (r AdjustmentResult) Component(name string) AdjustmentResult {
	for _, c := range r.Components {
		if c.Name == name {
			return c
		}
	}
	return AdjustmentResult{Name: name, Kind: r.Kind}
}

// DataQuality records the enum values that had to fall back to a default.
type DataQuality struct {
	PackageFallback      bool   `json:"packageFallback,omitempty"`
	RequestedPackage     string `json:"requestedPackage,omitempty"`
	UrgencyFallback      bool   `json:"urgencyFallback,omitempty"`
	RequestedUrgency     string `json:"requestedUrgency,omitempty"`
	PropertyTypeFallback bool   `json:"propertyTypeFallback,omitempty"`
	RequestedProperty    string `json:"requestedPropertyType,omitempty"`
}

func (d DataQuality) Fallbacks() int {
	n := 0
	for _, f := range []bool{d.PackageFallback, d.UrgencyFallback, d.PropertyTypeFallback} {
		if f {
			n++
		}
	}
	return n
}

// Zone is the travel band a distance falls into.
type Zone struct {
	Name             string  `json:"name"`
	SurchargePercent float64 `json:"surchargePercent"`
	OutOfArea        bool    `json:"outOfArea,omitempty"`
}

// QuoteContext is the shared, read-only input handed to every Calculator.
// Enum fields hold already resolved values.
type QuoteContext struct {
	Location       PropertyLocation
	Acreage        float64
	Package        PackageType
	Urgency        UrgencyTier
	PropertyType   *PropertyType
	Obstacles      []string
	AccessConcerns []string
	Boundary       *geo.BoundingBox
	Zone           Zone
	Quality        DataQuality
}

// Estimate is the assembled quote. Identical inputs produce identical values.
type Estimate struct {
	Package      PackageType     `json:"package"`
	Urgency      UrgencyTier     `json:"urgency"`
	Acreage      float64         `json:"acreage"`
	PricePerAcre decimal.Decimal `json:"pricePerAcre"`

	BasePrice               decimal.Decimal `json:"basePrice"`
	TravelSurcharge         decimal.Decimal `json:"travelSurcharge"`
	ObstacleAdjustment      decimal.Decimal `json:"obstacleAdjustment"`
	AccessibilityAdjustment decimal.Decimal `json:"accessibilityAdjustment"`
	UrgencyAdjustment       decimal.Decimal `json:"urgencyAdjustment"`
	PropertyAdjustment      decimal.Decimal `json:"propertyAdjustment"`
	TotalPrice              decimal.Decimal `json:"totalPrice"`
	MinimumChargeApplied    bool            `json:"minimumChargeApplied,omitempty"`

	EstimatedDays float64  `json:"estimatedDays"`
	Confidence    int      `json:"confidence"`
	Assumptions   []string `json:"assumptions"`

	Breakdown []AdjustmentResult `json:"breakdown"`

	Zone                 string  `json:"zone"`
	ZoneSurchargePercent float64 `json:"zoneSurchargePercent"`
	OutOfServiceArea     bool    `json:"outOfServiceArea,omitempty"`
	DistanceMeters       float64 `json:"distanceMeters"`
	DriveTimeSeconds     int     `json:"driveTimeSeconds"`
	LocationVerified     bool    `json:"locationVerified"`

	DataQuality DataQuality `json:"dataQuality"`
}
