package mappers

import (
	"math"

	"github.com/landclear/quote-planner/api/v1alpha1"
	"github.com/landclear/quote-planner/internal/estimation"
	"github.com/landclear/quote-planner/internal/geo"
	"github.com/landclear/quote-planner/internal/store/model"
)

func LocationToApi(loc estimation.PropertyLocation) v1alpha1.ResolvedLocation {
	out := v1alpha1.ResolvedLocation{
		Coordinates:        v1alpha1.Coordinates{Lat: loc.Coordinates.Lat, Lng: loc.Coordinates.Lng},
		FormattedAddress:   loc.FormattedAddress,
		Verified:           loc.Verified,
		AccessibilityScore: loc.AccessibilityScore,
		DistanceKm:         math.Round(loc.DistanceMeters/100) / 10,
		DriveTimeMinutes:   int(math.Round(float64(loc.DriveTimeSeconds) / 60)),
		Zone:               loc.Zone,
	}
	if loc.PropertyType != nil {
		pt := string(*loc.PropertyType)
		out.PropertyType = &pt
	}
	return out
}

func adjustmentsToApi(results []estimation.AdjustmentResult) []v1alpha1.Adjustment {
	out := make([]v1alpha1.Adjustment, 0, len(results))
	for _, r := range results {
		a := v1alpha1.Adjustment{
			Name:    r.Name,
			Amount:  r.Amount,
			Percent: r.Percent,
			Detail:  r.Detail,
		}
		if len(r.Components) > 0 {
			a.Components = adjustmentsToApi(r.Components)
		}
		out = append(out, a)
	}
	return out
}

func EstimateToApi(est estimation.Estimate) v1alpha1.Estimate {
	assumptions := est.Assumptions
	if assumptions == nil {
		assumptions = []string{}
	}
	return v1alpha1.Estimate{
		Package:                 string(est.Package),
		Urgency:                 string(est.Urgency),
		Acreage:                 est.Acreage,
		PricePerAcre:            est.PricePerAcre,
		BasePrice:               est.BasePrice,
		TravelSurcharge:         est.TravelSurcharge,
		ObstacleAdjustment:      est.ObstacleAdjustment,
		AccessibilityAdjustment: est.AccessibilityAdjustment,
		UrgencyAdjustment:       est.UrgencyAdjustment,
		PropertyAdjustment:      est.PropertyAdjustment,
		TotalPrice:              est.TotalPrice,
		MinimumChargeApplied:    est.MinimumChargeApplied,
		EstimatedDays:           est.EstimatedDays,
		Confidence:              est.Confidence,
		Assumptions:             assumptions,
		Breakdown:               adjustmentsToApi(est.Breakdown),
		OutOfServiceArea:        est.OutOfServiceArea,
	}
}

func EstimateResponseToApi(est estimation.Estimate, loc estimation.PropertyLocation) v1alpha1.EstimateResponse {
	return v1alpha1.EstimateResponse{
		Location: LocationToApi(loc),
		Estimate: EstimateToApi(est),
	}
}

// QuoteToApi rebuilds the resolved location from the stored columns and the
// estimate document.
func QuoteToApi(q model.Quote) v1alpha1.Quote {
	var est estimation.Estimate
	if q.Estimate != nil {
		est = q.Estimate.Data
	}

	loc := estimation.PropertyLocation{
		Coordinates:      geo.Coordinates{Lat: q.Latitude, Lng: q.Longitude},
		FormattedAddress: q.Address,
		Verified:         q.Verified,
		DistanceMeters:   q.DistanceMeters,
		DriveTimeSeconds: est.DriveTimeSeconds,
		Zone:             q.Zone,
	}

	return v1alpha1.Quote{
		Id:        q.ID,
		CreatedAt: q.CreatedAt,
		Contact: v1alpha1.Contact{
			Name:  q.ContactName,
			Email: q.ContactEmail,
			Phone: q.ContactPhone,
		},
		Location: LocationToApi(loc),
		Estimate: EstimateToApi(est),
	}
}

func QuoteListToApi(quotes model.QuoteList, total int64) v1alpha1.QuoteList {
	out := v1alpha1.QuoteList{Quotes: make([]v1alpha1.Quote, 0, len(quotes)), Total: total}
	for _, q := range quotes {
		out.Quotes = append(out.Quotes, QuoteToApi(q))
	}
	return out
}

func CatalogToApi(t *estimation.Tables) v1alpha1.Catalog {
	c := v1alpha1.Catalog{
		Packages:      []v1alpha1.CatalogPackage{},
		Zones:         []v1alpha1.CatalogZone{},
		Urgency:       []v1alpha1.CatalogUrgency{},
		PropertyTypes: []string{},
	}

	for _, name := range t.PackageNames() {
		rate := t.Packages[name]
		c.Packages = append(c.Packages, v1alpha1.CatalogPackage{
			Name:          string(name),
			Label:         rate.Label,
			PricePerAcre:  rate.PricePerAcre,
			MinimumCharge: rate.MinimumCharge,
			DaysPerAcre:   rate.DaysPerAcre,
		})
	}

	for _, z := range t.Zones {
		maxKm := z.MaxMeters / 1000
		c.Zones = append(c.Zones, v1alpha1.CatalogZone{
			Name:             z.Name,
			MinKm:            z.MinMeters / 1000,
			MaxKm:            &maxKm,
			SurchargePercent: z.SurchargePercent,
		})
	}
	if n := len(t.Zones); n > 0 {
		last := t.Zones[n-1]
		c.Zones = append(c.Zones, v1alpha1.CatalogZone{
			Name:             t.OutOfAreaZone,
			MinKm:            last.MaxMeters / 1000,
			SurchargePercent: last.SurchargePercent,
		})
	}

	for _, tier := range []estimation.UrgencyTier{estimation.UrgencyStandard, estimation.UrgencyPriority, estimation.UrgencyEmergency} {
		rate, ok := t.Urgency[tier]
		if !ok {
			continue
		}
		c.Urgency = append(c.Urgency, v1alpha1.CatalogUrgency{
			Name:       string(tier),
			Label:      rate.Label,
			Multiplier: rate.Multiplier,
		})
	}

	for _, pt := range []estimation.PropertyType{
		estimation.PropertyResidential,
		estimation.PropertyCommercial,
		estimation.PropertyAgricultural,
		estimation.PropertyIndustrial,
	} {
		if _, ok := t.PropertyTypes[pt]; ok {
			c.PropertyTypes = append(c.PropertyTypes, string(pt))
		}
	}

	return c
}
