package mappers

import (
	"strings"

	"github.com/landclear/quote-planner/api/v1alpha1"
	"github.com/landclear/quote-planner/internal/estimation"
	"github.com/landclear/quote-planner/internal/geo"
	"github.com/landclear/quote-planner/internal/geocoding"
	"github.com/landclear/quote-planner/internal/service"
)

func LocationQueryFromApi(l v1alpha1.Location) geocoding.LocationQuery {
	q := geocoding.LocationQuery{
		Address: strings.TrimSpace(l.Address),
		ZipCode: strings.TrimSpace(l.ZipCode),
	}
	if len(q.ZipCode) > 5 {
		// ZIP+4 resolves through its five digit prefix
		q.ZipCode = q.ZipCode[:5]
	}
	if l.Coordinates != nil {
		q.Coordinates = &geo.Coordinates{Lat: l.Coordinates.Lat, Lng: l.Coordinates.Lng}
	}
	return q
}

func ProjectParametersFromApi(p v1alpha1.Project) estimation.ProjectParameters {
	params := estimation.ProjectParameters{
		Acreage:        p.Acreage,
		Package:        estimation.PackageType(v1alpha1.NormalizeToken(p.Package)),
		Urgency:        estimation.UrgencyTier(v1alpha1.NormalizeToken(p.Urgency)),
		Obstacles:      p.Obstacles,
		AccessConcerns: p.AccessConcerns,
	}
	if p.Boundary != nil {
		params.Boundary = &geo.BoundingBox{
			MinLat: p.Boundary.MinLat,
			MinLng: p.Boundary.MinLng,
			MaxLat: p.Boundary.MaxLat,
			MaxLng: p.Boundary.MaxLng,
		}
	}
	return params
}

func EstimateRequestFromApi(r v1alpha1.EstimateRequest) service.QuoteRequest {
	return service.QuoteRequest{
		Location:   LocationQueryFromApi(r.Location),
		Parameters: ProjectParametersFromApi(r.Project),
	}
}

func QuoteRequestFromApi(r v1alpha1.QuoteCreate) service.QuoteRequest {
	return service.QuoteRequest{
		Contact: service.Contact{
			Name:  strings.TrimSpace(r.Contact.Name),
			Email: strings.TrimSpace(r.Contact.Email),
			Phone: strings.TrimSpace(r.Contact.Phone),
		},
		Location:   LocationQueryFromApi(r.Location),
		Parameters: ProjectParametersFromApi(r.Project),
	}
}
