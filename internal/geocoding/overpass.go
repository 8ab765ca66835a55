package geocoding

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/landclear/quote-planner/internal/estimation"
	"github.com/landclear/quote-planner/internal/geo"
	"github.com/serjvanilla/go-overpass"
)

const defaultSearchRadiusMeters = 250

// OverpassClassifier infers the property type and how easily equipment can
// reach a site from the OpenStreetMap ways around it.
type OverpassClassifier struct {
	client  *overpass.Client
	timeout time.Duration
	radius  int
}

func NewOverpassClassifier(endpoint string, timeout time.Duration) *OverpassClassifier {
	httpClient := &http.Client{
		Timeout: timeout,
	}
	client := overpass.NewWithSettings(endpoint, 2, httpClient)
	return &OverpassClassifier{
		client:  &client,
		timeout: timeout,
		radius:  defaultSearchRadiusMeters,
	}
}

func (o *OverpassClassifier) Classify(ctx context.Context, c geo.Coordinates) (SiteInfo, error) {
	query := fmt.Sprintf(`
		[out:json][timeout:%d];
		(
			way(around:%d,%f,%f)["landuse"];
			way(around:%d,%f,%f)["highway"];
		);
		out tags;
	`,
		max(int(o.timeout.Seconds()), 1),
		o.radius, c.Lat, c.Lng,
		o.radius, c.Lat, c.Lng)

	result, err := o.executeQuery(ctx, query)
	if err != nil {
		return SiteInfo{}, fmt.Errorf("failed to execute site query: %w", err)
	}

	tags := make([]map[string]string, 0, len(result.Ways))
	for _, way := range result.Ways {
		tags = append(tags, way.Tags)
	}
	return classifyTags(tags), nil
}

// executeQuery bounds the query by ctx; the overpass client itself is not
// context aware. The HTTP client carries the same timeout, so a query
// abandoned here stops at most o.timeout after it started.
func (o *OverpassClassifier) executeQuery(ctx context.Context, query string) (*overpass.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	type outcome struct {
		result overpass.Result
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := o.client.Query(query)
		done <- outcome{result: result, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case out := <-done:
		if out.err != nil {
			return nil, fmt.Errorf("overpass query failed: %w", out.err)
		}
		return &out.result, nil
	}
}

var landuseTypes = map[string]estimation.PropertyType{
	"residential": estimation.PropertyResidential,
	"commercial":  estimation.PropertyCommercial,
	"retail":      estimation.PropertyCommercial,
	"farmland":    estimation.PropertyAgricultural,
	"farmyard":    estimation.PropertyAgricultural,
	"meadow":      estimation.PropertyAgricultural,
	"orchard":     estimation.PropertyAgricultural,
	"vineyard":    estimation.PropertyAgricultural,
	"industrial":  estimation.PropertyIndustrial,
	"quarry":      estimation.PropertyIndustrial,
}

var roadClasses = map[string]bool{
	"motorway": true, "trunk": true, "primary": true, "secondary": true,
	"tertiary": true, "unclassified": true, "residential": true,
}

var trackClasses = map[string]bool{
	"service": true, "track": true,
}

// classifyTags picks the most frequent known landuse and scores access by the
// kind of ways nearby: paved roads are easy and tracks are hard. With no
// mapped road or track the score stays nil.
func classifyTags(ways []map[string]string) SiteInfo {
	landuse := map[estimation.PropertyType]int{}
	roads, tracks := 0, 0
	for _, tags := range ways {
		if pt, ok := landuseTypes[tags["landuse"]]; ok {
			landuse[pt]++
		}
		switch hw := tags["highway"]; {
		case roadClasses[hw]:
			roads++
		case trackClasses[hw]:
			tracks++
		}
	}

	var info SiteInfo
	if len(landuse) > 0 {
		types := make([]estimation.PropertyType, 0, len(landuse))
		for pt := range landuse {
			types = append(types, pt)
		}
		sort.Slice(types, func(i, j int) bool {
			if landuse[types[i]] != landuse[types[j]] {
				return landuse[types[i]] > landuse[types[j]]
			}
			return types[i] < types[j]
		})
		pt := types[0]
		info.PropertyType = &pt
	}

	if roads+tracks > 0 {
		score := accessScore(roads, tracks)
		info.AccessibilityScore = &score
	}
	return info
}

func accessScore(roads, tracks int) int {
	switch {
	case roads >= 3:
		return 9
	case roads > 0:
		return 7
	default:
		return 4
	}
}
