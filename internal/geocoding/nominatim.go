package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/landclear/quote-planner/internal/geo"
)

// streetPlaceRank is the lowest Nominatim place_rank that identifies a
// street or a single building.
const streetPlaceRank = 26

// NominatimClient is an HTTP client for a Nominatim search endpoint.
type NominatimClient struct {
	baseURL     string
	userAgent   string
	countryCode string
	httpClient  *http.Client
}

type NominatimOption func(*NominatimClient)

// WithCountryCode restricts matches to one ISO 3166-1 country.
func WithCountryCode(code string) NominatimOption {
	return func(c *NominatimClient) {
		c.countryCode = code
	}
}

func NewNominatimClient(baseURL, userAgent string, timeout time.Duration, opts ...NominatimOption) *NominatimClient {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	c := &NominatimClient{
		baseURL:     baseURL,
		userAgent:   userAgent,
		countryCode: "us",
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	PlaceRank   int    `json:"place_rank"`
	Address     struct {
		Postcode string `json:"postcode"`
	} `json:"address"`
}

func (c *NominatimClient) Geocode(ctx context.Context, address string) (*GeocodeResult, error) {
	q := url.Values{}
	q.Set("q", address)
	q.Set("format", "jsonv2")
	q.Set("addressdetails", "1")
	q.Set("limit", "1")
	if c.countryCode != "" {
		q.Set("countrycodes", c.countryCode)
	}
	reqURL := fmt.Sprintf("%s/search?%s", c.baseURL, q.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call geocoder: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoder returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var places []nominatimPlace
	if err := json.Unmarshal(bodyBytes, &places); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(places) == 0 {
		return nil, ErrNoMatch
	}

	p := places[0]
	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude %q: %w", p.Lat, err)
	}
	lng, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude %q: %w", p.Lon, err)
	}
	coords := geo.Coordinates{Lat: lat, Lng: lng}
	if err := coords.Validate(); err != nil {
		return nil, err
	}

	return &GeocodeResult{
		Coordinates:      coords,
		FormattedAddress: p.DisplayName,
		PostalCode:       p.Address.Postcode,
		Canonical:        p.PlaceRank >= streetPlaceRank,
	}, nil
}
