// Package tools implements the symbolic location collaborators: Nominatim
// geocoding and Overpass POI search. Both are public OSM services, so every
// client is rate limited and responses are cached with a TTL.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/geolens/geolens/internal/domain"
)

const (
	defaultNominatimURL = "https://nominatim.openstreetmap.org"
	defaultUserAgent    = "geolens/1.0"
	geocodeLimit        = 5
	requestTimeout      = 10 * time.Second
)

// OSMClient implements domain.Geocoder against Nominatim and Overpass.
type OSMClient struct {
	nominatimURL string
	overpassURL  string
	userAgent    string
	httpClient   *http.Client
	limiter      *rate.Limiter
	cache        *gocache.Cache
}

func NewOSMClient(nominatimURL, overpassURL string, cacheTTL time.Duration) *OSMClient {
	if nominatimURL == "" {
		nominatimURL = defaultNominatimURL
	}
	if overpassURL == "" {
		overpassURL = defaultOverpassURL
	}
	return &OSMClient{
		nominatimURL: nominatimURL,
		overpassURL:  overpassURL,
		userAgent:    defaultUserAgent,
		httpClient:   &http.Client{Timeout: requestTimeout},
		// Nominatim usage policy: one request per second.
		limiter: rate.NewLimiter(rate.Limit(1), 2),
		cache:   gocache.New(cacheTTL, 2*cacheTTL),
	}
}

type nominatimResult struct {
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name"`
	Class       string  `json:"class"`
	Importance  float64 `json:"importance"`
}

// Geocode resolves free text to named places, best match first.
func (c *OSMClient) Geocode(ctx context.Context, query string) ([]domain.Place, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: empty geocode query", domain.ErrValidation)
	}

	cacheKey := "geocode:" + query
	if val, found := c.cache.Get(cacheKey); found {
		return val.([]domain.Place), nil
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "jsonv2")
	params.Set("limit", strconv.Itoa(geocodeLimit))

	var results []nominatimResult
	if err := c.get(ctx, c.nominatimURL+"/search?"+params.Encode(), &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: geocode %q", domain.ErrNoMatch, query)
	}

	places := make([]domain.Place, 0, len(results))
	for _, r := range results {
		lat, err1 := strconv.ParseFloat(r.Lat, 64)
		lon, err2 := strconv.ParseFloat(r.Lon, 64)
		if err1 != nil || err2 != nil {
			continue
		}
		name := r.Name
		if name == "" {
			name = r.DisplayName
		}
		places = append(places, domain.Place{
			Name:    name,
			Lat:     lat,
			Lon:     lon,
			Address: r.DisplayName,
			Class:   r.Class,
		})
	}
	if len(places) == 0 {
		return nil, fmt.Errorf("%w: geocode %q returned no parsable rows", domain.ErrParse, query)
	}

	c.cache.SetDefault(cacheKey, places)
	return places, nil
}

type reverseResult struct {
	DisplayName string `json:"display_name"`
	Error       string `json:"error,omitempty"`
}

// ReverseGeocode resolves coordinates to a display address.
func (c *OSMClient) ReverseGeocode(ctx context.Context, lat, lon float64) (string, error) {
	cacheKey := fmt.Sprintf("reverse:%.5f,%.5f", lat, lon)
	if val, found := c.cache.Get(cacheKey); found {
		return val.(string), nil
	}

	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', 6, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', 6, 64))
	params.Set("format", "jsonv2")

	var result reverseResult
	if err := c.get(ctx, c.nominatimURL+"/reverse?"+params.Encode(), &result); err != nil {
		return "", err
	}
	if result.Error != "" || result.DisplayName == "" {
		return "", fmt.Errorf("%w: reverse geocode (%.5f, %.5f)", domain.ErrNoMatch, lat, lon)
	}

	c.cache.SetDefault(cacheKey, result.DisplayName)
	return result.DisplayName, nil
}

func (c *OSMClient) get(ctx context.Context, rawURL string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCollaboratorTimeout, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %v", domain.ErrCollaboratorTimeout, err)
		}
		return fmt.Errorf("%w: %v", domain.ErrCollaboratorUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d", domain.ErrRateLimited, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%w: status %d: %.200s", domain.ErrCollaboratorUnavailable, resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrParse, err)
	}
	return nil
}
