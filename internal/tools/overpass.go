package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/geolens/geolens/internal/domain"
)

const defaultOverpassURL = "https://overpass-api.de/api/interpreter"

type overpassResponse struct {
	Elements []struct {
		Type   string  `json:"type"`
		Lat    float64 `json:"lat"`
		Lon    float64 `json:"lon"`
		Center *struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"center,omitempty"`
		Tags map[string]string `json:"tags"`
	} `json:"elements"`
}

// SearchPOI finds named points of interest matching the query, optionally
// restricted to a bounding box. Uses a case-insensitive name match against
// the OSM name tag.
func (c *OSMClient) SearchPOI(ctx context.Context, query string, bbox *domain.BBox) ([]domain.Place, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: empty POI query", domain.ErrValidation)
	}

	var bboxClause string
	cacheKey := "poi:" + query
	if bbox != nil {
		bboxClause = fmt.Sprintf("(%f,%f,%f,%f)", bbox.South, bbox.West, bbox.North, bbox.East)
		cacheKey += bboxClause
	}
	if val, found := c.cache.Get(cacheKey); found {
		return val.([]domain.Place), nil
	}

	escaped := strings.ReplaceAll(query, `"`, `\"`)
	ql := fmt.Sprintf(`[out:json][timeout:15];
(
  node["name"~"%s",i]%s;
  way["name"~"%s",i]%s;
);
out center 20;`, escaped, bboxClause, escaped, bboxClause)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCollaboratorTimeout, err)
	}

	form := url.Values{}
	form.Set("data", ql)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.overpassURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create overpass request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrCollaboratorTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrCollaboratorUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read overpass response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: status %d", domain.ErrRateLimited, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: overpass status %d: %.200s",
			domain.ErrCollaboratorUnavailable, resp.StatusCode, string(body))
	}

	var result overpassResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: overpass: %v", domain.ErrParse, err)
	}

	var places []domain.Place
	for _, el := range result.Elements {
		name := el.Tags["name"]
		if name == "" {
			continue
		}
		lat, lon := el.Lat, el.Lon
		if el.Center != nil {
			lat, lon = el.Center.Lat, el.Center.Lon
		}
		if lat == 0 && lon == 0 {
			continue
		}
		places = append(places, domain.Place{
			Name:  name,
			Lat:   lat,
			Lon:   lon,
			Class: poiClass(el.Tags),
		})
	}

	c.cache.SetDefault(cacheKey, places)
	return places, nil
}

func poiClass(tags map[string]string) string {
	for _, key := range []string{"amenity", "tourism", "shop", "railway", "highway"} {
		if v, ok := tags[key]; ok {
			return v
		}
	}
	return ""
}
