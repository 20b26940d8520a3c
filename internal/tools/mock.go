package tools

import (
	"context"
	"fmt"

	"github.com/geolens/geolens/internal/domain"
)

// MockGeocoder is a canned-response Geocoder for tests and offline runs.
type MockGeocoder struct {
	GeocodeResults map[string][]domain.Place
	GeocodeErr     error
	ReverseResult  string
	ReverseErr     error
	POIResults     []domain.Place
	POIErr         error

	GeocodeCalls []string
	ReverseCalls int
	POICalls     []string
}

func NewMockGeocoder() *MockGeocoder {
	return &MockGeocoder{GeocodeResults: make(map[string][]domain.Place)}
}

func (m *MockGeocoder) Geocode(_ context.Context, query string) ([]domain.Place, error) {
	m.GeocodeCalls = append(m.GeocodeCalls, query)
	if m.GeocodeErr != nil {
		return nil, m.GeocodeErr
	}
	places, ok := m.GeocodeResults[query]
	if !ok {
		return nil, fmt.Errorf("%w: geocode %q", domain.ErrNoMatch, query)
	}
	return places, nil
}

func (m *MockGeocoder) ReverseGeocode(_ context.Context, lat, lon float64) (string, error) {
	m.ReverseCalls++
	if m.ReverseErr != nil {
		return "", m.ReverseErr
	}
	if m.ReverseResult == "" {
		return "", fmt.Errorf("%w: reverse geocode (%.5f, %.5f)", domain.ErrNoMatch, lat, lon)
	}
	return m.ReverseResult, nil
}

func (m *MockGeocoder) SearchPOI(_ context.Context, query string, _ *domain.BBox) ([]domain.Place, error) {
	m.POICalls = append(m.POICalls, query)
	if m.POIErr != nil {
		return nil, m.POIErr
	}
	return m.POIResults, nil
}

var _ domain.Geocoder = (*MockGeocoder)(nil)
