package verify

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geolens/geolens/internal/domain"
)

func testCandidate() domain.Candidate {
	return domain.Candidate{
		ID:      uuid.New(),
		Name:    "Eiffel Tower",
		Lat:     48.8584,
		Lon:     2.2945,
		Address: "Champ de Mars, Paris, France",
	}
}

func TestTextMatchCheckerSupport(t *testing.T) {
	clues := domain.ClueSet{}
	clues.Add(domain.NewTextClue("Eiffel Tower", "en", 0.9))

	ev, applicable, err := TextMatchChecker{}.Check(context.Background(), testCandidate(), clues)
	require.NoError(t, err)
	require.True(t, applicable)
	assert.Equal(t, domain.EvidenceSupport, ev.Result)
	assert.InDelta(t, 1.0*0.9*textMatchMaxDelta, ev.ScoreDelta, 1e-6)
}

func TestTextMatchCheckerNeutralBelowThreshold(t *testing.T) {
	clues := domain.ClueSet{}
	clues.Add(domain.NewTextClue("Sydney Opera House", "en", 0.9))

	ev, applicable, err := TextMatchChecker{}.Check(context.Background(), testCandidate(), clues)
	require.NoError(t, err)
	require.True(t, applicable)
	assert.Equal(t, domain.EvidenceNeutral, ev.Result)
	assert.Equal(t, float32(0), ev.ScoreDelta)
}

func TestTextMatchCheckerInapplicableWithoutText(t *testing.T) {
	clues := domain.ClueSet{}
	clues.Add(domain.NewMetadataClue(domain.MetaKeyCamera, "NIKON D850", "exif"))

	_, applicable, err := TextMatchChecker{}.Check(context.Background(), testCandidate(), clues)
	require.NoError(t, err)
	assert.False(t, applicable)
}

func TestGPSTagCheckerSupport(t *testing.T) {
	clues := domain.ClueSet{}
	clues.Add(domain.NewMetadataClue(domain.MetaKeyGPS, "48.8580,2.2950", "exif"))

	ev, applicable, err := GPSTagChecker{}.Check(context.Background(), testCandidate(), clues)
	require.NoError(t, err)
	require.True(t, applicable)
	assert.Equal(t, domain.EvidenceSupport, ev.Result)
	assert.Equal(t, float32(gpsSupportDelta), ev.ScoreDelta)
}

func TestGPSTagCheckerContradict(t *testing.T) {
	// Tag in Tokyo, candidate in Paris.
	clues := domain.ClueSet{}
	clues.Add(domain.NewMetadataClue(domain.MetaKeyGPS, "35.6762,139.6503", "exif"))

	ev, applicable, err := GPSTagChecker{}.Check(context.Background(), testCandidate(), clues)
	require.NoError(t, err)
	require.True(t, applicable)
	assert.Equal(t, domain.EvidenceContradict, ev.Result)
	assert.Equal(t, float32(gpsConflictDelta), ev.ScoreDelta)
}

func TestGPSTagCheckerInapplicableWithoutTag(t *testing.T) {
	_, applicable, err := GPSTagChecker{}.Check(context.Background(), testCandidate(), domain.ClueSet{})
	require.NoError(t, err)
	assert.False(t, applicable)
}

func TestParseGPSValue(t *testing.T) {
	lat, lon, err := ParseGPSValue("48.8584, 2.2945")
	require.NoError(t, err)
	assert.InDelta(t, 48.8584, lat, 1e-9)
	assert.InDelta(t, 2.2945, lon, 1e-9)

	_, _, err = ParseGPSValue("not-a-coordinate")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLanguagePriorCheckerConflict(t *testing.T) {
	clues := domain.ClueSet{}
	clues.Add(domain.NewTextClue("東京駅はこちらです。新幹線のりば、山手線、中央線。", "ja", 0.9))

	ev, applicable, err := LanguagePriorChecker{}.Check(context.Background(), testCandidate(), clues)
	require.NoError(t, err)
	require.True(t, applicable)
	assert.Equal(t, domain.EvidenceContradict, ev.Result)
	assert.Negative(t, ev.ScoreDelta)
}

type stubGeocoder struct {
	pois []domain.Place
	err  error
}

func (s *stubGeocoder) Geocode(context.Context, string) ([]domain.Place, error) {
	return nil, fmt.Errorf("unused")
}

func (s *stubGeocoder) ReverseGeocode(context.Context, float64, float64) (string, error) {
	return "", fmt.Errorf("unused")
}

func (s *stubGeocoder) SearchPOI(context.Context, string, *domain.BBox) ([]domain.Place, error) {
	return s.pois, s.err
}

func TestPOITopologyCheckerSupport(t *testing.T) {
	geocoder := &stubGeocoder{pois: []domain.Place{
		{Name: "Eiffel Tower", Lat: 48.8584, Lon: 2.2945, Class: "attraction"},
	}}
	clues := domain.ClueSet{}
	clues.Add(domain.NewTextClue("Eiffel Tower", "en", 0.9))

	ev, applicable, err := POITopologyChecker{Geocoder: geocoder}.Check(context.Background(), testCandidate(), clues)
	require.NoError(t, err)
	require.True(t, applicable)
	assert.Equal(t, domain.EvidenceSupport, ev.Result)
	assert.Equal(t, float32(poiMatchDelta), ev.ScoreDelta)
}

func TestPOITopologyCheckerErrorSkips(t *testing.T) {
	geocoder := &stubGeocoder{err: domain.ErrCollaboratorUnavailable}
	clues := domain.ClueSet{}
	clues.Add(domain.NewTextClue("Eiffel Tower", "en", 0.9))

	_, applicable, err := POITopologyChecker{Geocoder: geocoder}.Check(context.Background(), testCandidate(), clues)
	assert.Error(t, err)
	assert.False(t, applicable)
}
