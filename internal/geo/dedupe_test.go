package geo

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geolens/geolens/internal/domain"
)

func candidate(name string, lat, lon float64, score float32, src domain.CandidateSource) domain.Candidate {
	return domain.Candidate{
		ID:       uuid.New(),
		Name:     name,
		Lat:      lat,
		Lon:      lon,
		Sources:  []domain.CandidateSource{src},
		RawScore: score,
	}
}

func TestDedupeMergesNearbyCandidates(t *testing.T) {
	// Two reports of the Eiffel Tower roughly 200m apart.
	a := candidate("Eiffel Tower", 48.8584, 2.2945, 0.7, domain.SourceRetrieval)
	b := candidate("Tour Eiffel", 48.8602, 2.2945, 0.9, domain.SourceGeocode)

	merged := DedupeCandidates([]domain.Candidate{a, b}, DefaultDedupeRadiusMeters)
	require.Len(t, merged, 1)

	got := merged[0]
	assert.Equal(t, "Tour Eiffel", got.Name, "higher raw score wins identity")
	assert.InDelta(t, 48.8602, got.Lat, 1e-9)
	assert.Equal(t, float32(0.9), got.RawScore)
	assert.True(t, got.HasSource(domain.SourceRetrieval))
	assert.True(t, got.HasSource(domain.SourceGeocode))
}

func TestDedupeKeepsDistantCandidates(t *testing.T) {
	a := candidate("Paris", 48.8566, 2.3522, 0.8, domain.SourceGeocode)
	b := candidate("Lyon", 45.7640, 4.8357, 0.6, domain.SourceGeocode)

	merged := DedupeCandidates([]domain.Candidate{a, b}, DefaultDedupeRadiusMeters)
	assert.Len(t, merged, 2)
}

func TestDedupeIdempotent(t *testing.T) {
	cands := []domain.Candidate{
		candidate("A", 48.8584, 2.2945, 0.7, domain.SourceRetrieval),
		candidate("B", 48.8585, 2.2946, 0.8, domain.SourceGeocode),
		candidate("C", 40.7128, -74.0060, 0.5, domain.SourceRetrieval),
	}

	once := DedupeCandidates(cands, DefaultDedupeRadiusMeters)
	twice := DedupeCandidates(once, DefaultDedupeRadiusMeters)
	assert.Equal(t, once, twice)
}

func TestDedupeChainedMergeIsIdempotent(t *testing.T) {
	// A and B start out of range of each other, but C sits between them
	// and outscores A. Merging C into A's slot moves the kept coordinates
	// within radius of B, so the merge must continue to a fixpoint.
	a := candidate("A", 0, 0, 0.5, domain.SourceRetrieval)
	b := candidate("B", 0, 0.0170, 0.6, domain.SourceGeocode) // ~1890m from A
	c := candidate("C", 0, 0.0085, 0.9, domain.SourceEXIF)    // ~945m from both

	once := DedupeCandidates([]domain.Candidate{a, b, c}, DefaultDedupeRadiusMeters)
	twice := DedupeCandidates(once, DefaultDedupeRadiusMeters)
	assert.Equal(t, once, twice)

	require.Len(t, once, 1)
	got := once[0]
	assert.Equal(t, "C", got.Name, "highest raw score wins identity")
	assert.Equal(t, float32(0.9), got.RawScore)
	assert.True(t, got.HasSource(domain.SourceRetrieval))
	assert.True(t, got.HasSource(domain.SourceGeocode))
	assert.True(t, got.HasSource(domain.SourceEXIF))
}

func TestDedupeBackfillsAddressAndRegion(t *testing.T) {
	a := candidate("A", 48.8584, 2.2945, 0.9, domain.SourceRetrieval)
	b := candidate("B", 48.8585, 2.2946, 0.5, domain.SourceGeocode)
	b.Address = "Champ de Mars, Paris, France"
	b.Region = "Paris, France"

	merged := DedupeCandidates([]domain.Candidate{a, b}, DefaultDedupeRadiusMeters)
	require.Len(t, merged, 1)
	assert.Equal(t, "A", merged[0].Name)
	assert.Equal(t, "Champ de Mars, Paris, France", merged[0].Address)
	assert.Equal(t, "Paris, France", merged[0].Region)
}
