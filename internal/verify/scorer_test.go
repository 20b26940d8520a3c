package verify

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/geolens/geolens/internal/domain"
)

func evidence(check domain.EvidenceCheck, result domain.EvidenceResult, delta float32) domain.Evidence {
	return domain.NewEvidence(uuid.New(), check, result, delta, "")
}

func TestFuseScoreAdditive(t *testing.T) {
	ev := []domain.Evidence{
		evidence(domain.CheckTextMatch, domain.EvidenceSupport, 0.2),
		evidence(domain.CheckLanguagePrior, domain.EvidenceContradict, -0.1),
	}
	got := FuseScore(0.5, ev, DefaultWeights())
	assert.InDelta(t, 0.6, got, 1e-6)
}

func TestFuseScoreClipsToUnitInterval(t *testing.T) {
	high := []domain.Evidence{
		evidence(domain.CheckGPSTag, domain.EvidenceSupport, 0.4),
		evidence(domain.CheckTextMatch, domain.EvidenceSupport, 0.3),
	}
	assert.Equal(t, float32(1.0), FuseScore(0.9, high, nil))

	low := []domain.Evidence{
		evidence(domain.CheckGPSTag, domain.EvidenceContradict, -0.4),
		evidence(domain.CheckLanguagePrior, domain.EvidenceContradict, -0.2),
	}
	assert.Equal(t, float32(0.0), FuseScore(0.1, low, nil))
}

func TestFuseScoreRespectsWeights(t *testing.T) {
	ev := []domain.Evidence{evidence(domain.CheckGPSTag, domain.EvidenceSupport, 0.4)}
	weights := Weights{domain.CheckGPSTag: 0.5}
	assert.InDelta(t, 0.5+0.2, FuseScore(0.5, ev, weights), 1e-6)
}

func TestFuseScoreNeutralCarriesNothing(t *testing.T) {
	// NewEvidence zeroes the delta for neutral results.
	ev := []domain.Evidence{evidence(domain.CheckTextMatch, domain.EvidenceNeutral, 0.3)}
	assert.Equal(t, float32(0.5), FuseScore(0.5, ev, DefaultWeights()))
}

func TestSortByFusedScoreTieBreaks(t *testing.T) {
	cands := []domain.Candidate{
		{ID: uuid.New(), Name: "low", FusedScore: 0.4},
		{ID: uuid.New(), Name: "tie-few-support", FusedScore: 0.7, SupportCount: 1, RawScore: 0.6},
		{ID: uuid.New(), Name: "tie-more-support", FusedScore: 0.7, SupportCount: 2, RawScore: 0.3},
		{ID: uuid.New(), Name: "top", FusedScore: 0.9},
	}
	SortByFusedScore(cands)

	assert.Equal(t, "top", cands[0].Name)
	assert.Equal(t, "tie-more-support", cands[1].Name)
	assert.Equal(t, "tie-few-support", cands[2].Name)
	assert.Equal(t, "low", cands[3].Name)
}

func TestSortHypothesesSupersetTieBreak(t *testing.T) {
	shared := uuid.New()
	extra := uuid.New()
	narrow := domain.Hypothesis{Region: "narrow", Confidence: 0.6, SupportingClueIDs: []uuid.UUID{shared}}
	wide := domain.Hypothesis{Region: "wide", Confidence: 0.6, SupportingClueIDs: []uuid.UUID{shared, extra}}
	top := domain.Hypothesis{Region: "top", Confidence: 0.8}

	hyps := []domain.Hypothesis{narrow, wide, top}
	SortHypotheses(hyps)

	assert.Equal(t, "top", hyps[0].Region)
	assert.Equal(t, "wide", hyps[1].Region)
	assert.Equal(t, "narrow", hyps[2].Region)
}

func TestSupportCount(t *testing.T) {
	ev := []domain.Evidence{
		evidence(domain.CheckTextMatch, domain.EvidenceSupport, 0.1),
		evidence(domain.CheckGPSTag, domain.EvidenceContradict, -0.4),
		evidence(domain.CheckLanguagePrior, domain.EvidenceSupport, 0.1),
		evidence(domain.CheckPOITopology, domain.EvidenceNeutral, 0),
	}
	assert.Equal(t, 2, SupportCount(ev))
}
