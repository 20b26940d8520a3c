package verify

import (
	"sort"

	"github.com/geolens/geolens/internal/domain"
)

// Weights scales evidence deltas per check kind before fusion. The exact
// weighting is a tunable, not a contract; 1.0 everywhere by default.
type Weights map[domain.EvidenceCheck]float32

func DefaultWeights() Weights {
	return Weights{
		domain.CheckTextMatch:     1.0,
		domain.CheckLanguagePrior: 1.0,
		domain.CheckGPSTag:        1.0,
		domain.CheckPOITopology:   1.0,
	}
}

func (w Weights) weight(check domain.EvidenceCheck) float32 {
	if w == nil {
		return 1.0
	}
	if v, ok := w[check]; ok {
		return v
	}
	return 1.0
}

// FuseScore combines a candidate's raw score with its evidence deltas:
// clip(raw + sum(delta_i * weight_i), 0, 1). Additive fusion keeps sparse
// evidence from collapsing the score when a check simply does not apply.
func FuseScore(rawScore float32, evidence []domain.Evidence, weights Weights) float32 {
	fused := rawScore
	for _, e := range evidence {
		fused += e.ScoreDelta * weights.weight(e.Check)
	}
	return Clip(fused)
}

// Clip bounds a score to [0,1].
func Clip(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// SupportCount counts the supporting entries among a candidate's evidence.
func SupportCount(evidence []domain.Evidence) int {
	n := 0
	for _, e := range evidence {
		if e.Result == domain.EvidenceSupport {
			n++
		}
	}
	return n
}

// SortByFusedScore orders candidates by fused score descending, breaking
// ties by number of supporting evidence entries, then raw score.
func SortByFusedScore(candidates []domain.Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.FusedScore != b.FusedScore {
			return a.FusedScore > b.FusedScore
		}
		if a.SupportCount != b.SupportCount {
			return a.SupportCount > b.SupportCount
		}
		return a.RawScore > b.RawScore
	})
}

// SortHypotheses orders hypotheses by confidence descending. On equal
// confidence the hypothesis whose supporting clues are a superset of the
// other's ranks first.
func SortHypotheses(hypotheses []domain.Hypothesis) {
	sort.SliceStable(hypotheses, func(i, j int) bool {
		a, b := hypotheses[i], hypotheses[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		return domain.SupportsSuperset(a, b)
	})
}
