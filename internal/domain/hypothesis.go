package domain

import (
	"github.com/google/uuid"
)

// Hypothesis is a candidate geographic region proposed before any concrete
// coordinates exist. Confidence is relative among siblings from the same
// Hypothesis-stage call, not calibrated across calls.
type Hypothesis struct {
	ID                 uuid.UUID   `json:"id"`
	Region             string      `json:"region"`
	Rationale          string      `json:"rationale"`
	SupportingClueIDs  []uuid.UUID `json:"supporting_clue_ids,omitempty"`
	ConflictingClueIDs []uuid.UUID `json:"conflicting_clue_ids,omitempty"`
	Confidence         float32     `json:"confidence"`

	// Iteration tags the Hypothesis-stage call that produced this
	// hypothesis. Later iterations may supersede earlier ones; earlier
	// ones are retained for audit.
	Iteration int `json:"iteration"`
}

// ValidHypothesis reports whether a hypothesis satisfies the data-model
// invariants expected from the language-model collaborator.
func ValidHypothesis(h Hypothesis) bool {
	return h.Region != "" && h.Confidence >= 0 && h.Confidence <= 1
}

// SupportsSuperset reports whether a's supporting clues are a strict
// superset of b's. Used as the tie-break on equal confidence: the more
// corroborated hypothesis ranks first.
func SupportsSuperset(a, b Hypothesis) bool {
	if len(a.SupportingClueIDs) <= len(b.SupportingClueIDs) {
		return false
	}
	set := make(map[uuid.UUID]struct{}, len(a.SupportingClueIDs))
	for _, id := range a.SupportingClueIDs {
		set[id] = struct{}{}
	}
	for _, id := range b.SupportingClueIDs {
		if _, ok := set[id]; !ok {
			return false
		}
	}
	return true
}
