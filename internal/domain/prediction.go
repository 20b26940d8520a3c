package domain

import (
	"github.com/google/uuid"
)

// Alternative is a runner-up candidate surfaced alongside the Prediction.
type Alternative struct {
	CandidateID uuid.UUID `json:"candidate_id"`
	Name        string    `json:"name"`
	Lat         float64   `json:"lat"`
	Lon         float64   `json:"lon"`
	FusedScore  float32   `json:"fused_score"`
}

// Prediction is the final result of a run. It is derived from the top
// candidate at the moment the termination predicate fires, never authored
// independently: every claim traces back to the evidence ledger.
type Prediction struct {
	CandidateID uuid.UUID `json:"candidate_id"`
	Name        string    `json:"name"`
	Lat         float64   `json:"lat"`
	Lon         float64   `json:"lon"`
	Confidence  float32   `json:"confidence"`
	Reasoning   string    `json:"reasoning"`

	// SupportingEvidence references all support-result ledger entries for
	// the chosen candidate.
	SupportingEvidence []uuid.UUID `json:"supporting_evidence,omitempty"`

	// ExcludedReasons summarizes why the next-best candidates scored lower.
	ExcludedReasons []string `json:"excluded_reasons,omitempty"`

	// Alternatives lists remaining candidates above the score floor.
	Alternatives []Alternative `json:"alternatives,omitempty"`

	// ReasoningPath records one line per completed stage.
	ReasoningPath []string `json:"reasoning_path,omitempty"`

	// Converged is false when the iteration budget ran out before the
	// confidence threshold was met.
	Converged bool `json:"converged"`
}
