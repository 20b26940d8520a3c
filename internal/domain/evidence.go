package domain

import (
	"github.com/google/uuid"
)

// EvidenceCheck identifies the checker that produced an evidence record.
type EvidenceCheck string

const (
	CheckTextMatch     EvidenceCheck = "text_match"
	CheckLanguagePrior EvidenceCheck = "language_prior"
	CheckGPSTag        EvidenceCheck = "gps_tag"
	CheckPOITopology   EvidenceCheck = "poi_topology"
)

// EvidenceResult classifies an evidence record.
type EvidenceResult string

const (
	EvidenceSupport    EvidenceResult = "support"
	EvidenceContradict EvidenceResult = "contradict"
	EvidenceNeutral    EvidenceResult = "neutral"
)

func ValidEvidenceResult(r string) bool {
	switch EvidenceResult(r) {
	case EvidenceSupport, EvidenceContradict, EvidenceNeutral:
		return true
	}
	return false
}

// Evidence is the output of one checker run against one candidate. Records
// are append-only: the ledger is the audit trail backing every claim in the
// final Prediction.
type Evidence struct {
	ID          uuid.UUID      `json:"id"`
	CandidateID uuid.UUID      `json:"candidate_id"`
	Check       EvidenceCheck  `json:"check"`
	Result      EvidenceResult `json:"result"`

	// ScoreDelta in [-1,1]; neutral results carry zero.
	ScoreDelta float32 `json:"score_delta"`
	Detail     string  `json:"detail,omitempty"`
	Iteration  int     `json:"iteration"`
}

func NewEvidence(candidateID uuid.UUID, check EvidenceCheck, result EvidenceResult, delta float32, detail string) Evidence {
	if result == EvidenceNeutral {
		delta = 0
	}
	return Evidence{
		ID:          uuid.New(),
		CandidateID: candidateID,
		Check:       check,
		Result:      result,
		ScoreDelta:  delta,
		Detail:      detail,
	}
}
