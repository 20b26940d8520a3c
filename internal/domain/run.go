package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Phase is the orchestrator's state-machine position for a run.
type Phase string

const (
	PhasePerceiving    Phase = "perceiving"
	PhaseHypothesizing Phase = "hypothesizing"
	PhaseRetrieving    Phase = "retrieving"
	PhaseVerifying     Phase = "verifying"
	PhaseDone          Phase = "done"
)

// RunState is the single mutable record threaded through all stages of one
// geolocation run. It is exclusively owned by one orchestrator instance;
// batch runs each get their own. Once a Prediction is attached the state is
// treated as read-only.
type RunState struct {
	ID        uuid.UUID `json:"id"`
	ImageRef  string    `json:"image_ref"`
	CreatedAt time.Time `json:"created_at"`

	Clues      ClueSet      `json:"clues"`
	Hypotheses []Hypothesis `json:"hypotheses"`
	Candidates []Candidate  `json:"candidates"`
	Evidence   []Evidence   `json:"evidence"`
	Prediction *Prediction  `json:"prediction,omitempty"`

	Iteration int   `json:"iteration"`
	Phase     Phase `json:"phase"`

	// Notes records which collaborators degraded or failed, preserving
	// transparency over silently best-effort output.
	Notes []string `json:"notes,omitempty"`
}

func NewRunState(imageRef string) *RunState {
	return &RunState{
		ID:        uuid.New(),
		ImageRef:  imageRef,
		CreatedAt: time.Now().UTC(),
		Phase:     PhasePerceiving,
	}
}

// Finalized reports whether the run reached a terminal state.
func (s *RunState) Finalized() bool {
	return s.Prediction != nil
}

// AppendEvidence appends records to the ledger. The ledger is append-only;
// nothing is ever mutated or removed.
func (s *RunState) AppendEvidence(ev ...Evidence) {
	for i := range ev {
		ev[i].Iteration = s.Iteration
	}
	s.Evidence = append(s.Evidence, ev...)
}

// Note records a degradation or failure message for the final document.
func (s *RunState) Note(format string, args ...any) {
	s.Notes = append(s.Notes, fmt.Sprintf(format, args...))
}

// CandidateByID returns a pointer into the candidate slice, or nil.
func (s *RunState) CandidateByID(id uuid.UUID) *Candidate {
	for i := range s.Candidates {
		if s.Candidates[i].ID == id {
			return &s.Candidates[i]
		}
	}
	return nil
}

// EvidenceFor returns all ledger entries for one candidate, in insertion
// order.
func (s *RunState) EvidenceFor(candidateID uuid.UUID) []Evidence {
	var out []Evidence
	for _, e := range s.Evidence {
		if e.CandidateID == candidateID {
			out = append(out, e)
		}
	}
	return out
}

// SupportingEvidenceFor returns the IDs of all support-result entries for
// one candidate.
func (s *RunState) SupportingEvidenceFor(candidateID uuid.UUID) []uuid.UUID {
	var out []uuid.UUID
	for _, e := range s.Evidence {
		if e.CandidateID == candidateID && e.Result == EvidenceSupport {
			out = append(out, e.ID)
		}
	}
	return out
}

// HypothesesForIteration returns the hypotheses tagged with the given
// iteration.
func (s *RunState) HypothesesForIteration(iter int) []Hypothesis {
	var out []Hypothesis
	for _, h := range s.Hypotheses {
		if h.Iteration == iter {
			out = append(out, h)
		}
	}
	return out
}

// MarshalDocument serializes the full run state as the single result
// document surfaced by the CLI and HTTP layers.
func (s *RunState) MarshalDocument() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// UnmarshalDocument restores a run state from its serialized document.
func UnmarshalDocument(data []byte) (*RunState, error) {
	var s RunState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return &s, nil
}
