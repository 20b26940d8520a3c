package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunStateDocumentRoundTrip(t *testing.T) {
	state := NewRunState("photo.jpg")
	state.Clues.Add(NewTextClue("Tour Eiffel", "fr", 0.9))
	state.Hypotheses = append(state.Hypotheses, Hypothesis{
		ID: uuid.New(), Region: "Paris, France", Rationale: "French signage", Confidence: 0.8,
	})
	cand := Candidate{
		ID: uuid.New(), Name: "Eiffel Tower", Lat: 48.8584, Lon: 2.2945,
		Sources: []CandidateSource{SourceRetrieval}, RawScore: 0.7, FusedScore: 0.92,
	}
	state.Candidates = append(state.Candidates, cand)
	state.AppendEvidence(NewEvidence(cand.ID, CheckTextMatch, EvidenceSupport, 0.22, "matched"))
	state.Prediction = &Prediction{
		CandidateID: cand.ID, Name: cand.Name, Lat: cand.Lat, Lon: cand.Lon,
		Confidence: 0.92, Reasoning: "strong text match", Converged: true,
	}
	state.Phase = PhaseDone

	doc, err := state.MarshalDocument()
	require.NoError(t, err)

	restored, err := UnmarshalDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, state.ID, restored.ID)
	assert.Equal(t, state.Clues.Clues[0].Text, restored.Clues.Clues[0].Text)
	assert.Equal(t, state.Candidates[0].FusedScore, restored.Candidates[0].FusedScore)
	assert.Equal(t, state.Prediction.Confidence, restored.Prediction.Confidence)
	assert.True(t, restored.Finalized())
}

func TestUnmarshalDocumentMalformed(t *testing.T) {
	_, err := UnmarshalDocument([]byte("{not json"))
	assert.ErrorIs(t, err, ErrParse)
}

func TestAppendEvidenceStampsIteration(t *testing.T) {
	state := NewRunState("img")
	state.Iteration = 1
	state.AppendEvidence(NewEvidence(uuid.New(), CheckGPSTag, EvidenceSupport, 0.4, ""))

	require.Len(t, state.Evidence, 1)
	assert.Equal(t, 1, state.Evidence[0].Iteration)
}

func TestEvidenceQueries(t *testing.T) {
	state := NewRunState("img")
	target := uuid.New()
	other := uuid.New()
	state.AppendEvidence(
		NewEvidence(target, CheckTextMatch, EvidenceSupport, 0.2, ""),
		NewEvidence(target, CheckGPSTag, EvidenceContradict, -0.4, ""),
		NewEvidence(other, CheckTextMatch, EvidenceSupport, 0.1, ""),
	)

	assert.Len(t, state.EvidenceFor(target), 2)
	assert.Len(t, state.SupportingEvidenceFor(target), 1)
	assert.Len(t, state.EvidenceFor(other), 1)
}

func TestCandidateValidate(t *testing.T) {
	c := Candidate{Lat: 48.8, Lon: 2.3, RawScore: 0.5}
	assert.NoError(t, c.Validate())

	bad := Candidate{Lat: 95, Lon: 2.3, RawScore: 0.5}
	assert.ErrorIs(t, bad.Validate(), ErrValidation)

	badScore := Candidate{Lat: 48.8, Lon: 2.3, RawScore: 1.5}
	assert.ErrorIs(t, badScore.Validate(), ErrValidation)
}

func TestNewEvidenceZeroesNeutralDelta(t *testing.T) {
	ev := NewEvidence(uuid.New(), CheckTextMatch, EvidenceNeutral, 0.3, "below threshold")
	assert.Equal(t, float32(0), ev.ScoreDelta)
}

func TestAddSourceDeduplicates(t *testing.T) {
	c := Candidate{Sources: []CandidateSource{SourceRetrieval}}
	c.AddSource(SourceRetrieval)
	c.AddSource(SourceGeocode)
	assert.Equal(t, []CandidateSource{SourceRetrieval, SourceGeocode}, c.Sources)
}
