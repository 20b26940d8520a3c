package llm

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geolens/geolens/internal/domain"
)

func TestParseHypotheses(t *testing.T) {
	raw := `[
		{"region": "Paris, France", "rationale": "French signage", "supporting_clue_ids": [], "conflicting_clue_ids": [], "confidence": 0.8},
		{"region": "Lyon, France", "rationale": "Architecture", "supporting_clue_ids": [], "conflicting_clue_ids": [], "confidence": 0.3}
	]`

	hyps, err := ParseHypotheses(raw)
	require.NoError(t, err)
	require.Len(t, hyps, 2)
	assert.Equal(t, "Paris, France", hyps[0].Region)
	assert.Equal(t, float32(0.8), hyps[0].Confidence)
	assert.NotEqual(t, uuid.Nil, hyps[0].ID)
}

func TestParseHypothesesStripsFences(t *testing.T) {
	raw := "```json\n[{\"region\": \"Tokyo, Japan\", \"rationale\": \"kanji signage\", \"confidence\": 0.9}]\n```"

	hyps, err := ParseHypotheses(raw)
	require.NoError(t, err)
	require.Len(t, hyps, 1)
	assert.Equal(t, "Tokyo, Japan", hyps[0].Region)
}

func TestParseHypothesesKeepsValidClueIDs(t *testing.T) {
	id := uuid.New()
	raw := `[{"region": "Rome, Italy", "rationale": "latin text", "supporting_clue_ids": ["` + id.String() + `", "not-a-uuid"], "confidence": 0.7}]`

	hyps, err := ParseHypotheses(raw)
	require.NoError(t, err)
	require.Len(t, hyps[0].SupportingClueIDs, 1)
	assert.Equal(t, id, hyps[0].SupportingClueIDs[0])
}

func TestParseHypothesesEmptyListIsValidationError(t *testing.T) {
	_, err := ParseHypotheses("[]")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestParseHypothesesBadConfidence(t *testing.T) {
	_, err := ParseHypotheses(`[{"region": "Paris", "rationale": "x", "confidence": 1.5}]`)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestParseHypothesesMalformedJSON(t *testing.T) {
	_, err := ParseHypotheses("I think it's probably Paris.")
	assert.ErrorIs(t, err, domain.ErrParse)
}

func TestFormatHypothesisPromptIncludesContext(t *testing.T) {
	req := domain.HypothesisRequest{
		ClueSummary: "- text: \"Tour Eiffel\"",
		PriorHypotheses: []domain.Hypothesis{
			{Region: "Brussels, Belgium", Confidence: 0.4, Iteration: 0},
		},
		EvidenceContext: []domain.Evidence{
			{Result: domain.EvidenceContradict, Check: domain.CheckLanguagePrior, Detail: "language fra is unexpected in BE"},
		},
	}

	prompt := FormatHypothesisPrompt(req)
	assert.Contains(t, prompt, "Tour Eiffel")
	assert.Contains(t, prompt, "Brussels, Belgium")
	assert.Contains(t, prompt, "language fra is unexpected")
}
