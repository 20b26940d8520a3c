package vlm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geolens/geolens/internal/domain"
)

func TestParsePerception(t *testing.T) {
	raw := `{"ocr_texts":[{"text":"Tokyo Station","language":"en","confidence":0.95}],"visual_features":[{"feature":"architecture","value":"red brick station building","confidence":0.85}]}`

	result, err := ParsePerception(raw)
	require.NoError(t, err)
	require.Len(t, result.OCRTexts, 1)
	assert.Equal(t, "Tokyo Station", result.OCRTexts[0].Text)
	require.Len(t, result.VisualFeatures, 1)
	assert.Equal(t, "architecture", result.VisualFeatures[0].Feature)
	assert.Equal(t, raw, result.Raw)
}

func TestParsePerceptionStripsFences(t *testing.T) {
	raw := "```json\n{\"ocr_texts\":[],\"visual_features\":[]}\n```"

	result, err := ParsePerception(raw)
	require.NoError(t, err)
	assert.Empty(t, result.OCRTexts)
	assert.Empty(t, result.VisualFeatures)
}

func TestParsePerceptionRejectsOutOfRangeConfidence(t *testing.T) {
	raw := `{"ocr_texts":[{"text":"sign","confidence":1.2}],"visual_features":[]}`

	_, err := ParsePerception(raw)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestParsePerceptionRejectsEmptyText(t *testing.T) {
	raw := `{"ocr_texts":[{"text":"","confidence":0.5}],"visual_features":[]}`

	_, err := ParsePerception(raw)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestParsePerceptionMalformed(t *testing.T) {
	_, err := ParsePerception("The image shows a tower.")
	assert.ErrorIs(t, err, domain.ErrParse)
}
