package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "cafe de flore", NormalizeText("  Café. de   FLORE!! "))
	assert.Equal(t, "tokyostation", NormalizeText("Tokyo-Station"))
	assert.Equal(t, "", NormalizeText("..."))
}

func TestFuzzyMatchExact(t *testing.T) {
	assert.Equal(t, 1.0, FuzzyMatch("Eiffel Tower", "eiffel tower"))
}

func TestFuzzyMatchContainment(t *testing.T) {
	score := FuzzyMatch("Eiffel Tower", "Eiffel Tower, Champ de Mars, Paris")
	assert.GreaterOrEqual(t, score, 0.9)
}

func TestFuzzyMatchOCRNoise(t *testing.T) {
	// One-character OCR error should still match well.
	score := FuzzyMatch("Eiffe1 Tower", "Eiffel Tower")
	assert.Greater(t, score, 0.8)
}

func TestFuzzyMatchUnrelated(t *testing.T) {
	score := FuzzyMatch("Sydney Opera House", "Mount Fuji")
	assert.Less(t, score, 0.5)
}

func TestFuzzyMatchEmpty(t *testing.T) {
	assert.Equal(t, 0.0, FuzzyMatch("", "anything"))
	assert.Equal(t, 0.0, FuzzyMatch("anything", ""))
}

func TestBestFieldMatchSkipsEmptyFields(t *testing.T) {
	score, field := BestFieldMatch("Eiffel Tower", "", "Eiffel Tower, Paris", "Berlin")
	assert.GreaterOrEqual(t, score, 0.9)
	assert.Equal(t, "Eiffel Tower, Paris", field)
}
