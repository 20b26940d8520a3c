package vlm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/geolens/geolens/internal/domain"
)

// perceptionInstructions is the clue-extraction prompt sent alongside the
// image. The model must answer with bare JSON.
const perceptionInstructions = `You are a geolocation analyst. Examine the image and extract every clue that could indicate where it was taken.

Extract:
- ocr_texts: all readable text (signs, plates, storefronts, posters) with the language if identifiable
- visual_features: notable non-textual observations (architecture, vegetation, road_marking, landmark, vehicle, terrain, climate)

Respond ONLY with JSON. No markdown, no explanation. Example:
{"ocr_texts":[{"text":"Tokyo Station","language":"en","confidence":0.95}],"visual_features":[{"feature":"architecture","value":"red brick station building","confidence":0.85}]}

If nothing is visible, respond with {"ocr_texts":[],"visual_features":[]}.`

// stripFences removes markdown code fences models wrap around JSON output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ParsePerception validates raw model output against the perception schema.
// Out-of-range confidences are a validation error; untyped data never
// reaches the shared state.
func ParsePerception(raw string) (*domain.PerceptionResult, error) {
	cleaned := stripFences(raw)

	var result domain.PerceptionResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, fmt.Errorf("%w: perception output: %v (raw: %.200s)", domain.ErrParse, err, cleaned)
	}

	for i, t := range result.OCRTexts {
		if t.Text == "" {
			return nil, fmt.Errorf("%w: ocr text %d is empty", domain.ErrValidation, i)
		}
		if t.Confidence < 0 || t.Confidence > 1 {
			return nil, fmt.Errorf("%w: ocr confidence %f out of range", domain.ErrValidation, t.Confidence)
		}
	}
	for i, f := range result.VisualFeatures {
		if f.Feature == "" || f.Value == "" {
			return nil, fmt.Errorf("%w: visual feature %d is incomplete", domain.ErrValidation, i)
		}
		if f.Confidence < 0 || f.Confidence > 1 {
			return nil, fmt.Errorf("%w: visual confidence %f out of range", domain.ErrValidation, f.Confidence)
		}
	}

	result.Raw = raw
	return &result, nil
}
