package domain

import (
	"github.com/google/uuid"
)

// ClueKind discriminates the three clue variants.
type ClueKind string

const (
	ClueText     ClueKind = "text"
	ClueVisual   ClueKind = "visual"
	ClueMetadata ClueKind = "metadata"
)

func ValidClueKind(k string) bool {
	switch ClueKind(k) {
	case ClueText, ClueVisual, ClueMetadata:
		return true
	}
	return false
}

// Clue is one atomic observation extracted from the image or its metadata.
// Clues are immutable once created; only the Perception stage (or a later
// Hypothesis iteration, additively) may create them.
type Clue struct {
	ID   uuid.UUID `json:"id"`
	Kind ClueKind  `json:"kind"`

	// Text clues: recognized text, plus detected language if known.
	Text     string `json:"text,omitempty"`
	Language string `json:"language,omitempty"`

	// Visual clues: feature type (architecture, vegetation, landmark,
	// road_marking, vehicle, ...) and its described value.
	Feature string `json:"feature,omitempty"`
	Value   string `json:"value,omitempty"`

	// Metadata clues: key/value pair and the extractor that produced it.
	Key    string `json:"key,omitempty"`
	Source string `json:"source,omitempty"`

	// Region hint attached by the extractor, if any.
	Region string `json:"region,omitempty"`

	Confidence float32 `json:"confidence"`

	// Iteration that added this clue. Zero for the initial Perception pass.
	Iteration int `json:"iteration,omitempty"`
}

func NewTextClue(text, language string, confidence float32) Clue {
	return Clue{
		ID:         uuid.New(),
		Kind:       ClueText,
		Text:       text,
		Language:   language,
		Confidence: confidence,
	}
}

func NewVisualClue(feature, value string, confidence float32) Clue {
	return Clue{
		ID:         uuid.New(),
		Kind:       ClueVisual,
		Feature:    feature,
		Value:      value,
		Confidence: confidence,
	}
}

func NewMetadataClue(key, value, source string) Clue {
	return Clue{
		ID:         uuid.New(),
		Kind:       ClueMetadata,
		Key:        key,
		Value:      value,
		Source:     source,
		Confidence: 1.0,
	}
}

// ClueSet is the ordered collection of clues for one image. Insertion order
// reflects extraction priority and is preserved. After Perception completes
// the set only grows; earlier clues are never removed or rewritten.
type ClueSet struct {
	Clues []Clue `json:"clues"`

	// Degraded marks a set produced without the vision collaborator
	// (metadata-only fallback). Downstream stages lower confidence
	// ceilings accordingly.
	Degraded bool `json:"degraded,omitempty"`
}

func (cs *ClueSet) Add(clues ...Clue) {
	cs.Clues = append(cs.Clues, clues...)
}

func (cs *ClueSet) Len() int {
	return len(cs.Clues)
}

// TextClues returns text clues in insertion order.
func (cs *ClueSet) TextClues() []Clue {
	var out []Clue
	for _, c := range cs.Clues {
		if c.Kind == ClueText {
			out = append(out, c)
		}
	}
	return out
}

// MetadataClue returns the first metadata clue with the given key.
func (cs *ClueSet) MetadataClue(key string) (Clue, bool) {
	for _, c := range cs.Clues {
		if c.Kind == ClueMetadata && c.Key == key {
			return c, true
		}
	}
	return Clue{}, false
}

// Metadata clue keys produced by the local extractor.
const (
	MetaKeyGPS       = "gps"
	MetaKeyTimestamp = "timestamp"
	MetaKeyCamera    = "camera_model"
)
