package domain

import (
	"context"
)

// OCRText is one piece of text the vision collaborator read from the image.
type OCRText struct {
	Text       string  `json:"text"`
	Language   string  `json:"language,omitempty"`
	Confidence float32 `json:"confidence"`
}

// VisualFeature is one non-textual observation from the vision collaborator.
type VisualFeature struct {
	Feature    string  `json:"feature"`
	Value      string  `json:"value"`
	Confidence float32 `json:"confidence"`
}

// PerceptionResult is the validated output of one vision-collaborator call.
type PerceptionResult struct {
	OCRTexts       []OCRText       `json:"ocr_texts"`
	VisualFeatures []VisualFeature `json:"visual_features"`
	Raw            string          `json:"-"`
}

// VisionClient extracts geographic clues from an image.
type VisionClient interface {
	AnalyzeImage(ctx context.Context, image []byte, instructions string) (*PerceptionResult, error)
}

// HypothesisRequest carries everything the language model conditions on.
// PriorHypotheses holds the full history across iterations so the model can
// avoid repeating rejected regions; CandidateContext and EvidenceContext are
// non-empty only on re-entry.
type HypothesisRequest struct {
	ClueSummary      string
	PriorHypotheses  []Hypothesis
	CandidateContext []Candidate
	EvidenceContext  []Evidence
}

// ReasonRequest asks for the final holistic reasoning text. The model may
// only explain the ranking, never override it.
type ReasonRequest struct {
	Clues      ClueSet
	Candidates []Candidate
	Evidence   []Evidence
}

// LLMClient is the text language-model collaborator.
type LLMClient interface {
	Hypothesize(ctx context.Context, req HypothesisRequest) ([]Hypothesis, error)
	HolisticReason(ctx context.Context, req ReasonRequest) (string, error)
}

// GeoGuess is one ranked coordinate from the embedding-retrieval path.
type GeoGuess struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Score float32 `json:"score"`
}

// RetrievalClient maps an image to ranked geographic coordinates.
type RetrievalClient interface {
	EmbedAndRetrieve(ctx context.Context, image []byte, topK int) ([]GeoGuess, error)
}

// Place is a named location from the geocoding or POI collaborator.
type Place struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Address string  `json:"address,omitempty"`
	Class   string  `json:"class,omitempty"`
}

// BBox is a geographic bounding box (south, west, north, east).
type BBox struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// Geocoder is the symbolic location-lookup collaborator.
type Geocoder interface {
	Geocode(ctx context.Context, query string) ([]Place, error)
	ReverseGeocode(ctx context.Context, lat, lon float64) (string, error)
	SearchPOI(ctx context.Context, query string, bbox *BBox) ([]Place, error)
}
