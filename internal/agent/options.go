package agent

import (
	"time"

	"github.com/geolens/geolens/internal/geo"
	"github.com/geolens/geolens/internal/verify"
)

const (
	DefaultMaxIterations       = 2
	DefaultConfidenceThreshold = 0.8
	DefaultTopK                = 5
	DefaultAlternativeFloor    = 0.2
	DefaultCallTimeout         = 30 * time.Second

	// Fused scores are capped when the clue set is degraded
	// (metadata-only perception) or when the run did not converge.
	degradedScoreCeiling  = 0.85
	nonConvergenceCeiling = 0.6

	// Raw score for a candidate synthesized from an EXIF GPS tag.
	exifCandidateScore = 0.95

	// Generic fallback hypothesis confidence when the language model is
	// unavailable or the clue set is empty.
	fallbackHypothesisConfidence = 0.1

	maxPlacesPerHypothesis = 3
)

// Options tunes one orchestrator instance. Zero values select defaults.
type Options struct {
	MaxIterations       int
	ConfidenceThreshold float32
	TopK                int
	DedupeRadiusMeters  float64
	AlternativeFloor    float32
	CallTimeout         time.Duration

	// EnableTopology turns on the POI layout check, which costs one
	// POI-search call per candidate per text clue.
	EnableTopology bool

	// Weights scales evidence deltas per check kind.
	Weights verify.Weights
}

func (o Options) withDefaults() Options {
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.ConfidenceThreshold <= 0 {
		o.ConfidenceThreshold = DefaultConfidenceThreshold
	}
	if o.TopK <= 0 {
		o.TopK = DefaultTopK
	}
	if o.DedupeRadiusMeters <= 0 {
		o.DedupeRadiusMeters = geo.DefaultDedupeRadiusMeters
	}
	if o.AlternativeFloor <= 0 {
		o.AlternativeFloor = DefaultAlternativeFloor
	}
	if o.CallTimeout <= 0 {
		o.CallTimeout = DefaultCallTimeout
	}
	if o.Weights == nil {
		o.Weights = verify.DefaultWeights()
	}
	return o
}
