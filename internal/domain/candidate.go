package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// CandidateSource identifies which retrieval path produced a candidate.
type CandidateSource string

const (
	SourceRetrieval CandidateSource = "retrieval"
	SourceGeocode   CandidateSource = "geocode"
	SourcePOI       CandidateSource = "poi"
	SourceEXIF      CandidateSource = "exif"
)

func ValidCandidateSource(s string) bool {
	switch CandidateSource(s) {
	case SourceRetrieval, SourceGeocode, SourcePOI, SourceEXIF:
		return true
	}
	return false
}

// Candidate is a concrete, scorable location. Candidates within the dedupe
// radius are merged: sources are unioned, the max raw score is kept.
type Candidate struct {
	ID      uuid.UUID         `json:"id"`
	Name    string            `json:"name"`
	Lat     float64           `json:"lat"`
	Lon     float64           `json:"lon"`
	Sources []CandidateSource `json:"sources"`
	Address string            `json:"address,omitempty"`
	Region  string            `json:"region,omitempty"`

	// RawScore is the score assigned by the sourcing path.
	RawScore float32 `json:"raw_score"`

	// FusedScore is RawScore plus all evidence deltas, clipped to [0,1].
	// Zero until Verification has run for this candidate.
	FusedScore float32 `json:"fused_score"`

	// SupportCount is the number of supporting evidence records, used to
	// break fused-score ties.
	SupportCount int `json:"support_count,omitempty"`
}

// Validate checks the coordinate invariants.
func (c *Candidate) Validate() error {
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("%w: latitude %f out of range", ErrValidation, c.Lat)
	}
	if c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("%w: longitude %f out of range", ErrValidation, c.Lon)
	}
	if c.RawScore < 0 || c.RawScore > 1 {
		return fmt.Errorf("%w: raw score %f out of range", ErrValidation, c.RawScore)
	}
	return nil
}

// HasSource reports whether the candidate carries the given provenance tag.
func (c *Candidate) HasSource(s CandidateSource) bool {
	for _, src := range c.Sources {
		if src == s {
			return true
		}
	}
	return false
}

// AddSource appends a provenance tag if not already present.
func (c *Candidate) AddSource(s CandidateSource) {
	if !c.HasSource(s) {
		c.Sources = append(c.Sources, s)
	}
}
