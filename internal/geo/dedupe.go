package geo

import (
	"github.com/geolens/geolens/internal/domain"
)

// DefaultDedupeRadiusMeters is the proximity threshold under which two
// candidates are considered the same location.
const DefaultDedupeRadiusMeters = 1000.0

// DedupeCandidates merges candidates within radiusMeters of each other.
// The merged candidate keeps the coordinates and name of the higher-scoring
// member, the max raw score, and the union of provenance sources. The
// operation is idempotent: deduping an already-deduped list is a no-op.
func DedupeCandidates(candidates []domain.Candidate, radiusMeters float64) []domain.Candidate {
	if radiusMeters <= 0 {
		radiusMeters = DefaultDedupeRadiusMeters
	}

	// A merge that shifts the kept coordinates can bring the survivor
	// within radius of another entry, so repeat until no pair merges.
	merged := dedupeOnce(candidates, radiusMeters)
	for {
		next := dedupeOnce(merged, radiusMeters)
		if len(next) == len(merged) {
			return next
		}
		merged = next
	}
}

func dedupeOnce(candidates []domain.Candidate, radiusMeters float64) []domain.Candidate {
	var merged []domain.Candidate
	for _, c := range candidates {
		idx := -1
		for i := range merged {
			if Haversine(c.Lat, c.Lon, merged[i].Lat, merged[i].Lon) <= radiusMeters {
				idx = i
				break
			}
		}
		if idx < 0 {
			merged = append(merged, c)
			continue
		}

		kept := &merged[idx]
		if c.RawScore > kept.RawScore {
			// Higher-scoring member wins coordinates and identity.
			sources := kept.Sources
			prev := *kept
			*kept = c
			for _, s := range sources {
				kept.AddSource(s)
			}
			if kept.Address == "" {
				kept.Address = prev.Address
			}
			if kept.Region == "" {
				kept.Region = prev.Region
			}
		} else {
			for _, s := range c.Sources {
				kept.AddSource(s)
			}
			if kept.Address == "" {
				kept.Address = c.Address
			}
			if kept.Region == "" {
				kept.Region = c.Region
			}
		}
	}
	return merged
}
