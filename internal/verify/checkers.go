package verify

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/geolens/geolens/internal/domain"
	"github.com/geolens/geolens/internal/geo"
)

// Base score deltas emitted by the built-in checkers, before per-kind
// weighting. Tunables, not contracts.
const (
	textMatchMaxDelta      = 0.30
	textMatchThreshold     = 0.60
	languageSupportDelta   = 0.15
	languageConflictDelta  = -0.20
	gpsSupportDelta        = 0.40
	gpsConflictDelta       = -0.40
	gpsSupportRadiusMeters = 5000.0
	gpsConflictMeters      = 500000.0
	poiMatchDelta          = 0.25
	poiSearchRadiusMeters  = 1000.0
)

// Checker compares one candidate against the clue set and emits a typed
// evidence record. The bool reports applicability: inapplicable checks
// (missing inputs) produce no record at all. Checkers that consult external
// services may return an error, which the caller treats as a skip.
type Checker interface {
	Kind() domain.EvidenceCheck
	Check(ctx context.Context, c domain.Candidate, clues domain.ClueSet) (domain.Evidence, bool, error)
}

// TextMatchChecker fuzzy-matches text clues against the candidate's name
// and address.
type TextMatchChecker struct{}

func (TextMatchChecker) Kind() domain.EvidenceCheck { return domain.CheckTextMatch }

func (TextMatchChecker) Check(_ context.Context, c domain.Candidate, clues domain.ClueSet) (domain.Evidence, bool, error) {
	texts := clues.TextClues()
	if len(texts) == 0 {
		return domain.Evidence{}, false, nil
	}

	best := 0.0
	var bestClue domain.Clue
	var bestField string
	for _, clue := range texts {
		score, field := BestFieldMatch(clue.Text, c.Name, c.Address)
		if score > best {
			best = score
			bestClue = clue
			bestField = field
		}
	}

	if best < textMatchThreshold {
		return domain.NewEvidence(c.ID, domain.CheckTextMatch, domain.EvidenceNeutral, 0,
			fmt.Sprintf("no text clue matched %q (best %.2f)", c.Name, best)), true, nil
	}

	delta := float32(best) * bestClue.Confidence * textMatchMaxDelta
	detail := fmt.Sprintf("clue %q matched %q (score %.2f)", bestClue.Text, bestField, best)
	return domain.NewEvidence(c.ID, domain.CheckTextMatch, domain.EvidenceSupport, delta, detail), true, nil
}

// LanguagePriorChecker checks whether the language of the text clues is
// plausible for the candidate's country.
type LanguagePriorChecker struct{}

func (LanguagePriorChecker) Kind() domain.EvidenceCheck { return domain.CheckLanguagePrior }

func (LanguagePriorChecker) Check(_ context.Context, c domain.Candidate, clues domain.ClueSet) (domain.Evidence, bool, error) {
	texts := clues.TextClues()
	if len(texts) == 0 {
		return domain.Evidence{}, false, nil
	}

	var sb strings.Builder
	for _, clue := range texts {
		sb.WriteString(clue.Text)
		sb.WriteString(" ")
	}
	prior, ok := LanguageToRegionPrior(sb.String())
	if !ok {
		return domain.Evidence{}, false, nil
	}

	country, ok := CountryOfAddress(c.Address + " " + c.Region)
	if !ok {
		return domain.NewEvidence(c.ID, domain.CheckLanguagePrior, domain.EvidenceNeutral, 0,
			fmt.Sprintf("detected language %s but candidate country unknown", prior.Language)), true, nil
	}

	if prior.PriorCovers(country) {
		delta := languageSupportDelta * prior.Confidence
		detail := fmt.Sprintf("language %s is consistent with %s", prior.Language, country)
		return domain.NewEvidence(c.ID, domain.CheckLanguagePrior, domain.EvidenceSupport, delta, detail), true, nil
	}

	delta := languageConflictDelta * prior.Confidence
	detail := fmt.Sprintf("language %s is unexpected in %s", prior.Language, country)
	return domain.NewEvidence(c.ID, domain.CheckLanguagePrior, domain.EvidenceContradict, delta, detail), true, nil
}

// GPSTagChecker compares the candidate against an embedded EXIF GPS tag.
type GPSTagChecker struct{}

func (GPSTagChecker) Kind() domain.EvidenceCheck { return domain.CheckGPSTag }

func (GPSTagChecker) Check(_ context.Context, c domain.Candidate, clues domain.ClueSet) (domain.Evidence, bool, error) {
	clue, ok := clues.MetadataClue(domain.MetaKeyGPS)
	if !ok {
		return domain.Evidence{}, false, nil
	}
	lat, lon, err := ParseGPSValue(clue.Value)
	if err != nil {
		return domain.Evidence{}, false, nil
	}

	dist := geo.Haversine(lat, lon, c.Lat, c.Lon)
	switch {
	case dist <= gpsSupportRadiusMeters:
		detail := fmt.Sprintf("EXIF GPS tag is %.0f m from candidate", dist)
		return domain.NewEvidence(c.ID, domain.CheckGPSTag, domain.EvidenceSupport, gpsSupportDelta, detail), true, nil
	case dist >= gpsConflictMeters:
		detail := fmt.Sprintf("EXIF GPS tag is %.0f km from candidate", dist/1000)
		return domain.NewEvidence(c.ID, domain.CheckGPSTag, domain.EvidenceContradict, gpsConflictDelta, detail), true, nil
	default:
		detail := fmt.Sprintf("EXIF GPS tag is %.0f km away, inconclusive", dist/1000)
		return domain.NewEvidence(c.ID, domain.CheckGPSTag, domain.EvidenceNeutral, 0, detail), true, nil
	}
}

// ParseGPSValue parses the "lat,lon" value carried by a GPS metadata clue.
func ParseGPSValue(value string) (lat, lon float64, err error) {
	parts := strings.SplitN(value, ",", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: gps value %q", domain.ErrValidation, value)
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: gps latitude: %v", domain.ErrValidation, err)
	}
	lon, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: gps longitude: %v", domain.ErrValidation, err)
	}
	return lat, lon, nil
}

// POITopologyChecker verifies a candidate against the POI layout around its
// coordinates: if a text clue names a POI actually found nearby, that is
// strong support. Optional and service-backed; errors are surfaced so the
// stage can skip it without failing the run.
type POITopologyChecker struct {
	Geocoder domain.Geocoder
}

func (POITopologyChecker) Kind() domain.EvidenceCheck { return domain.CheckPOITopology }

func (p POITopologyChecker) Check(ctx context.Context, c domain.Candidate, clues domain.ClueSet) (domain.Evidence, bool, error) {
	if p.Geocoder == nil {
		return domain.Evidence{}, false, nil
	}
	texts := clues.TextClues()
	if len(texts) == 0 {
		return domain.Evidence{}, false, nil
	}

	south, west, north, east := geo.BBoxAround(c.Lat, c.Lon, poiSearchRadiusMeters)
	bbox := &domain.BBox{South: south, West: west, North: north, East: east}

	for _, clue := range texts {
		pois, err := p.Geocoder.SearchPOI(ctx, clue.Text, bbox)
		if err != nil {
			return domain.Evidence{}, false, err
		}
		for _, poi := range pois {
			if FuzzyMatch(clue.Text, poi.Name) >= textMatchThreshold {
				detail := fmt.Sprintf("POI %q found %0.f m from candidate, matching clue %q",
					poi.Name, geo.Haversine(c.Lat, c.Lon, poi.Lat, poi.Lon), clue.Text)
				return domain.NewEvidence(c.ID, domain.CheckPOITopology, domain.EvidenceSupport, poiMatchDelta, detail), true, nil
			}
		}
	}

	return domain.NewEvidence(c.ID, domain.CheckPOITopology, domain.EvidenceNeutral, 0,
		"no nearby POI matched any text clue"), true, nil
}
