package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/geolens/geolens/internal/domain"
	"github.com/geolens/geolens/internal/geo"
	"github.com/geolens/geolens/internal/verify"
)

// retrieve grounds the current hypotheses into concrete candidates. The
// embedding path and the symbolic geocoding path run in parallel; either
// may fail without failing the run. New candidates are merged into the
// accumulated set and deduped, so re-retrieving a location on a later
// iteration unions with the earlier hit instead of duplicating it.
func (a *Agent) retrieve(ctx context.Context, state *domain.RunState, image []byte) {
	var (
		mu    sync.Mutex
		found []domain.Candidate
	)
	add := func(cands ...domain.Candidate) {
		mu.Lock()
		found = append(found, cands...)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cands, err := a.embeddingCandidates(gctx, image)
		if err != nil {
			state.Note("embedding retrieval unavailable, symbolic-only: %v", err)
			a.logger.Warn("embedding retrieval failed",
				zap.String("run_id", state.ID.String()),
				zap.Error(err))
			return nil
		}
		add(cands...)
		return nil
	})
	g.Go(func() error {
		add(a.symbolicCandidates(gctx, state)...)
		return nil
	})
	_ = g.Wait()

	if state.Iteration == 0 {
		if c, ok := a.exifCandidate(ctx, state); ok {
			found = append(found, c)
		}
	}

	merged := append(state.Candidates, found...)
	state.Candidates = geo.DedupeCandidates(merged, a.opts.DedupeRadiusMeters)

	a.logger.Info("retrieval complete",
		zap.String("run_id", state.ID.String()),
		zap.Int("iteration", state.Iteration),
		zap.Int("new", len(found)),
		zap.Int("total", len(state.Candidates)))
}

// embeddingCandidates runs the visual-similarity path, unioning the coarse
// granularity client when configured. Reverse geocoding fills in names and
// addresses best-effort.
func (a *Agent) embeddingCandidates(ctx context.Context, image []byte) ([]domain.Candidate, error) {
	guesses, err := callWithRetry(ctx, a, "retrieval", func(ctx context.Context) ([]domain.GeoGuess, error) {
		return a.retrieval.EmbedAndRetrieve(ctx, image, a.opts.TopK)
	})
	if err != nil {
		return nil, err
	}

	if a.coarse != nil {
		coarse, cerr := callWithRetry(ctx, a, "coarse retrieval", func(ctx context.Context) ([]domain.GeoGuess, error) {
			return a.coarse.EmbedAndRetrieve(ctx, image, a.opts.TopK)
		})
		if cerr != nil {
			a.logger.Warn("coarse retrieval failed", zap.Error(cerr))
		} else {
			guesses = append(guesses, coarse...)
		}
	}

	cands := make([]domain.Candidate, 0, len(guesses))
	for _, guess := range guesses {
		c := domain.Candidate{
			ID:       uuid.New(),
			Name:     fmt.Sprintf("%.4f, %.4f", guess.Lat, guess.Lon),
			Lat:      guess.Lat,
			Lon:      guess.Lon,
			Sources:  []domain.CandidateSource{domain.SourceRetrieval},
			RawScore: verify.Clip(guess.Score),
		}
		a.annotate(ctx, &c)
		if c.Validate() == nil {
			cands = append(cands, c)
		}
	}
	return cands, nil
}

// symbolicCandidates geocodes each current-iteration hypothesis region,
// taking the hypothesis confidence as the raw score. A region that cannot
// be geocoded is skipped, not fatal.
func (a *Agent) symbolicCandidates(ctx context.Context, state *domain.RunState) []domain.Candidate {
	if a.geocoder == nil {
		return nil
	}

	var cands []domain.Candidate
	for _, h := range state.HypothesesForIteration(state.Iteration) {
		callCtx, cancel := context.WithTimeout(ctx, a.opts.CallTimeout)
		places, err := a.geocoder.Geocode(callCtx, h.Region)
		cancel()
		if err != nil {
			if !errors.Is(err, domain.ErrNoMatch) {
				a.logger.Warn("geocode failed",
					zap.String("region", h.Region),
					zap.Error(err))
			}
			continue
		}
		if len(places) > maxPlacesPerHypothesis {
			places = places[:maxPlacesPerHypothesis]
		}
		for _, p := range places {
			c := domain.Candidate{
				ID:       uuid.New(),
				Name:     p.Name,
				Lat:      p.Lat,
				Lon:      p.Lon,
				Sources:  []domain.CandidateSource{domain.SourceGeocode},
				Address:  p.Address,
				Region:   h.Region,
				RawScore: h.Confidence,
			}
			if c.Validate() == nil {
				cands = append(cands, c)
			}
		}
	}
	return cands
}

// exifCandidate promotes an embedded GPS tag to a high-score candidate.
// The tag still goes through Verification like everything else.
func (a *Agent) exifCandidate(ctx context.Context, state *domain.RunState) (domain.Candidate, bool) {
	gps, ok := state.Clues.MetadataClue(domain.MetaKeyGPS)
	if !ok {
		return domain.Candidate{}, false
	}
	lat, lon, err := verify.ParseGPSValue(gps.Value)
	if err != nil {
		state.Note("unparsable GPS metadata clue: %v", err)
		return domain.Candidate{}, false
	}

	c := domain.Candidate{
		ID:       uuid.New(),
		Name:     fmt.Sprintf("EXIF position %.4f, %.4f", lat, lon),
		Lat:      lat,
		Lon:      lon,
		Sources:  []domain.CandidateSource{domain.SourceEXIF},
		RawScore: exifCandidateScore,
	}
	a.annotate(ctx, &c)
	return c, true
}

// annotate fills in address and a human name via reverse geocoding,
// best-effort.
func (a *Agent) annotate(ctx context.Context, c *domain.Candidate) {
	if a.geocoder == nil {
		return
	}
	callCtx, cancel := context.WithTimeout(ctx, a.opts.CallTimeout)
	defer cancel()
	address, err := a.geocoder.ReverseGeocode(callCtx, c.Lat, c.Lon)
	if err != nil {
		return
	}
	c.Address = address
	c.Name = address
}
