// Package agent implements the orchestration core: the four-stage
// Perception → Hypothesis → Retrieval → Verification pipeline, the shared
// run state threaded through the stages, and the bounded re-hypothesis
// loop that gates the final prediction on accumulated evidence.
package agent

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/geolens/geolens/internal/domain"
	"github.com/geolens/geolens/internal/imagemeta"
	"github.com/geolens/geolens/internal/verify"
)

// Agent owns one run at a time. The collaborators are shared and safe for
// concurrent use; RunState never is, so batch callers create one Locate
// call per image.
type Agent struct {
	vision    domain.VisionClient
	llm       domain.LLMClient
	retrieval domain.RetrievalClient

	// coarse is the optional multi-scale retrieval path at city/country
	// granularity, unioned into the candidate set when present.
	coarse domain.RetrievalClient

	geocoder domain.Geocoder
	checkers []verify.Checker
	opts     Options
	logger   *zap.Logger
}

func New(
	vision domain.VisionClient,
	llm domain.LLMClient,
	retrieval domain.RetrievalClient,
	geocoder domain.Geocoder,
	opts Options,
	logger *zap.Logger,
) *Agent {
	opts = opts.withDefaults()

	checkers := []verify.Checker{
		verify.TextMatchChecker{},
		verify.LanguagePriorChecker{},
		verify.GPSTagChecker{},
	}
	if opts.EnableTopology && geocoder != nil {
		checkers = append(checkers, verify.POITopologyChecker{Geocoder: geocoder})
	}

	return &Agent{
		vision:    vision,
		llm:       llm,
		retrieval: retrieval,
		geocoder:  geocoder,
		checkers:  checkers,
		opts:      opts,
		logger:    logger,
	}
}

// SetCoarseRetrieval enables the multi-scale retrieval variant.
func (a *Agent) SetCoarseRetrieval(client domain.RetrievalClient) {
	a.coarse = client
}

// Locate runs the full pipeline for one image and always produces exactly
// one finalized RunState, however degraded. The only hard failure is an
// unreadable input image, rejected before Perception begins.
func (a *Agent) Locate(ctx context.Context, imageRef string, image []byte) (*domain.RunState, error) {
	if err := imagemeta.ValidateImage(image); err != nil {
		return nil, err
	}

	state := domain.NewRunState(imageRef)
	a.logger.Info("run started",
		zap.String("run_id", state.ID.String()),
		zap.String("image_ref", imageRef))

	a.perceive(ctx, state, image)

	for {
		if a.cancelled(ctx, state, "before hypothesis stage") {
			break
		}
		state.Phase = domain.PhaseHypothesizing
		a.hypothesize(ctx, state)

		if a.cancelled(ctx, state, "before retrieval stage") {
			break
		}
		state.Phase = domain.PhaseRetrieving
		a.retrieve(ctx, state, image)

		if len(state.Candidates) == 0 {
			a.finalizeEmpty(state)
			break
		}

		if a.cancelled(ctx, state, "before verification stage") {
			break
		}
		state.Phase = domain.PhaseVerifying
		a.verifyCandidates(ctx, state)

		top := state.Candidates[0]
		if top.FusedScore >= a.opts.ConfidenceThreshold {
			a.logger.Info("confidence threshold met",
				zap.String("run_id", state.ID.String()),
				zap.Float32("fused_score", top.FusedScore),
				zap.Int("iteration", state.Iteration))
			a.finalize(ctx, state, true)
			break
		}

		if state.Iteration+1 >= a.opts.MaxIterations {
			a.logger.Info("iteration budget exhausted",
				zap.String("run_id", state.ID.String()),
				zap.Float32("best_score", top.FusedScore))
			a.finalize(ctx, state, false)
			break
		}

		state.Iteration++
		a.logger.Info("looping back to hypothesis stage",
			zap.String("run_id", state.ID.String()),
			zap.Int("iteration", state.Iteration))
	}

	state.Phase = domain.PhaseDone
	a.logger.Info("run finished",
		zap.String("run_id", state.ID.String()),
		zap.Float32("confidence", state.Prediction.Confidence),
		zap.Int("evidence_count", len(state.Evidence)))
	return state, nil
}

// cancelled checks the run-level context at a stage boundary. A cancelled
// run stops cleanly with the best available prediction rather than leaving
// the state half-mutated mid-stage.
func (a *Agent) cancelled(ctx context.Context, state *domain.RunState, at string) bool {
	if ctx.Err() == nil {
		return false
	}
	state.Note("run cancelled %s: %v", at, ctx.Err())
	if len(state.Candidates) > 0 {
		a.finalize(context.WithoutCancel(ctx), state, false)
	} else {
		a.finalizeEmpty(state)
	}
	return true
}

// callWithRetry runs one collaborator call with an independent timeout and
// a single identical-input retry before giving up.
func callWithRetry[T any](ctx context.Context, a *Agent, name string, call func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, a.opts.CallTimeout)
		result, err := call(callCtx)
		cancel()
		if err == nil {
			return result, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		a.logger.Warn("collaborator call failed",
			zap.String("collaborator", name),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}
	return zero, fmt.Errorf("%s: %w", name, lastErr)
}

// scoreCeiling applies the degraded-perception cap.
func (a *Agent) scoreCeiling(state *domain.RunState, score float32) float32 {
	if state.Clues.Degraded && score > degradedScoreCeiling {
		return degradedScoreCeiling
	}
	return score
}
