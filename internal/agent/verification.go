package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/geolens/geolens/internal/domain"
	"github.com/geolens/geolens/internal/verify"
)

// verifyCandidates runs every checker against every candidate, appends the
// results to the evidence ledger, and recomputes fused scores. Fusion uses
// only the current iteration's evidence so re-verification on a later pass
// replaces, rather than compounds, the previous deltas.
func (a *Agent) verifyCandidates(ctx context.Context, state *domain.RunState) {
	for i := range state.Candidates {
		c := state.Candidates[i]

		// Checkers fan out per candidate; results land in per-checker
		// slots so the ledger order stays deterministic, and only this
		// goroutine touches the state.
		results := make([]*domain.Evidence, len(a.checkers))
		g := new(errgroup.Group)
		for idx, checker := range a.checkers {
			g.Go(func() error {
				callCtx, cancel := context.WithTimeout(ctx, a.opts.CallTimeout)
				defer cancel()
				ev, applicable, err := checker.Check(callCtx, c, state.Clues)
				if err != nil {
					a.logger.Warn("checker failed, skipping",
						zap.String("run_id", state.ID.String()),
						zap.String("check", string(checker.Kind())),
						zap.Error(err))
					return nil
				}
				if applicable {
					results[idx] = &ev
				}
				return nil
			})
		}
		_ = g.Wait()
		for _, ev := range results {
			if ev != nil {
				state.AppendEvidence(*ev)
			}
		}
	}

	for i := range state.Candidates {
		c := &state.Candidates[i]
		current := evidenceForIteration(state, c.ID, state.Iteration)
		c.FusedScore = a.scoreCeiling(state, verify.FuseScore(c.RawScore, current, a.opts.Weights))
		c.SupportCount = verify.SupportCount(state.EvidenceFor(c.ID))
	}
	verify.SortByFusedScore(state.Candidates)

	a.logger.Info("verification complete",
		zap.String("run_id", state.ID.String()),
		zap.Int("iteration", state.Iteration),
		zap.Int("ledger_size", len(state.Evidence)),
		zap.Float32("top_score", state.Candidates[0].FusedScore))
}

func evidenceForIteration(state *domain.RunState, candidateID uuid.UUID, iter int) []domain.Evidence {
	var out []domain.Evidence
	for _, e := range state.Evidence {
		if e.CandidateID == candidateID && e.Iteration == iter {
			out = append(out, e)
		}
	}
	return out
}

// finalize derives the Prediction from the top-ranked candidate. Every
// field traces back to the ledger; the holistic reasoning call may only
// narrate the ranking, and a templated summary stands in when the language
// model is unavailable.
func (a *Agent) finalize(ctx context.Context, state *domain.RunState, converged bool) {
	top := state.Candidates[0]

	confidence := top.FusedScore
	if !converged && confidence > nonConvergenceCeiling {
		confidence = nonConvergenceCeiling
	}

	pred := &domain.Prediction{
		CandidateID:        top.ID,
		Name:               top.Name,
		Lat:                top.Lat,
		Lon:                top.Lon,
		Confidence:         confidence,
		SupportingEvidence: state.SupportingEvidenceFor(top.ID),
		ExcludedReasons:    a.excludedReasons(state),
		Alternatives:       a.alternatives(state),
		ReasoningPath:      reasoningPath(state, converged),
		Converged:          converged,
	}

	reasoning, err := callWithRetry(ctx, a, "holistic reasoning", func(ctx context.Context) (string, error) {
		return a.llm.HolisticReason(ctx, domain.ReasonRequest{
			Clues:      state.Clues,
			Candidates: state.Candidates,
			Evidence:   state.Evidence,
		})
	})
	if err != nil || strings.TrimSpace(reasoning) == "" {
		if err != nil {
			state.Note("holistic reasoning unavailable, using summary: %v", err)
		}
		reasoning = templatedReasoning(state, pred)
	}
	pred.Reasoning = reasoning

	state.Prediction = pred
}

// finalizeEmpty terminates a run that produced no candidates at all.
func (a *Agent) finalizeEmpty(state *domain.RunState) {
	state.Note("no candidates could be retrieved")
	state.Prediction = &domain.Prediction{
		Confidence:    0,
		Reasoning:     "No location candidates could be retrieved for this image.",
		ReasoningPath: reasoningPath(state, false),
		Converged:     false,
	}
}

// alternatives lists the runners-up above the score floor.
func (a *Agent) alternatives(state *domain.RunState) []domain.Alternative {
	var out []domain.Alternative
	for _, c := range state.Candidates[1:] {
		if c.FusedScore < a.opts.AlternativeFloor {
			continue
		}
		out = append(out, domain.Alternative{
			CandidateID: c.ID,
			Name:        c.Name,
			Lat:         c.Lat,
			Lon:         c.Lon,
			FusedScore:  c.FusedScore,
		})
	}
	return out
}

// excludedReasons summarizes contradicting evidence against the runners-up.
func (a *Agent) excludedReasons(state *domain.RunState) []string {
	var out []string
	for _, c := range state.Candidates[1:] {
		for _, e := range state.EvidenceFor(c.ID) {
			if e.Result != domain.EvidenceContradict {
				continue
			}
			out = append(out, fmt.Sprintf("%s: %s", c.Name, e.Detail))
			break
		}
	}
	return out
}

// reasoningPath records one line per completed iteration plus the
// termination cause.
func reasoningPath(state *domain.RunState, converged bool) []string {
	var path []string
	if state.Clues.Degraded {
		path = append(path, "perception: degraded to metadata-only clue set")
	} else {
		path = append(path, fmt.Sprintf("perception: %d clues extracted", state.Clues.Len()))
	}
	for iter := 0; iter <= state.Iteration; iter++ {
		hyps := state.HypothesesForIteration(iter)
		if len(hyps) == 0 {
			continue
		}
		regions := make([]string, 0, len(hyps))
		for _, h := range hyps {
			regions = append(regions, h.Region)
		}
		path = append(path, fmt.Sprintf("iteration %d: hypothesized %s", iter, strings.Join(regions, "; ")))
	}
	path = append(path, fmt.Sprintf("retrieval: %d candidates after dedupe", len(state.Candidates)))
	if converged {
		path = append(path, "termination: confidence threshold met")
	} else if len(state.Candidates) == 0 {
		path = append(path, "termination: no candidates")
	} else {
		path = append(path, "termination: iteration budget exhausted")
	}
	return path
}

// templatedReasoning is the deterministic fallback narration.
func templatedReasoning(state *domain.RunState, pred *domain.Prediction) string {
	support := len(pred.SupportingEvidence)
	var contradict int
	for _, e := range state.EvidenceFor(pred.CandidateID) {
		if e.Result == domain.EvidenceContradict {
			contradict++
		}
	}
	return fmt.Sprintf(
		"Predicted %s at (%.4f, %.4f) with confidence %.2f, backed by %d supporting and %d contradicting evidence records across %d iterations.",
		pred.Name, pred.Lat, pred.Lon, pred.Confidence, support, contradict, state.Iteration+1)
}
