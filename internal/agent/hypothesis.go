package agent

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/geolens/geolens/internal/domain"
	"github.com/geolens/geolens/internal/verify"
)

const maxHypothesesPerIteration = 5

// hypothesize asks the language model for ranked region hypotheses. On
// re-entry the model sees the full hypothesis history plus the candidate
// and evidence context, so it can move away from contradicted regions
// instead of repeating them.
func (a *Agent) hypothesize(ctx context.Context, state *domain.RunState) {
	req := domain.HypothesisRequest{
		ClueSummary:     clueSummary(state.Clues),
		PriorHypotheses: state.Hypotheses,
	}
	if state.Iteration > 0 {
		req.CandidateContext = state.Candidates
		req.EvidenceContext = state.Evidence
	}

	hypotheses, err := callWithRetry(ctx, a, "language model", func(ctx context.Context) ([]domain.Hypothesis, error) {
		return a.llm.Hypothesize(ctx, req)
	})
	if err != nil {
		state.Note("hypothesis stage degraded to fallback: %v", err)
		a.logger.Warn("language model unavailable, using fallback hypothesis",
			zap.String("run_id", state.ID.String()),
			zap.Error(err))
		hypotheses = []domain.Hypothesis{fallbackHypothesis(state.Clues)}
	}

	valid := hypotheses[:0]
	for _, h := range hypotheses {
		if domain.ValidHypothesis(h) {
			valid = append(valid, h)
		}
	}
	if len(valid) == 0 {
		state.Note("language model returned no valid hypotheses")
		valid = append(valid, fallbackHypothesis(state.Clues))
	}

	verify.SortHypotheses(valid)
	if len(valid) > maxHypothesesPerIteration {
		valid = valid[:maxHypothesesPerIteration]
	}
	for i := range valid {
		valid[i].Iteration = state.Iteration
	}
	state.Hypotheses = append(state.Hypotheses, valid...)

	a.logger.Info("hypotheses proposed",
		zap.String("run_id", state.ID.String()),
		zap.Int("iteration", state.Iteration),
		zap.Int("count", len(valid)),
		zap.String("top_region", valid[0].Region))
}

// fallbackHypothesis keeps the pipeline moving when the language model is
// down. If any clue carries a region hint that becomes the region; otherwise
// the hypothesis is a low-confidence placeholder the retrieval stage will
// mostly ignore in favor of the embedding path.
func fallbackHypothesis(clues domain.ClueSet) domain.Hypothesis {
	region := "unknown region"
	for _, c := range clues.Clues {
		if c.Region != "" {
			region = c.Region
			break
		}
	}
	return domain.Hypothesis{
		ID:         uuid.New(),
		Region:     region,
		Rationale:  "language model unavailable; placeholder hypothesis from available clues",
		Confidence: fallbackHypothesisConfidence,
	}
}
