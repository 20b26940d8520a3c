package agent

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/geolens/geolens/internal/domain"
	"github.com/geolens/geolens/internal/imagemeta"
)

// perceive builds the typed clue set from the vision collaborator plus the
// local metadata extractor. It never fails the run: an unreachable or
// unparsable vision collaborator degrades the set to metadata-only.
func (a *Agent) perceive(ctx context.Context, state *domain.RunState, image []byte) {
	state.Phase = domain.PhasePerceiving

	result, err := callWithRetry(ctx, a, "vision", func(ctx context.Context) (*domain.PerceptionResult, error) {
		return a.vision.AnalyzeImage(ctx, image, "")
	})
	if err != nil {
		state.Clues.Degraded = true
		state.Note("perception degraded to metadata-only: %v", err)
		a.logger.Warn("vision collaborator unavailable, degrading",
			zap.String("run_id", state.ID.String()),
			zap.Error(err))
	} else {
		for _, t := range result.OCRTexts {
			state.Clues.Add(domain.NewTextClue(t.Text, t.Language, t.Confidence))
		}
		for _, f := range result.VisualFeatures {
			state.Clues.Add(domain.NewVisualClue(f.Feature, f.Value, f.Confidence))
		}
	}

	meta, err := imagemeta.Extract(image)
	if err != nil {
		state.Note("metadata extraction failed: %v", err)
	} else {
		state.Clues.Add(meta.Clues()...)
	}

	a.logger.Info("perception complete",
		zap.String("run_id", state.ID.String()),
		zap.Int("clue_count", state.Clues.Len()),
		zap.Bool("degraded", state.Clues.Degraded))
}

// clueSummary renders the clue set for the hypothesis prompt, one clue per
// line with its ID so the model can reference clues back.
func clueSummary(clues domain.ClueSet) string {
	if clues.Len() == 0 {
		return "(no clues were extracted from the image)"
	}
	var out string
	for _, c := range clues.Clues {
		switch c.Kind {
		case domain.ClueText:
			out += fmt.Sprintf("- [%s] text: %q", c.ID, c.Text)
			if c.Language != "" {
				out += fmt.Sprintf(" (language: %s)", c.Language)
			}
			out += fmt.Sprintf(" confidence=%.2f\n", c.Confidence)
		case domain.ClueVisual:
			out += fmt.Sprintf("- [%s] visual %s: %s confidence=%.2f\n", c.ID, c.Feature, c.Value, c.Confidence)
		case domain.ClueMetadata:
			out += fmt.Sprintf("- [%s] metadata %s: %s (from %s)\n", c.ID, c.Key, c.Value, c.Source)
		}
	}
	return out
}
