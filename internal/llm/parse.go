package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/geolens/geolens/internal/domain"
)

// wire format for hypotheses coming back from the model
type hypothesisPayload struct {
	Region             string   `json:"region"`
	Rationale          string   `json:"rationale"`
	SupportingClueIDs  []string `json:"supporting_clue_ids"`
	ConflictingClueIDs []string `json:"conflicting_clue_ids"`
	Confidence         float32  `json:"confidence"`
}

// stripFences removes markdown code fences models wrap around JSON output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ParseHypotheses validates raw model output against the hypothesis schema.
// An empty list or an out-of-range confidence is a validation error so the
// stage can retry once before degrading.
func ParseHypotheses(raw string) ([]domain.Hypothesis, error) {
	cleaned := stripFences(raw)

	var payload []hypothesisPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("%w: hypothesis output: %v (raw: %.200s)", domain.ErrParse, err, cleaned)
	}
	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: model returned no hypotheses", domain.ErrValidation)
	}

	hypotheses := make([]domain.Hypothesis, 0, len(payload))
	for i, p := range payload {
		h := domain.Hypothesis{
			ID:                 uuid.New(),
			Region:             strings.TrimSpace(p.Region),
			Rationale:          strings.TrimSpace(p.Rationale),
			Confidence:         p.Confidence,
			SupportingClueIDs:  parseClueIDs(p.SupportingClueIDs),
			ConflictingClueIDs: parseClueIDs(p.ConflictingClueIDs),
		}
		if !domain.ValidHypothesis(h) {
			return nil, fmt.Errorf("%w: hypothesis %d (region %q, confidence %f)",
				domain.ErrValidation, i, p.Region, p.Confidence)
		}
		hypotheses = append(hypotheses, h)
	}
	return hypotheses, nil
}

// parseClueIDs keeps only well-formed UUIDs; models sometimes echo ids with
// extra text around them.
func parseClueIDs(raw []string) []uuid.UUID {
	var ids []uuid.UUID
	for _, s := range raw {
		if id, err := uuid.Parse(strings.TrimSpace(s)); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// FormatHypothesisPrompt renders the hypothesis prompt from the request.
func FormatHypothesisPrompt(req domain.HypothesisRequest) string {
	var prior strings.Builder
	if len(req.PriorHypotheses) > 0 {
		prior.WriteString("\nPreviously rejected or low-scoring regions (do not repeat):\n")
		for _, h := range req.PriorHypotheses {
			fmt.Fprintf(&prior, "- %s (confidence %.2f, iteration %d)\n", h.Region, h.Confidence, h.Iteration)
		}
	}
	if len(req.CandidateContext) > 0 {
		prior.WriteString("\nCandidates already scored:\n")
		for _, c := range req.CandidateContext {
			fmt.Fprintf(&prior, "- %s (%.4f, %.4f) fused score %.2f\n", c.Name, c.Lat, c.Lon, c.FusedScore)
		}
	}
	if len(req.EvidenceContext) > 0 {
		prior.WriteString("\nEvidence so far:\n")
		for _, e := range req.EvidenceContext {
			fmt.Fprintf(&prior, "- [%s] %s: %s\n", e.Result, e.Check, e.Detail)
		}
	}
	return fmt.Sprintf(hypothesisPrompt, req.ClueSummary, prior.String())
}

// FormatReasonPrompt renders the holistic-reasoning prompt.
func FormatReasonPrompt(req domain.ReasonRequest) string {
	var cands strings.Builder
	for i, c := range req.Candidates {
		fmt.Fprintf(&cands, "%d. %s (%.4f, %.4f) fused score %.2f, sources %v\n",
			i+1, c.Name, c.Lat, c.Lon, c.FusedScore, c.Sources)
	}
	var ev strings.Builder
	for _, e := range req.Evidence {
		fmt.Fprintf(&ev, "- [%s] %s: %s (delta %+.2f)\n", e.Result, e.Check, e.Detail, e.ScoreDelta)
	}
	return fmt.Sprintf(reasonPrompt, cands.String(), ev.String())
}
