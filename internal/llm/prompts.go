package llm

const hypothesisPrompt = `You are a geolocation analyst. Based on the clues extracted from an image, propose 2 to 5 candidate geographic regions.

For each hypothesis provide:
- region: the place descriptor, most specific first, e.g. "Paris, France" or "Kyushu, Japan"
- rationale: one or two sentences deriving the region from the clues
- supporting_clue_ids: ids of clues that support this region
- conflicting_clue_ids: ids of clues that argue against it
- confidence: 0.0-1.0, relative to your other hypotheses in this answer

Do not repeat regions listed under "Previously rejected". Respond ONLY with a JSON array, no markdown. Example:
[{"region":"Paris, France","rationale":"French signage and Haussmann architecture","supporting_clue_ids":["<id>"],"conflicting_clue_ids":[],"confidence":0.8}]

Clues:
%s
%s`

const reasonPrompt = `You are explaining a completed image-geolocation analysis. The ranking below is final and backed by a numeric evidence score; explain it, do not change it.

Ranked candidates:
%s

Evidence ledger:
%s

Write a short paragraph (3-5 sentences) explaining why the top candidate is the best answer, citing the concrete evidence. Respond with ONLY the paragraph.`
