package verify

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

// NormalizeText lowercases, strips punctuation and collapses whitespace so
// OCR noise does not defeat matching.
func NormalizeText(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// FuzzyMatch scores the similarity of two strings in [0,1]. Exact matches
// after normalization score 1.0; containment scores at least 0.9; otherwise
// the score is the normalized Levenshtein similarity.
func FuzzyMatch(text, candidateText string) float64 {
	a := NormalizeText(text)
	b := NormalizeText(candidateText)
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1.0
	}

	score := levenshteinSimilarity(a, b)
	if strings.Contains(a, b) || strings.Contains(b, a) {
		if score < 0.9 {
			score = 0.9
		}
	}
	return score
}

func levenshteinSimilarity(a, b string) float64 {
	la := len([]rune(a))
	lb := len([]rune(b))
	max := la
	if lb > max {
		max = lb
	}
	if max == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	sim := 1.0 - float64(dist)/float64(max)
	if sim < 0 {
		sim = 0
	}
	return sim
}

// BestFieldMatch scores text against several candidate fields and returns
// the best score together with the field that produced it.
func BestFieldMatch(text string, fields ...string) (float64, string) {
	best := 0.0
	var bestField string
	for _, f := range fields {
		if f == "" {
			continue
		}
		if s := FuzzyMatch(text, f); s > best {
			best = s
			bestField = f
		}
	}
	return best, bestField
}
