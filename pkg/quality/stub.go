package quality

import (
	"context"
	"strings"
)

// StubScorer is a deterministic heuristic for development and tests;
// replace with the LLM-backed classifier in production. Longer, more varied
// text scores higher, saturating at 0.95.
type StubScorer struct{}

func (s *StubScorer) Score(ctx context.Context, text string, actionType string) (float64, error) {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return 0, nil
	}
	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		unique[w] = struct{}{}
	}
	variety := float64(len(unique)) / float64(len(words))
	length := float64(len(words)) / 100.0
	if length > 1 {
		length = 1
	}
	score := 0.3 + 0.4*length + 0.3*variety
	if score > 0.95 {
		score = 0.95
	}
	return score, nil
}
