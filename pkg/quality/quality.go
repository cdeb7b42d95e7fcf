package quality

import "context"

// Scorer assigns a sincerity/substance score in [0,1] to free-text content.
// The production implementation calls an external classifier; it may be slow
// or unavailable, so callers must fall back to the policy default score on
// error rather than failing the action.
type Scorer interface {
	Score(ctx context.Context, text string, actionType string) (float64, error)
}
