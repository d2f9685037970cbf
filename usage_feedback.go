package contextcore

import "github.com/deepnoodle-ai/contextcore/llm"

// ActualCacheSavings reconciles a [CacheSavingsEstimate] against the token
// usage a provider actually reported for the request, so callers can tell
// whether their cache breakpoints are paying off in practice.
type ActualCacheSavings struct {
	Estimate         CacheSavingsEstimate
	CacheReadTokens  int
	CacheWriteTokens int
	HitRate          float64
}

// ReconcileUsage compares estimate against a provider-reported Usage. hitRate
// is the fraction of input tokens served from cache (CacheReadInputTokens
// over total input tokens including cache reads), zero if usage reports no
// input tokens at all.
func ReconcileUsage(estimate CacheSavingsEstimate, usage *llm.Usage) ActualCacheSavings {
	out := ActualCacheSavings{Estimate: estimate}
	if usage == nil {
		return out
	}
	out.CacheReadTokens = usage.CacheReadInputTokens
	out.CacheWriteTokens = usage.CacheCreationInputTokens
	totalInput := usage.InputTokens + usage.CacheReadInputTokens
	if totalInput > 0 {
		out.HitRate = float64(usage.CacheReadInputTokens) / float64(totalInput)
	}
	return out
}
