package contextcore

import (
	"testing"

	"github.com/deepnoodle-ai/contextcore/llm"
	"github.com/deepnoodle-ai/wonton/assert"
)

func TestReconcileUsageComputesHitRate(t *testing.T) {
	estimate := CacheSavingsEstimate{CacheableTokens: 500, TotalTokens: 1000, SavingsPct: 0.45}
	usage := &llm.Usage{InputTokens: 100, CacheReadInputTokens: 400}
	got := ReconcileUsage(estimate, usage)
	assert.Equal(t, got.CacheReadTokens, 400)
	assert.Equal(t, got.HitRate, 0.8)
	assert.Equal(t, got.Estimate, estimate)
}

func TestReconcileUsageNilUsage(t *testing.T) {
	estimate := CacheSavingsEstimate{CacheableTokens: 10, TotalTokens: 20}
	got := ReconcileUsage(estimate, nil)
	assert.Equal(t, got.HitRate, 0.0)
	assert.Equal(t, got.CacheReadTokens, 0)
}

func TestReconcileUsageZeroInputTokens(t *testing.T) {
	estimate := CacheSavingsEstimate{}
	usage := &llm.Usage{}
	got := ReconcileUsage(estimate, usage)
	assert.Equal(t, got.HitRate, 0.0)
}
