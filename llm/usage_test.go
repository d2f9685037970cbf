package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUsageAdd(t *testing.T) {
	u := &Usage{InputTokens: 10, OutputTokens: 5}
	u.Add(&Usage{InputTokens: 3, OutputTokens: 1, CacheReadInputTokens: 2})
	assert.Equal(t, 13, u.InputTokens)
	assert.Equal(t, 6, u.OutputTokens)
	assert.Equal(t, 2, u.CacheReadInputTokens)
}

func TestUsageCopyIsIndependent(t *testing.T) {
	u := &Usage{InputTokens: 10}
	c := u.Copy()
	c.InputTokens = 99
	assert.Equal(t, 10, u.InputTokens)
}

func TestCacheControlTypeString(t *testing.T) {
	assert.Equal(t, "ephemeral", CacheControlTypeEphemeral.String())
}
