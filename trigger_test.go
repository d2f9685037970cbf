package contextcore

import (
	"testing"

	"github.com/deepnoodle-ai/wonton/assert"
)

func TestThresholdTriggerFiresAtPercentage(t *testing.T) {
	trig := NewDefaultThresholdTrigger()
	assert.False(t, trig.ShouldCompact(900, 1000))
	assert.True(t, trig.ShouldCompact(920, 1000))
}

func TestThresholdTriggerZeroMaxNeverFires(t *testing.T) {
	trig := NewDefaultThresholdTrigger()
	assert.False(t, trig.ShouldCompact(100, 0))
}

func TestNewThresholdTriggerRejectsOutOfRange(t *testing.T) {
	_, err := NewThresholdTrigger(0.1)
	assert.Error(t, err)
	_, err = NewThresholdTrigger(1.5)
	assert.Error(t, err)
}

func TestTokenBasedTriggerFiresWhenApproachingAndPrunable(t *testing.T) {
	trig := NewDefaultTokenBasedTrigger()
	// remaining = 200000-180000 = 20000 < protect/2 (20000)? not strictly less, so false
	assert.False(t, trig.ShouldCompact(180000, 200000))
	// remaining = 200000-185000=15000 < 20000 and prunable = 185000-40000=145000>=20000
	assert.True(t, trig.ShouldCompact(185000, 200000))
}

func TestTokenBasedTriggerDoesNotFireWithoutEnoughPrunable(t *testing.T) {
	trig := NewDefaultTokenBasedTrigger()
	trig.ProtectRecentTokens = 190000
	trig.MinimumPruneTokens = 50000
	assert.False(t, trig.ShouldCompact(195000, 200000))
}

func TestTokenBasedTriggerThresholdPercentageIsCompatibilityConstant(t *testing.T) {
	trig := NewDefaultTokenBasedTrigger()
	assert.Equal(t, trig.ThresholdPercentage(), DefaultThresholdPercentage)
}

func TestNewTokenBasedTriggerRejectsNegative(t *testing.T) {
	_, err := NewTokenBasedTrigger(-1, 0)
	assert.Error(t, err)
	_, err = NewTokenBasedTrigger(0, -1)
	assert.Error(t, err)
}
