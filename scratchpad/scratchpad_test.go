package scratchpad

import (
	"strings"
	"testing"

	"github.com/deepnoodle-ai/wonton/assert"
)

func TestScratchpadEmptyHasNoContent(t *testing.T) {
	s := New(0, 0)
	assert.False(t, s.HasContent())
	assert.Equal(t, s.ToContextBlock(), "")
}

func TestScratchpadAddObservationRejectsBlank(t *testing.T) {
	s := New(0, 0)
	s.AddObservation("   ")
	assert.False(t, s.HasContent())
}

func TestScratchpadObservationsEvictOldest(t *testing.T) {
	s := New(3, 0)
	s.AddObservation("one")
	s.AddObservation("two")
	s.AddObservation("three")
	s.AddObservation("four")
	block := s.ToContextBlock()
	assert.False(t, strings.Contains(block, "one"))
	assert.True(t, strings.Contains(block, "four"))
}

func TestScratchpadSetFactOverwritesCaseInsensitive(t *testing.T) {
	s := New(0, 0)
	s.SetFact("Path", "a.go")
	s.SetFact("path", "b.go")
	block := s.ToContextBlock()
	assert.True(t, strings.Contains(block, "Path: b.go"))
	assert.False(t, strings.Contains(block, "path: b.go"))
}

func TestScratchpadSetFactRejectsBlankKey(t *testing.T) {
	s := New(0, 0)
	s.SetFact("  ", "value")
	assert.False(t, s.HasContent())
}

func TestScratchpadContextBlockOrdersFactsByKey(t *testing.T) {
	s := New(0, 0)
	s.SetFact("zeta", "1")
	s.SetFact("alpha", "2")
	block := s.ToContextBlock()
	assert.True(t, strings.Index(block, "alpha") < strings.Index(block, "zeta"))
}

func TestScratchpadContextBlockIncludesPlanAndStep(t *testing.T) {
	s := New(0, 0)
	s.SetPlan("refactor the parser")
	s.AdvanceStep()
	s.AdvanceStep()
	block := s.ToContextBlock()
	assert.True(t, strings.Contains(block, "Plan (step 2): refactor the parser"))
}

func TestScratchpadTruncatesOverMaxChars(t *testing.T) {
	s := New(0, 50)
	s.SetPlan(strings.Repeat("x", 200))
	block := s.ToContextBlock()
	assert.True(t, strings.HasSuffix(block, "[SCRATCHPAD TRUNCATED]"))
	assert.True(t, len(block) <= 50+len("\n[SCRATCHPAD TRUNCATED]"))
}

func TestScratchpadClearResetsEverything(t *testing.T) {
	s := New(0, 0)
	s.SetPlan("plan")
	s.AdvanceStep()
	s.SetFact("k", "v")
	s.AddObservation("obs")
	s.Clear()
	assert.False(t, s.HasContent())
	assert.Equal(t, s.ToContextBlock(), "")
}
