// Package scratchpad holds an agent's in-process working memory: a plan, a
// bounded log of observations, and a set of key facts, rendered as a single
// text block that can be folded into a prompt.
package scratchpad

import (
	"fmt"
	"sort"
	"strings"
)

// Defaults for [Scratchpad].
const (
	DefaultMaxObservations = 50
	DefaultMaxChars        = 4000
)

const (
	blockOpen  = "[SCRATCHPAD]"
	blockClose = "[END SCRATCHPAD]"
	truncMark  = "\n[SCRATCHPAD TRUNCATED]"
)

// Scratchpad is per-agent-session working memory. It is never serialized
// across processes; callers that need persistence own that separately.
// Not safe for concurrent use — single-writer discipline is assumed.
type Scratchpad struct {
	maxObservations int
	maxChars        int

	currentPlan  string
	hasPlan      bool
	currentStep  int
	observations []string
	keyFacts     map[string]string
	factOrder    map[string]string // lowercase key -> original-case key, for stable display
}

// New builds a Scratchpad with the given bounds. Non-positive values fall
// back to the package defaults.
func New(maxObservations, maxChars int) *Scratchpad {
	if maxObservations <= 0 {
		maxObservations = DefaultMaxObservations
	}
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &Scratchpad{
		maxObservations: maxObservations,
		maxChars:        maxChars,
		keyFacts:        make(map[string]string),
		factOrder:       make(map[string]string),
	}
}

// SetPlan stores the current plan text and resets the step counter to 0.
func (s *Scratchpad) SetPlan(plan string) {
	s.currentPlan = plan
	s.hasPlan = true
	s.currentStep = 0
}

// AdvanceStep increments the current step counter.
func (s *Scratchpad) AdvanceStep() {
	s.currentStep++
}

// SetStep sets the current step counter directly. step must be >= 0.
func (s *Scratchpad) SetStep(step int) {
	if step < 0 {
		return
	}
	s.currentStep = step
}

// AddObservation appends s to the observation log. Null/whitespace-only
// strings are rejected silently. Once the log exceeds maxObservations, the
// oldest entry is evicted.
func (s *Scratchpad) AddObservation(observation string) {
	if strings.TrimSpace(observation) == "" {
		return
	}
	s.observations = append(s.observations, observation)
	if len(s.observations) > s.maxObservations {
		s.observations = s.observations[len(s.observations)-s.maxObservations:]
	}
}

// SetFact stores a key/value fact. Null/whitespace-only keys are rejected.
// Keys overwrite case-insensitively: SetFact("Path", ...) followed by
// SetFact("path", ...) leaves a single entry under the first key's casing.
func (s *Scratchpad) SetFact(key, value string) {
	if strings.TrimSpace(key) == "" {
		return
	}
	lower := strings.ToLower(key)
	if original, ok := s.factOrder[lower]; ok {
		s.keyFacts[original] = value
		return
	}
	s.factOrder[lower] = key
	s.keyFacts[key] = value
}

// HasContent reports whether any field is populated.
func (s *Scratchpad) HasContent() bool {
	return s.hasPlan || len(s.observations) > 0 || len(s.keyFacts) > 0
}

// Clear resets every field, including the step counter, to its zero value.
func (s *Scratchpad) Clear() {
	s.currentPlan = ""
	s.hasPlan = false
	s.currentStep = 0
	s.observations = nil
	s.keyFacts = make(map[string]string)
	s.factOrder = make(map[string]string)
}

// ToContextBlock renders the scratchpad as a text block: the plan (with
// current step), key facts ordered by key (case-insensitive), and
// observations in insertion order. If the result exceeds maxChars, it is
// truncated and a trailing marker is appended.
func (s *Scratchpad) ToContextBlock() string {
	if !s.HasContent() {
		return ""
	}

	var b strings.Builder
	b.WriteString(blockOpen + "\n")

	if s.hasPlan {
		fmt.Fprintf(&b, "Plan (step %d): %s\n", s.currentStep, s.currentPlan)
	}

	if len(s.keyFacts) > 0 {
		b.WriteString("Key facts:\n")
		keys := make([]string, 0, len(s.keyFacts))
		for k := range s.keyFacts {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			return strings.ToLower(keys[i]) < strings.ToLower(keys[j])
		})
		for _, k := range keys {
			fmt.Fprintf(&b, "  %s: %s\n", k, s.keyFacts[k])
		}
	}

	if len(s.observations) > 0 {
		b.WriteString("Observations:\n")
		for _, o := range s.observations {
			fmt.Fprintf(&b, "  - %s\n", o)
		}
	}

	b.WriteString(blockClose)
	result := b.String()

	if len(result) > s.maxChars {
		cut := s.maxChars
		if cut > len(result) {
			cut = len(result)
		}
		result = result[:cut] + truncMark
	}
	return result
}
