package contextcore

import "fmt"

// invalidArgf builds a plain error for argument-validation failures. The
// core never needs a typed hierarchy for these: callers are expected to
// surface them immediately, not branch on their shape (spec: "Invalid
// argument" errors are surfaced immediately, never swallowed).
func invalidArgf(format string, args ...any) error {
	return fmt.Errorf("contextcore: invalid argument: "+format, args...)
}

// SummarizationError wraps a failed LLM summarization call. Compactors
// never return it to their caller — per spec, summarization failure is
// swallowed and the compactor falls back to truncation — but it is exposed
// so a caller that wants visibility into why a round fell back can inspect
// the error logged via [log.Logger] at Warn level.
type SummarizationError struct {
	// Stage names the compactor variant that attempted summarization.
	Stage string
	Cause error
}

func (e *SummarizationError) Error() string {
	return fmt.Sprintf("contextcore: %s summarization failed: %v", e.Stage, e.Cause)
}

func (e *SummarizationError) Unwrap() error {
	return e.Cause
}
