package contextcore

import (
	"fmt"
	"strings"

	"github.com/deepnoodle-ai/contextcore/chatmsg"
)

// Defaults for [ObservationMasker].
const (
	DefaultProtectedTurns      = 3
	DefaultMinimumMaskedLength = 500
)

// ObservationMasker replaces old tool outputs with a short placeholder once
// they fall outside the most recent ProtectedTurns turns, freeing tokens
// without losing the fact that a call happened. Unlike [ToolResultCompactor],
// which trims in place regardless of age, the masker only acts on results
// the conversation has already moved past.
type ObservationMasker struct {
	// ProtectedTurns is the number of most recent user turns left
	// untouched, counting back from the end of history.
	ProtectedTurns int
	// MinimumMaskedLength is the shortest result (in characters) worth
	// masking; short results are left alone since masking them would cost
	// more tokens than it saves.
	MinimumMaskedLength int
}

// NewObservationMasker validates and builds an ObservationMasker.
func NewObservationMasker(protectedTurns, minimumMaskedLength int) (*ObservationMasker, error) {
	if protectedTurns < 0 {
		return nil, invalidArgf("protectedTurns must be >= 0, got %d", protectedTurns)
	}
	if minimumMaskedLength < 0 {
		return nil, invalidArgf("minimumMaskedLength must be >= 0, got %d", minimumMaskedLength)
	}
	return &ObservationMasker{ProtectedTurns: protectedTurns, MinimumMaskedLength: minimumMaskedLength}, nil
}

// NewDefaultObservationMasker builds an ObservationMasker with the package
// defaults.
func NewDefaultObservationMasker() *ObservationMasker {
	m, _ := NewObservationMasker(DefaultProtectedTurns, DefaultMinimumMaskedLength)
	return m
}

// Mask finds the protected start index by walking h from the end and
// counting user messages until ProtectedTurns are seen, then replaces
// string results in any tool message strictly before that boundary with a
// size placeholder naming the originating tool. Returns h unchanged (same
// reference) if fewer than ProtectedTurns user messages exist, or if
// nothing before the boundary qualified for masking.
func (m *ObservationMasker) Mask(h chatmsg.History) chatmsg.History {
	boundary := protectedStartIndex(h, m.ProtectedTurns)
	if boundary < 0 {
		return h
	}

	toolNames := callIDToToolName(h)

	var out chatmsg.History
	changed := false

	for i, msg := range h {
		if i >= boundary || msg.Role != chatmsg.Tool {
			out = append(out, msg)
			continue
		}
		newContent, msgChanged := m.maskContent(msg.Content, toolNames)
		if !msgChanged {
			out = append(out, msg)
			continue
		}
		changed = true
		out = append(out, &chatmsg.ChatMessage{Role: msg.Role, Content: newContent, Extra: msg.Extra})
	}

	if !changed {
		return h
	}
	return out
}

// protectedStartIndex walks h backward, counting user messages, and returns
// the index of the earliest user message once protectedTurns have been
// seen. protectedTurns == 0 protects nothing, so the boundary is the end of
// history. Returns -1 if fewer than protectedTurns user messages exist,
// meaning the whole history is protected.
func protectedStartIndex(h chatmsg.History, protectedTurns int) int {
	if protectedTurns == 0 {
		return len(h)
	}
	seen := 0
	for i := len(h) - 1; i >= 0; i-- {
		if h[i].Role == chatmsg.User {
			seen++
			if seen >= protectedTurns {
				return i
			}
		}
	}
	return -1
}

// callIDToToolName scans every assistant message for FunctionCall items,
// building a map from callId to the tool name that produced it.
func callIDToToolName(h chatmsg.History) map[string]string {
	out := make(map[string]string)
	for _, msg := range h {
		if msg.Role != chatmsg.Assistant {
			continue
		}
		for _, fc := range msg.FunctionCalls() {
			out[fc.CallID] = fc.Name
		}
	}
	return out
}

func (m *ObservationMasker) maskContent(content []chatmsg.Content, toolNames map[string]string) ([]chatmsg.Content, bool) {
	changed := false
	out := make([]chatmsg.Content, len(content))
	for i, item := range content {
		fr, ok := item.(*chatmsg.FunctionResultContent)
		if !ok {
			out[i] = item
			continue
		}
		text, isString := fr.Result.(string)
		if !isString || len(text) < m.MinimumMaskedLength || isMaskPlaceholder(text) {
			out[i] = item
			continue
		}
		changed = true
		out[i] = &chatmsg.FunctionResultContent{
			CallID: fr.CallID,
			Result: maskPlaceholder(toolNames[fr.CallID], text),
		}
	}
	return out, changed
}

func maskPlaceholder(toolName, text string) string {
	if toolName == "" {
		toolName = "unknown"
	}
	lines := strings.Count(text, "\n") + 1
	return fmt.Sprintf("[Masked: %s, %s chars, ~%d lines]", toolName, formatThousands(len(text)), lines)
}

func isMaskPlaceholder(text string) bool {
	return strings.HasPrefix(text, "[Masked: ")
}
