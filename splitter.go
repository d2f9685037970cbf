package contextcore

import "github.com/deepnoodle-ai/contextcore/chatmsg"

// Split is the result of separating a history into its system region,
// prunable middle, and protected tail (spec §4.3). The splitter never
// modifies messages; every field references the original message pointers.
type Split struct {
	System chatmsg.History
	Middle chatmsg.History
	Tail   chatmsg.History
}

// SplitHistory separates h into system messages (preserved order, any
// position), a protected tail of the most recent conversation messages
// bounded by protectRecentTokens, and the prunable middle that precedes it.
func SplitHistory(counter Counter, h chatmsg.History, protectRecentTokens int) Split {
	var system, conversation chatmsg.History
	for _, m := range h {
		if m.Role == chatmsg.System {
			system = append(system, m)
		} else {
			conversation = append(conversation, m)
		}
	}

	tailStart := len(conversation)
	tailTokens := 0
	for i := len(conversation) - 1; i >= 0; i-- {
		cost := counter.CountMessage(conversation[i])
		if tailTokens+cost > protectRecentTokens {
			break
		}
		tailTokens += cost
		tailStart = i
	}

	return Split{
		System: system,
		Middle: conversation[:tailStart],
		Tail:   conversation[tailStart:],
	}
}

// Counter is the subset of [tokencount.Counter] the pipeline depends on.
// Declared locally so this package doesn't need to import tokencount's
// concrete type in every signature — any counter satisfying this interface
// (including *tokencount.DefaultCounter) works.
type Counter interface {
	CountText(s string) int
	CountMessage(m *chatmsg.ChatMessage) int
	CountMessages(h chatmsg.History) int
	MaxContextTokens() int
}
