package contextcore

import (
	"context"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/deepnoodle-ai/contextcore/chatmsg"
	"github.com/deepnoodle-ai/contextcore/log"
	"github.com/deepnoodle-ai/contextcore/retry"
)

// DefaultProtectedToolOutputs lists the tool-name patterns whose assistant
// FunctionCall is always kept through token-based compaction, matched
// case-insensitively via [doublestar.Match] so a pattern like "read_*"
// protects a whole family of tool names, not just an exact one.
var DefaultProtectedToolOutputs = []string{"read_file", "grep", "glob"}

// TokenBasedCompactor compacts the prunable middle of a history by budget
// rather than by a single summarize-or-truncate step: "important" messages
// (every tool-role message, and every assistant call matching
// ProtectedToolOutputs) are isolated and always kept; the remaining
// "regular" messages are kept if they fit the budget that remains, and
// otherwise summarized, or on summarizer failure truncated to the most
// recent [DefaultFallbackKeepMessages]. The truncated result is not checked
// against the remaining budget.
type TokenBasedCompactor struct {
	Counter              Counter
	Client               LLMClient
	ProtectedToolOutputs []string
	MinimumPruneTokens   int
}

// NewTokenBasedCompactor builds a TokenBasedCompactor. counter must not be
// nil; client may be nil, in which case regular messages are always
// truncated rather than summarized.
func NewTokenBasedCompactor(counter Counter, client LLMClient) (*TokenBasedCompactor, error) {
	if counter == nil {
		return nil, invalidArgf("counter must not be nil")
	}
	return &TokenBasedCompactor{
		Counter:              counter,
		Client:               client,
		ProtectedToolOutputs: append([]string(nil), DefaultProtectedToolOutputs...),
		MinimumPruneTokens:   DefaultMinimumPruneTokens,
	}, nil
}

// CompactAsync implements the [HistoryCompactor] shape shared by all three
// §4.6-4.8 compactors: a no-op if history already fits under targetTokens,
// otherwise split history by protectRecentTokens and budget the middle
// against what the system region and tail already cost.
func (c *TokenBasedCompactor) CompactAsync(ctx context.Context, history chatmsg.History, targetTokens, protectRecentTokens int) CompactionResult {
	before := c.Counter.CountMessages(history)
	if before <= targetTokens {
		return CompactionResult{History: history, TokensBefore: before, TokensAfter: before}
	}
	split := SplitHistory(c.Counter, history, protectRecentTokens)
	systemAndTailTokens := c.Counter.CountMessages(split.System) + c.Counter.CountMessages(split.Tail)
	budget := targetTokens - systemAndTailTokens
	if budget < 0 {
		budget = 0
	}
	out := c.Compact(ctx, split, budget)
	after := c.Counter.CountMessages(out)
	return CompactionResult{History: out, TokensBefore: before, TokensAfter: after, WasCompacted: after != before}
}

// Compact operates on split.Middle. If the middle is under budget, or under
// MinimumPruneTokens, it is returned untouched. Otherwise important messages
// are isolated, the remaining regular messages are kept if they fit the
// remaining budget and otherwise summarized (or truncated to a fixed count
// of recent messages), and the pieces are reassembled as
// system ∥ (summary-or-marker + important) ∥ tail.
func (c *TokenBasedCompactor) Compact(ctx context.Context, split Split, budget int) chatmsg.History {
	middleTokens := c.Counter.CountMessages(split.Middle)
	if middleTokens <= budget || middleTokens < c.MinimumPruneTokens {
		return joinSplit(split.System, split.Middle, split.Tail)
	}

	important, regular := c.partition(split.Middle)

	regularBudget := budget - c.Counter.CountMessages(important)
	var compactedRegular chatmsg.History
	if regularBudget > 0 && c.Counter.CountMessages(regular) <= regularBudget {
		compactedRegular = regular
	} else if len(regular) > 0 {
		compactedRegular = c.summarizeOrTruncate(ctx, regular)
	}

	newMiddle := make(chatmsg.History, 0, len(compactedRegular)+len(important))
	newMiddle = append(newMiddle, compactedRegular...)
	newMiddle = append(newMiddle, important...)

	return joinSplit(split.System, newMiddle, split.Tail)
}

// partition splits middle into "important" messages (kept unconditionally)
// and "regular" messages (eligible for summarization/truncation).
func (c *TokenBasedCompactor) partition(middle chatmsg.History) (important, regular chatmsg.History) {
	for _, m := range middle {
		if c.isImportant(m) {
			important = append(important, m)
		} else {
			regular = append(regular, m)
		}
	}
	return important, regular
}

func (c *TokenBasedCompactor) isImportant(m *chatmsg.ChatMessage) bool {
	if m.Role == chatmsg.Tool {
		return true
	}
	if m.Role != chatmsg.Assistant {
		return false
	}
	for _, fc := range m.FunctionCalls() {
		if c.matchesProtected(fc.Name) {
			return true
		}
	}
	return false
}

func (c *TokenBasedCompactor) matchesProtected(name string) bool {
	lower := strings.ToLower(name)
	for _, pattern := range c.ProtectedToolOutputs {
		if ok, _ := doublestar.Match(strings.ToLower(pattern), lower); ok {
			return true
		}
	}
	return false
}

func (c *TokenBasedCompactor) summarizeOrTruncate(ctx context.Context, regular chatmsg.History) chatmsg.History {
	if c.Client != nil {
		prompt := fmt.Sprintf(headTailSummaryPrompt, renderTranscript(filterDanglingToolCalls(regular)))
		var text string
		err := retry.WithRetry(ctx, func() error {
			var err error
			text, err = c.Client.GetResponse(ctx, prompt)
			return err
		})
		if err == nil && strings.TrimSpace(text) != "" {
			return chatmsg.History{newSyntheticSystemMessage(fmt.Sprintf("[Previous conversation summary]: %s", text))}
		}
		if err != nil {
			log.Ctx(ctx).Warn("token-based compaction falling back to truncation",
				"error", &SummarizationError{Stage: "tokenbased", Cause: err})
		}
	}
	return c.truncateFromBeginning(regular)
}

func (c *TokenBasedCompactor) truncateFromBeginning(regular chatmsg.History) chatmsg.History {
	keep := DefaultFallbackKeepMessages
	if len(regular) <= keep {
		return regular
	}
	omitted := len(regular) - keep
	marker := newSyntheticSystemMessage(fmt.Sprintf("[%d earlier messages omitted]", omitted))
	out := chatmsg.History{marker}
	return append(out, regular[len(regular)-keep:]...)
}
