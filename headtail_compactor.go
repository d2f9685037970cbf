package contextcore

import (
	"context"
	"fmt"
	"strings"

	"github.com/deepnoodle-ai/contextcore/chatmsg"
	"github.com/deepnoodle-ai/contextcore/log"
	"github.com/deepnoodle-ai/contextcore/retry"
)

// headTailSummaryPrompt is the prompt template used to ask the LLM to
// summarize a prunable span of conversation. %s is replaced with a rendered
// transcript of the messages being summarized.
const headTailSummaryPrompt = `Summarize the following conversation excerpt in a few dense paragraphs. Preserve concrete facts: file paths, identifiers, decisions made, and outstanding work. Do not include commentary about the summarization itself.

%s`

// HeadTailCompactor replaces the prunable middle of a history with a single
// LLM-generated summary message, keeping the system region and the protected
// tail untouched. If summarization fails, it falls back to truncating the
// middle from the beginning, keeping only the last FallbackKeepMessages.
type HeadTailCompactor struct {
	Counter              Counter
	Client               LLMClient
	FallbackKeepMessages int
}

// DefaultFallbackKeepMessages is how many of the most recent middle messages
// survive a truncation fallback.
const DefaultFallbackKeepMessages = 10

// NewHeadTailCompactor builds a HeadTailCompactor. counter must not be nil;
// client must not be nil.
func NewHeadTailCompactor(counter Counter, client LLMClient) (*HeadTailCompactor, error) {
	if counter == nil {
		return nil, invalidArgf("counter must not be nil")
	}
	if client == nil {
		return nil, invalidArgf("client must not be nil")
	}
	return &HeadTailCompactor{Counter: counter, Client: client, FallbackKeepMessages: DefaultFallbackKeepMessages}, nil
}

// CompactAsync implements the [HistoryCompactor] shape shared by all three
// §4.6-4.8 compactors: a no-op if history already fits under targetTokens,
// otherwise split history by protectRecentTokens and summarize the middle.
func (c *HeadTailCompactor) CompactAsync(ctx context.Context, history chatmsg.History, targetTokens, protectRecentTokens int) CompactionResult {
	before := c.Counter.CountMessages(history)
	if before <= targetTokens {
		return CompactionResult{History: history, TokensBefore: before, TokensAfter: before}
	}
	split := SplitHistory(c.Counter, history, protectRecentTokens)
	out := c.Compact(ctx, split)
	after := c.Counter.CountMessages(out)
	return CompactionResult{History: out, TokensBefore: before, TokensAfter: after, WasCompacted: after != before}
}

// Compact summarizes split.Middle via the LLM and returns a new history of
// split.System + [summary message] + split.Tail. If split.Middle is empty,
// the split is reassembled unchanged.
func (c *HeadTailCompactor) Compact(ctx context.Context, split Split) chatmsg.History {
	if len(split.Middle) == 0 {
		return joinSplit(split.System, nil, split.Tail)
	}

	summary, err := c.summarize(ctx, split.Middle)
	if err != nil {
		log.Ctx(ctx).Warn("head/tail compaction falling back to truncation",
			"error", &SummarizationError{Stage: "headtail", Cause: err})
		return joinSplit(split.System, c.truncateFallback(split.Middle), split.Tail)
	}

	summaryMsg := newSyntheticSystemMessage(fmt.Sprintf("[Earlier conversation summary]\n%s", summary))
	return joinSplit(split.System, chatmsg.History{summaryMsg}, split.Tail)
}

func (c *HeadTailCompactor) summarize(ctx context.Context, middle chatmsg.History) (string, error) {
	prompt := fmt.Sprintf(headTailSummaryPrompt, renderTranscript(filterDanglingToolCalls(middle)))
	var text string
	err := retry.WithRetry(ctx, func() error {
		var err error
		text, err = c.Client.GetResponse(ctx, prompt)
		return err
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("empty summary returned")
	}
	return text, nil
}

func (c *HeadTailCompactor) truncateFallback(middle chatmsg.History) chatmsg.History {
	keep := c.FallbackKeepMessages
	if keep <= 0 {
		keep = DefaultFallbackKeepMessages
	}
	if len(middle) <= keep {
		return middle
	}
	omitted := len(middle) - keep
	marker := newSyntheticSystemMessage(fmt.Sprintf("[%d earlier messages truncated]", omitted))
	out := chatmsg.History{marker}
	return append(out, middle[len(middle)-keep:]...)
}

// renderTranscript flattens h into a plain-text transcript suitable for
// inclusion in a summarization prompt.
func renderTranscript(h chatmsg.History) string {
	var b strings.Builder
	for _, m := range h {
		text := m.Text()
		if text == "" {
			for _, fc := range m.FunctionCalls() {
				fmt.Fprintf(&b, "%s: called %s\n", m.Role, fc.Name)
			}
			for _, fr := range m.FunctionResults() {
				fmt.Fprintf(&b, "%s: result for %s\n", m.Role, fr.CallID)
			}
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", m.Role, text)
	}
	return b.String()
}

// joinSplit reassembles a compacted history from its three regions, in
// system-first, then-middle, then-tail order.
func joinSplit(system, middle, tail chatmsg.History) chatmsg.History {
	out := make(chatmsg.History, 0, len(system)+len(middle)+len(tail))
	out = append(out, system...)
	out = append(out, middle...)
	out = append(out, tail...)
	return out
}
