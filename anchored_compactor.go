package contextcore

import (
	"context"
	"fmt"
	"strings"

	"github.com/deepnoodle-ai/contextcore/chatmsg"
	"github.com/deepnoodle-ai/contextcore/log"
	"github.com/deepnoodle-ai/contextcore/retry"
)

// anchoredSummaryPrompt asks the summarizer to preserve the facts anchors
// exist to protect, so the LLM pass and the rule-based extraction reinforce
// each other rather than compete.
const anchoredSummaryPrompt = `Summarize the following conversation excerpt. Preserve: the session goal, decisions made, failed approaches, file paths touched, error codes encountered, and any outstanding next steps. Be dense; omit commentary.

%s`

// minSummaryBudgetTokens is the floor on the token budget handed to the
// anchored summarizer prompt, regardless of how little room targetTokens
// leaves after the state block.
const minSummaryBudgetTokens = 100

// AnchoredCompactor is the drift-resistant history compactor: it carries a
// [ConversationAnchors] state block across rounds so that iterated
// summarization can lose prose but never the facts the state block tracks.
type AnchoredCompactor struct {
	Counter Counter
	Client  LLMClient
}

// NewAnchoredCompactor builds an AnchoredCompactor. counter must not be nil;
// client may be nil, in which case every round falls back to truncation.
func NewAnchoredCompactor(counter Counter, client LLMClient) (*AnchoredCompactor, error) {
	if counter == nil {
		return nil, invalidArgf("counter must not be nil")
	}
	return &AnchoredCompactor{Counter: counter, Client: client}, nil
}

// CompactAsync implements the [HistoryCompactor] shape shared by all three
// §4.6-4.8 compactors: a thin wrapper over Compact that also reports the
// token counts before and after.
func (c *AnchoredCompactor) CompactAsync(ctx context.Context, history chatmsg.History, targetTokens, protectRecentTokens int) CompactionResult {
	before := c.Counter.CountMessages(history)
	out := c.Compact(ctx, history, targetTokens, protectRecentTokens)
	after := c.Counter.CountMessages(out)
	return CompactionResult{History: out, TokensBefore: before, TokensAfter: after, WasCompacted: after != before}
}

// Compact runs one anchored-compaction round over h, targeting targetTokens
// total and protecting protectRecentTokens worth of the most recent
// conversation. Returns h unchanged if it already fits.
func (c *AnchoredCompactor) Compact(ctx context.Context, h chatmsg.History, targetTokens, protectRecentTokens int) chatmsg.History {
	if c.Counter.CountMessages(h) <= targetTokens {
		return h
	}

	split := SplitHistory(c.Counter, h, protectRecentTokens)

	existing, systemWithoutState := extractExistingStateBlock(split.System)
	newAnchors := ExtractAnchors(filterStateBlockMessages(split.Middle))

	merged := existing
	merged.Merge(newAnchors)

	stateBlockText := FormatStateBlock(&merged)
	var stateMsg *chatmsg.ChatMessage
	if stateBlockText != "" {
		stateMsg = newSyntheticSystemMessage(stateBlockText)
	}

	prunableMiddle := filterStateBlockMessages(split.Middle)

	var summaryRegion chatmsg.History
	if c.Client != nil {
		stateBlockTokens := 0
		if stateMsg != nil {
			stateBlockTokens = c.Counter.CountMessage(stateMsg)
		}
		budget := (targetTokens - stateBlockTokens) / 4
		if budget < minSummaryBudgetTokens {
			budget = minSummaryBudgetTokens
		}
		summary, err := c.summarize(ctx, prunableMiddle, budget)
		if err == nil {
			summaryRegion = chatmsg.History{newSyntheticSystemMessage("[Previous conversation summary]: " + summary)}
		} else {
			log.Ctx(ctx).Warn("anchored compaction falling back to truncation",
				"error", &SummarizationError{Stage: "anchored", Cause: err})
		}
	}
	if summaryRegion == nil {
		summaryRegion = c.truncateFallback(prunableMiddle)
	}

	var newSystem chatmsg.History
	newSystem = append(newSystem, systemWithoutState...)
	if stateMsg != nil {
		newSystem = append(newSystem, stateMsg)
	}
	newSystem = append(newSystem, summaryRegion...)

	return joinSplit(newSystem, nil, split.Tail)
}

func (c *AnchoredCompactor) summarize(ctx context.Context, middle chatmsg.History, budgetTokens int) (string, error) {
	if len(middle) == 0 {
		return "", fmt.Errorf("nothing to summarize")
	}
	prompt := fmt.Sprintf(anchoredSummaryPrompt, fmt.Sprintf("Keep the summary under about %d tokens.\n\n%s",
		budgetTokens, renderTranscript(filterDanglingToolCalls(middle))))
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
	// The budget is stated in the prompt only; the response is not truncated.
	return text, nil
}

func (c *AnchoredCompactor) truncateFallback(middle chatmsg.History) chatmsg.History {
	keep := DefaultFallbackKeepMessages
	if len(middle) <= keep {
		return middle
	}
	omitted := len(middle) - keep
	marker := newSyntheticSystemMessage(fmt.Sprintf("[%d earlier messages truncated]", omitted))
	out := chatmsg.History{marker}
	return append(out, middle[len(middle)-keep:]...)
}

// extractExistingStateBlock scans system for a rendered state block,
// returning its parsed anchors (zero value if none found) and the system
// slice with any state-block messages removed.
func extractExistingStateBlock(system chatmsg.History) (ConversationAnchors, chatmsg.History) {
	var anchors ConversationAnchors
	var rest chatmsg.History
	found := false
	for _, m := range system {
		text := m.Text()
		if !found && ContainsStateBlock(text) {
			anchors = *ParseStateBlock(text)
			found = true
			continue
		}
		rest = append(rest, m)
	}
	return anchors, rest
}

// filterStateBlockMessages drops any message whose text renders as a state
// block, so a stray one in the prunable middle isn't re-extracted as
// ordinary conversation text.
func filterStateBlockMessages(h chatmsg.History) chatmsg.History {
	var out chatmsg.History
	for _, m := range h {
		if ContainsStateBlock(m.Text()) {
			continue
		}
		out = append(out, m)
	}
	return out
}
