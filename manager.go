package contextcore

import (
	"context"
	"math"
	"time"

	"github.com/deepnoodle-ai/contextcore/chatmsg"
	"github.com/deepnoodle-ai/contextcore/tokencount"
)

// compactionTargetFraction is the fraction of the context window a
// triggered compaction compresses down to.
const compactionTargetFraction = 0.70

// Usage reports a history's current token footprint against its model's
// context window.
type Usage struct {
	CurrentTokens   int
	MaxTokens       int
	UsagePct        float64
	NeedsCompaction bool
	MessageCount    int
}

// CompactionResult is what a compaction pass produces: the rewritten
// history plus the token counts before and after.
type CompactionResult struct {
	History      chatmsg.History
	TokensBefore int
	TokensAfter  int
	WasCompacted bool
}

// CompactionRecord tracks one compaction event in a [ContextManager]'s
// in-memory history, for callers that want to surface "compacted N messages,
// saved M tokens, at T" without threading that bookkeeping through their own
// call sites.
type CompactionRecord struct {
	Timestamp         time.Time
	TokensBefore      int
	TokensAfter       int
	MessagesCompacted int
}

// maxCompactionHistory bounds the in-memory ring of [CompactionRecord]s a
// ContextManager retains; the oldest record is dropped once this is exceeded.
const maxCompactionHistory = 100

// HistoryCompactor is the shape spec §6 says every §4.6-4.8 compactor
// exposes to collaborators: compact(history, targetTokens) -> CompactionResult,
// a no-op if history already fits. ContextManager holds whichever variant
// the config selected behind this interface; *HeadTailCompactor,
// *TokenBasedCompactor, and *AnchoredCompactor all implement it directly.
type HistoryCompactor interface {
	CompactAsync(ctx context.Context, history chatmsg.History, targetTokens, protectRecentTokens int) CompactionResult
}

// ContextManager orchestrates the full pipeline in §2 order: tool-result
// compaction, observation masking, trigger-gated history compaction, goal
// reminder, scratchpad injection, and cache hinting. Tool retrieval is not
// part of this pipeline; callers run a [toolretriever] retriever separately.
type ContextManager struct {
	Counter   Counter
	Trigger   CompactionTrigger
	Compactor HistoryCompactor

	ToolResultCompactor *ToolResultCompactor
	ObservationMasker   *ObservationMasker
	GoalReminder        *GoalReminder
	CacheHinter         *CacheHinter

	ProtectRecentTokens int

	// ScratchpadBlock, when non-empty, is appended as a system message
	// during PrepareHistoryAsync. Callers populate it from their own
	// scratchpad.Scratchpad.ToContextBlock() call.
	ScratchpadBlock string

	compactionHistory []CompactionRecord
}

// ForModel builds a ContextManager for modelID using [DefaultCompactionConfig]
// and, optionally, a summarizer LLMClient (nil disables LLM summarization;
// every compactor falls back to truncation).
func ForModel(modelID string, summarizer LLMClient) (*ContextManager, error) {
	return ForModelWithConfig(modelID, DefaultCompactionConfig(), summarizer)
}

// ForModelWithConfig builds a ContextManager for modelID using an explicit
// CompactionConfig. The trigger/compactor pair is selected per config:
//   - UseAnchoredCompaction -> token-based trigger + anchored compactor
//   - else UseTokenBasedCompaction -> token-based trigger + token-based compactor
//   - else -> threshold trigger + head/tail compactor
func ForModelWithConfig(modelID string, cfg CompactionConfig, summarizer LLMClient) (*ContextManager, error) {
	counter, err := tokencount.New(modelID)
	if err != nil {
		return nil, err
	}

	mgr := &ContextManager{
		Counter:             counter,
		ProtectRecentTokens: cfg.ProtectRecentTokens,
		GoalReminder:        NewGoalReminder(0),
		CacheHinter:         NewCacheHinter(0),
	}

	switch {
	case cfg.UseAnchoredCompaction:
		c, err := NewAnchoredCompactor(counter, summarizer)
		if err != nil {
			return nil, err
		}
		mgr.Trigger = newTokenTriggerFromConfig(cfg)
		mgr.Compactor = c
	case cfg.UseTokenBasedCompaction:
		c, err := NewTokenBasedCompactor(counter, summarizer)
		if err != nil {
			return nil, err
		}
		if len(cfg.ProtectedToolOutputs) > 0 {
			c.ProtectedToolOutputs = cfg.ProtectedToolOutputs
		}
		mgr.Trigger = newTokenTriggerFromConfig(cfg)
		mgr.Compactor = c
	default:
		if summarizer == nil {
			summarizer = LLMClientFunc(func(ctx context.Context, prompt string) (string, error) {
				return "", errNoSummarizer
			})
		}
		c, err := NewHeadTailCompactor(counter, summarizer)
		if err != nil {
			return nil, err
		}
		trigger, err := NewThresholdTrigger(orDefault(cfg.ThresholdPercentage, DefaultThresholdPercentage))
		if err != nil {
			return nil, err
		}
		mgr.Trigger = trigger
		mgr.Compactor = c
	}

	if cfg.EnableToolResultCompaction {
		trc, err := NewToolResultCompactor(
			orDefaultInt(cfg.MaxResultChars, DefaultMaxResultChars),
			orDefaultInt(cfg.KeepHeadLines, DefaultKeepHeadLines),
			orDefaultInt(cfg.KeepTailLines, DefaultKeepTailLines),
		)
		if err != nil {
			return nil, err
		}
		mgr.ToolResultCompactor = trc
	}
	if cfg.EnableObservationMasking {
		om, err := NewObservationMasker(
			orDefaultInt(cfg.ProtectedTurns, DefaultProtectedTurns),
			orDefaultInt(cfg.MinimumMaskedLength, DefaultMinimumMaskedLength),
		)
		if err != nil {
			return nil, err
		}
		mgr.ObservationMasker = om
	}

	return mgr, nil
}

func newTokenTriggerFromConfig(cfg CompactionConfig) *TokenBasedTrigger {
	protect := cfg.ProtectRecentTokens
	if protect == 0 {
		protect = DefaultProtectRecentTokens
	}
	prune := cfg.MinimumPruneTokens
	if prune == 0 {
		prune = DefaultMinimumPruneTokens
	}
	return &TokenBasedTrigger{ProtectRecentTokens: protect, MinimumPruneTokens: prune}
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

func orDefaultInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

var errNoSummarizer = invalidArgf("no summarizer configured")

// GetUsage reports history's token footprint against the manager's model.
func (m *ContextManager) GetUsage(history chatmsg.History) Usage {
	current := m.Counter.CountMessages(history)
	max := m.Counter.MaxContextTokens()
	var pct float64
	if max > 0 {
		pct = float64(current) / float64(max)
	}
	return Usage{
		CurrentTokens:   current,
		MaxTokens:       max,
		UsagePct:        pct,
		NeedsCompaction: m.ShouldCompact(history),
		MessageCount:    len(history),
	}
}

// ShouldCompact reports whether the configured trigger fires for history.
func (m *ContextManager) ShouldCompact(history chatmsg.History) bool {
	return m.Trigger.ShouldCompact(m.Counter.CountMessages(history), m.Counter.MaxContextTokens())
}

// CompactIfNeededAsync compacts history to 70% of the model's context
// window if the trigger fires; otherwise it is a no-op.
func (m *ContextManager) CompactIfNeededAsync(ctx context.Context, history chatmsg.History) CompactionResult {
	before := m.Counter.CountMessages(history)
	if !m.ShouldCompact(history) {
		return CompactionResult{History: history, TokensBefore: before, TokensAfter: before}
	}
	target := int(math.Floor(float64(m.Counter.MaxContextTokens()) * compactionTargetFraction))
	return m.CompactAsync(ctx, history, target)
}

// CompactAsync forces compaction of history to targetTokens. A successful,
// history-changing compaction appends a [CompactionRecord], retrievable via
// [ContextManager.CompactionHistory].
func (m *ContextManager) CompactAsync(ctx context.Context, history chatmsg.History, targetTokens int) CompactionResult {
	beforeCount := len(history)
	result := m.Compactor.CompactAsync(ctx, history, targetTokens, m.ProtectRecentTokens)
	if result.WasCompacted {
		m.recordCompaction(CompactionRecord{
			Timestamp:         time.Now(),
			TokensBefore:      result.TokensBefore,
			TokensAfter:       result.TokensAfter,
			MessagesCompacted: beforeCount - len(result.History),
		})
	}
	return result
}

func (m *ContextManager) recordCompaction(r CompactionRecord) {
	m.compactionHistory = append(m.compactionHistory, r)
	if len(m.compactionHistory) > maxCompactionHistory {
		m.compactionHistory = m.compactionHistory[len(m.compactionHistory)-maxCompactionHistory:]
	}
}

// CompactionHistory returns a copy of every [CompactionRecord] retained so
// far, oldest first, capped at the most recent [maxCompactionHistory] events.
func (m *ContextManager) CompactionHistory() []CompactionRecord {
	out := make([]CompactionRecord, len(m.compactionHistory))
	copy(out, m.compactionHistory)
	return out
}

// SetGoal delegates to the goal reminder.
func (m *ContextManager) SetGoal(goal string) {
	m.GoalReminder.SetGoal(goal)
}

// SetGoalFromHistory delegates to the goal reminder.
func (m *ContextManager) SetGoalFromHistory(history chatmsg.History) {
	m.GoalReminder.SetGoalFromFirstUserMessage(history)
}

// PrepareHistoryAsync runs the full §2 pipeline over history: tool-result
// compaction, observation masking, trigger-gated history compaction, goal
// reminder, scratchpad injection, and cache hinting. Tool retrieval is a
// separate call (it needs the turn's candidate tool list, which this
// signature doesn't carry) — see [toolretriever].
func (m *ContextManager) PrepareHistoryAsync(ctx context.Context, history chatmsg.History) chatmsg.History {
	out := history

	if m.ToolResultCompactor != nil {
		out = m.ToolResultCompactor.Compact(out)
	}
	if m.ObservationMasker != nil {
		out = m.ObservationMasker.Mask(out)
	}

	out = m.CompactIfNeededAsync(ctx, out).History

	if m.GoalReminder != nil {
		out = m.GoalReminder.InjectIfNeeded(out)
	}

	if m.ScratchpadBlock != "" {
		out = append(append(chatmsg.History{}, out...), newSyntheticSystemMessage(m.ScratchpadBlock))
	}

	if m.CacheHinter != nil {
		out = m.CacheHinter.Apply(m.Counter, out)
	}

	return out
}
