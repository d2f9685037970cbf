package contextcore

import (
	"sort"

	"github.com/deepnoodle-ai/contextcore/chatmsg"
	"github.com/deepnoodle-ai/contextcore/llm"
)

// cacheControlKey is the Extra key annotated with a cache-control hint.
const cacheControlKey = "cache_control"

// EphemeralCacheControl is the hint value applied to qualifying messages.
var EphemeralCacheControl = map[string]string{"type": llm.CacheControlTypeEphemeral.String()}

// CacheHinter annotates messages worth prompt-caching with a cache-control
// hint, without altering their content.
type CacheHinter struct {
	Enabled               bool
	MinSystemPromptTokens int
	CacheBreakpoints      map[int]bool
}

// NewCacheHinter builds an enabled CacheHinter with the given threshold.
func NewCacheHinter(minSystemPromptTokens int) *CacheHinter {
	return &CacheHinter{
		Enabled:               true,
		MinSystemPromptTokens: minSystemPromptTokens,
		CacheBreakpoints:      map[int]bool{},
	}
}

// Apply returns a fresh history where every system message with at least
// MinSystemPromptTokens, and every message at an index in CacheBreakpoints,
// carries an ephemeral cache-control hint in its Extra map. h itself is
// never mutated. Returns h unchanged if disabled.
func (c *CacheHinter) Apply(counter Counter, h chatmsg.History) chatmsg.History {
	if !c.Enabled {
		return h
	}
	out := make(chatmsg.History, len(h))
	for i, m := range h {
		qualifies := c.CacheBreakpoints[i]
		if m.Role == chatmsg.System && counter.CountMessage(m) >= c.MinSystemPromptTokens {
			qualifies = true
		}
		if !qualifies {
			out[i] = m
			continue
		}
		out[i] = withCacheControl(m)
	}
	return out
}

func withCacheControl(m *chatmsg.ChatMessage) *chatmsg.ChatMessage {
	extra := make(map[string]any, len(m.Extra)+1)
	for k, v := range m.Extra {
		extra[k] = v
	}
	extra[cacheControlKey] = EphemeralCacheControl
	return &chatmsg.ChatMessage{Role: m.Role, Content: m.Content, Extra: extra}
}

// CalculateOptimalBreakpoints returns the indices of system messages
// meeting MinSystemPromptTokens, plus the index immediately before every
// 10th user message in history order, sorted and deduplicated.
func (c *CacheHinter) CalculateOptimalBreakpoints(counter Counter, h chatmsg.History) []int {
	set := map[int]bool{}
	userCount := 0
	for i, m := range h {
		if m.Role == chatmsg.System && counter.CountMessage(m) >= c.MinSystemPromptTokens {
			set[i] = true
		}
		if m.Role == chatmsg.User {
			userCount++
			if userCount%10 == 0 && i > 0 {
				set[i-1] = true
			}
		}
	}
	out := make([]int, 0, len(set))
	for idx := range set {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

// CacheSavingsEstimate is the result of [CacheHinter.EstimateSavings].
type CacheSavingsEstimate struct {
	CacheableTokens int
	TotalTokens     int
	SavingsPct      float64
}

// cacheNetSavingsFactor is the protocol-defined net savings of reading a
// cached prefix versus a fresh write: writes cost 25% extra, reads cost
// 10% of the base price, netting a 90% saving on cacheable tokens.
const cacheNetSavingsFactor = 0.90

// EstimateSavings sums the tokens of every system message meeting
// MinSystemPromptTokens and projects the savings from caching them.
func (c *CacheHinter) EstimateSavings(counter Counter, h chatmsg.History) CacheSavingsEstimate {
	total := counter.CountMessages(h)
	cacheable := 0
	for _, m := range h {
		if m.Role == chatmsg.System && counter.CountMessage(m) >= c.MinSystemPromptTokens {
			cacheable += counter.CountMessage(m)
		}
	}
	var pct float64
	if total > 0 {
		pct = float64(cacheable) / float64(total) * cacheNetSavingsFactor
	}
	return CacheSavingsEstimate{CacheableTokens: cacheable, TotalTokens: total, SavingsPct: pct}
}
