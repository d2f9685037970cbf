package contextcore

import "github.com/deepnoodle-ai/contextcore/chatmsg"

// filterDanglingToolCalls drops assistant FunctionCall content that has no
// matching tool FunctionResult yet recorded later in h, the same defensive
// step taken before handing a transcript to a summarizer: a call still
// awaiting its result reads as an unresolved non-sequitur to the model. Only
// the summarization input is affected; the compactor's returned history is
// built separately and never passes through this filter.
//
// If the trailing message is assistant-only FunctionCall content with no
// surviving result anywhere in h, the whole message is dropped. If it mixes
// FunctionCall content with other content (text, or calls with results), only
// the unresolved FunctionCall blocks are stripped from the copy.
func filterDanglingToolCalls(h chatmsg.History) chatmsg.History {
	if len(h) == 0 {
		return h
	}

	resolved := map[string]bool{}
	for _, m := range h {
		for _, fr := range m.FunctionResults() {
			resolved[fr.CallID] = true
		}
	}

	last := h[len(h)-1]
	if last.Role != chatmsg.Assistant {
		return h
	}

	var danglingCount, keptCount int
	for _, c := range last.Content {
		if fc, ok := c.(*chatmsg.FunctionCallContent); ok && !resolved[fc.CallID] {
			danglingCount++
			continue
		}
		keptCount++
	}
	if danglingCount == 0 {
		return h
	}
	if keptCount == 0 {
		return h[:len(h)-1]
	}

	kept := make([]chatmsg.Content, 0, keptCount)
	for _, c := range last.Content {
		if fc, ok := c.(*chatmsg.FunctionCallContent); ok && !resolved[fc.CallID] {
			continue
		}
		kept = append(kept, c)
	}
	out := make(chatmsg.History, len(h))
	copy(out, h)
	out[len(out)-1] = &chatmsg.ChatMessage{Role: last.Role, Content: kept, Extra: last.Extra}
	return out
}
