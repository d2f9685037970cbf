package contextcore

import (
	"fmt"
	"strings"

	"github.com/deepnoodle-ai/contextcore/chatmsg"
)

// Defaults for [ToolResultCompactor].
const (
	DefaultMaxResultChars = 30000
	DefaultKeepHeadLines  = 50
	DefaultKeepTailLines  = 20
)

// ToolResultCompactor truncates individual oversize tool results to a
// head+tail window, independent of history-level compaction. It runs every
// turn, cheaply, before the trigger is even consulted.
type ToolResultCompactor struct {
	MaxResultChars int
	KeepHeadLines  int
	KeepTailLines  int
}

// NewToolResultCompactor validates and builds a ToolResultCompactor.
// maxResultChars must be > 0; the line counts must be >= 0.
func NewToolResultCompactor(maxResultChars, keepHeadLines, keepTailLines int) (*ToolResultCompactor, error) {
	if maxResultChars <= 0 {
		return nil, invalidArgf("maxResultChars must be > 0, got %d", maxResultChars)
	}
	if keepHeadLines < 0 || keepTailLines < 0 {
		return nil, invalidArgf("keepHeadLines and keepTailLines must be >= 0")
	}
	return &ToolResultCompactor{
		MaxResultChars: maxResultChars,
		KeepHeadLines:  keepHeadLines,
		KeepTailLines:  keepTailLines,
	}, nil
}

// NewDefaultToolResultCompactor builds a ToolResultCompactor with the
// package defaults.
func NewDefaultToolResultCompactor() *ToolResultCompactor {
	c, _ := NewToolResultCompactor(DefaultMaxResultChars, DefaultKeepHeadLines, DefaultKeepTailLines)
	return c
}

// Compact rewrites oversize FunctionResult content across h, preserving
// call ids. Messages with nothing to rewrite are passed through by
// reference; if nothing in h changed, Compact returns h itself.
func (c *ToolResultCompactor) Compact(h chatmsg.History) chatmsg.History {
	var out chatmsg.History
	changed := false

	for _, m := range h {
		if m.Role != chatmsg.Tool {
			out = append(out, m)
			continue
		}
		newContent, msgChanged := c.rewriteContent(m.Content)
		if !msgChanged {
			out = append(out, m)
			continue
		}
		changed = true
		out = append(out, &chatmsg.ChatMessage{Role: m.Role, Content: newContent, Extra: m.Extra})
	}

	if !changed {
		return h
	}
	return out
}

func (c *ToolResultCompactor) rewriteContent(content []chatmsg.Content) ([]chatmsg.Content, bool) {
	changed := false
	out := make([]chatmsg.Content, len(content))
	for i, item := range content {
		fr, ok := item.(*chatmsg.FunctionResultContent)
		if !ok {
			out[i] = item
			continue
		}
		text, isString := fr.Result.(string)
		if !isString || len(text) <= c.MaxResultChars {
			out[i] = item
			continue
		}
		changed = true
		out[i] = &chatmsg.FunctionResultContent{
			CallID: fr.CallID,
			Result: c.truncate(text),
		}
	}
	return out, changed
}

func (c *ToolResultCompactor) truncate(text string) string {
	lines := strings.Split(text, "\n")
	if len(lines) >= c.KeepHeadLines+c.KeepTailLines+1 {
		head := lines[:c.KeepHeadLines]
		tail := lines[len(lines)-c.KeepTailLines:]
		omitted := len(lines) - c.KeepHeadLines - c.KeepTailLines
		marker := fmt.Sprintf("[%d lines omitted; %s chars total]", omitted, formatThousands(len(text)))
		return strings.Join(head, "\n") + "\n" + marker + "\n" + strings.Join(tail, "\n")
	}
	marker := fmt.Sprintf("[truncated; %s chars total]", formatThousands(len(text)))
	return text[:c.MaxResultChars] + marker
}

// formatThousands renders n with comma thousands separators, e.g. 12345 ->
// "12,345", matching the marker format in spec §4.4/§8 ("L,nnn chars").
func formatThousands(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(s[:lead])
	for i := lead; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
