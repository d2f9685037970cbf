package chatmsg

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Role indicates who a [ChatMessage] is attributed to.
type Role string

const (
	System    Role = "system"
	User      Role = "user"
	Assistant Role = "assistant"
	Tool      Role = "tool"
)

func (r Role) String() string { return string(r) }

// ChatMessage is a single turn of content exchanged with the LLM. Extra
// carries provider- or pipeline-specific annotations (e.g. a cache-control
// hint) that don't belong in the core schema.
type ChatMessage struct {
	Role    Role           `json:"role"`
	Content []Content      `json:"content"`
	Extra   map[string]any `json:"extra,omitempty"`
}

// History is an ordered, immutable-at-the-boundary sequence of messages.
// Pipeline stages return new Histories rather than mutating their input;
// a stage may return the input reference unchanged when it made no edits.
type History []*ChatMessage

// NewMessage builds a message with the given role and content blocks.
func NewMessage(role Role, content ...Content) *ChatMessage {
	return &ChatMessage{Role: role, Content: content}
}

// NewSystemTextMessage builds a system message with a single text block.
func NewSystemTextMessage(text string) *ChatMessage {
	return NewMessage(System, &TextContent{Text: text})
}

// NewUserTextMessage builds a user message with a single text block.
func NewUserTextMessage(text string) *ChatMessage {
	return NewMessage(User, &TextContent{Text: text})
}

// NewAssistantTextMessage builds an assistant message with a single text block.
func NewAssistantTextMessage(text string) *ChatMessage {
	return NewMessage(Assistant, &TextContent{Text: text})
}

// NewToolResultMessage builds a tool message carrying one or more function
// results. A single ChatMessage may report results for several parallel
// calls.
func NewToolResultMessage(results ...*FunctionResultContent) *ChatMessage {
	content := make([]Content, len(results))
	for i, r := range results {
		content[i] = r
	}
	return &ChatMessage{Role: Tool, Content: content}
}

// Text concatenates every text block in the message, separating multiple
// blocks with a blank line.
func (m *ChatMessage) Text() string {
	var sb strings.Builder
	n := 0
	for _, c := range m.Content {
		if t, ok := c.(*TextContent); ok {
			if n > 0 {
				sb.WriteString("\n\n")
			}
			sb.WriteString(t.Text)
			n++
		}
	}
	return sb.String()
}

// FunctionCalls returns every FunctionCallContent block in the message.
func (m *ChatMessage) FunctionCalls() []*FunctionCallContent {
	var out []*FunctionCallContent
	for _, c := range m.Content {
		if fc, ok := c.(*FunctionCallContent); ok {
			out = append(out, fc)
		}
	}
	return out
}

// FunctionResults returns every FunctionResultContent block in the message.
func (m *ChatMessage) FunctionResults() []*FunctionResultContent {
	var out []*FunctionResultContent
	for _, c := range m.Content {
		if fr, ok := c.(*FunctionResultContent); ok {
			out = append(out, fr)
		}
	}
	return out
}

// WithContent appends content blocks and returns the message for chaining.
func (m *ChatMessage) WithContent(content ...Content) *ChatMessage {
	m.Content = append(m.Content, content...)
	return m
}

// Copy returns a deep copy of the message, obtained via a JSON round trip so
// that every polymorphic content block is independently allocated. Falls
// back to a shallow content-slice copy if marshaling fails, which should
// never happen for well-formed content.
func (m *ChatMessage) Copy() *ChatMessage {
	data, err := json.Marshal(m)
	if err != nil {
		return m.shallowCopy()
	}
	var out ChatMessage
	if err := json.Unmarshal(data, &out); err != nil {
		return m.shallowCopy()
	}
	return &out
}

func (m *ChatMessage) shallowCopy() *ChatMessage {
	content := make([]Content, len(m.Content))
	copy(content, m.Content)
	var extra map[string]any
	if m.Extra != nil {
		extra = make(map[string]any, len(m.Extra))
		for k, v := range m.Extra {
			extra[k] = v
		}
	}
	return &ChatMessage{Role: m.Role, Content: content, Extra: extra}
}

// MarshalJSON handles the polymorphic Content slice.
func (m *ChatMessage) MarshalJSON() ([]byte, error) {
	raw := make([]json.RawMessage, len(m.Content))
	for i, c := range m.Content {
		b, err := json.Marshal(c)
		if err != nil {
			return nil, fmt.Errorf("chatmsg: marshal content[%d]: %w", i, err)
		}
		raw[i] = b
	}
	return json.Marshal(struct {
		Role    Role              `json:"role"`
		Content []json.RawMessage `json:"content"`
		Extra   map[string]any    `json:"extra,omitempty"`
	}{Role: m.Role, Content: raw, Extra: m.Extra})
}

// UnmarshalJSON handles the polymorphic Content slice.
func (m *ChatMessage) UnmarshalJSON(data []byte) error {
	var tmp struct {
		Role    Role              `json:"role"`
		Content []json.RawMessage `json:"content"`
		Extra   map[string]any    `json:"extra,omitempty"`
	}
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	m.Role = tmp.Role
	m.Extra = tmp.Extra
	m.Content = make([]Content, 0, len(tmp.Content))
	for _, raw := range tmp.Content {
		c, err := UnmarshalContent(raw)
		if err != nil {
			return fmt.Errorf("chatmsg: decode content: %w", err)
		}
		m.Content = append(m.Content, c)
	}
	return nil
}

// Clone returns a new History with the same message pointers; it is a
// shallow copy of the slice header so that appending to the clone never
// mutates the caller's slice.
func (h History) Clone() History {
	out := make(History, len(h))
	copy(out, h)
	return out
}
