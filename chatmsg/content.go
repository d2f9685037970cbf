// Package chatmsg defines the message and content types passed to and from
// the LLM during a turn: [ChatMessage], its [Content] block variants, and
// [History], the ordered sequence the context pipeline transforms.
package chatmsg

import (
	"encoding/json"
	"fmt"
)

// ContentType discriminates the concrete type of a [Content] block.
type ContentType string

const (
	ContentTypeText           ContentType = "text"
	ContentTypeFunctionCall   ContentType = "function_call"
	ContentTypeFunctionResult ContentType = "function_result"
	ContentTypeOther          ContentType = "other"
)

// Content is a single block within a [ChatMessage]. A message may hold
// several content blocks of varying types.
type Content interface {
	Type() ContentType
}

//// TextContent ///////////////////////////////////////////////////////////

// TextContent is plain text content.
type TextContent struct {
	Text string `json:"text"`
}

func (c *TextContent) Type() ContentType { return ContentTypeText }

func (c *TextContent) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type ContentType `json:"type"`
		Text string      `json:"text"`
	}{Type: c.Type(), Text: c.Text})
}

//// FunctionCallContent ///////////////////////////////////////////////////

// FunctionCallContent is a tool invocation requested by the assistant.
type FunctionCallContent struct {
	CallID    string         `json:"call_id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

func (c *FunctionCallContent) Type() ContentType { return ContentTypeFunctionCall }

func (c *FunctionCallContent) MarshalJSON() ([]byte, error) {
	type alias FunctionCallContent
	return json.Marshal(struct {
		Type ContentType `json:"type"`
		*alias
	}{Type: c.Type(), alias: (*alias)(c)})
}

//// FunctionResultContent /////////////////////////////////////////////////

// FunctionResultContent carries the output of a prior [FunctionCallContent].
// Result is opaque: it may be a string, a structured value, or anything
// JSON-marshalable that the tool returned.
type FunctionResultContent struct {
	CallID string `json:"call_id"`
	Result any    `json:"result"`
}

func (c *FunctionResultContent) Type() ContentType { return ContentTypeFunctionResult }

func (c *FunctionResultContent) MarshalJSON() ([]byte, error) {
	type alias FunctionResultContent
	return json.Marshal(struct {
		Type ContentType `json:"type"`
		*alias
	}{Type: c.Type(), alias: (*alias)(c)})
}

//// OtherContent //////////////////////////////////////////////////////////

// OtherContent represents any non-text, non-function content block whose
// payload the pipeline does not interpret — an image reference, audio clip,
// or similar. Kind names the blob variant (e.g. "image"); only its
// approximate token cost is used by the token counter.
type OtherContent struct {
	Kind string `json:"kind"`
	Data any    `json:"data,omitempty"`
}

func (c *OtherContent) Type() ContentType { return ContentTypeOther }

func (c *OtherContent) MarshalJSON() ([]byte, error) {
	type alias OtherContent
	return json.Marshal(struct {
		Type ContentType `json:"type"`
		*alias
	}{Type: c.Type(), alias: (*alias)(c)})
}

//// Polymorphic decode ////////////////////////////////////////////////////

// UnmarshalContent decodes a single JSON content block into the concrete
// [Content] implementation indicated by its "type" field.
func UnmarshalContent(data []byte) (Content, error) {
	var disc struct {
		Type ContentType `json:"type"`
	}
	if err := json.Unmarshal(data, &disc); err != nil {
		return nil, fmt.Errorf("chatmsg: decode content discriminator: %w", err)
	}
	switch disc.Type {
	case ContentTypeText:
		var c TextContent
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
		return &c, nil
	case ContentTypeFunctionCall:
		var c FunctionCallContent
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
		return &c, nil
	case ContentTypeFunctionResult:
		var c FunctionResultContent
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
		return &c, nil
	case ContentTypeOther:
		var c OtherContent
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
		return &c, nil
	default:
		return nil, fmt.Errorf("chatmsg: unknown content type %q", disc.Type)
	}
}
