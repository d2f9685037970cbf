package tokencount

import (
	"strings"
	"testing"

	"github.com/deepnoodle-ai/contextcore/chatmsg"
	"github.com/deepnoodle-ai/wonton/assert"
)

func TestNew_EmptyModelID(t *testing.T) {
	_, err := New("")
	assert.NotNil(t, err)
}

func TestDefaultCounter_MaxContextTokens(t *testing.T) {
	tests := []struct {
		model    string
		expected int
	}{
		{"claude-opus-4", 200000},
		{"claude-opus-4-20250522", 200000}, // prefix match
		{"gpt-4o", 128000},
		{"gpt-4o-mini", 128000}, // prefix match
		{"totally-unknown-model", defaultMaxContextTokens},
	}
	for _, tt := range tests {
		c := MustNew(tt.model)
		assert.Equal(t, tt.expected, c.MaxContextTokens())
	}
}

func TestDefaultCounter_CountText_Monotonic(t *testing.T) {
	c := MustNew("claude-opus-4")
	s := "The quick brown fox jumps over the lazy dog. "
	prev := 0
	for i := 1; i <= len(s); i++ {
		n := c.CountText(s[:i])
		assert.True(t, n >= prev)
		prev = n
	}
}

func TestDefaultCounter_CountText_WhitespaceIsFree(t *testing.T) {
	c := MustNew("claude-opus-4")
	assert.Equal(t, c.CountText("hello"), c.CountText("hello   "))
	assert.Equal(t, 0, c.CountText(""))
	assert.Equal(t, 0, c.CountText("   \n\t  "))
}

func TestDefaultCounter_CountMessage(t *testing.T) {
	c := MustNew("claude-opus-4")
	msg := chatmsg.NewUserTextMessage("hi")
	n := c.CountMessage(msg)
	assert.True(t, n >= perMessageOverhead)
}

func TestDefaultCounter_CountMessage_FunctionCallOverhead(t *testing.T) {
	c := MustNew("claude-opus-4")
	call := chatmsg.NewMessage(chatmsg.Assistant, &chatmsg.FunctionCallContent{
		CallID:    "1",
		Name:      "read_file",
		Arguments: map[string]any{"path": "main.go"},
	})
	n := c.CountMessage(call)
	assert.True(t, n >= perMessageOverhead+functionCallOverhead)
}

func TestDefaultCounter_CountMessage_OtherContentFixedCost(t *testing.T) {
	c := MustNew("claude-opus-4")
	msg := chatmsg.NewMessage(chatmsg.User, &chatmsg.OtherContent{Kind: "image"})
	assert.Equal(t, perMessageOverhead+approximateImageTokens, c.CountMessage(msg))
}

func TestDefaultCounter_CountMessages_PrimingOverhead(t *testing.T) {
	c := MustNew("claude-opus-4")
	h := chatmsg.History{chatmsg.NewUserTextMessage("hi")}
	total := c.CountMessages(h)
	assert.Equal(t, conversationPriming+c.CountMessage(h[0]), total)
}

func TestDefaultCounter_CountMessages_Monotonic_UnderPrefixExtension(t *testing.T) {
	c := MustNew("claude-opus-4")
	base := chatmsg.History{chatmsg.NewUserTextMessage("hello")}
	extended := chatmsg.History{chatmsg.NewUserTextMessage("hello there, how are you doing today?")}
	assert.True(t, c.CountMessages(extended) >= c.CountMessages(base))
}

func TestDefaultCounter_LongTextScalesWithLength(t *testing.T) {
	c := MustNew("claude-opus-4")
	short := c.CountText(strings.Repeat("a", 4))
	long := c.CountText(strings.Repeat("a", 400))
	assert.True(t, long > short)
}
