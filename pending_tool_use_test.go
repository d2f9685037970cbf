package contextcore

import (
	"testing"

	"github.com/deepnoodle-ai/contextcore/chatmsg"
	"github.com/deepnoodle-ai/wonton/assert"
)

func TestFilterDanglingToolCallsDropsAssistantOnlyTrailer(t *testing.T) {
	h := chatmsg.History{
		chatmsg.NewUserTextMessage("run the tests"),
		chatmsg.NewMessage(chatmsg.Assistant,
			&chatmsg.FunctionCallContent{CallID: "1", Name: "run_tests"}),
	}
	out := filterDanglingToolCalls(h)
	assert.Equal(t, len(out), 1)
}

func TestFilterDanglingToolCallsKeepsResolvedCalls(t *testing.T) {
	h := chatmsg.History{
		chatmsg.NewUserTextMessage("run the tests"),
		chatmsg.NewMessage(chatmsg.Assistant,
			&chatmsg.FunctionCallContent{CallID: "1", Name: "run_tests"}),
		chatmsg.NewToolResultMessage(&chatmsg.FunctionResultContent{CallID: "1", Result: "ok"}),
	}
	out := filterDanglingToolCalls(h)
	assert.Equal(t, len(out), 3)
}

func TestFilterDanglingToolCallsStripsMixedContent(t *testing.T) {
	h := chatmsg.History{
		chatmsg.NewUserTextMessage("run the tests"),
		chatmsg.NewMessage(chatmsg.Assistant,
			&chatmsg.TextContent{Text: "sure, running now"},
			&chatmsg.FunctionCallContent{CallID: "1", Name: "run_tests"}),
	}
	out := filterDanglingToolCalls(h)
	assert.Equal(t, len(out), 2)
	assert.Equal(t, len(out[1].FunctionCalls()), 0)
	assert.Equal(t, out[1].Text(), "sure, running now")
}

func TestFilterDanglingToolCallsNoOpWhenLastIsUser(t *testing.T) {
	h := chatmsg.History{
		chatmsg.NewUserTextMessage("hi"),
		chatmsg.NewAssistantTextMessage("hello"),
		chatmsg.NewUserTextMessage("bye"),
	}
	out := filterDanglingToolCalls(h)
	assert.Equal(t, len(out), 3)
}

func TestFilterDanglingToolCallsEmptyHistory(t *testing.T) {
	out := filterDanglingToolCalls(nil)
	assert.Equal(t, len(out), 0)
}
