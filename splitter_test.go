package contextcore

import (
	"testing"

	"github.com/deepnoodle-ai/contextcore/chatmsg"
	"github.com/deepnoodle-ai/wonton/assert"
)

func TestSplitHistorySeparatesSystemMessages(t *testing.T) {
	counter := fixedCounter{perMessage: 10}
	h := chatmsg.History{
		chatmsg.NewSystemTextMessage("sys1"),
		chatmsg.NewUserTextMessage("u1"),
		chatmsg.NewSystemTextMessage("sys2"),
		chatmsg.NewAssistantTextMessage("a1"),
	}
	split := SplitHistory(counter, h, 1000)
	assert.Equal(t, len(split.System), 2)
	assert.Equal(t, len(split.Middle)+len(split.Tail), 2)
}

func TestSplitHistoryBoundsTailByTokens(t *testing.T) {
	counter := fixedCounter{perMessage: 10}
	h := chatmsg.History{
		chatmsg.NewUserTextMessage("u1"),
		chatmsg.NewAssistantTextMessage("a1"),
		chatmsg.NewUserTextMessage("u2"),
		chatmsg.NewAssistantTextMessage("a2"),
	}
	split := SplitHistory(counter, h, 20)
	assert.Equal(t, len(split.Tail), 2)
	assert.Equal(t, len(split.Middle), 2)
}

func TestSplitHistoryZeroProtectGivesEmptyTail(t *testing.T) {
	counter := fixedCounter{perMessage: 10}
	h := chatmsg.History{chatmsg.NewUserTextMessage("u1")}
	split := SplitHistory(counter, h, 0)
	assert.Equal(t, len(split.Tail), 0)
	assert.Equal(t, len(split.Middle), 1)
}
