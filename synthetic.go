package contextcore

import (
	"github.com/deepnoodle-ai/contextcore/chatmsg"
	"github.com/google/uuid"
)

// messageIDKey is the Extra key carrying a stable identifier for messages
// synthesized by the pipeline itself (summaries, state blocks, truncation
// markers, goal reminders) rather than produced by the agent or the model.
const messageIDKey = "message_id"

// newSyntheticSystemMessage builds a system text message tagged with a
// fresh message ID, so callers logging or diffing pipeline output can tell
// synthetic messages apart from ones that came from the conversation.
func newSyntheticSystemMessage(text string) *chatmsg.ChatMessage {
	m := chatmsg.NewSystemTextMessage(text)
	m.Extra = map[string]any{messageIDKey: uuid.New().String()}
	return m
}
