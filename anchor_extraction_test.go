package contextcore

import (
	"testing"

	"github.com/deepnoodle-ai/contextcore/chatmsg"
	"github.com/deepnoodle-ai/wonton/assert"
)

func TestExtractAnchorsCapturesGoalFromFirstUserMessage(t *testing.T) {
	h := chatmsg.History{
		chatmsg.NewUserTextMessage("please fix the login bug"),
		chatmsg.NewAssistantTextMessage("looking into it"),
	}
	a := ExtractAnchors(h)
	assert.Equal(t, a.Goal, "please fix the login bug")
}

func TestExtractAnchorsTruncatesLongGoal(t *testing.T) {
	long := ""
	for i := 0; i < 50; i++ {
		long += "0123456789"
	}
	h := chatmsg.History{chatmsg.NewUserTextMessage(long)}
	a := ExtractAnchors(h)
	assert.Equal(t, len(a.Goal), maxGoalChars+3)
}

func TestExtractAnchorsCapturesFilesModified(t *testing.T) {
	call := chatmsg.NewMessage(chatmsg.Assistant,
		&chatmsg.FunctionCallContent{CallID: "1", Name: "write_file", Arguments: map[string]any{"path": "a/b.go"}},
	)
	h := chatmsg.History{call}
	a := ExtractAnchors(h)
	assert.Equal(t, a.FilesModified, []string{"a/b.go"})
}

func TestExtractAnchorsIgnoresNonModifyingCalls(t *testing.T) {
	call := chatmsg.NewMessage(chatmsg.Assistant,
		&chatmsg.FunctionCallContent{CallID: "1", Name: "read_file", Arguments: map[string]any{"path": "a/b.go"}},
	)
	h := chatmsg.History{call}
	a := ExtractAnchors(h)
	assert.Equal(t, len(a.FilesModified), 0)
}

func TestExtractAnchorsDedupsFilesModifiedCaseInsensitively(t *testing.T) {
	h := chatmsg.History{
		chatmsg.NewMessage(chatmsg.Assistant,
			&chatmsg.FunctionCallContent{CallID: "1", Name: "write_file", Arguments: map[string]any{"path": "a/B.go"}},
		),
		chatmsg.NewMessage(chatmsg.Assistant,
			&chatmsg.FunctionCallContent{CallID: "2", Name: "edit_file", Arguments: map[string]any{"path": "a/b.go"}},
		),
	}
	a := ExtractAnchors(h)
	assert.Equal(t, a.FilesModified, []string{"a/B.go"})
}

func TestExtractAnchorsCapturesErrorCodes(t *testing.T) {
	h := chatmsg.History{
		chatmsg.NewAssistantTextMessage("build failed with CS1002 and again with IDE10061"),
	}
	a := ExtractAnchors(h)
	assert.Equal(t, a.Errors, []string{"CS1002", "IDE10061"})
}
