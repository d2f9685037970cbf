package contextcore

import (
	"strings"

	"github.com/deepnoodle-ai/contextcore/chatmsg"
)

// DefaultGoalReminderTemplate is rendered with {goal} substituted for the
// stored goal text.
const DefaultGoalReminderTemplate = "[REMINDER] Current goal: {goal}"

// maxGoalReminderChars bounds the text captured as the reminder's goal,
// distinct from the shorter [maxGoalChars] used by anchor extraction.
const maxGoalReminderChars = 500

// GoalReminder periodically re-injects the conversation's stated goal as a
// system message, so a long tool-use tangent doesn't drift the agent away
// from what it was originally asked to do.
type GoalReminder struct {
	Enabled                   bool
	MinMessagesBeforeReminder int
	Template                  string

	currentGoal string
}

// NewGoalReminder builds an enabled GoalReminder with the default template.
func NewGoalReminder(minMessagesBeforeReminder int) *GoalReminder {
	return &GoalReminder{
		Enabled:                   true,
		MinMessagesBeforeReminder: minMessagesBeforeReminder,
		Template:                  DefaultGoalReminderTemplate,
	}
}

// SetGoalFromFirstUserMessage scans history for the first user message and
// stores its text (truncated to 500 chars) as the current goal. No-op if
// history has no user message.
func (g *GoalReminder) SetGoalFromFirstUserMessage(history chatmsg.History) {
	for _, m := range history {
		if m.Role == chatmsg.User {
			if text := m.Text(); text != "" {
				g.currentGoal = truncateWithEllipsis(text, maxGoalReminderChars)
				return
			}
		}
	}
}

// SetGoal stores goal verbatim as the current goal, for callers that
// already know it rather than deriving it from history.
func (g *GoalReminder) SetGoal(goal string) {
	g.currentGoal = goal
}

// Goal returns the currently stored goal, or "" if none has been set.
func (g *GoalReminder) Goal() string {
	return g.currentGoal
}

// ShouldInject reports whether a reminder should be added given history:
// the reminder must be enabled, a goal must be set, and history must carry
// at least MinMessagesBeforeReminder non-system messages.
func (g *GoalReminder) ShouldInject(history chatmsg.History) bool {
	if !g.Enabled || g.currentGoal == "" {
		return false
	}
	count := 0
	for _, m := range history {
		if m.Role != chatmsg.System {
			count++
		}
	}
	return count >= g.MinMessagesBeforeReminder
}

// InjectIfNeeded returns history with one additional system message
// appended containing the rendered template, or history unchanged if
// ShouldInject is false.
func (g *GoalReminder) InjectIfNeeded(history chatmsg.History) chatmsg.History {
	if !g.ShouldInject(history) {
		return history
	}
	template := g.Template
	if template == "" {
		template = DefaultGoalReminderTemplate
	}
	rendered := strings.ReplaceAll(template, "{goal}", g.currentGoal)
	out := make(chatmsg.History, 0, len(history)+1)
	out = append(out, history...)
	out = append(out, newSyntheticSystemMessage(rendered))
	return out
}
