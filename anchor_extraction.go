package contextcore

import (
	"strings"

	"github.com/deepnoodle-ai/contextcore/chatmsg"
)

// maxGoalChars bounds the text captured as the session goal.
const maxGoalChars = 200

// ExtractAnchors scans middle (the prunable region, with any existing
// state-block system messages already filtered out by the caller) for the
// rule-based anchors described for the anchored compactor: a goal taken
// from the first user message, files touched by file-modifying tool calls,
// and error codes appearing anywhere in message text.
func ExtractAnchors(middle chatmsg.History) *ConversationAnchors {
	anchors := &ConversationAnchors{}

	for _, m := range middle {
		if anchors.Goal == "" && m.Role == chatmsg.User {
			if text := m.Text(); text != "" {
				anchors.Goal = truncateWithEllipsis(text, maxGoalChars)
			}
		}
		if m.Role == chatmsg.Assistant {
			for _, fc := range m.FunctionCalls() {
				if isFileModifyingCall(fc.Name) {
					anchors.FilesModified = append(anchors.FilesModified, extractFilePaths(fc.Arguments)...)
				}
			}
		}
		if text := m.Text(); text != "" {
			for _, code := range errorCodePattern.FindAllString(text, -1) {
				anchors.Errors = append(anchors.Errors, code)
			}
		}
	}

	anchors.FilesModified = dedupPreserveOrderFold(anchors.FilesModified)
	anchors.Errors = dedupPreserveOrder(anchors.Errors)
	return anchors
}

func isFileModifyingCall(name string) bool {
	lower := strings.ToLower(name)
	for _, verb := range protectedFileVerbs {
		if strings.Contains(lower, verb) {
			return true
		}
	}
	return false
}

func extractFilePaths(args map[string]any) []string {
	var paths []string
	for _, key := range filePathArgKeys {
		if v, ok := args[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				paths = append(paths, s)
			}
		}
	}
	return paths
}

func dedupPreserveOrder(items []string) []string {
	seen := make(map[string]bool, len(items))
	var out []string
	for _, s := range items {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// dedupPreserveOrderFold is [dedupPreserveOrder] with case-insensitive
// comparison, for file paths: the filesystem that FilesModified names is
// case-insensitive on Windows and macOS (default), so treat "/foo/Bar.go"
// and "/foo/bar.go" as the same entry. The first-seen casing is kept.
func dedupPreserveOrderFold(items []string) []string {
	seen := make(map[string]bool, len(items))
	var out []string
	for _, s := range items {
		key := strings.ToLower(s)
		if !seen[key] {
			seen[key] = true
			out = append(out, s)
		}
	}
	return out
}

func truncateWithEllipsis(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
