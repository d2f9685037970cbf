package contextcore

import (
	"fmt"
	"regexp"
	"strings"
)

// ConversationAnchors is the structured state a conversation accumulates
// across compaction rounds: a goal and five append-only, deduplicated
// lists. Anchors are carried as a single plaintext system message (the
// "state block") so an iterated LLM summarizer cannot silently drop facts
// across rounds.
type ConversationAnchors struct {
	Goal             string
	Completed        []string
	FilesModified    []string
	FailedApproaches []string
	KeyDecisions     []string
	Errors           []string
}

// IsEmpty reports whether no field carries any content.
func (a *ConversationAnchors) IsEmpty() bool {
	return a.Goal == "" && len(a.Completed) == 0 && len(a.FilesModified) == 0 &&
		len(a.FailedApproaches) == 0 && len(a.KeyDecisions) == 0 && len(a.Errors) == 0
}

// Merge combines n into a, following the at-least-once capture rule: the
// existing goal is never overwritten by a later round, and every list is
// extended with order-preserving deduplication: exact-match for every list
// except FilesModified, which is deduplicated case-insensitively.
func (a *ConversationAnchors) Merge(n *ConversationAnchors) {
	if n == nil {
		return
	}
	if a.Goal == "" {
		a.Goal = n.Goal
	}
	a.Completed = mergeDedup(a.Completed, n.Completed)
	a.FilesModified = mergeDedupFold(a.FilesModified, n.FilesModified)
	a.FailedApproaches = mergeDedup(a.FailedApproaches, n.FailedApproaches)
	a.KeyDecisions = mergeDedup(a.KeyDecisions, n.KeyDecisions)
	a.Errors = mergeDedup(a.Errors, n.Errors)
}

func mergeDedup(existing, incoming []string) []string {
	seen := make(map[string]bool, len(existing))
	out := append([]string(nil), existing...)
	for _, s := range existing {
		seen[s] = true
	}
	for _, s := range incoming {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// mergeDedupFold is [mergeDedup] with case-insensitive comparison, for
// FilesModified: paths are a set of strings compared case-insensitively, so
// "/foo/Bar.go" and "/foo/bar.go" name the same entry. The first-seen
// casing is kept.
func mergeDedupFold(existing, incoming []string) []string {
	seen := make(map[string]bool, len(existing))
	out := append([]string(nil), existing...)
	for _, s := range existing {
		seen[strings.ToLower(s)] = true
	}
	for _, s := range incoming {
		key := strings.ToLower(s)
		if !seen[key] {
			seen[key] = true
			out = append(out, s)
		}
	}
	return out
}

const (
	stateBlockOpen  = "[CONVERSATION STATE]"
	stateBlockClose = "[END STATE]"
)

// FormatStateBlock renders a as the plaintext state block. Only sections
// with content are emitted. Returns "" if a is empty.
func FormatStateBlock(a *ConversationAnchors) string {
	if a == nil || a.IsEmpty() {
		return ""
	}
	var b strings.Builder
	b.WriteString(stateBlockOpen + "\n")
	if a.Goal != "" {
		fmt.Fprintf(&b, "Goal: %s\n", a.Goal)
	}
	writeSection(&b, "Completed:", a.Completed)
	writeSection(&b, "Files modified:", a.FilesModified)
	writeSection(&b, "Failed approaches:", a.FailedApproaches)
	writeSection(&b, "Key decisions:", a.KeyDecisions)
	writeSection(&b, "Errors:", a.Errors)
	b.WriteString(stateBlockClose)
	return b.String()
}

func writeSection(b *strings.Builder, header string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString(header + "\n")
	for _, item := range items {
		fmt.Fprintf(b, "  - %s\n", item)
	}
}

// ParseStateBlock parses text produced by [FormatStateBlock] (or any text
// following the same line format) back into a ConversationAnchors.
// parse(format(x)) == x for any x populated via the public API.
func ParseStateBlock(text string) *ConversationAnchors {
	anchors := &ConversationAnchors{}
	lines := strings.Split(text, "\n")

	var current *[]string
	for _, line := range lines {
		trimmed := strings.TrimRight(line, "\r")
		switch trimmed {
		case stateBlockOpen, stateBlockClose, "":
			continue
		case "Completed:":
			current = &anchors.Completed
			continue
		case "Files modified:":
			current = &anchors.FilesModified
			continue
		case "Failed approaches:":
			current = &anchors.FailedApproaches
			continue
		case "Key decisions:":
			current = &anchors.KeyDecisions
			continue
		case "Errors:":
			current = &anchors.Errors
			continue
		}
		if strings.HasPrefix(trimmed, "Goal: ") {
			anchors.Goal = strings.TrimPrefix(trimmed, "Goal: ")
			current = nil
			continue
		}
		if strings.HasPrefix(trimmed, "  - ") && current != nil {
			*current = append(*current, strings.TrimPrefix(trimmed, "  - "))
		}
	}
	return anchors
}

// ContainsStateBlock reports whether text looks like a rendered state block.
func ContainsStateBlock(text string) bool {
	return strings.Contains(text, stateBlockOpen) && strings.Contains(text, stateBlockClose)
}

// errorCodePattern matches the error-code shapes scanned for during anchor
// extraction: one of the prefixes CS, CA, IDE or SA followed by 4-5 digits.
var errorCodePattern = regexp.MustCompile(`(?:CS|CA|IDE|SA)\d{4,5}`)

// protectedFileVerbs are substrings (case-insensitive) of a FunctionCall
// name that mark it as a file-modifying call worth tracking in
// FilesModified.
var protectedFileVerbs = []string{"write", "edit", "create", "delete"}

// filePathArgKeys are the argument keys inspected for a path value on a
// file-modifying call.
var filePathArgKeys = []string{"path", "file_path", "filePath"}
