package contextcore

import (
	"fmt"
	"strings"
	"testing"

	"github.com/deepnoodle-ai/wonton/assert"
	"github.com/pmezard/go-difflib/difflib"
)

func TestFormatStateBlockOmitsEmptySections(t *testing.T) {
	a := &ConversationAnchors{Goal: "ship the release"}
	text := FormatStateBlock(a)
	assert.True(t, containsAll(text, "[CONVERSATION STATE]", "Goal: ship the release", "[END STATE]"))
	assert.False(t, containsAll(text, "Completed:"))
}

func TestFormatStateBlockEmptyAnchorsIsEmptyString(t *testing.T) {
	assert.Equal(t, FormatStateBlock(&ConversationAnchors{}), "")
	assert.Equal(t, FormatStateBlock(nil), "")
}

func TestStateBlockRoundTrip(t *testing.T) {
	a := &ConversationAnchors{
		Goal:             "migrate the billing service",
		Completed:        []string{"wrote migration", "ran smoke test"},
		FilesModified:    []string{"billing/migrate.go", "billing/migrate_test.go"},
		FailedApproaches: []string{"tried in-place rewrite, rolled back"},
		KeyDecisions:     []string{"use a shadow table"},
		Errors:           []string{"CS1002", "IDE10061"},
	}
	text := FormatStateBlock(a)
	parsed := ParseStateBlock(text)
	roundTripped := FormatStateBlock(parsed)

	if roundTripped != text {
		diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(text),
			B:        difflib.SplitLines(roundTripped),
			FromFile: "format(x)",
			ToFile:   "format(parse(format(x)))",
			Context:  2,
		})
		t.Fatalf("state block did not round-trip:\n%s", diff)
	}
	assert.Equal(t, fmt.Sprintf("%+v", *parsed), fmt.Sprintf("%+v", *a))
}

func TestConversationAnchorsMergeKeepsExistingGoal(t *testing.T) {
	a := &ConversationAnchors{Goal: "first goal", Completed: []string{"a"}}
	n := &ConversationAnchors{Goal: "second goal", Completed: []string{"a", "b"}}
	a.Merge(n)
	assert.Equal(t, a.Goal, "first goal")
	assert.Equal(t, a.Completed, []string{"a", "b"})
}

func TestConversationAnchorsMergeDedupsExact(t *testing.T) {
	a := &ConversationAnchors{Errors: []string{"CS1002"}}
	n := &ConversationAnchors{Errors: []string{"CS1002", "CA2000"}}
	a.Merge(n)
	assert.Equal(t, a.Errors, []string{"CS1002", "CA2000"})
}

func TestConversationAnchorsMergeDedupsFilesModifiedCaseInsensitively(t *testing.T) {
	a := &ConversationAnchors{FilesModified: []string{"/foo/Bar.go"}}
	n := &ConversationAnchors{FilesModified: []string{"/foo/bar.go", "/foo/baz.go"}}
	a.Merge(n)
	assert.Equal(t, a.FilesModified, []string{"/foo/Bar.go", "/foo/baz.go"})
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
