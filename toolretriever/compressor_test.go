package toolretriever

import (
	"strings"
	"testing"

	"github.com/deepnoodle-ai/contextcore/schema"
	"github.com/deepnoodle-ai/wonton/assert"
)

func sampleToolWithSchema() Tool {
	return Tool{
		Name:        "writeFile",
		Description: strings.Repeat("write a file to disk. ", 10),
		Parameters: &schema.Schema{
			Type:        "object",
			Description: strings.Repeat("parameters for writing a file to disk. ", 10),
			Properties: map[string]*schema.Property{
				"path": {
					Type:        "string",
					Description: strings.Repeat("the path to write. ", 10),
					Examples:    []any{"a.txt"},
					Default:     "out.txt",
				},
			},
			Required: []string{"path"},
		},
	}
}

func TestCompressNonePassesThrough(t *testing.T) {
	tool := sampleToolWithSchema()
	out := Compress(tool, None)
	assert.Equal(t, out.Description, tool.Description)
	assert.Equal(t, out.Parameters, tool.Parameters)
}

func TestCompressModerateTruncatesAndDropsExamples(t *testing.T) {
	tool := sampleToolWithSchema()
	out := Compress(tool, Moderate)
	assert.True(t, len(out.Description) <= moderateToolDescChars+3)
	assert.True(t, len(out.Parameters.Description) <= moderateSchemaRootChars+3)
	prop := out.Parameters.Properties["path"]
	assert.Equal(t, len(prop.Examples), 0)
	assert.Equal(t, prop.Default, "out.txt")
}

func TestCompressAggressiveStripsDescriptionsAndExamples(t *testing.T) {
	tool := sampleToolWithSchema()
	out := Compress(tool, Aggressive)
	assert.Equal(t, out.Description, "")
	assert.Equal(t, out.Parameters.Description, "")
	prop := out.Parameters.Properties["path"]
	assert.Equal(t, prop.Description, "")
	assert.Equal(t, len(prop.Examples), 0)
	assert.Equal(t, prop.Default, nil)
	assert.Equal(t, prop.Type, "string")
	assert.Equal(t, out.Parameters.Required, []string{"path"})
}

func TestTruncateDescriptionPrefersSentenceBoundary(t *testing.T) {
	s := "This is one. This is two. This is three and it runs long past the cut point here."
	out := truncateDescription(s, 30)
	assert.True(t, strings.HasSuffix(out, "."))
}

func TestTruncateDescriptionFallsBackToSpace(t *testing.T) {
	s := strings.Repeat("a", 50) + " " + strings.Repeat("b", 50)
	out := truncateDescription(s, 60)
	assert.True(t, strings.HasSuffix(out, "..."))
}

func TestTruncateDescriptionLeavesShortStringsAlone(t *testing.T) {
	assert.Equal(t, truncateDescription("short", 100), "short")
}
