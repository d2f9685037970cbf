// Package toolretriever selects the subset of an agent's tool list worth
// including in a given turn's prompt, by keyword match or by embedding
// similarity, and compresses the schemas of whatever it selects.
package toolretriever

import "github.com/deepnoodle-ai/contextcore/schema"

// Tool is the minimal description a retriever needs: enough to score and
// rank, without depending on the tool's invocation machinery.
type Tool struct {
	Name        string
	Description string
	Parameters  *schema.Schema
}

// Result is what a retriever returns: the selected tools in selection
// order, and the relevance score assigned to each by name.
type Result struct {
	SelectedTools   []Tool
	RelevanceScores map[string]float64
}
