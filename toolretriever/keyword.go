package toolretriever

import "strings"

// Defaults for [KeywordRetriever].
const (
	DefaultMaxTools          = 10
	DefaultMinRelevanceScore = 0.1
)

// KeywordRetriever scores tools against a query by token overlap: name
// matches are weighted 3x description matches, and the whole score is
// normalized into [0,1].
type KeywordRetriever struct {
	MaxTools          int
	MinRelevanceScore float64
	AlwaysInclude     []string
}

// NewKeywordRetriever builds a KeywordRetriever with the package defaults.
func NewKeywordRetriever() *KeywordRetriever {
	return &KeywordRetriever{
		MaxTools:          DefaultMaxTools,
		MinRelevanceScore: DefaultMinRelevanceScore,
	}
}

// Retrieve scores tools against query and returns the selected subset.
func (r *KeywordRetriever) Retrieve(query string, tools []Tool) Result {
	queryTokens := tokenize(query)
	opts := selectionOptions{
		maxTools:                      r.MaxTools,
		minRelevanceScore:             r.MinRelevanceScore,
		alwaysInclude:                 r.AlwaysInclude,
		emptyQueryScoresAlwaysInclude: true,
	}

	if len(tools) == 0 {
		return selectTools(tools, true, nil, opts)
	}
	if len(queryTokens) == 0 {
		return selectTools(tools, true, nil, opts)
	}

	q := newTokenSet(queryTokens)
	scored := make([]scoredTool, 0, len(tools))
	for _, t := range tools {
		scored = append(scored, scoredTool{tool: t, score: keywordScore(t, q)})
	}
	return selectTools(tools, false, scored, opts)
}

func keywordScore(t Tool, q tokenSet) float64 {
	nameTokens := tokenize(t.Name)
	descTokens := newTokenSet(tokenize(t.Description))

	var nameHits, descHits int
	for query := range q {
		if tokenBidirectionalMatch(query, nameTokens) {
			nameHits++
		}
		if descTokens[query] {
			descHits++
		}
	}

	score := float64(3*nameHits+descHits) / float64(len(q)*4)
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score
}

func tokenBidirectionalMatch(query string, nameTokens []string) bool {
	for _, n := range nameTokens {
		if strings.Contains(n, query) || strings.Contains(query, n) {
			return true
		}
	}
	return false
}
