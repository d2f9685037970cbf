package toolretriever

import "sort"

// scoredTool pairs a tool with its relevance score for selection.
type scoredTool struct {
	tool  Tool
	score float64
}

// selectionOptions configures [selectTools], shared by the keyword and
// embedding retrievers.
type selectionOptions struct {
	maxTools          int
	minRelevanceScore float64
	alwaysInclude     []string
	// emptyQueryScoresAlwaysInclude controls whether always-include tools
	// get score 1.0 (keyword) or are omitted from RelevanceScores
	// (embedding) when the query has zero tokens.
	emptyQueryScoresAlwaysInclude bool
}

// selectTools applies the shared selection algorithm (§4.11/§4.12):
// always-include tools first, then score-descending with ties in natural
// (input) order, stopping at maxTools or the first score below
// minRelevanceScore.
func selectTools(tools []Tool, queryEmpty bool, scored []scoredTool, opts selectionOptions) Result {
	if len(tools) == 0 {
		return Result{RelevanceScores: map[string]float64{}}
	}

	byName := make(map[string]Tool, len(tools))
	for _, t := range tools {
		byName[t.Name] = t
	}

	result := Result{RelevanceScores: map[string]float64{}}
	selected := make(map[string]bool)

	addAlwaysInclude := func(score float64, record bool) {
		for _, name := range opts.alwaysInclude {
			if opts.maxTools > 0 && len(result.SelectedTools) >= opts.maxTools {
				return
			}
			t, ok := byName[name]
			if !ok || selected[name] {
				continue
			}
			selected[name] = true
			result.SelectedTools = append(result.SelectedTools, t)
			if record {
				result.RelevanceScores[name] = score
			}
		}
	}

	if queryEmpty {
		addAlwaysInclude(1.0, opts.emptyQueryScoresAlwaysInclude)
		return result
	}

	addAlwaysInclude(1.0, true)

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	for _, st := range scored {
		if len(result.SelectedTools) >= opts.maxTools {
			break
		}
		if st.score < opts.minRelevanceScore {
			break
		}
		if selected[st.tool.Name] {
			continue
		}
		selected[st.tool.Name] = true
		result.SelectedTools = append(result.SelectedTools, st.tool)
		result.RelevanceScores[st.tool.Name] = st.score
	}

	return result
}
