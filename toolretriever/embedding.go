package toolretriever

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/deepnoodle-ai/contextcore/embedding"
)

// Provider is the narrow embedding surface the retriever depends on,
// adapting [embedding.Embedder]'s functional-options call into the single-
// and batch-text shape the index needs.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
}

// embedderProvider adapts an [embedding.Embedder] to [Provider].
type embedderProvider struct {
	embedder embedding.Embedder
}

// NewProvider wraps an embedding.Embedder as a Provider.
func NewProvider(embedder embedding.Embedder) Provider {
	return &embedderProvider{embedder: embedder}
}

func (p *embedderProvider) Embed(ctx context.Context, text string) ([]float64, error) {
	vectors, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (p *embedderProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	resp, err := p.embedder.Embed(ctx, embedding.WithInputs(texts))
	if err != nil {
		return nil, err
	}
	if len(resp.Floats) != len(texts) {
		return nil, fmt.Errorf("toolretriever: embedder returned %d vectors for %d inputs", len(resp.Floats), len(texts))
	}
	out := make([][]float64, len(resp.Floats))
	for i, v := range resp.Floats {
		out[i] = []float64(v)
	}
	return out, nil
}

// EmbeddingRetriever scores tools by cosine similarity between the query
// embedding and a per-tool index built lazily from "<name>: <description>".
type EmbeddingRetriever struct {
	Provider          Provider
	MaxTools          int
	MinRelevanceScore float64
	AlwaysInclude     []string

	mu           sync.Mutex
	indexedTools []Tool
	vectors      map[string][]float64
}

// NewEmbeddingRetriever builds an EmbeddingRetriever with the package
// defaults. provider must not be nil.
func NewEmbeddingRetriever(provider Provider) (*EmbeddingRetriever, error) {
	if provider == nil {
		return nil, fmt.Errorf("toolretriever: provider must not be nil")
	}
	return &EmbeddingRetriever{
		Provider:          provider,
		MaxTools:          DefaultMaxTools,
		MinRelevanceScore: DefaultMinRelevanceScore,
	}, nil
}

// Retrieve scores tools against query, rebuilding the index first if the
// tool list has changed identity or length since the last call.
func (r *EmbeddingRetriever) Retrieve(ctx context.Context, query string, tools []Tool) (Result, error) {
	opts := selectionOptions{
		maxTools:          r.MaxTools,
		minRelevanceScore: r.MinRelevanceScore,
		alwaysInclude:     r.AlwaysInclude,
		// §4.12: empty query returns only always-include, with no scores.
		emptyQueryScoresAlwaysInclude: false,
	}

	if len(tools) == 0 {
		return selectTools(tools, true, nil, opts), nil
	}

	if err := r.ensureIndex(ctx, tools); err != nil {
		return Result{}, err
	}

	if query == "" {
		return selectTools(tools, true, nil, opts), nil
	}

	queryVec, err := r.Provider.Embed(ctx, query)
	if err != nil {
		return Result{}, err
	}

	r.mu.Lock()
	scored := make([]scoredTool, 0, len(tools))
	for _, t := range tools {
		vec := r.vectors[t.Name]
		scored = append(scored, scoredTool{tool: t, score: remapCosine(cosineSimilarity(queryVec, vec))})
	}
	r.mu.Unlock()

	return selectTools(tools, false, scored, opts), nil
}

// ensureIndex rebuilds the vector index if it doesn't exist yet, or if
// tools differs from the indexed list by reference or by length.
func (r *EmbeddingRetriever) ensureIndex(ctx context.Context, tools []Tool) error {
	r.mu.Lock()
	needsRebuild := r.vectors == nil || !sameToolSlice(r.indexedTools, tools)
	r.mu.Unlock()
	if !needsRebuild {
		return nil
	}

	texts := make([]string, len(tools))
	for i, t := range tools {
		texts[i] = fmt.Sprintf("%s: %s", t.Name, t.Description)
	}

	vectors, err := r.Provider.EmbedBatch(ctx, texts)
	if err != nil {
		return err
	}
	if len(vectors) != len(tools) {
		return fmt.Errorf("toolretriever: embedder returned %d vectors for %d tools", len(vectors), len(tools))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.vectors = make(map[string][]float64, len(tools))
	for i, t := range tools {
		r.vectors[t.Name] = vectors[i]
	}
	r.indexedTools = tools
	return nil
}

// sameToolSlice reports whether a and b have the same length and reference
// the same backing array (Go slices have no stable reference identity
// otherwise), per the rebuild trigger in §4.12.
func sameToolSlice(a, b []Tool) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return &a[0] == &b[0]
}

// cosineSimilarity returns the cosine similarity of a and b, or 0 for
// degenerate inputs: empty, mismatched length, or zero norm.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// remapCosine maps a cosine similarity in [-1,1] to a score in [0,1].
func remapCosine(cosine float64) float64 {
	score := (cosine + 1) / 2
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
