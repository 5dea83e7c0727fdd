package rerank

import "context"

// Candidate is one fused match handed to the reranker.
type Candidate struct {
	ID    string
	Score float64
	Text  string
}

// Result is a model-assigned relevance score for one candidate.
type Result struct {
	ID          string
	RerankScore float64
}

// Reranker scores candidates against the query text with a cross-encoder.
// A failure or timeout here must never fail the request; callers fall back
// to the fused order.
type Reranker interface {
	Rerank(ctx context.Context, query string, candidates []Candidate, topN int) ([]Result, error)
}
