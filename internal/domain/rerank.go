package domain

import "context"

// RerankItem is one posting offered to the language model, keyed by posting id.
type RerankItem struct {
	ID      string
	Summary string
}

// Reranker is the optional language-model capability. It returns a relevance in [0,1] per item id.
// Implementations may return fewer ids than requested; callers decide whether that is usable.
type Reranker interface {
	Rerank(ctx context.Context, profileSummary string, items []RerankItem) (map[string]float64, error)
}
