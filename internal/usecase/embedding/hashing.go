package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"strings"
	"unicode"

	"github.com/kailas-cloud/jobmatch/internal/domain"
	"github.com/kailas-cloud/jobmatch/internal/domain/vector"
)

// HashingEmbedder is a deterministic, offline embedder. Each lower-cased token is hashed with
// SHA-256 into one of the dimensions with a sign bit, and the bag is L2-normalised, so texts
// sharing vocabulary land close to each other under cosine distance.
type HashingEmbedder struct {
	dimensions int
}

// NewHashingEmbedder creates a hashing embedder producing vectors of the given dimension.
func NewHashingEmbedder(dimensions int) *HashingEmbedder {
	if dimensions <= 0 {
		dimensions = domain.DefaultDimensions
	}
	return &HashingEmbedder{dimensions: dimensions}
}

// Embed implements domain.Embedder. Text without tokens is an error.
func (h *HashingEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})
	if len(tokens) == 0 {
		return domain.EmbeddingResult{}, domain.ErrEmbeddingUnavailable
	}

	vec := make([]float32, h.dimensions)
	for _, tok := range tokens {
		sum := sha256.Sum256([]byte(tok))
		idx := binary.LittleEndian.Uint64(sum[:8]) % uint64(h.dimensions)
		if sum[8]&1 == 0 {
			vec[idx]++
		} else {
			vec[idx]--
		}
	}

	return domain.EmbeddingResult{Embedding: vector.Normalize(vec)}, nil
}

// HealthCheck always succeeds.
func (h *HashingEmbedder) HealthCheck(context.Context) error { return nil }
