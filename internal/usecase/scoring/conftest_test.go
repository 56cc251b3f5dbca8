package scoring

import (
	"context"
	"sync"
	"testing"

	"github.com/kailas-cloud/jobmatch/internal/domain"
	"github.com/kailas-cloud/jobmatch/internal/domain/candidate"
	"github.com/kailas-cloud/jobmatch/internal/domain/job"
)

type mockReranker struct {
	mu       sync.Mutex
	rerankFn func(ctx context.Context, summary string, items []domain.RerankItem) (map[string]float64, error)
	calls    int
	lastReq  []domain.RerankItem
}

func (m *mockReranker) Rerank(
	ctx context.Context, summary string, items []domain.RerankItem,
) (map[string]float64, error) {
	m.mu.Lock()
	m.calls++
	m.lastReq = items
	m.mu.Unlock()
	if m.rerankFn != nil {
		return m.rerankFn(ctx, summary, items)
	}
	return nil, domain.ErrRerankUnavailable
}

type mockEmbedder struct {
	mu      sync.Mutex
	embedFn func(ctx context.Context, text string) (domain.EmbeddingResult, error)
	calls   int
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	return domain.EmbeddingResult{}, domain.ErrEmbeddingUnavailable
}

func profile(t *testing.T, skills []string, emb []float32) *candidate.Profile {
	t.Helper()
	p, err := candidate.New(candidate.Fields{Skills: skills, Embedding: emb})
	if err != nil {
		t.Fatalf("candidate.New: %v", err)
	}
	return &p
}

func posting(t *testing.T, source job.Source, id, title, company string, skills ...string) job.Posting {
	t.Helper()
	f := job.Fields{
		Source:         source,
		Title:          title,
		Company:        company,
		Description:    title + " at " + company,
		RequiredSkills: skills,
	}
	if source.IsLocal() {
		f.ID = id
	} else {
		f.ExternalID = id
	}
	p, err := job.New(f)
	if err != nil {
		t.Fatalf("job.New: %v", err)
	}
	return p
}
