package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kailas-cloud/jobmatch/internal/domain"
	"github.com/kailas-cloud/jobmatch/internal/domain/job"
)

type mockIndex struct {
	ensureErr error
	upsertFn  func(ctx context.Context, postings []job.Posting) error
	ensured   int
	batches   [][]job.Posting
}

func (m *mockIndex) EnsureIndex(context.Context) error {
	m.ensured++
	return m.ensureErr
}

func (m *mockIndex) UpsertMany(ctx context.Context, postings []job.Posting) error {
	cp := make([]job.Posting, len(postings))
	copy(cp, postings)
	m.batches = append(m.batches, cp)
	if m.upsertFn != nil {
		return m.upsertFn(ctx, postings)
	}
	return nil
}

func (m *mockIndex) written() []job.Posting {
	var out []job.Posting
	for _, b := range m.batches {
		out = append(out, b...)
	}
	return out
}

type stubEmbedder struct {
	err error
}

func (s stubEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	if s.err != nil {
		return domain.EmbeddingResult{}, s.err
	}
	return domain.EmbeddingResult{Embedding: []float32{1, 0, 0}}, nil
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}
