package recommend

import (
	"context"
	"testing"

	"github.com/kailas-cloud/jobmatch/internal/domain"
	"github.com/kailas-cloud/jobmatch/internal/domain/candidate"
	"github.com/kailas-cloud/jobmatch/internal/domain/job"
	"github.com/kailas-cloud/jobmatch/internal/repository/jobindex"
	"github.com/kailas-cloud/jobmatch/internal/usecase/gateway"
)

type mockEmbedder struct {
	embedFn func(ctx context.Context, text string) (domain.EmbeddingResult, error)
	texts   []string
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	m.texts = append(m.texts, text)
	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	return domain.EmbeddingResult{}, domain.ErrEmbeddingUnavailable
}

// fakeIndex serves local postings as if they were vector search hits, in order.
type fakeIndex struct {
	postings []job.Posting
	err      error
}

func (f *fakeIndex) Search(_ context.Context, _ []float32, k int) ([]jobindex.Hit, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []jobindex.Hit
	for i, p := range f.postings {
		if i == k {
			break
		}
		out = append(out, jobindex.Hit{Posting: p, Distance: 0.1 * float64(i)})
	}
	return out, nil
}

func (f *fakeIndex) List(_ context.Context, k int) ([]job.Posting, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.postings[:min(k, len(f.postings))], nil
}

type fakeGateway struct {
	postings []job.Posting
	calls    int
}

func (f *fakeGateway) Fetch(_ context.Context, q job.SearchQuery) ([]job.Posting, gateway.Report) {
	f.calls++
	return f.postings[:min(q.Limit, len(f.postings))], gateway.Report{}
}

func newProfile(t *testing.T, f candidate.Fields) candidate.Profile {
	t.Helper()
	p, err := candidate.New(f)
	if err != nil {
		t.Fatalf("candidate.New: %v", err)
	}
	return p
}

func newPosting(t *testing.T, source job.Source, id, title, company string, skills ...string) job.Posting {
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
