package aggregate

import (
	"context"
	"testing"

	"github.com/kailas-cloud/jobmatch/internal/domain/job"
	"github.com/kailas-cloud/jobmatch/internal/repository/jobindex"
	"github.com/kailas-cloud/jobmatch/internal/usecase/gateway"
)

type mockIndex struct {
	searchFn func(ctx context.Context, vec []float32, k int) ([]jobindex.Hit, error)
	listFn   func(ctx context.Context, k int) ([]job.Posting, error)
}

func (m *mockIndex) Search(ctx context.Context, vec []float32, k int) ([]jobindex.Hit, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, vec, k)
	}
	return nil, nil
}

func (m *mockIndex) List(ctx context.Context, k int) ([]job.Posting, error) {
	if m.listFn != nil {
		return m.listFn(ctx, k)
	}
	return nil, nil
}

type mockGateway struct {
	postings []job.Posting
	calls    int
	lastQ    job.SearchQuery
}

func (m *mockGateway) Fetch(_ context.Context, q job.SearchQuery) ([]job.Posting, gateway.Report) {
	m.calls++
	m.lastQ = q
	out := m.postings
	if len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, gateway.Report{Outcomes: []gateway.Outcome{{Provider: "adzuna", Status: "ok", Postings: len(out)}}}
}

func posting(t *testing.T, source job.Source, id, title, company string) job.Posting {
	t.Helper()
	f := job.Fields{
		Source:      source,
		Title:       title,
		Company:     company,
		Description: title + " building services in golang",
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

func hits(postings ...job.Posting) []jobindex.Hit {
	out := make([]jobindex.Hit, len(postings))
	for i, p := range postings {
		out[i] = jobindex.Hit{Posting: p, Distance: 0.1 * float64(i+1)}
	}
	return out
}
