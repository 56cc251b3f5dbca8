package gateway

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/kailas-cloud/jobmatch/internal/domain/job"
)

// fakeProvider implements Provider for tests.
type fakeProvider struct {
	name     string
	noCreds  bool
	searchFn func(ctx context.Context, q job.SearchQuery) ([]job.Posting, error)
	calls    atomic.Int32
}

func (f *fakeProvider) Name() string         { return f.name }
func (f *fakeProvider) HasCredentials() bool { return !f.noCreds }

func (f *fakeProvider) Search(ctx context.Context, q job.SearchQuery) ([]job.Posting, error) {
	f.calls.Add(1)
	if f.searchFn != nil {
		return f.searchFn(ctx, q)
	}
	return nil, nil
}

func returning(postings ...job.Posting) func(context.Context, job.SearchQuery) ([]job.Posting, error) {
	return func(context.Context, job.SearchQuery) ([]job.Posting, error) {
		return postings, nil
	}
}

func external(t *testing.T, source, id, title string) job.Posting {
	t.Helper()
	p, err := job.New(job.Fields{
		Source:      job.Source(source),
		ExternalID:  id,
		Title:       title,
		Company:     "Acme",
		Description: title + " role working with golang and kubernetes",
	})
	if err != nil {
		t.Fatalf("job.New: %v", err)
	}
	return p
}

func statuses(r Report) map[string]string {
	out := make(map[string]string, len(r.Outcomes))
	for _, o := range r.Outcomes {
		out[o.Provider] = o.Status
	}
	return out
}
