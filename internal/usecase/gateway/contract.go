package gateway

import (
	"context"

	"github.com/kailas-cloud/jobmatch/internal/domain/job"
)

// Provider is one external job search API. Implementations return postings already
// normalised and tagged with Name() as their source.
type Provider interface {
	Name() string
	HasCredentials() bool
	Search(ctx context.Context, q job.SearchQuery) ([]job.Posting, error)
}
