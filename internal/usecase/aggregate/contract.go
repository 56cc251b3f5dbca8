package aggregate

import (
	"context"

	"github.com/kailas-cloud/jobmatch/internal/domain/job"
	"github.com/kailas-cloud/jobmatch/internal/repository/jobindex"
	"github.com/kailas-cloud/jobmatch/internal/usecase/gateway"
)

type index interface {
	Search(ctx context.Context, vec []float32, k int) ([]jobindex.Hit, error)
	List(ctx context.Context, k int) ([]job.Posting, error)
}

type sourcer interface {
	Fetch(ctx context.Context, q job.SearchQuery) ([]job.Posting, gateway.Report)
}
