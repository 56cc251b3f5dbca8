package ingest

import (
	"context"

	"github.com/kailas-cloud/jobmatch/internal/domain/job"
)

type index interface {
	EnsureIndex(ctx context.Context) error
	UpsertMany(ctx context.Context, postings []job.Posting) error
}
