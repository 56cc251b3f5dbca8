package recommend

import (
	"context"

	"github.com/kailas-cloud/jobmatch/internal/domain/match"
	"github.com/kailas-cloud/jobmatch/internal/usecase/aggregate"
	"github.com/kailas-cloud/jobmatch/internal/usecase/scoring"
)

type collector interface {
	Collect(ctx context.Context, q aggregate.Query, minLocal int) aggregate.Pool
}

type ranker interface {
	Rank(ctx context.Context, in scoring.Input) ([]match.Result, scoring.Report)
}
