// Package aggregate decides between local and external sourcing and merges the result into one
// deduplicated, source-ordered pool.
package aggregate

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/jobmatch/internal/domain/job"
	"github.com/kailas-cloud/jobmatch/internal/usecase/gateway"
)

// Defaults used when the constructor gets zero sizes.
const (
	DefaultPoolSize    = 20
	DefaultExternalMax = 20
)

// Query is what the aggregator needs from a candidate.
type Query struct {
	Vector   []float32 // nil when no embedding is available
	Terms    []string
	Location string
}

// Report describes how a pool was assembled.
type Report struct {
	Local            int
	External         int
	Duplicates       int
	GatewayCalled    bool
	IndexUnavailable bool
	Providers        []gateway.Outcome
}

// Pool is the deduplicated result of Collect. Local postings come first.
type Pool struct {
	Postings []job.Posting
	// Distances holds raw index distances by Posting.Key, for postings found via vector search.
	Distances map[string]float64
	Report    Report
}

// Service is the Aggregator.
type Service struct {
	index       index
	gateway     sourcer
	poolSize    int
	externalMax int
	logger      *zap.Logger
}

// New creates an aggregator. gw may be nil when no external providers are configured.
func New(idx index, gw sourcer, poolSize, externalMax int, logger *zap.Logger) *Service {
	if poolSize <= 0 {
		poolSize = DefaultPoolSize
	}
	if externalMax <= 0 {
		externalMax = DefaultExternalMax
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{index: idx, gateway: gw, poolSize: poolSize, externalMax: externalMax, logger: logger}
}

// Collect gathers local postings and, when fewer than minLocal are found, backfills from the gateway.
// Dependency failures shrink the pool; Collect itself never fails.
func (s *Service) Collect(ctx context.Context, q Query, minLocal int) Pool {
	pool := Pool{Distances: make(map[string]float64)}
	seen := make(map[string]struct{})

	for _, c := range s.local(ctx, q, &pool.Report) {
		if !add(&pool, seen, c.posting) {
			continue
		}
		if c.hasDistance {
			pool.Distances[c.posting.Key()] = c.distance
		}
		pool.Report.Local++
	}

	if pool.Report.Local >= minLocal || s.gateway == nil {
		return pool
	}

	want := max(minLocal-pool.Report.Local, s.externalMax)
	external, report := s.gateway.Fetch(ctx, job.SearchQuery{
		Terms:    q.Terms,
		Location: q.Location,
		Limit:    want,
	})
	pool.Report.GatewayCalled = true
	pool.Report.Providers = report.Outcomes

	for i := range external {
		if external[i].Source().IsLocal() {
			// providers never claim local ownership; drop rather than shadow the store
			continue
		}
		if add(&pool, seen, external[i]) {
			pool.Report.External++
		}
	}

	s.logger.Debug("Pool collected",
		zap.Int("local", pool.Report.Local),
		zap.Int("external", pool.Report.External),
		zap.Int("duplicates", pool.Report.Duplicates))
	return pool
}

type candidate struct {
	posting     job.Posting
	distance    float64
	hasDistance bool
}

func (s *Service) local(ctx context.Context, q Query, report *Report) []candidate {
	if s.index == nil {
		return nil
	}

	if len(q.Vector) > 0 {
		hits, err := s.index.Search(ctx, q.Vector, s.poolSize)
		if err != nil {
			s.logger.Warn("Similarity index unavailable, continuing without local postings", zap.Error(err))
			report.IndexUnavailable = true
			return nil
		}
		out := make([]candidate, len(hits))
		for i, h := range hits {
			out[i] = candidate{posting: h.Posting, distance: h.Distance, hasDistance: true}
		}
		return out
	}

	postings, err := s.index.List(ctx, s.poolSize)
	if err != nil {
		s.logger.Warn("Similarity index unavailable, continuing without local postings", zap.Error(err))
		report.IndexUnavailable = true
		return nil
	}
	out := make([]candidate, len(postings))
	for i := range postings {
		out[i] = candidate{posting: postings[i]}
	}
	return out
}

// add appends p unless its dedup key was already taken. First occurrence wins.
func add(pool *Pool, seen map[string]struct{}, p job.Posting) bool {
	key := p.DedupKey()
	if _, dup := seen[key]; dup {
		pool.Report.Duplicates++
		return false
	}
	seen[key] = struct{}{}
	pool.Postings = append(pool.Postings, p)
	return true
}
