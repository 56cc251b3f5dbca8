// Package recommend is the top-level entry point: profile in, explained top-K ranking out.
package recommend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/jobmatch/internal/domain"
	"github.com/kailas-cloud/jobmatch/internal/domain/candidate"
	"github.com/kailas-cloud/jobmatch/internal/domain/match"
	"github.com/kailas-cloud/jobmatch/internal/domain/vector"
	"github.com/kailas-cloud/jobmatch/internal/logger"
	"github.com/kailas-cloud/jobmatch/internal/metrics"
	"github.com/kailas-cloud/jobmatch/internal/usecase/aggregate"
	"github.com/kailas-cloud/jobmatch/internal/usecase/scoring"
)

// Diagnostics attached to a recommendation.
const (
	DiagNoPostings       = "no postings available from any source"
	DiagEmbeddingFailed  = "embedding unavailable: skill overlap only"
	DiagIndexUnavailable = "similarity index unavailable: external sources only"
	DiagRerankNotApplied = "language model adjustment not applied"
)

// Defaults applied by New.
const (
	DefaultMinimumLocal    = 5
	DefaultResumeWeight    = 0.7
	DefaultInterviewWeight = 0.3
)

// Config holds orchestration defaults.
type Config struct {
	MinimumLocalCount int
	ResumeWeight      float64
	InterviewWeight   float64
}

// Recommendation is one served request.
type Recommendation struct {
	ID         string
	Results    []match.Result
	Diagnostic string
	Mode       string // metrics.Mode*
	Sourcing   aggregate.Report
	Rerank     string

	// Embedding usage for this request.
	EmbeddingCalls  int
	EmbeddingTokens int
}

// Service is the Recommendation Orchestrator.
type Service struct {
	embedder  domain.Embedder
	collector collector
	ranker    ranker
	cfg       Config
	logger    *zap.Logger
}

// New creates the orchestrator. embedder may be nil; profiles then rank on skill overlap
// unless they carry their own embedding.
func New(embedder domain.Embedder, c collector, r ranker, cfg Config, logger *zap.Logger) *Service {
	if cfg.MinimumLocalCount <= 0 {
		cfg.MinimumLocalCount = DefaultMinimumLocal
	}
	if cfg.ResumeWeight <= 0 && cfg.InterviewWeight <= 0 {
		cfg.ResumeWeight, cfg.InterviewWeight = DefaultResumeWeight, DefaultInterviewWeight
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{embedder: embedder, collector: c, ranker: r, cfg: cfg, logger: logger}
}

// Recommend ranks postings for profile and returns at most topK of them.
// minLocal <= 0 uses the configured minimum local count.
// Only invalid input is an error; an empty result carries a diagnostic instead.
func (s *Service) Recommend(
	ctx context.Context, profile candidate.Profile, topK, minLocal int,
) (*Recommendation, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidTopK, topK)
	}
	if !profile.HasSignal() {
		return nil, domain.ErrNoProfileSignal
	}
	if minLocal <= 0 {
		minLocal = s.cfg.MinimumLocalCount
	}

	start := time.Now()
	rec := &Recommendation{ID: uuid.NewString()}
	log := logger.FromContextOr(ctx, s.logger).With(zap.String("recommendation_id", rec.ID))

	ctx, usage := domain.NewContextWithUsage(ctx)
	var diags []string

	if !profile.HasEmbedding() {
		if vec, ok := s.embedProfile(ctx, &profile, log); ok {
			profile = profile.WithEmbedding(vec)
		} else if s.embedder != nil {
			diags = append(diags, DiagEmbeddingFailed)
		}
	}

	pool := s.collector.Collect(ctx, aggregate.Query{
		Vector:   profile.Embedding(),
		Terms:    profile.QueryTerms(),
		Location: profile.Location(),
	}, minLocal)
	rec.Sourcing = pool.Report
	if pool.Report.IndexUnavailable {
		diags = append(diags, DiagIndexUnavailable)
	}

	if len(pool.Postings) == 0 {
		rec.Mode = metrics.ModeEmpty
		rec.Rerank = metrics.RerankSkipped
		diags = append(diags, DiagNoPostings)
	} else {
		results, report := s.ranker.Rank(ctx, scoring.Input{
			Profile:   &profile,
			Postings:  pool.Postings,
			Distances: pool.Distances,
		})
		rec.Rerank = report.Rerank
		if report.Rerank == metrics.RerankFailed || report.Rerank == metrics.RerankCircuitOpen {
			diags = append(diags, DiagRerankNotApplied)
		}
		if len(results) > topK {
			results = results[:topK]
		}
		rec.Results = results
		rec.Mode = metrics.ModeLocal
		if pool.Report.External > 0 {
			rec.Mode = metrics.ModeMixed
		}
	}

	rec.Diagnostic = strings.Join(diags, "; ")
	rec.EmbeddingCalls, rec.EmbeddingTokens = usage.Snapshot()

	metrics.RecommendationsTotal.WithLabelValues(rec.Mode).Inc()
	metrics.RecommendationDuration.Observe(time.Since(start).Seconds())

	log.Info("Recommendation served",
		zap.String("mode", rec.Mode),
		zap.Int("results", len(rec.Results)),
		zap.Int("local", pool.Report.Local),
		zap.Int("external", pool.Report.External),
		zap.Int("duplicates", pool.Report.Duplicates),
		zap.String("rerank", rec.Rerank),
		zap.Int("embedding_calls", rec.EmbeddingCalls),
		zap.Duration("duration", time.Since(start)))
	return rec, nil
}

// embedProfile builds the profile vector: resume (with other blocks) and interview text are embedded
// separately and blended. Without any text the role and skills summary is embedded instead.
func (s *Service) embedProfile(ctx context.Context, p *candidate.Profile, log *zap.Logger) ([]float32, bool) {
	if s.embedder == nil {
		return nil, false
	}

	resumeText := p.Text(candidate.BlockResume, candidate.BlockOther)
	interviewText := p.Text(candidate.BlockInterview)
	if resumeText == "" && interviewText == "" {
		resumeText = p.Summary(0)
	}

	resume := s.embed(ctx, "resume", resumeText, log)
	interview := s.embed(ctx, "interview", interviewText, log)

	switch {
	case resume != nil && interview != nil:
		return vector.Blend(resume, s.cfg.ResumeWeight, interview, s.cfg.InterviewWeight), true
	case resume != nil:
		return vector.Normalize(resume), true
	case interview != nil:
		return vector.Normalize(interview), true
	}
	return nil, false
}

func (s *Service) embed(ctx context.Context, kind, text string, log *zap.Logger) []float32 {
	if text == "" {
		return nil
	}
	res, err := s.embedder.Embed(ctx, text)
	if err != nil || len(res.Embedding) == 0 {
		log.Warn("Profile embedding failed", zap.String("block", kind), zap.Error(err))
		return nil
	}
	return res.Embedding
}
