// Package scoring turns an aggregated pool into an explained, strictly ordered ranking.
package scoring

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/jobmatch/internal/domain"
	"github.com/kailas-cloud/jobmatch/internal/domain/candidate"
	"github.com/kailas-cloud/jobmatch/internal/domain/job"
	"github.com/kailas-cloud/jobmatch/internal/domain/match"
	"github.com/kailas-cloud/jobmatch/internal/domain/skill"
	"github.com/kailas-cloud/jobmatch/internal/domain/vector"
	"github.com/kailas-cloud/jobmatch/internal/metrics"
)

// Rerank bounds.
const (
	MaxTopM             = 20
	DefaultTopM         = 10
	DefaultRerankWeight = 0.3
	DefaultRerankTime   = 8 * time.Second
	defaultSummaryRunes = 600
	profileSummaryRunes = 2000
)

// Similarity bands used in rationale.
const (
	highSimilarity     = 0.75
	moderateSimilarity = 0.5
)

// embedConcurrency caps on-the-fly posting embeddings in flight per request.
const embedConcurrency = 4

// Service is the Scorer.
type Service struct {
	weights  Weights
	embedder domain.Embedder
	reranker domain.Reranker
	rerank   RerankOptions
	logger   *zap.Logger
}

// New creates a scorer. embedder and reranker are optional.
func New(weights Weights, embedder domain.Embedder, reranker domain.Reranker, opts RerankOptions, logger *zap.Logger) *Service {
	if weights.Vector < 0 || weights.Skills < 0 || weights.Vector+weights.Skills == 0 {
		weights = DefaultWeights()
	}
	if opts.TopM <= 0 {
		opts.TopM = DefaultTopM
	}
	opts.TopM = min(opts.TopM, MaxTopM)
	if opts.Weight < 0 || opts.Weight > 1 {
		opts.Weight = DefaultRerankWeight
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultRerankTime
	}
	if opts.SummaryRunes <= 0 {
		opts.SummaryRunes = defaultSummaryRunes
	}
	if opts.Provider == "" {
		opts.Provider = "none"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{weights: weights, embedder: embedder, reranker: reranker, rerank: opts, logger: logger}
}

type scored struct {
	posting  job.Posting
	sim      float64
	hasSim   bool
	matched  []string
	required int
	base     float64
	llm      float64
	hasLLM   bool
	score    float64
}

// Rank scores every posting and returns them strictly descending by score.
// Equal scores keep local postings ahead of external ones, then the input order.
func (s *Service) Rank(ctx context.Context, in Input) ([]match.Result, Report) {
	var report Report
	if len(in.Postings) == 0 || in.Profile == nil {
		report.Rerank = metrics.RerankSkipped
		return nil, report
	}

	vecs := s.postingVectors(ctx, in, &report)

	items := make([]scored, len(in.Postings))
	for i := range in.Postings {
		items[i] = s.score(in, i, vecs)
	}

	report.Rerank = s.adjust(ctx, in.Profile, items)

	for i := range items {
		items[i].score = round4(items[i].score)
	}
	sort.SliceStable(items, func(a, b int) bool {
		if items[a].score != items[b].score {
			return items[a].score > items[b].score
		}
		return items[a].posting.Source().IsLocal() && !items[b].posting.Source().IsLocal()
	})

	results := make([]match.Result, len(items))
	for i := range items {
		results[i] = match.NewResult(items[i].posting, items[i].score, rationale(&items[i]))
	}
	return results, report
}

func (s *Service) score(in Input, i int, vecs map[string][]float32) scored {
	p := in.Postings[i]
	it := scored{posting: p}

	if in.Profile.HasEmbedding() {
		if d, ok := in.Distances[p.Key()]; ok {
			it.sim, it.hasSim = vector.SimilarityFromDistance(d), true
		} else if v := vecs[p.Key()]; len(v) == len(in.Profile.Embedding()) {
			it.sim, it.hasSim = vector.Clamp01(vector.Cosine(in.Profile.Embedding(), v)), true
		}
	}

	required := p.RequiredSkills()
	it.required = len(required)
	it.matched = skill.Overlap(in.Profile.Skills(), required)

	var sum, weight float64
	if it.hasSim {
		sum += s.weights.Vector * it.sim
		weight += s.weights.Vector
	}
	if it.required > 0 {
		sum += s.weights.Skills * float64(len(it.matched)) / float64(it.required)
		weight += s.weights.Skills
	}
	if weight > 0 {
		it.base = vector.Clamp01(sum / weight)
	}
	it.score = it.base
	return it
}

// postingVectors returns vectors by Posting.Key for postings that have no index distance. Stored
// embeddings are used as is; the rest are embedded once for this request. Failures leave the posting
// without a vector.
func (s *Service) postingVectors(ctx context.Context, in Input, report *Report) map[string][]float32 {
	vecs := make(map[string][]float32)
	if !in.Profile.HasEmbedding() {
		return vecs
	}

	var pending []int
	for i := range in.Postings {
		p := &in.Postings[i]
		key := p.Key()
		if _, ok := in.Distances[key]; ok {
			continue
		}
		if _, done := vecs[key]; done {
			continue
		}
		if emb := p.Embedding(); len(emb) > 0 {
			vecs[key] = emb
			continue
		}
		if s.embedder != nil {
			vecs[key] = nil
			pending = append(pending, i)
		}
	}
	if len(pending) == 0 {
		return vecs
	}

	out := make([][]float32, len(pending))
	var g errgroup.Group
	g.SetLimit(embedConcurrency)
	for n, i := range pending {
		g.Go(func() error {
			res, err := s.embedder.Embed(ctx, in.Postings[i].EmbeddingText())
			if err != nil {
				s.logger.Warn("Posting embedding failed, scoring on skills only",
					zap.String("posting_id", in.Postings[i].ID()), zap.Error(err))
				return nil
			}
			out[n] = res.Embedding
			return nil
		})
	}
	_ = g.Wait()

	for n, i := range pending {
		vecs[in.Postings[i].Key()] = out[n]
		if out[n] != nil {
			report.Embedded++
		}
	}
	return vecs
}

// adjust applies the language-model adjustment to the top-M postings by base score.
// Any failure leaves every score untouched.
func (s *Service) adjust(ctx context.Context, profile *candidate.Profile, items []scored) string {
	if s.reranker == nil || s.rerank.Weight == 0 {
		return metrics.RerankSkipped
	}

	top := make([]int, len(items))
	for i := range top {
		top[i] = i
	}
	sort.SliceStable(top, func(a, b int) bool { return items[top[a]].base > items[top[b]].base })
	top = top[:min(len(top), s.rerank.TopM)]

	// Rerank ids are positions in req: posting ids may repeat across sources.
	req := make([]domain.RerankItem, len(top))
	for n, i := range top {
		p := items[i].posting
		req[n] = domain.RerankItem{
			ID:      strconv.Itoa(n + 1),
			Summary: truncateRunes(p.EmbeddingText(), s.rerank.SummaryRunes),
		}
	}

	rctx, cancel := context.WithTimeout(ctx, s.rerank.Timeout)
	defer cancel()

	outcome := metrics.RerankApplied
	scores, err := s.reranker.Rerank(rctx, profile.Summary(profileSummaryRunes), req)
	switch {
	case err != nil && isCircuitOpen(err):
		outcome = metrics.RerankCircuitOpen
		s.logger.Warn("Rerank skipped: circuit open", zap.String("provider", s.rerank.Provider))
	case err != nil:
		outcome = metrics.RerankFailed
		s.logger.Warn("Rerank failed, using heuristic scores",
			zap.String("provider", s.rerank.Provider), zap.Error(err))
	default:
		if missing := missingIDs(scores, req); len(missing) > 0 {
			outcome = metrics.RerankFailed
			s.logger.Warn("Rerank response incomplete, using heuristic scores",
				zap.String("provider", s.rerank.Provider),
				zap.Strings("missing", missing),
				zap.Error(domain.ErrMalformedRerank))
		}
	}
	metrics.RerankTotal.WithLabelValues(s.rerank.Provider, outcome).Inc()
	if outcome != metrics.RerankApplied {
		return outcome
	}

	w := s.rerank.Weight
	for n, i := range top {
		llm := vector.Clamp01(scores[req[n].ID])
		items[i].llm, items[i].hasLLM = llm, true
		items[i].score = vector.Clamp01((1-w)*items[i].base + w*llm)
	}
	return outcome
}

func missingIDs(scores map[string]float64, req []domain.RerankItem) []string {
	var missing []string
	for _, it := range req {
		v, ok := scores[it.ID]
		if !ok || math.IsNaN(v) || v < 0 || v > 1 {
			missing = append(missing, it.ID)
		}
	}
	return missing
}

// rationale lists reasons in a fixed order: skills, similarity, model adjustment, source.
func rationale(it *scored) []string {
	var out []string
	if it.required > 0 {
		out = append(out, fmt.Sprintf("%d of %d required skills matched", len(it.matched), it.required))
		if len(it.matched) > 0 {
			out = append(out, "matched: "+strings.Join(it.matched, ", "))
		}
	}
	if it.hasSim {
		switch {
		case it.sim >= highSimilarity:
			out = append(out, "high semantic similarity to profile")
		case it.sim >= moderateSimilarity:
			out = append(out, "moderate semantic similarity to profile")
		default:
			out = append(out, "low semantic similarity to profile")
		}
	}
	if it.hasLLM {
		out = append(out, fmt.Sprintf("language model adjustment (%+.2f)", it.score-it.base))
	}
	if it.posting.Source().IsLocal() {
		out = append(out, "sourced from local job store")
	} else {
		out = append(out, "sourced from "+string(it.posting.Source()))
	}
	return out
}

func round4(x float64) float64 {
	return math.Round(x*1e4) / 1e4
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
