// Package ingest seeds the local job index from JSON files.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/kailas-cloud/jobmatch/internal/domain"
	"github.com/kailas-cloud/jobmatch/internal/domain/batch"
	"github.com/kailas-cloud/jobmatch/internal/domain/job"
)

// DefaultBatchSize is the number of postings written per store round-trip.
const DefaultBatchSize = 50

// ErrDuplicate marks a posting whose dedup key was already seen in this run.
var ErrDuplicate = errors.New("duplicate posting")

// Service embeds postings and writes them to the local index.
type Service struct {
	index     index
	embedder  domain.Embedder
	batchSize int
	logger    *zap.Logger
}

// New creates an ingest service.
func New(idx index, embedder domain.Embedder, batchSize int, logger *zap.Logger) *Service {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{index: idx, embedder: embedder, batchSize: batchSize, logger: logger}
}

type pending struct {
	posting job.Posting
	result  int
}

// run is the state of one ingest invocation.
type run struct {
	results []batch.Result
	seen    map[string]struct{}
	queue   []pending
}

// IngestPaths ingests every file given; directories contribute their *.json files in name order.
// Per-file and per-posting failures are reported in the results. The error is non-nil only when
// the index cannot be prepared or written.
func (s *Service) IngestPaths(ctx context.Context, paths []string) ([]batch.Result, error) {
	files, err := expand(paths)
	if err != nil {
		return nil, err
	}
	if err := s.index.EnsureIndex(ctx); err != nil {
		return nil, fmt.Errorf("ensure index: %w", err)
	}

	r := &run{seen: make(map[string]struct{})}
	for _, file := range files {
		records, err := readFile(file)
		if err != nil {
			s.logger.Warn("Skipping unreadable postings file", zap.String("file", file), zap.Error(err))
			r.results = append(r.results, batch.NewError("", file, err))
			continue
		}
		if err := s.add(ctx, r, file, records); err != nil {
			return r.results, err
		}
	}
	if err := s.flush(ctx, r); err != nil {
		return r.results, err
	}

	sum := batch.Summarize(r.results)
	s.logger.Info("Ingest finished",
		zap.Int("files", len(files)),
		zap.Int("loaded", sum.OK),
		zap.Int("skipped", sum.Skipped),
		zap.Int("failed", sum.Failed))
	return r.results, nil
}

// Ingest writes records that came from a single origin.
func (s *Service) Ingest(ctx context.Context, origin string, records []Record) ([]batch.Result, error) {
	if err := s.index.EnsureIndex(ctx); err != nil {
		return nil, fmt.Errorf("ensure index: %w", err)
	}
	r := &run{seen: make(map[string]struct{})}
	if err := s.add(ctx, r, origin, records); err != nil {
		return r.results, err
	}
	if err := s.flush(ctx, r); err != nil {
		return r.results, err
	}
	return r.results, nil
}

func (s *Service) add(ctx context.Context, r *run, origin string, records []Record) error {
	for i := range records {
		p, err := records[i].Posting()
		if err != nil {
			r.results = append(r.results, batch.NewError(records[i].ID, origin, err))
			continue
		}

		key := p.DedupKey()
		if _, dup := r.seen[key]; dup {
			s.logger.Info("Skipping duplicate posting",
				zap.String("title", p.Title()), zap.String("company", p.Company()), zap.String("file", origin))
			r.results = append(r.results, batch.NewSkipped(p.ID(), origin, ErrDuplicate))
			continue
		}
		r.seen[key] = struct{}{}

		res, err := s.embedder.Embed(ctx, p.EmbeddingText())
		if err != nil {
			r.results = append(r.results, batch.NewError(p.ID(), origin, fmt.Errorf("embed: %w", err)))
			continue
		}

		r.results = append(r.results, batch.NewOK(p.ID(), origin))
		r.queue = append(r.queue, pending{posting: p.WithEmbedding(res.Embedding), result: len(r.results) - 1})
		if len(r.queue) >= s.batchSize {
			if err := s.flush(ctx, r); err != nil {
				return err
			}
		}
	}
	return nil
}

// flush writes queued postings. A rejected batch marks its postings failed; an unreachable index aborts.
func (s *Service) flush(ctx context.Context, r *run) error {
	if len(r.queue) == 0 {
		return nil
	}
	postings := make([]job.Posting, len(r.queue))
	for i, q := range r.queue {
		postings[i] = q.posting
	}

	err := s.index.UpsertMany(ctx, postings)
	if err != nil {
		for _, q := range r.queue {
			prev := r.results[q.result]
			r.results[q.result] = batch.NewError(prev.ID(), prev.Origin(), fmt.Errorf("upsert: %w", err))
		}
	}
	r.queue = r.queue[:0]

	if errors.Is(err, domain.ErrIndexUnavailable) {
		return fmt.Errorf("write postings: %w", err)
	}
	return nil
}

func expand(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(p, "*.json"))
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", p, err)
		}
		sort.Strings(matches)
		files = append(files, matches...)
	}
	return files, nil
}

func readFile(path string) ([]Record, error) {
	f, err := os.Open(path) //nolint:gosec // operator-supplied seed file
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}
