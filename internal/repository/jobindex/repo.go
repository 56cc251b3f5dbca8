// Package jobindex is the similarity index over locally owned job postings.
// Postings are stored as hashes and searched by KNN over cosine distance.
package jobindex

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/jobmatch/internal/db"
	"github.com/kailas-cloud/jobmatch/internal/domain"
	"github.com/kailas-cloud/jobmatch/internal/domain/job"
)

var (
	// IndexName is the FT index over local postings.
	IndexName = domain.KeyPrefix + "jobs:idx"
	// KeyPrefix prefixes every posting hash key.
	KeyPrefix = domain.KeyPrefix + "job:"
)

const (
	defaultHNSWM           = 16
	defaultHNSWEFConstruct = 200

	resetPageSize = 500
)

// store is the consumer interface for the job index.
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// Hit is a posting with its raw cosine distance; smaller is more similar.
type Hit struct {
	Posting  job.Posting
	Distance float64
}

// Repo implements the similarity index.
type Repo struct {
	store      store
	dimensions int
	hnswM      int
	hnswEF     int
}

// New creates a job index over s for vectors of the given dimension.
func New(s store, dimensions int) *Repo {
	if dimensions <= 0 {
		dimensions = domain.DefaultDimensions
	}
	return &Repo{store: s, dimensions: dimensions, hnswM: defaultHNSWM, hnswEF: defaultHNSWEFConstruct}
}

// WithHNSW overrides the HNSW graph parameters used when the index is created.
func (r *Repo) WithHNSW(m, efConstruction int) *Repo {
	if m > 0 {
		r.hnswM = m
	}
	if efConstruction > 0 {
		r.hnswEF = efConstruction
	}
	return r
}

// Dimensions returns the configured vector dimension.
func (r *Repo) Dimensions() int { return r.dimensions }

// Definition returns the FT index definition for postings.
func (r *Repo) Definition() (*db.IndexDefinition, error) {
	return db.NewIndex(IndexName).
		Prefix(KeyPrefix).
		Text(fieldTitle).
		Text(fieldCompany).
		Tag(fieldSkills, skillSeparator).
		Tag(fieldSource, "").
		Tag(fieldSeniority, "").
		VectorHNSW(fieldVector, "vector", r.dimensions, db.DistanceCosine, r.hnswM, r.hnswEF).
		Build()
}

// EnsureIndex creates the index when it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, IndexName)
	if err != nil {
		return unavailable("index info", err)
	}
	if exists {
		return nil
	}

	def, err := r.Definition()
	if err != nil {
		return fmt.Errorf("build index definition: %w", err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return unavailable("create index", err)
	}
	return nil
}

// Upsert writes a local posting with its embedding.
func (r *Repo) Upsert(ctx context.Context, p *job.Posting) error {
	if err := r.validate(p); err != nil {
		return err
	}
	if err := r.store.HSet(ctx, postingKey(p.ID()), buildHashFields(p)); err != nil {
		return unavailable("hset "+p.ID(), err)
	}
	return nil
}

// UpsertMany writes postings in one round-trip. Any invalid posting rejects the whole batch.
func (r *Repo) UpsertMany(ctx context.Context, postings []job.Posting) error {
	if len(postings) == 0 {
		return nil
	}
	items := make([]db.HashSetItem, 0, len(postings))
	for i := range postings {
		p := &postings[i]
		if err := r.validate(p); err != nil {
			return err
		}
		items = append(items, db.HashSetItem{Key: postingKey(p.ID()), Fields: buildHashFields(p)})
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return unavailable("hset batch", err)
	}
	return nil
}

// Search returns up to k postings nearest to vec, closest first.
// A missing index is an empty result.
func (r *Repo) Search(ctx context.Context, vec []float32, k int) ([]Hit, error) {
	if k <= 0 {
		return nil, nil
	}
	if len(vec) != r.dimensions {
		return nil, fmt.Errorf("query vector has %d dimensions, index expects %d: %w",
			len(vec), r.dimensions, domain.ErrIndexUnavailable)
	}

	res, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    IndexName,
		Vector:       vec,
		K:            k,
		ReturnFields: returnFields,
	})
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return nil, nil
		}
		return nil, unavailable("knn search", err)
	}

	hits := make([]Hit, 0, len(res.Entries))
	for _, e := range res.Entries {
		hits = append(hits, Hit{
			Posting:  parseHashFields(postingID(e.Key), e.Fields),
			Distance: e.Distance,
		})
		if len(hits) == k {
			break
		}
	}
	return hits, nil
}

// List returns up to k postings in storage order, for callers without a query vector.
func (r *Repo) List(ctx context.Context, k int) ([]job.Posting, error) {
	if k <= 0 {
		return nil, nil
	}
	res, err := r.store.SearchList(ctx, IndexName, "*", 0, k, returnFields)
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return nil, nil
		}
		return nil, unavailable("list", err)
	}

	out := make([]job.Posting, 0, len(res.Entries))
	for _, e := range res.Entries {
		out = append(out, parseHashFields(postingID(e.Key), e.Fields))
		if len(out) == k {
			break
		}
	}
	return out, nil
}

// Size returns the number of indexed postings.
func (r *Repo) Size(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, IndexName, "*")
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return 0, nil
		}
		return 0, unavailable("count", err)
	}
	return n, nil
}

// Get loads a single local posting, embedding included.
func (r *Repo) Get(ctx context.Context, id string) (job.Posting, error) {
	m, err := r.store.HGetAll(ctx, postingKey(id))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return job.Posting{}, fmt.Errorf("posting %s: %w", id, domain.ErrPostingNotFound)
		}
		return job.Posting{}, unavailable("hgetall "+id, err)
	}
	return parseHashFields(id, m), nil
}

// Delete removes a local posting. Deleting an absent posting is not an error.
func (r *Repo) Delete(ctx context.Context, id string) error {
	if err := r.store.Del(ctx, postingKey(id)); err != nil {
		return unavailable("del "+id, err)
	}
	return nil
}

// Reset deletes every indexed posting and drops the index, returning how many postings were removed.
// The next EnsureIndex recreates the index with the current definition.
func (r *Repo) Reset(ctx context.Context) (int, error) {
	total, err := r.Size(ctx)
	if err != nil {
		return 0, err
	}

	keys := make([]string, 0, total)
	for offset := 0; offset < total; offset += resetPageSize {
		res, err := r.store.SearchList(ctx, IndexName, "*", offset, resetPageSize, []string{fieldSource})
		if err != nil {
			return 0, unavailable("list", err)
		}
		if len(res.Entries) == 0 {
			break
		}
		for _, e := range res.Entries {
			keys = append(keys, e.Key)
		}
	}

	for n, key := range keys {
		if err := r.store.Del(ctx, key); err != nil {
			return n, unavailable("del "+postingID(key), err)
		}
	}

	if err := r.store.DropIndex(ctx, IndexName); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return len(keys), unavailable("drop index", err)
	}
	return len(keys), nil
}

func (r *Repo) validate(p *job.Posting) error {
	if !p.Source().IsLocal() {
		return fmt.Errorf("posting %s has source %q, only local postings are indexed: %w",
			p.ID(), p.Source(), domain.ErrInvalidPosting)
	}
	if len(p.Embedding()) != r.dimensions {
		return fmt.Errorf("posting %s embedding has %d dimensions, want %d: %w",
			p.ID(), len(p.Embedding()), r.dimensions, domain.ErrInvalidPosting)
	}
	return nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("job index %s: %w: %w", op, domain.ErrIndexUnavailable, err)
}

func postingKey(id string) string {
	return KeyPrefix + id
}

func postingID(key string) string {
	return strings.TrimPrefix(key, KeyPrefix)
}
