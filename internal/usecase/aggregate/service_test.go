package aggregate

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/kailas-cloud/jobmatch/internal/domain"
	"github.com/kailas-cloud/jobmatch/internal/domain/job"
	"github.com/kailas-cloud/jobmatch/internal/repository/jobindex"
)

func TestCollect_LocalSufficientSkipsGateway(t *testing.T) {
	local := make([]job.Posting, 5)
	for i := range local {
		local[i] = posting(t, job.SourceLocal, fmt.Sprintf("l%d", i), fmt.Sprintf("Role %d", i), "Acme")
	}
	idx := &mockIndex{searchFn: func(context.Context, []float32, int) ([]jobindex.Hit, error) {
		return hits(local...), nil
	}}
	gw := &mockGateway{postings: []job.Posting{posting(t, "adzuna", "1", "Other", "Beta")}}

	pool := New(idx, gw, 20, 20, nil).Collect(context.Background(), Query{Vector: []float32{1, 0, 0}}, 5)

	if gw.calls != 0 {
		t.Errorf("expected gateway not called, got %d calls", gw.calls)
	}
	if len(pool.Postings) != 5 {
		t.Errorf("expected 5 postings, got %d", len(pool.Postings))
	}
	if pool.Report.GatewayCalled {
		t.Error("report should not mark the gateway as called")
	}
	if d, ok := pool.Distances[local[0].Key()]; !ok || d != 0.1 {
		t.Errorf("expected distance carried for l0, got %v (%v)", d, ok)
	}
}

func TestCollect_BackfillsShortfall(t *testing.T) {
	local := []job.Posting{
		posting(t, job.SourceLocal, "l1", "Go Developer", "Acme"),
		posting(t, job.SourceLocal, "l2", "Data Engineer", "Acme"),
	}
	external := []job.Posting{
		posting(t, "adzuna", "1", "Platform Engineer", "Beta"),
		posting(t, "adzuna", "2", "SRE", "Gamma"),
		posting(t, "adzuna", "3", "Backend Engineer", "Delta"),
		posting(t, "adzuna", "4", "ML Engineer", "Epsilon"),
	}
	idx := &mockIndex{searchFn: func(context.Context, []float32, int) ([]jobindex.Hit, error) {
		return hits(local...), nil
	}}
	gw := &mockGateway{postings: external}

	pool := New(idx, gw, 20, 20, nil).Collect(context.Background(),
		Query{Vector: []float32{1, 0, 0}, Terms: []string{"golang"}, Location: "Berlin"}, 5)

	if len(pool.Postings) != 6 {
		t.Fatalf("expected 6 postings, got %d", len(pool.Postings))
	}
	if !pool.Postings[0].Source().IsLocal() || !pool.Postings[1].Source().IsLocal() {
		t.Error("local postings must come first")
	}
	if pool.Report.Local != 2 || pool.Report.External != 4 || !pool.Report.GatewayCalled {
		t.Errorf("unexpected report %+v", pool.Report)
	}
	if gw.lastQ.Limit != 20 {
		t.Errorf("expected external limit max(shortfall, external max)=20, got %d", gw.lastQ.Limit)
	}
	if gw.lastQ.Location != "Berlin" || len(gw.lastQ.Terms) != 1 {
		t.Errorf("query not forwarded: %+v", gw.lastQ)
	}
}

func TestCollect_ShortfallLargerThanExternalMax(t *testing.T) {
	gw := &mockGateway{}
	New(&mockIndex{}, gw, 20, 3, nil).Collect(context.Background(), Query{}, 10)

	if gw.lastQ.Limit != 10 {
		t.Errorf("expected limit 10, got %d", gw.lastQ.Limit)
	}
}

func TestCollect_LocalWinsDuplicates(t *testing.T) {
	local := posting(t, job.SourceLocal, "l1", "Data Engineer", "Acme Corp")
	dup := posting(t, "serpapi", "x", "  data   ENGINEER ", "acme corp")
	idx := &mockIndex{searchFn: func(context.Context, []float32, int) ([]jobindex.Hit, error) {
		return hits(local), nil
	}}
	gw := &mockGateway{postings: []job.Posting{dup}}

	pool := New(idx, gw, 20, 20, nil).Collect(context.Background(), Query{Vector: []float32{1}}, 5)

	if len(pool.Postings) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(pool.Postings))
	}
	if pool.Postings[0].ID() != "l1" {
		t.Errorf("expected local posting kept, got %s", pool.Postings[0].ID())
	}
	if pool.Report.Duplicates != 1 {
		t.Errorf("expected 1 duplicate, got %d", pool.Report.Duplicates)
	}
}

func TestCollect_DedupKeysDistinct(t *testing.T) {
	local := []job.Posting{
		posting(t, job.SourceLocal, "l1", "Go Developer", "Acme"),
		posting(t, job.SourceLocal, "l2", "go developer", "ACME"),
	}
	external := []job.Posting{
		posting(t, "adzuna", "1", "Go Developer", "Acme"),
		posting(t, "remotive", "2", "SRE", "Beta"),
		posting(t, "adzuna", "3", "SRE", "beta"),
	}
	idx := &mockIndex{listFn: func(context.Context, int) ([]job.Posting, error) { return local, nil }}
	gw := &mockGateway{postings: external}

	pool := New(idx, gw, 20, 20, nil).Collect(context.Background(), Query{}, 5)

	keys := make(map[string]bool)
	for _, p := range pool.Postings {
		k := p.DedupKey()
		if keys[k] {
			t.Errorf("duplicate dedup key %q", k)
		}
		keys[k] = true
	}
	if len(pool.Postings) != 2 || pool.Report.Duplicates != 3 {
		t.Errorf("expected 2 postings and 3 duplicates, got %d and %d", len(pool.Postings), pool.Report.Duplicates)
	}
}

func TestCollect_NoVectorUsesList(t *testing.T) {
	searched := false
	idx := &mockIndex{
		searchFn: func(context.Context, []float32, int) ([]jobindex.Hit, error) {
			searched = true
			return nil, nil
		},
		listFn: func(_ context.Context, k int) ([]job.Posting, error) {
			if k != 7 {
				t.Errorf("expected pool size 7, got %d", k)
			}
			return []job.Posting{posting(t, job.SourceLocal, "l1", "Go Developer", "Acme")}, nil
		},
	}

	pool := New(idx, nil, 7, 20, nil).Collect(context.Background(), Query{}, 5)

	if searched {
		t.Error("vector search must not run without a vector")
	}
	if len(pool.Postings) != 1 || len(pool.Distances) != 0 {
		t.Errorf("expected 1 posting without distance, got %d / %d", len(pool.Postings), len(pool.Distances))
	}
}

func TestCollect_IndexUnavailableFallsBackToGateway(t *testing.T) {
	idx := &mockIndex{searchFn: func(context.Context, []float32, int) ([]jobindex.Hit, error) {
		return nil, fmt.Errorf("search: %w: %w", domain.ErrIndexUnavailable, errors.New("dial tcp"))
	}}
	gw := &mockGateway{postings: []job.Posting{posting(t, "remotive", "1", "Go Developer", "Acme")}}

	pool := New(idx, gw, 20, 20, nil).Collect(context.Background(), Query{Vector: []float32{1}}, 1)

	if !pool.Report.IndexUnavailable {
		t.Error("expected index failure reported")
	}
	if gw.calls != 1 || len(pool.Postings) != 1 {
		t.Errorf("expected gateway backfill, calls=%d postings=%d", gw.calls, len(pool.Postings))
	}
}

func TestCollect_NothingAnywhere(t *testing.T) {
	gw := &mockGateway{}
	pool := New(&mockIndex{}, gw, 20, 20, nil).Collect(context.Background(), Query{}, 5)

	if len(pool.Postings) != 0 {
		t.Errorf("expected empty pool, got %d", len(pool.Postings))
	}
	if !pool.Report.GatewayCalled {
		t.Error("expected gateway attempted")
	}
}

func TestCollect_DistancesKeyedBySource(t *testing.T) {
	local := posting(t, job.SourceLocal, "remotive:1", "Go Engineer", "Acme")
	ext := posting(t, "remotive", "1", "Pastry Chef", "Bakery")
	if local.ID() != ext.ID() {
		t.Fatalf("fixture ids should collide, got %s and %s", local.ID(), ext.ID())
	}
	idx := &mockIndex{searchFn: func(context.Context, []float32, int) ([]jobindex.Hit, error) {
		return hits(local), nil
	}}
	gw := &mockGateway{postings: []job.Posting{ext}}

	pool := New(idx, gw, 20, 20, nil).Collect(context.Background(), Query{Vector: []float32{1, 0}}, 5)

	if len(pool.Postings) != 2 {
		t.Fatalf("expected both postings, got %d", len(pool.Postings))
	}
	if _, ok := pool.Distances[local.Key()]; !ok {
		t.Error("expected distance for the local posting")
	}
	if _, ok := pool.Distances[ext.Key()]; ok {
		t.Error("external posting must not inherit the local distance")
	}
}
