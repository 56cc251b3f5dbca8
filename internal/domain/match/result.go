// Package match holds ranking output.
package match

import "github.com/kailas-cloud/jobmatch/internal/domain/job"

// Result is one ranked posting. Produced once per ranking pass.
type Result struct {
	posting   job.Posting
	score     float64
	rationale []string
}

// NewResult creates a Result. The rationale slice is copied.
func NewResult(p job.Posting, score float64, rationale []string) Result {
	r := make([]string, len(rationale))
	copy(r, rationale)
	return Result{posting: p, score: score, rationale: r}
}

// Posting returns the matched job.
func (r *Result) Posting() job.Posting { return r.posting }

// Score returns the composite score in [0,1].
func (r *Result) Score() float64 { return r.score }

// Rationale returns the ordered reasons behind the score.
func (r *Result) Rationale() []string { return r.rationale }

// Source returns the posting's source tag.
func (r *Result) Source() job.Source { return r.posting.Source() }
