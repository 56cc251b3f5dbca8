package scoring

import (
	"time"

	"github.com/kailas-cloud/jobmatch/internal/domain/candidate"
	"github.com/kailas-cloud/jobmatch/internal/domain/job"
)

// Weights are the relative contributions of the heuristic components.
type Weights struct {
	Vector float64
	Skills float64
}

// DefaultWeights favour semantic similarity over literal skill overlap.
func DefaultWeights() Weights { return Weights{Vector: 0.6, Skills: 0.4} }

// RerankOptions bounds the language-model adjustment.
type RerankOptions struct {
	Provider string // metrics label
	Weight   float64
	TopM     int
	Timeout  time.Duration
	// SummaryRunes truncates each posting summary offered to the model.
	SummaryRunes int
}

// Input is one ranking pass.
type Input struct {
	Profile  *candidate.Profile
	Postings []job.Posting
	// Distances are raw index distances by Posting.Key.
	Distances map[string]float64
}

// Report tells the caller which signals contributed.
type Report struct {
	Rerank   string // metrics.Rerank* outcome
	Embedded int    // postings embedded on the fly
}
