// Package batch holds per-item outcomes of bulk posting ingest.
package batch

// ItemStatus is the processing outcome of a single ingested posting.
type ItemStatus string

// Item status values.
const (
	StatusOK      ItemStatus = "ok"
	StatusSkipped ItemStatus = "skipped"
	StatusError   ItemStatus = "error"
)

// Result is the outcome of ingesting one posting.
type Result struct {
	id     string
	origin string
	status ItemStatus
	err    error
}

// NewOK creates a successful result for the posting id read from origin.
func NewOK(id, origin string) Result { return Result{id: id, origin: origin, status: StatusOK} }

// NewSkipped creates a result for a posting that was intentionally not written; reason explains why.
func NewSkipped(id, origin string, reason error) Result {
	return Result{id: id, origin: origin, status: StatusSkipped, err: reason}
}

// NewError creates a failed result.
func NewError(id, origin string, err error) Result {
	return Result{id: id, origin: origin, status: StatusError, err: err}
}

// ID returns the posting identifier, empty when the record never got one.
func (r Result) ID() string { return r.id }

// Origin returns the file (or other input) the posting came from.
func (r Result) Origin() string { return r.origin }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// Err returns the error or skip reason, if any.
func (r Result) Err() error { return r.err }

// Summary counts results by status.
type Summary struct {
	OK      int
	Skipped int
	Failed  int
}

// Summarize counts results by status.
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		switch r.status {
		case StatusOK:
			s.OK++
		case StatusSkipped:
			s.Skipped++
		case StatusError:
			s.Failed++
		}
	}
	return s
}
