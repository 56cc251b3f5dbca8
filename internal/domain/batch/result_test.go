package batch

import (
	"errors"
	"testing"
)

func TestNewOK(t *testing.T) {
	r := NewOK("job-1", "jobs.json")
	if r.ID() != "job-1" || r.Origin() != "jobs.json" {
		t.Errorf("ID() = %q, Origin() = %q", r.ID(), r.Origin())
	}
	if r.Status() != StatusOK {
		t.Errorf("Status() = %q, want %q", r.Status(), StatusOK)
	}
	if r.Err() != nil {
		t.Errorf("Err() = %v, want nil", r.Err())
	}
}

func TestNewSkipped(t *testing.T) {
	reason := errors.New("duplicate")
	r := NewSkipped("job-2", "a.json", reason)
	if r.Status() != StatusSkipped {
		t.Errorf("Status() = %q, want %q", r.Status(), StatusSkipped)
	}
	if !errors.Is(r.Err(), reason) {
		t.Errorf("Err() = %v, want %v", r.Err(), reason)
	}
}

func TestNewError(t *testing.T) {
	err := errors.New("something failed")
	r := NewError("job-3", "b.json", err)
	if r.Status() != StatusError {
		t.Errorf("Status() = %q, want %q", r.Status(), StatusError)
	}
	if !errors.Is(r.Err(), err) {
		t.Errorf("Err() = %v, want %v", r.Err(), err)
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]Result{
		NewOK("a", "f"),
		NewOK("b", "f"),
		NewSkipped("c", "f", errors.New("dup")),
		NewError("", "g", errors.New("bad json")),
	})
	if s.OK != 2 || s.Skipped != 1 || s.Failed != 1 {
		t.Errorf("Summarize() = %+v", s)
	}
}
