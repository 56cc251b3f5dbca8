package skill

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Python", "python"},
		{"  Machine   Learning ", "machine learning"},
		{"Golang", "go"},
		{"K8s", "kubernetes"},
		{"Postgres", "postgresql"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeAll_DedupKeepsOrder(t *testing.T) {
	got := NormalizeAll([]string{"SQL", "python", " sql ", "", "JS", "javascript"})
	want := []string{"sql", "python", "javascript"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestExtract(t *testing.T) {
	text := "We need a Senior engineer with Python, PostgreSQL and AWS. Experience with Kubernetes (k8s) and CI/CD."
	got := Extract(text, 0)
	want := []string{"python", "postgresql", "aws", "kubernetes", "ci/cd"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestExtract_WordBoundaries(t *testing.T) {
	got := Extract("Send an email about our JavaScript stack", 0)
	want := []string{"javascript"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v (no 'ai' from email, no 'java' from javascript)", got, want)
	}
}

func TestExtract_Limit(t *testing.T) {
	got := Extract("python java sql docker git linux aws azure", 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 skills, got %v", got)
	}
	if got[0] != "python" || got[1] != "java" {
		t.Errorf("expected vocabulary order, got %v", got)
	}
}

func TestExtract_Empty(t *testing.T) {
	if got := Extract("   ", 5); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

func TestOverlap(t *testing.T) {
	got := Overlap([]string{"python", "sql"}, []string{"python", "sql", "aws"})
	if !reflect.DeepEqual(got, []string{"python", "sql"}) {
		t.Errorf("unexpected overlap: %v", got)
	}
	if Overlap(nil, []string{"aws"}) != nil {
		t.Error("expected nil overlap for empty candidate skills")
	}
}
