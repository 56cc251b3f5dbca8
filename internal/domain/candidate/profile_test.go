package candidate

import (
	"errors"
	"reflect"
	"testing"

	"github.com/kailas-cloud/jobmatch/internal/domain"
)

func TestNew_NormalisesAndDropsBlankBlocks(t *testing.T) {
	p, err := New(Fields{
		Skills: []string{"Python", " SQL ", "python"},
		Blocks: []TextBlock{
			{Kind: BlockResume, Text: "Five years of Python"},
			{Kind: BlockInterview, Text: "   "},
			{Text: "defaults to resume"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(p.Skills(), []string{"python", "sql"}) {
		t.Errorf("unexpected skills: %v", p.Skills())
	}
	if len(p.Blocks()) != 2 || p.Blocks()[1].Kind != BlockResume {
		t.Errorf("unexpected blocks: %+v", p.Blocks())
	}
}

func TestNew_UnknownBlockKind(t *testing.T) {
	_, err := New(Fields{Blocks: []TextBlock{{Kind: "cover_letter", Text: "x"}}})
	if !errors.Is(err, domain.ErrInvalidProfile) {
		t.Fatalf("expected ErrInvalidProfile, got %v", err)
	}
}

func TestHasSignal(t *testing.T) {
	empty, _ := New(Fields{})
	if empty.HasSignal() {
		t.Error("empty profile must have no signal")
	}
	withText, _ := New(Fields{Blocks: []TextBlock{{Text: "hello"}}})
	if !withText.HasSignal() {
		t.Error("text block is signal")
	}
	withVec, _ := New(Fields{Embedding: []float32{1}})
	if !withVec.HasSignal() {
		t.Error("embedding is signal")
	}
}

func TestWithEmbedding_Immutable(t *testing.T) {
	p, _ := New(Fields{Skills: []string{"go"}})
	q := p.WithEmbedding([]float32{0.5})
	if p.HasEmbedding() {
		t.Error("original profile must not gain an embedding")
	}
	if !q.HasEmbedding() {
		t.Error("copy must carry the embedding")
	}
}

func TestQueryTerms(t *testing.T) {
	p, _ := New(Fields{RoleTarget: "Data Engineer", Skills: []string{"a", "b", "c", "d", "e", "f"}})
	want := []string{"Data Engineer", "a", "b", "c", "d", "e"}
	if got := p.QueryTerms(); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	empty, _ := New(Fields{Blocks: []TextBlock{{Text: "x"}}})
	if got := empty.QueryTerms(); !reflect.DeepEqual(got, []string{DefaultQueryTerm}) {
		t.Errorf("expected default term, got %v", got)
	}
}

func TestText_FiltersByKind(t *testing.T) {
	p, _ := New(Fields{Blocks: []TextBlock{
		{Kind: BlockResume, Text: "r1"},
		{Kind: BlockInterview, Text: "i1"},
		{Kind: BlockOther, Text: "o1"},
	}})
	if got := p.Text(BlockResume, BlockOther); got != "r1\n\no1" {
		t.Errorf("unexpected text: %q", got)
	}
	if got := p.Text(BlockInterview); got != "i1" {
		t.Errorf("unexpected interview text: %q", got)
	}
}

func TestSummary_Truncates(t *testing.T) {
	p, _ := New(Fields{RoleTarget: "Engineer", Skills: []string{"go"}})
	if got := p.Summary(8); got != "Target r" {
		t.Errorf("unexpected summary: %q", got)
	}
}
