// Package candidate defines the CandidateProfile used as the query side of matching.
package candidate

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/jobmatch/internal/domain"
	"github.com/kailas-cloud/jobmatch/internal/domain/skill"
)

// BlockKind classifies a raw text block.
type BlockKind string

// Block kinds. Other blocks are embedded together with the resume.
const (
	BlockResume    BlockKind = "resume"
	BlockInterview BlockKind = "interview"
	BlockOther     BlockKind = "other"
)

// DefaultQueryTerm is used for provider searches when the profile has no role or skills.
const DefaultQueryTerm = "software developer"

// maxQuerySkills bounds how many skills go into provider search terms.
const maxQuerySkills = 5

// TextBlock is one ordered piece of raw profile text.
type TextBlock struct {
	Kind BlockKind
	Text string
}

// Fields is the input for New.
type Fields struct {
	Skills     []string
	Blocks     []TextBlock
	RoleTarget string
	Location   string
	Embedding  []float32
}

// Profile is built once per recommendation request and never mutated.
type Profile struct {
	skills     []string
	blocks     []TextBlock
	roleTarget string
	location   string
	embedding  []float32
}

// New normalises skills, drops blank blocks and validates block kinds.
// A profile without any signal is still constructible; see HasSignal.
func New(f Fields) (Profile, error) {
	blocks := make([]TextBlock, 0, len(f.Blocks))
	for i, b := range f.Blocks {
		kind := b.Kind
		if kind == "" {
			kind = BlockResume
		}
		switch kind {
		case BlockResume, BlockInterview, BlockOther:
		default:
			return Profile{}, fmt.Errorf("block %d: unknown kind %q: %w", i, b.Kind, domain.ErrInvalidProfile)
		}
		text := strings.TrimSpace(b.Text)
		if text == "" {
			continue
		}
		blocks = append(blocks, TextBlock{Kind: kind, Text: text})
	}

	var emb []float32
	if len(f.Embedding) > 0 {
		emb = make([]float32, len(f.Embedding))
		copy(emb, f.Embedding)
	}

	return Profile{
		skills:     skill.NormalizeAll(f.Skills),
		blocks:     blocks,
		roleTarget: strings.TrimSpace(f.RoleTarget),
		location:   strings.TrimSpace(f.Location),
		embedding:  emb,
	}, nil
}

// Skills returns the normalised skill set in first-seen order.
func (p *Profile) Skills() []string { return p.skills }

// Blocks returns the non-blank text blocks in order.
func (p *Profile) Blocks() []TextBlock { return p.blocks }

// RoleTarget returns the desired role, possibly empty.
func (p *Profile) RoleTarget() string { return p.roleTarget }

// Location returns the preferred location, possibly empty.
func (p *Profile) Location() string { return p.location }

// Embedding returns the profile vector, or nil.
func (p *Profile) Embedding() []float32 { return p.embedding }

// HasEmbedding reports whether a vector is attached.
func (p *Profile) HasEmbedding() bool { return len(p.embedding) > 0 }

// HasSignal reports whether the profile carries skills, embeddable text or a vector.
func (p *Profile) HasSignal() bool {
	return len(p.skills) > 0 || len(p.blocks) > 0 || p.roleTarget != "" || p.HasEmbedding()
}

// WithEmbedding returns a copy carrying vec. The receiver is left untouched.
func (p Profile) WithEmbedding(vec []float32) Profile {
	p.embedding = make([]float32, len(vec))
	copy(p.embedding, vec)
	return p
}

// Text joins the blocks of the given kinds in their original order.
func (p *Profile) Text(kinds ...BlockKind) string {
	parts := make([]string, 0, len(p.blocks))
	for _, b := range p.blocks {
		for _, k := range kinds {
			if b.Kind == k {
				parts = append(parts, b.Text)
				break
			}
		}
	}
	return strings.Join(parts, "\n\n")
}

// QueryTerms returns provider search terms: role target first, then up to five skills.
func (p *Profile) QueryTerms() []string {
	terms := make([]string, 0, maxQuerySkills+1)
	if p.roleTarget != "" {
		terms = append(terms, p.roleTarget)
	}
	for i, s := range p.skills {
		if i == maxQuerySkills {
			break
		}
		terms = append(terms, s)
	}
	if len(terms) == 0 {
		terms = append(terms, DefaultQueryTerm)
	}
	return terms
}

// Summary renders a compact description for language-model prompts, truncated to maxRunes.
func (p *Profile) Summary(maxRunes int) string {
	var b strings.Builder
	if p.roleTarget != "" {
		b.WriteString("Target role: ")
		b.WriteString(p.roleTarget)
		b.WriteString("\n")
	}
	if len(p.skills) > 0 {
		b.WriteString("Skills: ")
		b.WriteString(strings.Join(p.skills, ", "))
		b.WriteString("\n")
	}
	if text := p.Text(BlockResume, BlockInterview, BlockOther); text != "" {
		b.WriteString(text)
	}
	return truncateRunes(strings.TrimSpace(b.String()), maxRunes)
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
