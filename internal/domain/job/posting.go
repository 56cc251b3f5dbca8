// Package job defines the JobPosting aggregate shared by local and external sources.
package job

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/kailas-cloud/jobmatch/internal/domain"
	"github.com/kailas-cloud/jobmatch/internal/domain/skill"
)

// Source tags where a posting came from: SourceLocal or an external provider name.
type Source string

// SourceLocal marks postings owned by the local job store.
const SourceLocal Source = "local"

// IsLocal reports whether s is the local store.
func (s Source) IsLocal() bool { return s == SourceLocal }

// DescriptionPrefixLen is the number of runes used by the description-based dedup key.
const DescriptionPrefixLen = 200

// externalIDSpace seeds deterministic ids for provider results that carry none.
var externalIDSpace = uuid.MustParse("6f1c1f8e-5d8a-4a63-9a4e-2f0d3c6b7a10")

// Fields is the input for New.
type Fields struct {
	ID             string // local id; ignored for external sources
	ExternalID     string // provider id; combined with the source into the posting id
	Source         Source
	Title          string
	Company        string
	Description    string
	RequiredSkills []string
	Location       string
	URL            string
	Seniority      Seniority
	PostedAt       string
	Embedding      []float32
}

// Posting is the job posting aggregate (immutable value object).
type Posting struct {
	id             string
	externalID     string
	source         Source
	title          string
	company        string
	description    string
	requiredSkills []string
	location       string
	url            string
	seniority      Seniority
	postedAt       string
	embedding      []float32
}

// New validates fields and creates a Posting.
// Skills are normalised; when none are supplied they are extracted from title and description.
// Seniority is inferred from the title when empty.
func New(f Fields) (Posting, error) {
	title := strings.TrimSpace(f.Title)
	description := strings.TrimSpace(f.Description)
	if f.Source == "" {
		return Posting{}, fmt.Errorf("source is required: %w", domain.ErrInvalidPosting)
	}
	if title == "" && description == "" {
		return Posting{}, fmt.Errorf("title or description is required: %w", domain.ErrInvalidPosting)
	}

	id := strings.TrimSpace(f.ID)
	externalID := strings.TrimSpace(f.ExternalID)
	if !f.Source.IsLocal() {
		if externalID == "" {
			externalID = uuid.NewSHA1(externalIDSpace,
				[]byte(string(f.Source)+"\x00"+title+"\x00"+f.Company+"\x00"+f.URL)).String()
		}
		id = string(f.Source) + ":" + externalID
	}
	if id == "" {
		return Posting{}, fmt.Errorf("local posting id is required: %w", domain.ErrInvalidPosting)
	}

	skills := skill.NormalizeAll(f.RequiredSkills)
	if len(skills) == 0 {
		skills = skill.Extract(title+"\n"+description, skill.MaxExtracted)
	}

	seniority := f.Seniority
	if seniority == "" {
		seniority = InferSeniority(title)
	}

	return Posting{
		id:             id,
		externalID:     externalID,
		source:         f.Source,
		title:          title,
		company:        strings.TrimSpace(f.Company),
		description:    description,
		requiredSkills: skills,
		location:       strings.TrimSpace(f.Location),
		url:            strings.TrimSpace(f.URL),
		seniority:      seniority,
		postedAt:       strings.TrimSpace(f.PostedAt),
		embedding:      cloneVector(f.Embedding),
	}, nil
}

// Reconstruct creates a Posting without validation (storage hydration).
func Reconstruct(f Fields) Posting {
	return Posting{
		id:             f.ID,
		externalID:     f.ExternalID,
		source:         f.Source,
		title:          f.Title,
		company:        f.Company,
		description:    f.Description,
		requiredSkills: f.RequiredSkills,
		location:       f.Location,
		url:            f.URL,
		seniority:      f.Seniority,
		postedAt:       f.PostedAt,
		embedding:      f.Embedding,
	}
}

// ID returns the posting identifier; external postings use "<source>:<external id>".
func (p *Posting) ID() string { return p.id }

// ExternalID returns the provider-side id (empty for local postings).
func (p *Posting) ExternalID() string { return p.externalID }

// Source returns the source tag.
func (p *Posting) Source() Source { return p.source }

// Title returns the job title.
func (p *Posting) Title() string { return p.title }

// Company returns the employer name.
func (p *Posting) Company() string { return p.company }

// Description returns the plain-text description.
func (p *Posting) Description() string { return p.description }

// RequiredSkills returns the normalised required-skills set.
func (p *Posting) RequiredSkills() []string { return p.requiredSkills }

// Location returns the job location.
func (p *Posting) Location() string { return p.location }

// URL returns the application link.
func (p *Posting) URL() string { return p.url }

// Seniority returns the seniority level.
func (p *Posting) Seniority() Seniority { return p.seniority }

// PostedAt returns the provider's posting date as given.
func (p *Posting) PostedAt() string { return p.postedAt }

// Embedding returns the posting vector, or nil when not computed yet.
func (p *Posting) Embedding() []float32 { return p.embedding }

// WithEmbedding returns a copy carrying vec.
func (p Posting) WithEmbedding(vec []float32) Posting {
	p.embedding = cloneVector(vec)
	return p
}

// EmbeddingText is the text embedded for this posting.
func (p *Posting) EmbeddingText() string {
	var b strings.Builder
	b.WriteString(p.title)
	if p.company != "" {
		b.WriteString(" at ")
		b.WriteString(p.company)
	}
	if len(p.requiredSkills) > 0 {
		b.WriteString("\nSkills: ")
		b.WriteString(strings.Join(p.requiredSkills, ", "))
	}
	if p.description != "" {
		b.WriteString("\n")
		b.WriteString(p.description)
	}
	return b.String()
}

// Key identifies the posting across sources. IDs are only unique within one source.
func (p *Posting) Key() string { return string(p.source) + "\x00" + p.id }

// DedupKey identifies the real-world job behind a posting across sources.
// Normalised (title, company) when both are present, otherwise a normalised description prefix,
// otherwise the normalised title, otherwise the posting id.
func (p *Posting) DedupKey() string {
	title := normalizeKeyPart(p.title)
	company := normalizeKeyPart(p.company)
	if title != "" && company != "" {
		return "tc:" + title + "|" + company
	}
	if desc := normalizeKeyPart(p.description); desc != "" {
		r := []rune(desc)
		if len(r) > DescriptionPrefixLen {
			r = r[:DescriptionPrefixLen]
		}
		return "d:" + string(r)
	}
	if title != "" {
		return "t:" + title
	}
	return "id:" + p.id
}

func normalizeKeyPart(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func cloneVector(v []float32) []float32 {
	if v == nil {
		return nil
	}
	out := make([]float32, len(v))
	copy(out, v)
	return out
}
