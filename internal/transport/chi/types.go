package chi

import (
	"github.com/kailas-cloud/jobmatch/internal/domain/candidate"
	"github.com/kailas-cloud/jobmatch/internal/domain/match"
	recommenduc "github.com/kailas-cloud/jobmatch/internal/usecase/recommend"
)

// ErrorCode is a machine-readable error code.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest       ErrorCode = "bad_request"
	ErrorCodeValidationFailed ErrorCode = "validation_failed"
	ErrorCodeUnauthorized     ErrorCode = "unauthorized"
	ErrorCodeInternal         ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// TextBlock is one raw profile text block.
type TextBlock struct {
	Kind string `json:"kind,omitempty"` // resume (default), interview, other
	Text string `json:"text"`
}

// Profile is the wire form of a candidate profile.
// ResumeText and InterviewText are shorthands for single blocks of that kind.
type Profile struct {
	Skills        []string    `json:"skills,omitempty"`
	ResumeText    string      `json:"resume_text,omitempty"`
	InterviewText string      `json:"interview_text,omitempty"`
	Blocks        []TextBlock `json:"blocks,omitempty"`
	RoleTarget    string      `json:"role_target,omitempty"`
	Location      string      `json:"location,omitempty"`
	Embedding     []float32   `json:"embedding,omitempty"`
}

// ToDomain builds the candidate profile.
func (p *Profile) ToDomain() (candidate.Profile, error) {
	blocks := make([]candidate.TextBlock, 0, len(p.Blocks)+2)
	if p.ResumeText != "" {
		blocks = append(blocks, candidate.TextBlock{Kind: candidate.BlockResume, Text: p.ResumeText})
	}
	if p.InterviewText != "" {
		blocks = append(blocks, candidate.TextBlock{Kind: candidate.BlockInterview, Text: p.InterviewText})
	}
	for _, b := range p.Blocks {
		blocks = append(blocks, candidate.TextBlock{Kind: candidate.BlockKind(b.Kind), Text: b.Text})
	}
	return candidate.New(candidate.Fields{
		Skills:     p.Skills,
		Blocks:     blocks,
		RoleTarget: p.RoleTarget,
		Location:   p.Location,
		Embedding:  p.Embedding,
	})
}

// RecommendationRequest is the body of POST /api/v1/recommendations.
type RecommendationRequest struct {
	Profile           Profile `json:"profile"`
	TopK              *int    `json:"top_k,omitempty"`
	MinimumLocalCount *int    `json:"minimum_local_count,omitempty"`
}

// ResultItem is one ranked posting.
type ResultItem struct {
	ID             string   `json:"id"`
	Source         string   `json:"source"`
	Title          string   `json:"title"`
	Company        string   `json:"company,omitempty"`
	Location       string   `json:"location,omitempty"`
	URL            string   `json:"url,omitempty"`
	Seniority      string   `json:"seniority,omitempty"`
	PostedAt       string   `json:"posted_at,omitempty"`
	RequiredSkills []string `json:"required_skills"`
	Score          float64  `json:"score"`
	Rationale      []string `json:"rationale"`
}

// ProviderOutcome reports one external provider call.
type ProviderOutcome struct {
	Provider string `json:"provider"`
	Status   string `json:"status"`
	Postings int    `json:"postings"`
}

// Sourcing reports where the candidate pool came from.
type Sourcing struct {
	Local            int               `json:"local"`
	External         int               `json:"external"`
	Duplicates       int               `json:"duplicates"`
	GatewayCalled    bool              `json:"gateway_called"`
	IndexUnavailable bool              `json:"index_unavailable,omitempty"`
	Mode             string            `json:"mode"`
	Rerank           string            `json:"rerank"`
	Providers        []ProviderOutcome `json:"providers,omitempty"`
}

// RecommendationResponse is the body returned for a served recommendation.
type RecommendationResponse struct {
	ID         string       `json:"id"`
	Results    []ResultItem `json:"results"`
	Diagnostic string       `json:"diagnostic,omitempty"`
	Sourcing   Sourcing     `json:"sourcing"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// NewRecommendationResponse converts a recommendation into its wire form.
func NewRecommendationResponse(rec *recommenduc.Recommendation) RecommendationResponse {
	items := make([]ResultItem, len(rec.Results))
	for i := range rec.Results {
		items[i] = resultToItem(&rec.Results[i])
	}

	providers := make([]ProviderOutcome, len(rec.Sourcing.Providers))
	for i, o := range rec.Sourcing.Providers {
		providers[i] = ProviderOutcome{Provider: o.Provider, Status: o.Status, Postings: o.Postings}
	}

	return RecommendationResponse{
		ID:         rec.ID,
		Results:    items,
		Diagnostic: rec.Diagnostic,
		Sourcing: Sourcing{
			Local:            rec.Sourcing.Local,
			External:         rec.Sourcing.External,
			Duplicates:       rec.Sourcing.Duplicates,
			GatewayCalled:    rec.Sourcing.GatewayCalled,
			IndexUnavailable: rec.Sourcing.IndexUnavailable,
			Mode:             rec.Mode,
			Rerank:           rec.Rerank,
			Providers:        providers,
		},
	}
}

func resultToItem(r *match.Result) ResultItem {
	p := r.Posting()
	skills := p.RequiredSkills()
	if skills == nil {
		skills = []string{}
	}
	return ResultItem{
		ID:             p.ID(),
		Source:         string(p.Source()),
		Title:          p.Title(),
		Company:        p.Company(),
		Location:       p.Location(),
		URL:            p.URL(),
		Seniority:      string(p.Seniority()),
		PostedAt:       p.PostedAt(),
		RequiredSkills: skills,
		Score:          r.Score(),
		Rationale:      r.Rationale(),
	}
}
