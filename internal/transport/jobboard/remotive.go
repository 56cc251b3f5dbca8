package jobboard

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/kailas-cloud/jobmatch/internal/domain/job"
	"github.com/kailas-cloud/jobmatch/internal/domain/skill"
)

// RemotiveName is the source tag for Remotive postings.
const RemotiveName = "remotive"

const remotiveDefaultBaseURL = "https://remotive.com/api/remote-jobs"

// RemotiveConfig holds the Remotive endpoint. The public API needs no credentials.
type RemotiveConfig struct {
	BaseURL string
}

// Remotive searches remote jobs on Remotive.
type Remotive struct {
	client
	cfg RemotiveConfig
}

// NewRemotive creates the Remotive provider. hc may be nil.
func NewRemotive(cfg RemotiveConfig, hc *http.Client) *Remotive {
	if cfg.BaseURL == "" {
		cfg.BaseURL = remotiveDefaultBaseURL
	}
	return &Remotive{client: newClient(RemotiveName, hc), cfg: cfg}
}

// Name returns the source tag.
func (r *Remotive) Name() string { return RemotiveName }

// HasCredentials is always true.
func (r *Remotive) HasCredentials() bool { return true }

type remotiveResponse struct {
	Jobs []struct {
		ID                        any      `json:"id"`
		Title                     string   `json:"title"`
		CompanyName               string   `json:"company_name"`
		CandidateRequiredLocation string   `json:"candidate_required_location"`
		Description               string   `json:"description"`
		URL                       string   `json:"url"`
		Tags                      []string `json:"tags"`
		PublicationDate           string   `json:"publication_date"`
	} `json:"jobs"`
}

// Search implements the gateway provider contract. Location is not a Remotive filter.
func (r *Remotive) Search(ctx context.Context, q job.SearchQuery) ([]job.Posting, error) {
	params := url.Values{}
	params.Set("search", queryString(q.Terms))
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	var resp remotiveResponse
	if err := r.getJSON(ctx, r.cfg.BaseURL, params, &resp); err != nil {
		return nil, r.classify(err, nil)
	}

	out := make([]job.Posting, 0, len(resp.Jobs))
	for _, j := range resp.Jobs {
		description := plainText(j.Description)
		p, err := job.New(job.Fields{
			ExternalID:     idString(j.ID),
			Source:         RemotiveName,
			Title:          plainText(j.Title),
			Company:        j.CompanyName,
			Description:    description,
			RequiredSkills: mergeTags(j.Tags, j.Title+"\n"+description),
			Location:       j.CandidateRequiredLocation,
			URL:            j.URL,
			PostedAt:       j.PublicationDate,
		})
		if err != nil {
			continue
		}
		out = append(out, p)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

// mergeTags combines Remotive tags with skills extracted from the text, tags first.
func mergeTags(tags []string, text string) []string {
	merged := skill.NormalizeAll(append(append([]string{}, tags...), skill.Extract(text, skill.MaxExtracted)...))
	if len(merged) > skill.MaxExtracted {
		merged = merged[:skill.MaxExtracted]
	}
	return merged
}
