package jobboard

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/kailas-cloud/jobmatch/internal/domain"
	"github.com/kailas-cloud/jobmatch/internal/domain/job"
)

// SerpAPIName is the source tag for Google Jobs results fetched through SerpAPI.
const SerpAPIName = "serpapi"

const serpAPIDefaultBaseURL = "https://serpapi.com/search"

// SerpAPIConfig holds SerpAPI credentials and endpoint.
type SerpAPIConfig struct {
	APIKey  string
	BaseURL string
}

// SerpAPI searches Google Jobs through SerpAPI.
type SerpAPI struct {
	client
	cfg SerpAPIConfig
}

// NewSerpAPI creates the SerpAPI provider. hc may be nil.
func NewSerpAPI(cfg SerpAPIConfig, hc *http.Client) *SerpAPI {
	if cfg.BaseURL == "" {
		cfg.BaseURL = serpAPIDefaultBaseURL
	}
	return &SerpAPI{client: newClient(SerpAPIName, hc), cfg: cfg}
}

// Name returns the source tag.
func (s *SerpAPI) Name() string { return SerpAPIName }

// HasCredentials reports whether an API key is configured.
func (s *SerpAPI) HasCredentials() bool { return s.cfg.APIKey != "" }

type serpAPIResponse struct {
	Error       string `json:"error"`
	JobsResults []struct {
		JobID        string `json:"job_id"`
		Title        string `json:"title"`
		CompanyName  string `json:"company_name"`
		Location     string `json:"location"`
		Description  string `json:"description"`
		ShareLink    string `json:"share_link"`
		ApplyOptions []struct {
			Link string `json:"link"`
		} `json:"apply_options"`
		DetectedExtensions struct {
			PostedAt string `json:"posted_at"`
		} `json:"detected_extensions"`
	} `json:"jobs_results"`
}

// Search implements the gateway provider contract.
func (s *SerpAPI) Search(ctx context.Context, q job.SearchQuery) ([]job.Posting, error) {
	params := url.Values{}
	params.Set("engine", "google_jobs")
	params.Set("q", queryString(q.Terms))
	params.Set("api_key", s.cfg.APIKey)
	if q.Location != "" {
		params.Set("location", q.Location)
	}

	var resp serpAPIResponse
	if err := s.getJSON(ctx, s.cfg.BaseURL, params, &resp); err != nil {
		return nil, s.classify(err, serpAPIQuotaExceeded)
	}
	if resp.Error != "" {
		if strings.Contains(strings.ToLower(resp.Error), "hasn't returned any results") {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %s: %w", SerpAPIName, resp.Error, domain.ErrProviderUnavailable)
	}

	out := make([]job.Posting, 0, len(resp.JobsResults))
	for _, r := range resp.JobsResults {
		link := r.ShareLink
		if len(r.ApplyOptions) > 0 && r.ApplyOptions[0].Link != "" {
			link = r.ApplyOptions[0].Link
		}
		p, err := job.New(job.Fields{
			ExternalID:  r.JobID,
			Source:      SerpAPIName,
			Title:       plainText(r.Title),
			Company:     r.CompanyName,
			Description: plainText(r.Description),
			Location:    r.Location,
			URL:         link,
			PostedAt:    r.DetectedExtensions.PostedAt,
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

// serpAPIQuotaExceeded treats the account-limit 403 as throttling rather than an outage.
func serpAPIQuotaExceeded(se *statusError) bool {
	if se.status != http.StatusForbidden {
		return false
	}
	body := strings.ToLower(string(se.body))
	return strings.Contains(body, "run out of searches") ||
		strings.Contains(body, "monthly limit") ||
		strings.Contains(body, "quota")
}
