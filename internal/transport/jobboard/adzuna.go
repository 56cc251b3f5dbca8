package jobboard

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/kailas-cloud/jobmatch/internal/domain/job"
)

// AdzunaName is the source tag for Adzuna postings.
const AdzunaName = "adzuna"

const (
	adzunaDefaultBaseURL = "https://api.adzuna.com/v1/api/jobs"
	adzunaMaxPerPage     = 50
)

// AdzunaConfig holds Adzuna credentials and endpoint.
type AdzunaConfig struct {
	AppID   string
	AppKey  string
	Country string // two-letter market, default "us"
	BaseURL string
}

// Adzuna searches the Adzuna jobs API.
type Adzuna struct {
	client
	cfg AdzunaConfig
}

// NewAdzuna creates the Adzuna provider. hc may be nil.
func NewAdzuna(cfg AdzunaConfig, hc *http.Client) *Adzuna {
	if cfg.Country == "" {
		cfg.Country = "us"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = adzunaDefaultBaseURL
	}
	return &Adzuna{client: newClient(AdzunaName, hc), cfg: cfg}
}

// Name returns the source tag.
func (a *Adzuna) Name() string { return AdzunaName }

// HasCredentials reports whether both app id and key are configured.
func (a *Adzuna) HasCredentials() bool { return a.cfg.AppID != "" && a.cfg.AppKey != "" }

type adzunaResponse struct {
	Results []struct {
		ID      any    `json:"id"`
		Title   string `json:"title"`
		Company struct {
			DisplayName string `json:"display_name"`
		} `json:"company"`
		Location struct {
			DisplayName string `json:"display_name"`
		} `json:"location"`
		Description string `json:"description"`
		RedirectURL string `json:"redirect_url"`
		Created     string `json:"created"`
	} `json:"results"`
}

// Search implements the gateway provider contract.
func (a *Adzuna) Search(ctx context.Context, q job.SearchQuery) ([]job.Posting, error) {
	params := url.Values{}
	params.Set("app_id", a.cfg.AppID)
	params.Set("app_key", a.cfg.AppKey)
	perPage := q.Limit
	if perPage <= 0 || perPage > adzunaMaxPerPage {
		perPage = adzunaMaxPerPage
	}
	params.Set("results_per_page", strconv.Itoa(perPage))
	params.Set("what", queryString(q.Terms))
	params.Set("content-type", "application/json")
	if q.Location != "" {
		params.Set("where", q.Location)
	}

	var resp adzunaResponse
	endpoint := fmt.Sprintf("%s/%s/search/1", a.cfg.BaseURL, url.PathEscape(a.cfg.Country))
	if err := a.getJSON(ctx, endpoint, params, &resp); err != nil {
		return nil, a.classify(err, nil)
	}

	out := make([]job.Posting, 0, len(resp.Results))
	for _, r := range resp.Results {
		p, err := job.New(job.Fields{
			ExternalID:  idString(r.ID),
			Source:      AdzunaName,
			Title:       plainText(r.Title),
			Company:     r.Company.DisplayName,
			Description: plainText(r.Description),
			Location:    r.Location.DisplayName,
			URL:         r.RedirectURL,
			PostedAt:    r.Created,
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

// idString renders JSON ids that providers send either as strings or numbers.
func idString(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(id)
	}
}
