package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/kailas-cloud/jobmatch/internal/domain"
	"github.com/kailas-cloud/jobmatch/internal/domain/candidate"
	"github.com/kailas-cloud/jobmatch/internal/domain/job"
	"github.com/kailas-cloud/jobmatch/internal/domain/match"
	"github.com/kailas-cloud/jobmatch/internal/metrics"
	"github.com/kailas-cloud/jobmatch/internal/usecase/aggregate"
	"github.com/kailas-cloud/jobmatch/internal/usecase/gateway"
	healthuc "github.com/kailas-cloud/jobmatch/internal/usecase/health"
	recommenduc "github.com/kailas-cloud/jobmatch/internal/usecase/recommend"
)

type mockRecommender struct {
	rec *recommenduc.Recommendation
	err error

	profile  candidate.Profile
	topK     int
	minLocal int
}

func (m *mockRecommender) Recommend(
	_ context.Context, p candidate.Profile, topK, minLocal int,
) (*recommenduc.Recommendation, error) {
	m.profile, m.topK, m.minLocal = p, topK, minLocal
	return m.rec, m.err
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }

func newTestServer(t *testing.T, rec *mockRecommender, h *mockHealth) *httptest.Server {
	t.Helper()
	if h == nil {
		h = &mockHealth{report: healthuc.Report{Status: healthuc.Healthy}}
	}
	s := NewServer(rec, h, Limits{DefaultTopK: 10, MaxTopK: 50}, nil)
	r := chi.NewRouter()
	s.Routes(r)
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url+"/api/v1/recommendations", "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func sampleRecommendation(t *testing.T) *recommenduc.Recommendation {
	t.Helper()
	local, err := job.New(job.Fields{
		ID: "j1", Source: job.SourceLocal, Title: "Senior Go Engineer", Company: "Acme",
		RequiredSkills: []string{"golang", "kubernetes"},
	})
	if err != nil {
		t.Fatal(err)
	}
	ext, err := job.New(job.Fields{
		ExternalID: "42", Source: "remotive", Title: "Backend Developer", URL: "https://example.com/42",
		RequiredSkills: []string{"python"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return &recommenduc.Recommendation{
		ID: "rec-1",
		Results: []match.Result{
			match.NewResult(local, 0.9, []string{"2 of 2 required skills matched"}),
			match.NewResult(ext, 0.4, []string{"0 of 1 required skills matched"}),
		},
		Mode:   metrics.ModeMixed,
		Rerank: metrics.RerankSkipped,
		Sourcing: aggregate.Report{
			Local: 1, External: 1, GatewayCalled: true,
			Providers: []gateway.Outcome{{Provider: "remotive", Status: metrics.ProviderOK, Postings: 1}},
		},
		EmbeddingCalls:  2,
		EmbeddingTokens: 37,
	}
}

func TestCreateRecommendation_OK(t *testing.T) {
	rec := &mockRecommender{rec: sampleRecommendation(t)}
	ts := newTestServer(t, rec, nil)

	resp := postJSON(t, ts.URL, `{
		"profile": {"skills": ["Golang", "Kubernetes"], "resume_text": "Go developer", "interview_text": "likes infra"},
		"top_k": 5,
		"minimum_local_count": 3
	}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("X-Embedding-Tokens"); got != "37" {
		t.Errorf("X-Embedding-Tokens: got %q, want 37", got)
	}

	var body RecommendationResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.ID != "rec-1" || len(body.Results) != 2 {
		t.Fatalf("unexpected body %+v", body)
	}
	if body.Results[0].ID != "j1" || body.Results[0].Source != "local" || body.Results[0].Score != 0.9 {
		t.Errorf("unexpected first result %+v", body.Results[0])
	}
	if body.Results[1].ID != "remotive:42" || body.Results[1].URL != "https://example.com/42" {
		t.Errorf("unexpected second result %+v", body.Results[1])
	}
	if body.Sourcing.Mode != metrics.ModeMixed || !body.Sourcing.GatewayCalled || len(body.Sourcing.Providers) != 1 {
		t.Errorf("unexpected sourcing %+v", body.Sourcing)
	}

	if rec.topK != 5 || rec.minLocal != 3 {
		t.Errorf("forwarded topK=%d minLocal=%d, want 5/3", rec.topK, rec.minLocal)
	}
	if got := rec.profile.Skills(); len(got) != 2 || got[0] != "go" {
		t.Errorf("profile skills not normalised: %v", got)
	}
	if rec.profile.Text(candidate.BlockInterview) != "likes infra" {
		t.Errorf("interview block not forwarded")
	}
}

func TestCreateRecommendation_DefaultTopK(t *testing.T) {
	rec := &mockRecommender{rec: &recommenduc.Recommendation{ID: "r"}}
	ts := newTestServer(t, rec, nil)

	resp := postJSON(t, ts.URL, `{"profile": {"skills": ["go"]}}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d, want 200", resp.StatusCode)
	}
	if rec.topK != 10 || rec.minLocal != 0 {
		t.Errorf("defaults: topK=%d minLocal=%d", rec.topK, rec.minLocal)
	}

	var body RecommendationResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Results == nil {
		t.Error("results must encode as an empty array")
	}
}

func TestCreateRecommendation_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		err      error
		wantCode int
		wantErr  ErrorCode
	}{
		{"malformed json", `{"profile":`, nil, http.StatusBadRequest, ErrorCodeBadRequest},
		{"top_k above max", `{"profile":{"skills":["go"]},"top_k":51}`, nil,
			http.StatusBadRequest, ErrorCodeValidationFailed},
		{"negative minimum", `{"profile":{"skills":["go"]},"minimum_local_count":-1}`, nil,
			http.StatusBadRequest, ErrorCodeValidationFailed},
		{"unknown block kind", `{"profile":{"blocks":[{"kind":"cover","text":"x"}]}}`, nil,
			http.StatusBadRequest, ErrorCodeValidationFailed},
		{"invalid top_k", `{"profile":{"skills":["go"]},"top_k":0}`,
			fmt.Errorf("%w: got 0", domain.ErrInvalidTopK), http.StatusBadRequest, ErrorCodeValidationFailed},
		{"no signal", `{"profile":{}}`, domain.ErrNoProfileSignal, http.StatusBadRequest, ErrorCodeValidationFailed},
		{"internal", `{"profile":{"skills":["go"]}}`, errors.New("boom"),
			http.StatusInternalServerError, ErrorCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, &mockRecommender{err: tt.err}, nil)
			resp := postJSON(t, ts.URL, tt.body)
			if resp.StatusCode != tt.wantCode {
				t.Fatalf("status: got %d, want %d", resp.StatusCode, tt.wantCode)
			}
			var e ErrorResponse
			if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if e.Code != tt.wantErr {
				t.Errorf("code: got %s, want %s", e.Code, tt.wantErr)
			}
			if tt.wantCode == http.StatusInternalServerError && strings.Contains(e.Message, "boom") {
				t.Errorf("internal error leaked: %q", e.Message)
			}
		})
	}
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name   string
		status healthuc.Status
		want   int
	}{
		{"healthy", healthuc.Healthy, http.StatusOK},
		{"degraded", healthuc.Degraded, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &mockHealth{report: healthuc.Report{
				Status: tt.status,
				Checks: map[string]healthuc.CheckResult{healthuc.ComponentDatabase: healthuc.CheckOK},
			}}
			ts := newTestServer(t, &mockRecommender{}, h)

			resp, err := http.Get(ts.URL + "/health")
			if err != nil {
				t.Fatal(err)
			}
			defer func() { _ = resp.Body.Close() }()

			if resp.StatusCode != tt.want {
				t.Errorf("status: got %d, want %d", resp.StatusCode, tt.want)
			}
			var body HealthResponse
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if body.Status != string(tt.status) || body.Checks[healthuc.ComponentDatabase] != "ok" {
				t.Errorf("unexpected body %+v", body)
			}
		})
	}
}

func TestMetricsRoute(t *testing.T) {
	ts := newTestServer(t, &mockRecommender{}, nil)
	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
}
