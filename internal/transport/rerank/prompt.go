// Package rerank holds the prompt and response format shared by the language-model rerankers.
package rerank

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kailas-cloud/jobmatch/internal/domain"
)

// SystemInstruction frames the model as a scorer that only returns JSON.
const SystemInstruction = "You are a recruiting assistant that rates how well job postings fit a candidate. " +
	"Respond with JSON only."

// BuildPrompt renders the candidate summary and numbered postings into the user prompt.
func BuildPrompt(profileSummary string, items []domain.RerankItem) string {
	var b strings.Builder
	b.WriteString("Candidate profile:\n")
	b.WriteString(strings.TrimSpace(profileSummary))
	b.WriteString("\n\nJob postings:\n")
	for _, it := range items {
		fmt.Fprintf(&b, "- id: %s\n  %s\n", it.ID, strings.ReplaceAll(strings.TrimSpace(it.Summary), "\n", "\n  "))
	}
	b.WriteString("\nRate each posting's fit for the candidate from 0 (no fit) to 100 (perfect fit). ")
	b.WriteString(`Return {"scores":[{"id":"<posting id>","score":<0-100>}]} with one entry per posting id.`)
	return b.String()
}

type response struct {
	Scores []struct {
		ID    string   `json:"id"`
		Score *float64 `json:"score"`
	} `json:"scores"`
}

// ParseScores decodes the model output into scores in [0,1]. Code fences around the JSON are tolerated.
// Unknown ids are ignored; an entry without a score or outside 0..100 makes the whole response malformed.
func ParseScores(raw string, items []domain.RerankItem) (map[string]float64, error) {
	text := stripFences(raw)

	var resp response
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		return nil, fmt.Errorf("decode rerank json: %w: %w", domain.ErrMalformedRerank, err)
	}

	wanted := make(map[string]struct{}, len(items))
	for _, it := range items {
		wanted[it.ID] = struct{}{}
	}

	out := make(map[string]float64, len(resp.Scores))
	for _, s := range resp.Scores {
		if _, ok := wanted[s.ID]; !ok {
			continue
		}
		if s.Score == nil || *s.Score < 0 || *s.Score > 100 {
			return nil, fmt.Errorf("score for %q missing or out of range: %w", s.ID, domain.ErrMalformedRerank)
		}
		out[s.ID] = *s.Score / 100
	}
	return out, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
