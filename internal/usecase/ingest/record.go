package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/kailas-cloud/jobmatch/internal/domain/job"
)

// maxFileSize bounds a single postings file.
const maxFileSize = 32 << 20

// ingestIDSpace seeds ids for records without one, so re-ingesting a file overwrites rather than duplicates.
var ingestIDSpace = uuid.MustParse("0b7f6a3e-2c1d-4e8b-9f4a-6d5c3b2a1e90")

// Record is one posting as stored in a JSON seed file.
type Record struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Company        string   `json:"company"`
	Description    string   `json:"description"`
	Location       string   `json:"location"`
	RequiredSkills []string `json:"required_skills"`
	Seniority      string   `json:"seniority_level"`
	URL            string   `json:"application_url"`
	PostedAt       string   `json:"posted_at"`
}

// Decode reads a single JSON object or an array of them.
func Decode(r io.Reader) ([]Record, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if len(data) > maxFileSize {
		return nil, fmt.Errorf("file exceeds %d bytes", maxFileSize)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	if data[0] == '[' {
		var out []Record
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("decode array: %w", err)
		}
		return out, nil
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode object: %w", err)
	}
	return []Record{rec}, nil
}

// Posting converts a record into a local posting without an embedding.
// Skills and seniority are inferred when missing; an unknown seniority is inferred too.
func (r *Record) Posting() (job.Posting, error) {
	f := job.Fields{
		ID:             r.ID,
		Source:         job.SourceLocal,
		Title:          r.Title,
		Company:        r.Company,
		Description:    r.Description,
		RequiredSkills: r.RequiredSkills,
		Location:       r.Location,
		URL:            r.URL,
		PostedAt:       r.PostedAt,
	}
	if lvl, ok := job.ParseSeniority(r.Seniority); ok {
		f.Seniority = lvl
	}
	if f.ID != "" {
		return job.New(f)
	}

	f.ID = "pending"
	p, err := job.New(f)
	if err != nil {
		return job.Posting{}, err
	}
	f.ID = uuid.NewSHA1(ingestIDSpace, []byte(p.DedupKey())).String()
	return job.New(f)
}
