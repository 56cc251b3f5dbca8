package jobindex

import (
	"encoding/binary"
	"math"
	"strings"

	"github.com/kailas-cloud/jobmatch/internal/domain/job"
)

// Hash field names. The vector lives under __vector and is aliased to "vector" in the index.
const (
	fieldTitle       = "title"
	fieldCompany     = "company"
	fieldDescription = "description"
	fieldSkills      = "skills"
	fieldSource      = "source"
	fieldLocation    = "location"
	fieldURL         = "url"
	fieldSeniority   = "seniority"
	fieldPostedAt    = "posted_at"
	fieldVector      = "__vector"

	skillSeparator = ","
)

// returnFields is what FT.SEARCH hands back; vectors are never read back during search.
var returnFields = []string{
	fieldTitle, fieldCompany, fieldDescription, fieldSkills, fieldSource,
	fieldLocation, fieldURL, fieldSeniority, fieldPostedAt,
}

// buildHashFields flattens a posting into a map for HSET.
func buildHashFields(p *job.Posting) map[string]string {
	m := map[string]string{
		fieldTitle:       p.Title(),
		fieldCompany:     p.Company(),
		fieldDescription: p.Description(),
		fieldSkills:      strings.Join(p.RequiredSkills(), skillSeparator),
		fieldSource:      string(p.Source()),
		fieldLocation:    p.Location(),
		fieldURL:         p.URL(),
		fieldSeniority:   string(p.Seniority()),
		fieldPostedAt:    p.PostedAt(),
		fieldVector:      vectorToBytes(p.Embedding()),
	}
	return m
}

// parseHashFields hydrates a posting from hash fields returned by FT.SEARCH.
func parseHashFields(id string, m map[string]string) job.Posting {
	var skills []string
	if raw := m[fieldSkills]; raw != "" {
		skills = strings.Split(raw, skillSeparator)
	}
	source := job.Source(m[fieldSource])
	if source == "" {
		source = job.SourceLocal
	}
	var vec []float32
	if raw, ok := m[fieldVector]; ok {
		vec = bytesToVector(raw)
	}

	return job.Reconstruct(job.Fields{
		ID:             id,
		Source:         source,
		Title:          m[fieldTitle],
		Company:        m[fieldCompany],
		Description:    m[fieldDescription],
		RequiredSkills: skills,
		Location:       m[fieldLocation],
		URL:            m[fieldURL],
		Seniority:      job.Seniority(m[fieldSeniority]),
		PostedAt:       m[fieldPostedAt],
		Embedding:      vec,
	})
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

func bytesToVector(s string) []float32 {
	b := []byte(s)
	if len(b) == 0 || len(b)%4 != 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
