// Package skill normalises skill names and extracts known skills from free text.
package skill

import (
	"regexp"
	"strings"
)

// MaxExtracted caps the number of skills Extract returns.
const MaxExtracted = 10

var aliases = map[string]string{
	"golang":              "go",
	"go lang":             "go",
	"js":                  "javascript",
	"ts":                  "typescript",
	"k8s":                 "kubernetes",
	"reactjs":             "react",
	"react.js":            "react",
	"vuejs":               "vue",
	"vue.js":              "vue",
	"nodejs":              "node.js",
	"node":                "node.js",
	"postgres":            "postgresql",
	"psql":                "postgresql",
	"mongo":               "mongodb",
	"amazon web services": "aws",
	"gcp":                 "google cloud",
	"ml":                  "machine learning",
	"restful api":         "rest api",
	"rest":                "rest api",
	"ci cd":               "ci/cd",
	"cicd":                "ci/cd",
	"py":                  "python",
}

// vocabulary is ordered; Extract reports matches in this order.
var vocabulary = []string{
	"python", "javascript", "typescript", "java", "golang", "rust", "c++", "c#", "ruby", "php", "scala", "kotlin",
	"react", "angular", "vue", "node.js", "django", "flask", "fastapi", "spring",
	"sql", "postgresql", "mysql", "mongodb", "redis", "elasticsearch", "kafka",
	"aws", "azure", "google cloud", "docker", "kubernetes", "terraform", "linux", "git",
	"tensorflow", "pytorch", "machine learning", "data science", "ai",
	"devops", "ci/cd", "microservices", "rest api", "graphql", "grpc", "agile", "scrum",
}

var vocabularyPatterns = compileVocabulary()

func compileVocabulary() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(vocabulary))
	for i, term := range vocabulary {
		// Word boundaries that also treat + # . as part of a token ("c++", "node.js").
		out[i] = regexp.MustCompile(`(?:^|[^a-z0-9+#.])` + regexp.QuoteMeta(term) + `(?:$|[^a-z0-9+#])`)
	}
	return out
}

// Normalize lower-cases, trims, collapses whitespace and resolves aliases.
func Normalize(s string) string {
	s = strings.Join(strings.Fields(strings.ToLower(s)), " ")
	if canonical, ok := aliases[s]; ok {
		return canonical
	}
	return s
}

// NormalizeAll normalises names and drops empties and duplicates, keeping first-seen order.
func NormalizeAll(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = Normalize(n)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// Extract finds vocabulary skills mentioned in text, normalised, at most limit of them.
// limit <= 0 means MaxExtracted.
func Extract(text string, limit int) []string {
	if limit <= 0 {
		limit = MaxExtracted
	}
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return nil
	}

	found := make([]string, 0, limit)
	for i, re := range vocabularyPatterns {
		if !re.MatchString(lower) {
			continue
		}
		found = append(found, vocabulary[i])
	}
	found = NormalizeAll(found)
	if len(found) > limit {
		found = found[:limit]
	}
	return found
}

// Overlap returns the entries of required that are present in have, in required's order.
func Overlap(have, required []string) []string {
	if len(have) == 0 || len(required) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(have))
	for _, h := range have {
		set[h] = struct{}{}
	}
	var matched []string
	for _, r := range required {
		if _, ok := set[r]; ok {
			matched = append(matched, r)
		}
	}
	return matched
}
