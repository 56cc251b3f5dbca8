package job

import "strings"

// Seniority is a coarse level parsed from titles.
type Seniority string

// Seniority levels.
const (
	SeniorityEntry     Seniority = "entry"
	SeniorityMid       Seniority = "mid"
	SenioritySenior    Seniority = "senior"
	SeniorityExecutive Seniority = "executive"
)

var seniorityWords = []struct {
	level Seniority
	words []string
}{
	{SeniorityExecutive, []string{"director", "vp", "vice president", "head of", "chief", "cto", "cio"}},
	{SenioritySenior, []string{"senior", "sr", "lead", "principal", "staff"}},
	{SeniorityEntry, []string{"junior", "jr", "entry", "intern", "graduate", "trainee"}},
}

// InferSeniority maps title words to a level; titles without a marker are mid.
func InferSeniority(title string) Seniority {
	padded := " " + strings.Join(strings.FieldsFunc(strings.ToLower(title), isSeparator), " ") + " "
	for _, group := range seniorityWords {
		for _, w := range group.words {
			if strings.Contains(padded, " "+w+" ") {
				return group.level
			}
		}
	}
	return SeniorityMid
}

// ParseSeniority accepts a known level name and reports whether it was recognised.
func ParseSeniority(s string) (Seniority, bool) {
	switch lvl := Seniority(strings.ToLower(strings.TrimSpace(s))); lvl {
	case SeniorityEntry, SeniorityMid, SenioritySenior, SeniorityExecutive:
		return lvl, true
	}
	return "", false
}

func isSeparator(r rune) bool {
	return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
}
