package job

// SearchQuery is what external providers are asked for.
type SearchQuery struct {
	Terms    []string
	Location string
	Limit    int
}
