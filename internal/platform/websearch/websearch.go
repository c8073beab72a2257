package websearch

import "context"

// Result is one web hit, already trimmed to what prompts need.
type Result struct {
	Title   string
	URL     string
	Content string
}

type Searcher interface {
	Name() string
	Search(ctx context.Context, query string, maxResults int) ([]Result, error)
}
