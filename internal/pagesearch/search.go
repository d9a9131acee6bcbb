// Package pagesearch ranks the site's static pages against a free-text query
// or a URL path that did not resolve. It backs the search box and the
// "did you mean" suggestions on 404 responses.
package pagesearch

import (
	"cmp"
	"net/url"
	"slices"
	"strings"
)

const (
	// MinScore is the score a result must exceed to be returned.
	MinScore = 3.0
	// MaxResults caps Search.
	MaxResults = 8
	// SuggestThreshold is the path similarity a suggestion must exceed.
	SuggestThreshold = 0.3
	// MaxSuggestions caps SuggestPages.
	MaxSuggestions = 5
	// MaxQueryLength bounds the runes of a query that are scored.
	MaxQueryLength = 100
)

const (
	weightTitle       = 10
	weightPath        = 8
	weightKeyword     = 5
	weightDescription = 3
	weightSimilarity  = 7
)

// Result is a page with its relevance score.
type Result struct {
	Page
	Score float64 `json:"score"`
	exact bool
}

// Search scores every page against query and returns at most MaxResults
// results, best first. A page whose title equals the query ranks ahead of
// everything else. An empty query yields an empty, non-nil slice.
func (c Catalog) Search(query string) []Result {
	q := normalizeQuery(query)
	results := []Result{}
	if q == "" {
		return results
	}

	for _, p := range c {
		title := strings.ToLower(p.Title)
		score := weightSimilarity * Similarity(q, title)
		if strings.Contains(title, q) {
			score += weightTitle
		}
		if strings.Contains(strings.ToLower(p.Path), q) {
			score += weightPath
		}
		for _, kw := range p.Keywords {
			if strings.Contains(strings.ToLower(kw), q) {
				score += weightKeyword
			}
		}
		if strings.Contains(strings.ToLower(p.Description), q) {
			score += weightDescription
		}
		if score > MinScore {
			results = append(results, Result{Page: p, Score: score, exact: title == q})
		}
	}

	slices.SortStableFunc(results, func(a, b Result) int {
		if a.exact != b.exact {
			if a.exact {
				return -1
			}
			return 1
		}
		return cmp.Compare(b.Score, a.Score)
	})
	if len(results) > MaxResults {
		results = results[:MaxResults]
	}
	return results
}

// SuggestPages returns up to MaxSuggestions pages whose path resembles path,
// most similar first. When none exceeds SuggestThreshold it returns PopularPages.
func (c Catalog) SuggestPages(path string) []Page {
	target := normalizePath(path)

	type candidate struct {
		page  Page
		score float64
	}
	var candidates []candidate
	for _, p := range c {
		if s := Similarity(target, p.Path); s > SuggestThreshold {
			candidates = append(candidates, candidate{page: p, score: s})
		}
	}
	if len(candidates) == 0 {
		return PopularPages()
	}

	slices.SortStableFunc(candidates, func(a, b candidate) int {
		return cmp.Compare(b.score, a.score)
	})
	if len(candidates) > MaxSuggestions {
		candidates = candidates[:MaxSuggestions]
	}
	out := make([]Page, len(candidates))
	for i, cand := range candidates {
		out[i] = cand.page
	}
	return out
}

// Search runs Catalog.Search over the default catalog.
func Search(query string) []Result {
	return defaultCatalog.Search(query)
}

// SuggestPages runs Catalog.SuggestPages over the default catalog.
func SuggestPages(path string) []Page {
	return defaultCatalog.SuggestPages(path)
}

func normalizeQuery(q string) string {
	q = strings.ToLower(strings.TrimSpace(q))
	if r := []rune(q); len(r) > MaxQueryLength {
		q = strings.TrimSpace(string(r[:MaxQueryLength]))
	}
	return q
}

// normalizePath lower-cases path and drops its query, fragment and trailing
// slash. Percent-escapes are decoded when valid.
func normalizePath(path string) string {
	path = strings.ToLower(strings.TrimSpace(path))
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if decoded, err := url.PathUnescape(path); err == nil {
		path = decoded
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}
