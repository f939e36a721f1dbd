package docs

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Searcher produces documentation candidates for a technology. The default
// implementation probes well-known URL patterns; a real web-search backend
// can be plugged in instead.
type Searcher interface {
	Search(ctx context.Context, technology string, maxResults int) ([]SearchResult, error)
}

// CandidateSearcher guesses documentation URLs from well-known hosting
// patterns (docs subdomains, readthedocs, /docs paths) and keeps the ones
// that respond. It needs no search-engine credentials, which makes it the
// default backend.
type CandidateSearcher struct {
	client *http.Client
}

// NewCandidateSearcher creates a CandidateSearcher. A nil client gets a
// default with an 8 second timeout.
func NewCandidateSearcher(client *http.Client) *CandidateSearcher {
	if client == nil {
		client = &http.Client{Timeout: 8 * time.Second}
	}
	return &CandidateSearcher{client: client}
}

// candidateURLs lists the patterns probed, most doc-specific first.
func candidateURLs(technology string) []string {
	tech := strings.ToLower(strings.Join(strings.Fields(technology), "-"))
	return []string{
		fmt.Sprintf("https://docs.%s.io", tech),
		fmt.Sprintf("https://docs.%s.com", tech),
		fmt.Sprintf("https://docs.%s.dev", tech),
		fmt.Sprintf("https://%s.readthedocs.io/en/latest/", tech),
		fmt.Sprintf("https://%s.io/docs", tech),
		fmt.Sprintf("https://%s.dev/docs", tech),
		fmt.Sprintf("https://%s.com/docs", tech),
		fmt.Sprintf("https://%s.org/docs", tech),
		fmt.Sprintf("https://www.%s.org/documentation", tech),
	}
}

// Search implements Searcher by probing the candidate patterns and
// returning the reachable ones in pattern order.
func (s *CandidateSearcher) Search(ctx context.Context, technology string, maxResults int) ([]SearchResult, error) {
	var results []SearchResult
	for _, candidate := range candidateURLs(technology) {
		if maxResults > 0 && len(results) >= maxResults {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		final, ok := s.probe(ctx, candidate)
		if !ok {
			continue
		}
		results = append(results, SearchResult{
			Title: technology + " documentation",
			URL:   final,
		})
	}
	return results, nil
}

// probe checks that the URL resolves to a successful page, following
// redirects, and returns the final URL.
func (s *CandidateSearcher) probe(ctx context.Context, rawURL string) (string, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return "", false
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", false
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", false
	}
	return resp.Request.URL.String(), true
}

var _ Searcher = (*CandidateSearcher)(nil)
