// Package docs provides documentation-discovery tools: find the official
// documentation URL for a technology by generating and ranking candidates,
// and validate that a fetched page actually looks like documentation.
package docs

import (
	"net/url"
	"slices"
	"strings"
)

// SearchResult is one candidate documentation page.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

// RankedResult pairs a candidate with its heuristic score.
type RankedResult struct {
	Result SearchResult `json:"result"`
	Score  float64      `json:"score"`
}

var docKeywords = []string{
	"docs", "documentation", "guide", "guides", "api", "reference",
	"handbook", "manual", "developer", "developers",
}

var docPathHints = []string{"/docs", "/documentation", "/api", "/reference", "/handbook", "/manual"}

var unofficialSites = []string{
	"stackoverflow.com", "medium.com", "dev.to", "reddit.com",
	"news.ycombinator.com", "quora.com", "youtube.com", "twitter.com",
	"facebook.com", "linkedin.com", "stackshare.io",
}

var repoSites = []string{"github.com", "gitlab.com", "bitbucket.org"}

var packageIndexSites = []string{"pypi.org", "npmjs.com", "crates.io", "rubygems.org", "packagist.org"}

// Rank scores candidates by how likely each is the official documentation
// for the technology and returns them best first. The heuristic favors
// doc-ish keywords in titles and paths, docs subdomains, and domains named
// after the technology; it penalizes forums, package indexes, and bare
// repository pages.
func Rank(technology string, candidates []SearchResult) []RankedResult {
	ranked := make([]RankedResult, 0, len(candidates))
	for _, c := range candidates {
		ranked = append(ranked, RankedResult{Result: c, Score: score(technology, c)})
	}
	slices.SortStableFunc(ranked, func(a, b RankedResult) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})
	return ranked
}

func score(technology string, res SearchResult) float64 {
	tech := normalize(technology)
	title := normalize(res.Title)
	snippet := normalize(res.Snippet)
	lowerURL := strings.ToLower(res.URL)
	sub, dom := domainParts(res.URL)
	path := urlPath(res.URL)

	var s float64
	if strings.Contains(title, tech) || strings.Contains(snippet, tech) || strings.Contains(lowerURL, tech) {
		s += 3.0
	}
	if containsAny(title, docKeywords) {
		s += 2.5
	}
	if containsAny(path, docPathHints) {
		s += 2.0
	}
	if strings.Contains(sub, "docs") || strings.Contains(sub, "developer") {
		s += 2.0
	}
	if strings.HasSuffix(dom, "readthedocs.io") || strings.HasSuffix(dom, "github.io") {
		s += 1.5
	}
	if domainName(dom) == tech {
		s += 1.5
	}
	if strings.Contains(title, "official") || strings.Contains(snippet, "official") {
		s += 1.0
	}

	if containsAny(dom, unofficialSites) {
		s -= 2.5
	}
	if containsAny(dom, packageIndexSites) {
		s -= 1.5
	}
	if containsAny(dom, repoSites) && !containsAny(path, []string{"/wiki", "/docs", "/documentation"}) {
		s -= 1.5
	}
	if !containsAny(title, docKeywords) && !containsAny(path, docPathHints) {
		s -= 0.5
	}
	return s
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// domainParts splits a URL's host into subdomain and registered domain,
// approximating the registered domain as the last two labels. Good enough
// for scoring; precision on multi-part public suffixes is not required.
func domainParts(raw string) (sub, dom string) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", strings.ToLower(raw)
	}
	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	labels := strings.Split(host, ".")
	if len(labels) <= 2 {
		return "", host
	}
	return strings.Join(labels[:len(labels)-2], "."), strings.Join(labels[len(labels)-2:], ".")
}

// domainName returns the bare name of a registered domain ("react.dev" →
// "react").
func domainName(dom string) string {
	name, _, _ := strings.Cut(dom, ".")
	return name
}

func urlPath(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return strings.ToLower(raw)
	}
	return strings.ToLower(u.Path)
}
