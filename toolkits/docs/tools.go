package docs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/skosovsky/toolhub"
)

// FindDocsArgs are the arguments for the find_docs tool.
type FindDocsArgs struct {
	Technology string `json:"technology" description:"Technology name to find documentation for"`
}

// FindDocsResult is the outcome of documentation discovery.
type FindDocsResult struct {
	URL    string `json:"url,omitempty"`
	Title  string `json:"title,omitempty"`
	Reason string `json:"reason"`
}

// ValidateDocsArgs are the arguments for the validate_docs tool.
type ValidateDocsArgs struct {
	URL     string `json:"url" description:"URL of the page to check"`
	Content string `json:"content,omitempty" description:"Page text content; fetched from the URL when omitted"`
}

// ValidateDocsResult reports whether a page looks like documentation.
type ValidateDocsResult struct {
	URL    string `json:"url"`
	IsDocs bool   `json:"is_docs"`
	Reason string `json:"reason"`
}

// docHints are content patterns that mark a page as documentation-like.
var docHints = []*regexp.Regexp{
	regexp.MustCompile(`sidebar`),
	regexp.MustCompile(`search docs`),
	regexp.MustCompile(`api reference`),
	regexp.MustCompile(`table of contents`),
	regexp.MustCompile(`docsify|docusaurus|mkdocs|sphinx`),
	regexp.MustCompile(`class\s+\w+`),
}

// Toolkit builds the documentation tools over a candidate searcher and an
// HTTP client for page fetches.
type Toolkit struct {
	searcher Searcher
	client   *http.Client
}

// NewToolkit creates a Toolkit. A nil searcher defaults to the candidate
// prober; a nil client gets an 8 second timeout.
func NewToolkit(searcher Searcher, client *http.Client) *Toolkit {
	if client == nil {
		client = &http.Client{Timeout: 8 * time.Second}
	}
	if searcher == nil {
		searcher = NewCandidateSearcher(client)
	}
	return &Toolkit{searcher: searcher, client: client}
}

// Register builds and registers all documentation tools. Fails on a name
// collision with an already-registered tool.
func (k *Toolkit) Register(reg *toolhub.Registry) error {
	for _, build := range []func() (toolhub.Tool, error){
		k.FindDocsTool, k.ValidateDocsTool, k.FindDocsValidatedTool,
	} {
		t, err := build()
		if err != nil {
			return err
		}
		if err := reg.Register(t); err != nil {
			return err
		}
	}
	return nil
}

// FindDocsTool returns the find_docs tool: discover and rank candidate
// documentation URLs, returning the best one. Results are cacheable; the
// official docs URL for a technology rarely changes within a session.
func (k *Toolkit) FindDocsTool() (toolhub.Tool, error) {
	return toolhub.NewTool(
		"find_docs",
		"Find the official documentation URL for a technology by composing candidate discovery and ranking.",
		func(ctx context.Context, args FindDocsArgs) (FindDocsResult, error) {
			return k.findDocs(ctx, args.Technology)
		},
		toolhub.WithTags("docs", "cacheable"),
		toolhub.WithCacheTTL(15*time.Minute),
	)
}

// ValidateDocsTool returns the validate_docs tool: check whether a page
// looks like documentation, fetching it when no content is supplied.
func (k *Toolkit) ValidateDocsTool() (toolhub.Tool, error) {
	return toolhub.NewTool(
		"validate_docs",
		"Heuristically validate whether a page looks like documentation.",
		func(ctx context.Context, args ValidateDocsArgs) (ValidateDocsResult, error) {
			content := args.Content
			if content == "" {
				fetched, err := k.fetchPage(ctx, args.URL)
				if err != nil {
					return ValidateDocsResult{}, err
				}
				content = fetched
			}
			return validatePage(args.URL, content), nil
		},
		toolhub.WithTags("docs", "validation"),
	)
}

// FindDocsValidatedTool returns the find_docs_validated tool: find_docs
// followed by fetching the winner and confirming it reads like docs.
func (k *Toolkit) FindDocsValidatedTool() (toolhub.Tool, error) {
	return toolhub.NewTool(
		"find_docs_validated",
		"Find the documentation URL and validate the top candidate by fetching its content.",
		func(ctx context.Context, args FindDocsArgs) (FindDocsResult, error) {
			base, err := k.findDocs(ctx, args.Technology)
			if err != nil || base.URL == "" {
				return base, err
			}
			content, err := k.fetchPage(ctx, base.URL)
			if err == nil {
				if v := validatePage(base.URL, content); v.IsDocs {
					return FindDocsResult{URL: v.URL, Title: base.Title, Reason: "validated"}, nil
				}
			}
			return base, nil
		},
		toolhub.WithTags("docs", "validation"),
	)
}

func (k *Toolkit) findDocs(ctx context.Context, technology string) (FindDocsResult, error) {
	candidates, err := k.searcher.Search(ctx, technology, 10)
	if err != nil {
		return FindDocsResult{}, err
	}
	ranked := Rank(technology, candidates)
	if len(ranked) == 0 {
		return FindDocsResult{Reason: "no_results"}, nil
	}
	top := ranked[0]
	return FindDocsResult{URL: top.Result.URL, Title: top.Result.Title, Reason: "ranked_top"}, nil
}

func (k *Toolkit) fetchPage(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := k.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("fetch %s: %s", rawURL, resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func validatePage(url, content string) ValidateDocsResult {
	if content == "" {
		return ValidateDocsResult{URL: url, IsDocs: false, Reason: "no_content"}
	}
	text := strings.ToLower(content)
	for _, hint := range docHints {
		if hint.MatchString(text) {
			return ValidateDocsResult{URL: url, IsDocs: true, Reason: "match:" + hint.String()}
		}
	}
	return ValidateDocsResult{URL: url, IsDocs: false, Reason: "no_match"}
}
