package docs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/skosovsky/toolhub"
	"github.com/skosovsky/toolhub/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRank_PrefersOfficialDocs(t *testing.T) {
	candidates := []SearchResult{
		{Title: "react - Stack Overflow", URL: "https://stackoverflow.com/questions/tagged/react"},
		{Title: "React – Official Documentation", URL: "https://react.dev/docs"},
		{Title: "react - npm", URL: "https://www.npmjs.com/package/react"},
		{Title: "facebook/react", URL: "https://github.com/facebook/react"},
	}

	ranked := Rank("react", candidates)
	require.Len(t, ranked, 4)
	assert.Equal(t, "https://react.dev/docs", ranked[0].Result.URL)
	assert.Greater(t, ranked[0].Score, ranked[1].Score)
}

func TestRank_PenalizesForums(t *testing.T) {
	score := func(url, title string) float64 {
		r := Rank("widget", []SearchResult{{Title: title, URL: url}})
		return r[0].Score
	}
	official := score("https://docs.widget.io/reference", "Widget API Reference")
	forum := score("https://stackoverflow.com/questions/1", "How do I use widget?")
	assert.Greater(t, official, forum)
}

func TestRank_DocsSubdomainAndReadthedocs(t *testing.T) {
	ranked := Rank("widget", []SearchResult{
		{Title: "Widget", URL: "https://widget.io"},
		{Title: "Widget docs", URL: "https://widget.readthedocs.io/en/latest/"},
	})
	assert.Equal(t, "https://widget.readthedocs.io/en/latest/", ranked[0].Result.URL)
}

func TestValidatePage(t *testing.T) {
	docs := validatePage("https://docs.widget.io", "Welcome! Use the sidebar to navigate the API reference.")
	assert.True(t, docs.IsDocs)
	assert.Contains(t, docs.Reason, "match:")

	marketing := validatePage("https://widget.io", "Buy widget pro today! Best prices.")
	assert.False(t, marketing.IsDocs)
	assert.Equal(t, "no_match", marketing.Reason)

	empty := validatePage("https://widget.io", "")
	assert.False(t, empty.IsDocs)
	assert.Equal(t, "no_content", empty.Reason)
}

// staticSearcher returns fixed candidates without any network access.
type staticSearcher struct {
	results []SearchResult
}

func (s staticSearcher) Search(context.Context, string, int) ([]SearchResult, error) {
	return s.results, nil
}

func TestFindDocsTool(t *testing.T) {
	kit := NewToolkit(staticSearcher{results: []SearchResult{
		{Title: "Widget Documentation", URL: "https://docs.widget.io"},
		{Title: "widget - npm", URL: "https://www.npmjs.com/package/widget"},
	}}, nil)
	tool, err := kit.FindDocsTool()
	require.NoError(t, err)
	assert.Equal(t, "find_docs", tool.Name())
	assert.True(t, toolhub.HasTag(tool, "docs"))

	d := testutil.NewTestDispatcher(testutil.NewTestRegistry(tool))
	res := d.Invoke(context.Background(), "find_docs", toolhub.Args{"technology": "widget"})
	require.True(t, res.Ok())
	assert.Equal(t, "https://docs.widget.io", res.Output.String("url"))
	assert.Equal(t, "ranked_top", res.Output.String("reason"))
}

func TestFindDocsTool_NoResults(t *testing.T) {
	kit := NewToolkit(staticSearcher{}, nil)
	tool, err := kit.FindDocsTool()
	require.NoError(t, err)

	d := testutil.NewTestDispatcher(testutil.NewTestRegistry(tool))
	res := d.Invoke(context.Background(), "find_docs", toolhub.Args{"technology": "nonexistent"})
	require.True(t, res.Ok())
	assert.Empty(t, res.Output.String("url"))
	assert.Equal(t, "no_results", res.Output.String("reason"))
}

func TestValidateDocsTool_FetchesWhenNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>Table of Contents ...</html>"))
	}))
	t.Cleanup(srv.Close)

	kit := NewToolkit(staticSearcher{}, srv.Client())
	tool, err := kit.ValidateDocsTool()
	require.NoError(t, err)

	d := testutil.NewTestDispatcher(testutil.NewTestRegistry(tool))
	res := d.Invoke(context.Background(), "validate_docs", toolhub.Args{"url": srv.URL})
	require.True(t, res.Ok())
	assert.True(t, res.Output.Bool("is_docs"))
}

func TestToolkit_RegisterAll(t *testing.T) {
	reg := toolhub.NewRegistry()
	require.NoError(t, NewToolkit(staticSearcher{}, nil).Register(reg))
	assert.Equal(t, 3, reg.Len())

	var names []string
	for tool := range reg.List("docs") {
		names = append(names, tool.Name())
	}
	assert.Equal(t, []string{"find_docs", "validate_docs", "find_docs_validated"}, names)
}

func TestCandidateSearcher_ProbesPatterns(t *testing.T) {
	// The candidate list is deterministic; check shape without network.
	urls := candidateURLs("My Widget")
	require.NotEmpty(t, urls)
	assert.Contains(t, urls, "https://docs.my-widget.io")
	assert.Contains(t, urls, "https://my-widget.readthedocs.io/en/latest/")
}
