package langchain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skosovsky/toolhub"
	"github.com/skosovsky/toolhub/testutil"
)

func searchTool(t *testing.T) toolhub.Tool {
	t.Helper()
	type args struct {
		Query string `json:"query" description:"Search query"`
	}
	type out struct {
		Answer string `json:"answer"`
	}
	tool, err := toolhub.NewTool("search", "Search for an answer",
		func(_ context.Context, a args) (out, error) {
			return out{Answer: "result for " + a.Query}, nil
		})
	require.NoError(t, err)
	return tool
}

func TestDefinitions(t *testing.T) {
	reg := testutil.NewTestRegistry(searchTool(t))
	defs := Definitions(reg)
	require.Len(t, defs, 1)

	assert.Equal(t, "function", defs[0].Type)
	require.NotNil(t, defs[0].Function)
	assert.Equal(t, "search", defs[0].Function.Name)
	assert.Equal(t, "Search for an answer", defs[0].Function.Description)

	params, ok := defs[0].Function.Parameters.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "object", params["type"])
}

func TestTools_CallWithJSONInput(t *testing.T) {
	reg := testutil.NewTestRegistry(searchTool(t))
	wrapped := Tools(testutil.NewTestDispatcher(reg))
	require.Len(t, wrapped, 1)
	assert.Equal(t, "search", wrapped[0].Name())
	assert.Equal(t, "Search for an answer", wrapped[0].Description())

	out, err := wrapped[0].Call(context.Background(), `{"query": "golang"}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"answer": "result for golang"}`, out)
}

func TestTools_CallWithBareString(t *testing.T) {
	reg := testutil.NewTestRegistry(searchTool(t))
	wrapped := Tools(testutil.NewTestDispatcher(reg))

	// Single-field tools accept the agent's bare-string input.
	out, err := wrapped[0].Call(context.Background(), "golang")
	require.NoError(t, err)
	assert.JSONEq(t, `{"answer": "result for golang"}`, out)
}

func TestTools_FailureBecomesObservation(t *testing.T) {
	s, err := toolhub.NewSchema(
		toolhub.Field{Name: "a", Type: toolhub.TypeInteger, Required: true},
		toolhub.Field{Name: "b", Type: toolhub.TypeInteger, Required: true},
	)
	require.NoError(t, err)
	tool, err := toolhub.NewDynamicTool("add", "Add numbers", s,
		func(_ context.Context, args toolhub.Args) (toolhub.Args, error) {
			return toolhub.Args{"sum": args.Int("a") + args.Int("b")}, nil
		})
	require.NoError(t, err)
	reg := testutil.NewTestRegistry(tool)
	wrapped := Tools(testutil.NewTestDispatcher(reg))

	// Missing required field: the validation message is the observation,
	// not a hard error that would abort the agent loop.
	out, err := wrapped[0].Call(context.Background(), `{"a": 1}`)
	require.NoError(t, err)
	assert.Contains(t, out, "b")

	// Bare string on a multi-field tool cannot be mapped.
	out, err = wrapped[0].Call(context.Background(), "not json")
	require.NoError(t, err)
	assert.Contains(t, out, "not a JSON object")
}
