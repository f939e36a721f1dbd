package toolhub

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestArgs_Getters(t *testing.T) {
	args := Args{
		"s":  "hello",
		"i":  int64(7),
		"f":  1.5,
		"b":  true,
		"fi": float64(3),
	}
	assert.Equal(t, "hello", args.String("s"))
	assert.Equal(t, int64(7), args.Int("i"))
	assert.Equal(t, int64(3), args.Int("fi"))
	assert.Equal(t, 1.5, args.Float("f"))
	assert.Equal(t, 7.0, args.Float("i"))
	assert.True(t, args.Bool("b"))

	assert.Equal(t, "", args.String("missing"))
	assert.Equal(t, int64(0), args.Int("missing"))
	assert.Equal(t, 0.0, args.Float("s"))
	assert.False(t, args.Bool("missing"))
}

func TestResult_Ok(t *testing.T) {
	ok := Result{Tool: "echo", Output: Args{"x": int64(1)}}
	assert.True(t, ok.Ok())

	failed := Result{Tool: "echo", Failure: &Failure{Kind: FailExecution, Message: "boom"}}
	assert.False(t, failed.Ok())
	assert.Equal(t, "execution: boom", failed.Failure.Error())
}

func TestMetadataHelpers_PlainTool(t *testing.T) {
	// A tool without metadata gets safe defaults from the helpers.
	plain := plainTool{name: "bare"}
	assert.Nil(t, Tags(plain))
	assert.False(t, IsAsync(plain))
	assert.Zero(t, CacheTTL(plain))
	assert.False(t, HasTag(plain, "anything"))
}

type plainTool struct {
	name string
}

func (p plainTool) Name() string          { return p.name }
func (p plainTool) Description() string   { return "" }
func (p plainTool) InputSchema() *Schema  { return nil }
func (p plainTool) OutputSchema() *Schema { return nil }
func (p plainTool) Invoke(_ context.Context, args Args) (Args, error) {
	return args, nil
}

func TestPlainTool_ImplementsTool(_ *testing.T) {
	var _ Tool = plainTool{}
}

func ExampleNewTool() {
	type Args struct {
		City string `json:"city" description:"City name"`
	}
	type Out struct {
		Temp float64 `json:"temp"`
	}
	tool, err := NewTool("weather", "Get temperature for a city", func(_ context.Context, _ Args) (Out, error) {
		return Out{Temp: 22.5}, nil
	})
	if err != nil {
		return
	}
	_ = tool.Name()
	_ = tool.InputSchema()
	// Output:
}

func ExampleDispatcher_Invoke() {
	type Args struct {
		X int `json:"x"`
	}
	type Out struct {
		Y int `json:"y"`
	}
	tool, err := NewTool("add_one", "Add one", func(_ context.Context, a Args) (Out, error) {
		return Out{Y: a.X + 1}, nil
	})
	if err != nil {
		return
	}
	reg := NewRegistry()
	if err := reg.Register(tool); err != nil {
		return
	}
	d := NewDispatcher(reg)
	res := d.Invoke(context.Background(), "add_one", map[string]any{"x": 5})
	_ = res.Ok()
	// res.Output.Int("y") == 6
	// Output:
}
