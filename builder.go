package toolhub

import (
	"context"
	"fmt"
	"time"
)

// tool is the internal implementation of Tool built by NewTool and
// NewDynamicTool.
type tool struct {
	name        string
	description string
	input       *Schema
	output      *Schema
	invoke      func(context.Context, Args) (Args, error)
	opts        toolOptions
}

// NewTool builds a Tool from a typed function. Input and output schemas are
// derived from the I and O struct types via reflection; schema validation
// happens in the Dispatcher, the Validatable layer (business rules) runs
// here after decoding. Returns an error if schema derivation fails (e.g.
// unsupported type).
func NewTool[I any, O any](
	name, description string,
	fn func(ctx context.Context, args I) (O, error),
	opts ...ToolOption,
) (Tool, error) {
	var o toolOptions
	for _, opt := range opts {
		opt(&o)
	}
	ext, err := NewExtractor[I](o.strict)
	if err != nil {
		return nil, fmt.Errorf("input schema for %q: %w", name, err)
	}
	output, err := schemaFor[O](false)
	if err != nil {
		return nil, fmt.Errorf("output schema for %q: %w", name, err)
	}
	invoke := func(ctx context.Context, args Args) (Args, error) {
		in, err := ext.Decode(args)
		if err != nil {
			return nil, err
		}
		res, err := fn(ctx, in)
		if err != nil {
			return nil, err
		}
		return encodeArgs(res)
	}
	return &tool{
		name:        name,
		description: description,
		input:       ext.Schema(),
		output:      output,
		invoke:      invoke,
		opts:        o,
	}, nil
}

// NewDynamicTool creates a Tool from an explicit input Schema and an untyped
// handler. Used for runtime integration where no Go struct type exists (e.g.
// tools discovered from an external server). The output is unconstrained
// unless an output schema is attached with the returned tool's contract in
// mind; dynamic imports leave it nil.
func NewDynamicTool(
	name, description string,
	input *Schema,
	fn func(ctx context.Context, args Args) (Args, error),
	opts ...ToolOption,
) (Tool, error) {
	var o toolOptions
	for _, opt := range opts {
		opt(&o)
	}
	if input == nil {
		return nil, fmt.Errorf("dynamic tool %q: input schema must not be nil", name)
	}
	if fn == nil {
		return nil, fmt.Errorf("dynamic tool %q: handler must not be nil", name)
	}
	return &tool{
		name:        name,
		description: description,
		input:       input,
		invoke:      fn,
		opts:        o,
	}, nil
}

func (t *tool) Name() string          { return t.name }
func (t *tool) Description() string   { return t.description }
func (t *tool) InputSchema() *Schema  { return t.input }
func (t *tool) OutputSchema() *Schema { return t.output }

func (t *tool) Invoke(ctx context.Context, args Args) (Args, error) {
	return t.invoke(ctx, args)
}

func (t *tool) Tags() []string          { return append([]string(nil), t.opts.tags...) }
func (t *tool) Async() bool             { return t.opts.async }
func (t *tool) CacheTTL() time.Duration { return t.opts.cacheTTL }
func (t *tool) Timeout() time.Duration  { return t.opts.timeout }
func (t *tool) ExpectedTokens() int     { return t.opts.expectedTokens }

var (
	_ Tool         = (*tool)(nil)
	_ ToolMetadata = (*tool)(nil)
)
