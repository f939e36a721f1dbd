// Package testutil provides test helpers for toolhub (e.g. MockTool).
package testutil

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/skosovsky/toolhub"
)

// MockTool is a configurable Tool implementation for tests. Calls counts
// Invoke invocations, so tests can assert a handler was (or was not)
// reached.
type MockTool struct {
	NameVal     string
	DescVal     string
	InputVal    *toolhub.Schema
	OutputVal   *toolhub.Schema
	TagsVal     []string
	AsyncVal    bool
	CacheTTLVal time.Duration
	TimeoutVal  time.Duration
	InvokeFn    func(ctx context.Context, args toolhub.Args) (toolhub.Args, error)

	calls atomic.Int64
}

// Name returns the tool name.
func (m *MockTool) Name() string {
	if m.NameVal != "" {
		return m.NameVal
	}
	return "mock"
}

// Description returns the tool description.
func (m *MockTool) Description() string {
	return m.DescVal
}

// InputSchema returns the configured input schema (or nil).
func (m *MockTool) InputSchema() *toolhub.Schema {
	return m.InputVal
}

// OutputSchema returns the configured output schema (or nil).
func (m *MockTool) OutputSchema() *toolhub.Schema {
	return m.OutputVal
}

// Invoke counts the call and runs InvokeFn if set, otherwise echoes args.
func (m *MockTool) Invoke(ctx context.Context, args toolhub.Args) (toolhub.Args, error) {
	m.calls.Add(1)
	if m.InvokeFn != nil {
		return m.InvokeFn(ctx, args)
	}
	return args, nil
}

// Calls returns how many times Invoke has run.
func (m *MockTool) Calls() int64 {
	return m.calls.Load()
}

func (m *MockTool) Tags() []string          { return m.TagsVal }
func (m *MockTool) Async() bool             { return m.AsyncVal }
func (m *MockTool) CacheTTL() time.Duration { return m.CacheTTLVal }
func (m *MockTool) Timeout() time.Duration  { return m.TimeoutVal }
func (m *MockTool) ExpectedTokens() int     { return 0 }

// Ensure MockTool implements Tool and ToolMetadata.
var (
	_ toolhub.Tool         = (*MockTool)(nil)
	_ toolhub.ToolMetadata = (*MockTool)(nil)
)
