// Package toolhub is a registry and invocation core for LLM agent tools:
// register tools once, validate their inputs against declared schemas, and
// dispatch calls with caching, timeouts, and cost accounting.
//
// # Overview
//
// LLMs produce tool calls as loosely-typed JSON. This package turns that
// JSON into safe executions: resolve the tool by name → validate and coerce
// the arguments against its declared schema → execute with timeout and
// panic isolation → check the output contract → account token usage.
// Every outcome is a Result; a missing tool, bad input, or panicking
// handler becomes a classified Failure, never a crash.
//
// Pipeline: Go function + argument struct → NewTool (reflection + schema) →
// Registry → Dispatcher.Invoke (validate, cache, execute, record) → Result.
//
// # Key concepts
//
//   - Single Source of Truth: one set of struct tags drives both the schema
//     shown to the LLM and the validation of incoming arguments.
//   - Validation Firewall: a tool whose input fails validation is never
//     invoked; the ValidationError message is safe to send back to the LLM
//     for self-correction.
//   - Side-Channel Accounting: handlers report LLM token usage via
//     ReportUsage; the Dispatcher aggregates it into one usage-log record
//     per invocation, with cost estimated from the pricing table.
//   - Dynamic Import: the smithery subpackage discovers tools on remote
//     MCP servers and registers them under namespaced names.
//
// See Tool, Result, and Failure for the core types, NewRegistry and
// NewDispatcher for setup, and the adapters subpackages for OpenAI and
// LangChain integration.
//
// # Example
//
//	type Args struct { City string `json:"city" jsonschema:"required"` }
//	type Out  struct { Temp float64 `json:"temp"` }
//	tool, err := toolhub.NewTool("weather", "Get weather", func(_ context.Context, a Args) (Out, error) {
//	    return Out{Temp: 22.5}, nil
//	})
//	if err != nil { ... }
//	reg := toolhub.NewRegistry()
//	reg.Register(tool)
//	d := toolhub.NewDispatcher(reg, toolhub.WithCache(toolhub.NewCache()))
//	res := d.Invoke(ctx, "weather", toolhub.Args{"city": "Moscow"})
package toolhub
