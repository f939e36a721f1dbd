package toolhub

import (
	"context"
	"time"
)

// Tool is the contract for an LLM-callable instrument. Any value with a name,
// declared input/output schemas, and an Invoke method qualifies; there is no
// base type to embed. Tools are provider-agnostic (no knowledge of OpenAI,
// LangChain, etc.).
type Tool interface {
	Name() string
	Description() string
	// InputSchema declares the fields Invoke accepts. The Dispatcher validates
	// and coerces caller input against it before the tool runs.
	InputSchema() *Schema
	// OutputSchema declares the shape of the value Invoke returns. A nil
	// schema means the output is unconstrained (e.g. dynamically imported
	// tools whose remote contract is unknown).
	OutputSchema() *Schema
	// Invoke runs the tool with validated, coerced arguments.
	Invoke(ctx context.Context, args Args) (Args, error)
}

// ToolMetadata is implemented by tools created with NewTool and
// NewDynamicTool and provides optional per-tool settings. The Registry uses
// Tags() for filtered listing; the Dispatcher uses Async(), CacheTTL(), and
// Timeout(). All methods are safe on tools that do not implement the
// interface via the package-level accessors (Tags, IsAsync, CacheTTL).
type ToolMetadata interface {
	Tags() []string
	Async() bool
	// CacheTTL returns how long successful results may be served from cache.
	// Zero disables caching for the tool.
	CacheTTL() time.Duration
	// Timeout overrides the Dispatcher's default execution timeout when > 0.
	Timeout() time.Duration
	// ExpectedTokens is an advisory hint of LLM token consumption per call.
	ExpectedTokens() int
}

// Args is a JSON-object-shaped argument or result map. Values produced by
// validation are coerced to the schema's semantic types: string, int64,
// float64, bool, []any, map[string]any.
type Args map[string]any

// String returns the string value for key, or "" if absent or not a string.
func (a Args) String(key string) string {
	s, _ := a[key].(string)
	return s
}

// Int returns the integer value for key, accepting int64 and float64
// representations. Returns 0 if absent or non-numeric.
func (a Args) Int(key string) int64 {
	switch v := a[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

// Float returns the numeric value for key, or 0 if absent or non-numeric.
func (a Args) Float(key string) float64 {
	switch v := a[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

// Bool returns the boolean value for key, or false if absent or not a bool.
func (a Args) Bool(key string) bool {
	b, _ := a[key].(bool)
	return b
}

// FailureKind classifies why an invocation did not succeed.
type FailureKind string

const (
	// FailNotFound: no tool registered under the requested name.
	FailNotFound FailureKind = "not_found"
	// FailInvalidInput: caller input did not satisfy the input schema.
	// The handler was never called.
	FailInvalidInput FailureKind = "invalid_input"
	// FailOutputContract: the handler returned a value violating its own
	// declared output schema. A tool defect, not a caller error.
	FailOutputContract FailureKind = "output_contract"
	// FailExecution: the handler returned an error or panicked.
	FailExecution FailureKind = "execution"
	// FailImport: dynamic import or discovery failed.
	FailImport FailureKind = "import"
)

// Failure describes a failed invocation. Err retains the underlying fault
// for errors.Is/errors.As; Message is safe to surface to an LLM.
type Failure struct {
	Kind    FailureKind
	Message string
	Err     error
}

func (f *Failure) Error() string { return string(f.Kind) + ": " + f.Message }

// Unwrap supports errors.Is/errors.As on wrapped chains.
func (f *Failure) Unwrap() error { return f.Err }

// Result is the outcome of one Dispatcher invocation: either Output is set
// (success) or Failure is set, never both.
type Result struct {
	Tool     string
	Output   Args
	Failure  *Failure
	CacheHit bool
	Duration time.Duration
	// Usage aggregates the side-channel usage payloads the handler reported
	// during this invocation, if any.
	Usage *Usage
}

// Ok reports whether the invocation succeeded.
func (r Result) Ok() bool { return r.Failure == nil }

// Tags returns t's tags if it carries metadata, else nil.
func Tags(t Tool) []string {
	if tm, ok := t.(ToolMetadata); ok {
		return tm.Tags()
	}
	return nil
}

// IsAsync reports whether t declares itself asynchronous.
func IsAsync(t Tool) bool {
	if tm, ok := t.(ToolMetadata); ok {
		return tm.Async()
	}
	return false
}

// CacheTTL returns t's cache TTL, or zero when t is not cacheable.
func CacheTTL(t Tool) time.Duration {
	if tm, ok := t.(ToolMetadata); ok {
		return tm.CacheTTL()
	}
	return 0
}

// HasTag reports whether t carries the given tag.
func HasTag(t Tool, tag string) bool {
	for _, have := range Tags(t) {
		if have == tag {
			return true
		}
	}
	return false
}
