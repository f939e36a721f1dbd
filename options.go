package toolhub

import (
	"time"

	"go.uber.org/zap"
)

// toolOptions hold optional tool settings (tags, async, cache TTL, etc.).
type toolOptions struct {
	strict         bool
	async          bool
	tags           []string
	cacheTTL       time.Duration
	timeout        time.Duration
	expectedTokens int
}

// ToolOption configures a tool built with NewTool or NewDynamicTool.
type ToolOption func(*toolOptions)

// WithStrict sets strict mode for the input schema: additionalProperties:
// false for all objects and all properties required (OpenAI Structured
// Outputs compatibility).
func WithStrict() ToolOption {
	return func(o *toolOptions) {
		o.strict = true
	}
}

// WithTags sets tool tags (metadata for discovery and filtered listing).
func WithTags(tags ...string) ToolOption {
	return func(o *toolOptions) {
		o.tags = tags
	}
}

// WithAsync marks the tool as asynchronous. The Dispatcher treats async
// tools as suspension-friendly; adapters expose the flag to frameworks that
// distinguish the two.
func WithAsync() ToolOption {
	return func(o *toolOptions) {
		o.async = true
	}
}

// WithCacheTTL marks the tool cacheable: successful results for identical
// input are served from the Dispatcher's cache for d.
func WithCacheTTL(d time.Duration) ToolOption {
	return func(o *toolOptions) {
		o.cacheTTL = d
	}
}

// WithTimeout sets a per-tool execution timeout overriding the Dispatcher
// default.
func WithTimeout(d time.Duration) ToolOption {
	return func(o *toolOptions) {
		o.timeout = d
	}
}

// WithExpectedTokens records an advisory hint of LLM token consumption per
// call, surfaced through ToolMetadata.
func WithExpectedTokens(n int) ToolOption {
	return func(o *toolOptions) {
		o.expectedTokens = n
	}
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*dispatcherOptions)

type dispatcherOptions struct {
	cache           *Cache
	recorder        *Recorder
	logger          *zap.Logger
	timeout         time.Duration
	maxConcurrency  int
	recoverPanics   bool
	defaultCacheTTL time.Duration
}

// WithCache attaches a TTL cache. Tools that declare a cache TTL (or carry
// the "cacheable" tag) have successful results cached.
func WithCache(c *Cache) DispatcherOption {
	return func(o *dispatcherOptions) {
		o.cache = c
	}
}

// WithRecorder attaches a usage recorder. Handlers that report usage via
// ReportUsage get one record appended per invocation.
func WithRecorder(rec *Recorder) DispatcherOption {
	return func(o *dispatcherOptions) {
		o.recorder = rec
	}
}

// WithLogger sets the logger. Defaults to zap.NewNop().
func WithLogger(logger *zap.Logger) DispatcherOption {
	return func(o *dispatcherOptions) {
		o.logger = logger
	}
}

// WithDefaultTimeout sets the default execution timeout for tools.
// Pass 0 to disable.
func WithDefaultTimeout(d time.Duration) DispatcherOption {
	return func(o *dispatcherOptions) {
		o.timeout = d
	}
}

// WithMaxConcurrency limits concurrent tool executions (semaphore).
// Pass 0 or negative to disable the semaphore.
func WithMaxConcurrency(n int) DispatcherOption {
	return func(o *dispatcherOptions) {
		o.maxConcurrency = n
	}
}

// WithRecoverPanics enables panic recovery during execution (a panicking
// handler yields an execution failure instead of crashing the process).
func WithRecoverPanics(enable bool) DispatcherOption {
	return func(o *dispatcherOptions) {
		o.recoverPanics = enable
	}
}

// WithDefaultCacheTTL sets the TTL applied to tools that carry the
// "cacheable" tag without declaring their own TTL.
func WithDefaultCacheTTL(d time.Duration) DispatcherOption {
	return func(o *dispatcherOptions) {
		o.defaultCacheTTL = d
	}
}
