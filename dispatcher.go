package toolhub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// cacheableTag marks a tool cacheable without a per-tool TTL; the
// Dispatcher's default TTL applies.
const cacheableTag = "cacheable"

// Dispatcher runs tools from a Registry through the full invocation
// pipeline: lookup, input validation, optional caching, timeout and
// concurrency control, execution, output contract check, and usage
// accounting. It never returns an error: every outcome, including
// "tool not found" and a panicking handler, is a Result.
type Dispatcher struct {
	reg  *Registry
	opts dispatcherOptions
	sem  chan struct{}
}

// NewDispatcher creates a Dispatcher over reg.
func NewDispatcher(reg *Registry, opts ...DispatcherOption) *Dispatcher {
	o := dispatcherOptions{
		logger:        zap.NewNop(),
		recoverPanics: true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	d := &Dispatcher{reg: reg, opts: o}
	if o.maxConcurrency > 0 {
		d.sem = make(chan struct{}, o.maxConcurrency)
	}
	return d
}

// FromConfig creates a Dispatcher wired per the environment configuration:
// a cache when caching is enabled and a file recorder when usage logging is
// enabled. Explicit options are applied last and win.
func FromConfig(reg *Registry, cfg Config, opts ...DispatcherOption) *Dispatcher {
	base := []DispatcherOption{WithDefaultCacheTTL(cfg.CacheTTL)}
	if cfg.CacheEnabled {
		base = append(base, WithCache(NewCache()))
	}
	if cfg.UsageLogEnabled && cfg.UsageLogPath != "" {
		base = append(base, WithRecorder(NewFileRecorder(cfg.UsageLogPath)))
	}
	return NewDispatcher(reg, append(base, opts...)...)
}

// Registry returns the underlying registry. Adapters use it to enumerate
// the tools the Dispatcher can run.
func (d *Dispatcher) Registry() *Registry { return d.reg }

// Invoke runs the named tool with the given raw input and returns its
// Result. Input is validated and coerced before the handler runs; a tool
// whose input fails validation is never invoked. Successful results of
// cacheable tools are served from cache for their TTL.
func (d *Dispatcher) Invoke(ctx context.Context, name string, input Args) Result {
	start := time.Now()
	res := d.invoke(ctx, name, input)
	res.Tool = name
	res.Duration = time.Since(start)
	d.record(name, input, res)
	d.log(name, res)
	return res
}

// InvokeAsync runs the tool in its own goroutine and returns a channel that
// delivers exactly one Result. The channel is buffered: the result is never
// lost even if the caller reads late.
func (d *Dispatcher) InvokeAsync(ctx context.Context, name string, input Args) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		out <- d.Invoke(ctx, name, input)
		close(out)
	}()
	return out
}

func (d *Dispatcher) invoke(ctx context.Context, name string, input Args) Result {
	t, err := d.reg.Get(name)
	if err != nil {
		return Result{Failure: &Failure{
			Kind:    FailNotFound,
			Message: fmt.Sprintf("no tool registered under %q", name),
			Err:     err,
		}}
	}

	coerced, err := ValidateInput(t.InputSchema(), input)
	if err != nil {
		return Result{Failure: &Failure{
			Kind:    FailInvalidInput,
			Message: err.Error(),
			Err:     err,
		}}
	}

	ttl := d.cacheTTLFor(t)
	if ttl > 0 && d.opts.cache != nil {
		key := cacheKey(t, coerced)
		var res Result
		value, hit, err := d.opts.cache.GetOrCompute(key, ttl, func() (Args, error) {
			res = d.execute(ctx, t, coerced)
			if res.Failure != nil {
				return nil, res.Failure
			}
			return res.Output, nil
		})
		if hit {
			return Result{Output: value, CacheHit: true}
		}
		if err != nil {
			return res
		}
		return res
	}

	return d.execute(ctx, t, coerced)
}

// execute runs the handler with usage collection, concurrency limiting, and
// the effective timeout applied.
func (d *Dispatcher) execute(ctx context.Context, t Tool, args Args) Result {
	if d.sem != nil {
		select {
		case d.sem <- struct{}{}:
			defer func() { <-d.sem }()
		case <-ctx.Done():
			return Result{Failure: executionFailure(t.Name(), ctx.Err())}
		}
	}

	if timeout := d.timeoutFor(t); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	ctx, col := withUsageCollector(ctx)
	output, err := d.run(ctx, t, args)
	usage := col.drain()
	if err != nil {
		return Result{Failure: d.classify(t.Name(), err), Usage: usage}
	}

	checked, err := ValidateOutput(t.Name(), t.OutputSchema(), output)
	if err != nil {
		return Result{
			Failure: &Failure{Kind: FailOutputContract, Message: err.Error(), Err: err},
			Usage:   usage,
		}
	}
	return Result{Output: checked, Usage: usage}
}

// run invokes the handler, converting a panic into an error when recovery
// is enabled.
func (d *Dispatcher) run(ctx context.Context, t Tool, args Args) (output Args, err error) {
	if d.opts.recoverPanics {
		defer func() {
			if p := recover(); p != nil {
				err = &ExecutionError{Tool: t.Name(), Err: &panicError{p: p}}
			}
		}()
	}
	return t.Invoke(ctx, args)
}

// classify maps a handler error to a Failure. Validation errors raised by
// the handler itself (e.g. a Validatable business check inside a typed tool)
// stay invalid-input; everything else is an execution fault.
func (d *Dispatcher) classify(tool string, err error) *Failure {
	if IsValidationError(err) {
		return &Failure{Kind: FailInvalidInput, Message: err.Error(), Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		wrapped := fmt.Errorf("%w: %s", ErrTimeout, tool)
		return &Failure{Kind: FailExecution, Message: wrapped.Error(), Err: wrapped}
	}
	return executionFailure(tool, err)
}

func executionFailure(tool string, err error) *Failure {
	var execErr *ExecutionError
	if !errors.As(err, &execErr) {
		err = &ExecutionError{Tool: tool, Err: err}
	}
	return &Failure{Kind: FailExecution, Message: err.Error(), Err: err}
}

// cacheTTLFor returns the effective cache TTL for t: its own TTL, else the
// Dispatcher default when the tool carries the cacheable tag, else zero.
func (d *Dispatcher) cacheTTLFor(t Tool) time.Duration {
	if ttl := CacheTTL(t); ttl > 0 {
		return ttl
	}
	if HasTag(t, cacheableTag) {
		return d.opts.defaultCacheTTL
	}
	return 0
}

// timeoutFor returns the per-tool timeout override, else the default.
func (d *Dispatcher) timeoutFor(t Tool) time.Duration {
	if tm, ok := t.(ToolMetadata); ok {
		if timeout := tm.Timeout(); timeout > 0 {
			return timeout
		}
	}
	return d.opts.timeout
}

// cacheKey derives the cache key from the tool name, its input schema
// fingerprint, and the canonical JSON of the coerced arguments. Including
// the fingerprint means re-registering a tool with a changed schema never
// serves results computed under the old contract.
func cacheKey(t Tool, args Args) string {
	digest := xxhash.New()
	_, _ = digest.WriteString(t.Name())
	_, _ = digest.WriteString("\x00")
	if s := t.InputSchema(); s != nil {
		_, _ = digest.WriteString(strconv.FormatUint(s.Fingerprint(), 16))
	}
	_, _ = digest.WriteString("\x00")
	// encoding/json emits map keys in sorted order, so equal argument maps
	// always marshal identically.
	if encoded, err := json.Marshal(args); err == nil {
		_, _ = digest.Write(encoded)
	}
	return t.Name() + ":" + strconv.FormatUint(digest.Sum64(), 16)
}

// record appends a usage record when the handler reported usage and a
// recorder is attached. Failed invocations that consumed tokens are recorded
// too; the spend happened either way.
func (d *Dispatcher) record(name string, input Args, res Result) {
	if res.Usage == nil || d.opts.recorder == nil {
		return
	}
	u := *res.Usage
	cost := u.Cost
	if cost == 0 && u.Model != "" {
		cost = EstimateCost(u.Model, u.InputTokens, u.OutputTokens)
	}
	d.opts.recorder.Record(UsageRecord{
		ID:           uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		Tool:         name,
		Model:        u.Model,
		InputTokens:  u.InputTokens,
		OutputTokens: u.OutputTokens,
		Cost:         cost,
		DurationMS:   float64(res.Duration) / float64(time.Millisecond),
		Params:       redactParams(input),
	})
}

func (d *Dispatcher) log(name string, res Result) {
	if res.Failure != nil {
		d.opts.logger.Warn("tool invocation failed",
			zap.String("tool", name),
			zap.String("kind", string(res.Failure.Kind)),
			zap.Duration("duration", res.Duration),
			zap.Error(res.Failure.Err),
		)
		return
	}
	d.opts.logger.Debug("tool invocation succeeded",
		zap.String("tool", name),
		zap.Bool("cache_hit", res.CacheHit),
		zap.Duration("duration", res.Duration),
	)
}
