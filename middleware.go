package toolhub

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Middleware wraps a Tool with cross-cutting behavior (logging, recovery,
// timeout).
type Middleware func(Tool) Tool

// WithLogging returns a middleware that logs start, end, duration, and
// errors.
func WithLogging(logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next Tool) Tool {
		return &loggingTool{toolBase: toolBase{next: next}, logger: logger}
	}
}

// WithRecovery returns a middleware that recovers panics and returns an
// ExecutionError.
func WithRecovery() Middleware {
	return func(next Tool) Tool {
		return &recoveryTool{toolBase{next: next}}
	}
}

// WithTimeoutMiddleware returns a middleware that enforces a per-tool
// timeout. Named with "Middleware" suffix to avoid collision with the
// ToolOption WithTimeout. When both the dispatcher default timeout and this
// middleware apply, the effective timeout is the minimum of the two.
func WithTimeoutMiddleware(d time.Duration) Middleware {
	return func(next Tool) Tool {
		return &timeoutTool{toolBase: toolBase{next: next}, timeout: d}
	}
}

// toolBase delegates Tool and ToolMetadata to the wrapped Tool; used by
// middleware wrappers.
type toolBase struct{ next Tool }

func (b *toolBase) Name() string          { return b.next.Name() }
func (b *toolBase) Description() string   { return b.next.Description() }
func (b *toolBase) InputSchema() *Schema  { return b.next.InputSchema() }
func (b *toolBase) OutputSchema() *Schema { return b.next.OutputSchema() }

func (b *toolBase) Tags() []string { return Tags(b.next) }
func (b *toolBase) Async() bool    { return IsAsync(b.next) }
func (b *toolBase) CacheTTL() time.Duration {
	return CacheTTL(b.next)
}
func (b *toolBase) Timeout() time.Duration {
	if tm, ok := b.next.(ToolMetadata); ok {
		return tm.Timeout()
	}
	return 0
}
func (b *toolBase) ExpectedTokens() int {
	if tm, ok := b.next.(ToolMetadata); ok {
		return tm.ExpectedTokens()
	}
	return 0
}

type loggingTool struct {
	toolBase
	logger *zap.Logger
}

func (m *loggingTool) Invoke(ctx context.Context, args Args) (Args, error) {
	m.logger.Info("tool start", zap.String("tool", m.next.Name()))
	start := time.Now()
	res, err := m.next.Invoke(ctx, args)
	dur := time.Since(start)
	if err != nil {
		m.logger.Error("tool error", zap.String("tool", m.next.Name()), zap.Duration("duration", dur), zap.Error(err))
		return nil, err
	}
	m.logger.Info("tool end", zap.String("tool", m.next.Name()), zap.Duration("duration", dur))
	return res, nil
}

type recoveryTool struct{ toolBase }

func (r *recoveryTool) Invoke(ctx context.Context, args Args) (res Args, err error) {
	defer func() {
		if p := recover(); p != nil {
			res = nil
			err = &ExecutionError{Tool: r.next.Name(), Err: &panicError{p: p}}
		}
	}()
	return r.next.Invoke(ctx, args)
}

type timeoutTool struct {
	toolBase
	timeout time.Duration
}

func (t *timeoutTool) Timeout() time.Duration {
	if t.timeout > 0 {
		return t.timeout
	}
	return t.toolBase.Timeout()
}

func (t *timeoutTool) Invoke(ctx context.Context, args Args) (Args, error) {
	if t.timeout <= 0 {
		return t.next.Invoke(ctx, args)
	}
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Invoke(ctx, args)
}

// Use stores the given middlewares and reapplies them from scratch to all
// registered tools (onion order: first middleware is outermost). Tools
// registered after Use also get these middlewares applied. Calling Use again
// replaces the chain and rewraps from raw tools, avoiding double-wrapping.
func (r *Registry) Use(middlewares ...Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middlewares = middlewares
	for name, raw := range r.rawTools {
		t := raw
		for i := len(middlewares) - 1; i >= 0; i-- {
			t = middlewares[i](t)
		}
		r.tools[name] = t
	}
}
