package toolhub

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func middlewareEcho(t *testing.T, opts ...ToolOption) Tool {
	t.Helper()
	s, err := NewSchema(Field{Name: "message", Type: TypeString})
	require.NoError(t, err)
	tool, err := NewDynamicTool("echo", "echoes", s, func(_ context.Context, args Args) (Args, error) {
		return args, nil
	}, opts...)
	require.NoError(t, err)
	return tool
}

func TestWithLogging(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	wrapped := WithLogging(zap.New(core))(middlewareEcho(t))

	_, err := wrapped.Invoke(context.Background(), Args{"message": "hi"})
	require.NoError(t, err)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "tool start", entries[0].Message)
	assert.Equal(t, "tool end", entries[1].Message)
	assert.Equal(t, "echo", entries[0].ContextMap()["tool"])
}

func TestWithLogging_Error(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s, err := NewSchema()
	require.NoError(t, err)
	failing, err := NewDynamicTool("broken", "fails", s, func(_ context.Context, _ Args) (Args, error) {
		return nil, errors.New("boom")
	})
	require.NoError(t, err)
	wrapped := WithLogging(zap.New(core))(failing)

	_, err = wrapped.Invoke(context.Background(), Args{})
	require.Error(t, err)
	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "tool error", entries[1].Message)
}

func TestWithRecovery(t *testing.T) {
	s, err := NewSchema()
	require.NoError(t, err)
	panicky, err := NewDynamicTool("panicky", "panics", s, func(_ context.Context, _ Args) (Args, error) {
		panic("middleware boom")
	})
	require.NoError(t, err)
	wrapped := WithRecovery()(panicky)

	_, err = wrapped.Invoke(context.Background(), Args{})
	require.Error(t, err)
	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Contains(t, execErr.Error(), "middleware boom")
}

func TestWithTimeoutMiddleware(t *testing.T) {
	s, err := NewSchema()
	require.NoError(t, err)
	slow, err := NewDynamicTool("slow", "waits for cancellation", s, func(ctx context.Context, _ Args) (Args, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	require.NoError(t, err)
	wrapped := WithTimeoutMiddleware(10 * time.Millisecond)(slow)

	_, err = wrapped.Invoke(context.Background(), Args{})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 10*time.Millisecond, wrapped.(ToolMetadata).Timeout())
}

func TestToolBase_DelegatesMetadata(t *testing.T) {
	inner := middlewareEcho(t, WithTags("docs"), WithAsync(), WithCacheTTL(time.Minute))
	wrapped := WithRecovery()(inner)

	assert.Equal(t, "echo", wrapped.Name())
	assert.Equal(t, []string{"docs"}, Tags(wrapped))
	assert.True(t, IsAsync(wrapped))
	assert.Equal(t, time.Minute, CacheTTL(wrapped))
	assert.NotNil(t, wrapped.InputSchema())
}

func TestRegistry_Use_WrapsAllTools(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(middlewareEcho(t)))
	reg.Use(WithRecovery())

	got, err := reg.Get("echo")
	require.NoError(t, err)
	_, isRecovery := got.(*recoveryTool)
	assert.True(t, isRecovery)

	// Re-applying replaces the chain instead of double-wrapping.
	reg.Use(WithRecovery())
	got, err = reg.Get("echo")
	require.NoError(t, err)
	rt, ok := got.(*recoveryTool)
	require.True(t, ok)
	_, doubleWrapped := rt.next.(*recoveryTool)
	assert.False(t, doubleWrapped)
}

func TestRegistry_Use_AppliesToLaterRegistrations(t *testing.T) {
	reg := NewRegistry()
	reg.Use(WithRecovery())

	s, err := NewSchema()
	require.NoError(t, err)
	late, err := NewDynamicTool("late", "registered after Use", s, func(_ context.Context, args Args) (Args, error) {
		return args, nil
	})
	require.NoError(t, err)
	require.NoError(t, reg.Register(late))

	got, err := reg.Get("late")
	require.NoError(t, err)
	_, isRecovery := got.(*recoveryTool)
	assert.True(t, isRecovery)
}
