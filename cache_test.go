package toolhub

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_GetOrCompute(t *testing.T) {
	c := NewCache()
	calls := 0
	compute := func() (Args, error) {
		calls++
		return Args{"n": int64(calls)}, nil
	}

	v, hit, err := c.GetOrCompute("k", time.Minute, compute)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, int64(1), v.Int("n"))

	v, hit, err = c.GetOrCompute("k", time.Minute, compute)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, int64(1), v.Int("n"))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, c.Len())
}

func TestCache_Expiry(t *testing.T) {
	now := time.Now()
	c := NewCache(WithClock(func() time.Time { return now }))
	calls := 0
	compute := func() (Args, error) {
		calls++
		return Args{}, nil
	}

	_, _, err := c.GetOrCompute("k", time.Minute, compute)
	require.NoError(t, err)

	now = now.Add(59 * time.Second)
	_, hit, err := c.GetOrCompute("k", time.Minute, compute)
	require.NoError(t, err)
	assert.True(t, hit)

	now = now.Add(2 * time.Second)
	_, hit, err = c.GetOrCompute("k", time.Minute, compute)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, calls)
}

func TestCache_FailureNotCached(t *testing.T) {
	c := NewCache()
	boom := errors.New("transient")
	_, hit, err := c.GetOrCompute("k", time.Minute, func() (Args, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)
	assert.False(t, hit)
	assert.Equal(t, 0, c.Len())

	_, hit, err = c.GetOrCompute("k", time.Minute, func() (Args, error) {
		return Args{"ok": true}, nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCache_ComputeDoesNotBlockOtherKeys(t *testing.T) {
	c := NewCache()
	slowStarted := make(chan struct{})
	release := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _, _ = c.GetOrCompute("slow", time.Minute, func() (Args, error) {
			close(slowStarted)
			<-release
			return Args{}, nil
		})
	}()

	<-slowStarted
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _, _ = c.GetOrCompute("fast", time.Minute, func() (Args, error) {
			return Args{}, nil
		})
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lookup for an unrelated key blocked behind a running compute")
	}
	close(release)
	wg.Wait()
}

func TestCache_Clear(t *testing.T) {
	c := NewCache()
	_, _, err := c.GetOrCompute("k", time.Minute, func() (Args, error) {
		return Args{}, nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())
	c.Clear()
	assert.Equal(t, 0, c.Len())
}
