package resource

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Concurrency(t *testing.T) {
	c := NewController(Config{})

	release, err := c.Acquire(t.Context())
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.Active())

	// Second caller is rejected immediately
	_, err = c.Acquire(t.Context())
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, int64(1), c.Rejected())

	release()
	release() // second call is a no-op
	assert.Equal(t, int64(0), c.Active())

	release, err = c.Acquire(t.Context())
	require.NoError(t, err)
	release()
	assert.Equal(t, int64(2), c.Admitted())
}

func TestController_MaxConcurrent(t *testing.T) {
	c := NewController(Config{MaxConcurrent: 2})

	r1, err := c.Acquire(t.Context())
	require.NoError(t, err)
	r2, err := c.Acquire(t.Context())
	require.NoError(t, err)

	_, err = c.Acquire(t.Context())
	assert.ErrorIs(t, err, ErrBusy)

	r1()
	r2()
}

func TestController_Parallel(t *testing.T) {
	c := NewController(Config{})

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		admitted int
		busy     int
	)
	start := make(chan struct{})
	hold := make(chan struct{})

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			release, err := c.Acquire(context.Background())
			mu.Lock()
			if err != nil {
				busy++
				mu.Unlock()
				return
			}
			admitted++
			mu.Unlock()
			<-hold
			release()
		}()
	}

	close(start)
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return admitted+busy == 8
	}, time.Second, time.Millisecond)
	close(hold)
	wg.Wait()

	assert.Equal(t, 1, admitted)
	assert.Equal(t, 7, busy)
}

func TestController_Rate(t *testing.T) {
	c := NewController(Config{MinInterval: time.Hour})
	assert.Equal(t, time.Hour, c.MinInterval())

	// The first rebuild uses the initial burst token.
	release, err := c.Acquire(t.Context())
	require.NoError(t, err)
	release()

	// The next one would have to wait an hour.
	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
	defer cancel()
	_, err = c.Acquire(ctx)
	require.Error(t, err)
	assert.Equal(t, int64(0), c.Active(), "slot must be released when the wait fails")

	// The slot is free again.
	assert.NotErrorIs(t, err, ErrBusy)
}

func TestController_NilSafe(t *testing.T) {
	var c *Controller

	release, err := c.Acquire(t.Context())
	require.NoError(t, err)
	release()

	assert.Equal(t, int64(0), c.Active())
	assert.Equal(t, int64(0), c.Admitted())
	assert.Equal(t, int64(0), c.Rejected())
	assert.Equal(t, time.Duration(0), c.MinInterval())
}
