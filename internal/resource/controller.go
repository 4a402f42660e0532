package resource

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrBusy is returned when every rebuild slot is taken.
var ErrBusy = errors.New("resource: rebuild in progress")

// Config holds rebuild limits.
type Config struct {
	// MaxConcurrent is the maximum number of concurrent rebuilds.
	// If 0, defaults to 1.
	MaxConcurrent int64

	// MinInterval is the minimum spacing between admitted rebuilds.
	// If 0, unlimited.
	MinInterval time.Duration
}

// Controller gates rebuilds by concurrency and rate.
type Controller struct {
	cfg Config

	sem     *semaphore.Weighted
	limiter *rate.Limiter // nil if unlimited

	active   atomic.Int64
	admitted atomic.Int64
	rejected atomic.Int64
}

// NewController creates a new rebuild controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 1
	}

	c := &Controller{
		cfg: cfg,
		sem: semaphore.NewWeighted(cfg.MaxConcurrent),
	}

	if cfg.MinInterval > 0 {
		c.limiter = rate.NewLimiter(rate.Every(cfg.MinInterval), 1)
	}

	return c
}

// Acquire reserves a rebuild slot without blocking, then waits for the
// rate limiter. It returns ErrBusy when no slot is free. The returned
// release function must be called exactly once when the rebuild is done.
func (c *Controller) Acquire(ctx context.Context) (release func(), err error) {
	if c == nil {
		return func() {}, nil
	}

	if !c.sem.TryAcquire(1) {
		c.rejected.Add(1)
		return nil, ErrBusy
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			c.sem.Release(1)
			return nil, err
		}
	}

	c.active.Add(1)
	c.admitted.Add(1)

	var once atomic.Bool
	return func() {
		if once.CompareAndSwap(false, true) {
			c.active.Add(-1)
			c.sem.Release(1)
		}
	}, nil
}

// Active returns the number of rebuilds currently holding a slot.
func (c *Controller) Active() int64 {
	if c == nil {
		return 0
	}
	return c.active.Load()
}

// Admitted returns the number of rebuilds admitted so far.
func (c *Controller) Admitted() int64 {
	if c == nil {
		return 0
	}
	return c.admitted.Load()
}

// Rejected returns the number of callers turned away with ErrBusy.
func (c *Controller) Rejected() int64 {
	if c == nil {
		return 0
	}
	return c.rejected.Load()
}

// MinInterval returns the configured rebuild spacing (0 if unlimited).
func (c *Controller) MinInterval() time.Duration {
	if c == nil {
		return 0
	}
	return c.cfg.MinInterval
}
