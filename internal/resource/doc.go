// Package resource implements the Controller that gates index rebuilds.
//
// Two limits are enforced:
//
//   - Concurrency: a weighted semaphore admits a bounded number of rebuilds
//     at once (one by default). Acquisition is non-blocking; a caller that
//     finds every slot taken gets ErrBusy immediately.
//   - Rate: an optional token bucket spaces admitted rebuilds at least
//     MinInterval apart. Waiting honors the caller's context.
//
// # Usage
//
//	rc := resource.NewController(resource.Config{MinInterval: time.Minute})
//
//	release, err := rc.Acquire(ctx)
//	if err != nil {
//	    return err // ErrBusy or the context error
//	}
//	defer release()
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully: they admit every caller.
package resource
