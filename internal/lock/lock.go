// Package lock provides short-lived, holder-stamped mutual-exclusion
// leases used to make background passes safe to run from multiple
// service instances at once.
package lock

import (
	"context"
	"errors"
	"time"
)

// ErrLockUnavailable means another holder currently owns the lease.
// Callers treat it as "skip", never as a hard failure.
var ErrLockUnavailable = errors.New("lock unavailable")

// Locker hands out expiring leases keyed by resource name.
// Implementations must be safe for concurrent use.
//
// Typical usage:
//
//	token, err := locker.TryAcquire(ctx, "reminder:"+id, 5*time.Minute)
//	if errors.Is(err, ErrLockUnavailable) {
//	    return nil // another instance is on it
//	}
//	if err != nil {
//	    return err
//	}
//	defer locker.Release(ctx, "reminder:"+id, token)
type Locker interface {
	// TryAcquire obtains the lease or returns ErrLockUnavailable. The
	// returned token identifies this holder; the lease self-expires
	// after ttl if never released.
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (string, error)

	// Release frees the lease if token still matches the holder.
	// Returns false when the lease expired or belongs to someone else.
	Release(ctx context.Context, key string, token string) (bool, error)
}
