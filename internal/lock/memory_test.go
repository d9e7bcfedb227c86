package lock

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryLocker_MutualExclusion(t *testing.T) {
	l := NewMemoryLocker()
	ctx := context.Background()

	token, err := l.TryAcquire(ctx, "job:test", time.Minute)
	if err != nil {
		t.Fatalf("TryAcquire: %v", err)
	}
	if token == "" {
		t.Fatalf("expected non-empty token")
	}

	if _, err := l.TryAcquire(ctx, "job:test", time.Minute); !errors.Is(err, ErrLockUnavailable) {
		t.Fatalf("second TryAcquire err = %v, want ErrLockUnavailable", err)
	}

	// A different resource is independent.
	if _, err := l.TryAcquire(ctx, "job:other", time.Minute); err != nil {
		t.Fatalf("TryAcquire other key: %v", err)
	}

	ok, err := l.Release(ctx, "job:test", token)
	if err != nil || !ok {
		t.Fatalf("Release = %v, %v, want true", ok, err)
	}

	if _, err := l.TryAcquire(ctx, "job:test", time.Minute); err != nil {
		t.Fatalf("TryAcquire after release: %v", err)
	}
}

func TestMemoryLocker_ReleaseRequiresOwnToken(t *testing.T) {
	l := NewMemoryLocker()
	ctx := context.Background()

	token, err := l.TryAcquire(ctx, "k", time.Minute)
	if err != nil {
		t.Fatalf("TryAcquire: %v", err)
	}

	if ok, _ := l.Release(ctx, "k", "stolen"); ok {
		t.Fatalf("release with wrong token succeeded")
	}
	if ok, _ := l.Release(ctx, "missing", token); ok {
		t.Fatalf("release of unknown key succeeded")
	}
	if ok, _ := l.Release(ctx, "k", token); !ok {
		t.Fatalf("release with own token failed")
	}
	// Double release is a no-op.
	if ok, _ := l.Release(ctx, "k", token); ok {
		t.Fatalf("second release succeeded")
	}
}

func TestMemoryLocker_ExpiredLeaseIsReclaimable(t *testing.T) {
	l := NewMemoryLocker()
	ctx := context.Background()

	clock := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return clock }

	stale, err := l.TryAcquire(ctx, "k", time.Minute)
	if err != nil {
		t.Fatalf("TryAcquire: %v", err)
	}

	clock = clock.Add(2 * time.Minute)

	// The old lease expired: a new holder may take over, and the stale
	// token can no longer release.
	if _, err := l.TryAcquire(ctx, "k", time.Minute); err != nil {
		t.Fatalf("TryAcquire after expiry: %v", err)
	}
	if ok, _ := l.Release(ctx, "k", stale); ok {
		t.Fatalf("stale token released the new lease")
	}
}
