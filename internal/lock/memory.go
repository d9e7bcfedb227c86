package lock

import (
	"context"
	"strconv"
	"sync"
	"time"
)

type lease struct {
	token     string
	expiresAt time.Time
}

// MemoryLocker is a process-local Locker for single-instance
// deployments and tests. Expired leases are reclaimed lazily on the
// next acquire attempt.
type MemoryLocker struct {
	mu     sync.Mutex
	leases map[string]lease
	// now is swappable in tests.
	now func() time.Time
	seq int64
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		leases: make(map[string]lease),
		now:    time.Now,
	}
}

func (l *MemoryLocker) TryAcquire(_ context.Context, key string, ttl time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if cur, ok := l.leases[key]; ok && l.now().Before(cur.expiresAt) {
		return "", ErrLockUnavailable
	}

	l.seq++
	token := strconv.FormatInt(l.seq, 10) + "@" + l.now().Format(time.RFC3339Nano)
	l.leases[key] = lease{token: token, expiresAt: l.now().Add(ttl)}
	return token, nil
}

func (l *MemoryLocker) Release(_ context.Context, key string, token string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cur, ok := l.leases[key]
	if !ok || cur.token != token || l.now().After(cur.expiresAt) {
		return false, nil
	}
	delete(l.leases, key)
	return true, nil
}
