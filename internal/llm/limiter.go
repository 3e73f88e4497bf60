package llm

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// LimitProvider is a decorator that bounds the number of in-flight calls.
// A slot is held for the duration of one inner call and released when the
// call returns, fails or is cancelled.
type LimitProvider struct {
	inner Provider
	sem   *semaphore.Weighted
}

// WithLimit wraps p so that at most n calls run at once. n <= 0 returns p
// unchanged.
func WithLimit(p Provider, n int) Provider {
	if n <= 0 {
		return p
	}
	return &LimitProvider{inner: p, sem: semaphore.NewWeighted(int64(n))}
}

func (l *LimitProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer l.sem.Release(1)
	return l.inner.Generate(ctx, req)
}

func (l *LimitProvider) ModelID() string {
	return l.inner.ModelID()
}

// TryAcquire reports whether a slot is free right now, taking it if so.
// Callers must Release a slot they acquired.
func (l *LimitProvider) TryAcquire() bool {
	return l.sem.TryAcquire(1)
}

// Release returns a slot taken with TryAcquire.
func (l *LimitProvider) Release() {
	l.sem.Release(1)
}
