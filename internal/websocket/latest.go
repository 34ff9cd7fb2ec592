package websocket

import (
	"context"
	"sync"
)

// LatestLoader runs loads so that only the most recently started one is
// applied. Starting a load cancels the one in flight; a load that finishes
// after a newer one has started is discarded.
type LatestLoader[T any] struct {
	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

// Load runs load and, if no newer Load has started meanwhile, passes its
// result to apply. apply runs under the loader's lock, so applied results
// are never reordered. It reports whether the result was applied.
func (l *LatestLoader[T]) Load(ctx context.Context, load func(context.Context) (T, error), apply func(T, error)) bool {
	l.mu.Lock()
	l.seq++
	seq := l.seq
	if l.cancel != nil {
		l.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.mu.Unlock()
	defer cancel()

	v, err := load(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	if seq != l.seq {
		return false
	}
	l.cancel = nil
	apply(v, err)
	return true
}

// Stop cancels the in-flight load and discards its result
func (l *LatestLoader[T]) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}
