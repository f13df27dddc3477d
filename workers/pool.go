package workers

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/semaphore"
)

// ErrPoolBusy means no slot became free before the caller gave up.
var ErrPoolBusy = errors.New("grading pool busy")

// Pool caps how many grading requests run at once. Waiting callers queue in
// arrival order.
type Pool struct {
	sem  *semaphore.Weighted
	size int64
}

func NewPool(size int) *Pool {
	if size <= 0 {
		size = 1
	}
	return &Pool{sem: semaphore.NewWeighted(int64(size)), size: int64(size)}
}

// Do runs fn once a slot is free, on the caller's goroutine.
func (p *Pool) Do(ctx context.Context, fn func(ctx context.Context)) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("%w: %w", ErrPoolBusy, err)
	}
	defer p.sem.Release(1)
	fn(ctx)
	return nil
}

func (p *Pool) Size() int {
	return int(p.size)
}
