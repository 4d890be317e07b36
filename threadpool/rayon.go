package threadpool

import (
	"context"

	"golang.org/x/sync/semaphore"

	"kvs.dev/errors"
)

// Rayon bounds concurrency to size concurrently-running jobs using a
// weighted semaphore -- the Go stand-in for wrapping a general
// work-stealing pool (rayon, in the original this module's spec was
// distilled from) behind the shared Pool contract.
type Rayon struct {
	sem *semaphore.Weighted
}

// NewRayon constructs a pool bounded to size concurrent jobs. size
// must be positive; construction failure here surfaces as a
// StringError, matching the contract for the external pool variant.
func NewRayon(size int) (*Rayon, error) {
	const op errors.Op = "threadpool.NewRayon"
	if size <= 0 {
		return nil, errors.E(op, errors.StringError, errors.Errorf("rayon pool size must be positive, got %d", size))
	}
	return &Rayon{sem: semaphore.NewWeighted(int64(size))}, nil
}

// Submit returns immediately; job runs on its own goroutine once that
// goroutine has acquired a slot.
func (p *Rayon) Submit(job Job) {
	go func() {
		if err := p.sem.Acquire(context.Background(), 1); err != nil {
			return
		}
		defer p.sem.Release(1)
		job()
	}()
}
