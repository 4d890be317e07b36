package threadpool

import (
	"kvs.dev/errors"
	"kvs.dev/log"
)

// SharedQueue owns an unbuffered job channel and exactly size long-lived
// workers. Jobs are not queued: Submit blocks until a worker is free to
// take the job. A worker that panics while running a job is replaced
// immediately by a fresh worker reading from the same channel; other
// outstanding jobs and workers are unaffected.
type SharedQueue struct {
	jobs chan Job
}

// NewSharedQueue starts size workers reading from a shared channel.
// size must be positive.
func NewSharedQueue(size int) (*SharedQueue, error) {
	const op errors.Op = "threadpool.NewSharedQueue"
	if size <= 0 {
		return nil, errors.E(op, errors.StringError, errors.Errorf("shared-queue pool size must be positive, got %d", size))
	}
	p := &SharedQueue{jobs: make(chan Job)}
	for i := 0; i < size; i++ {
		p.spawnWorker()
	}
	return p, nil
}

// Submit hands job to whichever worker is next free, blocking until
// one takes it.
func (p *SharedQueue) Submit(job Job) {
	p.jobs <- job
}

// Close signals every worker to exit once the queue drains. No further
// jobs may be submitted after Close.
func (p *SharedQueue) Close() {
	close(p.jobs)
}

// spawnWorker launches one worker goroutine. If the job it is running
// panics, the deferred recover here catches it and immediately spawns
// a replacement worker against the same channel before this goroutine
// exits -- the Go equivalent of "a worker's receiver handle is
// destroyed during stack unwinding, a fresh worker is spawned with a
// fresh clone of the receiver."
func (p *SharedQueue) spawnWorker() {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error.Printf("threadpool: shared-queue worker panicked: %v; respawning", r)
				p.spawnWorker()
			}
		}()
		for job := range p.jobs {
			job()
		}
	}()
}
