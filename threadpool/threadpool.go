// Package threadpool implements the three worker-pool variants this
// module's server can be configured with: a naive spawn-per-job pool,
// a fixed-size shared-queue pool that survives panicking jobs, and a
// bounded external pool built on a semaphore.
package threadpool

// Job is a unit of work submitted to a Pool. A job must not depend on
// any caller-local state beyond what it closes over; Submit may run it
// on any goroutine, immediately or after a delay.
type Job func()

// Pool owns some number of workers and runs submitted jobs on them.
type Pool interface {
	Submit(job Job)
}
