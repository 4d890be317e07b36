package threadpool

// Naive spawns a fresh goroutine for every submitted job; size is
// accepted for interface symmetry with the other variants but
// otherwise ignored. It exists as a baseline to compare the pooled
// variants against, not for production use.
type Naive struct{}

// NewNaive returns a Naive pool. size is ignored.
func NewNaive(size int) (*Naive, error) {
	return &Naive{}, nil
}

// Submit runs job on a new goroutine.
func (p *Naive) Submit(job Job) {
	go job()
}
