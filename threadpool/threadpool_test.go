package threadpool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"kvs.dev/errors"
)

func TestNaiveRunsEveryJob(t *testing.T) {
	p, err := NewNaive(2)
	if err != nil {
		t.Fatalf("NewNaive: %v", err)
	}
	var n int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		p.Submit(func() {
			defer wg.Done()
			atomic.AddInt32(&n, 1)
		})
	}
	wg.Wait()
	if n != 50 {
		t.Fatalf("jobs run = %d, want 50", n)
	}
}

func TestSharedQueueRejectsNonPositiveSize(t *testing.T) {
	_, err := NewSharedQueue(0)
	if !errors.Is(errors.StringError, err) {
		t.Fatalf("NewSharedQueue(0) = %v, want StringError-kind error", err)
	}
}

func TestSharedQueueRunsEveryJob(t *testing.T) {
	p, err := NewSharedQueue(4)
	if err != nil {
		t.Fatalf("NewSharedQueue: %v", err)
	}
	defer p.Close()

	var n int32
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		p.Submit(func() {
			defer wg.Done()
			atomic.AddInt32(&n, 1)
		})
	}
	wg.Wait()
	if n != 100 {
		t.Fatalf("jobs run = %d, want 100", n)
	}
}

func TestSharedQueuePanicResilience(t *testing.T) {
	p, err := NewSharedQueue(4)
	if err != nil {
		t.Fatalf("NewSharedQueue: %v", err)
	}
	defer p.Close()

	var ran int32
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		i := i
		p.Submit(func() {
			defer wg.Done()
			if i%7 == 0 {
				panic("boom")
			}
			atomic.AddInt32(&ran, 1)
		})
	}
	wg.Wait()

	want := int32(0)
	for i := 0; i < 100; i++ {
		if i%7 != 0 {
			want++
		}
	}
	if ran != want {
		t.Fatalf("non-panicking jobs run = %d, want %d", ran, want)
	}

	// Give any still-unwinding worker time to respawn before checking
	// that the pool is still fully usable.
	time.Sleep(50 * time.Millisecond)

	var ran2 int32
	var wg2 sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg2.Add(1)
		p.Submit(func() {
			defer wg2.Done()
			atomic.AddInt32(&ran2, 1)
		})
	}
	wg2.Wait()
	if ran2 != 100 {
		t.Fatalf("jobs run after panics = %d, want 100", ran2)
	}
}

func TestRayonRejectsNonPositiveSize(t *testing.T) {
	_, err := NewRayon(-1)
	if !errors.Is(errors.StringError, err) {
		t.Fatalf("NewRayon(-1) = %v, want StringError-kind error", err)
	}
}

func TestRayonBoundsConcurrency(t *testing.T) {
	p, err := NewRayon(2)
	if err != nil {
		t.Fatalf("NewRayon: %v", err)
	}
	var cur, max int32
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		p.Submit(func() {
			defer wg.Done()
			n := atomic.AddInt32(&cur, 1)
			mu.Lock()
			if n > max {
				max = n
			}
			mu.Unlock()
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&cur, -1)
		})
	}
	wg.Wait()
	if max > 2 {
		t.Fatalf("observed concurrency = %d, want <= 2", max)
	}
}
