package worker

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPool_RunsTasks(t *testing.T) {
	pool := NewPool(2)
	defer pool.Close()

	var count int32
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		err := pool.Submit(func() {
			atomic.AddInt32(&count, 1)
			wg.Done()
		})
		if err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}

	wg.Wait()
	if got := atomic.LoadInt32(&count); got != 10 {
		t.Errorf("expected 10 tasks run, got %d", got)
	}
}

func TestPool_BoundedConcurrency(t *testing.T) {
	const size = 3
	pool := NewPool(size)
	defer pool.Close()

	var inFlight, peak int32
	var wg sync.WaitGroup

	for i := 0; i < 12; i++ {
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			n := atomic.AddInt32(&inFlight, 1)
			for {
				old := atomic.LoadInt32(&peak)
				if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
		})
		if err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}

	wg.Wait()
	if got := atomic.LoadInt32(&peak); got > size {
		t.Errorf("expected at most %d concurrent tasks, saw %d", size, got)
	}
}

func TestPool_SubmitAfterClose(t *testing.T) {
	pool := NewPool(1)
	pool.Close()

	err := pool.Submit(func() {})
	if !errors.Is(err, ErrPoolClosed) {
		t.Errorf("expected ErrPoolClosed, got %v", err)
	}
}
