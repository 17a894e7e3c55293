package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type countJob struct {
	counter *atomic.Int64
	fail    bool
}

type countResult struct {
	err error
}

func (r *countResult) GetError() error { return r.err }

func (j *countJob) Execute(ctx context.Context) Result {
	j.counter.Add(1)
	if j.fail {
		return &countResult{err: errors.New("job failed")}
	}
	return &countResult{}
}

func TestPool_RunsAllJobs(t *testing.T) {
	pool := NewPool(3)
	pool.Start()

	var counter atomic.Int64
	for i := 0; i < 10; i++ {
		pool.Submit(&countJob{counter: &counter})
	}

	results := pool.Wait()

	if len(results) != 10 {
		t.Errorf("expected 10 results, got %d", len(results))
	}
	if got := counter.Load(); got != 10 {
		t.Errorf("expected 10 executions, got %d", got)
	}
}

func TestPool_MixedResults(t *testing.T) {
	pool := NewPool(2)
	pool.Start()

	var counter atomic.Int64
	pool.Submit(&countJob{counter: &counter})
	pool.Submit(&countJob{counter: &counter, fail: true})

	results := pool.Wait()

	failures := 0
	for _, r := range results {
		if r.GetError() != nil {
			failures++
		}
	}
	if failures != 1 {
		t.Errorf("expected 1 failure, got %d", failures)
	}
}

func TestPool_ZeroWorkersClamped(t *testing.T) {
	pool := NewPool(0)
	pool.Start()

	var counter atomic.Int64
	pool.Submit(&countJob{counter: &counter})

	if results := pool.Wait(); len(results) != 1 {
		t.Errorf("expected 1 result, got %d", len(results))
	}
}

func TestPool_Shutdown(t *testing.T) {
	pool := NewPool(1)
	pool.Start()
	pool.Shutdown()

	// Submissions after shutdown are dropped, not deadlocked.
	done := make(chan struct{})
	go func() {
		var counter atomic.Int64
		pool.Submit(&countJob{counter: &counter})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Submit blocked after Shutdown")
	}
}

func TestPacer_Allow(t *testing.T) {
	pacer := NewPacer(1, 2)

	if !pacer.Allow() || !pacer.Allow() {
		t.Error("burst of 2 should allow two immediate starts")
	}
	if pacer.Allow() {
		t.Error("third immediate start should be denied")
	}
}

func TestPacer_WaitHonorsContext(t *testing.T) {
	pacer := NewPacer(0.001, 1)
	if err := pacer.Wait(context.Background()); err != nil {
		t.Fatalf("first wait should clear: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := pacer.Wait(ctx); err == nil {
		t.Fatal("expected context deadline to abort the wait")
	}
}
