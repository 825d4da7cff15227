package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRun_ResultsInInputOrder(t *testing.T) {
	jobs := []int{5, 3, 1, 4, 2}

	results := Run(context.Background(), 3, jobs, func(ctx context.Context, n int) (string, error) {
		// Later inputs finish first to exercise ordering.
		time.Sleep(time.Duration(n) * time.Millisecond)
		return fmt.Sprintf("job-%d", n), nil
	})

	if len(results) != len(jobs) {
		t.Fatalf("Expected %d results, got %d", len(jobs), len(results))
	}
	for i, n := range jobs {
		if results[i].Index != i {
			t.Errorf("Result %d: expected index %d, got %d", i, i, results[i].Index)
		}
		if results[i].Value != fmt.Sprintf("job-%d", n) {
			t.Errorf("Result %d: expected job-%d, got %s", i, n, results[i].Value)
		}
	}
}

func TestRun_ErrorsIsolatedPerJob(t *testing.T) {
	boom := errors.New("job failed")
	jobs := []int{1, 2, 3}

	results := Run(context.Background(), 2, jobs, func(ctx context.Context, n int) (int, error) {
		if n == 2 {
			return 0, boom
		}
		return n * 10, nil
	})

	if results[0].Err != nil || results[2].Err != nil {
		t.Errorf("Expected successful jobs unaffected, got %v, %v", results[0].Err, results[2].Err)
	}
	if !errors.Is(results[1].Err, boom) {
		t.Errorf("Expected job error, got %v", results[1].Err)
	}
	if results[0].Value != 10 || results[2].Value != 30 {
		t.Errorf("Expected values 10 and 30, got %d and %d", results[0].Value, results[2].Value)
	}
}

func TestRun_ConcurrencyBounded(t *testing.T) {
	var active, peak int64
	jobs := make([]int, 20)

	Run(context.Background(), 3, jobs, func(ctx context.Context, _ int) (struct{}, error) {
		n := atomic.AddInt64(&active, 1)
		for {
			p := atomic.LoadInt64(&peak)
			if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt64(&active, -1)
		return struct{}{}, nil
	})

	if peak > 3 {
		t.Errorf("Expected at most 3 concurrent jobs, observed %d", peak)
	}
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var started sync.Once
	running := make(chan struct{})
	go func() {
		<-running
		cancel()
	}()

	results := Run(ctx, 1, []int{1, 2, 3}, func(ctx context.Context, n int) (int, error) {
		started.Do(func() { close(running) })
		<-ctx.Done()
		return 0, ctx.Err()
	})

	for i, r := range results {
		if !errors.Is(r.Err, context.Canceled) {
			t.Errorf("Result %d: expected context.Canceled, got %v", i, r.Err)
		}
	}
}

func TestRun_ZeroWorkersDefaultsToOne(t *testing.T) {
	results := Run(context.Background(), 0, []int{1, 2}, func(ctx context.Context, n int) (int, error) {
		return n, nil
	})
	if len(results) != 2 || results[0].Value != 1 || results[1].Value != 2 {
		t.Errorf("Expected sequential fallback to process all jobs, got %v", results)
	}
}
