package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestPoolExecute(t *testing.T) {
	t.Parallel()

	var running, peak atomic.Int32
	errOdd := errors.New("odd")
	pool := NewPool(3, func(ctx context.Context, n int) (int, error) {
		cur := running.Add(1)
		defer running.Add(-1)
		for {
			p := peak.Load()
			if cur <= p || peak.CompareAndSwap(p, cur) {
				break
			}
		}
		if n%2 == 1 {
			return 0, errOdd
		}
		return n * n, nil
	})

	inputs := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	tasks := pool.Execute(context.Background(), inputs)
	if len(tasks) != len(inputs) {
		t.Fatalf("Execute() returned %d tasks", len(tasks))
	}
	for i, task := range tasks {
		if task.Input != inputs[i] {
			t.Errorf("task %d input = %d", i, task.Input)
		}
		if i%2 == 1 {
			if !errors.Is(task.Err, errOdd) {
				t.Errorf("task %d error = %v, want errOdd", i, task.Err)
			}
			continue
		}
		if task.Err != nil || task.Result != i*i {
			t.Errorf("task %d = (%d, %v), want %d", i, task.Result, task.Err, i*i)
		}
	}
	if p := peak.Load(); p > 3 {
		t.Errorf("peak concurrency = %d, want <= 3", p)
	}
}

func TestPoolCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	pool := NewPool(0, func(ctx context.Context, n int) (int, error) {
		calls.Add(1)
		return n, nil
	})
	tasks := pool.Execute(ctx, []int{1, 2, 3})
	for i, task := range tasks {
		if !errors.Is(task.Err, context.Canceled) {
			t.Errorf("task %d error = %v, want context.Canceled", i, task.Err)
		}
	}
	if calls.Load() != 0 {
		t.Errorf("process called %d times after cancellation", calls.Load())
	}
}

func TestBatch(t *testing.T) {
	t.Parallel()

	got := Batch([]int{1, 2, 3, 4, 5}, 2)
	if len(got) != 3 || len(got[2]) != 1 || got[2][0] != 5 {
		t.Errorf("Batch() = %v", got)
	}
	if got := Batch([]int{1, 2}, 0); len(got) != 2 {
		t.Errorf("Batch(size 0) = %v", got)
	}
	if got := Batch[int](nil, 3); got != nil {
		t.Errorf("Batch(nil) = %v", got)
	}
}
