package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestPool_ProcessesSubmittedTasks(t *testing.T) {
	var processed atomic.Int64
	p := NewPool(&Config{MaxWorkers: 2, QueueSize: 10, TaskTimeout: time.Second},
		ProcessorFunc(func(_ context.Context, task any) error {
			processed.Add(1)
			return nil
		}))
	p.Start()

	for i := 0; i < 5; i++ {
		if err := p.Submit(i); err != nil {
			t.Fatalf("unexpected submit error: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	p.Stop(ctx)

	if got := processed.Load(); got != 5 {
		t.Errorf("expected 5 processed tasks, got %d", got)
	}
	if got := p.GetMetrics()["completed_tasks"]; got != 5 {
		t.Errorf("expected 5 completed tasks, got %d", got)
	}
	if !p.IsIdle() {
		t.Error("drained pool must be idle")
	}
}

func TestPool_IsBusyWhenQueueSaturated(t *testing.T) {
	block := make(chan struct{})
	p := NewPool(&Config{MaxWorkers: 1, QueueSize: 1, TaskTimeout: time.Minute},
		ProcessorFunc(func(_ context.Context, task any) error {
			<-block
			return nil
		}))
	p.Start()
	defer func() {
		close(block)
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		p.Stop(ctx)
	}()

	_ = p.Submit("a")
	time.Sleep(10 * time.Millisecond)
	_ = p.Submit("b")

	if !p.IsBusy() {
		t.Error("saturated pool must report busy")
	}
}

func TestPool_SubmitWhenFull(t *testing.T) {
	block := make(chan struct{})
	p := NewPool(&Config{MaxWorkers: 1, QueueSize: 1, TaskTimeout: time.Minute},
		ProcessorFunc(func(_ context.Context, task any) error {
			<-block
			return nil
		}))
	p.Start()
	defer func() {
		close(block)
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		p.Stop(ctx)
	}()

	// First task occupies the worker, second fills the queue.
	_ = p.Submit("a")
	time.Sleep(10 * time.Millisecond)
	_ = p.Submit("b")

	err := p.Submit("c")
	if !errors.Is(err, ErrQueueFull) {
		t.Errorf("expected ErrQueueFull, got %v", err)
	}
}

func TestPool_FailedTasksCounted(t *testing.T) {
	p := NewPool(&Config{MaxWorkers: 1, QueueSize: 10, TaskTimeout: time.Second},
		ProcessorFunc(func(_ context.Context, task any) error {
			return errors.New("boom")
		}))
	p.Start()

	_ = p.Submit("x")
	_ = p.Submit("y")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	p.Stop(ctx)

	if got := p.GetMetrics()["failed_tasks"]; got != 2 {
		t.Errorf("expected 2 failed tasks, got %d", got)
	}
}

func TestPool_SubmitAfterStopRejected(t *testing.T) {
	p := NewPool(&Config{MaxWorkers: 1, QueueSize: 10, TaskTimeout: time.Second},
		ProcessorFunc(func(context.Context, any) error { return nil }))
	p.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	p.Stop(ctx)

	if err := p.Submit("late"); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("expected ErrPoolClosed, got %v", err)
	}

	// A second Stop must be a no-op.
	p.Stop(ctx)
}
