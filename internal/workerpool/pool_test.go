package workerpool

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestSubmitRunsAllTasks(t *testing.T) {
	const n = 50
	p := New(4, n)
	var count atomic.Int32

	for i := 0; i < n; i++ {
		if !p.Submit(func() { count.Add(1) }) {
			t.Fatal("Submit returned false while pool was still accepting")
		}
	}

	p.StopAccepting()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	p.Drain(ctx)

	if got := count.Load(); got != n {
		t.Fatalf("ran %d tasks, want %d", got, n)
	}
}

func TestSubmitAfterStopAcceptingIsRejected(t *testing.T) {
	p := New(1, 1)
	p.StopAccepting()
	if p.Submit(func() {}) {
		t.Fatal("Submit succeeded after StopAccepting")
	}
	p.Drain(context.Background())
}

func TestRunTaskRecoversFromPanic(t *testing.T) {
	p := New(1, 2)
	var ran atomic.Bool

	p.Submit(func() { panic("boom") })
	p.Submit(func() { ran.Store(true) })

	p.StopAccepting()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	p.Drain(ctx)

	if !ran.Load() {
		t.Fatal("a panicking task should not prevent later tasks from running")
	}
}

func TestDrainRespectsContextDeadline(t *testing.T) {
	p := New(1, 1)
	block := make(chan struct{})
	p.Submit(func() { <-block })
	p.StopAccepting()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	p.Drain(ctx)
	if time.Since(start) > time.Second {
		t.Fatal("Drain did not respect the context deadline")
	}
	close(block)
}
