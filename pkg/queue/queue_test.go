package queue_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shashiranjanraj/mandi/pkg/queue"
)

// ─── Job types ────────────────────────────────────────────────────────────────

type echoJob struct {
	Val    string
	called *atomic.Int32
}

func (j *echoJob) Handle() error {
	if j.called != nil {
		j.called.Add(1)
	}
	return nil
}

type failJob struct {
	attempts *atomic.Int32
}

func (j *failJob) Handle() error {
	if j.attempts != nil {
		j.attempts.Add(1)
	}
	return errors.New("always fails")
}

type crashJob struct{}

func (j *crashJob) Handle() error {
	panic("archive disk is not configured")
}

var survivorRuns atomic.Int32

type survivorJob struct{}

func (j *survivorJob) Handle() error {
	survivorRuns.Add(1)
	return nil
}

func init() {
	// Start workers so jobs actually get processed in tests.
	ctx, cancel := context.WithCancel(context.Background())
	_ = cancel
	queue.StartWorkers(ctx, 2)

	queue.Register("*queue_test.echoJob", func() queue.Job { return &echoJob{called: &atomic.Int32{}} })
	queue.Register("*queue_test.failJob", func() queue.Job { return &failJob{attempts: &atomic.Int32{}} })
	queue.Register("*queue_test.crashJob", func() queue.Job { return &crashJob{} })
	queue.Register("*queue_test.survivorJob", func() queue.Job { return &survivorJob{} })
}

// ─── Tests ────────────────────────────────────────────────────────────────────

func TestDispatchAndProcess(t *testing.T) {
	if err := queue.Dispatch(&echoJob{Val: "hello", called: &atomic.Int32{}}); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	time.Sleep(200 * time.Millisecond)
}

func TestFailedJobRetry(t *testing.T) {
	queue.SetMaxRetry(1)
	defer queue.SetMaxRetry(3)

	if err := queue.Dispatch(&failJob{attempts: &atomic.Int32{}}); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	// 1 attempt + 1s backoff + slack.
	time.Sleep(2500 * time.Millisecond)

	if len(queue.FailedJobs()) == 0 {
		t.Error("expected at least one failed job")
	}
}

func TestPanickingJobFailsWithoutKillingWorkers(t *testing.T) {
	queue.SetMaxRetry(1)
	defer queue.SetMaxRetry(3)

	before := len(queue.FailedJobs())
	if err := queue.Dispatch(&crashJob{}); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	// 1 attempt + 1s backoff + slack.
	time.Sleep(2500 * time.Millisecond)

	failed := queue.FailedJobs()
	if len(failed) <= before {
		t.Fatal("expected the panicking job to be recorded as failed")
	}
	recorded := false
	for _, f := range failed[before:] {
		if f.Err != nil && strings.Contains(f.Err.Error(), "panicked") {
			recorded = true
		}
	}
	if !recorded {
		t.Error("failure record should carry the recovered panic")
	}

	// The worker that hit the panic must still be draining the queue.
	if err := queue.Dispatch(&survivorJob{}); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	deadline := time.Now().Add(3 * time.Second)
	for survivorRuns.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	if survivorRuns.Load() == 0 {
		t.Error("no job processed after the panic, worker is gone")
	}
}

func TestDispatchConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(20)
	for i := 0; i < 20; i++ {
		go func() {
			defer wg.Done()
			queue.Dispatch(&echoJob{Val: "c", called: &atomic.Int32{}}) //nolint:errcheck
		}()
	}
	wg.Wait()
}
