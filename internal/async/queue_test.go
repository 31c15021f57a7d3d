package async

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestQueueProcessesEveryJob(t *testing.T) {
	var (
		mu   sync.Mutex
		seen = map[string]bool{}
	)
	q := NewQueue(context.Background(), func(_ context.Context, job Job) error {
		mu.Lock()
		defer mu.Unlock()
		seen[job.Path] = true
		if job.Path == "bad.pdf" {
			return errors.New("render failed")
		}
		return nil
	}, nil, WithWorkers(3), WithQueueSize(1))

	paths := []string{"a.pdf", "b.png", "bad.pdf", "c.xlsx", "d.jpg"}
	for _, p := range paths {
		if err := q.Enqueue(context.Background(), Job{Path: p}); err != nil {
			t.Fatalf("enqueue %s: %v", p, err)
		}
	}
	q.Shutdown(context.Background())

	if len(seen) != len(paths) {
		t.Fatalf("processed: want=%d got=%d (%v)", len(paths), len(seen), seen)
	}
}

func TestQueueRejectsAfterShutdown(t *testing.T) {
	q := NewQueue(context.Background(), func(context.Context, Job) error { return nil }, nil)
	q.Shutdown(context.Background())
	q.Shutdown(context.Background())

	if err := q.Enqueue(context.Background(), Job{Path: "x"}); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("want=%v got=%v", ErrQueueClosed, err)
	}
}

func TestQueueEnqueueHonoursContext(t *testing.T) {
	release := make(chan struct{})
	q := NewQueue(context.Background(), func(context.Context, Job) error { <-release; return nil }, nil,
		WithWorkers(1), WithQueueSize(1))
	defer func() {
		close(release)
		q.Shutdown(context.Background())
	}()

	// one job held by the worker, one in the buffer
	for i := 0; i < 2; i++ {
		if err := q.Enqueue(context.Background(), Job{Path: fmt.Sprint(i)}); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}
	// give the worker time to pick up the first job
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := q.Enqueue(ctx, Job{Path: "overflow"}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("want=%v got=%v", context.DeadlineExceeded, err)
	}
}

func TestQueueCancelsRunningJobs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	var (
		mu      sync.Mutex
		handled []string
		jobErr  error
	)
	q := NewQueue(ctx, func(jctx context.Context, job Job) error {
		mu.Lock()
		handled = append(handled, job.Path)
		mu.Unlock()
		close(started)
		<-jctx.Done()
		mu.Lock()
		jobErr = jctx.Err()
		mu.Unlock()
		return jctx.Err()
	}, nil, WithWorkers(1), WithJobTimeout(time.Minute))

	for _, p := range []string{"running.pdf", "queued.pdf"} {
		if err := q.Enqueue(context.Background(), Job{Path: p}); err != nil {
			t.Fatalf("enqueue %s: %v", p, err)
		}
	}
	<-started
	cancel()
	q.Shutdown(context.Background())

	mu.Lock()
	defer mu.Unlock()
	if !errors.Is(jobErr, context.Canceled) {
		t.Fatalf("job ctx: want=%v got=%v", context.Canceled, jobErr)
	}
	if len(handled) != 1 || handled[0] != "running.pdf" {
		t.Fatalf("handled: want=[running.pdf] got=%v", handled)
	}
}
