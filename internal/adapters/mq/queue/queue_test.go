package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/scorecard/internal/domain/model"
)

func job(id string) Job {
	return Job{Snapshot: model.Snapshot{RoundID: id}, Enqueued: time.Now()}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
	if err := q.Enqueue(ctx, job("r1")); err != nil {
		t.Fatalf("expected enqueue to succeed: %v", err)
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	got := <-q.Dequeue(ctx)
	if got.Snapshot.RoundID != "r1" {
		t.Errorf("expected r1, got %v", got.Snapshot.RoundID)
	}
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	for _, id := range []string{"r1", "r2"} {
		if err := q.Enqueue(ctx, job(id)); err != nil {
			t.Fatalf("expected enqueue to succeed: %v", err)
		}
	}
	if err := q.Enqueue(ctx, job("r3")); !errors.Is(err, ErrFull) {
		t.Errorf("expected ErrFull, got %v", err)
	}
	if q.Cap() != 2 {
		t.Errorf("expected capacity 2, got %d", q.Cap())
	}
}

func TestInMemoryQueue_Close(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	ctx := context.Background()

	if err := q.Enqueue(ctx, job("r1")); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := q.Close(); err != nil {
		t.Errorf("second close should be a no-op, got %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to be closed")
	}
	if err := q.Enqueue(ctx, job("r2")); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}

	// Pending jobs are still delivered, then the channel closes.
	var got []string
	for j := range q.Dequeue(ctx) {
		got = append(got, j.Snapshot.RoundID)
	}
	if len(got) != 1 || got[0] != "r1" {
		t.Errorf("expected [r1], got %v", got)
	}
}

func TestInMemoryQueue_CancelledContext(t *testing.T) {
	q := NewInMemoryQueue()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := q.Enqueue(ctx, job("r1")); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}

	select {
	case _, ok := <-q.Dequeue(ctx):
		if ok {
			t.Error("expected no job from a cancelled dequeue")
		}
	case <-time.After(time.Second):
		t.Error("dequeue channel was not closed after cancellation")
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(100))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				if err := q.Enqueue(ctx, job(fmt.Sprintf("r%d-%d", i, j))); err != nil {
					t.Errorf("enqueue: %v", err)
				}
			}
		}(i)
	}
	wg.Wait()

	if l := q.Len(ctx); l != 100 {
		t.Errorf("expected length 100, got %d", l)
	}
	_ = q.Close()

	seen := make(map[string]bool)
	for j := range q.Dequeue(ctx) {
		seen[j.Snapshot.RoundID] = true
	}
	if len(seen) != 100 {
		t.Errorf("expected 100 distinct jobs, got %d", len(seen))
	}
}
