package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueRejectsEnqueueBeforeStart(t *testing.T) {
	q := NewQueue[int]("test", func(context.Context, int) error { return nil }, QueueConfig{})

	err := q.Enqueue(1)

	assert.Error(t, err)
}

func TestQueueProcessesPayloads(t *testing.T) {
	done := make(chan int, 3)
	q := NewQueue[int]("test", func(_ context.Context, n int) error {
		done <- n
		return nil
	}, QueueConfig{Workers: 2})

	q.Start(context.Background())
	defer q.Stop()

	for i := 1; i <= 3; i++ {
		require.NoError(t, q.Enqueue(i))
	}

	seen := map[int]bool{}
	for i := 0; i < 3; i++ {
		select {
		case n := <-done:
			seen[n] = true
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for payloads")
		}
	}
	assert.Len(t, seen, 3)
}

func TestQueueRetriesFailedPayloads(t *testing.T) {
	var calls atomic.Int32
	done := make(chan struct{})
	q := NewQueue[string]("test", func(_ context.Context, _ string) error {
		if calls.Add(1) < 3 {
			return errors.New("transient")
		}
		close(done)
		return nil
	}, QueueConfig{MaxRetries: 5, RetryDelay: 10 * time.Millisecond})

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue("payload"))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("payload was not retried to success")
	}
	assert.Equal(t, int32(3), calls.Load())
}

func TestQueueDropsAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	q := NewQueue[string]("test", func(_ context.Context, _ string) error {
		calls.Add(1)
		return errors.New("permanent")
	}, QueueConfig{MaxRetries: 2, RetryDelay: 5 * time.Millisecond})

	q.Start(context.Background())

	require.NoError(t, q.Enqueue("payload"))
	time.Sleep(200 * time.Millisecond)
	q.Stop()

	// initial attempt plus two retries
	assert.Equal(t, int32(3), calls.Load())
}

func TestQueueStopWaitsForWorkers(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool
	q := NewQueue[struct{}]("test", func(context.Context, struct{}) error {
		close(started)
		<-release
		finished.Store(true)
		return nil
	}, QueueConfig{})

	q.Start(context.Background())
	require.NoError(t, q.Enqueue(struct{}{}))
	<-started

	go func() {
		time.Sleep(50 * time.Millisecond)
		close(release)
	}()
	q.Stop()

	assert.True(t, finished.Load())
}
