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

func TestQueueProcessesJobs(t *testing.T) {
	done := make(chan string, 1)
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		done <- job.ID
		return nil
	}, QueueConfig{Workers: 1})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "job-1", Type: "history"}))

	select {
	case id := <-done:
		assert.Equal(t, "job-1", id)
	case <-time.After(2 * time.Second):
		t.Fatal("job was not processed")
	}
}

func TestQueueRetriesFailedJobs(t *testing.T) {
	var attempts int32
	done := make(chan struct{})
	q := NewQueue("retry", func(ctx context.Context, job Job) error {
		if atomic.AddInt32(&attempts, 1) < 2 {
			return errors.New("broker unavailable")
		}
		close(done)
		return nil
	}, QueueConfig{Workers: 1, MaxRetries: 2, RetryDelay: 10 * time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "job-1"}))

	select {
	case <-done:
		assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
	case <-time.After(2 * time.Second):
		t.Fatal("job was not retried")
	}
}

func TestQueueRejectsBeforeStart(t *testing.T) {
	q := NewQueue("idle", func(context.Context, Job) error { return nil }, QueueConfig{})
	assert.Error(t, q.Enqueue(Job{ID: "job-1"}))
}
