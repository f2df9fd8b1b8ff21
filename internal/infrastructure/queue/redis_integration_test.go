//go:build integration

package queue

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
)

func startRedis(t *testing.T) asynq.RedisClientOpt {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	return asynq.RedisClientOpt{Addr: endpoint}
}

func TestRedisQueue_Integration(t *testing.T) {
	ctx := context.Background()
	q := NewRedis(startRedis(t), Config{
		Name:        "analytics-test",
		Workers:     2,
		MaxAttempts: 2,
		BaseDelay:   10 * time.Millisecond,
		MaxDelay:    10 * time.Millisecond,
	}, zaptest.NewLogger(t))

	var recorded, attempts atomic.Int32
	q.Register("analytics.record", func(_ context.Context, job *Job) error {
		var payload map[string]int
		if err := job.Decode(&payload); err != nil {
			return err
		}
		recorded.Add(int32(payload["n"]))
		return nil
	})
	q.Register("analytics.broken", func(_ context.Context, job *Job) error {
		attempts.Add(1)
		return errors.New("always fails")
	})

	_, err := q.Enqueue(ctx, "analytics.record", map[string]int{"n": 3})
	require.NoError(t, err)
	broken, err := q.Enqueue(ctx, "analytics.broken", struct{}{})
	require.NoError(t, err)

	stats, err := q.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Ready)

	require.NoError(t, q.Start())
	t.Cleanup(func() { _ = q.Stop(context.Background()) })

	assert.Eventually(t, func() bool { return recorded.Load() == 3 }, 10*time.Second, 50*time.Millisecond)
	assert.Eventually(t, func() bool {
		s, err := q.Stats(ctx)
		return err == nil && s.Dead == 1
	}, 20*time.Second, 100*time.Millisecond)
	assert.Equal(t, int32(2), attempts.Load())

	dead, err := q.DeadLetters(ctx, 10)
	require.NoError(t, err)
	require.Len(t, dead, 1)
	assert.Equal(t, broken.ID, dead[0].ID)
	assert.Equal(t, "analytics.broken", dead[0].Type)
	assert.Equal(t, "always fails", dead[0].LastError)
}
