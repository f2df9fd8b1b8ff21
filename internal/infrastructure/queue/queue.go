package queue

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// ErrClosed is returned by Enqueue after Stop
var ErrClosed = errors.New("queue is closed")

type jobIDKey struct{}

// Queue enqueues background jobs and dispatches them to registered handlers.
//
// With Redis it is an asynq client, server and inspector: asynq owns
// persistence, retries with the Backoff schedule, and the archive of jobs
// that used all their attempts. Without Redis jobs run once on a
// background goroutine and failures are only logged.
type Queue struct {
	config   Config
	logger   *zap.Logger
	recorder Recorder
	mux      *asynq.ServeMux

	client    *asynq.Client
	server    *asynq.Server
	inspector *asynq.Inspector

	mu       sync.Mutex
	closed   bool
	inflight sync.WaitGroup
	running  atomic.Bool

	succeeded atomic.Int64
	failed    atomic.Int64
	dead      atomic.Int64
}

// Option configures a Queue
type Option func(*Queue)

// WithRecorder reports job outcomes to r
func WithRecorder(r Recorder) Option {
	return func(q *Queue) { q.recorder = r }
}

func newQueue(cfg Config, logger *zap.Logger, opts []Option) *Queue {
	if logger == nil {
		logger = zap.NewNop()
	}
	q := &Queue{
		config: cfg.withDefaults(),
		logger: logger.Named("queue"),
		mux:    asynq.NewServeMux(),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// NewRedis creates a queue stored in Redis
func NewRedis(redisOpt asynq.RedisConnOpt, cfg Config, logger *zap.Logger, opts ...Option) *Queue {
	q := newQueue(cfg, logger, opts)
	q.client = asynq.NewClient(redisOpt)
	q.inspector = asynq.NewInspector(redisOpt)
	q.server = asynq.NewServer(redisOpt, asynq.Config{
		Concurrency:     q.config.Workers,
		Queues:          map[string]int{q.config.Name: 1},
		RetryDelayFunc:  q.retryDelay,
		Logger:          q.logger.Sugar(),
		LogLevel:        asynq.WarnLevel,
		ShutdownTimeout: q.config.JobTimeout,
	})
	return q
}

// NewInProcess creates a queue that runs each job once in this process
func NewInProcess(cfg Config, logger *zap.Logger, opts ...Option) *Queue {
	return newQueue(cfg, logger, opts)
}

// Register binds a handler to a job type. Registering a type twice panics.
func (q *Queue) Register(jobType string, h Handler) {
	q.mux.Handle(jobType, q.wrap(h))
}

// Enqueue wraps payload in a job and hands it to the backend
func (q *Queue) Enqueue(ctx context.Context, jobType string, payload any) (*Job, error) {
	job, err := NewJob(jobType, payload)
	if err != nil {
		return nil, err
	}
	task := asynq.NewTask(jobType, job.Payload)

	if q.client == nil {
		return job, q.dispatch(ctx, job, task)
	}
	if q.isClosed() {
		return nil, ErrClosed
	}

	job.MaxAttempts = q.config.MaxAttempts
	info, err := q.client.EnqueueContext(ctx, task,
		asynq.TaskID(job.ID),
		asynq.Queue(q.config.Name),
		asynq.MaxRetry(q.config.MaxAttempts-1),
		asynq.Timeout(q.config.JobTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("enqueue %s: %w", jobType, err)
	}
	job.ID = info.ID
	return job, nil
}

func (q *Queue) dispatch(ctx context.Context, job *Job, task *asynq.Task) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	q.inflight.Add(1)
	q.mu.Unlock()

	go func() {
		defer q.inflight.Done()
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), q.config.JobTimeout)
		defer cancel()
		runCtx = context.WithValue(runCtx, jobIDKey{}, job.ID)
		defer func() {
			if r := recover(); r != nil {
				q.dead.Add(1)
				q.logger.Error("Job handler panicked",
					zap.String("job_id", job.ID),
					zap.String("job_type", job.Type),
					zap.Any("panic", r))
			}
		}()
		_ = q.ProcessTask(runCtx, task)
	}()
	return nil
}

// ProcessTask implements asynq.Handler. Unknown job types are archived
// without retrying.
func (q *Queue) ProcessTask(ctx context.Context, task *asynq.Task) error {
	h, pattern := q.mux.Handler(task)
	if pattern == "" {
		q.failed.Add(1)
		q.dead.Add(1)
		q.logger.Warn("No handler for job type", zap.String("job_type", task.Type()))
		q.record(ctx, task.Type(), OutcomeDead, time.Now())
		return fmt.Errorf("%w %q: %w", ErrUnknownJobType, task.Type(), asynq.SkipRetry)
	}
	return h.ProcessTask(ctx, task)
}

func (q *Queue) wrap(h Handler) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		start := time.Now()
		job := jobFromTask(ctx, task)

		err := h(ctx, job)
		if err == nil {
			q.succeeded.Add(1)
			q.record(ctx, job.Type, OutcomeSucceeded, start)
			return nil
		}

		q.failed.Add(1)
		if job.Attempts >= job.MaxAttempts || errors.Is(err, asynq.SkipRetry) {
			q.dead.Add(1)
			q.logger.Warn("Job moved to dead letter after max attempts",
				zap.String("job_id", job.ID),
				zap.String("job_type", job.Type),
				zap.Int("attempts", job.Attempts),
				zap.Error(err))
			q.record(ctx, job.Type, OutcomeDead, start)
			return err
		}
		q.logger.Debug("Job failed, scheduling retry",
			zap.String("job_id", job.ID),
			zap.String("job_type", job.Type),
			zap.Int("attempt", job.Attempts),
			zap.Duration("delay", Backoff(q.config.BaseDelay, q.config.MaxDelay, job.Attempts)),
			zap.Error(err))
		q.record(ctx, job.Type, OutcomeRetried, start)
		return err
	}
}

// jobFromTask reads attempt bookkeeping from the asynq context. Outside
// an asynq worker the job is on its one and only attempt.
func jobFromTask(ctx context.Context, task *asynq.Task) *Job {
	job := &Job{
		Type:        task.Type(),
		Payload:     task.Payload(),
		Attempts:    1,
		MaxAttempts: 1,
	}
	if id, ok := asynq.GetTaskID(ctx); ok {
		job.ID = id
	} else if id, ok := ctx.Value(jobIDKey{}).(string); ok {
		job.ID = id
	}
	if retried, ok := asynq.GetRetryCount(ctx); ok {
		job.Attempts = retried + 1
	}
	if maxRetry, ok := asynq.GetMaxRetry(ctx); ok {
		job.MaxAttempts = maxRetry + 1
	}
	return job
}

// retryDelay receives the number of retries already made
func (q *Queue) retryDelay(retried int, _ error, _ *asynq.Task) time.Duration {
	return Backoff(q.config.BaseDelay, q.config.MaxDelay, retried+1)
}

func (q *Queue) record(ctx context.Context, jobType, outcome string, start time.Time) {
	if q.recorder != nil {
		q.recorder.RecordJob(ctx, jobType, outcome, time.Since(start))
	}
}

// Start launches the asynq workers. Calling Start twice is an error.
func (q *Queue) Start() error {
	if !q.running.CompareAndSwap(false, true) {
		return errors.New("queue already running")
	}
	if q.server != nil {
		if err := q.server.Start(q); err != nil {
			q.running.Store(false)
			return fmt.Errorf("start queue server: %w", err)
		}
	}
	q.logger.Info("Queue started",
		zap.String("queue", q.config.Name),
		zap.String("mode", q.mode()),
		zap.Int("workers", q.config.Workers),
		zap.Int("max_attempts", q.config.MaxAttempts))
	return nil
}

// Stop refuses new jobs and waits for running ones to finish or ctx to end
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if q.server != nil && q.running.Load() {
			q.server.Shutdown()
		}
		q.inflight.Wait()
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	q.running.Store(false)

	if q.client != nil {
		if err := q.client.Close(); err != nil {
			q.logger.Warn("Failed to close queue client", zap.Error(err))
		}
		if err := q.inspector.Close(); err != nil {
			q.logger.Warn("Failed to close queue inspector", zap.Error(err))
		}
	}
	q.logger.Info("Queue stopped",
		zap.Int64("succeeded", q.succeeded.Load()),
		zap.Int64("failed", q.failed.Load()),
		zap.Int64("dead", q.dead.Load()))
	return nil
}

// IsRunning reports whether Start has been called without a matching Stop
func (q *Queue) IsRunning() bool {
	return q.running.Load()
}

func (q *Queue) isClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

func (q *Queue) mode() string {
	if q.client == nil {
		return "in-process"
	}
	return "redis"
}

// Stats returns queue depth. In-process queues only count dead jobs.
func (q *Queue) Stats(_ context.Context) (Stats, error) {
	if q.inspector == nil {
		return Stats{Dead: q.dead.Load()}, nil
	}
	ok, err := q.exists()
	if err != nil || !ok {
		return Stats{}, err
	}
	info, err := q.inspector.GetQueueInfo(q.config.Name)
	if err != nil {
		return Stats{}, fmt.Errorf("queue info: %w", err)
	}
	return Stats{
		Ready:   int64(info.Pending),
		Delayed: int64(info.Scheduled + info.Retry),
		Dead:    int64(info.Archived),
	}, nil
}

// DeadLetters returns up to limit archived jobs. In-process queues keep none.
func (q *Queue) DeadLetters(_ context.Context, limit int) ([]*Job, error) {
	if q.inspector == nil {
		return nil, nil
	}
	ok, err := q.exists()
	if err != nil || !ok {
		return nil, err
	}
	tasks, err := q.inspector.ListArchivedTasks(q.config.Name, asynq.PageSize(limit))
	if err != nil {
		return nil, fmt.Errorf("list archived jobs: %w", err)
	}
	jobs := make([]*Job, 0, len(tasks))
	for _, t := range tasks {
		jobs = append(jobs, &Job{
			ID:          t.ID,
			Type:        t.Type,
			Payload:     t.Payload,
			Attempts:    t.Retried + 1,
			MaxAttempts: t.MaxRetry + 1,
			LastError:   t.LastErr,
		})
	}
	return jobs, nil
}

// exists reports whether asynq has seen the queue yet
func (q *Queue) exists() (bool, error) {
	queues, err := q.inspector.Queues()
	if err != nil {
		return false, fmt.Errorf("list queues: %w", err)
	}
	return slices.Contains(queues, q.config.Name), nil
}
