package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Task is a named unit of periodic work
type Task struct {
	Name string
	// Spec is a standard five-field cron expression
	Spec string
	Run  func(ctx context.Context) error
}

// TaskStatus reports the last execution of a task
type TaskStatus struct {
	Name         string        `json:"name"`
	Spec         string        `json:"spec"`
	LastRunAt    *time.Time    `json:"last_run_at,omitempty"`
	LastDuration time.Duration `json:"last_duration"`
	LastError    string        `json:"last_error,omitempty"`
	NextRunAt    *time.Time    `json:"next_run_at,omitempty"`
	Running      bool          `json:"running"`
}

// Config holds scheduler configuration
type Config struct {
	Enabled    bool
	JobTimeout time.Duration
	Location   *time.Location
}

type entry struct {
	task    Task
	id      cron.EntryID
	running bool
	status  TaskStatus
}

// Scheduler runs tasks on cron schedules. A task never overlaps itself.
type Scheduler struct {
	config Config
	cron   *cron.Cron
	logger *zap.Logger

	mu      sync.Mutex
	entries map[string]*entry
	started bool
	wg      sync.WaitGroup
	baseCtx context.Context
	cancel  context.CancelFunc
}

// New creates a scheduler
func New(cfg Config, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 30 * time.Minute
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	logger = logger.Named("scheduler")
	return &Scheduler{
		config: cfg,
		cron: cron.New(
			cron.WithLocation(cfg.Location),
			cron.WithLogger(cronLogger{logger.Sugar()}),
		),
		logger:  logger,
		entries: make(map[string]*entry),
	}
}

// Register adds a task. It may be called before or after Start.
func (s *Scheduler) Register(task Task) error {
	if _, err := cron.ParseStandard(task.Spec); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidSchedule, task.Spec, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[task.Name]; exists {
		return fmt.Errorf("%w: %s", ErrTaskExists, task.Name)
	}

	e := &entry{task: task, status: TaskStatus{Name: task.Name, Spec: task.Spec}}
	id, err := s.cron.AddFunc(task.Spec, func() { s.execute(e) })
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}
	e.id = id
	s.entries[task.Name] = e

	s.logger.Info("Scheduled task registered", zap.String("task", task.Name), zap.String("spec", task.Spec))
	return nil
}

// Start begins firing tasks. It is a no-op when the scheduler is disabled.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.logger.Info("Scheduler is disabled")
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	s.baseCtx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))
	s.started = true
	s.cron.Start()
	s.logger.Info("Scheduler started", zap.Int("tasks", len(s.entries)))
	return nil
}

// Stop halts scheduling and waits for running tasks to finish or ctx to end.
// Running tasks are cancelled when ctx ends.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	s.mu.Unlock()

	cronDone := s.cron.Stop()
	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.cancel()
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		s.cancel()
		return ctx.Err()
	}
}

// RunNow executes a task synchronously, outside its schedule.
// Returns false without running if the task is already in progress.
func (s *Scheduler) RunNow(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	e, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrTaskNotFound, name)
	}
	return s.run(ctx, e)
}

func (s *Scheduler) execute(e *entry) {
	s.mu.Lock()
	ctx := s.baseCtx
	s.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := s.run(ctx, e); err != nil {
		s.logger.Error("Scheduled task failed", zap.String("task", e.task.Name), zap.Error(err))
	}
}

func (s *Scheduler) run(ctx context.Context, e *entry) (bool, error) {
	s.mu.Lock()
	if e.running {
		s.mu.Unlock()
		s.logger.Warn("Skipping task, previous run still in progress", zap.String("task", e.task.Name))
		return false, nil
	}
	e.running = true
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	ctx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	start := time.Now()
	err := s.safeRun(ctx, e.task)
	elapsed := time.Since(start)

	s.mu.Lock()
	e.running = false
	e.status.LastRunAt = &start
	e.status.LastDuration = elapsed
	e.status.LastError = ""
	if err != nil {
		e.status.LastError = err.Error()
	}
	s.mu.Unlock()

	if err == nil {
		s.logger.Info("Scheduled task completed",
			zap.String("task", e.task.Name),
			zap.Duration("duration", elapsed))
	}
	return true, err
}

func (s *Scheduler) safeRun(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %s panicked: %v", task.Name, r)
		}
	}()
	return task.Run(ctx)
}

// Status returns every task's last execution, sorted by name
func (s *Scheduler) Status() []TaskStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]TaskStatus, 0, len(s.entries))
	for _, e := range s.entries {
		st := e.status
		st.Running = e.running
		if s.started {
			if next := s.cron.Entry(e.id).Next; !next.IsZero() {
				st.NextRunAt = &next
			}
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
