package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrUnknownJobType is returned for jobs that no handler is registered for
var ErrUnknownJobType = errors.New("no handler registered for job type")

// Job is the view of a task handed to handlers and returned by DeadLetters
type Job struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Payload     json.RawMessage `json:"payload"`
	Attempts    int             `json:"attempts"`
	MaxAttempts int             `json:"max_attempts"`
	EnqueuedAt  time.Time       `json:"enqueued_at"`
	LastError   string          `json:"last_error,omitempty"`
}

// NewJob marshals payload into a job on its first attempt
func NewJob(jobType string, payload any) (*Job, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", jobType, err)
	}
	return &Job{
		ID:          uuid.NewString(),
		Type:        jobType,
		Payload:     raw,
		Attempts:    1,
		MaxAttempts: 1,
		EnqueuedAt:  time.Now().UTC(),
	}, nil
}

// Decode unmarshals the payload into v
func (j *Job) Decode(v any) error {
	if err := json.Unmarshal(j.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", j.Type, err)
	}
	return nil
}

// Handler processes one job. Returning an error schedules a retry.
type Handler func(ctx context.Context, job *Job) error

// Recorder receives per-job outcomes (succeeded, retried, dead)
type Recorder interface {
	RecordJob(ctx context.Context, jobType, outcome string, duration time.Duration)
}

// Job outcomes passed to Recorder
const (
	OutcomeSucceeded = "succeeded"
	OutcomeRetried   = "retried"
	OutcomeDead      = "dead"
)

// Stats is a point-in-time view of the queue
type Stats struct {
	Ready   int64 `json:"ready"`
	Delayed int64 `json:"delayed"`
	Dead    int64 `json:"dead"`
}

// Config configures a Queue
type Config struct {
	Name        string
	Workers     int
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	JobTimeout  time.Duration
}

// DefaultConfig returns defaults for the analytics queue
func DefaultConfig() Config {
	return Config{
		Name:        "analytics",
		Workers:     4,
		MaxAttempts: 5,
		BaseDelay:   time.Second,
		MaxDelay:    5 * time.Minute,
		JobTimeout:  30 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Name == "" {
		c.Name = d.Name
	}
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = d.MaxAttempts
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = d.BaseDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = d.MaxDelay
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = d.JobTimeout
	}
	return c
}

// Backoff returns base * 2^(attempt-1), capped at max
func Backoff(base, max time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	// beyond 2^30 any sane base has already passed max
	if attempt > 31 {
		return max
	}
	delay := base * time.Duration(1<<uint(attempt-1))
	if delay <= 0 || delay > max {
		return max
	}
	return delay
}
