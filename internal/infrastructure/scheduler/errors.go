package scheduler

import "errors"

var (
	// ErrTaskNotFound is returned when running a task that was never registered
	ErrTaskNotFound = errors.New("scheduled task not found")

	// ErrTaskExists is returned when a task name is registered twice
	ErrTaskExists = errors.New("scheduled task already registered")

	// ErrInvalidSchedule is returned for cron expressions that do not parse
	ErrInvalidSchedule = errors.New("invalid cron schedule")
)
