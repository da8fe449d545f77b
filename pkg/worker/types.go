package worker

import (
	"errors"
	"time"
)

// Status represents the current state of the worker pool
type Status string

const (
	// StatusIdle indicates the pool is ready but not processing
	StatusIdle Status = "idle"

	// StatusProcessing indicates the pool is actively processing tasks
	StatusProcessing Status = "processing"

	// StatusStopped indicates the pool is not accepting tasks
	StatusStopped Status = "stopped"
)

var (
	// ErrNotStarted is returned when tasks are submitted before Start
	ErrNotStarted = errors.New("pool not started")

	// ErrClosed is returned when tasks are submitted after Wait or Stop
	ErrClosed = errors.New("pool closed")
)

// Stats provides runtime statistics about the worker pool
type Stats struct {
	// ActiveWorkers is the number of workers currently processing tasks
	ActiveWorkers int

	// QueuedTasks is the number of tasks waiting to be processed
	QueuedTasks int

	// CompletedTasks is the number of tasks that finished without error
	CompletedTasks int

	// FailedTasks is the number of tasks that returned an error
	FailedTasks int

	Status Status

	// Uptime is how long the pool has been running
	Uptime time.Duration
}
