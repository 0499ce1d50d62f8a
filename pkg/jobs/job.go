// Package jobs tracks asynchronous video processing jobs.
package jobs

import (
	"errors"
	"time"
)

// Sentinel errors.
var (
	// ErrNotFound is returned when a job ID is unknown.
	ErrNotFound = errors.New("jobs: not found")

	// ErrInvalidThreshold is returned for negative or non-finite thresholds.
	ErrInvalidThreshold = errors.New("jobs: threshold must be a non-negative finite number")

	// ErrShutdown is returned when submitting to a manager that is shutting down.
	ErrShutdown = errors.New("jobs: manager shut down")
)

// Status is the lifecycle state of a job.
type Status string

// Job states.
const (
	StatusProcessing Status = "processing"
	StatusDone       Status = "done"
	StatusError      Status = "error"
)

// Job is one processing run over a video file.
type Job struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	Status      Status    `json:"status"`
	Result      string    `json:"result,omitempty"` // CSV file name under the results directory
	Error       string    `json:"error,omitempty"`
	TargetColor string    `json:"targetColor"`
	Threshold   float64   `json:"threshold"`
	Frames      int       `json:"frames"`
	Detected    int       `json:"detected"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Finished reports whether the job reached a terminal state.
func (j Job) Finished() bool {
	return j.Status == StatusDone || j.Status == StatusError
}
