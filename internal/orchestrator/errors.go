package orchestrator

import (
	"errors"
	"fmt"
)

// ErrBusy is returned when a job is already outstanding.
var ErrBusy = errors.New("operation already in flight")

const genericNetworkMessage = "network error"

// NetworkError means the request could not be completed or the service answered
// with a non-success status.
type NetworkError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Message, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ComputeError means the service reported the job as failed.
type ComputeError struct {
	JobID   string
	Message string
}

func (e *ComputeError) Error() string {
	return fmt.Sprintf("job %s failed: %s", e.JobID, e.Message)
}

// TimeoutError means the job was still pending after the last allowed status check.
type TimeoutError struct {
	JobID    string
	Attempts int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("job %s still pending after %d status checks", e.JobID, e.Attempts)
}

// Kind names the failure class of err for logging.
func Kind(err error) string {
	var (
		netErr     *NetworkError
		computeErr *ComputeError
		timeoutErr *TimeoutError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrBusy):
		return "busy"
	case errors.As(err, &timeoutErr):
		return "timeout"
	case errors.As(err, &computeErr):
		return "compute"
	case errors.As(err, &netErr):
		return "network"
	}
	return "unknown"
}
