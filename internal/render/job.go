package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dubloom/internal/services"
)

// Status is the lifecycle of a render job as the poller observes it.
type Status string

const (
	StatusSubmitted Status = "submitted"
	StatusPolling   Status = "polling"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusTimedOut  Status = "timed_out"
)

// Job is the poller's view of one render job. Progress only moves forward;
// MediaURL is set only on success.
type Job struct {
	ID       string
	Status   Status
	Progress float64
	MediaURL string
	Language string
}

// ErrMissingJobID reports a submission acknowledgement without a job id under
// any known alias.
var ErrMissingJobID = errors.New("render response carried no job id")

// FailedError is an explicit remote render failure. Detail is the remote
// error payload verbatim.
type FailedError struct {
	JobID  string
	Detail json.RawMessage
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("render %s failed: %s", e.JobID, string(e.Detail))
}

// TimeoutError reports that polling exceeded the configured deadline without
// the job reaching success or explicit failure.
type TimeoutError struct {
	JobID  string
	Waited time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out after %s waiting for render %s", e.Waited, e.JobID)
}

// Is lets errors.Is classify timeouts through the shared sentinel.
func (e *TimeoutError) Is(target error) bool {
	return target == services.ErrTimeout
}
