package task

import "encoding/json"

// Status is the lifecycle state of a provider-side generation task. The
// provider owns every transition; this service only ever observes it.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusRunning   Status = "RUNNING"
	StatusSucceeded Status = "SUCCEEDED"
	StatusFailed    Status = "FAILED"
	StatusCanceled  Status = "CANCELED"
)

// Terminal reports whether no further transition can occur from s.
func (s Status) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusCanceled:
		return true
	}
	return false
}

// Snapshot is one observation of a task, as returned by the provider's
// status endpoint. Raw preserves the full provider payload so callers can
// relay it unmodified.
type Snapshot struct {
	ID     string          `json:"id"`
	Status Status          `json:"status"`
	Output []string        `json:"output"`
	Raw    json.RawMessage `json:"-"`
}

// FirstOutput returns the first output URL, or "" when none exists yet.
func (s *Snapshot) FirstOutput() string {
	if s == nil || len(s.Output) == 0 {
		return ""
	}
	return s.Output[0]
}

// Done reports whether the snapshot is a completed success. A SUCCEEDED
// status with no output is treated as still in progress: some providers
// flip the status before the output URLs are attached.
func (s *Snapshot) Done() bool {
	return s != nil && s.Status == StatusSucceeded && len(s.Output) > 0
}
