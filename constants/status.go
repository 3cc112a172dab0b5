package constants

import "strings"

// JobStatus is the lifecycle state of one chunk's extraction job.
type JobStatus string

const (
	JobStatusSubmitted JobStatus = "SUBMITTED" // record id assigned
	JobStatusPolling   JobStatus = "POLLING"   // waiting on the remote service
	JobStatusCompleted JobStatus = "COMPLETED" // content received
	JobStatusFailed    JobStatus = "FAILED"    // submit or remote failure
	JobStatusTimedOut  JobStatus = "TIMED_OUT" // abandoned at the job deadline
)

// Terminal reports whether no further transition can happen from s.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusFailed, JobStatusTimedOut:
		return true
	}
	return false
}

// Remote processing_status values reported by the extraction service.
const (
	RemoteStatusCompleted = "completed"
	RemoteStatusFailed    = "failed"
	RemoteStatusError     = "error"
)

// IsRemoteCompleted reports a successful terminal remote status.
func IsRemoteCompleted(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), RemoteStatusCompleted)
}

// IsRemoteFailed reports a failed terminal remote status.
func IsRemoteFailed(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == RemoteStatusFailed || s == RemoteStatusError
}
