package entity

import (
	"time"

	"github.com/joseph-ayodele/statement-extractor/constants"
	"github.com/joseph-ayodele/statement-extractor/internal/common"
)

// Job tracks one chunk's asynchronous extraction.
type Job struct {
	ChunkIndex int                 `json:"chunk_index"`
	RecordID   string              `json:"record_id,omitempty"`
	Status     constants.JobStatus `json:"status"`
	Content    string              `json:"-"` // set only when Status is COMPLETED
}

// JobResult is the terminal outcome of a Job. Err is nil only for COMPLETED
// jobs, so "completed with nothing in it" and "request failed" stay distinct.
type JobResult struct {
	Job
	Err     *common.JobError `json:"error,omitempty"`
	Polls   int              `json:"polls"`
	Elapsed time.Duration    `json:"elapsed"`
}

func (r JobResult) Completed() bool {
	return r.Err == nil && r.Status == constants.JobStatusCompleted
}
