package pipeline

import (
	"time"

	"github.com/joseph-ayodele/statement-extractor/constants"
	"github.com/joseph-ayodele/statement-extractor/internal/common"
	"github.com/joseph-ayodele/statement-extractor/internal/entity"
)

// Result is the outcome of one Run.
type Result struct {
	RunID   string
	Pages   int
	Fields  entity.FieldSet
	Dataset *entity.Dataset
	Chunks  []ChunkReport
	Elapsed time.Duration
}

// ChunkReport summarizes what one chunk's job produced.
type ChunkReport struct {
	Index     int                 `json:"index"`
	Pages     []int               `json:"pages"`
	RecordID  string              `json:"record_id,omitempty"`
	Status    constants.JobStatus `json:"status"`
	Polls     int                 `json:"polls"`
	Rows      int                 `json:"rows"`
	Skipped   int                 `json:"skipped"`
	ErrorKind common.JobErrorKind `json:"error_kind,omitempty"`
	Error     string              `json:"error,omitempty"`
	Elapsed   time.Duration       `json:"elapsed"`
}

func newChunkReport(job entity.JobResult, pages []int) ChunkReport {
	r := ChunkReport{
		Index:    job.ChunkIndex,
		Pages:    pages,
		RecordID: job.RecordID,
		Status:   job.Status,
		Polls:    job.Polls,
		Elapsed:  job.Elapsed,
	}
	if job.Err != nil {
		r.ErrorKind = job.Err.Kind
		r.Error = job.Err.Error()
	}
	return r
}

// FailedChunks counts chunks whose job did not complete.
func (r *Result) FailedChunks() int {
	n := 0
	for _, c := range r.Chunks {
		if c.ErrorKind != "" {
			n++
		}
	}
	return n
}
