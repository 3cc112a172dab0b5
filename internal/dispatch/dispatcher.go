// Package dispatch runs one asynchronous extraction job per chunk through a
// bounded worker pool and waits for all of them to finish.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/joseph-ayodele/statement-extractor/constants"
	"github.com/joseph-ayodele/statement-extractor/internal/common"
	"github.com/joseph-ayodele/statement-extractor/internal/entity"
	"github.com/joseph-ayodele/statement-extractor/internal/extraction"
)

// Backend is the asynchronous side of the extraction service.
type Backend interface {
	Submit(ctx context.Context, filename string, data []byte, fields string) (string, error)
	Poll(ctx context.Context, recordID string) (extraction.PollResult, error)
}

type Dispatcher struct {
	backend      Backend
	logger       *slog.Logger
	workers      int
	pollInterval time.Duration
	jobTimeout   time.Duration
}

type Option func(*Dispatcher)

func WithWorkers(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.workers = n
		}
	}
}

func WithPollInterval(p time.Duration) Option {
	return func(d *Dispatcher) {
		if p > 0 {
			d.pollInterval = p
		}
	}
}

// WithJobTimeout bounds submit plus polling for a single chunk.
func WithJobTimeout(t time.Duration) Option {
	return func(d *Dispatcher) {
		if t > 0 {
			d.jobTimeout = t
		}
	}
}

func NewDispatcher(backend Backend, logger *slog.Logger, opts ...Option) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		backend:      backend,
		logger:       logger,
		workers:      4,
		pollInterval: 7 * time.Second,
		jobTimeout:   10 * time.Minute,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Dispatch returns one terminal JobResult per chunk, at the chunk's index.
// It returns only after every job has finished.
func (d *Dispatcher) Dispatch(ctx context.Context, chunks []entity.Chunk, fields entity.FieldSet) []entity.JobResult {
	results := make([]entity.JobResult, len(chunks))
	if len(chunks) == 0 {
		return results
	}
	logger := common.LoggerFromContext(ctx, d.logger)

	workers := d.workers
	if workers > len(chunks) {
		workers = len(chunks)
	}

	queue := make(chan int, len(chunks))
	for i := range chunks {
		queue <- i
	}
	close(queue)

	joined := fields.Joined()
	start := time.Now()

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for i := range queue {
				results[i] = d.run(ctx, logger.With("worker_id", workerID), i, chunks[i], joined)
			}
		}(w + 1)
	}
	wg.Wait()

	completed := 0
	for _, r := range results {
		if r.Completed() {
			completed++
		}
	}
	logger.Info("dispatch.done",
		"chunks", len(chunks),
		"completed", completed,
		"workers", workers,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return results
}

// run drives one chunk from submission to a terminal state.
func (d *Dispatcher) run(parent context.Context, logger *slog.Logger, index int, chunk entity.Chunk, fields string) entity.JobResult {
	start := time.Now()
	res := entity.JobResult{Job: entity.Job{ChunkIndex: index}}
	finish := func(status constants.JobStatus, kind common.JobErrorKind, cause error) entity.JobResult {
		res.Status = status
		res.Elapsed = time.Since(start)
		if kind != "" {
			res.Err = common.NewJobError(kind, index, res.RecordID, cause)
			logger.Warn("dispatch.job.ended",
				"chunk", index,
				"record_id", res.RecordID,
				"kind", kind,
				"error", cause,
				"polls", res.Polls,
				"elapsed_ms", res.Elapsed.Milliseconds(),
			)
		}
		return res
	}

	if err := parent.Err(); err != nil {
		return finish(constants.JobStatusFailed, common.JobCanceled, err)
	}

	ctx, cancel := context.WithTimeout(parent, d.jobTimeout)
	defer cancel()

	// interrupted maps an expired job context onto canceled or timed out.
	interrupted := func() (entity.JobResult, bool) {
		if ctx.Err() == nil {
			return entity.JobResult{}, false
		}
		if parent.Err() != nil {
			return finish(constants.JobStatusFailed, common.JobCanceled, parent.Err()), true
		}
		return finish(constants.JobStatusTimedOut, common.JobTimedOut, fmt.Errorf("no result within %s", d.jobTimeout)), true
	}

	recordID, err := d.backend.Submit(ctx, fmt.Sprintf("chunk_%d.pdf", index), chunk.Data, fields)
	if err != nil {
		if r, ok := interrupted(); ok {
			return r
		}
		return finish(constants.JobStatusFailed, common.JobSubmissionFailed, err)
	}
	res.RecordID = recordID
	res.Status = constants.JobStatusSubmitted
	logger.Info("dispatch.job.submitted", "chunk", index, "record_id", recordID, "pages", chunk.PageNumbers())

	for {
		res.Status = constants.JobStatusPolling
		res.Polls++
		pr, err := d.backend.Poll(ctx, recordID)
		switch {
		case err != nil:
			if r, ok := interrupted(); ok {
				return r
			}
			return finish(constants.JobStatusFailed, common.JobFailed, err)
		case pr.Completed():
			res.Content = pr.Content
			logger.Info("dispatch.job.completed",
				"chunk", index,
				"record_id", recordID,
				"polls", res.Polls,
				"content_bytes", len(pr.Content),
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return finish(constants.JobStatusCompleted, "", nil)
		case pr.Failed():
			return finish(constants.JobStatusFailed, common.JobFailed, errors.New("remote status "+pr.Status))
		}

		logger.Debug("dispatch.job.pending", "chunk", index, "record_id", recordID, "status", pr.Status, "polls", res.Polls)
		timer := time.NewTimer(d.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			r, _ := interrupted()
			return r
		case <-timer.C:
		}
	}
}
