// Package pipeline runs one statement through discovery, chunked dispatch,
// parsing and merging.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/statement-extractor/constants"
	"github.com/joseph-ayodele/statement-extractor/internal/common"
	"github.com/joseph-ayodele/statement-extractor/internal/entity"
	"github.com/joseph-ayodele/statement-extractor/internal/merge"
	"github.com/joseph-ayodele/statement-extractor/internal/parse"
)

type Splitter interface {
	Split(ctx context.Context, doc []byte) ([]entity.Page, error)
}

type Chunker interface {
	Chunk(ctx context.Context, pages []entity.Page, size int) ([]entity.Chunk, error)
}

type Discoverer interface {
	Discover(ctx context.Context, anchor entity.Page) (entity.FieldSet, error)
}

type Dispatcher interface {
	Dispatch(ctx context.Context, chunks []entity.Chunk, fields entity.FieldSet) []entity.JobResult
}

// Extractor coordinates split, schema discovery, dispatch, parse and merge.
type Extractor struct {
	logger     *slog.Logger
	splitter   Splitter
	chunker    Chunker
	discoverer Discoverer
	dispatcher Dispatcher
}

func NewExtractor(logger *slog.Logger, splitter Splitter, chunker Chunker, discoverer Discoverer, dispatcher Dispatcher) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		logger:     logger,
		splitter:   splitter,
		chunker:    chunker,
		discoverer: discoverer,
		dispatcher: dispatcher,
	}
}

// Run extracts the transaction rows of doc. chunkSize is bounded to the
// supported range; zero selects the default. Only setup failures (split,
// discovery, chunking) are returned as errors. Chunks that fail are reported
// in Result.Chunks and contribute no rows.
func (e *Extractor) Run(ctx context.Context, doc []byte, chunkSize int) (*Result, error) {
	runID := uuid.New().String()
	logger := e.logger.With("run_id", runID)
	ctx = common.WithLogger(common.WithRunID(ctx, runID), logger)
	start := time.Now()

	if len(doc) == 0 {
		return nil, common.NewAppError("INVALID_INPUT", "empty document", common.ErrInvalidInput)
	}
	size := constants.ClampChunkSize(chunkSize)
	if size != chunkSize && chunkSize != 0 {
		logger.Warn("pipeline.chunk_size.clamped", "requested", chunkSize, "used", size)
	}

	// 1) split into single pages
	pages, err := e.splitter.Split(ctx, doc)
	if err != nil {
		logger.Error("pipeline.split.failed", "error", err)
		return nil, err
	}
	if len(pages) == 0 {
		return nil, common.NewAppError("PDF_NO_PAGES", "document has no pages", common.ErrInvalidInput)
	}
	logger.Info("pipeline.split.ok", "pages", len(pages))

	// 2) discover the column schema on the first page
	fields, err := e.discoverer.Discover(ctx, pages[0])
	if err != nil {
		logger.Error("pipeline.discover.failed", "error", err)
		return nil, err
	}

	// 3) anchor + page-range chunks
	chunks, err := e.chunker.Chunk(ctx, pages, size)
	if err != nil {
		logger.Error("pipeline.chunk.failed", "error", err)
		return nil, err
	}
	logger.Info("pipeline.chunk.ok", "chunks", len(chunks), "chunk_size", size)

	// 4) one async job per chunk, all terminal on return
	jobs := e.dispatcher.Dispatch(ctx, chunks, fields)

	// 5) parse completed content in chunk order, then merge
	parser := parse.NewParser(logger)
	perChunk := make([][]entity.Record, len(jobs))
	reports := make([]ChunkReport, len(jobs))
	for i, job := range jobs {
		reports[i] = newChunkReport(job, chunkPages(chunks, i))
		if !job.Completed() {
			continue
		}
		out := parser.Parse(job.Content, fields)
		perChunk[i] = out.Records
		reports[i].Rows = len(out.Records)
		reports[i].Skipped = out.Skipped
		logger.Debug("pipeline.parse.chunk",
			"chunk", i,
			"rows", len(out.Records),
			"from_tables", out.Tables,
			"from_json", out.JSON,
			"from_lines", out.Lines,
			"skipped", out.Skipped,
		)
	}
	dataset := merge.Merge(perChunk, fields)

	res := &Result{
		RunID:   runID,
		Pages:   len(pages),
		Fields:  fields,
		Dataset: dataset,
		Chunks:  reports,
		Elapsed: time.Since(start),
	}
	logger.Info("pipeline.run.ok",
		"pages", len(pages),
		"fields", fields.Len(),
		"chunks", len(chunks),
		"failed_chunks", res.FailedChunks(),
		"rows", dataset.Len(),
		"elapsed_ms", res.Elapsed.Milliseconds(),
	)
	return res, nil
}

func chunkPages(chunks []entity.Chunk, i int) []int {
	if i < len(chunks) {
		return chunks[i].PageNumbers()
	}
	return nil
}
