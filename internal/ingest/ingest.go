// Package ingest feeds statement files from a directory into the extraction
// pipeline and writes one export per statement.
package ingest

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/statement-extractor/internal/entity"
	"github.com/joseph-ayodele/statement-extractor/internal/export"
	"github.com/joseph-ayodele/statement-extractor/internal/pipeline"
)

type Runner interface {
	Run(ctx context.Context, doc []byte, chunkSize int) (*pipeline.Result, error)
}

type Writer interface {
	WriteFile(path string, ds *entity.Dataset) error
}

// FileResult is the outcome for one statement file.
type FileResult struct {
	Path         string
	Output       string
	RunID        string
	Rows         int
	FailedChunks int
	Err          string
}

// Batch extracts statements one file at a time. Each file's chunks are
// already dispatched in parallel by the Runner.
type Batch struct {
	runner    Runner
	writer    Writer
	logger    *slog.Logger
	chunkSize int
	format    export.Format
	outDir    string
}

type Option func(*Batch)

func WithChunkSize(n int) Option {
	return func(b *Batch) { b.chunkSize = n }
}

func WithFormat(f export.Format) Option {
	return func(b *Batch) {
		if f != "" {
			b.format = f
		}
	}
}

// WithOutDir writes exports into dir instead of next to each input.
func WithOutDir(dir string) Option {
	return func(b *Batch) { b.outDir = dir }
}

func NewBatch(runner Runner, writer Writer, logger *slog.Logger, opts ...Option) *Batch {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Batch{runner: runner, writer: writer, logger: logger, format: export.FormatCSV}
	for _, o := range opts {
		o(b)
	}
	return b
}

// ExtractFile runs one statement through the pipeline and writes its export.
func (b *Batch) ExtractFile(ctx context.Context, path string) FileResult {
	res := FileResult{Path: path, Output: b.outputPath(path)}
	start := time.Now()

	doc, err := os.ReadFile(path)
	if err != nil {
		res.Err = err.Error()
		b.logger.Error("ingest.read.failed", "path", path, "error", err)
		return res
	}
	out, err := b.runner.Run(ctx, doc, b.chunkSize)
	if err != nil {
		res.Err = err.Error()
		b.logger.Error("ingest.extract.failed", "path", path, "error", err)
		return res
	}
	res.RunID = out.RunID
	res.Rows = out.Dataset.Len()
	res.FailedChunks = out.FailedChunks()

	if err := b.writer.WriteFile(res.Output, out.Dataset); err != nil {
		res.Err = err.Error()
		b.logger.Error("ingest.write.failed", "path", path, "output", res.Output, "error", err)
		return res
	}
	b.logger.Info("ingest.file.ok",
		"path", path,
		"output", res.Output,
		"run_id", res.RunID,
		"rows", res.Rows,
		"failed_chunks", res.FailedChunks,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res
}

func (b *Batch) outputPath(in string) string {
	dir := filepath.Dir(in)
	if b.outDir != "" {
		dir = b.outDir
	}
	base := filepath.Base(in)
	return filepath.Join(dir, strings.TrimSuffix(base, filepath.Ext(base))+"."+string(b.format))
}
