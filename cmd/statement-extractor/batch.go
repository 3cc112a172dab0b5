package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/statement-extractor/internal/export"
	"github.com/joseph-ayodele/statement-extractor/internal/ingest"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Extract every statement PDF under a directory",
	RunE:  runBatch,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch a directory and extract statement PDFs as they arrive",
	RunE:  runWatch,
}

var (
	batchDir       string
	batchOutDir    string
	batchFormat    string
	batchChunkSize int
	batchHidden    bool
	watchDebounce  time.Duration
)

func init() {
	for _, c := range []*cobra.Command{batchCmd, watchCmd} {
		c.Flags().StringVarP(&batchDir, "dir", "d", "", "Directory holding statement PDFs (required)")
		c.Flags().StringVar(&batchOutDir, "out-dir", "", "Directory for exports (default: next to each input)")
		c.Flags().StringVar(&batchFormat, "format", "csv", "Export format: csv or xlsx")
		c.Flags().IntVar(&batchChunkSize, "chunk-size", 0, "Pages per chunk besides the first page (default from config)")
		c.Flags().BoolVar(&batchHidden, "include-hidden", false, "Also process hidden files and directories")
		if err := c.MarkFlagRequired("dir"); err != nil {
			panic(fmt.Sprintf("failed to mark dir flag as required: %v", err))
		}
	}
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 2*time.Second, "Wait this long after the last write before extracting")

	rootCmd.AddCommand(batchCmd, watchCmd)
}

func newBatch(cmd *cobra.Command) (*ingest.Batch, error) {
	format := export.Format(batchFormat)
	if format != export.FormatCSV && format != export.FormatXLSX {
		return nil, fmt.Errorf("unsupported format %q (want csv or xlsx)", batchFormat)
	}
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := newTextLogger(cmd.ErrOrStderr(), cfg.LogLevel)

	chunkSize := batchChunkSize
	if chunkSize == 0 {
		chunkSize = cfg.Dispatch.ChunkSize
	}
	if batchOutDir != "" {
		if err := os.MkdirAll(batchOutDir, 0o755); err != nil {
			return nil, fmt.Errorf("create out dir: %w", err)
		}
	}
	extractor, err := newExtractor(cfg, logger)
	if err != nil {
		return nil, err
	}
	return ingest.NewBatch(extractor, export.NewService(logger), logger,
		ingest.WithChunkSize(chunkSize),
		ingest.WithFormat(format),
		ingest.WithOutDir(batchOutDir),
	), nil
}

func runBatch(cmd *cobra.Command, _ []string) error {
	b, err := newBatch(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, stats, err := b.ExtractDirectory(ctx, batchDir, !batchHidden)
	w := cmd.OutOrStdout()
	for _, r := range results {
		printFileResult(cmd, r)
	}
	_, _ = fmt.Fprintf(w, "Scanned %d, matched %d, succeeded %d, failed %d\n", stats.Scanned, stats.Matched, stats.Succeeded, stats.Failed)
	if err != nil {
		return err
	}
	if stats.Failed > 0 {
		return fmt.Errorf("%d statement(s) failed", stats.Failed)
	}
	return nil
}

func runWatch(cmd *cobra.Command, _ []string) error {
	b, err := newBatch(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = b.Watch(ctx, ingest.WatchConfig{
		Roots:       []string{batchDir},
		InitialScan: true,
		Debounce:    watchDebounce,
	}, func(r ingest.FileResult) { printFileResult(cmd, r) })
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func printFileResult(cmd *cobra.Command, r ingest.FileResult) {
	w := cmd.OutOrStdout()
	if r.Err != "" {
		_, _ = fmt.Fprintf(w, "FAIL %s: %s\n", r.Path, r.Err)
		return
	}
	_, _ = fmt.Fprintf(w, "OK   %s -> %s (%d rows, %d failed chunks)\n", r.Path, r.Output, r.Rows, r.FailedChunks)
}
