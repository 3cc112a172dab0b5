package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/statement-extractor/constants"
	"github.com/joseph-ayodele/statement-extractor/internal/common"
	"github.com/joseph-ayodele/statement-extractor/internal/export"
	"github.com/joseph-ayodele/statement-extractor/internal/pipeline"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract the transaction table of one statement PDF",
	Long:  "Discovers the column schema on the first page, extracts every page chunk in parallel and writes the merged rows as CSV or XLSX.",
	RunE:  runExtract,
}

var (
	extractInput     string
	extractOutput    string
	extractChunkSize int
)

func init() {
	extractCmd.Flags().StringVarP(&extractInput, "in", "i", "", "Path to the statement PDF (required)")
	extractCmd.Flags().StringVarP(&extractOutput, "out", "o", "", "Output file, .csv or .xlsx (default: <input>.csv next to the input)")
	extractCmd.Flags().IntVar(&extractChunkSize, "chunk-size", 0, fmt.Sprintf("Pages per chunk besides the first page, %d-%d (default from config)", constants.MinChunkSize, constants.MaxChunkSize))

	if err := extractCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, _ []string) error {
	if !constants.IsAllowedExt(filepath.Ext(extractInput)) {
		return fmt.Errorf("unsupported input %q: only PDF statements are accepted", extractInput)
	}
	out := extractOutput
	if out == "" {
		out = defaultOutputPath(extractInput)
	}
	if _, err := export.FormatFromPath(out); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newTextLogger(cmd.ErrOrStderr(), cfg.LogLevel)

	doc, err := os.ReadFile(extractInput)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	chunkSize := extractChunkSize
	if chunkSize == 0 {
		chunkSize = cfg.Dispatch.ChunkSize
	}

	extractor, err := newExtractor(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := extractor.Run(ctx, doc, chunkSize)
	if err != nil {
		if errors.Is(err, common.ErrSchemaNotFound) {
			return fmt.Errorf("could not detect a transaction table on the first page: %w", err)
		}
		return fmt.Errorf("extraction failed: %w", err)
	}

	if err := export.NewService(logger).WriteFile(out, res.Dataset); err != nil {
		return err
	}
	printSummary(cmd.OutOrStdout(), res, out)
	return nil
}

func defaultOutputPath(in string) string {
	base := filepath.Base(in)
	return filepath.Join(filepath.Dir(in), base[:len(base)-len(filepath.Ext(base))]+".csv")
}

func printSummary(w io.Writer, res *pipeline.Result, out string) {
	_, _ = fmt.Fprintf(w, "Run %s\n", res.RunID)
	_, _ = fmt.Fprintf(w, "Detected %d fields from first page: %v\n", res.Fields.Len(), res.Fields.Names())
	_, _ = fmt.Fprintf(w, "Pages: %d, chunks: %d, failed chunks: %d\n", res.Pages, len(res.Chunks), res.FailedChunks())
	for _, c := range res.Chunks {
		if c.ErrorKind != "" {
			_, _ = fmt.Fprintf(w, "  chunk %d (pages %v): %s\n", c.Index, c.Pages, c.ErrorKind)
		}
	}
	if res.Dataset.Len() == 0 {
		_, _ = fmt.Fprintf(w, "No rows extracted; wrote header only to %s\n", out)
		return
	}
	_, _ = fmt.Fprintf(w, "Extracted %d rows to %s\n", res.Dataset.Len(), out)
}
