package main

import (
	"io"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/statement-extractor/internal/common"
	"github.com/joseph-ayodele/statement-extractor/internal/dispatch"
	"github.com/joseph-ayodele/statement-extractor/internal/extraction"
	"github.com/joseph-ayodele/statement-extractor/internal/pdf"
	"github.com/joseph-ayodele/statement-extractor/internal/pipeline"
	"github.com/joseph-ayodele/statement-extractor/internal/schema"
)

// loadConfig reads config from --config and the environment, applying --log-level.
func loadConfig() (*common.Config, error) {
	cfg, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = strings.ToLower(logLevel)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// newTextLogger prints messages with their attributes but no time/level.
func newTextLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: parseLevel(level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && (a.Key == slog.TimeKey || a.Key == slog.LevelKey) {
				return slog.Attr{}
			}
			return a
		},
	}))
}

func newJSONLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parseLevel(level)}))
}

// newExtractor wires the pipeline from configuration. It fails when the
// poppler binaries are missing.
func newExtractor(cfg *common.Config, logger *slog.Logger) (*pipeline.Extractor, error) {
	client := extraction.NewClient(extraction.Config{
		APIKey:            cfg.Extraction.APIKey,
		BaseURL:           cfg.Extraction.BaseURL,
		Model:             cfg.Extraction.Model,
		Timeout:           cfg.Extraction.Timeout,
		RequestsPerSecond: cfg.Extraction.RequestsPerSecond,
	}, logger)

	poppler := pdf.NewPoppler(pdf.Config{
		PdfSeparate: cfg.PDF.PdfSeparate,
		PdfUnite:    cfg.PDF.PdfUnite,
		TempDir:     cfg.PDF.TempDir,
	}, logger)
	if err := poppler.Check(); err != nil {
		return nil, err
	}

	discoverer := schema.NewDiscoverer(client, logger)
	dispatcher := dispatch.NewDispatcher(client, logger,
		dispatch.WithWorkers(cfg.Dispatch.Workers),
		dispatch.WithPollInterval(cfg.Dispatch.PollInterval),
		dispatch.WithJobTimeout(cfg.Dispatch.JobTimeout),
	)
	return pipeline.NewExtractor(logger, poppler, poppler, discoverer, dispatcher), nil
}
