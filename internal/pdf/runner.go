package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// Runner lets us stub poppler binaries in tests.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// maxStderr bounds how much tool output ends up in errors and logs.
const maxStderr = 512

// ToolError reports a failed poppler invocation with its stderr tail.
type ToolError struct {
	Tool   string
	Stderr string
	Err    error
}

func (e *ToolError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s: %v", e.Tool, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Tool, e.Err, e.Stderr)
}

func (e *ToolError) Unwrap() error { return e.Err }

func newToolError(tool string, stderr []byte, err error) *ToolError {
	return &ToolError{
		Tool:   tool,
		Stderr: clip(strings.TrimSpace(string(stderr)), maxStderr),
		Err:    err,
	}
}

type execRunner struct {
	logger *slog.Logger
}

func (r execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout, cmd.Stderr = &stdout, &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start).Milliseconds()

	if err != nil {
		r.logger.Warn("pdf.tool.failed", "tool", name, "inputs", len(args), "elapsed_ms", elapsed,
			"error", err, "stderr", clip(stderr.String(), maxStderr))
		return stdout.Bytes(), stderr.Bytes(), err
	}
	r.logger.Debug("pdf.tool.ok", "tool", name, "inputs", len(args), "elapsed_ms", elapsed)
	return stdout.Bytes(), stderr.Bytes(), nil
}

// Check verifies that both poppler binaries resolve on PATH (or as given).
func (p *Poppler) Check() error {
	var errs []error
	for _, tool := range []string{p.cfg.PdfSeparate, p.cfg.PdfUnite} {
		if _, err := exec.LookPath(tool); err != nil {
			errs = append(errs, fmt.Errorf("%s not available: %w", tool, err))
		}
	}
	return errors.Join(errs...)
}

// run invokes tool and folds any failure into a ToolError.
func (p *Poppler) run(ctx context.Context, tool string, args ...string) error {
	if _, stderr, err := p.runner.Run(ctx, tool, args...); err != nil {
		return newToolError(tool, stderr, err)
	}
	return nil
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
