package server

import (
	"context"
	"encoding/base64"
	"log/slog"
	"math"
	"strings"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/statement-extractor/internal/common"
	"github.com/joseph-ayodele/statement-extractor/internal/pipeline"
)

// Runner runs the extraction pipeline for one document.
type Runner interface {
	Run(ctx context.Context, doc []byte, chunkSize int) (*pipeline.Result, error)
}

// DefaultMaxDocumentBytes is the largest decoded PDF accepted by default.
const DefaultMaxDocumentBytes = 64 << 20

// ExtractionService implements ExtractionServer on top of a pipeline Runner.
type ExtractionService struct {
	runner      Runner
	logger      *slog.Logger
	maxDocBytes int
}

type ServiceOption func(*ExtractionService)

// WithMaxDocumentBytes bounds the decoded document size. NewGRPCServer sizes
// its message limits from the same value.
func WithMaxDocumentBytes(n int) ServiceOption {
	return func(s *ExtractionService) {
		if n > 0 {
			s.maxDocBytes = n
		}
	}
}

func NewExtractionService(runner Runner, logger *slog.Logger, opts ...ServiceOption) *ExtractionService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &ExtractionService{runner: runner, logger: logger, maxDocBytes: DefaultMaxDocumentBytes}
	for _, o := range opts {
		o(s)
	}
	return s
}

// MaxDocumentBytes reports the decoded document limit.
func (s *ExtractionService) MaxDocumentBytes() int { return s.maxDocBytes }

// Extract expects {"document": <base64 pdf>, "chunk_size": <number, optional>}.
func (s *ExtractionService) Extract(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()

	docVal, ok := fields["document"]
	if !ok {
		s.logger.Error("extract request missing document")
		return nil, common.InvalidArgumentError("document is required")
	}
	encoded := strings.TrimSpace(docVal.GetStringValue())
	if encoded == "" {
		return nil, common.InvalidArgumentError("document must be a non-empty base64 string")
	}
	doc, err := decodeBase64(encoded)
	if err != nil {
		s.logger.Error("extract request has invalid base64", "error", err)
		return nil, common.InvalidArgumentError("document is not valid base64")
	}
	if len(doc) > s.maxDocBytes {
		return nil, common.InvalidArgumentErrorf("document exceeds %d bytes", s.maxDocBytes)
	}

	chunkSize := 0
	if v, ok := fields["chunk_size"]; ok {
		n, ok := v.GetKind().(*structpb.Value_NumberValue)
		if !ok || n.NumberValue != math.Trunc(n.NumberValue) || n.NumberValue < 0 {
			return nil, common.InvalidArgumentError("chunk_size must be a non-negative integer")
		}
		chunkSize = int(n.NumberValue)
	}

	s.logger.Info("extract request", "bytes", len(doc), "chunk_size", chunkSize)
	res, err := s.runner.Run(ctx, doc, chunkSize)
	if err != nil {
		s.logger.Error("extract failed", "error", err)
		return nil, common.ToStatus(err)
	}

	out, err := resultToStruct(res)
	if err != nil {
		s.logger.Error("encode extract response failed", "run_id", res.RunID, "error", err)
		return nil, common.InternalError("encode response failed")
	}
	return out, nil
}

func decodeBase64(s string) ([]byte, error) {
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
}

func resultToStruct(res *pipeline.Result) (*structpb.Struct, error) {
	names := res.Fields.Names()
	fieldList := make([]any, len(names))
	for i, n := range names {
		fieldList[i] = n
	}

	ds := res.Dataset
	var columns []any
	rows := make([]any, 0, ds.Len())
	if ds != nil {
		columns = make([]any, len(ds.Columns))
		for i, c := range ds.Columns {
			columns[i] = c
		}
		for i := 0; i < ds.Len(); i++ {
			row := make(map[string]any, len(ds.Columns))
			for j, v := range ds.Row(i) {
				row[ds.Columns[j]] = v
			}
			rows = append(rows, row)
		}
	}

	chunks := make([]any, len(res.Chunks))
	for i, c := range res.Chunks {
		pages := make([]any, len(c.Pages))
		for j, p := range c.Pages {
			pages[j] = p
		}
		chunks[i] = map[string]any{
			"index":      c.Index,
			"pages":      pages,
			"record_id":  c.RecordID,
			"status":     string(c.Status),
			"polls":      c.Polls,
			"rows":       c.Rows,
			"skipped":    c.Skipped,
			"error_kind": string(c.ErrorKind),
			"error":      c.Error,
			"elapsed_ms": c.Elapsed.Milliseconds(),
		}
	}

	return structpb.NewStruct(map[string]any{
		"run_id":  res.RunID,
		"pages":   res.Pages,
		"fields":  fieldList,
		"columns": columns,
		"rows":    rows,
		"chunks":  chunks,
	})
}
