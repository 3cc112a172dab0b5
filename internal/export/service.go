package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/statement-extractor/internal/common"
	"github.com/joseph-ayodele/statement-extractor/internal/entity"
)

// SheetName is the worksheet holding the rows in XLSX exports.
const SheetName = "Transactions"

// Format selects an export encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "csv":
		return FormatCSV, nil
	case "xlsx":
		return FormatXLSX, nil
	}
	return "", common.NewAppError("UNSUPPORTED_EXPORT", fmt.Sprintf("unsupported output file %q (want .csv or .xlsx)", path), common.ErrInvalidInput)
}

// Service renders datasets as CSV or XLSX bytes.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// Encode renders ds in the given format.
func (s *Service) Encode(ds *entity.Dataset, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return s.CSV(ds)
	case FormatXLSX:
		return s.XLSX(ds)
	}
	return nil, common.NewAppError("UNSUPPORTED_EXPORT", fmt.Sprintf("unsupported format %q", format), common.ErrInvalidInput)
}

// WriteFile encodes ds by path extension and writes it to path.
func (s *Service) WriteFile(path string, ds *entity.Dataset) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	b, err := s.Encode(ds, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	s.logger.Info("export.write.ok", "path", path, "format", format, "bytes", len(b))
	return nil
}

// CSV returns a header row of the dataset columns followed by one row per record.
func (s *Service) CSV(ds *entity.Dataset) ([]byte, error) {
	start := time.Now()
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(columns(ds)); err != nil {
		return nil, fmt.Errorf("csv header: %w", err)
	}
	for i := 0; i < ds.Len(); i++ {
		if err := w.Write(ds.Row(i)); err != nil {
			return nil, fmt.Errorf("csv row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("csv flush: %w", err)
	}
	s.logger.Info("export.csv.ok", "rows", ds.Len(), "elapsed_ms", time.Since(start).Milliseconds())
	return buf.Bytes(), nil
}

// XLSX returns a workbook with a single Transactions sheet.
func (s *Service) XLSX(ds *entity.Dataset) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("export.xlsx.close_error", "error", err)
		}
	}()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}

	cols := columns(ds)
	widths := make([]int, len(cols))
	write := func(row int, values []string) error {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		vals := make([]any, len(values))
		for i, v := range values {
			vals[i] = v
			if n := utf8.RuneCountInString(v); i < len(widths) && n > widths[i] {
				widths[i] = n
			}
		}
		return f.SetSheetRow(SheetName, cell, &vals)
	}

	if err := write(1, cols); err != nil {
		return nil, fmt.Errorf("xlsx header: %w", err)
	}
	for i := 0; i < ds.Len(); i++ {
		if err := write(i+2, ds.Row(i)); err != nil {
			return nil, fmt.Errorf("xlsx row %d: %w", i, err)
		}
	}

	// widen each column to its longest value, within sane bounds
	for i, w := range widths {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			continue
		}
		_ = f.SetColWidth(SheetName, name, name, float64(clamp(w+2, 10, 60)))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.Info("export.xlsx.ok",
		"rows", ds.Len(),
		"columns", len(cols),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func columns(ds *entity.Dataset) []string {
	if ds == nil {
		return nil
	}
	return ds.Columns
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
