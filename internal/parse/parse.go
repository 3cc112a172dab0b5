// Package parse turns free-form extraction content into schema-keyed records.
//
// Three strategies run over the same content and their results are unioned:
// HTML tables, JSON arrays of objects, and one-object-per-line brace records.
// Keys are then renamed onto the canonical field names. Parsing never fails;
// fragments that cannot be read are skipped and counted.
package parse

import (
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/statement-extractor/internal/entity"
	"github.com/joseph-ayodele/statement-extractor/internal/tables"
)

// Output is what one content block yielded.
type Output struct {
	Records []entity.Record
	Tables  int // rows from HTML tables
	JSON    int // rows from JSON arrays
	Lines   int // rows from brace lines
	Skipped int // fragments that could not be parsed
}

type Parser struct {
	logger *slog.Logger
}

func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// Parse is Parser.Parse with the default logger, returning records only.
func Parse(content string, fields entity.FieldSet) []entity.Record {
	return NewParser(nil).Parse(content, fields).Records
}

// Parse runs every applicable strategy over content. Empty content yields an
// empty Output.
func (p *Parser) Parse(content string, fields entity.FieldSet) Output {
	var out Output
	if strings.TrimSpace(content) == "" {
		return out
	}

	if strings.Contains(content, "<table") {
		recs, err := tables.Records(content)
		if err != nil {
			out.Skipped++
			p.logger.Debug("parse.tables.skipped", "error", err)
		}
		out.Tables = len(recs)
		out.Records = append(out.Records, recs...)
	}

	if strings.Contains(content, "[") && strings.Contains(content, "{") {
		recs, skipped := jsonArrays(content)
		out.JSON = len(recs)
		out.Skipped += skipped
		out.Records = append(out.Records, recs...)
	}

	if strings.Contains(content, "{") {
		recs, skipped := braceLines(content)
		out.Lines = len(recs)
		out.Skipped += skipped
		out.Records = append(out.Records, recs...)
	}

	out.Records = Normalize(out.Records, fields)
	if out.Skipped > 0 {
		p.logger.Debug("parse.fragments.skipped", "skipped", out.Skipped)
	}
	return out
}

// braceLines reads every trimmed line that opens with '{' and closes with '}'
// as a JSON or Python-style literal object.
func braceLines(content string) ([]entity.Record, int) {
	var (
		recs    []entity.Record
		skipped int
	)
	for _, line := range strings.Split(content, "\n") {
		s := strings.TrimSpace(line)
		if !strings.HasPrefix(s, "{") || !strings.HasSuffix(s, "}") {
			continue
		}
		v, err := parseLiteral(s)
		if err != nil {
			skipped++
			continue
		}
		obj, ok := v.(map[string]any)
		if !ok {
			skipped++
			continue
		}
		recs = append(recs, toRecord(obj))
	}
	return recs, skipped
}
