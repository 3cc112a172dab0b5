// Package schema discovers the statement's column schema from its first page.
package schema

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/statement-extractor/internal/common"
	"github.com/joseph-ayodele/statement-extractor/internal/entity"
	"github.com/joseph-ayodele/statement-extractor/internal/extraction"
	"github.com/joseph-ayodele/statement-extractor/internal/tables"
)

// SyncExtractor runs one synchronous markdown extraction.
type SyncExtractor interface {
	Extract(ctx context.Context, filename string, data []byte) (string, error)
}

type Discoverer struct {
	client SyncExtractor
	logger *slog.Logger
}

func NewDiscoverer(client SyncExtractor, logger *slog.Logger) *Discoverer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discoverer{client: client, logger: logger}
}

// Discover extracts the anchor page and returns the header of its widest table.
func (d *Discoverer) Discover(ctx context.Context, anchor entity.Page) (entity.FieldSet, error) {
	logger := common.LoggerFromContext(ctx, d.logger)
	start := time.Now()

	content, err := d.client.Extract(ctx, fmt.Sprintf("page-%d.pdf", anchor.Number), anchor.Data)
	if err != nil {
		if errors.Is(err, extraction.ErrMalformedResponse) {
			logger.Warn("schema.discover.malformed", "error", err)
			return entity.FieldSet{}, common.NewAppError("SCHEMA_NOT_FOUND", "malformed extraction response", errors.Join(common.ErrSchemaNotFound, err))
		}
		return entity.FieldSet{}, fmt.Errorf("discover schema: %w", err)
	}

	ts, err := tables.Parse(content)
	if err != nil {
		return entity.FieldSet{}, common.NewAppError("SCHEMA_NOT_FOUND", "unreadable tables", errors.Join(common.ErrSchemaNotFound, err))
	}
	best, ok := Widest(ts)
	if !ok {
		logger.Warn("schema.discover.no_table", "tables", len(ts), "content_bytes", len(content))
		return entity.FieldSet{}, common.NewAppError("SCHEMA_NOT_FOUND", "no table with columns on the first page", common.ErrSchemaNotFound)
	}

	fields := entity.NewFieldSet(best.Columns)
	if fields.Len() == 0 {
		return entity.FieldSet{}, common.NewAppError("SCHEMA_NOT_FOUND", "widest table has no usable columns", common.ErrSchemaNotFound)
	}
	logger.Info("schema.discover.ok",
		"tables", len(ts),
		"fields", fields.Names(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return fields, nil
}

// Widest returns the table with the most columns; ties keep the earlier one.
func Widest(ts []tables.Table) (tables.Table, bool) {
	best := -1
	for i, t := range ts {
		if t.Width() == 0 {
			continue
		}
		if best < 0 || t.Width() > ts[best].Width() {
			best = i
		}
	}
	if best < 0 {
		return tables.Table{}, false
	}
	return ts[best], true
}
