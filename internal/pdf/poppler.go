package pdf

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/statement-extractor/internal/common"
	"github.com/joseph-ayodele/statement-extractor/internal/entity"
)

type Config struct {
	PdfSeparate string // binary name or absolute path; if empty -> "pdfseparate"
	PdfUnite    string // binary name or absolute path; if empty -> "pdfunite"
	TempDir     string // parent for scratch dirs; empty uses os.TempDir
	MaxParallel int    // concurrent pdfunite invocations, default 4
}

// Poppler splits documents into pages and combines pages into chunk PDFs
// using poppler-utils.
type Poppler struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewPoppler(cfg Config, logger *slog.Logger) *Poppler {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PdfSeparate == "" {
		cfg.PdfSeparate = "pdfseparate"
	}
	if cfg.PdfUnite == "" {
		cfg.PdfUnite = "pdfunite"
	}
	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = 4
	}
	return &Poppler{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

// Split cuts doc into single-page PDFs, in page order.
func (p *Poppler) Split(ctx context.Context, doc []byte) ([]entity.Page, error) {
	if len(doc) == 0 {
		return nil, common.NewAppError("PDF_EMPTY", "document is empty", common.ErrInvalidInput)
	}
	tmpDir, err := os.MkdirTemp(p.cfg.TempDir, "se-split-*")
	if err != nil {
		return nil, err
	}
	defer p.removeAll(tmpDir)

	in := filepath.Join(tmpDir, "document.pdf")
	if err := os.WriteFile(in, doc, 0o600); err != nil {
		return nil, err
	}

	// pdfseparate <in.pdf> <tmp/page-%d.pdf>
	if err := p.run(ctx, p.cfg.PdfSeparate, in, filepath.Join(tmpDir, "page-%d.pdf")); err != nil {
		return nil, err
	}

	files, err := pageFiles(tmpDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, common.NewAppError("PDF_NO_PAGES", "pdfseparate produced no pages", common.ErrInvalidInput)
	}

	pages := make([]entity.Page, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f.path)
		if err != nil {
			return nil, fmt.Errorf("read page %d: %w", f.number, err)
		}
		pages = append(pages, entity.Page{Number: f.number, Data: data})
	}
	p.logger.Info("pdf.split.ok", "pages", len(pages), "bytes", len(doc))
	return pages, nil
}

// Chunk groups pages with PlanChunks and combines each group into one PDF.
// Chunks are built concurrently and returned in index order.
func (p *Poppler) Chunk(ctx context.Context, pages []entity.Page, size int) ([]entity.Chunk, error) {
	groups, err := PlanChunks(pages, size)
	if err != nil {
		return nil, err
	}

	chunks := make([]entity.Chunk, len(groups))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.MaxParallel)
	for i, group := range groups {
		i, group := i, group
		g.Go(func() error {
			data, err := p.unite(gctx, group)
			if err != nil {
				return fmt.Errorf("chunk %d: %w", i, err)
			}
			chunks[i] = entity.Chunk{Index: i, Pages: group, Data: data}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	p.logger.Info("pdf.chunk.ok", "pages", len(pages), "chunk_size", size, "chunks", len(chunks))
	return chunks, nil
}

// PlanChunks lays pages out as chunks: the anchor (first) page followed by up
// to size consecutive pages of the remainder. A single-page document yields
// one anchor-only chunk.
func PlanChunks(pages []entity.Page, size int) ([][]entity.Page, error) {
	if len(pages) == 0 {
		return nil, common.NewAppError("PDF_NO_PAGES", "no pages to chunk", common.ErrInvalidInput)
	}
	if size < 1 {
		return nil, common.NewAppError("PDF_CHUNK_SIZE", fmt.Sprintf("chunk size must be positive, got %d", size), common.ErrInvalidInput)
	}
	anchor, rest := pages[0], pages[1:]
	if len(rest) == 0 {
		return [][]entity.Page{{anchor}}, nil
	}
	groups := make([][]entity.Page, 0, (len(rest)+size-1)/size)
	for start := 0; start < len(rest); start += size {
		end := min(start+size, len(rest))
		group := make([]entity.Page, 0, end-start+1)
		group = append(group, anchor)
		group = append(group, rest[start:end]...)
		groups = append(groups, group)
	}
	return groups, nil
}

func (p *Poppler) unite(ctx context.Context, group []entity.Page) ([]byte, error) {
	if len(group) == 1 {
		return group[0].Data, nil
	}
	tmpDir, err := os.MkdirTemp(p.cfg.TempDir, "se-unite-*")
	if err != nil {
		return nil, err
	}
	defer p.removeAll(tmpDir)

	args := make([]string, 0, len(group)+1)
	for i, page := range group {
		path := filepath.Join(tmpDir, fmt.Sprintf("in-%03d.pdf", i))
		if err := os.WriteFile(path, page.Data, 0o600); err != nil {
			return nil, err
		}
		args = append(args, path)
	}
	out := filepath.Join(tmpDir, "chunk.pdf")
	args = append(args, out)

	// pdfunite <in-000.pdf> ... <chunk.pdf>
	if err := p.run(ctx, p.cfg.PdfUnite, args...); err != nil {
		return nil, err
	}
	return os.ReadFile(out)
}

func (p *Poppler) removeAll(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		p.logger.Warn("pdf.tmp.cleanup_failed", "dir", dir, "error", err)
	}
}

type pageFile struct {
	number int
	path   string
}

// pageFiles collects page-N.pdf outputs sorted by N (lexical order would put page-10 before page-2).
func pageFiles(dir string) ([]pageFile, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "page-*.pdf"))
	if err != nil {
		return nil, err
	}
	files := make([]pageFile, 0, len(matches))
	for _, m := range matches {
		base := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(m), "page-"), ".pdf")
		n, err := strconv.Atoi(base)
		if err != nil {
			continue
		}
		files = append(files, pageFile{number: n, path: m})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].number < files[j].number })
	return files, nil
}
