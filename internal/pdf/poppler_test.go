package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/statement-extractor/internal/common"
	"github.com/joseph-ayodele/statement-extractor/internal/entity"
)

// fakeRunner emulates pdfseparate (one file per "page" line of the input) and
// pdfunite (inputs joined with "|").
type fakeRunner struct {
	fail  bool
	mu    sync.Mutex
	calls []string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
	if f.fail {
		return nil, []byte("Syntax Error: broken xref"), errors.New("exit status 1")
	}
	switch name {
	case "pdfseparate":
		doc, err := os.ReadFile(args[0])
		if err != nil {
			return nil, nil, err
		}
		for i, line := range strings.Split(strings.TrimSpace(string(doc)), "\n") {
			if err := os.WriteFile(fmt.Sprintf(args[1], i+1), []byte(line), 0o600); err != nil {
				return nil, nil, err
			}
		}
	case "pdfunite":
		var parts [][]byte
		for _, in := range args[:len(args)-1] {
			b, err := os.ReadFile(in)
			if err != nil {
				return nil, nil, err
			}
			parts = append(parts, b)
		}
		if err := os.WriteFile(args[len(args)-1], bytes.Join(parts, []byte("|")), 0o600); err != nil {
			return nil, nil, err
		}
	}
	return nil, nil, nil
}

func newTestPoppler(t *testing.T, r Runner) *Poppler {
	t.Helper()
	p := NewPoppler(Config{TempDir: t.TempDir()}, nil)
	p.runner = r
	return p
}

func pagesOf(n int) []entity.Page {
	pages := make([]entity.Page, n)
	for i := range pages {
		pages[i] = entity.Page{Number: i + 1, Data: []byte(fmt.Sprintf("p%d", i+1))}
	}
	return pages
}

func TestSplit_OrdersPagesNumerically(t *testing.T) {
	var doc strings.Builder
	for i := 1; i <= 12; i++ {
		fmt.Fprintf(&doc, "p%d\n", i)
	}
	p := newTestPoppler(t, &fakeRunner{})

	pages, err := p.Split(context.Background(), []byte(doc.String()))
	require.NoError(t, err)
	require.Len(t, pages, 12)
	for i, page := range pages {
		assert.Equal(t, i+1, page.Number)
		assert.Equal(t, fmt.Sprintf("p%d", i+1), string(page.Data))
	}
}

func TestSplit_EmptyDocument(t *testing.T) {
	p := newTestPoppler(t, &fakeRunner{})
	_, err := p.Split(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestSplit_RunnerFailureCarriesStderr(t *testing.T) {
	p := newTestPoppler(t, &fakeRunner{fail: true})
	_, err := p.Split(context.Background(), []byte("p1\n"))
	require.Error(t, err)

	var toolErr *ToolError
	require.True(t, errors.As(err, &toolErr))
	assert.Equal(t, "pdfseparate", toolErr.Tool)
	assert.Equal(t, "Syntax Error: broken xref", toolErr.Stderr)
	assert.Contains(t, err.Error(), "broken xref")
}

func TestCheck_ReportsMissingTools(t *testing.T) {
	p := NewPoppler(Config{PdfSeparate: "se-missing-separate", PdfUnite: "se-missing-unite"}, nil)
	err := p.Check()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "se-missing-separate")
	assert.Contains(t, err.Error(), "se-missing-unite")
}

func TestClip(t *testing.T) {
	assert.Equal(t, "abc", clip("abc", 3))
	assert.Equal(t, "ab...", clip("abcd", 2))
}

func TestPlanChunks_AnchorLeadsEveryChunk(t *testing.T) {
	groups, err := PlanChunks(pagesOf(10), 4)
	require.NoError(t, err)
	require.Len(t, groups, 3)

	var numbers [][]int
	for _, g := range groups {
		numbers = append(numbers, entity.Chunk{Pages: g}.PageNumbers())
	}
	assert.Equal(t, [][]int{{1, 2, 3, 4, 5}, {1, 6, 7, 8, 9}, {1, 10}}, numbers)
}

func TestPlanChunks_SinglePage(t *testing.T) {
	groups, err := PlanChunks(pagesOf(1), 4)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, 1, groups[0][0].Number)
}

func TestPlanChunks_InvalidInput(t *testing.T) {
	_, err := PlanChunks(nil, 4)
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = PlanChunks(pagesOf(3), 0)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestChunk_CombinesPagesInIndexOrder(t *testing.T) {
	r := &fakeRunner{}
	p := newTestPoppler(t, r)

	chunks, err := p.Chunk(context.Background(), pagesOf(6), 2)
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
	}
	assert.Equal(t, "p1|p2|p3", string(chunks[0].Data))
	assert.Equal(t, "p1|p4|p5", string(chunks[1].Data))
	assert.Equal(t, "p1|p6", string(chunks[2].Data))
}

func TestChunk_SinglePageSkipsUnite(t *testing.T) {
	r := &fakeRunner{}
	p := newTestPoppler(t, r)

	chunks, err := p.Chunk(context.Background(), pagesOf(1), 4)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "p1", string(chunks[0].Data))
	assert.Empty(t, r.calls)
}

func TestChunk_PropagatesUniteFailure(t *testing.T) {
	p := newTestPoppler(t, &fakeRunner{fail: true})
	_, err := p.Chunk(context.Background(), pagesOf(3), 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdfunite")
}
