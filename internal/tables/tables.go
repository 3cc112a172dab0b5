// Package tables reads HTML tables out of extraction markdown into records.
package tables

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/joseph-ayodele/statement-extractor/internal/entity"
)

// Table is one HTML table with a resolved header.
type Table struct {
	Columns []string
	Rows    []entity.Record
}

// Width is the number of header columns.
func (t Table) Width() int { return len(t.Columns) }

// Parse returns every <table> in content in document order. Content without
// tables yields an empty slice and no error.
func Parse(content string) ([]Table, error) {
	if !strings.Contains(strings.ToLower(content), "<table") {
		return nil, nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var out []Table
	doc.Find("table").Each(func(_ int, s *goquery.Selection) {
		if t, ok := readTable(s); ok {
			out = append(out, t)
		}
	})
	return out, nil
}

// Records parses content and concatenates the rows of all tables.
func Records(content string) ([]entity.Record, error) {
	ts, err := Parse(content)
	if err != nil {
		return nil, err
	}
	var out []entity.Record
	for _, t := range ts {
		out = append(out, t.Rows...)
	}
	return out, nil
}

type cell struct {
	text   string
	header bool
}

func readTable(table *goquery.Selection) (Table, bool) {
	grid, headRows := buildGrid(table)
	if len(grid) == 0 {
		return Table{}, false
	}

	// without <thead>, leading rows made only of <th> form the header; if
	// there are none the first row is the header.
	if headRows == 0 {
		for headRows < len(grid) && allHeader(grid[headRows]) {
			headRows++
		}
		if headRows == 0 {
			headRows = 1
		}
	}
	if headRows > len(grid) {
		headRows = len(grid)
	}

	width := 0
	for _, r := range grid {
		if len(r) > width {
			width = len(r)
		}
	}
	if width == 0 {
		return Table{}, false
	}

	cols := headerNames(grid[:headRows], width)
	t := Table{Columns: cols}
	for _, r := range grid[headRows:] {
		rec := make(entity.Record, width)
		for j, col := range cols {
			if j < len(r) {
				rec[col] = r[j].text
			} else {
				rec[col] = ""
			}
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, true
}

// buildGrid lays out the table's own rows with colspan and rowspan expanded.
// It also reports how many rows came from <thead>.
func buildGrid(table *goquery.Selection) ([][]cell, int) {
	var grid [][]cell
	headRows := 0
	pending := map[int]struct {
		c    cell
		left int
	}{}

	rows := table.Find("tr").FilterFunction(func(_ int, tr *goquery.Selection) bool {
		return tr.Closest("table").IsSelection(table)
	})
	rows.Each(func(_ int, tr *goquery.Selection) {
		if goquery.NodeName(tr.Parent()) == "thead" {
			headRows++
		}
		var row []cell
		col := 0
		fill := func() {
			for {
				p, ok := pending[col]
				if !ok {
					return
				}
				row = append(row, p.c)
				p.left--
				if p.left <= 0 {
					delete(pending, col)
				} else {
					pending[col] = p
				}
				col++
			}
		}
		tr.ChildrenFiltered("th,td").Each(func(_ int, td *goquery.Selection) {
			fill()
			c := cell{text: cleanText(td.Text()), header: goquery.NodeName(td) == "th"}
			colspan := span(td, "colspan")
			rowspan := span(td, "rowspan")
			for k := 0; k < colspan; k++ {
				row = append(row, c)
				if rowspan > 1 {
					pending[col] = struct {
						c    cell
						left int
					}{c, rowspan - 1}
				}
				col++
			}
		})
		fill()
		if len(row) > 0 {
			grid = append(grid, row)
		}
	})
	return grid, headRows
}

func allHeader(r []cell) bool {
	if len(r) == 0 {
		return false
	}
	for _, c := range r {
		if !c.header {
			return false
		}
	}
	return true
}

// headerNames collapses multi-row headers with " " and makes names unique
// the way pandas does: blanks become "Unnamed: i", repeats get ".1", ".2".
func headerNames(head [][]cell, width int) []string {
	names := make([]string, width)
	for j := 0; j < width; j++ {
		var parts []string
		for _, r := range head {
			if j >= len(r) || r[j].text == "" {
				continue
			}
			if len(parts) > 0 && parts[len(parts)-1] == r[j].text {
				continue
			}
			parts = append(parts, r[j].text)
		}
		names[j] = strings.Join(parts, " ")
		if names[j] == "" {
			names[j] = "Unnamed: " + strconv.Itoa(j)
		}
	}

	seen := make(map[string]int, width)
	for j, n := range names {
		if k, ok := seen[n]; ok {
			seen[n] = k + 1
			names[j] = n + "." + strconv.Itoa(k+1)
			continue
		}
		seen[n] = 0
	}
	return names
}

func span(s *goquery.Selection, attr string) int {
	v, ok := s.Attr(attr)
	if !ok {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return 1
	}
	if n > 1000 {
		return 1000
	}
	return n
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
