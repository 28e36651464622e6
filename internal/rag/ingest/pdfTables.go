package ingest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/akolanti/DocQA/internal/config"
	"github.com/dslipak/pdf"
	"github.com/xuri/excelize/v2"
)

// pdfTableDetector finds grids in the glyph positions of each page.
type pdfTableDetector struct{}

func (pdfTableDetector) Detect(ctx context.Context, path string) (Detection, error) {
	r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	var tables []Table
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		texts, err := protectContent(page)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		tables = append(tables, detectTables(texts)...)
	}

	if len(tables) == 0 {
		return NotFound{Reason: "no aligned rows on any page"}, nil
	}
	return Found{Tables: tables}, nil
}

func protectContent(page pdf.Page) ([]pdf.Text, error) {
	type result struct {
		texts []pdf.Text
		err   error
	}
	resChan := make(chan result, 1)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				resChan <- result{err: fmt.Errorf("malformed page content: %v", rec)}
			}
		}()
		resChan <- result{texts: page.Content().Text}
	}()

	select {
	case r := <-resChan:
		return r.texts, r.err
	case <-time.After(config.PDFPageTimeout):
		return nil, errors.New("timeout")
	}
}

type glyphRow struct {
	y      float64
	glyphs []pdf.Text
}

// detectTables groups glyphs into baselines, splits each baseline into cells at
// wide horizontal gaps and keeps runs of two or more consecutive multi-cell rows.
func detectTables(texts []pdf.Text) []Table {
	rows := groupRows(texts)

	var tables []Table
	var current [][]string
	flush := func() {
		if len(current) >= 2 {
			tables = append(tables, Table{Rows: current})
		}
		current = nil
	}

	for _, row := range rows {
		cells := splitCells(row.glyphs)
		if len(cells) < 2 {
			flush()
			continue
		}
		current = append(current, cells)
	}
	flush()
	return tables
}

func groupRows(texts []pdf.Text) []glyphRow {
	var rows []glyphRow
	for _, t := range texts {
		if strings.TrimSpace(t.S) == "" && t.W == 0 {
			continue
		}
		tolerance := math.Max(t.FontSize*0.4, 1)
		placed := false
		for i := range rows {
			if math.Abs(rows[i].y-t.Y) <= tolerance {
				rows[i].glyphs = append(rows[i].glyphs, t)
				placed = true
				break
			}
		}
		if !placed {
			rows = append(rows, glyphRow{y: t.Y, glyphs: []pdf.Text{t}})
		}
	}

	// pdf y grows upwards
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].y > rows[j].y })
	for i := range rows {
		sort.SliceStable(rows[i].glyphs, func(a, b int) bool { return rows[i].glyphs[a].X < rows[i].glyphs[b].X })
	}
	return rows
}

func splitCells(glyphs []pdf.Text) []string {
	var cells []string
	var cell strings.Builder
	lastEnd := math.Inf(-1)

	for _, g := range glyphs {
		gap := g.X - lastEnd
		if cell.Len() > 0 && gap > math.Max(g.FontSize, 1)*1.5 {
			cells = append(cells, strings.TrimSpace(cell.String()))
			cell.Reset()
		} else if cell.Len() > 0 && gap > math.Max(g.FontSize, 1)*0.2 {
			cell.WriteString(" ")
		}
		cell.WriteString(g.S)
		lastEnd = g.X + g.W
	}
	if s := strings.TrimSpace(cell.String()); s != "" {
		cells = append(cells, s)
	}
	return cells
}

// sheetTableDetector treats each non-empty worksheet as one table.
type sheetTableDetector struct{}

func (sheetTableDetector) Detect(ctx context.Context, path string) (Detection, error) {
	sheets, err := readSheets(path)
	if err != nil {
		return nil, err
	}

	var tables []Table
	for _, rows := range sheets {
		if len(rows) > 0 {
			tables = append(tables, Table{Rows: rows})
		}
	}
	if len(tables) == 0 {
		return NotFound{Reason: "workbook has no populated sheets"}, nil
	}
	return Found{Tables: tables}, nil
}

// readSheets returns the non-blank rows of every worksheet, in workbook order.
func readSheets(path string) ([][][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	var sheets [][][]string
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", name, err)
		}
		var kept [][]string
		for _, row := range rows {
			if strings.TrimSpace(strings.Join(row, "")) != "" {
				kept = append(kept, row)
			}
		}
		sheets = append(sheets, kept)
	}
	return sheets, nil
}
