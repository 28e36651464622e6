package ingest

import (
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/akolanti/DocQA/internal/adapter/utils"
	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/domain/commonModels"
	"github.com/akolanti/DocQA/internal/metrics"
	"github.com/akolanti/DocQA/pkg/logger_i"
)

// Table is a detected grid of cells, rows in reading order.
type Table struct {
	Rows [][]string
}

// Detection is the outcome of structured table detection: Found or NotFound.
type Detection interface {
	isDetection()
}

type Found struct {
	Tables []Table
}

type NotFound struct {
	Reason string
}

func (Found) isDetection()    {}
func (NotFound) isDetection() {}

type TableDetector interface {
	Detect(ctx context.Context, path string) (Detection, error)
}

// Rasterizer renders every page of a document to an image file, in page order.
type Rasterizer interface {
	Rasterize(ctx context.Context, path string, outDir string) ([]string, error)
}

type Recognizer interface {
	Recognize(ctx context.Context, imagePath string) (string, error)
}

type TableExtractor struct {
	detectors  map[commonModels.DocType]TableDetector
	rasterizer Rasterizer
	recognizer Recognizer
	logger     *logger_i.Logger
}

func NewTableExtractor(rasterizer Rasterizer, recognizer Recognizer) *TableExtractor {
	return &TableExtractor{
		detectors: map[commonModels.DocType]TableDetector{
			commonModels.PDF:  pdfTableDetector{},
			commonModels.XLSX: sheetTableDetector{},
		},
		rasterizer: rasterizer,
		recognizer: recognizer,
		logger:     logger_i.NewLogger("Table Extractor"),
	}
}

// Extract never fails: detector or OCR errors are logged and yield no chunks.
func (t *TableExtractor) Extract(ctx context.Context, path string, source string) []commonModels.DocChunk {
	logger := t.logger.WithTrace(ctx).With("source", source)

	detection := t.detect(ctx, path)
	switch d := detection.(type) {
	case Found:
		var chunks []commonModels.DocChunk
		for tableID, table := range d.Tables {
			for batchID, rows := range chunkTableRows(table.Rows, config.TableRowsPerChunk) {
				chunks = append(chunks, commonModels.DocChunk{
					ChunkId: utils.GetNewUUID(),
					Content: renderMarkdown(rows),
					Meta:    commonModels.TableMeta{Source: source, TableID: tableID, ChunkID: batchID},
				})
			}
		}
		logger.Debug("structured tables found", "tables", len(d.Tables), "chunks", len(chunks))
		return chunks
	case NotFound:
		logger.Debug("no structured tables, trying OCR", "reason", d.Reason)
	}
	return t.ocrFallback(ctx, path, source)
}

func (t *TableExtractor) detect(ctx context.Context, path string) Detection {
	detector, ok := t.detectors[getDocType(path)]
	if !ok {
		return NotFound{Reason: "no detector for document type"}
	}
	detection, err := detector.Detect(ctx, path)
	if err != nil {
		t.logger.Warn("table detection failed", "path", path, "error", err)
		return NotFound{Reason: err.Error()}
	}
	if found, ok := detection.(Found); ok && len(found.Tables) == 0 {
		return NotFound{Reason: "zero tables"}
	}
	return detection
}

func (t *TableExtractor) ocrFallback(ctx context.Context, path string, source string) []commonModels.DocChunk {
	// only pdfs have pages to render
	if t.rasterizer == nil || t.recognizer == nil || getDocType(path) != commonModels.PDF {
		return nil
	}
	defer metrics.DependencyLatency("ocr")()

	dir, err := os.MkdirTemp("", "docqa-ocr-*")
	if err != nil {
		t.logger.Error("OCR extraction failed", "error", err)
		return nil
	}
	defer os.RemoveAll(dir)

	images, err := t.rasterizer.Rasterize(ctx, path, dir)
	if err != nil {
		t.logger.Error("OCR extraction failed", "source", source, "error", err)
		return nil
	}

	var chunks []commonModels.DocChunk
	for i, image := range images {
		text, err := t.recognizer.Recognize(ctx, image)
		if err != nil {
			t.logger.Error("OCR extraction failed", "source", source, "page", i+1, "error", err)
			return chunks
		}
		if !looksTabular(text) {
			continue
		}
		chunks = append(chunks, commonModels.DocChunk{
			ChunkId: utils.GetNewUUID(),
			Content: strings.TrimSpace(text),
			Meta:    commonModels.OCRMeta{Source: source, Page: i + 1},
		})
	}
	return chunks
}

func looksTabular(text string) bool {
	return strings.Contains(text, "|") || strings.Contains(text, "+") || strings.Contains(text, "---")
}

// chunkTableRows splits rows into consecutive batches of at most perChunk rows.
func chunkTableRows(rows [][]string, perChunk int) [][][]string {
	if perChunk <= 0 {
		perChunk = config.TableRowsPerChunk
	}
	var batches [][][]string
	for i := 0; i < len(rows); i += perChunk {
		end := min(i+perChunk, len(rows))
		batches = append(batches, rows[i:end])
	}
	return batches
}

// renderMarkdown writes rows as a markdown table whose header is the column index.
func renderMarkdown(rows [][]string) string {
	cols := 0
	for _, r := range rows {
		cols = max(cols, len(r))
	}
	if cols == 0 {
		return ""
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		sb.WriteString("|")
		for c := 0; c < cols; c++ {
			cell := ""
			if c < len(cells) {
				cell = strings.ReplaceAll(strings.TrimSpace(cells[c]), "|", `\|`)
				cell = strings.ReplaceAll(cell, "\n", " ")
			}
			sb.WriteString(" " + cell + " |")
		}
		sb.WriteString("\n")
	}

	header := make([]string, cols)
	sep := make([]string, cols)
	for c := range header {
		header[c] = strconv.Itoa(c)
		sep[c] = "---"
	}
	writeRow(header)
	writeRow(sep)
	for _, r := range rows {
		writeRow(r)
	}
	return strings.TrimRight(sb.String(), "\n")
}
