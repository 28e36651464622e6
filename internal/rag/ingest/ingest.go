package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/akolanti/DocQA/internal/adapter/utils"
	"github.com/akolanti/DocQA/internal/domain/commonModels"
	"github.com/akolanti/DocQA/internal/metrics"
	"github.com/akolanti/DocQA/internal/rag/embedding"
	"github.com/akolanti/DocQA/pkg/logger_i"
)

// Index is the part of the per-user index ingestion writes through.
type Index interface {
	LockWriter(user string) (unlock func())
	ListSources(ctx context.Context, user string) ([]string, error)
	Upsert(ctx context.Context, user string, chunks []commonModels.DocChunk, vectors [][]float32) error
}

type Ingestor struct {
	index    Index
	embedder embedding.Embedder
	ledger   commonModels.LedgerStore
	tables   *TableExtractor
	logger   *logger_i.Logger
}

func NewIngestor(index Index, embedder embedding.Embedder, ledger commonModels.LedgerStore, tables *TableExtractor) *Ingestor {
	if tables == nil {
		tables = NewTableExtractor(nil, nil)
	}
	return &Ingestor{
		index:    index,
		embedder: embedder,
		ledger:   ledger,
		tables:   tables,
		logger:   logger_i.NewLogger("Document Ingestion"),
	}
}

type fileResult struct {
	source string
	chunks int
}

// Ingest indexes the files for user and returns the number of chunks written.
// Files already processed for user are skipped, files that fail to load are
// logged and skipped. All chunks of the batch are written in one upsert at the
// end, so a cancelled batch writes nothing.
func (in *Ingestor) Ingest(ctx context.Context, filePaths []string, user string) (int, error) {
	logger := in.logger.WithTrace(ctx).With("user", user)

	unlock := in.index.LockWriter(user)
	defer unlock()

	indexed, err := in.index.ListSources(ctx, user)
	if err != nil {
		return 0, fmt.Errorf("listing indexed sources: %w", err)
	}
	known := make(map[string]bool, len(indexed))
	for _, s := range indexed {
		known[s] = true
	}

	var chunks []commonModels.DocChunk
	var files []fileResult
	for _, path := range filePaths {
		if err := ctx.Err(); err != nil {
			logger.Warn("ingestion cancelled", "error", err)
			return 0, err
		}

		source := filepath.Base(path)
		if known[source] || in.ledger.IsProcessed(ctx, user, source) {
			logger.Info("Skipping already processed file", "filename", source)
			metrics.IncrementIngestFiles("skipped")
			continue
		}

		fileChunks, err := in.chunkFile(ctx, path, source, logger)
		if err != nil {
			logger.Error("Error during document parsing", "filename", source, "error", err)
			metrics.IncrementIngestFiles("failed")
			continue
		}
		known[source] = true
		if len(fileChunks) == 0 {
			logger.Warn("document produced no chunks", "filename", source)
			continue
		}
		chunks = append(chunks, fileChunks...)
		files = append(files, fileResult{source: source, chunks: len(fileChunks)})
	}

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(chunks) == 0 {
		logger.Info("No new documents to index.")
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	logger.Debug("Starting embedding call", "chunks", len(chunks))
	vectors, err := embedding.EmbedAll(ctx, in.embedder, texts)
	if err != nil {
		return 0, err
	}

	if err := in.index.Upsert(ctx, user, chunks, vectors); err != nil {
		return 0, fmt.Errorf("writing user index: %w", err)
	}

	now := time.Now().UTC()
	for _, f := range files {
		err := in.ledger.MarkProcessed(ctx, commonModels.ProcessedRecord{
			UserId:      user,
			FileName:    f.source,
			Status:      commonModels.StatusProcessed,
			Chunks:      f.chunks,
			ProcessedAt: now,
		})
		if err != nil {
			// the index listing still guards against double ingestion
			logger.Error("could not record processed file", "filename", f.source, "error", err)
		}
		metrics.IncrementIngestFiles("indexed")
	}
	byKind := make(map[string]int)
	for _, c := range chunks {
		byKind[c.Meta.Kind()]++
	}
	for kind, n := range byKind {
		metrics.AddIngestedChunks(kind, n)
	}

	logger.Info("documents indexed", "files", len(files), "chunks", len(chunks))
	return len(chunks), nil
}

// chunkFile builds the text chunks of every page followed by the table chunks
func (in *Ingestor) chunkFile(ctx context.Context, path string, source string, logger *logger_i.Logger) ([]commonModels.DocChunk, error) {
	pages, err := loadPages(path, logger)
	if err != nil {
		return nil, err
	}

	var chunks []commonModels.DocChunk
	for _, page := range pages {
		chunks = append(chunks, pageChunks(page, source)...)
	}
	chunks = append(chunks, in.tables.Extract(ctx, path, source)...)
	return chunks, nil
}

func pageChunks(page rawPage, source string) []commonModels.DocChunk {
	newChunk := func(content string, section string) commonModels.DocChunk {
		return commonModels.DocChunk{
			ChunkId: utils.GetNewUUID(),
			Content: content,
			Meta:    commonModels.TextMeta{Source: source, Section: section, Page: page.Number},
		}
	}

	sections, ok := Sections(page.Content)
	if !ok {
		if strings.TrimSpace(page.Content) == "" {
			return nil
		}
		return []commonModels.DocChunk{newChunk(page.Content, "")}
	}

	var chunks []commonModels.DocChunk
	if pre := preamble(page.Content); pre != "" {
		chunks = append(chunks, newChunk(pre, ""))
	}
	for s := range sections {
		chunks = append(chunks, newChunk(fmt.Sprintf("# %s\n\n%s", s.Title, s.Body), s.Title))
	}
	return chunks
}
