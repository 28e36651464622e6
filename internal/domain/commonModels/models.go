package commonModels

import (
	"context"
	"time"
)

type DocType string

var PDF DocType = "PDF"
var DOCX DocType = "DOCX"
var XLSX DocType = "XLSX"
var ERR DocType = "ERROR"

// DocChunk is one addressable unit of content in a user index.
type DocChunk struct {
	ChunkId string    `json:"chunk_id"`
	Content string    `json:"content"`
	Meta    ChunkMeta `json:"-"`
}

// Candidate is a chunk returned by the retriever. Score is the index similarity.
type Candidate struct {
	Content string    `json:"content"`
	Meta    ChunkMeta `json:"-"`
	Score   float32   `json:"score"`
}

// Snippet is a reranked, display-ready citation.
type Snippet struct {
	Snippet  string         `json:"snippet"`
	Metadata map[string]any `json:"metadata"`
	Score    float32        `json:"score"`
}

type ProcessedStatus string

const (
	StatusProcessed ProcessedStatus = "processed"
)

// ProcessedRecord marks a (user, file) pair as already ingested.
type ProcessedRecord struct {
	UserId      string          `json:"user_id"`
	FileName    string          `json:"file_name"`
	Status      ProcessedStatus `json:"status"`
	Chunks      int             `json:"chunks"`
	ProcessedAt time.Time       `json:"processed_at"`
}

type LedgerStore interface {
	IsProcessed(ctx context.Context, userId string, fileName string) bool
	MarkProcessed(ctx context.Context, record ProcessedRecord) error
	Forget(ctx context.Context, userId string, fileName string) error
	List(ctx context.Context, userId string) ([]ProcessedRecord, error)
}
