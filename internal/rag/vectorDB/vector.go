package vectorDB

import (
	"context"
	"errors"

	"github.com/akolanti/DocQA/internal/domain/commonModels"
)

var ErrIndexNotFound = errors.New("user index not found")

// DataProcessor is a vector store addressed by collection name.
type DataProcessor interface {
	CollectionExists(ctx context.Context, collectionName string) (bool, error)
	CreateCollection(ctx context.Context, collectionName string) error
	UpsertBatch(ctx context.Context, collectionName string, chunks []commonModels.DocChunk, vectors [][]float32) error
	Search(ctx context.Context, collectionName string, vector []float32, k int) ([]commonModels.Candidate, error)
	// DeleteBySource returns the number of removed chunks
	DeleteBySource(ctx context.Context, collectionName string, source string) (int, error)
	ListSources(ctx context.Context, collectionName string) ([]string, error)
	// Persist makes previous writes durable
	Persist(ctx context.Context, collectionName string) error
}
