package retrieval

import (
	"context"
	"errors"

	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/domain/commonModels"
	"github.com/akolanti/DocQA/internal/rag/embedding"
	"github.com/akolanti/DocQA/pkg/logger_i"
)

// ErrNoRetriever means the user has no usable index.
var ErrNoRetriever = errors.New("no retriever available for user")

type Index interface {
	Query(ctx context.Context, user string, vector []float32, k int) ([]commonModels.Candidate, error)
}

type Retriever struct {
	index    Index
	embedder embedding.Embedder
	logger   *logger_i.Logger
}

func NewRetriever(index Index, embedder embedding.Embedder) *Retriever {
	return &Retriever{
		index:    index,
		embedder: embedder,
		logger:   logger_i.NewLogger("Retriever"),
	}
}

// Retrieve returns the k chunks of user's index closest to query, best first.
// k <= 0 uses DefaultTopK. Embedding failures are returned as is.
func (r *Retriever) Retrieve(ctx context.Context, user string, query string, k int) ([]commonModels.Candidate, error) {
	if k <= 0 {
		k = config.DefaultTopK
	}
	logger := r.logger.WithTrace(ctx)

	vector, err := r.embedder.GetEmbedding(ctx, query)
	if err != nil {
		return nil, err
	}

	candidates, err := r.index.Query(ctx, user, vector, k)
	if err != nil {
		logger.Warn("No retriever found; vector store may be empty.", "user", user, "error", err)
		return nil, ErrNoRetriever
	}
	logger.Debug("retrieved candidates", "count", len(candidates), "k", k)
	return candidates, nil
}
