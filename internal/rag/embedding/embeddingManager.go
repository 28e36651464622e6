package embedding

import (
	"context"
	"fmt"

	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/metrics"
)

type Embedder interface {
	GetEmbedding(ctx context.Context, query string) ([]float32, error)
	BatchEmbedding(ctx context.Context, chunks []string, isHugeDataSet bool) ([][]float32, error)
}

// EmbedAll embeds texts in batches of EmbeddingBatchSize and returns one vector
// per text, in order. Very large inputs go through the provider's async batch path.
func EmbedAll(ctx context.Context, e Embedder, texts []string) ([][]float32, error) {
	defer metrics.DependencyLatency("embedding")()

	isHugeDataSet := len(texts) > config.HugeDataSetThreshold
	vectors := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += config.EmbeddingBatchSize {
		end := min(i+config.EmbeddingBatchSize, len(texts))

		batch, err := e.BatchEmbedding(ctx, texts[i:end], isHugeDataSet)
		if err != nil {
			return nil, fmt.Errorf("embedding batch failed: %w", err)
		}
		if len(batch) != end-i {
			return nil, fmt.Errorf("embedding batch returned %d vectors for %d texts", len(batch), end-i)
		}
		for j, v := range batch {
			if len(v) == 0 {
				return nil, fmt.Errorf("embedding missing for text %d", i+j)
			}
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}
