package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/domain/commonModels"
	"github.com/akolanti/DocQA/internal/rag/vectorDB"
)

type mockIndex struct {
	OnQuery func(ctx context.Context, user string, vector []float32, k int) ([]commonModels.Candidate, error)
}

func (m *mockIndex) Query(ctx context.Context, user string, vector []float32, k int) ([]commonModels.Candidate, error) {
	return m.OnQuery(ctx, user, vector, k)
}

type mockEmbedder struct {
	err error
}

func (m *mockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	return []float32{1, 0}, m.err
}

func (m *mockEmbedder) BatchEmbedding(ctx context.Context, chunks []string, isHuge bool) ([][]float32, error) {
	return nil, m.err
}

func TestRetrieve_DefaultK(t *testing.T) {
	var gotK int
	idx := &mockIndex{OnQuery: func(ctx context.Context, user string, v []float32, k int) ([]commonModels.Candidate, error) {
		gotK = k
		return []commonModels.Candidate{{Content: "a"}}, nil
	}}
	r := NewRetriever(idx, &mockEmbedder{})

	got, err := r.Retrieve(context.Background(), "u", "q", 0)
	if err != nil || len(got) != 1 {
		t.Fatalf("unexpected result %v %v", got, err)
	}
	if gotK != config.DefaultTopK {
		t.Errorf("k = %d, want %d", gotK, config.DefaultTopK)
	}
}

func TestRetrieve_MissingIndex(t *testing.T) {
	idx := &mockIndex{OnQuery: func(ctx context.Context, user string, v []float32, k int) ([]commonModels.Candidate, error) {
		return nil, vectorDB.ErrIndexNotFound
	}}
	r := NewRetriever(idx, &mockEmbedder{})

	_, err := r.Retrieve(context.Background(), "new-user", "q", 15)
	if !errors.Is(err, ErrNoRetriever) {
		t.Errorf("expected ErrNoRetriever, got %v", err)
	}
}

func TestRetrieve_EmbeddingError(t *testing.T) {
	called := false
	idx := &mockIndex{OnQuery: func(ctx context.Context, user string, v []float32, k int) ([]commonModels.Candidate, error) {
		called = true
		return nil, nil
	}}
	r := NewRetriever(idx, &mockEmbedder{err: errors.New("quota")})

	if _, err := r.Retrieve(context.Background(), "u", "q", 4); err == nil || errors.Is(err, ErrNoRetriever) {
		t.Errorf("expected the embedding error, got %v", err)
	}
	if called {
		t.Error("index should not be queried without a vector")
	}
}
