package rag_test

import (
	"context"
	"sync"

	"github.com/akolanti/DocQA/internal/domain/commonModels"
)

// MockVectorDB implements vectorDB.DataProcessor
type MockVectorDB struct {
	// Control fields to simulate different behaviors
	OnCollectionExists func(ctx context.Context, name string) (bool, error)
	OnCreateCollection func(ctx context.Context, name string) error
	OnUpsertBatch      func(ctx context.Context, name string, chunks []commonModels.DocChunk, vectors [][]float32) error
	OnSearch           func(ctx context.Context, name string, vector []float32, k int) ([]commonModels.Candidate, error)
	OnDeleteBySource   func(ctx context.Context, name string, source string) (int, error)
	OnListSources      func(ctx context.Context, name string) ([]string, error)
}

func (m *MockVectorDB) CollectionExists(ctx context.Context, name string) (bool, error) {
	if m.OnCollectionExists != nil {
		return m.OnCollectionExists(ctx, name)
	}
	return false, nil
}

func (m *MockVectorDB) CreateCollection(ctx context.Context, name string) error {
	if m.OnCreateCollection != nil {
		return m.OnCreateCollection(ctx, name)
	}
	return nil
}

func (m *MockVectorDB) UpsertBatch(ctx context.Context, name string, chunks []commonModels.DocChunk, vectors [][]float32) error {
	if m.OnUpsertBatch != nil {
		return m.OnUpsertBatch(ctx, name, chunks, vectors)
	}
	return nil
}

func (m *MockVectorDB) Search(ctx context.Context, name string, v []float32, k int) ([]commonModels.Candidate, error) {
	if m.OnSearch != nil {
		return m.OnSearch(ctx, name, v, k)
	}
	return []commonModels.Candidate{{
		Content: "default context",
		Meta:    commonModels.TextMeta{Source: "doc.pdf", Page: 1},
		Score:   0.9,
	}}, nil
}

func (m *MockVectorDB) DeleteBySource(ctx context.Context, name string, source string) (int, error) {
	if m.OnDeleteBySource != nil {
		return m.OnDeleteBySource(ctx, name, source)
	}
	return 0, nil
}

func (m *MockVectorDB) ListSources(ctx context.Context, name string) ([]string, error) {
	if m.OnListSources != nil {
		return m.OnListSources(ctx, name)
	}
	return nil, nil
}

func (m *MockVectorDB) Persist(ctx context.Context, name string) error {
	return nil
}

type MockEmbedder struct {
	OnGetEmbedding   func(ctx context.Context, text string) ([]float32, error)
	OnBatchEmbedding func(ctx context.Context, chunks []string, isHuge bool) ([][]float32, error)
}

func (m *MockEmbedder) BatchEmbedding(ctx context.Context, chunks []string, isHuge bool) ([][]float32, error) {
	if m.OnBatchEmbedding != nil {
		return m.OnBatchEmbedding(ctx, chunks, isHuge)
	}
	// Return dummy vectors matching chunk size
	out := make([][]float32, len(chunks))
	for i := range out {
		out[i] = []float32{0.1}
	}
	return out, nil
}

func (m *MockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	if m.OnGetEmbedding != nil {
		return m.OnGetEmbedding(ctx, query)
	}
	return []float32{0.1}, nil
}

// MockLLM implements llm.Provider
type MockLLM struct {
	OnGenerate func(ctx context.Context, question string, contextText string) (string, error)
}

func (m *MockLLM) Generate(ctx context.Context, q string, contextText string) (string, error) {
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, q, contextText)
	}
	return "mocked llm response", nil
}

// MockLedger implements commonModels.LedgerStore
type MockLedger struct {
	mu       sync.Mutex
	records  map[string]commonModels.ProcessedRecord
	OnForget func(ctx context.Context, userId string, fileName string) error
}

func NewMockLedger() *MockLedger {
	return &MockLedger{records: make(map[string]commonModels.ProcessedRecord)}
}

func (m *MockLedger) IsProcessed(ctx context.Context, userId string, fileName string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.records[userId+"/"+fileName]
	return ok
}

func (m *MockLedger) MarkProcessed(ctx context.Context, record commonModels.ProcessedRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.UserId+"/"+record.FileName] = record
	return nil
}

func (m *MockLedger) Forget(ctx context.Context, userId string, fileName string) error {
	if m.OnForget != nil {
		return m.OnForget(ctx, userId, fileName)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, userId+"/"+fileName)
	return nil
}

func (m *MockLedger) List(ctx context.Context, userId string) ([]commonModels.ProcessedRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []commonModels.ProcessedRecord
	for _, r := range m.records {
		if r.UserId == userId {
			out = append(out, r)
		}
	}
	return out, nil
}
