package store

import (
	"context"
	"sort"
	"sync"

	"github.com/akolanti/DocQA/internal/domain/commonModels"
)

type InMemoryLedgerStore struct {
	mu      sync.RWMutex
	records map[string]map[string]commonModels.ProcessedRecord
}

func InitInMemoryLedgerStore() *InMemoryLedgerStore {
	return &InMemoryLedgerStore{records: make(map[string]map[string]commonModels.ProcessedRecord)}
}

func (s *InMemoryLedgerStore) IsProcessed(ctx context.Context, userId string, fileName string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[userId][fileName]
	return ok
}

func (s *InMemoryLedgerStore) MarkProcessed(ctx context.Context, record commonModels.ProcessedRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.records[record.UserId]
	if !ok {
		user = make(map[string]commonModels.ProcessedRecord)
		s.records[record.UserId] = user
	}
	user[record.FileName] = record
	return nil
}

func (s *InMemoryLedgerStore) Forget(ctx context.Context, userId string, fileName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records[userId], fileName)
	return nil
}

func (s *InMemoryLedgerStore) List(ctx context.Context, userId string) ([]commonModels.ProcessedRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]commonModels.ProcessedRecord, 0, len(s.records[userId]))
	for _, rec := range s.records[userId] {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].FileName < records[j].FileName })
	return records, nil
}
