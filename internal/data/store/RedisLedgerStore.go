package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/data/redisStore"
	"github.com/akolanti/DocQA/internal/domain/commonModels"
	"github.com/akolanti/DocQA/pkg/logger_i"
)

const ledgerKeyPrefix = "processed:"

// RedisLedgerStore keeps one hash per user, field is the file name and the value the JSON record.
type RedisLedgerStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func NewRedisLedgerStore(ctx context.Context) (*RedisLedgerStore, error) {
	rs, err := redisStore.Connect(ctx, config.RedisLedgerStore)
	if err != nil {
		return nil, err
	}
	return &RedisLedgerStore{
		store:  rs,
		logger: logger_i.NewLogger("LedgerStore"),
	}, nil
}

func ledgerKey(userId string) string {
	return ledgerKeyPrefix + userId
}

func (s *RedisLedgerStore) IsProcessed(ctx context.Context, userId string, fileName string) bool {
	found, err := s.store.HashExists(ctx, ledgerKey(userId), fileName)
	if err != nil {
		s.logger.WithTrace(ctx).Error("ledger lookup failed", "user", userId, "file", fileName, "error", err)
		return false
	}
	return found
}

func (s *RedisLedgerStore) MarkProcessed(ctx context.Context, record commonModels.ProcessedRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	if err := s.store.HashSet(ctx, ledgerKey(record.UserId), record.FileName, data); err != nil {
		return fmt.Errorf("recording %s: %w", record.FileName, err)
	}
	s.logger.WithTrace(ctx).Debug("file recorded", "user", record.UserId, "file", record.FileName)
	return nil
}

func (s *RedisLedgerStore) Forget(ctx context.Context, userId string, fileName string) error {
	return s.store.HashDel(ctx, ledgerKey(userId), fileName)
}

// List returns the user's records sorted by file name.
func (s *RedisLedgerStore) List(ctx context.Context, userId string) ([]commonModels.ProcessedRecord, error) {
	fields, err := s.store.HashGetAll(ctx, ledgerKey(userId))
	if err != nil {
		return nil, err
	}
	records := make([]commonModels.ProcessedRecord, 0, len(fields))
	for name, raw := range fields {
		var rec commonModels.ProcessedRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			s.logger.Warn("skipping unreadable ledger entry", "user", userId, "file", name, "error", err)
			continue
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].FileName < records[j].FileName })
	return records, nil
}

func TestLedgerStore(store *redisStore.Store) *RedisLedgerStore {
	return &RedisLedgerStore{
		store:  store,
		logger: logger_i.NewLogger("test redis"),
	}
}
