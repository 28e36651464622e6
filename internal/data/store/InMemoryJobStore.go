package store

import (
	"context"
	"sync"
	"time"

	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/domain/jobModel"
	"github.com/akolanti/DocQA/pkg/logger_i"
)

type storedJob struct {
	job     jobModel.Job
	savedAt time.Time
}

// InMemoryJobStore is the fallback when redis is offline. Jobs expire after
// RedisJobStoreTTL like their redis counterparts.
type InMemoryJobStore struct {
	jobMutex *sync.RWMutex
	jobMap   map[string]storedJob
	ttl      time.Duration
	now      func() time.Time
	logger   *logger_i.Logger
}

func InitInMemoryJobStore() *InMemoryJobStore {
	return &InMemoryJobStore{
		jobMutex: new(sync.RWMutex),
		jobMap:   make(map[string]storedJob),
		ttl:      config.RedisJobStoreTTL,
		now:      time.Now,
		logger:   logger_i.NewLogger("InMem JobStore"),
	}
}

func (store *InMemoryJobStore) SaveJob(ctx context.Context, jobToStored jobModel.Job) error {
	store.jobMutex.Lock()
	defer store.jobMutex.Unlock()

	now := store.now()
	store.jobMap[jobToStored.Id] = storedJob{job: jobToStored, savedAt: now}
	store.evictExpired(now)
	store.logger.Debug("Saved job to store", "jobId", jobToStored.Id, "status", jobToStored.Status)
	return nil
}

func (store *InMemoryJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	store.jobMutex.RLock()
	defer store.jobMutex.RUnlock()
	entry, found := store.jobMap[jobId]
	if found && store.now().Sub(entry.savedAt) > store.ttl {
		found = false
	}
	store.logger.Debug("Job lookup", "jobId", jobId, "found", found)
	if !found {
		return jobModel.Job{}, false
	}
	return entry.job, true
}

func (store *InMemoryJobStore) DeleteJob(ctx context.Context, jobID string) {
	store.jobMutex.Lock()
	defer store.jobMutex.Unlock()
	delete(store.jobMap, jobID)
}

// evictExpired must be called with the write lock held
func (store *InMemoryJobStore) evictExpired(now time.Time) {
	for id, entry := range store.jobMap {
		if now.Sub(entry.savedAt) > store.ttl {
			delete(store.jobMap, id)
		}
	}
}
