package vectorDB

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/akolanti/DocQA/internal/domain/commonModels"
	"github.com/akolanti/DocQA/internal/metrics"
	"github.com/akolanti/DocQA/pkg/logger_i"
)

type userLock struct {
	writer sync.Mutex
	rw     sync.RWMutex
}

// UserLocks hands out one lock pair per user. Entries are never removed.
type UserLocks struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

func NewUserLocks() *UserLocks {
	return &UserLocks{locks: make(map[string]*userLock)}
}

func (l *UserLocks) get(user string) *userLock {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[user]
	if !ok {
		lock = &userLock{}
		l.locks[user] = lock
	}
	return lock
}

// UserIndex isolates every user in its own collection of the backend.
// Writes to one user's collection are exclusive, reads run concurrently and
// never observe a partially written batch.
type UserIndex struct {
	backend DataProcessor
	locks   *UserLocks
	logger  *logger_i.Logger
}

func NewUserIndex(backend DataProcessor) *UserIndex {
	return &UserIndex{
		backend: backend,
		locks:   NewUserLocks(),
		logger:  logger_i.NewLogger("User Index"),
	}
}

// LockWriter serialises ingestion for user across its check-then-write
// sequence. Upsert must be called while holding it.
func (u *UserIndex) LockWriter(user string) (unlock func()) {
	lock := u.locks.get(user)
	lock.writer.Lock()
	return lock.writer.Unlock
}

// Upsert appends chunks to the user's collection, creating it on first use.
func (u *UserIndex) Upsert(ctx context.Context, user string, chunks []commonModels.DocChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil
	}
	lock := u.locks.get(user)
	lock.rw.Lock()
	defer lock.rw.Unlock()

	collection := CollectionName(user)
	exists, err := u.backend.CollectionExists(ctx, collection)
	if err != nil {
		return fmt.Errorf("checking collection %s: %w", collection, err)
	}
	if !exists {
		if err := u.backend.CreateCollection(ctx, collection); err != nil {
			return fmt.Errorf("creating collection %s: %w", collection, err)
		}
		u.logger.Info("created user index", "collection", collection)
	}

	if err := u.backend.UpsertBatch(ctx, collection, chunks, vectors); err != nil {
		return err
	}
	return u.backend.Persist(ctx, collection)
}

// Query returns the k nearest chunks, or ErrIndexNotFound when the user has none.
func (u *UserIndex) Query(ctx context.Context, user string, vector []float32, k int) ([]commonModels.Candidate, error) {
	lock := u.locks.get(user)
	lock.rw.RLock()
	defer lock.rw.RUnlock()

	collection := CollectionName(user)
	exists, err := u.backend.CollectionExists(ctx, collection)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrIndexNotFound
	}

	defer metrics.DependencyLatency("vector_search")()
	return u.backend.Search(ctx, collection, vector, k)
}

// DeleteBySource drops every chunk of source. A missing index or no match is a no-op.
func (u *UserIndex) DeleteBySource(ctx context.Context, user string, source string) (int, error) {
	lock := u.locks.get(user)
	lock.writer.Lock()
	defer lock.writer.Unlock()
	lock.rw.Lock()
	defer lock.rw.Unlock()

	logger := u.logger.WithTrace(ctx)
	collection := CollectionName(user)
	exists, err := u.backend.CollectionExists(ctx, collection)
	if err != nil {
		return 0, err
	}
	if !exists {
		logger.Info("no index to delete from", "collection", collection, "source", source)
		return 0, nil
	}

	removed, err := u.backend.DeleteBySource(ctx, collection, source)
	if err != nil {
		return 0, fmt.Errorf("deleting %s: %w", source, err)
	}
	if removed == 0 {
		logger.Info("no chunks matched source", "collection", collection, "source", source)
		return 0, nil
	}
	if err := u.backend.Persist(ctx, collection); err != nil {
		return 0, err
	}
	logger.Info("deleted source", "collection", collection, "source", source, "chunks", removed)
	return removed, nil
}

// ListSources returns the distinct sorted sources of the user's chunks.
func (u *UserIndex) ListSources(ctx context.Context, user string) ([]string, error) {
	lock := u.locks.get(user)
	lock.rw.RLock()
	defer lock.rw.RUnlock()

	return u.listSources(ctx, CollectionName(user))
}

func (u *UserIndex) listSources(ctx context.Context, collection string) ([]string, error) {
	exists, err := u.backend.CollectionExists(ctx, collection)
	if err != nil {
		return nil, err
	}
	if !exists {
		return []string{}, nil
	}
	sources, err := u.backend.ListSources(ctx, collection)
	if err != nil {
		return nil, err
	}
	slices.Sort(sources)
	return slices.Compact(sources), nil
}
