package redisStore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/pkg/logger_i"
	"github.com/redis/go-redis/v9"
)

const (
	pingTimeout    = 3 * time.Second
	commandTimeout = 30 * time.Second
)

var ErrNotConfigured = errors.New("REDIS_ADDR not set")

// one client per logical DB, all closed together when the first connect ctx ends
var (
	clients   = make(map[int]*Store)
	clientsMu sync.Mutex
	closeOnce sync.Once
)

type Store struct {
	client *redis.Client
	DB     int
}

// Connect returns the shared client for the logical DB, dialing and pinging it on first use.
// A failed ping is not cached, the next call dials again.
func Connect(ctx context.Context, db int) (*Store, error) {
	clientsMu.Lock()
	defer clientsMu.Unlock()

	if s, ok := clients[db]; ok {
		return s, nil
	}
	if config.RedisAddr == "" {
		return nil, ErrNotConfigured
	}

	client := redis.NewClient(&redis.Options{
		Addr:                  config.RedisAddr,
		Password:              config.RedisPassword,
		DB:                    db,
		ContextTimeoutEnabled: true,
		ReadTimeout:           commandTimeout,
		WriteTimeout:          commandTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis db %d unreachable at %s: %w", db, config.RedisAddr, err)
	}

	s := &Store{client: client, DB: db}
	clients[db] = s
	logger_i.NewLogger("Redis Store").Info("connected", "db", db)

	closeOnce.Do(func() { go closeAll(ctx) })
	return s, nil
}

func closeAll(ctx context.Context) {
	<-ctx.Done()
	log := logger_i.NewLogger("Redis Store")
	clientsMu.Lock()
	defer clientsMu.Unlock()
	for db, s := range clients {
		if err := s.client.Close(); err != nil {
			log.Error("closing redis client", "db", db, "error", err)
		}
		delete(clients, db)
	}
	log.Info("redis clients closed")
}

// NewTestStore wraps an existing client, used with miniredis.
func NewTestStore(client *redis.Client) *Store {
	return &Store{client: client}
}
