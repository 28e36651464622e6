package localDB

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/akolanti/DocQA/internal/domain/commonModels"
	"github.com/akolanti/DocQA/internal/rag/vectorDB"
	"github.com/akolanti/DocQA/pkg/logger_i"
)

const snapshotFile = "index.json"

type point struct {
	Id      string         `json:"id"`
	Content string         `json:"content"`
	Payload map[string]any `json:"payload"`
	Vector  []float32      `json:"vector"`
}

type collection struct {
	points []point
}

// Store is a file-backed brute force vector store. Each collection is kept in
// memory and written as one JSON snapshot under dir/<collection>/index.json.
type Store struct {
	dir         string
	mu          sync.Mutex
	collections map[string]*collection
	logger      *logger_i.Logger
}

func New(dir string) *Store {
	return &Store{
		dir:         dir,
		collections: make(map[string]*collection),
		logger:      logger_i.NewLogger("Local Vector Store"),
	}
}

func (s *Store) snapshotPath(name string) string {
	return filepath.Join(s.dir, name, snapshotFile)
}

// load returns the collection, reading its snapshot on first access. nil when absent.
func (s *Store) load(name string) (*collection, error) {
	if c, ok := s.collections[name]; ok {
		return c, nil
	}
	data, err := os.ReadFile(s.snapshotPath(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot %s: %w", name, err)
	}
	var points []point
	if err := json.Unmarshal(data, &points); err != nil {
		return nil, fmt.Errorf("decoding snapshot %s: %w", name, err)
	}
	c := &collection{points: points}
	s.collections[name] = c
	return c, nil
}

func (s *Store) CollectionExists(ctx context.Context, collectionName string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.load(collectionName)
	return c != nil, err
}

func (s *Store) CreateCollection(ctx context.Context, collectionName string) error {
	if collectionName == "" {
		return errors.New("empty collection name")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.load(collectionName)
	if err != nil || c != nil {
		return err
	}
	c = &collection{}
	if err := s.write(collectionName, c.points); err != nil {
		return err
	}
	s.collections[collectionName] = c
	return nil
}

// UpsertBatch writes the new snapshot before swapping it in, so a failed write leaves the collection untouched.
func (s *Store) UpsertBatch(ctx context.Context, collectionName string, chunks []commonModels.DocChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.load(collectionName)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("%w: %s", vectorDB.ErrIndexNotFound, collectionName)
	}

	byId := make(map[string]int, len(c.points))
	for i, p := range c.points {
		byId[p.Id] = i
	}
	next := append(make([]point, 0, len(c.points)+len(chunks)), c.points...)
	for i, chunk := range chunks {
		p := point{
			Id:      chunk.ChunkId,
			Content: chunk.Content,
			Payload: commonModels.MetaToMap(chunk.Meta),
			Vector:  vectors[i],
		}
		if at, ok := byId[p.Id]; ok {
			next[at] = p
			continue
		}
		byId[p.Id] = len(next)
		next = append(next, p)
	}

	if err := s.write(collectionName, next); err != nil {
		return err
	}
	c.points = next
	return nil
}

func (s *Store) Search(ctx context.Context, collectionName string, vector []float32, k int) ([]commonModels.Candidate, error) {
	s.mu.Lock()
	c, err := s.load(collectionName)
	var points []point
	if c != nil {
		points = c.points
	}
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, vectorDB.ErrIndexNotFound
	}

	type scored struct {
		p     point
		score float32
	}
	hits := make([]scored, 0, len(points))
	for _, p := range points {
		hits = append(hits, scored{p: p, score: vectorDB.Cosine(vector, p.Vector)})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}

	candidates := make([]commonModels.Candidate, 0, len(hits))
	for _, h := range hits {
		meta, err := commonModels.MetaFromMap(h.p.Payload)
		if err != nil {
			s.logger.Warn("skipping point with bad payload", "collection", collectionName, "id", h.p.Id, "error", err)
			continue
		}
		candidates = append(candidates, commonModels.Candidate{Content: h.p.Content, Meta: meta, Score: h.score})
	}
	return candidates, nil
}

func (s *Store) DeleteBySource(ctx context.Context, collectionName string, source string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.load(collectionName)
	if err != nil || c == nil {
		return 0, err
	}
	kept := make([]point, 0, len(c.points))
	for _, p := range c.points {
		if src, _ := p.Payload["source"].(string); src != source {
			kept = append(kept, p)
		}
	}
	removed := len(c.points) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := s.write(collectionName, kept); err != nil {
		return 0, err
	}
	c.points = kept
	return removed, nil
}

func (s *Store) ListSources(ctx context.Context, collectionName string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.load(collectionName)
	if err != nil || c == nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var sources []string
	for _, p := range c.points {
		src, _ := p.Payload["source"].(string)
		if _, ok := seen[src]; ok {
			continue
		}
		seen[src] = struct{}{}
		sources = append(sources, src)
	}
	sort.Strings(sources)
	return sources, nil
}

// Persist rewrites the snapshot of the collection from memory.
func (s *Store) Persist(ctx context.Context, collectionName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[collectionName]
	if !ok {
		return nil
	}
	return s.write(collectionName, c.points)
}

// write replaces the snapshot atomically via a temp file and rename
func (s *Store) write(name string, points []point) error {
	dir := filepath.Join(s.dir, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	if points == nil {
		points = []point{}
	}
	data, err := json.Marshal(points)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, snapshotFile+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), s.snapshotPath(name)); err != nil {
		return fmt.Errorf("persisting %s: %w", name, err)
	}
	return nil
}
