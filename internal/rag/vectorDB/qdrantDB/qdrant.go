package qdrantDB

import (
	"context"
	"errors"
	"fmt"

	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/domain/commonModels"
	"github.com/akolanti/DocQA/pkg/logger_i"
	"github.com/qdrant/go-client/qdrant"
)

var dimension = uint64(config.EmbeddingOutputDimensionality)

const sourceField = "source"
const contentField = "content"

type ClientHolder struct {
	QObj   *qdrant.Client
	logger *logger_i.Logger
}

// NewClient connects to qdrant and checks it answers. The client is closed when ctx ends.
func NewClient(ctx context.Context) (*ClientHolder, error) {
	logger := logger_i.NewLogger("Qdrant")
	if config.QdrantHost == "" {
		return nil, errors.New("QDRANT_HOST not set")
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     config.QdrantHost,
		Port:     config.QdrantPort,
		APIKey:   config.QdrantAPIKey,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		return nil, fmt.Errorf("could not instantiate qdrant client: %w", err)
	}
	if _, err := client.HealthCheck(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("qdrant health check failed: %w", err)
	}

	go closeQdrant(ctx, client, logger)
	return &ClientHolder{QObj: client, logger: logger}, nil
}

func closeQdrant(ctx context.Context, qi *qdrant.Client, logger *logger_i.Logger) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	err := qi.Close()
	if err != nil {
		logger.Error("could not close Qdrant: ", "error:", err)
	}
	logger.Info("Closed Qdrant")
}

func (db *ClientHolder) CollectionExists(ctx context.Context, collectionName string) (bool, error) {
	return db.QObj.CollectionExists(ctx, collectionName)
}

func (db *ClientHolder) CreateCollection(ctx context.Context, collectionName string) error {
	return createCollection(ctx, db.QObj, collectionName)
}

func (db *ClientHolder) Search(ctx context.Context, collectionName string, vectorFloat []float32, k int) ([]commonModels.Candidate, error) {
	loggr := db.logger.WithTrace(ctx)
	result, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collectionName,
		Query:          qdrant.NewQuery(vectorFloat...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		loggr.Error("Error querying Qdrant: ", "collection", collectionName, "error:", err)
		return nil, err
	}

	candidates := make([]commonModels.Candidate, 0, len(result))
	for _, hit := range result {
		payload := payloadToMap(hit.Payload)
		content, _ := payload[contentField].(string)
		delete(payload, contentField)

		meta, err := commonModels.MetaFromMap(payload)
		if err != nil {
			loggr.Warn("skipping point with bad payload", "collection", collectionName, "error", err)
			continue
		}
		candidates = append(candidates, commonModels.Candidate{Content: content, Meta: meta, Score: hit.Score})
	}

	loggr.Debug("Found matches", "collection", collectionName, "count", len(candidates))
	return candidates, nil
}

func (db *ClientHolder) UpsertBatch(ctx context.Context, collectionName string, chunks []commonModels.DocChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}

	qdrantPoints := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		payload := commonModels.MetaToMap(chunk.Meta)
		payload[contentField] = chunk.Content

		qdrantPoints[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(chunk.ChunkId),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(payload),
		}
	}

	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collectionName,
		Points:         qdrantPoints,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

func (db *ClientHolder) DeleteBySource(ctx context.Context, collectionName string, source string) (int, error) {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{qdrant.NewMatch(sourceField, source)},
	}

	count, err := db.QObj.Count(ctx, &qdrant.CountPoints{
		CollectionName: collectionName,
		Filter:         filter,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("qdrant count failed: %w", err)
	}
	if count == 0 {
		return 0, nil
	}

	_, err = db.QObj.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collectionName,
		Wait:           qdrant.PtrOf(true),
		Points:         qdrant.NewPointsSelectorFilter(filter),
	})
	if err != nil {
		return 0, fmt.Errorf("qdrant delete failed: %w", err)
	}
	return int(count), nil
}

// ListSources pages through the collection reading only the source field.
func (db *ClientHolder) ListSources(ctx context.Context, collectionName string) ([]string, error) {
	seen := make(map[string]struct{})
	var sources []string
	var offset *qdrant.PointId

	for {
		points, err := db.QObj.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: collectionName,
			Limit:          qdrant.PtrOf(uint32(config.QdrantScrollPageSize)),
			Offset:         offset,
			WithPayload:    qdrant.NewWithPayloadInclude(sourceField),
		})
		if err != nil {
			return nil, fmt.Errorf("qdrant scroll failed: %w", err)
		}

		// the offset point is returned again as the first point of the next page
		page := points
		if offset != nil && len(page) > 0 {
			page = page[1:]
		}
		for _, p := range page {
			src := p.Payload[sourceField].GetStringValue()
			if _, ok := seen[src]; ok {
				continue
			}
			seen[src] = struct{}{}
			sources = append(sources, src)
		}

		if len(points) < config.QdrantScrollPageSize {
			return sources, nil
		}
		offset = points[len(points)-1].Id
	}
}

// Persist is a no-op: writes are acknowledged with Wait.
func (db *ClientHolder) Persist(ctx context.Context, collectionName string) error {
	return nil
}

func createCollection(ctx context.Context, client *qdrant.Client, collectionName string) error {
	if collectionName == "" {
		return errors.New("empty collection name")
	}

	exists, err := client.CollectionExists(ctx, collectionName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	err = client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return err
	}

	// filter deletes and scrolls by source
	_, err = client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: collectionName,
		FieldName:      sourceField,
		FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
		Wait:           qdrant.PtrOf(true),
	})
	return err
}

func payloadToMap(payload map[string]*qdrant.Value) map[string]any {
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		switch kind := v.GetKind().(type) {
		case *qdrant.Value_StringValue:
			out[k] = kind.StringValue
		case *qdrant.Value_IntegerValue:
			out[k] = kind.IntegerValue
		case *qdrant.Value_DoubleValue:
			out[k] = kind.DoubleValue
		case *qdrant.Value_BoolValue:
			out[k] = kind.BoolValue
		}
	}
	return out
}
