package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-openapi/strfmt"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/nishcheyk/infinity-workspace/config"
	"github.com/nishcheyk/infinity-workspace/types"
)

const BATCH_SIZE = 200

// CHUNK_CLASS holds one object per embedded chunk. Vectors are
// supplied by the embedding service, so the class carries no
// vectorizer module.
var (
	CHUNK_CLASS        = "DocumentChunk"
	CHUNK_CLASS_OBJECT = &models.Class{
		Class: CHUNK_CLASS,
		Properties: []*models.Property{
			{Name: "docId", DataType: []string{"text"}},
			{Name: "userId", DataType: []string{"text"}},
			{Name: "title", DataType: []string{"text"}},
			{Name: "text", DataType: []string{"text"}},
			{Name: "chunkIndex", DataType: []string{"int"}},
		},
		Vectorizer:      "none",
		VectorIndexType: "hnsw",
		VectorIndexConfig: map[string]interface{}{
			"distance": "cosine",
		},
	}
)

type WeaviateStore struct {
	client    *weaviate.Client
	dimension int
	logger    *slog.Logger
}

func NewWeaviateStore(config config.WeaviateStoreConfig, dimension int) (*WeaviateStore, error) {
	var scheme string
	if strings.Contains(config.Host, "https") {
		scheme = "https"
	} else {
		scheme = "http"
	}
	host := strings.TrimPrefix(config.Host, scheme+"://")
	cfg := weaviate.Config{
		Host:   host,
		Scheme: scheme,
	}
	if config.APIKey != "" {
		cfg.AuthConfig = auth.ApiKey{
			Value: config.APIKey,
		}
	}
	client, err := weaviate.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %w", err)
	}

	return &WeaviateStore{
		client:    client,
		dimension: dimension,
		logger:    slog.Default().With("component", "weaviate-store"),
	}, nil
}

// EnsureCollection creates the chunk class if it is missing. Safe to
// call before every upsert.
func (s *WeaviateStore) EnsureCollection(ctx context.Context) error {
	schema, err := s.client.Schema().Getter().Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to get schema: %w", err)
	}

	for _, class := range schema.Classes {
		if class.Class == CHUNK_CLASS {
			return nil
		}
	}

	if err := s.client.Schema().ClassCreator().WithClass(CHUNK_CLASS_OBJECT).Do(ctx); err != nil {
		return fmt.Errorf("failed to create %s class: %w", CHUNK_CLASS, err)
	}
	s.logger.Info("created vector collection", "class", CHUNK_CLASS, "dimension", s.dimension)
	return nil
}

// ReInit drops and recreates the chunk class. Every stored vector is
// lost; only the reset-index command calls this.
func (s *WeaviateStore) ReInit(ctx context.Context) error {
	err := s.client.Schema().ClassDeleter().WithClassName(CHUNK_CLASS).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete %s class: %w", CHUNK_CLASS, err)
	}

	err = s.client.Schema().ClassCreator().WithClass(CHUNK_CLASS_OBJECT).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to create %s class: %w", CHUNK_CLASS, err)
	}
	return nil
}

func (s *WeaviateStore) UpsertPoints(ctx context.Context, points []types.VectorPoint) error {
	total := len(points)
	for i := 0; i < total; i += BATCH_SIZE {
		end := i + BATCH_SIZE
		if end > total {
			end = total
		}

		batcher := s.client.Batch().ObjectsBatcher()
		for j := i; j < end; j++ {
			p := points[j]
			batcher = batcher.WithObjects(&models.Object{
				Class: CHUNK_CLASS,
				ID:    strfmt.UUID(p.ID),
				Properties: map[string]interface{}{
					"docId":      p.DocID,
					"userId":     p.UserID,
					"title":      p.Title,
					"text":       p.Text,
					"chunkIndex": p.ChunkIndex,
				},
				Vector: p.Vector,
			})
		}

		if _, err := batcher.Do(ctx); err != nil {
			return fmt.Errorf("failed to insert batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}

// Search runs a nearVector query scoped to one owner. The userId
// filter is part of the index query itself, never applied after the
// fact.
func (s *WeaviateStore) Search(ctx context.Context, vector []float32, userID string, limit int) ([]types.VectorHit, error) {
	fields := []graphql.Field{
		{Name: "docId"},
		{Name: "userId"},
		{Name: "title"},
		{Name: "text"},
		{Name: "chunkIndex"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "certainty"}, {Name: "id"}}},
	}

	nearVector := s.client.GraphQL().NearVectorArgBuilder().
		WithVector(vector)

	where := filters.Where().
		WithPath([]string{"userId"}).
		WithOperator(filters.Equal).
		WithValueString(userID)

	result, err := s.client.GraphQL().Get().
		WithClassName(CHUNK_CLASS).
		WithFields(fields...).
		WithNearVector(nearVector).
		WithWhere(where).
		WithLimit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	if result.Errors != nil {
		return nil, fmt.Errorf("vector search failed: %v", result.Errors[0].Message)
	}

	var hits []types.VectorHit
	if data, ok := result.Data["Get"].(map[string]interface{})[CHUNK_CLASS].([]interface{}); ok {
		for _, item := range data {
			obj, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			hit := types.VectorHit{
				Text:       getString(obj, "text"),
				DocID:      getString(obj, "docId"),
				Title:      getString(obj, "title"),
				ChunkIndex: int(getFloat(obj, "chunkIndex")),
			}
			if additional, ok := obj["_additional"].(map[string]interface{}); ok {
				hit.Score = float32(getFloat(additional, "certainty"))
			}
			hits = append(hits, hit)
		}
	}
	return hits, nil
}

// DeleteByDocument removes all points tagged with the document id via
// a batch delete filter.
func (s *WeaviateStore) DeleteByDocument(ctx context.Context, docID string) error {
	where := filters.Where().
		WithPath([]string{"docId"}).
		WithOperator(filters.Equal).
		WithValueString(docID)

	result, err := s.client.Batch().ObjectsBatchDeleter().
		WithClassName(CHUNK_CLASS).
		WithWhere(where).
		WithOutput("minimal").
		Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete points for document %s: %w", docID, err)
	}
	if result != nil && result.Results != nil {
		s.logger.Info("deleted vector points", "doc_id", docID, "matches", result.Results.Matches)
	}
	return nil
}

// Helper functions
func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func getFloat(m map[string]interface{}, key string) float64 {
	if v, ok := m[key].(float64); ok {
		return v
	}
	return 0
}
