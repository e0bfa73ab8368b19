package database

import (
	"context"

	"github.com/nishcheyk/infinity-workspace/types"
)

// VectorIndex is the contract the ingestion pipeline and the retrieval
// engine share. The index is a derived structure over documents; it is
// never the source of truth for document existence.
type VectorIndex interface {
	// EnsureCollection creates the backing collection if it does not
	// exist yet. Idempotent.
	EnsureCollection(ctx context.Context) error

	// UpsertPoints inserts one point per chunk. Point ids are supplied
	// by the caller and must be freshly generated for every run.
	UpsertPoints(ctx context.Context, points []types.VectorPoint) error

	// Search returns hits in the index's native ranking order,
	// restricted by index filter to points owned by userID.
	Search(ctx context.Context, vector []float32, userID string, limit int) ([]types.VectorHit, error)

	// DeleteByDocument removes every point tagged with docID.
	DeleteByDocument(ctx context.Context, docID string) error
}
