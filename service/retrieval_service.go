package service

import (
	"context"
	"log/slog"

	"github.com/nishcheyk/infinity-workspace/database"
	"github.com/nishcheyk/infinity-workspace/repository"
	"github.com/nishcheyk/infinity-workspace/types"
)

// DefaultRetrievalLimit is the number of hits requested when the
// caller does not specify one.
const DefaultRetrievalLimit = 4

const unknownDocumentTitle = "Unknown Document"

// RetrievalService embeds a query and searches the vector index scoped
// to the requesting user. Results come back in the index's native
// ranking order; the caller applies any score gate.
type RetrievalService struct {
	index     database.VectorIndex
	embedder  Embedder
	documents repository.DocumentRepo
	logger    *slog.Logger
}

func NewRetrievalService(index database.VectorIndex, embedder Embedder, documents repository.DocumentRepo) *RetrievalService {
	return &RetrievalService{
		index:     index,
		embedder:  embedder,
		documents: documents,
		logger:    slog.Default().With("component", "retrieval"),
	}
}

func (s *RetrievalService) Retrieve(ctx context.Context, query, userID string, limit int) ([]types.RetrievedChunk, error) {
	if limit <= 0 {
		limit = DefaultRetrievalLimit
	}

	vector, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, err
	}

	hits, err := s.index.Search(ctx, vector, userID, limit)
	if err != nil {
		return nil, err
	}

	results := make([]types.RetrievedChunk, 0, len(hits))
	for _, hit := range hits {
		title := hit.Title
		// Legacy points predate the title payload field; fall back to
		// the document record.
		if title == "" && hit.DocID != "" {
			if doc, err := s.documents.GetDocument(ctx, hit.DocID); err == nil {
				title = doc.Filename
			}
		}
		if title == "" {
			title = unknownDocumentTitle
		}
		s.logger.Debug("retrieval hit", "title", title, "score", hit.Score)
		results = append(results, types.RetrievedChunk{
			Text:  hit.Text,
			DocID: hit.DocID,
			Title: title,
			Score: hit.Score,
		})
	}
	return results, nil
}
