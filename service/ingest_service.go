package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/nishcheyk/infinity-workspace/database"
	"github.com/nishcheyk/infinity-workspace/repository"
	"github.com/nishcheyk/infinity-workspace/types"
)

// IngestService drives the per-document pipeline:
// extract -> chunk -> embed -> upsert -> finalize, with the document's
// persisted status as the state machine record
// (pending -> processing -> completed|failed).
//
// Runs are detached from the triggering request: a worker pool
// consumes queued documents, and each run uses its own background
// context so a client disconnect never cancels an in-flight pipeline.
type IngestService struct {
	documents repository.DocumentRepo
	index     database.VectorIndex
	embedder  Embedder
	extractor FileExtractor
	scraper   PageScraper
	notifier  Notifier
	pool      *ants.Pool
	logger    *slog.Logger
}

func NewIngestService(
	documents repository.DocumentRepo,
	index database.VectorIndex,
	embedder Embedder,
	extractor FileExtractor,
	scraper PageScraper,
	notifier Notifier,
	workers int,
) (*IngestService, error) {
	if workers < 1 {
		workers = 1
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, err
	}
	return &IngestService{
		documents: documents,
		index:     index,
		embedder:  embedder,
		extractor: extractor,
		scraper:   scraper,
		notifier:  notifier,
		pool:      pool,
		logger:    slog.Default().With("component", "ingest"),
	}, nil
}

// Close releases the worker pool. In-flight runs finish first.
func (s *IngestService) Close() {
	s.pool.Release()
}

// QueueDocument hands a pending document to the worker pool and
// returns immediately.
func (s *IngestService) QueueDocument(doc *types.Document) error {
	d := *doc
	return s.pool.Submit(func() {
		s.process(&d)
	})
}

// Recover re-queues documents a previous process left mid-pipeline.
// Uploads whose temp file vanished with the old process are terminal.
func (s *IngestService) Recover(ctx context.Context) error {
	docs, err := s.documents.ListByStatus(ctx, []string{
		types.DocumentStatusPending,
		types.DocumentStatusProcessing,
	})
	if err != nil {
		return fmt.Errorf("failed to list interrupted documents: %w", err)
	}

	for _, doc := range docs {
		if doc.Source == types.DocumentSourceFile {
			if _, err := os.Stat(doc.StoragePath); err != nil {
				s.markFailed(ctx, doc, "ingestion interrupted and uploaded file is no longer available")
				continue
			}
		}
		s.logger.Info("recovering interrupted document", "doc_id", doc.ID, "status", doc.Status)
		if err := s.QueueDocument(doc); err != nil {
			return err
		}
	}
	return nil
}

// DeleteDocument removes the record and, best-effort, every index
// point tagged with the document id. The two deletions are not
// transactional; a failure on the index side leaves orphaned vectors
// behind and is logged, not surfaced.
func (s *IngestService) DeleteDocument(ctx context.Context, docID, userID string) error {
	doc, err := s.documents.GetUserDocument(ctx, docID, userID)
	if err != nil {
		return err
	}

	if err := s.documents.DeleteDocument(ctx, doc.ID); err != nil {
		return err
	}

	if err := s.index.DeleteByDocument(ctx, doc.ID); err != nil {
		s.logger.Warn("failed to delete vector points, orphans remain", "doc_id", doc.ID, "err", err)
	}

	if doc.StoragePath != "" {
		os.Remove(doc.StoragePath)
	}
	return nil
}

// process runs the whole pipeline for one document. Nothing may
// escape: every failure lands in the document's status field.
func (s *IngestService) process(doc *types.Document) {
	// Detached from the request; the run outlives its trigger.
	ctx := context.Background()

	defer func() {
		if r := recover(); r != nil {
			s.markFailed(ctx, doc, fmt.Sprintf("pipeline panic: %v", r))
		}
	}()

	started := time.Now()
	s.setStatus(ctx, doc.ID, types.DocumentStatusProcessing)

	chunks, err := s.extractChunks(ctx, doc)
	if err != nil {
		s.markFailed(ctx, doc, err.Error())
		return
	}
	if len(chunks) == 0 {
		s.markFailed(ctx, doc, "document produced no text")
		return
	}

	vectors, err := s.embedder.EmbedTexts(ctx, chunks)
	if err != nil {
		s.markFailed(ctx, doc, fmt.Sprintf("embedding failed: %v", err))
		return
	}

	if err := s.index.EnsureCollection(ctx); err != nil {
		s.markFailed(ctx, doc, fmt.Sprintf("vector index unavailable: %v", err))
		return
	}

	// Fresh point ids every run, so re-ingesting the same document can
	// never collide with points from an earlier attempt.
	points := make([]types.VectorPoint, len(chunks))
	for i, chunk := range chunks {
		points[i] = types.VectorPoint{
			ID:         uuid.NewString(),
			Vector:     vectors[i],
			DocID:      doc.ID,
			UserID:     doc.UserID,
			Title:      doc.Filename,
			Text:       chunk,
			ChunkIndex: i,
		}
	}
	if err := s.index.UpsertPoints(ctx, points); err != nil {
		s.markFailed(ctx, doc, fmt.Sprintf("vector upsert failed: %v", err))
		return
	}

	if err := s.documents.UpdateDocument(ctx, doc.ID, map[string]interface{}{
		"status": types.DocumentStatusCompleted,
		"chunks": len(chunks),
		"error":  "",
	}); err != nil {
		s.logger.Error("failed to finalize document", "doc_id", doc.ID, "err", err)
	}

	s.notifier.Broadcast(doc.UserID,
		types.NewIngestionStatusEvent(doc.ID, types.DocumentStatusCompleted, ""))

	s.releaseStorage(doc)

	s.logger.Info("document ingested",
		"doc_id", doc.ID,
		"chunks", len(chunks),
		"took", time.Since(started),
	)
}

// extractChunks runs the source-appropriate extraction and chunking
// strategy. Documents get semantically-aware element extraction; URLs
// get a raw text scrape. The two paths stay separate by design.
func (s *IngestService) extractChunks(ctx context.Context, doc *types.Document) ([]string, error) {
	switch doc.Source {
	case types.DocumentSourceURL:
		text, err := s.scraper.ScrapePage(ctx, doc.SourceURL)
		if err != nil {
			return nil, err
		}
		chunker := &WindowChunker{Width: ScrapeWindowSize}
		return chunker.Chunk([]string{text}), nil
	default:
		elements, err := s.extractor.ExtractFile(ctx, doc.StoragePath, doc.ContentType)
		if err != nil {
			return nil, err
		}
		chunker := &ElementChunker{Budget: ElementChunkBudget}
		return chunker.Chunk(elements), nil
	}
}

func (s *IngestService) setStatus(ctx context.Context, docID, status string) {
	if err := s.documents.UpdateDocument(ctx, docID, map[string]interface{}{
		"status": status,
	}); err != nil {
		s.logger.Error("failed to update document status", "doc_id", docID, "status", status, "err", err)
	}
}

// markFailed records the terminal failed state with its error text and
// notifies the owner. There is no automatic retry; the user re-uploads.
func (s *IngestService) markFailed(ctx context.Context, doc *types.Document, errText string) {
	s.logger.Error("ingestion failed", "doc_id", doc.ID, "err", errText)
	if err := s.documents.UpdateDocument(ctx, doc.ID, map[string]interface{}{
		"status": types.DocumentStatusFailed,
		"error":  errText,
	}); err != nil {
		s.logger.Error("failed to record failure", "doc_id", doc.ID, "err", err)
	}
	s.notifier.Broadcast(doc.UserID,
		types.NewIngestionStatusEvent(doc.ID, types.DocumentStatusFailed, errText))
	s.releaseStorage(doc)
}

func (s *IngestService) releaseStorage(doc *types.Document) {
	if doc.StoragePath == "" {
		return
	}
	if err := os.Remove(doc.StoragePath); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to remove temp upload", "path", doc.StoragePath, "err", err)
	}
}
