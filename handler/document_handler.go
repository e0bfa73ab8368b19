package handler

import (
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nishcheyk/infinity-workspace/middleware"
	"github.com/nishcheyk/infinity-workspace/repository"
	services "github.com/nishcheyk/infinity-workspace/service"
	"github.com/nishcheyk/infinity-workspace/types"
	"github.com/nishcheyk/infinity-workspace/utils"
)

const maxUploadSize = 50 << 20

type DocumentHandler struct {
	documents repository.DocumentRepo
	ingest    *services.IngestService
	uploadDir string
}

func NewDocumentHandler(documents repository.DocumentRepo, ingest *services.IngestService, uploadDir string) *DocumentHandler {
	return &DocumentHandler{
		documents: documents,
		ingest:    ingest,
		uploadDir: uploadDir,
	}
}

// UploadHandler accepts a multipart upload, records the document as
// pending and queues it. The response returns before processing
// starts; progress arrives over the websocket.
func (h *DocumentHandler) UploadHandler(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "Invalid file",
		})
		return
	}
	if header.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "File too large",
		})
		return
	}

	doc := &types.Document{
		UserID:      userID,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Status:      types.DocumentStatusPending,
		Source:      types.DocumentSourceFile,
		CreatedAt:   time.Now().Unix(),
	}
	if err := h.documents.CreateDocument(c.Request.Context(), doc); err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  false,
			Message: "Failed to record document",
		})
		return
	}

	storagePath, err := utils.SaveUploadFile(header, h.uploadDir, doc.ID)
	if err != nil {
		h.documents.UpdateDocument(c.Request.Context(), doc.ID, map[string]interface{}{
			"status": types.DocumentStatusFailed,
			"error":  err.Error(),
		})
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  false,
			Message: "Failed to store uploaded file",
		})
		return
	}

	if err := h.documents.UpdateDocument(c.Request.Context(), doc.ID, map[string]interface{}{
		"storage_path": storagePath,
	}); err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  false,
			Message: "Failed to record document",
		})
		return
	}
	doc.StoragePath = storagePath

	if err := h.ingest.QueueDocument(doc); err != nil {
		c.JSON(http.StatusServiceUnavailable, types.DataResponse{
			Status:  false,
			Message: "Ingestion queue unavailable",
		})
		return
	}

	c.JSON(http.StatusAccepted, types.DataResponse{
		Status: true,
		Data: types.UploadResponse{
			ID:       doc.ID,
			Filename: doc.Filename,
			Status:   doc.Status,
		},
	})
}

// ScrapeHandler records a URL document and queues it for scraping.
func (h *DocumentHandler) ScrapeHandler(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	var req types.ScrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "Invalid scrape request",
		})
		return
	}
	parsed, err := url.Parse(req.URL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "URL must be http or https",
		})
		return
	}

	doc := &types.Document{
		UserID:    userID,
		Filename:  req.URL,
		Status:    types.DocumentStatusPending,
		Source:    types.DocumentSourceURL,
		SourceURL: req.URL,
		CreatedAt: time.Now().Unix(),
	}
	if err := h.documents.CreateDocument(c.Request.Context(), doc); err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  false,
			Message: "Failed to record document",
		})
		return
	}

	if err := h.ingest.QueueDocument(doc); err != nil {
		c.JSON(http.StatusServiceUnavailable, types.DataResponse{
			Status:  false,
			Message: "Ingestion queue unavailable",
		})
		return
	}

	c.JSON(http.StatusAccepted, types.DataResponse{
		Status: true,
		Data: types.UploadResponse{
			ID:       doc.ID,
			Filename: doc.Filename,
			Status:   doc.Status,
		},
	})
}

func (h *DocumentHandler) ListDocumentsHandler(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	docs, err := h.documents.ListDocuments(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  false,
			Message: "Failed to list documents",
		})
		return
	}

	c.JSON(http.StatusOK, types.DataResponse{
		Status: true,
		Data:   docs,
	})
}

func (h *DocumentHandler) DeleteDocumentHandler(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)
	docID := c.Param("id")

	if err := h.ingest.DeleteDocument(c.Request.Context(), docID, userID); err != nil {
		c.JSON(http.StatusNotFound, types.DataResponse{
			Status:  false,
			Message: "Document not found",
		})
		return
	}

	c.JSON(http.StatusOK, types.DataResponse{
		Status:  true,
		Message: "Document deleted",
	})
}
