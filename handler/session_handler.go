package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nishcheyk/infinity-workspace/middleware"
	"github.com/nishcheyk/infinity-workspace/repository"
	"github.com/nishcheyk/infinity-workspace/types"
)

type SessionHandler struct {
	chats repository.ChatRepo
}

func NewSessionHandler(chats repository.ChatRepo) *SessionHandler {
	return &SessionHandler{
		chats: chats,
	}
}

func (h *SessionHandler) CreateSessionHandler(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	now := time.Now().Unix()
	session := &types.ChatSession{
		UserID:    userID,
		Title:     types.DefaultSessionTitle,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.chats.CreateSession(c.Request.Context(), session); err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  false,
			Message: "Failed to create session",
		})
		return
	}

	c.JSON(http.StatusCreated, types.DataResponse{
		Status: true,
		Data:   session,
	})
}

func (h *SessionHandler) ListSessionsHandler(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	sessions, err := h.chats.ListSessions(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  false,
			Message: "Failed to list sessions",
		})
		return
	}

	c.JSON(http.StatusOK, types.DataResponse{
		Status: true,
		Data:   sessions,
	})
}

// HistoryHandler returns a session's messages in chronological order.
// Ownership is checked before any message is read.
func (h *SessionHandler) HistoryHandler(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)
	sessionID := c.Param("id")

	if _, err := h.chats.GetUserSession(c.Request.Context(), sessionID, userID); err != nil {
		c.JSON(http.StatusNotFound, types.DataResponse{
			Status:  false,
			Message: "Session not found",
		})
		return
	}

	messages, err := h.chats.ListMessages(c.Request.Context(), sessionID, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  false,
			Message: "Failed to load history",
		})
		return
	}

	c.JSON(http.StatusOK, types.DataResponse{
		Status: true,
		Data:   messages,
	})
}

func (h *SessionHandler) DeleteSessionHandler(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)
	sessionID := c.Param("id")

	if _, err := h.chats.GetUserSession(c.Request.Context(), sessionID, userID); err != nil {
		c.JSON(http.StatusNotFound, types.DataResponse{
			Status:  false,
			Message: "Session not found",
		})
		return
	}

	if err := h.chats.DeleteSession(c.Request.Context(), sessionID); err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  false,
			Message: "Failed to delete session",
		})
		return
	}
	if err := h.chats.DeleteMessages(c.Request.Context(), sessionID); err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  false,
			Message: "Session deleted but messages remain",
		})
		return
	}

	c.JSON(http.StatusOK, types.DataResponse{
		Status:  true,
		Message: "Session deleted",
	})
}
