package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nishcheyk/infinity-workspace/repository"
	"github.com/nishcheyk/infinity-workspace/types"
)

// HistoryLoadLimit is how many persisted messages are loaded as
// conversational history for one exchange.
const HistoryLoadLimit = 20

// ContextRetriever is what the orchestrator needs from the retrieval
// engine.
type ContextRetriever interface {
	Retrieve(ctx context.Context, query, userID string, limit int) ([]types.RetrievedChunk, error)
}

// ChatService assembles a prompt from retrieved context plus session
// history, streams the generation to the caller, and persists the
// exchange.
type ChatService struct {
	retriever ContextRetriever
	ai        AIService
	chats     repository.ChatRepo
	logger    *slog.Logger
}

func NewChatService(retriever ContextRetriever, ai AIService, chats repository.ChatRepo) *ChatService {
	return &ChatService{
		retriever: retriever,
		ai:        ai,
		chats:     chats,
		logger:    slog.Default().With("component", "chat"),
	}
}

// ChatStream handles one exchange. Tokens are forwarded to emit as
// they arrive. Every failure during generation is converted into a
// single in-band error fragment; the method itself never returns an
// error to keep the live channel protocol clean.
//
// Two concurrent exchanges on the same session are not mutually
// excluded and can interleave history.
func (s *ChatService) ChatStream(ctx context.Context, query, userID, sessionID string, emit types.StreamHandler) {
	// 1. Load history (stateless mode when no session id given).
	var history []types.ChatMessage
	if sessionID != "" {
		loaded, err := s.chats.ListMessages(ctx, sessionID, HistoryLoadLimit)
		if err != nil {
			s.logger.Warn("failed to load history", "session_id", sessionID, "err", err)
		} else {
			history = loaded
		}
	}

	// 2. Retrieve context; an unreachable index degrades to
	// history-only mode rather than failing the chat.
	retrieved, err := s.retriever.Retrieve(ctx, query, userID, DefaultRetrievalLimit)
	if err != nil {
		s.logger.Warn("retrieval failed, continuing without context", "err", err)
		retrieved = nil
	}
	contextChunks := FilterByScore(retrieved, ScoreThreshold)

	// 3. Build the prompt.
	prompt := BuildPrompt(query, contextChunks, history)

	// 4. Persist the user's message before generation starts.
	if sessionID != "" {
		userMessage := &types.ChatMessage{
			SessionID: sessionID,
			UserID:    userID,
			Role:      types.RoleUser,
			Content:   query,
			Timestamp: time.Now().UnixMilli(),
		}
		if err := s.chats.CreateMessage(ctx, userMessage); err != nil {
			s.logger.Error("failed to persist user message", "session_id", sessionID, "err", err)
		}
		if err := s.chats.TouchSession(ctx, sessionID); err != nil {
			s.logger.Warn("failed to touch session", "session_id", sessionID, "err", err)
		}
	}

	s.logger.Info("prompting LLM",
		"user_id", userID,
		"session_id", sessionID,
		"history", len(history),
		"context", len(contextChunks),
	)

	// 5. Stream the generation.
	var full strings.Builder
	err = s.ai.ChatStream(ctx, prompt, func(token string) {
		full.WriteString(token)
		emit(token)
	})
	if err != nil {
		// The user message stays persisted; the failure is in-band.
		s.logger.Error("generation failed", "session_id", sessionID, "err", err)
		emit(fmt.Sprintf("\n[System Error: %v]", err))
		return
	}

	if sessionID == "" {
		return
	}

	// 6. Persist the assistant's reply.
	assistantMessage := &types.ChatMessage{
		SessionID: sessionID,
		UserID:    userID,
		Role:      types.RoleAssistant,
		Content:   full.String(),
		Timestamp: time.Now().UnixMilli(),
	}
	if err := s.chats.CreateMessage(ctx, assistantMessage); err != nil {
		s.logger.Error("failed to persist assistant message", "session_id", sessionID, "err", err)
	}

	// 7. First exchange gets a generated title. A failure here must
	// never disturb the already-delivered response.
	if len(history) == 0 {
		s.generateTitle(ctx, sessionID, query)
	}
}

func (s *ChatService) generateTitle(ctx context.Context, sessionID, query string) {
	title, err := s.ai.Chat(ctx, BuildTitlePrompt(query))
	if err != nil {
		s.logger.Debug("title generation failed", "session_id", sessionID, "err", err)
		return
	}
	title = strings.Trim(strings.TrimSpace(title), `"'`)
	if title == "" {
		return
	}
	if err := s.chats.UpdateSessionTitle(ctx, sessionID, title); err != nil {
		s.logger.Debug("failed to update session title", "session_id", sessionID, "err", err)
	}
}
