package service

import (
	"context"

	"github.com/nishcheyk/infinity-workspace/types"
)

// AIService is the chat-completion boundary. Both calls take a single
// flattened prompt; history and retrieved context are already folded
// in by the prompt builder.
type AIService interface {
	// Chat runs a non-streaming completion. Used for title generation.
	Chat(ctx context.Context, prompt string) (string, error)

	// ChatStream forwards each produced fragment to handler as soon as
	// it arrives.
	ChatStream(ctx context.Context, prompt string, handler types.StreamHandler) error
}
