package types

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultSessionTitle is the placeholder a session keeps until the
// first exchange generates a real one.
const DefaultSessionTitle = "New Chat"

// ChatSession is a persisted conversation owned by one user.
type ChatSession struct {
	ID        string `json:"id" bson:"_id,omitempty"`
	UserID    string `json:"user_id" bson:"user_id"`
	Title     string `json:"title" bson:"title"`
	CreatedAt int64  `json:"created_at" bson:"created_at"`
	UpdatedAt int64  `json:"updated_at" bson:"updated_at"`
}

// ChatMessage is append-only; ordering within a session is by
// Timestamp (unix millis).
type ChatMessage struct {
	ID        string `json:"id" bson:"_id,omitempty"`
	SessionID string `json:"session_id" bson:"session_id"`
	UserID    string `json:"user_id" bson:"user_id"`
	Role      string `json:"role" bson:"role"`
	Content   string `json:"content" bson:"content"`
	Timestamp int64  `json:"timestamp" bson:"timestamp"`
}

// RetrievedChunk is one retrieval hit with its display metadata
// resolved.
type RetrievedChunk struct {
	Text  string  `json:"text"`
	DocID string  `json:"doc_id"`
	Title string  `json:"title"`
	Score float32 `json:"score"`
}

// StreamHandler receives generated text fragments as they arrive.
type StreamHandler func(token string)
