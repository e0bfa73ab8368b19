package types

// Event types exchanged over the live channel.
const (
	EventChatStart       = "chat_start"
	EventChatToken       = "chat_token"
	EventChatEnd         = "chat_end"
	EventIngestionStatus = "ingestion_status"
	EventChatMessage     = "chat_message"
)

type ChatStartEvent struct {
	Type string `json:"type"`
}

type ChatTokenEvent struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

type ChatEndEvent struct {
	Type string `json:"type"`
}

// IngestionStatusEvent is broadcast to every open channel of the
// document owner when a pipeline run finishes.
type IngestionStatusEvent struct {
	Type   string `json:"type"`
	DocID  string `json:"doc_id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// ChatMessageEvent is the single inbound message shape the channel
// accepts.
type ChatMessageEvent struct {
	Type      string `json:"type"`
	Text      string `json:"text"`
	SessionID string `json:"session_id,omitempty"`
}

func NewChatStartEvent() ChatStartEvent {
	return ChatStartEvent{Type: EventChatStart}
}

func NewChatTokenEvent(token string) ChatTokenEvent {
	return ChatTokenEvent{Type: EventChatToken, Token: token}
}

func NewChatEndEvent() ChatEndEvent {
	return ChatEndEvent{Type: EventChatEnd}
}

func NewIngestionStatusEvent(docID, status, errText string) IngestionStatusEvent {
	return IngestionStatusEvent{
		Type:   EventIngestionStatus,
		DocID:  docID,
		Status: status,
		Error:  errText,
	}
}
