package service

import (
	"log/slog"
	"sync"
)

// EventSink is one live channel capable of accepting structured
// events. Websocket connections implement it; tests substitute fakes.
type EventSink interface {
	SendEvent(event interface{}) error
}

// Notifier is the broadcast side of the hub, all the ingestion
// pipeline needs to see.
type Notifier interface {
	Broadcast(userID string, event interface{})
}

// Hub maps user ids to their currently open live channels. A user may
// hold several connections at once (multiple tabs). In-memory only:
// a multi-instance deployment would need a shared pub/sub layer here.
type Hub struct {
	mu      sync.RWMutex
	clients map[string][]EventSink
	logger  *slog.Logger
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string][]EventSink),
		logger:  slog.Default().With("component", "hub"),
	}
}

func (h *Hub) Register(userID string, sink EventSink) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[userID] = append(h.clients[userID], sink)
}

// Unregister is idempotent; removing an absent sink is a no-op.
func (h *Hub) Unregister(userID string, sink EventSink) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(userID, sink)
}

// Broadcast delivers event to every channel registered for userID.
// A channel that fails to accept is treated as dead and pruned without
// aborting delivery to the rest. Best-effort only: a user with no open
// channels silently misses the event.
func (h *Hub) Broadcast(userID string, event interface{}) {
	h.mu.RLock()
	sinks := make([]EventSink, len(h.clients[userID]))
	copy(sinks, h.clients[userID])
	h.mu.RUnlock()

	var dead []EventSink
	for _, sink := range sinks {
		if err := sink.SendEvent(event); err != nil {
			h.logger.Warn("dropping dead channel", "user_id", userID, "err", err)
			dead = append(dead, sink)
		}
	}

	if len(dead) == 0 {
		return
	}
	h.mu.Lock()
	for _, sink := range dead {
		h.removeLocked(userID, sink)
	}
	h.mu.Unlock()
}

// ChannelCount reports how many channels a user currently holds.
func (h *Hub) ChannelCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *Hub) removeLocked(userID string, sink EventSink) {
	sinks := h.clients[userID]
	for i, existing := range sinks {
		if existing == sink {
			h.clients[userID] = append(sinks[:i], sinks[i+1:]...)
			break
		}
	}
	if len(h.clients[userID]) == 0 {
		delete(h.clients, userID)
	}
}
