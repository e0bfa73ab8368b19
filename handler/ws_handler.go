package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	services "github.com/nishcheyk/infinity-workspace/service"
	"github.com/nishcheyk/infinity-workspace/types"
	"github.com/nishcheyk/infinity-workspace/utils"
)

const maxInboundMessageSize = 64 * 1024

// wsClient wraps a connection so the read-loop's chat stream and hub
// broadcasts from ingestion workers never interleave writes. gorilla
// connections allow one concurrent writer only.
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) SendEvent(event interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(event)
}

type WSHandler struct {
	hub    *services.Hub
	chat   *services.ChatService
	logger *slog.Logger

	upgrader websocket.Upgrader
}

func NewWSHandler(hub *services.Hub, chat *services.ChatService) *WSHandler {
	return &WSHandler{
		hub:    hub,
		chat:   chat,
		logger: slog.Default().With("component", "ws"),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins (adjust for production)
			},
		},
	}
}

// ServeWS authenticates via the token query parameter, upgrades, and
// runs the read loop. Browsers cannot set headers on websocket dials,
// so the JWT travels in the query string.
func (h *WSHandler) ServeWS(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, types.DataResponse{
			Status:  false,
			Message: "Missing token",
		})
		return
	}
	claims, err := utils.ParseAccessToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, types.DataResponse{
			Status:  false,
			Message: "Invalid token",
		})
		return
	}
	userID := claims.Subject

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxInboundMessageSize)

	client := &wsClient{conn: conn}
	h.hub.Register(userID, client)
	defer h.hub.Unregister(userID, client)

	h.readLoop(conn, client, userID)
}

func (h *WSHandler) readLoop(conn *websocket.Conn, client *wsClient, userID string) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read error", "user_id", userID, "err", err)
			}
			return
		}

		var msg types.ChatMessageEvent
		if err := json.Unmarshal(raw, &msg); err != nil || msg.Type != types.EventChatMessage {
			h.logger.Debug("ignoring malformed websocket message", "user_id", userID)
			continue
		}
		// An absent session id is valid: the exchange runs stateless,
		// with no history and nothing persisted.
		if msg.Text == "" {
			continue
		}

		h.handleChatMessage(client, userID, msg)
	}
}

// handleChatMessage runs one full exchange: start marker, token
// stream, end marker. Generation uses a background context so a
// socket drop mid-stream does not abort persistence.
func (h *WSHandler) handleChatMessage(client *wsClient, userID string, msg types.ChatMessageEvent) {
	if err := client.SendEvent(types.NewChatStartEvent()); err != nil {
		return
	}

	h.chat.ChatStream(context.Background(), msg.Text, userID, msg.SessionID, func(token string) {
		if err := client.SendEvent(types.NewChatTokenEvent(token)); err != nil {
			h.logger.Debug("dropping token, client gone", "user_id", userID)
		}
	})

	if err := client.SendEvent(types.NewChatEndEvent()); err != nil {
		h.logger.Debug("failed to send end marker", "user_id", userID)
	}
}
