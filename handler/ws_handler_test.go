package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	services "github.com/nishcheyk/infinity-workspace/service"
	"github.com/nishcheyk/infinity-workspace/types"
	"github.com/nishcheyk/infinity-workspace/utils"
)

type stubRetriever struct{}

func (stubRetriever) Retrieve(ctx context.Context, query, userID string, limit int) ([]types.RetrievedChunk, error) {
	return nil, nil
}

type stubAI struct {
	tokens []string
}

func (s *stubAI) Chat(ctx context.Context, prompt string) (string, error) {
	return "Title", nil
}

func (s *stubAI) ChatStream(ctx context.Context, prompt string, handler types.StreamHandler) error {
	for _, token := range s.tokens {
		handler(token)
	}
	return nil
}

type stubChatRepo struct{}

func (stubChatRepo) CreateSession(ctx context.Context, session *types.ChatSession) error { return nil }
func (stubChatRepo) GetSession(ctx context.Context, id string) (*types.ChatSession, error) {
	return nil, nil
}
func (stubChatRepo) GetUserSession(ctx context.Context, id, userID string) (*types.ChatSession, error) {
	return nil, nil
}
func (stubChatRepo) ListSessions(ctx context.Context, userID string) ([]*types.ChatSession, error) {
	return nil, nil
}
func (stubChatRepo) UpdateSessionTitle(ctx context.Context, id, title string) error { return nil }
func (stubChatRepo) TouchSession(ctx context.Context, id string) error              { return nil }
func (stubChatRepo) DeleteSession(ctx context.Context, id string) error             { return nil }
func (stubChatRepo) CreateMessage(ctx context.Context, message *types.ChatMessage) error {
	return nil
}
func (stubChatRepo) ListMessages(ctx context.Context, sessionID string, limit int) ([]types.ChatMessage, error) {
	return nil, nil
}
func (stubChatRepo) DeleteMessages(ctx context.Context, sessionID string) error { return nil }

func newWSTestServer(t *testing.T, ai services.AIService) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	chat := services.NewChatService(stubRetriever{}, ai, stubChatRepo{})
	wsHandler := NewWSHandler(services.NewHub(), chat)

	router := gin.New()
	router.GET("/ws", wsHandler.ServeWS)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func dialWS(t *testing.T, server *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event map[string]interface{}
	require.NoError(t, conn.ReadJSON(&event))
	return event
}

func TestServeWSStatelessChatMessage(t *testing.T) {
	server := newWSTestServer(t, &stubAI{tokens: []string{"Hel", "lo"}})
	token, err := utils.GenerateAccessToken(&types.User{ID: "user-1", Email: "a@b.c"})
	require.NoError(t, err)
	conn := dialWS(t, server, token)

	// No session_id: the exchange still runs, stateless.
	require.NoError(t, conn.WriteJSON(types.ChatMessageEvent{
		Type: types.EventChatMessage,
		Text: "hi",
	}))

	assert.Equal(t, types.EventChatStart, readEvent(t, conn)["type"])

	var reply strings.Builder
	for {
		event := readEvent(t, conn)
		if event["type"] == types.EventChatEnd {
			break
		}
		require.Equal(t, types.EventChatToken, event["type"])
		reply.WriteString(event["token"].(string))
	}
	assert.Equal(t, "Hello", reply.String())
}

func TestServeWSSessionChatMessage(t *testing.T) {
	server := newWSTestServer(t, &stubAI{tokens: []string{"ok"}})
	token, err := utils.GenerateAccessToken(&types.User{ID: "user-1", Email: "a@b.c"})
	require.NoError(t, err)
	conn := dialWS(t, server, token)

	require.NoError(t, conn.WriteJSON(types.ChatMessageEvent{
		Type:      types.EventChatMessage,
		Text:      "hi",
		SessionID: "s1",
	}))

	assert.Equal(t, types.EventChatStart, readEvent(t, conn)["type"])
	assert.Equal(t, types.EventChatToken, readEvent(t, conn)["type"])
	assert.Equal(t, types.EventChatEnd, readEvent(t, conn)["type"])
}

func TestServeWSEmptyTextIgnored(t *testing.T) {
	server := newWSTestServer(t, &stubAI{tokens: []string{"ok"}})
	token, err := utils.GenerateAccessToken(&types.User{ID: "user-1", Email: "a@b.c"})
	require.NoError(t, err)
	conn := dialWS(t, server, token)

	require.NoError(t, conn.WriteJSON(types.ChatMessageEvent{
		Type: types.EventChatMessage,
		Text: "",
	}))
	// Follow with a real message; the empty one must produce nothing.
	require.NoError(t, conn.WriteJSON(types.ChatMessageEvent{
		Type: types.EventChatMessage,
		Text: "real",
	}))

	assert.Equal(t, types.EventChatStart, readEvent(t, conn)["type"])
}

func TestServeWSRejectsMissingToken(t *testing.T) {
	server := newWSTestServer(t, &stubAI{})

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)

	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
