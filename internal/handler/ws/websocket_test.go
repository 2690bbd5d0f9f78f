package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirex-ai/hirex/backend/internal/analysis/topic"
	"github.com/hirex-ai/hirex/backend/internal/service/ai"
	"github.com/hirex-ai/hirex/backend/internal/service/ai/aitest"
	"github.com/hirex-ai/hirex/backend/internal/service/assistant"
	chatservice "github.com/hirex-ai/hirex/backend/internal/service/chat"
)

type received struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	Data      json.RawMessage `json:"data"`
}

func setup(t *testing.T) (*httptest.Server, *chatservice.Service, string) {
	t.Helper()
	ctx := context.Background()

	aiSvc, err := ai.NewService(ctx, &aitest.ChatModel{Reply: "Tailor your cover letter."}, ai.Options{}, nil)
	require.NoError(t, err)

	chatSvc := chatservice.NewService()
	session, err := chatSvc.CreateSession(ctx)
	require.NoError(t, err)

	dispatcher := assistant.NewDispatcher(topic.NewGate(topic.DefaultKeywords...), chatSvc, aiSvc, nil)
	r := chi.NewRouter()
	New(chatSvc, dispatcher, nil).RegisterRoutes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, chatSvc, session.ID
}

func dial(t *testing.T, srv *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	first := readMessage(t, conn)
	require.Equal(t, "result", first.Type)
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) received {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg received
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func readUntil(t *testing.T, conn *websocket.Conn, msgType string) received {
	t.Helper()
	for i := 0; i < 16; i++ {
		msg := readMessage(t, conn)
		if msg.Type == msgType {
			return msg
		}
	}
	t.Fatalf("no %s message received", msgType)
	return received{}
}

func TestWebSocketMessageRoundTrip(t *testing.T) {
	srv, chatSvc, sessionID := setup(t)
	conn := dial(t, srv, sessionID)

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type": "message",
		"data": map[string]string{"text": "job application help"},
	}))

	reply := readUntil(t, conn, "reply")
	var exchange assistant.Exchange
	require.NoError(t, json.Unmarshal(reply.Data, &exchange))
	assert.True(t, exchange.InScope)
	assert.Equal(t, "Tailor your cover letter.", exchange.Assistant.Text)

	turns, err := chatSvc.Transcript(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Len(t, turns, 2)
}

func TestWebSocketClearAndHistory(t *testing.T) {
	srv, _, sessionID := setup(t)
	conn := dial(t, srv, sessionID)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "message", "data": map[string]string{"text": "sing a song"}}))
	reply := readUntil(t, conn, "reply")
	var exchange assistant.Exchange
	require.NoError(t, json.Unmarshal(reply.Data, &exchange))
	assert.Equal(t, topic.OutOfScopeReply, exchange.Assistant.Text)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "clear"}))
	assert.Equal(t, "cleared", readMessage(t, conn).Type)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "history"}))
	history := readMessage(t, conn)
	require.Equal(t, "history", history.Type)
	var body struct {
		Turns []json.RawMessage `json:"turns"`
	}
	require.NoError(t, json.Unmarshal(history.Data, &body))
	assert.Empty(t, body.Turns)
}

func TestWebSocketRejectsMismatchedSession(t *testing.T) {
	srv, _, sessionID := setup(t)
	conn := dial(t, srv, sessionID)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "history", "sessionId": "other"}))
	assert.Equal(t, "error", readMessage(t, conn).Type)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "dance"}))
	assert.Equal(t, "error", readMessage(t, conn).Type)
}

func TestWebSocketUnknownSession(t *testing.T) {
	srv, _, _ := setup(t)

	resp, err := http.Get(srv.URL + "/ws/missing")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
