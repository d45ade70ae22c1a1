package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil)
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub
}

func dialUser(t *testing.T, hub *Hub, userID uuid.UUID) *websocket.Conn {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(hub, conn, userID)
		if !hub.Register(client) {
			conn.Close()
			return
		}
		go client.WritePump()
		go client.ReadPump()
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHub_NotifyReachesOnlyTargetUser(t *testing.T) {
	hub := startHub(t)
	alice, bob := uuid.New(), uuid.New()

	aliceConn := dialUser(t, hub, alice)
	dialUser(t, hub, bob)
	require.Eventually(t, func() bool {
		return hub.Connections(alice) == 1 && hub.Connections(bob) == 1
	}, time.Second, 10*time.Millisecond)

	n := hub.Notify(alice, TypePredictionSaved, map[string]string{"match_id": "m1"})
	assert.Equal(t, 1, n)

	aliceConn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := aliceConn.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Type    string            `json:"type"`
		Payload map[string]string `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, TypePredictionSaved, msg.Type)
	assert.Equal(t, "m1", msg.Payload["match_id"])
}

func TestHub_NotifyWithoutConnectionIsNoop(t *testing.T) {
	hub := startHub(t)
	assert.Equal(t, 0, hub.Notify(uuid.New(), TypePredictionUpdated, nil))
}

func TestHub_DisconnectRemovesClient(t *testing.T) {
	hub := startHub(t)
	userID := uuid.New()

	conn := dialUser(t, hub, userID)
	require.Eventually(t, func() bool { return hub.Connections(userID) == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Connections(userID) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_RegisterAfterStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil)
	stopped := make(chan struct{})
	go func() { hub.Run(ctx); close(stopped) }()
	cancel()
	<-stopped

	assert.False(t, hub.Register(&Client{hub: hub, userID: uuid.New(), send: make(chan []byte)}))
}
