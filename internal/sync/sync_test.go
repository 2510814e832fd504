package sync

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"malstats/pkg/models"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 10*time.Millisecond)
}

func TestTCPBroadcast(t *testing.T) {
	hub := NewHub(nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewServer("", hub, nil).Serve(ctx, ln) }()

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	rd := bufio.NewReader(conn)

	line, err := rd.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, line, `"type":"welcome"`)
	waitFor(t, func() bool { return hub.Stats().TCPClients == 1 })

	hub.SnapshotImported(&models.Snapshot{ID: "s1", UserName: "alice", Source: "api", AnimeCount: 3})

	line, err = rd.ReadString('\n')
	require.NoError(t, err)
	var ev SnapshotEvent
	require.NoError(t, json.Unmarshal([]byte(line), &ev))
	assert.Equal(t, EventSnapshotImported, ev.Type)
	assert.Equal(t, "s1", ev.SnapshotID)
	assert.Equal(t, 3, ev.AnimeCount)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServeCancelDisconnectsClients(t *testing.T) {
	hub := NewHub(nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewServer("", hub, nil).Serve(ctx, ln) }()

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	rd := bufio.NewReader(conn)
	_, err = rd.ReadString('\n')
	require.NoError(t, err)
	waitFor(t, func() bool { return hub.Stats().TCPClients == 1 })

	cancel()
	require.NoError(t, <-done)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, err = rd.ReadString('\n')
	assert.ErrorIs(t, err, io.EOF)
	waitFor(t, func() bool { return hub.Stats().TCPClients == 0 })
}

func TestWebsocketBroadcast(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub(nil)
	r := gin.New()
	r.GET("/ws", WSHandler(hub))
	srv := httptest.NewServer(r)
	defer srv.Close()

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer ws.Close()

	_, msg, err := ws.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(msg), `"transport":"websocket"`)
	waitFor(t, func() bool { return hub.Stats().WSClients == 1 })

	hub.SnapshotDeleted(&models.Snapshot{ID: "s2", UserName: "bob"})

	_, msg, err = ws.ReadMessage()
	require.NoError(t, err)
	var ev SnapshotEvent
	require.NoError(t, json.Unmarshal(msg, &ev))
	assert.Equal(t, EventSnapshotDeleted, ev.Type)
	assert.Equal(t, "bob", ev.UserName)

	require.NoError(t, ws.Close())
	waitFor(t, func() bool { return hub.Stats().WSClients == 0 })
}
