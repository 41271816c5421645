package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockClient(hub *Hub, areaID int64) *Client {
	return &Client{hub: hub, areaID: areaID, send: make(chan []byte, 4)}
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func TestHub_BroadcastReachesOnlyTheArea(t *testing.T) {
	hub := startHub(t)
	areaOne := mockClient(hub, 1)
	areaTwo := mockClient(hub, 2)
	hub.register <- areaOne
	hub.register <- areaTwo
	require.Eventually(t, func() bool { return hub.Subscribers(1) == 1 && hub.Subscribers(2) == 1 }, time.Second, 5*time.Millisecond)

	hub.Broadcast(1, Event{Type: "schedule.quota_changed", Payload: json.RawMessage(`{"id":7}`)})

	select {
	case msg := <-areaOne.send:
		var event Event
		require.NoError(t, json.Unmarshal(msg, &event))
		assert.Equal(t, "schedule.quota_changed", event.Type)
		assert.JSONEq(t, `{"id":7}`, string(event.Payload))
	case <-time.After(time.Second):
		t.Fatal("area 1 client did not receive the event")
	}
	select {
	case <-areaTwo.send:
		t.Fatal("area 2 client received an event for area 1")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestHub_UnregisterClosesSendAndDropsEmptyRoom(t *testing.T) {
	hub := startHub(t)
	client := mockClient(hub, 3)
	hub.register <- client
	hub.unregister <- client

	require.Eventually(t, func() bool { return hub.Subscribers(3) == 0 }, time.Second, 5*time.Millisecond)
	_, open := <-client.send
	assert.False(t, open)
}

func TestHub_SlowConsumerIsDropped(t *testing.T) {
	hub := startHub(t)
	slow := &Client{hub: hub, areaID: 4, send: make(chan []byte)}
	hub.register <- slow
	require.Eventually(t, func() bool { return hub.Subscribers(4) == 1 }, time.Second, 5*time.Millisecond)

	hub.Broadcast(4, Event{Type: "ping", Payload: json.RawMessage(`{}`)})
	require.Eventually(t, func() bool { return hub.Subscribers(4) == 0 }, time.Second, 5*time.Millisecond)
}

func TestServe_DeliversOverWebsocket(t *testing.T) {
	hub := startHub(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r, 9)
	}))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.Subscribers(9) == 1 }, time.Second, 5*time.Millisecond)

	hub.Broadcast(9, Event{Type: "schedule.quota_changed", Payload: json.RawMessage(`{"remaining_quota":2}`)})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event Event
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, "schedule.quota_changed", event.Type)
}
