package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wricardo/traska-space-race/game/engine"
)

func newTestClient(hub *Hub, sessionID string) *Client {
	return &Client{
		hub:       hub,
		sessionID: sessionID,
		send:      make(chan []byte, sendBuffer),
	}
}

func encode(t *testing.T, message *Message) *envelope {
	t.Helper()
	data, err := json.Marshal(message)
	if err != nil {
		t.Fatalf("Failed to marshal message: %v", err)
	}
	return &envelope{sessionID: message.SessionID, event: message.Event, data: data}
}

func waitForClients(t *testing.T, hub *Hub, sessionID string, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if hub.ClientCount(sessionID) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Expected %d clients in session %s, got %d", want, sessionID, hub.ClientCount(sessionID))
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "test-session")

	hub.registerClient(client)

	if !hub.sessions["test-session"][client] {
		t.Error("Client was not registered in session")
	}
	if len(hub.sessions["test-session"]) != 1 {
		t.Errorf("Expected 1 client in session, got %d", len(hub.sessions["test-session"]))
	}
}

func TestHubUnregisterClient(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "test-session")

	hub.registerClient(client)
	hub.unregisterClient(client)

	if _, exists := hub.sessions["test-session"]; exists {
		t.Error("Session should have been cleaned up after last client unregistered")
	}
	if _, ok := <-client.send; ok {
		t.Error("Expected send channel to be closed")
	}

	// second unregister is a no-op
	hub.unregisterClient(client)
}

func TestHubMultipleClientsInSession(t *testing.T) {
	hub := NewHub()
	sessionID := "multi-client-session"

	client1 := newTestClient(hub, sessionID)
	client2 := newTestClient(hub, sessionID)
	hub.registerClient(client1)
	hub.registerClient(client2)

	if len(hub.sessions[sessionID]) != 2 {
		t.Errorf("Expected 2 clients in session, got %d", len(hub.sessions[sessionID]))
	}

	hub.unregisterClient(client1)

	if len(hub.sessions[sessionID]) != 1 {
		t.Errorf("Expected 1 client remaining in session, got %d", len(hub.sessions[sessionID]))
	}
	if !hub.sessions[sessionID][client2] {
		t.Error("client2 should still be registered")
	}
}

func TestHubBroadcastMessage(t *testing.T) {
	hub := NewHub()
	watcher := newTestClient(hub, "race")
	other := newTestClient(hub, "other")
	hub.registerClient(watcher)
	hub.registerClient(other)

	hub.broadcastMessage(encode(t, &Message{
		SessionID: "race",
		Event:     EventStateUpdate,
		GameState: &engine.GameState{ShipPos: engine.Position{X: 5, Y: 3}, Energy: 4},
	}))

	select {
	case data := <-watcher.send:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		if message.Event != EventStateUpdate {
			t.Errorf("Expected event %s, got %s", EventStateUpdate, message.Event)
		}
		if message.GameState.ShipPos != (engine.Position{X: 5, Y: 3}) || message.GameState.Energy != 4 {
			t.Errorf("GameState not correctly transmitted: %+v", message.GameState)
		}
	default:
		t.Fatal("Expected a queued message")
	}

	select {
	case <-other.send:
		t.Error("Client of another session should not receive the message")
	default:
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub()
	client := &Client{hub: hub, sessionID: "slow", send: make(chan []byte)}
	hub.registerClient(client)

	hub.broadcastMessage(encode(t, &Message{SessionID: "slow", Event: EventStateUpdate}))

	if _, exists := hub.sessions["slow"]; exists {
		t.Error("Expected slow client to be unregistered")
	}
}

func TestHubPublishQueues(t *testing.T) {
	hub := NewHub()

	hub.BroadcastEvent("event-test", EventCompleted, "test-data")

	select {
	case env := <-hub.broadcast:
		if env.sessionID != "event-test" || env.event != EventCompleted {
			t.Errorf("Unexpected envelope %+v", env)
		}
		var message Message
		if err := json.Unmarshal(env.data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		if message.Data != "test-data" {
			t.Errorf("Expected data 'test-data', got %v", message.Data)
		}
	default:
		t.Fatal("Expected the event to be queued")
	}
}

func TestHubBroadcastEncodesAtPublish(t *testing.T) {
	hub := NewHub()
	state := &engine.GameState{Energy: 4, LegalMoves: []engine.Position{{X: 1, Y: 0}}}

	hub.BroadcastToSession("snapshot", state)
	state.Energy = 0
	state.LegalMoves[0] = engine.Position{X: 9, Y: 9}

	env := <-hub.broadcast
	var message Message
	if err := json.Unmarshal(env.data, &message); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}
	if message.GameState.Energy != 4 || message.GameState.LegalMoves[0] != (engine.Position{X: 1, Y: 0}) {
		t.Errorf("Queued state changed after publish: %+v", message.GameState)
	}
}

func TestHubAfterShutdown(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("session"))
	}))
	defer server.Close()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=down"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()
	waitForClients(t, hub, "down", 1)

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}

	counted := make(chan int, 1)
	go func() { counted <- hub.ClientCount("down") }()
	select {
	case n := <-counted:
		if n != 0 {
			t.Errorf("Expected 0 clients after shutdown, got %d", n)
		}
	case <-time.After(time.Second):
		t.Fatal("ClientCount blocked after shutdown")
	}

	// The open connection is closed by the hub and its read pump exits
	conn.SetReadDeadline(time.Now().Add(time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("Expected the connection to be closed")
	}

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("Expected new connections to be refused")
	}
	if resp == nil || resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %v", resp)
	}
}

func TestWebSocketLifecycle(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("session"))
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=ws-test"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}

	waitForClients(t, hub, "ws-test", 1)

	hub.BroadcastToSession("ws-test", &engine.GameState{ShipPos: engine.Position{X: 1, Y: 2}, MoveCount: 3})
	hub.BroadcastEvent("ws-test", EventCompleted, map[string]int{"moves": 3})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	for _, want := range []string{EventStateUpdate, EventCompleted} {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("Failed to read WebSocket message: %v", err)
		}
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		if message.Event != want {
			t.Errorf("Expected event %s, got %s", want, message.Event)
		}
		if want == EventStateUpdate && message.GameState.MoveCount != 3 {
			t.Errorf("Expected move count 3, got %d", message.GameState.MoveCount)
		}
	}

	conn.Close()
	waitForClients(t, hub, "ws-test", 0)
}
