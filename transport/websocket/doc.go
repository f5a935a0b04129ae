// Package websocket pushes session updates to browser and terminal watchers.
//
// A Hub owns every connection. Clients attach to one session with
// GET /ws?session=<id> and only listen; the server never reads game commands
// from the socket.
//
// Outgoing messages are JSON objects, one per frame:
//
//	{"session_id": "ab12", "event": "state_update", "game_state": {...}}
//	{"session_id": "ab12", "event": "completed", "data": {"moves": 7}}
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//	hub.BroadcastToSession(id, state)
//
// Broadcasts are queued and never block the caller. Registration, delivery and
// cleanup all run on the Run goroutine, and a client that cannot keep up is
// disconnected.
package websocket
