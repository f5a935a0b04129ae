// Package api provides the HTTP REST API for Traska space race sessions.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session and generate its first map ({config_id?, seed?})
//   - GET /api/sessions - List sessions (?sort=created|last_accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current state with legal moves
//   - POST /api/sessions/{id}/move - Fly to {x, y}
//   - POST /api/sessions/{id}/inertia - Repeat the previous vector
//   - POST /api/sessions/{id}/restart - Back to the start of the same map
//   - POST /api/sessions/{id}/new-map - Generate a fresh map
//   - POST /api/sessions/{id}/complete - Record the finished run under {name}
//   - GET /api/sessions/{id}/history - Paginated move history (?page&limit&order)
//   - GET /api/sessions/{id}/hint - Fewest-move plan from the current state
//
// Scoreboard:
//   - GET /api/scoreboard - Ranked entries as JSON
//   - GET /api/scoreboard.csv - The same ranking as CSV
//
// Configuration:
//   - GET /api/configs - List available configurations
//   - GET /api/configs/{name} - Get one configuration
//
// Live updates:
//   - GET /ws?session={id} - WebSocket feed of state_update and completed events
//
// Move and inertia requests always answer 200 with a MoveResult once the
// session exists. A move the rules reject carries success=false and an error
// code (out_of_bounds, invalid_target, insufficient_energy, game_won, no_map)
// and leaves the state untouched. Unknown sessions and configs answer 404,
// recording a run that was not completed answers 409.
//
// Errors are returned as JSON:
//
//	{"error": "error message"}
package api
