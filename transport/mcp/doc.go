// Package mcp exposes Traska space race sessions as Model Context Protocol tools.
//
// The Client is a thin proxy: every tool call becomes a request to the REST
// API and the JSON answer is rendered as text for the agent.
//
// MCP Tools:
//   - create_session: New session with optional config_id and seed
//   - game_state: Grid with the ship, legal targets, energy and vector
//   - move: Fly to a target cell (x, y)
//   - inertia_move: Repeat the previous vector
//   - restart: Back to the start of the same map
//   - new_map: Generate a fresh map
//   - hint: Fewest-move plan from the current state
//   - record_completion: Put a finished run on the scoreboard
//   - scoreboard: Ranking, fewest moves first
//   - list_configs: Available configurations
//   - game_instructions: Full rules
//
// Transport Modes:
//   - Stdio: the mcp command serves the tools on stdin/stdout
//   - HTTP: the serve command mounts them at /mcp
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
