package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/traska-space-race/game/engine"
	"github.com/wricardo/traska-space-race/game/scoreboard"
	"github.com/wricardo/traska-space-race/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Traska Space Race",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Traska Space Race - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Fly the ship (@) from the start (S) to the finish (F) along the path in as few moves as possible.
Every move is a jump to a target cell; changing speed or direction costs energy, coasting is free.

AVAILABLE TOOLS:
- create_session: Create a new session and generate a map
- game_state: Current grid, energy, vector and legal targets
- move: Fly to a target cell (x, y)
- inertia_move: Repeat the previous vector
- restart: Back to the start of the same map
- new_map: Generate a fresh map
- hint: Fewest-move plan from the current state
- record_completion: Put a finished run on the scoreboard
- scoreboard: Show the ranking
- list_configs: List available configurations
- game_instructions: Full rules

NOTE: The 'intent' parameter on move serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func sessionOnlySchema() mcp.ToolInputSchema {
	return mcp.ToolInputSchema{
		Type:       "object",
		Properties: map[string]interface{}{"session_id": sessionProperty()},
		Required:   []string{"session_id"},
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session and generate its first map",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Config to use (optional, see list_configs)",
				},
				"seed": map[string]interface{}{
					"type":        "integer",
					"description": "Map seed for reproducible maps (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current game state with the grid and legal targets",
		InputSchema: sessionOnlySchema(),
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Fly the ship to a target cell. The target must be a legal move.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "Target column (0-based)",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Target row (0-based)",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "inertia_move",
		Description: "Repeat the previous vector at no energy cost",
		InputSchema: sessionOnlySchema(),
	}, c.handleInertiaMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "restart",
		Description: "Put the ship back at the start of the current map",
		InputSchema: sessionOnlySchema(),
	}, c.handleRestart)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "new_map",
		Description: "Generate a fresh map for the session",
		InputSchema: sessionOnlySchema(),
	}, c.handleNewMap)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "hint",
		Description: "Get the fewest-move plan from the current state",
		InputSchema: sessionOnlySchema(),
	}, c.handleHint)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "record_completion",
		Description: "Record a finished run on the scoreboard under a player name",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Player name for the scoreboard",
				},
			},
			Required: []string{"session_id", "name"},
		},
	}, c.handleRecordCompletion)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "scoreboard",
		Description: "Show the scoreboard, fewest moves first",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleScoreboard)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available game configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body := service.CreateOptions{
		ConfigID: request.GetString("config_id", ""),
	}
	if seed := request.GetInt("seed", 0); seed > 0 {
		body.Seed = uint64(seed)
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s", session.ID, session.ConfigName, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")
	args := request.GetArguments()
	if _, ok := args["x"]; !ok {
		return mcp.NewToolResultError("x is required"), nil
	}
	if _, ok := args["y"]; !ok {
		return mcp.NewToolResultError("y is required"), nil
	}

	body := map[string]int{
		"x": request.GetInt("x", 0),
		"y": request.GetInt("y", 0),
	}

	var result service.MoveResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleInertiaMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")

	var result service.MoveResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/inertia"), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleRestart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.stateAction(ctx, request.GetString("session_id", ""), "/restart")
}

func (c *Client) handleNewMap(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.stateAction(ctx, request.GetString("session_id", ""), "/new-map")
}

func (c *Client) stateAction(ctx context.Context, sessionID, suffix string) (*mcp.CallToolResult, error) {
	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, suffix), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleHint(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")

	var hint service.HintResult
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/hint"), nil, &hint); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHint(&hint)), nil
}

func (c *Client) handleRecordCompletion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")
	name := request.GetString("name", "")

	var result service.CompletionResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/complete"), map[string]string{"name": name}, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	if result.Rank > 0 {
		b.WriteString(fmt.Sprintf("%s placed #%d with %d moves\n\n", result.Entry.Name, result.Rank, result.Entry.Moves))
	} else {
		b.WriteString(fmt.Sprintf("%d moves did not make the scoreboard\n\n", result.Entry.Moves))
	}
	b.WriteString(formatScoreboard(result.Scoreboard))
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleScoreboard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Entries []scoreboard.Entry `json:"entries"`
	}
	if err := c.apiCall(ctx, "GET", "/api/scoreboard", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatScoreboard(response.Entries)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		b.WriteString(fmt.Sprintf("• %s (config_id: %s)\n  %s\n  Grid: %dx%d, Energy: %d, Radius: %d\n\n",
			config.Name, config.ConfigID, config.Description,
			config.GridSize, config.GridSize, config.InitialEnergy, config.SearchRadius))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `🚀 Traska Space Race - Complete Instructions

GAME OBJECTIVE:
Fly from the start (S) to the finish (F) in as few moves as possible.
The map is a single path of cells winding through empty space.

MOVEMENT:
• A move is a jump to any path cell within the search radius (default 2) of the ship
• The jump is a vector (dx, dy) from your current position
• You can never land on empty space (#) or stay where you are

ENERGY:
• The first move of a run costs |dx| + |dy|
• Every later move costs |dx - pdx| + |dy - pdy|, the change from your previous vector
• Repeating the previous vector is free, so build up speed and coast
• A move is only legal when you can afford it
• Landing on a fuel cell (digit) adds its fuel to your energy and empties the cell

INERTIA:
• inertia_move repeats the previous vector for free
• It is declined when you have not moved yet or the projected cell is off the grid
• It is rejected when the projected cell is empty space

GRID LEGEND:
• @ - Your ship
• S - Start
• F - Finish
• . - Path
• 2-9 - Fuel cell with that much fuel (+ means 10 or more)
• # - Empty space (impassable)
• * - Legal target for your next move (in game_state)

STRATEGY:
1. Read legal targets from game_state; only those moves are accepted
2. Straight stretches are cheap: accelerate once, then coast with inertia_move
3. Detour for fuel when the next turn costs more than you have
4. Use hint when stuck: it returns the fewest-move plan from your current state

WINNING:
• Reaching F ends the run; no further moves are accepted
• Call record_completion with your name to enter the scoreboard
• restart retries the same map, new_map generates another one

SESSIONS:
• Each session has a unique 4-character ID and its own map
• Sessions created with the same seed share maps

Good luck, pilot! 🛰️`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}
	if state.Status == engine.StatusIdle || len(state.Grid) == 0 {
		return "No map generated yet. Use new_map to generate one."
	}

	var b strings.Builder
	vector := "none"
	if state.Vector != nil {
		vector = fmt.Sprintf("(%d,%d)", state.Vector.DX, state.Vector.DY)
	}
	b.WriteString(fmt.Sprintf("Position: (%d,%d) | Energy: %d | Vector: %s | Moves: %d | Finish: (%d,%d)\n",
		state.ShipPos.X, state.ShipPos.Y, state.Energy, vector, state.MoveCount, state.Finish.X, state.Finish.Y))

	if pos, dist, ok := engine.FindNearestFuel(state); ok {
		b.WriteString(fmt.Sprintf("Nearest fuel: (%d,%d) %d cells away | Fuel left: %d\n",
			pos.X, pos.Y, dist, engine.TotalFuel(state.Grid)))
	}
	b.WriteString(fmt.Sprintf("Finish distance: %d jumps of 1\n\n", engine.ChebyshevDistance(state.ShipPos, state.Finish)))

	legal := make(map[engine.Position]bool, len(state.LegalMoves))
	for _, p := range state.LegalMoves {
		legal[p] = true
	}

	for y, row := range state.Grid {
		for x, cell := range row {
			p := engine.Position{X: x, Y: y}
			switch {
			case p == state.ShipPos:
				b.WriteByte('@')
			case legal[p]:
				b.WriteByte('*')
			default:
				b.WriteByte(engine.CellChar(cell))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("\nLegal targets: ")
	b.WriteString(formatPositions(state.LegalMoves))
	b.WriteString("\n")

	if state.Status == engine.StatusWon {
		b.WriteString("\n🏁 FINISH REACHED! Use record_completion to enter the scoreboard.")
	} else if len(state.LegalMoves) == 0 {
		b.WriteString("\n⚠️ No legal moves left. Use restart or new_map.")
	}

	if state.Message != "" {
		b.WriteString(fmt.Sprintf("\nMessage: %s", state.Message))
	}
	return b.String()
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder
	switch {
	case result.Success:
		b.WriteString("✓ Move successful\n")
	case result.Declined:
		b.WriteString("– Inertia declined: nothing to coast on\n")
	default:
		b.WriteString(fmt.Sprintf("✗ Move rejected (%s)\n", result.Error))
	}

	if o := result.Outcome; o != nil && o.Success {
		b.WriteString(fmt.Sprintf("Step: (%d,%d)→(%d,%d) vector=(%d,%d) cost=%d energy %d→%d\n",
			o.From.X, o.From.Y, o.To.X, o.To.Y, o.Vector.DX, o.Vector.DY, o.Cost, o.EnergyBefore, o.EnergyAfter))
	}

	if len(result.Events) > 0 {
		b.WriteString("Events:\n")
		for _, event := range result.Events {
			b.WriteString(fmt.Sprintf("- %s: %s\n", event.Type, event.Message))
		}
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatHint(hint *service.HintResult) string {
	if !hint.Reachable {
		return "The finish cannot be reached from here. Use restart or new_map."
	}
	if hint.Moves == 0 {
		return "You are already at the finish."
	}
	return fmt.Sprintf("Finish reachable in %d moves.\nNext target: (%d,%d)\nPlan: %s",
		hint.Moves, hint.Next.X, hint.Next.Y, formatPositions(hint.Targets))
}

func formatScoreboard(entries []scoreboard.Entry) string {
	if len(entries) == 0 {
		return "Scoreboard is empty"
	}
	var b strings.Builder
	b.WriteString("Scoreboard:\n")
	for i, e := range entries {
		b.WriteString(fmt.Sprintf("%2d. %-16s %d moves\n", i+1, e.Name, e.Moves))
	}
	return b.String()
}

func formatPositions(positions []engine.Position) string {
	if len(positions) == 0 {
		return "none"
	}
	parts := make([]string, len(positions))
	for i, p := range positions {
		parts[i] = fmt.Sprintf("(%d,%d)", p.X, p.Y)
	}
	return strings.Join(parts, " ")
}
