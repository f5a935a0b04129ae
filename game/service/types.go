package service

import (
	"time"

	"github.com/wricardo/traska-space-race/game/engine"
	"github.com/wricardo/traska-space-race/game/scoreboard"
)

// CreateOptions selects the rules and map seed of a new session
type CreateOptions struct {
	ConfigID string `json:"config_id,omitempty"`
	Seed     uint64 `json:"seed,omitempty"` // 0 draws maps from the clock
}

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID                string             `json:"id"`
	ConfigName        string             `json:"config_name"`
	CreatedAt         time.Time          `json:"created_at"`
	LastAccessedAt    time.Time          `json:"last_accessed_at"`
	GameState         *engine.GameState  `json:"game_state"`
	GameConfig        *engine.GameConfig `json:"game_config"`
	PendingCompletion *Completion        `json:"pending_completion,omitempty"`
}

// Completion is a finished run waiting for the player's name
type Completion struct {
	Moves       int       `json:"moves"`
	ConfigName  string    `json:"config_name"`
	CompletedAt time.Time `json:"completed_at"`
}

// Error codes reported by a rejected move
const (
	CodeNoMap              = "no_map"
	CodeGameWon            = "game_won"
	CodeOutOfBounds        = "out_of_bounds"
	CodeInvalidTarget      = "invalid_target"
	CodeInsufficientEnergy = "insufficient_energy"
)

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success   bool                `json:"success"`
	Declined  bool                `json:"declined,omitempty"` // inertia move with nothing to repeat
	Error     string              `json:"error,omitempty"`
	GameState *engine.GameState   `json:"game_state"`
	Message   string              `json:"message"`
	Events    []GameEvent         `json:"events,omitempty"`
	Outcome   *engine.MoveOutcome `json:"outcome,omitempty"`
	Completed bool                `json:"completed,omitempty"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string          `json:"type"` // "move", "inertia", "fuel_collected", "victory", "restart", "new_map"
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
	Position  engine.Position `json:"position,omitempty"`
}

// CompletionResult is the scoreboard after recording a finished run
type CompletionResult struct {
	Entry      scoreboard.Entry   `json:"entry"`
	Rank       int                `json:"rank"` // 1-based, 0 when the run did not make the board
	Scoreboard []scoreboard.Entry `json:"scoreboard"`
}

// HintResult is the solver's answer for the current state
type HintResult struct {
	Reachable bool              `json:"reachable"`
	Moves     int               `json:"moves,omitempty"`
	Next      *engine.Position  `json:"next,omitempty"`
	Targets   []engine.Position `json:"targets,omitempty"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename      string `json:"filename"`
	ConfigID      string `json:"config_id"` // The identifier to use for session creation
	Name          string `json:"name"`      // Display name
	Description   string `json:"description"`
	GridSize      int    `json:"grid_size"`
	InitialEnergy int    `json:"initial_energy"`
	SearchRadius  int    `json:"search_radius"`
}
