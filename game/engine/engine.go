package engine

import (
	"errors"
	"fmt"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game lifecycle
	NewGame() *GameState
	Restart() (*GameState, error)
	GetState() *GameState
	SetState(state *GameState) error
	Status() Status
	IsWon() bool

	// Movement operations
	Move(target Position) (*MoveOutcome, error)
	InertiaMove() (*MoveOutcome, error)
	CheckMove(target Position) error
	LegalMoves() []Position
	Solve() (*Plan, bool)

	// Accessors
	GetEnergy() int
	GetShipPosition() Position
	GetMoveCount() int

	// Configuration
	GetConfig() *GameConfig
	SetConfig(config *GameConfig) error

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry
}

// GameEngine implements the Engine interface
type GameEngine struct {
	state  *GameState
	config *GameConfig
	rng    RandomSource
}

// NewEngine creates an idle game engine with the provided configuration.
// Maps are generated from the config seed when set, otherwise from the clock.
func NewEngine(config *GameConfig) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	var rng RandomSource
	if config.Seed != 0 {
		rng = NewRandomSource(config.Seed)
	} else {
		rng = newTimeSeededSource()
	}
	return NewEngineWithSource(config, rng)
}

// NewEngineWithSource creates an idle game engine that draws maps from rng
func NewEngineWithSource(config *GameConfig, rng RandomSource) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, errors.New("random source cannot be nil")
	}

	return &GameEngine{
		config: config,
		rng:    rng,
		state:  newIdleState(config),
	}, nil
}

// NewEngineWithDefaults creates an idle game engine with the classic configuration
func NewEngineWithDefaults() *GameEngine {
	config := DefaultGameConfig()
	return &GameEngine{
		config: config,
		rng:    newTimeSeededSource(),
		state:  newIdleState(config),
	}
}

// NewGame generates a fresh map and starts a new run on it
func (e *GameEngine) NewGame() *GameState {
	grid, path := GenerateMap(e.config.GridSize, e.config.FuelMin, e.config.FuelMax, e.rng)
	e.state.Grid = grid
	e.state.Path = path
	e.state.Finish = path[len(path)-1]
	e.resetRun()
	e.state.Message = formatMessage(e.config.Messages.Welcome, "Welcome aboard! Reach the finish with as few moves as possible.")
	return e.state
}

// LoadMap starts a new run on a prepared grid and path.
// The path must lead from the start cell to the finish cell.
func (e *GameEngine) LoadMap(grid Grid, path []Position) error {
	if len(path) == 0 {
		return errors.New("path cannot be empty")
	}
	for _, p := range path {
		if !grid.InBounds(p) || grid.At(p).IsEmpty() {
			return fmt.Errorf("path cell (%d,%d) is not on the grid path", p.X, p.Y)
		}
	}

	e.state.Grid = grid
	e.state.Path = path
	e.state.Finish = path[len(path)-1]
	e.resetRun()
	return nil
}

// Restart puts the ship back at the start of the current map.
// Fuel collected earlier stays collected.
func (e *GameEngine) Restart() (*GameState, error) {
	if e.state.Grid == nil {
		return nil, ErrNoMap
	}
	e.resetRun()
	e.state.Message = formatMessage(e.config.Messages.Restarted, "Back at the start line.")
	return e.state, nil
}

// resetRun resets the per-run fields and recomputes the legal moves
func (e *GameEngine) resetRun() {
	start := Position{X: 0, Y: 0}
	if len(e.state.Path) > 0 {
		start = e.state.Path[0]
	}
	e.state.ShipPos = start
	e.state.Energy = e.config.InitialEnergy
	e.state.Vector = nil
	e.state.MoveCount = 0
	e.state.Status = StatusActive
	e.state.RefreshLegalMoves(e.config.SearchRadius)
}

// GetState returns the current game state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// SetState replaces the game state
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	e.state = state
	e.state.RefreshLegalMoves(e.config.SearchRadius)
	return nil
}

// Status returns the lifecycle state of the game
func (e *GameEngine) Status() Status {
	return e.state.Status
}

// IsWon returns whether the finish has been reached
func (e *GameEngine) IsWon() bool {
	return e.state.Status == StatusWon
}

// Move attempts to fly the ship to target
func (e *GameEngine) Move(target Position) (*MoveOutcome, error) {
	return e.state.MoveShip("move", target, e.config)
}

// InertiaMove repeats the previous vector.
// It declines without error when there is no previous vector or the
// projected cell lies outside the grid.
func (e *GameEngine) InertiaMove() (*MoveOutcome, error) {
	if e.state.Status == StatusWon {
		return nil, ErrGameWon
	}
	if e.state.Vector == nil {
		return &MoveOutcome{Declined: true, From: e.state.ShipPos, To: e.state.ShipPos}, nil
	}

	target := e.state.ShipPos.Add(*e.state.Vector)
	outcome, err := e.state.MoveShip("inertia", target, e.config)
	if errors.Is(err, ErrOutOfBounds) {
		return &MoveOutcome{Declined: true, From: e.state.ShipPos, To: target, Vector: *e.state.Vector}, nil
	}
	return outcome, err
}

// CheckMove reports whether a move to target would be accepted
func (e *GameEngine) CheckMove(target Position) error {
	_, _, err := e.state.CheckMove(target, e.config.SearchRadius)
	return err
}

// LegalMoves returns the cached legal move set
func (e *GameEngine) LegalMoves() []Position {
	return e.state.LegalMoves
}

// Solve searches for the fewest moves from the current state to the finish
func (e *GameEngine) Solve() (*Plan, bool) {
	if e.state.Status != StatusActive {
		return nil, false
	}
	return Solve(e.state.Grid, e.state.ShipPos, e.state.Energy, e.state.Vector, e.config.SearchRadius)
}

// GetEnergy returns the remaining energy
func (e *GameEngine) GetEnergy() int {
	return e.state.Energy
}

// GetShipPosition returns the ship position
func (e *GameEngine) GetShipPosition() Position {
	return e.state.ShipPos
}

// GetMoveCount returns the number of moves in the current run
func (e *GameEngine) GetMoveCount() int {
	return e.state.MoveCount
}

// GetConfig returns the current game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// SetConfig sets a new game configuration and returns the engine to idle
func (e *GameEngine) SetConfig(config *GameConfig) error {
	if err := ValidateGameConfig(config); err != nil {
		return err
	}

	e.config = config
	if config.Seed != 0 {
		e.rng = NewRandomSource(config.Seed)
	}
	e.state = newIdleState(config)
	return nil
}

// GetMoveHistory returns the complete move history
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return e.state.MoveHistory
}

// GetLastMove returns the last move made, or nil if no moves
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.state.MoveHistory) == 0 {
		return nil
	}
	return &e.state.MoveHistory[len(e.state.MoveHistory)-1]
}

// newIdleState returns a state with no map
func newIdleState(config *GameConfig) *GameState {
	return &GameState{
		Status:      StatusIdle,
		LegalMoves:  []Position{},
		ConfigName:  config.Name,
		MoveHistory: []MoveHistoryEntry{},
	}
}
