package engine

import "slices"

// CellKind represents the different kinds of grid cells
type CellKind string

const (
	Empty  CellKind = "empty"
	Path   CellKind = "path"
	Start  CellKind = "start"
	Finish CellKind = "finish"
	Fuel   CellKind = "fuel"

	// Validation constants
	MinGridSize     = 2
	MaxGridSize     = 50
	MinEnergy       = 1
	MaxEnergy       = 100
	MaxFuelAmount   = 100
	MaxSearchRadius = 10

	// Defaults of the classic game
	DefaultGridSize      = 10
	DefaultInitialEnergy = 5
	DefaultFuelMin       = 2
	DefaultFuelMax       = 10
	DefaultSearchRadius  = 2
)

// Status is the lifecycle state of a game
type Status string

const (
	StatusIdle   Status = "idle"
	StatusActive Status = "active"
	StatusWon    Status = "won"
)

// Cell represents a single grid cell
type Cell struct {
	Kind CellKind `json:"kind"`
	Fuel int      `json:"fuel,omitempty"` // Only set for fuel cells
}

// IsEmpty reports whether the cell lies off the generated path
func (c Cell) IsEmpty() bool {
	return c.Kind == Empty || c.Kind == ""
}

// Grid is a square matrix of cells indexed as grid[y][x]
type Grid [][]Cell

// Size returns the side length of the grid
func (g Grid) Size() int {
	return len(g)
}

// InBounds reports whether p lies inside the grid
func (g Grid) InBounds(p Position) bool {
	if p.Y < 0 || p.Y >= len(g) {
		return false
	}
	return p.X >= 0 && p.X < len(g[p.Y])
}

// At returns the cell at p. p must be in bounds.
func (g Grid) At(p Position) Cell {
	return g[p.Y][p.X]
}

// Clone returns a deep copy of the grid
func (g Grid) Clone() Grid {
	out := make(Grid, len(g))
	for y, row := range g {
		out[y] = make([]Cell, len(row))
		copy(out[y], row)
	}
	return out
}

// Position represents x,y coordinates
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns p displaced by v
func (p Position) Add(v Vector) Position {
	return Position{X: p.X + v.DX, Y: p.Y + v.DY}
}

// Vector is the displacement of a single move
type Vector struct {
	DX int `json:"dx"`
	DY int `json:"dy"`
}

// GameConfig represents the game rules loaded from a JSON or YAML file
type GameConfig struct {
	Name          string `json:"name" yaml:"name"`
	Description   string `json:"description" yaml:"description"`
	GridSize      int    `json:"grid_size" yaml:"grid_size"`
	InitialEnergy int    `json:"initial_energy" yaml:"initial_energy"`
	FuelMin       int    `json:"fuel_min" yaml:"fuel_min"`
	FuelMax       int    `json:"fuel_max" yaml:"fuel_max"`
	SearchRadius  int    `json:"search_radius" yaml:"search_radius"`
	// Seed makes every generated map reproducible when non-zero
	Seed     uint64 `json:"seed,omitempty" yaml:"seed,omitempty"`
	Messages struct {
		Welcome            string `json:"welcome" yaml:"welcome"`
		Restarted          string `json:"restarted" yaml:"restarted"`
		Moved              string `json:"moved" yaml:"moved"`
		FuelCollected      string `json:"fuel_collected" yaml:"fuel_collected"`
		Victory            string `json:"victory" yaml:"victory"`
		InsufficientEnergy string `json:"insufficient_energy" yaml:"insufficient_energy"`
		InvalidTarget      string `json:"invalid_target" yaml:"invalid_target"`
	} `json:"messages" yaml:"messages"`
}

// GameState represents the complete game state
type GameState struct {
	Grid       Grid       `json:"grid"`
	Path       []Position `json:"path"`
	Finish     Position   `json:"finish"`
	ShipPos    Position   `json:"ship_pos"`
	Energy     int        `json:"energy"`
	Vector     *Vector    `json:"vector"` // nil before the first move of a run
	MoveCount  int        `json:"move_count"`
	LegalMoves []Position `json:"legal_moves"`
	Status     Status     `json:"status"`
	Message    string     `json:"message"`
	ConfigName string     `json:"config_name"`

	// MoveHistory is cumulative across restarts and new maps; TotalMoves mirrors its length.
	MoveHistory []MoveHistoryEntry `json:"move_history"`
	TotalMoves  int                `json:"total_moves"`

	// Computed helper views (not required for core game logic)
	FuelRemaining int      `json:"fuel_remaining,omitempty"`
	LocalView5x5  []string `json:"local_view_5x5,omitempty"`
}

// Clone returns a deep copy of the state that shares no memory with s
func (s *GameState) Clone() *GameState {
	if s == nil {
		return nil
	}
	out := *s
	out.Grid = s.Grid.Clone()
	out.Path = slices.Clone(s.Path)
	out.LegalMoves = slices.Clone(s.LegalMoves)
	out.MoveHistory = slices.Clone(s.MoveHistory)
	out.LocalView5x5 = slices.Clone(s.LocalView5x5)
	if s.Vector != nil {
		v := *s.Vector
		out.Vector = &v
	}
	return &out
}

// MoveHistoryEntry represents a single successful move in the game history
type MoveHistoryEntry struct {
	Action        string   `json:"action"` // "move" or "inertia"
	FromPosition  Position `json:"from_position"`
	ToPosition    Position `json:"to_position"`
	Vector        Vector   `json:"vector"`
	Cost          int      `json:"cost"`
	FuelCollected int      `json:"fuel_collected,omitempty"`
	Energy        int      `json:"energy"`
	Timestamp     int64    `json:"timestamp"`
	MoveNumber    int      `json:"move_number"`
}

// MoveOutcome describes the effect of a successful (or declined) move
type MoveOutcome struct {
	Success       bool     `json:"success"`
	Declined      bool     `json:"declined,omitempty"` // inertia move with nothing to do
	From          Position `json:"from"`
	To            Position `json:"to"`
	Vector        Vector   `json:"vector"`
	Cost          int      `json:"cost"`
	FuelCollected int      `json:"fuel_collected,omitempty"`
	EnergyBefore  int      `json:"energy_before"`
	EnergyAfter   int      `json:"energy_after"`
	MoveCount     int      `json:"move_count"`
	Completed     bool     `json:"completed,omitempty"`
}
