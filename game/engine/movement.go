package engine

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNoMap              = errors.New("no map generated")
	ErrGameWon            = errors.New("game already won")
	ErrOutOfBounds        = errors.New("target outside the grid")
	ErrInvalidTarget      = errors.New("invalid target")
	ErrInsufficientEnergy = errors.New("insufficient energy")
)

// CheckMove validates a move to target without changing the state.
// It returns the vector and the energy cost the move would have.
func (gs *GameState) CheckMove(target Position, radius int) (Vector, int, error) {
	switch gs.Status {
	case StatusIdle, "":
		return Vector{}, 0, ErrNoMap
	case StatusWon:
		return Vector{}, 0, ErrGameWon
	}

	if !gs.Grid.InBounds(target) {
		return Vector{}, 0, fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, target.X, target.Y)
	}

	vector := VectorBetween(gs.ShipPos, target)
	if vector.DX == 0 && vector.DY == 0 {
		return vector, 0, fmt.Errorf("%w: ship is already at (%d,%d)", ErrInvalidTarget, target.X, target.Y)
	}
	if !withinRadius(vector, radius) {
		return vector, 0, fmt.Errorf("%w: (%d,%d) is beyond reach", ErrInvalidTarget, target.X, target.Y)
	}
	if gs.Grid.At(target).IsEmpty() {
		return vector, 0, fmt.Errorf("%w: (%d,%d) is off the path", ErrInvalidTarget, target.X, target.Y)
	}

	cost := TransitionCost(gs.Vector, vector)
	if cost > gs.Energy {
		return vector, cost, fmt.Errorf("%w: need %d, have %d", ErrInsufficientEnergy, cost, gs.Energy)
	}

	return vector, cost, nil
}

// MoveShip moves the ship to target if the move is legal.
// A rejected move leaves the state untouched.
func (gs *GameState) MoveShip(action string, target Position, config *GameConfig) (*MoveOutcome, error) {
	vector, cost, err := gs.CheckMove(target, config.SearchRadius)
	if err != nil {
		switch {
		case errors.Is(err, ErrInsufficientEnergy):
			gs.Message = formatMessage(config.Messages.InsufficientEnergy, "Not enough energy to move!")
		case errors.Is(err, ErrInvalidTarget):
			gs.Message = formatMessage(config.Messages.InvalidTarget, "You can't fly there!")
		}
		return nil, err
	}

	from := gs.ShipPos
	energyBefore := gs.Energy
	cell := gs.Grid.At(target)

	// Collect fuel
	fuel := 0
	if cell.Kind == Fuel {
		fuel = cell.Fuel
		gs.Grid[target.Y][target.X] = Cell{Kind: Path}
	}

	gs.ShipPos = target
	gs.Energy = energyBefore - cost + fuel
	if gs.Energy < 0 {
		panic(fmt.Sprintf("engine: energy went negative (%d) moving to (%d,%d)", gs.Energy, target.X, target.Y))
	}
	v := vector
	gs.Vector = &v
	gs.MoveCount++

	outcome := &MoveOutcome{
		Success:       true,
		From:          from,
		To:            target,
		Vector:        vector,
		Cost:          cost,
		FuelCollected: fuel,
		EnergyBefore:  energyBefore,
		EnergyAfter:   gs.Energy,
		MoveCount:     gs.MoveCount,
	}

	switch {
	case cell.Kind == Finish:
		gs.Status = StatusWon
		outcome.Completed = true
		gs.Message = formatMessage(config.Messages.Victory, "Victory in %d moves!", gs.MoveCount)
	case fuel > 0:
		gs.Message = formatMessage(config.Messages.FuelCollected, "Collected %d fuel! Energy: %d", fuel, gs.Energy)
	default:
		gs.Message = formatMessage(config.Messages.Moved, "Energy: %d", gs.Energy)
	}

	gs.AddMoveToHistory(action, outcome)
	gs.RefreshLegalMoves(config.SearchRadius)

	return outcome, nil
}

// RefreshLegalMoves recomputes the cached legal move set from the current state
func (gs *GameState) RefreshLegalMoves(radius int) {
	if gs.Status != StatusActive {
		gs.LegalMoves = []Position{}
		return
	}
	gs.LegalMoves = LegalMoves(gs.Grid, gs.ShipPos, gs.Energy, gs.Vector, radius)
}

// GenerateLocalView renders the 5x5 neighbourhood of the ship, one string per row.
// S start, F finish, digits are fuel (+ for 10 or more), . path, # empty or off-grid, @ ship.
func (gs *GameState) GenerateLocalView(radius int) []string {
	rows := make([]string, 0, 2*radius+1)
	for dy := -radius; dy <= radius; dy++ {
		row := make([]byte, 0, 2*radius+1)
		for dx := -radius; dx <= radius; dx++ {
			p := Position{X: gs.ShipPos.X + dx, Y: gs.ShipPos.Y + dy}
			switch {
			case dx == 0 && dy == 0:
				row = append(row, '@')
			case !gs.Grid.InBounds(p):
				row = append(row, '#')
			default:
				row = append(row, CellChar(gs.Grid.At(p)))
			}
		}
		rows = append(rows, string(row))
	}
	return rows
}

// CellChar returns the single-character representation of a cell
func CellChar(c Cell) byte {
	switch c.Kind {
	case Start:
		return 'S'
	case Finish:
		return 'F'
	case Path:
		return '.'
	case Fuel:
		if c.Fuel >= 10 {
			return '+'
		}
		return byte('0' + c.Fuel)
	default:
		return '#'
	}
}

// AddMoveToHistory adds a successful move to the game's move history
func (gs *GameState) AddMoveToHistory(action string, outcome *MoveOutcome) {
	entry := MoveHistoryEntry{
		Action:        action,
		FromPosition:  outcome.From,
		ToPosition:    outcome.To,
		Vector:        outcome.Vector,
		Cost:          outcome.Cost,
		FuelCollected: outcome.FuelCollected,
		Energy:        outcome.EnergyAfter,
		Timestamp:     time.Now().Unix(),
		MoveNumber:    gs.TotalMoves + 1,
	}
	gs.MoveHistory = append(gs.MoveHistory, entry)
	gs.TotalMoves++
}

// formatMessage applies args to the configured template, or to fallback when none is configured
func formatMessage(template, fallback string, args ...any) string {
	if template == "" {
		template = fallback
	}
	if len(args) == 0 {
		return template
	}
	return fmt.Sprintf(template, args...)
}
