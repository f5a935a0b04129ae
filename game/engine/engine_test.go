package engine

import (
	"errors"
	"reflect"
	"testing"
)

func createTestConfig() *GameConfig {
	config := DefaultGameConfig()
	config.Name = "Engine Test Config"
	config.Description = "Configuration for engine integration tests"
	return config
}

// buildGrid lays out path on an empty grid, turning the first cell into the
// start, the last into the finish and the cells in fuel into fuel deposits
func buildGrid(size int, path []Position, fuel map[Position]int) Grid {
	grid := make(Grid, size)
	for y := range grid {
		grid[y] = make([]Cell, size)
		for x := range grid[y] {
			grid[y][x] = Cell{Kind: Empty}
		}
	}
	for _, p := range path {
		grid[p.Y][p.X] = Cell{Kind: Path}
	}
	for p, amount := range fuel {
		grid[p.Y][p.X] = Cell{Kind: Fuel, Fuel: amount}
	}
	grid[path[0].Y][path[0].X] = Cell{Kind: Start}
	last := path[len(path)-1]
	grid[last.Y][last.X] = Cell{Kind: Finish}
	return grid
}

// straightPath is the 3x3 layout (0,0)->(1,0)->(2,0)->(2,1)->(2,2)
var straightPath = []Position{{0, 0}, {1, 0}, {2, 0}, {2, 1}, {2, 2}}

// createLoadedEngine returns an engine playing a prepared 3x3 map
func createLoadedEngine(t *testing.T, config *GameConfig, path []Position, fuel map[Position]int) *GameEngine {
	t.Helper()
	config.GridSize = 3
	engine, err := NewEngineWithSource(config, NewRandomSource(1))
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	if err := engine.LoadMap(buildGrid(3, path, fuel), path); err != nil {
		t.Fatalf("Failed to load map: %v", err)
	}
	return engine
}

func TestNewEngine(t *testing.T) {
	config := createTestConfig()
	engine, err := NewEngine(config)
	if err != nil {
		t.Fatalf("Failed to create new engine: %v", err)
	}

	if engine.Status() != StatusIdle {
		t.Errorf("Expected idle status, got %s", engine.Status())
	}
	if len(engine.LegalMoves()) != 0 {
		t.Errorf("Expected no legal moves before a map exists, got %v", engine.LegalMoves())
	}
	if _, err := engine.Move(Position{X: 1, Y: 0}); !errors.Is(err, ErrNoMap) {
		t.Errorf("Expected ErrNoMap, got %v", err)
	}
	if _, err := engine.Restart(); !errors.Is(err, ErrNoMap) {
		t.Errorf("Expected ErrNoMap from restart, got %v", err)
	}
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	config := createTestConfig()
	config.GridSize = 1
	if _, err := NewEngine(config); err == nil {
		t.Error("Expected error for invalid config")
	}
	if _, err := NewEngineWithSource(createTestConfig(), nil); err == nil {
		t.Error("Expected error for nil random source")
	}
}

func TestNewGame(t *testing.T) {
	engine, err := NewEngineWithSource(createTestConfig(), NewRandomSource(42))
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	state := engine.NewGame()
	if state.Status != StatusActive {
		t.Errorf("Expected active status, got %s", state.Status)
	}
	if state.ShipPos != (Position{X: 0, Y: 0}) {
		t.Errorf("Expected ship at origin, got %+v", state.ShipPos)
	}
	if state.Energy != DefaultInitialEnergy {
		t.Errorf("Expected energy %d, got %d", DefaultInitialEnergy, state.Energy)
	}
	if state.Vector != nil {
		t.Errorf("Expected no vector, got %+v", *state.Vector)
	}
	if state.MoveCount != 0 {
		t.Errorf("Expected move count 0, got %d", state.MoveCount)
	}
	if state.Finish != (Position{X: 9, Y: 9}) {
		t.Errorf("Expected finish at (9,9), got %+v", state.Finish)
	}
	if len(state.LegalMoves) == 0 {
		t.Error("Expected legal moves after a new game")
	}
	if state.Message == "" {
		t.Error("Expected a welcome message")
	}
}

func TestNewGame_SeededConfigIsReproducible(t *testing.T) {
	config := createTestConfig()
	config.Seed = 7

	first, err := NewEngine(config)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	second, err := NewEngine(config)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	if !reflect.DeepEqual(first.NewGame().Grid, second.NewGame().Grid) {
		t.Error("Expected identical maps for the same seed")
	}
}

func TestExampleScenario(t *testing.T) {
	engine := createLoadedEngine(t, createTestConfig(), straightPath, nil)

	outcome, err := engine.Move(Position{X: 1, Y: 0})
	if err != nil {
		t.Fatalf("Expected first move to succeed: %v", err)
	}
	if outcome.Cost != 1 {
		t.Errorf("Expected cost 1, got %d", outcome.Cost)
	}
	if engine.GetEnergy() != 4 {
		t.Errorf("Expected energy 4, got %d", engine.GetEnergy())
	}
	if v := engine.GetState().Vector; v == nil || *v != (Vector{DX: 1, DY: 0}) {
		t.Errorf("Expected vector (1,0), got %v", v)
	}

	outcome, err = engine.InertiaMove()
	if err != nil {
		t.Fatalf("Expected inertia move to succeed: %v", err)
	}
	if outcome.Declined {
		t.Fatal("Expected inertia move not to decline")
	}
	if outcome.To != (Position{X: 2, Y: 0}) {
		t.Errorf("Expected inertia target (2,0), got %+v", outcome.To)
	}
	if outcome.Cost != 0 {
		t.Errorf("Expected free coasting, got cost %d", outcome.Cost)
	}
	if engine.GetEnergy() != 4 {
		t.Errorf("Expected energy to stay 4, got %d", engine.GetEnergy())
	}
	if engine.GetMoveCount() != 2 {
		t.Errorf("Expected 2 moves, got %d", engine.GetMoveCount())
	}
	if last := engine.GetLastMove(); last == nil || last.Action != "inertia" {
		t.Errorf("Expected last history entry to be inertia, got %+v", last)
	}
}

func TestMove_InsufficientEnergyIsAtomic(t *testing.T) {
	config := createTestConfig()
	config.InitialEnergy = 1
	engine := createLoadedEngine(t, config, straightPath, map[Position]int{{X: 2, Y: 1}: 5})

	before := *engine.GetState()
	gridBefore := before.Grid.Clone()

	_, err := engine.Move(Position{X: 2, Y: 1})
	if !errors.Is(err, ErrInsufficientEnergy) {
		t.Fatalf("Expected ErrInsufficientEnergy, got %v", err)
	}

	after := engine.GetState()
	if after.ShipPos != before.ShipPos {
		t.Errorf("Position changed: %+v -> %+v", before.ShipPos, after.ShipPos)
	}
	if after.Energy != before.Energy {
		t.Errorf("Energy changed: %d -> %d", before.Energy, after.Energy)
	}
	if after.Vector != nil {
		t.Errorf("Vector changed: %+v", *after.Vector)
	}
	if after.MoveCount != before.MoveCount {
		t.Errorf("Move count changed: %d -> %d", before.MoveCount, after.MoveCount)
	}
	if !reflect.DeepEqual(after.Grid, gridBefore) {
		t.Error("Grid changed after a rejected move")
	}
	if len(after.MoveHistory) != 0 {
		t.Errorf("Expected no history, got %d entries", len(after.MoveHistory))
	}
	if after.Message != config.Messages.InsufficientEnergy {
		t.Errorf("Expected message %q, got %q", config.Messages.InsufficientEnergy, after.Message)
	}
}

func TestMove_FuelCollectionNets(t *testing.T) {
	fuelPos := Position{X: 1, Y: 0}
	engine := createLoadedEngine(t, createTestConfig(), straightPath, map[Position]int{fuelPos: 7})

	outcome, err := engine.Move(fuelPos)
	if err != nil {
		t.Fatalf("Expected move to succeed: %v", err)
	}
	if outcome.FuelCollected != 7 {
		t.Errorf("Expected 7 fuel collected, got %d", outcome.FuelCollected)
	}
	if engine.GetEnergy() != 5-1+7 {
		t.Errorf("Expected energy %d, got %d", 5-1+7, engine.GetEnergy())
	}
	if kind := engine.GetState().Grid.At(fuelPos).Kind; kind != Path {
		t.Errorf("Expected collected cell to become path, got %s", kind)
	}

	// Fuel stays collected after a restart
	if _, err := engine.Restart(); err != nil {
		t.Fatalf("Restart failed: %v", err)
	}
	outcome, err = engine.Move(fuelPos)
	if err != nil {
		t.Fatalf("Expected move to succeed: %v", err)
	}
	if outcome.FuelCollected != 0 {
		t.Errorf("Expected no fuel on second visit, got %d", outcome.FuelCollected)
	}
	if engine.GetEnergy() != 4 {
		t.Errorf("Expected energy 4, got %d", engine.GetEnergy())
	}
}

func TestMove_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		target Position
		want   error
	}{
		{"own cell", Position{X: 0, Y: 0}, ErrInvalidTarget},
		{"empty cell", Position{X: 0, Y: 1}, ErrInvalidTarget},
		{"negative coordinates", Position{X: -1, Y: 0}, ErrOutOfBounds},
		{"beyond grid", Position{X: 3, Y: 0}, ErrOutOfBounds},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			engine := createLoadedEngine(t, createTestConfig(), straightPath, nil)
			if _, err := engine.Move(test.target); !errors.Is(err, test.want) {
				t.Errorf("Expected %v, got %v", test.want, err)
			}
			if engine.GetMoveCount() != 0 {
				t.Errorf("Expected no moves, got %d", engine.GetMoveCount())
			}
		})
	}
}

func TestMove_BeyondSearchRadius(t *testing.T) {
	config := createTestConfig()
	config.GridSize = 4
	config.SearchRadius = 1
	engine, err := NewEngineWithSource(config, NewRandomSource(1))
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	path := []Position{{0, 0}, {1, 0}, {2, 0}, {3, 0}, {3, 1}, {3, 2}, {3, 3}}
	if err := engine.LoadMap(buildGrid(4, path, nil), path); err != nil {
		t.Fatalf("Failed to load map: %v", err)
	}

	if _, err := engine.Move(Position{X: 2, Y: 0}); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("Expected ErrInvalidTarget beyond radius, got %v", err)
	}
	if _, err := engine.Move(Position{X: 1, Y: 0}); err != nil {
		t.Errorf("Expected move within radius to succeed: %v", err)
	}
}

func TestMove_BlockedAfterWin(t *testing.T) {
	engine := createLoadedEngine(t, createTestConfig(), straightPath, nil)

	outcome, err := engine.Move(Position{X: 2, Y: 2})
	if err != nil {
		t.Fatalf("Expected winning move to succeed: %v", err)
	}
	if !outcome.Completed {
		t.Error("Expected outcome to report completion")
	}
	if !engine.IsWon() {
		t.Fatal("Expected game to be won")
	}
	if len(engine.LegalMoves()) != 0 {
		t.Errorf("Expected no legal moves after winning, got %v", engine.LegalMoves())
	}

	if _, err := engine.Move(Position{X: 2, Y: 1}); !errors.Is(err, ErrGameWon) {
		t.Errorf("Expected ErrGameWon, got %v", err)
	}
	if _, err := engine.InertiaMove(); !errors.Is(err, ErrGameWon) {
		t.Errorf("Expected ErrGameWon from inertia, got %v", err)
	}

	state, err := engine.Restart()
	if err != nil {
		t.Fatalf("Restart failed: %v", err)
	}
	if state.Status != StatusActive {
		t.Errorf("Expected active status after restart, got %s", state.Status)
	}
}

func TestInertiaMove_Declines(t *testing.T) {
	engine := createLoadedEngine(t, createTestConfig(), straightPath, nil)

	// No vector yet
	outcome, err := engine.InertiaMove()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !outcome.Declined {
		t.Error("Expected inertia to decline without a vector")
	}

	// (0,0) -> (2,0), then repeating (2,0) leaves the grid
	if _, err := engine.Move(Position{X: 2, Y: 0}); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	outcome, err = engine.InertiaMove()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !outcome.Declined {
		t.Error("Expected inertia to decline when leaving the grid")
	}
	if engine.GetMoveCount() != 1 {
		t.Errorf("Expected declined inertia not to count, got %d moves", engine.GetMoveCount())
	}
}

func TestInertiaMove_OntoEmptyCell(t *testing.T) {
	path := []Position{{0, 0}, {0, 1}, {1, 1}, {1, 2}, {2, 2}}
	engine := createLoadedEngine(t, createTestConfig(), path, nil)

	if _, err := engine.Move(Position{X: 0, Y: 1}); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if _, err := engine.InertiaMove(); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("Expected ErrInvalidTarget, got %v", err)
	}
}

func TestInertiaMove_ReachesFinish(t *testing.T) {
	path := []Position{{0, 0}, {0, 1}, {1, 1}, {1, 2}, {2, 2}}
	engine := createLoadedEngine(t, createTestConfig(), path, nil)

	if _, err := engine.Move(Position{X: 1, Y: 1}); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	outcome, err := engine.InertiaMove()
	if err != nil {
		t.Fatalf("Inertia failed: %v", err)
	}
	if !outcome.Completed || !engine.IsWon() {
		t.Error("Expected inertia move onto the finish to win")
	}
	if engine.GetMoveCount() != 2 {
		t.Errorf("Expected 2 moves, got %d", engine.GetMoveCount())
	}
}

func TestEnumeratorMoverAgreement(t *testing.T) {
	for seed := uint64(1); seed <= 25; seed++ {
		rng := NewRandomSource(seed)
		engine, err := NewEngineWithSource(createTestConfig(), rng)
		if err != nil {
			t.Fatalf("Failed to create engine: %v", err)
		}
		state := engine.NewGame()

		for step := 0; step < 40 && state.Status == StatusActive; step++ {
			legal := make(map[Position]bool, len(state.LegalMoves))
			for _, p := range state.LegalMoves {
				legal[p] = true
			}

			for y := 0; y < state.Grid.Size(); y++ {
				for x := 0; x < state.Grid.Size(); x++ {
					target := Position{X: x, Y: y}
					err := engine.CheckMove(target)
					if legal[target] && err != nil {
						t.Fatalf("seed %d: legal move %+v rejected: %v", seed, target, err)
					}
					if !legal[target] && !errors.Is(err, ErrInvalidTarget) && !errors.Is(err, ErrInsufficientEnergy) {
						t.Fatalf("seed %d: move %+v outside legal set got %v", seed, target, err)
					}
				}
			}

			if len(state.LegalMoves) == 0 {
				break
			}
			target := state.LegalMoves[rng.IntN(len(state.LegalMoves))]
			if _, err := engine.Move(target); err != nil {
				t.Fatalf("seed %d: move to legal target %+v failed: %v", seed, target, err)
			}
		}
	}
}

func TestRestart_KeepsHistory(t *testing.T) {
	engine := createLoadedEngine(t, createTestConfig(), straightPath, nil)

	if _, err := engine.Move(Position{X: 1, Y: 0}); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if _, err := engine.Move(Position{X: 2, Y: 0}); err != nil {
		t.Fatalf("Move failed: %v", err)
	}

	state, err := engine.Restart()
	if err != nil {
		t.Fatalf("Restart failed: %v", err)
	}
	if state.MoveCount != 0 || state.Vector != nil || state.Energy != DefaultInitialEnergy {
		t.Errorf("Expected run reset, got count=%d vector=%v energy=%d", state.MoveCount, state.Vector, state.Energy)
	}
	if state.ShipPos != (Position{X: 0, Y: 0}) {
		t.Errorf("Expected ship at start, got %+v", state.ShipPos)
	}

	if _, err := engine.Move(Position{X: 1, Y: 0}); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	history := engine.GetMoveHistory()
	if len(history) != 3 || state.TotalMoves != 3 {
		t.Fatalf("Expected 3 cumulative history entries, got %d (total %d)", len(history), state.TotalMoves)
	}
	if history[2].MoveNumber != 3 {
		t.Errorf("Expected move number 3, got %d", history[2].MoveNumber)
	}
}

func TestSetConfig(t *testing.T) {
	engine := NewEngineWithDefaults()
	engine.NewGame()

	config := createTestConfig()
	config.Name = "small"
	config.GridSize = 4
	if err := engine.SetConfig(config); err != nil {
		t.Fatalf("SetConfig failed: %v", err)
	}
	if engine.Status() != StatusIdle {
		t.Errorf("Expected idle after config change, got %s", engine.Status())
	}
	if engine.GetState().ConfigName != "small" {
		t.Errorf("Expected config name small, got %s", engine.GetState().ConfigName)
	}
	if size := engine.NewGame().Grid.Size(); size != 4 {
		t.Errorf("Expected grid size 4, got %d", size)
	}

	bad := createTestConfig()
	bad.SearchRadius = 0
	if err := engine.SetConfig(bad); err == nil {
		t.Error("Expected error for invalid config")
	}
}

func TestSetState(t *testing.T) {
	engine := createLoadedEngine(t, createTestConfig(), straightPath, nil)
	if err := engine.SetState(nil); err == nil {
		t.Error("Expected error for nil state")
	}

	state := *engine.GetState()
	state.Energy = 0
	if err := engine.SetState(&state); err != nil {
		t.Fatalf("SetState failed: %v", err)
	}
	if len(engine.LegalMoves()) != 0 {
		t.Errorf("Expected no legal moves with zero energy, got %v", engine.LegalMoves())
	}
}

func TestLoadMap_Errors(t *testing.T) {
	engine := NewEngineWithDefaults()
	if err := engine.LoadMap(buildGrid(3, straightPath, nil), nil); err == nil {
		t.Error("Expected error for empty path")
	}
	path := []Position{{0, 0}, {1, 1}}
	if err := engine.LoadMap(buildGrid(3, straightPath, nil), path); err == nil {
		t.Error("Expected error for a path over empty cells")
	}
}

func TestGameState_Clone(t *testing.T) {
	engine := createLoadedEngine(t, createTestConfig(), straightPath, map[Position]int{{2, 0}: 4})
	if _, err := engine.Move(Position{X: 1, Y: 0}); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	live := engine.GetState()
	live.LocalView5x5 = live.GenerateLocalView(2)
	snapshot := live.Clone()

	if !reflect.DeepEqual(live, snapshot) {
		t.Fatalf("Clone differs from the original:\n got %+v\nwant %+v", snapshot, live)
	}

	// Moving the live game must leave the snapshot untouched
	if _, err := engine.Move(Position{X: 2, Y: 0}); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if snapshot.ShipPos != (Position{X: 1, Y: 0}) {
		t.Errorf("Snapshot ship moved to %v", snapshot.ShipPos)
	}
	if snapshot.Grid.At(Position{X: 2, Y: 0}).Kind != Fuel {
		t.Error("Snapshot grid lost its fuel cell")
	}
	if len(snapshot.MoveHistory) != 1 {
		t.Errorf("Expected 1 history entry in snapshot, got %d", len(snapshot.MoveHistory))
	}
	if *snapshot.Vector != (Vector{DX: 1, DY: 0}) {
		t.Errorf("Snapshot vector changed to %v", *snapshot.Vector)
	}

	if (*GameState)(nil).Clone() != nil {
		t.Error("Clone of nil should be nil")
	}
}
