// Package engine provides the core game logic for the Traska space race.
//
// The engine package implements the game mechanics including:
//   - Random monotonic path generation with fuel deposits
//   - The vector momentum cost model
//   - Legal move enumeration within a search radius
//   - The game state machine (energy, position, move count, victory)
//   - Configuration loading and validation
//   - A breadth-first solver for the fewest moves to the finish
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. GameState represents the current game state,
// while GameConfig defines the rules loaded from JSON or YAML files.
//
// Usage:
//
//	config, err := engine.LoadGameConfig("configs/classic.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	state := gameEngine.NewGame()
//	outcome, err := gameEngine.Move(state.LegalMoves[0])
//
// Game Rules:
//
// The ship starts at (0,0) with a little energy and must reach the finish cell
// at the far corner, flying only over path cells. A move is a displacement
// vector; its cost is the change from the previous vector, so coasting on the
// same vector is free. Fuel cells add their amount to the energy once.
package engine
