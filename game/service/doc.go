// Package service provides the business logic layer for the Traska space race.
//
// The service package implements:
//   - Multi-session game management
//   - Move and inertia processing with result codes
//   - Pending completions and the shared scoreboard
//   - Solver hints and move history
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages game configuration loading and validation.
//
// Architecture:
//
// The service layer sits between the transports (HTTP, WebSocket, MCP and the
// terminal client) and the game engine. Each session owns its own engine; one
// lock serializes every operation so a single engine is never used from two
// goroutines at once.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr, scoreboard.NewBoard(10))
//
//	info, err := gameService.CreateSession(ctx, service.CreateOptions{ConfigID: "classic"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Move(ctx, info.ID, engine.Position{X: 1, Y: 0})
//
// Completions:
//
// Reaching the finish stores a pending completion on the session. It reaches
// the scoreboard when RecordCompletion supplies the player's name.
package service
