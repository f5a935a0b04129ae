package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/traska-space-race/game/engine"
	"github.com/wricardo/traska-space-race/game/scoreboard"
)

var ErrNoPendingCompletion = errors.New("no completed run to record")

// gameServiceImpl implements the GameService interface.
// Every operation holds mu, and states leave the service as snapshots.
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	board    *scoreboard.Board
	mu       sync.Mutex
}

// NewGameService creates a new game service instance.
// A nil board is replaced by an in-memory one.
func NewGameService(sessions SessionManager, configs ConfigManager, board *scoreboard.Board) GameService {
	if board == nil {
		board = scoreboard.NewBoard(scoreboard.DefaultCapacity)
	}
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		board:    board,
	}
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

// CreateSession creates a new game session and generates its first map
func (s *gameServiceImpl) CreateSession(ctx context.Context, opts CreateOptions) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	var err error
	if opts.ConfigID != "" {
		config, err = s.configs.LoadConfig(opts.ConfigID)
		if err != nil {
			// Provide helpful error message with available options
			if strings.Contains(err.Error(), "configuration not found") {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("config '%s' not found. Available configs: %v", opts.ConfigID, configIDs)
				}
				return nil, fmt.Errorf("config '%s' not found. Use /api/configs to list available configurations", opts.ConfigID)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", opts.ConfigID, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Let session manager generate a proper 4-character ID
	session, err := s.sessions.Create("", config, opts.Seed)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	enrichState(session.Engine.NewGame())

	configID := opts.ConfigID
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}

	info := s.sessionInfo(session)
	info.ConfigName = configID // Return the config_id, not the display name
	return info, nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(session), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// Move flies the ship of a session to target
func (s *gameServiceImpl) Move(ctx context.Context, sessionID string, target engine.Position) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	outcome, err := sess.Engine.Move(target)
	return s.moveResult(sess, "move", outcome, err)
}

// InertiaMove repeats the previous vector of a session
func (s *gameServiceImpl) InertiaMove(ctx context.Context, sessionID string) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	outcome, err := sess.Engine.InertiaMove()
	return s.moveResult(sess, "inertia", outcome, err)
}

// Restart puts the ship back at the start of the current map
func (s *gameServiceImpl) Restart(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	state, err := sess.Engine.Restart()
	if err != nil {
		return nil, err
	}
	return enrichState(state).Clone(), nil
}

// NewMap generates a fresh map for a session
func (s *gameServiceImpl) NewMap(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return enrichState(sess.Engine.NewGame()).Clone(), nil
}

// Hint solves the current state of a session
func (s *gameServiceImpl) Hint(ctx context.Context, sessionID string) (*HintResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	plan, ok := sess.Engine.Solve()
	if !ok {
		return &HintResult{Reachable: false}, nil
	}
	result := &HintResult{Reachable: true, Moves: plan.Moves, Targets: plan.Targets}
	if len(plan.Targets) > 0 {
		next := plan.Targets[0]
		result.Next = &next
	}
	return result, nil
}

// RecordCompletion puts the pending completed run of a session on the scoreboard
func (s *gameServiceImpl) RecordCompletion(ctx context.Context, sessionID, name string) (*CompletionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	if sess.PendingCompletion == nil {
		return nil, ErrNoPendingCompletion
	}

	moves := sess.PendingCompletion.Moves
	entries, rank, err := s.board.Record(ctx, name, moves)
	if err != nil {
		if entries == nil {
			return nil, err
		}
		slog.Error("scoreboard store failed", "session", sess.ID, "error", err)
	}
	sess.PendingCompletion = nil

	slog.Info("completion recorded", "session", sess.ID, "name", name, "moves", moves, "rank", rank)

	result := &CompletionResult{Rank: rank, Scoreboard: entries}
	if rank > 0 {
		result.Entry = entries[rank-1]
	} else {
		result.Entry = scoreboard.Entry{Name: name, Moves: moves}
	}
	return result, nil
}

// GetScoreboard returns the current ranking
func (s *gameServiceImpl) GetScoreboard(ctx context.Context) ([]scoreboard.Entry, error) {
	return s.board.Entries(), nil
}

// WriteScoreboardCSV exports the current ranking as CSV
func (s *gameServiceImpl) WriteScoreboardCSV(ctx context.Context, w io.Writer) error {
	return s.board.WriteCSV(w)
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return enrichState(sess.Engine.GetState()).Clone(), nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := min(start+opts.Limit, total)

	moves := []engine.MoveHistoryEntry{}
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = append(moves, history[start:end]...)
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns available game configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// getSession looks a session up and marks it as accessed
func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// sessionInfo snapshots a session. The caller must hold mu.
func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	info := &SessionInfo{
		ID:         sess.ID,
		ConfigName: s.getConfigID(sess.Config.Name), // Return config_id consistently
		CreatedAt:  sess.CreatedAt,
		GameState:  enrichState(sess.Engine.GetState()).Clone(),
		GameConfig: sess.Config,
	}
	if accessed, err := s.sessions.LastAccessed(sess.ID); err == nil {
		info.LastAccessedAt = accessed
	}
	if sess.PendingCompletion != nil {
		pending := *sess.PendingCompletion
		info.PendingCompletion = &pending
	}
	return info
}

// moveResult turns an engine outcome into a MoveResult. Rule rejections become
// unsuccessful results with an error code; anything else is returned as an error.
func (s *gameServiceImpl) moveResult(sess *Session, action string, outcome *engine.MoveOutcome, err error) (*MoveResult, error) {
	state := enrichState(sess.Engine.GetState()).Clone()
	result := &MoveResult{GameState: state, Outcome: outcome}

	if err != nil {
		code := ErrorCode(err)
		if code == "" {
			return nil, err
		}
		result.Error = code
		result.Message = err.Error()
		if code == CodeInsufficientEnergy || code == CodeInvalidTarget {
			result.Message = state.Message
		}
		return result, nil
	}

	if outcome.Declined {
		result.Declined = true
		result.Message = "Nothing to coast on"
		return result, nil
	}

	result.Success = true
	result.Message = state.Message
	result.Completed = outcome.Completed
	result.Events = moveEvents(action, outcome)

	if outcome.Completed {
		sess.PendingCompletion = &Completion{
			Moves:       outcome.MoveCount,
			ConfigName:  sess.Config.Name,
			CompletedAt: time.Now(),
		}
		slog.Info("run completed", "session", sess.ID, "config", sess.Config.Name, "moves", outcome.MoveCount)
	}
	return result, nil
}

// ErrorCode maps an engine rule error to its result code, or "" for other errors
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, engine.ErrInsufficientEnergy):
		return CodeInsufficientEnergy
	case errors.Is(err, engine.ErrInvalidTarget):
		return CodeInvalidTarget
	case errors.Is(err, engine.ErrOutOfBounds):
		return CodeOutOfBounds
	case errors.Is(err, engine.ErrGameWon):
		return CodeGameWon
	case errors.Is(err, engine.ErrNoMap):
		return CodeNoMap
	default:
		return ""
	}
}

// moveEvents describes a successful move
func moveEvents(action string, outcome *engine.MoveOutcome) []GameEvent {
	now := time.Now()
	events := []GameEvent{{
		Type:      action,
		Message:   fmt.Sprintf("Flew (%d,%d) to (%d,%d) for %d energy", outcome.Vector.DX, outcome.Vector.DY, outcome.To.X, outcome.To.Y, outcome.Cost),
		Timestamp: now,
		Position:  outcome.To,
	}}

	if outcome.FuelCollected > 0 {
		events = append(events, GameEvent{
			Type:      "fuel_collected",
			Message:   fmt.Sprintf("Collected %d fuel", outcome.FuelCollected),
			Timestamp: now,
			Position:  outcome.To,
		})
	}
	if outcome.Completed {
		events = append(events, GameEvent{
			Type:      "victory",
			Message:   fmt.Sprintf("Finish reached in %d moves", outcome.MoveCount),
			Timestamp: now,
			Position:  outcome.To,
		})
	}
	return events
}

// enrichState fills the computed helper views of a state
func enrichState(state *engine.GameState) *engine.GameState {
	if state == nil || state.Status == engine.StatusIdle {
		return state
	}
	state.FuelRemaining = engine.TotalFuel(state.Grid)
	state.LocalView5x5 = state.GenerateLocalView(2)
	return state
}
