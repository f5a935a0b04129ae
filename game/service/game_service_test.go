package service_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/wricardo/traska-space-race/game/engine"
	"github.com/wricardo/traska-space-race/game/scoreboard"
	"github.com/wricardo/traska-space-race/game/service"
)

// MockSessionManager implements service.SessionManager for testing
type MockSessionManager struct {
	sessions map[string]*service.Session
}

func NewMockSessionManager() *MockSessionManager {
	return &MockSessionManager{
		sessions: make(map[string]*service.Session),
	}
}

func (m *MockSessionManager) Create(id string, config *engine.GameConfig, seed uint64) (*service.Session, error) {
	// Generate ID if empty (mimics real session manager behavior)
	if id == "" {
		id = fmt.Sprintf("test_%d", len(m.sessions)+1)
	}

	if _, exists := m.sessions[id]; exists {
		return nil, errors.New("session already exists")
	}

	eng, err := engine.NewEngineWithSource(config, engine.NewRandomSource(seed+1))
	if err != nil {
		return nil, err
	}

	session := &service.Session{
		ID:             id,
		Engine:         eng,
		Config:         config,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}

	m.sessions[id] = session
	return session, nil
}

func (m *MockSessionManager) Get(id string) (*service.Session, error) {
	session, exists := m.sessions[id]
	if !exists {
		return nil, errors.New("session not found")
	}
	return session, nil
}

func (m *MockSessionManager) List() []*service.Session {
	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

func (m *MockSessionManager) Delete(id string) error {
	if _, exists := m.sessions[id]; !exists {
		return errors.New("session not found")
	}
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionManager) UpdateLastAccessed(id string) error {
	if session, exists := m.sessions[id]; exists {
		session.LastAccessedAt = time.Now()
		return nil
	}
	return errors.New("session not found")
}

func (m *MockSessionManager) LastAccessed(id string) (time.Time, error) {
	if session, exists := m.sessions[id]; exists {
		return session.LastAccessedAt, nil
	}
	return time.Time{}, errors.New("session not found")
}

// MockConfigManager implements service.ConfigManager for testing
type MockConfigManager struct {
	configs map[string]*engine.GameConfig
}

func NewMockConfigManager() *MockConfigManager {
	classic := engine.DefaultGameConfig()

	// A 2x2 map can be won with a single diagonal move
	tiny := engine.DefaultGameConfig()
	tiny.Name = "tiny"
	tiny.Description = "Two by two"
	tiny.GridSize = 2

	return &MockConfigManager{
		configs: map[string]*engine.GameConfig{
			"classic": classic,
			"tiny":    tiny,
		},
	}
}

func (m *MockConfigManager) LoadConfig(name string) (*engine.GameConfig, error) {
	config, exists := m.configs[name]
	if !exists {
		return nil, errors.New("configuration not found")
	}
	return config, nil
}

func (m *MockConfigManager) ListConfigs() ([]*service.ConfigInfo, error) {
	var configs []*service.ConfigInfo
	for id, config := range m.configs {
		configs = append(configs, &service.ConfigInfo{
			Filename:      id + ".json",
			ConfigID:      id,
			Name:          config.Name,
			Description:   config.Description,
			GridSize:      config.GridSize,
			InitialEnergy: config.InitialEnergy,
			SearchRadius:  config.SearchRadius,
		})
	}
	return configs, nil
}

func (m *MockConfigManager) GetDefault() *engine.GameConfig {
	return m.configs["classic"]
}

func setupTestService() service.GameService {
	return service.NewGameService(NewMockSessionManager(), NewMockConfigManager(), scoreboard.NewBoard(scoreboard.DefaultCapacity))
}

func createTinySession(t *testing.T, svc service.GameService) string {
	t.Helper()
	info, err := svc.CreateSession(context.Background(), service.CreateOptions{ConfigID: "tiny"})
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	return info.ID
}

func TestGameService_CreateSession(t *testing.T) {
	svc := setupTestService()
	ctx := context.Background()

	info, err := svc.CreateSession(ctx, service.CreateOptions{})
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if info.ID == "" {
		t.Error("Expected session ID")
	}
	if info.ConfigName != "classic" {
		t.Errorf("Expected config classic, got %s", info.ConfigName)
	}

	state := info.GameState
	if state.Status != engine.StatusActive {
		t.Errorf("Expected active game, got %s", state.Status)
	}
	if len(state.LocalView5x5) != 5 {
		t.Errorf("Expected 5 local view rows, got %d", len(state.LocalView5x5))
	}
	if state.FuelRemaining == 0 {
		t.Error("Expected fuel on a new map")
	}

	_, err = svc.CreateSession(ctx, service.CreateOptions{ConfigID: "missing"})
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("Expected not found error, got %v", err)
	}
}

func TestGameService_SeededSessionsShareMaps(t *testing.T) {
	svc := setupTestService()
	ctx := context.Background()

	a, err := svc.CreateSession(ctx, service.CreateOptions{Seed: 5})
	if err != nil {
		t.Fatal(err)
	}
	b, err := svc.CreateSession(ctx, service.CreateOptions{Seed: 5})
	if err != nil {
		t.Fatal(err)
	}
	if fmt.Sprint(a.GameState.Path) != fmt.Sprint(b.GameState.Path) {
		t.Error("Expected the same seed to produce the same path")
	}
}

func TestGameService_MoveAndComplete(t *testing.T) {
	svc := setupTestService()
	ctx := context.Background()
	id := createTinySession(t, svc)

	result, err := svc.Move(ctx, id, engine.Position{X: 1, Y: 1})
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if !result.Success || !result.Completed {
		t.Fatalf("Expected winning move, got %+v", result)
	}
	if result.Outcome == nil || result.Outcome.Cost != 2 {
		t.Errorf("Expected cost 2, got %+v", result.Outcome)
	}

	var sawVictory bool
	for _, ev := range result.Events {
		if ev.Type == "victory" {
			sawVictory = true
		}
	}
	if !sawVictory {
		t.Errorf("Expected victory event, got %+v", result.Events)
	}

	info, err := svc.GetSession(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if info.PendingCompletion == nil || info.PendingCompletion.Moves != 1 {
		t.Fatalf("Expected pending completion of 1 move, got %+v", info.PendingCompletion)
	}

	completion, err := svc.RecordCompletion(ctx, id, "Ada")
	if err != nil {
		t.Fatalf("RecordCompletion failed: %v", err)
	}
	if completion.Rank != 1 || completion.Entry.Name != "Ada" || completion.Entry.Moves != 1 {
		t.Errorf("Unexpected completion %+v", completion)
	}

	if _, err := svc.RecordCompletion(ctx, id, "Ada"); !errors.Is(err, service.ErrNoPendingCompletion) {
		t.Errorf("Expected ErrNoPendingCompletion, got %v", err)
	}

	entries, err := svc.GetScoreboard(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name != "Ada" {
		t.Errorf("Unexpected scoreboard %+v", entries)
	}

	var buf bytes.Buffer
	if err := svc.WriteScoreboardCSV(ctx, &buf); err != nil {
		t.Fatalf("WriteScoreboardCSV failed: %v", err)
	}
	if !strings.Contains(buf.String(), "1,Ada,1,") {
		t.Errorf("Unexpected CSV %q", buf.String())
	}
}

func TestGameService_RejectedMoves(t *testing.T) {
	svc := setupTestService()
	ctx := context.Background()
	id := createTinySession(t, svc)

	tests := []struct {
		name   string
		target engine.Position
		code   string
	}{
		{"own cell", engine.Position{X: 0, Y: 0}, service.CodeInvalidTarget},
		{"outside grid", engine.Position{X: 5, Y: 5}, service.CodeOutOfBounds},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result, err := svc.Move(ctx, id, test.target)
			if err != nil {
				t.Fatalf("Expected result, got error %v", err)
			}
			if result.Success {
				t.Error("Expected move to fail")
			}
			if result.Error != test.code {
				t.Errorf("Expected code %s, got %s", test.code, result.Error)
			}
			if result.Message == "" {
				t.Error("Expected a message")
			}
		})
	}

	if _, err := svc.Move(ctx, id, engine.Position{X: 1, Y: 1}); err != nil {
		t.Fatal(err)
	}
	result, err := svc.Move(ctx, id, engine.Position{X: 0, Y: 0})
	if err != nil {
		t.Fatal(err)
	}
	if result.Error != service.CodeGameWon {
		t.Errorf("Expected game_won after victory, got %q", result.Error)
	}
}

func TestGameService_InertiaMove(t *testing.T) {
	svc := setupTestService()
	ctx := context.Background()
	id := createTinySession(t, svc)

	result, err := svc.InertiaMove(ctx, id)
	if err != nil {
		t.Fatalf("InertiaMove failed: %v", err)
	}
	if result.Success || !result.Declined {
		t.Errorf("Expected declined inertia without a vector, got %+v", result)
	}
	if result.Error != "" {
		t.Errorf("Expected no error code, got %s", result.Error)
	}
}

func TestGameService_UnknownSession(t *testing.T) {
	svc := setupTestService()
	ctx := context.Background()

	if _, err := svc.Move(ctx, "nope", engine.Position{X: 1, Y: 0}); err == nil {
		t.Error("Expected error for unknown session")
	}
	if _, err := svc.GetGameState(ctx, "nope"); err == nil {
		t.Error("Expected error for unknown session")
	}
	if _, err := svc.RecordCompletion(ctx, "nope", "x"); err == nil {
		t.Error("Expected error for unknown session")
	}
	if err := svc.DeleteSession(ctx, "nope"); err == nil {
		t.Error("Expected error deleting unknown session")
	}
}

func TestGameService_RestartAndNewMap(t *testing.T) {
	svc := setupTestService()
	ctx := context.Background()
	id := createTinySession(t, svc)

	if _, err := svc.Move(ctx, id, engine.Position{X: 1, Y: 1}); err != nil {
		t.Fatal(err)
	}

	state, err := svc.Restart(ctx, id)
	if err != nil {
		t.Fatalf("Restart failed: %v", err)
	}
	if state.Status != engine.StatusActive || state.MoveCount != 0 {
		t.Errorf("Expected fresh run, got status=%s moves=%d", state.Status, state.MoveCount)
	}

	state, err = svc.NewMap(ctx, id)
	if err != nil {
		t.Fatalf("NewMap failed: %v", err)
	}
	if state.Status != engine.StatusActive || state.ShipPos != (engine.Position{}) {
		t.Errorf("Expected new run at origin, got %+v", state.ShipPos)
	}
	if state.TotalMoves != 1 {
		t.Errorf("Expected history kept across maps, got %d", state.TotalMoves)
	}
}

func TestGameService_Hint(t *testing.T) {
	svc := setupTestService()
	ctx := context.Background()
	id := createTinySession(t, svc)

	hint, err := svc.Hint(ctx, id)
	if err != nil {
		t.Fatalf("Hint failed: %v", err)
	}
	if !hint.Reachable || hint.Moves != 1 {
		t.Fatalf("Expected a one move hint, got %+v", hint)
	}
	if hint.Next == nil || *hint.Next != (engine.Position{X: 1, Y: 1}) {
		t.Errorf("Expected next target (1,1), got %v", hint.Next)
	}

	if _, err := svc.Move(ctx, id, *hint.Next); err != nil {
		t.Fatal(err)
	}
	hint, err = svc.Hint(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if hint.Reachable {
		t.Error("Expected no hint after winning")
	}
}

func TestGameService_MoveHistory(t *testing.T) {
	svc := setupTestService()
	ctx := context.Background()
	id := createTinySession(t, svc)

	for i := 0; i < 3; i++ {
		if _, err := svc.Move(ctx, id, engine.Position{X: 1, Y: 1}); err != nil {
			t.Fatal(err)
		}
		if _, err := svc.Restart(ctx, id); err != nil {
			t.Fatal(err)
		}
	}

	history, err := svc.GetMoveHistory(ctx, id, service.HistoryOptions{Limit: 2})
	if err != nil {
		t.Fatalf("GetMoveHistory failed: %v", err)
	}
	if history.TotalMoves != 3 || history.TotalPages != 2 || !history.HasNext {
		t.Errorf("Unexpected pagination %+v", history)
	}
	if len(history.Moves) != 2 || history.Moves[0].MoveNumber != 3 {
		t.Errorf("Expected newest first, got %+v", history.Moves)
	}

	history, err = svc.GetMoveHistory(ctx, id, service.HistoryOptions{Page: 2, Limit: 2, Order: "asc"})
	if err != nil {
		t.Fatal(err)
	}
	if len(history.Moves) != 1 || history.Moves[0].MoveNumber != 3 || !history.HasPrevious {
		t.Errorf("Unexpected second page %+v", history)
	}
}

func TestGameService_ListAndDelete(t *testing.T) {
	svc := setupTestService()
	ctx := context.Background()
	id := createTinySession(t, svc)
	createTinySession(t, svc)

	sessions, err := svc.ListSessions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 2 {
		t.Errorf("Expected 2 sessions, got %d", len(sessions))
	}

	if err := svc.DeleteSession(ctx, id); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if _, err := svc.GetSession(ctx, id); err == nil {
		t.Error("Expected deleted session to be gone")
	}

	configs, err := svc.ListConfigs(ctx)
	if err != nil || len(configs) != 2 {
		t.Errorf("Expected 2 configs, got %d (%v)", len(configs), err)
	}
	if _, err := svc.LoadConfig(ctx, "tiny"); err != nil {
		t.Errorf("LoadConfig failed: %v", err)
	}
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{fmt.Errorf("wrapped: %w", engine.ErrInsufficientEnergy), service.CodeInsufficientEnergy},
		{engine.ErrInvalidTarget, service.CodeInvalidTarget},
		{engine.ErrOutOfBounds, service.CodeOutOfBounds},
		{engine.ErrGameWon, service.CodeGameWon},
		{engine.ErrNoMap, service.CodeNoMap},
		{errors.New("boom"), ""},
	}

	for _, test := range tests {
		if got := service.ErrorCode(test.err); got != test.code {
			t.Errorf("ErrorCode(%v) = %q, expected %q", test.err, got, test.code)
		}
	}
}
