package tui

import (
	"context"
	"fmt"
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/wricardo/traska-space-race/game/engine"
	"github.com/wricardo/traska-space-race/game/scoreboard"
	"github.com/wricardo/traska-space-race/game/service"
)

const maxNameLength = 20

// App is a terminal client for a single game session
type App struct {
	screen    tcell.Screen
	game      service.GameService
	sessionID string

	state  *engine.GameState
	cursor engine.Position
	status string
	board  []scoreboard.Entry

	// Name entry after reaching the finish
	naming bool
	name   []rune
}

// New creates a client for an existing session and loads its state
func New(ctx context.Context, screen tcell.Screen, game service.GameService, sessionID string) (*App, error) {
	a := &App{
		screen:    screen,
		game:      game,
		sessionID: sessionID,
	}
	if err := a.refresh(ctx); err != nil {
		return nil, err
	}
	a.cursor = a.state.ShipPos
	a.status = a.state.Message
	if entries, err := game.GetScoreboard(ctx); err == nil {
		a.board = entries
	}
	return a, nil
}

// Run polls the screen for events until the player quits or ctx is cancelled
func (a *App) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	a.Draw()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !a.HandleEvent(ctx, ev) {
				return nil
			}
			a.Draw()
		}
	}
}

// HandleEvent applies one terminal event and reports whether the client keeps running
func (a *App) HandleEvent(ctx context.Context, ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if a.naming {
			a.handleNameKey(ctx, ev)
			return true
		}
		return a.handleGameKey(ctx, ev)
	case *tcell.EventResize:
		a.screen.Sync()
	}
	return true
}

func (a *App) handleGameKey(ctx context.Context, ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape:
		return false
	case tcell.KeyUp:
		a.moveCursor(0, -1)
	case tcell.KeyDown:
		a.moveCursor(0, 1)
	case tcell.KeyLeft:
		a.moveCursor(-1, 0)
	case tcell.KeyRight:
		a.moveCursor(1, 0)
	case tcell.KeyEnter:
		a.applyMove(a.game.Move(ctx, a.sessionID, a.cursor))
	case tcell.KeyRune:
		switch unicode.ToLower(ev.Rune()) {
		case 'q':
			return false
		case 'i':
			a.applyMove(a.game.InertiaMove(ctx, a.sessionID))
		case 'r':
			a.applyState(a.game.Restart(ctx, a.sessionID))
		case 'n':
			a.applyState(a.game.NewMap(ctx, a.sessionID))
		case 'h':
			a.showHint(ctx)
		}
	}
	return true
}

func (a *App) handleNameKey(ctx context.Context, ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		a.recordName(ctx, "")
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(a.name) > 0 {
			a.name = a.name[:len(a.name)-1]
		}
	case tcell.KeyEnter:
		a.recordName(ctx, string(a.name))
	case tcell.KeyRune:
		if len(a.name) < maxNameLength && unicode.IsPrint(ev.Rune()) {
			a.name = append(a.name, ev.Rune())
		}
	}
}

// recordName closes the prompt and puts the run on the scoreboard under name,
// which may be empty
func (a *App) recordName(ctx context.Context, name string) {
	a.naming = false
	a.name = nil

	result, err := a.game.RecordCompletion(ctx, a.sessionID, name)
	if err != nil {
		a.status = fmt.Sprintf("Could not record: %v", err)
		return
	}
	a.board = result.Scoreboard
	label := name
	if label == "" {
		label = "Anonymous run"
	}
	if result.Rank > 0 {
		a.status = fmt.Sprintf("%s placed #%d with %d moves", label, result.Rank, result.Entry.Moves)
	} else {
		a.status = fmt.Sprintf("%s finished in %d moves but missed the board", label, result.Entry.Moves)
	}
}

// moveCursor shifts the cursor, clamped to the grid
func (a *App) moveCursor(dx, dy int) {
	next := engine.Position{X: a.cursor.X + dx, Y: a.cursor.Y + dy}
	if a.state.Grid.InBounds(next) {
		a.cursor = next
	}
}

func (a *App) applyMove(result *service.MoveResult, err error) {
	if err != nil {
		a.status = err.Error()
		return
	}
	a.state = result.GameState
	a.status = result.Message
	if result.Success {
		a.cursor = a.state.ShipPos
	}
	if result.Completed {
		a.naming = true
		a.name = nil
	}
}

func (a *App) applyState(state *engine.GameState, err error) {
	if err != nil {
		a.status = err.Error()
		return
	}
	a.state = state
	a.status = state.Message
	a.cursor = state.ShipPos
	a.naming = false
	a.name = nil
}

// showHint puts the cursor on the next cell of a fewest-move plan
func (a *App) showHint(ctx context.Context) {
	hint, err := a.game.Hint(ctx, a.sessionID)
	if err != nil {
		a.status = err.Error()
		return
	}
	if !hint.Reachable || hint.Next == nil {
		a.status = "The finish is out of reach from here"
		return
	}
	a.cursor = *hint.Next
	a.status = fmt.Sprintf("Finish reachable in %d moves, next (%d,%d)", hint.Moves, hint.Next.X, hint.Next.Y)
}

func (a *App) refresh(ctx context.Context) error {
	state, err := a.game.GetGameState(ctx, a.sessionID)
	if err != nil {
		return err
	}
	if state.Status == engine.StatusIdle {
		state, err = a.game.NewMap(ctx, a.sessionID)
		if err != nil {
			return err
		}
	}
	a.state = state
	return nil
}
