package tui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/wricardo/traska-space-race/game/engine"
)

const (
	gridLeft = 2
	gridTop  = 3
	// Each cell takes a character and a space
	cellWidth = 2

	helpText = "arrows: cursor  enter: fly  i: inertia  h: hint  r: restart  n: new map  q: quit"
)

var (
	styleDefault = tcell.StyleDefault
	styleTitle   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleEmpty   = tcell.StyleDefault.Foreground(tcell.ColorDimGray)
	stylePath    = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleFuel    = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleStart   = tcell.StyleDefault.Foreground(tcell.ColorBlue)
	styleFinish  = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleShip    = tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true)
	styleStatus  = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleHelp    = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// Draw renders the whole client
func (a *App) Draw() {
	a.screen.Clear()

	state := a.state
	drawText(a.screen, 0, 0, styleTitle, "Traska Space Race  ["+state.ConfigName+"]")
	drawText(a.screen, 0, 1, styleDefault, fmt.Sprintf("Energy: %d  Vector: %s  Moves: %d  Fuel left: %d",
		state.Energy, vectorText(state.Vector), state.MoveCount, engine.TotalFuel(state.Grid)))

	a.drawGrid()

	y := gridTop + state.Grid.Size() + 1
	drawText(a.screen, 0, y, styleStatus, a.status)
	y++
	if a.naming {
		drawText(a.screen, 0, y, styleTitle, "Name for the scoreboard: "+string(a.name)+"_")
		y++
	}
	drawText(a.screen, 0, y+1, styleHelp, helpText)

	a.drawScoreboard(gridLeft + state.Grid.Size()*cellWidth + 4)

	a.screen.Show()
}

func (a *App) drawGrid() {
	legal := make(map[engine.Position]bool, len(a.state.LegalMoves))
	for _, p := range a.state.LegalMoves {
		legal[p] = true
	}

	for y, row := range a.state.Grid {
		for x, cell := range row {
			pos := engine.Position{X: x, Y: y}
			ch, style := cellRune(cell)
			if pos == a.state.ShipPos {
				ch, style = '@', styleShip
			}
			if legal[pos] {
				style = style.Background(tcell.ColorDarkGreen)
			}
			if pos == a.cursor {
				style = style.Reverse(true)
			}
			a.screen.SetContent(gridLeft+x*cellWidth, gridTop+y, ch, nil, style)
		}
	}
}

func (a *App) drawScoreboard(left int) {
	drawText(a.screen, left, gridTop, styleTitle, "Scoreboard")
	if len(a.board) == 0 {
		drawText(a.screen, left, gridTop+1, styleHelp, "no runs yet")
		return
	}
	for i, entry := range a.board {
		drawText(a.screen, left, gridTop+1+i, styleDefault, fmt.Sprintf("%2d. %-20s %3d", i+1, entry.Name, entry.Moves))
	}
}

// cellRune picks the character and colour of a grid cell
func cellRune(cell engine.Cell) (rune, tcell.Style) {
	ch := rune(engine.CellChar(cell))
	switch cell.Kind {
	case engine.Start:
		return ch, styleStart
	case engine.Finish:
		return ch, styleFinish
	case engine.Fuel:
		return ch, styleFuel
	case engine.Path:
		return ch, stylePath
	default:
		return ' ', styleEmpty
	}
}

func vectorText(v *engine.Vector) string {
	if v == nil {
		return "none"
	}
	return fmt.Sprintf("(%d,%d)", v.DX, v.DY)
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}
