package engine

// LegalMoves returns every cell reachable in one move from pos.
//
// Candidates lie within a box of the given radius around pos, must be on the
// path and must not cost more than the available energy. The ship's own cell is
// never a legal move. Results are ordered row by row.
func LegalMoves(grid Grid, pos Position, energy int, prev *Vector, radius int) []Position {
	moves := []Position{}
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			target := Position{X: pos.X + dx, Y: pos.Y + dy}
			if !grid.InBounds(target) || grid.At(target).IsEmpty() {
				continue
			}
			if TransitionCost(prev, Vector{DX: dx, DY: dy}) <= energy {
				moves = append(moves, target)
			}
		}
	}
	return moves
}

// withinRadius reports whether v stays inside the search box
func withinRadius(v Vector, radius int) bool {
	return abs(v.DX) <= radius && abs(v.DY) <= radius
}
