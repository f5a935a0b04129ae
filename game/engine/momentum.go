package engine

// VectorBetween returns the displacement that takes the ship from one cell to another
func VectorBetween(from, to Position) Vector {
	return Vector{DX: to.X - from.X, DY: to.Y - from.Y}
}

// TransitionCost returns the energy needed to change from the previous vector to next.
// Without a previous vector the whole displacement must be paid for; otherwise only
// the change is charged, so repeating the previous vector is free.
func TransitionCost(prev *Vector, next Vector) int {
	if prev == nil {
		return abs(next.DX) + abs(next.DY)
	}
	return abs(next.DX-prev.DX) + abs(next.DY-prev.DY)
}
