package engine

// CountCellKind counts the cells of a specific kind in the grid
func CountCellKind(grid Grid, kind CellKind) int {
	count := 0
	for _, row := range grid {
		for _, cell := range row {
			if cell.Kind == kind {
				count++
			}
		}
	}
	return count
}

// TotalFuel sums the fuel still waiting on the grid
func TotalFuel(grid Grid) int {
	total := 0
	for _, row := range grid {
		for _, cell := range row {
			if cell.Kind == Fuel {
				total += cell.Fuel
			}
		}
	}
	return total
}

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	return abs(from.X-to.X) + abs(from.Y-to.Y)
}

// ChebyshevDistance is the number of radius-1 boxes between two positions
func ChebyshevDistance(from, to Position) int {
	return max(abs(from.X-to.X), abs(from.Y-to.Y))
}

// FindNearestFuel finds the closest uncollected fuel cell and returns its position and distance
func FindNearestFuel(state *GameState) (Position, int, bool) {
	minDistance := -1
	var nearestPos Position
	found := false

	for y := 0; y < len(state.Grid); y++ {
		for x := 0; x < len(state.Grid[y]); x++ {
			if state.Grid[y][x].Kind != Fuel {
				continue
			}
			pos := Position{X: x, Y: y}
			distance := ManhattanDistance(state.ShipPos, pos)
			if minDistance == -1 || distance < minDistance {
				minDistance = distance
				nearestPos = pos
				found = true
			}
		}
	}

	return nearestPos, minDistance, found
}

// abs returns the absolute value of x
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
