package engine

// Plan is a shortest sequence of moves to the finish
type Plan struct {
	Moves   int        `json:"moves"`
	Targets []Position `json:"targets"`
}

// maxSolverStates bounds the search on very large grids
const maxSolverStates = 2_000_000

type solverState struct {
	pos       Position
	vec       Vector
	hasVec    bool
	energy    int
	collected uint64
}

type solverNode struct {
	state  solverState
	parent int
	target Position
}

// Solve runs a breadth-first search over ship states (position, vector, energy
// and collected fuel) using the same move rules as the engine. It returns a plan
// with the fewest moves from pos to the finish cell, or false when the finish
// cannot be reached.
func Solve(grid Grid, pos Position, energy int, prev *Vector, radius int) (*Plan, bool) {
	if !grid.InBounds(pos) {
		return nil, false
	}
	if grid.At(pos).Kind == Finish {
		return &Plan{Moves: 0, Targets: []Position{}}, true
	}

	fuelIndex := make(map[Position]uint, 8)
	for y, row := range grid {
		for x, cell := range row {
			if cell.Kind == Fuel {
				if len(fuelIndex) == 64 {
					return nil, false
				}
				fuelIndex[Position{X: x, Y: y}] = uint(len(fuelIndex))
			}
		}
	}

	start := solverState{pos: pos, energy: energy}
	if prev != nil {
		start.vec, start.hasVec = *prev, true
	}

	nodes := []solverNode{{state: start, parent: -1}}
	seen := map[solverState]bool{start: true}

	for head := 0; head < len(nodes); head++ {
		current := nodes[head].state
		var prevVec *Vector
		if current.hasVec {
			v := current.vec
			prevVec = &v
		}

		for dy := -radius; dy <= radius; dy++ {
			for dx := -radius; dx <= radius; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				target := Position{X: current.pos.X + dx, Y: current.pos.Y + dy}
				if !grid.InBounds(target) {
					continue
				}
				cell := grid.At(target)
				if cell.IsEmpty() {
					continue
				}
				vector := Vector{DX: dx, DY: dy}
				cost := TransitionCost(prevVec, vector)
				if cost > current.energy {
					continue
				}

				next := solverState{
					pos:       target,
					vec:       vector,
					hasVec:    true,
					energy:    current.energy - cost,
					collected: current.collected,
				}
				if idx, ok := fuelIndex[target]; ok && current.collected&(1<<idx) == 0 {
					next.energy += cell.Fuel
					next.collected |= 1 << idx
				}

				if cell.Kind == Finish {
					return buildPlan(nodes, head, target), true
				}
				if seen[next] {
					continue
				}
				if len(nodes) >= maxSolverStates {
					return nil, false
				}
				seen[next] = true
				nodes = append(nodes, solverNode{state: next, parent: head, target: target})
			}
		}
	}

	return nil, false
}

// buildPlan walks parent links back to the root
func buildPlan(nodes []solverNode, last int, finish Position) *Plan {
	targets := []Position{finish}
	for i := last; nodes[i].parent >= 0; i = nodes[i].parent {
		targets = append(targets, nodes[i].target)
	}
	for i, j := 0, len(targets)-1; i < j; i, j = i+1, j-1 {
		targets[i], targets[j] = targets[j], targets[i]
	}
	return &Plan{Moves: len(targets), Targets: targets}
}
