package main

import (
	"math/rand/v2"

	"github.com/wricardo/traska-space-race/game/engine"
)

// GreedyStrategy picks the legal move that gets furthest along the path
// without flying into a cell the ship cannot leave
type GreedyStrategy struct {
	radius    int
	finish    engine.Position
	pathIndex map[engine.Position]int

	// Later attempts add random noise to the scores so they try other lines
	rng    *rand.Rand
	jitter int

	visited map[engine.Position]int
}

func NewGreedyStrategy(state *engine.GameState, radius int) *GreedyStrategy {
	s := &GreedyStrategy{
		radius:    radius,
		finish:    state.Finish,
		pathIndex: make(map[engine.Position]int, len(state.Path)),
		visited:   make(map[engine.Position]int),
	}
	for i, p := range state.Path {
		s.pathIndex[p] = i
	}
	s.Reset(1)
	return s
}

// Reset prepares the strategy for a new attempt at the same map
func (s *GreedyStrategy) Reset(attempt int) {
	s.rng = rand.New(rand.NewPCG(uint64(attempt), uint64(len(s.pathIndex))))
	s.jitter = 2 * (attempt - 1)
	clear(s.visited)
}

// NextMove returns the target to fly to, or false when nothing is legal
func (s *GreedyStrategy) NextMove(state *engine.GameState) (engine.Position, bool) {
	if len(state.LegalMoves) == 0 {
		return engine.Position{}, false
	}

	best := state.LegalMoves[0]
	bestScore := 0
	found := false
	for _, target := range state.LegalMoves {
		if target == s.finish {
			return target, true
		}

		v := engine.VectorBetween(state.ShipPos, target)
		energy := state.Energy - engine.TransitionCost(state.Vector, v) + state.Grid.At(target).Fuel
		if len(engine.LegalMoves(state.Grid, target, energy, &v, s.radius)) == 0 {
			continue
		}

		score := 4*s.pathIndex[target] + energy - 3*s.visited[target]
		if s.jitter > 0 {
			score += s.rng.IntN(s.jitter + 1)
		}
		if !found || score > bestScore {
			best, bestScore, found = target, score, true
		}
	}

	s.visited[best]++
	return best, true
}
