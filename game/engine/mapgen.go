package engine

import (
	"math/rand/v2"
	"time"
)

// RandomSource is the source of randomness used by the map generator
type RandomSource interface {
	IntN(n int) int
}

// NewRandomSource returns a deterministic source for the given seed
func NewRandomSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// newTimeSeededSource returns a source seeded from the clock
func newTimeSeededSource() *rand.Rand {
	return NewRandomSource(uint64(time.Now().UnixNano()))
}

// GenerateMap builds a random monotonic path from (0,0) to (size-1,size-1).
//
// Each step moves +1 in x or +1 in y, chosen uniformly among the moves that stay
// on the grid, so the path always has 2*(size-1)+1 cells. Every odd interior
// index holds fuel with an amount in [fuelMin, fuelMax].
func GenerateMap(size, fuelMin, fuelMax int, rng RandomSource) (Grid, []Position) {
	grid := make(Grid, size)
	for y := range grid {
		grid[y] = make([]Cell, size)
		for x := range grid[y] {
			grid[y][x] = Cell{Kind: Empty}
		}
	}

	path := make([]Position, 0, 2*(size-1)+1)
	path = append(path, Position{X: 0, Y: 0})
	x, y := 0, 0
	for x < size-1 || y < size-1 {
		options := make([]Position, 0, 2)
		if x < size-1 {
			options = append(options, Position{X: x + 1, Y: y})
		}
		if y < size-1 {
			options = append(options, Position{X: x, Y: y + 1})
		}
		next := options[rng.IntN(len(options))]
		path = append(path, next)
		x, y = next.X, next.Y
	}

	for _, p := range path {
		grid[p.Y][p.X] = Cell{Kind: Path}
	}
	for i := 1; i < len(path)-1; i += 2 {
		p := path[i]
		grid[p.Y][p.X] = Cell{Kind: Fuel, Fuel: fuelMin + rng.IntN(fuelMax-fuelMin+1)}
	}

	first, last := path[0], path[len(path)-1]
	grid[first.Y][first.X] = Cell{Kind: Start}
	grid[last.Y][last.X] = Cell{Kind: Finish}

	return grid, path
}
