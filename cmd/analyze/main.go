package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/urfave/cli/v3"
	"gonum.org/v1/gonum/stat"

	"github.com/wricardo/traska-space-race/game/config"
	"github.com/wricardo/traska-space-race/game/engine"
)

// MapSample holds the measurements taken from one generated map
type MapSample struct {
	Seed       uint64
	PathLength int
	FuelCells  int
	FuelTotal  int
	Solvable   bool
	MinMoves   int
}

// ConfigReport summarizes every sample generated for one configuration
type ConfigReport struct {
	ConfigID      string
	Name          string
	GridSize      int
	SearchRadius  int
	Runs          int
	Solvable      int
	MeanMoves     float64
	StdMoves      float64
	MinMoves      int
	MaxMoves      int
	MeanFuelTotal float64
	MeanFuelCells float64
}

// SolvableRatio is the share of sampled maps whose finish can be reached
func (r ConfigReport) SolvableRatio() float64 {
	if r.Runs == 0 {
		return 0
	}
	return float64(r.Solvable) / float64(r.Runs)
}

// sampleMap generates the map for seed and solves it from the start line
func sampleMap(cfg *engine.GameConfig, seed uint64) MapSample {
	grid, path := engine.GenerateMap(cfg.GridSize, cfg.FuelMin, cfg.FuelMax, engine.NewRandomSource(seed))
	sample := MapSample{
		Seed:       seed,
		PathLength: len(path),
		FuelCells:  engine.CountCellKind(grid, engine.Fuel),
		FuelTotal:  engine.TotalFuel(grid),
	}
	if plan, ok := engine.Solve(grid, path[0], cfg.InitialEnergy, nil, cfg.SearchRadius); ok {
		sample.Solvable = true
		sample.MinMoves = plan.Moves
	}
	return sample
}

// analyzeConfig samples runs maps starting at seed and aggregates them
func analyzeConfig(id string, cfg *engine.GameConfig, runs int, seed uint64) ConfigReport {
	report := ConfigReport{
		ConfigID:     id,
		Name:         cfg.Name,
		GridSize:     cfg.GridSize,
		SearchRadius: cfg.SearchRadius,
		Runs:         runs,
	}

	var moves, fuelTotals, fuelCells []float64
	for i := 0; i < runs; i++ {
		sample := sampleMap(cfg, seed+uint64(i))
		fuelTotals = append(fuelTotals, float64(sample.FuelTotal))
		fuelCells = append(fuelCells, float64(sample.FuelCells))
		if !sample.Solvable {
			continue
		}
		report.Solvable++
		moves = append(moves, float64(sample.MinMoves))
		if report.MinMoves == 0 || sample.MinMoves < report.MinMoves {
			report.MinMoves = sample.MinMoves
		}
		if sample.MinMoves > report.MaxMoves {
			report.MaxMoves = sample.MinMoves
		}
	}

	if len(moves) > 1 {
		report.MeanMoves, report.StdMoves = stat.MeanStdDev(moves, nil)
	} else if len(moves) == 1 {
		report.MeanMoves = moves[0]
	}
	if len(fuelTotals) > 0 {
		report.MeanFuelTotal = stat.Mean(fuelTotals, nil)
		report.MeanFuelCells = stat.Mean(fuelCells, nil)
	}
	return report
}

func printReport(w io.Writer, r ConfigReport) {
	fmt.Fprintf(w, "\n=== Analyzing %s ===\n", r.ConfigID)
	fmt.Fprintf(w, "Name: %s\n", r.Name)
	fmt.Fprintf(w, "Grid: %dx%d, search radius %d\n", r.GridSize, r.GridSize, r.SearchRadius)
	fmt.Fprintf(w, "Maps sampled: %d\n", r.Runs)
	fmt.Fprintf(w, "Solvable: %d (%.1f%%)\n", r.Solvable, r.SolvableRatio()*100)
	fmt.Fprintf(w, "Fuel deposits per map: %.1f, total fuel per map: %.1f\n", r.MeanFuelCells, r.MeanFuelTotal)
	if r.Solvable == 0 {
		fmt.Fprintln(w, "No solvable maps, move statistics unavailable")
		return
	}
	fmt.Fprintf(w, "Fewest moves: mean %.2f, stddev %.2f, best %d, worst %d\n", r.MeanMoves, r.StdMoves, r.MinMoves, r.MaxMoves)
}

func run(ctx context.Context, cmd *cli.Command) error {
	mgr, err := config.NewManager(cmd.String("config-dir"))
	if err != nil {
		return err
	}

	runs := int(cmd.Int("runs"))
	if runs <= 0 {
		return fmt.Errorf("runs must be positive, got %d", runs)
	}
	seed := uint64(cmd.Int("seed"))

	ids := cmd.Args().Slice()
	if len(ids) == 0 {
		infos, err := mgr.ListConfigs()
		if err != nil {
			return err
		}
		for _, info := range infos {
			ids = append(ids, info.ConfigID)
		}
	}

	out := cmd.Root().Writer
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		cfg, err := mgr.LoadConfig(id)
		if err != nil {
			fmt.Fprintf(out, "Error loading %s: %v\n", id, err)
			continue
		}
		printReport(out, analyzeConfig(id, cfg, runs, seed))
	}
	return nil
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Sample generated maps per configuration and report solver statistics",
		ArgsUsage: "[config ...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "Directory containing game configurations",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.IntFlag{
				Name:  "runs",
				Value: 100,
				Usage: "Maps to generate per configuration",
			},
			&cli.IntFlag{
				Name:  "seed",
				Value: 1,
				Usage: "Seed of the first generated map",
			},
		},
		Action: run,
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
