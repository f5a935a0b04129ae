// Command validate checks the game configuration files in a directory. It checks:
//   - JSON or YAML structure, chosen by file extension
//   - Rule bounds (grid size, energy, fuel range, search radius)
//   - Presence of every message template
//   - Playability: generated maps must be solvable from the start line
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/traska-space-race/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...any) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single configuration file, then samples
// maps to make sure the rules are playable.
func validateConfig(filePath string, samples int) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	config, err := engine.ParseGameConfig(filePath, data)
	if err != nil {
		result.fail("Invalid format: %v", err)
		return result
	}

	if err := engine.ValidateGameConfig(config); err != nil {
		result.fail("%s", strings.TrimPrefix(err.Error(), "config validation: "))
		return result
	}

	messages := map[string]string{
		"welcome":             config.Messages.Welcome,
		"restarted":           config.Messages.Restarted,
		"moved":               config.Messages.Moved,
		"fuel_collected":      config.Messages.FuelCollected,
		"victory":             config.Messages.Victory,
		"insufficient_energy": config.Messages.InsufficientEnergy,
		"invalid_target":      config.Messages.InvalidTarget,
	}
	keys := make([]string, 0, len(messages))
	for key := range messages {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if messages[key] == "" {
			result.fail("Missing required message: %s", key)
		}
	}

	if result.Valid {
		playable := validatePlayability(config, samples)
		result.Valid = playable.Valid
		result.Errors = append(result.Errors, playable.Errors...)
	}

	if result.Valid {
		result.info("Name: %s", config.Name)
		result.info("Grid: %dx%d", config.GridSize, config.GridSize)
		result.info("Energy: %d, fuel %d-%d", config.InitialEnergy, config.FuelMin, config.FuelMax)
		result.info("Search radius: %d", config.SearchRadius)
		if config.Seed != 0 {
			result.info("Fixed seed: %d", config.Seed)
		}
	}

	return result
}

// validatePlayability solves generated maps from the start line. A config with
// a fixed seed only ever plays one map, so that map must be solvable. Otherwise
// at least one of the sampled maps must be.
func validatePlayability(config *engine.GameConfig, samples int) ValidationResult {
	result := ValidationResult{Valid: true, Errors: []string{}}

	seeds := make([]uint64, 0, samples)
	if config.Seed != 0 {
		seeds = append(seeds, config.Seed)
	} else {
		for i := 1; i <= samples; i++ {
			seeds = append(seeds, uint64(i))
		}
	}
	if len(seeds) == 0 {
		result.fail("Cannot validate playability: no samples requested")
		return result
	}

	solved := 0
	best := 0
	for _, seed := range seeds {
		grid, path := engine.GenerateMap(config.GridSize, config.FuelMin, config.FuelMax, engine.NewRandomSource(seed))
		plan, ok := engine.Solve(grid, path[0], config.InitialEnergy, nil, config.SearchRadius)
		if !ok {
			continue
		}
		solved++
		if best == 0 || plan.Moves < best {
			best = plan.Moves
		}
	}

	if solved == 0 {
		result.fail("Playability failure: 0/%d sampled maps reach the finish", len(seeds))
		return result
	}
	result.info("Playability: %d/%d sampled maps solvable, best in %d moves", solved, len(seeds), best)
	return result
}

// validateDir validates every config file in dir and writes a report to w.
// It returns false when any file is invalid.
func validateDir(w io.Writer, dir string, samples int) (bool, error) {
	var files []string
	for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return false, fmt.Errorf("error finding config files: %w", err)
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	if len(files) == 0 {
		return false, fmt.Errorf("no config files found in %s", dir)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file, samples)

		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
			for _, info := range result.Errors {
				fmt.Fprintln(w, "  "+info)
			}
		} else {
			fmt.Fprintln(w, "❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Fprintln(w, "  ❌ "+err)
				}
			}
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(w, "✅ All configurations are valid!")
	} else {
		fmt.Fprintln(w, "❌ Some configurations have errors")
	}
	return allValid, nil
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Validate game configuration files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "../configs",
				Usage:   "Directory containing game configurations",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.IntFlag{
				Name:  "samples",
				Value: 20,
				Usage: "Maps to solve per configuration without a fixed seed",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ok, err := validateDir(cmd.Root().Writer, cmd.String("config-dir"), int(cmd.Int("samples")))
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("validation failed")
			}
			return nil
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
