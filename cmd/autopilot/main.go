// Command autopilot races a session over the REST API with a greedy strategy,
// retrying from the start until it reaches the finish or runs out of attempts.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/traska-space-race/game/engine"
)

// raceOptions bounds one autopilot run
type raceOptions struct {
	MaxMoves    int
	MaxAttempts int
	Delay       time.Duration
	Verbose     bool
}

// raceResult describes the winning attempt
type raceResult struct {
	Attempt int
	Moves   int
}

var errNoFinish = errors.New("finish not reached")

// race plays the client's session until the finish is reached
func race(ctx context.Context, c *Client, opts raceOptions) (*raceResult, error) {
	info, err := c.GetSession(ctx)
	if err != nil {
		return nil, err
	}
	if info.GameState.Status == engine.StatusIdle {
		return nil, fmt.Errorf("session %s has no map", c.sessionID)
	}

	strategy := NewGreedyStrategy(info.GameState, info.GameConfig.SearchRadius)
	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		state, err := c.Restart(ctx)
		if err != nil {
			return nil, err
		}
		strategy.Reset(attempt)
		log.Printf("=== Attempt %d/%d ===", attempt, opts.MaxAttempts)

		for moves := 0; moves < opts.MaxMoves; moves++ {
			target, ok := strategy.NextMove(state)
			if !ok {
				log.Printf("No legal moves at (%d,%d) with %d energy", state.ShipPos.X, state.ShipPos.Y, state.Energy)
				break
			}

			result, err := c.Move(ctx, target)
			if err != nil {
				return nil, err
			}
			if !result.Success {
				log.Printf("Move to (%d,%d) rejected: %s", target.X, target.Y, result.Message)
				break
			}
			state = result.GameState

			if opts.Verbose {
				log.Printf("Move %d: (%d,%d) energy=%d", state.MoveCount, state.ShipPos.X, state.ShipPos.Y, state.Energy)
			}
			if result.Completed {
				return &raceResult{Attempt: attempt, Moves: state.MoveCount}, nil
			}

			if opts.Delay > 0 {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(opts.Delay):
				}
			}
		}
		log.Printf("Attempt %d: stuck at (%d,%d) after %d moves", attempt, state.ShipPos.X, state.ShipPos.Y, state.MoveCount)
	}
	return nil, fmt.Errorf("%w after %d attempts", errNoFinish, opts.MaxAttempts)
}

func run(ctx context.Context, cmd *cli.Command) error {
	serverURL := cmd.String("url")
	log.Printf("Connecting to game server at %s", serverURL)
	client := NewClient(serverURL)

	if id := cmd.String("session"); id != "" {
		client.sessionID = id
		log.Printf("Resuming session: %s", id)
	} else {
		info, err := client.CreateSession(ctx, cmd.String("config"), uint64(cmd.Int("seed")))
		if err != nil {
			return err
		}
		log.Printf("Session created: %s (config %s, grid %dx%d)", info.ID, info.ConfigName, info.GameConfig.GridSize, info.GameConfig.GridSize)
	}

	result, err := race(ctx, client, raceOptions{
		MaxMoves:    int(cmd.Int("max-moves")),
		MaxAttempts: int(cmd.Int("max-attempts")),
		Delay:       cmd.Duration("delay"),
		Verbose:     cmd.Bool("verbose"),
	})
	if err != nil {
		return fmt.Errorf("session %s: %w", client.sessionID, err)
	}
	log.Printf("FINISH in %d moves on attempt %d (session %s)", result.Moves, result.Attempt, client.sessionID)

	if name := cmd.String("name"); name != "" {
		completion, err := client.Complete(ctx, name)
		if err != nil {
			return err
		}
		if completion.Rank > 0 {
			log.Printf("%s placed #%d on the scoreboard", name, completion.Rank)
		} else {
			log.Printf("%s did not make the scoreboard", name)
		}
	}
	return nil
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "autopilot",
		Usage: "Fly a session to the finish over the REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "url",
				Value:   "http://localhost:8080",
				Usage:   "Game server URL",
				Sources: cli.EnvVars("API_URL"),
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Configuration for a new session (default: classic)",
			},
			&cli.IntFlag{
				Name:  "seed",
				Usage: "Map seed for a new session, 0 for a random map",
			},
			&cli.StringFlag{
				Name:  "session",
				Usage: "Race an existing session by ID instead of creating one",
			},
			&cli.IntFlag{
				Name:  "max-moves",
				Value: 500,
				Usage: "Maximum moves per attempt",
			},
			&cli.IntFlag{
				Name:  "max-attempts",
				Value: 20,
				Usage: "Maximum attempts before giving up",
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "Record the winning run on the scoreboard under this name",
			},
			&cli.DurationFlag{
				Name:  "delay",
				Usage: "Pause between moves, useful when watching over the WebSocket",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log every move",
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
