// Command play runs a Traska space race in the terminal against an in-process game service.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/traska-space-race/game/config"
	"github.com/wricardo/traska-space-race/game/scoreboard"
	"github.com/wricardo/traska-space-race/game/service"
	"github.com/wricardo/traska-space-race/game/session"
	"github.com/wricardo/traska-space-race/tui"
)

// game is the in-process service stack behind the terminal client
type game struct {
	service   service.GameService
	sessionID string
	store     *scoreboard.SQLiteStore
}

func (g *game) Close() error {
	if g.store != nil {
		return g.store.Close()
	}
	return nil
}

// setupGame loads the configs, opens the scoreboard and creates the session to play
func setupGame(ctx context.Context, cmd *cli.Command) (*game, error) {
	configs, err := config.NewManager(cmd.String("config-dir"))
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	g := &game{}
	var board *scoreboard.Board
	if path := cmd.String("scoreboard-db"); path != "" {
		store, err := scoreboard.OpenSQLite(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open scoreboard: %w", err)
		}
		board, err = scoreboard.NewBoardWithStore(ctx, scoreboard.DefaultCapacity, store)
		if err != nil {
			store.Close()
			return nil, err
		}
		g.store = store
	}

	g.service = service.NewGameService(session.NewManager(), configs, board)
	info, err := g.service.CreateSession(ctx, service.CreateOptions{
		ConfigID: cmd.String("config"),
		Seed:     uint64(cmd.Int("seed")),
	})
	if err != nil {
		g.Close()
		return nil, err
	}
	g.sessionID = info.ID
	return g, nil
}

// redirectLogs keeps log output off the screen the client draws on
func redirectLogs(path string) (io.Closer, error) {
	if path == "" {
		log.SetOutput(io.Discard)
		return io.NopCloser(nil), nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	log.SetOutput(f)
	return f, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	logs, err := redirectLogs(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logs.Close()

	g, err := setupGame(ctx, cmd)
	if err != nil {
		return err
	}
	defer g.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := tui.New(ctx, screen, g.service, g.sessionID)
	if err != nil {
		return err
	}
	log.Printf("Playing session %s", g.sessionID)
	return app.Run(ctx)
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "Race across a Traska map in the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "Directory containing game configurations",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Configuration to play (default: classic)",
			},
			&cli.IntFlag{
				Name:  "seed",
				Usage: "Map seed, 0 for a random map",
			},
			&cli.StringFlag{
				Name:    "scoreboard-db",
				Usage:   "SQLite file that keeps the scoreboard between runs",
				Sources: cli.EnvVars("SCOREBOARD_DB"),
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Write logs to this file instead of discarding them",
			},
		},
		Action: run,
	}
}

func main() {
	// Missing .env is fine
	_ = godotenv.Load()
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
