// Command puller is a terminal client for the tug-of-war server. It prints every
// game state it receives and can keep pulling in one direction, which is handy
// for manual and load testing.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/urfave/cli/v3"

	"github.com/pscheid92/tugofwar/internal/domain"
	"github.com/pscheid92/tugofwar/internal/platform/logging"
	"github.com/pscheid92/tugofwar/internal/platform/version"
)

const writeTimeout = 5 * time.Second

func main() {
	cmd := &cli.Command{
		Name:    "puller",
		Usage:   "watch a tug-of-war game and optionally pull the rope",
		Version: version.Get(version.Puller).String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "url",
				Value:   "ws://localhost:3000/ws",
				Usage:   "WebSocket endpoint of the server",
				Sources: cli.EnvVars("PULLER_URL"),
			},
			&cli.StringFlag{
				Name:  "direction",
				Usage: "pull direction, left or right; leave empty to only watch",
			},
			&cli.DurationFlag{
				Name:  "interval",
				Value: 200 * time.Millisecond,
				Usage: "time between pulls",
			},
			&cli.DurationFlag{
				Name:  "duration",
				Usage: "stop after this long; zero runs until interrupted",
			},
			&cli.BoolFlag{
				Name:  "raw",
				Usage: "print received messages verbatim",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "info",
				Usage: "debug, info, warn or error",
			},
		},
		Action: run,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		slog.Error("Puller failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	logging.InitLogger(cmd.String("log-level"), "text")

	var direction domain.Direction
	if d := cmd.String("direction"); d != "" {
		direction = domain.Direction(d)
		if !direction.Valid() {
			return fmt.Errorf("%w: %q", domain.ErrUnknownDirection, d)
		}
	}
	if cmd.Duration("interval") <= 0 {
		return errors.New("interval must be positive")
	}

	if limit := cmd.Duration("duration"); limit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, limit)
		defer cancel()
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, cmd.String("url"), nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer func() { _ = conn.Close() }()
	slog.Info("Connected", "url", cmd.String("url"))

	received := make(chan error, 1)
	go func() { received <- printStates(conn, cmd.Bool("raw")) }()

	var ticks <-chan time.Time
	if direction != "" {
		ticker := time.NewTicker(cmd.Duration("interval"))
		defer ticker.Stop()
		ticks = ticker.C
	}

	payload, err := json.Marshal(domain.PullRequest{Action: domain.ActionPull, Direction: string(direction)})
	if err != nil {
		return fmt.Errorf("encode pull: %w", err)
	}

	sent := 0
	for {
		select {
		case <-ctx.Done():
			slog.Info("Stopping", "pulls_sent", sent)
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeTimeout))
			return nil
		case err := <-received:
			return fmt.Errorf("connection lost: %w", err)
		case <-ticks:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return fmt.Errorf("send pull: %w", err)
			}
			sent++
		}
	}
}

func printStates(conn *websocket.Conn, raw bool) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if raw {
			fmt.Println(string(data))
			continue
		}

		var state domain.GameState
		if err := json.Unmarshal(data, &state); err != nil {
			slog.Warn("Unexpected message from server", "error", err)
			continue
		}
		fmt.Printf("position=%+d left=%d right=%d players=%d\n",
			state.Position, state.LeftPulls, state.RightPulls, state.ActiveUsers)
	}
}
