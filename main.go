package main

import (
	"context"
	"flag"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"chessclient/internal/game"
	"chessclient/internal/gateway"
	"chessclient/internal/handshake"
	"chessclient/internal/poller"
	"chessclient/internal/session"
	"chessclient/internal/ui"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	server := flag.String("server", getEnv("SERVER_URL", "http://localhost:8000"), "game server base URL")
	gameID := flag.String("game", os.Getenv("GAME_ID"), "game identifier (new game when empty)")
	color := flag.String("color", "white", "side to play: white or black")
	interval := flag.Duration("interval", poller.DefaultInterval, "reconciliation poll period")
	keepPolling := flag.Bool("keep-polling", false, "keep polling after the game ends")
	flag.Parse()

	if *gameID == "" {
		*gameID = uuid.NewString()
	}
	orientation := game.White
	if *color == string(game.Black) {
		orientation = game.Black
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gw := gateway.New(*server)
	snap, err := gw.Snapshot(ctx, *gameID)
	if err != nil {
		log.Fatal().Err(err).Str("server", *server).Msg("cannot reach game server")
	}
	sess := session.New(*gameID, orientation, snap)

	u, err := ui.New(orientation)
	if err != nil {
		log.Fatal().Err(err).Msg("terminal init failed")
	}
	defer u.Close()

	// The terminal now belongs to the board; route logs to a file, or
	// drop them, so they cannot corrupt the display.
	logOut := io.Discard
	if path := os.Getenv("LOG_FILE"); path != "" {
		if f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			defer f.Close()
			logOut = f
		}
	}
	log.Logger = zerolog.New(logOut).With().Timestamp().Logger()
	log.Info().Str("game", *gameID).Str("color", string(orientation)).Dur("interval", *interval).Msg("session started")

	ctrl := handshake.New(gw, sess, u, u, u)
	p := poller.New(poller.Config{Interval: *interval, StopOnEnd: !*keepPolling}, gw, sess, u, u, u)
	p.ApplyInitial(ctx, snap)
	go func() { _ = p.Run(ctx) }()

	send := func(ctx context.Context, text string) error {
		return gw.SendMessage(ctx, text, *gameID)
	}
	_ = u.Loop(ctx, ctrl, send)
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
