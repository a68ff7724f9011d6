// Command referee plays a match in the terminal.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/rpsplus/internal/cli"
	"github.com/robalobadob/rpsplus/internal/commentary"
	"github.com/robalobadob/rpsplus/internal/config"
	"github.com/robalobadob/rpsplus/internal/referee"
	"github.com/robalobadob/rpsplus/internal/store"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	// Debug and info logs would interleave with the conversation.
	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || lvl < zerolog.WarnLevel {
		lvl = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(lvl)

	bot, err := cfg.Chooser()
	if err != nil {
		log.Fatal().Err(err).Msg("seed opponent")
	}
	tools := referee.New(store.NewMemoryStore(), bot)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	loop := cli.New(tools, commentary.NewNarrator(cfg.LLM()), "cli", os.Stdin, os.Stdout)
	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("referee exited")
	}
}
