package main

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/rpsplus/internal/commentary"
	"github.com/robalobadob/rpsplus/internal/config"
	"github.com/robalobadob/rpsplus/internal/httpserver"
	"github.com/robalobadob/rpsplus/internal/referee"
	"github.com/robalobadob/rpsplus/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	bot, err := cfg.Chooser()
	if err != nil {
		log.Fatal().Err(err).Msg("seed opponent")
	}
	tools := referee.New(store.NewMemoryStore(), bot)

	limiter := httpserver.NewRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.PlayRateLimit, cfg.PlayRateWindow)
	defer limiter.Close()

	srv := httpserver.New(tools, commentary.NewNarrator(cfg.LLM()), limiter, httpserver.Options{
		ClientOrigin:  cfg.ClientOrigin,
		SessionSecret: cfg.SessionSecret,
		CookieName:    cfg.CookieName,
		Production:    cfg.Production,
	})
	log.Info().
		Str("port", cfg.Port).
		Bool("rateLimit", limiter.Enabled()).
		Bool("llm", cfg.LLMAPIKey != "").
		Msg("starting rps-plus server")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
