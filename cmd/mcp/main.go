// Command mcp serves the referee tools over the Model Context Protocol,
// on stdio or streamable HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/rpsplus/internal/config"
	"github.com/robalobadob/rpsplus/internal/mcpserver"
	"github.com/robalobadob/rpsplus/internal/referee"
	"github.com/robalobadob/rpsplus/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	transport := flag.String("transport", cfg.MCPTransport, "stdio or http")
	addr := flag.String("addr", cfg.MCPHTTPAddr, "listen address for the http transport")
	match := flag.String("match", cfg.MCPDefaultMatch, "match id used when a tool call names none")
	flag.Parse()

	// stdout carries the protocol on stdio, so logs go to stderr.
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	bot, err := cfg.Chooser()
	if err != nil {
		log.Fatal().Err(err).Msg("seed opponent")
	}
	srv := mcpserver.New(referee.New(store.NewMemoryStore(), bot), *match)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch *transport {
	case "stdio":
		log.Info().Str("match", *match).Msg("serving MCP on stdio")
		if err := srv.Serve(ctx, &mcp.StdioTransport{}); err != nil {
			log.Fatal().Err(err).Msg("mcp server exited")
		}
	case "http":
		hs := &http.Server{Addr: *addr, Handler: srv.HTTPHandler(), ReadHeaderTimeout: 10 * time.Second}
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = hs.Shutdown(shutdownCtx)
		}()
		log.Info().Str("addr", *addr).Str("match", *match).Msg("serving MCP over HTTP")
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("mcp http server exited")
		}
	default:
		log.Fatal().Str("transport", *transport).Msg("transport not supported")
	}
}
