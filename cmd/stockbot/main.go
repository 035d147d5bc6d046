package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"stockgame/internal/config"
	"stockgame/internal/logging"
)

func main() {
	cfg, err := config.LoadApp()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logging.Init(cfg.Log)

	botCfg, err := config.LoadBot()
	if err != nil {
		log.Fatal().Err(err).Msg("load bot config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := newBot(botCfg)
	token, err := b.login(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("login")
	}
	if err := b.run(ctx, token); err != nil {
		log.Fatal().Err(err).Msg("bot stopped")
	}
	log.Info().Msg("bot finished")
}
