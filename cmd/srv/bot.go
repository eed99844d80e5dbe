package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/neko-jpg/schoolfestival-bot/internal/bot"
	"github.com/neko-jpg/schoolfestival-bot/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startBot(*cli.Context) error {
	cfg := xcontext.Configs(s.ctx)
	if err := cfg.ValidateDiscord(); err != nil {
		return err
	}

	s.loadDatabase()
	s.loadEndpoint()
	s.loadPendingStore()
	s.loadRepos()
	s.loadDomains()

	session, err := discordgo.New("Bot " + cfg.Discord.BotToken)
	if err != nil {
		return err
	}
	session.Identify.Intents = discordgo.IntentsGuilds

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return bot.New(s.ctx, session, s.buildDomain, s.pendingStore).Run(ctx)
}
