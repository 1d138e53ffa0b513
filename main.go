package main

import (
	"clubbot/internal/bot"
	"clubbot/internal/brawlapi"
	"clubbot/internal/common"
	"clubbot/internal/config"
	"clubbot/internal/cursor"
	"clubbot/internal/metrics"
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {

	// Configuration
	cfg, err := config.Load()
	if err != nil {
		bootLogger := common.NewLogger("info")
		bootLogger.Fatal().Err(err).Msg("Could not load configuration")
	}
	logger := common.NewLogger(cfg.LogLevel)
	clubTag, err := brawlapi.ParseTag(cfg.ClubTag)
	if err != nil {
		logger.Fatal().Err(err).Msg("Club tag not valid")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Metrics
	metrics.MustRegister(prometheus.DefaultRegisterer)
	if cfg.MetricsAddr != "" {
		metrics.StartServer(ctx, logger, cfg.MetricsAddr)
	}

	// Create game API
	clock := common.SystemClock{}
	api := brawlapi.NewApi(brawlapi.Config{
		OfficialURL:  cfg.BrawlAPI.OfficialURL,
		BrawlapiURL:  cfg.BrawlAPI.BrawlapiURL,
		Key:          cfg.BrawlAPI.Key,
		ClubTag:      clubTag,
		Restrictions: cfg.RateLimits,
		Backoff:      cfg.BrawlAPI.Backoff,
	}, &http.Client{Timeout: cfg.BrawlAPI.Timeout}, clock, logger)

	// Club log cursor
	store, err := cursor.Open(ctx, cursor.Config{
		Backend:   cfg.Cursor.Backend,
		Path:      cfg.Cursor.Path,
		RedisAddr: cfg.Cursor.RedisAddr,
		Key:       cfg.Cursor.Key,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Could not open club log cursor")
	}
	if closer, ok := store.(io.Closer); ok {
		defer closer.Close()
	}

	// Create discord session
	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		logger.Fatal().Err(err).Msg("Could not create discord session")
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent |
		discordgo.IntentsGuildMessageReactions

	// Create bot
	chat := bot.NewDiscord(session, cfg.Discord.GuildID, cfg.Precedence(), logger)
	clubBot := bot.NewBot(api, chat, store, clock, logger, bot.SettingsFromConfig(cfg))

	// Run bot
	logger.Info().Str("club", clubTag).Msg("Starting bot")
	if err := clubBot.Run(ctx, session); err != nil {
		logger.Error().Err(err).Msg("Bot stopped")
		os.Exit(1)
	}
}
